// Package eventbridge publishes graph mutation events to an EventBridge
// bus for downstream consumers. Publishing is best-effort by contract.
package eventbridge

import (
	"context"
	"encoding/json"
	"fmt"

	"lifepath-backend/application/ports"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge/types"
	"go.uber.org/zap"
)

const eventSource = "lifepath.graph"

// Publisher implements ports.EventPublisher on EventBridge.
type Publisher struct {
	client  *eventbridge.Client
	busName string
	logger  *zap.Logger
}

// NewPublisher creates a Publisher targeting the named bus.
func NewPublisher(client *eventbridge.Client, busName string, logger *zap.Logger) *Publisher {
	return &Publisher{client: client, busName: busName, logger: logger}
}

// Publish sends one graph event. The event type is the detail type; the
// full event becomes the JSON detail payload.
func (p *Publisher) Publish(ctx context.Context, event ports.GraphEvent) error {
	detail, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event detail: %w", err)
	}

	out, err := p.client.PutEvents(ctx, &eventbridge.PutEventsInput{
		Entries: []types.PutEventsRequestEntry{{
			EventBusName: aws.String(p.busName),
			Source:       aws.String(eventSource),
			DetailType:   aws.String(event.Type),
			Detail:       aws.String(string(detail)),
		}},
	})
	if err != nil {
		return fmt.Errorf("failed to put event: %w", err)
	}
	if out.FailedEntryCount > 0 {
		return fmt.Errorf("event bus rejected %d entries", out.FailedEntryCount)
	}

	p.logger.Debug("Published graph event",
		zap.String("type", event.Type),
		zap.String("userID", event.UserID),
		zap.Int("nodes", len(event.NodeIDs)),
	)
	return nil
}

var _ ports.EventPublisher = (*Publisher)(nil)
