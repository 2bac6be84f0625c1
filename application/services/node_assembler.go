package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"lifepath-backend/application/ports"
	"lifepath-backend/domain/lifepath"
	"lifepath-backend/pkg/locks"

	"go.uber.org/zap"
)

// AddNodeInput is one add-node request after transport decoding.
type AddNodeInput struct {
	UserID        string
	PriorNodes    []lifepath.Node // highlighted path, newest-first back toward the root
	ClickedNodeID string
	Prompt        string
	NodeType      string
	TimeInMonths  int
	Positivity    int
	NumNodes      int
}

// NodeAssembler orchestrates event synthesis and the parallel image
// pipeline, resolves unique human-readable node ids, and persists the
// resulting nodes and links as one batch.
type NodeAssembler struct {
	graph       ports.GraphStore
	profiles    ports.ProfileStore
	synthesizer *Synthesizer
	images      *ImagePipeline
	publisher   ports.EventPublisher
	userLocks   *locks.KeyedMutex
	logger      *zap.Logger
}

// NewNodeAssembler creates a NodeAssembler. publisher may be nil when
// eventing is disabled.
func NewNodeAssembler(
	graph ports.GraphStore,
	profiles ports.ProfileStore,
	synthesizer *Synthesizer,
	images *ImagePipeline,
	publisher ports.EventPublisher,
	userLocks *locks.KeyedMutex,
	logger *zap.Logger,
) *NodeAssembler {
	return &NodeAssembler{
		graph:       graph,
		profiles:    profiles,
		synthesizer: synthesizer,
		images:      images,
		publisher:   publisher,
		userLocks:   userLocks,
		logger:      logger,
	}
}

// AddNodes runs the full generation pipeline and returns the newly created
// nodes with image fields populated. Generator failures never fail the
// request; only a persistence error does.
func (a *NodeAssembler) AddNodes(ctx context.Context, in AddNodeInput) ([]lifepath.Node, error) {
	if in.NumNodes < 1 {
		in.NumNodes = 1
	}

	currentLinks, err := a.graph.ListLinks(ctx, in.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to load links: %w", err)
	}

	path := make([]string, len(in.PriorNodes))
	for i, n := range in.PriorNodes {
		path[i] = n.ID
	}
	cumulativeMonths := lifepath.CumulativeMonths(path, currentLinks)

	profile, err := a.profiles.GetProfile(ctx, in.UserID)
	if err != nil {
		a.logger.Warn("Could not load profile, generating without personalization",
			zap.String("userID", in.UserID),
			zap.Error(err),
		)
		profile = nil
	}

	events := a.synthesizer.GenerateEvents(ctx, SynthesisInput{
		PriorNodes:       in.PriorNodes,
		Prompt:           in.Prompt,
		NodeType:         in.NodeType,
		TimeInMonths:     in.TimeInMonths,
		Positivity:       in.Positivity,
		NumNodes:         in.NumNodes,
		CumulativeMonths: cumulativeMonths,
		Profile:          profile,
	})

	a.decorateWithImages(ctx, in.UserID, events, cumulativeMonths, profile)

	now := time.Now()
	newNodes := make([]lifepath.Node, 0, len(events))
	assigned := make(map[string]bool, len(events))
	for _, event := range events {
		id := deriveNodeID(event.Name, assigned)
		assigned[id] = true
		newNodes = append(newNodes, lifepath.Node{
			ID:           id,
			Name:         event.Name,
			Title:        event.Title,
			Description:  event.Description,
			Type:         event.Type,
			TimeInMonths: event.TimeMonths,
			ImageName:    event.ImageName,
			ImageURL:     event.ImageURL,
			CreatedAt:    now,
			UserID:       in.UserID,
		})
	}

	batch := make([]lifepath.Node, 0, len(newNodes)+1)
	links := make([]lifepath.Link, 0, len(newNodes))
	if in.ClickedNodeID != "" {
		if !containsNode(in.PriorNodes, in.ClickedNodeID) {
			batch = append(batch, lifepath.NewPlaceholderNode(in.ClickedNodeID, in.UserID))
		}
		for _, n := range newNodes {
			links = append(links, lifepath.Link{
				ID:           lifepath.NewLinkID(in.ClickedNodeID, n.ID, in.UserID),
				Source:       in.ClickedNodeID,
				Target:       n.ID,
				TimeInMonths: in.TimeInMonths,
				UserID:       in.UserID,
			})
		}
	}
	batch = append(batch, newNodes...)

	unlock := a.userLocks.Lock(in.UserID)
	err = a.graph.PersistBatch(ctx, batch, links)
	unlock()
	if err != nil {
		return nil, fmt.Errorf("failed to persist node batch: %w", err)
	}

	a.publish(ctx, ports.GraphEvent{
		Type:      "nodes.created",
		UserID:    in.UserID,
		NodeIDs:   nodeIDs(newNodes),
		Timestamp: now,
	})

	a.logger.Info("Node batch created",
		zap.String("userID", in.UserID),
		zap.String("clickedNodeID", in.ClickedNodeID),
		zap.Int("nodes", len(newNodes)),
		zap.Int("links", len(links)),
		zap.Int("cumulativeMonths", cumulativeMonths),
	)

	return newNodes, nil
}

// decorateWithImages runs one image job per event concurrently. Failures
// and panics are isolated per job: a failing image leaves that event's
// image fields empty and never blocks or fails its siblings. Results are
// matched back by index, not completion order.
func (a *NodeAssembler) decorateWithImages(ctx context.Context, userID string, events []lifepath.EventCandidate, cumulativeMonths int, profile *lifepath.UserProfile) {
	type imageResult struct {
		name string
		url  string
	}
	results := make([]imageResult, len(events))

	var wg sync.WaitGroup
	for i := range events {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					a.logger.Error("Image job panicked",
						zap.String("event", events[i].Name),
						zap.Any("panic", r),
					)
					results[i] = imageResult{}
				}
			}()
			name, url := a.images.GenerateEventImage(ctx, userID, events[i], cumulativeMonths, profile)
			results[i] = imageResult{name: name, url: url}
		}(i)
	}
	wg.Wait()

	for i := range events {
		events[i].ImageName = results[i].name
		events[i].ImageURL = results[i].url
	}
}

func (a *NodeAssembler) publish(ctx context.Context, event ports.GraphEvent) {
	if a.publisher == nil {
		return
	}
	if err := a.publisher.Publish(ctx, event); err != nil {
		a.logger.Warn("Failed to publish graph event",
			zap.String("type", event.Type),
			zap.Error(err),
		)
	}
}

// deriveNodeID builds the human-readable node id from the first three words
// of the event name, suffixing an incrementing counter on collision with an
// id already assigned in this batch. Computed in candidate order, so the
// same candidate list always yields the same ids.
func deriveNodeID(name string, assigned map[string]bool) string {
	words := strings.Fields(name)
	if len(words) > 3 {
		words = words[:3]
	}
	base := strings.Join(words, " ")
	if base == "" {
		base = "Event"
	}

	id := base
	for counter := 1; assigned[id]; counter++ {
		id = fmt.Sprintf("%s %d", base, counter)
	}
	return id
}

func containsNode(nodes []lifepath.Node, id string) bool {
	for _, n := range nodes {
		if n.ID == id {
			return true
		}
	}
	return false
}

func nodeIDs(nodes []lifepath.Node) []string {
	ids := make([]string, len(nodes))
	for i, n := range nodes {
		ids[i] = n.ID
	}
	return ids
}
