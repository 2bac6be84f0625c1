// Package ports defines the interfaces the application layer depends on.
// Infrastructure packages provide the implementations; tests substitute
// in-memory fakes.
package ports

import (
	"context"
	"time"

	"lifepath-backend/domain/lifepath"
)

// GraphStore owns the persisted nodes and links of every user's graph.
type GraphStore interface {
	// InsertNodeIfAbsent writes the node unless its id already exists for
	// the user. Returns whether a row was written; an id conflict is a
	// no-op, not an error.
	InsertNodeIfAbsent(ctx context.Context, node lifepath.Node) (bool, error)

	// InsertLinkIfAbsent writes the link unless its id already exists.
	InsertLinkIfAbsent(ctx context.Context, link lifepath.Link) (bool, error)

	// ListNodes returns every node for the user, ordered by creation time.
	ListNodes(ctx context.Context, userID string) ([]lifepath.Node, error)

	// ListLinks returns every link for the user.
	ListLinks(ctx context.Context, userID string) ([]lifepath.Link, error)

	// GetNode returns the node with the given id for the user, or a
	// not-found error.
	GetNode(ctx context.Context, userID, nodeID string) (*lifepath.Node, error)

	// PersistBatch idempotently inserts a whole add-node batch. If a true
	// persistence error occurs partway, rows written by this call are
	// compensated away before the error is returned, so no partial batch
	// stays visible.
	PersistBatch(ctx context.Context, nodes []lifepath.Node, links []lifepath.Link) error

	// DeleteNodesAndLinks removes every link touching the node set, then
	// the nodes themselves, as a single atomic unit.
	DeleteNodesAndLinks(ctx context.Context, userID string, nodeIDs []string) error

	// InstantiateRoot creates the user's root node if no node matching the
	// reserved root pattern exists yet. Safe under concurrent calls.
	InstantiateRoot(ctx context.Context, userID string) (created bool, rootID string, err error)
}

// ProfileStore persists the per-user biographical profile.
type ProfileStore interface {
	// GetProfile returns the user's profile, or nil when none is stored.
	GetProfile(ctx context.Context, userID string) (*lifepath.UserProfile, error)

	// SaveProfile upserts the profile.
	SaveProfile(ctx context.Context, profile lifepath.UserProfile) error
}

// TextGenerator is the black-box text completion collaborator. No
// structural contract is made about the output; callers parse defensively.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// GeneratedImage is the raw result of one image generation call.
type GeneratedImage struct {
	Data     []byte
	MIMEType string
}

// ImageGenerator is the black-box image generation collaborator. A nil
// result with nil error means the generator produced no image.
type ImageGenerator interface {
	Generate(ctx context.Context, prompt string, reference []byte) (*GeneratedImage, error)
}

// ObjectStore abstracts the S3-compatible bucket store holding reference
// portraits and generated event images.
type ObjectStore interface {
	EnsureBucket(ctx context.Context, bucket string) error
	GetObject(ctx context.Context, bucket, key string) ([]byte, error)
	PutObject(ctx context.Context, bucket, key string, data []byte, contentType string) error
	RemoveObject(ctx context.Context, bucket, key string) error
	PresignGet(ctx context.Context, bucket, key string, ttl time.Duration) (string, error)
}

// GraphEvent describes a graph mutation for downstream consumers.
type GraphEvent struct {
	Type      string    `json:"type"`
	UserID    string    `json:"userId"`
	NodeIDs   []string  `json:"nodeIds"`
	Timestamp time.Time `json:"timestamp"`
}

// EventPublisher publishes graph mutation events. Publishing is always
// best-effort; failures are logged by callers and never fail a request.
type EventPublisher interface {
	Publish(ctx context.Context, event GraphEvent) error
}
