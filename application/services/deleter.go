package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"lifepath-backend/application/ports"
	"lifepath-backend/domain/lifepath"
	apperrors "lifepath-backend/pkg/errors"
	"lifepath-backend/pkg/locks"

	"go.uber.org/zap"
)

// DeleteReport is the structured result of one cascade delete.
type DeleteReport struct {
	DeletedNode    string   `json:"deleted_node"`
	CascadeDeleted []string `json:"cascade_deleted"`
	TotalDeleted   int      `json:"total_deleted"`
	RemainingNodes int      `json:"remaining_nodes"`
	DeletedImages  []string `json:"deleted_images"`
}

// ReachabilityDeleter removes a node together with every node that loses
// all paths from the root as a result. Reachability is recomputed from
// scratch over the post-deletion graph on every call; pre-existing orphans
// are swept up by the same computation.
type ReachabilityDeleter struct {
	graph     ports.GraphStore
	images    *ImagePipeline
	publisher ports.EventPublisher
	userLocks *locks.KeyedMutex
	logger    *zap.Logger
}

// NewReachabilityDeleter creates a ReachabilityDeleter. publisher may be
// nil when eventing is disabled.
func NewReachabilityDeleter(
	graph ports.GraphStore,
	images *ImagePipeline,
	publisher ports.EventPublisher,
	userLocks *locks.KeyedMutex,
	logger *zap.Logger,
) *ReachabilityDeleter {
	return &ReachabilityDeleter{
		graph:     graph,
		images:    images,
		publisher: publisher,
		userLocks: userLocks,
		logger:    logger,
	}
}

// Delete removes nodeID and its cascade for the user. Returns a validation
// error for the root, a not-found error for an unknown node, and a database
// error when the atomic removal fails. Object-storage cleanup happens after
// a successful commit and is best-effort.
func (d *ReachabilityDeleter) Delete(ctx context.Context, userID, nodeID string) (*DeleteReport, error) {
	if lifepath.IsRootNodeID(nodeID) {
		return nil, apperrors.NewValidationError(fmt.Sprintf("cannot delete the %q node", lifepath.RootName))
	}

	unlock := d.userLocks.Lock(userID)
	defer unlock()

	if _, err := d.graph.GetNode(ctx, userID, nodeID); err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.NewNotFoundError(fmt.Sprintf("node %q for user %q", nodeID, userID))
		}
		return nil, fmt.Errorf("failed to look up node %q: %w", nodeID, err)
	}

	nodes, err := d.graph.ListNodes(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load nodes: %w", err)
	}
	links, err := d.graph.ListLinks(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load links: %w", err)
	}

	allIDs := make(map[string]bool, len(nodes))
	imageByID := make(map[string]string, len(nodes))
	rootID := ""
	for _, n := range nodes {
		allIDs[n.ID] = true
		if n.ImageName != "" {
			imageByID[n.ID] = n.ImageName
		}
		if rootID == "" && lifepath.IsRootNodeID(n.ID) {
			rootID = n.ID
		}
	}

	reachable := reachableFromRoot(rootID, links, nodeID)

	// Everything not reachable once the target is gone is the cascade;
	// nodes that were already stranded before this delete fall out of the
	// same formula because they were never added to the reachable set.
	cascade := make([]string, 0)
	for id := range allIDs {
		if id != nodeID && !reachable[id] {
			cascade = append(cascade, id)
		}
	}
	sort.Strings(cascade)

	toDelete := append([]string{nodeID}, cascade...)

	imagesToDelete := make([]string, 0, len(toDelete))
	for _, id := range toDelete {
		if name, ok := imageByID[id]; ok {
			imagesToDelete = append(imagesToDelete, name)
		}
	}

	if err := d.graph.DeleteNodesAndLinks(ctx, userID, toDelete); err != nil {
		return nil, apperrors.NewDatabaseError("delete nodes and links", err)
	}

	// The database commit is the source of truth; a failed image removal is
	// logged and never rolls it back.
	deletedImages := make([]string, 0, len(imagesToDelete))
	for _, name := range imagesToDelete {
		if err := d.images.RemoveEventImage(ctx, name); err != nil {
			d.logger.Warn("Failed to delete event image",
				zap.String("imageName", name),
				zap.Error(err),
			)
			continue
		}
		deletedImages = append(deletedImages, name)
	}

	if d.publisher != nil {
		event := ports.GraphEvent{
			Type:      "nodes.deleted",
			UserID:    userID,
			NodeIDs:   toDelete,
			Timestamp: time.Now(),
		}
		if err := d.publisher.Publish(ctx, event); err != nil {
			d.logger.Warn("Failed to publish graph event",
				zap.String("type", event.Type),
				zap.Error(err),
			)
		}
	}

	d.logger.Info("Node deleted with cascade",
		zap.String("userID", userID),
		zap.String("nodeID", nodeID),
		zap.Int("cascadeDeleted", len(cascade)),
		zap.Int("imagesDeleted", len(deletedImages)),
	)

	return &DeleteReport{
		DeletedNode:    nodeID,
		CascadeDeleted: cascade,
		TotalDeleted:   len(toDelete),
		RemainingNodes: len(nodes) - len(toDelete),
		DeletedImages:  deletedImages,
	}, nil
}

// reachableFromRoot computes forward reachability from the root over the
// post-deletion graph: traversal never enters or passes through excluded.
// Iterative DFS with an explicit stack, bounded by the node count.
func reachableFromRoot(rootID string, links []lifepath.Link, excluded string) map[string]bool {
	reachable := make(map[string]bool)
	if rootID == "" || rootID == excluded {
		return reachable
	}

	out := make(map[string][]string, len(links))
	for _, l := range links {
		out[l.Source] = append(out[l.Source], l.Target)
	}

	stack := []string{rootID}
	for len(stack) > 0 {
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if reachable[current] || current == excluded {
			continue
		}
		reachable[current] = true
		for _, target := range out[current] {
			if target != excluded && !reachable[target] {
				stack = append(stack, target)
			}
		}
	}
	return reachable
}
