// Package memory provides in-memory implementations of the persistence
// ports for local development and tests. Semantics mirror the DynamoDB
// implementations, including insert-if-absent and all-or-nothing delete.
package memory

import (
	"context"
	"sort"
	"sync"

	"lifepath-backend/application/ports"
	"lifepath-backend/domain/lifepath"
	apperrors "lifepath-backend/pkg/errors"
)

// GraphStore is a thread-safe in-memory ports.GraphStore.
type GraphStore struct {
	mu    sync.RWMutex
	nodes map[string]map[string]lifepath.Node // userID -> nodeID -> node
	links map[string]map[string]lifepath.Link // userID -> linkID -> link
}

// NewGraphStore creates an empty GraphStore.
func NewGraphStore() *GraphStore {
	return &GraphStore{
		nodes: make(map[string]map[string]lifepath.Node),
		links: make(map[string]map[string]lifepath.Link),
	}
}

func (s *GraphStore) userNodes(userID string) map[string]lifepath.Node {
	m, ok := s.nodes[userID]
	if !ok {
		m = make(map[string]lifepath.Node)
		s.nodes[userID] = m
	}
	return m
}

func (s *GraphStore) userLinks(userID string) map[string]lifepath.Link {
	m, ok := s.links[userID]
	if !ok {
		m = make(map[string]lifepath.Link)
		s.links[userID] = m
	}
	return m
}

// InsertNodeIfAbsent writes the node unless its id already exists.
func (s *GraphStore) InsertNodeIfAbsent(_ context.Context, node lifepath.Node) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m := s.userNodes(node.UserID)
	if _, exists := m[node.ID]; exists {
		return false, nil
	}
	m[node.ID] = node
	return true, nil
}

// InsertLinkIfAbsent writes the link unless its id already exists.
func (s *GraphStore) InsertLinkIfAbsent(_ context.Context, link lifepath.Link) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m := s.userLinks(link.UserID)
	if _, exists := m[link.ID]; exists {
		return false, nil
	}
	m[link.ID] = link
	return true, nil
}

// ListNodes returns every node for the user, ordered by creation time.
func (s *GraphStore) ListNodes(_ context.Context, userID string) ([]lifepath.Node, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	nodes := make([]lifepath.Node, 0, len(s.nodes[userID]))
	for _, n := range s.nodes[userID] {
		nodes = append(nodes, n)
	}
	sort.SliceStable(nodes, func(i, j int) bool {
		if nodes[i].CreatedAt.Equal(nodes[j].CreatedAt) {
			return nodes[i].ID < nodes[j].ID
		}
		return nodes[i].CreatedAt.Before(nodes[j].CreatedAt)
	})
	return nodes, nil
}

// ListLinks returns every link for the user.
func (s *GraphStore) ListLinks(_ context.Context, userID string) ([]lifepath.Link, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	links := make([]lifepath.Link, 0, len(s.links[userID]))
	for _, l := range s.links[userID] {
		links = append(links, l)
	}
	sort.Slice(links, func(i, j int) bool { return links[i].ID < links[j].ID })
	return links, nil
}

// GetNode returns the node with the given id, or a not-found error.
func (s *GraphStore) GetNode(_ context.Context, userID, nodeID string) (*lifepath.Node, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n, ok := s.nodes[userID][nodeID]
	if !ok {
		return nil, apperrors.NewNotFoundError("node " + nodeID)
	}
	return &n, nil
}

// PersistBatch inserts the batch under a single lock, so it is atomic
// with respect to every other store operation.
func (s *GraphStore) PersistBatch(_ context.Context, nodes []lifepath.Node, links []lifepath.Link) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, node := range nodes {
		m := s.userNodes(node.UserID)
		if _, exists := m[node.ID]; !exists {
			m[node.ID] = node
		}
	}
	for _, link := range links {
		m := s.userLinks(link.UserID)
		if _, exists := m[link.ID]; !exists {
			m[link.ID] = link
		}
	}
	return nil
}

// DeleteNodesAndLinks removes the nodes and every link touching them.
func (s *GraphStore) DeleteNodesAndLinks(_ context.Context, userID string, nodeIDs []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	inSet := make(map[string]bool, len(nodeIDs))
	for _, id := range nodeIDs {
		inSet[id] = true
	}

	for id, l := range s.links[userID] {
		if inSet[l.Source] || inSet[l.Target] {
			delete(s.links[userID], id)
		}
	}
	for _, id := range nodeIDs {
		delete(s.nodes[userID], id)
	}
	return nil
}

// InstantiateRoot creates the user's root node if none exists.
func (s *GraphStore) InstantiateRoot(_ context.Context, userID string) (bool, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id := range s.nodes[userID] {
		if lifepath.IsRootNodeID(id) {
			return false, id, nil
		}
	}
	root := lifepath.NewRootNode(userID)
	s.userNodes(userID)[root.ID] = root
	return true, root.ID, nil
}

// ProfileStore is a thread-safe in-memory ports.ProfileStore.
type ProfileStore struct {
	mu       sync.RWMutex
	profiles map[string]lifepath.UserProfile
}

// NewProfileStore creates an empty ProfileStore.
func NewProfileStore() *ProfileStore {
	return &ProfileStore{profiles: make(map[string]lifepath.UserProfile)}
}

// GetProfile returns the user's profile, or nil when none is stored.
func (s *ProfileStore) GetProfile(_ context.Context, userID string) (*lifepath.UserProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.profiles[userID]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

// SaveProfile upserts the profile.
func (s *ProfileStore) SaveProfile(_ context.Context, profile lifepath.UserProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.profiles[profile.UserID] = profile
	return nil
}

var (
	_ ports.GraphStore   = (*GraphStore)(nil)
	_ ports.ProfileStore = (*ProfileStore)(nil)
)
