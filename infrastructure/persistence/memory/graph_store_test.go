package memory

import (
	"context"
	"testing"
	"time"

	"lifepath-backend/domain/lifepath"
	apperrors "lifepath-backend/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInsertNodeIfAbsentIsIdempotent(t *testing.T) {
	ctx := context.Background()
	s := NewGraphStore()

	node := lifepath.Node{ID: "A", Name: "first", UserID: "u1", CreatedAt: time.Now()}
	written, err := s.InsertNodeIfAbsent(ctx, node)
	require.NoError(t, err)
	assert.True(t, written)

	// Second insert with the same id is a no-op and keeps the original.
	node.Name = "second"
	written, err = s.InsertNodeIfAbsent(ctx, node)
	require.NoError(t, err)
	assert.False(t, written)

	got, err := s.GetNode(ctx, "u1", "A")
	require.NoError(t, err)
	assert.Equal(t, "first", got.Name)
}

func TestGetNodeNotFound(t *testing.T) {
	s := NewGraphStore()
	_, err := s.GetNode(context.Background(), "u1", "missing")
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestListNodesOrderedByCreation(t *testing.T) {
	ctx := context.Background()
	s := NewGraphStore()
	base := time.Now()

	for i, id := range []string{"C", "A", "B"} {
		_, err := s.InsertNodeIfAbsent(ctx, lifepath.Node{
			ID:        id,
			UserID:    "u1",
			CreatedAt: base.Add(time.Duration(i) * time.Second),
		})
		require.NoError(t, err)
	}

	nodes, err := s.ListNodes(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, nodes, 3)
	assert.Equal(t, "C", nodes[0].ID)
	assert.Equal(t, "A", nodes[1].ID)
	assert.Equal(t, "B", nodes[2].ID)
}

func TestUsersAreIsolated(t *testing.T) {
	ctx := context.Background()
	s := NewGraphStore()

	_, err := s.InsertNodeIfAbsent(ctx, lifepath.Node{ID: "A", UserID: "u1"})
	require.NoError(t, err)

	nodes, err := s.ListNodes(ctx, "u2")
	require.NoError(t, err)
	assert.Empty(t, nodes)

	_, err = s.GetNode(ctx, "u2", "A")
	assert.Error(t, err)
}

func TestDeleteNodesAndLinksRemovesTouchingLinks(t *testing.T) {
	ctx := context.Background()
	s := NewGraphStore()

	for _, id := range []string{"Now-u1", "A", "B"} {
		_, err := s.InsertNodeIfAbsent(ctx, lifepath.Node{ID: id, UserID: "u1"})
		require.NoError(t, err)
	}
	for _, l := range []lifepath.Link{
		{ID: "Now-u1-A-u1", Source: "Now-u1", Target: "A", UserID: "u1"},
		{ID: "A-B-u1", Source: "A", Target: "B", UserID: "u1"},
	} {
		_, err := s.InsertLinkIfAbsent(ctx, l)
		require.NoError(t, err)
	}

	require.NoError(t, s.DeleteNodesAndLinks(ctx, "u1", []string{"A", "B"}))

	nodes, err := s.ListNodes(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, nodes, 1)
	assert.Equal(t, "Now-u1", nodes[0].ID)

	links, err := s.ListLinks(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, links)
}

func TestInstantiateRoot(t *testing.T) {
	ctx := context.Background()
	s := NewGraphStore()

	created, rootID, err := s.InstantiateRoot(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, lifepath.RootNodeID("u1"), rootID)

	// Second call finds the existing root.
	created, rootID, err = s.InstantiateRoot(ctx, "u1")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, lifepath.RootNodeID("u1"), rootID)
}

func TestInstantiateRootAcceptsLegacyRoot(t *testing.T) {
	ctx := context.Background()
	s := NewGraphStore()

	_, err := s.InsertNodeIfAbsent(ctx, lifepath.Node{ID: "Now", Name: "Now", UserID: "u1"})
	require.NoError(t, err)

	created, rootID, err := s.InstantiateRoot(ctx, "u1")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, "Now", rootID)
}

func TestProfileStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := NewProfileStore()

	got, err := s.GetProfile(ctx, "u1")
	require.NoError(t, err)
	assert.Nil(t, got, "missing profile is nil, not an error")

	profile := lifepath.UserProfile{UserID: "u1", Name: "Ada", Skills: "robotics"}
	require.NoError(t, s.SaveProfile(ctx, profile))

	got, err = s.GetProfile(ctx, "u1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Ada", got.Name)

	// Upsert overwrites.
	profile.Name = "Ada L."
	require.NoError(t, s.SaveProfile(ctx, profile))
	got, err = s.GetProfile(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "Ada L.", got.Name)
}
