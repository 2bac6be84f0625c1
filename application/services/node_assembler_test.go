package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"lifepath-backend/application/ports"
	"lifepath-backend/domain/lifepath"
	"lifepath-backend/infrastructure/persistence/memory"
	"lifepath-backend/pkg/locks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type assemblerFixture struct {
	graph     *memory.GraphStore
	profiles  *memory.ProfileStore
	objects   *memObjectStore
	publisher *capturePublisher
	assembler *NodeAssembler
}

func newAssemblerFixture(t *testing.T, textGen ports.TextGenerator, imageGen ports.ImageGenerator) *assemblerFixture {
	t.Helper()

	graph := memory.NewGraphStore()
	profiles := memory.NewProfileStore()
	objects := newMemObjectStore()
	publisher := &capturePublisher{}

	synth := NewSynthesizer(textGen, time.Second, testLogger())
	images := NewImagePipeline(objects, imageGen, ImagePipelineConfig{}, testLogger())
	assembler := NewNodeAssembler(graph, profiles, synth, images, publisher, locks.NewKeyedMutex(), testLogger())

	return &assemblerFixture{
		graph:     graph,
		profiles:  profiles,
		objects:   objects,
		publisher: publisher,
		assembler: assembler,
	}
}

func eventsJSON() string {
	return `[
	  {"name": "Started a Company", "description": "Launched a startup.", "time_months": 8},
	  {"name": "Moved Cities", "description": "Relocated.", "time_months": 3}
	]`
}

func TestAddNodesCreatesNodesAndLinks(t *testing.T) {
	ctx := context.Background()
	f := newAssemblerFixture(t,
		&stubTextGenerator{response: eventsJSON()},
		&stubImageGenerator{image: &ports.GeneratedImage{Data: []byte("img"), MIMEType: "image/png"}},
	)

	root := lifepath.NewRootNode("u1")
	_, err := f.graph.InsertNodeIfAbsent(ctx, root)
	require.NoError(t, err)

	nodes, err := f.assembler.AddNodes(ctx, AddNodeInput{
		UserID:        "u1",
		PriorNodes:    []lifepath.Node{root},
		ClickedNodeID: root.ID,
		TimeInMonths:  6,
		NumNodes:      2,
	})
	require.NoError(t, err)
	require.Len(t, nodes, 2)

	assert.Equal(t, "Started a Company", nodes[0].ID)
	assert.Equal(t, "Moved Cities", nodes[1].ID)
	assert.NotEmpty(t, nodes[0].ImageName)
	assert.NotEmpty(t, nodes[0].ImageURL)

	stored, err := f.graph.ListNodes(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, stored, 3, "root plus two new nodes")

	links, err := f.graph.ListLinks(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, links, 2)
	for _, l := range links {
		assert.Equal(t, root.ID, l.Source)
		assert.Equal(t, 6, l.TimeInMonths)
		assert.Equal(t, lifepath.NewLinkID(l.Source, l.Target, "u1"), l.ID)
	}

	require.Len(t, f.publisher.events, 1)
	assert.Equal(t, "nodes.created", f.publisher.events[0].Type)
}

func TestAddNodesDerivesUniqueIDs(t *testing.T) {
	ctx := context.Background()
	f := newAssemblerFixture(t,
		&stubTextGenerator{response: `[
		  {"name": "Big Career Change Happens Now", "description": "a"},
		  {"name": "Big Career Change For Real", "description": "b"},
		  {"name": "Big Career Change Again", "description": "c"}
		]`},
		&stubImageGenerator{},
	)

	nodes, err := f.assembler.AddNodes(ctx, AddNodeInput{UserID: "u1", NumNodes: 3})
	require.NoError(t, err)
	require.Len(t, nodes, 3)

	// All three names share the same first three words; suffixes keep the
	// ids unique and assignment order follows candidate order.
	assert.Equal(t, "Big Career Change", nodes[0].ID)
	assert.Equal(t, "Big Career Change 1", nodes[1].ID)
	assert.Equal(t, "Big Career Change 2", nodes[2].ID)
}

func TestAddNodesImageFailureIsIsolated(t *testing.T) {
	ctx := context.Background()
	f := newAssemblerFixture(t,
		&stubTextGenerator{response: eventsJSON()},
		&stubImageGenerator{err: errors.New("image model down")},
	)

	nodes, err := f.assembler.AddNodes(ctx, AddNodeInput{UserID: "u1", NumNodes: 2})
	require.NoError(t, err, "image failures must not fail the request")
	require.Len(t, nodes, 2)
	for _, n := range nodes {
		assert.Empty(t, n.ImageName)
		assert.Empty(t, n.ImageURL)
	}

	stored, err := f.graph.ListNodes(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, stored, 2, "nodes persist without images")
}

func TestAddNodesCreatesPlaceholderForUnknownClickedNode(t *testing.T) {
	ctx := context.Background()
	f := newAssemblerFixture(t,
		&stubTextGenerator{response: eventsJSON()},
		&stubImageGenerator{},
	)

	_, err := f.assembler.AddNodes(ctx, AddNodeInput{
		UserID:        "u1",
		ClickedNodeID: "Mystery Node",
		NumNodes:      1,
	})
	require.NoError(t, err)

	placeholder, err := f.graph.GetNode(ctx, "u1", "Mystery Node")
	require.NoError(t, err)
	assert.Equal(t, "life-event", placeholder.Type)
	assert.Equal(t, "Life event: Mystery Node", placeholder.Description)
}

func TestAddNodesGeneratorFailureStillPersists(t *testing.T) {
	ctx := context.Background()
	f := newAssemblerFixture(t,
		&stubTextGenerator{err: errors.New("model down")},
		&stubImageGenerator{},
	)

	nodes, err := f.assembler.AddNodes(ctx, AddNodeInput{UserID: "u1", NumNodes: 2})
	require.NoError(t, err)
	require.Len(t, nodes, 2)
	for _, n := range nodes {
		assert.Equal(t, "fallback", n.Type)
	}
}

func TestAddNodesDefaultsNumNodesToOne(t *testing.T) {
	f := newAssemblerFixture(t,
		&stubTextGenerator{err: errors.New("down")},
		&stubImageGenerator{},
	)

	nodes, err := f.assembler.AddNodes(context.Background(), AddNodeInput{UserID: "u1", NumNodes: 0})
	require.NoError(t, err)
	assert.Len(t, nodes, 1)
}

// failingGraphStore wraps the in-memory store and fails PersistBatch.
type failingGraphStore struct {
	*memory.GraphStore
}

func (f *failingGraphStore) PersistBatch(_ context.Context, _ []lifepath.Node, _ []lifepath.Link) error {
	return errors.New("table unavailable")
}

func TestAddNodesPersistenceFailureSurfaces(t *testing.T) {
	graph := &failingGraphStore{GraphStore: memory.NewGraphStore()}
	synth := NewSynthesizer(&stubTextGenerator{err: errors.New("down")}, time.Second, testLogger())
	images := NewImagePipeline(newMemObjectStore(), &stubImageGenerator{}, ImagePipelineConfig{}, testLogger())
	assembler := NewNodeAssembler(graph, memory.NewProfileStore(), synth, images, nil, locks.NewKeyedMutex(), testLogger())

	_, err := assembler.AddNodes(context.Background(), AddNodeInput{UserID: "u1", NumNodes: 1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "persist")
}
