package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"lifepath-backend/application/ports"
	"lifepath-backend/application/services"
	"lifepath-backend/domain/lifepath"
	"lifepath-backend/infrastructure/persistence/memory"
	"lifepath-backend/pkg/locks"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type noTextGen struct{}

func (noTextGen) Generate(context.Context, string) (string, error) {
	return "", errors.New("text generation disabled in tests")
}

type noImageGen struct{}

func (noImageGen) Generate(context.Context, string, []byte) (*ports.GeneratedImage, error) {
	return nil, nil
}

type noObjectStore struct{}

func (noObjectStore) EnsureBucket(context.Context, string) error { return nil }
func (noObjectStore) GetObject(context.Context, string, string) ([]byte, error) {
	return nil, errors.New("no such key")
}
func (noObjectStore) PutObject(context.Context, string, string, []byte, string) error { return nil }
func (noObjectStore) RemoveObject(context.Context, string, string) error              { return nil }
func (noObjectStore) PresignGet(context.Context, string, string, time.Duration) (string, error) {
	return "", errors.New("presign disabled")
}

func newTestRouter(t *testing.T) (*memory.GraphStore, http.Handler) {
	t.Helper()

	logger := zap.NewNop()
	graph := memory.NewGraphStore()
	userLocks := locks.NewKeyedMutex()

	synth := services.NewSynthesizer(noTextGen{}, time.Second, logger)
	images := services.NewImagePipeline(noObjectStore{}, noImageGen{}, services.ImagePipelineConfig{}, logger)
	assembler := services.NewNodeAssembler(graph, memory.NewProfileStore(), synth, images, nil, userLocks, logger)
	deleter := services.NewReachabilityDeleter(graph, images, nil, userLocks, logger)
	handler := NewGraphHandler(graph, assembler, deleter, logger)

	r := chi.NewRouter()
	r.Post("/api/add-node", handler.AddNode)
	r.Get("/api/get-graph/{userID}", handler.GetGraph)
	r.Post("/api/instantiate/{userID}", handler.Instantiate)
	r.Delete("/api/delete-node/{userID}/{nodeID}", handler.DeleteNode)
	return graph, r
}

func TestAddNodeEndpoint(t *testing.T) {
	_, router := newTestRouter(t)

	t.Run("rejects missing user id", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/add-node", strings.NewReader(`{"num_nodes": 1}`))
		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("rejects malformed body", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/add-node", strings.NewReader(`{`))
		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("creates fallback nodes when generation is down", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/add-node",
			strings.NewReader(`{"user_id": "u1", "num_nodes": 2, "time_in_months": 6}`))
		router.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)

		var body struct {
			Success bool `json:"success"`
			Data    struct {
				NewNodes []lifepath.Node `json:"new_nodes"`
			} `json:"data"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.True(t, body.Success)
		assert.Len(t, body.Data.NewNodes, 2)
	})
}

func TestGetGraphEndpoint(t *testing.T) {
	graph, router := newTestRouter(t)

	_, err := graph.InsertNodeIfAbsent(context.Background(), lifepath.NewRootNode("u1"))
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/get-graph/u1", nil)
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Data struct {
			NodeCount int `json:"node_count"`
			LinkCount int `json:"link_count"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 1, body.Data.NodeCount)
	assert.Zero(t, body.Data.LinkCount)
}

func TestInstantiateEndpointIsIdempotent(t *testing.T) {
	_, router := newTestRouter(t)

	call := func() (int, bool, string) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/instantiate/u1", nil)
		router.ServeHTTP(rec, req)

		var body struct {
			Data struct {
				Created bool   `json:"created"`
				RootID  string `json:"root_id"`
			} `json:"data"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		return rec.Code, body.Data.Created, body.Data.RootID
	}

	code, created, rootID := call()
	assert.Equal(t, http.StatusOK, code)
	assert.True(t, created)
	assert.Equal(t, lifepath.RootNodeID("u1"), rootID)

	code, created, rootID = call()
	assert.Equal(t, http.StatusOK, code)
	assert.False(t, created)
	assert.Equal(t, lifepath.RootNodeID("u1"), rootID)
}

func TestDeleteNodeEndpointStatusMapping(t *testing.T) {
	graph, router := newTestRouter(t)
	root := lifepath.NewRootNode("u1")
	_, err := graph.InsertNodeIfAbsent(context.Background(), root)
	require.NoError(t, err)

	t.Run("root delete is 400", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodDelete, "/api/delete-node/u1/"+root.ID, nil)
		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unknown node is 404", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodDelete, "/api/delete-node/u1/Ghost", nil)
		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("successful delete returns report", func(t *testing.T) {
		_, err := graph.InsertNodeIfAbsent(context.Background(), lifepath.Node{ID: "A", UserID: "u1"})
		require.NoError(t, err)
		_, err = graph.InsertLinkIfAbsent(context.Background(), lifepath.Link{
			ID: lifepath.NewLinkID(root.ID, "A", "u1"), Source: root.ID, Target: "A", UserID: "u1",
		})
		require.NoError(t, err)

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodDelete, "/api/delete-node/u1/A", nil)
		router.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)

		var body struct {
			Data services.DeleteReport `json:"data"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "A", body.Data.DeletedNode)
		assert.Equal(t, 1, body.Data.TotalDeleted)
	})
}
