package handlers

import (
	"net/http"

	"lifepath-backend/application/ports"
	"lifepath-backend/application/services"
	"lifepath-backend/domain/lifepath"
	"lifepath-backend/pkg/common"
	apperrors "lifepath-backend/pkg/errors"
	"lifepath-backend/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// GraphHandler handles graph-related HTTP requests
type GraphHandler struct {
	graph     ports.GraphStore
	assembler *services.NodeAssembler
	deleter   *services.ReachabilityDeleter
	logger    *zap.Logger
}

// NewGraphHandler creates a new graph handler
func NewGraphHandler(
	graph ports.GraphStore,
	assembler *services.NodeAssembler,
	deleter *services.ReachabilityDeleter,
	logger *zap.Logger,
) *GraphHandler {
	return &GraphHandler{
		graph:     graph,
		assembler: assembler,
		deleter:   deleter,
		logger:    logger,
	}
}

// AddNodeRequest represents the request body for adding nodes
type AddNodeRequest struct {
	UserID        string          `json:"user_id" validate:"required"`
	PreviousNodes []lifepath.Node `json:"previous_nodes"`
	ClickedNodeID string          `json:"clicked_node_id"`
	Prompt        string          `json:"prompt"`
	NodeType      string          `json:"node_type"`
	TimeInMonths  int             `json:"time_in_months"`
	Positivity    int             `json:"positivity"`
	NumNodes      int             `json:"num_nodes" validate:"omitempty,min=1,max=10"`
}

// AddNode handles POST /api/add-node
func (h *GraphHandler) AddNode(w http.ResponseWriter, r *http.Request) {
	var req AddNodeRequest
	if err := common.ParseJSONBody(r, &req, 1<<20); err != nil {
		common.RespondError(w, http.StatusBadRequest, "BAD_REQUEST", "Invalid request body: "+err.Error())
		return
	}

	if err := utils.ValidateStruct(req); err != nil {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	nodes, err := h.assembler.AddNodes(r.Context(), services.AddNodeInput{
		UserID:        req.UserID,
		PriorNodes:    req.PreviousNodes,
		ClickedNodeID: req.ClickedNodeID,
		Prompt:        req.Prompt,
		NodeType:      req.NodeType,
		TimeInMonths:  req.TimeInMonths,
		Positivity:    req.Positivity,
		NumNodes:      req.NumNodes,
	})
	if err != nil {
		h.logger.Error("Failed to add nodes",
			zap.String("userID", req.UserID),
			zap.Error(err),
		)
		h.respondAppError(w, err, "Failed to add nodes")
		return
	}

	common.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"new_nodes": nodes,
	})
}

// GetGraph handles GET /api/get-graph/{userID}
func (h *GraphHandler) GetGraph(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	if userID == "" {
		common.RespondError(w, http.StatusBadRequest, "BAD_REQUEST", "User ID is required")
		return
	}

	nodes, err := h.graph.ListNodes(r.Context(), userID)
	if err != nil {
		h.logger.Error("Failed to list nodes", zap.String("userID", userID), zap.Error(err))
		common.RespondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load graph")
		return
	}
	links, err := h.graph.ListLinks(r.Context(), userID)
	if err != nil {
		h.logger.Error("Failed to list links", zap.String("userID", userID), zap.Error(err))
		common.RespondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load graph")
		return
	}

	common.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"nodes":      nodes,
		"links":      links,
		"node_count": len(nodes),
		"link_count": len(links),
	})
}

// Instantiate handles POST /api/instantiate/{userID}
func (h *GraphHandler) Instantiate(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	if userID == "" {
		common.RespondError(w, http.StatusBadRequest, "BAD_REQUEST", "User ID is required")
		return
	}

	created, rootID, err := h.graph.InstantiateRoot(r.Context(), userID)
	if err != nil {
		h.logger.Error("Failed to instantiate root", zap.String("userID", userID), zap.Error(err))
		common.RespondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to instantiate graph")
		return
	}

	common.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"created": created,
		"root_id": rootID,
	})
}

// DeleteNode handles DELETE /api/delete-node/{userID}/{nodeID}
func (h *GraphHandler) DeleteNode(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	nodeID := chi.URLParam(r, "nodeID")
	if userID == "" || nodeID == "" {
		common.RespondError(w, http.StatusBadRequest, "BAD_REQUEST", "User ID and node ID are required")
		return
	}

	report, err := h.deleter.Delete(r.Context(), userID, nodeID)
	if err != nil {
		h.logger.Error("Failed to delete node",
			zap.String("userID", userID),
			zap.String("nodeID", nodeID),
			zap.Error(err),
		)
		h.respondAppError(w, err, "Failed to delete node")
		return
	}

	common.RespondJSON(w, http.StatusOK, report)
}

// respondAppError maps a typed application error onto its HTTP status,
// falling back to 500 for anything untyped.
func (h *GraphHandler) respondAppError(w http.ResponseWriter, err error, fallback string) {
	if appErr := apperrors.GetAppError(err); appErr != nil {
		common.RespondError(w, appErr.HTTPStatus, string(appErr.Type), appErr.Message)
		return
	}
	common.RespondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", fallback)
}
