package handlers

import (
	"net/http"

	"lifepath-backend/application/ports"
	"lifepath-backend/domain/lifepath"
	"lifepath-backend/pkg/common"
	"lifepath-backend/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ProfileHandler handles user profile HTTP requests
type ProfileHandler struct {
	profiles ports.ProfileStore
	logger   *zap.Logger
}

// NewProfileHandler creates a new profile handler
func NewProfileHandler(profiles ports.ProfileStore, logger *zap.Logger) *ProfileHandler {
	return &ProfileHandler{profiles: profiles, logger: logger}
}

// SaveProfileRequest represents the request body for saving personal info
type SaveProfileRequest struct {
	UserID      string `json:"user_id" validate:"required"`
	Name        string `json:"name"`
	Gender      string `json:"gender"`
	Title       string `json:"title"`
	Location    string `json:"location"`
	Bio         string `json:"bio"`
	Summary     string `json:"summary"`
	Background  string `json:"background"`
	Skills      string `json:"skills"`
	Interests   string `json:"interests"`
	Goal        string `json:"goal"`
	Aspirations string `json:"aspirations"`
	Values      string `json:"values"`
	Challenges  string `json:"challenges"`
}

// SaveProfile handles POST /api/save-personal-info
func (h *ProfileHandler) SaveProfile(w http.ResponseWriter, r *http.Request) {
	var req SaveProfileRequest
	if err := common.ParseJSONBody(r, &req, 1<<20); err != nil {
		common.RespondError(w, http.StatusBadRequest, "BAD_REQUEST", "Invalid request body: "+err.Error())
		return
	}

	if err := utils.ValidateStruct(req); err != nil {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	profile := lifepath.UserProfile{
		UserID:      req.UserID,
		Name:        req.Name,
		Gender:      req.Gender,
		Title:       req.Title,
		Location:    req.Location,
		Bio:         req.Bio,
		Summary:     req.Summary,
		Background:  req.Background,
		Skills:      req.Skills,
		Interests:   req.Interests,
		Goal:        req.Goal,
		Aspirations: req.Aspirations,
		Values:      req.Values,
		Challenges:  req.Challenges,
	}

	if err := h.profiles.SaveProfile(r.Context(), profile); err != nil {
		h.logger.Error("Failed to save profile", zap.String("userID", req.UserID), zap.Error(err))
		common.RespondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to save personal info")
		return
	}

	common.RespondJSON(w, http.StatusOK, map[string]string{
		"message": "Personal info saved",
	})
}

// GetProfile handles GET /api/personal-info/{userID}
func (h *ProfileHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	if userID == "" {
		common.RespondError(w, http.StatusBadRequest, "BAD_REQUEST", "User ID is required")
		return
	}

	profile, err := h.profiles.GetProfile(r.Context(), userID)
	if err != nil {
		h.logger.Error("Failed to load profile", zap.String("userID", userID), zap.Error(err))
		common.RespondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load personal info")
		return
	}
	if profile == nil {
		common.RespondError(w, http.StatusNotFound, "NOT_FOUND", "No personal info for user")
		return
	}

	common.RespondJSON(w, http.StatusOK, profile)
}
