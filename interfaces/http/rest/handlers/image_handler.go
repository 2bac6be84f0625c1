package handlers

import (
	"io"
	"net/http"

	"lifepath-backend/application/ports"
	"lifepath-backend/application/services"
	"lifepath-backend/pkg/common"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// maxUploadBytes caps reference portrait uploads at 10 MiB.
const maxUploadBytes = 10 << 20

// ImageHandler handles reference-portrait HTTP requests
type ImageHandler struct {
	objects ports.ObjectStore
	bucket  string
	logger  *zap.Logger
}

// NewImageHandler creates a new image handler. bucket is the reference
// portrait bucket.
func NewImageHandler(objects ports.ObjectStore, bucket string, logger *zap.Logger) *ImageHandler {
	return &ImageHandler{objects: objects, bucket: bucket, logger: logger}
}

// UserImageExists handles GET /api/user-image-exists/{userID}
func (h *ImageHandler) UserImageExists(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	if userID == "" {
		common.RespondError(w, http.StatusBadRequest, "BAD_REQUEST", "User ID is required")
		return
	}

	// Absence is a valid answer, not an error.
	_, err := h.objects.GetObject(r.Context(), h.bucket, services.ReferenceImageKey(userID))
	common.RespondJSON(w, http.StatusOK, map[string]bool{
		"exists": err == nil,
	})
}

// UploadUserImage handles POST /api/upload-user-image/{userID}. The portrait
// is stored as {userId}.png, overwriting any previous upload.
func (h *ImageHandler) UploadUserImage(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	if userID == "" {
		common.RespondError(w, http.StatusBadRequest, "BAD_REQUEST", "User ID is required")
		return
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		common.RespondError(w, http.StatusBadRequest, "BAD_REQUEST", "Invalid multipart form: "+err.Error())
		return
	}

	file, _, err := r.FormFile("image")
	if err != nil {
		common.RespondError(w, http.StatusBadRequest, "BAD_REQUEST", "Missing image file")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxUploadBytes))
	if err != nil {
		common.RespondError(w, http.StatusBadRequest, "BAD_REQUEST", "Failed to read image file")
		return
	}
	if len(data) == 0 {
		common.RespondError(w, http.StatusBadRequest, "BAD_REQUEST", "Empty image file")
		return
	}

	if err := h.objects.EnsureBucket(r.Context(), h.bucket); err != nil {
		h.logger.Warn("Could not ensure bucket", zap.String("bucket", h.bucket), zap.Error(err))
	}

	key := services.ReferenceImageKey(userID)
	if err := h.objects.PutObject(r.Context(), h.bucket, key, data, "image/png"); err != nil {
		h.logger.Error("Failed to upload reference portrait",
			zap.String("userID", userID),
			zap.Error(err),
		)
		common.RespondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to store image")
		return
	}

	common.RespondJSON(w, http.StatusOK, map[string]string{
		"message":  "Image uploaded",
		"filename": key,
	})
}
