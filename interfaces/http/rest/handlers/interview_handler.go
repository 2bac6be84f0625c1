package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"lifepath-backend/application/ports"
	"lifepath-backend/application/session"
	"lifepath-backend/pkg/common"
	"lifepath-backend/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// InterviewHandler serves the conversational interview surface: an SSE
// stream of turns per user plus send/close endpoints. Sessions are held in
// the registry and do not survive a restart.
type InterviewHandler struct {
	sessions  *session.Registry
	generator ports.TextGenerator
	timeout   time.Duration
	logger    *zap.Logger
}

// NewInterviewHandler creates a new interview handler.
func NewInterviewHandler(sessions *session.Registry, generator ports.TextGenerator, timeout time.Duration, logger *zap.Logger) *InterviewHandler {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &InterviewHandler{
		sessions:  sessions,
		generator: generator,
		timeout:   timeout,
		logger:    logger,
	}
}

// Events handles GET /api/interview/events/{userID} as an SSE stream.
// The stream stays open until the client disconnects or the session closes.
func (h *InterviewHandler) Events(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	if userID == "" {
		common.RespondError(w, http.StatusBadRequest, "BAD_REQUEST", "User ID is required")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		common.RespondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Streaming not supported")
		return
	}

	sess := h.sessions.Open(userID)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case turn, open := <-sess.Events():
			if !open {
				return
			}
			payload, err := json.Marshal(turn)
			if err != nil {
				h.logger.Error("Failed to marshal interview turn", zap.Error(err))
				continue
			}
			fmt.Fprintf(w, "data: %s\n\n", payload)
			flusher.Flush()
		}
	}
}

// SendRequest represents the request body for an interview message
type SendRequest struct {
	Message string `json:"message" validate:"required"`
}

// Send handles POST /api/interview/send/{userID}: records the user's turn,
// asks the generator for the next interviewer turn, and pushes both onto
// the user's event stream.
func (h *InterviewHandler) Send(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	if userID == "" {
		common.RespondError(w, http.StatusBadRequest, "BAD_REQUEST", "User ID is required")
		return
	}

	var req SendRequest
	if err := common.ParseJSONBody(r, &req, 64<<10); err != nil {
		common.RespondError(w, http.StatusBadRequest, "BAD_REQUEST", "Invalid request body: "+err.Error())
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	sess := h.sessions.Open(userID)

	userTurn := session.Turn{Role: "user", Content: req.Message, SentAt: time.Now()}
	sess.Append(userTurn)
	sess.Push(userTurn)

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	reply, err := h.generator.Generate(ctx, interviewPrompt(sess.History()))
	if err != nil {
		h.logger.Error("Interview generation failed",
			zap.String("userID", userID),
			zap.Error(err),
		)
		common.RespondError(w, http.StatusBadGateway, "EXTERNAL_ERROR", "Interviewer is unavailable")
		return
	}

	assistantTurn := session.Turn{Role: "assistant", Content: reply, SentAt: time.Now()}
	sess.Append(assistantTurn)
	sess.Push(assistantTurn)

	common.RespondJSON(w, http.StatusOK, assistantTurn)
}

// CloseSession handles DELETE /api/interview/session/{userID}
func (h *InterviewHandler) CloseSession(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	if userID == "" {
		common.RespondError(w, http.StatusBadRequest, "BAD_REQUEST", "User ID is required")
		return
	}

	existed := h.sessions.Close(userID)
	if !existed {
		common.RespondError(w, http.StatusNotFound, "NOT_FOUND", "No active session for user")
		return
	}

	common.RespondJSON(w, http.StatusOK, map[string]string{
		"message": "Session closed",
	})
}

// interviewPrompt renders the conversation so far for the generator. The
// interviewer persona gathers the biographical fields the profile stores.
func interviewPrompt(history []session.Turn) string {
	var b strings.Builder
	b.WriteString("You are a warm, concise interviewer helping someone describe their life ")
	b.WriteString("for a personalized life-path visualization. Ask one question at a time ")
	b.WriteString("about their background, skills, interests, values, goals, and challenges.\n\n")
	b.WriteString("Conversation so far:\n")
	for _, turn := range history {
		fmt.Fprintf(&b, "%s: %s\n", turn.Role, turn.Content)
	}
	b.WriteString("\nRespond with the interviewer's next message only.")
	return b.String()
}
