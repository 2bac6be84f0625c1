// Package session holds the in-memory interview session registry. Sessions
// are not durable: a process restart drops every open conversation, and
// clients are expected to reconnect and start over.
package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Turn is one utterance in an interview conversation.
type Turn struct {
	Role    string    `json:"role"` // "user" or "assistant"
	Content string    `json:"content"`
	SentAt  time.Time `json:"sentAt"`
}

// Session is one live interview conversation for a user. Events pushed with
// Push are consumed by the SSE stream through Events.
type Session struct {
	ID        string
	UserID    string
	CreatedAt time.Time

	mu      sync.Mutex
	history []Turn
	events  chan Turn
	closed  bool
}

// Events returns the channel the SSE handler ranges over. It is closed when
// the session closes.
func (s *Session) Events() <-chan Turn {
	return s.events
}

// Append records a turn in the conversation history.
func (s *Session) Append(turn Turn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = append(s.history, turn)
}

// History returns a copy of the conversation so far.
func (s *Session) History() []Turn {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Turn, len(s.history))
	copy(out, s.history)
	return out
}

// Push delivers a turn to the SSE stream. Pushing to a closed session or a
// stream with no reader is a silent drop so a slow or absent consumer never
// blocks the interview handler.
func (s *Session) Push(turn Turn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	select {
	case s.events <- turn:
	default:
	}
}

func (s *Session) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	close(s.events)
}

// Registry owns every live session, one per user. All lifecycle goes
// through the registry so no handler holds its own session map.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*Session
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]*Session)}
}

// Open returns the user's live session, creating one if none exists.
func (r *Registry) Open(userID string) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.sessions[userID]; ok {
		return s
	}
	s := &Session{
		ID:        uuid.NewString(),
		UserID:    userID,
		CreatedAt: time.Now(),
		events:    make(chan Turn, 16),
	}
	r.sessions[userID] = s
	return s
}

// Get returns the user's live session, or nil.
func (r *Registry) Get(userID string) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sessions[userID]
}

// Close ends and removes the user's session. Returns whether one existed.
func (r *Registry) Close(userID string) bool {
	r.mu.Lock()
	s, ok := r.sessions[userID]
	if ok {
		delete(r.sessions, userID)
	}
	r.mu.Unlock()

	if ok {
		s.close()
	}
	return ok
}
