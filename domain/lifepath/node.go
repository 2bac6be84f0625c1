// Package lifepath holds the core data model for a user's life-path graph:
// event nodes, directed links between them, and the synthetic root that
// anchors reachability.
package lifepath

import (
	"fmt"
	"strings"
	"time"
)

// RootName is the display name of the synthetic root node.
const RootName = "Now"

// rootPrefix is the per-user root id prefix ("Now-{userId}").
const rootPrefix = RootName + "-"

// Node is a single life event in a user's graph, or the synthetic root.
// ImageName and ImageURL are derived, regenerable fields and are not
// authoritative.
type Node struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	Type         string    `json:"type"`
	TimeInMonths int       `json:"timeInMonths"`
	ImageName    string    `json:"imageName"`
	ImageURL     string    `json:"imageUrl"`
	CreatedAt    time.Time `json:"createdAt"`
	UserID       string    `json:"userId"`
}

// Link is a directed edge source → target within one user's graph.
// TimeInMonths is the elapsed time represented by traversing the edge.
type Link struct {
	ID           string `json:"id"`
	Source       string `json:"source"`
	Target       string `json:"target"`
	TimeInMonths int    `json:"timeInMonths"`
	UserID       string `json:"userId"`
}

// NewLinkID derives the link id from its endpoints, so at most one link
// exists per ordered pair per user.
func NewLinkID(source, target, userID string) string {
	return fmt.Sprintf("%s-%s-%s", source, target, userID)
}

// RootNodeID returns the reserved root id for a user.
func RootNodeID(userID string) string {
	return rootPrefix + userID
}

// IsRootNodeID reports whether id matches the reserved root pattern.
// Graphs created before roots were user-scoped use the bare "Now" id, so
// both forms are accepted on reads.
func IsRootNodeID(id string) bool {
	return id == RootName || strings.HasPrefix(id, rootPrefix)
}

// NewRootNode builds the synthetic root for a user. The root always has
// TimeInMonths 0 and is never deleted.
func NewRootNode(userID string) Node {
	return Node{
		ID:           RootNodeID(userID),
		Name:         RootName,
		Title:        "Your Current Position in Life",
		Description:  "This represents your current position in life",
		Type:         "self",
		TimeInMonths: 0,
		CreatedAt:    time.Now(),
		UserID:       userID,
	}
}

// NewPlaceholderNode builds a minimal node for a clicked id that was not
// supplied in the prior-node list, so link foreign keys stay satisfiable.
func NewPlaceholderNode(id, userID string) Node {
	return Node{
		ID:           id,
		Name:         id,
		Title:        id,
		Description:  "Life event: " + id,
		Type:         "life-event",
		TimeInMonths: 1,
		CreatedAt:    time.Now(),
		UserID:       userID,
	}
}

// EventCandidate is a generated, not-yet-persisted life event. It is the
// single representation of generator output between synthesis and
// persistence; image fields are filled in by the image pipeline and stay
// empty on failure.
type EventCandidate struct {
	Name            string `json:"name"`
	Title           string `json:"title"`
	Description     string `json:"description"`
	Type            string `json:"type"`
	TimeMonths      int    `json:"time_months"`
	PositivityScore int    `json:"positivity_score"`
	ImageName       string `json:"image_name"`
	ImageURL        string `json:"image_url"`
}

// UserProfile carries the biographical context gathered by the interviewer.
// All fields are optional; prompts reference the user by Name, never by
// pronoun, whenever a profile is present.
type UserProfile struct {
	UserID      string `json:"userId"`
	Name        string `json:"name"`
	Gender      string `json:"gender,omitempty"`
	Title       string `json:"title,omitempty"`
	Location    string `json:"location,omitempty"`
	Bio         string `json:"bio,omitempty"`
	Summary     string `json:"summary,omitempty"`
	Background  string `json:"background,omitempty"`
	Skills      string `json:"skills,omitempty"`
	Interests   string `json:"interests,omitempty"`
	Goal        string `json:"goal,omitempty"`
	Aspirations string `json:"aspirations,omitempty"`
	Values      string `json:"values,omitempty"`
	Challenges  string `json:"challenges,omitempty"`
}

// DisplayName returns the name to address the user by in prompts.
func (p *UserProfile) DisplayName() string {
	if p == nil || p.Name == "" {
		return "the user"
	}
	return p.Name
}
