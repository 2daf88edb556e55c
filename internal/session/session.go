package session

import (
	"errors"
	"time"

	"github.com/noah-isme/backend-videoquote/internal/idea"
	"github.com/noah-isme/backend-videoquote/internal/selection"
)

var (
	// ErrNotFound is returned for unknown or expired sessions.
	ErrNotFound = errors.New("session: not found")
	// ErrBusy is returned when another generation holds the session lock.
	ErrBusy = errors.New("session: generation already in progress")
	// ErrInvalidInput is returned for malformed session data.
	ErrInvalidInput = errors.New("session: invalid input")
)

// Session is the server-side working state of one quote.
type Session struct {
	ID          string           `json:"id"`
	CompanyName string           `json:"companyName"`
	Activity    string           `json:"activity"`
	Language    string           `json:"language"`
	Pool        []idea.VideoIdea `json:"pool"`
	Selected    []string         `json:"selected"`
	CreatedAt   time.Time        `json:"createdAt"`
	UpdatedAt   time.Time        `json:"updatedAt"`
}

// Selection rebuilds the selection store over the session pool.
func (s Session) Selection() *selection.Store {
	return selection.New(s.Pool, s.Selected)
}

// SelectedIdeas returns the selected ideas in selection order.
func (s Session) SelectedIdeas() []idea.VideoIdea {
	return s.Selection().Items()
}

func (s *Session) applySelection(sel *selection.Store) {
	s.Selected = sel.IDs()
}
