package share

import (
	"context"
	"errors"
	"time"

	"github.com/noah-isme/backend-videoquote/internal/idea"
)

// Identifier shape: six digits without a leading zero.
const (
	IDMin         = 100000
	IDMax         = 999999
	IDLength      = 6
	MaxIDAttempts = 5
)

var (
	// ErrInvalidInput is returned for incomplete snapshots or malformed identifiers.
	ErrInvalidInput = errors.New("share: invalid input")
	// ErrIDExhausted is returned when every drawn identifier was already taken.
	ErrIDExhausted = errors.New("share: could not allocate a free identifier")
)

// Snapshot is a persisted copy of a session. Snapshots are never updated.
type Snapshot struct {
	ID            string           `json:"id"`
	CompanyName   string           `json:"companyName"`
	Activity      string           `json:"activity"`
	AllIdeas      []idea.VideoIdea `json:"allIdeas"`
	SelectedIdeas []idea.VideoIdea `json:"selectedIdeas"`
	CreatedAt     time.Time        `json:"createdAt"`
}

// Store persists snapshots keyed by identifier.
type Store interface {
	Exists(ctx context.Context, id string) (bool, error)
	// InsertIfAbsent stores snap unless its identifier is taken and reports
	// whether the row was written.
	InsertIfAbsent(ctx context.Context, snap Snapshot) (bool, error)
	Get(ctx context.Context, id string) (Snapshot, bool, error)
}

// ValidID reports whether id has the share identifier shape.
func ValidID(id string) bool {
	if len(id) != IDLength || id[0] == '0' {
		return false
	}
	for i := 0; i < len(id); i++ {
		if id[i] < '0' || id[i] > '9' {
			return false
		}
	}
	return true
}
