package share

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/noah-isme/backend-videoquote/internal/idea"
	"github.com/noah-isme/backend-videoquote/internal/obs"
)

// CreateInput is the material for a new snapshot.
type CreateInput struct {
	CompanyName   string           `json:"companyName" validate:"required,max=200"`
	Activity      string           `json:"activity" validate:"max=2000"`
	AllIdeas      []idea.VideoIdea `json:"allIdeas" validate:"required,min=1,max=100"`
	SelectedIdeas []idea.VideoIdea `json:"selectedIdeas" validate:"max=100"`
}

// Service allocates share identifiers and reads snapshots back.
type Service struct {
	Store       Store
	NewID       func() (string, error)
	Now         func() time.Time
	MaxAttempts int
}

// NewService wires a Service with random identifiers and the wall clock.
func NewService(store Store) *Service {
	return &Service{Store: store, NewID: RandomID, Now: time.Now, MaxAttempts: MaxIDAttempts}
}

// RandomID draws a uniformly distributed identifier in [IDMin, IDMax].
func RandomID() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(IDMax-IDMin+1))
	if err != nil {
		return "", err
	}
	return strconv.FormatInt(n.Int64()+IDMin, 10), nil
}

// Create persists a snapshot under a fresh identifier. Identifiers already in
// the store, or lost to a concurrent insert, count as collisions. Company name
// and activity are stored exactly as given.
func (s *Service) Create(ctx context.Context, in CreateInput) (Snapshot, error) {
	if strings.TrimSpace(in.CompanyName) == "" || len(in.AllIdeas) == 0 {
		obs.ObserveShare("create", "invalid")
		return Snapshot{}, ErrInvalidInput
	}
	pool := idea.Index(in.AllIdeas)
	for _, sel := range in.SelectedIdeas {
		if _, ok := pool[sel.ID]; !ok {
			obs.ObserveShare("create", "invalid")
			return Snapshot{}, fmt.Errorf("%w: selected idea %q is not in the pool", ErrInvalidInput, sel.ID)
		}
	}

	newID := s.NewID
	if newID == nil {
		newID = RandomID
	}
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	attempts := s.MaxAttempts
	if attempts <= 0 {
		attempts = MaxIDAttempts
	}
	selected := in.SelectedIdeas
	if selected == nil {
		selected = []idea.VideoIdea{}
	}

	for attempt := 1; attempt <= attempts; attempt++ {
		id, err := newID()
		if err != nil {
			obs.ObserveShare("create", "error")
			return Snapshot{}, fmt.Errorf("share: draw id: %w", err)
		}
		taken, err := s.Store.Exists(ctx, id)
		if err != nil {
			obs.ObserveShare("create", "error")
			return Snapshot{}, fmt.Errorf("share: check id: %w", err)
		}
		if taken {
			obs.ObserveShareCollision()
			continue
		}
		snap := Snapshot{
			ID:            id,
			CompanyName:   in.CompanyName,
			Activity:      in.Activity,
			AllIdeas:      in.AllIdeas,
			SelectedIdeas: selected,
			CreatedAt:     now().UTC().Truncate(time.Millisecond),
		}
		inserted, err := s.Store.InsertIfAbsent(ctx, snap)
		if err != nil {
			obs.ObserveShare("create", "error")
			return Snapshot{}, fmt.Errorf("share: insert: %w", err)
		}
		if !inserted {
			obs.ObserveShareCollision()
			continue
		}
		obs.ObserveShare("create", "ok")
		return snap, nil
	}

	zerolog.Ctx(ctx).Warn().Int("attempts", attempts).Msg("share_id_exhausted")
	obs.ObserveShare("create", "exhausted")
	return Snapshot{}, ErrIDExhausted
}

// Get loads a snapshot. A missing snapshot is reported with found=false and no error.
func (s *Service) Get(ctx context.Context, id string) (Snapshot, bool, error) {
	id = strings.TrimSpace(id)
	if !ValidID(id) {
		obs.ObserveShare("get", "invalid")
		return Snapshot{}, false, ErrInvalidInput
	}
	snap, found, err := s.Store.Get(ctx, id)
	switch {
	case err != nil:
		obs.ObserveShare("get", "error")
		return Snapshot{}, false, fmt.Errorf("share: get: %w", err)
	case !found:
		obs.ObserveShare("get", "not_found")
	default:
		obs.ObserveShare("get", "ok")
	}
	return snap, found, nil
}
