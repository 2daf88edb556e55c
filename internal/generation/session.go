package generation

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/noah-isme/backend-videoquote/internal/idea"
)

// Session accumulates generated ideas into a bounded pool.
type Session struct {
	Generator Generator
	MaxPool   int
	IDs       *idea.IDSource

	mu   sync.Mutex
	pool []idea.VideoIdea
}

// NewSession starts a session with an existing pool, which is copied.
func NewSession(gen Generator, maxPool int, pool []idea.VideoIdea) *Session {
	s := &Session{Generator: gen, MaxPool: maxPool}
	s.pool = append(s.pool, pool...)
	return s
}

// Pool returns a copy of the accumulated ideas.
func (s *Session) Pool() []idea.VideoIdea {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]idea.VideoIdea, len(s.pool))
	copy(out, s.pool)
	return out
}

// Remaining reports how many ideas still fit in the pool.
func (s *Session) Remaining() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.remainingLocked()
}

// Generate asks the generator for a batch and appends it to the pool. The
// requested count is reduced to the remaining capacity. On any error the pool
// is left unchanged. The generator is called at most once.
func (s *Session) Generate(ctx context.Context, req Request) ([]idea.VideoIdea, error) {
	req, err := req.Validate()
	if err != nil {
		return nil, err
	}
	if s.Generator == nil {
		return nil, fmt.Errorf("%w: no generator configured", ErrGenerationFailed)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	remaining := s.remainingLocked()
	if remaining <= 0 {
		return nil, ErrPoolFull
	}
	if req.Count > remaining {
		req.Count = remaining
	}

	candidates, err := s.Generator.Generate(ctx, req)
	if err != nil {
		if errors.Is(err, ErrMalformedResponse) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", ErrGenerationFailed, err)
	}
	if candidates == nil {
		return nil, ErrMalformedResponse
	}

	ids := s.IDs
	batch := make([]idea.VideoIdea, 0, req.Count)
	for _, c := range candidates {
		if len(batch) == req.Count {
			break
		}
		var id string
		if ids != nil {
			id = ids.Next()
		} else {
			id = idea.NewID()
		}
		v, err := idea.Normalize(c, id)
		if err != nil {
			continue
		}
		batch = append(batch, v)
	}
	if len(batch) < req.Count {
		return nil, fmt.Errorf("%w: got %d of %d", ErrCountMismatch, len(batch), req.Count)
	}

	s.pool = append(s.pool, batch...)
	return batch, nil
}

func (s *Session) remainingLocked() int {
	limit := s.MaxPool
	if limit <= 0 {
		limit = DefaultMaxPool
	}
	return limit - len(s.pool)
}
