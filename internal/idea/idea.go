package idea

import (
	"crypto/rand"
	"io"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// FocusType tells whether a video centres on the company or on its industry.
type FocusType string

const (
	// FocusDirect covers company-centric content (products, team, services).
	FocusDirect FocusType = "direct"
	// FocusIndirect covers industry-centric content (tips, trends, education).
	FocusIndirect FocusType = "indirect"
)

// Duration bounds for short-form videos, in seconds.
const (
	MinDurationSeconds     = 20
	MaxDurationSeconds     = 60
	DefaultDurationSeconds = 30
)

// VideoIdea is a generated short-form video concept. Ideas are immutable once created.
type VideoIdea struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	DurationSeconds int       `json:"duration"`
	FocusType       FocusType `json:"type"`
}

// IDSource issues lexically sortable identifiers that follow creation order.
type IDSource struct {
	mu      sync.Mutex
	now     func() time.Time
	entropy io.Reader
}

// NewIDSource builds an IDSource. A nil clock uses time.Now.
func NewIDSource(now func() time.Time) *IDSource {
	if now == nil {
		now = time.Now
	}
	return &IDSource{now: now, entropy: ulid.Monotonic(rand.Reader, 0)}
}

// Next returns a fresh identifier. Identifiers drawn within the same millisecond
// still increase monotonically.
func (s *IDSource) Next() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(s.now()), s.entropy).String()
}

var defaultIDs = NewIDSource(nil)

// NewID returns an identifier from the process-wide source.
func NewID() string {
	return defaultIDs.Next()
}

// Index maps ideas by identifier.
func Index(ideas []VideoIdea) map[string]VideoIdea {
	out := make(map[string]VideoIdea, len(ideas))
	for _, it := range ideas {
		out[it.ID] = it
	}
	return out
}
