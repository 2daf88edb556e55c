package generation

import (
	"context"
	"errors"
	"strings"

	"github.com/noah-isme/backend-videoquote/internal/idea"
)

// Per-call and per-session bounds.
const (
	MinPerCall     = 3
	MaxPerCall     = 10
	DefaultMaxPool = 30
)

var (
	// ErrGenerationFailed wraps failures of the external generator.
	ErrGenerationFailed = errors.New("generation: external generator failed")
	// ErrMalformedResponse is returned when the generator output is not a collection of ideas.
	ErrMalformedResponse = errors.New("generation: malformed response")
	// ErrCountMismatch is returned when fewer valid ideas than requested survive normalisation.
	ErrCountMismatch = errors.New("generation: fewer valid ideas than requested")
	// ErrPoolFull is returned once the session holds the maximum number of ideas.
	ErrPoolFull = errors.New("generation: idea pool is full")
	// ErrInvalidInput is returned for missing company data or an out-of-range count.
	ErrInvalidInput = errors.New("generation: invalid input")
)

// Request describes one generation call.
type Request struct {
	CompanyName string `json:"companyName" validate:"required,max=200"`
	Activity    string `json:"activity" validate:"required,max=2000"`
	Language    string `json:"language" validate:"omitempty,oneof=es en fr de it pt"`
	Count       int    `json:"count" validate:"min=3,max=10"`
}

// Validate trims the request and checks its bounds.
func (r Request) Validate() (Request, error) {
	r.CompanyName = strings.TrimSpace(r.CompanyName)
	r.Activity = strings.TrimSpace(r.Activity)
	r.Language = strings.ToLower(strings.TrimSpace(r.Language))
	if r.Language == "" {
		r.Language = DefaultLanguage
	}
	if r.CompanyName == "" || r.Activity == "" {
		return r, ErrInvalidInput
	}
	if r.Count < MinPerCall || r.Count > MaxPerCall {
		return r, ErrInvalidInput
	}
	if _, ok := languageNames[r.Language]; !ok {
		return r, ErrInvalidInput
	}
	return r, nil
}

// Generator produces raw idea candidates.
type Generator interface {
	Generate(ctx context.Context, req Request) ([]idea.Candidate, error)
}

// GeneratorFunc adapts a function to Generator.
type GeneratorFunc func(ctx context.Context, req Request) ([]idea.Candidate, error)

func (f GeneratorFunc) Generate(ctx context.Context, req Request) ([]idea.Candidate, error) {
	return f(ctx, req)
}
