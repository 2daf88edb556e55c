package idea

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"strconv"
	"strings"
	"unicode"
)

var (
	// ErrEmptyTitle rejects candidates without a usable title.
	ErrEmptyTitle = errors.New("idea: empty title")
	// ErrEmptyDescription rejects candidates without a usable description.
	ErrEmptyDescription = errors.New("idea: empty description")
)

// Candidate is an untrusted idea as returned by the content generator.
type Candidate struct {
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Duration    json.RawMessage `json:"duration"`
	Type        string          `json:"type"`
	// ID is accepted for decoding only; generated ideas always get a fresh identifier.
	ID string `json:"id,omitempty"`
}

// Normalize validates a candidate and converts it into a VideoIdea carrying id.
func Normalize(c Candidate, id string) (VideoIdea, error) {
	title := strings.TrimSpace(c.Title)
	if title == "" {
		return VideoIdea{}, ErrEmptyTitle
	}
	desc := strings.TrimSpace(c.Description)
	if desc == "" {
		return VideoIdea{}, ErrEmptyDescription
	}
	return VideoIdea{
		ID:              id,
		Title:           title,
		Description:     desc,
		DurationSeconds: ClampDuration(parseDuration(c.Duration)),
		FocusType:       ParseFocus(c.Type),
	}, nil
}

// ClampDuration bounds seconds to the short-form range. Non-positive values fall
// back to the default duration.
func ClampDuration(seconds int) int {
	switch {
	case seconds <= 0:
		return DefaultDurationSeconds
	case seconds < MinDurationSeconds:
		return MinDurationSeconds
	case seconds > MaxDurationSeconds:
		return MaxDurationSeconds
	default:
		return seconds
	}
}

// ParseFocus coerces anything other than an exact "indirect" into FocusDirect.
func ParseFocus(value string) FocusType {
	if FocusType(value) == FocusIndirect {
		return FocusIndirect
	}
	return FocusDirect
}

// parseDuration accepts JSON numbers and strings such as "45" or "45s". It
// returns 0 when nothing usable is present.
func parseDuration(raw json.RawMessage) int {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return 0
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return 0
		}
		return int(math.Round(f))
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0
	}
	digits := strings.TrimFunc(strings.TrimSpace(s), func(r rune) bool { return !unicode.IsDigit(r) })
	if end := strings.IndexFunc(digits, func(r rune) bool { return !unicode.IsDigit(r) }); end >= 0 {
		digits = digits[:end]
	}
	n, err := strconv.Atoi(digits)
	if err != nil {
		return 0
	}
	return n
}
