package idea

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNormalizeRejectsEmptyDescription(t *testing.T) {
	_, err := Normalize(Candidate{Title: " Hi ", Description: "", Duration: json.RawMessage("999"), Type: "weird"}, "x")
	require.ErrorIs(t, err, ErrEmptyDescription)

	_, err = Normalize(Candidate{Title: "  ", Description: "body"}, "x")
	require.ErrorIs(t, err, ErrEmptyTitle)
}

func TestNormalizeClampsAndCoerces(t *testing.T) {
	got, err := Normalize(Candidate{Title: " A ", Description: "B", Duration: json.RawMessage("5"), Type: "indirect"}, "id-1")
	require.NoError(t, err)
	require.Equal(t, VideoIdea{ID: "id-1", Title: "A", Description: "B", DurationSeconds: 20, FocusType: FocusIndirect}, got)

	got, err = Normalize(Candidate{Title: "A", Description: "B", Duration: json.RawMessage("999"), Type: "weird"}, "id-2")
	require.NoError(t, err)
	require.Equal(t, 60, got.DurationSeconds)
	require.Equal(t, FocusDirect, got.FocusType)
}

func TestNormalizeDurationForms(t *testing.T) {
	cases := map[string]int{
		``:       DefaultDurationSeconds,
		`null`:   DefaultDurationSeconds,
		`45`:     45,
		`44.6`:   45,
		`"30s"`:  30,
		`"~ 50"`: 50,
		`"long"`: DefaultDurationSeconds,
		`-3`:     DefaultDurationSeconds,
		`{}`:     DefaultDurationSeconds,
	}
	for raw, want := range cases {
		got, err := Normalize(Candidate{Title: "t", Description: "d", Duration: json.RawMessage(raw)}, "id")
		require.NoError(t, err, raw)
		require.Equal(t, want, got.DurationSeconds, raw)
	}
}

func TestCandidateDecodesLooseJSON(t *testing.T) {
	var cs []Candidate
	payload := `[{"title":"One","description":"d","duration":"40","type":"direct"},{"title":"Two","description":"d","duration":25}]`
	require.NoError(t, json.Unmarshal([]byte(payload), &cs))
	require.Len(t, cs, 2)

	first, err := Normalize(cs[0], "a")
	require.NoError(t, err)
	require.Equal(t, 40, first.DurationSeconds)
	second, err := Normalize(cs[1], "b")
	require.NoError(t, err)
	require.Equal(t, 25, second.DurationSeconds)
	require.Equal(t, FocusDirect, second.FocusType)
}

func TestIDSourceIsMonotonic(t *testing.T) {
	fixed := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	src := NewIDSource(func() time.Time { return fixed })

	prev := src.Next()
	seen := map[string]struct{}{prev: {}}
	for i := 0; i < 100; i++ {
		next := src.Next()
		require.Greater(t, next, prev)
		_, dup := seen[next]
		require.False(t, dup)
		seen[next] = struct{}{}
		prev = next
	}
}
