package analyzer

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-videoquote/internal/llm"
)

type mapFetcher map[string]string

func (m mapFetcher) Fetch(_ context.Context, url string) ([]byte, error) {
	page, ok := m[url]
	if !ok {
		return nil, errors.New("unreachable")
	}
	return []byte(page), nil
}

type stubCompleter struct {
	answer   string
	err      error
	messages []llm.Message
}

func (s *stubCompleter) Complete(_ context.Context, messages []llm.Message) (string, error) {
	s.messages = messages
	return s.answer, s.err
}

func TestAnalyzeUsesWWWVariant(t *testing.T) {
	completer := &stubCompleter{answer: `{"companyName":"Panadería Sol","activity":"Panadería artesana."}`}
	a := Analyzer{
		Fetcher:   mapFetcher{"https://www.sol.example/": samplePage},
		Completer: completer,
	}

	res, err := a.Analyze(context.Background(), "sol.example", "es")
	require.NoError(t, err)
	require.Equal(t, "https://www.sol.example/", res.URL)
	require.Equal(t, "Panadería Sol", res.CompanyName)
	require.Equal(t, "Panadería artesana.", res.Activity)
	require.Equal(t, "es", res.Language)

	require.Len(t, completer.messages, 2)
	require.Contains(t, completer.messages[0].Content, "Spanish")
	require.Contains(t, completer.messages[1].Content, "Artisan bakery in Valencia")
}

func TestAnalyzeErrors(t *testing.T) {
	ctx := context.Background()

	_, err := Analyzer{}.Analyze(ctx, "", "en")
	require.ErrorIs(t, err, ErrInvalidURL)

	_, err = Analyzer{Fetcher: mapFetcher{}}.Analyze(ctx, "gone.example", "en")
	require.ErrorIs(t, err, ErrFetchFailed)

	_, err = Analyzer{Fetcher: mapFetcher{"https://empty.example/": "<html><body></body></html>"}}.Analyze(ctx, "empty.example", "en")
	require.ErrorIs(t, err, ErrNoContent)

	a := Analyzer{
		Fetcher:   mapFetcher{"https://acme.example/": samplePage},
		Completer: &stubCompleter{err: errors.New("quota")},
	}
	_, err = a.Analyze(ctx, "acme.example", "en")
	require.ErrorIs(t, err, ErrAnalysisFailed)

	a.Completer = &stubCompleter{answer: "   "}
	_, err = a.Analyze(ctx, "acme.example", "en")
	require.ErrorIs(t, err, ErrAnalysisFailed)
}

func TestHTTPFetcher(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			http.NotFound(w, r)
			return
		}
		require.Contains(t, r.Header.Get("Accept"), "text/html")
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(samplePage))
	}))
	defer srv.Close()

	page, err := NewHTTPFetcher(time.Second, true).Fetch(context.Background(), srv.URL+"/")
	require.NoError(t, err)
	require.True(t, strings.Contains(string(page), "Panadería"))

	_, err = NewHTTPFetcher(time.Second, true).Fetch(context.Background(), srv.URL+"/missing")
	require.Error(t, err)

	_, err = NewHTTPFetcher(time.Second, false).Fetch(context.Background(), srv.URL+"/")
	require.ErrorIs(t, err, ErrBlockedAddress)
}
