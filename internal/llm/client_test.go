package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-videoquote/internal/resilience"
)

func newTestClient(srv *httptest.Server) *Client {
	return &Client{
		HTTP:    resilience.HTTPClient{Client: srv.Client(), MaxAttempts: 1},
		BaseURL: srv.URL + "/v1/",
		APIKey:  "sk-test",
		Model:   "gpt-test",
	}
}

func TestCompleteSendsChatRequest(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/chat/completions", r.URL.Path)
		require.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		var req completionRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, "gpt-test", req.Model)
		require.Len(t, req.Messages, 2)
		require.Equal(t, "system", req.Messages[0].Role)
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"hello"}}]}`))
	}))
	defer srv.Close()

	out, err := newTestClient(srv).Complete(context.Background(), []Message{System("be brief"), User("hi")})
	require.NoError(t, err)
	require.Equal(t, "hello", out)
}

func TestCompleteReportsUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"bad key"}}`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv).Complete(context.Background(), []Message{User("hi")})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusUnauthorized, apiErr.Status)
	require.Equal(t, "bad key", apiErr.Message)
}

func TestCompleteEmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv).Complete(context.Background(), []Message{User("hi")})
	require.ErrorIs(t, err, ErrEmptyCompletion)
}

func TestCompleteRequiresKey(t *testing.T) {
	_, err := (&Client{}).Complete(context.Background(), nil)
	require.ErrorIs(t, err, ErrNotConfigured)
}
