package checkout

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-videoquote/internal/pricing"
)

func relay(t *testing.T, h *Handler, method, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, "/create-checkout-session", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.Relay(rec, req)
	return rec
}

func TestRelayContract(t *testing.T) {
	h := &Handler{Svc: Service{Engine: pricing.Engine{}, Provider: &Mock{}, BaseURL: "http://localhost:5173"}}

	rec := relay(t, h, http.MethodGet, "")
	require.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	require.Equal(t, http.MethodPost, rec.Header().Get("Allow"))

	rec = relay(t, h, http.MethodPost, `{"videos":[],"companyName":"Acme"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.JSONEq(t, `{"error":"No videos selected"}`, rec.Body.String())

	rec = relay(t, h, http.MethodPost, `not json`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = relay(t, h, http.MethodPost, `{"videos":[{"id":"a","title":"One","description":"d","duration":30,"type":"direct"}],"companyName":"Acme"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var out struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	require.Equal(t, "cs_mock_000001", out.ID)
}

func TestRelayRejectsEmptyVideosWithoutProvider(t *testing.T) {
	h := &Handler{Svc: Service{}}
	rec := relay(t, h, http.MethodPost, `{"videos":[],"companyName":"Acme"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.JSONEq(t, `{"error":"No videos selected"}`, rec.Body.String())
}

func TestRelayProviderFailure(t *testing.T) {
	h := &Handler{Svc: Service{Provider: failingProvider{}}}
	rec := relay(t, h, http.MethodPost, `{"videos":[{"id":"a","title":"One"}]}`)
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.JSONEq(t, `{"error":"Failed to create checkout session"}`, rec.Body.String())
}

func TestWebhook(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	h := &Handler{
		Svc:       Service{Provider: &Mock{WebhookSecret: "whsec"}},
		Replay:    rdb,
		ReplayTTL: time.Hour,
	}
	body := `{"id":"evt_1","type":"checkout.session.completed","data":{"object":{"id":"cs_mock_000001","amount_total":9900}}}`
	send := func(sig string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/checkout", strings.NewReader(body))
		if sig != "" {
			req.Header.Set("Stripe-Signature", sig)
		}
		rec := httptest.NewRecorder()
		h.Webhook(rec, req)
		return rec
	}

	rec := send("")
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = send(Sign([]byte(body), "whsec", time.Now()))
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"received":true}`, rec.Body.String())
	require.True(t, mr.Exists("wh:mock:evt_1"))

	rec = send(Sign([]byte(body), "whsec", time.Now()))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"duplicate":true`)
}

func TestWebhookRejectsMalformedPayload(t *testing.T) {
	h := &Handler{Svc: Service{Provider: &Mock{}}}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/checkout", strings.NewReader(`{"type":""}`))
	rec := httptest.NewRecorder()
	h.Webhook(rec, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), "WEBHOOK_INVALID")
}
