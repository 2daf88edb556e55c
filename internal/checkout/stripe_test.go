package checkout

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-videoquote/internal/pricing"
	"github.com/noah-isme/backend-videoquote/internal/resilience"
)

func TestStripeCreateSession(t *testing.T) {
	var form url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/checkout/sessions", r.URL.Path)
		require.Equal(t, "Bearer sk_test_123", r.Header.Get("Authorization"))
		require.Equal(t, "idem-1", r.Header.Get("Idempotency-Key"))
		raw, _ := io.ReadAll(r.Body)
		form, _ = url.ParseQuery(string(raw))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"cs_test_abc","url":"https://checkout.stripe.com/c/pay/cs_test_abc"}`))
	}))
	defer srv.Close()

	s := Stripe{HTTP: resilience.NewHTTPClient("stripe-test", time.Second, 1), BaseURL: srv.URL, SecretKey: "sk_test_123"}
	svc := Service{Engine: pricing.Engine{}, Provider: s, BaseURL: "https://shop.example"}

	resp, _, err := svc.Create(context.Background(), Request{Videos: videos(2), CompanyName: "Acme"}, "idem-1")
	require.NoError(t, err)
	require.Equal(t, "cs_test_abc", resp.ID)

	require.Equal(t, "payment", form.Get("mode"))
	require.Equal(t, "card", form.Get("payment_method_types[]"))
	require.Equal(t, "2", form.Get("line_items[0][quantity]"))
	require.Equal(t, "7920", form.Get("line_items[0][price_data][unit_amount]"))
	require.Equal(t, "eur", form.Get("line_items[0][price_data][currency]"))
	require.Equal(t, "Acme", form.Get("metadata[companyName]"))
	require.Equal(t, "https://shop.example/cancel", form.Get("cancel_url"))
}

func TestStripeCreateSessionError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"message":"Invalid currency","type":"invalid_request_error"}}`))
	}))
	defer srv.Close()

	s := Stripe{HTTP: resilience.NewHTTPClient("stripe-test-err", time.Second, 1), BaseURL: srv.URL, SecretKey: "sk"}
	_, err := s.CreateSession(context.Background(), SessionRequest{LineItems: []LineItem{{Name: "x", Quantity: 1, UnitAmount: 1}}})
	require.ErrorContains(t, err, "Invalid currency")

	_, err = Stripe{}.CreateSession(context.Background(), SessionRequest{})
	require.Error(t, err)
}

func TestVerifySignature(t *testing.T) {
	body := []byte(`{"id":"evt_1","type":"checkout.session.completed"}`)
	now := time.Unix(1_700_000_000, 0)
	header := Sign(body, "whsec", now)

	require.NoError(t, VerifySignature(header, body, "whsec", now.Add(time.Minute), DefaultSignatureTolerance))
	require.ErrorIs(t, VerifySignature(header, body, "other", now, DefaultSignatureTolerance), ErrInvalidSignature)
	require.ErrorIs(t, VerifySignature(header, []byte("{}"), "whsec", now, DefaultSignatureTolerance), ErrInvalidSignature)
	require.ErrorIs(t, VerifySignature(header, body, "whsec", now.Add(10*time.Minute), DefaultSignatureTolerance), ErrInvalidSignature)
	require.ErrorIs(t, VerifySignature("garbage", body, "whsec", now, DefaultSignatureTolerance), ErrInvalidSignature)
	require.ErrorIs(t, VerifySignature(header, body, "", now, DefaultSignatureTolerance), ErrInvalidSignature)

	multi := "t=" + header[2:12] + ",v1=deadbeef," + header[13:]
	require.NoError(t, VerifySignature(multi, body, "whsec", now, DefaultSignatureTolerance))
}

func TestStripeVerifyWebhookDecodesEvent(t *testing.T) {
	body := []byte(`{"id":"evt_9","type":"checkout.session.completed","data":{"object":{"id":"cs_1","amount_total":15840,"payment_status":"paid","metadata":{"companyName":"Acme"}}}}`)
	now := time.Now()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/checkout", nil)
	req.Header.Set("Stripe-Signature", Sign(body, "whsec", now))

	ev, err := Stripe{WebhookSecret: "whsec", Now: func() time.Time { return now }}.VerifyWebhook(req, body)
	require.NoError(t, err)
	require.Equal(t, "evt_9", ev.ID)
	require.Equal(t, "cs_1", ev.SessionID)
	require.Equal(t, int64(15840), ev.AmountTotal)
	require.Equal(t, "paid", ev.Status)
	require.Equal(t, "Acme", ev.Metadata["companyName"])
}
