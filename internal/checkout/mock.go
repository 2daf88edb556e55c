package checkout

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync/atomic"
	"time"
)

// Mock is a development provider. Session ids are sequential and the hosted
// page URL points back at the success page.
type Mock struct {
	WebhookSecret string
	seq           atomic.Int64
}

// Name implements Provider.
func (*Mock) Name() string { return "mock" }

// CreateSession implements Provider.
func (m *Mock) CreateSession(_ context.Context, req SessionRequest) (SessionResponse, error) {
	if len(req.LineItems) == 0 {
		return SessionResponse{}, fmt.Errorf("mock: no line items")
	}
	id := fmt.Sprintf("cs_mock_%06d", m.seq.Add(1))
	return SessionResponse{ID: id, URL: strings.ReplaceAll(req.SuccessURL, sessionIDMarker, id)}, nil
}

// VerifyWebhook implements Provider. Without a secret every payload is accepted.
func (m *Mock) VerifyWebhook(r *http.Request, body []byte) (WebhookEvent, error) {
	if m.WebhookSecret != "" {
		if err := VerifySignature(r.Header.Get("Stripe-Signature"), body, m.WebhookSecret, time.Now(), DefaultSignatureTolerance); err != nil {
			return WebhookEvent{}, err
		}
	}
	return decodeEvent(body)
}
