package checkout

import (
	"context"
	"errors"
	"net/http"

	"github.com/noah-isme/backend-videoquote/internal/pricing"
)

// ErrInvalidSignature is returned when a webhook signature does not verify.
var ErrInvalidSignature = errors.New("checkout: invalid webhook signature")

// LineItem is one priced entry of a hosted checkout session.
type LineItem struct {
	Name        string
	Description string
	Currency    string
	UnitAmount  pricing.Money
	Quantity    int
}

// SessionRequest opens a hosted checkout session.
type SessionRequest struct {
	LineItems  []LineItem
	SuccessURL string
	CancelURL  string
	Metadata   map[string]string
	// IdempotencyKey lets the provider deduplicate retried creations.
	IdempotencyKey string
}

// SessionResponse identifies the created session.
type SessionResponse struct {
	ID  string
	URL string
}

// WebhookEvent is a verified provider notification.
type WebhookEvent struct {
	ID          string
	Type        string
	SessionID   string
	AmountTotal int64
	Status      string
	Metadata    map[string]string
}

// Provider abstracts the hosted checkout upstream.
type Provider interface {
	Name() string
	CreateSession(ctx context.Context, req SessionRequest) (SessionResponse, error)
	VerifyWebhook(r *http.Request, body []byte) (WebhookEvent, error)
}
