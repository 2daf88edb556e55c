package checkout

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/noah-isme/backend-videoquote/internal/resilience"
)

// DefaultSignatureTolerance bounds the age of a signed webhook.
const DefaultSignatureTolerance = 5 * time.Minute

// Stripe creates hosted checkout sessions through the Stripe REST API.
type Stripe struct {
	HTTP          resilience.HTTPClient
	BaseURL       string
	SecretKey     string
	WebhookSecret string
	Tolerance     time.Duration
	Now           func() time.Time
}

type stripeSession struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

type stripeError struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// Name implements Provider.
func (Stripe) Name() string { return "stripe" }

// CreateSession implements Provider.
func (s Stripe) CreateSession(ctx context.Context, req SessionRequest) (SessionResponse, error) {
	if strings.TrimSpace(s.SecretKey) == "" {
		return SessionResponse{}, errors.New("stripe: secret key not configured")
	}
	base := strings.TrimRight(s.BaseURL, "/")
	if base == "" {
		base = "https://api.stripe.com"
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, base+"/v1/checkout/sessions",
		strings.NewReader(EncodeSessionForm(req).Encode()))
	if err != nil {
		return SessionResponse{}, err
	}
	httpReq.Header.Set("Authorization", "Bearer "+s.SecretKey)
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if req.IdempotencyKey != "" {
		httpReq.Header.Set("Idempotency-Key", req.IdempotencyKey)
	}

	resp, err := s.HTTP.Do(ctx, httpReq)
	if err != nil {
		return SessionResponse{}, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return SessionResponse{}, err
	}
	if resp.StatusCode/100 != 2 {
		var se stripeError
		_ = json.Unmarshal(body, &se)
		if se.Error.Message != "" {
			return SessionResponse{}, fmt.Errorf("stripe: status %d: %s", resp.StatusCode, se.Error.Message)
		}
		return SessionResponse{}, fmt.Errorf("stripe: status %d", resp.StatusCode)
	}
	var out stripeSession
	if err := json.Unmarshal(body, &out); err != nil {
		return SessionResponse{}, fmt.Errorf("stripe: decode session: %w", err)
	}
	if out.ID == "" {
		return SessionResponse{}, errors.New("stripe: session id missing")
	}
	return SessionResponse{ID: out.ID, URL: out.URL}, nil
}

// EncodeSessionForm renders req in Stripe's bracketed form encoding.
func EncodeSessionForm(req SessionRequest) url.Values {
	form := url.Values{}
	form.Set("mode", "payment")
	form.Add("payment_method_types[]", "card")
	form.Set("success_url", req.SuccessURL)
	form.Set("cancel_url", req.CancelURL)
	for i, item := range req.LineItems {
		p := fmt.Sprintf("line_items[%d]", i)
		form.Set(p+"[quantity]", strconv.Itoa(item.Quantity))
		form.Set(p+"[price_data][currency]", item.Currency)
		form.Set(p+"[price_data][unit_amount]", strconv.FormatInt(item.UnitAmount, 10))
		form.Set(p+"[price_data][product_data][name]", item.Name)
		if item.Description != "" {
			form.Set(p+"[price_data][product_data][description]", item.Description)
		}
	}
	for k, v := range req.Metadata {
		form.Set("metadata["+k+"]", v)
	}
	return form
}

type stripeEvent struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		Object struct {
			ID            string            `json:"id"`
			AmountTotal   int64             `json:"amount_total"`
			PaymentStatus string            `json:"payment_status"`
			Metadata      map[string]string `json:"metadata"`
		} `json:"object"`
	} `json:"data"`
}

// VerifyWebhook implements Provider. It checks the Stripe-Signature header
// against the webhook secret and the configured tolerance.
func (s Stripe) VerifyWebhook(r *http.Request, body []byte) (WebhookEvent, error) {
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	tolerance := s.Tolerance
	if tolerance <= 0 {
		tolerance = DefaultSignatureTolerance
	}
	if err := VerifySignature(r.Header.Get("Stripe-Signature"), body, s.WebhookSecret, now(), tolerance); err != nil {
		return WebhookEvent{}, err
	}
	return decodeEvent(body)
}

func decodeEvent(body []byte) (WebhookEvent, error) {
	var ev stripeEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return WebhookEvent{}, fmt.Errorf("decode webhook: %w", err)
	}
	if ev.ID == "" || ev.Type == "" {
		return WebhookEvent{}, errors.New("decode webhook: missing event id or type")
	}
	return WebhookEvent{
		ID:          ev.ID,
		Type:        ev.Type,
		SessionID:   ev.Data.Object.ID,
		AmountTotal: ev.Data.Object.AmountTotal,
		Status:      ev.Data.Object.PaymentStatus,
		Metadata:    ev.Data.Object.Metadata,
	}, nil
}

// Sign produces a Stripe-Signature header value for body at ts.
func Sign(body []byte, secret string, ts time.Time) string {
	t := strconv.FormatInt(ts.Unix(), 10)
	return "t=" + t + ",v1=" + computeSignature(t, body, secret)
}

// VerifySignature validates a Stripe-Signature header. Any v1 entry may match.
func VerifySignature(header string, body []byte, secret string, now time.Time, tolerance time.Duration) error {
	if secret == "" || header == "" {
		return ErrInvalidSignature
	}
	var (
		ts   string
		sigs []string
	)
	for _, part := range strings.Split(header, ",") {
		k, v, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok {
			continue
		}
		switch k {
		case "t":
			ts = v
		case "v1":
			sigs = append(sigs, v)
		}
	}
	sec, err := strconv.ParseInt(ts, 10, 64)
	if err != nil || len(sigs) == 0 {
		return ErrInvalidSignature
	}
	age := now.Sub(time.Unix(sec, 0))
	if age > tolerance || age < -tolerance {
		return fmt.Errorf("%w: timestamp outside tolerance", ErrInvalidSignature)
	}
	expected := computeSignature(ts, body, secret)
	for _, sig := range sigs {
		if hmac.Equal([]byte(expected), []byte(sig)) {
			return nil
		}
	}
	return ErrInvalidSignature
}

func computeSignature(ts string, body []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(ts))
	mac.Write([]byte("."))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}
