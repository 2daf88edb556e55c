package checkout

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/noah-isme/backend-videoquote/internal/idea"
	"github.com/noah-isme/backend-videoquote/internal/pricing"
)

// ErrNoVideos is returned for checkout requests without any video.
var ErrNoVideos = errors.New("checkout: no videos selected")

const (
	currency        = "eur"
	metadataMaxLen  = 500
	descriptionMax  = 500
	sessionIDMarker = "{CHECKOUT_SESSION_ID}"
)

// Request is the body of a checkout relay call.
type Request struct {
	Videos      []idea.VideoIdea `json:"videos"`
	CompanyName string           `json:"companyName"`
}

// Service prices a selection with the shared engine and opens a provider session.
type Service struct {
	Engine   pricing.Engine
	Provider Provider
	// BaseURL is the public site origin used for the success and cancel pages.
	BaseURL string
}

// BuildSession turns a relay request into a provider request. The single line
// item always charges exactly the computed total.
func (s Service) BuildSession(req Request) (SessionRequest, pricing.Quote, error) {
	if len(req.Videos) == 0 {
		return SessionRequest{}, pricing.Quote{}, ErrNoVideos
	}
	q := pricing.ComputeQuote(s.Engine, req.Videos)
	n := len(req.Videos)

	item := LineItem{
		Name:        bundleName(n),
		Description: describe(req.Videos),
		Currency:    currency,
		UnitAmount:  q.Total,
		Quantity:    1,
	}
	if q.Total%pricing.Money(n) == 0 {
		item.UnitAmount = q.Total / pricing.Money(n)
		item.Quantity = n
	}

	ids := make([]string, 0, n)
	for _, v := range req.Videos {
		ids = append(ids, v.ID)
	}
	base := strings.TrimRight(s.BaseURL, "/")
	return SessionRequest{
		LineItems:  []LineItem{item},
		SuccessURL: base + "/success?session_id=" + sessionIDMarker,
		CancelURL:  base + "/cancel",
		Metadata: map[string]string{
			"companyName":     truncate(strings.TrimSpace(req.CompanyName), metadataMaxLen),
			"videoCount":      strconv.Itoa(n),
			"videoIds":        truncate(strings.Join(ids, ","), metadataMaxLen),
			"subtotal":        strconv.FormatInt(q.Subtotal, 10),
			"discountPercent": strconv.FormatFloat(q.DiscountPercent, 'f', -1, 64),
			"total":           strconv.FormatInt(q.Total, 10),
		},
	}, q, nil
}

// Create opens a hosted checkout session for the request. Without a caller
// key a fresh one is generated so provider retries never open a second session.
func (s Service) Create(ctx context.Context, req Request, idempotencyKey string) (SessionResponse, pricing.Quote, error) {
	sr, q, err := s.BuildSession(req)
	if err != nil {
		return SessionResponse{}, q, err
	}
	if s.Provider == nil {
		return SessionResponse{}, q, errors.New("checkout: provider not configured")
	}
	if strings.TrimSpace(idempotencyKey) == "" {
		idempotencyKey = uuid.NewString()
	}
	sr.IdempotencyKey = idempotencyKey
	resp, err := s.Provider.CreateSession(ctx, sr)
	if err != nil {
		return SessionResponse{}, q, fmt.Errorf("checkout: %s: %w", s.Provider.Name(), err)
	}
	return resp, q, nil
}

func bundleName(n int) string {
	if n == 1 {
		return "Marketing video (1 video)"
	}
	return fmt.Sprintf("Marketing video bundle (%d videos)", n)
}

func describe(videos []idea.VideoIdea) string {
	parts := make([]string, 0, len(videos))
	for _, v := range videos {
		focus := "Indirect focus"
		if v.FocusType == idea.FocusDirect {
			focus = "Direct focus"
		}
		parts = append(parts, fmt.Sprintf("%s (%ds, %s)", strings.TrimSpace(v.Title), v.DurationSeconds, focus))
	}
	return truncate(strings.Join(parts, "; "), descriptionMax)
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-1]) + "…"
}
