package checkout

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-videoquote/internal/idea"
	"github.com/noah-isme/backend-videoquote/internal/pricing"
)

func videos(n int) []idea.VideoIdea {
	out := make([]idea.VideoIdea, n)
	for i := range out {
		out[i] = idea.VideoIdea{
			ID:              fmt.Sprintf("v%d", i+1),
			Title:           fmt.Sprintf("Video %d", i+1),
			Description:     "desc",
			DurationSeconds: 30,
			FocusType:       idea.FocusDirect,
		}
	}
	return out
}

type failingProvider struct{}

func (failingProvider) Name() string { return "failing" }
func (failingProvider) CreateSession(context.Context, SessionRequest) (SessionResponse, error) {
	return SessionResponse{}, errors.New("upstream unavailable")
}
func (failingProvider) VerifyWebhook(*http.Request, []byte) (WebhookEvent, error) {
	return WebhookEvent{}, ErrInvalidSignature
}

func TestBuildSessionSpreadsEvenTotals(t *testing.T) {
	svc := Service{Engine: pricing.Engine{}, BaseURL: "https://shop.example/"}

	sr, q, err := svc.BuildSession(Request{Videos: videos(2), CompanyName: "Acme"})
	require.NoError(t, err)
	require.Equal(t, pricing.Money(15840), q.Total)
	require.Len(t, sr.LineItems, 1)
	require.Equal(t, 2, sr.LineItems[0].Quantity)
	require.Equal(t, pricing.Money(7920), sr.LineItems[0].UnitAmount)
	require.Equal(t, "eur", sr.LineItems[0].Currency)
	require.Equal(t, "https://shop.example/success?session_id={CHECKOUT_SESSION_ID}", sr.SuccessURL)
	require.Equal(t, "https://shop.example/cancel", sr.CancelURL)
	require.Equal(t, "Acme", sr.Metadata["companyName"])
	require.Equal(t, "v1,v2", sr.Metadata["videoIds"])

	sr, q, err = svc.BuildSession(Request{Videos: videos(10)})
	require.NoError(t, err)
	require.Equal(t, pricing.Money(49500), q.Total)
	require.Equal(t, 10, sr.LineItems[0].Quantity)
	require.Equal(t, pricing.Money(4950), sr.LineItems[0].UnitAmount)
}

func TestBuildSessionChargesUnevenTotalOnce(t *testing.T) {
	svc := Service{Engine: pricing.Engine{}}
	sr, q, err := svc.BuildSession(Request{Videos: videos(3)})
	require.NoError(t, err)
	require.Equal(t, pricing.Money(22646), q.Total)
	require.Equal(t, 1, sr.LineItems[0].Quantity)
	require.Equal(t, q.Total, sr.LineItems[0].UnitAmount)
}

func TestBuildSessionMatchesEngineForEveryCount(t *testing.T) {
	svc := Service{Engine: pricing.Engine{}}
	for n := 1; n <= 30; n++ {
		sr, q, err := svc.BuildSession(Request{Videos: videos(n)})
		require.NoError(t, err)
		item := sr.LineItems[0]
		require.Equal(t, q.Total, item.UnitAmount*pricing.Money(item.Quantity), "n=%d", n)
		require.Equal(t, svc.Engine.QuoteCount(n).Total, q.Total)
	}
}

func TestBuildSessionRejectsEmpty(t *testing.T) {
	_, _, err := Service{}.BuildSession(Request{})
	require.ErrorIs(t, err, ErrNoVideos)
}

func TestCreateWithMock(t *testing.T) {
	svc := Service{Engine: pricing.Engine{}, Provider: &Mock{}, BaseURL: "http://localhost:5173"}
	resp, _, err := svc.Create(context.Background(), Request{Videos: videos(1)}, "")
	require.NoError(t, err)
	require.Equal(t, "cs_mock_000001", resp.ID)
	require.Equal(t, "http://localhost:5173/success?session_id=cs_mock_000001", resp.URL)

	resp, _, err = svc.Create(context.Background(), Request{Videos: videos(1)}, "")
	require.NoError(t, err)
	require.Equal(t, "cs_mock_000002", resp.ID)
}

func TestCreateWrapsProviderErrors(t *testing.T) {
	svc := Service{Provider: failingProvider{}}
	_, _, err := svc.Create(context.Background(), Request{Videos: videos(1)}, "")
	require.Error(t, err)
	require.Contains(t, err.Error(), "failing")
}

type recordingProvider struct {
	got []SessionRequest
}

func (*recordingProvider) Name() string { return "recording" }
func (p *recordingProvider) CreateSession(_ context.Context, req SessionRequest) (SessionResponse, error) {
	p.got = append(p.got, req)
	return SessionResponse{ID: fmt.Sprintf("cs_%d", len(p.got))}, nil
}
func (*recordingProvider) VerifyWebhook(*http.Request, []byte) (WebhookEvent, error) {
	return WebhookEvent{}, ErrInvalidSignature
}

func TestCreateAlwaysSendsIdempotencyKey(t *testing.T) {
	p := &recordingProvider{}
	svc := Service{Provider: p}

	_, _, err := svc.Create(context.Background(), Request{Videos: videos(1)}, "")
	require.NoError(t, err)
	_, _, err = svc.Create(context.Background(), Request{Videos: videos(1)}, "")
	require.NoError(t, err)
	_, _, err = svc.Create(context.Background(), Request{Videos: videos(1)}, "client-key")
	require.NoError(t, err)

	require.Len(t, p.got, 3)
	require.NotEmpty(t, p.got[0].IdempotencyKey)
	require.NotEmpty(t, p.got[1].IdempotencyKey)
	require.NotEqual(t, p.got[0].IdempotencyKey, p.got[1].IdempotencyKey)
	require.Equal(t, "client-key", p.got[2].IdempotencyKey)
}

func TestCreateValidatesBeforeProvider(t *testing.T) {
	_, _, err := Service{}.Create(context.Background(), Request{}, "")
	require.ErrorIs(t, err, ErrNoVideos)

	_, _, err = Service{}.Create(context.Background(), Request{Videos: videos(1)}, "")
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrNoVideos)
}
