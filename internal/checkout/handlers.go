package checkout

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	redis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/backend-videoquote/internal/common"
	"github.com/noah-isme/backend-videoquote/internal/obs"
)

// Handler serves the checkout relay and the provider webhook.
type Handler struct {
	Svc       Service
	Replay    redis.UniversalClient
	ReplayTTL time.Duration
}

type relayResponse struct {
	ID  string `json:"id"`
	URL string `json:"url,omitempty"`
}

type relayError struct {
	Error string `json:"error"`
}

// Relay handles POST /create-checkout-session.
func (h *Handler) Relay(w http.ResponseWriter, r *http.Request) {
	provider := h.providerName()
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		common.JSON(w, http.StatusMethodNotAllowed, relayError{Error: "Method Not Allowed"})
		return
	}
	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		obs.ObserveCheckout(provider, "invalid")
		common.JSON(w, http.StatusBadRequest, relayError{Error: "Invalid request body"})
		return
	}
	resp, q, err := h.Svc.Create(r.Context(), req, r.Header.Get("Idempotency-Key"))
	log := zerolog.Ctx(r.Context())
	switch {
	case errors.Is(err, ErrNoVideos):
		obs.ObserveCheckout(provider, "invalid")
		common.JSON(w, http.StatusBadRequest, relayError{Error: "No videos selected"})
		return
	case err != nil:
		obs.ObserveCheckout(provider, "error")
		log.Error().Err(err).Str("provider", provider).Msg("checkout_session_failed")
		common.JSON(w, http.StatusInternalServerError, relayError{Error: "Failed to create checkout session"})
		return
	}
	obs.ObserveCheckout(provider, "ok")
	log.Info().
		Str("provider", provider).
		Str("checkout_session", resp.ID).
		Int("videos", q.ItemCount).
		Int64("total_cents", q.Total).
		Msg("checkout_session_created")
	common.JSON(w, http.StatusOK, relayResponse{ID: resp.ID, URL: resp.URL})
}

// Webhook handles POST /api/v1/webhooks/checkout.
func (h *Handler) Webhook(w http.ResponseWriter, r *http.Request) {
	provider := h.providerName()
	if h.Svc.Provider == nil {
		common.JSONError(w, http.StatusInternalServerError, "CHECKOUT_NOT_CONFIGURED", "webhook unavailable", nil)
		return
	}
	body, err := io.ReadAll(r.Body)
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, "INVALID_BODY", "unable to read payload", nil)
		return
	}
	log := zerolog.Ctx(r.Context())
	ev, err := h.Svc.Provider.VerifyWebhook(r, body)
	if errors.Is(err, ErrInvalidSignature) {
		obs.ObserveCheckoutWebhook(provider, "invalid_signature")
		log.Warn().Err(err).Str("provider", provider).Msg("checkout_webhook_rejected")
		common.JSONError(w, http.StatusUnauthorized, "INVALID_SIGNATURE", "signature verification failed", nil)
		return
	}
	if err != nil {
		obs.ObserveCheckoutWebhook(provider, "invalid")
		common.JSONError(w, http.StatusBadRequest, "WEBHOOK_INVALID", err.Error(), nil)
		return
	}
	if h.Replay != nil && h.ReplayTTL > 0 {
		ok, err := h.Replay.SetNX(r.Context(), "wh:"+provider+":"+ev.ID, "1", h.ReplayTTL).Result()
		if err != nil {
			common.JSONError(w, http.StatusInternalServerError, "REPLAY_STORE_ERROR", "replay store unavailable", nil)
			return
		}
		if !ok {
			obs.ObserveCheckoutWebhook(provider, "duplicate")
			common.JSON(w, http.StatusOK, map[string]any{"received": true, "duplicate": true})
			return
		}
	}
	obs.ObserveCheckoutWebhook(provider, "ok")
	log.Info().
		Str("provider", provider).
		Str("event_id", ev.ID).
		Str("event_type", ev.Type).
		Str("checkout_session", ev.SessionID).
		Str("payment_status", ev.Status).
		Int64("amount_total", ev.AmountTotal).
		Str("company", ev.Metadata["companyName"]).
		Msg("checkout_webhook_received")
	common.JSON(w, http.StatusOK, map[string]any{"received": true})
}

func (h *Handler) providerName() string {
	if h.Svc.Provider == nil {
		return "none"
	}
	return h.Svc.Provider.Name()
}
