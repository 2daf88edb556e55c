package share

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/noah-isme/backend-videoquote/internal/common"
)

// Handler exposes share link endpoints.
type Handler struct {
	service *Service
}

// HandlerConfig configures the Handler dependencies.
type HandlerConfig struct {
	Service *Service
}

// NewHandler constructs a Handler.
func NewHandler(cfg HandlerConfig) *Handler {
	return &Handler{service: cfg.Service}
}

// Create handles POST /api/v1/shares for clients that hold the session themselves.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "share service not configured", nil)
		return
	}
	var in CreateInput
	if err := common.DecodeJSON(r, &in); err != nil {
		common.WriteError(w, err)
		return
	}
	snap, err := h.service.Create(r.Context(), in)
	if err != nil {
		common.WriteError(w, AsAppError(err))
		return
	}
	common.JSON(w, http.StatusCreated, map[string]any{"data": snap})
}

// Get handles GET /api/v1/shares/{shareId}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "share service not configured", nil)
		return
	}
	snap, found, err := h.service.Get(r.Context(), chi.URLParam(r, "shareId"))
	if err != nil {
		common.WriteError(w, AsAppError(err))
		return
	}
	if !found {
		common.JSONError(w, http.StatusNotFound, "NOT_FOUND", "share not found", nil)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": snap})
}

// AsAppError maps share errors onto HTTP-facing application errors.
func AsAppError(err error) error {
	switch {
	case errors.Is(err, ErrInvalidInput):
		return common.NewAppError("INVALID_SHARE", err.Error(), http.StatusBadRequest, err)
	case errors.Is(err, ErrIDExhausted):
		return common.NewAppError("SHARE_UNAVAILABLE", "could not allocate a share link, try again", http.StatusServiceUnavailable, err)
	default:
		return err
	}
}
