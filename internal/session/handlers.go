package session

import (
	"bytes"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/noah-isme/backend-videoquote/internal/common"
	"github.com/noah-isme/backend-videoquote/internal/generation"
	"github.com/noah-isme/backend-videoquote/internal/obs"
	"github.com/noah-isme/backend-videoquote/internal/quote"
	"github.com/noah-isme/backend-videoquote/internal/selection"
	"github.com/noah-isme/backend-videoquote/internal/share"
)

// Handler exposes the working session API.
type Handler struct {
	service       *Service
	publicBaseURL string
}

// HandlerConfig configures the Handler dependencies.
type HandlerConfig struct {
	Service *Service
	// PublicBaseURL prefixes share identifiers to build share links.
	PublicBaseURL string
}

// NewHandler constructs a Handler.
func NewHandler(cfg HandlerConfig) *Handler {
	return &Handler{service: cfg.Service, publicBaseURL: strings.TrimRight(cfg.PublicBaseURL, "/")}
}

type generateRequest struct {
	Count int `json:"count" validate:"min=3,max=10"`
}

// Create handles POST /api/v1/sessions.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var in CreateInput
	if err := common.DecodeJSON(r, &in); err != nil {
		common.WriteError(w, err)
		return
	}
	sess, err := h.service.Create(r.Context(), in)
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSON(w, http.StatusCreated, map[string]any{"data": h.service.View(sess)})
}

// Get handles GET /api/v1/sessions/{id}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	view, err := h.service.Quote(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": view})
}

// Update handles PATCH /api/v1/sessions/{id}.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var in UpdateInput
	if err := common.DecodeJSON(r, &in); err != nil {
		common.WriteError(w, err)
		return
	}
	sess, err := h.service.Update(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": h.service.View(sess)})
}

// Generate handles POST /api/v1/sessions/{id}/ideas.
func (h *Handler) Generate(w http.ResponseWriter, r *http.Request) {
	var in generateRequest
	if err := common.DecodeJSON(r, &in); err != nil {
		common.WriteError(w, err)
		return
	}
	res, err := h.service.Generate(r.Context(), chi.URLParam(r, "id"), in.Count)
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": res})
}

// Toggle handles POST /api/v1/sessions/{id}/selection/{ideaId}.
func (h *Handler) Toggle(w http.ResponseWriter, r *http.Request) {
	view, selected, err := h.service.Toggle(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "ideaId"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": view, "selected": selected})
}

// Remove handles DELETE /api/v1/sessions/{id}/selection/{ideaId}.
func (h *Handler) Remove(w http.ResponseWriter, r *http.Request) {
	view, err := h.service.Remove(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "ideaId"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": view})
}

// Clear handles DELETE /api/v1/sessions/{id}/selection.
func (h *Handler) Clear(w http.ResponseWriter, r *http.Request) {
	view, err := h.service.Clear(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": view})
}

// Quote handles GET /api/v1/sessions/{id}/quote.
func (h *Handler) Quote(w http.ResponseWriter, r *http.Request) {
	view, err := h.service.Quote(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": view.Quote, "selectedIdeas": view.SelectedIdeas})
}

// Document handles GET /api/v1/sessions/{id}/document?format=text|html|json&locale=xx.
func (h *Handler) Document(w http.ResponseWriter, r *http.Request) {
	format := strings.ToLower(r.URL.Query().Get("format"))
	if format == "" {
		format = "text"
	}
	if format != "text" && format != "html" && format != "json" {
		common.JSONError(w, http.StatusBadRequest, "INVALID_FORMAT", "format must be one of text, html, json", nil)
		return
	}
	doc, err := h.service.Document(r.Context(), chi.URLParam(r, "id"), r.URL.Query().Get("locale"))
	if err != nil {
		h.writeError(w, err)
		return
	}

	var (
		buf         bytes.Buffer
		contentType string
		filename    string
	)
	switch format {
	case "json":
		obs.ObserveQuoteExport(format)
		common.JSON(w, http.StatusOK, map[string]any{"data": doc})
		return
	case "html":
		err = quote.RenderHTML(&buf, doc)
		contentType, filename = "text/html; charset=utf-8", quote.HTMLFilename
	default:
		err = quote.RenderText(&buf, doc)
		contentType, filename = "text/plain; charset=utf-8", quote.TextFilename
	}
	if err != nil {
		common.WriteError(w, err)
		return
	}
	obs.ObserveQuoteExport(format)
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// Share handles POST /api/v1/sessions/{id}/share.
func (h *Handler) Share(w http.ResponseWriter, r *http.Request) {
	snap, err := h.service.Share(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSON(w, http.StatusCreated, map[string]any{
		"data": map[string]any{
			"id":  snap.ID,
			"url": h.publicBaseURL + "/" + snap.ID,
		},
	})
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	common.WriteError(w, AsAppError(err))
}

// AsAppError maps session, generation and selection errors onto HTTP errors.
func AsAppError(err error) error {
	switch {
	case common.IsAppError(err):
		return err
	case errors.Is(err, ErrNotFound):
		return common.NewAppError("SESSION_NOT_FOUND", "session not found", http.StatusNotFound, err)
	case errors.Is(err, ErrBusy):
		return common.NewAppError("SESSION_BUSY", "session is busy, retry shortly", http.StatusConflict, err)
	case errors.Is(err, ErrInvalidInput), errors.Is(err, generation.ErrInvalidInput):
		return common.NewAppError("INVALID_INPUT", err.Error(), http.StatusBadRequest, err)
	case errors.Is(err, selection.ErrUnknownIdea):
		return common.NewAppError("IDEA_NOT_FOUND", "idea is not part of this session", http.StatusNotFound, err)
	case errors.Is(err, generation.ErrPoolFull):
		return common.NewAppError("POOL_FULL", "the idea pool is full", http.StatusConflict, err)
	case errors.Is(err, generation.ErrMalformedResponse):
		return common.NewAppError("GENERATION_MALFORMED", "the idea generator returned an unreadable response", http.StatusBadGateway, err)
	case errors.Is(err, generation.ErrCountMismatch):
		return common.NewAppError("GENERATION_INCOMPLETE", "the idea generator returned too few ideas", http.StatusBadGateway, err)
	case errors.Is(err, generation.ErrGenerationFailed):
		return common.NewAppError("GENERATION_FAILED", "the idea generator is unavailable", http.StatusBadGateway, err)
	case errors.Is(err, quote.ErrEmptySelection):
		return common.NewAppError("EMPTY_SELECTION", "select at least one idea", http.StatusBadRequest, err)
	case errors.Is(err, share.ErrInvalidInput), errors.Is(err, share.ErrIDExhausted):
		return share.AsAppError(err)
	default:
		return err
	}
}
