package analyzer

import (
	"errors"
	"net/http"

	"github.com/noah-isme/backend-videoquote/internal/common"
)

// Handler exposes website analysis.
type Handler struct {
	Analyzer Analyzer
}

type analyzeRequest struct {
	URL      string `json:"url" validate:"required,max=2048"`
	Language string `json:"language" validate:"omitempty,oneof=es en fr de it pt"`
}

// Analyze handles POST /api/v1/analyze.
func (h *Handler) Analyze(w http.ResponseWriter, r *http.Request) {
	var in analyzeRequest
	if err := common.DecodeJSON(r, &in); err != nil {
		common.WriteError(w, err)
		return
	}
	res, err := h.Analyzer.Analyze(r.Context(), in.URL, in.Language)
	if err != nil {
		common.WriteError(w, asAppError(err))
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": res})
}

func asAppError(err error) error {
	switch {
	case errors.Is(err, ErrInvalidURL):
		return common.NewAppError("INVALID_URL", "please provide a valid website URL", http.StatusBadRequest, err)
	case errors.Is(err, ErrFetchFailed):
		return common.NewAppError("WEBSITE_UNREACHABLE", "could not access the website", http.StatusBadGateway, err)
	case errors.Is(err, ErrNoContent):
		return common.NewAppError("WEBSITE_EMPTY", "no content could be extracted from the website", http.StatusUnprocessableEntity, err)
	case errors.Is(err, ErrAnalysisFailed):
		return common.NewAppError("ANALYSIS_FAILED", "failed to analyze website content, please enter the details manually", http.StatusBadGateway, err)
	default:
		return err
	}
}
