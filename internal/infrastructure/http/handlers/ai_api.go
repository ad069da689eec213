package handlers

import (
	"net/http"

	"github.com/burgermaster/blendcalc/internal/domain/blend"
	"github.com/burgermaster/blendcalc/internal/infrastructure/ai/gemini"
	"github.com/burgermaster/blendcalc/internal/infrastructure/http/response"
	apperrors "github.com/burgermaster/blendcalc/pkg/errors"
	"go.uber.org/zap"
)

// SearchRequest asks for blend suggestions. An empty query searches the
// default category.
type SearchRequest struct {
	Query string `json:"query" validate:"max=200"`
}

// SuggestionRequest is a suggested blend chosen by the user
type SuggestionRequest struct {
	ID          string        `json:"id"`
	Name        string        `json:"name" validate:"blend_name,max=120"`
	Description string        `json:"description" validate:"max=2000"`
	FatRatio    *float64      `json:"fatRatio" validate:"required,gte=0,lte=1"`
	Meats       []MeatRequest `json:"meats" validate:"max=20,dive"`
}

// ApplySuggestionRequest applies a suggestion to the current recipe
type ApplySuggestionRequest struct {
	Blend SuggestionRequest `json:"blend"`
}

// ExtractRequest carries an image as a data URL or plain base64
type ExtractRequest struct {
	Image string `json:"image" validate:"required"`
}

// SearchSuggestions handles POST /api/v1/suggestions/search
func (h *APIHandlers) SearchSuggestions(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if err := h.validate.decodeJSON(r, &req); err != nil {
		response.Error(w, r, h.logger, err)
		return
	}

	blends, err := h.service.SearchBlends(r.Context(), req.Query)
	if err != nil {
		response.Error(w, r, h.logger, err)
		return
	}

	h.logger.Info("Blend search served",
		zap.String("query", req.Query),
		zap.Int("results", len(blends)),
	)
	response.OK(w, http.StatusOK, blends, "")
}

// ApplySuggestion handles POST /api/v1/suggestions/apply
func (h *APIHandlers) ApplySuggestion(w http.ResponseWriter, r *http.Request) {
	var req ApplySuggestionRequest
	if err := h.validate.decodeJSON(r, &req); err != nil {
		response.Error(w, r, h.logger, err)
		return
	}

	suggestion := blend.SuggestedBlend{
		ID:          req.Blend.ID,
		Name:        req.Blend.Name,
		Description: req.Blend.Description,
		FatRatio:    *req.Blend.FatRatio,
		Meats:       toMeats(req.Blend.Meats),
	}
	state, err := h.service.ApplySuggestion(r.Context(), suggestion)
	h.writeState(w, r, state, err, "Suggestion applied")
}

// ExtractRecipe handles POST /api/v1/recipe/extract
func (h *APIHandlers) ExtractRecipe(w http.ResponseWriter, r *http.Request) {
	var req ExtractRequest
	if err := h.validate.decodeJSON(r, &req); err != nil {
		response.Error(w, r, h.logger, err)
		return
	}

	image, err := gemini.DecodeImagePayload(req.Image)
	if err != nil {
		response.Error(w, r, h.logger, apperrors.NewValidationError("image must be a data URL or base64").WithCause(err))
		return
	}

	state, err := h.service.ExtractRecipe(r.Context(), image)
	h.writeState(w, r, state, err, "Recipe extracted")
}
