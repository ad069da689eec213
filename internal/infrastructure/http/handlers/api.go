// Package handlers provides HTTP handlers for the blend calculator REST API
package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/burgermaster/blendcalc/internal/domain/blend"
	aiinfra "github.com/burgermaster/blendcalc/internal/infrastructure/ai"
	"github.com/burgermaster/blendcalc/internal/infrastructure/http/response"
	"github.com/burgermaster/blendcalc/internal/ports/inbound"
	"go.uber.org/zap"
)

// AIHealth reports the state of the AI collaborators
type AIHealth interface {
	CheckHealth(ctx context.Context) *aiinfra.AIHealthStatus
}

// APIHandlers handles REST API requests
type APIHandlers struct {
	service  inbound.BlendService
	aiHealth AIHealth
	validate *Validator
	logger   *zap.Logger
	version  string
	now      func() time.Time
}

// NewAPIHandlers creates a new API handlers instance. aiHealth may be nil.
func NewAPIHandlers(
	service inbound.BlendService,
	aiHealth AIHealth,
	logger *zap.Logger,
	version string,
) *APIHandlers {
	return &APIHandlers{
		service:  service,
		aiHealth: aiHealth,
		validate: NewValidator(),
		logger:   logger.Named("api"),
		version:  version,
		now:      time.Now,
	}
}

// HealthResponse is the body of GET /health
type HealthResponse struct {
	Status    string                  `json:"status"`
	Version   string                  `json:"version"`
	Timestamp int64                   `json:"timestamp"`
	Storage   string                  `json:"storage"`
	AI        *aiinfra.AIHealthStatus `json:"ai,omitempty"`
}

// HealthCheck handles GET /health. Storage failures make the service
// unhealthy; AI problems only degrade it.
func (h *APIHandlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	body := HealthResponse{
		Status:    "healthy",
		Version:   h.version,
		Timestamp: h.now().Unix(),
		Storage:   "ok",
	}
	status := http.StatusOK

	if _, err := h.service.State(r.Context()); err != nil {
		h.logger.Warn("Health check: state store unavailable", zap.Error(err))
		body.Status = "unhealthy"
		body.Storage = "unavailable"
		status = http.StatusServiceUnavailable
	}

	if h.aiHealth != nil {
		body.AI = h.aiHealth.CheckHealth(r.Context())
		if body.Status == "healthy" && body.AI.Overall != aiinfra.StatusHealthy {
			body.Status = "degraded"
		}
	}

	response.JSON(w, status, response.APIResponse{
		Success: status == http.StatusOK,
		Data:    body,
		Message: "Service is " + body.Status,
	})
}

// CalculateRequest is a stateless calculation of an arbitrary recipe
type CalculateRequest struct {
	Recipe       RecipeRequest      `json:"recipe"`
	Units        *int               `json:"units" validate:"required,gte=0"`
	Prices       map[string]float64 `json:"prices" validate:"omitempty,dive,keys,required,endkeys,gte=0"`
	SellingPrice float64            `json:"sellingPrice" validate:"gte=0"`
}

// Calculate handles POST /api/v1/calculate. Nothing is persisted.
func (h *APIHandlers) Calculate(w http.ResponseWriter, r *http.Request) {
	var req CalculateRequest
	if err := h.validate.decodeJSON(r, &req); err != nil {
		response.Error(w, r, h.logger, err)
		return
	}

	recipe := req.Recipe.toDomain()
	prices := blend.PriceTable(req.Prices)
	if prices == nil {
		prices = blend.PriceTable{}
	}

	result := blend.Compute(recipe, *req.Units)
	report := inbound.Report{
		State: inbound.StateDTO{
			Recipe:       recipe,
			Units:        *req.Units,
			Prices:       prices,
			SellingPrice: req.SellingPrice,
		},
		Result:     result,
		Costs:      blend.ComputeCosts(result, prices, *req.Units, req.SellingPrice),
		Chart:      blend.ChartData(result),
		RatioDrift: recipe.RatioDrift(),
	}

	response.OK(w, http.StatusOK, report, "")
}

// ListSizes handles GET /api/v1/sizes
func (h *APIHandlers) ListSizes(w http.ResponseWriter, r *http.Request) {
	response.OK(w, http.StatusOK, h.service.Sizes(), "")
}

// ListCategories handles GET /api/v1/categories
func (h *APIHandlers) ListCategories(w http.ResponseWriter, r *http.Request) {
	response.OK(w, http.StatusOK, h.service.Categories(), "")
}
