package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"

	"github.com/burgermaster/blendcalc/internal/domain/blend"
	"github.com/burgermaster/blendcalc/internal/infrastructure/http/response"
	"github.com/burgermaster/blendcalc/internal/ports/inbound"
	apperrors "github.com/burgermaster/blendcalc/pkg/errors"
	"github.com/go-chi/chi/v5"
)

// MeatRequest is one meat of a recipe in a request body
type MeatRequest struct {
	Name  string   `json:"name" validate:"blend_name,max=80"`
	Ratio *float64 `json:"ratio" validate:"required,gte=0,lte=1"`
}

// RecipeRequest is a full recipe in a request body
type RecipeRequest struct {
	Name        string        `json:"name" validate:"blend_name,max=120"`
	FatRatio    *float64      `json:"fatRatio" validate:"required,gte=0,lte=1"`
	Meats       []MeatRequest `json:"meats" validate:"max=20,dive"`
	UnitWeight  float64       `json:"unitWeight" validate:"gte=0"`
	GrindMethod string        `json:"grindMethod" validate:"max=200"`
}

func (r RecipeRequest) toDomain() blend.Recipe {
	return blend.Recipe{
		Name:        r.Name,
		FatRatio:    *r.FatRatio,
		Meats:       toMeats(r.Meats),
		UnitWeight:  r.UnitWeight,
		GrindMethod: r.GrindMethod,
	}
}

func toMeats(in []MeatRequest) []blend.MeatComponent {
	meats := make([]blend.MeatComponent, 0, len(in))
	for _, m := range in {
		meats = append(meats, blend.MeatComponent{Name: m.Name, Ratio: *m.Ratio})
	}
	return meats
}

// FatRatioRequest sets the fat share of the blend
type FatRatioRequest struct {
	FatRatio *float64 `json:"fatRatio" validate:"required,gte=0,lte=1"`
}

// UnitWeightRequest sets the patty weight in grams
type UnitWeightRequest struct {
	UnitWeight *float64 `json:"unitWeight" validate:"required,gte=0"`
}

// UnitsRequest sets the number of patties to produce
type UnitsRequest struct {
	Units *int `json:"units" validate:"required,gte=0"`
}

// PriceRequest sets an ingredient price per kilogram. The price may be a
// JSON number or a string such as "18,90".
type PriceRequest struct {
	Price PriceInput `json:"price" validate:"required"`
}

// SellingPriceRequest sets the selling price of one burger
type SellingPriceRequest struct {
	SellingPrice *float64 `json:"sellingPrice" validate:"required,gte=0"`
}

// PriceInput keeps the raw text of a price field
type PriceInput string

// UnmarshalJSON accepts both strings and numbers
func (p *PriceInput) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*p = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*p = PriceInput(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*p = PriceInput(n.String())
	return nil
}

// GetState handles GET /api/v1/state
func (h *APIHandlers) GetState(w http.ResponseWriter, r *http.Request) {
	state, err := h.service.State(r.Context())
	h.writeState(w, r, state, err, "")
}

// ResetState handles DELETE /api/v1/state
func (h *APIHandlers) ResetState(w http.ResponseWriter, r *http.Request) {
	state, err := h.service.Reset(r.Context())
	h.writeState(w, r, state, err, "State reset to defaults")
}

// GetCalculation handles GET /api/v1/calculation
func (h *APIHandlers) GetCalculation(w http.ResponseWriter, r *http.Request) {
	report, err := h.service.Calculate(r.Context())
	if err != nil {
		response.Error(w, r, h.logger, err)
		return
	}
	response.OK(w, http.StatusOK, report, "")
}

// ReplaceRecipe handles PUT /api/v1/recipe
func (h *APIHandlers) ReplaceRecipe(w http.ResponseWriter, r *http.Request) {
	var req RecipeRequest
	if err := h.validate.decodeJSON(r, &req); err != nil {
		response.Error(w, r, h.logger, err)
		return
	}
	state, err := h.service.ReplaceRecipe(r.Context(), req.toDomain())
	h.writeState(w, r, state, err, "Recipe updated")
}

// SetFatRatio handles PUT /api/v1/recipe/fat-ratio
func (h *APIHandlers) SetFatRatio(w http.ResponseWriter, r *http.Request) {
	var req FatRatioRequest
	if err := h.validate.decodeJSON(r, &req); err != nil {
		response.Error(w, r, h.logger, err)
		return
	}
	state, err := h.service.SetFatRatio(r.Context(), *req.FatRatio)
	h.writeState(w, r, state, err, "")
}

// SetUnitWeight handles PUT /api/v1/recipe/unit-weight
func (h *APIHandlers) SetUnitWeight(w http.ResponseWriter, r *http.Request) {
	var req UnitWeightRequest
	if err := h.validate.decodeJSON(r, &req); err != nil {
		response.Error(w, r, h.logger, err)
		return
	}
	state, err := h.service.SetUnitWeight(r.Context(), *req.UnitWeight)
	h.writeState(w, r, state, err, "")
}

// SelectSize handles PUT /api/v1/recipe/size/{id}
func (h *APIHandlers) SelectSize(w http.ResponseWriter, r *http.Request) {
	state, err := h.service.SelectSize(r.Context(), chi.URLParam(r, "id"))
	h.writeState(w, r, state, err, "")
}

// AddMeat handles POST /api/v1/recipe/meats
func (h *APIHandlers) AddMeat(w http.ResponseWriter, r *http.Request) {
	state, err := h.service.AddMeat(r.Context())
	if err != nil {
		response.Error(w, r, h.logger, err)
		return
	}
	response.OK(w, http.StatusCreated, state, "Meat added")
}

// UpdateMeat handles PUT /api/v1/recipe/meats/{index}
func (h *APIHandlers) UpdateMeat(w http.ResponseWriter, r *http.Request) {
	index, err := meatIndex(r)
	if err != nil {
		response.Error(w, r, h.logger, err)
		return
	}

	var req MeatRequest
	if err := h.validate.decodeJSON(r, &req); err != nil {
		response.Error(w, r, h.logger, err)
		return
	}

	state, err := h.service.UpdateMeat(r.Context(), inbound.UpdateMeatCommand{
		Index: index,
		Meat:  blend.MeatComponent{Name: req.Name, Ratio: *req.Ratio},
	})
	h.writeState(w, r, state, err, "")
}

// RemoveMeat handles DELETE /api/v1/recipe/meats/{index}
func (h *APIHandlers) RemoveMeat(w http.ResponseWriter, r *http.Request) {
	index, err := meatIndex(r)
	if err != nil {
		response.Error(w, r, h.logger, err)
		return
	}
	state, err := h.service.RemoveMeat(r.Context(), index)
	h.writeState(w, r, state, err, "Meat removed")
}

// SetUnits handles PUT /api/v1/units
func (h *APIHandlers) SetUnits(w http.ResponseWriter, r *http.Request) {
	var req UnitsRequest
	if err := h.validate.decodeJSON(r, &req); err != nil {
		response.Error(w, r, h.logger, err)
		return
	}
	state, err := h.service.SetUnits(r.Context(), *req.Units)
	h.writeState(w, r, state, err, "")
}

// SetPrice handles PUT /api/v1/prices/{name}
func (h *APIHandlers) SetPrice(w http.ResponseWriter, r *http.Request) {
	// chi matches on RawPath when the path has escapes it must keep, and
	// the param is still encoded then. Otherwise it is already decoded.
	name := chi.URLParam(r, "name")
	if r.URL.RawPath != "" {
		if unescaped, err := url.PathUnescape(name); err == nil {
			name = unescaped
		}
	}

	var req PriceRequest
	if err := h.validate.decodeJSON(r, &req); err != nil {
		response.Error(w, r, h.logger, err)
		return
	}

	state, err := h.service.SetPrice(r.Context(), inbound.SetPriceCommand{Name: name, Raw: string(req.Price)})
	h.writeState(w, r, state, err, "")
}

// SetSellingPrice handles PUT /api/v1/selling-price
func (h *APIHandlers) SetSellingPrice(w http.ResponseWriter, r *http.Request) {
	var req SellingPriceRequest
	if err := h.validate.decodeJSON(r, &req); err != nil {
		response.Error(w, r, h.logger, err)
		return
	}
	state, err := h.service.SetSellingPrice(r.Context(), *req.SellingPrice)
	h.writeState(w, r, state, err, "")
}

// ShoppingList handles GET /api/v1/shopping-list
func (h *APIHandlers) ShoppingList(w http.ResponseWriter, r *http.Request) {
	text, err := h.service.ShoppingList(r.Context())
	h.writeText(w, r, "text/plain; charset=utf-8", text, err)
}

// ProductionSheet handles GET /api/v1/production-sheet
func (h *APIHandlers) ProductionSheet(w http.ResponseWriter, r *http.Request) {
	text, err := h.service.ProductionSheet(r.Context())
	h.writeText(w, r, "text/markdown; charset=utf-8", text, err)
}

func (h *APIHandlers) writeState(w http.ResponseWriter, r *http.Request, state inbound.StateDTO, err error, message string) {
	if err != nil {
		response.Error(w, r, h.logger, err)
		return
	}
	response.OK(w, http.StatusOK, state, message)
}

func (h *APIHandlers) writeText(w http.ResponseWriter, r *http.Request, contentType, text string, err error) {
	if err != nil {
		response.Error(w, r, h.logger, err)
		return
	}
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(text))
}

func meatIndex(r *http.Request) (int, error) {
	raw := chi.URLParam(r, "index")
	index, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperrors.NewBadRequestError("Meat index must be an integer").
			WithMetadata("index", raw)
	}
	return index, nil
}
