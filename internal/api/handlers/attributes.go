package handlers

import (
	"net/http"

	"github.com/hugh/recipe-api/internal/api/dto"
	"github.com/hugh/recipe-api/internal/api/middleware"
	"github.com/hugh/recipe-api/internal/api/validation"
	"github.com/hugh/recipe-api/internal/recipe"
)

func attributeFilter(r *http.Request) recipe.AttributeFilter {
	return recipe.AttributeFilter{AssignedOnly: validation.ParseFlag(r.URL.Query().Get("assigned_only"))}
}

func (h *RecipeHandler) ListTags(w http.ResponseWriter, r *http.Request) {
	tags, err := h.recipes.ListTags(r.Context(), middleware.GetUserID(r.Context()), attributeFilter(r))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.NewTagResponses(tags))
}

func (h *RecipeHandler) CreateTag(w http.ResponseWriter, r *http.Request) {
	var req dto.AttributeRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if fieldErrs := req.Validate(); len(fieldErrs) > 0 {
		writeValidation(w, fieldErrs)
		return
	}

	tag, err := h.recipes.CreateTag(r.Context(), middleware.GetUserID(r.Context()), validation.SanitizeString(req.Name))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, dto.AttributeResponse{ID: tag.ID, Name: tag.Name})
}

func (h *RecipeHandler) ListIngredients(w http.ResponseWriter, r *http.Request) {
	ingredients, err := h.recipes.ListIngredients(r.Context(), middleware.GetUserID(r.Context()), attributeFilter(r))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.NewIngredientResponses(ingredients))
}

func (h *RecipeHandler) CreateIngredient(w http.ResponseWriter, r *http.Request) {
	var req dto.AttributeRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if fieldErrs := req.Validate(); len(fieldErrs) > 0 {
		writeValidation(w, fieldErrs)
		return
	}

	ingredient, err := h.recipes.CreateIngredient(r.Context(), middleware.GetUserID(r.Context()), validation.SanitizeString(req.Name))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, dto.AttributeResponse{ID: ingredient.ID, Name: ingredient.Name})
}
