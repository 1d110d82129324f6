package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/hugh/recipe-api/internal/api/dto"
	"github.com/hugh/recipe-api/internal/api/middleware"
	"github.com/hugh/recipe-api/internal/api/validation"
	"github.com/hugh/recipe-api/internal/recipe"
)

// multipartMemory is how much of an upload is held in memory before
// spilling to a temp file.
const multipartMemory = 1 << 20

type RecipeHandler struct {
	recipes        *recipe.Service
	logger         *slog.Logger
	maxUploadBytes int64
}

func NewRecipeHandler(recipes *recipe.Service, logger *slog.Logger, maxUploadBytes int64) *RecipeHandler {
	return &RecipeHandler{recipes: recipes, logger: logger, maxUploadBytes: maxUploadBytes}
}

func (h *RecipeHandler) recipeID(w http.ResponseWriter, r *http.Request) (uint, bool) {
	id, err := validation.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusNotFound, dto.ErrorResponse{Error: "Not found."})
		return 0, false
	}
	return id, true
}

func (h *RecipeHandler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	tagIDs, err := validation.ParseIDList(query.Get("tags"))
	if err != nil {
		writeValidation(w, map[string]string{"tags": "Enter a comma separated list of ids."})
		return
	}
	ingredientIDs, err := validation.ParseIDList(query.Get("ingredients"))
	if err != nil {
		writeValidation(w, map[string]string{"ingredients": "Enter a comma separated list of ids."})
		return
	}

	recipes, err := h.recipes.ListRecipes(r.Context(), middleware.GetUserID(r.Context()), recipe.RecipeFilter{
		TagIDs:        tagIDs,
		IngredientIDs: ingredientIDs,
	})
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.NewRecipeResponses(recipes, h.recipes.ImageURL))
}

func (h *RecipeHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.RecipeRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if fieldErrs := req.Validate(false); len(fieldErrs) > 0 {
		writeValidation(w, fieldErrs)
		return
	}

	created, err := h.recipes.CreateRecipe(r.Context(), middleware.GetUserID(r.Context()), req.CreateInput())
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.NewRecipeDetailResponse(created, h.recipes.ImageURL))
}

func (h *RecipeHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := h.recipeID(w, r)
	if !ok {
		return
	}

	found, err := h.recipes.GetRecipe(r.Context(), middleware.GetUserID(r.Context()), id)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.NewRecipeDetailResponse(found, h.recipes.ImageURL))
}

// Update handles PATCH; Replace handles PUT, which requires every
// mandatory field and resets omitted optional ones.
func (h *RecipeHandler) Update(w http.ResponseWriter, r *http.Request) {
	h.update(w, r, false)
}

func (h *RecipeHandler) Replace(w http.ResponseWriter, r *http.Request) {
	h.update(w, r, true)
}

func (h *RecipeHandler) update(w http.ResponseWriter, r *http.Request, replace bool) {
	id, ok := h.recipeID(w, r)
	if !ok {
		return
	}

	var req dto.RecipeRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if fieldErrs := req.Validate(!replace); len(fieldErrs) > 0 {
		writeValidation(w, fieldErrs)
		return
	}

	updated, err := h.recipes.UpdateRecipe(r.Context(), middleware.GetUserID(r.Context()), id, req.Patch(replace))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.NewRecipeDetailResponse(updated, h.recipes.ImageURL))
}

func (h *RecipeHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.recipeID(w, r)
	if !ok {
		return
	}

	if err := h.recipes.DeleteRecipe(r.Context(), middleware.GetUserID(r.Context()), id); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// UploadImage accepts a multipart form with the file in the "image" field.
func (h *RecipeHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	id, ok := h.recipeID(w, r)
	if !ok {
		return
	}

	if h.maxUploadBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes+multipartMemory)
	}
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeValidation(w, map[string]string{"image": "The submitted file is too large."})
			return
		}
		writeValidation(w, map[string]string{"image": "The submitted data was not a file. Check the encoding type on the form."})
		return
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	upload := recipe.ImageUpload{}
	file, header, err := r.FormFile("image")
	switch {
	case err == nil:
		defer file.Close()
		upload.Filename = header.Filename
		upload.Content = file
	case errors.Is(err, http.ErrMissingFile):
		// the service reports the missing file
	default:
		writeError(w, r, h.logger, err)
		return
	}

	updated, err := h.recipes.AttachImage(r.Context(), middleware.GetUserID(r.Context()), id, upload)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.NewRecipeImageResponse(updated, h.recipes.ImageURL))
}
