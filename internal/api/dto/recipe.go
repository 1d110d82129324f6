package dto

import (
	"github.com/hugh/recipe-api/internal/api/validation"
	"github.com/hugh/recipe-api/internal/database/models"
	"github.com/hugh/recipe-api/internal/recipe"
	"github.com/shopspring/decimal"
)

type AttributeRequest struct {
	Name string `json:"name"`
}

func (r AttributeRequest) Validate() map[string]string {
	errors := make(map[string]string)
	name := validation.SanitizeString(r.Name)
	if name == "" {
		errors["name"] = "This field may not be blank."
	} else if len([]rune(name)) > 255 {
		errors["name"] = "Ensure this field has no more than 255 characters."
	}
	return errors
}

// AttributeResponse is the wire form of tags and ingredients.
type AttributeResponse struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

func NewTagResponses(tags []models.Tag) []AttributeResponse {
	out := make([]AttributeResponse, len(tags))
	for i, t := range tags {
		out[i] = AttributeResponse{ID: t.ID, Name: t.Name}
	}
	return out
}

func NewIngredientResponses(ingredients []models.Ingredient) []AttributeResponse {
	out := make([]AttributeResponse, len(ingredients))
	for i, in := range ingredients {
		out[i] = AttributeResponse{ID: in.ID, Name: in.Name}
	}
	return out
}

// RecipeRequest is the body of recipe create and update calls. Price may
// be sent as a JSON string ("5.25") or number.
type RecipeRequest struct {
	Name        *string          `json:"name"`
	TimeMinutes *int             `json:"time_minutes"`
	Price       *decimal.Decimal `json:"price"`
	Link        *string          `json:"link"`
	Tags        *[]uint          `json:"tags"`
	Ingredients *[]uint          `json:"ingredients"`
}

// Validate checks field shapes. With partial false (POST, PUT) the
// required fields must be present.
func (r RecipeRequest) Validate(partial bool) map[string]string {
	errors := make(map[string]string)

	if r.Name == nil {
		if !partial {
			errors["name"] = "This field is required."
		}
	} else if validation.SanitizeString(*r.Name) == "" {
		errors["name"] = "This field may not be blank."
	}

	if r.TimeMinutes == nil {
		if !partial {
			errors["time_minutes"] = "This field is required."
		}
	} else if *r.TimeMinutes < 0 {
		errors["time_minutes"] = "Ensure this value is greater than or equal to 0."
	}

	if r.Price == nil {
		if !partial {
			errors["price"] = "This field is required."
		}
	} else if r.Price.IsNegative() {
		errors["price"] = "Ensure this value is greater than or equal to 0."
	}

	if r.Link != nil && *r.Link != "" && !validation.IsValidLink(*r.Link) {
		errors["link"] = "Enter a valid URL."
	}

	return errors
}

func (r RecipeRequest) CreateInput() recipe.RecipeInput {
	in := recipe.RecipeInput{
		TimeMinutes: r.TimeMinutes,
		Price:       r.Price,
	}
	if r.Name != nil {
		in.Name = validation.SanitizeString(*r.Name)
	}
	if r.Link != nil {
		in.Link = *r.Link
	}
	if r.Tags != nil {
		in.TagIDs = *r.Tags
	}
	if r.Ingredients != nil {
		in.IngredientIDs = *r.Ingredients
	}
	return in
}

// Patch converts the request into a partial update. For a full
// replacement (PUT) the omitted optional fields are reset.
func (r RecipeRequest) Patch(replace bool) recipe.RecipePatch {
	p := recipe.RecipePatch{
		TimeMinutes:   r.TimeMinutes,
		Price:         r.Price,
		Link:          r.Link,
		TagIDs:        r.Tags,
		IngredientIDs: r.Ingredients,
	}
	if r.Name != nil {
		name := validation.SanitizeString(*r.Name)
		p.Name = &name
	}
	if replace {
		if p.Link == nil {
			empty := ""
			p.Link = &empty
		}
		if p.TagIDs == nil {
			p.TagIDs = &[]uint{}
		}
		if p.IngredientIDs == nil {
			p.IngredientIDs = &[]uint{}
		}
	}
	return p
}

// RecipeResponse is the list form of a recipe; links are ids only.
type RecipeResponse struct {
	ID          uint    `json:"id"`
	Name        string  `json:"name"`
	TimeMinutes int     `json:"time_minutes"`
	Price       string  `json:"price"`
	Link        string  `json:"link"`
	Tags        []uint  `json:"tags"`
	Ingredients []uint  `json:"ingredients"`
	Image       *string `json:"image"`
}

// RecipeDetailResponse expands tags and ingredients.
type RecipeDetailResponse struct {
	ID          uint                `json:"id"`
	Name        string              `json:"name"`
	TimeMinutes int                 `json:"time_minutes"`
	Price       string              `json:"price"`
	Link        string              `json:"link"`
	Tags        []AttributeResponse `json:"tags"`
	Ingredients []AttributeResponse `json:"ingredients"`
	Image       *string             `json:"image"`
}

type RecipeImageResponse struct {
	ID    uint    `json:"id"`
	Image *string `json:"image"`
}

// ImageURLFunc maps a storage key to the URL clients fetch it from.
type ImageURLFunc func(key string) string

func imageURL(r *models.Recipe, urlFor ImageURLFunc) *string {
	if !r.HasImage() {
		return nil
	}
	u := urlFor(r.Image)
	return &u
}

func NewRecipeResponse(r *models.Recipe, urlFor ImageURLFunc) RecipeResponse {
	return RecipeResponse{
		ID:          r.ID,
		Name:        r.Name,
		TimeMinutes: r.TimeMinutes,
		Price:       r.Price.StringFixed(2),
		Link:        r.Link,
		Tags:        r.TagIDs(),
		Ingredients: r.IngredientIDs(),
		Image:       imageURL(r, urlFor),
	}
}

func NewRecipeResponses(recipes []models.Recipe, urlFor ImageURLFunc) []RecipeResponse {
	out := make([]RecipeResponse, len(recipes))
	for i := range recipes {
		out[i] = NewRecipeResponse(&recipes[i], urlFor)
	}
	return out
}

func NewRecipeDetailResponse(r *models.Recipe, urlFor ImageURLFunc) RecipeDetailResponse {
	return RecipeDetailResponse{
		ID:          r.ID,
		Name:        r.Name,
		TimeMinutes: r.TimeMinutes,
		Price:       r.Price.StringFixed(2),
		Link:        r.Link,
		Tags:        NewTagResponses(r.Tags),
		Ingredients: NewIngredientResponses(r.Ingredients),
		Image:       imageURL(r, urlFor),
	}
}

func NewRecipeImageResponse(r *models.Recipe, urlFor ImageURLFunc) RecipeImageResponse {
	return RecipeImageResponse{ID: r.ID, Image: imageURL(r, urlFor)}
}
