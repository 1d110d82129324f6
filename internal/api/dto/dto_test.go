package dto

import (
	"encoding/json"
	"testing"

	"github.com/hugh/recipe-api/internal/database/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateUserRequest_Validate(t *testing.T) {
	assert.Empty(t, CreateUserRequest{Email: "test@example.com", Password: "test123"}.Validate())

	errs := CreateUserRequest{Email: "", Password: "pw"}.Validate()
	assert.Contains(t, errs, "email")
	assert.Contains(t, errs, "password")

	errs = CreateUserRequest{Email: "nope", Password: "password"}.Validate()
	assert.Equal(t, "Enter a valid email address.", errs["email"])
}

func TestUpdateUserRequest_Validate(t *testing.T) {
	name := "Chef"
	assert.Empty(t, UpdateUserRequest{Name: &name}.Validate(false))
	assert.Contains(t, UpdateUserRequest{}.Validate(false), "name")
	assert.Empty(t, UpdateUserRequest{}.Validate(true))

	short := "abc"
	assert.Contains(t, UpdateUserRequest{Password: &short}.Validate(true), "password")
}

func TestRecipeRequest_PriceFormats(t *testing.T) {
	for _, body := range []string{`{"price":"5.25"}`, `{"price":5.25}`} {
		var req RecipeRequest
		require.NoError(t, json.Unmarshal([]byte(body), &req), body)
		require.NotNil(t, req.Price)
		assert.Equal(t, "5.25", req.Price.StringFixed(2))
	}
}

func TestRecipeRequest_Validate(t *testing.T) {
	errs := RecipeRequest{}.Validate(false)
	assert.Contains(t, errs, "name")
	assert.Contains(t, errs, "time_minutes")
	assert.Contains(t, errs, "price")

	assert.Empty(t, RecipeRequest{}.Validate(true))

	minutes := -1
	link := "not a url"
	errs = RecipeRequest{TimeMinutes: &minutes, Link: &link}.Validate(true)
	assert.Contains(t, errs, "time_minutes")
	assert.Contains(t, errs, "link")
}

func TestRecipeRequest_Patch(t *testing.T) {
	name := "  Stew  "
	p := RecipeRequest{Name: &name}.Patch(false)
	require.NotNil(t, p.Name)
	assert.Equal(t, "Stew", *p.Name)
	assert.Nil(t, p.TagIDs)
	assert.Nil(t, p.Link)

	p = RecipeRequest{Name: &name}.Patch(true)
	require.NotNil(t, p.TagIDs)
	assert.Empty(t, *p.TagIDs)
	require.NotNil(t, p.Link)
	assert.Empty(t, *p.Link)
}

func TestNewRecipeResponses(t *testing.T) {
	r := &models.Recipe{
		Name:        "Soup",
		TimeMinutes: 10,
		Price:       decimal.RequireFromString("5"),
		Tags:        []models.Tag{{Base: models.Base{ID: 4}, Name: "Hot"}},
	}
	r.ID = 9
	urlFor := func(key string) string { return "/media/" + key }

	summary := NewRecipeResponse(r, urlFor)
	assert.Equal(t, "5.00", summary.Price)
	assert.Equal(t, []uint{4}, summary.Tags)
	assert.Empty(t, summary.Ingredients)
	assert.Nil(t, summary.Image)

	r.Image = "uploads/recipe/a.png"
	detail := NewRecipeDetailResponse(r, urlFor)
	require.Len(t, detail.Tags, 1)
	assert.Equal(t, "Hot", detail.Tags[0].Name)
	require.NotNil(t, detail.Image)
	assert.Equal(t, "/media/uploads/recipe/a.png", *detail.Image)

	data, err := json.Marshal(NewRecipeImageResponse(r, urlFor))
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":9,"image":"/media/uploads/recipe/a.png"}`, string(data))
}
