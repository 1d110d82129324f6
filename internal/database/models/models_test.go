package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "test@asd.com", NormalizeEmail("test@ASD.COM"))
	assert.Equal(t, "user@example.com", NormalizeEmail("  User@Example.com "))
	assert.Equal(t, "", NormalizeEmail("   "))
}

func TestStringForms(t *testing.T) {
	assert.Equal(t, "Vegan", Tag{Name: "Vegan"}.String())
	assert.Equal(t, "Curcuma", Ingredient{Name: "Curcuma"}.String())
	assert.Equal(t, "Asado", Recipe{Name: "Asado"}.String())
}

func TestRecipeLinkIDs(t *testing.T) {
	r := Recipe{
		Tags:        []Tag{{Base: Base{ID: 3}}, {Base: Base{ID: 1}}},
		Ingredients: []Ingredient{{Base: Base{ID: 9}}},
	}

	assert.Equal(t, []uint{3, 1}, r.TagIDs())
	assert.Equal(t, []uint{9}, r.IngredientIDs())
	assert.False(t, r.HasImage())

	r.Image = "uploads/recipe/abc.png"
	assert.True(t, r.HasImage())
}
