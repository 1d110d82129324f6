package models

import "github.com/shopspring/decimal"

type Recipe struct {
	Base
	UserID      uint            `gorm:"index;not null" json:"-"`
	Name        string          `gorm:"not null" json:"name"`
	TimeMinutes int             `gorm:"not null" json:"time_minutes"`
	Price       decimal.Decimal `gorm:"type:numeric(5,2);not null" json:"price"`
	Link        string          `json:"link"`
	Image       string          `gorm:"not null;default:''" json:"image"` // storage key, empty when no image is attached

	// Relationships
	User        *User        `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Tags        []Tag        `gorm:"many2many:recipe_tags;constraint:OnDelete:CASCADE" json:"tags"`
	Ingredients []Ingredient `gorm:"many2many:recipe_ingredients;constraint:OnDelete:CASCADE" json:"ingredients"`
}

func (Recipe) TableName() string {
	return "recipes"
}

func (r Recipe) String() string {
	return r.Name
}

func (r Recipe) HasImage() bool {
	return r.Image != ""
}

// TagIDs returns the ids of the loaded tags, in load order.
func (r Recipe) TagIDs() []uint {
	ids := make([]uint, len(r.Tags))
	for i, t := range r.Tags {
		ids[i] = t.ID
	}
	return ids
}

// IngredientIDs returns the ids of the loaded ingredients, in load order.
func (r Recipe) IngredientIDs() []uint {
	ids := make([]uint, len(r.Ingredients))
	for i, in := range r.Ingredients {
		ids[i] = in.ID
	}
	return ids
}
