package recipe

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/hugh/recipe-api/internal/apperr"
	"github.com/hugh/recipe-api/internal/database/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var maxPrice = decimal.NewFromInt(1000)

// RecipeFilter narrows recipe listings. A recipe matches when it is linked
// to any of TagIDs and any of IngredientIDs; empty lists do not filter.
type RecipeFilter struct {
	TagIDs        []uint
	IngredientIDs []uint
}

// RecipeInput is the full set of fields for a new recipe. TimeMinutes and
// Price are required; nil means the client did not send them.
type RecipeInput struct {
	Name          string
	TimeMinutes   *int
	Price         *decimal.Decimal
	Link          string
	TagIDs        []uint
	IngredientIDs []uint
}

// RecipePatch changes the fields that are non-nil. TagIDs and
// IngredientIDs replace the whole link set when given.
type RecipePatch struct {
	Name          *string
	TimeMinutes   *int
	Price         *decimal.Decimal
	Link          *string
	TagIDs        *[]uint
	IngredientIDs *[]uint
}

func validatePrice(p decimal.Decimal) string {
	switch {
	case p.IsNegative():
		return "Ensure this value is greater than or equal to 0."
	case !p.Equal(p.Round(2)):
		return "Ensure that there are no more than 2 decimal places."
	case p.GreaterThanOrEqual(maxPrice):
		return "Ensure that there are no more than 3 digits before the decimal point."
	}
	return ""
}

func validateTime(minutes int) string {
	if minutes < 0 {
		return "Ensure this value is greater than or equal to 0."
	}
	return ""
}

func (in RecipeInput) validate() error {
	fields := make(map[string]string)
	if strings.TrimSpace(in.Name) == "" {
		fields["name"] = "This field may not be blank."
	} else if len([]rune(strings.TrimSpace(in.Name))) > maxNameLength {
		fields["name"] = fmt.Sprintf("Ensure this field has no more than %d characters.", maxNameLength)
	}
	if in.TimeMinutes == nil {
		fields["time_minutes"] = "This field is required."
	} else if msg := validateTime(*in.TimeMinutes); msg != "" {
		fields["time_minutes"] = msg
	}
	if in.Price == nil {
		fields["price"] = "This field is required."
	} else if msg := validatePrice(*in.Price); msg != "" {
		fields["price"] = msg
	}
	return apperr.FromFields(fields)
}

func (p RecipePatch) validate() error {
	fields := make(map[string]string)
	if p.Name != nil {
		if _, err := validateName(*p.Name); err != nil {
			fields["name"] = "This field may not be blank."
			if ve, ok := apperr.AsValidation(err); ok {
				fields["name"] = ve.Fields["name"]
			}
		}
	}
	if p.TimeMinutes != nil {
		if msg := validateTime(*p.TimeMinutes); msg != "" {
			fields["time_minutes"] = msg
		}
	}
	if p.Price != nil {
		if msg := validatePrice(*p.Price); msg != "" {
			fields["price"] = msg
		}
	}
	return apperr.FromFields(fields)
}

func preloadLinks(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Tags", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Preload("Ingredients", func(db *gorm.DB) *gorm.DB { return db.Order("id") })
}

// ListRecipes returns the owner's recipes, newest first, with tags and
// ingredients loaded.
func (s *Service) ListRecipes(ctx context.Context, ownerID uint, filter RecipeFilter) ([]models.Recipe, error) {
	db := s.db.WithContext(ctx)
	q := db.Where("recipes.user_id = ?", ownerID)

	if len(filter.TagIDs) > 0 {
		sub := db.Table("recipe_tags").Select("recipe_id").Where("tag_id IN ?", uniqueIDs(filter.TagIDs))
		q = q.Where("recipes.id IN (?)", sub)
	}
	if len(filter.IngredientIDs) > 0 {
		sub := db.Table("recipe_ingredients").Select("recipe_id").Where("ingredient_id IN ?", uniqueIDs(filter.IngredientIDs))
		q = q.Where("recipes.id IN (?)", sub)
	}

	recipes := []models.Recipe{}
	if err := preloadLinks(q).Order("recipes.id DESC").Find(&recipes).Error; err != nil {
		return nil, fmt.Errorf("listing recipes: %w", err)
	}
	return recipes, nil
}

func getRecipe(db *gorm.DB, ownerID, id uint) (*models.Recipe, error) {
	var recipe models.Recipe
	err := preloadLinks(db).Where("id = ? AND user_id = ?", id, ownerID).First(&recipe).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecipeNotFound
		}
		return nil, fmt.Errorf("loading recipe: %w", err)
	}
	return &recipe, nil
}

// GetRecipe returns one of the owner's recipes with its links expanded.
func (s *Service) GetRecipe(ctx context.Context, ownerID, id uint) (*models.Recipe, error) {
	return getRecipe(s.db.WithContext(ctx), ownerID, id)
}

// CreateRecipe stores a recipe and its tag and ingredient links in one
// transaction.
func (s *Service) CreateRecipe(ctx context.Context, ownerID uint, in RecipeInput) (*models.Recipe, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	var id uint
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		tags, err := ownedTags(tx, ownerID, in.TagIDs)
		if err != nil {
			return err
		}
		ingredients, err := ownedIngredients(tx, ownerID, in.IngredientIDs)
		if err != nil {
			return err
		}

		recipe := models.Recipe{
			UserID:      ownerID,
			Name:        strings.TrimSpace(in.Name),
			TimeMinutes: *in.TimeMinutes,
			Price:       in.Price.Round(2),
			Link:        strings.TrimSpace(in.Link),
			Tags:        tags,
			Ingredients: ingredients,
		}
		if err := tx.Omit("Tags.*", "Ingredients.*").Create(&recipe).Error; err != nil {
			return fmt.Errorf("creating recipe: %w", err)
		}
		id = recipe.ID
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("created recipe", "id", id, "owner", ownerID)
	return s.GetRecipe(ctx, ownerID, id)
}

// UpdateRecipe applies a partial update. Supplied link sets replace the
// existing ones under the same ownership rules as creation.
func (s *Service) UpdateRecipe(ctx context.Context, ownerID, id uint, patch RecipePatch) (*models.Recipe, error) {
	if err := patch.validate(); err != nil {
		return nil, err
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var recipe models.Recipe
		if err := tx.Where("id = ? AND user_id = ?", id, ownerID).First(&recipe).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrRecipeNotFound
			}
			return fmt.Errorf("loading recipe: %w", err)
		}

		updates := make(map[string]interface{})
		if patch.Name != nil {
			updates["name"] = strings.TrimSpace(*patch.Name)
		}
		if patch.TimeMinutes != nil {
			updates["time_minutes"] = *patch.TimeMinutes
		}
		if patch.Price != nil {
			updates["price"] = patch.Price.Round(2)
		}
		if patch.Link != nil {
			updates["link"] = strings.TrimSpace(*patch.Link)
		}
		if len(updates) > 0 {
			if err := tx.Model(&recipe).Updates(updates).Error; err != nil {
				return fmt.Errorf("updating recipe: %w", err)
			}
		}

		if patch.TagIDs != nil {
			tags, err := ownedTags(tx, ownerID, *patch.TagIDs)
			if err != nil {
				return err
			}
			if err := tx.Model(&recipe).Association("Tags").Replace(tags); err != nil {
				return fmt.Errorf("replacing tags: %w", err)
			}
		}
		if patch.IngredientIDs != nil {
			ingredients, err := ownedIngredients(tx, ownerID, *patch.IngredientIDs)
			if err != nil {
				return err
			}
			if err := tx.Model(&recipe).Association("Ingredients").Replace(ingredients); err != nil {
				return fmt.Errorf("replacing ingredients: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.GetRecipe(ctx, ownerID, id)
}

// DeleteRecipe removes the recipe and its links, then its image file.
func (s *Service) DeleteRecipe(ctx context.Context, ownerID, id uint) error {
	var image string
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var recipe models.Recipe
		if err := tx.Where("id = ? AND user_id = ?", id, ownerID).First(&recipe).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrRecipeNotFound
			}
			return fmt.Errorf("loading recipe: %w", err)
		}
		image = recipe.Image

		if err := tx.Model(&recipe).Association("Tags").Clear(); err != nil {
			return fmt.Errorf("clearing tags: %w", err)
		}
		if err := tx.Model(&recipe).Association("Ingredients").Clear(); err != nil {
			return fmt.Errorf("clearing ingredients: %w", err)
		}
		if err := tx.Delete(&recipe).Error; err != nil {
			return fmt.Errorf("deleting recipe: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.removeImage(ctx, image)
	s.logger.Info("deleted recipe", "id", id, "owner", ownerID)
	return nil
}
