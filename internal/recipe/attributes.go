package recipe

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/hugh/recipe-api/internal/apperr"
	"github.com/hugh/recipe-api/internal/database/models"
	"gorm.io/gorm"
)

const maxNameLength = 255

// AttributeFilter narrows tag and ingredient listings.
type AttributeFilter struct {
	// AssignedOnly keeps only entries linked to at least one recipe.
	AssignedOnly bool
}

// attribute describes where a recipe attribute (tag or ingredient) lives.
type attribute struct {
	table     string
	joinTable string
	joinCol   string
}

var (
	tagAttr        = attribute{table: "tags", joinTable: "recipe_tags", joinCol: "tag_id"}
	ingredientAttr = attribute{table: "ingredients", joinTable: "recipe_ingredients", joinCol: "ingredient_id"}
)

func (a attribute) list(db *gorm.DB, ownerID uint, filter AttributeFilter) *gorm.DB {
	q := db.Table(a.table).Where(a.table+".user_id = ?", ownerID)
	if filter.AssignedOnly {
		q = q.Where(fmt.Sprintf("EXISTS (SELECT 1 FROM %s WHERE %s.%s = %s.id)",
			a.joinTable, a.joinTable, a.joinCol, a.table))
	}
	return q.Order(a.table + ".name DESC")
}

func validateName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", apperr.Invalid("name", "This field may not be blank.")
	}
	if utf8.RuneCountInString(name) > maxNameLength {
		return "", apperr.Invalid("name", fmt.Sprintf("Ensure this field has no more than %d characters.", maxNameLength))
	}
	return name, nil
}

func (s *Service) ListTags(ctx context.Context, ownerID uint, filter AttributeFilter) ([]models.Tag, error) {
	tags := []models.Tag{}
	if err := tagAttr.list(s.db.WithContext(ctx), ownerID, filter).Find(&tags).Error; err != nil {
		return nil, fmt.Errorf("listing tags: %w", err)
	}
	return tags, nil
}

func (s *Service) CreateTag(ctx context.Context, ownerID uint, name string) (*models.Tag, error) {
	name, err := validateName(name)
	if err != nil {
		return nil, err
	}

	tag := &models.Tag{UserID: ownerID, Name: name}
	if err := s.db.WithContext(ctx).Create(tag).Error; err != nil {
		return nil, fmt.Errorf("creating tag: %w", err)
	}

	s.logger.Debug("created tag", "id", tag.ID, "owner", ownerID)
	return tag, nil
}

func (s *Service) ListIngredients(ctx context.Context, ownerID uint, filter AttributeFilter) ([]models.Ingredient, error) {
	ingredients := []models.Ingredient{}
	if err := ingredientAttr.list(s.db.WithContext(ctx), ownerID, filter).Find(&ingredients).Error; err != nil {
		return nil, fmt.Errorf("listing ingredients: %w", err)
	}
	return ingredients, nil
}

func (s *Service) CreateIngredient(ctx context.Context, ownerID uint, name string) (*models.Ingredient, error) {
	name, err := validateName(name)
	if err != nil {
		return nil, err
	}

	ingredient := &models.Ingredient{UserID: ownerID, Name: name}
	if err := s.db.WithContext(ctx).Create(ingredient).Error; err != nil {
		return nil, fmt.Errorf("creating ingredient: %w", err)
	}

	s.logger.Debug("created ingredient", "id", ingredient.ID, "owner", ownerID)
	return ingredient, nil
}

func uniqueIDs(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// ownedTags loads the tags with the given ids. Every id must exist and
// belong to ownerID.
func ownedTags(tx *gorm.DB, ownerID uint, ids []uint) ([]models.Tag, error) {
	ids = uniqueIDs(ids)
	tags := []models.Tag{}
	if len(ids) == 0 {
		return tags, nil
	}
	if err := tx.Where("user_id = ? AND id IN ?", ownerID, ids).Find(&tags).Error; err != nil {
		return nil, fmt.Errorf("loading tags: %w", err)
	}
	found := make(map[uint]bool, len(tags))
	for _, t := range tags {
		found[t.ID] = true
	}
	if missing, ok := firstMissing(ids, found); ok {
		return nil, apperr.Invalid("tags", fmt.Sprintf("Invalid pk \"%d\" - object does not exist.", missing))
	}
	return tags, nil
}

func ownedIngredients(tx *gorm.DB, ownerID uint, ids []uint) ([]models.Ingredient, error) {
	ids = uniqueIDs(ids)
	ingredients := []models.Ingredient{}
	if len(ids) == 0 {
		return ingredients, nil
	}
	if err := tx.Where("user_id = ? AND id IN ?", ownerID, ids).Find(&ingredients).Error; err != nil {
		return nil, fmt.Errorf("loading ingredients: %w", err)
	}
	found := make(map[uint]bool, len(ingredients))
	for _, in := range ingredients {
		found[in.ID] = true
	}
	if missing, ok := firstMissing(ids, found); ok {
		return nil, apperr.Invalid("ingredients", fmt.Sprintf("Invalid pk \"%d\" - object does not exist.", missing))
	}
	return ingredients, nil
}

func firstMissing(ids []uint, found map[uint]bool) (uint, bool) {
	for _, id := range ids {
		if !found[id] {
			return id, true
		}
	}
	return 0, false
}
