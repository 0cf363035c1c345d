package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/franciscosanchezn/foodgram-api/internal/metrics"
	"github.com/franciscosanchezn/foodgram-api/internal/models"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// ShoppingListLine is one aggregated (name, unit) group of the cart
type ShoppingListLine struct {
	Name            string
	MeasurementUnit string
	Amount          int64
}

// ShoppingListService renders the aggregated ingredient list of a user's cart
type ShoppingListService interface {
	// Lines returns the grouped and summed cart ingredients ordered by name
	Lines(ctx context.Context, userID uint) ([]ShoppingListLine, error)
	// Build renders the lines as plain text, one "name: amount unit" per line
	Build(ctx context.Context, userID uint) (string, error)
}

type shoppingListService struct {
	db *gorm.DB
}

// NewShoppingListService creates a new instance of ShoppingListService
func NewShoppingListService(db *gorm.DB) ShoppingListService {
	return &shoppingListService{db: db}
}

func (s *shoppingListService) Lines(ctx context.Context, userID uint) ([]ShoppingListLine, error) {
	db := s.db.WithContext(ctx)

	var carted int64
	if err := db.Model(&models.CartItem{}).Where("user_id = ?", userID).Count(&carted).Error; err != nil {
		return nil, err
	}
	if carted == 0 {
		return nil, ErrEmptyCart
	}

	// Grouping is by ingredient text, so two catalog rows sharing name and
	// unit collapse into one line.
	var lines []ShoppingListLine
	err := db.Model(&models.RecipeIngredient{}).
		Select("ingredients.name AS name, ingredients.measurement_unit AS measurement_unit, SUM(recipe_ingredients.amount) AS amount").
		Joins("JOIN ingredients ON ingredients.id = recipe_ingredients.ingredient_id").
		Joins("JOIN cart_items ON cart_items.recipe_id = recipe_ingredients.recipe_id").
		Where("cart_items.user_id = ?", userID).
		Group("ingredients.name, ingredients.measurement_unit").
		Order("ingredients.name").
		Order("ingredients.measurement_unit").
		Scan(&lines).Error
	if err != nil {
		return nil, err
	}
	return lines, nil
}

func (s *shoppingListService) Build(ctx context.Context, userID uint) (string, error) {
	lines, err := s.Lines(ctx, userID)
	if err != nil {
		return "", err
	}
	metrics.ShoppingListsBuilt.Inc()
	logrus.WithFields(logrus.Fields{
		"user_id": userID,
		"lines":   len(lines),
	}).Debug("Shopping list built")
	return RenderShoppingList(lines), nil
}

// RenderShoppingList formats aggregated lines, joined by newlines
func RenderShoppingList(lines []ShoppingListLine) string {
	rendered := make([]string, 0, len(lines))
	for _, line := range lines {
		rendered = append(rendered, fmt.Sprintf("%s: %d %s", line.Name, line.Amount, line.MeasurementUnit))
	}
	return strings.Join(rendered, "\n")
}
