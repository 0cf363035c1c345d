package services

import (
	"context"
	"testing"

	"github.com/franciscosanchezn/foodgram-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecipeToggles(t *testing.T) {
	f := newFixture(t)
	recipe := f.createRecipe(t, "Toast", IngredientLine{IngredientID: f.flour.ID, Amount: 50})
	user := createUser(t, f.db, "hungry")

	toggles := []struct {
		name       string
		activate   func(ctx context.Context, userID, recipeID uint) (models.Recipe, error)
		deactivate func(ctx context.Context, userID, recipeID uint) error
		flag       func(*RecipeDetails) bool
	}{
		{"favorite", f.recipes.AddFavorite, f.recipes.RemoveFavorite, func(d *RecipeDetails) bool { return d.IsFavorited }},
		{"shopping cart", f.recipes.AddToCart, f.recipes.RemoveFromCart, func(d *RecipeDetails) bool { return d.IsInShoppingCart }},
	}

	for _, tg := range toggles {
		t.Run(tg.name, func(t *testing.T) {
			ctx := context.Background()

			short, err := tg.activate(ctx, user.ID, recipe.ID)
			require.NoError(t, err)
			assert.Equal(t, recipe.ID, short.ID)
			assert.Equal(t, "Toast", short.Name)

			details, err := f.recipes.GetRecipe(ctx, recipe.ID, user.ID)
			require.NoError(t, err)
			assert.True(t, tg.flag(details))

			_, err = tg.activate(ctx, user.ID, recipe.ID)
			assert.ErrorIs(t, err, ErrAlreadyExists)

			require.NoError(t, tg.deactivate(ctx, user.ID, recipe.ID))

			err = tg.deactivate(ctx, user.ID, recipe.ID)
			assert.ErrorIs(t, err, ErrNotLinked)
			assert.ErrorIs(t, err, ErrNotFound, "not linked is a not-found flavour")

			_, err = tg.activate(ctx, user.ID, 9999)
			assert.ErrorIs(t, err, ErrNotFound)
			assert.NotErrorIs(t, err, ErrNotLinked)

			err = tg.deactivate(ctx, user.ID, 9999)
			assert.ErrorIs(t, err, ErrNotFound)
			assert.NotErrorIs(t, err, ErrNotLinked)
		})
	}
}

func TestRelationInsertReportsDuplicate(t *testing.T) {
	f := newFixture(t)
	recipe := f.createRecipe(t, "Scone", IngredientLine{IngredientID: f.flour.ID, Amount: 120})
	user := createUser(t, f.db, "racer")

	// a concurrent activation that passed the existence check still hits the unique index
	require.NoError(t, favoriteRelation.insert(f.db, &models.Favorite{UserID: user.ID, RecipeID: recipe.ID}))
	err := favoriteRelation.insert(f.db, &models.Favorite{UserID: user.ID, RecipeID: recipe.ID})
	assert.ErrorIs(t, err, ErrAlreadyExists)

	var count int64
	require.NoError(t, f.db.Model(&models.Favorite{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}
