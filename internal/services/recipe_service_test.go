package services

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/franciscosanchezn/foodgram-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func lineIDs(recipe *RecipeDetails) map[uint]int {
	lines := make(map[uint]int, len(recipe.Ingredients))
	for _, line := range recipe.Ingredients {
		lines[line.IngredientID] = line.Amount
	}
	return lines
}

func TestCreateRecipe(t *testing.T) {
	f := newFixture(t)

	recipe := f.createRecipe(t, "Pancakes",
		IngredientLine{IngredientID: f.flour.ID, Amount: 200},
		IngredientLine{IngredientID: f.eggs.ID, Amount: 2},
	)

	assert.NotZero(t, recipe.ID)
	assert.Equal(t, "Pancakes", recipe.Name)
	require.NotNil(t, recipe.Author)
	assert.Equal(t, f.author.ID, recipe.Author.ID)
	assert.Equal(t, map[uint]int{f.flour.ID: 200, f.eggs.ID: 2}, lineIDs(recipe))
	for _, line := range recipe.Ingredients {
		require.NotNil(t, line.Ingredient)
	}

	// the author sees no flags set on a fresh recipe
	assert.False(t, recipe.IsFavorited)
	assert.False(t, recipe.IsInShoppingCart)

	_, err := os.Stat(filepath.Join(f.store.Root(), filepath.FromSlash(recipe.Image)))
	assert.NoError(t, err, "image should be written to the store")
}

func TestCreateRecipeValidation(t *testing.T) {
	f := newFixture(t)

	testCases := []struct {
		name        string
		input       RecipeInput
		expectedErr error
	}{
		{
			name:        "empty ingredient list",
			input:       RecipeInput{CookingTime: 10, Image: testImage()},
			expectedErr: ErrEmptyIngredientList,
		},
		{
			name: "duplicate ingredient",
			input: RecipeInput{CookingTime: 10, Image: testImage(), Ingredients: []IngredientLine{
				{IngredientID: f.flour.ID, Amount: 100},
				{IngredientID: f.sugar.ID, Amount: 50},
				{IngredientID: f.flour.ID, Amount: 20},
			}},
			expectedErr: ErrDuplicateIngredient,
		},
		{
			name: "amount below minimum",
			input: RecipeInput{CookingTime: 10, Image: testImage(), Ingredients: []IngredientLine{
				{IngredientID: f.flour.ID, Amount: 0},
			}},
			expectedErr: ErrInvalidAmount,
		},
		{
			name: "cooking time below minimum",
			input: RecipeInput{CookingTime: 0, Image: testImage(), Ingredients: []IngredientLine{
				{IngredientID: f.flour.ID, Amount: 100},
			}},
			expectedErr: ErrInvalidCookingTime,
		},
		{
			name: "unknown ingredient",
			input: RecipeInput{CookingTime: 10, Image: testImage(), Ingredients: []IngredientLine{
				{IngredientID: f.flour.ID, Amount: 100},
				{IngredientID: 9999, Amount: 1},
			}},
			expectedErr: ErrUnknownIngredient,
		},
		{
			name: "missing image",
			input: RecipeInput{CookingTime: 10, Ingredients: []IngredientLine{
				{IngredientID: f.flour.ID, Amount: 100},
			}},
			expectedErr: ErrInvalidImage,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			tc.input.Name = "Broken"
			tc.input.Text = "Nothing to see"

			_, err := f.recipes.CreateRecipe(context.Background(), f.author.ID, tc.input)
			assert.ErrorIs(t, err, tc.expectedErr)

			var recipes, lines int64
			require.NoError(t, f.db.Model(&models.Recipe{}).Count(&recipes).Error)
			require.NoError(t, f.db.Model(&models.RecipeIngredient{}).Count(&lines).Error)
			assert.Zero(t, recipes, "nothing may be persisted")
			assert.Zero(t, lines, "nothing may be persisted")
		})
	}
}

func TestUpdateRecipe(t *testing.T) {
	f := newFixture(t)
	recipe := f.createRecipe(t, "Cake",
		IngredientLine{IngredientID: f.flour.ID, Amount: 300},
		IngredientLine{IngredientID: f.sugar.ID, Amount: 150},
	)

	t.Run("partial update keeps lines", func(t *testing.T) {
		name := "Sponge cake"
		updated, err := f.recipes.UpdateRecipe(context.Background(), recipe.ID, f.author.ID, RecipeUpdate{Name: &name})
		require.NoError(t, err)

		assert.Equal(t, "Sponge cake", updated.Name)
		assert.Equal(t, recipe.Text, updated.Text)
		assert.Equal(t, lineIDs(recipe), lineIDs(updated))
	})

	t.Run("ingredient list is replaced", func(t *testing.T) {
		lines := []IngredientLine{
			{IngredientID: f.sugar.ID, Amount: 80},
			{IngredientID: f.eggs.ID, Amount: 3},
		}
		updated, err := f.recipes.UpdateRecipe(context.Background(), recipe.ID, f.author.ID, RecipeUpdate{Ingredients: &lines})
		require.NoError(t, err)

		assert.Equal(t, map[uint]int{f.sugar.ID: 80, f.eggs.ID: 3}, lineIDs(updated))
	})

	t.Run("new image replaces the old one", func(t *testing.T) {
		before, err := f.recipes.GetRecipe(context.Background(), recipe.ID, 0)
		require.NoError(t, err)

		updated, err := f.recipes.UpdateRecipe(context.Background(), recipe.ID, f.author.ID, RecipeUpdate{Image: testImage()})
		require.NoError(t, err)

		assert.NotEqual(t, before.Image, updated.Image)
		_, err = os.Stat(filepath.Join(f.store.Root(), filepath.FromSlash(before.Image)))
		assert.True(t, os.IsNotExist(err), "old image should be removed")
	})

	t.Run("invalid replacement leaves the recipe unchanged", func(t *testing.T) {
		before, err := f.recipes.GetRecipe(context.Background(), recipe.ID, 0)
		require.NoError(t, err)

		lines := []IngredientLine{
			{IngredientID: f.flour.ID, Amount: 10},
			{IngredientID: f.flour.ID, Amount: 10},
		}
		_, err = f.recipes.UpdateRecipe(context.Background(), recipe.ID, f.author.ID, RecipeUpdate{Ingredients: &lines})
		assert.ErrorIs(t, err, ErrDuplicateIngredient)

		after, err := f.recipes.GetRecipe(context.Background(), recipe.ID, 0)
		require.NoError(t, err)
		assert.Equal(t, lineIDs(before), lineIDs(after))
	})

	t.Run("only the author may update", func(t *testing.T) {
		stranger := createUser(t, f.db, "stranger")
		name := "Hijacked"
		_, err := f.recipes.UpdateRecipe(context.Background(), recipe.ID, stranger.ID, RecipeUpdate{Name: &name})
		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("missing recipe", func(t *testing.T) {
		name := "Ghost"
		_, err := f.recipes.UpdateRecipe(context.Background(), 9999, f.author.ID, RecipeUpdate{Name: &name})
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestReplaceIngredientsRollsBack(t *testing.T) {
	f := newFixture(t)
	recipe := f.createRecipe(t, "Bread", IngredientLine{IngredientID: f.flour.ID, Amount: 500})

	// fail every insert into recipe_ingredients from here on
	insertFailure := errors.New("insert failed")
	err := f.db.Callback().Create().Before("gorm:create").Register("test:fail_lines", func(tx *gorm.DB) {
		if tx.Statement.Table == "recipe_ingredients" {
			_ = tx.AddError(insertFailure)
		}
	})
	require.NoError(t, err)

	err = f.recipes.ReplaceIngredients(context.Background(), recipe.ID, []IngredientLine{
		{IngredientID: f.sugar.ID, Amount: 10},
	})
	assert.ErrorIs(t, err, insertFailure)

	after, err := f.recipes.GetRecipe(context.Background(), recipe.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, map[uint]int{f.flour.ID: 500}, lineIDs(after), "old lines must survive a failed replace")
}

func TestDeleteRecipe(t *testing.T) {
	f := newFixture(t)
	recipe := f.createRecipe(t, "Omelette", IngredientLine{IngredientID: f.eggs.ID, Amount: 3})
	reader := createUser(t, f.db, "reader")

	_, err := f.recipes.AddFavorite(context.Background(), reader.ID, recipe.ID)
	require.NoError(t, err)
	_, err = f.recipes.AddToCart(context.Background(), reader.ID, recipe.ID)
	require.NoError(t, err)

	assert.ErrorIs(t, f.recipes.DeleteRecipe(context.Background(), recipe.ID, reader.ID), ErrForbidden)

	require.NoError(t, f.recipes.DeleteRecipe(context.Background(), recipe.ID, f.author.ID))

	_, err = f.recipes.GetRecipe(context.Background(), recipe.ID, 0)
	assert.ErrorIs(t, err, ErrNotFound)

	for _, model := range []interface{}{&models.RecipeIngredient{}, &models.Favorite{}, &models.CartItem{}} {
		var count int64
		require.NoError(t, f.db.Model(model).Count(&count).Error)
		assert.Zero(t, count)
	}

	assert.ErrorIs(t, f.recipes.DeleteRecipe(context.Background(), recipe.ID, f.author.ID), ErrNotFound)
}

func TestListRecipes(t *testing.T) {
	f := newFixture(t)
	other := createUser(t, f.db, "other")
	viewer := createUser(t, f.db, "viewer")

	apple := f.createRecipe(t, "Apple pie", IngredientLine{IngredientID: f.flour.ID, Amount: 250})
	bun := f.createRecipe(t, "Bun", IngredientLine{IngredientID: f.flour.ID, Amount: 100})
	foreign, err := f.recipes.CreateRecipe(context.Background(), other.ID, RecipeInput{
		Name: "Crepe", Text: "Thin.", CookingTime: 15, Image: testImage(),
		Ingredients: []IngredientLine{{IngredientID: f.eggs.ID, Amount: 2}},
	})
	require.NoError(t, err)

	_, err = f.recipes.AddFavorite(context.Background(), viewer.ID, bun.ID)
	require.NoError(t, err)
	_, err = f.recipes.AddToCart(context.Background(), viewer.ID, foreign.ID)
	require.NoError(t, err)

	t.Run("all recipes ordered by name", func(t *testing.T) {
		recipes, total, err := f.recipes.ListRecipes(context.Background(), RecipeFilter{}, 0)
		require.NoError(t, err)
		assert.EqualValues(t, 3, total)
		require.Len(t, recipes, 3)
		assert.Equal(t, []string{"Apple pie", "Bun", "Crepe"},
			[]string{recipes[0].Name, recipes[1].Name, recipes[2].Name})
	})

	t.Run("pagination window", func(t *testing.T) {
		recipes, total, err := f.recipes.ListRecipes(context.Background(), RecipeFilter{Offset: 2, Limit: 2}, 0)
		require.NoError(t, err)
		assert.EqualValues(t, 3, total)
		require.Len(t, recipes, 1)
		assert.Equal(t, foreign.ID, recipes[0].ID)
	})

	t.Run("by author", func(t *testing.T) {
		recipes, total, err := f.recipes.ListRecipes(context.Background(), RecipeFilter{AuthorID: f.author.ID}, 0)
		require.NoError(t, err)
		assert.EqualValues(t, 2, total)
		assert.Equal(t, apple.ID, recipes[0].ID)
	})

	t.Run("favorites and cart with viewer flags", func(t *testing.T) {
		favorites, total, err := f.recipes.ListRecipes(context.Background(), RecipeFilter{FavoritedBy: viewer.ID}, viewer.ID)
		require.NoError(t, err)
		assert.EqualValues(t, 1, total)
		assert.Equal(t, bun.ID, favorites[0].ID)
		assert.True(t, favorites[0].IsFavorited)
		assert.False(t, favorites[0].IsInShoppingCart)

		cart, total, err := f.recipes.ListRecipes(context.Background(), RecipeFilter{InCartOf: viewer.ID}, viewer.ID)
		require.NoError(t, err)
		assert.EqualValues(t, 1, total)
		assert.Equal(t, foreign.ID, cart[0].ID)
		assert.True(t, cart[0].IsInShoppingCart)
	})

	t.Run("anonymous viewer sees no flags", func(t *testing.T) {
		recipe, err := f.recipes.GetRecipe(context.Background(), bun.ID, 0)
		require.NoError(t, err)
		assert.False(t, recipe.IsFavorited)
	})
}
