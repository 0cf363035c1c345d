package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShoppingListMergesCart(t *testing.T) {
	f := newFixture(t)
	shopper := createUser(t, f.db, "shopper")
	lists := NewShoppingListService(f.db)

	bread := f.createRecipe(t, "Bread",
		IngredientLine{IngredientID: f.flour.ID, Amount: 300},
		IngredientLine{IngredientID: f.sugar.ID, Amount: 10},
	)
	cake := f.createRecipe(t, "Cake",
		IngredientLine{IngredientID: f.flour.ID, Amount: 200},
		IngredientLine{IngredientID: f.eggs.ID, Amount: 4},
	)
	f.createRecipe(t, "Not in cart", IngredientLine{IngredientID: f.flour.ID, Amount: 1000})

	for _, id := range []uint{bread.ID, cake.ID} {
		_, err := f.recipes.AddToCart(context.Background(), shopper.ID, id)
		require.NoError(t, err)
	}

	lines, err := lists.Lines(context.Background(), shopper.ID)
	require.NoError(t, err)
	assert.Equal(t, []ShoppingListLine{
		{Name: "eggs", MeasurementUnit: "pcs", Amount: 4},
		{Name: "flour", MeasurementUnit: "g", Amount: 500},
		{Name: "sugar", MeasurementUnit: "g", Amount: 10},
	}, lines)

	text, err := lists.Build(context.Background(), shopper.ID)
	require.NoError(t, err)
	assert.Equal(t, "eggs: 4 pcs\nflour: 500 g\nsugar: 10 g", text)
}

func TestShoppingListKeepsUnitsApart(t *testing.T) {
	f := newFixture(t)
	shopper := createUser(t, f.db, "shopper")
	flourCups := createIngredient(t, f.db, "flour", "cup")

	recipe := f.createRecipe(t, "Muffins",
		IngredientLine{IngredientID: f.flour.ID, Amount: 100},
		IngredientLine{IngredientID: flourCups.ID, Amount: 2},
	)
	_, err := f.recipes.AddToCart(context.Background(), shopper.ID, recipe.ID)
	require.NoError(t, err)

	text, err := NewShoppingListService(f.db).Build(context.Background(), shopper.ID)
	require.NoError(t, err)
	assert.Equal(t, "flour: 2 cup\nflour: 100 g", text)
}

func TestShoppingListEmptyCart(t *testing.T) {
	db := setupTestDB(t)
	user := createUser(t, db, "idle")

	_, err := NewShoppingListService(db).Build(context.Background(), user.ID)
	assert.ErrorIs(t, err, ErrEmptyCart)
}

func TestRenderShoppingList(t *testing.T) {
	assert.Equal(t, "", RenderShoppingList(nil))
	assert.Equal(t, "salt: 5 g", RenderShoppingList([]ShoppingListLine{{Name: "salt", MeasurementUnit: "g", Amount: 5}}))
}
