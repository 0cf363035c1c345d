package services

import (
	"context"
	"testing"

	"github.com/franciscosanchezn/foodgram-api/internal/config"
	"github.com/franciscosanchezn/foodgram-api/internal/database"
	"github.com/franciscosanchezn/foodgram-api/internal/media"
	"github.com/franciscosanchezn/foodgram-api/internal/models"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := database.NewInMemory()
	require.NoError(t, err)
	return db
}

func testConfig() *config.Config {
	return &config.Config{
		MinCookingTime:      1,
		MinIngredientAmount: 1,
	}
}

func testStore(t *testing.T) *media.LocalStore {
	store, err := media.NewLocalStore(t.TempDir(), "/media/")
	require.NoError(t, err)
	return store
}

func testImage() *media.Upload {
	return &media.Upload{Data: []byte("\x89PNG fake"), ContentType: "image/png", Ext: ".png"}
}

func createUser(t *testing.T, db *gorm.DB, username string) models.User {
	user := models.User{
		Email:     username + "@example.com",
		Username:  username,
		FirstName: "Test",
		LastName:  "User",
		Password:  "not-a-real-hash",
		Role:      models.RoleUser,
	}
	require.NoError(t, db.Create(&user).Error)
	return user
}

func createIngredient(t *testing.T, db *gorm.DB, name, unit string) models.Ingredient {
	ingredient := models.Ingredient{Name: name, MeasurementUnit: unit}
	require.NoError(t, db.Create(&ingredient).Error)
	return ingredient
}

// fixture is a small catalog with one author ready to write recipes
type fixture struct {
	db      *gorm.DB
	store   *media.LocalStore
	recipes RecipeService
	author  models.User
	flour   models.Ingredient
	sugar   models.Ingredient
	eggs    models.Ingredient
}

func newFixture(t *testing.T) *fixture {
	db := setupTestDB(t)
	store := testStore(t)
	return &fixture{
		db:      db,
		store:   store,
		recipes: NewRecipeService(db, store, testConfig()),
		author:  createUser(t, db, "author"),
		flour:   createIngredient(t, db, "flour", "g"),
		sugar:   createIngredient(t, db, "sugar", "g"),
		eggs:    createIngredient(t, db, "eggs", "pcs"),
	}
}

func (f *fixture) createRecipe(t *testing.T, name string, lines ...IngredientLine) *RecipeDetails {
	recipe, err := f.recipes.CreateRecipe(context.Background(), f.author.ID, RecipeInput{
		Name:        name,
		Text:        "Mix and bake.",
		CookingTime: 30,
		Image:       testImage(),
		Ingredients: lines,
	})
	require.NoError(t, err)
	return recipe
}
