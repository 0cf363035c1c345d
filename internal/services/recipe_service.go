package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/franciscosanchezn/foodgram-api/internal/config"
	"github.com/franciscosanchezn/foodgram-api/internal/media"
	"github.com/franciscosanchezn/foodgram-api/internal/models"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// IngredientLine is one (ingredient, amount) pair of a recipe submission
type IngredientLine struct {
	IngredientID uint
	Amount       int
}

// RecipeInput carries everything needed to create a recipe
type RecipeInput struct {
	Name        string
	Text        string
	CookingTime int
	Image       *media.Upload
	Ingredients []IngredientLine
}

// RecipeUpdate is a partial update. Nil fields are left untouched; a
// non-nil Ingredients replaces the whole line set.
type RecipeUpdate struct {
	Name        *string
	Text        *string
	CookingTime *int
	Image       *media.Upload
	Ingredients *[]IngredientLine
}

// RecipeFilter narrows the recipe list. Zero values disable a filter.
type RecipeFilter struct {
	AuthorID    uint
	FavoritedBy uint
	InCartOf    uint
	Offset      int
	Limit       int
}

// RecipeDetails is a recipe together with the viewer-specific flags
type RecipeDetails struct {
	models.Recipe
	IsFavorited      bool
	IsInShoppingCart bool
	AuthorSubscribed bool
}

// RecipeService manages recipes, their ingredient lines and the
// favorite / shopping cart relationships
type RecipeService interface {
	// CreateRecipe validates the submission and persists the recipe with its lines
	CreateRecipe(ctx context.Context, authorID uint, in RecipeInput) (*RecipeDetails, error)
	// UpdateRecipe applies a partial update on behalf of userID, who must be the author
	UpdateRecipe(ctx context.Context, recipeID, userID uint, in RecipeUpdate) (*RecipeDetails, error)
	// ReplaceIngredients swaps the whole line set of a recipe atomically
	ReplaceIngredients(ctx context.Context, recipeID uint, lines []IngredientLine) error
	// DeleteRecipe removes a recipe owned by userID
	DeleteRecipe(ctx context.Context, recipeID, userID uint) error
	// GetRecipe loads one recipe; viewerID zero means an anonymous caller
	GetRecipe(ctx context.Context, recipeID, viewerID uint) (*RecipeDetails, error)
	// ListRecipes returns one page of recipes and the total matching count
	ListRecipes(ctx context.Context, filter RecipeFilter, viewerID uint) ([]RecipeDetails, int64, error)

	AddFavorite(ctx context.Context, userID, recipeID uint) (models.Recipe, error)
	RemoveFavorite(ctx context.Context, userID, recipeID uint) error
	AddToCart(ctx context.Context, userID, recipeID uint) (models.Recipe, error)
	RemoveFromCart(ctx context.Context, userID, recipeID uint) error
}

var (
	favoriteRelation = NewRelation[models.Favorite]("favorite",
		"recipe is already in favorites", "recipe is not in favorites")
	cartRelation = NewRelation[models.CartItem]("shopping_cart",
		"recipe is already in the shopping cart", "recipe is not in the shopping cart")
)

type recipeService struct {
	db             *gorm.DB
	images         media.Store
	minCookingTime int
	minAmount      int
}

// NewRecipeService creates a new instance of RecipeService
func NewRecipeService(db *gorm.DB, images media.Store, cfg *config.Config) RecipeService {
	return &recipeService{
		db:             db,
		images:         images,
		minCookingTime: cfg.MinCookingTime,
		minAmount:      cfg.MinIngredientAmount,
	}
}

// validateLines checks a line list before anything touches the database.
// Duplicates are detected by ingredient id, not by name.
func validateLines(lines []IngredientLine, minAmount int) error {
	if len(lines) == 0 {
		return ErrEmptyIngredientList
	}
	seen := make(map[uint]struct{}, len(lines))
	for _, line := range lines {
		if _, dup := seen[line.IngredientID]; dup {
			return withMessage(ErrDuplicateIngredient,
				fmt.Sprintf("ingredient %d is listed more than once", line.IngredientID))
		}
		seen[line.IngredientID] = struct{}{}
		if line.Amount < minAmount {
			return withMessage(ErrInvalidAmount,
				fmt.Sprintf("ingredient amount must be at least %d", minAmount))
		}
	}
	return nil
}

func (s *recipeService) validateCookingTime(minutes int) error {
	if minutes < s.minCookingTime {
		return withMessage(ErrInvalidCookingTime,
			fmt.Sprintf("cooking time must be at least %d", s.minCookingTime))
	}
	return nil
}

// ensureIngredientsExist rejects references to ingredients missing from the catalog
func ensureIngredientsExist(tx *gorm.DB, lines []IngredientLine) error {
	ids := make([]uint, 0, len(lines))
	for _, line := range lines {
		ids = append(ids, line.IngredientID)
	}
	var count int64
	if err := tx.Model(&models.Ingredient{}).Where("id IN ?", ids).Count(&count).Error; err != nil {
		return err
	}
	if count != int64(len(ids)) {
		return ErrUnknownIngredient
	}
	return nil
}

// insertLines bulk-inserts the lines of one recipe in a single statement
func insertLines(tx *gorm.DB, recipeID uint, lines []IngredientLine) error {
	rows := make([]models.RecipeIngredient, 0, len(lines))
	for _, line := range lines {
		rows = append(rows, models.RecipeIngredient{
			RecipeID:     recipeID,
			IngredientID: line.IngredientID,
			Amount:       line.Amount,
		})
	}
	return tx.Omit(clause.Associations).Create(&rows).Error
}

// replaceLines deletes every line of the recipe and inserts the new set.
// It must run inside a transaction.
func replaceLines(tx *gorm.DB, recipeID uint, lines []IngredientLine) error {
	if err := tx.Where("recipe_id = ?", recipeID).Delete(&models.RecipeIngredient{}).Error; err != nil {
		return err
	}
	return insertLines(tx, recipeID, lines)
}

func (s *recipeService) CreateRecipe(ctx context.Context, authorID uint, in RecipeInput) (*RecipeDetails, error) {
	if err := s.validateCookingTime(in.CookingTime); err != nil {
		return nil, err
	}
	if err := validateLines(in.Ingredients, s.minAmount); err != nil {
		return nil, err
	}
	if in.Image == nil {
		return nil, ErrInvalidImage
	}
	db := s.db.WithContext(ctx)
	if err := ensureIngredientsExist(db, in.Ingredients); err != nil {
		return nil, err
	}

	imageKey, err := s.images.Save(ctx, "recipes", in.Image)
	if err != nil {
		return nil, fmt.Errorf("store recipe image: %w", err)
	}

	recipe := models.Recipe{
		AuthorID:    authorID,
		Name:        in.Name,
		Text:        in.Text,
		CookingTime: in.CookingTime,
		Image:       imageKey,
	}
	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(&recipe).Error; err != nil {
			return err
		}
		return insertLines(tx, recipe.ID, in.Ingredients)
	})
	if err != nil {
		s.discardImage(ctx, imageKey)
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"recipe_id": recipe.ID,
		"author_id": authorID,
		"lines":     len(in.Ingredients),
	}).Info("Recipe created")
	return s.GetRecipe(ctx, recipe.ID, authorID)
}

func (s *recipeService) UpdateRecipe(ctx context.Context, recipeID, userID uint, in RecipeUpdate) (*RecipeDetails, error) {
	recipe, err := s.loadOwned(ctx, recipeID, userID)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if in.Name != nil {
		updates["name"] = *in.Name
	}
	if in.Text != nil {
		updates["text"] = *in.Text
	}
	if in.CookingTime != nil {
		if err := s.validateCookingTime(*in.CookingTime); err != nil {
			return nil, err
		}
		updates["cooking_time"] = *in.CookingTime
	}
	db := s.db.WithContext(ctx)
	if in.Ingredients != nil {
		if err := validateLines(*in.Ingredients, s.minAmount); err != nil {
			return nil, err
		}
		if err := ensureIngredientsExist(db, *in.Ingredients); err != nil {
			return nil, err
		}
	}

	var newImage string
	if in.Image != nil {
		if newImage, err = s.images.Save(ctx, "recipes", in.Image); err != nil {
			return nil, fmt.Errorf("store recipe image: %w", err)
		}
		updates["image"] = newImage
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if in.Ingredients != nil {
			if err := replaceLines(tx, recipe.ID, *in.Ingredients); err != nil {
				return err
			}
		}
		if len(updates) == 0 {
			return nil
		}
		return tx.Model(&models.Recipe{ID: recipe.ID}).Updates(updates).Error
	})
	if err != nil {
		if newImage != "" {
			s.discardImage(ctx, newImage)
		}
		return nil, err
	}
	if newImage != "" {
		s.discardImage(ctx, recipe.Image)
	}

	return s.GetRecipe(ctx, recipe.ID, userID)
}

func (s *recipeService) ReplaceIngredients(ctx context.Context, recipeID uint, lines []IngredientLine) error {
	if err := validateLines(lines, s.minAmount); err != nil {
		return err
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := findRecipe(tx, recipeID); err != nil {
			return err
		}
		if err := ensureIngredientsExist(tx, lines); err != nil {
			return err
		}
		return replaceLines(tx, recipeID, lines)
	})
}

func (s *recipeService) DeleteRecipe(ctx context.Context, recipeID, userID uint) error {
	recipe, err := s.loadOwned(ctx, recipeID, userID)
	if err != nil {
		return err
	}
	// Dependent rows are removed explicitly so drivers without foreign key
	// enforcement end up in the same state as ON DELETE CASCADE.
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, dependent := range []interface{}{&models.RecipeIngredient{}, &models.Favorite{}, &models.CartItem{}} {
			if err := tx.Where("recipe_id = ?", recipe.ID).Delete(dependent).Error; err != nil {
				return err
			}
		}
		return tx.Delete(&models.Recipe{}, recipe.ID).Error
	})
	if err != nil {
		return err
	}
	s.discardImage(ctx, recipe.Image)
	logrus.WithFields(logrus.Fields{
		"recipe_id": recipe.ID,
		"author_id": userID,
	}).Info("Recipe deleted")
	return nil
}

func (s *recipeService) GetRecipe(ctx context.Context, recipeID, viewerID uint) (*RecipeDetails, error) {
	var recipe models.Recipe
	err := s.withDetails(s.db.WithContext(ctx)).First(&recipe, recipeID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, withMessage(ErrNotFound, "recipe not found")
		}
		return nil, err
	}
	details, err := s.decorate(ctx, []models.Recipe{recipe}, viewerID)
	if err != nil {
		return nil, err
	}
	return &details[0], nil
}

func (s *recipeService) ListRecipes(ctx context.Context, filter RecipeFilter, viewerID uint) ([]RecipeDetails, int64, error) {
	query := s.db.WithContext(ctx).Model(&models.Recipe{})
	if filter.AuthorID != 0 {
		query = query.Where("recipes.author_id = ?", filter.AuthorID)
	}
	if filter.FavoritedBy != 0 {
		query = query.Where("recipes.id IN (?)",
			s.db.Model(&models.Favorite{}).Select("recipe_id").Where("user_id = ?", filter.FavoritedBy))
	}
	if filter.InCartOf != 0 {
		query = query.Where("recipes.id IN (?)",
			s.db.Model(&models.CartItem{}).Select("recipe_id").Where("user_id = ?", filter.InCartOf))
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var recipes []models.Recipe
	page := s.withDetails(query).Order("recipes.name").Order("recipes.id").Offset(filter.Offset)
	if filter.Limit > 0 {
		page = page.Limit(filter.Limit)
	}
	if err := page.Find(&recipes).Error; err != nil {
		return nil, 0, err
	}

	details, err := s.decorate(ctx, recipes, viewerID)
	if err != nil {
		return nil, 0, err
	}
	return details, total, nil
}

// withDetails preloads what the full recipe representation needs
func (s *recipeService) withDetails(query *gorm.DB) *gorm.DB {
	return query.
		Preload("Author").
		Preload("Ingredients", func(db *gorm.DB) *gorm.DB {
			return db.Order("recipe_ingredients.recipe_id").Order("recipe_ingredients.ingredient_id")
		}).
		Preload("Ingredients.Ingredient")
}

// decorate computes the viewer flags for a batch of recipes with one query per flag
func (s *recipeService) decorate(ctx context.Context, recipes []models.Recipe, viewerID uint) ([]RecipeDetails, error) {
	details := make([]RecipeDetails, len(recipes))
	for i := range recipes {
		details[i].Recipe = recipes[i]
	}
	if viewerID == 0 || len(recipes) == 0 {
		return details, nil
	}

	recipeIDs := make([]uint, 0, len(recipes))
	authorIDs := make([]uint, 0, len(recipes))
	for _, r := range recipes {
		recipeIDs = append(recipeIDs, r.ID)
		authorIDs = append(authorIDs, r.AuthorID)
	}

	db := s.db.WithContext(ctx)
	favorited, err := pluckIDs(db.Model(&models.Favorite{}).
		Where("user_id = ? AND recipe_id IN ?", viewerID, recipeIDs), "recipe_id")
	if err != nil {
		return nil, err
	}
	carted, err := pluckIDs(db.Model(&models.CartItem{}).
		Where("user_id = ? AND recipe_id IN ?", viewerID, recipeIDs), "recipe_id")
	if err != nil {
		return nil, err
	}
	followed, err := subscribedAuthors(db, viewerID, authorIDs)
	if err != nil {
		return nil, err
	}

	for i := range details {
		_, details[i].IsFavorited = favorited[details[i].ID]
		_, details[i].IsInShoppingCart = carted[details[i].ID]
		_, details[i].AuthorSubscribed = followed[details[i].AuthorID]
	}
	return details, nil
}

func (s *recipeService) AddFavorite(ctx context.Context, userID, recipeID uint) (models.Recipe, error) {
	return activateRecipeLink(s.db.WithContext(ctx), favoriteRelation, recipeID,
		&models.Favorite{UserID: userID, RecipeID: recipeID})
}

func (s *recipeService) RemoveFavorite(ctx context.Context, userID, recipeID uint) error {
	return deactivateRecipeLink(s.db.WithContext(ctx), favoriteRelation, recipeID,
		&models.Favorite{UserID: userID, RecipeID: recipeID})
}

func (s *recipeService) AddToCart(ctx context.Context, userID, recipeID uint) (models.Recipe, error) {
	return activateRecipeLink(s.db.WithContext(ctx), cartRelation, recipeID,
		&models.CartItem{UserID: userID, RecipeID: recipeID})
}

func (s *recipeService) RemoveFromCart(ctx context.Context, userID, recipeID uint) error {
	return deactivateRecipeLink(s.db.WithContext(ctx), cartRelation, recipeID,
		&models.CartItem{UserID: userID, RecipeID: recipeID})
}

// activateRecipeLink resolves the target recipe, then activates the link.
// The recipe is returned for the short projection.
func activateRecipeLink[L any](db *gorm.DB, rel Relation[L], recipeID uint, link *L) (models.Recipe, error) {
	var recipe models.Recipe
	err := db.Transaction(func(tx *gorm.DB) error {
		found, err := findRecipe(tx, recipeID)
		if err != nil {
			return err
		}
		recipe = found
		return rel.Activate(tx, link)
	})
	return recipe, err
}

func deactivateRecipeLink[L any](db *gorm.DB, rel Relation[L], recipeID uint, link *L) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if _, err := findRecipe(tx, recipeID); err != nil {
			return err
		}
		return rel.Deactivate(tx, link)
	})
}

func findRecipe(tx *gorm.DB, recipeID uint) (models.Recipe, error) {
	var recipe models.Recipe
	if err := tx.First(&recipe, recipeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Recipe{}, withMessage(ErrNotFound, "recipe not found")
		}
		return models.Recipe{}, err
	}
	return recipe, nil
}

// loadOwned fetches a recipe and checks that userID is its author
func (s *recipeService) loadOwned(ctx context.Context, recipeID, userID uint) (models.Recipe, error) {
	recipe, err := findRecipe(s.db.WithContext(ctx), recipeID)
	if err != nil {
		return models.Recipe{}, err
	}
	if recipe.AuthorID != userID {
		return models.Recipe{}, ErrForbidden
	}
	return recipe, nil
}

// discardImage removes a stored image; failures only leave an orphan file
func (s *recipeService) discardImage(ctx context.Context, key string) {
	if key == "" {
		return
	}
	if err := s.images.Delete(ctx, key); err != nil {
		logrus.WithError(err).WithField("image", key).Warn("Failed to delete recipe image")
	}
}

// pluckIDs collects a uint column into a set
func pluckIDs(query *gorm.DB, column string) (map[uint]struct{}, error) {
	var ids []uint
	if err := query.Pluck(column, &ids).Error; err != nil {
		return nil, err
	}
	set := make(map[uint]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set, nil
}

// subscribedAuthors returns which of authorIDs the subscriber follows
func subscribedAuthors(db *gorm.DB, subscriberID uint, authorIDs []uint) (map[uint]struct{}, error) {
	if subscriberID == 0 || len(authorIDs) == 0 {
		return map[uint]struct{}{}, nil
	}
	return pluckIDs(db.Model(&models.Subscription{}).
		Where("subscriber_id = ? AND author_id IN ?", subscriberID, authorIDs), "author_id")
}
