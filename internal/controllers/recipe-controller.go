package controllers

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/franciscosanchezn/foodgram-api/internal/media"
	"github.com/franciscosanchezn/foodgram-api/internal/middleware"
	"github.com/franciscosanchezn/foodgram-api/internal/models"
	"github.com/franciscosanchezn/foodgram-api/internal/services"
	"github.com/gin-gonic/gin"
)

// shoppingListFilename is the attachment name of the downloaded cart
const shoppingListFilename = "shopping_list.txt"

// RecipeController handles recipes, favorites, the shopping cart and short links
type RecipeController struct {
	recipes      services.RecipeService
	shoppingList services.ShoppingListService
	paginator    Paginator
	present      presenter
	linkDomain   string
}

func NewRecipeController(recipes services.RecipeService, shoppingList services.ShoppingListService,
	images media.Store, paginator Paginator, linkDomain string) *RecipeController {
	return &RecipeController{
		recipes:      recipes,
		shoppingList: shoppingList,
		paginator:    paginator,
		present:      presenter{images: images},
		linkDomain:   linkDomain,
	}
}

// ListRecipes godoc
// @Summary List recipes
// @Tags recipes
// @Produce json
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Param author query int false "Author ID"
// @Param is_favorited query int false "1 to list only the caller's favorites"
// @Param is_in_shopping_cart query int false "1 to list only the caller's cart"
// @Success 200 {object} Page[RecipeResponse]
// @Router /api/recipes [get]
func (rc *RecipeController) ListRecipes(c *gin.Context) {
	req := rc.paginator.parse(c)
	viewerID, _ := middleware.CurrentUserID(c)

	filter := services.RecipeFilter{Offset: req.Offset, Limit: req.Limit}
	if author, err := strconv.ParseUint(c.Query("author"), 10, 32); err == nil {
		filter.AuthorID = uint(author)
	}
	// The personal filters only apply to authenticated callers
	if viewerID != 0 {
		if c.Query("is_favorited") == "1" {
			filter.FavoritedBy = viewerID
		}
		if c.Query("is_in_shopping_cart") == "1" {
			filter.InCartOf = viewerID
		}
	}

	recipes, total, err := rc.recipes.ListRecipes(c.Request.Context(), filter, viewerID)
	if err != nil {
		respondError(c, err)
		return
	}

	results := make([]RecipeResponse, 0, len(recipes))
	for _, r := range recipes {
		results = append(results, rc.present.recipe(r))
	}
	c.JSON(http.StatusOK, newPage(c, req, total, results))
}

// GetRecipe godoc
// @Summary Get a recipe
// @Tags recipes
// @Produce json
// @Param id path int true "Recipe ID"
// @Success 200 {object} RecipeResponse
// @Failure 404 {object} models.APIError
// @Router /api/recipes/{id} [get]
func (rc *RecipeController) GetRecipe(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	viewerID, _ := middleware.CurrentUserID(c)

	recipe, err := rc.recipes.GetRecipe(c.Request.Context(), id, viewerID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rc.present.recipe(*recipe))
}

// CreateRecipe godoc
// @Summary Create a recipe
// @Tags recipes
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param recipe body createRecipeRequest true "Recipe with ingredient lines and a base64 image"
// @Success 201 {object} RecipeResponse
// @Failure 400 {object} models.APIError
// @Failure 401 {object} models.OAuth2Error
// @Router /api/recipes [post]
func (rc *RecipeController) CreateRecipe(c *gin.Context) {
	var req createRecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	image, ok := decodeImage(c, req.Image)
	if !ok {
		return
	}

	authorID, _ := middleware.CurrentUserID(c)
	recipe, err := rc.recipes.CreateRecipe(c.Request.Context(), authorID, services.RecipeInput{
		Name:        req.Name,
		Text:        req.Text,
		CookingTime: req.CookingTime,
		Image:       image,
		Ingredients: toLines(req.Ingredients),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, rc.present.recipe(*recipe))
}

// UpdateRecipe godoc
// @Summary Update a recipe
// @Description Partial update. A supplied ingredient list replaces the existing one.
// @Tags recipes
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Recipe ID"
// @Param recipe body updateRecipeRequest true "Fields to change"
// @Success 200 {object} RecipeResponse
// @Failure 400 {object} models.APIError
// @Failure 403 {object} models.APIError
// @Failure 404 {object} models.APIError
// @Router /api/recipes/{id} [patch]
func (rc *RecipeController) UpdateRecipe(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req updateRecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	update := services.RecipeUpdate{
		Name:        req.Name,
		Text:        req.Text,
		CookingTime: req.CookingTime,
	}
	if req.Ingredients != nil {
		lines := toLines(*req.Ingredients)
		update.Ingredients = &lines
	}
	if req.Image != nil {
		image, ok := decodeImage(c, *req.Image)
		if !ok {
			return
		}
		update.Image = image
	}

	userID, _ := middleware.CurrentUserID(c)
	recipe, err := rc.recipes.UpdateRecipe(c.Request.Context(), id, userID, update)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rc.present.recipe(*recipe))
}

// DeleteRecipe godoc
// @Summary Delete a recipe
// @Tags recipes
// @Security BearerAuth
// @Param id path int true "Recipe ID"
// @Success 204
// @Failure 403 {object} models.APIError
// @Failure 404 {object} models.APIError
// @Router /api/recipes/{id} [delete]
func (rc *RecipeController) DeleteRecipe(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	userID, _ := middleware.CurrentUserID(c)
	if err := rc.recipes.DeleteRecipe(c.Request.Context(), id, userID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// AddFavorite godoc
// @Summary Add a recipe to favorites
// @Tags favorites
// @Produce json
// @Security BearerAuth
// @Param id path int true "Recipe ID"
// @Success 201 {object} ShortRecipeResponse
// @Failure 400 {object} models.APIError
// @Failure 404 {object} models.APIError
// @Router /api/recipes/{id}/favorite [post]
func (rc *RecipeController) AddFavorite(c *gin.Context) {
	rc.activate(c, rc.recipes.AddFavorite)
}

// RemoveFavorite godoc
// @Summary Remove a recipe from favorites
// @Tags favorites
// @Security BearerAuth
// @Param id path int true "Recipe ID"
// @Success 204
// @Failure 400 {object} models.APIError
// @Failure 404 {object} models.APIError
// @Router /api/recipes/{id}/favorite [delete]
func (rc *RecipeController) RemoveFavorite(c *gin.Context) {
	rc.deactivate(c, rc.recipes.RemoveFavorite)
}

// AddToCart godoc
// @Summary Add a recipe to the shopping cart
// @Tags shopping cart
// @Produce json
// @Security BearerAuth
// @Param id path int true "Recipe ID"
// @Success 201 {object} ShortRecipeResponse
// @Failure 400 {object} models.APIError
// @Failure 404 {object} models.APIError
// @Router /api/recipes/{id}/shopping_cart [post]
func (rc *RecipeController) AddToCart(c *gin.Context) {
	rc.activate(c, rc.recipes.AddToCart)
}

// RemoveFromCart godoc
// @Summary Remove a recipe from the shopping cart
// @Tags shopping cart
// @Security BearerAuth
// @Param id path int true "Recipe ID"
// @Success 204
// @Failure 400 {object} models.APIError
// @Failure 404 {object} models.APIError
// @Router /api/recipes/{id}/shopping_cart [delete]
func (rc *RecipeController) RemoveFromCart(c *gin.Context) {
	rc.deactivate(c, rc.recipes.RemoveFromCart)
}

func (rc *RecipeController) activate(c *gin.Context, toggle func(ctx context.Context, userID, recipeID uint) (models.Recipe, error)) {
	recipeID, ok := pathID(c)
	if !ok {
		return
	}
	userID, _ := middleware.CurrentUserID(c)

	recipe, err := toggle(c.Request.Context(), userID, recipeID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, rc.present.shortRecipe(recipe))
}

func (rc *RecipeController) deactivate(c *gin.Context, toggle func(ctx context.Context, userID, recipeID uint) error) {
	recipeID, ok := pathID(c)
	if !ok {
		return
	}
	userID, _ := middleware.CurrentUserID(c)

	if err := toggle(c.Request.Context(), userID, recipeID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// DownloadShoppingCart godoc
// @Summary Download the shopping list
// @Description Ingredients of every recipe in the cart, summed per name and unit
// @Tags shopping cart
// @Produce plain
// @Security BearerAuth
// @Success 200 {string} string "shopping_list.txt"
// @Failure 404 {object} models.APIError
// @Router /api/recipes/download_shopping_cart [get]
func (rc *RecipeController) DownloadShoppingCart(c *gin.Context) {
	userID, _ := middleware.CurrentUserID(c)
	text, err := rc.shoppingList.Build(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, shoppingListFilename))
	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(text))
}

// GetLink godoc
// @Summary Get a short link to a recipe
// @Tags recipes
// @Produce json
// @Param id path int true "Recipe ID"
// @Success 200 {object} ShortLinkResponse
// @Failure 404 {object} models.APIError
// @Router /api/recipes/{id}/get-link [get]
func (rc *RecipeController) GetLink(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if _, err := rc.recipes.GetRecipe(c.Request.Context(), id, 0); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ShortLinkResponse{ShortLink: rc.linkDomain + strconv.FormatUint(uint64(id), 10)})
}

// ResolveShortLink godoc
// @Summary Follow a short link
// @Tags recipes
// @Param id path int true "Recipe ID"
// @Success 302
// @Router /s/{id} [get]
func (rc *RecipeController) ResolveShortLink(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	c.Redirect(http.StatusFound, "/recipes/"+strconv.FormatUint(uint64(id), 10))
}

// decodeImage answers 400 when the payload is not a base64 image data URI
func decodeImage(c *gin.Context, uri string) (*media.Upload, bool) {
	upload, err := media.DecodeDataURI(uri)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, models.NewAPIError(models.ErrInvalidImage, err.Error()))
		return nil, false
	}
	return upload, true
}
