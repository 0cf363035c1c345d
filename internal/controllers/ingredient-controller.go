package controllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/franciscosanchezn/foodgram-api/internal/models"
	"github.com/franciscosanchezn/foodgram-api/internal/services"
	"github.com/gin-gonic/gin"
)

// IngredientController serves the read-only ingredient catalog
type IngredientController struct {
	ingredients    services.IngredientService
	present        presenter
	importMaxBytes int64
}

// NewIngredientController builds the controller. Import bodies larger than
// importMaxBytes are rejected.
func NewIngredientController(ingredients services.IngredientService, importMaxBytes int64) *IngredientController {
	return &IngredientController{ingredients: ingredients, importMaxBytes: importMaxBytes}
}

// ListIngredients godoc
// @Summary Search ingredients
// @Description Case-insensitive prefix search on the ingredient name
// @Tags ingredients
// @Produce json
// @Param search query string false "Name prefix"
// @Param name query string false "Name prefix (alias of search)"
// @Success 200 {array} IngredientResponse
// @Router /api/ingredients [get]
func (ic *IngredientController) ListIngredients(c *gin.Context) {
	prefix := c.Query("search")
	if prefix == "" {
		prefix = c.Query("name")
	}

	ingredients, err := ic.ingredients.Search(c.Request.Context(), prefix)
	if err != nil {
		respondError(c, err)
		return
	}

	results := make([]IngredientResponse, 0, len(ingredients))
	for _, i := range ingredients {
		results = append(results, ic.present.ingredient(i))
	}
	c.JSON(http.StatusOK, results)
}

// GetIngredient godoc
// @Summary Get an ingredient
// @Tags ingredients
// @Produce json
// @Param id path int true "Ingredient ID"
// @Success 200 {object} IngredientResponse
// @Failure 404 {object} models.APIError
// @Router /api/ingredients/{id} [get]
func (ic *IngredientController) GetIngredient(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	ingredient, err := ic.ingredients.GetIngredientByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ic.present.ingredient(ingredient))
}

// ImportIngredients godoc
// @Summary Bulk import ingredients
// @Description Loads a JSON array or a name,unit CSV body. Already known pairs are skipped.
// @Tags ingredients
// @Accept json
// @Accept text/csv
// @Produce json
// @Security BearerAuth
// @Success 200 {object} ImportResponse
// @Failure 400 {object} models.APIError
// @Failure 403 {object} models.APIError
// @Failure 413 {object} models.APIError
// @Router /api/ingredients/import [post]
func (ic *IngredientController) ImportIngredients(c *gin.Context) {
	format := "json"
	if strings.HasPrefix(c.ContentType(), "text/csv") {
		format = "csv"
	}

	body := http.MaxBytesReader(c.Writer, c.Request.Body, ic.importMaxBytes)
	records, err := services.ParseIngredientRecords(body, format)
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, models.NewAPIError(models.ErrPayloadTooLarge, "import body is too large"))
		return
	}
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, models.NewAPIError(models.ErrBadRequest, err.Error()))
		return
	}

	inserted, err := ic.ingredients.Load(c.Request.Context(), records)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ImportResponse{Inserted: inserted})
}
