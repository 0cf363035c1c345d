package controllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/franciscosanchezn/foodgram-api/internal/models"
	"github.com/franciscosanchezn/foodgram-api/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
)

// errorMapping binds a service error kind to its HTTP representation.
// Order matters: ErrNotLinked wraps ErrNotFound and must be checked first.
var errorMapping = []struct {
	kind   error
	status int
	code   string
}{
	{services.ErrEmptyIngredientList, http.StatusBadRequest, models.ErrEmptyIngredientList},
	{services.ErrDuplicateIngredient, http.StatusBadRequest, models.ErrDuplicateIngredient},
	{services.ErrUnknownIngredient, http.StatusBadRequest, models.ErrUnknownIngredient},
	{services.ErrInvalidAmount, http.StatusBadRequest, models.ErrInvalidAmount},
	{services.ErrInvalidCookingTime, http.StatusBadRequest, models.ErrInvalidCookingTime},
	{services.ErrInvalidImage, http.StatusBadRequest, models.ErrInvalidImage},
	{services.ErrAlreadyExists, http.StatusBadRequest, models.ErrAlreadyExists},
	{services.ErrSelfSubscription, http.StatusBadRequest, models.ErrCodeSelfSubscription},
	{services.ErrInvalidCredentials, http.StatusBadRequest, models.ErrInvalidCredentials},
	{services.ErrNotLinked, http.StatusBadRequest, models.ErrNotLinked},
	{services.ErrEmptyCart, http.StatusNotFound, models.ErrEmptyCart},
	{services.ErrNotFound, http.StatusNotFound, models.ErrNotFound},
	{services.ErrForbidden, http.StatusForbidden, models.ErrForbidden},
}

// respondError translates a service error into an APIError response.
// Unknown errors are logged and reported without their text.
func respondError(c *gin.Context, err error) {
	for _, m := range errorMapping {
		if errors.Is(err, m.kind) {
			c.AbortWithStatusJSON(m.status, models.NewAPIError(m.code, err.Error()))
			return
		}
	}

	logrus.WithError(err).WithFields(logrus.Fields{
		"method": c.Request.Method,
		"path":   c.FullPath(),
	}).Error("Unhandled error")
	c.AbortWithStatusJSON(http.StatusInternalServerError,
		models.NewAPIError(models.ErrInternalServer, "Internal server error"))
}

// respondBindError reports a request body or query that failed binding.
// Validator failures carry one entry per offending field.
func respondBindError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		c.AbortWithStatusJSON(http.StatusBadRequest,
			models.NewAPIError(models.ErrBadRequest, "Malformed request body"))
		return
	}

	details := make(map[string]interface{}, len(verrs))
	for _, fe := range verrs {
		details[fieldName(fe)] = describeFieldError(fe)
	}
	c.AbortWithStatusJSON(http.StatusBadRequest,
		models.NewAPIError(models.ErrValidationFailed, "Request validation failed", details))
}

// fieldName strips the struct name from the namespace ("recipeRequest.ingredients[0].amount")
func fieldName(fe validator.FieldError) string {
	ns := fe.Namespace()
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return fe.Field()
}

func describeFieldError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "email":
		return "Enter a valid email address."
	case "username":
		return "Only letters, digits and @/./+/-/_ are allowed."
	case "min":
		return "Must be at least " + fe.Param() + "."
	case "max":
		return "Must be at most " + fe.Param() + "."
	case "dive":
		return "Invalid item."
	default:
		return "Invalid value (" + fe.Tag() + ")."
	}
}
