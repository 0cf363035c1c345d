package controllers

import (
	"github.com/franciscosanchezn/foodgram-api/internal/middleware"
	"github.com/franciscosanchezn/foodgram-api/internal/models"
	"github.com/gin-gonic/gin"
)

// Routes groups the controllers mounted under /api
type Routes struct {
	Auth        *AuthController
	Users       *UserController
	Ingredients *IngredientController
	Recipes     *RecipeController
	// TokenEndpoint serves the RFC 6749 token endpoint
	TokenEndpoint gin.HandlerFunc
	Tokens        middleware.TokenValidator
}

// Register mounts the API on router
func (r Routes) Register(router *gin.Engine) {
	requireToken := middleware.TokenAuth(r.Tokens)
	optionalToken := middleware.OptionalTokenAuth(r.Tokens)

	api := router.Group("/api")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/token/login", r.Auth.Login)
			auth.POST("/token/logout", requireToken, r.Auth.Logout)
			auth.POST("/oauth/token", r.TokenEndpoint)
		}

		users := api.Group("/users")
		{
			users.GET("", optionalToken, r.Users.ListUsers)
			users.POST("", r.Users.Register)
			users.GET("/me", requireToken, r.Users.Me)
			users.PUT("/me/avatar", requireToken, r.Users.SetAvatar)
			users.DELETE("/me/avatar", requireToken, r.Users.DeleteAvatar)
			users.POST("/set_password", requireToken, r.Users.SetPassword)
			users.GET("/subscriptions", requireToken, r.Users.Subscriptions)
			users.GET("/:id", optionalToken, r.Users.GetUser)
			users.POST("/:id/subscribe", requireToken, r.Users.Subscribe)
			users.DELETE("/:id/subscribe", requireToken, r.Users.Unsubscribe)
		}

		ingredients := api.Group("/ingredients")
		{
			ingredients.GET("", r.Ingredients.ListIngredients)
			ingredients.GET("/:id", r.Ingredients.GetIngredient)
			ingredients.POST("/import", requireToken, middleware.RequireRole(models.RoleAdmin), r.Ingredients.ImportIngredients)
		}

		recipes := api.Group("/recipes")
		{
			recipes.GET("", optionalToken, r.Recipes.ListRecipes)
			recipes.POST("", requireToken, r.Recipes.CreateRecipe)
			recipes.GET("/download_shopping_cart", requireToken, r.Recipes.DownloadShoppingCart)
			recipes.GET("/:id", optionalToken, r.Recipes.GetRecipe)
			recipes.PATCH("/:id", requireToken, r.Recipes.UpdateRecipe)
			recipes.DELETE("/:id", requireToken, r.Recipes.DeleteRecipe)
			recipes.GET("/:id/get-link", r.Recipes.GetLink)
			recipes.POST("/:id/favorite", requireToken, r.Recipes.AddFavorite)
			recipes.DELETE("/:id/favorite", requireToken, r.Recipes.RemoveFavorite)
			recipes.POST("/:id/shopping_cart", requireToken, r.Recipes.AddToCart)
			recipes.DELETE("/:id/shopping_cart", requireToken, r.Recipes.RemoveFromCart)
		}
	}

	router.GET("/s/:id", r.Recipes.ResolveShortLink)
}
