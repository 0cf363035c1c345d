package controllers

import (
	"github.com/franciscosanchezn/foodgram-api/internal/media"
	"github.com/franciscosanchezn/foodgram-api/internal/models"
	"github.com/franciscosanchezn/foodgram-api/internal/services"
)

// Request bodies

type registerRequest struct {
	Email     string `json:"email" binding:"required,email,max=254"`
	Username  string `json:"username" binding:"required,max=150,username"`
	FirstName string `json:"first_name" binding:"required,max=150"`
	LastName  string `json:"last_name" binding:"required,max=150"`
	Password  string `json:"password" binding:"required,min=8,max=128"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type setPasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,min=8,max=128"`
}

type avatarRequest struct {
	Avatar string `json:"avatar" binding:"required"`
}

type ingredientLineRequest struct {
	ID     uint `json:"id" binding:"required"`
	Amount int  `json:"amount"`
}

type createRecipeRequest struct {
	Ingredients []ingredientLineRequest `json:"ingredients" binding:"required,dive"`
	Image       string                  `json:"image" binding:"required"`
	Name        string                  `json:"name" binding:"required,max=256"`
	Text        string                  `json:"text" binding:"required"`
	CookingTime int                     `json:"cooking_time"`
}

// updateRecipeRequest uses pointers so absent fields stay untouched
type updateRecipeRequest struct {
	Ingredients *[]ingredientLineRequest `json:"ingredients"`
	Image       *string                  `json:"image"`
	Name        *string                  `json:"name" binding:"omitempty,max=256"`
	Text        *string                  `json:"text"`
	CookingTime *int                     `json:"cooking_time"`
}

func toLines(in []ingredientLineRequest) []services.IngredientLine {
	lines := make([]services.IngredientLine, 0, len(in))
	for _, l := range in {
		lines = append(lines, services.IngredientLine{IngredientID: l.ID, Amount: l.Amount})
	}
	return lines
}

// Responses

type UserResponse struct {
	ID           uint    `json:"id"`
	Email        string  `json:"email"`
	Username     string  `json:"username"`
	FirstName    string  `json:"first_name"`
	LastName     string  `json:"last_name"`
	IsSubscribed bool    `json:"is_subscribed"`
	Avatar       *string `json:"avatar"`
}

type IngredientResponse struct {
	ID              uint   `json:"id"`
	Name            string `json:"name"`
	MeasurementUnit string `json:"measurement_unit"`
}

type RecipeIngredientResponse struct {
	ID              uint   `json:"id"`
	Name            string `json:"name"`
	MeasurementUnit string `json:"measurement_unit"`
	Amount          int    `json:"amount"`
}

type RecipeResponse struct {
	ID               uint                       `json:"id"`
	Author           UserResponse               `json:"author"`
	Ingredients      []RecipeIngredientResponse `json:"ingredients"`
	IsFavorited      bool                       `json:"is_favorited"`
	IsInShoppingCart bool                       `json:"is_in_shopping_cart"`
	Name             string                     `json:"name"`
	Image            string                     `json:"image"`
	Text             string                     `json:"text"`
	CookingTime      int                        `json:"cooking_time"`
}

// ShortRecipeResponse is the compact projection returned by toggles and subscriptions
type ShortRecipeResponse struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	Image       string `json:"image"`
	CookingTime int    `json:"cooking_time"`
}

type AuthorResponse struct {
	UserResponse
	Recipes      []ShortRecipeResponse `json:"recipes"`
	RecipesCount int64                 `json:"recipes_count"`
}

type AvatarResponse struct {
	Avatar string `json:"avatar"`
}

type TokenResponse struct {
	AuthToken string `json:"auth_token"`
}

type ShortLinkResponse struct {
	ShortLink string `json:"short-link"`
}

type ImportResponse struct {
	Inserted int `json:"inserted"`
}

// presenter turns models into responses, resolving stored image keys to URLs
type presenter struct {
	images media.Store
}

func (p presenter) user(u models.User, subscribed bool) UserResponse {
	resp := UserResponse{
		ID:           u.ID,
		Email:        u.Email,
		Username:     u.Username,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		IsSubscribed: subscribed,
	}
	if u.Avatar != nil {
		url := p.images.URL(*u.Avatar)
		resp.Avatar = &url
	}
	return resp
}

func (p presenter) ingredient(i models.Ingredient) IngredientResponse {
	return IngredientResponse{ID: i.ID, Name: i.Name, MeasurementUnit: i.MeasurementUnit}
}

func (p presenter) recipe(d services.RecipeDetails) RecipeResponse {
	resp := RecipeResponse{
		ID:               d.ID,
		Ingredients:      make([]RecipeIngredientResponse, 0, len(d.Ingredients)),
		IsFavorited:      d.IsFavorited,
		IsInShoppingCart: d.IsInShoppingCart,
		Name:             d.Name,
		Image:            p.images.URL(d.Image),
		Text:             d.Text,
		CookingTime:      d.CookingTime,
	}
	if d.Author != nil {
		resp.Author = p.user(*d.Author, d.AuthorSubscribed)
	}
	for _, line := range d.Ingredients {
		item := RecipeIngredientResponse{ID: line.IngredientID, Amount: line.Amount}
		if line.Ingredient != nil {
			item.Name = line.Ingredient.Name
			item.MeasurementUnit = line.Ingredient.MeasurementUnit
		}
		resp.Ingredients = append(resp.Ingredients, item)
	}
	return resp
}

func (p presenter) shortRecipe(r models.Recipe) ShortRecipeResponse {
	return ShortRecipeResponse{
		ID:          r.ID,
		Name:        r.Name,
		Image:       p.images.URL(r.Image),
		CookingTime: r.CookingTime,
	}
}

func (p presenter) author(a services.AuthorDetails) AuthorResponse {
	resp := AuthorResponse{
		UserResponse: p.user(a.User, a.IsSubscribed),
		Recipes:      make([]ShortRecipeResponse, 0, len(a.Recipes)),
		RecipesCount: a.RecipesCount,
	}
	for _, r := range a.Recipes {
		resp.Recipes = append(resp.Recipes, p.shortRecipe(r))
	}
	return resp
}
