package models

import (
	"time"
)

// Recipe is owned by exactly one author and holds its ingredient lines.
type Recipe struct {
	ID          uint               `gorm:"primaryKey"`
	AuthorID    uint               `gorm:"not null;index"`
	Author      *User              `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE"`
	Name        string             `gorm:"size:256;not null"`
	Text        string             `gorm:"type:text;not null"`
	CookingTime int                `gorm:"not null"`
	Image       string             `gorm:"size:255;not null"`
	Ingredients []RecipeIngredient `gorm:"foreignKey:RecipeID;constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// RecipeIngredient is a line item binding one recipe to one ingredient.
type RecipeIngredient struct {
	ID           uint        `gorm:"primaryKey"`
	RecipeID     uint        `gorm:"not null;uniqueIndex:idx_recipe_ingredient"`
	Recipe       *Recipe     `gorm:"foreignKey:RecipeID;constraint:OnDelete:CASCADE"`
	IngredientID uint        `gorm:"not null;uniqueIndex:idx_recipe_ingredient;index"`
	Ingredient   *Ingredient `gorm:"foreignKey:IngredientID;constraint:OnDelete:CASCADE"`
	Amount       int         `gorm:"not null"`
}
