package models

import (
	"errors"
	"time"

	"gorm.io/gorm"
)

// ErrSelfSubscription is returned by the Subscription create hook when a
// user tries to follow themselves.
var ErrSelfSubscription = errors.New("users cannot subscribe to themselves")

// Favorite marks a recipe as favorited by a user
type Favorite struct {
	ID        uint    `gorm:"primaryKey"`
	UserID    uint    `gorm:"not null;uniqueIndex:idx_favorite_user_recipe"`
	User      *User   `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	RecipeID  uint    `gorm:"not null;uniqueIndex:idx_favorite_user_recipe;index"`
	Recipe    *Recipe `gorm:"foreignKey:RecipeID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time
}

// CartItem puts a recipe into a user's shopping cart
type CartItem struct {
	ID        uint    `gorm:"primaryKey"`
	UserID    uint    `gorm:"not null;uniqueIndex:idx_cart_user_recipe"`
	User      *User   `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	RecipeID  uint    `gorm:"not null;uniqueIndex:idx_cart_user_recipe;index"`
	Recipe    *Recipe `gorm:"foreignKey:RecipeID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time
}

// Subscription links a subscriber to an author. The database rejects
// rows where both sides are the same user.
type Subscription struct {
	ID           uint  `gorm:"primaryKey"`
	SubscriberID uint  `gorm:"not null;uniqueIndex:idx_subscription_pair"`
	Subscriber   *User `gorm:"foreignKey:SubscriberID;constraint:OnDelete:CASCADE"`
	AuthorID     uint  `gorm:"not null;uniqueIndex:idx_subscription_pair;index;check:chk_subscription_not_self,subscriber_id <> author_id"`
	Author       *User `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE"`
	CreatedAt    time.Time
}

func (s *Subscription) BeforeCreate(tx *gorm.DB) error {
	if s.SubscriberID == s.AuthorID {
		return ErrSelfSubscription
	}
	return nil
}

// All returns every model managed by AutoMigrate, parents first.
func All() []interface{} {
	return []interface{}{
		&User{},
		&Ingredient{},
		&Recipe{},
		&RecipeIngredient{},
		&Favorite{},
		&CartItem{},
		&Subscription{},
		&AuthToken{},
	}
}
