package models

import (
	"time"
)

// AuthToken is an issued access token. Logging out deletes the row, which
// invalidates the token even though its signature stays valid.
type AuthToken struct {
	ID           uint   `gorm:"primaryKey"`
	ClientID     string `gorm:"not null"`
	UserID       string `gorm:"index;not null"`
	AccessToken  string `gorm:"uniqueIndex;not null"`
	RefreshToken string `gorm:"index"`
	Scopes       string
	ExpiresAt    time.Time `gorm:"not null"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (AuthToken) TableName() string {
	return "auth_tokens"
}
