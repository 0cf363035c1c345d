package models

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User is an account that can author recipes and subscribe to other authors.
type User struct {
	ID        uint    `gorm:"primaryKey"`
	Email     string  `gorm:"size:254;uniqueIndex;not null"`
	Username  string  `gorm:"size:150;uniqueIndex;not null"`
	FirstName string  `gorm:"size:150;not null"`
	LastName  string  `gorm:"size:150;not null"`
	Password  string  `gorm:"size:128;not null"`
	Avatar    *string `gorm:"size:255"`
	Role      string  `gorm:"size:16;default:'user'"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// HashPassword replaces the plain text password with its bcrypt hash
func (u *User) HashPassword() error {
	hash, err := bcrypt.GenerateFromPassword([]byte(u.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.Password = string(hash)
	return nil
}

// CheckPassword reports whether the plain text password matches the stored hash
func (u *User) CheckPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)) == nil
}
