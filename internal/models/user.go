package models

import (
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// User is an account that authors posts and comments and follows other users.
type User struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Username    string    `json:"username" gorm:"size:150;uniqueIndex;not null"`
	Name        string    `json:"name"`
	Email       string    `json:"email,omitempty" gorm:"index"`
	Password    string    `json:"-"`                    // bcrypt hash
	FirebaseUID *string   `json:"-" gorm:"uniqueIndex"` // nil for local accounts
	CreatedAt   time.Time `json:"created_at"`
}

// UserCompact is the author block embedded in post and comment views.
type UserCompact struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name,omitempty"`
}

// ToCompact converts a User to its compact form.
func (u *User) ToCompact() UserCompact {
	return UserCompact{ID: u.ID, Username: u.Username, Name: u.Name}
}

// SignupRequest defines the request body for local user registration.
type SignupRequest struct {
	Username string `json:"username" form:"username" validate:"required,min=2,max=150"`
	Name     string `json:"name" form:"name" validate:"omitempty,max=150"`
	Email    string `json:"email" form:"email" validate:"required,email"`
	Password string `json:"password" form:"password" validate:"required,min=8"`
}

// LoginRequest defines the request body for local sign in.
type LoginRequest struct {
	Username string `json:"username" form:"username" validate:"required"`
	Password string `json:"password" form:"password" validate:"required"`
	Next     string `json:"next" form:"next" query:"next"`
}

// JwtCustomClaims are custom claims extending standard jwt.RegisteredClaims
type JwtCustomClaims struct {
	UserID   uint   `json:"user_id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}
