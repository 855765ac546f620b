package models

import (
	"time"

	"github.com/golang-jwt/jwt/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User represents an account stored in MongoDB. The friends field is an
// ordered set of user IDs; insertion order is preserved by the driver.
type User struct {
	ID           primitive.ObjectID   `json:"id" bson:"_id,omitempty"`
	Username     string               `json:"username" bson:"username"`
	Email        string               `json:"email" bson:"email"`
	Password     string               `json:"-" bson:"password"` // bcrypt hash, never serialized
	ProfileImage string               `json:"profileImage" bson:"profile_image"`
	Friends      []primitive.ObjectID `json:"friends" bson:"friends"`
	CreatedAt    time.Time            `json:"createdAt" bson:"created_at"`
}

// UserCompact is the denormalized view embedded in feeds, friend lists
// and liker lists.
type UserCompact struct {
	ID           primitive.ObjectID `json:"id"`
	Username     string             `json:"username"`
	Email        string             `json:"email"`
	ProfileImage string             `json:"profileImage"`
}

// ToCompact returns the denormalized view of the user.
func (u *User) ToCompact() UserCompact {
	return UserCompact{
		ID:           u.ID,
		Username:     u.Username,
		Email:        u.Email,
		ProfileImage: u.ProfileImage,
	}
}

// HasFriend reports whether targetID is in the user's friend set.
func (u *User) HasFriend(targetID primitive.ObjectID) bool {
	for _, id := range u.Friends {
		if id == targetID {
			return true
		}
	}
	return false
}

// RegisterRequest defines the request body for account registration
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Username string `json:"username" validate:"required,min=3,max=30"`
	Password string `json:"password" validate:"required,min=6"`
}

// LoginRequest defines the request body for signing in
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthResponse is returned by register and login
type AuthResponse struct {
	Token string      `json:"token"`
	User  UserCompact `json:"user"`
}

// JwtCustomClaims are custom claims extending standard jwt.RegisteredClaims
type JwtCustomClaims struct {
	UserID string `json:"user_id"`
	jwt.RegisteredClaims
}
