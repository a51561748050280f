// models/user.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User represents an account in the users collection. Followers and
// following are maintained pairwise by the follow toggle; the two arrays
// are never updated independently.
type User struct {
	ID               primitive.ObjectID   `json:"id,omitempty" bson:"_id,omitempty"`
	FullName         string               `json:"fullName" bson:"fullName"`
	Username         string               `json:"username" bson:"username"`
	Email            string               `json:"email" bson:"email"`
	Bio              string               `json:"bio,omitempty" bson:"bio,omitempty"`
	Password         string               `json:"password,omitempty" bson:"password"`
	Avatar           string               `json:"avatar,omitempty" bson:"avatar,omitempty"`
	VerifyCode       string               `json:"-" bson:"verifyCode,omitempty"`
	VerifyCodeExpiry time.Time            `json:"-" bson:"verifyCodeExpiry,omitempty"`
	ResetCode        string               `json:"-" bson:"resetCode,omitempty"`
	ResetCodeExpiry  time.Time            `json:"-" bson:"resetCodeExpiry,omitempty"`
	IsVerified       bool                 `json:"isVerified" bson:"isVerified"`
	Threads          []primitive.ObjectID `json:"threads" bson:"threads"`
	Followers        []primitive.ObjectID `json:"followers" bson:"followers"`
	Following        []primitive.ObjectID `json:"following" bson:"following"`
	CreatedAt        time.Time            `json:"createdAt" bson:"createdAt"`
	UpdatedAt        time.Time            `json:"updatedAt" bson:"updatedAt"`
}

// UserRef is the reduced shape attached to threads and comments in place of
// a bare owner id.
type UserRef struct {
	ID       primitive.ObjectID `json:"id" bson:"_id"`
	Username string             `json:"username" bson:"username"`
	FullName string             `json:"fullName,omitempty" bson:"fullName,omitempty"`
	Avatar   string             `json:"avatar,omitempty" bson:"avatar,omitempty"`
}

// Response is the common envelope for all API responses. Success is the
// authoritative signal; status codes are kept for clients that check them.
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}
