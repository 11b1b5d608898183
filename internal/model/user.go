// Package model defines data structures for the chat platform.
package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AuthType identifies how a user account authenticates.
type AuthType string

const (
	AuthTypeLocal  AuthType = "local"
	AuthTypeGoogle AuthType = "google"
)

// User is an identity record in the users collection. Password is the bcrypt
// hash for local accounts and empty for federated ones; it never reaches the
// wire.
type User struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Name     string             `bson:"name" json:"name"`
	Email    string             `bson:"email" json:"email"`
	Password string             `bson:"password,omitempty" json:"-"`
	Avatar   string             `bson:"avatar,omitempty" json:"avatar,omitempty"`
	AuthType AuthType           `bson:"authType" json:"authType,omitempty"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// PublicUser is the profile shape safe to embed in other users' responses and
// in broadcast events. No credential or auth-type fields.
type PublicUser struct {
	ID     string `json:"_id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Avatar string `json:"avatar,omitempty"`
}

// Public projects the user to its shareable fields.
func (u *User) Public() PublicUser {
	return PublicUser{
		ID:     u.ID.Hex(),
		Name:   u.Name,
		Email:  u.Email,
		Avatar: u.Avatar,
	}
}

// Profile is the owner's view of their own account.
type Profile struct {
	ID        string    `json:"_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Avatar    string    `json:"avatar,omitempty"`
	AuthType  AuthType  `json:"authType,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// OwnProfile projects the user to the shape returned by profile and login
// endpoints.
func (u *User) OwnProfile() Profile {
	return Profile{
		ID:        u.ID.Hex(),
		Name:      u.Name,
		Email:     u.Email,
		Avatar:    u.Avatar,
		AuthType:  u.AuthType,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}
