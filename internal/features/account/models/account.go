package models

import (
	"time"

	"marketplace-backend/internal/platform/storage"
)

// Account is a registered marketplace user. Hash and salt never leave the
// persistence layer except for the login flow; responses only ever expose
// the public projection.
type Account struct {
	ID         string         `json:"id" bson:"_id"`
	Email      string         `json:"email" bson:"email"`
	Username   string         `json:"username" bson:"username"`
	Avatar     *storage.Asset `json:"avatar,omitempty" bson:"avatar,omitempty"`
	Newsletter bool           `json:"newsletter" bson:"newsletter"`
	Token      string         `json:"-" bson:"token"`
	Hash       string         `json:"-" bson:"hash,omitempty"`
	Salt       string         `json:"-" bson:"salt,omitempty"`
	CreatedAt  time.Time      `json:"created_at" bson:"created_at"`
}

// PublicProfile is the reduced projection embedded in offer responses.
type PublicProfile struct {
	Username string         `json:"username"`
	Avatar   *storage.Asset `json:"avatar,omitempty"`
}

// Public returns the account's public profile.
func (a *Account) Public() PublicProfile {
	return PublicProfile{
		Username: a.Username,
		Avatar:   a.Avatar,
	}
}

// AuthResponse is returned by signup and login.
type AuthResponse struct {
	ID      string        `json:"id"`
	Token   string        `json:"token"`
	Account PublicProfile `json:"account"`
}
