package model

import "time"

type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Public strips the user down to the fields other services may see.
// The `_id` key is part of the wire contract consumed by peer services.
func (u User) Public() PublicUser {
	return PublicUser{ID: u.ID, Username: u.Username}
}

type PublicUser struct {
	ID       string `json:"_id"`
	Username string `json:"username"`
}

const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

type AuthClaims struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
	Type     string `json:"type"`
	TokenID  string `json:"jti"`
}

type TokenPair struct {
	User         PublicUser `json:"user"`
	AccessToken  string     `json:"accessToken"`
	RefreshToken string     `json:"refreshToken"`
	ExpiresIn    string     `json:"expiresIn"`
}
