package models

import "github.com/golang-jwt/jwt/v4"

// User is created on the first successful identity exchange for an email.
type User struct {
	ID    string  `json:"id" gorm:"primaryKey"`
	Email string  `json:"email" gorm:"uniqueIndex;not null"`
	Name  *string `json:"name"`
}

// MicrosoftExchangeRequest is the body of the identity exchange.
type MicrosoftExchangeRequest struct {
	IDToken    string `json:"id_token" validate:"required"`
	TenantSlug string `json:"tenant_slug"`
}

// TokenResponse is returned by the identity exchange.
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
}

// UserResponse is the body of GET /api/me.
type UserResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

func (u *User) ToResponse() UserResponse {
	resp := UserResponse{ID: u.ID, Email: u.Email}
	if u.Name != nil {
		resp.Name = *u.Name
	}
	return resp
}

// JwtCustomClaims are the claims of locally issued session tokens.
// Refresh tokens carry Type "refresh"; access tokens leave it empty.
type JwtCustomClaims struct {
	Type string `json:"type,omitempty"`
	jwt.RegisteredClaims
}
