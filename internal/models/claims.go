package models

import "github.com/golang-jwt/jwt/v5"

// APIClaims identifies the acting host-platform user on protected routes.
// Identity fields are optional; EduLegit tolerates anonymous registrations.
type APIClaims struct {
	UserRef   int64   `json:"userRef"`
	Email     *string `json:"email,omitempty"`
	FirstName *string `json:"firstName,omitempty"`
	LastName  *string `json:"lastName,omitempty"`
	jwt.RegisteredClaims
}
