package model

import "github.com/golang-jwt/jwt/v5"

// AuthClaims is the JWT payload for an admin session token.
type AuthClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// LoginRequest is the credentials payload for the login endpoint.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// TokenPair carries a freshly issued session token.
type TokenPair struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
}
