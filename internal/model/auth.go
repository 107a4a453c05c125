package model

import "github.com/google/uuid"

// TokenClaims carries the identity extracted from a validated token.
type TokenClaims struct {
	UserID      uuid.UUID `json:"user_id"`
	Username    string    `json:"username"`
	Role        string    `json:"role"`
	IsSuperuser bool      `json:"is_superuser"`
	IsActive    bool      `json:"is_active"`
}

// TokenResponse is the access/refresh token pair returned on login.
type TokenResponse struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// LoginRequest represents token issuance parameters
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// RefreshRequest represents token refresh parameters
type RefreshRequest struct {
	Refresh string `json:"refresh" binding:"required"`
}

// VerifyRequest represents token verification parameters
type VerifyRequest struct {
	Token string `json:"token" binding:"required"`
}
