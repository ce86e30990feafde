package auth

import "user-auth-service/internal/usecase/user"

// LoginRequest represents the credentials presented at login.
type LoginRequest struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required"`
}

// RefreshRequest represents a refresh token exchange request.
type RefreshRequest struct {
	RefreshToken string `validate:"required"`
}

// TokenResponse represents an issued token pair together with the
// account it belongs to.
type TokenResponse struct {
	AccessToken  string
	RefreshToken string
	TokenType    string // always "bearer"
	ExpiresIn    int64  // seconds until the access token expires
	User         *user.UserResponse
}
