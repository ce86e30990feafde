package auth

import "context"

// Usecase defines the interface for authentication operations.
type Usecase interface {
	Login(ctx context.Context, in LoginRequest) (*TokenResponse, error)
	Refresh(ctx context.Context, in RefreshRequest) (*TokenResponse, error)
}
