package auth

import (
	"context"

	"go.uber.org/zap"

	"user-auth-service/internal/usecase/user"
	apperrors "user-auth-service/pkg/errors"
	"user-auth-service/pkg/security"
	"user-auth-service/pkg/token"

	"github.com/go-playground/validator/v10"
)

// AuthUsecase implements login and token refresh against the user
// repository. Failed logins always return the same generic error so
// the endpoint cannot be used to probe for registered emails.
type AuthUsecase struct {
	repo     user.Repository
	tokens   *token.Manager
	log      *zap.Logger
	validate *validator.Validate
}

// New creates a new instance of AuthUsecase.
func New(r user.Repository, tm *token.Manager, log *zap.Logger) *AuthUsecase {
	return &AuthUsecase{repo: r, tokens: tm, log: log, validate: validator.New()}
}

// Login verifies the credentials and issues a token pair.
func (uc *AuthUsecase) Login(ctx context.Context, in LoginRequest) (*TokenResponse, error) {
	if err := uc.validate.Struct(in); err != nil {
		uc.log.Warn("login validate failed", zap.Error(err))
		return nil, apperrors.NewValidationError("", "email and password are required")
	}

	u, err := uc.repo.GetByEmail(ctx, in.Email)
	if err != nil {
		uc.log.Error("failed to look up user for login", zap.Error(err))
		return nil, apperrors.NewInternalError("failed to verify credentials", err)
	}
	if u == nil || !security.CheckPassword(u.PasswordHash, in.Password) {
		uc.log.Warn("login rejected", zap.String("email", in.Email))
		return nil, apperrors.ErrInvalidCredentials
	}
	if !u.Active {
		uc.log.Warn("login rejected for inactive user", zap.Int64("id", u.ID))
		return nil, apperrors.NewForbiddenError("inactive user")
	}

	pair, err := uc.tokens.GeneratePair(u.ID, u.Email, u.Role)
	if err != nil {
		uc.log.Error("failed to issue tokens", zap.Int64("id", u.ID), zap.Error(err))
		return nil, apperrors.NewInternalError("failed to issue tokens", err)
	}

	uc.log.Info("user logged in", zap.Int64("id", u.ID))
	return &TokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		TokenType:    "bearer",
		ExpiresIn:    pair.ExpiresIn,
		User:         user.ToResponse(u),
	}, nil
}

// Refresh exchanges a valid refresh token for a fresh token pair. The
// new claims are rebuilt from the current user row, so role changes
// and deactivations take effect at the next refresh.
func (uc *AuthUsecase) Refresh(ctx context.Context, in RefreshRequest) (*TokenResponse, error) {
	if err := uc.validate.Struct(in); err != nil {
		uc.log.Warn("refresh validate failed", zap.Error(err))
		return nil, apperrors.NewValidationError("", "refresh token is required")
	}

	claims, err := uc.tokens.ParseRefresh(in.RefreshToken)
	if err != nil {
		uc.log.Warn("refresh token rejected", zap.Error(err))
		return nil, apperrors.ErrInvalidToken
	}

	u, err := uc.repo.GetByID(ctx, claims.UserID)
	if err != nil {
		uc.log.Error("failed to load user for refresh", zap.Int64("id", claims.UserID), zap.Error(err))
		return nil, apperrors.NewInternalError("failed to refresh tokens", err)
	}
	if u == nil || !u.Active {
		uc.log.Warn("refresh rejected for missing or inactive user", zap.Int64("id", claims.UserID))
		return nil, apperrors.ErrInvalidToken
	}

	pair, err := uc.tokens.GeneratePair(u.ID, u.Email, u.Role)
	if err != nil {
		uc.log.Error("failed to issue tokens", zap.Int64("id", u.ID), zap.Error(err))
		return nil, apperrors.NewInternalError("failed to issue tokens", err)
	}

	uc.log.Info("tokens refreshed", zap.Int64("id", u.ID))
	return &TokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		TokenType:    "bearer",
		ExpiresIn:    pair.ExpiresIn,
		User:         user.ToResponse(u),
	}, nil
}
