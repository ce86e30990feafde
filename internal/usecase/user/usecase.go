package user

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	domain "user-auth-service/internal/domain/user"
	apperrors "user-auth-service/pkg/errors"
	"user-auth-service/pkg/security"

	"github.com/go-playground/validator/v10"
)

// Repository defines the interface for user data access operations.
// It abstracts the data layer, allowing different implementations
// (e.g., MySQL, SQLite) to be used interchangeably.
// Lookup methods return (nil, nil) when no row matches.
type Repository interface {
	Create(ctx context.Context, u *domain.User) (int64, error)                               // Create a new user
	GetByID(ctx context.Context, id int64) (*domain.User, error)                             // Retrieve user by ID
	GetByEmail(ctx context.Context, email string) (*domain.User, error)                      // Retrieve user by email
	GetByUsername(ctx context.Context, username string) (*domain.User, error)                // Retrieve user by username
	GetByCPF(ctx context.Context, cpf string) (*domain.User, error)                          // Retrieve user by CPF
	GetByPhone(ctx context.Context, phone string) (*domain.User, error)                      // Retrieve user by phone
	GetByVerifyToken(ctx context.Context, token string) (*domain.User, error)                // Retrieve user by email verification token
	GetByResetToken(ctx context.Context, token string) (*domain.User, error)                 // Retrieve user by password reset token
	Update(ctx context.Context, u *domain.User) (int64, error)                               // Update existing user
	Delete(ctx context.Context, id int64) (int64, error)                                     // Delete user by ID
	List(ctx context.Context, query string, page, limit int64) ([]domain.User, int64, error) // List users with pagination, search and total count
}

// Mailer defines the interface for the outgoing notification mails the
// usecase sends. Implementations must be safe for concurrent use.
type Mailer interface {
	SendVerificationEmail(ctx context.Context, to, name, link string) error
	SendPasswordResetEmail(ctx context.Context, to, name, link string) error
}

// Config carries the usecase settings that come from the environment.
type Config struct {
	BaseURL        string        // Public base URL used to build links in mails
	VerifyTokenTTL time.Duration // Validity window of email verification tokens
	ResetTokenTTL  time.Duration // Validity window of password reset tokens
}

// UserUsecase implements the business logic for user management
// operations. It provides a clean separation between the transport
// layer and data layer.
type UserUsecase struct {
	repo     Repository          // Repository for data access
	mailer   Mailer              // Mailer for verification and reset mails, may be nil
	cfg      Config              // Environment-derived settings
	log      *zap.Logger         // Logger for structured logging
	validate *validator.Validate // Validator for request validation
}

// New creates a new instance of UserUsecase with the provided
// repository, mailer, settings and logger. If mailer is nil, no mails
// are sent.
func New(r Repository, m Mailer, cfg Config, log *zap.Logger) *UserUsecase {
	return &UserUsecase{repo: r, mailer: m, cfg: cfg, log: log, validate: validator.New()}
}

// formatValidationError converts validator.ValidationErrors into a human-readable error message.
func formatValidationError(err error) error {
	if validationErrors, ok := err.(validator.ValidationErrors); ok {
		var messages []string
		for _, e := range validationErrors {
			switch e.Tag() {
			case "required":
				messages = append(messages, fmt.Sprintf("%s is required", e.Field()))
			case "email":
				messages = append(messages, fmt.Sprintf("%s must be a valid email", e.Field()))
			case "min":
				messages = append(messages, fmt.Sprintf("%s must be at least %s characters", e.Field(), e.Param()))
			case "max":
				messages = append(messages, fmt.Sprintf("%s must be at most %s characters", e.Field(), e.Param()))
			case "alphanum":
				messages = append(messages, fmt.Sprintf("%s must contain only letters and numbers", e.Field()))
			case "oneof":
				messages = append(messages, fmt.Sprintf("%s must be one of: %s", e.Field(), e.Param()))
			default:
				messages = append(messages, fmt.Sprintf("%s is invalid", e.Field()))
			}
		}
		return apperrors.NewValidationError("", strings.Join(messages, ", "))
	}
	return err
}

// Register creates a new user account after validating the request and
// checking email, username and CPF uniqueness. The role is always
// "client"; admins are created by other admins through UpdateUser.
func (uc *UserUsecase) Register(ctx context.Context, in RegisterRequest) (*UserResponse, error) {
	uc.log.Info("registering user", zap.String("username", in.Username), zap.String("email", in.Email))

	if err := uc.validate.Struct(in); err != nil {
		uc.log.Warn("validate failed", zap.Error(err))
		return nil, formatValidationError(err)
	}

	cpf := security.NormalizeCPF(in.CPF)
	if !security.ValidateCPF(cpf) {
		uc.log.Warn("invalid cpf on registration", zap.String("username", in.Username))
		return nil, apperrors.NewValidationError("cpf", "invalid CPF number")
	}

	if existing, err := uc.repo.GetByEmail(ctx, in.Email); err != nil {
		uc.log.Error("failed to check existing email", zap.String("email", in.Email), zap.Error(err))
		return nil, apperrors.NewInternalError("failed to validate email uniqueness", err)
	} else if existing != nil {
		uc.log.Warn("email already exists", zap.String("email", in.Email))
		return nil, apperrors.NewAlreadyExistsError("email", "email already registered")
	}

	if existing, err := uc.repo.GetByUsername(ctx, in.Username); err != nil {
		uc.log.Error("failed to check existing username", zap.String("username", in.Username), zap.Error(err))
		return nil, apperrors.NewInternalError("failed to validate username uniqueness", err)
	} else if existing != nil {
		uc.log.Warn("username already exists", zap.String("username", in.Username))
		return nil, apperrors.NewAlreadyExistsError("username", "username already registered")
	}

	if existing, err := uc.repo.GetByCPF(ctx, cpf); err != nil {
		uc.log.Error("failed to check existing cpf", zap.Error(err))
		return nil, apperrors.NewInternalError("failed to validate cpf uniqueness", err)
	} else if existing != nil {
		uc.log.Warn("cpf already exists", zap.String("username", in.Username))
		return nil, apperrors.NewAlreadyExistsError("cpf", "CPF already registered")
	}

	hash, err := security.HashPassword(in.Password)
	if err != nil {
		uc.log.Error("failed to hash password", zap.Error(err))
		return nil, apperrors.NewInternalError("failed to process password", err)
	}

	verifyToken, err := security.GenerateSecureToken(32)
	if err != nil {
		uc.log.Error("failed to generate verification token", zap.Error(err))
		return nil, apperrors.NewInternalError("failed to generate verification token", err)
	}
	expiry := time.Now().Add(uc.cfg.VerifyTokenTTL)

	u := &domain.User{
		Name:         in.Name,
		Username:     in.Username,
		Email:        in.Email,
		CPF:          cpf,
		Phone:        in.Phone,
		Role:         domain.RoleClient,
		PasswordHash: hash,
		Active:       true,
		VerifyToken:  verifyToken,
		TokenExpiry:  &expiry,
	}

	id, err := uc.repo.Create(ctx, u)
	if err != nil {
		uc.log.Error("failed to create user", zap.Error(err))
		return nil, err
	}

	created, err := uc.repo.GetByID(ctx, id)
	if err != nil || created == nil {
		uc.log.Error("failed to load created user", zap.Int64("id", id), zap.Error(err))
		return nil, apperrors.NewInternalError("failed to load created user", err)
	}

	// Mail failures must not fail the registration.
	uc.sendVerificationMail(ctx, created)

	return ToResponse(created), nil
}

func (uc *UserUsecase) sendVerificationMail(ctx context.Context, u *domain.User) {
	if uc.mailer == nil || u.VerifyToken == "" {
		return
	}
	link := fmt.Sprintf("%s/v1/users/verify-email/%s", uc.cfg.BaseURL, u.VerifyToken)
	if err := uc.mailer.SendVerificationEmail(ctx, u.Email, u.Name, link); err != nil {
		uc.log.Warn("failed to send verification email", zap.Int64("id", u.ID), zap.Error(err))
	}
}

// GetUser retrieves a user by ID. Clients may only read their own
// account, admins may read any.
func (uc *UserUsecase) GetUser(ctx context.Context, in GetUserRequest) (*UserResponse, error) {
	if in.ID <= 0 {
		uc.log.Warn("get user validation failed", zap.Int64("id", in.ID), zap.String("reason", "invalid id"))
		return nil, apperrors.NewValidationError("id", "invalid user id")
	}

	if !in.Actor.IsAdmin() && in.Actor.ID != in.ID {
		uc.log.Warn("get user denied", zap.Int64("id", in.ID), zap.Int64("actor_id", in.Actor.ID))
		return nil, apperrors.ErrPermissionDenied
	}

	u, err := uc.repo.GetByID(ctx, in.ID)
	if err != nil {
		uc.log.Error("failed to get user", zap.Int64("id", in.ID), zap.Error(err))
		return nil, err
	}
	if u == nil {
		return nil, apperrors.NewNotFoundError("user", "user not found")
	}

	return ToResponse(u), nil
}

// UpdateUser updates an existing user. Clients may only update their
// own account; changing Role or Active requires the admin role.
func (uc *UserUsecase) UpdateUser(ctx context.Context, in UpdateUserRequest) (*UserResponse, error) {
	uc.log.Info("updating user", zap.Int64("id", in.ID), zap.Int64("actor_id", in.Actor.ID))

	if err := uc.validate.Struct(in); err != nil {
		uc.log.Warn("validate failed", zap.Error(err))
		return nil, formatValidationError(err)
	}

	if !in.Actor.IsAdmin() && in.Actor.ID != in.ID {
		uc.log.Warn("update user denied", zap.Int64("id", in.ID), zap.Int64("actor_id", in.Actor.ID))
		return nil, apperrors.ErrPermissionDenied
	}

	current, err := uc.repo.GetByID(ctx, in.ID)
	if err != nil {
		uc.log.Error("failed to load user for update", zap.Int64("id", in.ID), zap.Error(err))
		return nil, err
	}
	if current == nil {
		return nil, apperrors.NewNotFoundError("user", "user not found")
	}

	if in.Role != "" && in.Role != current.Role && !in.Actor.IsAdmin() {
		uc.log.Warn("role change denied", zap.Int64("id", in.ID), zap.Int64("actor_id", in.Actor.ID))
		return nil, apperrors.NewForbiddenError("only admins can change roles")
	}
	if in.Active != nil && *in.Active != current.Active && !in.Actor.IsAdmin() {
		uc.log.Warn("active change denied", zap.Int64("id", in.ID), zap.Int64("actor_id", in.Actor.ID))
		return nil, apperrors.NewForbiddenError("only admins can activate or deactivate accounts")
	}

	if in.Email != "" && in.Email != current.Email {
		existing, err := uc.repo.GetByEmail(ctx, in.Email)
		if err != nil {
			uc.log.Error("failed to check existing email", zap.String("email", in.Email), zap.Error(err))
			return nil, apperrors.NewInternalError("failed to validate email uniqueness", err)
		}
		if existing != nil && existing.ID != in.ID {
			uc.log.Warn("email already exists", zap.String("email", in.Email), zap.Int64("existing_id", existing.ID))
			return nil, apperrors.NewAlreadyExistsError("email", "email already registered")
		}
		current.Email = in.Email
	}

	if in.Username != "" && in.Username != current.Username {
		existing, err := uc.repo.GetByUsername(ctx, in.Username)
		if err != nil {
			uc.log.Error("failed to check existing username", zap.String("username", in.Username), zap.Error(err))
			return nil, apperrors.NewInternalError("failed to validate username uniqueness", err)
		}
		if existing != nil && existing.ID != in.ID {
			uc.log.Warn("username already exists", zap.String("username", in.Username), zap.Int64("existing_id", existing.ID))
			return nil, apperrors.NewAlreadyExistsError("username", "username already registered")
		}
		current.Username = in.Username
	}

	if in.Name != "" {
		current.Name = in.Name
	}
	if in.Phone != "" {
		current.Phone = in.Phone
	}
	if in.Role != "" {
		current.Role = in.Role
	}
	if in.Active != nil {
		current.Active = *in.Active
	}
	if in.Password != "" {
		hash, err := security.HashPassword(in.Password)
		if err != nil {
			uc.log.Error("failed to hash password", zap.Error(err))
			return nil, apperrors.NewInternalError("failed to process password", err)
		}
		current.PasswordHash = hash
	}

	if _, err := uc.repo.Update(ctx, current); err != nil {
		uc.log.Error("failed to update user", zap.Int64("id", in.ID), zap.Error(err))
		return nil, err
	}

	updated, err := uc.repo.GetByID(ctx, in.ID)
	if err != nil || updated == nil {
		uc.log.Error("failed to load updated user", zap.Int64("id", in.ID), zap.Error(err))
		return nil, apperrors.NewInternalError("failed to load updated user", err)
	}

	return ToResponse(updated), nil
}

// DeleteUser deletes a user. The operation is restricted to admins;
// the router gates the route as well.
func (uc *UserUsecase) DeleteUser(ctx context.Context, in DeleteUserRequest) error {
	uc.log.Info("deleting user", zap.Int64("id", in.ID), zap.Int64("actor_id", in.Actor.ID))

	if in.ID <= 0 {
		uc.log.Warn("delete user validation failed", zap.Int64("id", in.ID), zap.String("reason", "invalid id"))
		return apperrors.NewValidationError("id", "invalid user id")
	}

	if !in.Actor.IsAdmin() {
		uc.log.Warn("delete user denied", zap.Int64("id", in.ID), zap.Int64("actor_id", in.Actor.ID))
		return apperrors.ErrPermissionDenied
	}

	u, err := uc.repo.GetByID(ctx, in.ID)
	if err != nil {
		uc.log.Error("failed to load user for delete", zap.Int64("id", in.ID), zap.Error(err))
		return err
	}
	if u == nil {
		return apperrors.NewNotFoundError("user", "user not found")
	}

	if _, err := uc.repo.Delete(ctx, in.ID); err != nil {
		uc.log.Error("failed to delete user", zap.Int64("id", in.ID), zap.Error(err))
		return err
	}

	return nil
}

// ListUsers retrieves a paginated list of users with optional search functionality.
func (uc *UserUsecase) ListUsers(ctx context.Context, in ListUsersRequest) (*ListUsersResponse, error) {
	if in.Page <= 0 {
		in.Page = 1
	}
	if in.Limit <= 0 {
		in.Limit = 10
	}
	if in.Limit > 100 {
		in.Limit = 100
	}

	uc.log.Info("listing users", zap.String("query", in.Query), zap.Int64("page", in.Page), zap.Int64("limit", in.Limit))

	domainUsers, total, err := uc.repo.List(ctx, in.Query, in.Page, in.Limit)
	if err != nil {
		// Handle validation errors from repository layer
		if strings.Contains(err.Error(), "invalid search query") {
			uc.log.Warn("invalid search query in usecase", zap.String("query", in.Query), zap.Error(err))
			return nil, apperrors.NewValidationError("query", strings.TrimPrefix(err.Error(), "invalid search query: "))
		}
		uc.log.Error("failed to list users", zap.String("query", in.Query), zap.Int64("page", in.Page), zap.Int64("limit", in.Limit), zap.Error(err))
		return nil, err
	}

	users := make([]UserResponse, len(domainUsers))
	for i := range domainUsers {
		users[i] = *ToResponse(&domainUsers[i])
	}

	p := domain.NewPagination(total, in.Page, in.Limit)

	return &ListUsersResponse{
		Users: users,
		Pagination: &Pagination{
			Total:      p.Total,
			Page:       p.Page,
			Limit:      p.Limit,
			TotalPages: p.TotalPages,
		},
	}, nil
}

// VerifyEmail marks the account owning the verification token as
// verified and consumes the token.
func (uc *UserUsecase) VerifyEmail(ctx context.Context, token string) error {
	if token == "" {
		return apperrors.NewValidationError("token", "invalid or expired verification token")
	}

	u, err := uc.repo.GetByVerifyToken(ctx, token)
	if err != nil {
		uc.log.Error("failed to look up verification token", zap.Error(err))
		return err
	}
	if u == nil || u.TokenExpiry == nil || time.Now().After(*u.TokenExpiry) {
		uc.log.Warn("invalid or expired verification token")
		return apperrors.NewValidationError("token", "invalid or expired verification token")
	}

	u.EmailVerified = true
	u.VerifyToken = ""
	u.TokenExpiry = nil

	if _, err := uc.repo.Update(ctx, u); err != nil {
		uc.log.Error("failed to mark email verified", zap.Int64("id", u.ID), zap.Error(err))
		return err
	}

	uc.log.Info("email verified", zap.Int64("id", u.ID))
	return nil
}

// RequestPasswordReset issues a reset token and mails it to the user.
// It reports success regardless of whether the email is registered, so
// the endpoint cannot be used to probe for accounts.
func (uc *UserUsecase) RequestPasswordReset(ctx context.Context, email string) error {
	uc.log.Info("password reset requested", zap.String("email", email))

	u, err := uc.repo.GetByEmail(ctx, email)
	if err != nil {
		uc.log.Error("failed to look up email for reset", zap.String("email", email), zap.Error(err))
		return err
	}
	if u == nil || !u.Active {
		uc.log.Debug("password reset for unknown or inactive account", zap.String("email", email))
		return nil
	}

	resetToken, err := security.GenerateSecureToken(32)
	if err != nil {
		uc.log.Error("failed to generate reset token", zap.Error(err))
		return apperrors.NewInternalError("failed to generate reset token", err)
	}
	expiry := time.Now().Add(uc.cfg.ResetTokenTTL)

	u.ResetToken = resetToken
	u.TokenExpiry = &expiry

	if _, err := uc.repo.Update(ctx, u); err != nil {
		uc.log.Error("failed to store reset token", zap.Int64("id", u.ID), zap.Error(err))
		return err
	}

	if uc.mailer != nil {
		link := fmt.Sprintf("%s/v1/users/password-reset/%s", uc.cfg.BaseURL, resetToken)
		if err := uc.mailer.SendPasswordResetEmail(ctx, u.Email, u.Name, link); err != nil {
			uc.log.Warn("failed to send password reset email", zap.Int64("id", u.ID), zap.Error(err))
		}
	}

	return nil
}

// ResetPassword sets a new password for the account owning the reset
// token and consumes the token.
func (uc *UserUsecase) ResetPassword(ctx context.Context, token, newPassword string) error {
	if token == "" {
		return apperrors.NewValidationError("token", "invalid or expired reset token")
	}
	if len(newPassword) < 8 {
		return apperrors.NewValidationError("password", "password must be at least 8 characters")
	}

	u, err := uc.repo.GetByResetToken(ctx, token)
	if err != nil {
		uc.log.Error("failed to look up reset token", zap.Error(err))
		return err
	}
	if u == nil || u.TokenExpiry == nil || time.Now().After(*u.TokenExpiry) {
		uc.log.Warn("invalid or expired reset token")
		return apperrors.NewValidationError("token", "invalid or expired reset token")
	}

	hash, err := security.HashPassword(newPassword)
	if err != nil {
		uc.log.Error("failed to hash password", zap.Error(err))
		return apperrors.NewInternalError("failed to process password", err)
	}

	u.PasswordHash = hash
	u.ResetToken = ""
	u.TokenExpiry = nil

	if _, err := uc.repo.Update(ctx, u); err != nil {
		uc.log.Error("failed to reset password", zap.Int64("id", u.ID), zap.Error(err))
		return err
	}

	uc.log.Info("password reset completed", zap.Int64("id", u.ID))
	return nil
}

// CheckExists reports whether the given CPF or phone are already
// registered, for client-side pre-checks during registration.
func (uc *UserUsecase) CheckExists(ctx context.Context, in CheckExistsRequest) (*CheckExistsResponse, error) {
	resp := &CheckExistsResponse{}

	if in.CPF != "" {
		u, err := uc.repo.GetByCPF(ctx, security.NormalizeCPF(in.CPF))
		if err != nil {
			uc.log.Error("failed to check cpf", zap.Error(err))
			return nil, err
		}
		resp.CPFExists = u != nil
	}

	if in.Phone != "" {
		u, err := uc.repo.GetByPhone(ctx, in.Phone)
		if err != nil {
			uc.log.Error("failed to check phone", zap.Error(err))
			return nil, err
		}
		resp.PhoneExists = u != nil
	}

	return resp, nil
}

// ToResponse maps a domain user to its API-safe DTO. The password hash
// and pending tokens never leave the usecase layer.
func ToResponse(u *domain.User) *UserResponse {
	return &UserResponse{
		ID:            u.ID,
		Name:          u.Name,
		Username:      u.Username,
		Email:         u.Email,
		CPF:           u.CPF,
		Phone:         u.Phone,
		Role:          u.Role,
		Active:        u.Active,
		EmailVerified: u.EmailVerified,
		CreatedAt:     u.CreatedAt,
		UpdatedAt:     u.UpdatedAt,
	}
}
