package mysql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"user-auth-service/internal/domain/user"
	"user-auth-service/pkg/security"
)

// UserRepoMySQL implements the user Repository interface using MySQL
// and GORM.
type UserRepoMySQL struct {
	db  *gorm.DB    // GORM database connection
	log *zap.Logger // Structured logger for database operations
}

// NewUserRepoMySQL creates a new instance of UserRepoMySQL.
func NewUserRepoMySQL(db *gorm.DB, log *zap.Logger) *UserRepoMySQL {
	return &UserRepoMySQL{db: db, log: log}
}

// UserSchema represents the database schema for the users table.
type UserSchema struct {
	ID            int64      `gorm:"primaryKey;autoIncrement"`
	Name          string     `gorm:"size:100;not null"`
	Username      string     `gorm:"size:50;not null;uniqueIndex"`
	Email         string     `gorm:"size:255;not null;uniqueIndex"`
	CPF           string     `gorm:"size:11;not null;uniqueIndex"`
	Phone         string     `gorm:"size:20;not null;index"`
	Role          string     `gorm:"size:10;not null;default:client"`
	PasswordHash  string     `gorm:"size:255;not null"`
	Active        bool       `gorm:"not null;default:true"`
	EmailVerified bool       `gorm:"not null;default:false"`
	VerifyToken   string     `gorm:"size:64;index"`
	ResetToken    string     `gorm:"size:64;index"`
	TokenExpiry   *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// TableName specifies the table name for the UserSchema model.
func (UserSchema) TableName() string {
	return "users"
}

func toSchema(u *user.User) UserSchema {
	return UserSchema{
		ID:            u.ID,
		Name:          u.Name,
		Username:      u.Username,
		Email:         u.Email,
		CPF:           u.CPF,
		Phone:         u.Phone,
		Role:          u.Role,
		PasswordHash:  u.PasswordHash,
		Active:        u.Active,
		EmailVerified: u.EmailVerified,
		VerifyToken:   u.VerifyToken,
		ResetToken:    u.ResetToken,
		TokenExpiry:   u.TokenExpiry,
		CreatedAt:     u.CreatedAt,
		UpdatedAt:     u.UpdatedAt,
	}
}

func toDomain(m *UserSchema) *user.User {
	return &user.User{
		ID:            m.ID,
		Name:          m.Name,
		Username:      m.Username,
		Email:         m.Email,
		CPF:           m.CPF,
		Phone:         m.Phone,
		Role:          m.Role,
		PasswordHash:  m.PasswordHash,
		Active:        m.Active,
		EmailVerified: m.EmailVerified,
		VerifyToken:   m.VerifyToken,
		ResetToken:    m.ResetToken,
		TokenExpiry:   m.TokenExpiry,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}

// Create inserts a new user into the database.
func (r *UserRepoMySQL) Create(ctx context.Context, u *user.User) (int64, error) {
	if u == nil {
		return 0, errors.New("user cannot be nil")
	}

	model := toSchema(u)

	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		r.log.Error("failed to create user in db", zap.Error(err), zap.String("email", u.Email))
		return 0, fmt.Errorf("failed to create user: %w", err)
	}

	r.log.Info("user created in db", zap.Int64("id", model.ID))
	return model.ID, nil
}

// Update updates an existing user in the database.
func (r *UserRepoMySQL) Update(ctx context.Context, u *user.User) (int64, error) {
	if u == nil {
		return 0, errors.New("user cannot be nil")
	}
	if u.ID <= 0 {
		return 0, errors.New("invalid user id")
	}

	model := toSchema(u)

	// Selected columns are written even when zero, so cleared tokens
	// and false booleans persist. password_hash is only written when
	// set: entities served from cache carry an empty hash and must not
	// wipe the stored one.
	cols := []string{"name", "username", "email", "phone", "role", "active",
		"email_verified", "verify_token", "reset_token", "token_expiry"}
	if u.PasswordHash != "" {
		cols = append(cols, "password_hash")
	}

	if err := r.db.WithContext(ctx).Model(&UserSchema{ID: u.ID}).Select(cols).Updates(&model).Error; err != nil {
		r.log.Error("failed to update user in db", zap.Error(err), zap.Int64("id", u.ID))
		return 0, fmt.Errorf("failed to update user: %w", err)
	}

	r.log.Info("user updated in db", zap.Int64("id", model.ID))
	return model.ID, nil
}

// Delete removes a user from the database by ID.
func (r *UserRepoMySQL) Delete(ctx context.Context, id int64) (int64, error) {
	if id <= 0 {
		return 0, errors.New("invalid user id")
	}

	if err := r.db.WithContext(ctx).Delete(&UserSchema{}, id).Error; err != nil {
		r.log.Error("failed to delete user in db", zap.Error(err), zap.Int64("id", id))
		return 0, fmt.Errorf("failed to delete user: %w", err)
	}

	r.log.Info("user deleted in db", zap.Int64("id", id))
	return id, nil
}

// GetByID retrieves a user from the database by their unique ID.
// Returns (nil, nil) when the user does not exist.
func (r *UserRepoMySQL) GetByID(ctx context.Context, id int64) (*user.User, error) {
	var model UserSchema
	if err := r.db.WithContext(ctx).First(&model, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			r.log.Debug("user not found", zap.Int64("id", id))
			return nil, nil
		}
		r.log.Error("failed to get user from db", zap.Error(err), zap.Int64("id", id))
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return toDomain(&model), nil
}

// GetByEmail retrieves a user from the database by their email address.
func (r *UserRepoMySQL) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	return r.getByColumn(ctx, "email", email)
}

// GetByUsername retrieves a user from the database by their username.
func (r *UserRepoMySQL) GetByUsername(ctx context.Context, username string) (*user.User, error) {
	return r.getByColumn(ctx, "username", username)
}

// GetByCPF retrieves a user from the database by their CPF.
func (r *UserRepoMySQL) GetByCPF(ctx context.Context, cpf string) (*user.User, error) {
	return r.getByColumn(ctx, "cpf", cpf)
}

// GetByPhone retrieves a user from the database by their phone number.
func (r *UserRepoMySQL) GetByPhone(ctx context.Context, phone string) (*user.User, error) {
	return r.getByColumn(ctx, "phone", phone)
}

// GetByVerifyToken retrieves a user by their pending email
// verification token.
func (r *UserRepoMySQL) GetByVerifyToken(ctx context.Context, token string) (*user.User, error) {
	if token == "" {
		return nil, nil
	}
	return r.getByColumn(ctx, "verify_token", token)
}

// GetByResetToken retrieves a user by their pending password reset
// token.
func (r *UserRepoMySQL) GetByResetToken(ctx context.Context, token string) (*user.User, error) {
	if token == "" {
		return nil, nil
	}
	return r.getByColumn(ctx, "reset_token", token)
}

// getByColumn retrieves a user matching an exact column value.
// Returns (nil, nil) when no row matches.
func (r *UserRepoMySQL) getByColumn(ctx context.Context, column, value string) (*user.User, error) {
	if value == "" {
		return nil, nil
	}

	var model UserSchema
	if err := r.db.WithContext(ctx).Where(column+" = ?", value).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			r.log.Debug("user not found by column", zap.String("column", column))
			return nil, nil
		}
		r.log.Error("failed to get user from db", zap.Error(err), zap.String("column", column))
		return nil, fmt.Errorf("failed to get user by %s: %w", column, err)
	}

	return toDomain(&model), nil
}

// List retrieves users from the database with pagination, search and a
// total row count. The search query is validated and sanitized before
// reaching the LIKE clause.
func (r *UserRepoMySQL) List(ctx context.Context, query string, page, limit int64) ([]user.User, int64, error) {
	q, err := security.ValidateSearchQuery(query)
	if err != nil {
		r.log.Warn("rejected search query", zap.Error(err))
		return nil, 0, fmt.Errorf("invalid search query: %w", err)
	}

	tx := r.db.WithContext(ctx).Model(&UserSchema{})
	if q != "" {
		like := "%" + security.SanitizeSearchString(q) + "%"
		tx = tx.Where(
			"name LIKE ? ESCAPE '!' OR email LIKE ? ESCAPE '!' OR username LIKE ? ESCAPE '!'",
			like, like, like,
		)
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		r.log.Error("failed to count users in db", zap.Error(err))
		return nil, 0, fmt.Errorf("failed to count users: %w", err)
	}

	var models []UserSchema
	if err := tx.Order("id ASC").Offset(int((page - 1) * limit)).Limit(int(limit)).Find(&models).Error; err != nil {
		r.log.Error("failed to list users from db", zap.Error(err), zap.Int64("page", page), zap.Int64("limit", limit))
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}

	users := make([]user.User, len(models))
	for i := range models {
		users[i] = *toDomain(&models[i])
	}

	return users, total, nil
}
