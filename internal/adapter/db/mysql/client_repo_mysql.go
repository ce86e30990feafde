package mysql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"user-auth-service/internal/domain/apiclient"
)

// ClientRepoMySQL implements the apiclient Repository interface using
// MySQL and GORM.
type ClientRepoMySQL struct {
	db  *gorm.DB
	log *zap.Logger
}

// NewClientRepoMySQL creates a new instance of ClientRepoMySQL.
func NewClientRepoMySQL(db *gorm.DB, log *zap.Logger) *ClientRepoMySQL {
	return &ClientRepoMySQL{db: db, log: log}
}

// ClientSchema represents the database schema for the authorized
// clients table.
type ClientSchema struct {
	ID          int64      `gorm:"primaryKey;autoIncrement"`
	Name        string     `gorm:"size:100;not null"`
	Description string     `gorm:"size:255"`
	Token       string     `gorm:"size:36;not null;uniqueIndex"`
	Active      bool       `gorm:"not null;default:true"`
	CreatedAt   time.Time
	LastSeenAt  *time.Time
}

// TableName specifies the table name for the ClientSchema model.
func (ClientSchema) TableName() string {
	return "authorized_clients"
}

func clientToSchema(c *apiclient.Client) ClientSchema {
	return ClientSchema{
		ID:          c.ID,
		Name:        c.Name,
		Description: c.Description,
		Token:       c.Token,
		Active:      c.Active,
		CreatedAt:   c.CreatedAt,
		LastSeenAt:  c.LastSeenAt,
	}
}

func clientToDomain(m *ClientSchema) *apiclient.Client {
	return &apiclient.Client{
		ID:          m.ID,
		Name:        m.Name,
		Description: m.Description,
		Token:       m.Token,
		Active:      m.Active,
		CreatedAt:   m.CreatedAt,
		LastSeenAt:  m.LastSeenAt,
	}
}

// Create inserts a new authorized client into the database.
func (r *ClientRepoMySQL) Create(ctx context.Context, c *apiclient.Client) (int64, error) {
	if c == nil {
		return 0, errors.New("client cannot be nil")
	}

	model := clientToSchema(c)

	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		r.log.Error("failed to create api client in db", zap.Error(err), zap.String("name", c.Name))
		return 0, fmt.Errorf("failed to create client: %w", err)
	}

	r.log.Info("api client created in db", zap.Int64("id", model.ID))
	return model.ID, nil
}

// GetByID retrieves an authorized client by ID. Returns (nil, nil)
// when the client does not exist.
func (r *ClientRepoMySQL) GetByID(ctx context.Context, id int64) (*apiclient.Client, error) {
	var model ClientSchema
	if err := r.db.WithContext(ctx).First(&model, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			r.log.Debug("api client not found", zap.Int64("id", id))
			return nil, nil
		}
		r.log.Error("failed to get api client from db", zap.Error(err), zap.Int64("id", id))
		return nil, fmt.Errorf("failed to get client: %w", err)
	}

	return clientToDomain(&model), nil
}

// GetByToken retrieves an authorized client by its API key. Returns
// (nil, nil) when no client owns the key.
func (r *ClientRepoMySQL) GetByToken(ctx context.Context, token string) (*apiclient.Client, error) {
	if token == "" {
		return nil, nil
	}

	var model ClientSchema
	if err := r.db.WithContext(ctx).Where("token = ?", token).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			r.log.Debug("api client not found by token")
			return nil, nil
		}
		r.log.Error("failed to get api client by token from db", zap.Error(err))
		return nil, fmt.Errorf("failed to get client by token: %w", err)
	}

	return clientToDomain(&model), nil
}

// Update updates an existing authorized client in the database.
func (r *ClientRepoMySQL) Update(ctx context.Context, c *apiclient.Client) (int64, error) {
	if c == nil {
		return 0, errors.New("client cannot be nil")
	}
	if c.ID <= 0 {
		return 0, errors.New("invalid client id")
	}

	model := clientToSchema(c)

	if err := r.db.WithContext(ctx).Save(&model).Error; err != nil {
		r.log.Error("failed to update api client in db", zap.Error(err), zap.Int64("id", c.ID))
		return 0, fmt.Errorf("failed to update client: %w", err)
	}

	r.log.Info("api client updated in db", zap.Int64("id", model.ID))
	return model.ID, nil
}

// Delete removes an authorized client from the database by ID.
func (r *ClientRepoMySQL) Delete(ctx context.Context, id int64) (int64, error) {
	if id <= 0 {
		return 0, errors.New("invalid client id")
	}

	if err := r.db.WithContext(ctx).Delete(&ClientSchema{}, id).Error; err != nil {
		r.log.Error("failed to delete api client in db", zap.Error(err), zap.Int64("id", id))
		return 0, fmt.Errorf("failed to delete client: %w", err)
	}

	r.log.Info("api client deleted in db", zap.Int64("id", id))
	return id, nil
}

// List retrieves all authorized clients ordered by creation.
func (r *ClientRepoMySQL) List(ctx context.Context) ([]apiclient.Client, error) {
	var models []ClientSchema
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&models).Error; err != nil {
		r.log.Error("failed to list api clients from db", zap.Error(err))
		return nil, fmt.Errorf("failed to list clients: %w", err)
	}

	clients := make([]apiclient.Client, len(models))
	for i := range models {
		clients[i] = *clientToDomain(&models[i])
	}

	return clients, nil
}

// TouchLastSeen records a successful API key validation for the
// client.
func (r *ClientRepoMySQL) TouchLastSeen(ctx context.Context, id int64) error {
	if id <= 0 {
		return errors.New("invalid client id")
	}

	now := time.Now()
	if err := r.db.WithContext(ctx).Model(&ClientSchema{}).Where("id = ?", id).Update("last_seen_at", now).Error; err != nil {
		r.log.Error("failed to touch api client activity", zap.Error(err), zap.Int64("id", id))
		return fmt.Errorf("failed to record client activity: %w", err)
	}

	return nil
}
