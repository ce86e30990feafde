package apiclient

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	domain "user-auth-service/internal/domain/apiclient"
	apperrors "user-auth-service/pkg/errors"

	"github.com/go-playground/validator/v10"
)

// Repository defines the interface for authorized client data access.
// Lookup methods return (nil, nil) when no row matches.
type Repository interface {
	Create(ctx context.Context, c *domain.Client) (int64, error)           // Create a new client
	GetByID(ctx context.Context, id int64) (*domain.Client, error)         // Retrieve client by ID
	GetByToken(ctx context.Context, token string) (*domain.Client, error)  // Retrieve client by API key
	Update(ctx context.Context, c *domain.Client) (int64, error)           // Update existing client
	Delete(ctx context.Context, id int64) (int64, error)                   // Delete client by ID
	List(ctx context.Context) ([]domain.Client, error)                     // List all clients
	TouchLastSeen(ctx context.Context, id int64) error                     // Record a successful key validation
}

// ClientUsecase implements the business logic for managing external
// systems authorized to call the API with an X-API-Key.
type ClientUsecase struct {
	repo     Repository
	log      *zap.Logger
	validate *validator.Validate
}

// New creates a new instance of ClientUsecase.
func New(r Repository, log *zap.Logger) *ClientUsecase {
	return &ClientUsecase{repo: r, log: log, validate: validator.New()}
}

// CreateClient authorizes a new external system and issues its API
// key. The key is a UUID and is only returned from this call.
func (uc *ClientUsecase) CreateClient(ctx context.Context, in CreateClientRequest) (*CreateClientResponse, error) {
	uc.log.Info("creating api client", zap.String("name", in.Name))

	if err := uc.validate.Struct(in); err != nil {
		uc.log.Warn("validate failed", zap.Error(err))
		return nil, apperrors.NewValidationError("", "name must be between 3 and 100 characters")
	}

	c := &domain.Client{
		Name:        in.Name,
		Description: in.Description,
		Token:       uuid.NewString(),
		Active:      true,
	}

	id, err := uc.repo.Create(ctx, c)
	if err != nil {
		uc.log.Error("failed to create api client", zap.Error(err))
		return nil, err
	}

	created, err := uc.repo.GetByID(ctx, id)
	if err != nil || created == nil {
		uc.log.Error("failed to load created api client", zap.Int64("id", id), zap.Error(err))
		return nil, apperrors.NewInternalError("failed to load created client", err)
	}

	return &CreateClientResponse{
		Client: *toResponse(created),
		Token:  created.Token,
	}, nil
}

// GetClient retrieves an authorized client by ID.
func (uc *ClientUsecase) GetClient(ctx context.Context, id int64) (*ClientResponse, error) {
	if id <= 0 {
		return nil, apperrors.NewValidationError("id", "invalid client id")
	}

	c, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		uc.log.Error("failed to get api client", zap.Int64("id", id), zap.Error(err))
		return nil, err
	}
	if c == nil {
		return nil, apperrors.NewNotFoundError("client", "client not found")
	}

	return toResponse(c), nil
}

// UpdateClient updates an authorized client.
func (uc *ClientUsecase) UpdateClient(ctx context.Context, in UpdateClientRequest) (*ClientResponse, error) {
	uc.log.Info("updating api client", zap.Int64("id", in.ID))

	if err := uc.validate.Struct(in); err != nil {
		uc.log.Warn("validate failed", zap.Error(err))
		return nil, apperrors.NewValidationError("", "invalid client update")
	}

	current, err := uc.repo.GetByID(ctx, in.ID)
	if err != nil {
		uc.log.Error("failed to load api client for update", zap.Int64("id", in.ID), zap.Error(err))
		return nil, err
	}
	if current == nil {
		return nil, apperrors.NewNotFoundError("client", "client not found")
	}

	if in.Name != "" {
		current.Name = in.Name
	}
	if in.Description != "" {
		current.Description = in.Description
	}
	if in.Active != nil {
		current.Active = *in.Active
	}

	if _, err := uc.repo.Update(ctx, current); err != nil {
		uc.log.Error("failed to update api client", zap.Int64("id", in.ID), zap.Error(err))
		return nil, err
	}

	return toResponse(current), nil
}

// DeleteClient revokes an authorized client.
func (uc *ClientUsecase) DeleteClient(ctx context.Context, id int64) error {
	uc.log.Info("deleting api client", zap.Int64("id", id))

	if id <= 0 {
		return apperrors.NewValidationError("id", "invalid client id")
	}

	c, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		uc.log.Error("failed to load api client for delete", zap.Int64("id", id), zap.Error(err))
		return err
	}
	if c == nil {
		return apperrors.NewNotFoundError("client", "client not found")
	}

	if _, err := uc.repo.Delete(ctx, id); err != nil {
		uc.log.Error("failed to delete api client", zap.Int64("id", id), zap.Error(err))
		return err
	}

	return nil
}

// ListClients retrieves all authorized clients.
func (uc *ClientUsecase) ListClients(ctx context.Context) ([]ClientResponse, error) {
	clients, err := uc.repo.List(ctx)
	if err != nil {
		uc.log.Error("failed to list api clients", zap.Error(err))
		return nil, err
	}

	out := make([]ClientResponse, len(clients))
	for i := range clients {
		out[i] = *toResponse(&clients[i])
	}
	return out, nil
}

// ValidateKey resolves an API key to its client and records the
// activity. A missing key and an unknown or revoked key fail with
// distinct errors so callers can tell 401 from 403.
func (uc *ClientUsecase) ValidateKey(ctx context.Context, key string) (*ClientResponse, error) {
	if key == "" {
		return nil, apperrors.NewUnauthorizedError("API key required")
	}

	c, err := uc.repo.GetByToken(ctx, key)
	if err != nil {
		uc.log.Error("failed to look up api key", zap.Error(err))
		return nil, apperrors.NewInternalError("failed to validate API key", err)
	}
	if c == nil || !c.Active {
		uc.log.Warn("api key rejected")
		return nil, apperrors.NewForbiddenError("invalid API key")
	}

	if err := uc.repo.TouchLastSeen(ctx, c.ID); err != nil {
		uc.log.Warn("failed to record api client activity", zap.Int64("id", c.ID), zap.Error(err))
	}

	return toResponse(c), nil
}

// toResponse maps a domain client to its API-safe DTO. The API key
// never leaves the usecase layer after creation.
func toResponse(c *domain.Client) *ClientResponse {
	return &ClientResponse{
		ID:          c.ID,
		Name:        c.Name,
		Description: c.Description,
		Active:      c.Active,
		CreatedAt:   c.CreatedAt,
		LastSeenAt:  c.LastSeenAt,
	}
}
