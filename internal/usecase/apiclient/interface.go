package apiclient

import "context"

// Usecase defines the interface for authorized client management and
// API key validation.
type Usecase interface {
	CreateClient(ctx context.Context, in CreateClientRequest) (*CreateClientResponse, error)
	GetClient(ctx context.Context, id int64) (*ClientResponse, error)
	UpdateClient(ctx context.Context, in UpdateClientRequest) (*ClientResponse, error)
	DeleteClient(ctx context.Context, id int64) error
	ListClients(ctx context.Context) ([]ClientResponse, error)
	ValidateKey(ctx context.Context, key string) (*ClientResponse, error)
}
