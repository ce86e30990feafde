package apiclient

import "time"

// CreateClientRequest represents the request payload for authorizing a
// new external system.
type CreateClientRequest struct {
	Name        string `validate:"required,min=3,max=100"`
	Description string `validate:"omitempty,max=255"`
}

// CreateClientResponse carries the newly authorized client together
// with its API key. The key is only ever returned here.
type CreateClientResponse struct {
	Client ClientResponse
	Token  string
}

// UpdateClientRequest represents the request payload for updating an
// authorized client. Zero-valued fields are left unchanged.
type UpdateClientRequest struct {
	ID          int64  `validate:"required"`
	Name        string `validate:"omitempty,min=3,max=100"`
	Description string `validate:"omitempty,max=255"`
	Active      *bool
}

// ClientResponse represents an authorized client DTO for API
// responses. It never carries the API key.
type ClientResponse struct {
	ID          int64
	Name        string
	Description string
	Active      bool
	CreatedAt   time.Time
	LastSeenAt  *time.Time
}
