package user

import "time"

// Actor identifies the authenticated caller on whose behalf an
// operation runs.
type Actor struct {
	ID   int64
	Role string
}

// IsAdmin reports whether the actor has the admin role.
func (a Actor) IsAdmin() bool {
	return a.Role == "admin"
}

// RegisterRequest represents the request payload for registering a new user.
type RegisterRequest struct {
	Name     string `validate:"required,min=3,max=100"`
	Username string `validate:"required,min=3,max=50,alphanum"`
	Email    string `validate:"required,email"`
	Password string `validate:"required,min=8,max=72"`
	CPF      string `validate:"required"`
	Phone    string `validate:"required,min=8,max=20"`
}

// GetUserRequest represents the request payload for retrieving a user.
type GetUserRequest struct {
	ID    int64
	Actor Actor
}

// UpdateUserRequest represents the request payload for updating an existing
// user. Zero-valued fields are left unchanged. CPF is immutable.
type UpdateUserRequest struct {
	ID       int64  `validate:"required"`
	Name     string `validate:"omitempty,min=3,max=100"`
	Username string `validate:"omitempty,min=3,max=50,alphanum"`
	Email    string `validate:"omitempty,email"`
	Phone    string `validate:"omitempty,min=8,max=20"`
	Password string `validate:"omitempty,min=8,max=72"`
	Role     string `validate:"omitempty,oneof=admin client"`
	Active   *bool
	Actor    Actor
}

// DeleteUserRequest represents the request payload for deleting a user.
type DeleteUserRequest struct {
	ID    int64
	Actor Actor
}

// ListUsersRequest represents the request payload for listing users.
// It supports pagination and search functionality.
type ListUsersRequest struct {
	Query string
	Page  int64
	Limit int64
}

// ListUsersResponse represents the response payload for user listing.
type ListUsersResponse struct {
	Users      []UserResponse
	Pagination *Pagination
}

// Pagination represents pagination information for list responses.
type Pagination struct {
	Total      int64
	Page       int64
	Limit      int64
	TotalPages int64
}

// CheckExistsRequest represents the request payload for the
// registration pre-check.
type CheckExistsRequest struct {
	CPF   string
	Phone string
}

// CheckExistsResponse reports which of the checked identifiers are
// already taken.
type CheckExistsResponse struct {
	CPFExists   bool
	PhoneExists bool
}

// UserResponse represents a user DTO (Data Transfer Object) for API
// responses. It never carries the password hash.
type UserResponse struct {
	ID            int64
	Name          string
	Username      string
	Email         string
	CPF           string
	Phone         string
	Role          string
	Active        bool
	EmailVerified bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
