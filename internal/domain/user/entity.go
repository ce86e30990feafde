package user

import "time"

// Roles assignable to a user.
const (
	RoleAdmin  = "admin"
	RoleClient = "client"
)

// User represents a user entity in the system.
type User struct {
	ID            int64  // ID is the unique identifier for the user
	Name          string // Name is the full name of the user
	Username      string // Username is the unique login handle
	Email         string // Email is the unique email address of the user
	CPF           string // CPF is the Brazilian tax id, stored digits-only
	Phone         string // Phone is the contact phone number
	Role          string // Role is either "admin" or "client"
	PasswordHash  string // PasswordHash is the bcrypt hash of the password
	Active        bool   // Active gates login; inactive users cannot authenticate
	EmailVerified bool   // EmailVerified is set once the verification link is used

	VerifyToken string     // VerifyToken is the pending email verification token
	ResetToken  string     // ResetToken is the pending password reset token
	TokenExpiry *time.Time // TokenExpiry bounds whichever token is currently set

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsAdmin reports whether the user has the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// ValidRole reports whether role is one of the assignable roles.
func ValidRole(role string) bool {
	return role == RoleAdmin || role == RoleClient
}
