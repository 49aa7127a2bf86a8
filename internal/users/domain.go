// Package users manages the accounts that movements, invoices and audit
// entries are attributed to.
package users

import (
	"errors"
	"time"
)

// Role scopes what an account may do.
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleAttendant Role = "attendant"
)

var knownRoles = map[Role]bool{
	RoleAdmin:     true,
	RoleAttendant: true,
}

// User represents a user account. The password hash never leaves the
// repository layer.
type User struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateInput carries the fields for a new account.
type CreateInput struct {
	Username string
	Password string
	Role     Role
}

// ErrInvalidRole indicates an unrecognised role value.
var ErrInvalidRole = errors.New("users: invalid role")
