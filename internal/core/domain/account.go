package domain

import (
	"errors"
	"time"
)

// Well-known role names seeded by the deployment; accounts may carry any
// role that exists in the role store.
const (
	RoleAdmin   = "Admin"
	RoleTeacher = "Teacher"
	RoleStudent = "Student"
)

// AccountStatus is the lifecycle state of an account. Accounts are never
// hard-deleted; a deleted account stays in storage for audit.
type AccountStatus string

const (
	StatusActive  AccountStatus = "active"
	StatusDeleted AccountStatus = "deleted"
)

var ErrAccountExists = errors.New("account already exists")
var ErrAccountNotFound = errors.New("account not found")
var ErrInvalidCredentials = errors.New("invalid credentials")
var ErrForbidden = errors.New("access forbidden")
var ErrValidation = errors.New("validation error")

// Account models a registered identity.
type Account struct {
	ID           string        `json:"id"`
	Email        string        `json:"email"`
	Username     string        `json:"username"`
	FirstName    string        `json:"first_name"`
	LastName     string        `json:"last_name"`
	Age          int           `json:"age"`
	PasswordHash string        `json:"-"`
	Roles        []string      `json:"roles"`
	Status       AccountStatus `json:"status"`
	CreatedAt    time.Time     `json:"created_at"`
	ModifiedAt   time.Time     `json:"modified_at"`
	DeletedAt    *time.Time    `json:"deleted_at,omitempty"`
}

// IsDeleted reports whether the account has been soft-deleted.
func (a *Account) IsDeleted() bool {
	return a.Status == StatusDeleted
}
