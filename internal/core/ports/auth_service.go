package ports

import (
	"context"
	"time"

	"github.com/sign-identity/identity-api/internal/core/domain"
)

// RegisterInput carries all data needed to create a new account.
type RegisterInput struct {
	Email     string
	Username  string
	FirstName string
	LastName  string
	Age       int
	Password  string
	Roles     []string
}

// RegisterResult is returned after a successful registration. FailedRoles
// lists role names whose assignment failed; the account stands regardless.
type RegisterResult struct {
	Account     *domain.Account
	FailedRoles []string
}

// LoginResult carries the issued credential alongside the account it was
// issued for.
type LoginResult struct {
	Token     string
	TokenID   string
	ExpiresAt time.Time
	Account   *domain.Account
}

type AuthService interface {
	Register(ctx context.Context, input RegisterInput) (*RegisterResult, error)
	Login(ctx context.Context, email, password string) (*LoginResult, error)
	// Logout invalidates the token identified by tokenID until expiresAt.
	// Idempotent.
	Logout(ctx context.Context, actorID, tokenID string, expiresAt time.Time) error
	GetAllUsers(ctx context.Context) ([]domain.Account, error)
	GetUserByID(ctx context.Context, id string) (*domain.Account, error)
	SoftDeleteAccount(ctx context.Context, actorID, id string) (*domain.Account, error)
	UpdateAccount(ctx context.Context, actorID string, input UpdateAccountInput) (*domain.Account, error)
}

// UpdateAccountInput carries the three mutable profile fields.
type UpdateAccountInput struct {
	ID        string
	FirstName string
	LastName  string
	Age       int
}
