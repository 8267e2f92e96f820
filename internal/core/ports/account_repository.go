package ports

import (
	"context"
	"time"

	"github.com/sign-identity/identity-api/internal/core/domain"
)

// AccountRepository defines the persistence interface for accounts.
//
// Every read excludes soft-deleted accounts; the status filter lives here,
// in one place, so callers never re-check the flag.
type AccountRepository interface {
	Create(ctx context.Context, account *domain.Account) (*domain.Account, error)
	FindByEmail(ctx context.Context, email string) (*domain.Account, error)
	FindByID(ctx context.Context, id string) (*domain.Account, error)
	// ListActive returns non-deleted accounts ordered by creation time
	// ascending (insertion order).
	ListActive(ctx context.Context) ([]domain.Account, error)
	// SoftDelete flags the account deleted and stamps deletedAt atomically,
	// returning the updated record.
	SoftDelete(ctx context.Context, id string, deletedAt time.Time) (*domain.Account, error)
	// UpdateProfile overwrites firstName, lastName, age, and modifiedAt
	// atomically, returning the updated record.
	UpdateProfile(ctx context.Context, id, firstName, lastName string, age int, modifiedAt time.Time) (*domain.Account, error)
	AssignRole(ctx context.Context, id, roleName string) error
	// RenameRole rewrites every role entry matching oldName (compared
	// case-normalized) inside account role sets and reports how many
	// accounts were touched.
	RenameRole(ctx context.Context, oldName, newName string) (int64, error)
}
