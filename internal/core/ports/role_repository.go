package ports

import (
	"context"

	"github.com/sign-identity/identity-api/internal/core/domain"
)

// RoleRepository defines the persistence interface for roles. Lookups and
// uniqueness checks go through the case-normalized name.
type RoleRepository interface {
	Create(ctx context.Context, role *domain.Role) (*domain.Role, error)
	List(ctx context.Context) ([]domain.Role, error)
	FindByName(ctx context.Context, name string) (*domain.Role, error)
	// Delete removes the role by name; domain.ErrRoleNotFound when no
	// document matched.
	Delete(ctx context.Context, name string) error
	// Rename updates name and normalized name in place, preserving the
	// role's identity, and returns the updated record.
	Rename(ctx context.Context, oldName, newName string) (*domain.Role, error)
}
