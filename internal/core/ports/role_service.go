package ports

import (
	"context"

	"github.com/sign-identity/identity-api/internal/core/domain"
)

type RoleService interface {
	CreateRole(ctx context.Context, name string) (*domain.Role, error)
	GetAllRoles(ctx context.Context) ([]domain.Role, error)
	// GetRoleByName returns (nil, nil) when no role matches; absence is not
	// an error for this lookup.
	GetRoleByName(ctx context.Context, name string) (*domain.Role, error)
	DeleteRole(ctx context.Context, actorID, name string) error
	RenameRole(ctx context.Context, actorID, oldName, newName string) (*domain.Role, error)
}
