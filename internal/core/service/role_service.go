package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/sign-identity/identity-api/internal/core/domain"
	"github.com/sign-identity/identity-api/internal/core/ports"
)

// RoleService implements role CRUD and the rename cascade over account
// memberships.
type RoleService struct {
	roles    ports.RoleRepository
	accounts ports.AccountRepository
	audit    ports.AuditRecorder
	logger   zerolog.Logger
}

func NewRoleService(
	roles ports.RoleRepository,
	accounts ports.AccountRepository,
	audit ports.AuditRecorder,
	logger zerolog.Logger,
) *RoleService {
	return &RoleService{
		roles:    roles,
		accounts: accounts,
		audit:    audit,
		logger:   logger,
	}
}

// CreateRole creates a named role. Duplicate detection is the store's job:
// the unique index on the normalized name surfaces domain.ErrRoleExists.
func (s *RoleService) CreateRole(ctx context.Context, name string) (*domain.Role, error) {
	if name == "" {
		return nil, domain.ErrValidation
	}

	now := time.Now().UTC()
	role := &domain.Role{
		Name:           name,
		NormalizedName: domain.NormalizeRoleName(name),
		CreatedAt:      now,
	}

	created, err := s.roles.Create(ctx, role)
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("role", created.Name).Msg("role created")
	s.audit.Record(domain.AuditEvent{
		Action:    domain.AuditRoleCreate,
		SubjectID: created.ID,
		Timestamp: now,
		Detail:    created.Name,
	})
	return created, nil
}

func (s *RoleService) GetAllRoles(ctx context.Context) ([]domain.Role, error) {
	return s.roles.List(ctx)
}

// GetRoleByName resolves a role by its case-normalized name. Absence is not
// an error here: callers receive (nil, nil) and render a null body.
func (s *RoleService) GetRoleByName(ctx context.Context, name string) (*domain.Role, error) {
	role, err := s.roles.FindByName(ctx, name)
	if err != nil {
		if errors.Is(err, domain.ErrRoleNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return role, nil
}

// DeleteRole removes the role by name. A missing role is rejected with
// domain.ErrRoleNotFound rather than treated as success.
func (s *RoleService) DeleteRole(ctx context.Context, actorID, name string) error {
	if err := s.roles.Delete(ctx, name); err != nil {
		return err
	}

	s.logger.Info().Str("role", name).Str("actor_id", actorID).Msg("role deleted")
	s.audit.Record(domain.AuditEvent{
		Action:    domain.AuditRoleDelete,
		ActorID:   actorID,
		Timestamp: time.Now().UTC(),
		Detail:    name,
	})
	return nil
}

// RenameRole renames the role in place (same record identity) and rewrites
// the name inside every account's role set so existing memberships resolve
// to the renamed role.
func (s *RoleService) RenameRole(ctx context.Context, actorID, oldName, newName string) (*domain.Role, error) {
	if newName == "" {
		return nil, domain.ErrValidation
	}

	renamed, err := s.roles.Rename(ctx, oldName, newName)
	if err != nil {
		return nil, err
	}

	touched, err := s.accounts.RenameRole(ctx, oldName, newName)
	if err != nil {
		// The role itself is renamed; membership rewrite failing midway is a
		// store-level fault that must surface, not be swallowed.
		s.logger.Error().Err(err).Str("old", oldName).Str("new", newName).Msg("membership cascade failed")
		return nil, err
	}

	s.logger.Info().
		Str("old", oldName).
		Str("new", newName).
		Int64("accounts_touched", touched).
		Msg("role renamed")
	s.audit.Record(domain.AuditEvent{
		Action:    domain.AuditRoleRename,
		ActorID:   actorID,
		SubjectID: renamed.ID,
		Timestamp: time.Now().UTC(),
		Detail:    oldName + " -> " + newName,
	})
	return renamed, nil
}
