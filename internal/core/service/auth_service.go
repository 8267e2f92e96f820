package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/sign-identity/identity-api/internal/api/metrics"
	"github.com/sign-identity/identity-api/internal/core/domain"
	"github.com/sign-identity/identity-api/internal/core/ports"
)

// AuthService implements registration, login, logout, and account mutation.
type AuthService struct {
	accounts ports.AccountRepository
	issuer   ports.TokenIssuer
	revoker  ports.TokenRevoker
	audit    ports.AuditRecorder
	logger   zerolog.Logger
}

func NewAuthService(
	accounts ports.AccountRepository,
	issuer ports.TokenIssuer,
	revoker ports.TokenRevoker,
	audit ports.AuditRecorder,
	logger zerolog.Logger,
) *AuthService {
	return &AuthService{
		accounts: accounts,
		issuer:   issuer,
		revoker:  revoker,
		audit:    audit,
		logger:   logger,
	}
}

// Register creates an account and assigns the requested roles. Each role
// assignment is independent: a failure is logged and reported back, never
// rolled back against the already-created account.
func (s *AuthService) Register(ctx context.Context, input ports.RegisterInput) (*ports.RegisterResult, error) {
	if input.Email == "" || input.Username == "" || input.Password == "" {
		return nil, domain.ErrValidation
	}
	if input.Age < 0 {
		return nil, domain.ErrValidation
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	account := &domain.Account{
		Email:        input.Email,
		Username:     input.Username,
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		Age:          input.Age,
		PasswordHash: string(hash),
		Status:       domain.StatusActive,
		CreatedAt:    now,
		ModifiedAt:   now,
	}

	created, err := s.accounts.Create(ctx, account)
	if err != nil {
		metrics.RegistrationsTotal.WithLabelValues("error").Inc()
		return nil, err
	}

	var failed []string
	for _, role := range input.Roles {
		if err := s.accounts.AssignRole(ctx, created.ID, role); err != nil {
			s.logger.Warn().Err(err).
				Str("account_id", created.ID).
				Str("role", role).
				Msg("role assignment failed")
			metrics.RoleAssignmentFailuresTotal.Inc()
			failed = append(failed, role)
			continue
		}
		created.Roles = append(created.Roles, role)
	}

	metrics.RegistrationsTotal.WithLabelValues("ok").Inc()
	s.logger.Info().Str("account_id", created.ID).Str("email", created.Email).Msg("account registered")
	s.audit.Record(domain.AuditEvent{
		Action:    domain.AuditRegister,
		ActorID:   created.ID,
		SubjectID: created.ID,
		Timestamp: now,
	})

	return &ports.RegisterResult{Account: created, FailedRoles: failed}, nil
}

// Login verifies credentials and issues a bearer token scoped to the
// account's id and roles. Soft-deleted accounts never resolve here: the
// repository filters them out of FindByEmail, so they cannot sign in.
func (s *AuthService) Login(ctx context.Context, email, password string) (*ports.LoginResult, error) {
	if email == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	account, err := s.accounts.FindByEmail(ctx, email)
	if err != nil {
		metrics.LoginsTotal.WithLabelValues("not_found").Inc()
		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)) != nil {
		metrics.LoginsTotal.WithLabelValues("invalid_credentials").Inc()
		return nil, domain.ErrInvalidCredentials
	}

	issued, err := s.issuer.Issue(ctx, account)
	if err != nil {
		metrics.LoginsTotal.WithLabelValues("error").Inc()
		return nil, err
	}

	metrics.LoginsTotal.WithLabelValues("ok").Inc()
	metrics.TokensIssuedTotal.Inc()
	s.audit.Record(domain.AuditEvent{
		Action:    domain.AuditLogin,
		ActorID:   account.ID,
		SubjectID: account.ID,
		Timestamp: time.Now().UTC(),
	})

	return &ports.LoginResult{
		Token:     issued.Token,
		TokenID:   issued.TokenID,
		ExpiresAt: issued.ExpiresAt,
		Account:   account,
	}, nil
}

// Logout revokes the current token until its natural expiry. Revoking an
// already-revoked or already-expired token is a no-op, so repeated logouts
// succeed.
func (s *AuthService) Logout(ctx context.Context, actorID, tokenID string, expiresAt time.Time) error {
	ttl := time.Until(expiresAt)
	if tokenID != "" && ttl > 0 {
		if err := s.revoker.Revoke(ctx, tokenID, ttl); err != nil {
			return err
		}
		metrics.TokenRevocationsTotal.Inc()
	}

	s.audit.Record(domain.AuditEvent{
		Action:    domain.AuditLogout,
		ActorID:   actorID,
		SubjectID: actorID,
		Timestamp: time.Now().UTC(),
	})
	return nil
}

// GetAllUsers returns every non-deleted account in creation order.
func (s *AuthService) GetAllUsers(ctx context.Context) ([]domain.Account, error) {
	return s.accounts.ListActive(ctx)
}

// GetUserByID returns the account when present and not soft-deleted.
func (s *AuthService) GetUserByID(ctx context.Context, id string) (*domain.Account, error) {
	return s.accounts.FindByID(ctx, id)
}

// SoftDeleteAccount flags the account deleted and stamps the deletion time.
// The row stays in storage for audit; it just disappears from every read.
func (s *AuthService) SoftDeleteAccount(ctx context.Context, actorID, id string) (*domain.Account, error) {
	now := time.Now().UTC()
	updated, err := s.accounts.SoftDelete(ctx, id, now)
	if err != nil {
		return nil, err
	}

	metrics.AccountsSoftDeletedTotal.Inc()
	s.logger.Info().Str("account_id", id).Str("actor_id", actorID).Msg("account soft-deleted")
	s.audit.Record(domain.AuditEvent{
		Action:    domain.AuditSoftDelete,
		ActorID:   actorID,
		SubjectID: id,
		Timestamp: now,
	})
	return updated, nil
}

// UpdateAccount overwrites the three mutable profile fields and the
// modification timestamp.
func (s *AuthService) UpdateAccount(ctx context.Context, actorID string, input ports.UpdateAccountInput) (*domain.Account, error) {
	if input.Age < 0 {
		return nil, domain.ErrValidation
	}

	now := time.Now().UTC()
	updated, err := s.accounts.UpdateProfile(ctx, input.ID, input.FirstName, input.LastName, input.Age, now)
	if err != nil {
		return nil, err
	}

	s.audit.Record(domain.AuditEvent{
		Action:    domain.AuditUpdate,
		ActorID:   actorID,
		SubjectID: input.ID,
		Timestamp: now,
	})
	return updated, nil
}
