package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/sign-identity/identity-api/internal/core/domain"
	"github.com/sign-identity/identity-api/internal/core/ports"
)

type stubAccountRepo struct {
	seq       int
	order     []string
	accounts  map[string]*domain.Account
	failRoles map[string]bool
}

func newStubAccountRepo() *stubAccountRepo {
	return &stubAccountRepo{
		accounts:  make(map[string]*domain.Account),
		failRoles: make(map[string]bool),
	}
}

func cloneAccount(a *domain.Account) *domain.Account {
	if a == nil {
		return nil
	}
	clone := *a
	clone.Roles = append([]string(nil), a.Roles...)
	if a.DeletedAt != nil {
		t := *a.DeletedAt
		clone.DeletedAt = &t
	}
	return &clone
}

func (r *stubAccountRepo) Create(_ context.Context, account *domain.Account) (*domain.Account, error) {
	for _, existing := range r.accounts {
		if existing.Email == account.Email {
			return nil, domain.ErrAccountExists
		}
	}
	r.seq++
	copy := cloneAccount(account)
	copy.ID = fmt.Sprintf("acc-%d", r.seq)
	copy.Roles = []string{}
	r.accounts[copy.ID] = cloneAccount(copy)
	r.order = append(r.order, copy.ID)
	return cloneAccount(copy), nil
}

func (r *stubAccountRepo) FindByEmail(_ context.Context, email string) (*domain.Account, error) {
	for _, a := range r.accounts {
		if a.Email == email && !a.IsDeleted() {
			return cloneAccount(a), nil
		}
	}
	return nil, domain.ErrAccountNotFound
}

func (r *stubAccountRepo) FindByID(_ context.Context, id string) (*domain.Account, error) {
	a, ok := r.accounts[id]
	if !ok || a.IsDeleted() {
		return nil, domain.ErrAccountNotFound
	}
	return cloneAccount(a), nil
}

func (r *stubAccountRepo) ListActive(_ context.Context) ([]domain.Account, error) {
	out := []domain.Account{}
	for _, id := range r.order {
		if a := r.accounts[id]; !a.IsDeleted() {
			out = append(out, *cloneAccount(a))
		}
	}
	return out, nil
}

func (r *stubAccountRepo) SoftDelete(_ context.Context, id string, deletedAt time.Time) (*domain.Account, error) {
	a, ok := r.accounts[id]
	if !ok || a.IsDeleted() {
		return nil, domain.ErrAccountNotFound
	}
	a.Status = domain.StatusDeleted
	a.DeletedAt = &deletedAt
	a.ModifiedAt = deletedAt
	return cloneAccount(a), nil
}

func (r *stubAccountRepo) UpdateProfile(_ context.Context, id, firstName, lastName string, age int, modifiedAt time.Time) (*domain.Account, error) {
	a, ok := r.accounts[id]
	if !ok || a.IsDeleted() {
		return nil, domain.ErrAccountNotFound
	}
	a.FirstName = firstName
	a.LastName = lastName
	a.Age = age
	a.ModifiedAt = modifiedAt
	return cloneAccount(a), nil
}

func (r *stubAccountRepo) AssignRole(_ context.Context, id, roleName string) error {
	if r.failRoles[roleName] {
		return errors.New("assignment failed")
	}
	a, ok := r.accounts[id]
	if !ok {
		return domain.ErrAccountNotFound
	}
	a.Roles = append(a.Roles, roleName)
	return nil
}

func (r *stubAccountRepo) RenameRole(_ context.Context, oldName, newName string) (int64, error) {
	var touched int64
	normalized := domain.NormalizeRoleName(oldName)
	for _, a := range r.accounts {
		changed := false
		for i, role := range a.Roles {
			if domain.NormalizeRoleName(role) == normalized {
				a.Roles[i] = newName
				changed = true
			}
		}
		if changed {
			touched++
		}
	}
	return touched, nil
}

type stubIssuer struct {
	err error
}

func (s *stubIssuer) Issue(_ context.Context, account *domain.Account) (*ports.IssuedToken, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &ports.IssuedToken{
		Token:     "token-" + account.ID,
		TokenID:   "jti-" + account.ID,
		ExpiresAt: time.Now().Add(time.Hour),
	}, nil
}

type stubRevoker struct {
	revoked map[string]bool
}

func newStubRevoker() *stubRevoker {
	return &stubRevoker{revoked: make(map[string]bool)}
}

func (s *stubRevoker) Revoke(_ context.Context, tokenID string, _ time.Duration) error {
	s.revoked[tokenID] = true
	return nil
}

func (s *stubRevoker) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	return s.revoked[tokenID], nil
}

type stubAudit struct {
	events []domain.AuditEvent
}

func (s *stubAudit) Record(event domain.AuditEvent) {
	s.events = append(s.events, event)
}

func newAuthService(repo *stubAccountRepo) (*AuthService, *stubRevoker, *stubAudit) {
	revoker := newStubRevoker()
	audit := &stubAudit{}
	svc := NewAuthService(repo, &stubIssuer{}, revoker, audit, zerolog.Nop())
	return svc, revoker, audit
}

func registerInput(email string) ports.RegisterInput {
	return ports.RegisterInput{
		Email:     email,
		Username:  strings.Split(email, "@")[0],
		FirstName: "Ada",
		LastName:  "Lovelace",
		Age:       28,
		Password:  "s3cret-pass",
	}
}

func TestAuthService_RegisterThenLogin(t *testing.T) {
	repo := newStubAccountRepo()
	svc, _, _ := newAuthService(repo)

	result, err := svc.Register(context.Background(), registerInput("ada@example.com"))
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if result.Account.PasswordHash == "s3cret-pass" {
		t.Fatalf("expected password to be hashed")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(result.Account.PasswordHash), []byte("s3cret-pass")); err != nil {
		t.Fatalf("stored hash does not match password: %v", err)
	}

	login, err := svc.Login(context.Background(), "ada@example.com", "s3cret-pass")
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	if login.Token == "" {
		t.Fatalf("expected non-empty token")
	}
	if login.Account.ID != result.Account.ID {
		t.Fatalf("token issued for wrong account: %s", login.Account.ID)
	}
}

func TestAuthService_Register_Validation(t *testing.T) {
	repo := newStubAccountRepo()
	svc, _, _ := newAuthService(repo)

	input := registerInput("bob@example.com")
	input.Email = ""
	if _, err := svc.Register(context.Background(), input); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	if len(repo.accounts) != 0 {
		t.Fatalf("no account should be created on validation failure")
	}
}

func TestAuthService_Register_Duplicate(t *testing.T) {
	repo := newStubAccountRepo()
	svc, _, _ := newAuthService(repo)

	if _, err := svc.Register(context.Background(), registerInput("bob@example.com")); err != nil {
		t.Fatalf("first register failed: %v", err)
	}
	if _, err := svc.Register(context.Background(), registerInput("bob@example.com")); !errors.Is(err, domain.ErrAccountExists) {
		t.Fatalf("expected ErrAccountExists, got %v", err)
	}

	count := 0
	for _, a := range repo.accounts {
		if a.Email == "bob@example.com" {
			count++
		}
	}
	if count != 1 {
		t.Fatalf("expected exactly one account for the email, got %d", count)
	}
}

func TestAuthService_Register_RoleFailureDoesNotRollBack(t *testing.T) {
	repo := newStubAccountRepo()
	repo.failRoles["Teacher"] = true
	svc, _, _ := newAuthService(repo)

	input := registerInput("carol@example.com")
	input.Roles = []string{"Teacher", "Student"}

	result, err := svc.Register(context.Background(), input)
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if len(result.FailedRoles) != 1 || result.FailedRoles[0] != "Teacher" {
		t.Fatalf("expected Teacher in failed roles, got %v", result.FailedRoles)
	}
	if len(result.Account.Roles) != 1 || result.Account.Roles[0] != "Student" {
		t.Fatalf("expected Student assigned, got %v", result.Account.Roles)
	}
	if _, ok := repo.accounts[result.Account.ID]; !ok {
		t.Fatalf("account should survive a role assignment failure")
	}
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	repo := newStubAccountRepo()
	svc, _, _ := newAuthService(repo)

	if _, err := svc.Register(context.Background(), registerInput("dave@example.com")); err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if _, err := svc.Login(context.Background(), "dave@example.com", "wrong-pass"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthService_Login_UnknownAccount(t *testing.T) {
	repo := newStubAccountRepo()
	svc, _, _ := newAuthService(repo)

	if _, err := svc.Login(context.Background(), "ghost@example.com", "pass"); !errors.Is(err, domain.ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}
}

func TestAuthService_Login_SoftDeletedAccountRejected(t *testing.T) {
	repo := newStubAccountRepo()
	svc, _, _ := newAuthService(repo)

	result, err := svc.Register(context.Background(), registerInput("erin@example.com"))
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if _, err := svc.SoftDeleteAccount(context.Background(), "admin-1", result.Account.ID); err != nil {
		t.Fatalf("soft-delete failed: %v", err)
	}

	if _, err := svc.Login(context.Background(), "erin@example.com", "s3cret-pass"); !errors.Is(err, domain.ErrAccountNotFound) {
		t.Fatalf("soft-deleted account should not log in, got %v", err)
	}
}

func TestAuthService_Logout_RevokesAndRepeats(t *testing.T) {
	repo := newStubAccountRepo()
	svc, revoker, _ := newAuthService(repo)

	expiry := time.Now().Add(time.Hour)
	if err := svc.Logout(context.Background(), "acc-1", "jti-1", expiry); err != nil {
		t.Fatalf("logout failed: %v", err)
	}
	if !revoker.revoked["jti-1"] {
		t.Fatalf("token should be revoked")
	}
	// a second logout with the same token is not an error
	if err := svc.Logout(context.Background(), "acc-1", "jti-1", expiry); err != nil {
		t.Fatalf("repeated logout failed: %v", err)
	}
}

func TestAuthService_SoftDelete_HidesAccount(t *testing.T) {
	repo := newStubAccountRepo()
	svc, _, _ := newAuthService(repo)

	first, _ := svc.Register(context.Background(), registerInput("one@example.com"))
	second, _ := svc.Register(context.Background(), registerInput("two@example.com"))

	deleted, err := svc.SoftDeleteAccount(context.Background(), "admin-1", first.Account.ID)
	if err != nil {
		t.Fatalf("soft-delete failed: %v", err)
	}
	if !deleted.IsDeleted() || deleted.DeletedAt == nil {
		t.Fatalf("expected deleted status with timestamp, got %+v", deleted)
	}

	if _, err := svc.GetUserByID(context.Background(), first.Account.ID); !errors.Is(err, domain.ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound after soft-delete, got %v", err)
	}

	all, err := svc.GetAllUsers(context.Background())
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(all) != 1 || all[0].ID != second.Account.ID {
		t.Fatalf("listing should only contain the active account, got %+v", all)
	}

	// the row stays in storage for audit
	if _, ok := repo.accounts[first.Account.ID]; !ok {
		t.Fatalf("soft-deleted account should remain in storage")
	}
}

func TestAuthService_SoftDelete_Missing(t *testing.T) {
	repo := newStubAccountRepo()
	svc, _, _ := newAuthService(repo)

	if _, err := svc.SoftDeleteAccount(context.Background(), "admin-1", "acc-404"); !errors.Is(err, domain.ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}
}

func TestAuthService_UpdateAccount_MutatesOnlyProfileFields(t *testing.T) {
	repo := newStubAccountRepo()
	svc, _, _ := newAuthService(repo)

	created, _ := svc.Register(context.Background(), registerInput("fay@example.com"))
	before, _ := svc.GetUserByID(context.Background(), created.Account.ID)

	update := ports.UpdateAccountInput{
		ID:        created.Account.ID,
		FirstName: "Grace",
		LastName:  "Hopper",
		Age:       37,
	}
	updated, err := svc.UpdateAccount(context.Background(), "admin-1", update)
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}

	if updated.FirstName != "Grace" || updated.LastName != "Hopper" || updated.Age != 37 {
		t.Fatalf("profile fields not updated: %+v", updated)
	}
	if updated.Email != before.Email || updated.Username != before.Username {
		t.Fatalf("immutable fields changed: %+v", updated)
	}
	if !updated.CreatedAt.Equal(before.CreatedAt) {
		t.Fatalf("created timestamp changed")
	}
	if !updated.ModifiedAt.After(before.ModifiedAt) && !updated.ModifiedAt.Equal(before.ModifiedAt) {
		t.Fatalf("modified timestamp not advanced")
	}

	// applying the same update twice yields the same final state
	again, err := svc.UpdateAccount(context.Background(), "admin-1", update)
	if err != nil {
		t.Fatalf("second update failed: %v", err)
	}
	if again.FirstName != updated.FirstName || again.LastName != updated.LastName || again.Age != updated.Age {
		t.Fatalf("update is not idempotent: %+v vs %+v", again, updated)
	}
}

func TestAuthService_UpdateAccount_Missing(t *testing.T) {
	repo := newStubAccountRepo()
	svc, _, _ := newAuthService(repo)

	_, err := svc.UpdateAccount(context.Background(), "admin-1", ports.UpdateAccountInput{ID: "acc-404", FirstName: "X", LastName: "Y", Age: 1})
	if !errors.Is(err, domain.ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}
}
