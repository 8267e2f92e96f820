package ports

import (
	"context"
	"time"

	"github.com/sign-identity/identity-api/internal/core/domain"
)

// IssuedToken is the credential produced for a verified account.
type IssuedToken struct {
	Token     string
	TokenID   string
	ExpiresAt time.Time
}

// TokenIssuer produces a signed bearer credential scoped to an account's
// identity and roles.
type TokenIssuer interface {
	Issue(ctx context.Context, account *domain.Account) (*IssuedToken, error)
}

// TokenRevoker tracks tokens invalidated before their natural expiry.
type TokenRevoker interface {
	// Revoke marks the token invalid for ttl (its remaining lifetime).
	// Revoking an already-revoked token is not an error.
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}
