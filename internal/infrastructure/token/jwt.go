package token

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/sign-identity/identity-api/internal/core/domain"
	"github.com/sign-identity/identity-api/internal/core/ports"
)

// JWTIssuer signs HS256 bearer tokens scoped to an account's id and roles.
type JWTIssuer struct {
	secret string
	ttl    time.Duration
}

func NewJWTIssuer(secret string, ttl time.Duration) *JWTIssuer {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &JWTIssuer{secret: secret, ttl: ttl}
}

// Issue produces a signed token carrying the account id (sub), email,
// roles, and a unique jti used for revocation on logout.
func (i *JWTIssuer) Issue(_ context.Context, account *domain.Account) (*ports.IssuedToken, error) {
	now := time.Now().UTC()
	expiresAt := now.Add(i.ttl)
	tokenID := newTokenID()

	claims := jwt.MapClaims{
		"sub":   account.ID,
		"email": account.Email,
		"roles": account.Roles,
		"jti":   tokenID,
		"iat":   now.Unix(),
		"exp":   expiresAt.Unix(),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString([]byte(i.secret))
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}

	return &ports.IssuedToken{
		Token:     signed,
		TokenID:   tokenID,
		ExpiresAt: expiresAt,
	}, nil
}

// newTokenID returns a random 128-bit hex identifier.
func newTokenID() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		// fallback: nanosecond timestamp keeps jti unique enough
		return fmt.Sprintf("%x", time.Now().UnixNano())
	}
	return hex.EncodeToString(b)
}
