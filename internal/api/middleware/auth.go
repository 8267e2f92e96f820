package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/sign-identity/identity-api/internal/core/ports"
)

// AccessTokenCookie is the cookie the login endpoint sets alongside the
// response body. The middleware accepts the token from either transport.
const AccessTokenCookie = "accessToken"

// Auth validates the JWT and injects identity claims into the echo context
// under "account_id", "email", "roles", "token_id", and "token_expiry".
//
// The token is read from the Authorization header first, then from the
// accessToken cookie. When revoker is non-nil, tokens revoked by logout are
// rejected; the logout route itself passes nil so a second logout with an
// already-revoked token still succeeds.
func Auth(jwtSecret string, revoker ports.TokenRevoker) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw, err := extractToken(c)
			if err != nil {
				return err
			}

			claims := jwt.MapClaims{}
			tkn, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (interface{}, error) {
				if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
					return nil, jwt.ErrTokenSignatureInvalid
				}
				return []byte(jwtSecret), nil
			})
			if err != nil || !tkn.Valid {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}

			tokenID, _ := claims["jti"].(string)
			if revoker != nil && tokenID != "" {
				revoked, err := revoker.IsRevoked(c.Request().Context(), tokenID)
				if err != nil {
					return echo.NewHTTPError(http.StatusUnauthorized, "token verification unavailable")
				}
				if revoked {
					return echo.NewHTTPError(http.StatusUnauthorized, "token revoked")
				}
			}

			c.Set("account_id", claims["sub"])
			c.Set("email", claims["email"])
			c.Set("roles", claimRoles(claims))
			c.Set("token_id", tokenID)
			if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
				c.Set("token_expiry", exp.Time)
			} else {
				c.Set("token_expiry", time.Time{})
			}

			return next(c)
		}
	}
}

// extractToken pulls the bearer token from the Authorization header, falling
// back to the accessToken cookie.
func extractToken(c echo.Context) (string, error) {
	authHeader := c.Request().Header.Get("Authorization")
	if authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			return "", echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header")
		}
		return parts[1], nil
	}

	cookie, err := c.Cookie(AccessTokenCookie)
	if err != nil || cookie.Value == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "missing credentials")
	}
	return cookie.Value, nil
}

// claimRoles converts the roles claim into a []string.
func claimRoles(claims jwt.MapClaims) []string {
	raw, ok := claims["roles"].([]interface{})
	if !ok {
		return nil
	}
	roles := make([]string, 0, len(raw))
	for _, r := range raw {
		if s, ok := r.(string); ok {
			roles = append(roles, s)
		}
	}
	return roles
}
