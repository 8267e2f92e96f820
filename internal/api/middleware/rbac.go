package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sign-identity/identity-api/internal/core/domain"
)

// RBAC enforces role-based access control over the roles claim set by Auth.
// The caller passes when any of its roles matches any allowed role; names
// are compared case-normalized.
func RBAC(allowedRoles ...string) echo.MiddlewareFunc {
	allowed := make(map[string]struct{}, len(allowedRoles))
	for _, r := range allowedRoles {
		allowed[domain.NormalizeRoleName(r)] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			roles, _ := c.Get("roles").([]string)
			for _, r := range roles {
				if _, ok := allowed[domain.NormalizeRoleName(r)]; ok {
					return next(c)
				}
			}
			return c.JSON(http.StatusForbidden, map[string]string{"error": "forbidden"})
		}
	}
}
