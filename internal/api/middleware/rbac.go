package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/taskflow/taskflow-core/internal/core/domain"
)

// RequireRole rejects requests whose session role is not in the allowed set.
// Super admins always pass. Fine-grained, resource-scoped checks stay in the
// services; this is a coarse gate for whole route groups.
func RequireRole(allowedRoles ...domain.Role) echo.MiddlewareFunc {
	allowed := make(map[domain.Role]struct{}, len(allowedRoles))
	for _, r := range allowedRoles {
		allowed[r] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			session, _ := c.Get(SessionKey).(*domain.Session)
			if session == nil {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "missing session"})
			}
			if session.Role == domain.RoleSuperAdmin {
				return next(c)
			}
			if _, ok := allowed[session.Role]; !ok {
				return c.JSON(http.StatusForbidden, map[string]string{"error": "forbidden"})
			}
			return next(c)
		}
	}
}
