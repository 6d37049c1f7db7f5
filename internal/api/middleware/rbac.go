package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/n1fty/cms/internal/api/metrics"
	"github.com/n1fty/cms/internal/core/domain"
)

// RBAC enforces role-based access control. It must run after Auth; a request
// without an identity is rejected as unauthenticated.
func RBAC(allowedRoles ...domain.Role) echo.MiddlewareFunc {
	allowed := make(map[domain.Role]struct{}, len(allowedRoles))
	for _, r := range allowedRoles {
		allowed[r] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id, ok := IdentityFrom(c)
			if !ok {
				return reject("missing", domain.ErrMissingToken)
			}
			if _, ok := allowed[id.Role]; !ok {
				metrics.TokenRejectionsTotal.WithLabelValues("forbidden").Inc()
				return echo.NewHTTPError(http.StatusForbidden, domain.ErrForbidden.Error()).SetInternal(domain.ErrForbidden)
			}
			return next(c)
		}
	}
}
