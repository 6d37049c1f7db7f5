package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/n1fty/cms/internal/api/metrics"
	"github.com/n1fty/cms/internal/core/domain"
	"github.com/n1fty/cms/internal/core/ports"
)

// identityKey is the echo context key holding the authenticated domain.Identity.
const identityKey = "identity"

// Auth validates the bearer token, re-reads its subject and injects the
// resulting identity into the context. Role and email come from the stored
// user, never from the token alone.
func Auth(verifier ports.TokenVerifier, users ports.SubjectResolver) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw, ok := bearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
			if !ok {
				return reject("missing", domain.ErrMissingToken)
			}

			claims, err := verifier.Verify(raw)
			if err != nil {
				if errors.Is(err, domain.ErrExpiredToken) {
					return reject("expired", domain.ErrExpiredToken)
				}
				return reject("invalid", domain.ErrInvalidToken)
			}

			user, err := users.FindByID(c.Request().Context(), claims.UserID)
			if err != nil {
				if errors.Is(err, domain.ErrUserNotFound) {
					return reject("unknown_subject", domain.ErrUnknownSubject)
				}
				return err
			}

			SetIdentity(c, domain.Identity{UserID: user.ID, Email: user.Email, Role: user.Role})
			return next(c)
		}
	}
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func reject(reason string, err error) error {
	metrics.TokenRejectionsTotal.WithLabelValues(reason).Inc()
	return echo.NewHTTPError(http.StatusUnauthorized, err.Error()).SetInternal(err)
}

// SetIdentity attaches id to the request context.
func SetIdentity(c echo.Context, id domain.Identity) {
	c.Set(identityKey, id)
}

// IdentityFrom returns the identity attached by Auth.
func IdentityFrom(c echo.Context) (domain.Identity, bool) {
	id, ok := c.Get(identityKey).(domain.Identity)
	return id, ok && id.UserID > 0
}
