package middleware

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/onyxdrift/backend/internal/auth"
)

// Context keys set by BearerAuth
const (
	UserIDKey   = "userID"
	IdentityKey = "identity"
)

// BearerAuth creates an Echo middleware that verifies the bearer token with
// verifier and stores the caller's identity in the context
func BearerAuth(verifier auth.Verifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, err := auth.BearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "Authorization header must be in Bearer format")
			}

			id, err := verifier.Verify(c.Request().Context(), token)
			if err != nil {
				if errors.Is(err, auth.ErrMissingToken) {
					return echo.NewHTTPError(http.StatusUnauthorized, "Authorization header is missing")
				}
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid or expired token")
			}

			c.Set(UserIDKey, id.Subject)
			c.Set(IdentityKey, id)
			return next(c)
		}
	}
}

// UserID returns the authenticated caller's id, or "" outside BearerAuth
func UserID(c echo.Context) string {
	id, _ := c.Get(UserIDKey).(string)
	return id
}

// Identity returns the authenticated caller's identity
func Identity(c echo.Context) *auth.Identity {
	id, _ := c.Get(IdentityKey).(*auth.Identity)
	return id
}
