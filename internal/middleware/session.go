package middleware

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/product-review-hub/internal/session"
)

// SessionReader is the part of session.Manager the middleware needs.
type SessionReader interface {
	Username(c echo.Context) (string, error)
}

// RequireSession lets a request through only when it carries a live session
// and makes the username available via Username.  Everyone else is
// redirected to the login page.
func RequireSession(sessions SessionReader, log *zap.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			name, err := sessions.Username(c)
			if err != nil {
				if !errors.Is(err, session.ErrNoSession) {
					log.Warn("session lookup failed", zap.Error(err))
				}
				return c.Redirect(http.StatusFound, "/")
			}
			c.Set(usernameKey, name)
			return next(c)
		}
	}
}

// LoadSession records the session username when there is one but never
// blocks the request.
func LoadSession(sessions SessionReader) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if name, err := sessions.Username(c); err == nil {
				c.Set(usernameKey, name)
			}
			return next(c)
		}
	}
}
