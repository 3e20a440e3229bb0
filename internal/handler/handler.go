package handler

import (
	"context"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/product-review-hub/internal/queue"
)

// EventPublisher delivers activity events.  Publishing is best effort: the
// handlers ignore its error.
type EventPublisher interface {
	Publish(ctx context.Context, ev queue.ActivityEvent) error
}

// Sessions is the session API the handlers rely on; *session.Manager
// implements it.
type Sessions interface {
	Start(c echo.Context, username string) error
	Username(c echo.Context) (string, error)
	Clear(c echo.Context) error
}

// page is the data every full page template receives.
type page struct {
	Title    string
	Username string
}

// dbContext bounds the database work of one request.
func dbContext(c echo.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return context.WithTimeout(c.Request().Context(), timeout)
}
