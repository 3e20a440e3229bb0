package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/product-review-hub/internal/middleware"
	"github.com/iliyamo/product-review-hub/internal/queue"
	"github.com/iliyamo/product-review-hub/internal/repository"
)

// AccountHandler serves rename and account deletion.  Both end the session.
type AccountHandler struct {
	Users     *repository.UserRepo
	Sessions  Sessions
	Events    EventPublisher
	Log       *zap.Logger
	DBTimeout time.Duration
}

func NewAccountHandler(u *repository.UserRepo, s Sessions, ev EventPublisher, log *zap.Logger, timeout time.Duration) *AccountHandler {
	return &AccountHandler{Users: u, Sessions: s, Events: ev, Log: log, DBTimeout: timeout}
}

func (h *AccountHandler) endSession(c echo.Context) {
	if err := h.Sessions.Clear(c); err != nil {
		h.Log.Warn("revoke session failed", zap.Error(err))
	}
}

// UpdateProfile renames the session user to the form's newUsername and
// logs them out.
func (h *AccountHandler) UpdateProfile(c echo.Context) error {
	newName := strings.TrimSpace(c.FormValue("newUsername"))
	if newName == "" {
		return c.String(http.StatusBadRequest, "Username is required.")
	}

	ctx, cancel := dbContext(c, h.DBTimeout)
	defer cancel()

	username := middleware.Username(c)
	err := h.Users.Rename(ctx, username, newName)
	if errors.Is(err, repository.ErrUsernameTaken) {
		return c.String(http.StatusConflict, "Username already taken.")
	}
	if err != nil {
		h.Log.Error("rename user failed", zap.String("user", username), zap.Error(err))
		return c.String(http.StatusInternalServerError, "An error occurred while updating the profile.")
	}
	h.endSession(c)
	_ = h.Events.Publish(ctx, queue.ActivityEvent{Kind: queue.KindUserRenamed, Username: username, NewUsername: newName})
	return c.Redirect(http.StatusFound, "/")
}

// DeleteAccount removes the session user together with their reviews and
// logs them out.  A user that is already gone only loses the session.
func (h *AccountHandler) DeleteAccount(c echo.Context) error {
	ctx, cancel := dbContext(c, h.DBTimeout)
	defer cancel()

	username := middleware.Username(c)
	userID, err := h.Users.DeleteWithReviews(ctx, username)
	switch {
	case errors.Is(err, repository.ErrUserNotFound):
	case err != nil:
		h.Log.Error("delete account failed", zap.String("user", username), zap.Error(err))
		return c.String(http.StatusInternalServerError, "Failed to delete account")
	default:
		_ = h.Events.Publish(ctx, queue.ActivityEvent{Kind: queue.KindUserDeleted, Username: username, UserID: userID})
	}
	h.endSession(c)
	return c.Redirect(http.StatusFound, "/")
}
