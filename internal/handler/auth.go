package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/product-review-hub/internal/model"
	"github.com/iliyamo/product-review-hub/internal/queue"
	"github.com/iliyamo/product-review-hub/internal/repository"
)

// AuthHandler serves login, registration and logout.
type AuthHandler struct {
	Users     *repository.UserRepo
	Sessions  Sessions
	Events    EventPublisher
	Log       *zap.Logger
	DBTimeout time.Duration
}

func NewAuthHandler(u *repository.UserRepo, s Sessions, ev EventPublisher, log *zap.Logger, timeout time.Duration) *AuthHandler {
	return &AuthHandler{Users: u, Sessions: s, Events: ev, Log: log, DBTimeout: timeout}
}

// credentialsReq is the JSON body of login and registration.  There is no
// password: the user id doubles as the secret.
type credentialsReq struct {
	Username credential `json:"username"`
	UserID   credential `json:"user_id"`
}

// credential accepts a JSON string, number or boolean and keeps its text,
// so {"user_id": 12345} reads as "12345".  null leaves it empty.  Both
// halves are trimmed.
type credential string

func (v *credential) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*v = credential(strings.TrimSpace(s))
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var x any
	if err := dec.Decode(&x); err != nil {
		return err
	}
	switch t := x.(type) {
	case nil:
		*v = ""
	case json.Number:
		*v = credential(t.String())
	case bool:
		*v = credential(strconv.FormatBool(t))
	default:
		return fmt.Errorf("credential must be a scalar, got %s", b)
	}
	return nil
}

type registerResp struct {
	Registered bool   `json:"registered"`
	Message    string `json:"message"`
}

// LoginPage renders the login and registration forms.
func (h *AuthHandler) LoginPage(c echo.Context) error {
	return c.Render(http.StatusOK, "login.html", page{Title: "Log in"})
}

// Login checks the (username, user_id) pair.  It answers {"valid": true}
// and starts a session on a match and {"valid": false} otherwise, without
// saying which half was wrong.
func (h *AuthHandler) Login(c echo.Context) error {
	var req credentialsReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := dbContext(c, h.DBTimeout)
	defer cancel()

	ok, err := h.Users.Authenticate(ctx, string(req.Username), string(req.UserID))
	if err != nil {
		h.Log.Error("login lookup failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	if !ok {
		return c.JSON(http.StatusOK, echo.Map{"valid": false})
	}
	if err := h.Sessions.Start(c, string(req.Username)); err != nil {
		h.Log.Error("start session failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "session error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"valid": true})
}

// Register creates a user when neither the username nor the user id is
// taken, then logs the new user in.
func (h *AuthHandler) Register(c echo.Context) error {
	var req credentialsReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, registerResp{Message: "Missing username or user ID"})
	}
	name, id := string(req.Username), string(req.UserID)
	if name == "" || id == "" {
		return c.JSON(http.StatusBadRequest, registerResp{Message: "Missing username or user ID"})
	}

	ctx, cancel := dbContext(c, h.DBTimeout)
	defer cancel()

	err := h.Users.Create(ctx, model.User{ID: id, Name: name})
	if errors.Is(err, repository.ErrUserExists) {
		return c.JSON(http.StatusConflict, registerResp{Message: "User already exists"})
	}
	if err != nil {
		h.Log.Error("register user failed", zap.String("user", name), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, registerResp{Message: "Database error"})
	}
	if err := h.Sessions.Start(c, name); err != nil {
		h.Log.Error("start session failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, registerResp{Message: "Session error"})
	}
	_ = h.Events.Publish(ctx, queue.ActivityEvent{Kind: queue.KindUserRegistered, Username: name, UserID: id})
	return c.JSON(http.StatusOK, registerResp{Registered: true, Message: "Registration successful"})
}

// Logout ends the session, if any, and returns to the login page.
func (h *AuthHandler) Logout(c echo.Context) error {
	if err := h.Sessions.Clear(c); err != nil {
		h.Log.Warn("revoke session failed", zap.Error(err))
	}
	return c.Redirect(http.StatusFound, "/")
}
