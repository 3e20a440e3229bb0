// Package session implements cookie sessions for the web app.  A session
// is a signed JWT carrying the username in an HttpOnly cookie.  When a
// Store is configured the token id is also registered server-side so the
// session can be revoked early.
package session

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// CookieName is the name of the session cookie.
const CookieName = "session"

// ErrNoSession is returned when the request carries no live session.
var ErrNoSession = errors.New("no session")

// Manager issues, reads and clears session cookies.
type Manager struct {
	secret string
	ttl    time.Duration
	secure bool
	store  Store // optional
}

// NewManager returns a Manager signing with secret.  store may be nil, in
// which case a session lives until its token expires or the cookie is
// cleared.
func NewManager(secret string, ttl time.Duration, secure bool, store Store) *Manager {
	return &Manager{secret: secret, ttl: ttl, secure: secure, store: store}
}

// Start establishes a session for username and sets the cookie.
func (m *Manager) Start(c echo.Context, username string) error {
	tok, err := NewToken(m.secret, username, m.ttl)
	if err != nil {
		return err
	}
	if m.store != nil {
		if err := m.store.Register(c.Request().Context(), tok.ID, username, m.ttl); err != nil {
			return err
		}
	}
	c.SetCookie(m.cookie(tok.Raw, tok.Exp, int(m.ttl.Seconds())))
	return nil
}

// Username returns the username of the request's session, or ErrNoSession.
func (m *Manager) Username(c echo.Context) (string, error) {
	tok, err := m.current(c)
	if err != nil {
		return "", err
	}
	return tok.Username, nil
}

// Clear revokes the request's session, if any, and expires the cookie.  It
// never fails because of a missing or bad cookie.
func (m *Manager) Clear(c echo.Context) error {
	var revokeErr error
	if tok, err := m.current(c); err == nil && m.store != nil {
		revokeErr = m.store.Revoke(c.Request().Context(), tok.ID)
	}
	c.SetCookie(m.cookie("", time.Unix(0, 0), -1))
	return revokeErr
}

func (m *Manager) current(c echo.Context) (Token, error) {
	ck, err := c.Cookie(CookieName)
	if err != nil || ck.Value == "" {
		return Token{}, ErrNoSession
	}
	tok, err := ParseToken(m.secret, ck.Value)
	if err != nil {
		return Token{}, ErrNoSession
	}
	if m.store != nil {
		name, ok, err := m.store.Lookup(c.Request().Context(), tok.ID)
		if err != nil {
			return Token{}, err
		}
		if !ok || name != tok.Username {
			return Token{}, ErrNoSession
		}
	}
	return tok, nil
}

func (m *Manager) cookie(value string, exp time.Time, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    value,
		Path:     "/",
		Expires:  exp,
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	}
}
