package middleware

import "github.com/labstack/echo/v4"

// usernameKey is the echo context key RequireSession stores the session
// username under.
const usernameKey = "username"

// Username returns the username RequireSession put in the context, or ""
// for anonymous requests.
func Username(c echo.Context) string {
	if s, ok := c.Get(usernameKey).(string); ok {
		return s
	}
	return ""
}

// subject names the caller for rate-limit keys: the session username when
// known, else "anon".
func subject(c echo.Context) string {
	if u := Username(c); u != "" {
		return u
	}
	return "anon"
}
