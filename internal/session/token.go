package session

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrInvalidToken is returned for tokens that are malformed, expired, signed
// with another key or missing a subject.
var ErrInvalidToken = errors.New("invalid session token")

// Token is a signed session token plus the claims the server tracks.
type Token struct {
	Raw      string    // serialized JWT placed in the cookie
	ID       string    // jti, the key in the session store
	Username string    // sub
	Exp      time.Time // UTC expiration
}

// NewToken builds and signs an HS256 JWT whose subject is the username.
// Every token gets a fresh random jti so it can be revoked on its own.
func NewToken(secret, username string, ttl time.Duration) (Token, error) {
	now := time.Now().UTC()
	exp := now.Add(ttl)
	id := uuid.NewString()
	claims := jwt.RegisteredClaims{
		Subject:   username,
		ID:        id,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(exp),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return Token{}, err
	}
	return Token{Raw: signed, ID: id, Username: username, Exp: exp}, nil
}

// ParseToken verifies raw against secret and returns its claims.  Only
// HMAC signatures are accepted.
func ParseToken(secret, raw string) (Token, error) {
	var claims jwt.RegisteredClaims
	tok, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(secret), nil
	}, jwt.WithExpirationRequired())
	if err != nil || !tok.Valid || claims.Subject == "" || claims.ID == "" {
		return Token{}, ErrInvalidToken
	}
	return Token{
		Raw:      raw,
		ID:       claims.ID,
		Username: claims.Subject,
		Exp:      claims.ExpiresAt.Time.UTC(),
	}, nil
}
