package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// cookieLifetime is how long the browser keeps the session cookie. Longer
// than the Redis TTL — an expired server-side session simply reads back as
// a fresh one under the same ID.
const cookieLifetime = 30 * 24 * time.Hour

const issuer = "gameshelf"

// Codec signs and verifies the session identifier carried in the browser
// cookie. The server-side state is addressed purely by this ID, so the
// cookie value is HMAC-signed: a client cannot mint or alter an ID to reach
// another session's state.
type Codec struct {
	secret []byte
}

// NewCodec creates a Codec with the given signing secret.
// The secret should be at least 32 bytes of random data in production.
func NewCodec(secret string) (*Codec, error) {
	if len(secret) < 16 {
		return nil, errors.New("session: signing secret must be at least 16 characters")
	}
	return &Codec{secret: []byte(secret)}, nil
}

type claims struct {
	jwt.RegisteredClaims
}

// Encode wraps a session ID in a signed token suitable for a cookie value.
func (c *Codec) Encode(sessionID string) (string, error) {
	now := time.Now()

	cl := claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sessionID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(cookieLifetime)),
			Issuer:    issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, cl)
	signed, err := token.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("session: signing cookie: %w", err)
	}

	return signed, nil
}

// Decode verifies a cookie value and returns the session ID it carries.
// Pinning the algorithm to HS256 closes the algorithm-confusion hole where a
// token claiming alg=none slips past verification.
func (c *Codec) Decode(value string) (string, error) {
	token, err := jwt.ParseWithClaims(
		value,
		&claims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("session: unexpected signing method: %v", token.Header["alg"])
			}
			return c.secret, nil
		},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return "", fmt.Errorf("session: invalid cookie: %w", err)
	}

	cl, ok := token.Claims.(*claims)
	if !ok || !token.Valid || cl.Subject == "" {
		return "", errors.New("session: invalid cookie claims")
	}

	return cl.Subject, nil
}
