package console

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	jwtware "github.com/gofiber/jwt/v2"
	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"
)

const (
	// TokenCookie carries the operator token for the HTML form.
	TokenCookie = "console_token"

	defaultTokenTTL = 12 * time.Hour
)

var ErrInvalidOperatorKey = errors.New("invalid operator key")

// Authenticator issues and checks operator tokens. A nil *Authenticator
// means the console is open.
type Authenticator struct {
	secret          []byte
	operatorKeyHash []byte
	ttl             time.Duration
	now             func() time.Time
}

// NewAuthenticator returns nil when secret is empty.
func NewAuthenticator(secret, operatorKeyHash string, ttl time.Duration) *Authenticator {
	if secret == "" {
		return nil
	}
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}
	return &Authenticator{
		secret:          []byte(secret),
		operatorKeyHash: []byte(operatorKeyHash),
		ttl:             ttl,
		now:             time.Now,
	}
}

// SignIn checks key against the configured bcrypt hash and returns a signed token.
func (a *Authenticator) SignIn(key string) (string, time.Time, error) {
	if len(a.operatorKeyHash) == 0 || key == "" {
		return "", time.Time{}, ErrInvalidOperatorKey
	}
	if bcrypt.CompareHashAndPassword(a.operatorKeyHash, []byte(key)) != nil {
		return "", time.Time{}, ErrInvalidOperatorKey
	}

	expires := a.now().Add(a.ttl)
	claims := jwt.MapClaims{
		"sub": "operator",
		"iat": a.now().Unix(),
		"exp": expires.Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expires, nil
}

// Middleware validates tokens found by lookup ("header:Authorization" or
// "cookie:console_token"). Failures go to onError.
func (a *Authenticator) Middleware(lookup string, onError fiber.ErrorHandler) fiber.Handler {
	if a == nil {
		return func(c *fiber.Ctx) error { return c.Next() }
	}
	return jwtware.New(jwtware.Config{
		SigningKey:   a.secret,
		TokenLookup:  lookup,
		ErrorHandler: onError,
	})
}
