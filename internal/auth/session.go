package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const DefaultSessionTTL = 30 * 24 * time.Hour

// Claims identify a signed-in customer.
type Claims struct {
	CustomerID string `json:"customer_id"`
	Phone      string `json:"phone"`
	jwt.RegisteredClaims
}

// Sessions issues and parses HS256 session tokens.
type Sessions struct {
	key   []byte
	ttl   time.Duration
	clock func() time.Time
}

func NewSessions(secret string, ttl time.Duration) (*Sessions, error) {
	if secret == "" {
		return nil, ErrMissingSecret
	}
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &Sessions{key: []byte(secret), ttl: ttl, clock: time.Now}, nil
}

func (s *Sessions) Issue(customerID, phone string) (string, time.Time, error) {
	now := s.clock()
	expires := now.Add(s.ttl)
	claims := Claims{
		CustomerID: customerID,
		Phone:      phone,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   customerID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.key)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign session: %w", err)
	}
	return token, expires, nil
}

func (s *Sessions) Parse(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(
		tokenStr,
		&Claims{},
		func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, errors.New("unexpected signing method")
			}
			return s.key, nil
		},
		jwt.WithTimeFunc(s.clock),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.CustomerID == "" {
		return nil, fmt.Errorf("%w: invalid token", ErrUnauthorized)
	}
	return claims, nil
}

type sessionKey struct{}

func WithSession(ctx context.Context, c *Claims) context.Context {
	return context.WithValue(ctx, sessionKey{}, c)
}

// SessionFrom returns the claims placed on ctx by the auth middleware.
func SessionFrom(ctx context.Context) (*Claims, bool) {
	c, ok := ctx.Value(sessionKey{}).(*Claims)
	return c, ok && c != nil
}
