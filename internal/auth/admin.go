package auth

import (
	"crypto/subtle"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// AdminChecker compares a presented admin key with the configured secret.
// A bcrypt hash takes precedence over a plain secret.
type AdminChecker struct {
	secret []byte
	hash   []byte
}

func NewAdminChecker(secret, hash string) (*AdminChecker, error) {
	secret, hash = strings.TrimSpace(secret), strings.TrimSpace(hash)
	if secret == "" && hash == "" {
		return nil, ErrMissingSecret
	}
	if hash != "" {
		if _, err := bcrypt.Cost([]byte(hash)); err != nil {
			return nil, errors.New("ADMIN_SECRET_HASH is not a bcrypt hash")
		}
	}
	return &AdminChecker{secret: []byte(secret), hash: []byte(hash)}, nil
}

func (a *AdminChecker) Check(key string) bool {
	if key == "" {
		return false
	}
	if len(a.hash) > 0 {
		return bcrypt.CompareHashAndPassword(a.hash, []byte(key)) == nil
	}
	return subtle.ConstantTimeCompare(a.secret, []byte(key)) == 1
}

func HashSecret(secret string) (string, error) {
	if secret == "" {
		return "", ErrMissingSecret
	}
	bytes, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	return string(bytes), err
}
