package auth

import "errors"

var (
	ErrUnauthorized  = errors.New("unauthorized")
	ErrMissingSecret = errors.New("signing secret is not set")
)
