package chat

import "errors"

var (
	ErrNotConfigured   = errors.New("chat assistant is not configured")
	ErrUpstream        = errors.New("chat completion service failed")
	ErrInvalidMessages = errors.New("chat needs at least one user message")
)
