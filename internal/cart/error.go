package cart

import "errors"

var (
	ErrInvalidItem     = errors.New("cart item needs a product and a weight")
	ErrInvalidQuantity = errors.New("cart quantity must be at least 1")
	ErrInvalidPrice    = errors.New("cart unit price must be greater than zero")
	ErrTooManyItems    = errors.New("cart has too many items")
)
