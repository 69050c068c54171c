package order

import "errors"

var (
	ErrEmptyCart           = errors.New("cart is empty")
	ErrInvalidQuantity     = errors.New("item quantity must be at least 1")
	ErrInvalidPrice        = errors.New("item unit price must be greater than zero")
	ErrInvalidWeight       = errors.New("item weight is not recognised")
	ErrOrderNotFound       = errors.New("order not found")
	ErrOrderNotPending     = errors.New("order is not awaiting payment")
	ErrInvalidStatus       = errors.New("invalid order status transition")
	ErrPaymentFailed       = errors.New("payment failed")
	ErrPaymentVerification = errors.New("payment could not be verified")
	ErrSimulationDisabled  = errors.New("payment simulation is not enabled")
)

// PaymentFailedError carries the provider's reason for a failed attempt.
type PaymentFailedError struct {
	Reason string
}

func (e *PaymentFailedError) Error() string {
	return "payment failed: " + e.Reason
}

func (e *PaymentFailedError) Unwrap() error {
	return ErrPaymentFailed
}
