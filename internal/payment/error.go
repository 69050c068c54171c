package payment

import "errors"

var (
	ErrPaymentUnavailable    = errors.New("payment service unavailable")
	ErrInvalidSignature      = errors.New("invalid payment signature")
	ErrMissingCredentials    = errors.New("razorpay key id and secret are required")
	ErrSimulatedInProduction = errors.New("simulated payments are disabled in production")
	ErrUnknownMode           = errors.New("unknown payment mode")
)
