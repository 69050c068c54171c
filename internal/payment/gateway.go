package payment

import (
	"fmt"

	"homefoods-be/internal/config"
	"homefoods-be/internal/logger"

	"go.uber.org/zap"
)

// NewGateway builds the gateway selected by PAYMENT_MODE. Simulated mode is
// refused in production and Razorpay mode is refused without keys.
func NewGateway(cfg *config.Config) (Gateway, error) {
	switch Mode(cfg.PaymentMode) {
	case ModeRazorpay:
		gw, err := NewRazorpayGateway(cfg.RazorpayKeyID, cfg.RazorpayKeySecret, cfg.RazorpayWebhookSecret)
		if err != nil {
			return nil, err
		}
		return gw, nil
	case ModeSimulated:
		if cfg.IsProduction() {
			return nil, ErrSimulatedInProduction
		}
		logger.L().Warn("using simulated payment gateway", zap.String("env", cfg.AppEnv))
		return NewSimulatedGateway(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMode, cfg.PaymentMode)
	}
}
