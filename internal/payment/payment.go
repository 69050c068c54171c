package payment

import (
	"context"
	"math"
)

type Mode string

const (
	ModeRazorpay  Mode = "razorpay"
	ModeSimulated Mode = "simulated"
)

const CurrencyINR = "INR"

// Gateway creates provider-side payment orders and verifies checkout results.
type Gateway interface {
	CreateIntent(ctx context.Context, req IntentRequest) (*Intent, error)
	// Verify checks that s was issued by the provider for providerOrderID.
	Verify(ctx context.Context, providerOrderID string, s Success) error
	Mode() Mode
}

type IntentRequest struct {
	OrderID       string
	Amount        float64
	CustomerName  string
	CustomerPhone string
	CustomerEmail string
}

// Intent is what the checkout page needs to open the provider's widget.
type Intent struct {
	Provider        Mode   `json:"provider"`
	ProviderOrderID string `json:"providerOrderId"`
	Amount          int64  `json:"amount"`
	Currency        string `json:"currency"`
	KeyID           string `json:"keyId,omitempty"`
	Receipt         string `json:"receipt"`
	Simulated       bool   `json:"simulated"`
}

// ToPaise converts rupees to the provider's minor unit.
func ToPaise(rupees float64) int64 {
	return int64(math.Round(rupees * 100))
}
