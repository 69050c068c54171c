package payment

import (
	"context"
	"strings"
)

const simulatedSecret = "homefoods-simulated"

// SimulatedGateway stands in for Razorpay during local development.
// Every value it produces is derived from the order id.
type SimulatedGateway struct{}

func NewSimulatedGateway() *SimulatedGateway {
	return &SimulatedGateway{}
}

func (g *SimulatedGateway) Mode() Mode {
	return ModeSimulated
}

func (g *SimulatedGateway) CreateIntent(_ context.Context, req IntentRequest) (*Intent, error) {
	return &Intent{
		Provider:        ModeSimulated,
		ProviderOrderID: "order_sim_" + strings.TrimPrefix(req.OrderID, "ORD-"),
		Amount:          ToPaise(req.Amount),
		Currency:        CurrencyINR,
		Receipt:         req.OrderID,
		Simulated:       true,
	}, nil
}

// Simulate returns the success result a real checkout would have produced.
func (g *SimulatedGateway) Simulate(intent *Intent) Result {
	paymentID := "pay_sim_" + strings.TrimPrefix(intent.ProviderOrderID, "order_sim_")
	return Succeeded(Success{
		PaymentID: paymentID,
		OrderID:   intent.ProviderOrderID,
		Signature: sign(simulatedSecret, intent.ProviderOrderID+"|"+paymentID),
	})
}

func (g *SimulatedGateway) Verify(_ context.Context, providerOrderID string, s Success) error {
	if s.OrderID != providerOrderID || s.PaymentID == "" {
		return ErrInvalidSignature
	}
	if !validHMAC(simulatedSecret, providerOrderID+"|"+s.PaymentID, s.Signature) {
		return ErrInvalidSignature
	}
	return nil
}
