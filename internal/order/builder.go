package order

import (
	"fmt"
	"math"
	"strings"
	"time"

	"homefoods-be/internal/pricing"
	"homefoods-be/internal/validation"

	"github.com/oklog/ulid/v2"
)

const idPrefix = "ORD-"

func NewID() string {
	return idPrefix + ulid.Make().String()
}

// ItemInput is one cart line as submitted at checkout.
type ItemInput struct {
	ProductID string  `json:"productId"`
	Name      string  `json:"name,omitempty"`
	Weight    string  `json:"weight"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unitPrice"`
}

// Lines maps cart items to pricing lines using each item's weight label.
func Lines(items []ItemInput) ([]pricing.Line, error) {
	lines := make([]pricing.Line, 0, len(items))
	for i, in := range items {
		kg, err := pricing.ParseWeight(in.Weight)
		if err != nil {
			return nil, fmt.Errorf("%w: item %d has weight %q", ErrInvalidWeight, i+1, in.Weight)
		}
		lines = append(lines, pricing.Line{UnitPrice: in.UnitPrice, Quantity: in.Quantity, WeightKg: kg})
	}
	return lines, nil
}

// Build assembles a pending order from a validated customer, the cart and
// the totals computed for it. The customer is copied by value.
func Build(customer validation.Customer, items []ItemInput, totals pricing.Totals, now time.Time, newID func() string) (*Order, error) {
	if len(items) == 0 {
		return nil, ErrEmptyCart
	}

	out := make([]Item, 0, len(items))
	for i, in := range items {
		if in.Quantity <= 0 {
			return nil, fmt.Errorf("%w: item %d", ErrInvalidQuantity, i+1)
		}
		if in.UnitPrice <= 0 || math.IsNaN(in.UnitPrice) || math.IsInf(in.UnitPrice, 0) {
			return nil, fmt.Errorf("%w: item %d", ErrInvalidPrice, i+1)
		}

		name := strings.TrimSpace(in.Name)
		if name == "" {
			name = in.ProductID
		}
		out = append(out, Item{
			ProductID: in.ProductID,
			Name:      name,
			Weight:    strings.TrimSpace(in.Weight),
			Quantity:  in.Quantity,
			UnitPrice: in.UnitPrice,
			LineTotal: math.Round(in.UnitPrice*float64(in.Quantity)*100) / 100,
		})
	}

	ts := now.UTC()
	return &Order{
		ID:             newID(),
		Customer:       customer,
		Items:          out,
		Subtotal:       totals.Subtotal,
		DeliveryCharge: totals.DeliveryCharge,
		GrandTotal:     totals.GrandTotal,
		TotalWeightKg:  totals.TotalWeightKg,
		Status:         StatusPending,
		CreatedAt:      ts,
		UpdatedAt:      ts,
	}, nil
}
