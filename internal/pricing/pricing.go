// Package pricing computes cart totals and the weight-based delivery charge.
package pricing

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

const (
	DefaultFreeDeliveryThreshold = 1000.0
	DefaultRatePerKg             = 60.0
)

var ErrInvalidWeight = errors.New("invalid weight")

var weightRegex = regexp.MustCompile(`^(\d+(?:\.\d+)?)\s*(kg|kgs|g|gm|gms|grams?)$`)

// Line is one cart entry: unit price, quantity and the unit's weight in kg.
type Line struct {
	UnitPrice float64
	Quantity  int
	WeightKg  float64
}

type Totals struct {
	Subtotal       float64 `json:"subtotal"`
	DeliveryCharge float64 `json:"deliveryCharge"`
	GrandTotal     float64 `json:"grandTotal"`
	TotalWeightKg  float64 `json:"totalWeightKg"`
}

type Calculator struct {
	FreeDeliveryThreshold float64
	RatePerKg             float64
}

// NewCalculator falls back to the ₹1000 threshold and ₹60/kg rate for non-positive inputs.
func NewCalculator(threshold, ratePerKg float64) Calculator {
	if threshold <= 0 {
		threshold = DefaultFreeDeliveryThreshold
	}
	if ratePerKg <= 0 {
		ratePerKg = DefaultRatePerKg
	}
	return Calculator{FreeDeliveryThreshold: threshold, RatePerKg: ratePerKg}
}

// Calculate never fails; an empty cart yields zero totals.
func (c Calculator) Calculate(lines []Line) Totals {
	var subtotal, weight float64
	for _, l := range lines {
		subtotal += l.UnitPrice * float64(l.Quantity)
		weight += l.WeightKg * float64(l.Quantity)
	}

	subtotal = round2(subtotal)
	weight = round3(weight)

	delivery := 0.0
	if len(lines) > 0 && subtotal < c.FreeDeliveryThreshold {
		delivery = math.Ceil(weight) * c.RatePerKg
	}

	return Totals{
		Subtotal:       subtotal,
		DeliveryCharge: delivery,
		GrandTotal:     round2(subtotal + delivery),
		TotalWeightKg:  weight,
	}
}

// ParseWeight converts a variant label such as "250g" or "1.5 kg" to kilograms.
func ParseWeight(label string) (float64, error) {
	normalized := strings.ToLower(strings.TrimSpace(label))
	m := weightRegex.FindStringSubmatch(normalized)
	if m == nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidWeight, label)
	}

	value, err := strconv.ParseFloat(m[1], 64)
	if err != nil || value <= 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidWeight, label)
	}

	if strings.HasPrefix(m[2], "kg") {
		return value, nil
	}
	return value / 1000, nil
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }

func round3(v float64) float64 { return math.Round(v*1000) / 1000 }
