package order

import (
	"time"

	"homefoods-be/internal/notify"
	"homefoods-be/internal/validation"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCompleted Status = "completed"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCompleted:
		return true
	}
	return false
}

type Item struct {
	ProductID string  `json:"productId"`
	Name      string  `json:"name"`
	Weight    string  `json:"weight"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unitPrice"`
	LineTotal float64 `json:"lineTotal"`
}

// Order keeps the customer as a value snapshot taken at checkout.
type Order struct {
	ID               string              `json:"_id"`
	CustomerID       string              `json:"customerId,omitempty"`
	Customer         validation.Customer `json:"customer"`
	Items            []Item              `json:"items"`
	Subtotal         float64             `json:"subtotal"`
	DeliveryCharge   float64             `json:"deliveryCharge"`
	GrandTotal       float64             `json:"grandTotal"`
	TotalWeightKg    float64             `json:"totalWeightKg"`
	Status           Status              `json:"status"`
	PaymentRef       string              `json:"paymentRef,omitempty"`
	PaymentID        string              `json:"paymentId,omitempty"`
	LastPaymentError string              `json:"lastPaymentError,omitempty"`
	Notified         bool                `json:"notified"`
	CreatedAt        time.Time           `json:"createdAt"`
	UpdatedAt        time.Time           `json:"updatedAt"`
}

func (o *Order) summary() notify.Summary {
	items := make([]notify.Item, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, notify.Item{
			Name:      it.Name,
			Weight:    it.Weight,
			Quantity:  it.Quantity,
			LineTotal: it.LineTotal,
		})
	}
	return notify.Summary{
		OrderID:   o.ID,
		CreatedAt: o.CreatedAt,
		Customer: notify.Customer{
			Name:    o.Customer.Name,
			Phone:   o.Customer.Phone,
			Email:   o.Customer.Email,
			Address: o.Customer.Address,
		},
		Items:    items,
		Subtotal: o.Subtotal,
		Delivery: o.DeliveryCharge,
		Total:    o.GrandTotal,
	}
}
