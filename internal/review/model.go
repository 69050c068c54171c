package review

import "time"

type Review struct {
	ID          string    `json:"_id"`
	Name        string    `json:"name"`
	Rating      int       `json:"rating"`
	Comment     string    `json:"comment"`
	Verified    bool      `json:"verified"`
	ProductID   string    `json:"productId,omitempty"`
	ProductName string    `json:"productName,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// CreateInput takes the rating as a float so 4.5 can be told apart from 4.
type CreateInput struct {
	Name        string  `json:"name"`
	Rating      float64 `json:"rating"`
	Comment     string  `json:"comment"`
	ProductID   string  `json:"productId,omitempty"`
	ProductName string  `json:"productName,omitempty"`
}

type ListFilter struct {
	Verified  *bool
	ProductID string
}

type Stats struct {
	Average float64 `json:"average"`
	Count   int     `json:"count"`
}
