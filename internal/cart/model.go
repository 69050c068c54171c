package cart

import "time"

type Item struct {
	ProductID string  `json:"productId"`
	Name      string  `json:"name,omitempty"`
	Weight    string  `json:"weight"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unitPrice"`
}

// Snapshot is the server copy of a customer's cart and wishlist.
type Snapshot struct {
	Items     []Item    `json:"items"`
	Wishlist  []string  `json:"wishlist"`
	Version   int       `json:"version"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type SyncInput struct {
	BaseVersion int      `json:"baseVersion"`
	Items       []Item   `json:"items"`
	Wishlist    []string `json:"wishlist"`
}

// SyncResult carries the server state after a sync. Conflict is set when
// the client's base version was stale and its changes were discarded.
type SyncResult struct {
	Cart     Snapshot `json:"cart"`
	Conflict bool     `json:"conflict"`
}

// document mirrors the cart fields of a customers document.
type document struct {
	Cart        []Item    `json:"cart"`
	Wishlist    []string  `json:"wishlist"`
	CartVersion int       `json:"cartVersion"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (d document) snapshot() Snapshot {
	s := Snapshot{Items: d.Cart, Wishlist: d.Wishlist, Version: d.CartVersion, UpdatedAt: d.UpdatedAt}
	if s.Items == nil {
		s.Items = []Item{}
	}
	if s.Wishlist == nil {
		s.Wishlist = []string{}
	}
	return s
}
