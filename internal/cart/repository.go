package cart

import (
	"context"
	"errors"
	"fmt"

	"homefoods-be/internal/customer"
	"homefoods-be/internal/store"
)

type Repository interface {
	Get(ctx context.Context, customerID string) (*Snapshot, error)
	// Save writes the cart only if the stored version still equals base.
	// It reports false when another write got there first.
	Save(ctx context.Context, customerID string, base int, items []Item, wishlist []string) (bool, error)
}

type repository struct {
	store store.Store
}

func NewRepository(s store.Store) Repository {
	return &repository{store: s}
}

func (r *repository) Get(ctx context.Context, customerID string) (*Snapshot, error) {
	doc, err := r.store.FindOne(ctx, store.Customers, store.ByID(customerID))
	if errors.Is(err, store.ErrNotFound) {
		return nil, customer.ErrCustomerNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get cart: %w", err)
	}

	var d document
	if err := store.Decode(doc, &d); err != nil {
		return nil, err
	}
	s := d.snapshot()
	return &s, nil
}

func (r *repository) Save(ctx context.Context, customerID string, base int, items []Item, wishlist []string) (bool, error) {
	filter := store.Filter{store.IDField: customerID, "cartVersion": base}
	set := store.Document{
		"cart":        items,
		"wishlist":    wishlist,
		"cartVersion": base + 1,
	}

	res, err := r.store.UpdateOne(ctx, store.Customers, filter, set, store.UpdateOptions{})
	if err != nil {
		return false, fmt.Errorf("save cart: %w", err)
	}
	return res.Matched == 1, nil
}
