package customer

import (
	"context"
	"errors"
	"fmt"

	"homefoods-be/internal/store"
)

type Repository interface {
	Create(ctx context.Context, c *Customer) (string, error)
	FindByID(ctx context.Context, id string) (*Customer, error)
	FindByPhone(ctx context.Context, phone string) (*Customer, error)
	Update(ctx context.Context, id string, set store.Document) error
}

type repository struct {
	store store.Store
}

func NewRepository(s store.Store) Repository {
	return &repository{store: s}
}

func (r *repository) Create(ctx context.Context, c *Customer) (string, error) {
	doc, err := store.Encode(c)
	if err != nil {
		return "", err
	}
	if c.ID == "" {
		delete(doc, store.IDField)
	}
	doc["cart"] = []any{}
	doc["wishlist"] = []any{}
	doc["cartVersion"] = 0

	id, err := r.store.InsertOne(ctx, store.Customers, doc)
	if errors.Is(err, store.ErrValidation) {
		return "", ErrPhoneTaken
	}
	if err != nil {
		return "", fmt.Errorf("insert customer: %w", err)
	}
	return id, nil
}

func (r *repository) FindByID(ctx context.Context, id string) (*Customer, error) {
	return r.findOne(ctx, store.ByID(id))
}

func (r *repository) FindByPhone(ctx context.Context, phone string) (*Customer, error) {
	return r.findOne(ctx, store.Filter{"phone": phone})
}

func (r *repository) findOne(ctx context.Context, filter store.Filter) (*Customer, error) {
	doc, err := r.store.FindOne(ctx, store.Customers, filter)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrCustomerNotFound
	}
	if err != nil {
		return nil, err
	}

	var c Customer
	if err := store.Decode(doc, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *repository) Update(ctx context.Context, id string, set store.Document) error {
	res, err := r.store.UpdateOne(ctx, store.Customers, store.ByID(id), set, store.UpdateOptions{})
	if err != nil {
		return err
	}
	if res.Matched == 0 {
		return ErrCustomerNotFound
	}
	return nil
}
