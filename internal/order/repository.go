package order

import (
	"context"
	"errors"
	"fmt"

	"homefoods-be/internal/store"
)

type Repository interface {
	Create(ctx context.Context, o *Order) error
	Get(ctx context.Context, id string) (*Order, error)
	GetByPaymentRef(ctx context.Context, ref string) (*Order, error)
	List(ctx context.Context, filter ListFilter) ([]*Order, error)
	SetPaymentRef(ctx context.Context, id, ref string) error
	RecordPaymentError(ctx context.Context, id, reason string) error
	// Confirm moves a pending order to confirmed. It reports false when the
	// order was no longer pending.
	Confirm(ctx context.Context, id, paymentID string) (bool, error)
	SetStatus(ctx context.Context, id string, from, to Status) (bool, error)
	MarkNotified(ctx context.Context, id string) error
}

type ListFilter struct {
	Status     Status
	Phone      string
	CustomerID string
	Limit      int
	Skip       int
}

type repository struct {
	store store.Store
}

func NewRepository(s store.Store) Repository {
	return &repository{store: s}
}

func (r *repository) Create(ctx context.Context, o *Order) error {
	doc, err := store.Encode(o)
	if err != nil {
		return err
	}
	if _, err := r.store.InsertOne(ctx, store.Orders, doc); err != nil {
		return fmt.Errorf("insert order: %w", err)
	}
	return nil
}

func (r *repository) Get(ctx context.Context, id string) (*Order, error) {
	return r.findOne(ctx, store.ByID(id))
}

func (r *repository) GetByPaymentRef(ctx context.Context, ref string) (*Order, error) {
	if ref == "" {
		return nil, ErrOrderNotFound
	}
	return r.findOne(ctx, store.Filter{"paymentRef": ref})
}

func (r *repository) findOne(ctx context.Context, filter store.Filter) (*Order, error) {
	doc, err := r.store.FindOne(ctx, store.Orders, filter)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}

	var o Order
	if err := store.Decode(doc, &o); err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *repository) List(ctx context.Context, f ListFilter) ([]*Order, error) {
	filter := store.Filter{}
	if f.Status != "" {
		filter["status"] = string(f.Status)
	}
	if f.Phone != "" {
		filter["customer.phone"] = f.Phone
	}
	if f.CustomerID != "" {
		filter["customerId"] = f.CustomerID
	}

	docs, err := r.store.Find(ctx, store.Orders, filter, store.FindOptions{
		Sort:  []store.SortField{{Field: store.CreatedAtField, Desc: true}},
		Limit: f.Limit,
		Skip:  f.Skip,
	})
	if err != nil {
		return nil, err
	}

	orders := make([]*Order, 0, len(docs))
	for _, doc := range docs {
		var o Order
		if err := store.Decode(doc, &o); err != nil {
			return nil, err
		}
		orders = append(orders, &o)
	}
	return orders, nil
}

func (r *repository) SetPaymentRef(ctx context.Context, id, ref string) error {
	return r.updatePending(ctx, id, store.Document{"paymentRef": ref})
}

func (r *repository) RecordPaymentError(ctx context.Context, id, reason string) error {
	return r.updatePending(ctx, id, store.Document{"lastPaymentError": reason})
}

func (r *repository) updatePending(ctx context.Context, id string, set store.Document) error {
	res, err := r.store.UpdateOne(ctx, store.Orders,
		store.Filter{store.IDField: id, "status": string(StatusPending)},
		set, store.UpdateOptions{})
	if err != nil {
		return err
	}
	if res.Matched == 0 {
		return ErrOrderNotPending
	}
	return nil
}

func (r *repository) Confirm(ctx context.Context, id, paymentID string) (bool, error) {
	res, err := r.store.UpdateOne(ctx, store.Orders,
		store.Filter{store.IDField: id, "status": string(StatusPending)},
		store.Document{
			"status":           string(StatusConfirmed),
			"paymentId":        paymentID,
			"lastPaymentError": "",
		}, store.UpdateOptions{})
	if err != nil {
		return false, err
	}
	return res.Matched > 0, nil
}

func (r *repository) SetStatus(ctx context.Context, id string, from, to Status) (bool, error) {
	res, err := r.store.UpdateOne(ctx, store.Orders,
		store.Filter{store.IDField: id, "status": string(from)},
		store.Document{"status": string(to)}, store.UpdateOptions{})
	if err != nil {
		return false, err
	}
	return res.Matched > 0, nil
}

func (r *repository) MarkNotified(ctx context.Context, id string) error {
	_, err := r.store.UpdateOne(ctx, store.Orders, store.ByID(id), store.Document{"notified": true}, store.UpdateOptions{})
	return err
}
