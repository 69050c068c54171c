package product

import (
	"context"
	"errors"
	"fmt"

	"homefoods-be/internal/store"
)

type Repository interface {
	List(ctx context.Context, filter ListFilter) ([]*Product, error)
	Get(ctx context.Context, id string) (*Product, error)
	Create(ctx context.Context, p *Product) error
	Replace(ctx context.Context, p *Product) error
	// Upsert reports true when the product did not exist before.
	Upsert(ctx context.Context, p *Product) (bool, error)
	Delete(ctx context.Context, id string) error
	CountByCategory(ctx context.Context) (map[Category]int, error)
}

type repository struct {
	store store.Store
}

func NewRepository(s store.Store) Repository {
	return &repository{store: s}
}

func (r *repository) List(ctx context.Context, f ListFilter) ([]*Product, error) {
	filter := store.Filter{}
	if f.Category != "" {
		filter["category"] = string(f.Category)
	}
	if !f.IncludeUnavailable {
		filter["available"] = true
	}

	docs, err := r.store.Find(ctx, store.Products, filter, store.FindOptions{
		Sort: []store.SortField{{Field: "category"}, {Field: "name.en"}},
	})
	if err != nil {
		return nil, err
	}

	products := make([]*Product, 0, len(docs))
	for _, doc := range docs {
		var p Product
		if err := store.Decode(doc, &p); err != nil {
			return nil, err
		}
		products = append(products, &p)
	}
	return products, nil
}

func (r *repository) Get(ctx context.Context, id string) (*Product, error) {
	doc, err := r.store.FindOne(ctx, store.Products, store.ByID(id))
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, err
	}

	var p Product
	if err := store.Decode(doc, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *repository) Create(ctx context.Context, p *Product) error {
	doc, err := store.Encode(p)
	if err != nil {
		return err
	}
	if _, err := r.store.InsertOne(ctx, store.Products, doc); err != nil {
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

func (r *repository) Replace(ctx context.Context, p *Product) error {
	set, err := editable(p)
	if err != nil {
		return err
	}
	res, err := r.store.UpdateOne(ctx, store.Products, store.ByID(p.ID), set, store.UpdateOptions{})
	if err != nil {
		return err
	}
	if res.Matched == 0 {
		return ErrProductNotFound
	}
	return nil
}

func (r *repository) Upsert(ctx context.Context, p *Product) (bool, error) {
	set, err := editable(p)
	if err != nil {
		return false, err
	}
	res, err := r.store.UpdateOne(ctx, store.Products, store.ByID(p.ID), set, store.UpdateOptions{Upsert: true})
	if err != nil {
		return false, err
	}
	return res.UpsertedID != "", nil
}

func (r *repository) Delete(ctx context.Context, id string) error {
	n, err := r.store.DeleteOne(ctx, store.Products, store.ByID(id))
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrProductNotFound
	}
	return nil
}

func (r *repository) CountByCategory(ctx context.Context) (map[Category]int, error) {
	docs, err := r.store.Aggregate(ctx, store.Products, store.Pipeline{
		{"$match": map[string]any{"available": true}},
		{"$group": map[string]any{"_id": "$category", "count": map[string]any{"$sum": 1}}},
	})
	if err != nil {
		return nil, err
	}

	counts := make(map[Category]int, len(docs))
	for _, d := range docs {
		c, _ := d[store.IDField].(string)
		n, _ := d["count"].(float64)
		counts[Category(c)] = int(n)
	}
	return counts, nil
}

// editable drops the fields the store owns.
func editable(p *Product) (store.Document, error) {
	doc, err := store.Encode(p)
	if err != nil {
		return nil, err
	}
	delete(doc, store.IDField)
	delete(doc, store.CreatedAtField)
	delete(doc, store.UpdatedAtField)
	return doc, nil
}
