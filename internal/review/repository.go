package review

import (
	"context"
	"errors"
	"fmt"

	"homefoods-be/internal/store"
)

type Repository interface {
	Create(ctx context.Context, r *Review) error
	Get(ctx context.Context, id string) (*Review, error)
	List(ctx context.Context, filter ListFilter) ([]*Review, error)
	SetVerified(ctx context.Context, id string, verified bool) error
	Delete(ctx context.Context, id string) error
	// Stats averages the ratings of verified reviews.
	Stats(ctx context.Context, productID string) (Stats, error)
}

type repository struct {
	store store.Store
}

func NewRepository(s store.Store) Repository {
	return &repository{store: s}
}

func (r *repository) Create(ctx context.Context, rv *Review) error {
	doc, err := store.Encode(rv)
	if err != nil {
		return err
	}
	if _, err := r.store.InsertOne(ctx, store.Reviews, doc); err != nil {
		return fmt.Errorf("insert review: %w", err)
	}
	return nil
}

func (r *repository) Get(ctx context.Context, id string) (*Review, error) {
	doc, err := r.store.FindOne(ctx, store.Reviews, store.ByID(id))
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrReviewNotFound
	}
	if err != nil {
		return nil, err
	}

	var rv Review
	if err := store.Decode(doc, &rv); err != nil {
		return nil, err
	}
	return &rv, nil
}

func (r *repository) List(ctx context.Context, f ListFilter) ([]*Review, error) {
	docs, err := r.store.Find(ctx, store.Reviews, filterFor(f), store.FindOptions{
		Sort: []store.SortField{{Field: store.CreatedAtField, Desc: true}},
	})
	if err != nil {
		return nil, err
	}

	reviews := make([]*Review, 0, len(docs))
	for _, doc := range docs {
		var rv Review
		if err := store.Decode(doc, &rv); err != nil {
			return nil, err
		}
		reviews = append(reviews, &rv)
	}
	return reviews, nil
}

func (r *repository) SetVerified(ctx context.Context, id string, verified bool) error {
	res, err := r.store.UpdateOne(ctx, store.Reviews, store.ByID(id),
		store.Document{"verified": verified}, store.UpdateOptions{})
	if err != nil {
		return err
	}
	if res.Matched == 0 {
		return ErrReviewNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id string) error {
	n, err := r.store.DeleteOne(ctx, store.Reviews, store.ByID(id))
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrReviewNotFound
	}
	return nil
}

func (r *repository) Stats(ctx context.Context, productID string) (Stats, error) {
	verified := true
	docs, err := r.store.Aggregate(ctx, store.Reviews, store.Pipeline{
		{"$match": map[string]any(filterFor(ListFilter{Verified: &verified, ProductID: productID}))},
		{"$group": map[string]any{
			"_id":     nil,
			"average": map[string]any{"$avg": "$rating"},
			"count":   map[string]any{"$sum": 1},
		}},
	})
	if err != nil {
		return Stats{}, err
	}
	if len(docs) == 0 {
		return Stats{}, nil
	}

	avg, _ := docs[0]["average"].(float64)
	count, _ := docs[0]["count"].(float64)
	return Stats{Average: avg, Count: int(count)}, nil
}

func filterFor(f ListFilter) store.Filter {
	filter := store.Filter{}
	if f.Verified != nil {
		filter["verified"] = *f.Verified
	}
	if f.ProductID != "" {
		filter["productId"] = f.ProductID
	}
	return filter
}
