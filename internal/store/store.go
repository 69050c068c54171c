// Package store is the document gateway shared by customers, orders,
// reviews and products. Implementations are swappable behind Store.
package store

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

type Collection string

const (
	Customers Collection = "customers"
	Orders    Collection = "orders"
	Reviews   Collection = "reviews"
	Products  Collection = "products"
)

const (
	IDField        = "_id"
	CreatedAtField = "createdAt"
	UpdatedAtField = "updatedAt"
)

var allowedCollections = map[Collection]struct{}{
	Customers: {},
	Orders:    {},
	Reviews:   {},
	Products:  {},
}

// Collections lists the allow-listed collection names in sorted order.
func Collections() []string {
	names := make([]string, 0, len(allowedCollections))
	for c := range allowedCollections {
		names = append(names, string(c))
	}
	sort.Strings(names)
	return names
}

// Validate rejects any collection outside the allow-list.
func (c Collection) Validate() error {
	if _, ok := allowedCollections[c]; !ok {
		return &ValidationError{Reason: fmt.Sprintf(
			"invalid collection %q: must be one of %s", string(c), strings.Join(Collections(), ", "),
		)}
	}
	return nil
}

// ParseCollection converts a request value into an allow-listed Collection.
func ParseCollection(name string) (Collection, error) {
	c := Collection(strings.TrimSpace(name))
	if err := c.Validate(); err != nil {
		return "", err
	}
	return c, nil
}

// Document is a JSON object as stored by the gateway.
type Document map[string]any

// Filter matches documents by field equality. Dotted keys address nested fields.
type Filter map[string]any

type SortField struct {
	Field string
	Desc  bool
}

type FindOptions struct {
	Sort  []SortField
	Skip  int
	Limit int
}

type UpdateOptions struct {
	Upsert bool
}

type UpdateResult struct {
	Matched    int64  `json:"matchedCount"`
	Modified   int64  `json:"modifiedCount"`
	UpsertedID string `json:"upsertedId,omitempty"`
}

// Stage is a single aggregation step, e.g. {"$match": {...}}.
type Stage map[string]any

type Pipeline []Stage

type Store interface {
	InsertOne(ctx context.Context, c Collection, doc Document) (string, error)
	InsertMany(ctx context.Context, c Collection, docs []Document) ([]string, error)
	Find(ctx context.Context, c Collection, filter Filter, opts FindOptions) ([]Document, error)
	FindOne(ctx context.Context, c Collection, filter Filter) (Document, error)
	UpdateOne(ctx context.Context, c Collection, filter Filter, set Document, opts UpdateOptions) (UpdateResult, error)
	UpdateMany(ctx context.Context, c Collection, filter Filter, set Document) (UpdateResult, error)
	DeleteOne(ctx context.Context, c Collection, filter Filter) (int64, error)
	DeleteMany(ctx context.Context, c Collection, filter Filter) (int64, error)
	Aggregate(ctx context.Context, c Collection, pipeline Pipeline) ([]Document, error)
	Count(ctx context.Context, c Collection, filter Filter) (int64, error)
	Close() error
}

// ByID builds the filter for a single document id.
func ByID(id string) Filter {
	return Filter{IDField: id}
}
