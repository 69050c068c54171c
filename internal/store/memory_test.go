package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestMemory(t *testing.T) (*Memory, *fakeClock) {
	t.Helper()
	clock := &fakeClock{now: time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)}
	n := 0
	m := NewMemory(
		WithClock(clock.Now),
		WithIDGenerator(func() string {
			n++
			return fmt.Sprintf("id-%d", n)
		}),
	)
	return m, clock
}

func TestMemory_InsertAndFind(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestMemory(t)

	t.Run("Stamps id and timestamps", func(t *testing.T) {
		id, err := m.InsertOne(ctx, Customers, Document{"name": "Asha", "phone": "9876543210"})
		require.NoError(t, err)
		assert.Equal(t, "id-1", id)

		doc, err := m.FindOne(ctx, Customers, ByID(id))
		require.NoError(t, err)
		assert.Equal(t, "Asha", doc["name"])
		assert.Equal(t, "2024-03-01T10:00:00Z", doc[CreatedAtField])
		assert.Equal(t, doc[CreatedAtField], doc[UpdatedAtField])
	})

	t.Run("Keeps caller supplied id", func(t *testing.T) {
		id, err := m.InsertOne(ctx, Orders, Document{IDField: "ORD-1", "status": "pending"})
		require.NoError(t, err)
		assert.Equal(t, "ORD-1", id)
	})

	t.Run("Duplicate id is rejected", func(t *testing.T) {
		_, err := m.InsertOne(ctx, Orders, Document{IDField: "ORD-1"})
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("Empty batch is rejected", func(t *testing.T) {
		_, err := m.InsertMany(ctx, Orders, nil)
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("Duplicate id within a batch is rejected", func(t *testing.T) {
		_, err := m.InsertMany(ctx, Reviews, []Document{
			{IDField: "rev-x", "n": 1},
			{IDField: "rev-x", "n": 2},
		})
		assert.ErrorIs(t, err, ErrValidation)

		count, err := m.Count(ctx, Reviews, Filter{IDField: "rev-x"})
		require.NoError(t, err)
		assert.Zero(t, count)
	})

	t.Run("Returned documents are copies", func(t *testing.T) {
		doc, err := m.FindOne(ctx, Orders, ByID("ORD-1"))
		require.NoError(t, err)
		doc["status"] = "tampered"

		again, err := m.FindOne(ctx, Orders, ByID("ORD-1"))
		require.NoError(t, err)
		assert.Equal(t, "pending", again["status"])
	})

	t.Run("Missing document", func(t *testing.T) {
		_, err := m.FindOne(ctx, Orders, ByID("nope"))
		assert.True(t, errors.Is(err, ErrNotFound))
	})
}

func TestMemory_InvalidCollection(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestMemory(t)

	_, err := m.InsertOne(ctx, Collection("users"), Document{"a": 1})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrValidation)
	assert.Contains(t, err.Error(), "customers, orders, products, reviews")

	_, err = m.Find(ctx, Collection("admin"), nil, FindOptions{})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = m.Aggregate(ctx, Collection(""), nil)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestMemory_FindOptions(t *testing.T) {
	ctx := context.Background()
	m, clock := newTestMemory(t)

	for i, name := range []string{"Mango Pickle", "Lemon Pickle", "Garlic Pickle"} {
		_, err := m.InsertOne(ctx, Products, Document{"name": name, "price": float64(100 * (i + 1)), "category": "pickles"})
		require.NoError(t, err)
		clock.Advance(time.Minute)
	}
	_, err := m.InsertOne(ctx, Products, Document{"name": "Ghee", "price": 500.0, "category": "dairy"})
	require.NoError(t, err)

	t.Run("Equality filter", func(t *testing.T) {
		docs, err := m.Find(ctx, Products, Filter{"category": "pickles"}, FindOptions{})
		require.NoError(t, err)
		assert.Len(t, docs, 3)
		assert.Equal(t, "Mango Pickle", docs[0]["name"])
	})

	t.Run("Sort descending with limit", func(t *testing.T) {
		docs, err := m.Find(ctx, Products, nil, FindOptions{
			Sort:  []SortField{{Field: "price", Desc: true}},
			Limit: 2,
		})
		require.NoError(t, err)
		require.Len(t, docs, 2)
		assert.Equal(t, "Ghee", docs[0]["name"])
		assert.Equal(t, "Garlic Pickle", docs[1]["name"])
	})

	t.Run("Sort by timestamp with skip", func(t *testing.T) {
		docs, err := m.Find(ctx, Products, Filter{"category": "pickles"}, FindOptions{
			Sort: []SortField{{Field: CreatedAtField, Desc: true}},
			Skip: 1,
		})
		require.NoError(t, err)
		require.Len(t, docs, 2)
		assert.Equal(t, "Lemon Pickle", docs[0]["name"])
	})

	t.Run("Skip past end", func(t *testing.T) {
		docs, err := m.Find(ctx, Products, nil, FindOptions{Skip: 10})
		require.NoError(t, err)
		assert.Empty(t, docs)
	})

	t.Run("Count", func(t *testing.T) {
		n, err := m.Count(ctx, Products, Filter{"category": "pickles"})
		require.NoError(t, err)
		assert.EqualValues(t, 3, n)
	})
}

func TestMemory_NestedFilter(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestMemory(t)

	_, err := m.InsertOne(ctx, Orders, Document{"customer": map[string]any{"phone": "9876543210"}, "total": 320})
	require.NoError(t, err)
	_, err = m.InsertOne(ctx, Orders, Document{"customer": map[string]any{"phone": "9123456780"}, "total": 90})
	require.NoError(t, err)

	docs, err := m.Find(ctx, Orders, Filter{"customer.phone": "9876543210"}, FindOptions{})
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, 320.0, docs[0]["total"])
}

func TestMemory_Update(t *testing.T) {
	ctx := context.Background()
	m, clock := newTestMemory(t)

	id, err := m.InsertOne(ctx, Reviews, Document{"rating": 4, "verified": false})
	require.NoError(t, err)
	_, err = m.InsertOne(ctx, Reviews, Document{"rating": 5, "verified": false})
	require.NoError(t, err)

	t.Run("UpdateOne refreshes updatedAt only", func(t *testing.T) {
		clock.Advance(time.Hour)

		res, err := m.UpdateOne(ctx, Reviews, ByID(id), Document{
			"verified":     true,
			IDField:        "hijack",
			CreatedAtField: "1999-01-01T00:00:00Z",
		}, UpdateOptions{})
		require.NoError(t, err)
		assert.EqualValues(t, 1, res.Matched)

		doc, err := m.FindOne(ctx, Reviews, ByID(id))
		require.NoError(t, err)
		assert.Equal(t, true, doc["verified"])
		assert.Equal(t, id, doc[IDField])
		assert.Equal(t, "2024-03-01T10:00:00Z", doc[CreatedAtField])
		assert.Equal(t, "2024-03-01T11:00:00Z", doc[UpdatedAtField])
	})

	t.Run("UpdateMany", func(t *testing.T) {
		res, err := m.UpdateMany(ctx, Reviews, nil, Document{"flagged": false})
		require.NoError(t, err)
		assert.EqualValues(t, 2, res.Matched)
	})

	t.Run("No match without upsert", func(t *testing.T) {
		res, err := m.UpdateOne(ctx, Reviews, ByID("missing"), Document{"verified": true}, UpdateOptions{})
		require.NoError(t, err)
		assert.EqualValues(t, 0, res.Matched)
		assert.Empty(t, res.UpsertedID)
	})

	t.Run("Upsert inserts from filter and patch", func(t *testing.T) {
		res, err := m.UpdateOne(ctx, Customers, Filter{"phone": "9876543210"}, Document{"name": "Ravi"}, UpdateOptions{Upsert: true})
		require.NoError(t, err)
		require.NotEmpty(t, res.UpsertedID)

		doc, err := m.FindOne(ctx, Customers, ByID(res.UpsertedID))
		require.NoError(t, err)
		assert.Equal(t, "9876543210", doc["phone"])
		assert.Equal(t, "Ravi", doc["name"])
		assert.NotEmpty(t, doc[CreatedAtField])
	})
}

func TestMemory_Delete(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestMemory(t)

	_, err := m.InsertMany(ctx, Reviews, []Document{
		{"productId": "p1"}, {"productId": "p1"}, {"productId": "p2"},
	})
	require.NoError(t, err)

	n, err := m.DeleteOne(ctx, Reviews, Filter{"productId": "p1"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	n, err = m.DeleteMany(ctx, Reviews, nil)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	total, err := m.Count(ctx, Reviews, nil)
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestMemory_ConcurrentInserts(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := m.InsertOne(ctx, Orders, Document{"n": i})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	n, err := m.Count(ctx, Orders, nil)
	require.NoError(t, err)
	assert.EqualValues(t, 50, n)
}
