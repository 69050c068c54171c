package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

func newTestPostgres(t *testing.T) (*Postgres, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	p := NewPostgres(db,
		WithClock(func() time.Time { return testNow }),
		WithIDGenerator(func() string { return "doc-1" }),
	)
	return p, mock
}

func TestPostgres_InsertOne(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		p, mock := newTestPostgres(t)

		mock.ExpectBegin()
		mock.ExpectExec(`INSERT INTO documents \(collection, id, data, created_at, updated_at\)`).
			WithArgs("orders", "doc-1", `{"_id":"doc-1","createdAt":"2024-03-01T10:00:00Z","status":"pending","updatedAt":"2024-03-01T10:00:00Z"}`, testNow, testNow).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		id, err := p.InsertOne(ctx, Orders, Document{"status": "pending"})
		require.NoError(t, err)
		assert.Equal(t, "doc-1", id)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Duplicate id", func(t *testing.T) {
		p, mock := newTestPostgres(t)

		mock.ExpectBegin()
		mock.ExpectExec(`INSERT INTO documents`).
			WillReturnError(&pq.Error{Code: uniqueViolation})
		mock.ExpectRollback()

		_, err := p.InsertOne(ctx, Orders, Document{IDField: "ORD-1"})
		assert.ErrorIs(t, err, ErrValidation)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Invalid collection never reaches the database", func(t *testing.T) {
		p, mock := newTestPostgres(t)

		_, err := p.InsertOne(ctx, Collection("sessions"), Document{"a": 1})
		assert.ErrorIs(t, err, ErrValidation)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPostgres_Find(t *testing.T) {
	ctx := context.Background()

	t.Run("Nested filter with pushed down window", func(t *testing.T) {
		p, mock := newTestPostgres(t)

		rows := sqlmock.NewRows([]string{"data"}).
			AddRow([]byte(`{"_id":"ORD-1","customer":{"phone":"9876543210"},"total":320}`))
		mock.ExpectQuery(`SELECT data FROM documents WHERE collection = \$1 AND data @> \$2::jsonb ORDER BY created_at, id LIMIT \$3 OFFSET \$4`).
			WithArgs("orders", `{"customer":{"phone":"9876543210"}}`, 10, 20).
			WillReturnRows(rows)

		docs, err := p.Find(ctx, Orders, Filter{"customer.phone": "9876543210"}, FindOptions{Limit: 10, Skip: 20})
		require.NoError(t, err)
		require.Len(t, docs, 1)
		assert.Equal(t, "ORD-1", docs[0][IDField])
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Document sort runs after decoding", func(t *testing.T) {
		p, mock := newTestPostgres(t)

		rows := sqlmock.NewRows([]string{"data"}).
			AddRow([]byte(`{"name":"a","price":100}`)).
			AddRow([]byte(`{"name":"b","price":300}`)).
			AddRow([]byte(`{"name":"c","price":200}`))
		mock.ExpectQuery(`SELECT data FROM documents`).
			WithArgs("products", `{}`).
			WillReturnRows(rows)

		docs, err := p.Find(ctx, Products, nil, FindOptions{Sort: []SortField{{Field: "price", Desc: true}}, Limit: 2})
		require.NoError(t, err)
		require.Len(t, docs, 2)
		assert.Equal(t, "b", docs[0]["name"])
		assert.Equal(t, "c", docs[1]["name"])
	})

	t.Run("FindOne not found", func(t *testing.T) {
		p, mock := newTestPostgres(t)

		mock.ExpectQuery(`SELECT data FROM documents`).
			WithArgs("orders", `{"_id":"missing"}`, 1).
			WillReturnRows(sqlmock.NewRows([]string{"data"}))

		_, err := p.FindOne(ctx, Orders, ByID("missing"))
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("Query error is wrapped", func(t *testing.T) {
		p, mock := newTestPostgres(t)

		mock.ExpectQuery(`SELECT data FROM documents`).
			WillReturnError(errors.New("connection reset"))

		_, err := p.Find(ctx, Reviews, nil, FindOptions{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "store: find in reviews")
	})
}

func TestPostgres_UpdateOne(t *testing.T) {
	ctx := context.Background()

	t.Run("Merges patch and refreshes updatedAt", func(t *testing.T) {
		p, mock := newTestPostgres(t)

		mock.ExpectExec(`UPDATE documents SET data = data \|\| \$3::jsonb, updated_at = \$4 WHERE collection = \$1 AND id = \(\s*SELECT id FROM documents`).
			WithArgs("orders", `{"_id":"ORD-1"}`, `{"status":"confirmed","updatedAt":"2024-03-01T10:00:00Z"}`, testNow).
			WillReturnResult(sqlmock.NewResult(0, 1))

		res, err := p.UpdateOne(ctx, Orders, ByID("ORD-1"), Document{"status": "confirmed", CreatedAtField: "x"}, UpdateOptions{})
		require.NoError(t, err)
		assert.EqualValues(t, 1, res.Matched)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Upsert inserts when nothing matched", func(t *testing.T) {
		p, mock := newTestPostgres(t)

		mock.ExpectExec(`UPDATE documents`).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec(`INSERT INTO documents`).
			WithArgs("customers", "doc-1", `{"_id":"doc-1","createdAt":"2024-03-01T10:00:00Z","name":"Ravi","phone":"9876543210","updatedAt":"2024-03-01T10:00:00Z"}`, testNow, testNow).
			WillReturnResult(sqlmock.NewResult(0, 1))

		res, err := p.UpdateOne(ctx, Customers, Filter{"phone": "9876543210"}, Document{"name": "Ravi"}, UpdateOptions{Upsert: true})
		require.NoError(t, err)
		assert.Equal(t, "doc-1", res.UpsertedID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPostgres_UpdateMany(t *testing.T) {
	p, mock := newTestPostgres(t)

	mock.ExpectExec(`UPDATE documents SET data = data \|\| \$3::jsonb, updated_at = \$4 WHERE collection = \$1 AND data @> \$2::jsonb`).
		WithArgs("reviews", `{"productId":"ghee"}`, sqlmock.AnyArg(), testNow).
		WillReturnResult(sqlmock.NewResult(0, 3))

	res, err := p.UpdateMany(context.Background(), Reviews, Filter{"productId": "ghee"}, Document{"verified": true})
	require.NoError(t, err)
	assert.EqualValues(t, 3, res.Modified)
}

func TestPostgres_Delete(t *testing.T) {
	ctx := context.Background()
	p, mock := newTestPostgres(t)

	mock.ExpectExec(`DELETE FROM documents WHERE collection = \$1 AND id = \(`).
		WithArgs("reviews", `{"_id":"rev_1"}`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`DELETE FROM documents WHERE collection = \$1 AND data @> \$2::jsonb`).
		WithArgs("reviews", `{"productId":"ghee"}`).
		WillReturnResult(sqlmock.NewResult(0, 2))

	n, err := p.DeleteOne(ctx, Reviews, ByID("rev_1"))
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	n, err = p.DeleteMany(ctx, Reviews, Filter{"productId": "ghee"})
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_AggregateAndCount(t *testing.T) {
	ctx := context.Background()
	p, mock := newTestPostgres(t)

	rows := sqlmock.NewRows([]string{"data"}).
		AddRow([]byte(`{"productId":"ghee","rating":4}`)).
		AddRow([]byte(`{"productId":"ghee","rating":5}`))
	mock.ExpectQuery(`SELECT data FROM documents`).
		WithArgs("reviews", `{"verified":true}`).
		WillReturnRows(rows)
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM documents`).
		WithArgs("reviews", `{"verified":true}`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

	docs, err := p.Aggregate(ctx, Reviews, Pipeline{
		{"$match": map[string]any{"verified": true}},
		{"$group": map[string]any{"_id": "$productId", "avg": map[string]any{"$avg": "$rating"}}},
	})
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, 4.5, docs[0]["avg"])

	n, err := p.Count(ctx, Reviews, Filter{"verified": true})
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}
