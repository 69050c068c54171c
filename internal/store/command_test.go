package store

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecute(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	run := func(raw string) (any, error) {
		var cmd Command
		require.NoError(t, json.Unmarshal([]byte(raw), &cmd))
		return Execute(ctx, m, cmd)
	}

	t.Run("Insert and find", func(t *testing.T) {
		_, err := run(`{"action":"insertMany","collection":"reviews","data":[{"name":"Priya","rating":5},{"name":"Ravi","rating":3}]}`)
		require.NoError(t, err)

		out, err := run(`{"action":"find","collection":"reviews","sort":{"rating":-1},"limit":1}`)
		require.NoError(t, err)
		docs := out.([]Document)
		require.Len(t, docs, 1)
		assert.Equal(t, "Priya", docs[0]["name"])

		out, err = run(`{"action":"count","collection":"reviews","filter":{"rating":3}}`)
		require.NoError(t, err)
		assert.Equal(t, map[string]int64{"count": 1}, out)
	})

	t.Run("Update and delete need a filter", func(t *testing.T) {
		_, err := run(`{"action":"deleteMany","collection":"reviews"}`)
		assert.ErrorIs(t, err, ErrValidation)

		_, err = run(`{"action":"updateMany","collection":"reviews","data":{"verified":true}}`)
		assert.ErrorIs(t, err, ErrValidation)

		out, err := run(`{"action":"updateMany","collection":"reviews","filter":{"rating":3},"data":{"verified":true}}`)
		require.NoError(t, err)
		assert.EqualValues(t, 1, out.(UpdateResult).Matched)

		out, err = run(`{"action":"deleteOne","collection":"reviews","filter":{"name":"Ravi"}}`)
		require.NoError(t, err)
		assert.Equal(t, map[string]int64{"deletedCount": 1}, out)
	})

	t.Run("Aggregate", func(t *testing.T) {
		out, err := run(`{"action":"aggregate","collection":"reviews","pipeline":[{"$group":{"_id":null,"avg":{"$avg":"$rating"}}}]}`)
		require.NoError(t, err)
		docs := out.([]Document)
		require.Len(t, docs, 1)
		assert.Equal(t, 5.0, docs[0]["avg"])
	})

	t.Run("Rejected requests", func(t *testing.T) {
		_, err := run(`{"action":"find","collection":"users"}`)
		var ve *ValidationError
		require.ErrorAs(t, err, &ve)
		assert.Contains(t, ve.Error(), "customers, orders, products, reviews")

		_, err = run(`{"action":"drop","collection":"orders"}`)
		assert.ErrorIs(t, err, ErrValidation)

		_, err = run(`{"action":"insertOne","collection":"orders"}`)
		assert.ErrorIs(t, err, ErrValidation)

		_, err = run(`{"action":"find","collection":"orders","sort":{"total":2}}`)
		assert.ErrorIs(t, err, ErrValidation)
	})
}
