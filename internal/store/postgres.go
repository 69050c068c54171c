package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
)

const uniqueViolation = "23505"

// Postgres stores every collection in one JSONB table:
//
//	documents(collection, id, data, created_at, updated_at)
//
// Filters are pushed down as JSON containment; sorting on document fields
// happens after decoding.
type Postgres struct {
	stamper
	db *sql.DB
}

func NewPostgres(db *sql.DB, opts ...Option) *Postgres {
	return &Postgres{stamper: newStamper(opts), db: db}
}

func (p *Postgres) InsertOne(ctx context.Context, c Collection, doc Document) (string, error) {
	ids, err := p.InsertMany(ctx, c, []Document{doc})
	if err != nil {
		return "", err
	}
	return ids[0], nil
}

func (p *Postgres) InsertMany(ctx context.Context, c Collection, docs []Document) ([]string, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, validationErrorf("insert requires at least one document")
	}

	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("store: begin insert: %w", err)
	}
	defer tx.Rollback()

	now := p.now()
	ids := make([]string, 0, len(docs))
	for _, d := range docs {
		n, err := normalize(d)
		if err != nil {
			return nil, err
		}
		n = stamp(n, now, p.newID)
		if err := p.insert(ctx, tx, c, n, now); err != nil {
			return nil, err
		}
		ids = append(ids, n[IDField].(string))
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("store: commit insert: %w", err)
	}
	return ids, nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (p *Postgres) insert(ctx context.Context, ex execer, c Collection, doc Document, now time.Time) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("store: encode: %w", err)
	}
	created := parseTimestamp(doc[CreatedAtField], now)

	_, err = ex.ExecContext(ctx, `
		INSERT INTO documents (collection, id, data, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
	`, string(c), doc[IDField], string(raw), created, now.UTC())
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return validationErrorf("duplicate document %q in %s", doc[IDField], c)
		}
		return fmt.Errorf("store: insert into %s: %w", c, err)
	}
	return nil
}

func (p *Postgres) Find(ctx context.Context, c Collection, filter Filter, opts FindOptions) ([]Document, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	contains, err := containment(filter)
	if err != nil {
		return nil, err
	}

	query := `
		SELECT data FROM documents
		WHERE collection = $1 AND data @> $2::jsonb
		ORDER BY created_at, id`
	args := []any{string(c), contains}

	// Without a document sort the window can go to the database.
	pushed := len(opts.Sort) == 0
	if pushed {
		if opts.Limit > 0 {
			args = append(args, opts.Limit)
			query += fmt.Sprintf(" LIMIT $%d", len(args))
		}
		if opts.Skip > 0 {
			args = append(args, opts.Skip)
			query += fmt.Sprintf(" OFFSET $%d", len(args))
		}
	}

	docs, err := p.query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("store: find in %s: %w", c, err)
	}
	if pushed {
		return docs, nil
	}
	return applyFindOptions(docs, opts), nil
}

func (p *Postgres) FindOne(ctx context.Context, c Collection, filter Filter) (Document, error) {
	docs, err := p.Find(ctx, c, filter, FindOptions{Limit: 1})
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, ErrNotFound
	}
	return docs[0], nil
}

func (p *Postgres) UpdateOne(ctx context.Context, c Collection, filter Filter, set Document, opts UpdateOptions) (UpdateResult, error) {
	return p.update(ctx, c, filter, set, true, opts.Upsert)
}

func (p *Postgres) UpdateMany(ctx context.Context, c Collection, filter Filter, set Document) (UpdateResult, error) {
	return p.update(ctx, c, filter, set, false, false)
}

func (p *Postgres) update(ctx context.Context, c Collection, filter Filter, set Document, single, upsert bool) (UpdateResult, error) {
	if err := c.Validate(); err != nil {
		return UpdateResult{}, err
	}
	contains, err := containment(filter)
	if err != nil {
		return UpdateResult{}, err
	}
	now := p.now()
	patch, err := updatePatch(set, now)
	if err != nil {
		return UpdateResult{}, err
	}
	rawPatch, err := json.Marshal(patch)
	if err != nil {
		return UpdateResult{}, fmt.Errorf("store: encode: %w", err)
	}

	query := `
		UPDATE documents SET data = data || $3::jsonb, updated_at = $4
		WHERE collection = $1 AND data @> $2::jsonb`
	if single {
		query = `
		UPDATE documents SET data = data || $3::jsonb, updated_at = $4
		WHERE collection = $1 AND id = (
			SELECT id FROM documents
			WHERE collection = $1 AND data @> $2::jsonb
			ORDER BY created_at, id
			LIMIT 1
		)`
	}

	res, err := p.db.ExecContext(ctx, query, string(c), contains, string(rawPatch), now.UTC())
	if err != nil {
		return UpdateResult{}, fmt.Errorf("store: update %s: %w", c, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return UpdateResult{}, fmt.Errorf("store: update %s: %w", c, err)
	}

	out := UpdateResult{Matched: n, Modified: n}
	if n == 0 && upsert {
		f, err := normalize(filter)
		if err != nil {
			return UpdateResult{}, err
		}
		doc := stamp(upsertDocument(Filter(f), patch), now, p.newID)
		if err := p.insert(ctx, p.db, c, doc, now); err != nil {
			return UpdateResult{}, err
		}
		out.UpsertedID = doc[IDField].(string)
	}
	return out, nil
}

func (p *Postgres) DeleteOne(ctx context.Context, c Collection, filter Filter) (int64, error) {
	return p.delete(ctx, c, filter, `
		DELETE FROM documents
		WHERE collection = $1 AND id = (
			SELECT id FROM documents
			WHERE collection = $1 AND data @> $2::jsonb
			ORDER BY created_at, id
			LIMIT 1
		)`)
}

func (p *Postgres) DeleteMany(ctx context.Context, c Collection, filter Filter) (int64, error) {
	return p.delete(ctx, c, filter, `
		DELETE FROM documents
		WHERE collection = $1 AND data @> $2::jsonb`)
}

func (p *Postgres) delete(ctx context.Context, c Collection, filter Filter, query string) (int64, error) {
	if err := c.Validate(); err != nil {
		return 0, err
	}
	contains, err := containment(filter)
	if err != nil {
		return 0, err
	}

	res, err := p.db.ExecContext(ctx, query, string(c), contains)
	if err != nil {
		return 0, fmt.Errorf("store: delete from %s: %w", c, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("store: delete from %s: %w", c, err)
	}
	return n, nil
}

func (p *Postgres) Aggregate(ctx context.Context, c Collection, pipeline Pipeline) ([]Document, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	match, rest, err := splitLeadingMatch(pipeline)
	if err != nil {
		return nil, err
	}
	contains, err := containment(match)
	if err != nil {
		return nil, err
	}

	docs, err := p.query(ctx, `
		SELECT data FROM documents
		WHERE collection = $1 AND data @> $2::jsonb
		ORDER BY created_at, id`, string(c), contains)
	if err != nil {
		return nil, fmt.Errorf("store: aggregate %s: %w", c, err)
	}
	return runPipeline(docs, rest)
}

func (p *Postgres) Count(ctx context.Context, c Collection, filter Filter) (int64, error) {
	if err := c.Validate(); err != nil {
		return 0, err
	}
	contains, err := containment(filter)
	if err != nil {
		return 0, err
	}

	var n int64
	err = p.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM documents
		WHERE collection = $1 AND data @> $2::jsonb
	`, string(c), contains).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("store: count %s: %w", c, err)
	}
	return n, nil
}

func (p *Postgres) Close() error {
	return p.db.Close()
}

func (p *Postgres) query(ctx context.Context, query string, args ...any) ([]Document, error) {
	rows, err := p.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	docs := []Document{}
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		var doc Document
		if err := json.Unmarshal(raw, &doc); err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

// containment renders a filter as the right-hand side of data @> $2.
func containment(filter Filter) (string, error) {
	f, err := normalize(filter)
	if err != nil {
		return "", err
	}
	raw, err := json.Marshal(nestFilter(Filter(f)))
	if err != nil {
		return "", fmt.Errorf("store: encode filter: %w", err)
	}
	return string(raw), nil
}

func parseTimestamp(v any, fallback time.Time) time.Time {
	if s, ok := v.(string); ok {
		if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
			return t.UTC()
		}
	}
	return fallback.UTC()
}
