package store

import (
	"context"
	"sync"
)

// Memory keeps documents in process memory. Nothing survives a restart and
// concurrent writers resolve as last-write-wins.
type Memory struct {
	stamper
	mu    sync.RWMutex
	docs  map[Collection]map[string]Document
	order map[Collection][]string
}

func NewMemory(opts ...Option) *Memory {
	return &Memory{
		stamper: newStamper(opts),
		docs:    map[Collection]map[string]Document{},
		order:   map[Collection][]string{},
	}
}

func (m *Memory) InsertOne(ctx context.Context, c Collection, doc Document) (string, error) {
	ids, err := m.InsertMany(ctx, c, []Document{doc})
	if err != nil {
		return "", err
	}
	return ids[0], nil
}

func (m *Memory) InsertMany(_ context.Context, c Collection, docs []Document) ([]string, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, validationErrorf("insert requires at least one document")
	}

	prepared := make([]Document, 0, len(docs))
	now := m.now()
	for _, d := range docs {
		n, err := normalize(d)
		if err != nil {
			return nil, err
		}
		prepared = append(prepared, stamp(n, now, m.newID))
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	coll := m.collection(c)
	seen := make(map[string]struct{}, len(prepared))
	for _, d := range prepared {
		id := d[IDField].(string)
		if _, exists := coll[id]; exists {
			return nil, validationErrorf("duplicate _id %q in %s", id, c)
		}
		if _, dup := seen[id]; dup {
			return nil, validationErrorf("duplicate _id %q in batch for %s", id, c)
		}
		seen[id] = struct{}{}
	}

	ids := make([]string, 0, len(prepared))
	for _, d := range prepared {
		id := d[IDField].(string)
		coll[id] = d
		m.order[c] = append(m.order[c], id)
		ids = append(ids, id)
	}
	return ids, nil
}

func (m *Memory) Find(_ context.Context, c Collection, filter Filter, opts FindOptions) ([]Document, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	f, err := normalize(filter)
	if err != nil {
		return nil, err
	}

	m.mu.RLock()
	out := m.matching(c, Filter(f), 0)
	m.mu.RUnlock()

	return applyFindOptions(out, opts), nil
}

func (m *Memory) FindOne(ctx context.Context, c Collection, filter Filter) (Document, error) {
	docs, err := m.Find(ctx, c, filter, FindOptions{Limit: 1})
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, ErrNotFound
	}
	return docs[0], nil
}

func (m *Memory) UpdateOne(_ context.Context, c Collection, filter Filter, set Document, opts UpdateOptions) (UpdateResult, error) {
	return m.update(c, filter, set, 1, opts.Upsert)
}

func (m *Memory) UpdateMany(_ context.Context, c Collection, filter Filter, set Document) (UpdateResult, error) {
	return m.update(c, filter, set, 0, false)
}

func (m *Memory) update(c Collection, filter Filter, set Document, limit int, upsert bool) (UpdateResult, error) {
	if err := c.Validate(); err != nil {
		return UpdateResult{}, err
	}
	f, err := normalize(filter)
	if err != nil {
		return UpdateResult{}, err
	}
	now := m.now()
	patch, err := updatePatch(set, now)
	if err != nil {
		return UpdateResult{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	coll := m.collection(c)
	var res UpdateResult
	for _, id := range m.order[c] {
		doc := coll[id]
		if !matches(doc, Filter(f)) {
			continue
		}
		for k, v := range patch {
			doc[k] = cloneValue(v)
		}
		res.Matched++
		res.Modified++
		if limit > 0 && int(res.Matched) >= limit {
			break
		}
	}

	if res.Matched == 0 && upsert {
		doc := stamp(upsertDocument(Filter(f), patch), now, m.newID)
		id := doc[IDField].(string)
		coll[id] = doc
		m.order[c] = append(m.order[c], id)
		res.UpsertedID = id
	}
	return res, nil
}

func (m *Memory) DeleteOne(_ context.Context, c Collection, filter Filter) (int64, error) {
	return m.delete(c, filter, 1)
}

func (m *Memory) DeleteMany(_ context.Context, c Collection, filter Filter) (int64, error) {
	return m.delete(c, filter, 0)
}

func (m *Memory) delete(c Collection, filter Filter, limit int) (int64, error) {
	if err := c.Validate(); err != nil {
		return 0, err
	}
	f, err := normalize(filter)
	if err != nil {
		return 0, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	coll := m.collection(c)
	kept := m.order[c][:0:0]
	var deleted int64
	for _, id := range m.order[c] {
		if (limit == 0 || deleted < int64(limit)) && matches(coll[id], Filter(f)) {
			delete(coll, id)
			deleted++
			continue
		}
		kept = append(kept, id)
	}
	m.order[c] = kept
	return deleted, nil
}

func (m *Memory) Aggregate(_ context.Context, c Collection, pipeline Pipeline) ([]Document, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	match, rest, err := splitLeadingMatch(pipeline)
	if err != nil {
		return nil, err
	}

	m.mu.RLock()
	docs := m.matching(c, match, 0)
	m.mu.RUnlock()

	return runPipeline(docs, rest)
}

func (m *Memory) Count(_ context.Context, c Collection, filter Filter) (int64, error) {
	if err := c.Validate(); err != nil {
		return 0, err
	}
	f, err := normalize(filter)
	if err != nil {
		return 0, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	return int64(len(m.matching(c, Filter(f), 0))), nil
}

func (m *Memory) Close() error {
	return nil
}

// matching returns clones in insertion order; callers hold the lock.
func (m *Memory) matching(c Collection, f Filter, limit int) []Document {
	out := []Document{}
	coll := m.docs[c]
	for _, id := range m.order[c] {
		if matches(coll[id], f) {
			out = append(out, cloneDocument(coll[id]))
			if limit > 0 && len(out) >= limit {
				break
			}
		}
	}
	return out
}

func (m *Memory) collection(c Collection) map[string]Document {
	coll, ok := m.docs[c]
	if !ok {
		coll = map[string]Document{}
		m.docs[c] = coll
	}
	return coll
}
