package store

import (
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// stamper supplies ids and timestamps to an implementation.
type stamper struct {
	now   func() time.Time
	newID func() string
}

type Option func(*stamper)

// WithClock overrides time.Now for timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *stamper) { s.now = now }
}

// WithIDGenerator overrides the UUID generator for _id.
func WithIDGenerator(gen func() string) Option {
	return func(s *stamper) { s.newID = gen }
}

func newStamper(opts []Option) stamper {
	s := stamper{now: time.Now, newID: uuid.NewString}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// Encode converts a tagged struct into a Document.
func Encode(v any) (Document, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("store: encode: %w", err)
	}
	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("store: encode: %w", err)
	}
	return doc, nil
}

// Decode fills v from a Document.
func Decode(doc Document, v any) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("store: decode: %w", err)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("store: decode: %w", err)
	}
	return nil
}

// normalize round-trips through JSON so numbers, times and nested
// structs compare the same way regardless of the caller's Go types.
func normalize(m map[string]any) (Document, error) {
	if m == nil {
		return Document{}, nil
	}
	return Encode(m)
}

func cloneDocument(doc Document) Document {
	out := make(Document, len(doc))
	for k, v := range doc {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return map[string]any(cloneDocument(Document(t)))
	case Document:
		return cloneDocument(t)
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = cloneValue(item)
		}
		return out
	default:
		return v
	}
}

func timestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// stamp assigns _id, createdAt and updatedAt when the document lacks them.
func stamp(doc Document, now time.Time, newID func() string) Document {
	if id, ok := doc[IDField].(string); !ok || id == "" {
		doc[IDField] = newID()
	}
	ts := timestamp(now)
	if isEmpty(doc[CreatedAtField]) {
		doc[CreatedAtField] = ts
	}
	if isEmpty(doc[UpdatedAtField]) {
		doc[UpdatedAtField] = ts
	}
	return doc
}

// zeroTime is how an unset time.Time encodes.
const zeroTime = "0001-01-01T00:00:00Z"

func isEmpty(v any) bool {
	if v == nil {
		return true
	}
	s, ok := v.(string)
	return ok && (s == "" || s == zeroTime)
}

// updatePatch strips immutable fields from set and refreshes updatedAt.
func updatePatch(set Document, now time.Time) (Document, error) {
	patch, err := normalize(set)
	if err != nil {
		return nil, err
	}
	delete(patch, IDField)
	delete(patch, CreatedAtField)
	patch[UpdatedAtField] = timestamp(now)
	return patch, nil
}

// upsertDocument builds the document inserted when an upsert matches nothing.
func upsertDocument(filter Filter, patch Document) Document {
	doc := Document{}
	for k, v := range filter {
		if !strings.Contains(k, ".") {
			doc[k] = cloneValue(v)
		}
	}
	for k, v := range patch {
		doc[k] = cloneValue(v)
	}
	return doc
}

func lookup(doc Document, path string) (any, bool) {
	var cur any = map[string]any(doc)
	for _, part := range strings.Split(path, ".") {
		m, ok := asMap(cur)
		if !ok {
			return nil, false
		}
		cur, ok = m[part]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

func asMap(v any) (map[string]any, bool) {
	switch t := v.(type) {
	case map[string]any:
		return t, true
	case Document:
		return t, true
	default:
		return nil, false
	}
}

// matches reports whether every filter field equals the document's value.
// filter must already be normalized.
func matches(doc Document, filter Filter) bool {
	for path, want := range filter {
		got, ok := lookup(doc, path)
		if !ok {
			if want == nil {
				continue
			}
			return false
		}
		if !reflect.DeepEqual(got, want) {
			return false
		}
	}
	return true
}

// nestFilter expands dotted keys into nested objects for JSON containment.
func nestFilter(filter Filter) map[string]any {
	out := map[string]any{}
	for path, v := range filter {
		parts := strings.Split(path, ".")
		cur := out
		for i, part := range parts {
			if i == len(parts)-1 {
				cur[part] = v
				break
			}
			next, ok := cur[part].(map[string]any)
			if !ok {
				next = map[string]any{}
				cur[part] = next
			}
			cur = next
		}
	}
	return out
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

// compareValues orders nil < numbers < strings < bools; RFC3339 strings compare as times.
func compareValues(a, b any) int {
	ra, rb := rank(a), rank(b)
	if ra != rb {
		return ra - rb
	}

	switch ra {
	case 1:
		fa, _ := toFloat(a)
		fb, _ := toFloat(b)
		switch {
		case fa < fb:
			return -1
		case fa > fb:
			return 1
		}
		return 0
	case 2:
		sa, sb := a.(string), b.(string)
		ta, errA := time.Parse(time.RFC3339Nano, sa)
		tb, errB := time.Parse(time.RFC3339Nano, sb)
		if errA == nil && errB == nil {
			return ta.Compare(tb)
		}
		return strings.Compare(sa, sb)
	case 3:
		ba, bb := a.(bool), b.(bool)
		switch {
		case ba == bb:
			return 0
		case !ba:
			return -1
		}
		return 1
	}
	return 0
}

func rank(v any) int {
	if v == nil {
		return 0
	}
	if _, ok := toFloat(v); ok {
		return 1
	}
	switch v.(type) {
	case string:
		return 2
	case bool:
		return 3
	}
	return 4
}

func sortDocuments(docs []Document, fields []SortField) {
	if len(fields) == 0 {
		return
	}
	sort.SliceStable(docs, func(i, j int) bool {
		for _, f := range fields {
			a, _ := lookup(docs[i], f.Field)
			b, _ := lookup(docs[j], f.Field)
			c := compareValues(a, b)
			if c == 0 {
				continue
			}
			if f.Desc {
				return c > 0
			}
			return c < 0
		}
		return false
	})
}

func window(docs []Document, skip, limit int) []Document {
	if skip > 0 {
		if skip >= len(docs) {
			return []Document{}
		}
		docs = docs[skip:]
	}
	if limit > 0 && limit < len(docs) {
		docs = docs[:limit]
	}
	return docs
}

// applyFindOptions sorts, skips and limits in place.
func applyFindOptions(docs []Document, opts FindOptions) []Document {
	sortDocuments(docs, opts.Sort)
	return window(docs, opts.Skip, opts.Limit)
}
