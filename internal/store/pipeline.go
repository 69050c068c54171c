package store

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// splitLeadingMatch pulls the first $match stage out so implementations can
// push it down to their native filter.
func splitLeadingMatch(p Pipeline) (Filter, Pipeline, error) {
	if len(p) == 0 {
		return Filter{}, p, nil
	}
	spec, ok := p[0]["$match"]
	if !ok || len(p[0]) != 1 {
		return Filter{}, p, nil
	}
	m, ok := asMap(spec)
	if !ok {
		return nil, nil, validationErrorf("$match expects an object")
	}
	f, err := normalize(m)
	if err != nil {
		return nil, nil, err
	}
	return Filter(f), p[1:], nil
}

// runPipeline evaluates the supported aggregation stages in memory.
func runPipeline(docs []Document, p Pipeline) ([]Document, error) {
	out := docs
	for i, stage := range p {
		if len(stage) != 1 {
			return nil, validationErrorf("pipeline stage %d must contain exactly one operator", i)
		}
		for op, spec := range stage {
			var err error
			switch op {
			case "$match":
				out, err = matchStage(out, spec)
			case "$sort":
				err = sortStage(out, spec)
			case "$skip":
				var n int
				if n, err = intSpec(op, spec); err == nil {
					out = window(out, n, 0)
				}
			case "$limit":
				var n int
				if n, err = intSpec(op, spec); err == nil {
					out = window(out, 0, n)
				}
			case "$project":
				out, err = projectStage(out, spec)
			case "$group":
				out, err = groupStage(out, spec)
			case "$count":
				name, ok := spec.(string)
				if !ok || name == "" {
					return nil, validationErrorf("$count expects a field name")
				}
				out = []Document{{name: float64(len(out))}}
			default:
				return nil, validationErrorf("unsupported pipeline stage %q", op)
			}
			if err != nil {
				return nil, err
			}
		}
	}
	return out, nil
}

func matchStage(docs []Document, spec any) ([]Document, error) {
	m, ok := asMap(spec)
	if !ok {
		return nil, validationErrorf("$match expects an object")
	}
	f, err := normalize(m)
	if err != nil {
		return nil, err
	}
	out := make([]Document, 0, len(docs))
	for _, d := range docs {
		if matches(d, Filter(f)) {
			out = append(out, d)
		}
	}
	return out, nil
}

// ParseSort converts {"field": 1|-1} into sort fields ordered by key name.
func ParseSort(spec map[string]any) ([]SortField, error) {
	keys := make([]string, 0, len(spec))
	for k := range spec {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fields := make([]SortField, 0, len(keys))
	for _, k := range keys {
		dir, ok := toFloat(spec[k])
		if !ok || (dir != 1 && dir != -1) {
			return nil, validationErrorf("sort direction for %q must be 1 or -1", k)
		}
		fields = append(fields, SortField{Field: k, Desc: dir < 0})
	}
	return fields, nil
}

func sortStage(docs []Document, spec any) error {
	m, ok := asMap(spec)
	if !ok {
		return validationErrorf("$sort expects an object")
	}
	fields, err := ParseSort(m)
	if err != nil {
		return err
	}
	sortDocuments(docs, fields)
	return nil
}

func intSpec(op string, spec any) (int, error) {
	f, ok := toFloat(spec)
	if !ok || f < 0 {
		return 0, validationErrorf("%s expects a non-negative number", op)
	}
	return int(f), nil
}

func projectStage(docs []Document, spec any) ([]Document, error) {
	m, ok := asMap(spec)
	if !ok {
		return nil, validationErrorf("$project expects an object")
	}
	includeID := true
	var fields []string
	for k, v := range m {
		on, isNum := toFloat(v)
		b, isBool := v.(bool)
		include := (isNum && on != 0) || (isBool && b)
		if k == IDField {
			includeID = include
			continue
		}
		if !include {
			return nil, validationErrorf("$project supports inclusion only (field %q)", k)
		}
		fields = append(fields, k)
	}

	out := make([]Document, 0, len(docs))
	for _, d := range docs {
		p := Document{}
		if includeID {
			if id, ok := d[IDField]; ok {
				p[IDField] = id
			}
		}
		for _, f := range fields {
			if v, ok := lookup(d, f); ok {
				p[f] = cloneValue(v)
			}
		}
		out = append(out, p)
	}
	return out, nil
}

type accumulator struct {
	name  string
	op    string
	arg   any
	sum   float64
	count int
	value any
	set   bool
	items []any
}

func (a *accumulator) add(d Document) {
	v := resolve(d, a.arg)
	switch a.op {
	case "$sum":
		if f, ok := toFloat(v); ok {
			a.sum += f
		}
	case "$avg":
		if f, ok := toFloat(v); ok {
			a.sum += f
			a.count++
		}
	case "$min":
		if v != nil && (!a.set || compareValues(v, a.value) < 0) {
			a.value, a.set = v, true
		}
	case "$max":
		if v != nil && (!a.set || compareValues(v, a.value) > 0) {
			a.value, a.set = v, true
		}
	case "$first":
		if !a.set {
			a.value, a.set = v, true
		}
	case "$push":
		a.items = append(a.items, cloneValue(v))
	}
}

func (a *accumulator) result() any {
	switch a.op {
	case "$sum":
		return a.sum
	case "$avg":
		if a.count == 0 {
			return nil
		}
		return a.sum / float64(a.count)
	case "$push":
		if a.items == nil {
			return []any{}
		}
		return a.items
	default:
		return a.value
	}
}

// resolve evaluates "$field" references; any other value is a literal.
func resolve(d Document, arg any) any {
	if s, ok := arg.(string); ok && strings.HasPrefix(s, "$") {
		v, _ := lookup(d, strings.TrimPrefix(s, "$"))
		return v
	}
	return arg
}

func groupStage(docs []Document, spec any) ([]Document, error) {
	m, ok := asMap(spec)
	if !ok {
		return nil, validationErrorf("$group expects an object")
	}
	keySpec, ok := m[IDField]
	if !ok {
		return nil, validationErrorf("$group requires an _id expression")
	}

	type protoAcc struct {
		name string
		op   string
		arg  any
	}
	var protos []protoAcc
	names := make([]string, 0, len(m))
	for k := range m {
		if k != IDField {
			names = append(names, k)
		}
	}
	sort.Strings(names)
	for _, name := range names {
		accSpec, ok := asMap(m[name])
		if !ok || len(accSpec) != 1 {
			return nil, validationErrorf("$group field %q needs a single accumulator", name)
		}
		for op, arg := range accSpec {
			switch op {
			case "$sum", "$avg", "$min", "$max", "$first", "$push":
			default:
				return nil, validationErrorf("unsupported accumulator %q", op)
			}
			protos = append(protos, protoAcc{name: name, op: op, arg: arg})
		}
	}

	type group struct {
		key  any
		accs []*accumulator
	}
	var groups []*group
	index := map[string]*group{}

	for _, d := range docs {
		key := resolve(d, keySpec)
		k := groupKey(key)
		g, ok := index[k]
		if !ok {
			g = &group{key: key}
			for _, p := range protos {
				g.accs = append(g.accs, &accumulator{name: p.name, op: p.op, arg: p.arg})
			}
			index[k] = g
			groups = append(groups, g)
		}
		for _, a := range g.accs {
			a.add(d)
		}
	}

	out := make([]Document, 0, len(groups))
	for _, g := range groups {
		d := Document{IDField: g.key}
		for _, a := range g.accs {
			d[a.name] = a.result()
		}
		out = append(out, d)
	}
	return out, nil
}

func groupKey(v any) string {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(raw)
}
