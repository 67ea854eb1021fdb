/*
memory.go - In-memory Adapter implementation (for tests)

PURPOSE:
  Fast, dependency-free Adapter backing for domain-package unit tests.
  Mirrors the concrete SQLite adapter's semantics (same error kinds,
  same batch atomicity guarantee) without touching a database file.
*/
package docstore

import (
	"context"
	"sort"
	"sync"

	"github.com/yowbhergie2/COCCTO2025/cocerr"
)

// Memory is a sync.RWMutex-guarded, map-backed Adapter.
type Memory struct {
	mu          sync.RWMutex
	collections map[string]map[string]Document
	maxIDs      map[string]int64
}

func NewMemory() *Memory {
	return &Memory{
		collections: make(map[string]map[string]Document),
		maxIDs:      make(map[string]int64),
	}
}

func (m *Memory) coll(name string) map[string]Document {
	c, ok := m.collections[name]
	if !ok {
		c = make(map[string]Document)
		m.collections[name] = c
	}
	return c
}

func cloneDoc(d Document) Document {
	out := make(Document, len(d))
	for k, v := range d {
		out[k] = v
	}
	return out
}

// withID returns a clone of doc with its id injected under the
// reserved "id" key, matching the SQLite adapter's convention.
func withID(id string, doc Document) Document {
	out := cloneDoc(doc)
	out["id"] = id
	return out
}

func (m *Memory) Get(_ context.Context, collection, id string) (Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	doc, ok := m.coll(collection)[id]
	if !ok {
		return nil, &cocerr.NotFoundError{Collection: collection, ID: id}
	}
	return withID(id, doc), nil
}

func (m *Memory) GetMany(_ context.Context, collection string, max int) ([]Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []Document
	for _, id := range sortedIDs(m.coll(collection)) {
		if len(out) >= max {
			break
		}
		out = append(out, withID(id, m.coll(collection)[id]))
	}
	return out, nil
}

func sortedIDs(c map[string]Document) []string {
	ids := make([]string, 0, len(c))
	for id := range c {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func matchOp(v any, op Op, target any) bool {
	cmp, ok := compare(v, target)
	if !ok {
		return false
	}
	switch op {
	case Eq:
		return cmp == 0
	case Neq:
		return cmp != 0
	case Lt:
		return cmp < 0
	case Lte:
		return cmp <= 0
	case Gt:
		return cmp > 0
	case Gte:
		return cmp >= 0
	}
	return false
}

func (m *Memory) Where(_ context.Context, collection, field string, op Op, value any) ([]Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []Document
	for _, id := range sortedIDs(m.coll(collection)) {
		doc := m.coll(collection)[id]
		if field == "id" {
			if matchOp(id, op, value) {
				out = append(out, withID(id, doc))
			}
			continue
		}
		if matchOp(doc[field], op, value) {
			out = append(out, withID(id, doc))
		}
	}
	return out, nil
}

func (m *Memory) Match(_ context.Context, collection string, criteria Document) ([]Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []Document
	for _, id := range sortedIDs(m.coll(collection)) {
		doc := m.coll(collection)[id]
		all := true
		for k, v := range criteria {
			var field any = doc[k]
			if k == "id" {
				field = id
			}
			if cmp, ok := compare(field, v); !ok || cmp != 0 {
				all = false
				break
			}
		}
		if all {
			out = append(out, withID(id, doc))
		}
	}
	return out, nil
}

func (m *Memory) Create(_ context.Context, collection, id string, fields Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := m.coll(collection)
	if _, exists := c[id]; exists {
		return cocerr.ErrAlreadyExists
	}
	c[id] = cloneDoc(fields)
	return nil
}

func (m *Memory) Update(_ context.Context, collection, id string, patch Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := m.coll(collection)
	doc, ok := c[id]
	if !ok {
		return &cocerr.NotFoundError{Collection: collection, ID: id}
	}
	merged := cloneDoc(doc)
	for k, v := range patch {
		merged[k] = v
	}
	c[id] = merged
	return nil
}

func (m *Memory) Upsert(_ context.Context, collection, id string, fields Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.coll(collection)[id] = cloneDoc(fields)
	return nil
}

func (m *Memory) Delete(_ context.Context, collection, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.coll(collection), id)
	return nil
}

func (m *Memory) DeleteMany(_ context.Context, collection string, ids []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := m.coll(collection)
	for _, id := range ids {
		delete(c, id)
	}
	return nil
}

func (m *Memory) MaxID(_ context.Context, collection, idField string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := collection + "." + idField
	m.maxIDs[key]++
	return m.maxIDs[key], nil
}

func (m *Memory) BatchWrite(_ context.Context, ops []WriteOp) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	// Validate before mutating so the batch is all-or-nothing even
	// though this implementation has no native transaction to roll
	// back on.
	for _, op := range ops {
		if op.Kind == WriteCreate {
			if _, exists := m.coll(op.Collection)[op.ID]; exists {
				return cocerr.ErrAlreadyExists
			}
		}
	}

	for _, op := range ops {
		c := m.coll(op.Collection)
		switch op.Kind {
		case WriteCreate:
			c[op.ID] = cloneDoc(op.Fields)
		case WriteUpsert:
			c[op.ID] = cloneDoc(op.Fields)
		case WriteUpdate:
			merged := cloneDoc(c[op.ID])
			for k, v := range op.Fields {
				merged[k] = v
			}
			c[op.ID] = merged
		case WriteDelete:
			delete(c, op.ID)
		}
	}
	return nil
}
