/*
Package libraries persists the unconstrained UI lookup lists (§3's
"Library lists"): category -> ordered set of strings, for fields like
office and position that have no fixed enum and are populated by an
administrator rather than hardcoded.
*/
package libraries

import (
	"context"

	"github.com/yowbhergie2/COCCTO2025/cocerr"
	"github.com/yowbhergie2/COCCTO2025/store/docstore"
)

// Collection is the libraries store collection name.
const Collection = "libraries"

// Store persists named string lists via a docstore.Adapter.
type Store struct {
	Adapter docstore.Adapter
}

func NewStore(adapter docstore.Adapter) *Store {
	return &Store{Adapter: adapter}
}

// Get returns category's list, or an empty list if the category has
// never been set.
func (s *Store) Get(ctx context.Context, category string) ([]string, error) {
	doc, err := s.Adapter.Get(ctx, Collection, category)
	if err != nil {
		if cocerr.IsNotFound(err) {
			return []string{}, nil
		}
		return nil, err
	}
	return toStrings(doc["items"]), nil
}

// Set replaces category's list wholesale — the lists are small,
// administrator-curated, and have no per-item identity worth
// preserving across updates.
func (s *Store) Set(ctx context.Context, category string, items []string) error {
	values := make([]any, len(items))
	for i, v := range items {
		values[i] = v
	}
	return s.Adapter.Upsert(ctx, Collection, category, docstore.Document{"items": values})
}

func toStrings(v any) []string {
	raw, ok := v.([]any)
	if !ok {
		return []string{}
	}
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
