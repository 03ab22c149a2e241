// Package catalog holds the dealer price list: starting prices per brand,
// model and engine variant.
//
// A Catalog is immutable once built. Code that needs to pick up a new price
// list holds a *Store and calls Current for every lookup; Reload swaps in a
// fresh Catalog atomically so readers never see a half-loaded list.
package catalog

import (
	"errors"
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/Jurgenvdlecq/seatemail/model"
)

var (
	// ErrNotFound is returned when no entry matches brand, model and engine.
	ErrNotFound = errors.New("price not found in catalog")
	// ErrIncompleteQuery is returned when brand, model or engine is blank.
	ErrIncompleteQuery = errors.New("brand, model and engine are all required")
)

// Catalog is an ordered, read-only list of price entries.
type Catalog struct {
	entries []model.CatalogEntry
}

// New builds a catalog from entries. The slice is copied.
func New(entries []model.CatalogEntry) *Catalog {
	cp := make([]model.CatalogEntry, len(entries))
	copy(cp, entries)
	return &Catalog{entries: cp}
}

// Len returns the number of entries.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.entries)
}

// Entries returns a copy of all entries in catalog order.
func (c *Catalog) Entries() []model.CatalogEntry {
	if c == nil {
		return nil
	}
	cp := make([]model.CatalogEntry, len(c.entries))
	copy(cp, c.entries)
	return cp
}

// Lookup finds the first entry whose brand, model and engine equal the
// arguments, ignoring case and surrounding whitespace.
func (c *Catalog) Lookup(brand, modelName, engine string) (model.CatalogEntry, error) {
	brand, modelName, engine = strings.TrimSpace(brand), strings.TrimSpace(modelName), strings.TrimSpace(engine)
	if brand == "" || modelName == "" || engine == "" {
		return model.CatalogEntry{}, ErrIncompleteQuery
	}
	if c == nil {
		return model.CatalogEntry{}, ErrNotFound
	}

	for _, e := range c.entries {
		if strings.EqualFold(e.Brand, brand) &&
			strings.EqualFold(e.Model, modelName) &&
			strings.EqualFold(e.Engine, engine) {
			return e, nil
		}
	}
	return model.CatalogEntry{}, ErrNotFound
}

// Suggestion is a near miss for a failed lookup.
type Suggestion struct {
	Entry    model.CatalogEntry `json:"entry"`
	Distance int                `json:"distance"`
}

// Suggest ranks entries that look like the query, closest first. An entry
// qualifies when the query is a fuzzy subsequence of its "brand model engine"
// key or lies within a small edit distance of it.
func (c *Catalog) Suggest(brand, modelName, engine string, limit int) []Suggestion {
	if c == nil || limit <= 0 {
		return nil
	}

	query := strings.ToLower(joinKey(brand, modelName, engine))
	if query == "" {
		return nil
	}
	maxDistance := len(query) / 4
	if maxDistance < 3 {
		maxDistance = 3
	}

	var out []Suggestion
	for _, e := range c.entries {
		key := strings.ToLower(joinKey(e.Brand, e.Model, e.Engine))
		dist := fuzzy.LevenshteinDistance(query, key)
		if dist <= maxDistance || fuzzy.MatchNormalizedFold(query, key) {
			out = append(out, Suggestion{Entry: e, Distance: dist})
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Distance < out[j].Distance
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

func joinKey(parts ...string) string {
	fields := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			fields = append(fields, p)
		}
	}
	return strings.Join(fields, " ")
}
