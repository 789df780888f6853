package rules

import (
	"sort"
	"sync"
)

// Registry maps languages to their rule tables. Languages without a table
// resolve to the fallback.
type Registry struct {
	mu       sync.RWMutex
	tables   map[Language]*Table
	fallback *Table
}

func NewRegistry(fallback *Table, tables ...*Table) *Registry {
	r := &Registry{tables: make(map[Language]*Table), fallback: fallback}
	for _, t := range tables {
		r.tables[t.Language] = t
	}
	return r
}

// Register adds or replaces the table for t.Language.
func (r *Registry) Register(t *Table) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tables[t.Language] = t
}

// Lookup resolves a language tag. The bool is false when the tag was not
// recognized and the fallback table was returned.
func (r *Registry) Lookup(tag string) (*Table, bool) {
	lang, known := Normalize(tag)
	r.mu.RLock()
	defer r.mu.RUnlock()
	if t, ok := r.tables[lang]; ok {
		return t, known
	}
	return r.fallback, false
}

// Languages lists the languages with a dedicated table.
func (r *Registry) Languages() []Language {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Language, 0, len(r.tables))
	for l := range r.tables {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

var defaultRegistry = sync.OnceValue(func() *Registry {
	js := javascriptTable()
	ts := extend(js, TypeScript, nil, nil, nil)
	return NewRegistry(genericTable(), js, ts, reactTable(js), pythonTable(), javaTable())
})

// Default returns the shared registry with the built-in tables.
func Default() *Registry {
	return defaultRegistry()
}
