package store

import (
	"iter"

	"github.com/jward/rdf2csv/internal/rdf"
)

// MemStore is a slice-backed QuadStore with subject and predicate indexes.
// It is the "memory" backend and the fake used in tests.
type MemStore struct {
	quads       []rdf.Quad
	bySubject   map[rdf.Term][]int
	byPredicate map[string][]int
}

// NewMemStore returns an empty MemStore, optionally seeded with quads.
func NewMemStore(quads ...rdf.Quad) *MemStore {
	m := &MemStore{
		bySubject:   make(map[rdf.Term][]int),
		byPredicate: make(map[string][]int),
	}
	for _, q := range quads {
		_ = m.Add(q)
	}
	return m
}

// Add appends q.
func (m *MemStore) Add(q rdf.Quad) error {
	i := len(m.quads)
	m.quads = append(m.quads, q)
	m.bySubject[q.Subject] = append(m.bySubject[q.Subject], i)
	m.byPredicate[q.Predicate.Value] = append(m.byPredicate[q.Predicate.Value], i)
	return nil
}

// Flush is a no-op; quads are visible as soon as they are added.
func (m *MemStore) Flush() error { return nil }

// Len returns the number of quads.
func (m *MemStore) Len() (int, error) { return len(m.quads), nil }

// Match yields quads matching p in insertion order.
func (m *MemStore) Match(p Pattern) iter.Seq2[rdf.Quad, error] {
	return func(yield func(rdf.Quad, error) bool) {
		candidates := m.candidates(p)
		if candidates == nil {
			for _, q := range m.quads {
				if p.Matches(q) && !yield(q, nil) {
					return
				}
			}
			return
		}
		for _, i := range candidates {
			if q := m.quads[i]; p.Matches(q) && !yield(q, nil) {
				return
			}
		}
	}
}

// candidates returns the smallest index list usable for p, or nil when p
// binds neither subject nor predicate.
func (m *MemStore) candidates(p Pattern) []int {
	var best []int
	found := false
	if p.Subject != nil {
		best, found = m.bySubject[*p.Subject], true
		if best == nil {
			best = []int{}
		}
	}
	if p.Predicate != nil {
		idx := m.byPredicate[p.Predicate.Value]
		if idx == nil {
			idx = []int{}
		}
		if !found || len(idx) < len(best) {
			best, found = idx, true
		}
	}
	if !found {
		return nil
	}
	return best
}
