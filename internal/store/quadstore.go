package store

import (
	"iter"

	"github.com/jward/rdf2csv/internal/rdf"
)

// QuadStore is the read side of a loaded graph. Match yields quads in load
// order; a nil Pattern field matches anything.
type QuadStore interface {
	Match(p Pattern) iter.Seq2[rdf.Quad, error]
	Len() (int, error)
}

// LoadableStore is a QuadStore that decoders can write into.
type LoadableStore interface {
	QuadStore
	rdf.Sink
	// Flush makes buffered quads visible to Match.
	Flush() error
}

// Compile-time checks.
var (
	_ LoadableStore = (*Dataset)(nil)
	_ LoadableStore = (*MemStore)(nil)
)

// Pattern selects quads by position.
type Pattern struct {
	Subject   *rdf.Term
	Predicate *rdf.Term
	Object    *rdf.Term
	Context   *string
}

// Ref returns a pointer to t for use in a Pattern.
func Ref(t rdf.Term) *rdf.Term { return &t }

// Matches reports whether q satisfies every bound position of p.
func (p Pattern) Matches(q rdf.Quad) bool {
	if p.Subject != nil && *p.Subject != q.Subject {
		return false
	}
	if p.Predicate != nil && *p.Predicate != q.Predicate {
		return false
	}
	if p.Object != nil && *p.Object != q.Object {
		return false
	}
	if p.Context != nil && *p.Context != q.Context {
		return false
	}
	return true
}

// All collects every quad matching p. Convenient for small result sets such
// as mapping lookups.
func All(s QuadStore, p Pattern) ([]rdf.Quad, error) {
	var out []rdf.Quad
	for q, err := range s.Match(p) {
		if err != nil {
			return nil, err
		}
		out = append(out, q)
	}
	return out, nil
}

// Objects returns the objects of every quad with the given subject and
// predicate, in load order.
func Objects(s QuadStore, subject, predicate rdf.Term) ([]rdf.Term, error) {
	quads, err := All(s, Pattern{Subject: &subject, Predicate: &predicate})
	if err != nil {
		return nil, err
	}
	out := make([]rdf.Term, len(quads))
	for i, q := range quads {
		out[i] = q.Object
	}
	return out, nil
}
