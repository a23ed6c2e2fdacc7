// Package rdf holds the term and quad model the converter works on, and the
// decoders that turn N-Quads and Turtle documents into it.
package rdf

import (
	"strings"
)

// Kind tags the variant held by a Term.
type Kind uint8

const (
	// KindIRI is a named resource.
	KindIRI Kind = iota + 1
	// KindBlank is an anonymous node scoped to its document.
	KindBlank
	// KindLiteral is a lexical value with an optional datatype or language.
	KindLiteral
)

func (k Kind) String() string {
	switch k {
	case KindIRI:
		return "iri"
	case KindBlank:
		return "blank"
	case KindLiteral:
		return "literal"
	default:
		return "unknown"
	}
}

// Term is an RDF term. Value holds the IRI, the blank node label (without
// the "_:" prefix) or the literal's lexical form. Datatype and Lang only
// apply to literals; a language-tagged literal has an empty Datatype.
type Term struct {
	Kind     Kind
	Value    string
	Datatype string
	Lang     string
}

// IRI returns an IRI term.
func IRI(iri string) Term { return Term{Kind: KindIRI, Value: iri} }

// Blank returns a blank node term with the given label.
func Blank(label string) Term {
	return Term{Kind: KindBlank, Value: strings.TrimPrefix(label, "_:")}
}

// Literal returns a literal term. datatype may be empty.
func Literal(value, datatype string) Term {
	return Term{Kind: KindLiteral, Value: value, Datatype: datatype}
}

// LangLiteral returns a language-tagged literal term.
func LangLiteral(value, lang string) Term {
	return Term{Kind: KindLiteral, Value: value, Lang: lang}
}

func (t Term) IsIRI() bool     { return t.Kind == KindIRI }
func (t Term) IsBlank() bool   { return t.Kind == KindBlank }
func (t Term) IsLiteral() bool { return t.Kind == KindLiteral }

// String renders the term roughly as N-Quads would, for logs and errors.
func (t Term) String() string {
	switch t.Kind {
	case KindIRI:
		return "<" + t.Value + ">"
	case KindBlank:
		return "_:" + t.Value
	case KindLiteral:
		s := `"` + t.Value + `"`
		if t.Lang != "" {
			return s + "@" + t.Lang
		}
		if t.Datatype != "" {
			return s + "^^<" + t.Datatype + ">"
		}
		return s
	default:
		return ""
	}
}

// Quad is a statement with its graph context. Context is empty for the
// default graph.
type Quad struct {
	Subject   Term
	Predicate Term
	Object    Term
	Context   string
}

func (q Quad) String() string {
	s := q.Subject.String() + " " + q.Predicate.String() + " " + q.Object.String()
	if q.Context != "" {
		s += " <" + q.Context + ">"
	}
	return s + " ."
}

// LocalName returns the part of an IRI after the last '#', or after the last
// '/' when there is no '#'.
func LocalName(iri string) string {
	if i := strings.LastIndexByte(iri, '#'); i >= 0 {
		return iri[i+1:]
	}
	if i := strings.LastIndexByte(iri, '/'); i >= 0 {
		return iri[i+1:]
	}
	return iri
}

// Well-known vocabulary.
const (
	RDFType       = "http://www.w3.org/1999/02/22-rdf-syntax-ns#type"
	RDFLangString = "http://www.w3.org/1999/02/22-rdf-syntax-ns#langString"
	XSDString     = "http://www.w3.org/2001/XMLSchema#string"
	FOAFPerson    = "http://xmlns.com/foaf/0.1/Person"
)
