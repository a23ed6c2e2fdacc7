package extract

import (
	"net/url"
	"strings"

	"github.com/jward/rdf2csv/internal/rdf"
	"github.com/jward/rdf2csv/internal/template"
)

// Row key and value prefixes for blank nodes.
const (
	BlankSubjectPrefix = "_:blank_"
	BlankObjectPrefix  = "blank_node_"
)

// SubjectID returns the record key for a subject term.
func SubjectID(t rdf.Term) string {
	if t.IsBlank() {
		return BlankSubjectPrefix + t.Value
	}
	return t.Value
}

// ObjectValue returns the column value for an object term. Blank nodes get
// a stable synthetic label and are not dereferenced. IRIs give their
// decoded last path segment, or the whole IRI when there is no path.
// Literals give their lexical form.
func ObjectValue(t rdf.Term) string {
	switch t.Kind {
	case rdf.KindBlank:
		return BlankObjectPrefix + t.Value
	case rdf.KindIRI:
		return iriValue(t.Value)
	default:
		return t.Value
	}
}

func iriValue(iri string) string {
	u, err := url.Parse(iri)
	if err != nil {
		return iri
	}
	path := u.EscapedPath()
	if path == "" {
		path = u.Opaque
	}
	if path == "" {
		return iri
	}
	return template.Unescape(path[strings.LastIndexByte(path, '/')+1:])
}

// DatatypeName returns the short datatype name of a literal: the part after
// '#' of its datatype IRI, or the whole IRI when it has no '#'. It returns
// "" for non-literals and for literals without a datatype.
func DatatypeName(t rdf.Term) string {
	dt := t.Datatype
	if !t.IsLiteral() || dt == "" {
		return ""
	}
	if i := strings.LastIndexByte(dt, '#'); i >= 0 {
		return dt[i+1:]
	}
	return dt
}
