// Package mapping interprets an RML mapping graph: it finds the subject
// template and term type, the predicates whose object maps declare a
// templated datatype, and the object template of each predicate.
package mapping

import (
	"strings"

	"go.uber.org/zap"

	"github.com/jward/rdf2csv/internal/errors"
	"github.com/jward/rdf2csv/internal/logger"
	"github.com/jward/rdf2csv/internal/rdf"
	"github.com/jward/rdf2csv/internal/store"
	"github.com/jward/rdf2csv/internal/template"
)

// Vocabulary namespaces.
const (
	RMLNamespace   = "http://w3id.org/rml/"
	R2RMLNamespace = "http://www.w3.org/ns/r2rml#"
)

// DefaultTermType is reported when the subject map declares no term type.
const DefaultTermType = "DefaultTermType"

// Interpreter answers questions about a mapping graph. It only reads from
// the store. Results that do not depend on arguments are computed once.
type Interpreter struct {
	mapping    store.QuadStore
	namespaces []string
	log        *zap.SugaredLogger

	poms            []predicateObjectMap
	pomsLoaded      bool
	objectTemplates map[string]*template.Pattern
}

// Option configures an Interpreter.
type Option func(*Interpreter)

// WithNamespaces sets the vocabulary namespaces tried for every mapping
// term, in order. The default is the RML core namespace.
func WithNamespaces(ns ...string) Option {
	return func(in *Interpreter) {
		if len(ns) > 0 {
			in.namespaces = ns
		}
	}
}

// WithLogger sets the logger used for diagnostics.
func WithLogger(l *zap.SugaredLogger) Option {
	return func(in *Interpreter) {
		if l != nil {
			in.log = l
		}
	}
}

// New returns an Interpreter over the mapping graph.
func New(mapping store.QuadStore, opts ...Option) *Interpreter {
	in := &Interpreter{
		mapping:         mapping,
		namespaces:      []string{RMLNamespace},
		log:             logger.Nop(),
		objectTemplates: make(map[string]*template.Pattern),
	}
	for _, opt := range opts {
		opt(in)
	}
	return in
}

// SubjectMap is the resolved subject map of the mapping.
type SubjectMap struct {
	Template string
	Pattern  *template.Pattern
	TermType string
	// Classes lists the subject map's class declarations.
	Classes []string
}

// IsBlankNode reports whether subjects are generated as blank nodes.
func (sm *SubjectMap) IsBlankNode() bool { return strings.Contains(sm.TermType, "BlankNode") }

// IsIRI reports whether subjects are generated as IRIs.
func (sm *SubjectMap) IsIRI() bool { return strings.Contains(sm.TermType, "IRI") }

// Columns returns the subject template's placeholders as column names.
func (sm *SubjectMap) Columns() []string {
	names := sm.Pattern.Placeholders()
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = template.ColumnName(n)
	}
	return out
}

type subjectRow struct {
	template string
	termType string
	classes  []string
}

// SubjectTemplate finds the subject template and its term type. The term
// type is taken from the subject map, or else from its graph map.
//
// It fails with errors.ErrMapping when no subject template exists, when the
// template is blank, or when the mapping declares more than one distinct
// subject template, and with errors.ErrLiteralSubject when the term type is
// a literal type.
func (in *Interpreter) SubjectTemplate() (*SubjectMap, error) {
	subjectMaps, err := in.valuesOf("subjectMap")
	if err != nil {
		return nil, err
	}
	var rows []subjectRow
	for _, sm := range subjectMaps {
		templates, err := in.objects(sm, "template")
		if err != nil {
			return nil, err
		}
		if len(templates) == 0 {
			continue
		}
		termTypes, err := in.termTypes(sm)
		if err != nil {
			return nil, err
		}
		classes, err := in.objects(sm, "class")
		if err != nil {
			return nil, err
		}
		termType := ""
		if len(termTypes) > 0 {
			termType = termTypes[0].Value
		}
		for _, tpl := range templates {
			rows = append(rows, subjectRow{template: tpl.Value, termType: termType, classes: values(classes)})
		}
	}

	if len(rows) == 0 {
		return nil, errors.Mappingf("no subject template found in the RML mapping")
	}

	distinct := distinctTemplates(rows)
	if len(distinct) > 1 {
		err := errors.Mappingf("found %d distinct subject templates; exactly one is supported", len(distinct))
		return nil, errors.WithDetailf(err, "templates: %s", strings.Join(distinct, ", "))
	}

	row := rows[0]
	for _, r := range rows {
		if r.termType != "" {
			row.termType = r.termType
			break
		}
	}
	if strings.TrimSpace(row.template) == "" {
		return nil, errors.Mappingf("no subject template found in the RML mapping: template is blank")
	}

	sm := &SubjectMap{
		Template: row.template,
		Pattern:  template.Parse(row.template),
		TermType: row.termType,
		Classes:  row.classes,
	}
	if sm.TermType == "" {
		sm.TermType = DefaultTermType
	}

	in.log.Debugw("subject term type", "term_type", sm.TermType)
	if sm.IsBlankNode() {
		in.log.Debugw("blank node subjects; fields are read from each node's own statements")
	}
	if strings.Contains(sm.TermType, "Literal") {
		err := errors.Mark(errors.Newf("subject term type %s is a literal, which is not allowed", sm.TermType), errors.ErrLiteralSubject)
		return nil, errors.WithHint(err, "subject maps must produce IRIs or blank nodes")
	}
	in.log.Debugw("subject template", "template", sm.Template, "columns", sm.Columns())
	return sm, nil
}

func (in *Interpreter) termTypes(sm rdf.Term) ([]rdf.Term, error) {
	direct, err := in.objects(sm, "termType")
	if err != nil {
		return nil, err
	}
	graphMaps, err := in.objects(sm, "graphMap")
	if err != nil {
		return nil, err
	}
	for _, gm := range graphMaps {
		viaGraph, err := in.objects(gm, "termType")
		if err != nil {
			return nil, err
		}
		direct = append(direct, viaGraph...)
	}
	return direct, nil
}

func distinctTemplates(rows []subjectRow) []string {
	seen := make(map[string]bool)
	var out []string
	for _, r := range rows {
		if !seen[r.template] {
			seen[r.template] = true
			out = append(out, r.template)
		}
	}
	return out
}

// DatatypeMap maps predicate local names to the datatype name declared by
// their object map's datatype map template. The name is the part after '#'
// when the template has one, else the whole template. Zero results give an
// empty map.
func (in *Interpreter) DatatypeMap() (map[string]string, error) {
	poms, err := in.predicateObjectMaps()
	if err != nil {
		return nil, err
	}
	out := make(map[string]string)
	for _, pom := range poms {
		for _, om := range pom.objectMaps {
			for _, dt := range om.datatypeTemplates {
				name := dt
				if i := strings.LastIndexByte(dt, '#'); i >= 0 {
					name = dt[i+1:]
				}
				for _, p := range pom.predicates {
					out[rdf.LocalName(p)] = name
				}
			}
		}
	}
	in.log.Debugw("datatype map", "entries", out)
	return out, nil
}

// ObjectTemplate returns the object template declared for predicate, if
// any predicate-object map for it has one.
func (in *Interpreter) ObjectTemplate(predicate string) (*template.Pattern, bool, error) {
	if p, ok := in.objectTemplates[predicate]; ok {
		return p, p != nil, nil
	}
	poms, err := in.predicateObjectMaps()
	if err != nil {
		return nil, false, err
	}
	var found *template.Pattern
search:
	for _, pom := range poms {
		if !pom.hasPredicate(predicate) {
			continue
		}
		for _, om := range pom.objectMaps {
			if len(om.templates) > 0 {
				found = template.Parse(om.templates[0])
				break search
			}
		}
	}
	in.objectTemplates[predicate] = found
	return found, found != nil, nil
}

// KnownSubjects returns the IRIs in data typed with one of the subject
// map's classes, or with foaf:Person when it declares none. The result is
// diagnostic; extraction does not depend on it.
func (in *Interpreter) KnownSubjects(data store.QuadStore, sm *SubjectMap) ([]string, error) {
	classes := sm.Classes
	if len(classes) == 0 {
		classes = []string{rdf.FOAFPerson}
	}
	seen := make(map[string]bool)
	var out []string
	for _, class := range classes {
		quads, err := store.All(data, store.Pattern{
			Predicate: store.Ref(rdf.IRI(rdf.RDFType)),
			Object:    store.Ref(rdf.IRI(class)),
		})
		if err != nil {
			return nil, errors.Wrap(err, "known subjects")
		}
		for _, q := range quads {
			if q.Subject.IsIRI() && !seen[q.Subject.Value] {
				seen[q.Subject.Value] = true
				out = append(out, q.Subject.Value)
			}
		}
	}
	return out, nil
}
