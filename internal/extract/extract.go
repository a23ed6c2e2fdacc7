// Package extract rebuilds per-subject records from a materialized graph.
// It walks every quad once, grows the column set as predicates, language
// tags and template placeholders are discovered, and backfills early
// records with the columns found later.
package extract

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/jward/rdf2csv/internal/errors"
	"github.com/jward/rdf2csv/internal/logger"
	"github.com/jward/rdf2csv/internal/mapping"
	"github.com/jward/rdf2csv/internal/rdf"
	"github.com/jward/rdf2csv/internal/store"
	"github.com/jward/rdf2csv/internal/template"
)

// Mapping is the part of the mapping interpreter the extractor consults
// while scanning.
type Mapping interface {
	DatatypeMap() (map[string]string, error)
	ObjectTemplate(predicate string) (*template.Pattern, bool, error)
}

var _ Mapping = (*mapping.Interpreter)(nil)

// Record holds the column values of one subject.
type Record struct {
	Key    string
	Values map[string]string
}

// Get returns the value of column, or "" when unset.
func (r *Record) Get(column string) string { return r.Values[column] }

// Stats summarizes one extraction.
type Stats struct {
	Quads   int `json:"quads"`
	Records int `json:"records"`
	Columns int `json:"columns"`
	// Warnings counts non-fatal mismatches: subject IRIs that do not fit
	// the subject template and object values with fewer parts than their
	// template has placeholders.
	Warnings int `json:"warnings"`
}

// Result is the outcome of an extraction. Records are in first-seen order
// and each has a value for every column.
type Result struct {
	Columns []string
	Records []*Record
	Stats   Stats
}

// Extractor turns the quads of a data graph into records.
type Extractor struct {
	data    store.QuadStore
	mapping Mapping
	subject *mapping.SubjectMap
	log     *zap.SugaredLogger
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithLogger sets the logger used for diagnostics.
func WithLogger(l *zap.SugaredLogger) Option {
	return func(x *Extractor) {
		if l != nil {
			x.log = l
		}
	}
}

// New returns an Extractor over data using the given mapping and subject
// map.
func New(data store.QuadStore, m Mapping, subject *mapping.SubjectMap, opts ...Option) *Extractor {
	x := &Extractor{data: data, mapping: m, subject: subject, log: logger.Nop()}
	for _, opt := range opts {
		opt(x)
	}
	return x
}

// run holds the state of a single pass so an Extractor can be reused.
type run struct {
	*Extractor
	datatypes map[string]string
	columns   *ColumnSet
	records   map[string]*Record
	order     []*Record
	bindings  map[string][]template.Binding
	stats     Stats
}

// Extract scans every quad of the data graph and returns the records.
func (x *Extractor) Extract(ctx context.Context) (*Result, error) {
	datatypes, err := x.mapping.DatatypeMap()
	if err != nil {
		return nil, errors.Wrap(err, "datatype map")
	}
	r := &run{
		Extractor: x,
		datatypes: datatypes,
		columns:   NewColumnSet(x.subject.Columns()...),
		records:   make(map[string]*Record),
		bindings:  make(map[string][]template.Binding),
	}

	for q, err := range x.data.Match(store.Pattern{}) {
		if err != nil {
			return nil, errors.Wrap(err, "scan quads")
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := r.process(q); err != nil {
			return nil, errors.Wrapf(err, "quad %s", q)
		}
		r.stats.Quads++
	}

	columns := r.columns.Names()
	for _, rec := range r.order {
		for _, c := range columns {
			if _, ok := rec.Values[c]; !ok {
				rec.Values[c] = ""
			}
		}
	}
	r.stats.Records = len(r.order)
	r.stats.Columns = len(columns)
	x.log.Debugw("extraction complete",
		"quads", r.stats.Quads,
		"records", r.stats.Records,
		"columns", r.stats.Columns,
		"warnings", r.stats.Warnings)
	return &Result{Columns: columns, Records: r.order, Stats: r.stats}, nil
}

func (r *run) process(q rdf.Quad) error {
	subjectID := SubjectID(q.Subject)
	short := rdf.LocalName(q.Predicate.Value)
	value := ObjectValue(q.Object)
	rec := r.record(subjectID)

	if declared, ok := r.datatypes[short]; ok {
		name := DatatypeName(q.Object)
		if name == "" {
			name = declared
		}
		r.set(rec, short+"_datatype", name)
	}

	tmpl, hasTemplate, err := r.mapping.ObjectTemplate(q.Predicate.Value)
	if err != nil {
		return err
	}

	switch {
	case q.Object.IsLiteral() && q.Object.Lang != "":
		r.set(rec, short+"_"+q.Object.Lang, value)
	case !hasTemplate:
		r.set(rec, short, value)
	}

	if err := r.bindSubject(q.Subject, subjectID, rec); err != nil {
		return err
	}

	if hasTemplate {
		r.split(rec, tmpl, value)
	}
	return nil
}

// record returns the record for key, creating it with every column known
// so far set to "".
func (r *run) record(key string) *Record {
	if rec, ok := r.records[key]; ok {
		return rec
	}
	rec := &Record{Key: key, Values: make(map[string]string, r.columns.Len())}
	for _, c := range r.columns.Names() {
		rec.Values[c] = ""
	}
	r.records[key] = rec
	r.order = append(r.order, rec)
	return rec
}

func (r *run) set(rec *Record, column, value string) {
	rec.Values[r.columns.Ensure(column)] = value
}

// bindSubject writes the subject template's placeholder values onto rec.
// IRIs are matched against the template. Blank nodes have no IRI to match,
// so each placeholder takes the value of the node's own predicate with the
// same local name. Bindings are computed once per subject.
func (r *run) bindSubject(subject rdf.Term, subjectID string, rec *Record) error {
	if !r.subject.Pattern.HasPlaceholders() {
		return nil
	}
	bindings, ok := r.bindings[subjectID]
	if !ok {
		var err error
		if subject.IsBlank() {
			bindings, err = r.bindBlank(subject)
			if err != nil {
				return err
			}
		} else {
			var matched bool
			bindings, matched = r.subject.Pattern.Bind(subject.Value)
			if !matched {
				r.stats.Warnings++
				r.log.Debugw("subject does not match template",
					"subject", subject.Value,
					"template", r.subject.Template)
			}
		}
		r.bindings[subjectID] = bindings
	}
	for _, b := range bindings {
		r.set(rec, template.ColumnName(b.Name), b.Value)
	}
	return nil
}

func (r *run) bindBlank(subject rdf.Term) ([]template.Binding, error) {
	quads, err := store.All(r.data, store.Pattern{Subject: store.Ref(subject)})
	if err != nil {
		return nil, errors.Wrapf(err, "describe blank node %s", subject)
	}
	var out []template.Binding
	for _, name := range r.subject.Pattern.Placeholders() {
		for _, q := range quads {
			if strings.EqualFold(name, rdf.LocalName(q.Predicate.Value)) {
				out = append(out, template.Binding{Name: name, Value: ObjectValue(q.Object)})
			}
		}
	}
	return out, nil
}

// split assigns whitespace-separated parts of value to the template's
// placeholders by position. Placeholders without a part keep their value.
func (r *run) split(rec *Record, tmpl *template.Pattern, value string) {
	names := tmpl.Placeholders()
	parts := strings.Fields(value)
	if len(parts) < len(names) {
		r.stats.Warnings++
		r.log.Debugw("object value has fewer parts than placeholders",
			"subject", rec.Key,
			"template", tmpl.Source(),
			"value", value)
	}
	for i, name := range names {
		column := r.columns.Ensure(template.ColumnName(name))
		if i < len(parts) {
			rec.Values[column] = parts[i]
		} else if _, ok := rec.Values[column]; !ok {
			rec.Values[column] = ""
		}
	}
}
