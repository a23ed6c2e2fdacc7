package extract

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jward/rdf2csv/internal/mapping"
	"github.com/jward/rdf2csv/internal/rdf"
	"github.com/jward/rdf2csv/internal/store"
	"github.com/jward/rdf2csv/internal/template"
)

const (
	ex     = "http://ex.com/"
	xsdInt = "http://www.w3.org/2001/XMLSchema#integer"
)

type fakeMapping struct {
	datatypes map[string]string
	templates map[string]string
}

func (f fakeMapping) DatatypeMap() (map[string]string, error) {
	out := make(map[string]string, len(f.datatypes))
	for k, v := range f.datatypes {
		out[k] = v
	}
	return out, nil
}

func (f fakeMapping) ObjectTemplate(predicate string) (*template.Pattern, bool, error) {
	t, ok := f.templates[predicate]
	if !ok {
		return nil, false, nil
	}
	return template.Parse(t), true, nil
}

func subjectMap(tmpl string) *mapping.SubjectMap {
	return &mapping.SubjectMap{Template: tmpl, Pattern: template.Parse(tmpl), TermType: mapping.DefaultTermType}
}

func quad(s rdf.Term, p string, o rdf.Term) rdf.Quad {
	return rdf.Quad{Subject: s, Predicate: rdf.IRI(ex + p), Object: o}
}

func extract(t *testing.T, data store.QuadStore, m Mapping, tmpl string) *Result {
	t.Helper()
	res, err := New(data, m, subjectMap(tmpl)).Extract(context.Background())
	require.NoError(t, err)
	return res
}

func values(res *Result) []map[string]string {
	out := make([]map[string]string, len(res.Records))
	for i, r := range res.Records {
		out[i] = r.Values
	}
	return out
}

// =============================================================================
// Scenarios
// =============================================================================

func TestExtract_IRISubject(t *testing.T) {
	t.Parallel()
	data := store.NewMemStore(
		quad(rdf.IRI(ex+"person/42"), "name", rdf.Literal("Alice", "")),
	)

	res := extract(t, data, fakeMapping{}, ex+"person/{id}")

	assert.Equal(t, []string{"id", "name"}, res.Columns)
	require.Len(t, res.Records, 1)
	assert.Equal(t, ex+"person/42", res.Records[0].Key)
	assert.Equal(t, map[string]string{"id": "42", "name": "Alice"}, res.Records[0].Values)
	assert.Equal(t, Stats{Quads: 1, Records: 1, Columns: 2}, res.Stats)
}

func TestExtract_LanguageTag(t *testing.T) {
	t.Parallel()
	alice := rdf.IRI(ex + "person/1")
	data := store.NewMemStore(
		quad(alice, "name", rdf.LangLiteral("Alice", "en")),
		quad(alice, "name", rdf.Literal("Alicia", "")),
	)

	res := extract(t, data, fakeMapping{}, ex+"person/{id}")

	assert.Equal(t, []string{"id", "name_en", "name"}, res.Columns)
	assert.Equal(t, []map[string]string{{"id": "1", "name_en": "Alice", "name": "Alicia"}}, values(res))
}

func TestExtract_LanguageOnly(t *testing.T) {
	t.Parallel()
	data := store.NewMemStore(
		quad(rdf.IRI(ex+"person/1"), "name", rdf.LangLiteral("Alice", "en")),
	)

	res := extract(t, data, fakeMapping{}, ex+"person/{id}")

	assert.Equal(t, []string{"id", "name_en"}, res.Columns)
	assert.NotContains(t, res.Records[0].Values, "name")
}

func TestExtract_ObjectTemplateSplit(t *testing.T) {
	t.Parallel()
	data := store.NewMemStore(
		quad(rdf.IRI(ex+"person/1"), "address", rdf.Literal("Main Berlin", "")),
	)
	m := fakeMapping{templates: map[string]string{ex + "address": "{street} {city}"}}

	res := extract(t, data, m, ex+"person/{id}")

	assert.Equal(t, []string{"id", "street", "city"}, res.Columns)
	assert.Equal(t, []map[string]string{{"id": "1", "street": "Main", "city": "Berlin"}}, values(res))
}

func TestExtract_ObjectTemplateFewerParts(t *testing.T) {
	t.Parallel()
	data := store.NewMemStore(
		quad(rdf.IRI(ex+"person/1"), "address", rdf.Literal("Main", "")),
	)
	m := fakeMapping{templates: map[string]string{ex + "address": "{street} {city}"}}

	res := extract(t, data, m, ex+"person/{id}")

	assert.Equal(t, map[string]string{"id": "1", "street": "Main", "city": ""}, res.Records[0].Values)
	assert.Equal(t, 1, res.Stats.Warnings)
}

func TestExtract_NoQuads(t *testing.T) {
	t.Parallel()
	res := extract(t, store.NewMemStore(), fakeMapping{}, ex+"person/{id}/{Name}")

	assert.Equal(t, []string{"id", "Name"}, res.Columns)
	assert.Empty(t, res.Records)
}

func TestExtract_CaseInsensitiveColumns(t *testing.T) {
	t.Parallel()
	data := store.NewMemStore(
		quad(rdf.IRI(ex+"person/7"), "id", rdf.Literal("7", "")),
		quad(rdf.IRI(ex+"person/7"), "Name", rdf.Literal("Bob", "")),
		quad(rdf.IRI(ex+"person/7"), "name", rdf.Literal("Robert", "")),
	)

	res := extract(t, data, fakeMapping{}, ex+"person/{ID}")

	assert.Equal(t, []string{"ID", "Name"}, res.Columns)
	assert.Equal(t, map[string]string{"ID": "7", "Name": "Robert"}, res.Records[0].Values)
}

func TestExtract_Backfill(t *testing.T) {
	t.Parallel()
	data := store.NewMemStore(
		quad(rdf.IRI(ex+"person/1"), "name", rdf.Literal("Alice", "")),
		quad(rdf.IRI(ex+"person/2"), "age", rdf.Literal("30", xsdInt)),
		quad(rdf.IRI(ex+"person/1"), "email", rdf.Literal("a@ex.com", "")),
	)

	res := extract(t, data, fakeMapping{}, ex+"person/{id}")

	assert.Equal(t, []string{"id", "name", "age", "email"}, res.Columns)
	assert.Equal(t, []map[string]string{
		{"id": "1", "name": "Alice", "age": "", "email": "a@ex.com"},
		{"id": "2", "name": "", "age": "30", "email": ""},
	}, values(res))
	for _, rec := range res.Records {
		assert.Len(t, rec.Values, len(res.Columns))
	}
}

func TestExtract_DatatypeColumn(t *testing.T) {
	t.Parallel()
	data := store.NewMemStore(
		quad(rdf.IRI(ex+"person/1"), "age", rdf.Literal("30", xsdInt)),
		quad(rdf.IRI(ex+"person/2"), "age", rdf.LangLiteral("thirty", "en")),
		quad(rdf.IRI(ex+"person/3"), "age", rdf.Literal("31", ex+"dt/years")),
	)
	m := fakeMapping{datatypes: map[string]string{"age": "decimal"}}

	res := extract(t, data, m, ex+"person/{id}")

	assert.Equal(t, []string{"id", "age_datatype", "age", "age_en"}, res.Columns)
	assert.Equal(t, "integer", res.Records[0].Get("age_datatype"))
	assert.Equal(t, "decimal", res.Records[1].Get("age_datatype"))
	assert.Equal(t, ex+"dt/years", res.Records[2].Get("age_datatype"))
}

func TestExtract_ObjectKinds(t *testing.T) {
	t.Parallel()
	data := store.NewMemStore(
		quad(rdf.IRI(ex+"person/1"), "knows", rdf.Blank("b9")),
		quad(rdf.IRI(ex+"person/1"), "city", rdf.IRI("http://dbpedia.org/resource/New%20York")),
		quad(rdf.IRI(ex+"person/1"), "home", rdf.IRI("http://ex.org")),
	)

	res := extract(t, data, fakeMapping{}, ex+"person/{id}")

	assert.Equal(t, map[string]string{
		"id":    "1",
		"knows": "blank_node_b9",
		"city":  "New York",
		"home":  "http://ex.org",
	}, res.Records[0].Values)
}

func TestExtract_BlankSubject(t *testing.T) {
	t.Parallel()
	b := rdf.Blank("n1")
	data := store.NewMemStore(
		quad(b, "FirstName", rdf.Literal("Ada", "")),
		quad(b, "lastname", rdf.Literal("Lovelace", "")),
	)

	res := extract(t, data, fakeMapping{}, "{firstName} {lastName}")

	require.Len(t, res.Records, 1)
	assert.Equal(t, "_:blank_n1", res.Records[0].Key)
	assert.Equal(t, []string{"firstName", "lastName"}, res.Columns)
	assert.Equal(t, map[string]string{"firstName": "Ada", "lastName": "Lovelace"}, res.Records[0].Values)
}

func TestExtract_SubjectMismatchIsWarning(t *testing.T) {
	t.Parallel()
	data := store.NewMemStore(
		quad(rdf.IRI("http://other.org/x"), "name", rdf.Literal("X", "")),
		quad(rdf.IRI("http://other.org/x"), "age", rdf.Literal("1", "")),
	)

	res := extract(t, data, fakeMapping{}, ex+"person/{id}")

	assert.Equal(t, map[string]string{"id": "", "name": "X", "age": "1"}, res.Records[0].Values)
	assert.Equal(t, 1, res.Stats.Warnings, "bindings are memoized per subject")
}

func TestExtract_Idempotent(t *testing.T) {
	t.Parallel()
	data := store.NewMemStore(
		quad(rdf.IRI(ex+"person/1"), "name", rdf.LangLiteral("Alice", "en")),
		quad(rdf.IRI(ex+"person/2"), "address", rdf.Literal("Elm Paris", "")),
		quad(rdf.Blank("z"), "id", rdf.Literal("3", "")),
	)
	m := fakeMapping{templates: map[string]string{ex + "address": "{street} {city}"}}
	x := New(data, m, subjectMap(ex+"person/{id}"))

	first, err := x.Extract(context.Background())
	require.NoError(t, err)
	second, err := x.Extract(context.Background())
	require.NoError(t, err)

	assert.Equal(t, first.Columns, second.Columns)
	assert.Equal(t, values(first), values(second))
	assert.Equal(t, "3", first.Records[2].Get("id"))
}

func TestExtract_CancelledContext(t *testing.T) {
	t.Parallel()
	data := store.NewMemStore(quad(rdf.IRI(ex+"person/1"), "name", rdf.Literal("A", "")))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(data, fakeMapping{}, subjectMap(ex+"person/{id}")).Extract(ctx)
	require.ErrorIs(t, err, context.Canceled)
}

func TestExtract_SQLiteDataset(t *testing.T) {
	t.Parallel()
	s, err := store.NewStore(filepath.Join(t.TempDir(), "graph.db"), store.WithPageSize(1))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	require.NoError(t, s.Migrate())

	ds := s.Dataset(store.DatasetData)
	b := rdf.Blank("p")
	for _, q := range []rdf.Quad{
		quad(rdf.IRI(ex+"person/1"), "name", rdf.Literal("Alice", "")),
		quad(b, "id", rdf.Literal("2", "")),
		quad(b, "name", rdf.Literal("Bob", "")),
	} {
		require.NoError(t, ds.Add(q))
	}
	require.NoError(t, ds.Flush())

	res := extract(t, ds, fakeMapping{}, ex+"person/{id}")

	assert.Equal(t, []string{"id", "name"}, res.Columns)
	assert.Equal(t, []map[string]string{
		{"id": "1", "name": "Alice"},
		{"id": "2", "name": "Bob"},
	}, values(res))
}
