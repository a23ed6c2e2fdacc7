package template

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlaceholders(t *testing.T) {
	t.Parallel()
	tests := []struct {
		tmpl string
		want []string
	}{
		{"http://ex.com/person/{ID}", []string{"ID"}},
		{"http://ex.com/{fname}/{lname};{ID}", []string{"fname", "lname", "ID"}},
		{"http://ex.com/{id}/{id}", []string{"id", "id"}},
		{"http://ex.com/{first name}", []string{"first name"}},
		{"http://ex.com/static", nil},
		{"http://ex.com/{unclosed", nil},
		{"{a}{b}", []string{"a", "b"}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Placeholders(tt.tmpl), tt.tmpl)
	}
}

func TestParse_Segments(t *testing.T) {
	t.Parallel()
	p := Parse("http://ex.com/{a}-x{b}")
	assert.Equal(t, []Segment{
		{Kind: LiteralSegment, Text: "http://ex.com/"},
		{Kind: PlaceholderSegment, Text: "a"},
		{Kind: LiteralSegment, Text: "-x"},
		{Kind: PlaceholderSegment, Text: "b"},
	}, p.Segments())
	assert.Equal(t, "http://ex.com/{a}-x{b}", p.Source())
	assert.True(t, p.HasPlaceholders())
}

func TestBind(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name  string
		tmpl  string
		input string
		want  []Binding
		ok    bool
	}{
		{
			name:  "single",
			tmpl:  "http://ex.com/person/{id}",
			input: "http://ex.com/person/42",
			want:  []Binding{{"id", "42"}},
			ok:    true,
		},
		{
			name:  "percent decoded",
			tmpl:  "http://ex.com/person/{name}",
			input: "http://ex.com/person/Jos%C3%A9%20Smith",
			want:  []Binding{{"name", "José Smith"}},
			ok:    true,
		},
		{
			name:  "slash and semicolon separate values",
			tmpl:  "http://ex.com/{fname}/{lname};{ID}",
			input: "http://ex.com/Ada/Lovelace;7",
			want:  []Binding{{"fname", "Ada"}, {"lname", "Lovelace"}, {"ID", "7"}},
			ok:    true,
		},
		{
			name:  "anchored at start only",
			tmpl:  "http://ex.com/person/{id}",
			input: "http://ex.com/person/42/extra",
			want:  []Binding{{"id", "42"}},
			ok:    true,
		},
		{
			name:  "regex metacharacters in literal text",
			tmpl:  "http://ex.com/item?id={id}",
			input: "http://ex.com/item?id=9",
			want:  []Binding{{"id", "9"}},
			ok:    true,
		},
		{
			name:  "prefix mismatch",
			tmpl:  "http://ex.com/person/{id}",
			input: "http://other.org/person/42",
		},
		{
			name:  "not at start",
			tmpl:  "http://ex.com/person/{id}",
			input: "see http://ex.com/person/42",
		},
		{
			name:  "blank node label",
			tmpl:  "http://ex.com/person/{id}",
			input: "_:blank_b0",
		},
		{
			name:  "no placeholders",
			tmpl:  "http://ex.com/static",
			input: "http://ex.com/static",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, ok := Parse(tt.tmpl).Bind(tt.input)
			require.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBind_RoundTrip(t *testing.T) {
	t.Parallel()
	p := Parse("http://ex.com/{dept}/{name};{id}")
	cases := []map[string]string{
		{"dept": "eng", "name": "Ada", "id": "1"},
		{"dept": "R&D", "name": "José María", "id": "a/b"},
		{"dept": "x;y", "name": "100%", "id": "{braces}"},
	}
	for _, values := range cases {
		iri := p.Expand(values)
		got, ok := p.Bind(iri)
		require.True(t, ok, iri)
		recovered := map[string]string{}
		for _, b := range got {
			recovered[b.Name] = b.Value
		}
		assert.Equal(t, values, recovered, iri)
	}
}

func TestUnescape(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "plain", Unescape("plain"))
	assert.Equal(t, "a b", Unescape("a%20b"))
	assert.Equal(t, "100%", Unescape("100%"))
	assert.Equal(t, "a b%zz", Unescape("a%20b%zz"))
}

func TestColumnName(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "first_name", ColumnName("first name"))
	assert.Equal(t, "ID", ColumnName("ID"))
}
