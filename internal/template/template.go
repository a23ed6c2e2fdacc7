// Package template parses RML string templates such as
// "http://ex.com/person/{ID}" and reverses them: given a string produced by
// a template, Bind recovers the value of each placeholder.
package template

import (
	"net/url"
	"regexp"
	"strings"
)

// SegmentKind distinguishes literal text from placeholders.
type SegmentKind uint8

const (
	LiteralSegment SegmentKind = iota
	PlaceholderSegment
)

// Segment is one piece of a parsed template. For a placeholder, Text is the
// placeholder name as written between the braces.
type Segment struct {
	Kind SegmentKind
	Text string
}

// Pattern is a parsed template.
type Pattern struct {
	source   string
	segments []Segment
	names    []string
	re       *regexp.Regexp
}

// valueClass matches one placeholder value: anything up to a path or
// parameter separator.
const valueClass = `([^/;]+)`

// Parse scans tmpl left to right into literal and placeholder segments.
// A '{' without a matching '}' is literal text. Parse never fails; a
// template without placeholders yields a Pattern that binds nothing.
func Parse(tmpl string) *Pattern {
	p := &Pattern{source: tmpl}

	var lit strings.Builder
	for i := 0; i < len(tmpl); {
		if tmpl[i] == '{' {
			if end := strings.IndexByte(tmpl[i+1:], '}'); end >= 0 {
				if lit.Len() > 0 {
					p.segments = append(p.segments, Segment{Kind: LiteralSegment, Text: lit.String()})
					lit.Reset()
				}
				name := tmpl[i+1 : i+1+end]
				p.segments = append(p.segments, Segment{Kind: PlaceholderSegment, Text: name})
				p.names = append(p.names, name)
				i += end + 2
				continue
			}
		}
		lit.WriteByte(tmpl[i])
		i++
	}
	if lit.Len() > 0 {
		p.segments = append(p.segments, Segment{Kind: LiteralSegment, Text: lit.String()})
	}

	if len(p.names) > 0 {
		var expr strings.Builder
		expr.WriteByte('^')
		for _, seg := range p.segments {
			if seg.Kind == PlaceholderSegment {
				expr.WriteString(valueClass)
			} else {
				expr.WriteString(regexp.QuoteMeta(seg.Text))
			}
		}
		// Only quoted literals and a fixed class go in, so this cannot fail.
		p.re = regexp.MustCompile(expr.String())
	}
	return p
}

// Placeholders returns the placeholder names of tmpl in order, duplicates
// included.
func Placeholders(tmpl string) []string {
	return Parse(tmpl).Placeholders()
}

// Source returns the template string the pattern was parsed from.
func (p *Pattern) Source() string { return p.source }

// Segments returns the parsed segments.
func (p *Pattern) Segments() []Segment { return p.segments }

// Placeholders returns the placeholder names in template order.
func (p *Pattern) Placeholders() []string { return p.names }

// HasPlaceholders reports whether the template binds anything.
func (p *Pattern) HasPlaceholders() bool { return len(p.names) > 0 }

// Binding is one recovered placeholder value.
type Binding struct {
	Name  string
	Value string
}

// Bind matches s against the pattern, anchored at the start of s, and returns
// one percent-decoded value per placeholder in template order. ok is false
// when the template does not apply to s; that is not an error.
func (p *Pattern) Bind(s string) (bindings []Binding, ok bool) {
	if p.re == nil {
		return nil, false
	}
	m := p.re.FindStringSubmatch(s)
	if m == nil {
		return nil, false
	}
	bindings = make([]Binding, len(p.names))
	for i, name := range p.names {
		bindings[i] = Binding{Name: name, Value: Unescape(m[i+1])}
	}
	return bindings, true
}

// Expand substitutes values into the template, percent-encoding each value
// the way an IRI template is materialized. Placeholders without a value are
// left empty.
func (p *Pattern) Expand(values map[string]string) string {
	var b strings.Builder
	for _, seg := range p.segments {
		if seg.Kind == PlaceholderSegment {
			b.WriteString(url.PathEscape(values[seg.Text]))
		} else {
			b.WriteString(seg.Text)
		}
	}
	return b.String()
}

// Unescape percent-decodes s. Malformed escapes are kept as written.
func Unescape(s string) string {
	if !strings.Contains(s, "%") {
		return s
	}
	if v, err := url.PathUnescape(s); err == nil {
		return v
	}
	// Decode valid escapes one by one and leave the rest untouched.
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '%' && i+2 < len(s) && isHex(s[i+1]) && isHex(s[i+2]) {
			b.WriteByte(unhex(s[i+1])<<4 | unhex(s[i+2]))
			i += 2
			continue
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

// ColumnName normalizes a placeholder name into a column name.
func ColumnName(placeholder string) string {
	return strings.ReplaceAll(placeholder, " ", "_")
}

func isHex(c byte) bool {
	return ('0' <= c && c <= '9') || ('a' <= c && c <= 'f') || ('A' <= c && c <= 'F')
}

func unhex(c byte) byte {
	switch {
	case '0' <= c && c <= '9':
		return c - '0'
	case 'a' <= c && c <= 'f':
		return c - 'a' + 10
	default:
		return c - 'A' + 10
	}
}
