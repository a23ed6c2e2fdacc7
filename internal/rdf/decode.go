package rdf

import (
	"context"
	"io"
	"os"

	knakk "github.com/knakk/rdf"

	"github.com/jward/rdf2csv/internal/errors"
)

// Format is a serialization the decoders understand.
type Format int

const (
	NQuads Format = iota + 1
	Turtle
)

func (f Format) String() string {
	switch f {
	case NQuads:
		return "nquads"
	case Turtle:
		return "turtle"
	default:
		return "unknown"
	}
}

// Sink receives decoded quads in document order.
type Sink interface {
	Add(q Quad) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(q Quad) error

func (f SinkFunc) Add(q Quad) error { return f(q) }

// Decode reads every statement from r into sink. Turtle documents produce
// quads in the default graph. Syntax errors are marked errors.ErrParse.
func Decode(ctx context.Context, r io.Reader, f Format, sink Sink) (int, error) {
	var next func() (Quad, error)
	switch f {
	case NQuads:
		dec := knakk.NewQuadDecoder(r, knakk.NQuads)
		next = func() (Quad, error) {
			q, err := dec.Decode()
			if err != nil {
				return Quad{}, err
			}
			return fromKnakkQuad(q), nil
		}
	case Turtle:
		dec := knakk.NewTripleDecoder(r, knakk.Turtle)
		next = func() (Quad, error) {
			t, err := dec.Decode()
			if err != nil {
				return Quad{}, err
			}
			return fromKnakkTriple(t), nil
		}
	default:
		return 0, errors.Newf("unsupported format %d", f)
	}

	n := 0
	for {
		if err := ctx.Err(); err != nil {
			return n, err
		}
		q, err := next()
		if err == io.EOF {
			return n, nil
		}
		if err != nil {
			return n, errors.Parsef(err, "%s statement %d", f, n+1)
		}
		if err := sink.Add(q); err != nil {
			return n, errors.Wrapf(err, "store statement %d", n+1)
		}
		n++
	}
}

// DecodeFile opens path and decodes it with Decode. Parse failures name the
// file.
func DecodeFile(ctx context.Context, path string, f Format, sink Sink) (int, error) {
	fh, err := os.Open(path)
	if err != nil {
		return 0, errors.Wrapf(err, "open %s", path)
	}
	defer fh.Close()

	n, err := Decode(ctx, fh, f, sink)
	if err != nil {
		return n, errors.Wrapf(err, "parsing %s file %q", f, path)
	}
	return n, nil
}

func fromKnakkQuad(q knakk.Quad) Quad {
	out := fromKnakkTriple(q.Triple)
	if q.Ctx != nil && q.Ctx.Type() == knakk.TermIRI {
		out.Context = q.Ctx.String()
	} else if q.Ctx != nil && q.Ctx.Type() == knakk.TermBlank {
		out.Context = "_:" + Blank(q.Ctx.String()).Value
	}
	return out
}

func fromKnakkTriple(t knakk.Triple) Quad {
	return Quad{
		Subject:   fromKnakkTerm(t.Subj),
		Predicate: fromKnakkTerm(t.Pred),
		Object:    fromKnakkTerm(t.Obj),
	}
}

func fromKnakkTerm(t knakk.Term) Term {
	if t == nil {
		return Term{}
	}
	switch t.Type() {
	case knakk.TermIRI:
		return IRI(t.String())
	case knakk.TermBlank:
		return Blank(t.String())
	case knakk.TermLiteral:
		lit, ok := t.(knakk.Literal)
		if !ok {
			return Literal(t.String(), "")
		}
		if lang := lit.Lang(); lang != "" {
			return LangLiteral(lit.String(), lang)
		}
		return Literal(lit.String(), lit.DataType.String())
	default:
		return Term{}
	}
}
