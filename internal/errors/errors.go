// Package errors provides error handling for rdf2csv.
//
// It re-exports github.com/cockroachdb/errors so every package wraps, marks
// and inspects errors the same way, and it defines the conversion error
// taxonomy. Fatal conditions are created by marking a concrete error with one
// of the sentinels below; errors.Is keeps matching through any number of
// Wrap calls:
//
//	if err := dec.Decode(); err != nil {
//	    return errors.Mark(errors.Wrapf(err, "parse %s", path), errors.ErrParse)
//	}
//
//	if errors.Is(err, errors.ErrMapping) {
//	    // mapping has no usable subject template
//	}
package errors

import (
	crdb "github.com/cockroachdb/errors"
)

// Core error creation and wrapping
var (
	New          = crdb.New
	Newf         = crdb.Newf
	Wrap         = crdb.Wrap
	Wrapf        = crdb.Wrapf
	WithStack    = crdb.WithStack
	WithMessage  = crdb.WithMessage
	WithMessagef = crdb.WithMessagef
	Mark         = crdb.Mark
)

// User-facing messages and details
var (
	WithHint    = crdb.WithHint
	WithHintf   = crdb.WithHintf
	WithDetail  = crdb.WithDetail
	WithDetailf = crdb.WithDetailf
)

// Error inspection
var (
	Is            = crdb.Is
	IsAny         = crdb.IsAny
	As            = crdb.As
	Unwrap        = crdb.Unwrap
	UnwrapAll     = crdb.UnwrapAll
	GetAllHints   = crdb.GetAllHints
	FlattenHints  = crdb.FlattenHints
	GetAllDetails = crdb.GetAllDetails
)

// Conversion failure categories. All of them are fatal and abort a run.
var (
	// ErrMissingFile indicates an input path does not exist. It is reported
	// before any parsing is attempted.
	ErrMissingFile = New("missing file")

	// ErrParse indicates the graph or mapping document is not valid syntax
	// for its format.
	ErrParse = New("parse error")

	// ErrMapping indicates the mapping has no usable subject template.
	ErrMapping = New("mapping error")

	// ErrLiteralSubject indicates the subject map declares a literal term
	// type. Subjects must be addressable identifiers.
	ErrLiteralSubject = New("literal subject")
)

// MissingFilef builds an ErrMissingFile failure for path.
func MissingFilef(kind, path string) error {
	err := Mark(Newf("%s file %q does not exist", kind, path), ErrMissingFile)
	return WithHint(err, "check the path; inputs are read relative to the working directory")
}

// Parsef builds an ErrParse failure wrapping the decoder's error.
func Parsef(cause error, format string, args ...any) error {
	return Mark(Wrapf(cause, format, args...), ErrParse)
}

// Mappingf builds an ErrMapping failure.
func Mappingf(format string, args ...any) error {
	return Mark(Newf(format, args...), ErrMapping)
}
