package rdf2csv

import (
	"github.com/jward/rdf2csv/internal/errors"
	"github.com/jward/rdf2csv/internal/extract"
	"github.com/jward/rdf2csv/internal/mapping"
	"github.com/jward/rdf2csv/internal/table"
)

// Public aliases for internal types returned by the Converter API.

type Table = table.Table
type Stats = extract.Stats
type Description = mapping.Description
type ObjectTemplate = mapping.ObjectTemplate

// Failure classes. Test with errors.Is.
var (
	ErrMissingFile    = errors.ErrMissingFile
	ErrParse          = errors.ErrParse
	ErrMapping        = errors.ErrMapping
	ErrLiteralSubject = errors.ErrLiteralSubject
)
