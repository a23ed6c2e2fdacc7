// Package rdf2csv reverses an RML materialization. Given the RDF graph an
// RML mapping produced and the mapping itself, it rebuilds the table the
// graph was generated from and writes it as CSV.
//
// # Pipeline
//
// A conversion runs in four steps:
//
//  1. Load: the N-Quads graph and the Turtle mapping are decoded into two
//     datasets of a graph store (SQLite by default, or in memory).
//
//  2. Interpret: the mapping is queried once for its subject template and
//     term type, the predicates that declare a templated datatype, and the
//     object template of each predicate.
//
//  3. Extract: every quad of the graph is visited once. Each subject becomes
//     a record; predicate local names, language tags, datatype annotations
//     and template placeholders become columns as they are discovered.
//
//  4. Write: records are laid out in first-seen order with every column
//     filled, optionally passed through a Risor script, and written
//     atomically as delimited text.
//
// # Usage
//
//	c, err := rdf2csv.New()
//	if err != nil { ... }
//	defer c.Close()
//
//	msg, err := c.Convert(ctx, "graph.nq", "mapping.ttl", "output.csv")
//
// Failures are returned as a single error prefixed with "error during
// conversion". The underlying cause can be tested with errors.Is against
// [ErrMissingFile], [ErrParse], [ErrMapping] and [ErrLiteralSubject].
//
// # Scripts
//
// [WithScript] names a Risor script run over the assembled table before it
// is written. Scripts read and edit the table through host functions:
//
//   - columns(), row_count(), row_key(row), get(row, column)
//   - set(row, column, value), rename_column(from, to)
//   - drop_column(column), delete_row(row)
//   - log.Info(msg), log.Warn(msg), log.Error(msg)
//
// A reference of the form "builtin:<name>" selects a script shipped with
// the module, such as builtin:drop_empty_columns.
package rdf2csv
