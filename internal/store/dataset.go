package store

import (
	"database/sql"
	"fmt"
	"iter"
	"strings"

	"github.com/jward/rdf2csv/internal/rdf"
)

// Dataset is a view over the quads of one dataset in a Store. Writes are
// buffered in memory and committed in batches; Match reads only committed
// quads, so call Flush after loading.
type Dataset struct {
	store   *Store
	name    string
	pending []rdf.Quad
}

// Name returns the dataset name.
func (d *Dataset) Name() string { return d.name }

// Add buffers q and commits the buffer once it reaches the batch size.
func (d *Dataset) Add(q rdf.Quad) error {
	d.pending = append(d.pending, q)
	if len(d.pending) >= d.store.batchSize {
		return d.Flush()
	}
	return nil
}

// Flush inserts all buffered quads within a single transaction.
func (d *Dataset) Flush() error {
	if len(d.pending) == 0 {
		return nil
	}
	tx, err := d.store.db.Begin()
	if err != nil {
		return fmt.Errorf("flush %s: begin: %w", d.name, err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`INSERT INTO quads
		(dataset, subject_kind, subject, predicate, object_kind, object, datatype, lang, context)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("flush %s: prepare: %w", d.name, err)
	}
	defer stmt.Close()

	for _, q := range d.pending {
		if _, err := stmt.Exec(
			d.name,
			q.Subject.Kind, q.Subject.Value,
			q.Predicate.Value,
			q.Object.Kind, q.Object.Value, q.Object.Datatype, q.Object.Lang,
			q.Context,
		); err != nil {
			return fmt.Errorf("flush %s: insert %s: %w", d.name, q, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("flush %s: commit: %w", d.name, err)
	}
	d.pending = d.pending[:0]
	return nil
}

// Len returns the number of committed quads in the dataset.
func (d *Dataset) Len() (int, error) {
	var n int
	if err := d.store.db.QueryRow("SELECT COUNT(*) FROM quads WHERE dataset = ?", d.name).Scan(&n); err != nil {
		return 0, fmt.Errorf("count %s: %w", d.name, err)
	}
	return n, nil
}

// Match yields committed quads matching p in insertion order. Rows are read
// page by page and each page is closed before yielding, so callers may issue
// further queries against the same Store while iterating.
func (d *Dataset) Match(p Pattern) iter.Seq2[rdf.Quad, error] {
	return func(yield func(rdf.Quad, error) bool) {
		where, args := d.whereClause(p)
		query := `SELECT id, subject_kind, subject, predicate, object_kind, object, datatype, lang, context
			FROM quads WHERE ` + where + ` AND id > ? ORDER BY id LIMIT ?`

		var lastID int64
		for {
			page, err := d.page(query, append(args, lastID, d.store.pageSize))
			if err != nil {
				yield(rdf.Quad{}, fmt.Errorf("match %s: %w", d.name, err))
				return
			}
			for _, r := range page {
				if !yield(r.quad, nil) {
					return
				}
				lastID = r.id
			}
			if len(page) < d.store.pageSize {
				return
			}
		}
	}
}

type quadRow struct {
	id   int64
	quad rdf.Quad
}

func (d *Dataset) page(query string, args []any) ([]quadRow, error) {
	rows, err := d.store.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []quadRow
	for rows.Next() {
		r, err := scanQuad(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func scanQuad(rows *sql.Rows) (quadRow, error) {
	var (
		r       quadRow
		subKind rdf.Kind
		objKind rdf.Kind
		q       = &r.quad
	)
	if err := rows.Scan(
		&r.id, &subKind, &q.Subject.Value, &q.Predicate.Value,
		&objKind, &q.Object.Value, &q.Object.Datatype, &q.Object.Lang, &q.Context,
	); err != nil {
		return r, fmt.Errorf("scan quad: %w", err)
	}
	q.Subject.Kind = subKind
	q.Predicate.Kind = rdf.KindIRI
	q.Object.Kind = objKind
	return r, nil
}

func (d *Dataset) whereClause(p Pattern) (string, []any) {
	clauses := []string{"dataset = ?"}
	args := []any{d.name}
	if p.Subject != nil {
		clauses = append(clauses, "subject_kind = ?", "subject = ?")
		args = append(args, p.Subject.Kind, p.Subject.Value)
	}
	if p.Predicate != nil {
		clauses = append(clauses, "predicate = ?")
		args = append(args, p.Predicate.Value)
	}
	if p.Object != nil {
		clauses = append(clauses, "object_kind = ?", "object = ?", "datatype = ?", "lang = ?")
		args = append(args, p.Object.Kind, p.Object.Value, p.Object.Datatype, p.Object.Lang)
	}
	if p.Context != nil {
		clauses = append(clauses, "context = ?")
		args = append(args, *p.Context)
	}
	return strings.Join(clauses, " AND "), args
}
