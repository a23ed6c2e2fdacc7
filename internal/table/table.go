// Package table holds the rectangular result of an extraction and writes
// it as delimited text.
package table

import (
	"slices"
	"strings"

	"github.com/jward/rdf2csv/internal/errors"
	"github.com/jward/rdf2csv/internal/extract"
)

// Table is an ordered set of columns and rows. Every row has one value per
// column. Keys holds the subject identifier each row came from.
type Table struct {
	Columns []string
	Keys    []string
	Rows    [][]string
}

// Assemble lays out the extraction result with one row per record in
// first-seen order and one cell per column in discovery order. A result
// without records gives a header-only table.
func Assemble(res *extract.Result) *Table {
	t := &Table{
		Columns: slices.Clone(res.Columns),
		Keys:    make([]string, 0, len(res.Records)),
		Rows:    make([][]string, 0, len(res.Records)),
	}
	for _, rec := range res.Records {
		row := make([]string, len(t.Columns))
		for i, c := range t.Columns {
			row[i] = rec.Get(c)
		}
		t.Keys = append(t.Keys, rec.Key)
		t.Rows = append(t.Rows, row)
	}
	return t
}

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.Rows) }

// Index returns the position of column, matched ignoring case, or -1.
func (t *Table) Index(column string) int {
	for i, c := range t.Columns {
		if strings.EqualFold(c, column) {
			return i
		}
	}
	return -1
}

func (t *Table) cell(row int, column string) (int, error) {
	if row < 0 || row >= len(t.Rows) {
		return 0, errors.Newf("row %d out of range [0,%d)", row, len(t.Rows))
	}
	c := t.Index(column)
	if c < 0 {
		return 0, errors.Newf("unknown column %q", column)
	}
	return c, nil
}

// Get returns the value at row and column.
func (t *Table) Get(row int, column string) (string, error) {
	c, err := t.cell(row, column)
	if err != nil {
		return "", err
	}
	return t.Rows[row][c], nil
}

// Set replaces the value at row and column.
func (t *Table) Set(row int, column, value string) error {
	c, err := t.cell(row, column)
	if err != nil {
		return err
	}
	t.Rows[row][c] = value
	return nil
}

// RenameColumn renames a column. The new name must not collide, ignoring
// case, with another column.
func (t *Table) RenameColumn(from, to string) error {
	i := t.Index(from)
	if i < 0 {
		return errors.Newf("unknown column %q", from)
	}
	if j := t.Index(to); j >= 0 && j != i {
		return errors.Newf("column %q already exists", to)
	}
	t.Columns[i] = to
	return nil
}

// DropColumn removes a column and its values.
func (t *Table) DropColumn(column string) error {
	i := t.Index(column)
	if i < 0 {
		return errors.Newf("unknown column %q", column)
	}
	t.Columns = slices.Delete(t.Columns, i, i+1)
	for r := range t.Rows {
		t.Rows[r] = slices.Delete(t.Rows[r], i, i+1)
	}
	return nil
}

// DeleteRow removes a row.
func (t *Table) DeleteRow(row int) error {
	if row < 0 || row >= len(t.Rows) {
		return errors.Newf("row %d out of range [0,%d)", row, len(t.Rows))
	}
	t.Rows = slices.Delete(t.Rows, row, row+1)
	t.Keys = slices.Delete(t.Keys, row, row+1)
	return nil
}

// WriteTo hands the table to w.
func (t *Table) WriteTo(w Writer) error {
	return w.Write(t.Columns, t.Rows)
}
