package table

import (
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"unicode/utf8"

	"github.com/jward/rdf2csv/internal/errors"
)

// Writer serializes a header and rows.
type Writer interface {
	Write(columns []string, rows [][]string) error
}

// CSVWriter writes RFC 4180 text to an io.Writer.
type CSVWriter struct {
	w     io.Writer
	comma rune
}

var _ Writer = (*CSVWriter)(nil)

// NewCSVWriter returns a CSVWriter using delimiter, which must be a single
// character. An empty delimiter means ",".
func NewCSVWriter(w io.Writer, delimiter string) (*CSVWriter, error) {
	comma, err := ParseDelimiter(delimiter)
	if err != nil {
		return nil, err
	}
	return &CSVWriter{w: w, comma: comma}, nil
}

// ParseDelimiter validates a delimiter string.
func ParseDelimiter(s string) (rune, error) {
	if s == "" {
		return ',', nil
	}
	r, size := utf8.DecodeRuneInString(s)
	if size != len(s) || r == utf8.RuneError {
		return 0, errors.Newf("csv delimiter must be a single character, got %q", s)
	}
	if r == '"' || r == '\r' || r == '\n' {
		return 0, errors.Newf("invalid csv delimiter %q", s)
	}
	return r, nil
}

// Write writes the header and then every row.
func (cw *CSVWriter) Write(columns []string, rows [][]string) error {
	w := csv.NewWriter(cw.w)
	w.Comma = cw.comma
	if err := w.Write(columns); err != nil {
		return errors.Wrap(err, "failed to write header")
	}
	for i, row := range rows {
		if err := w.Write(row); err != nil {
			return errors.Wrapf(err, "failed to write row %d", i)
		}
	}
	w.Flush()
	return errors.Wrap(w.Error(), "failed to flush csv")
}

// WriteFile writes t to path. The text is written to a temporary file in
// the same directory and renamed into place, so path is either the complete
// new file or untouched.
func WriteFile(path string, t *Table, delimiter string) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return errors.Wrap(err, "failed to create output file")
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	if err := tmp.Chmod(0o644); err != nil {
		return errors.Wrap(err, "failed to set output file mode")
	}
	cw, err := NewCSVWriter(tmp, delimiter)
	if err != nil {
		return err
	}
	if err := t.WriteTo(cw); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, "failed to close output file")
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return errors.Wrap(err, "failed to move output file into place")
	}
	return nil
}
