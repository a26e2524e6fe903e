package source

import (
	"bufio"
	"database/sql"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/transform"

	"github.com/David-Botos/pmfs-ingress/pkg/converter"
	"github.com/David-Botos/pmfs-ingress/pkg/model"
)

const byteOrderMark = '\uFEFF'

// CSVOptions describes the on-disk format of a delimited file
type CSVOptions struct {
	Delimiter rune   // Field separator, ';' for the PMFS files
	Encoding  string // WHATWG encoding label, e.g. "utf-8" or "iso-8859-1"
}

// DefaultCSVOptions returns the format of the published PMFS dataset
func DefaultCSVOptions() CSVOptions {
	return CSVOptions{Delimiter: ';', Encoding: "utf-8"}
}

// Validate ensures the delimiter and encoding are usable
func (o CSVOptions) Validate() error {
	if o.Delimiter == 0 || o.Delimiter == '"' || o.Delimiter == '\r' || o.Delimiter == '\n' ||
		o.Delimiter == utf8.RuneError {
		return fmt.Errorf("invalid delimiter %q", o.Delimiter)
	}
	if _, err := lookupEncoding(o.Encoding); err != nil {
		return err
	}
	return nil
}

func lookupEncoding(label string) (encoding.Encoding, error) {
	if label == "" {
		label = "utf-8"
	}
	enc, err := htmlindex.Get(label)
	if err != nil {
		return nil, fmt.Errorf("unsupported encoding %q: %w", label, err)
	}
	return enc, nil
}

// ReadCSV reads a delimited table with a header row. Short rows are padded
// with nulls and long rows truncated to the header width.
func ReadCSV(r io.Reader, opts CSVOptions, conv *converter.TypeConverter) (*model.Table, error) {
	enc, err := lookupEncoding(opts.Encoding)
	if err != nil {
		return nil, err
	}

	br := bufio.NewReader(transform.NewReader(r, enc.NewDecoder()))
	if first, _, err := br.ReadRune(); err == nil && first != byteOrderMark {
		if err := br.UnreadRune(); err != nil {
			return nil, fmt.Errorf("failed to rewind reader: %w", err)
		}
	}

	reader := csv.NewReader(br)
	reader.Comma = opts.Delimiter
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("missing header row")
		}
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	table := &model.Table{Columns: make([]model.Column, len(header))}
	for i, name := range header {
		table.Columns[i] = model.Column{Name: name}
	}

	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read row %d: %w", len(table.Rows)+1, err)
		}

		row := make([]sql.NullString, len(header))
		for i := range header {
			if i < len(record) && !conv.IsNullToken(record[i]) {
				row[i] = model.Text(record[i])
			}
		}
		table.Rows = append(table.Rows, row)
	}

	conv.DeclareKinds(table)
	return table, nil
}

// WriteCSV writes t with a header row and no index column; nulls are empty fields
func WriteCSV(w io.Writer, t *model.Table, opts CSVOptions) error {
	enc, err := lookupEncoding(opts.Encoding)
	if err != nil {
		return err
	}

	encoded := transform.NewWriter(w, enc.NewEncoder())
	writer := csv.NewWriter(encoded)
	writer.Comma = opts.Delimiter

	if err := writer.Write(t.ColumnNames()); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	record := make([]string, t.NumColumns())
	for r, row := range t.Rows {
		for i, cell := range row {
			record[i] = cell.String
			if !cell.Valid {
				record[i] = ""
			}
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write row %d: %w", r+1, err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("failed to flush rows: %w", err)
	}
	return encoded.Close()
}

// ReadCSVFile reads a table from path
func ReadCSVFile(path string, opts CSVOptions, conv *converter.TypeConverter) (*model.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, model.NewPipelineError(model.KindInputRead, err)
	}
	defer f.Close()

	table, err := ReadCSV(f, opts, conv)
	if err != nil {
		return nil, model.NewPipelineError(model.KindInputRead, fmt.Errorf("%s: %w", path, err))
	}
	return table, nil
}

// WriteCSVFile writes a table to path, creating the parent directory if absent
func WriteCSVFile(path string, t *model.Table, opts CSVOptions) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return model.NewPipelineError(model.KindOutputWrite, err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return model.NewPipelineError(model.KindOutputWrite, err)
	}

	if err := WriteCSV(f, t, opts); err != nil {
		f.Close()
		return model.NewPipelineError(model.KindOutputWrite, fmt.Errorf("%s: %w", path, err))
	}
	if err := f.Close(); err != nil {
		return model.NewPipelineError(model.KindOutputWrite, err)
	}
	return nil
}
