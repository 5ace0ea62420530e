// Package source reads local tariff source files: delimited tables (CSV and
// XLSX) addressed by header name, and JSON catalogs.
package source

import (
	"bytes"
	"encoding/csv"
	"io"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/afero"
	"github.com/tealeg/xlsx/v2"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// TableOptions configures how a tabular source is decoded.
type TableOptions struct {
	Delimiter rune   // default ';'
	Encoding  string // WHATWG label, default "utf-8"
	SheetName string // xlsx only; default is the first sheet
}

// Table is a header-addressed table. Column lookups are case-insensitive, so
// column order in the source file is irrelevant.
type Table struct {
	Path   string
	Header []string
	Rows   [][]string

	colIdx map[string]int
}

// HeaderError reports required columns absent from a table header.
type HeaderError struct {
	Path    string
	Missing []string
}

func (e *HeaderError) Error() string {
	return "source: " + e.Path + ": missing required columns " + strings.Join(e.Missing, ", ")
}

// ReadTable loads a tabular file, choosing the decoder from its extension:
// ".xlsx" is read as a workbook, anything else as delimited text.
func ReadTable(fsys afero.Fs, path string, opts TableOptions) (*Table, error) {
	data, err := afero.ReadFile(fsys, path)
	if err != nil {
		return nil, eris.Wrapf(err, "source: read %s", path)
	}

	var rows [][]string
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		rows, err = readXLSX(data, opts)
	} else {
		rows, err = readDelimited(bytes.NewReader(data), opts)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "source: parse %s", path)
	}
	if len(rows) == 0 {
		return nil, eris.Errorf("source: %s has no header row", path)
	}

	return NewTable(path, rows[0], rows[1:]), nil
}

// NewTable builds a table from an already-split header and data rows.
func NewTable(path string, header []string, rows [][]string) *Table {
	return &Table{
		Path:   path,
		Header: header,
		Rows:   rows,
		colIdx: mapColumns(header),
	}
}

// Require checks that every named column is present in the header.
func (t *Table) Require(names ...string) error {
	var missing []string
	for _, name := range names {
		if !t.Has(name) {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return &HeaderError{Path: t.Path, Missing: missing}
	}
	return nil
}

// Has reports whether the header contains name.
func (t *Table) Has(name string) bool {
	_, ok := t.colIdx[normalizeCol(name)]
	return ok
}

// Get returns the trimmed value of the named column in record, or "" if the
// column is unknown or the record is short.
func (t *Table) Get(record []string, name string) string {
	idx, ok := t.colIdx[normalizeCol(name)]
	if !ok || idx >= len(record) {
		return ""
	}
	return trimQuotes(record[idx])
}

func readDelimited(r io.Reader, opts TableOptions) ([][]string, error) {
	decoded, err := decodeReader(r, opts.Encoding)
	if err != nil {
		return nil, err
	}

	reader := csv.NewReader(decoded)
	reader.Comma = ';'
	if opts.Delimiter != 0 {
		reader.Comma = opts.Delimiter
	}
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	var rows [][]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, eris.Wrap(err, "csv: read row")
		}
		if blank(record) {
			continue
		}
		rows = append(rows, record)
	}
	return rows, nil
}

// decodeReader converts r from the named charset to UTF-8. A leading UTF-8
// (or UTF-16) byte order mark overrides the configured charset and is dropped.
func decodeReader(r io.Reader, label string) (io.Reader, error) {
	if label == "" {
		label = "utf-8"
	}
	enc, err := htmlindex.Get(label)
	if err != nil {
		return nil, eris.Wrapf(err, "csv: unsupported charset %q", label)
	}
	return transform.NewReader(r, unicode.BOMOverride(enc.NewDecoder())), nil
}

func readXLSX(data []byte, opts TableOptions) ([][]string, error) {
	f, err := xlsx.OpenBinary(data)
	if err != nil {
		return nil, eris.Wrap(err, "xlsx: open workbook")
	}

	sheet, err := getSheet(f, opts.SheetName)
	if err != nil {
		return nil, err
	}

	var rows [][]string
	for _, row := range sheet.Rows {
		if row == nil {
			continue
		}
		cells := make([]string, len(row.Cells))
		for j, cell := range row.Cells {
			cells[j] = cell.String()
		}
		if blank(cells) {
			continue
		}
		rows = append(rows, cells)
	}
	return rows, nil
}

func getSheet(f *xlsx.File, name string) (*xlsx.Sheet, error) {
	if name != "" {
		sheet, ok := f.Sheet[name]
		if !ok {
			return nil, eris.Errorf("xlsx: sheet %q not found", name)
		}
		return sheet, nil
	}
	if len(f.Sheets) == 0 {
		return nil, eris.New("xlsx: workbook has no sheets")
	}
	return f.Sheets[0], nil
}

func blank(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// normalizeCol trims and lowercases a column name for matching.
func normalizeCol(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// mapColumns builds a case-insensitive column name to index map.
func mapColumns(header []string) map[string]int {
	m := make(map[string]int, len(header))
	for i, col := range header {
		m[normalizeCol(trimQuotes(col))] = i
	}
	return m
}

// trimQuotes removes surrounding whitespace and double quotes from a field.
func trimQuotes(s string) string {
	return strings.TrimSpace(strings.Trim(strings.TrimSpace(s), `"`))
}
