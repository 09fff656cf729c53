// Package csv reads a decoded listing export into an in-memory table. Quoting
// and record splitting are delegated to encoding/csv; this package adds the
// header handling, soft-skipping of malformed rows, and the positional column
// rename the normalizers depend on.
package csv

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"

	"listingetl/internal/config"
	"listingetl/internal/record"
)

// utf8BOM is stripped from the first header cell if present.
const utf8BOM = "\uFEFF"

// skipLogLimit caps the per-row "skipping" log lines for one table.
const skipLogLimit = 20

// ErrEmpty is returned when the input holds no header row.
var ErrEmpty = errors.New("csv: empty input")

// Table is a fully read export. All rows have len(Header) fields.
type Table struct {
	Header []string
	Rows   [][]string

	// Skipped counts rows dropped because their field count did not match
	// the header.
	Skipped int
}

// ReadTable consumes r and returns the parsed table.
//
// Recognized options: comma (default ","), lazy_quotes, trim_space,
// has_header (default true), skip_bad_lines (default true). With
// skip_bad_lines=false a field-count mismatch fails the whole read; any other
// read error always does, which lets the charset resolver move on to the next
// candidate encoding.
func ReadTable(r io.Reader, opt config.Options) (*Table, error) {
	cr := csv.NewReader(r)
	cr.Comma = opt.Rune("comma", ',')
	cr.LazyQuotes = opt.Bool("lazy_quotes", false)

	hasHeader := opt.Bool("has_header", true)
	trim := opt.Bool("trim_space", false)
	skipBad := opt.Bool("skip_bad_lines", true)
	if skipBad {
		// Width is checked below against the header.
		cr.FieldsPerRecord = -1
	}

	first, err := cr.Read()
	if err == io.EOF {
		return nil, ErrEmpty
	}
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}

	t := &Table{}
	if hasHeader {
		t.Header = StripHeaderBOM(cleanCells(first, true))
	} else {
		t.Header = make([]string, len(first))
		for i := range t.Header {
			t.Header[i] = fmt.Sprintf("col_%d", i)
		}
		t.Rows = append(t.Rows, cleanCells(first, trim))
	}

	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			line, _ := cr.FieldPos(0)
			return nil, fmt.Errorf("read csv line %d: %w", line, err)
		}
		if len(row) != len(t.Header) {
			if t.Skipped < skipLogLimit {
				line, _ := cr.FieldPos(0)
				log.Printf("csv: skipping line=%d fields=%d expected=%d", line, len(row), len(t.Header))
			}
			t.Skipped++
			continue
		}
		t.Rows = append(t.Rows, cleanCells(row, trim))
	}

	return t, nil
}

// Rename replaces the leading header names with canonical, in order. Extra
// source columns keep their names.
func (t *Table) Rename(canonical []string) error {
	if len(t.Header) < len(canonical) {
		return fmt.Errorf("csv: table has %d columns, need at least %d (%s)",
			len(t.Header), len(canonical), strings.Join(canonical, ", "))
	}
	h := make([]string, len(t.Header))
	copy(h, t.Header)
	copy(h, canonical)
	t.Header = h
	return nil
}

// Records returns up to max rows as record.Raw values; max <= 0 returns all.
func (t *Table) Records(max int) []record.Raw {
	n := len(t.Rows)
	if max > 0 && max < n {
		n = max
	}
	out := make([]record.Raw, n)
	for i := 0; i < n; i++ {
		out[i] = record.Raw{Line: i + 1, Columns: t.Header, Values: t.Rows[i]}
	}
	return out
}

// Column returns every value of the named column, or false when the table has
// no such column.
func (t *Table) Column(name string) ([]string, bool) {
	idx := -1
	for i, h := range t.Header {
		if h == name {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, false
	}
	out := make([]string, len(t.Rows))
	for i, row := range t.Rows {
		out[i] = row[idx]
	}
	return out, true
}

func cleanCells(row []string, trim bool) []string {
	if !trim {
		return row
	}
	for i, v := range row {
		row[i] = strings.TrimSpace(v)
	}
	return row
}
