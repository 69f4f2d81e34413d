package rule

import (
	"strings"

	"sheet-importer/internal/record"
)

// Row is one raw spreadsheet row as seen by a RowFilter.
type Row struct {
	// Number is the 1-based sheet row.
	Number int
	Cells  []any
	Header []string
}

// Cell returns the raw cell under the header column named column.
func (r Row) Cell(column string) (any, bool) {
	column = strings.TrimSpace(column)

	for i, h := range r.Header {
		if strings.TrimSpace(h) != column {
			continue
		}

		if i >= len(r.Cells) {
			return nil, true
		}

		return r.Cells[i], true
	}

	return nil, false
}

// RowFilter decides whether a row is converted. Rows for which it returns
// false are skipped before any field is read.
type RowFilter func(row Row) bool

// PostRowHook runs on every finished record. A non-nil replacement is
// stored instead of rec; extra records are stored alongside it. Every
// returned record must carry a uid.
type PostRowHook func(rec record.Record) (replacement record.Record, extra []record.Record, err error)

// Scope exposes the row being converted to fold functions.
type Scope interface {
	// Record is the record under construction.
	Record() record.Record
	// Value returns the converted value of a rule column in this row.
	Value(column string) (any, bool)
	// Raw returns the raw cell of a rule column in this row.
	Raw(column string) (any, bool)
	// Row is the 1-based sheet row.
	Row() int
}
