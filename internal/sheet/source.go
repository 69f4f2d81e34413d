package sheet

import (
	"fmt"
	"iter"
	"slices"
)

// Source is what a conversion run consumes: the header row and a single
// pass over the data rows.
type Source struct {
	Header    []string
	HeaderRow int
	Rows      iter.Seq2[int, []any]

	err func() error
}

// Err reports a read error that ended row iteration early.
func (s *Source) Err() error {
	if s.err == nil {
		return nil
	}

	return s.err()
}

// NewSource reads the header of sh and prepares iteration from dataRow.
func NewSource(sh Sheet, headerRow, dataRow int) (*Source, error) {
	header, err := sh.Header(headerRow)
	if err != nil {
		return nil, fmt.Errorf("sheet %q: %w", sh.Name(), err)
	}

	return &Source{
		Header:    header,
		HeaderRow: headerRow,
		Rows:      sh.Rows(dataRow),
		err:       sh.Err,
	}, nil
}

// FromRows builds a source from in-memory rows. The header is row 1 and
// data rows are numbered from 2.
func FromRows(header []string, rows ...[]any) *Source {
	rows = slices.Clone(rows)

	return &Source{
		Header:    header,
		HeaderRow: 1,
		Rows: func(yield func(int, []any) bool) {
			for i, r := range rows {
				if !yield(i+2, r) {
					return
				}
			}
		},
	}
}
