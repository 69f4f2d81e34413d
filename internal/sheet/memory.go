package sheet

import (
	"fmt"
	"iter"
	"slices"
	"strings"

	"sheet-importer/convert"
)

// Memory is an in-process workbook.
type Memory struct {
	names  []string
	sheets map[string]*memorySheet
}

// NewMemory returns an empty in-memory workbook.
func NewMemory() *Memory {
	return &Memory{sheets: map[string]*memorySheet{}}
}

// AddSheet adds or replaces a sheet. The first row is row 1.
func (m *Memory) AddSheet(name string, rows ...[]any) *Memory {
	if _, ok := m.sheets[name]; !ok {
		m.names = append(m.names, name)
	}

	m.sheets[name] = &memorySheet{name: name, rows: rows}

	return m
}

// Sheet implements Workbook.
func (m *Memory) Sheet(name string) (Sheet, bool) {
	n, ok := lookupName(m.names, name)
	if !ok {
		return nil, false
	}

	return m.sheets[n], true
}

// SheetNames implements Workbook.
func (m *Memory) SheetNames() []string { return slices.Clone(m.names) }

// Close implements Workbook.
func (m *Memory) Close() error { return nil }

type memorySheet struct {
	name string
	rows [][]any
}

func (s *memorySheet) Name() string { return s.name }

func (s *memorySheet) Header(row int) ([]string, error) {
	if row < 1 || row > len(s.rows) {
		return nil, fmt.Errorf("%w: row %d of %d", ErrNoHeader, row, len(s.rows))
	}

	cells := s.rows[row-1]
	header := make([]string, len(cells))

	for i, c := range cells {
		header[i] = strings.TrimSpace(convert.Stringify(c))
	}

	return header, nil
}

func (s *memorySheet) Rows(start int) iter.Seq2[int, []any] {
	return func(yield func(int, []any) bool) {
		for i := max(start, 1); i <= len(s.rows); i++ {
			if !yield(i, s.rows[i-1]) {
				return
			}
		}
	}
}

func (s *memorySheet) Err() error { return nil }
