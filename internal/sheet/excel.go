package sheet

import (
	"fmt"
	"iter"
	"slices"

	"github.com/xuri/excelize/v2"
)

type excelWorkbook struct {
	f *excelize.File
}

func openExcel(path string) (Workbook, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrUnreadableFormat, path, err)
	}

	return &excelWorkbook{f: f}, nil
}

func (w *excelWorkbook) Sheet(name string) (Sheet, bool) {
	n, ok := lookupName(w.f.GetSheetList(), name)
	if !ok {
		return nil, false
	}

	return &excelSheet{f: w.f, name: n}, true
}

func (w *excelWorkbook) SheetNames() []string { return slices.Clone(w.f.GetSheetList()) }

func (w *excelWorkbook) Close() error { return w.f.Close() }

type excelSheet struct {
	f    *excelize.File
	name string
	err  error
}

func (s *excelSheet) Name() string { return s.name }

func (s *excelSheet) Err() error { return s.err }

func (s *excelSheet) Header(row int) ([]string, error) {
	for n, cells := range s.scan(1) {
		if n == row {
			return trimHeader(cells), nil
		}
	}

	if s.err != nil {
		return nil, s.err
	}

	return nil, fmt.Errorf("%w: row %d", ErrNoHeader, row)
}

// Rows yields raw cell values, so numbers keep full precision instead of
// the cell's display format.
func (s *excelSheet) Rows(start int) iter.Seq2[int, []any] {
	return func(yield func(int, []any) bool) {
		for n, cells := range s.scan(start) {
			if !yield(n, toAny(cells)) {
				return
			}
		}
	}
}

func (s *excelSheet) scan(start int) iter.Seq2[int, []string] {
	return func(yield func(int, []string) bool) {
		s.err = nil

		rows, err := s.f.Rows(s.name)
		if err != nil {
			s.err = fmt.Errorf("%w: sheet %q: %w", ErrUnreadableFormat, s.name, err)
			return
		}
		defer rows.Close()

		for n := 1; rows.Next(); n++ {
			if n < start {
				continue
			}

			cells, err := rows.Columns(excelize.Options{RawCellValue: true})
			if err != nil {
				s.err = fmt.Errorf("%w: sheet %q row %d: %w", ErrUnreadableFormat, s.name, n, err)
				return
			}

			if !yield(n, cells) {
				return
			}
		}

		if err := rows.Error(); err != nil {
			s.err = fmt.Errorf("%w: sheet %q: %w", ErrUnreadableFormat, s.name, err)
		}
	}
}
