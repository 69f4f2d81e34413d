package sheet

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"iter"
	"os"
	"path/filepath"
	"strings"
)

// csvWorkbook exposes a delimited text file as a one-sheet workbook named
// after the file stem.
type csvWorkbook struct {
	sheet *csvSheet
}

func openCSV(path string, comma rune) (Workbook, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrUnreadableFormat, path, err)
	}

	_ = f.Close()

	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

	return &csvWorkbook{sheet: &csvSheet{name: stem, path: path, comma: comma}}, nil
}

// Sheet matches the file stem ignoring case; an empty name also matches.
func (w *csvWorkbook) Sheet(name string) (Sheet, bool) {
	if name == "" || strings.EqualFold(name, w.sheet.name) {
		return w.sheet, true
	}

	return nil, false
}

func (w *csvWorkbook) SheetNames() []string { return []string{w.sheet.name} }

func (w *csvWorkbook) Close() error { return nil }

type csvSheet struct {
	name  string
	path  string
	comma rune
	err   error
}

func (s *csvSheet) Name() string { return s.name }

func (s *csvSheet) Err() error { return s.err }

func (s *csvSheet) reader() (*csv.Reader, io.Closer, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %s: %w", ErrUnreadableFormat, s.path, err)
	}

	r := csv.NewReader(f)
	r.Comma = s.comma
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	return r, f, nil
}

func (s *csvSheet) Header(row int) ([]string, error) {
	r, closer, err := s.reader()
	if err != nil {
		return nil, err
	}
	defer closer.Close()

	for n := 1; ; n++ {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: row %d of %d", ErrNoHeader, row, n-1)
		}

		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrUnreadableFormat, s.path, err)
		}

		if n == row {
			return trimHeader(rec), nil
		}
	}
}

func (s *csvSheet) Rows(start int) iter.Seq2[int, []any] {
	return func(yield func(int, []any) bool) {
		s.err = nil

		r, closer, err := s.reader()
		if err != nil {
			s.err = err
			return
		}
		defer closer.Close()

		for n := 1; ; n++ {
			rec, err := r.Read()
			if errors.Is(err, io.EOF) {
				return
			}

			if err != nil {
				s.err = fmt.Errorf("%w: %s: %w", ErrUnreadableFormat, s.path, err)
				return
			}

			if n < start {
				continue
			}

			if !yield(n, toAny(rec)) {
				return
			}
		}
	}
}
