package sheet

import (
	"errors"
	"fmt"
	"iter"
	"os"
	"path/filepath"
	"strings"
)

var (
	// ErrNotFound means the workbook file does not exist.
	ErrNotFound = errors.New("workbook not found")
	// ErrUnreadableFormat means the file exists but cannot be read as a workbook.
	ErrUnreadableFormat = errors.New("unreadable workbook format")
	// ErrNoHeader means the requested header row is past the end of the sheet.
	ErrNoHeader = errors.New("header row not found")
)

// Workbook is an open spreadsheet file.
type Workbook interface {
	// Sheet returns the named sheet.
	Sheet(name string) (Sheet, bool)
	// SheetNames lists the sheets in workbook order.
	SheetNames() []string
	// Close releases the underlying file.
	Close() error
}

// Sheet is one table of raw cells. Rows are numbered from 1.
type Sheet interface {
	Name() string
	// Header returns the trimmed cells of the given row as column names.
	Header(row int) ([]string, error)
	// Rows yields (row number, cells) from start onwards.
	Rows(start int) iter.Seq2[int, []any]
	// Err reports a read error that ended the last Rows iteration early.
	Err() error
}

// Opener opens a workbook by path.
type Opener func(path string) (Workbook, error)

// Open opens the workbook at path, choosing the reader by extension.
func Open(path string) (Workbook, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}

		return nil, fmt.Errorf("%w: %s: %w", ErrUnreadableFormat, path, err)
	}

	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", ErrUnreadableFormat, path)
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".xlsx", ".xlsm", ".xltx", ".xltm":
		return openExcel(path)
	case ".csv":
		return openCSV(path, ',')
	case ".tsv":
		return openCSV(path, '\t')
	default:
		return nil, fmt.Errorf("%w: unsupported extension %q", ErrUnreadableFormat, ext)
	}
}

// lookupName finds name among names, exactly first and then ignoring case.
func lookupName(names []string, name string) (string, bool) {
	for _, n := range names {
		if n == name {
			return n, true
		}
	}

	for _, n := range names {
		if strings.EqualFold(n, name) {
			return n, true
		}
	}

	return "", false
}

func trimHeader(cells []string) []string {
	out := make([]string, len(cells))
	for i, c := range cells {
		out[i] = strings.TrimSpace(strings.TrimPrefix(c, "\ufeff"))
	}

	return out
}

func toAny(cells []string) []any {
	out := make([]any, len(cells))
	for i, c := range cells {
		out[i] = c
	}

	return out
}
