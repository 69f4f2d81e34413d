// Package store persists converted records, one JSON document per record
// and one directory per object type.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"sheet-importer/internal/record"
)

var (
	// ErrExists is returned by Write when overwrite is off and the id is taken.
	ErrExists = errors.New("record already exists")
	// ErrRootMissing means the destination root does not exist.
	ErrRootMissing = errors.New("destination root missing")
	// ErrInvalidID is returned for ids or type names that cannot be file names.
	ErrInvalidID = errors.New("invalid record id")
)

// Reader looks records up by object type and id.
type Reader interface {
	Read(ctx context.Context, objectType, id string) (record.Record, bool, error)
}

// Store reads and writes records.
type Store interface {
	Reader
	// Write replaces the record at (objectType, id).
	Write(ctx context.Context, objectType, id string, rec record.Record, overwrite bool) error
	// List returns the ids stored for objectType in ascending order.
	List(ctx context.Context, objectType string) ([]string, error)
	// Check reports whether the store can be written to at all.
	Check(ctx context.Context) error
}

func checkName(kind, name string) error {
	switch {
	case name == "", name == ".", name == "..":
		return fmt.Errorf("%w: %s %q", ErrInvalidID, kind, name)
	case strings.ContainsAny(name, `/\`+"\x00"):
		return fmt.Errorf("%w: %s %q contains a path separator", ErrInvalidID, kind, name)
	}

	return nil
}

func checkKey(objectType, id string) error {
	if err := checkName("object type", objectType); err != nil {
		return err
	}

	return checkName("id", id)
}
