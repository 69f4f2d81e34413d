package store

import (
	"context"
	"fmt"
	"slices"

	"sheet-importer/internal/record"
)

// MemStore keeps records in memory. The zero value is not usable; call
// NewMemStore.
type MemStore struct {
	types map[string]map[string]record.Record
}

func NewMemStore() *MemStore {
	return &MemStore{types: map[string]map[string]record.Record{}}
}

// Put stores rec without any checks, for seeding fixtures.
func (s *MemStore) Put(objectType, id string, rec record.Record) *MemStore {
	ids, ok := s.types[objectType]
	if !ok {
		ids = map[string]record.Record{}
		s.types[objectType] = ids
	}

	ids[id] = rec.Clone()

	return s
}

func (s *MemStore) Check(context.Context) error { return nil }

func (s *MemStore) Read(_ context.Context, objectType, id string) (record.Record, bool, error) {
	rec, ok := s.types[objectType][id]
	if !ok {
		return nil, false, nil
	}

	return rec.Clone(), true, nil
}

func (s *MemStore) Write(_ context.Context, objectType, id string, rec record.Record, overwrite bool) error {
	if err := checkKey(objectType, id); err != nil {
		return err
	}

	if _, ok := s.types[objectType][id]; ok && !overwrite {
		return fmt.Errorf("%w: %s %q", ErrExists, objectType, id)
	}

	s.Put(objectType, id, rec)

	return nil
}

func (s *MemStore) List(_ context.Context, objectType string) ([]string, error) {
	ids := make([]string, 0, len(s.types[objectType]))
	for id := range s.types[objectType] {
		ids = append(ids, id)
	}

	slices.Sort(ids)

	return ids, nil
}

// Len returns the number of records across all types.
func (s *MemStore) Len() int {
	n := 0
	for _, ids := range s.types {
		n += len(ids)
	}

	return n
}
