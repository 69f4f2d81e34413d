package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"

	"sheet-importer/internal/ctxlog"
	"sheet-importer/internal/record"
)

const ext = ".json"

// FileStore keeps records under <root>/<objectType>/<id>.json.
type FileStore struct {
	root  string
	cache *lru.Cache[string, record.Record]
}

// NewFileStore returns a store rooted at root. A positive cacheSize keeps
// that many recently read or written records in memory.
func NewFileStore(root string, cacheSize int) (*FileStore, error) {
	s := &FileStore{root: root}

	if cacheSize > 0 {
		cache, err := lru.New[string, record.Record](cacheSize)
		if err != nil {
			return nil, fmt.Errorf("creating record cache: %w", err)
		}

		s.cache = cache
	}

	return s, nil
}

// Root returns the destination directory.
func (s *FileStore) Root() string { return s.root }

// Path returns the file a record is stored in.
func (s *FileStore) Path(objectType, id string) string {
	return filepath.Join(s.root, objectType, id+ext)
}

func (s *FileStore) Check(context.Context) error {
	info, err := os.Stat(s.root)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrRootMissing, s.root)
		}

		return fmt.Errorf("checking destination root: %w", err)
	}

	if !info.IsDir() {
		return fmt.Errorf("%w: %s is not a directory", ErrRootMissing, s.root)
	}

	return nil
}

func (s *FileStore) Read(ctx context.Context, objectType, id string) (record.Record, bool, error) {
	if err := checkKey(objectType, id); err != nil {
		return nil, false, err
	}

	key := objectType + "/" + id
	if s.cache != nil {
		if rec, ok := s.cache.Get(key); ok {
			return rec.Clone(), true, nil
		}
	}

	data, err := os.ReadFile(s.Path(objectType, id))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}

		return nil, false, fmt.Errorf("reading %s %q: %w", objectType, id, err)
	}

	var rec record.Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, false, fmt.Errorf("decoding %s %q: %w", objectType, id, err)
	}

	if rec == nil {
		rec = record.New()
	}

	ctxlog.FromContext(ctx).Debug("Record loaded from store.", "type", objectType, "id", id)

	if s.cache != nil {
		s.cache.Add(key, rec.Clone())
	}

	return rec, true, nil
}

func (s *FileStore) Write(ctx context.Context, objectType, id string, rec record.Record, overwrite bool) error {
	if err := checkKey(objectType, id); err != nil {
		return err
	}

	if err := s.Check(ctx); err != nil {
		return err
	}

	path := s.Path(objectType, id)

	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%w: %s %q", ErrExists, objectType, id)
		}
	}

	data, err := encode(rec)
	if err != nil {
		return fmt.Errorf("encoding %s %q: %w", objectType, id, err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}

	if err := writeAtomic(dir, path, data); err != nil {
		return fmt.Errorf("writing %s %q: %w", objectType, id, err)
	}

	if s.cache != nil {
		s.cache.Add(objectType+"/"+id, rec.Clone())
	}

	return nil
}

func (s *FileStore) List(_ context.Context, objectType string) ([]string, error) {
	if err := checkName("object type", objectType); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(filepath.Join(s.root, objectType))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}

		return nil, fmt.Errorf("listing %s: %w", objectType, err)
	}

	var ids []string

	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ext) {
			continue
		}

		ids = append(ids, strings.TrimSuffix(e.Name(), ext))
	}

	slices.Sort(ids)

	return ids, nil
}

func encode(rec record.Record) ([]byte, error) {
	var buf bytes.Buffer

	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)

	if err := enc.Encode(rec); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

func writeAtomic(dir, path string, data []byte) error {
	tmp, err := os.CreateTemp(dir, ".tmp-*"+ext)
	if err != nil {
		return err
	}

	name := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(name)

		return err
	}

	if err := tmp.Close(); err != nil {
		_ = os.Remove(name)
		return err
	}

	if err := os.Rename(name, path); err != nil {
		_ = os.Remove(name)
		return err
	}

	return nil
}
