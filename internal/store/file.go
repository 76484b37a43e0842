package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"catalog-bot/internal/models"
)

// FileStore persists each catalog as a standalone JSON document under
// a data directory, one file per catalog number.
//
// Versions are content hashes of the stored bytes and the compare step
// is guarded by a process-local mutex, so compare-and-swap holds only
// within a single process. This is the reduced-safety mode for local
// deployments; multi-instance setups should use the redis backend.
type FileStore struct {
	dir string
	mu  sync.Mutex
}

// NewFileStore creates the data directory if needed
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create catalog dir: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

func (fs *FileStore) path(n int) string {
	return filepath.Join(fs.dir, fmt.Sprintf("catalog%d.json", n))
}

// Load reads a catalog document. A catalog that has never been written
// is synthesized with a default name and VersionNone.
func (fs *FileStore) Load(ctx context.Context, n int) (models.Catalog, Version, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return fs.loadLocked(n)
}

func (fs *FileStore) loadLocked(n int) (models.Catalog, Version, error) {
	data, err := os.ReadFile(fs.path(n))
	if os.IsNotExist(err) {
		return DefaultCatalog(n), VersionNone, nil
	}
	if err != nil {
		return models.Catalog{}, VersionNone, fmt.Errorf("failed to read catalog %d: %w", n, err)
	}

	var catalog models.Catalog
	if err := json.Unmarshal(data, &catalog); err != nil {
		return models.Catalog{}, VersionNone, fmt.Errorf("failed to decode catalog %d: %w", n, err)
	}
	if catalog.Items == nil {
		catalog.Items = []models.Product{}
	}
	return catalog, versionOf(data), nil
}

// Save writes the catalog only if the on-disk version still matches
// expected, via an atomic temp-file rename
func (fs *FileStore) Save(ctx context.Context, n int, catalog models.Catalog, expected Version) (Version, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	current := VersionNone
	if data, err := os.ReadFile(fs.path(n)); err == nil {
		current = versionOf(data)
	} else if !os.IsNotExist(err) {
		return VersionNone, fmt.Errorf("failed to read catalog %d: %w", n, err)
	}

	if current != expected {
		return VersionNone, fmt.Errorf("catalog %d: %w", n, ErrConflict)
	}

	data, version, err := encodeCatalog(catalog)
	if err != nil {
		return VersionNone, err
	}

	tmp, err := os.CreateTemp(fs.dir, fmt.Sprintf("catalog%d-*.tmp", n))
	if err != nil {
		return VersionNone, fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return VersionNone, fmt.Errorf("failed to write catalog %d: %w", n, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return VersionNone, fmt.Errorf("failed to write catalog %d: %w", n, err)
	}
	if err := os.Rename(tmpName, fs.path(n)); err != nil {
		os.Remove(tmpName)
		return VersionNone, fmt.Errorf("failed to replace catalog %d: %w", n, err)
	}

	return version, nil
}
