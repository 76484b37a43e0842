package store

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"

	"catalog-bot/internal/models"
)

// Version is an opaque revision marker for a catalog document.
// VersionNone means the catalog has never been written.
type Version string

const VersionNone Version = ""

var (
	// ErrConflict is returned by Save when the store's current version
	// does not match the caller's expected version. Callers reload and
	// retry; the losing write is never applied silently.
	ErrConflict = errors.New("catalog version conflict")
)

// CatalogStore is the persistence contract for catalog documents.
// Save is a compare-and-swap: the write is accepted only when the
// store's current version matches expected.
type CatalogStore interface {
	Load(ctx context.Context, n int) (models.Catalog, Version, error)
	Save(ctx context.Context, n int, catalog models.Catalog, expected Version) (Version, error)
}

// DefaultCatalog synthesizes the lazily-created catalog returned for
// numbers that have never been written
func DefaultCatalog(n int) models.Catalog {
	return models.Catalog{
		Name:  fmt.Sprintf("Catalog %d", n),
		Items: []models.Product{},
	}
}

// encodeCatalog serializes a catalog and derives its content-hash
// version. Both backends use the same encoding so versions stay
// comparable across a load/save round trip.
func encodeCatalog(catalog models.Catalog) ([]byte, Version, error) {
	if catalog.Items == nil {
		catalog.Items = []models.Product{}
	}
	data, err := json.MarshalIndent(catalog, "", "  ")
	if err != nil {
		return nil, VersionNone, fmt.Errorf("failed to encode catalog: %w", err)
	}
	return data, versionOf(data), nil
}

func versionOf(data []byte) Version {
	sum := sha256.Sum256(data)
	return Version(hex.EncodeToString(sum[:]))
}
