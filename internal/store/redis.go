package store

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"time"

	"catalog-bot/internal/models"

	"github.com/go-redis/redis/v8"
)

//go:embed scripts/catalog_cas.lua
var catalogCASScript string

// RedisStore persists catalog documents in Redis hashes, one per
// catalog number, with the compare-and-swap performed atomically by a
// Lua script so concurrent writers from multiple service instances
// cannot clobber each other.
type RedisStore struct {
	rdb *redis.Client
	cas *redis.Script
}

// NewRedisStore creates a Redis-backed catalog store and verifies
// connectivity
func NewRedisStore(addr, password string, db int) (*RedisStore, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &RedisStore{
		rdb: rdb,
		cas: redis.NewScript(catalogCASScript),
	}, nil
}

// Close closes the Redis connection
func (rs *RedisStore) Close() error {
	return rs.rdb.Close()
}

func (rs *RedisStore) key(n int) string {
	return fmt.Sprintf("catalog:%d", n)
}

// Load reads a catalog document and its stored version
func (rs *RedisStore) Load(ctx context.Context, n int) (models.Catalog, Version, error) {
	fields, err := rs.rdb.HGetAll(ctx, rs.key(n)).Result()
	if err != nil {
		return models.Catalog{}, VersionNone, fmt.Errorf("failed to read catalog %d: %w", n, err)
	}
	if len(fields) == 0 {
		return DefaultCatalog(n), VersionNone, nil
	}

	var catalog models.Catalog
	if err := json.Unmarshal([]byte(fields["data"]), &catalog); err != nil {
		return models.Catalog{}, VersionNone, fmt.Errorf("failed to decode catalog %d: %w", n, err)
	}
	if catalog.Items == nil {
		catalog.Items = []models.Product{}
	}
	return catalog, Version(fields["version"]), nil
}

// Save performs the compare-and-swap via the embedded Lua script
func (rs *RedisStore) Save(ctx context.Context, n int, catalog models.Catalog, expected Version) (Version, error) {
	data, version, err := encodeCatalog(catalog)
	if err != nil {
		return VersionNone, err
	}

	result, err := rs.cas.Run(ctx, rs.rdb, []string{rs.key(n)},
		string(expected), string(data), string(version)).Result()
	if err != nil {
		return VersionNone, fmt.Errorf("catalog cas script failed: %w", err)
	}

	ok, isInt := result.(int64)
	if !isInt {
		return VersionNone, fmt.Errorf("unexpected script result type")
	}
	if ok != 1 {
		return VersionNone, fmt.Errorf("catalog %d: %w", n, ErrConflict)
	}
	return version, nil
}
