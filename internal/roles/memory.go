package roles

import (
	"context"
	"sort"
	"sync"

	"catalog-bot/internal/models"
)

// MemoryStore is an in-memory Store for tests and local development
type MemoryStore struct {
	mu    sync.RWMutex
	byID  map[int64]models.Role
}

// NewMemoryStore creates an empty in-memory role store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{byID: make(map[int64]models.Role)}
}

func (ms *MemoryStore) RoleOf(ctx context.Context, identity int64) (models.Role, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()
	return ms.byID[identity], nil
}

func (ms *MemoryStore) Grant(ctx context.Context, identity int64, role models.Role) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.byID[identity] = role
	return nil
}

// Revoke removes an identity's role entirely. Used by tests to model
// mid-flow access revocation.
func (ms *MemoryStore) Revoke(identity int64) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	delete(ms.byID, identity)
}

func (ms *MemoryStore) IdentitiesWith(ctx context.Context, role models.Role) ([]int64, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	var ids []int64
	for id, r := range ms.byID {
		if r == role {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}
