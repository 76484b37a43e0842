package roles

import (
	"context"
	"testing"

	"catalog-bot/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const ownerID = int64(100)

func newTestService() (*Service, *MemoryStore) {
	store := NewMemoryStore()
	return NewService(store, ownerID), store
}

func TestOwnerBootstrap(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	role, err := svc.RoleOf(ctx, ownerID)
	require.NoError(t, err)
	assert.Equal(t, models.RoleOwner, role)

	// Granting roles to other identities never disturbs the owner.
	require.NoError(t, svc.Grant(ctx, ownerID, 200, models.RoleAdmin))
	require.NoError(t, svc.Grant(ctx, ownerID, 300, models.RoleCourier))

	role, err = svc.RoleOf(ctx, ownerID)
	require.NoError(t, err)
	assert.Equal(t, models.RoleOwner, role)
	assert.True(t, svc.HasOwnerAccess(ctx, ownerID))
	assert.True(t, svc.HasAdminAccess(ctx, ownerID))
}

func TestUnknownIdentityHasNoAccess(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	role, err := svc.RoleOf(ctx, 999)
	require.NoError(t, err)
	assert.Equal(t, models.RoleNone, role)
	assert.False(t, svc.HasAdminAccess(ctx, 999))
	assert.False(t, svc.HasOwnerAccess(ctx, 999))
}

func TestGrantRequiresOwner(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	require.NoError(t, svc.Grant(ctx, ownerID, 200, models.RoleAdmin))

	// Admins cannot grant roles.
	err := svc.Grant(ctx, 200, 300, models.RoleCourier)
	assert.ErrorIs(t, err, ErrForbidden)

	role, err := svc.RoleOf(ctx, 300)
	require.NoError(t, err)
	assert.Equal(t, models.RoleNone, role)
}

func TestGrantIsIdempotent(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	require.NoError(t, svc.Grant(ctx, ownerID, 200, models.RoleCourier))
	require.NoError(t, svc.Grant(ctx, ownerID, 200, models.RoleCourier))

	couriers, err := svc.CourierIdentities(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int64{200}, couriers)
}

func TestGrantRejectsUnknownRole(t *testing.T) {
	svc, _ := newTestService()
	err := svc.Grant(context.Background(), ownerID, 200, models.Role("janitor"))
	assert.ErrorIs(t, err, ErrInvalidRole)
}

func TestCourierHasNoAdminAccess(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	require.NoError(t, svc.Grant(ctx, ownerID, 300, models.RoleCourier))
	assert.False(t, svc.HasAdminAccess(ctx, 300))
}

func TestAdminIdentitiesIncludesOwnerOnce(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()

	// Owner also persisted explicitly; must not be listed twice.
	require.NoError(t, store.Grant(ctx, ownerID, models.RoleOwner))
	require.NoError(t, svc.Grant(ctx, ownerID, 200, models.RoleAdmin))
	require.NoError(t, svc.Grant(ctx, ownerID, 300, models.RoleCourier))

	admins, err := svc.AdminIdentities(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []int64{ownerID, 200}, admins)
}
