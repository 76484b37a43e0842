package wizard

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"catalog-bot/internal/models"
	"catalog-bot/internal/roles"
	"catalog-bot/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	ownerID   = int64(100)
	adminID   = int64(200)
	courierID = int64(300)
)

type fakeSender struct {
	msgs   []string
	failAt map[int64]bool
}

func (f *fakeSender) Send(ctx context.Context, identity int64, text string) error {
	if f.failAt[identity] {
		return errors.New("send failed")
	}
	f.msgs = append(f.msgs, text)
	return nil
}

func (f *fakeSender) SendMenu(ctx context.Context, identity int64, text string, rows [][]string) error {
	return f.Send(ctx, identity, text)
}

func (f *fakeSender) SendShopLink(ctx context.Context, identity int64, text string) error {
	return f.Send(ctx, identity, text)
}

func (f *fakeSender) last() string {
	if len(f.msgs) == 0 {
		return ""
	}
	return f.msgs[len(f.msgs)-1]
}

type fixture struct {
	engine    *Engine
	sender    *fakeSender
	roleSvc   *roles.Service
	roleStore *roles.MemoryStore
	catalogs  store.CatalogStore
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	catalogs, err := store.NewFileStore(t.TempDir())
	require.NoError(t, err)

	roleStore := roles.NewMemoryStore()
	roleSvc := roles.NewService(roleStore, ownerID)
	ctx := context.Background()
	require.NoError(t, roleSvc.Grant(ctx, ownerID, adminID, models.RoleAdmin))
	require.NoError(t, roleSvc.Grant(ctx, ownerID, courierID, models.RoleCourier))

	sender := &fakeSender{failAt: map[int64]bool{}}
	return &fixture{
		engine:    NewEngine(sender, roleSvc, catalogs, 4),
		sender:    sender,
		roleSvc:   roleSvc,
		roleStore: roleStore,
		catalogs:  catalogs,
	}
}

func (f *fixture) seedCatalog(t *testing.T, n int, items ...models.Product) {
	t.Helper()
	ctx := context.Background()
	catalog, version, err := f.catalogs.Load(ctx, n)
	require.NoError(t, err)
	catalog.Items = append(catalog.Items, items...)
	_, err = f.catalogs.Save(ctx, n, catalog, version)
	require.NoError(t, err)
}

func (f *fixture) loadCatalog(t *testing.T, n int) models.Catalog {
	t.Helper()
	catalog, _, err := f.catalogs.Load(context.Background(), n)
	require.NoError(t, err)
	return catalog
}

func say(t *testing.T, f *fixture, identity int64, inputs ...string) {
	t.Helper()
	for _, input := range inputs {
		require.NoError(t, f.engine.HandleText(context.Background(), identity, input))
	}
}

func TestAddProductScenario(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.engine.HandleCommand(ctx, adminID, CmdAddProduct))
	say(t, f, adminID, "2", "Tea", "Green tea", "none", "100g", "350", "none", "No")

	assert.Equal(t, msgProductAdded, f.sender.last())
	assert.Equal(t, StepNone, f.engine.SessionStep(adminID))

	catalog := f.loadCatalog(t, 2)
	require.Len(t, catalog.Items, 1)
	product := catalog.Items[0]
	assert.Equal(t, "Tea", product.Name)
	assert.Equal(t, "Green tea", product.Description)
	assert.Empty(t, product.Image)
	assert.NotEmpty(t, product.ID)
	require.Len(t, product.Subcategories, 1)
	assert.Equal(t, models.Variant{Type: "100g", Price: 350}, product.Subcategories[0])
}

func TestAddProductWithPhotosAndVariantLoop(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.engine.HandleCommand(ctx, adminID, CmdAddProduct))
	say(t, f, adminID, "1", "Coffee", "Arabica beans")
	require.NoError(t, f.engine.HandlePhoto(ctx, adminID, "photo-main"))
	say(t, f, adminID, "250g", "900")
	require.NoError(t, f.engine.HandlePhoto(ctx, adminID, "photo-250"))
	say(t, f, adminID, "Yes", "1kg", "3200", "none", "No")

	catalog := f.loadCatalog(t, 1)
	require.Len(t, catalog.Items, 1)
	product := catalog.Items[0]
	assert.Equal(t, "photo-main", product.Image)
	require.Len(t, product.Subcategories, 2)
	assert.Equal(t, models.Variant{Type: "250g", Price: 900, Image: "photo-250"}, product.Subcategories[0])
	assert.Equal(t, models.Variant{Type: "1kg", Price: 3200}, product.Subcategories[1])
}

func TestInvalidPriceDoesNotAdvance(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.engine.HandleCommand(ctx, adminID, CmdAddProduct))
	say(t, f, adminID, "3", "Tea", "desc", "none", "100g")
	require.Equal(t, StepAddVariantPrice, f.engine.SessionStep(adminID))

	for _, bad := range []string{"-5", "0", "abc", "+Inf", "NaN"} {
		say(t, f, adminID, bad)
		assert.Equal(t, msgBadPrice, f.sender.last(), "input %q", bad)
		assert.Equal(t, StepAddVariantPrice, f.engine.SessionStep(adminID), "input %q", bad)
	}

	say(t, f, adminID, "350")
	assert.Equal(t, StepAddVariantPhoto, f.engine.SessionStep(adminID))
}

func TestInvalidCatalogNumberDoesNotAdvance(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.engine.HandleCommand(ctx, adminID, CmdAddProduct))
	for _, bad := range []string{"0", "5", "abc", "-1"} {
		say(t, f, adminID, bad)
		assert.Equal(t, StepAddCatalog, f.engine.SessionStep(adminID), "input %q", bad)
	}
	say(t, f, adminID, "4")
	assert.Equal(t, StepAddName, f.engine.SessionStep(adminID))
}

func TestOptionalPhotoStepRejectsOrdinaryText(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.engine.HandleCommand(ctx, adminID, CmdAddProduct))
	say(t, f, adminID, "1", "Tea", "desc")
	require.Equal(t, StepAddPhoto, f.engine.SessionStep(adminID))

	// Anything but a photo or the literal "none" re-prompts.
	say(t, f, adminID, "skip")
	assert.Equal(t, msgBadPhotoStep, f.sender.last())
	assert.Equal(t, StepAddPhoto, f.engine.SessionStep(adminID))

	say(t, f, adminID, "NONE")
	assert.Equal(t, StepAddVariantType, f.engine.SessionStep(adminID))
}

func TestPhotoAtTextStepIsRejected(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.engine.HandleCommand(ctx, adminID, CmdAddProduct))
	say(t, f, adminID, "1")
	require.Equal(t, StepAddName, f.engine.SessionStep(adminID))

	require.NoError(t, f.engine.HandlePhoto(ctx, adminID, "photo-x"))
	assert.Equal(t, msgPhotoNotHere, f.sender.last())
	assert.Equal(t, StepAddName, f.engine.SessionStep(adminID))
}

func TestCourierDeniedNoSessionCreated(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.engine.HandleCommand(ctx, courierID, CmdAdminPanel))
	assert.Equal(t, msgAccessDenied, f.sender.last())
	assert.Equal(t, StepNone, f.engine.SessionStep(courierID))
}

func TestStartWelcomesAnyone(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// A customer with no role gets the welcome, never a denial.
	const visitorID = int64(999)
	require.NoError(t, f.engine.HandleCommand(ctx, visitorID, CmdStart))
	assert.Equal(t, msgWelcome, f.sender.last())
	assert.NotContains(t, f.sender.msgs, msgAccessDenied)
	assert.Equal(t, StepNone, f.engine.SessionStep(visitorID))

	require.NoError(t, f.engine.HandleCommand(ctx, courierID, CmdStart))
	assert.Equal(t, msgWelcome, f.sender.last())
}

func TestUnknownCommandFromVisitorIsSilent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.engine.HandleCommand(ctx, 999, "help"))
	assert.Empty(t, f.sender.msgs)
	assert.Equal(t, StepNone, f.engine.SessionStep(999))
}

func TestIdleTextIsIgnored(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.engine.HandleText(ctx, adminID, "hello"))
	require.NoError(t, f.engine.HandlePhoto(ctx, adminID, "photo"))
	assert.Empty(t, f.sender.msgs)
}

func TestCancelDestroysSession(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.engine.HandleCommand(ctx, adminID, CmdAddProduct))
	say(t, f, adminID, "1", "Tea")
	require.Equal(t, StepAddDescription, f.engine.SessionStep(adminID))

	require.NoError(t, f.engine.HandleCommand(ctx, adminID, CmdCancel))
	assert.Equal(t, StepNone, f.engine.SessionStep(adminID))

	// Post-cancel messages are idle no-ops.
	before := len(f.sender.msgs)
	say(t, f, adminID, "desc")
	assert.Len(t, f.sender.msgs, before)
}

func TestUnrelatedCommandReplacesSession(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.engine.HandleCommand(ctx, adminID, CmdAddProduct))
	say(t, f, adminID, "1", "Tea")

	require.NoError(t, f.engine.HandleCommand(ctx, adminID, CmdEditProduct))
	assert.Equal(t, StepEditCatalog, f.engine.SessionStep(adminID))
}

func TestRevocationMidFlowAbortsWithoutWrite(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.engine.HandleCommand(ctx, adminID, CmdAddProduct))
	say(t, f, adminID, "2", "Tea", "Green tea", "none", "100g", "350", "none")
	require.Equal(t, StepAddMore, f.engine.SessionStep(adminID))

	f.roleStore.Revoke(adminID)

	say(t, f, adminID, "No")
	assert.Equal(t, msgAccessDenied, f.sender.last())
	assert.Equal(t, StepNone, f.engine.SessionStep(adminID))
	assert.Empty(t, f.loadCatalog(t, 2).Items)
}

func TestEditProductResolvesById(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// Two products sharing a display name; selection must hit the
	// chosen one by id.
	f.seedCatalog(t, 1,
		models.Product{ID: "p1", Name: "Tea", Description: "first"},
		models.Product{ID: "p2", Name: "Tea", Description: "second"},
	)

	require.NoError(t, f.engine.HandleCommand(ctx, adminID, CmdEditProduct))
	say(t, f, adminID, "1", "2. Tea", "Name", "Premium Tea")

	assert.Equal(t, msgProductUpdated, f.sender.last())
	catalog := f.loadCatalog(t, 1)
	assert.Equal(t, "Tea", catalog.Items[0].Name)
	assert.Equal(t, "Premium Tea", catalog.Items[1].Name)
	assert.Equal(t, "p2", catalog.Items[1].ID)
}

func TestEditProductAppendVariant(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.seedCatalog(t, 2, models.Product{
		ID:            "p1",
		Name:          "Tea",
		Subcategories: []models.Variant{{Type: "100g", Price: 350}},
	})

	require.NoError(t, f.engine.HandleCommand(ctx, adminID, CmdEditProduct))
	say(t, f, adminID, "2", "1", "Variant", "500g", "1500", "none")

	catalog := f.loadCatalog(t, 2)
	require.Len(t, catalog.Items[0].Subcategories, 2)
	assert.Equal(t, models.Variant{Type: "500g", Price: 1500}, catalog.Items[0].Subcategories[1])
}

func TestDeleteProduct(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.seedCatalog(t, 1,
		models.Product{ID: "p1", Name: "Tea"},
		models.Product{ID: "p2", Name: "Coffee"},
		models.Product{ID: "p3", Name: "Cocoa"},
	)

	require.NoError(t, f.engine.HandleCommand(ctx, adminID, CmdDeleteProduct))
	say(t, f, adminID, "1", "2", "Yes")

	assert.Equal(t, msgProductDeleted, f.sender.last())
	catalog := f.loadCatalog(t, 1)
	require.Len(t, catalog.Items, 2)
	assert.Equal(t, "Tea", catalog.Items[0].Name)
	assert.Equal(t, "Cocoa", catalog.Items[1].Name)
}

func TestDeleteProductDeclinedLeavesCatalogAlone(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.seedCatalog(t, 1, models.Product{ID: "p1", Name: "Tea"})

	require.NoError(t, f.engine.HandleCommand(ctx, adminID, CmdDeleteProduct))
	say(t, f, adminID, "1", "1", "No")

	assert.Equal(t, StepNone, f.engine.SessionStep(adminID))
	assert.Len(t, f.loadCatalog(t, 1).Items, 1)
}

func TestDeleteVariant(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.seedCatalog(t, 3, models.Product{
		ID:   "p1",
		Name: "Tea",
		Subcategories: []models.Variant{
			{Type: "100g", Price: 350},
			{Type: "250g", Price: 700},
		},
	})

	require.NoError(t, f.engine.HandleCommand(ctx, adminID, CmdDeleteVariant))
	say(t, f, adminID, "3", "1", "2", "Yes")

	assert.Equal(t, msgVariantDeleted, f.sender.last())
	catalog := f.loadCatalog(t, 3)
	require.Len(t, catalog.Items[0].Subcategories, 1)
	assert.Equal(t, "100g", catalog.Items[0].Subcategories[0].Type)
}

func TestAssignRoleScript(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.engine.HandleCommand(ctx, ownerID, CmdAssignRoles))
	say(t, f, ownerID, BtnAssignCourier)

	// Malformed identities re-prompt without advancing.
	for _, bad := range []string{"12x", "-5", "id 123", ""} {
		say(t, f, ownerID, bad)
		assert.Equal(t, StepRoleIdentity, f.engine.SessionStep(ownerID), "input %q", bad)
	}

	say(t, f, ownerID, "4242")
	assert.Equal(t, msgRoleAssigned, f.sender.last())
	assert.Equal(t, StepNone, f.engine.SessionStep(ownerID))

	role, err := f.roleSvc.RoleOf(ctx, 4242)
	require.NoError(t, err)
	assert.Equal(t, models.RoleCourier, role)
}

func TestRoleScriptRequiresOwner(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.engine.HandleCommand(ctx, adminID, CmdAssignRoles))
	assert.Equal(t, msgAccessDenied, f.sender.last())
	assert.Equal(t, StepNone, f.engine.SessionStep(adminID))
}

// conflictStore forces a fixed number of Save conflicts before
// delegating to the real store.
type conflictStore struct {
	store.CatalogStore
	conflicts int
}

func (c *conflictStore) Save(ctx context.Context, n int, catalog models.Catalog, expected store.Version) (store.Version, error) {
	if c.conflicts > 0 {
		c.conflicts--
		return store.VersionNone, fmt.Errorf("catalog %d: %w", n, store.ErrConflict)
	}
	return c.CatalogStore.Save(ctx, n, catalog, expected)
}

func TestCommitRetriesOnceOnConflict(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	cs := &conflictStore{CatalogStore: f.catalogs, conflicts: 1}
	f.engine.catalogs = cs

	require.NoError(t, f.engine.HandleCommand(ctx, adminID, CmdAddProduct))
	say(t, f, adminID, "1", "Tea", "desc", "none", "100g", "350", "none", "No")

	assert.Equal(t, msgProductAdded, f.sender.last())
	assert.Len(t, f.loadCatalog(t, 1).Items, 1)
}

func TestSecondConflictPreservesSessionForResubmit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	cs := &conflictStore{CatalogStore: f.catalogs, conflicts: 2}
	f.engine.catalogs = cs

	require.NoError(t, f.engine.HandleCommand(ctx, adminID, CmdAddProduct))
	say(t, f, adminID, "1", "Tea", "desc", "none", "100g", "350", "none", "No")

	// Both attempts conflicted: surfaced to the operator, session kept
	// at the final step, nothing written.
	assert.Equal(t, msgConflict, f.sender.last())
	assert.Equal(t, StepAddMore, f.engine.SessionStep(adminID))
	assert.Empty(t, f.loadCatalog(t, 1).Items)

	// Resubmitting the final step alone completes the wizard.
	say(t, f, adminID, "No")
	assert.Equal(t, msgProductAdded, f.sender.last())
	assert.Len(t, f.loadCatalog(t, 1).Items, 1)
}

// downStore fails every Save with a non-conflict error.
type downStore struct {
	store.CatalogStore
}

func (d *downStore) Save(ctx context.Context, n int, catalog models.Catalog, expected store.Version) (store.Version, error) {
	return store.VersionNone, errors.New("connection refused")
}

func TestStoreFailurePreservesSessionForRetry(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.engine.catalogs = &downStore{CatalogStore: f.catalogs}

	require.NoError(t, f.engine.HandleCommand(ctx, adminID, CmdAddProduct))
	say(t, f, adminID, "1", "Tea", "desc", "none", "100g", "350", "none", "No")

	assert.Equal(t, msgStoreDown, f.sender.last())
	assert.Equal(t, StepAddMore, f.engine.SessionStep(adminID))
	assert.Empty(t, f.loadCatalog(t, 1).Items)

	// Once the store is back, resubmitting the final step completes.
	f.engine.catalogs = f.catalogs
	say(t, f, adminID, "No")
	assert.Equal(t, msgProductAdded, f.sender.last())
	assert.Len(t, f.loadCatalog(t, 1).Items, 1)
}
