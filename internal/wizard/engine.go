package wizard

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"catalog-bot/internal/models"
	"catalog-bot/internal/roles"
	"catalog-bot/internal/store"
	"catalog-bot/internal/util"

	"go.uber.org/zap"
)

// Sender delivers prompts and confirmations back to an operator. The
// actual network transport is the adapter's problem, not the engine's.
type Sender interface {
	Send(ctx context.Context, identity int64, text string) error
	SendMenu(ctx context.Context, identity int64, text string, rows [][]string) error
	SendShopLink(ctx context.Context, identity int64, text string) error
}

// errTargetMissing aborts a commit whose edit/delete target has been
// removed by another operator since selection.
var errTargetMissing = errors.New("target no longer exists")

// Engine is the per-operator guided-conversation state machine. One
// session per identity; every inbound event re-checks authorization,
// validates the input against the current step, and either re-prompts,
// advances, or commits a store mutation.
type Engine struct {
	sender       Sender
	roles        *roles.Service
	catalogs     store.CatalogStore
	sessions     *Sessions
	catalogCount int
	logger       *zap.Logger
	now          func() time.Time
}

// NewEngine creates a wizard engine over the given collaborators
func NewEngine(sender Sender, roleSvc *roles.Service, catalogs store.CatalogStore, catalogCount int) *Engine {
	return &Engine{
		sender:       sender,
		roles:        roleSvc,
		catalogs:     catalogs,
		sessions:     NewSessions(),
		catalogCount: catalogCount,
		logger:       util.GetLogger(),
		now:          time.Now,
	}
}

// HandleCommand starts a script, shows the admin panel, or cancels.
// Starting a command mid-flow replaces the previous session. Only the
// wizard commands are role-gated; anyone may /start, and unknown
// commands are ignored so ordinary customers never see a denial.
func (e *Engine) HandleCommand(ctx context.Context, identity int64, name string) error {
	unlock := e.sessions.Acquire(identity)
	defer unlock()

	switch name {
	case CmdStart:
		return e.sender.SendShopLink(ctx, identity, msgWelcome)

	case CmdCancel:
		e.sessions.Delete(identity)
		return e.sender.Send(ctx, identity, msgCancelled)

	case CmdAdminPanel, CmdAddProduct, CmdEditProduct,
		CmdDeleteProduct, CmdDeleteVariant, CmdAssignRoles:

	default:
		e.logger.Debug("Ignoring unknown command",
			zap.Int64("identity", identity),
			zap.String("command", name))
		return nil
	}

	ownerNeeded := name == CmdAssignRoles
	if ownerNeeded && !e.roles.HasOwnerAccess(ctx, identity) ||
		!ownerNeeded && !e.roles.HasAdminAccess(ctx, identity) {
		e.sessions.Delete(identity)
		util.WizardAccessDeniedTotal.Inc()
		return e.sender.Send(ctx, identity, msgAccessDenied)
	}

	switch name {
	case CmdAdminPanel:
		rows := [][]string{
			{BtnAddProduct},
			{BtnEditProduct},
			{BtnDeleteProduct, BtnDeleteVariant},
		}
		if e.roles.HasOwnerAccess(ctx, identity) {
			rows = append(rows, []string{BtnAssignRoles})
		}
		rows = append(rows, []string{BtnBack})
		return e.sender.SendMenu(ctx, identity, msgPanel, rows)

	case CmdAddProduct:
		e.sessions.Put(&Session{Identity: identity, Step: StepAddCatalog, Draft: &ProductDraft{}})
		return e.promptCatalog(ctx, identity)

	case CmdEditProduct:
		e.sessions.Put(&Session{Identity: identity, Step: StepEditCatalog})
		return e.promptCatalog(ctx, identity)

	case CmdDeleteProduct:
		e.sessions.Put(&Session{Identity: identity, Step: StepDeleteProductCatalog})
		return e.promptCatalog(ctx, identity)

	case CmdDeleteVariant:
		e.sessions.Put(&Session{Identity: identity, Step: StepDeleteVariantCatalog})
		return e.promptCatalog(ctx, identity)

	case CmdAssignRoles:
		e.sessions.Put(&Session{Identity: identity, Step: StepRoleKind})
		return e.sender.SendMenu(ctx, identity, msgPromptRoleKind, [][]string{
			{BtnAssignAdmin, BtnAssignCourier},
			{BtnBack},
		})

	default:
		return nil
	}
}

// HandleText advances the identity's session on a text input. Idle
// identities' plain messages are ignored entirely.
func (e *Engine) HandleText(ctx context.Context, identity int64, text string) error {
	unlock := e.sessions.Acquire(identity)
	defer unlock()

	sess := e.sessions.Get(identity)
	if sess == nil {
		return nil
	}
	if !e.authorized(ctx, identity, sess.Step) {
		return e.abortDenied(ctx, identity)
	}

	text = strings.TrimSpace(text)

	switch sess.Step {
	case StepAddCatalog, StepAddName, StepAddDescription, StepAddPhoto,
		StepAddVariantType, StepAddVariantPrice, StepAddVariantPhoto, StepAddMore:
		return e.addText(ctx, sess, text)

	case StepEditCatalog, StepEditProduct, StepEditField, StepEditName,
		StepEditDescription, StepEditPhoto, StepEditVariantType,
		StepEditVariantPrice, StepEditVariantPhoto:
		return e.editText(ctx, sess, text)

	case StepDeleteProductCatalog, StepDeleteProductTarget, StepDeleteProductConfirm,
		StepDeleteVariantCatalog, StepDeleteVariantProduct,
		StepDeleteVariantTarget, StepDeleteVariantConfirm:
		return e.deleteText(ctx, sess, text)

	case StepRoleKind, StepRoleIdentity:
		return e.roleText(ctx, sess, text)

	default:
		return nil
	}
}

// HandlePhoto advances the identity's session on a photo input. A
// photo is only a valid input shape at the photo steps.
func (e *Engine) HandlePhoto(ctx context.Context, identity int64, imageRef string) error {
	unlock := e.sessions.Acquire(identity)
	defer unlock()

	sess := e.sessions.Get(identity)
	if sess == nil {
		return nil
	}
	if !e.authorized(ctx, identity, sess.Step) {
		return e.abortDenied(ctx, identity)
	}

	switch sess.Step {
	case StepAddPhoto:
		sess.Draft.Image = imageRef
		sess.Step = StepAddVariantType
		return e.sender.Send(ctx, identity, msgPromptVarType)

	case StepAddVariantPhoto:
		return e.finishAddVariant(ctx, sess, imageRef)

	case StepEditPhoto:
		return e.commitEditPhoto(ctx, sess, imageRef)

	case StepEditVariantPhoto:
		return e.commitEditVariant(ctx, sess, imageRef)

	default:
		return e.sender.Send(ctx, identity, msgPhotoNotHere)
	}
}

// SessionStep reports the identity's current step, StepNone when idle.
// Exposed for tests and diagnostics.
func (e *Engine) SessionStep(identity int64) Step {
	unlock := e.sessions.Acquire(identity)
	defer unlock()
	if sess := e.sessions.Get(identity); sess != nil {
		return sess.Step
	}
	return StepNone
}

func (e *Engine) authorized(ctx context.Context, identity int64, step Step) bool {
	if step.ownerOnly() {
		return e.roles.HasOwnerAccess(ctx, identity)
	}
	return e.roles.HasAdminAccess(ctx, identity)
}

// abortDenied destroys the session of an operator whose access was
// revoked mid-flow; the pending action is never completed
func (e *Engine) abortDenied(ctx context.Context, identity int64) error {
	e.sessions.Delete(identity)
	util.WizardAccessDeniedTotal.Inc()
	return e.sender.Send(ctx, identity, msgAccessDenied)
}

func (e *Engine) promptCatalog(ctx context.Context, identity int64) error {
	return e.sender.Send(ctx, identity, fmt.Sprintf("Catalog number (1-%d):", e.catalogCount))
}

// parseCatalog validates a catalog-number input
func (e *Engine) parseCatalog(text string) (int, bool) {
	n, err := strconv.Atoi(text)
	if err != nil || n < 1 || n > e.catalogCount {
		return 0, false
	}
	return n, true
}

// parsePrice validates a price input: a finite number strictly above zero
func parsePrice(text string) (float64, bool) {
	price, err := strconv.ParseFloat(text, 64)
	if err != nil || math.IsNaN(price) || math.IsInf(price, 0) || price <= 0 {
		return 0, false
	}
	return price, true
}

// parseIdentity validates a literal non-negative integer id
func parseIdentity(text string) (int64, bool) {
	if text == "" {
		return 0, false
	}
	for _, r := range text {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	id, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

// rejectInput reports a validation failure and leaves the session at
// its current step; this is the wizard's only input-level recovery
func (e *Engine) rejectInput(ctx context.Context, identity int64, message string) error {
	util.WizardValidationErrorsTotal.Inc()
	return e.sender.Send(ctx, identity, message)
}

// newProductID derives a product id from creation time, matching the
// millisecond-precision decimal ids already present in stored catalogs
func (e *Engine) newProductID() string {
	return strconv.FormatInt(e.now().UnixMilli(), 10)
}

// commit runs a load-mutate-save cycle against a catalog. A conflicted
// save is retried once against a freshly reloaded catalog; a second
// conflict is returned to the caller as ErrConflict.
func (e *Engine) commit(ctx context.Context, n int, mutate func(*models.Catalog) error) error {
	ctx, span := util.StartSpan(ctx, "wizard.commit")
	defer span.End()

	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		catalog, version, err := e.catalogs.Load(ctx, n)
		if err != nil {
			return err
		}
		if err := mutate(&catalog); err != nil {
			return err
		}
		if _, err := e.catalogs.Save(ctx, n, catalog, version); err != nil {
			if errors.Is(err, store.ErrConflict) {
				util.CatalogSaveConflictsTotal.Inc()
				lastErr = err
				continue
			}
			return err
		}
		return nil
	}
	return lastErr
}

// finish reports a commit outcome to the operator. On success the
// session is destroyed; on conflict or transient store failure it is
// preserved so the operator can retry the final step without redoing
// the whole wizard.
func (e *Engine) finish(ctx context.Context, sess *Session, err error, script, success string) error {
	switch {
	case err == nil:
		e.sessions.Delete(sess.Identity)
		util.WizardCompletionsTotal.WithLabelValues(script).Inc()
		return e.sender.Send(ctx, sess.Identity, success)

	case errors.Is(err, errTargetMissing):
		e.sessions.Delete(sess.Identity)
		return e.sender.Send(ctx, sess.Identity, msgTargetMissing)

	case errors.Is(err, store.ErrConflict):
		return e.sender.Send(ctx, sess.Identity, msgConflict)

	default:
		e.logger.Error("Catalog commit failed",
			zap.Int64("identity", sess.Identity),
			zap.String("script", script),
			zap.Error(err))
		return e.sender.Send(ctx, sess.Identity, msgStoreDown)
	}
}
