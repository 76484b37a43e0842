package wizard

import (
	"context"
	"errors"
	"strings"

	"catalog-bot/internal/models"
	"catalog-bot/internal/roles"
	"catalog-bot/internal/util"

	"go.uber.org/zap"
)

// roleText drives the Role-assignment script: role kind -> numeric
// identity -> grant. Only owners reach these steps.
func (e *Engine) roleText(ctx context.Context, sess *Session, text string) error {
	switch sess.Step {
	case StepRoleKind:
		switch {
		case text == BtnAssignAdmin || strings.EqualFold(text, "admin"):
			sess.PendingRole = models.RoleAdmin
		case text == BtnAssignCourier || strings.EqualFold(text, "courier"):
			sess.PendingRole = models.RoleCourier
		default:
			return e.rejectInput(ctx, sess.Identity, msgPickFromList)
		}
		sess.Step = StepRoleIdentity
		return e.sender.Send(ctx, sess.Identity, msgPromptIdentity)

	case StepRoleIdentity:
		target, ok := parseIdentity(text)
		if !ok {
			return e.rejectInput(ctx, sess.Identity, msgBadIdentity)
		}

		err := e.roles.Grant(ctx, sess.Identity, target, sess.PendingRole)
		switch {
		case err == nil:
			e.sessions.Delete(sess.Identity)
			util.WizardCompletionsTotal.WithLabelValues("assign_role").Inc()
			return e.sender.Send(ctx, sess.Identity, msgRoleAssigned)
		case errors.Is(err, roles.ErrForbidden):
			return e.abortDenied(ctx, sess.Identity)
		default:
			e.logger.Error("Role grant failed",
				zap.Int64("actor", sess.Identity),
				zap.Int64("target", target),
				zap.Error(err))
			return e.sender.Send(ctx, sess.Identity, msgStoreDown)
		}
	}
	return nil
}
