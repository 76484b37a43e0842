package roles

import (
	"context"
	"errors"
	"fmt"

	"catalog-bot/internal/models"
	"catalog-bot/internal/util"

	"go.uber.org/zap"
)

var (
	// ErrForbidden is returned by Grant when the acting identity does
	// not hold owner access.
	ErrForbidden = errors.New("owner access required")

	// ErrInvalidRole is returned by Grant for a role outside the known set.
	ErrInvalidRole = errors.New("invalid role")
)

// Store is the persistence contract for the identity-to-role table.
// RoleOf returns RoleNone (not an error) for unknown identities.
type Store interface {
	RoleOf(ctx context.Context, identity int64) (models.Role, error)
	Grant(ctx context.Context, identity int64, role models.Role) error
	IdentitiesWith(ctx context.Context, role models.Role) ([]int64, error)
}

// Service answers authorization queries over a Store, with the
// configured owner identity always resolving to owner even when absent
// from persisted state.
type Service struct {
	store  Store
	owner  int64
	logger *zap.Logger
}

// NewService creates a role service with the given bootstrap owner
func NewService(store Store, owner int64) *Service {
	return &Service{
		store:  store,
		owner:  owner,
		logger: util.GetLogger(),
	}
}

// RoleOf resolves an identity's role. The bootstrap owner wins over
// anything persisted.
func (s *Service) RoleOf(ctx context.Context, identity int64) (models.Role, error) {
	if identity == s.owner {
		return models.RoleOwner, nil
	}
	return s.store.RoleOf(ctx, identity)
}

// HasAdminAccess reports whether the identity may use the catalog
// wizards. Backend failures are logged and resolve to false so the
// caller's gating check stays a total function.
func (s *Service) HasAdminAccess(ctx context.Context, identity int64) bool {
	role, err := s.RoleOf(ctx, identity)
	if err != nil {
		s.logger.Error("Role lookup failed",
			zap.Int64("identity", identity),
			zap.Error(err))
		return false
	}
	return role == models.RoleOwner || role == models.RoleAdmin
}

// HasOwnerAccess reports whether the identity may assign roles
func (s *Service) HasOwnerAccess(ctx context.Context, identity int64) bool {
	role, err := s.RoleOf(ctx, identity)
	if err != nil {
		s.logger.Error("Role lookup failed",
			zap.Int64("identity", identity),
			zap.Error(err))
		return false
	}
	return role == models.RoleOwner
}

// Grant upserts the target identity's role. Only an owner may grant,
// and regranting the same role is a no-op rather than an error.
func (s *Service) Grant(ctx context.Context, actor, target int64, role models.Role) error {
	if !s.HasOwnerAccess(ctx, actor) {
		return ErrForbidden
	}
	if !role.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidRole, role)
	}
	if err := s.store.Grant(ctx, target, role); err != nil {
		return fmt.Errorf("failed to grant role: %w", err)
	}
	s.logger.Info("Role granted",
		zap.Int64("actor", actor),
		zap.Int64("target", target),
		zap.String("role", string(role)))
	return nil
}

// CourierIdentities lists every identity with the courier role
func (s *Service) CourierIdentities(ctx context.Context) ([]int64, error) {
	return s.store.IdentitiesWith(ctx, models.RoleCourier)
}

// AdminIdentities lists every identity with admin access: the
// bootstrap owner plus all persisted owners and admins, deduplicated.
func (s *Service) AdminIdentities(ctx context.Context) ([]int64, error) {
	seen := map[int64]bool{s.owner: true}
	ids := []int64{s.owner}

	for _, role := range []models.Role{models.RoleOwner, models.RoleAdmin} {
		found, err := s.store.IdentitiesWith(ctx, role)
		if err != nil {
			return nil, err
		}
		for _, id := range found {
			if !seen[id] {
				seen[id] = true
				ids = append(ids, id)
			}
		}
	}
	return ids, nil
}
