package permission

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/formcraft-io/formcraft/internal/domain/user"
	"github.com/formcraft-io/formcraft/internal/shared/constants"
	"github.com/formcraft-io/formcraft/internal/shared/logger"
)

// PermissionSync mirrors the role column of the users table into casbin
// grouping rules and installs the admin wildcard policy.
type PermissionSync struct {
	db       *gorm.DB
	enforcer *Enforcer
	logger   logger.Interface
}

func NewPermissionSync(db *gorm.DB, enforcer *Enforcer, logger logger.Interface) *PermissionSync {
	return &PermissionSync{
		db:       db,
		enforcer: enforcer,
		logger:   logger,
	}
}

// SyncToCasbin is idempotent and safe to run on every start.
func (s *PermissionSync) SyncToCasbin(ctx context.Context) error {
	s.logger.Info("syncing permissions to casbin")

	if err := s.enforcer.AddPolicy(RoleSubject(user.RoleAdmin), "*", "*"); err != nil {
		return fmt.Errorf("failed to install admin policy: %w", err)
	}

	var adminIDs []uint
	err := s.db.WithContext(ctx).
		Table(constants.TableUsers).
		Where("role = ?", string(user.RoleAdmin)).
		Pluck("id", &adminIDs).Error
	if err != nil {
		return fmt.Errorf("failed to list admin users: %w", err)
	}

	want := make(map[string]struct{}, len(adminIDs))
	for _, id := range adminIDs {
		subject := UserSubject(id)
		want[subject] = struct{}{}
		if err := s.enforcer.AddRoleForUser(subject, RoleSubject(user.RoleAdmin)); err != nil {
			return fmt.Errorf("failed to sync admin role: %w", err)
		}
	}

	// Users demoted since the last start lose the role.
	current, err := s.enforcer.GetUsersForRole(RoleSubject(user.RoleAdmin))
	if err != nil {
		return err
	}
	for _, subject := range current {
		if _, ok := want[subject]; ok {
			continue
		}
		if err := s.enforcer.DeleteRoleForUser(subject, RoleSubject(user.RoleAdmin)); err != nil {
			return fmt.Errorf("failed to revoke admin role: %w", err)
		}
		s.logger.Infow("revoked admin role", "subject", subject)
	}

	if len(adminIDs) > 0 {
		s.logger.Infow("synced admin roles to casbin", "count", len(adminIDs))
	}
	return nil
}
