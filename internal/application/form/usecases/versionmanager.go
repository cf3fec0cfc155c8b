package usecases

import (
	"context"
	"fmt"

	"github.com/formcraft-io/formcraft/internal/domain/form"
	"github.com/formcraft-io/formcraft/internal/shared/db"
	apperrors "github.com/formcraft-io/formcraft/internal/shared/errors"
	"github.com/formcraft-io/formcraft/internal/shared/logger"
)

// VersionManager owns the numbered schema history of forms. Every mutation
// runs in a transaction holding the form row lock, which serializes
// version-number assignment and pruning per form.
type VersionManager struct {
	formRepo    form.Repository
	versionRepo form.VersionRepository
	authz       Authorizer
	txManager   db.Transactor
	versionCap  int
	logger      logger.Interface
}

func NewVersionManager(
	formRepo form.Repository,
	versionRepo form.VersionRepository,
	authz Authorizer,
	txManager db.Transactor,
	versionCap int,
	logger logger.Interface,
) *VersionManager {
	if versionCap < 1 {
		versionCap = form.DefaultVersionCap
	}
	return &VersionManager{
		formRepo:    formRepo,
		versionRepo: versionRepo,
		authz:       authz,
		txManager:   txManager,
		versionCap:  versionCap,
		logger:      logger,
	}
}

// CreateVersion validates schema and appends it as the form's newest version.
func (m *VersionManager) CreateVersion(ctx context.Context, userID uint, formSID string, schema form.Schema) (*form.Version, error) {
	if err := form.ValidateSchema(schema); err != nil {
		m.logger.Warnw("schema rejected", "error", err, "form_id", formSID)
		return nil, translateError(err)
	}

	var created *form.Version
	err := m.txManager.RunInTransaction(ctx, func(txCtx context.Context) error {
		f, err := loadForm(txCtx, m.formRepo, m.authz, m.logger, formSID, userID, accessModify, true)
		if err != nil {
			return err
		}
		created, err = m.appendVersion(txCtx, f, schema)
		return err
	})
	if err != nil {
		return nil, translateError(err)
	}

	m.logger.Infow("form version created",
		"form_id", formSID,
		"version", created.VersionNumber(),
		"user_id", userID,
	)
	return created, nil
}

// RestoreVersion copies an old version's schema forward as a new version.
// The restored version keeps its number; the copy gets the next one.
func (m *VersionManager) RestoreVersion(ctx context.Context, userID uint, formSID string, versionNumber int) (*form.Version, error) {
	var created *form.Version
	err := m.txManager.RunInTransaction(ctx, func(txCtx context.Context) error {
		f, err := loadForm(txCtx, m.formRepo, m.authz, m.logger, formSID, userID, accessModify, true)
		if err != nil {
			return err
		}

		source, err := m.versionRepo.GetByNumber(txCtx, f.ID(), versionNumber)
		if err != nil {
			m.logger.Errorw("failed to get form version", "error", err, "form_id", formSID, "version", versionNumber)
			return fmt.Errorf("failed to get form version: %w", err)
		}
		if source == nil {
			return apperrors.NewNotFoundError("form version not found", fmt.Sprintf("version %d", versionNumber))
		}

		created, err = m.appendVersion(txCtx, f, source.Schema())
		return err
	})
	if err != nil {
		return nil, translateError(err)
	}

	m.logger.Infow("form version restored",
		"form_id", formSID,
		"restored_from", versionNumber,
		"version", created.VersionNumber(),
		"user_id", userID,
	)
	return created, nil
}

// DeleteVersion removes one version. The only remaining version and the
// newest version can never be deleted.
func (m *VersionManager) DeleteVersion(ctx context.Context, userID uint, formSID string, versionNumber int) error {
	err := m.txManager.RunInTransaction(ctx, func(txCtx context.Context) error {
		f, err := loadForm(txCtx, m.formRepo, m.authz, m.logger, formSID, userID, accessModify, true)
		if err != nil {
			return err
		}

		total, err := m.versionRepo.Count(txCtx, f.ID())
		if err != nil {
			m.logger.Errorw("failed to count form versions", "error", err, "form_id", formSID)
			return fmt.Errorf("failed to count form versions: %w", err)
		}
		if total <= 1 {
			return form.ErrLastVersion
		}

		target, err := m.versionRepo.GetByNumber(txCtx, f.ID(), versionNumber)
		if err != nil {
			m.logger.Errorw("failed to get form version", "error", err, "form_id", formSID, "version", versionNumber)
			return fmt.Errorf("failed to get form version: %w", err)
		}
		if target == nil {
			return apperrors.NewNotFoundError("form version not found", fmt.Sprintf("version %d", versionNumber))
		}

		maxVersion, err := m.versionRepo.MaxVersionNumber(txCtx, f.ID())
		if err != nil {
			m.logger.Errorw("failed to get latest version number", "error", err, "form_id", formSID)
			return fmt.Errorf("failed to get latest version number: %w", err)
		}
		if err := form.CheckDeletable(int(total), maxVersion, versionNumber); err != nil {
			return err
		}

		if err := m.versionRepo.Delete(txCtx, f.ID(), versionNumber); err != nil {
			m.logger.Errorw("failed to delete form version", "error", err, "form_id", formSID, "version", versionNumber)
			return fmt.Errorf("failed to delete form version: %w", err)
		}
		return nil
	})
	if err != nil {
		return translateError(err)
	}

	m.logger.Infow("form version deleted", "form_id", formSID, "version", versionNumber, "user_id", userID)
	return nil
}

// ListVersions returns the form's versions, newest first.
func (m *VersionManager) ListVersions(ctx context.Context, userID uint, formSID string) ([]*form.Version, error) {
	f, err := loadForm(ctx, m.formRepo, m.authz, m.logger, formSID, userID, accessRead, false)
	if err != nil {
		return nil, err
	}
	versions, err := m.versionRepo.ListByForm(ctx, f.ID())
	if err != nil {
		m.logger.Errorw("failed to list form versions", "error", err, "form_id", formSID)
		return nil, fmt.Errorf("failed to list form versions: %w", err)
	}
	return versions, nil
}

// GetVersion returns one version by number.
func (m *VersionManager) GetVersion(ctx context.Context, userID uint, formSID string, versionNumber int) (*form.Version, error) {
	f, err := loadForm(ctx, m.formRepo, m.authz, m.logger, formSID, userID, accessRead, false)
	if err != nil {
		return nil, err
	}
	v, err := m.versionRepo.GetByNumber(ctx, f.ID(), versionNumber)
	if err != nil {
		m.logger.Errorw("failed to get form version", "error", err, "form_id", formSID, "version", versionNumber)
		return nil, fmt.Errorf("failed to get form version: %w", err)
	}
	if v == nil {
		return nil, apperrors.NewNotFoundError("form version not found", fmt.Sprintf("version %d", versionNumber))
	}
	return v, nil
}

// appendVersion prunes down to cap-1 versions, inserts the next number and
// points the form at it. The caller must hold the form lock.
func (m *VersionManager) appendVersion(ctx context.Context, f *form.Form, schema form.Schema) (*form.Version, error) {
	total, err := m.versionRepo.Count(ctx, f.ID())
	if err != nil {
		m.logger.Errorw("failed to count form versions", "error", err, "form_id", f.SID())
		return nil, fmt.Errorf("failed to count form versions: %w", err)
	}
	maxVersion, err := m.versionRepo.MaxVersionNumber(ctx, f.ID())
	if err != nil {
		m.logger.Errorw("failed to get latest version number", "error", err, "form_id", f.SID())
		return nil, fmt.Errorf("failed to get latest version number: %w", err)
	}

	v, err := form.NewVersion(f.ID(), maxVersion+1, schema)
	if err != nil {
		return nil, err
	}

	if n := form.PruneCount(int(total), m.versionCap); n > 0 {
		if err := m.versionRepo.DeleteOldest(ctx, f.ID(), n); err != nil {
			m.logger.Errorw("failed to prune form versions", "error", err, "form_id", f.SID(), "count", n)
			return nil, fmt.Errorf("failed to prune form versions: %w", err)
		}
		m.logger.Debugw("pruned form versions", "form_id", f.SID(), "count", n)
	}

	if err := m.versionRepo.Create(ctx, v); err != nil {
		m.logger.Errorw("failed to create form version", "error", err, "form_id", f.SID(), "version", v.VersionNumber())
		return nil, fmt.Errorf("failed to create form version: %w", err)
	}

	f.SetCurrentVersion(v.VersionNumber())
	if err := m.formRepo.Update(ctx, f); err != nil {
		m.logger.Errorw("failed to update form", "error", err, "form_id", f.SID())
		return nil, fmt.Errorf("failed to update form: %w", err)
	}
	return v, nil
}
