package usecases

import (
	"context"
	"fmt"

	"github.com/formcraft-io/formcraft/internal/domain/form"
	"github.com/formcraft-io/formcraft/internal/shared/db"
	apperrors "github.com/formcraft-io/formcraft/internal/shared/errors"
	"github.com/formcraft-io/formcraft/internal/shared/logger"
)

// UpdateFormCommand changes title and description. A non-nil Schema is
// stored as a new version in the same transaction.
type UpdateFormCommand struct {
	UserID      uint
	FormSID     string
	Title       *string
	Description *string
	Schema      form.Schema
}

type UpdateFormResult struct {
	Form    *form.Form
	Version *form.Version
}

type UpdateFormUseCase struct {
	formRepo  form.Repository
	versions  *VersionManager
	authz     Authorizer
	txManager db.Transactor
	logger    logger.Interface
}

func NewUpdateFormUseCase(
	formRepo form.Repository,
	versions *VersionManager,
	authz Authorizer,
	txManager db.Transactor,
	logger logger.Interface,
) *UpdateFormUseCase {
	return &UpdateFormUseCase{
		formRepo:  formRepo,
		versions:  versions,
		authz:     authz,
		txManager: txManager,
		logger:    logger,
	}
}

func (uc *UpdateFormUseCase) Execute(ctx context.Context, cmd UpdateFormCommand) (*UpdateFormResult, error) {
	if cmd.Schema != nil {
		if err := form.ValidateSchema(cmd.Schema); err != nil {
			return nil, translateError(err)
		}
	}

	result := &UpdateFormResult{}
	err := uc.txManager.RunInTransaction(ctx, func(txCtx context.Context) error {
		f, err := loadForm(txCtx, uc.formRepo, uc.authz, uc.logger, cmd.FormSID, cmd.UserID, accessModify, true)
		if err != nil {
			return err
		}

		if cmd.Title != nil || cmd.Description != nil {
			title, description := f.Title(), f.Description()
			if cmd.Title != nil {
				title = *cmd.Title
			}
			if cmd.Description != nil {
				description = *cmd.Description
			}
			if err := f.UpdateDetails(title, description); err != nil {
				return apperrors.NewValidationError(err.Error())
			}
			if err := uc.formRepo.Update(txCtx, f); err != nil {
				uc.logger.Errorw("failed to update form", "error", err, "form_id", cmd.FormSID)
				return fmt.Errorf("failed to update form: %w", err)
			}
		}

		if cmd.Schema != nil {
			result.Version, err = uc.versions.appendVersion(txCtx, f, cmd.Schema)
			if err != nil {
				return err
			}
		}
		result.Form = f
		return nil
	})
	if err != nil {
		return nil, translateError(err)
	}

	uc.logger.Infow("form updated", "form_id", cmd.FormSID, "user_id", cmd.UserID, "new_version", result.Version != nil)
	return result, nil
}
