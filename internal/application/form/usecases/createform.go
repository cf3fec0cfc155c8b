package usecases

import (
	"context"
	"fmt"

	"github.com/formcraft-io/formcraft/internal/domain/form"
	"github.com/formcraft-io/formcraft/internal/domain/quota"
	"github.com/formcraft-io/formcraft/internal/shared/db"
	apperrors "github.com/formcraft-io/formcraft/internal/shared/errors"
	"github.com/formcraft-io/formcraft/internal/shared/logger"
)

type CreateFormCommand struct {
	OwnerID     uint
	Title       string
	Description string
	Schema      form.Schema
}

type CreateFormResult struct {
	Form    *form.Form
	Version *form.Version
}

type CreateFormUseCase struct {
	formRepo  form.Repository
	versions  *VersionManager
	quota     QuotaEnforcer
	txManager db.Transactor
	newID     IDGenerator
	logger    logger.Interface
}

func NewCreateFormUseCase(
	formRepo form.Repository,
	versions *VersionManager,
	quota QuotaEnforcer,
	txManager db.Transactor,
	newID IDGenerator,
	logger logger.Interface,
) *CreateFormUseCase {
	return &CreateFormUseCase{
		formRepo:  formRepo,
		versions:  versions,
		quota:     quota,
		txManager: txManager,
		newID:     newID,
		logger:    logger,
	}
}

// Execute checks the create_form quota, then stores a DRAFT form together
// with its first version.
func (uc *CreateFormUseCase) Execute(ctx context.Context, cmd CreateFormCommand) (*CreateFormResult, error) {
	if cmd.Schema == nil {
		cmd.Schema = form.Schema{}
	}
	if err := form.ValidateSchema(cmd.Schema); err != nil {
		return nil, translateError(err)
	}

	if err := uc.quota.EnforceQuotaLimit(ctx, cmd.OwnerID, quota.ActionCreateForm, 1); err != nil {
		return nil, err
	}

	sid, err := uc.newID()
	if err != nil {
		uc.logger.Errorw("failed to generate form id", "error", err)
		return nil, fmt.Errorf("failed to generate form id: %w", err)
	}

	f, err := form.NewForm(sid, cmd.OwnerID, cmd.Title, cmd.Description)
	if err != nil {
		return nil, apperrors.NewValidationError(err.Error())
	}

	var version *form.Version
	err = uc.txManager.RunInTransaction(ctx, func(txCtx context.Context) error {
		if err := uc.formRepo.Create(txCtx, f); err != nil {
			uc.logger.Errorw("failed to create form", "error", err, "owner_id", cmd.OwnerID)
			return fmt.Errorf("failed to create form: %w", err)
		}
		version, err = uc.versions.appendVersion(txCtx, f, cmd.Schema)
		return err
	})
	if err != nil {
		return nil, translateError(err)
	}

	uc.logger.Infow("form created", "form_id", f.SID(), "owner_id", cmd.OwnerID)
	return &CreateFormResult{Form: f, Version: version}, nil
}
