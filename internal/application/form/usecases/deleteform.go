package usecases

import (
	"context"
	"fmt"

	"github.com/formcraft-io/formcraft/internal/domain/form"
	"github.com/formcraft-io/formcraft/internal/shared/logger"
)

// SharingCleaner drops the sharing rules of a form.
type SharingCleaner interface {
	ForgetForm(formSID string) error
}

type DeleteFormUseCase struct {
	formRepo form.Repository
	authz    Authorizer
	sharing  SharingCleaner
	logger   logger.Interface
}

func NewDeleteFormUseCase(formRepo form.Repository, authz Authorizer, logger logger.Interface) *DeleteFormUseCase {
	return &DeleteFormUseCase{
		formRepo: formRepo,
		authz:    authz,
		logger:   logger,
	}
}

func (uc *DeleteFormUseCase) SetSharingCleaner(c SharingCleaner) {
	uc.sharing = c
}

// Execute soft deletes the form. Versions and submissions stay in storage.
func (uc *DeleteFormUseCase) Execute(ctx context.Context, userID uint, formSID string) error {
	f, err := loadForm(ctx, uc.formRepo, uc.authz, uc.logger, formSID, userID, accessModify, false)
	if err != nil {
		return err
	}

	if err := uc.formRepo.Delete(ctx, f.ID()); err != nil {
		uc.logger.Errorw("failed to delete form", "error", err, "form_id", formSID)
		return fmt.Errorf("failed to delete form: %w", err)
	}

	if uc.sharing != nil {
		if err := uc.sharing.ForgetForm(formSID); err != nil {
			uc.logger.Warnw("failed to drop sharing rules of deleted form", "error", err, "form_id", formSID)
		}
	}

	uc.logger.Infow("form deleted", "form_id", formSID, "user_id", userID)
	return nil
}
