package usecases

import (
	"context"
	"fmt"

	"github.com/formcraft-io/formcraft/internal/domain/form"
	apperrors "github.com/formcraft-io/formcraft/internal/shared/errors"
	"github.com/formcraft-io/formcraft/internal/shared/logger"
)

// StatusAction names a form lifecycle transition.
type StatusAction string

const (
	ActionPublish   StatusAction = "publish"
	ActionUnpublish StatusAction = "unpublish"
	ActionArchive   StatusAction = "archive"
)

type ChangeFormStatusCommand struct {
	UserID  uint
	FormSID string
	Action  StatusAction
}

type ChangeFormStatusUseCase struct {
	formRepo form.Repository
	authz    Authorizer
	logger   logger.Interface
}

func NewChangeFormStatusUseCase(formRepo form.Repository, authz Authorizer, logger logger.Interface) *ChangeFormStatusUseCase {
	return &ChangeFormStatusUseCase{
		formRepo: formRepo,
		authz:    authz,
		logger:   logger,
	}
}

func (uc *ChangeFormStatusUseCase) Execute(ctx context.Context, cmd ChangeFormStatusCommand) (*form.Form, error) {
	f, err := loadForm(ctx, uc.formRepo, uc.authz, uc.logger, cmd.FormSID, cmd.UserID, accessModify, false)
	if err != nil {
		return nil, err
	}

	previous := f.Status()
	switch cmd.Action {
	case ActionPublish:
		err = f.Publish()
	case ActionUnpublish:
		err = f.Unpublish()
	case ActionArchive:
		err = f.Archive()
	default:
		return nil, apperrors.NewValidationError(fmt.Sprintf("unknown form action: %s", cmd.Action))
	}
	if err != nil {
		return nil, translateError(err)
	}

	if err := uc.formRepo.Update(ctx, f); err != nil {
		uc.logger.Errorw("failed to update form status", "error", err, "form_id", cmd.FormSID)
		return nil, fmt.Errorf("failed to update form status: %w", err)
	}

	uc.logger.Infow("form status changed",
		"form_id", cmd.FormSID,
		"from", previous,
		"to", f.Status(),
		"user_id", cmd.UserID,
	)
	return f, nil
}
