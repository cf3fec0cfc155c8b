package usecases

import (
	"context"
	"fmt"

	"github.com/formcraft-io/formcraft/internal/domain/form"
	"github.com/formcraft-io/formcraft/internal/domain/user"
	apperrors "github.com/formcraft-io/formcraft/internal/shared/errors"
	"github.com/formcraft-io/formcraft/internal/shared/logger"
)

// Share access levels. Write implies read.
const (
	ShareAccessRead  = "read"
	ShareAccessWrite = "write"
)

type ShareFormCommand struct {
	OwnerID  uint
	FormSID  string
	TargetID uint
	Access   string
}

// ShareFormUseCase lets the owner of a form grant collaborators access.
type ShareFormUseCase struct {
	formRepo form.Repository
	userRepo user.Repository
	sharer   FormSharer
	logger   logger.Interface
}

func NewShareFormUseCase(formRepo form.Repository, userRepo user.Repository, sharer FormSharer, logger logger.Interface) *ShareFormUseCase {
	return &ShareFormUseCase{
		formRepo: formRepo,
		userRepo: userRepo,
		sharer:   sharer,
		logger:   logger,
	}
}

func (uc *ShareFormUseCase) Execute(ctx context.Context, cmd ShareFormCommand) error {
	if cmd.Access != ShareAccessRead && cmd.Access != ShareAccessWrite {
		return apperrors.NewValidationError("invalid access level", cmd.Access)
	}
	if cmd.TargetID == cmd.OwnerID {
		return apperrors.NewValidationError("cannot share a form with its owner")
	}

	if _, err := uc.ownedForm(ctx, cmd.OwnerID, cmd.FormSID); err != nil {
		return err
	}

	target, err := uc.userRepo.GetByID(ctx, cmd.TargetID)
	if err != nil {
		uc.logger.Errorw("failed to get user", "error", err, "user_id", cmd.TargetID)
		return fmt.Errorf("failed to get user: %w", err)
	}
	if target == nil {
		return apperrors.NewNotFoundError("user not found")
	}

	if err := uc.sharer.ShareForm(cmd.TargetID, cmd.FormSID, cmd.Access); err != nil {
		uc.logger.Errorw("failed to share form", "error", err, "form_id", cmd.FormSID, "target_id", cmd.TargetID)
		return fmt.Errorf("failed to share form: %w", err)
	}

	uc.logger.Infow("form shared", "form_id", cmd.FormSID, "owner_id", cmd.OwnerID, "target_id", cmd.TargetID, "access", cmd.Access)
	return nil
}

// Unshare revokes every grant the target holds on the form.
func (uc *ShareFormUseCase) Unshare(ctx context.Context, ownerID uint, formSID string, targetID uint) error {
	if _, err := uc.ownedForm(ctx, ownerID, formSID); err != nil {
		return err
	}
	if err := uc.sharer.UnshareForm(targetID, formSID); err != nil {
		uc.logger.Errorw("failed to unshare form", "error", err, "form_id", formSID, "target_id", targetID)
		return fmt.Errorf("failed to unshare form: %w", err)
	}
	uc.logger.Infow("form unshared", "form_id", formSID, "owner_id", ownerID, "target_id", targetID)
	return nil
}

// ownedForm loads the form and requires the caller to own it. Collaborators
// with write access may edit but not re-share.
func (uc *ShareFormUseCase) ownedForm(ctx context.Context, ownerID uint, formSID string) (*form.Form, error) {
	f, err := uc.formRepo.GetBySID(ctx, formSID)
	if err != nil {
		uc.logger.Errorw("failed to get form", "error", err, "form_id", formSID)
		return nil, fmt.Errorf("failed to get form: %w", err)
	}
	if f == nil {
		return nil, apperrors.NewNotFoundError("form not found", formSID)
	}
	if !f.IsOwnedBy(ownerID) {
		return nil, apperrors.NewForbiddenError("only the owner can share a form", formSID)
	}
	return f, nil
}
