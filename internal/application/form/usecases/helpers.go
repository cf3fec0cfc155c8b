package usecases

import (
	"context"
	"errors"
	"fmt"

	"github.com/formcraft-io/formcraft/internal/domain/form"
	apperrors "github.com/formcraft-io/formcraft/internal/shared/errors"
	"github.com/formcraft-io/formcraft/internal/shared/logger"
)

type accessMode int

const (
	accessRead accessMode = iota
	accessModify
)

// translateError maps domain errors onto application errors. Errors that
// already are AppErrors pass through unchanged.
func translateError(err error) error {
	if err == nil || apperrors.IsAppError(err) {
		return err
	}
	var schemaErr *form.SchemaError
	switch {
	case errors.As(err, &schemaErr):
		if schemaErr.Path != "" {
			return apperrors.NewValidationError(schemaErr.Message, schemaErr.Path)
		}
		return apperrors.NewValidationError(schemaErr.Message)
	case errors.Is(err, form.ErrLastVersion),
		errors.Is(err, form.ErrMostRecentVersion),
		errors.Is(err, form.ErrInvalidTransition),
		errors.Is(err, form.ErrFormHasNoVersion):
		return apperrors.NewInvariantViolationError(err.Error())
	case errors.Is(err, form.ErrFormNotFound):
		return apperrors.NewNotFoundError("form not found")
	case errors.Is(err, form.ErrVersionNotFound):
		return apperrors.NewNotFoundError("form version not found")
	}
	return err
}

// loadForm fetches a form by short id and checks the caller's access.
func loadForm(
	ctx context.Context,
	repo form.Repository,
	authz Authorizer,
	log logger.Interface,
	formSID string,
	userID uint,
	mode accessMode,
	forUpdate bool,
) (*form.Form, error) {
	var (
		f   *form.Form
		err error
	)
	if forUpdate {
		f, err = repo.GetBySIDForUpdate(ctx, formSID)
	} else {
		f, err = repo.GetBySID(ctx, formSID)
	}
	if err != nil {
		log.Errorw("failed to get form", "error", err, "form_id", formSID)
		return nil, fmt.Errorf("failed to get form: %w", err)
	}
	if f == nil {
		return nil, apperrors.NewNotFoundError("form not found", formSID)
	}

	canRead, err := authz.CanAccessForm(ctx, userID, f)
	if err != nil {
		log.Errorw("failed to check form access", "error", err, "form_id", formSID, "user_id", userID)
		return nil, fmt.Errorf("failed to check form access: %w", err)
	}
	if !canRead {
		return nil, apperrors.NewForbiddenError("access denied to form", formSID)
	}
	if mode == accessRead {
		return f, nil
	}

	canModify, err := authz.CanModifyForm(ctx, userID, f)
	if err != nil {
		log.Errorw("failed to check form access", "error", err, "form_id", formSID, "user_id", userID)
		return nil, fmt.Errorf("failed to check form access: %w", err)
	}
	if !canModify {
		return nil, apperrors.NewForbiddenError("access denied to form", formSID)
	}
	return f, nil
}
