package usecases

import (
	"context"
	"fmt"

	"github.com/formcraft-io/formcraft/internal/application/form/dto"
	"github.com/formcraft-io/formcraft/internal/domain/form"
	apperrors "github.com/formcraft-io/formcraft/internal/shared/errors"
	"github.com/formcraft-io/formcraft/internal/shared/logger"
)

type GetFormUseCase struct {
	formRepo    form.Repository
	versionRepo form.VersionRepository
	authz       Authorizer
	logger      logger.Interface
}

func NewGetFormUseCase(formRepo form.Repository, versionRepo form.VersionRepository, authz Authorizer, logger logger.Interface) *GetFormUseCase {
	return &GetFormUseCase{
		formRepo:    formRepo,
		versionRepo: versionRepo,
		authz:       authz,
		logger:      logger,
	}
}

// Execute returns the form with its latest version for an authorized user.
func (uc *GetFormUseCase) Execute(ctx context.Context, userID uint, formSID string) (*dto.FormDetailDTO, error) {
	f, err := loadForm(ctx, uc.formRepo, uc.authz, uc.logger, formSID, userID, accessRead, false)
	if err != nil {
		return nil, err
	}
	return uc.detail(ctx, f)
}

// ExecutePublic returns a PUBLISHED form to anonymous respondents.
func (uc *GetFormUseCase) ExecutePublic(ctx context.Context, formSID string) (*dto.FormDetailDTO, error) {
	f, err := uc.formRepo.GetBySID(ctx, formSID)
	if err != nil {
		uc.logger.Errorw("failed to get form", "error", err, "form_id", formSID)
		return nil, fmt.Errorf("failed to get form: %w", err)
	}
	if f == nil || !f.IsPublished() {
		return nil, apperrors.NewNotFoundError("form not found", formSID)
	}
	return uc.detail(ctx, f)
}

func (uc *GetFormUseCase) detail(ctx context.Context, f *form.Form) (*dto.FormDetailDTO, error) {
	latest, err := uc.versionRepo.GetLatest(ctx, f.ID())
	if err != nil {
		uc.logger.Errorw("failed to get latest form version", "error", err, "form_id", f.SID())
		return nil, fmt.Errorf("failed to get latest form version: %w", err)
	}
	return &dto.FormDetailDTO{
		FormDTO: *dto.ToFormDTO(f),
		Version: dto.ToVersionDTO(f.SID(), latest),
	}, nil
}
