package usecases

import (
	"context"
	"fmt"

	"github.com/formcraft-io/formcraft/internal/application/form/dto"
	"github.com/formcraft-io/formcraft/internal/domain/form"
	"github.com/formcraft-io/formcraft/internal/shared/logger"
)

type ListSubmissionsQuery struct {
	UserID   uint
	FormSID  string
	Page     int
	PageSize int
}

type ListSubmissionsResult struct {
	Submissions []*dto.SubmissionDTO
	Total       int64
}

type ListSubmissionsUseCase struct {
	formRepo       form.Repository
	submissionRepo form.SubmissionRepository
	authz          Authorizer
	logger         logger.Interface
}

func NewListSubmissionsUseCase(formRepo form.Repository, submissionRepo form.SubmissionRepository, authz Authorizer, logger logger.Interface) *ListSubmissionsUseCase {
	return &ListSubmissionsUseCase{
		formRepo:       formRepo,
		submissionRepo: submissionRepo,
		authz:          authz,
		logger:         logger,
	}
}

func (uc *ListSubmissionsUseCase) Execute(ctx context.Context, query ListSubmissionsQuery) (*ListSubmissionsResult, error) {
	f, err := loadForm(ctx, uc.formRepo, uc.authz, uc.logger, query.FormSID, query.UserID, accessRead, false)
	if err != nil {
		return nil, err
	}

	submissions, total, err := uc.submissionRepo.ListByForm(ctx, f.ID(), query.Page, query.PageSize)
	if err != nil {
		uc.logger.Errorw("failed to list submissions", "error", err, "form_id", query.FormSID)
		return nil, fmt.Errorf("failed to list submissions: %w", err)
	}

	items := make([]*dto.SubmissionDTO, 0, len(submissions))
	for _, s := range submissions {
		items = append(items, dto.ToSubmissionDTO(f.SID(), s))
	}
	return &ListSubmissionsResult{Submissions: items, Total: total}, nil
}
