package usecases

import (
	"context"
	"fmt"

	"github.com/formcraft-io/formcraft/internal/application/form/dto"
	"github.com/formcraft-io/formcraft/internal/domain/form"
	apperrors "github.com/formcraft-io/formcraft/internal/shared/errors"
	"github.com/formcraft-io/formcraft/internal/shared/logger"
)

type ListFormsQuery struct {
	OwnerID  uint
	Status   string
	Page     int
	PageSize int
}

type ListFormsResult struct {
	Forms []*dto.FormDTO
	Total int64
}

type ListFormsUseCase struct {
	formRepo form.Repository
	logger   logger.Interface
}

func NewListFormsUseCase(formRepo form.Repository, logger logger.Interface) *ListFormsUseCase {
	return &ListFormsUseCase{formRepo: formRepo, logger: logger}
}

func (uc *ListFormsUseCase) Execute(ctx context.Context, query ListFormsQuery) (*ListFormsResult, error) {
	filter := form.ListFilter{
		OwnerID:  query.OwnerID,
		Page:     query.Page,
		PageSize: query.PageSize,
	}
	if query.Status != "" {
		status := form.Status(query.Status)
		if !status.IsValid() {
			return nil, apperrors.NewValidationError(fmt.Sprintf("invalid form status: %s", query.Status))
		}
		filter.Status = status
	}

	forms, total, err := uc.formRepo.List(ctx, filter)
	if err != nil {
		uc.logger.Errorw("failed to list forms", "error", err, "owner_id", query.OwnerID)
		return nil, fmt.Errorf("failed to list forms: %w", err)
	}

	return &ListFormsResult{
		Forms: dto.ToFormDTOList(forms),
		Total: total,
	}, nil
}
