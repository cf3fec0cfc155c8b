package usecases

import (
	"context"
	"fmt"

	"github.com/formcraft-io/formcraft/internal/application/subscription/dto"
	"github.com/formcraft-io/formcraft/internal/domain/subscription"
	"github.com/formcraft-io/formcraft/internal/shared/logger"
)

type ListPlansUseCase struct {
	planRepo subscription.PlanRepository
	logger   logger.Interface
}

func NewListPlansUseCase(planRepo subscription.PlanRepository, logger logger.Interface) *ListPlansUseCase {
	return &ListPlansUseCase{planRepo: planRepo, logger: logger}
}

func (uc *ListPlansUseCase) Execute(ctx context.Context) ([]*dto.PlanDTO, error) {
	plans, err := uc.planRepo.List(ctx)
	if err != nil {
		uc.logger.Errorw("failed to list plans", "error", err)
		return nil, fmt.Errorf("failed to list plans: %w", err)
	}

	result := make([]*dto.PlanDTO, 0, len(plans))
	for _, p := range plans {
		features, err := uc.planRepo.GetFeatures(ctx, p.ID())
		if err != nil {
			uc.logger.Errorw("failed to get plan features", "error", err, "plan_id", p.ID())
			return nil, fmt.Errorf("failed to get plan features: %w", err)
		}
		result = append(result, dto.ToPlanDTO(p, features))
	}
	return result, nil
}
