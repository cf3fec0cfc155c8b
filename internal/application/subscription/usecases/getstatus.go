package usecases

import (
	"context"
	"fmt"

	"github.com/formcraft-io/formcraft/internal/application/subscription/dto"
	"github.com/formcraft-io/formcraft/internal/domain/subscription"
	"github.com/formcraft-io/formcraft/internal/shared/logger"
)

// GetSubscriptionStatusUseCase reports the user's latest subscription. A
// SUSPENDED subscription is reported as such so the UI can prompt for payment.
type GetSubscriptionStatusUseCase struct {
	subscriptionRepo subscription.Repository
	logger           logger.Interface
}

func NewGetSubscriptionStatusUseCase(subscriptionRepo subscription.Repository, logger logger.Interface) *GetSubscriptionStatusUseCase {
	return &GetSubscriptionStatusUseCase{subscriptionRepo: subscriptionRepo, logger: logger}
}

func (uc *GetSubscriptionStatusUseCase) Execute(ctx context.Context, userID uint) (*dto.SubscriptionStatusDTO, error) {
	sub, err := uc.subscriptionRepo.GetActiveByUserID(ctx, userID)
	if err != nil {
		uc.logger.Errorw("failed to get active subscription", "error", err, "user_id", userID)
		return nil, fmt.Errorf("failed to get subscription: %w", err)
	}
	if sub == nil {
		sub, err = uc.subscriptionRepo.GetLatestByUserID(ctx, userID)
		if err != nil {
			uc.logger.Errorw("failed to get latest subscription", "error", err, "user_id", userID)
			return nil, fmt.Errorf("failed to get subscription: %w", err)
		}
	}
	return dto.ToSubscriptionStatusDTO(sub), nil
}
