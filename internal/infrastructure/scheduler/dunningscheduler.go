package scheduler

import (
	"context"
	"time"

	billingUsecases "github.com/formcraft-io/formcraft/internal/application/billing/usecases"
	"github.com/formcraft-io/formcraft/internal/shared/logger"
)

const (
	downgradeJobName    = "dunning-downgrade"
	downgradeJobTimeout = 10 * time.Minute
)

// DunningScheduler moves subscriptions that stayed suspended past the
// grace period to the free plan.
type DunningScheduler struct {
	manager   *SchedulerManager
	downgrade *billingUsecases.DowngradeSuspendedUseCase
	schedule  string
	logger    logger.Interface
}

func NewDunningScheduler(
	manager *SchedulerManager,
	downgrade *billingUsecases.DowngradeSuspendedUseCase,
	schedule string,
	logger logger.Interface,
) *DunningScheduler {
	return &DunningScheduler{
		manager:   manager,
		downgrade: downgrade,
		schedule:  schedule,
		logger:    logger,
	}
}

// Register adds the sweep to the manager. The caller starts the manager.
func (s *DunningScheduler) Register() error {
	if err := ValidateSchedule(s.schedule); err != nil {
		return err
	}
	return s.manager.RegisterJob(downgradeJobName, s.schedule, downgradeJobTimeout, s.job())
}

// RunOnce performs a sweep immediately, used on worker start so that a
// long outage does not delay overdue downgrades until the next tick.
func (s *DunningScheduler) RunOnce(ctx context.Context) {
	s.manager.RunNow(ctx, downgradeJobName, s.job())
}

func (s *DunningScheduler) job() BatchJob {
	return BatchJobFunc(func(ctx context.Context) (int, error) {
		result, err := s.downgrade.Execute(ctx)
		if err != nil {
			return 0, err
		}
		if result.Failed > 0 {
			s.logger.Warnw("some downgrades failed and will be retried", "failed", result.Failed)
		}
		return result.Downgraded, nil
	})
}
