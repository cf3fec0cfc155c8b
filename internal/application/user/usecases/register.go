package usecases

import (
	"context"
	"fmt"

	"github.com/formcraft-io/formcraft/internal/domain/subscription"
	"github.com/formcraft-io/formcraft/internal/domain/user"
	apperrors "github.com/formcraft-io/formcraft/internal/shared/errors"
	"github.com/formcraft-io/formcraft/internal/shared/logger"
)

const minPasswordLength = 8

type RegisterCommand struct {
	Email    string
	Name     string
	Password string
}

// RegisterUseCase creates an account and starts it on the free plan.
type RegisterUseCase struct {
	userRepo     user.Repository
	planRepo     subscription.PlanRepository
	starter      SubscriptionStarter
	hasher       PasswordHasher
	freePlanSlug string
	logger       logger.Interface
}

func NewRegisterUseCase(
	userRepo user.Repository,
	planRepo subscription.PlanRepository,
	starter SubscriptionStarter,
	hasher PasswordHasher,
	freePlanSlug string,
	logger logger.Interface,
) *RegisterUseCase {
	return &RegisterUseCase{
		userRepo:     userRepo,
		planRepo:     planRepo,
		starter:      starter,
		hasher:       hasher,
		freePlanSlug: freePlanSlug,
		logger:       logger,
	}
}

func (uc *RegisterUseCase) Execute(ctx context.Context, cmd RegisterCommand) (*user.User, error) {
	if len(cmd.Password) < minPasswordLength {
		return nil, apperrors.NewValidationError(fmt.Sprintf("password must be at least %d characters", minPasswordLength))
	}

	hash, err := uc.hasher.Hash(cmd.Password)
	if err != nil {
		uc.logger.Errorw("failed to hash password", "error", err)
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	newUser, err := user.NewUser(cmd.Email, cmd.Name, hash)
	if err != nil {
		return nil, apperrors.NewValidationError(err.Error())
	}

	existing, err := uc.userRepo.GetByEmail(ctx, newUser.Email())
	if err != nil {
		uc.logger.Errorw("failed to check email existence", "error", err)
		return nil, fmt.Errorf("failed to check email existence: %w", err)
	}
	if existing != nil {
		return nil, apperrors.NewConflictError("email already registered")
	}

	freePlan, err := uc.planRepo.GetBySlug(ctx, uc.freePlanSlug)
	if err != nil {
		uc.logger.Errorw("failed to get free plan", "error", err)
		return nil, fmt.Errorf("failed to get free plan: %w", err)
	}
	if freePlan == nil {
		return nil, apperrors.NewInternalError("free plan is not configured")
	}

	if err := uc.userRepo.Create(ctx, newUser); err != nil {
		if apperrors.IsDuplicateError(err) {
			return nil, apperrors.NewConflictError("email already registered")
		}
		uc.logger.Errorw("failed to create user", "error", err)
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	if _, err := uc.starter.CreateSubscription(ctx, newUser.ID(), freePlan.ID()); err != nil {
		uc.logger.Errorw("failed to start free subscription", "error", err, "user_id", newUser.ID())
		return nil, fmt.Errorf("failed to start subscription: %w", err)
	}

	uc.logger.Infow("user registered", "user_id", newUser.ID())
	return newUser, nil
}
