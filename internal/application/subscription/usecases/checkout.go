package usecases

import (
	"context"
	"fmt"
	"strconv"

	"github.com/formcraft-io/formcraft/internal/application/payment/paymentgateway"
	"github.com/formcraft-io/formcraft/internal/application/subscription/dto"
	"github.com/formcraft-io/formcraft/internal/domain/subscription"
	"github.com/formcraft-io/formcraft/internal/domain/user"
	apperrors "github.com/formcraft-io/formcraft/internal/shared/errors"
	"github.com/formcraft-io/formcraft/internal/shared/logger"
)

// CheckoutURLs are the redirect targets handed to the provider.
type CheckoutURLs struct {
	SuccessURL      string
	CancelURL       string
	PortalReturnURL string
}

type CreateCheckoutCommand struct {
	UserID   uint
	PlanSlug string
}

// CheckoutUseCase opens hosted checkout and billing portal sessions.
type CheckoutUseCase struct {
	userRepo user.Repository
	planRepo subscription.PlanRepository
	provider paymentgateway.PaymentProvider
	urls     CheckoutURLs
	logger   logger.Interface
}

func NewCheckoutUseCase(
	userRepo user.Repository,
	planRepo subscription.PlanRepository,
	provider paymentgateway.PaymentProvider,
	urls CheckoutURLs,
	logger logger.Interface,
) *CheckoutUseCase {
	return &CheckoutUseCase{
		userRepo: userRepo,
		planRepo: planRepo,
		provider: provider,
		urls:     urls,
		logger:   logger,
	}
}

func (uc *CheckoutUseCase) Execute(ctx context.Context, cmd CreateCheckoutCommand) (*dto.SessionDTO, error) {
	plan, err := uc.planRepo.GetBySlug(ctx, cmd.PlanSlug)
	if err != nil {
		uc.logger.Errorw("failed to get plan", "error", err, "slug", cmd.PlanSlug)
		return nil, fmt.Errorf("failed to get plan: %w", err)
	}
	if plan == nil {
		return nil, apperrors.NewNotFoundError("plan not found", cmd.PlanSlug)
	}
	if plan.ProviderPriceID() == "" {
		return nil, apperrors.NewValidationError("plan is not available for purchase", cmd.PlanSlug)
	}

	u, err := uc.loadUser(ctx, cmd.UserID)
	if err != nil {
		return nil, err
	}
	customerID, err := uc.ensureCustomer(ctx, u)
	if err != nil {
		return nil, err
	}

	userID := strconv.FormatUint(uint64(u.ID()), 10)
	session, err := uc.provider.CreateCheckoutSession(ctx, paymentgateway.CheckoutRequest{
		CustomerID:        customerID,
		PriceID:           plan.ProviderPriceID(),
		SuccessURL:        uc.urls.SuccessURL,
		CancelURL:         uc.urls.CancelURL,
		ClientReferenceID: userID,
		Metadata:          map[string]string{"user_id": userID, "plan": plan.Slug()},
	})
	if err != nil {
		uc.logger.Errorw("failed to create checkout session", "error", err, "user_id", u.ID(), "plan", plan.Slug())
		return nil, apperrors.NewProviderError("failed to create checkout session", err.Error())
	}

	uc.logger.Infow("checkout session created", "user_id", u.ID(), "plan", plan.Slug(), "session_id", session.ID)
	return &dto.SessionDTO{ID: session.ID, URL: session.URL}, nil
}

// CreatePortalSession opens the provider billing portal for the user.
func (uc *CheckoutUseCase) CreatePortalSession(ctx context.Context, userID uint) (*dto.SessionDTO, error) {
	u, err := uc.loadUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u.ProviderCustomerID() == "" {
		return nil, apperrors.NewValidationError("no billing account for this user")
	}

	session, err := uc.provider.CreatePortalSession(ctx, u.ProviderCustomerID(), uc.urls.PortalReturnURL)
	if err != nil {
		uc.logger.Errorw("failed to create portal session", "error", err, "user_id", userID)
		return nil, apperrors.NewProviderError("failed to create portal session", err.Error())
	}
	return &dto.SessionDTO{ID: session.ID, URL: session.URL}, nil
}

func (uc *CheckoutUseCase) loadUser(ctx context.Context, userID uint) (*user.User, error) {
	u, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		uc.logger.Errorw("failed to get user", "error", err, "user_id", userID)
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if u == nil {
		return nil, apperrors.NewNotFoundError("user not found")
	}
	return u, nil
}

func (uc *CheckoutUseCase) ensureCustomer(ctx context.Context, u *user.User) (string, error) {
	if u.ProviderCustomerID() != "" {
		return u.ProviderCustomerID(), nil
	}

	customerID, err := uc.provider.CreateCustomer(ctx, paymentgateway.CreateCustomerRequest{
		Email:  u.Email(),
		Name:   u.DisplayName(),
		UserID: u.ID(),
	})
	if err != nil {
		uc.logger.Errorw("failed to create provider customer", "error", err, "user_id", u.ID())
		return "", apperrors.NewProviderError("failed to create customer", err.Error())
	}

	u.LinkProviderCustomer(customerID)
	if err := uc.userRepo.Update(ctx, u); err != nil {
		uc.logger.Errorw("failed to save provider customer", "error", err, "user_id", u.ID())
		return "", fmt.Errorf("failed to update user: %w", err)
	}
	return customerID, nil
}
