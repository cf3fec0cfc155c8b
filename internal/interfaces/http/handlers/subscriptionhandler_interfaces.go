package handlers

import (
	"context"

	subdto "github.com/formcraft-io/formcraft/internal/application/subscription/dto"
	"github.com/formcraft-io/formcraft/internal/application/subscription/usecases"
	"github.com/formcraft-io/formcraft/internal/domain/billing"
)

// Use case interfaces for SubscriptionHandler

type getSubscriptionStatusUseCase interface {
	Execute(ctx context.Context, userID uint) (*subdto.SubscriptionStatusDTO, error)
}

type checkoutUseCase interface {
	Execute(ctx context.Context, cmd usecases.CreateCheckoutCommand) (*subdto.SessionDTO, error)
	CreatePortalSession(ctx context.Context, userID uint) (*subdto.SessionDTO, error)
}

type paymentRetrier interface {
	RetryPayment(ctx context.Context, userID uint, invoiceID string) (*billing.ProviderInvoice, error)
}

type listPlansUseCase interface {
	Execute(ctx context.Context) ([]*subdto.PlanDTO, error)
}
