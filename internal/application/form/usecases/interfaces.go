package usecases

import (
	"context"

	"github.com/formcraft-io/formcraft/internal/domain/form"
	"github.com/formcraft-io/formcraft/internal/domain/quota"
)

// Authorizer decides whether a user may read or change a form.
type Authorizer interface {
	CanAccessForm(ctx context.Context, userID uint, f *form.Form) (bool, error)
	CanModifyForm(ctx context.Context, userID uint, f *form.Form) (bool, error)
}

// QuotaEnforcer fails with a quota exceeded error when the action does not fit the plan.
type QuotaEnforcer interface {
	EnforceQuotaLimit(ctx context.Context, userID uint, action quota.ActionType, quantity float64) error
}

// IDGenerator returns a new prefixed short id.
type IDGenerator func() (string, error)

// FormSharer grants and revokes access to a form for users other than its owner.
type FormSharer interface {
	ShareForm(userID uint, formSID, action string) error
	UnshareForm(userID uint, formSID string) error
}
