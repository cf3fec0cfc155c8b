package usecases

import (
	"context"
	"time"

	"github.com/formcraft-io/formcraft/internal/domain/subscription"
	"github.com/formcraft-io/formcraft/internal/domain/user"
)

type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}

// TokenIssuer signs access tokens.
type TokenIssuer interface {
	Issue(userID uint, role user.Role) (token string, expiresAt time.Time, err error)
}

// SubscriptionStarter puts a new user on a plan.
type SubscriptionStarter interface {
	CreateSubscription(ctx context.Context, userID, planID uint) (*subscription.Subscription, error)
}
