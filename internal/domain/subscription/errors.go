package subscription

import "errors"

var (
	ErrSubscriptionNotFound = errors.New("subscription not found")
	ErrPlanNotFound         = errors.New("plan not found")
	ErrNoActivePlan         = errors.New("no active plan")
	ErrInvalidTransition    = errors.New("invalid subscription status transition")
	ErrInvalidPlanLimits    = errors.New("plan limits must be positive")
	ErrUnknownProviderPrice = errors.New("no plan registered for provider price")
)
