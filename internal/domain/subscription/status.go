package subscription

// Status is the local lifecycle state of a subscription.
type Status string

const (
	StatusActive    Status = "ACTIVE"
	StatusSuspended Status = "SUSPENDED"
	StatusCancelled Status = "CANCELLED"
)

func (s Status) String() string {
	return string(s)
}

func (s Status) IsValid() bool {
	switch s {
	case StatusActive, StatusSuspended, StatusCancelled:
		return true
	}
	return false
}

type transition struct {
	from, to Status
}

var allowedTransitions = map[transition]bool{
	{StatusActive, StatusSuspended}:    true,
	{StatusActive, StatusCancelled}:    true,
	{StatusSuspended, StatusActive}:    true,
	{StatusSuspended, StatusCancelled}: true,
}

// CanTransitionTo reports whether a local state change is allowed.
// CANCELLED is terminal.
func (s Status) CanTransitionTo(target Status) bool {
	return allowedTransitions[transition{s, target}]
}

// MapProviderStatus folds the provider's subscription status into the
// local three-state model. Unknown values are treated as SUSPENDED.
func MapProviderStatus(providerStatus string) Status {
	switch providerStatus {
	case "active", "trialing":
		return StatusActive
	case "past_due", "unpaid":
		return StatusSuspended
	case "canceled", "incomplete_expired":
		return StatusCancelled
	default:
		return StatusSuspended
	}
}
