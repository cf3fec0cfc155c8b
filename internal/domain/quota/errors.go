package quota

import (
	"errors"
	"fmt"
)

var ErrUnknownAction = errors.New("unknown quota action")

// ExceededError is returned when an action would go past the plan limit.
type ExceededError struct {
	Action       ActionType
	CurrentUsage float64
	MaxLimit     float64
}

func (e *ExceededError) Error() string {
	return fmt.Sprintf("quota exceeded for %s: %g of %g", e.Action, e.CurrentUsage, e.MaxLimit)
}

// Err converts a denied decision into an ExceededError, or nil when allowed.
func (d Decision) Err() error {
	if d.Allowed {
		return nil
	}
	return &ExceededError{Action: d.Action, CurrentUsage: d.CurrentUsage, MaxLimit: d.MaxLimit}
}
