package subscription

import (
	"fmt"
	"time"
)

// ProviderSubscription is the provider's view of a subscription, reduced to
// the fields reconciliation needs.
type ProviderSubscription struct {
	ID                 string
	CustomerID         string
	Status             string
	PriceID            string
	CurrentPeriodStart time.Time
	CurrentPeriodEnd   time.Time
	Metadata           map[string]string
}

// Subscription represents the subscription aggregate root
type Subscription struct {
	id                     uint
	sid                    string
	userID                 uint
	planID                 uint
	status                 Status
	startDate              time.Time
	endDate                time.Time
	providerSubscriptionID string
	suspendedAt            *time.Time
	cancelledAt            *time.Time
	version                int
	createdAt              time.Time
	updatedAt              time.Time
}

// NewSubscription creates an ACTIVE subscription.
func NewSubscription(sid string, userID, planID uint, startDate, endDate time.Time) (*Subscription, error) {
	if userID == 0 {
		return nil, fmt.Errorf("user ID is required")
	}
	if planID == 0 {
		return nil, fmt.Errorf("plan ID is required")
	}
	if !endDate.IsZero() && endDate.Before(startDate) {
		return nil, fmt.Errorf("end date must be after start date")
	}
	now := time.Now().UTC()
	return &Subscription{
		sid:       sid,
		userID:    userID,
		planID:    planID,
		status:    StatusActive,
		startDate: startDate,
		endDate:   endDate,
		version:   1,
		createdAt: now,
		updatedAt: now,
	}, nil
}

// NewFromProvider builds a local record mirroring a provider subscription.
func NewFromProvider(sid string, userID, planID uint, ps ProviderSubscription) (*Subscription, error) {
	if ps.ID == "" {
		return nil, fmt.Errorf("provider subscription ID is required")
	}
	s, err := NewSubscription(sid, userID, planID, ps.CurrentPeriodStart, ps.CurrentPeriodEnd)
	if err != nil {
		return nil, err
	}
	s.providerSubscriptionID = ps.ID
	s.status = MapProviderStatus(ps.Status)
	now := s.createdAt
	switch s.status {
	case StatusSuspended:
		s.suspendedAt = &now
	case StatusCancelled:
		s.cancelledAt = &now
	}
	return s, nil
}

// ReconstructSubscription rebuilds a subscription from persistence
func ReconstructSubscription(
	id uint,
	sid string,
	userID, planID uint,
	status Status,
	startDate, endDate time.Time,
	providerSubscriptionID string,
	suspendedAt, cancelledAt *time.Time,
	version int,
	createdAt, updatedAt time.Time,
) (*Subscription, error) {
	if id == 0 {
		return nil, fmt.Errorf("subscription ID cannot be zero")
	}
	if !status.IsValid() {
		return nil, fmt.Errorf("invalid subscription status: %s", status)
	}
	return &Subscription{
		id:                     id,
		sid:                    sid,
		userID:                 userID,
		planID:                 planID,
		status:                 status,
		startDate:              startDate,
		endDate:                endDate,
		providerSubscriptionID: providerSubscriptionID,
		suspendedAt:            suspendedAt,
		cancelledAt:            cancelledAt,
		version:                version,
		createdAt:              createdAt,
		updatedAt:              updatedAt,
	}, nil
}

func (s *Subscription) ID() uint                       { return s.id }
func (s *Subscription) SID() string                    { return s.sid }
func (s *Subscription) UserID() uint                   { return s.userID }
func (s *Subscription) PlanID() uint                   { return s.planID }
func (s *Subscription) Status() Status                 { return s.status }
func (s *Subscription) StartDate() time.Time           { return s.startDate }
func (s *Subscription) EndDate() time.Time             { return s.endDate }
func (s *Subscription) ProviderSubscriptionID() string { return s.providerSubscriptionID }
func (s *Subscription) SuspendedAt() *time.Time        { return s.suspendedAt }
func (s *Subscription) CancelledAt() *time.Time        { return s.cancelledAt }
func (s *Subscription) Version() int                   { return s.version }
func (s *Subscription) CreatedAt() time.Time           { return s.createdAt }
func (s *Subscription) UpdatedAt() time.Time           { return s.updatedAt }

func (s *Subscription) IsActive() bool {
	return s.status == StatusActive
}

func (s *Subscription) IsSuspended() bool {
	return s.status == StatusSuspended
}

func (s *Subscription) SetID(id uint) {
	s.id = id
}

func (s *Subscription) touch() {
	s.updatedAt = time.Now().UTC()
	s.version++
}

func (s *Subscription) transitionTo(target Status) error {
	if !s.status.CanTransitionTo(target) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, s.status, target)
	}
	s.status = target
	s.touch()
	return nil
}

// Cancel moves the subscription to CANCELLED. Cancelling twice is a no-op.
func (s *Subscription) Cancel() error {
	if s.status == StatusCancelled {
		return nil
	}
	if err := s.transitionTo(StatusCancelled); err != nil {
		return err
	}
	now := s.updatedAt
	s.cancelledAt = &now
	if s.endDate.IsZero() || s.endDate.After(now) {
		s.endDate = now
	}
	return nil
}

// Suspend moves an ACTIVE subscription to SUSPENDED.
func (s *Subscription) Suspend() error {
	if err := s.transitionTo(StatusSuspended); err != nil {
		return err
	}
	now := s.updatedAt
	s.suspendedAt = &now
	return nil
}

// Reactivate moves a SUSPENDED subscription back to ACTIVE.
func (s *Subscription) Reactivate() error {
	if err := s.transitionTo(StatusActive); err != nil {
		return err
	}
	s.suspendedAt = nil
	return nil
}

// GraceExpired reports whether a suspended subscription has been suspended
// for at least grace.
func (s *Subscription) GraceExpired(now time.Time, grace time.Duration) bool {
	return s.status == StatusSuspended && s.suspendedAt != nil && !now.Before(s.suspendedAt.Add(grace))
}

// ApplyProviderState mirrors the provider's plan, period and status. The
// provider is the source of truth so local transition rules are bypassed.
func (s *Subscription) ApplyProviderState(planID uint, ps ProviderSubscription) {
	target := MapProviderStatus(ps.Status)
	now := time.Now().UTC()

	if planID != 0 {
		s.planID = planID
	}
	if !ps.CurrentPeriodStart.IsZero() {
		s.startDate = ps.CurrentPeriodStart
	}
	if !ps.CurrentPeriodEnd.IsZero() {
		s.endDate = ps.CurrentPeriodEnd
	}
	if target != s.status {
		switch target {
		case StatusSuspended:
			s.suspendedAt = &now
		case StatusCancelled:
			s.cancelledAt = &now
		case StatusActive:
			s.suspendedAt = nil
		}
		s.status = target
	}
	s.touch()
}
