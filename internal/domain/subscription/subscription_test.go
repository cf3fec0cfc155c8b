package subscription

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newActive(t *testing.T) *Subscription {
	t.Helper()
	now := time.Now().UTC()
	s, err := NewSubscription("sub_test", 1, 2, now, now.AddDate(0, 1, 0))
	require.NoError(t, err)
	return s
}

func TestMapProviderStatus(t *testing.T) {
	tests := []struct {
		in   string
		want Status
	}{
		{"active", StatusActive},
		{"trialing", StatusActive},
		{"past_due", StatusSuspended},
		{"unpaid", StatusSuspended},
		{"canceled", StatusCancelled},
		{"incomplete_expired", StatusCancelled},
		{"incomplete", StatusSuspended},
		{"paused", StatusSuspended},
		{"", StatusSuspended},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, MapProviderStatus(tt.in))
		})
	}
}

func TestNewSubscription_Validation(t *testing.T) {
	now := time.Now()

	_, err := NewSubscription("", 0, 1, now, now)
	assert.Error(t, err)
	_, err = NewSubscription("", 1, 0, now, now)
	assert.Error(t, err)
	_, err = NewSubscription("", 1, 1, now, now.Add(-time.Hour))
	assert.Error(t, err)

	s, err := NewSubscription("sub_1", 1, 1, now, time.Time{})
	require.NoError(t, err)
	assert.True(t, s.IsActive())
}

func TestSubscription_Lifecycle(t *testing.T) {
	s := newActive(t)

	require.NoError(t, s.Suspend())
	assert.True(t, s.IsSuspended())
	require.NotNil(t, s.SuspendedAt())

	require.NoError(t, s.Reactivate())
	assert.True(t, s.IsActive())
	assert.Nil(t, s.SuspendedAt())

	require.NoError(t, s.Cancel())
	assert.Equal(t, StatusCancelled, s.Status())
	require.NotNil(t, s.CancelledAt())

	assert.NoError(t, s.Cancel(), "cancel is idempotent")
	err := s.Reactivate()
	assert.True(t, errors.Is(err, ErrInvalidTransition))
}

func TestSubscription_ReactivateRequiresSuspended(t *testing.T) {
	s := newActive(t)
	assert.ErrorIs(t, s.Reactivate(), ErrInvalidTransition)
}

func TestSubscription_GraceExpired(t *testing.T) {
	s := newActive(t)
	require.NoError(t, s.Suspend())
	suspended := *s.SuspendedAt()

	assert.False(t, s.GraceExpired(suspended.Add(6*24*time.Hour), 7*24*time.Hour))
	assert.True(t, s.GraceExpired(suspended.Add(7*24*time.Hour), 7*24*time.Hour))
}

func TestNewFromProvider(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	ps := ProviderSubscription{
		ID:                 "sub_stripe_1",
		Status:             "past_due",
		PriceID:            "price_pro",
		CurrentPeriodStart: start,
		CurrentPeriodEnd:   start.AddDate(0, 1, 0),
	}

	s, err := NewFromProvider("sub_x", 7, 3, ps)
	require.NoError(t, err)
	assert.Equal(t, StatusSuspended, s.Status())
	assert.Equal(t, "sub_stripe_1", s.ProviderSubscriptionID())
	assert.Equal(t, start, s.StartDate())
	assert.NotNil(t, s.SuspendedAt())

	_, err = NewFromProvider("sub_y", 7, 3, ProviderSubscription{})
	assert.Error(t, err)
}

func TestApplyProviderState_SwitchesPlanInPlace(t *testing.T) {
	s := newActive(t)
	end := time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC)

	s.ApplyProviderState(9, ProviderSubscription{Status: "active", CurrentPeriodEnd: end})

	assert.Equal(t, uint(9), s.PlanID())
	assert.Equal(t, end, s.EndDate())
	assert.True(t, s.IsActive())

	s.ApplyProviderState(0, ProviderSubscription{Status: "canceled"})
	assert.Equal(t, uint(9), s.PlanID())
	assert.Equal(t, StatusCancelled, s.Status())
}

func TestNewPlan_RejectsNonPositiveLimits(t *testing.T) {
	_, err := NewPlan("pro", "Pro", decimal.NewFromInt(10), "eur", PlanLimits{MaxForms: 0, MaxSubmissionsPerMonth: 1, MaxStorageMb: 1})
	assert.ErrorIs(t, err, ErrInvalidPlanLimits)

	p, err := NewPlan("free", "Free", decimal.Zero, "eur", PlanLimits{MaxForms: 3, MaxSubmissionsPerMonth: 100, MaxStorageMb: 50})
	require.NoError(t, err)
	assert.True(t, p.IsFree())
	assert.Equal(t, "EUR", p.Currency())
}
