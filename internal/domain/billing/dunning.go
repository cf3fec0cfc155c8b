package billing

import "time"

// Stage is the dunning escalation step reached by a failed invoice.
type Stage string

const (
	StageFirstNotice        Stage = "first_notice"
	StageUrgentNotice       Stage = "urgent_notice"
	StageSuspensionImminent Stage = "suspension_imminent"
	StageSuspended          Stage = "suspended"
)

// Policy holds the retry spacing for the notice stages and the grace
// period between suspension and downgrade.
type Policy struct {
	RetryDays []int
	GraceDays int
}

// DefaultPolicy retries after 3, 5 then 7 days and downgrades 7 days after suspension.
func DefaultPolicy() Policy {
	return Policy{RetryDays: []int{3, 5, 7}, GraceDays: 7}
}

// Decision is what the dunning process must do for one failed attempt.
type Decision struct {
	Attempt int64
	Stage   Stage
	// RetryAt is set for notice stages.
	RetryAt *time.Time
	// DowngradeAt is set when the subscription is suspended.
	DowngradeAt *time.Time
}

// Suspends reports whether the decision suspends the subscription.
func (d Decision) Suspends() bool {
	return d.Stage == StageSuspended
}

// Decide maps a consecutive attempt count onto a stage. An undetermined
// count (<= 0) is treated as the first attempt.
func (p Policy) Decide(attempt int64, now time.Time) Decision {
	if attempt < 1 {
		attempt = 1
	}
	stages := []Stage{StageFirstNotice, StageUrgentNotice, StageSuspensionImminent}
	d := Decision{Attempt: attempt}

	if attempt <= int64(len(stages)) && int(attempt) <= len(p.RetryDays) {
		d.Stage = stages[attempt-1]
		retry := now.AddDate(0, 0, p.RetryDays[attempt-1])
		d.RetryAt = &retry
		return d
	}

	d.Stage = StageSuspended
	downgrade := now.AddDate(0, 0, p.GraceDays)
	d.DowngradeAt = &downgrade
	return d
}

// GraceDuration is the wait between suspension and downgrade.
func (p Policy) GraceDuration() time.Duration {
	return time.Duration(p.GraceDays) * 24 * time.Hour
}
