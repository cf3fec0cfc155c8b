package quota

import (
	"math"

	"github.com/formcraft-io/formcraft/internal/domain/subscription"
)

// Usage is the live consumption of a user.
type Usage struct {
	FormsCount       int64
	SubmissionsCount int64
	StorageUsedMb    float64
}

// Percentages are usage/limit*100 rounded to two decimals.
type Percentages struct {
	Forms       float64
	Submissions float64
	Storage     float64
}

// Max returns the highest of the three percentages.
func (p Percentages) Max() float64 {
	return math.Max(p.Forms, math.Max(p.Submissions, p.Storage))
}

// OverLimit flags each dimension whose usage reached its limit.
type OverLimit struct {
	Forms       bool
	Submissions bool
	Storage     bool
}

func (o OverLimit) Any() bool {
	return o.Forms || o.Submissions || o.Storage
}

// Snapshot is a point-in-time comparison of usage against plan limits.
type Snapshot struct {
	Limits      subscription.PlanLimits
	Usage       Usage
	Percentages Percentages
	OverLimit   OverLimit
}

// NewSnapshot derives percentages and over-limit flags. Limits must be positive.
func NewSnapshot(limits subscription.PlanLimits, usage Usage) Snapshot {
	return Snapshot{
		Limits: limits,
		Usage:  usage,
		Percentages: Percentages{
			Forms:       percent(float64(usage.FormsCount), limits.MaxForms),
			Submissions: percent(float64(usage.SubmissionsCount), limits.MaxSubmissionsPerMonth),
			Storage:     percent(usage.StorageUsedMb, limits.MaxStorageMb),
		},
		OverLimit: OverLimit{
			Forms:       usage.FormsCount >= limits.MaxForms,
			Submissions: usage.SubmissionsCount >= limits.MaxSubmissionsPerMonth,
			Storage:     usage.StorageUsedMb >= float64(limits.MaxStorageMb),
		},
	}
}

func percent(used float64, limit int64) float64 {
	if limit <= 0 {
		return 0
	}
	return Round2(used / float64(limit) * 100)
}

// Round2 rounds half away from zero to two decimals.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
