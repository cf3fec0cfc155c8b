package dto

import "github.com/formcraft-io/formcraft/internal/domain/quota"

type LimitsDTO struct {
	MaxForms               int64 `json:"max_forms"`
	MaxSubmissionsPerMonth int64 `json:"max_submissions_per_month"`
	MaxStorageMb           int64 `json:"max_storage_mb"`
}

type UsageDTO struct {
	FormsCount       int64   `json:"forms_count"`
	SubmissionsCount int64   `json:"submissions_count"`
	StorageUsedMb    float64 `json:"storage_used_mb"`
}

type PercentagesDTO struct {
	FormsUsedPercent       float64 `json:"forms_used_percent"`
	SubmissionsUsedPercent float64 `json:"submissions_used_percent"`
	StorageUsedPercent     float64 `json:"storage_used_percent"`
}

type OverLimitDTO struct {
	Forms       bool `json:"forms"`
	Submissions bool `json:"submissions"`
	Storage     bool `json:"storage"`
	Any         bool `json:"any"`
}

// QuotaDTO is the quota snapshot returned to API clients.
type QuotaDTO struct {
	Limits      LimitsDTO      `json:"limits"`
	Usage       UsageDTO       `json:"usage"`
	Percentages PercentagesDTO `json:"percentages"`
	IsOverLimit OverLimitDTO   `json:"is_over_limit"`
}

func ToQuotaDTO(s *quota.Snapshot) *QuotaDTO {
	if s == nil {
		return nil
	}
	return &QuotaDTO{
		Limits: LimitsDTO{
			MaxForms:               s.Limits.MaxForms,
			MaxSubmissionsPerMonth: s.Limits.MaxSubmissionsPerMonth,
			MaxStorageMb:           s.Limits.MaxStorageMb,
		},
		Usage: UsageDTO{
			FormsCount:       s.Usage.FormsCount,
			SubmissionsCount: s.Usage.SubmissionsCount,
			StorageUsedMb:    s.Usage.StorageUsedMb,
		},
		Percentages: PercentagesDTO{
			FormsUsedPercent:       s.Percentages.Forms,
			SubmissionsUsedPercent: s.Percentages.Submissions,
			StorageUsedPercent:     s.Percentages.Storage,
		},
		IsOverLimit: OverLimitDTO{
			Forms:       s.OverLimit.Forms,
			Submissions: s.OverLimit.Submissions,
			Storage:     s.OverLimit.Storage,
			Any:         s.OverLimit.Any(),
		},
	}
}
