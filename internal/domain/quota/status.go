package quota

import (
	"fmt"
	"time"
)

// Threshold is a usage percentage that triggers a one-time notification.
type Threshold int

const (
	Threshold80  Threshold = 80
	Threshold100 Threshold = 100
)

// Status is the per-user, per-month notification ledger. The notified
// flags only move from false to true.
type Status struct {
	id              uint
	userID          uint
	month           MonthKey
	formCount       int64
	submissionCount int64
	storageUsedMb   float64
	notified80      bool
	notified100     bool
	createdAt       time.Time
	updatedAt       time.Time
}

func NewStatus(userID uint, month MonthKey) (*Status, error) {
	if userID == 0 {
		return nil, fmt.Errorf("user ID is required")
	}
	now := time.Now().UTC()
	return &Status{
		userID:    userID,
		month:     month,
		createdAt: now,
		updatedAt: now,
	}, nil
}

func ReconstructStatus(id, userID uint, month MonthKey, formCount, submissionCount int64, storageUsedMb float64, notified80, notified100 bool, createdAt, updatedAt time.Time) *Status {
	return &Status{
		id:              id,
		userID:          userID,
		month:           month,
		formCount:       formCount,
		submissionCount: submissionCount,
		storageUsedMb:   storageUsedMb,
		notified80:      notified80,
		notified100:     notified100,
		createdAt:       createdAt,
		updatedAt:       updatedAt,
	}
}

func (s *Status) ID() uint               { return s.id }
func (s *Status) UserID() uint           { return s.userID }
func (s *Status) Month() MonthKey        { return s.month }
func (s *Status) FormCount() int64       { return s.formCount }
func (s *Status) SubmissionCount() int64 { return s.submissionCount }
func (s *Status) StorageUsedMb() float64 { return s.storageUsedMb }
func (s *Status) Notified80() bool       { return s.notified80 }
func (s *Status) Notified100() bool      { return s.notified100 }
func (s *Status) CreatedAt() time.Time   { return s.createdAt }
func (s *Status) UpdatedAt() time.Time   { return s.updatedAt }

func (s *Status) SetID(id uint) {
	s.id = id
}

// RecordUsage overwrites the cached counters with the latest snapshot.
func (s *Status) RecordUsage(u Usage) {
	s.formCount = u.FormsCount
	s.submissionCount = u.SubmissionsCount
	s.storageUsedMb = u.StorageUsedMb
	s.updatedAt = time.Now().UTC()
}

// Notified reports whether the threshold notification was already sent.
func (s *Status) Notified(t Threshold) bool {
	switch t {
	case Threshold80:
		return s.notified80
	case Threshold100:
		return s.notified100
	}
	return false
}

// MarkNotified sets the sticky flag for t.
func (s *Status) MarkNotified(t Threshold) {
	switch t {
	case Threshold80:
		s.notified80 = true
	case Threshold100:
		s.notified100 = true
	}
	s.updatedAt = time.Now().UTC()
}

// PendingThresholds returns thresholds reached by p whose notification has
// not been sent yet, lowest first. Both can be pending at once.
func (s *Status) PendingThresholds(p Percentages) []Threshold {
	var out []Threshold
	max := p.Max()
	for _, t := range []Threshold{Threshold80, Threshold100} {
		if max >= float64(t) && !s.Notified(t) {
			out = append(out, t)
		}
	}
	return out
}
