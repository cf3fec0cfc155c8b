package form

import (
	"fmt"
	"time"
)

// Submission is write-once. Data keeps only keys declared by the form's
// latest version.
type Submission struct {
	id          uint
	sid         string
	formID      uint
	data        map[string]any
	ipAddress   string
	submitterID *uint
	submittedAt time.Time
}

// NewSubmission filters raw against the latest version's field keys.
func NewSubmission(sid string, form *Form, latest *Version, raw map[string]any, ipAddress string, submitterID *uint) (*Submission, error) {
	if form == nil || form.ID() == 0 {
		return nil, fmt.Errorf("form is required")
	}
	if latest == nil {
		return nil, ErrFormHasNoVersion
	}
	return &Submission{
		sid:         sid,
		formID:      form.ID(),
		data:        FilterSubmissionData(latest.Schema(), raw),
		ipAddress:   ipAddress,
		submitterID: submitterID,
		submittedAt: time.Now().UTC(),
	}, nil
}

// FilterSubmissionData drops keys that are not field identifiers of schema.
func FilterSubmissionData(schema Schema, raw map[string]any) map[string]any {
	allowed := schema.FieldKeys()
	out := make(map[string]any, len(allowed))
	for k, v := range raw {
		if _, ok := allowed[k]; ok {
			out[k] = v
		}
	}
	return out
}

func ReconstructSubmission(id uint, sid string, formID uint, data map[string]any, ipAddress string, submitterID *uint, submittedAt time.Time) *Submission {
	if data == nil {
		data = map[string]any{}
	}
	return &Submission{
		id:          id,
		sid:         sid,
		formID:      formID,
		data:        data,
		ipAddress:   ipAddress,
		submitterID: submitterID,
		submittedAt: submittedAt,
	}
}

func (s *Submission) ID() uint               { return s.id }
func (s *Submission) SID() string            { return s.sid }
func (s *Submission) FormID() uint           { return s.formID }
func (s *Submission) Data() map[string]any   { return s.data }
func (s *Submission) IPAddress() string      { return s.ipAddress }
func (s *Submission) SubmitterID() *uint     { return s.submitterID }
func (s *Submission) SubmittedAt() time.Time { return s.submittedAt }

func (s *Submission) SetID(id uint) {
	s.id = id
}
