package quota

import "fmt"

// ActionType is a quota-gated user action.
type ActionType string

const (
	ActionCreateForm ActionType = "create_form"
	ActionSubmitForm ActionType = "submit_form"
	ActionUploadFile ActionType = "upload_file"
)

func (a ActionType) IsValid() bool {
	switch a {
	case ActionCreateForm, ActionSubmitForm, ActionUploadFile:
		return true
	}
	return false
}

// Decision is the outcome of checking one action against a snapshot.
type Decision struct {
	Action       ActionType
	Allowed      bool
	CurrentUsage float64
	MaxLimit     float64
}

// Evaluate applies the per-action rule: create_form needs the forms
// dimension below its limit, submit_form and upload_file need
// current+quantity to stay within the limit.
func Evaluate(s Snapshot, action ActionType, quantity float64) (Decision, error) {
	d := Decision{Action: action}
	switch action {
	case ActionCreateForm:
		d.CurrentUsage = float64(s.Usage.FormsCount)
		d.MaxLimit = float64(s.Limits.MaxForms)
		d.Allowed = !s.OverLimit.Forms
	case ActionSubmitForm:
		d.CurrentUsage = float64(s.Usage.SubmissionsCount)
		d.MaxLimit = float64(s.Limits.MaxSubmissionsPerMonth)
		d.Allowed = d.CurrentUsage+quantity <= d.MaxLimit
	case ActionUploadFile:
		d.CurrentUsage = s.Usage.StorageUsedMb
		d.MaxLimit = float64(s.Limits.MaxStorageMb)
		d.Allowed = d.CurrentUsage+quantity <= d.MaxLimit
	default:
		return d, fmt.Errorf("%w: %s", ErrUnknownAction, action)
	}
	return d, nil
}
