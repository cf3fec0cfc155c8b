package form

import (
	"fmt"
	"strings"
	"time"
)

type Status string

const (
	StatusDraft     Status = "DRAFT"
	StatusPublished Status = "PUBLISHED"
	StatusArchived  Status = "ARCHIVED"
)

func (s Status) IsValid() bool {
	return s == StatusDraft || s == StatusPublished || s == StatusArchived
}

var statusTransitions = map[Status][]Status{
	StatusDraft:     {StatusPublished, StatusArchived},
	StatusPublished: {StatusArchived, StatusDraft},
	StatusArchived:  {StatusPublished},
}

func (s Status) CanTransitionTo(target Status) bool {
	for _, allowed := range statusTransitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

// Form is owned by one user and carries an append-only version history.
type Form struct {
	id             uint
	sid            string
	ownerID        uint
	title          string
	description    string
	status         Status
	currentVersion int
	createdAt      time.Time
	updatedAt      time.Time
}

func NewForm(sid string, ownerID uint, title, description string) (*Form, error) {
	if ownerID == 0 {
		return nil, fmt.Errorf("owner ID is required")
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, fmt.Errorf("form title is required")
	}
	now := time.Now().UTC()
	return &Form{
		sid:         sid,
		ownerID:     ownerID,
		title:       title,
		description: description,
		status:      StatusDraft,
		createdAt:   now,
		updatedAt:   now,
	}, nil
}

func ReconstructForm(id uint, sid string, ownerID uint, title, description string, status Status, currentVersion int, createdAt, updatedAt time.Time) *Form {
	return &Form{
		id:             id,
		sid:            sid,
		ownerID:        ownerID,
		title:          title,
		description:    description,
		status:         status,
		currentVersion: currentVersion,
		createdAt:      createdAt,
		updatedAt:      updatedAt,
	}
}

func (f *Form) ID() uint             { return f.id }
func (f *Form) SID() string          { return f.sid }
func (f *Form) OwnerID() uint        { return f.ownerID }
func (f *Form) Title() string        { return f.title }
func (f *Form) Description() string  { return f.description }
func (f *Form) Status() Status       { return f.status }
func (f *Form) CurrentVersion() int  { return f.currentVersion }
func (f *Form) CreatedAt() time.Time { return f.createdAt }
func (f *Form) UpdatedAt() time.Time { return f.updatedAt }

func (f *Form) SetID(id uint) {
	f.id = id
}

func (f *Form) IsOwnedBy(userID uint) bool {
	return f.ownerID == userID
}

func (f *Form) IsPublished() bool {
	return f.status == StatusPublished
}

func (f *Form) UpdateDetails(title, description string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return fmt.Errorf("form title is required")
	}
	f.title = title
	f.description = description
	f.updatedAt = time.Now().UTC()
	return nil
}

// SetCurrentVersion records the number of the newest version.
func (f *Form) SetCurrentVersion(n int) {
	f.currentVersion = n
	f.updatedAt = time.Now().UTC()
}

func (f *Form) transition(target Status) error {
	if !f.status.CanTransitionTo(target) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, f.status, target)
	}
	f.status = target
	f.updatedAt = time.Now().UTC()
	return nil
}

// Publish requires at least one version.
func (f *Form) Publish() error {
	if f.currentVersion == 0 {
		return ErrFormHasNoVersion
	}
	return f.transition(StatusPublished)
}

func (f *Form) Unpublish() error {
	return f.transition(StatusDraft)
}

func (f *Form) Archive() error {
	return f.transition(StatusArchived)
}
