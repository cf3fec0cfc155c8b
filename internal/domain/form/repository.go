package form

import (
	"context"
	"time"
)

// ListFilter selects a page of an owner's forms.
type ListFilter struct {
	OwnerID  uint
	Status   Status
	Page     int
	PageSize int
}

// Repository persists forms. Lookups return (nil, nil) when not found.
type Repository interface {
	Create(ctx context.Context, f *Form) error
	Update(ctx context.Context, f *Form) error
	Delete(ctx context.Context, id uint) error
	GetByID(ctx context.Context, id uint) (*Form, error)
	GetBySID(ctx context.Context, sid string) (*Form, error)
	// GetBySIDForUpdate locks the form row for the rest of the transaction.
	GetBySIDForUpdate(ctx context.Context, sid string) (*Form, error)
	List(ctx context.Context, filter ListFilter) ([]*Form, int64, error)
	CountByOwner(ctx context.Context, ownerID uint) (int64, error)
}

// VersionRepository persists versions together with their field rows.
type VersionRepository interface {
	Create(ctx context.Context, v *Version) error
	GetByNumber(ctx context.Context, formID uint, versionNumber int) (*Version, error)
	GetLatest(ctx context.Context, formID uint) (*Version, error)
	ListByForm(ctx context.Context, formID uint) ([]*Version, error)
	Count(ctx context.Context, formID uint) (int64, error)
	MaxVersionNumber(ctx context.Context, formID uint) (int, error)
	// DeleteOldest removes the n lowest-numbered versions of a form.
	DeleteOldest(ctx context.Context, formID uint, n int) error
	Delete(ctx context.Context, formID uint, versionNumber int) error
}

// SubmissionRepository persists submissions.
type SubmissionRepository interface {
	Create(ctx context.Context, s *Submission) error
	ListByForm(ctx context.Context, formID uint, page, pageSize int) ([]*Submission, int64, error)
	// Iterate streams all submissions of a form in submission order.
	Iterate(ctx context.Context, formID uint, fn func(*Submission) error) error
	CountByOwnerSince(ctx context.Context, ownerID uint, since time.Time) (int64, error)
}
