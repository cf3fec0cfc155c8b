package form

import "errors"

var (
	ErrFormNotFound      = errors.New("form not found")
	ErrVersionNotFound   = errors.New("form version not found")
	ErrLastVersion       = errors.New("cannot delete the last version")
	ErrMostRecentVersion = errors.New("cannot delete the most recent version")
	ErrInvalidTransition = errors.New("invalid form status transition")
	ErrFormNotPublished  = errors.New("form is not published")
	ErrFormHasNoVersion  = errors.New("form has no version")
)
