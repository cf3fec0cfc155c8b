package form

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestForm_StatusTransitions(t *testing.T) {
	f, err := NewForm("frm_1", 1, "Contact", "")
	require.NoError(t, err)
	assert.Equal(t, StatusDraft, f.Status())

	assert.ErrorIs(t, f.Publish(), ErrFormHasNoVersion)

	f.SetCurrentVersion(1)
	require.NoError(t, f.Publish())
	assert.True(t, f.IsPublished())

	require.NoError(t, f.Archive())
	assert.ErrorIs(t, f.Archive(), ErrInvalidTransition)
	assert.ErrorIs(t, f.Unpublish(), ErrInvalidTransition)

	require.NoError(t, f.Publish())
}

func TestNewForm_Validation(t *testing.T) {
	_, err := NewForm("frm_1", 0, "Title", "")
	assert.Error(t, err)
	_, err = NewForm("frm_1", 1, "   ", "")
	assert.Error(t, err)
}

func TestNewSubmission_DropsUndeclaredKeys(t *testing.T) {
	f := ReconstructForm(4, "frm_4", 1, "T", "", StatusPublished, 2, time.Time{}, time.Time{})
	v, err := NewVersion(4, 2, schemaWith(
		field("id", "name", "type", "text", "label", "Name"),
		field("id", "email", "type", "email", "label", "Email"),
	))
	require.NoError(t, err)

	s, err := NewSubmission("sbm_1", f, v, map[string]any{
		"name":  "Ada",
		"email": "ada@example.com",
		"admin": true,
	}, "10.0.0.1", nil)
	require.NoError(t, err)

	assert.Equal(t, map[string]any{"name": "Ada", "email": "ada@example.com"}, s.Data())
	assert.Equal(t, uint(4), s.FormID())
	assert.Nil(t, s.SubmitterID())
}
