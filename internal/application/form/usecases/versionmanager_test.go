package usecases

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/formcraft-io/formcraft/internal/domain/form"
	apperrors "github.com/formcraft-io/formcraft/internal/shared/errors"
)

func TestCreateVersion_NumbersAreSequential(t *testing.T) {
	env := newFormEnv(10)
	ctx := context.Background()
	f := env.createForm(t, 1, form.Schema{})

	v2, err := env.manager.CreateVersion(ctx, 1, f.SID(), schemaOf(textField("name", "Nom")))
	require.NoError(t, err)
	assert.Equal(t, 2, v2.VersionNumber())

	v3, err := env.manager.CreateVersion(ctx, 1, f.SID(), schemaOf(textField("name", "Nom"), textField("city", "Ville")))
	require.NoError(t, err)
	assert.Equal(t, 3, v3.VersionNumber())
	assert.Equal(t, 3, f.CurrentVersion())

	require.Len(t, v3.Fields(), 2)
	assert.Equal(t, 1, v3.Fields()[0].Position)
	assert.Equal(t, 2, v3.Fields()[1].Position)
}

func TestCreateVersion_PrunesToCap(t *testing.T) {
	env := newFormEnv(10)
	ctx := context.Background()
	f := env.createForm(t, 1, form.Schema{})

	for i := 2; i <= 12; i++ {
		_, err := env.manager.CreateVersion(ctx, 1, f.SID(), schemaOf(textField(fmt.Sprintf("f%d", i), "Champ")))
		require.NoError(t, err)
	}

	assert.Equal(t, []int{3, 4, 5, 6, 7, 8, 9, 10, 11, 12}, env.versions.Numbers(f.ID()))
}

func TestCreateVersion_CapOfOneKeepsOnlyNewest(t *testing.T) {
	env := newFormEnv(1)
	ctx := context.Background()
	f := env.createForm(t, 1, form.Schema{})

	_, err := env.manager.CreateVersion(ctx, 1, f.SID(), form.Schema{})
	require.NoError(t, err)
	assert.Equal(t, []int{2}, env.versions.Numbers(f.ID()))
}

func TestCreateVersion_InvalidSchema(t *testing.T) {
	env := newFormEnv(10)
	f := env.createForm(t, 1, form.Schema{})

	schema := form.Schema{"fields": []any{
		map[string]any{"type": "text", "label": "A", "position": 1},
		map[string]any{"type": "text", "label": "B", "position": 1},
	}}
	_, err := env.manager.CreateVersion(context.Background(), 1, f.SID(), schema)

	require.True(t, apperrors.IsValidationError(err))
	assert.Contains(t, err.Error(), "Position de champ dupliquée: 1")
	assert.Equal(t, []int{1}, env.versions.Numbers(f.ID()))
}

func TestCreateVersion_RequiresModifyAccess(t *testing.T) {
	env := newFormEnv(10)
	f := env.createForm(t, 1, form.Schema{})
	env.authz.Readers[2] = true

	_, err := env.manager.CreateVersion(context.Background(), 2, f.SID(), form.Schema{})
	appErr := apperrors.GetAppError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, 403, appErr.Code)

	_, err = env.manager.CreateVersion(context.Background(), 1, "frm_missing", form.Schema{})
	assert.True(t, apperrors.IsNotFoundError(err))
}

func TestRestoreVersion_CopiesForward(t *testing.T) {
	env := newFormEnv(10)
	ctx := context.Background()
	original := schemaOf(textField("email", "Adresse"))
	f := env.createForm(t, 1, original)

	_, err := env.manager.CreateVersion(ctx, 1, f.SID(), schemaOf(textField("phone", "Téléphone")))
	require.NoError(t, err)

	restored, err := env.manager.RestoreVersion(ctx, 1, f.SID(), 1)
	require.NoError(t, err)
	assert.Equal(t, 3, restored.VersionNumber())
	assert.Equal(t, "email", restored.Fields()[0].Key)
	assert.Equal(t, []int{1, 2, 3}, env.versions.Numbers(f.ID()), "restore never rewinds in place")
}

func TestRestoreVersion_NotFound(t *testing.T) {
	env := newFormEnv(10)
	f := env.createForm(t, 1, form.Schema{})

	_, err := env.manager.RestoreVersion(context.Background(), 1, f.SID(), 7)
	assert.True(t, apperrors.IsNotFoundError(err))
}

func TestDeleteVersion_Rules(t *testing.T) {
	env := newFormEnv(10)
	ctx := context.Background()
	f := env.createForm(t, 1, form.Schema{})

	err := env.manager.DeleteVersion(ctx, 1, f.SID(), 1)
	assert.True(t, apperrors.IsInvariantViolationError(err), "the only version cannot be deleted")

	_, err = env.manager.CreateVersion(ctx, 1, f.SID(), form.Schema{})
	require.NoError(t, err)
	_, err = env.manager.CreateVersion(ctx, 1, f.SID(), form.Schema{})
	require.NoError(t, err)

	err = env.manager.DeleteVersion(ctx, 1, f.SID(), 3)
	assert.True(t, apperrors.IsInvariantViolationError(err), "the newest version cannot be deleted")

	err = env.manager.DeleteVersion(ctx, 1, f.SID(), 9)
	assert.True(t, apperrors.IsNotFoundError(err))

	require.NoError(t, env.manager.DeleteVersion(ctx, 1, f.SID(), 2))
	assert.Equal(t, []int{1, 3}, env.versions.Numbers(f.ID()))

	v4, err := env.manager.CreateVersion(ctx, 1, f.SID(), form.Schema{})
	require.NoError(t, err)
	assert.Equal(t, 4, v4.VersionNumber(), "numbers are never reused")
}

func TestListVersions_NewestFirst(t *testing.T) {
	env := newFormEnv(10)
	ctx := context.Background()
	f := env.createForm(t, 1, form.Schema{})
	_, err := env.manager.CreateVersion(ctx, 1, f.SID(), form.Schema{})
	require.NoError(t, err)

	env.authz.Readers[5] = true
	versions, err := env.manager.ListVersions(ctx, 5, f.SID())
	require.NoError(t, err)
	require.Len(t, versions, 2)
	assert.Equal(t, 2, versions[0].VersionNumber())

	_, err = env.manager.ListVersions(ctx, 6, f.SID())
	assert.Error(t, err)
}
