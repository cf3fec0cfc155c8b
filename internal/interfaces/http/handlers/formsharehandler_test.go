package handlers

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/formcraft-io/formcraft/internal/application/form/usecases"
	"github.com/formcraft-io/formcraft/internal/interfaces/http/handlers/testutil"
	"github.com/formcraft-io/formcraft/internal/shared/errors"
)

type mockShareFormUC struct {
	err        error
	got        usecases.ShareFormCommand
	unsharedID uint
}

func (m *mockShareFormUC) Execute(ctx context.Context, cmd usecases.ShareFormCommand) error {
	m.got = cmd
	return m.err
}

func (m *mockShareFormUC) Unshare(ctx context.Context, ownerID uint, formSID string, targetID uint) error {
	m.unsharedID = targetID
	return m.err
}

func TestFormShareHandler_Share(t *testing.T) {
	uc := &mockShareFormUC{}
	handler := NewFormShareHandler(uc, testutil.NewMockLogger())

	c, w := testutil.NewTestContext(http.MethodPost, "/forms/"+testFormSID+"/shares", map[string]any{
		"user_id": 42,
		"access":  "write",
	})
	testutil.SetAuthContext(c, 10)
	testutil.SetURLParam(c, "id", testFormSID)

	handler.Share(c)
	c.Writer.WriteHeaderNow()

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, usecases.ShareFormCommand{OwnerID: 10, FormSID: testFormSID, TargetID: 42, Access: "write"}, uc.got)
}

func TestFormShareHandler_Share_InvalidAccess(t *testing.T) {
	handler := NewFormShareHandler(&mockShareFormUC{}, testutil.NewMockLogger())

	c, w := testutil.NewTestContext(http.MethodPost, "/forms/"+testFormSID+"/shares", map[string]any{
		"user_id": 42,
		"access":  "admin",
	})
	testutil.SetAuthContext(c, 10)
	testutil.SetURLParam(c, "id", testFormSID)

	handler.Share(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestFormShareHandler_Share_NotOwner(t *testing.T) {
	uc := &mockShareFormUC{err: errors.NewForbiddenError("only the owner can share a form")}
	handler := NewFormShareHandler(uc, testutil.NewMockLogger())

	c, w := testutil.NewTestContext(http.MethodPost, "/forms/"+testFormSID+"/shares", map[string]any{
		"user_id": 42,
		"access":  "read",
	})
	testutil.SetAuthContext(c, 11)
	testutil.SetURLParam(c, "id", testFormSID)

	handler.Share(c)

	assert.Equal(t, http.StatusForbidden, w.Code)
	var resp testutil.APIResponse
	require.NoError(t, testutil.ParseResponse(w, &resp))
	require.NotNil(t, resp.Error)
	assert.Equal(t, "forbidden", resp.Error.Type)
}

func TestFormShareHandler_Unshare(t *testing.T) {
	uc := &mockShareFormUC{}
	handler := NewFormShareHandler(uc, testutil.NewMockLogger())

	c, w := testutil.NewTestContext(http.MethodDelete, "/forms/"+testFormSID+"/shares/42", nil)
	testutil.SetAuthContext(c, 10)
	testutil.SetURLParam(c, "id", testFormSID)
	testutil.SetURLParam(c, "user_id", "42")

	handler.Unshare(c)
	c.Writer.WriteHeaderNow()

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, uint(42), uc.unsharedID)
}

func TestFormShareHandler_Unshare_BadUserID(t *testing.T) {
	handler := NewFormShareHandler(&mockShareFormUC{}, testutil.NewMockLogger())

	c, w := testutil.NewTestContext(http.MethodDelete, "/forms/"+testFormSID+"/shares/abc", nil)
	testutil.SetAuthContext(c, 10)
	testutil.SetURLParam(c, "id", testFormSID)
	testutil.SetURLParam(c, "user_id", "abc")

	handler.Unshare(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
