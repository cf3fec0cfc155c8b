package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/formcraft-io/formcraft/internal/application/form/dto"
	"github.com/formcraft-io/formcraft/internal/application/form/usecases"
	"github.com/formcraft-io/formcraft/internal/domain/form"
	"github.com/formcraft-io/formcraft/internal/interfaces/http/handlers/testutil"
	"github.com/formcraft-io/formcraft/internal/shared/errors"
)

// =====================================================================
// Mock use cases
// =====================================================================

type mockCreateFormUC struct {
	result *usecases.CreateFormResult
	err    error
	got    usecases.CreateFormCommand
}

func (m *mockCreateFormUC) Execute(ctx context.Context, cmd usecases.CreateFormCommand) (*usecases.CreateFormResult, error) {
	m.got = cmd
	return m.result, m.err
}

type mockUpdateFormUC struct {
	result *usecases.UpdateFormResult
	err    error
	got    usecases.UpdateFormCommand
}

func (m *mockUpdateFormUC) Execute(ctx context.Context, cmd usecases.UpdateFormCommand) (*usecases.UpdateFormResult, error) {
	m.got = cmd
	return m.result, m.err
}

type mockGetFormUC struct {
	result *dto.FormDetailDTO
	err    error
}

func (m *mockGetFormUC) Execute(ctx context.Context, userID uint, formSID string) (*dto.FormDetailDTO, error) {
	return m.result, m.err
}

func (m *mockGetFormUC) ExecutePublic(ctx context.Context, formSID string) (*dto.FormDetailDTO, error) {
	return m.result, m.err
}

type mockListFormsUC struct {
	result *usecases.ListFormsResult
	err    error
	got    usecases.ListFormsQuery
}

func (m *mockListFormsUC) Execute(ctx context.Context, query usecases.ListFormsQuery) (*usecases.ListFormsResult, error) {
	m.got = query
	return m.result, m.err
}

type mockDeleteFormUC struct {
	err error
}

func (m *mockDeleteFormUC) Execute(ctx context.Context, userID uint, formSID string) error {
	return m.err
}

type mockChangeFormStatusUC struct {
	result *form.Form
	err    error
	got    usecases.ChangeFormStatusCommand
}

func (m *mockChangeFormStatusUC) Execute(ctx context.Context, cmd usecases.ChangeFormStatusCommand) (*form.Form, error) {
	m.got = cmd
	return m.result, m.err
}

type mockVersionManager struct {
	version  *form.Version
	versions []*form.Version
	err      error
	schema   form.Schema
	number   int
}

func (m *mockVersionManager) CreateVersion(ctx context.Context, userID uint, formSID string, schema form.Schema) (*form.Version, error) {
	m.schema = schema
	return m.version, m.err
}

func (m *mockVersionManager) RestoreVersion(ctx context.Context, userID uint, formSID string, n int) (*form.Version, error) {
	m.number = n
	return m.version, m.err
}

func (m *mockVersionManager) DeleteVersion(ctx context.Context, userID uint, formSID string, n int) error {
	m.number = n
	return m.err
}

func (m *mockVersionManager) ListVersions(ctx context.Context, userID uint, formSID string) ([]*form.Version, error) {
	return m.versions, m.err
}

func (m *mockVersionManager) GetVersion(ctx context.Context, userID uint, formSID string, n int) (*form.Version, error) {
	m.number = n
	return m.version, m.err
}

type mockListSubmissionsUC struct {
	result *usecases.ListSubmissionsResult
	err    error
}

func (m *mockListSubmissionsUC) Execute(ctx context.Context, query usecases.ListSubmissionsQuery) (*usecases.ListSubmissionsResult, error) {
	return m.result, m.err
}

type mockExportSubmissionsUC struct {
	csv string
	err error
}

func (m *mockExportSubmissionsUC) Execute(ctx context.Context, userID uint, formSID string, w io.Writer) error {
	if m.err != nil {
		return m.err
	}
	_, err := io.WriteString(w, m.csv)
	return err
}

type mockSubmitFormUC struct {
	result *usecases.SubmitFormResult
	err    error
	got    usecases.SubmitFormCommand
}

func (m *mockSubmitFormUC) Execute(ctx context.Context, cmd usecases.SubmitFormCommand) (*usecases.SubmitFormResult, error) {
	m.got = cmd
	return m.result, m.err
}

// =====================================================================
// Test helpers
// =====================================================================

const testFormSID = "frm_abc123def456"

func createTestForm(status form.Status, version int) *form.Form {
	now := time.Now().UTC()
	return form.ReconstructForm(1, testFormSID, 10, "Contact", "Contact us", status, version, now, now)
}

func createTestVersion(n int) *form.Version {
	schema := form.Schema{"fields": []any{
		map[string]any{"id": "email", "type": "email", "label": "Email"},
	}}
	fields := []form.FormField{{Key: "email", Type: "email", Label: "Email", Position: 0}}
	return form.ReconstructVersion(uint(n), 1, n, schema, fields, time.Now().UTC())
}

func newTestFormHandler(create createFormUseCase, update updateFormUseCase, get getFormUseCase,
	list listFormsUseCase, del deleteFormUseCase, status changeFormStatusUseCase) *FormHandler {
	return NewFormHandler(create, update, get, list, del, status, testutil.NewMockLogger())
}

func testSchemaBody() map[string]any {
	return map[string]any{
		"fields": []any{map[string]any{"id": "email", "type": "email", "label": "Email"}},
	}
}

// =====================================================================
// FormHandler
// =====================================================================

func TestFormHandler_CreateForm_Success(t *testing.T) {
	mockUC := &mockCreateFormUC{result: &usecases.CreateFormResult{
		Form:    createTestForm(form.StatusDraft, 1),
		Version: createTestVersion(1),
	}}
	handler := newTestFormHandler(mockUC, nil, nil, nil, nil, nil)

	c, w := testutil.NewTestContext(http.MethodPost, "/forms", CreateFormRequest{
		Title:  "Contact",
		Schema: testSchemaBody(),
	})
	testutil.SetAuthContext(c, 10)

	handler.CreateForm(c)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, uint(10), mockUC.got.OwnerID)
	assert.Equal(t, "Contact", mockUC.got.Title)
	assert.NotNil(t, mockUC.got.Schema["fields"])

	var resp testutil.APIResponse
	require.NoError(t, testutil.ParseResponse(w, &resp))
	assert.True(t, resp.Success)

	var detail dto.FormDetailDTO
	require.NoError(t, json.Unmarshal(resp.Data, &detail))
	assert.Equal(t, testFormSID, detail.ID)
	assert.Equal(t, "DRAFT", detail.Status)
	require.NotNil(t, detail.Version)
	assert.Equal(t, 1, detail.Version.VersionNumber)
}

func TestFormHandler_CreateForm_MissingSchema(t *testing.T) {
	handler := newTestFormHandler(&mockCreateFormUC{}, nil, nil, nil, nil, nil)

	c, w := testutil.NewTestContext(http.MethodPost, "/forms", map[string]string{"title": "x"})
	testutil.SetAuthContext(c, 10)

	handler.CreateForm(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	var resp testutil.APIResponse
	require.NoError(t, testutil.ParseResponse(w, &resp))
	require.NotNil(t, resp.Error)
	assert.Equal(t, "validation_error", resp.Error.Type)
}

func TestFormHandler_CreateForm_QuotaExceeded(t *testing.T) {
	mockUC := &mockCreateFormUC{err: errors.NewQuotaExceededError("create_form", 3, 3)}
	handler := newTestFormHandler(mockUC, nil, nil, nil, nil, nil)

	c, w := testutil.NewTestContext(http.MethodPost, "/forms", CreateFormRequest{Title: "t", Schema: testSchemaBody()})
	testutil.SetAuthContext(c, 10)

	handler.CreateForm(c)

	assert.Equal(t, http.StatusPaymentRequired, w.Code)
	var resp testutil.APIResponse
	require.NoError(t, testutil.ParseResponse(w, &resp))
	require.NotNil(t, resp.Error)
	assert.Equal(t, "quota_exceeded", resp.Error.Type)
	assert.Equal(t, "create_form", resp.Error.Context["actionType"])
	assert.EqualValues(t, 3, resp.Error.Context["maxLimit"])
}

func TestFormHandler_CreateForm_NotAuthenticated(t *testing.T) {
	handler := newTestFormHandler(&mockCreateFormUC{}, nil, nil, nil, nil, nil)

	c, w := testutil.NewTestContext(http.MethodPost, "/forms", CreateFormRequest{Title: "t", Schema: testSchemaBody()})

	handler.CreateForm(c)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestFormHandler_ListForms_Pagination(t *testing.T) {
	forms := dto.ToFormDTOList([]*form.Form{createTestForm(form.StatusDraft, 1)})
	mockUC := &mockListFormsUC{result: &usecases.ListFormsResult{Forms: forms, Total: 41}}
	handler := newTestFormHandler(nil, nil, nil, mockUC, nil, nil)

	c, w := testutil.NewTestContext(http.MethodGet, "/forms", nil)
	testutil.SetAuthContext(c, 10)
	testutil.SetQueryParams(c, map[string]string{"page": "2", "page_size": "20", "status": "DRAFT"})

	handler.ListForms(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 2, mockUC.got.Page)
	assert.Equal(t, 20, mockUC.got.PageSize)
	assert.Equal(t, "DRAFT", mockUC.got.Status)

	var resp testutil.APIResponse
	require.NoError(t, testutil.ParseResponse(w, &resp))
	var list struct {
		Total      int64 `json:"total"`
		TotalPages int   `json:"total_pages"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &list))
	assert.Equal(t, int64(41), list.Total)
	assert.Equal(t, 3, list.TotalPages)
}

func TestFormHandler_GetForm_InvalidID(t *testing.T) {
	handler := newTestFormHandler(nil, nil, &mockGetFormUC{}, nil, nil, nil)

	c, w := testutil.NewTestContext(http.MethodGet, "/forms/sub_123", nil)
	testutil.SetAuthContext(c, 10)
	testutil.SetURLParam(c, "id", "sub_123")

	handler.GetForm(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestFormHandler_GetForm_Forbidden(t *testing.T) {
	mockUC := &mockGetFormUC{err: errors.NewForbiddenError("access denied")}
	handler := newTestFormHandler(nil, nil, mockUC, nil, nil, nil)

	c, w := testutil.NewTestContext(http.MethodGet, "/forms/"+testFormSID, nil)
	testutil.SetAuthContext(c, 99)
	testutil.SetURLParam(c, "id", testFormSID)

	handler.GetForm(c)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestFormHandler_UpdateForm_MetadataOnly(t *testing.T) {
	mockUC := &mockUpdateFormUC{result: &usecases.UpdateFormResult{Form: createTestForm(form.StatusDraft, 1)}}
	handler := newTestFormHandler(nil, mockUC, nil, nil, nil, nil)

	title := "Renamed"
	c, w := testutil.NewTestContext(http.MethodPatch, "/forms/"+testFormSID, UpdateFormRequest{Title: &title})
	testutil.SetAuthContext(c, 10)
	testutil.SetURLParam(c, "id", testFormSID)

	handler.UpdateForm(c)

	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, mockUC.got.Title)
	assert.Equal(t, "Renamed", *mockUC.got.Title)
	assert.Nil(t, mockUC.got.Schema)
}

func TestFormHandler_DeleteForm(t *testing.T) {
	handler := newTestFormHandler(nil, nil, nil, nil, &mockDeleteFormUC{}, nil)

	c, w := testutil.NewTestContext(http.MethodDelete, "/forms/"+testFormSID, nil)
	testutil.SetAuthContext(c, 10)
	testutil.SetURLParam(c, "id", testFormSID)

	handler.DeleteForm(c)
	c.Writer.WriteHeaderNow()

	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestFormHandler_PublishForm(t *testing.T) {
	mockUC := &mockChangeFormStatusUC{result: createTestForm(form.StatusPublished, 1)}
	handler := newTestFormHandler(nil, nil, nil, nil, nil, mockUC)

	c, w := testutil.NewTestContext(http.MethodPost, "/forms/"+testFormSID+"/publish", nil)
	testutil.SetAuthContext(c, 10)
	testutil.SetURLParam(c, "id", testFormSID)

	handler.PublishForm(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, usecases.ActionPublish, mockUC.got.Action)
	assert.Equal(t, testFormSID, mockUC.got.FormSID)
}

func TestFormHandler_ArchiveForm_InvalidTransition(t *testing.T) {
	mockUC := &mockChangeFormStatusUC{err: errors.NewInvariantViolationError("invalid form status transition")}
	handler := newTestFormHandler(nil, nil, nil, nil, nil, mockUC)

	c, w := testutil.NewTestContext(http.MethodPost, "/forms/"+testFormSID+"/archive", nil)
	testutil.SetAuthContext(c, 10)
	testutil.SetURLParam(c, "id", testFormSID)

	handler.ArchiveForm(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, usecases.ActionArchive, mockUC.got.Action)
}

// =====================================================================
// FormVersionHandler
// =====================================================================

func TestFormVersionHandler_ListVersions(t *testing.T) {
	mockVM := &mockVersionManager{versions: []*form.Version{createTestVersion(1), createTestVersion(2)}}
	handler := NewFormVersionHandler(mockVM, testutil.NewMockLogger())

	c, w := testutil.NewTestContext(http.MethodGet, "/forms/"+testFormSID+"/versions", nil)
	testutil.SetAuthContext(c, 10)
	testutil.SetURLParam(c, "id", testFormSID)

	handler.ListVersions(c)

	require.Equal(t, http.StatusOK, w.Code)
	var resp testutil.APIResponse
	require.NoError(t, testutil.ParseResponse(w, &resp))
	var versions []dto.VersionSummaryDTO
	require.NoError(t, json.Unmarshal(resp.Data, &versions))
	require.Len(t, versions, 2)
	assert.Equal(t, 2, versions[1].VersionNumber)
	assert.Equal(t, 1, versions[1].FieldCount)
}

func TestFormVersionHandler_GetVersion_BadNumber(t *testing.T) {
	handler := NewFormVersionHandler(&mockVersionManager{}, testutil.NewMockLogger())

	for _, raw := range []string{"0", "-1", "abc"} {
		c, w := testutil.NewTestContext(http.MethodGet, "/forms/"+testFormSID+"/versions/"+raw, nil)
		testutil.SetAuthContext(c, 10)
		testutil.SetURLParam(c, "id", testFormSID)
		testutil.SetURLParam(c, "version", raw)

		handler.GetVersion(c)

		assert.Equal(t, http.StatusBadRequest, w.Code, raw)
	}
}

func TestFormVersionHandler_CreateVersion(t *testing.T) {
	mockVM := &mockVersionManager{version: createTestVersion(3)}
	handler := NewFormVersionHandler(mockVM, testutil.NewMockLogger())

	c, w := testutil.NewTestContext(http.MethodPost, "/forms/"+testFormSID+"/versions", CreateVersionRequest{Schema: testSchemaBody()})
	testutil.SetAuthContext(c, 10)
	testutil.SetURLParam(c, "id", testFormSID)

	handler.CreateVersion(c)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.NotNil(t, mockVM.schema["fields"])
}

func TestFormVersionHandler_RestoreVersion(t *testing.T) {
	mockVM := &mockVersionManager{version: createTestVersion(4)}
	handler := NewFormVersionHandler(mockVM, testutil.NewMockLogger())

	c, w := testutil.NewTestContext(http.MethodPost, "/forms/"+testFormSID+"/versions/2/restore", nil)
	testutil.SetAuthContext(c, 10)
	testutil.SetURLParam(c, "id", testFormSID)
	testutil.SetURLParam(c, "version", "2")

	handler.RestoreVersion(c)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, 2, mockVM.number)

	var resp testutil.APIResponse
	require.NoError(t, testutil.ParseResponse(w, &resp))
	var v dto.VersionDTO
	require.NoError(t, json.Unmarshal(resp.Data, &v))
	assert.Equal(t, 4, v.VersionNumber)
}

func TestFormVersionHandler_DeleteVersion_LastVersion(t *testing.T) {
	mockVM := &mockVersionManager{err: errors.NewInvariantViolationError("cannot delete the last version")}
	handler := NewFormVersionHandler(mockVM, testutil.NewMockLogger())

	c, w := testutil.NewTestContext(http.MethodDelete, "/forms/"+testFormSID+"/versions/1", nil)
	testutil.SetAuthContext(c, 10)
	testutil.SetURLParam(c, "id", testFormSID)
	testutil.SetURLParam(c, "version", "1")

	handler.DeleteVersion(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	var resp testutil.APIResponse
	require.NoError(t, testutil.ParseResponse(w, &resp))
	assert.Equal(t, "invariant_violation", resp.Error.Type)
}

// =====================================================================
// SubmissionHandler
// =====================================================================

func TestSubmissionHandler_ExportSubmissions(t *testing.T) {
	exportUC := &mockExportSubmissionsUC{csv: "Email\na@example.com\n"}
	handler := NewSubmissionHandler(nil, exportUC, testutil.NewMockLogger())

	c, w := testutil.NewTestContext(http.MethodGet, "/forms/"+testFormSID+"/submissions/export", nil)
	testutil.SetAuthContext(c, 10)
	testutil.SetURLParam(c, "id", testFormSID)

	handler.ExportSubmissions(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/csv")
	assert.Contains(t, w.Header().Get("Content-Disposition"), testFormSID+"-submissions.csv")
	assert.Equal(t, "Email\na@example.com\n", w.Body.String())
}

func TestSubmissionHandler_ExportSubmissions_ErrorIsJSON(t *testing.T) {
	exportUC := &mockExportSubmissionsUC{err: errors.NewNotFoundError("form not found")}
	handler := NewSubmissionHandler(nil, exportUC, testutil.NewMockLogger())

	c, w := testutil.NewTestContext(http.MethodGet, "/forms/"+testFormSID+"/submissions/export", nil)
	testutil.SetAuthContext(c, 10)
	testutil.SetURLParam(c, "id", testFormSID)

	handler.ExportSubmissions(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "application/json")
}

func TestSubmissionHandler_ListSubmissions(t *testing.T) {
	now := time.Now().UTC()
	sub := form.ReconstructSubmission(1, "sbm_abc", 1, map[string]any{"email": "a@example.com"}, "127.0.0.1", nil, now)
	listUC := &mockListSubmissionsUC{result: &usecases.ListSubmissionsResult{
		Submissions: []*dto.SubmissionDTO{dto.ToSubmissionDTO(testFormSID, sub)},
		Total:       1,
	}}
	handler := NewSubmissionHandler(listUC, nil, testutil.NewMockLogger())

	c, w := testutil.NewTestContext(http.MethodGet, "/forms/"+testFormSID+"/submissions", nil)
	testutil.SetAuthContext(c, 10)
	testutil.SetURLParam(c, "id", testFormSID)

	handler.ListSubmissions(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "sbm_abc")
}

// =====================================================================
// PublicFormHandler
// =====================================================================

func TestPublicFormHandler_GetForm_NotPublished(t *testing.T) {
	handler := NewPublicFormHandler(&mockGetFormUC{err: errors.NewNotFoundError("form not found")}, nil, testutil.NewMockLogger())

	c, w := testutil.NewTestContext(http.MethodGet, "/public/forms/"+testFormSID, nil)
	testutil.SetURLParam(c, "id", testFormSID)

	handler.GetForm(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPublicFormHandler_Submit_Anonymous(t *testing.T) {
	now := time.Now().UTC()
	sub := form.ReconstructSubmission(1, "sbm_xyz", 1, map[string]any{"email": "a@example.com"}, "192.0.2.1", nil, now)
	submitUC := &mockSubmitFormUC{result: &usecases.SubmitFormResult{Submission: sub, SuccessMessage: "Merci !"}}
	handler := NewPublicFormHandler(nil, submitUC, testutil.NewMockLogger())

	c, w := testutil.NewTestContext(http.MethodPost, "/public/forms/"+testFormSID+"/submissions",
		SubmitFormRequest{Data: map[string]any{"email": "a@example.com"}})
	testutil.SetURLParam(c, "id", testFormSID)

	handler.Submit(c)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Nil(t, submitUC.got.SubmitterID)
	assert.Equal(t, testFormSID, submitUC.got.FormSID)
	assert.NotEmpty(t, submitUC.got.IPAddress)

	var resp testutil.APIResponse
	require.NoError(t, testutil.ParseResponse(w, &resp))
	var out SubmitFormResponse
	require.NoError(t, json.Unmarshal(resp.Data, &out))
	assert.Equal(t, "sbm_xyz", out.SubmissionID)
	assert.Equal(t, "Merci !", out.SuccessMessage)
}

func TestPublicFormHandler_Submit_SignedInRespondent(t *testing.T) {
	sub := form.ReconstructSubmission(1, "sbm_xyz", 1, map[string]any{}, "", nil, time.Now().UTC())
	submitUC := &mockSubmitFormUC{result: &usecases.SubmitFormResult{Submission: sub}}
	handler := NewPublicFormHandler(nil, submitUC, testutil.NewMockLogger())

	c, _ := testutil.NewTestContext(http.MethodPost, "/public/forms/"+testFormSID+"/submissions",
		SubmitFormRequest{Data: map[string]any{}})
	testutil.SetURLParam(c, "id", testFormSID)
	testutil.SetAuthContext(c, 42)

	handler.Submit(c)

	require.NotNil(t, submitUC.got.SubmitterID)
	assert.Equal(t, uint(42), *submitUC.got.SubmitterID)
}

func TestPublicFormHandler_Submit_QuotaOfOwnerExceeded(t *testing.T) {
	submitUC := &mockSubmitFormUC{err: errors.NewQuotaExceededError("submit_form", 100, 100)}
	handler := NewPublicFormHandler(nil, submitUC, testutil.NewMockLogger())

	c, w := testutil.NewTestContext(http.MethodPost, "/public/forms/"+testFormSID+"/submissions",
		SubmitFormRequest{Data: map[string]any{"email": "a@example.com"}})
	testutil.SetURLParam(c, "id", testFormSID)

	handler.Submit(c)

	assert.Equal(t, http.StatusPaymentRequired, w.Code)
}
