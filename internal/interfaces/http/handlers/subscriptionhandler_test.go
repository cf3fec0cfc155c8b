package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	quotadto "github.com/formcraft-io/formcraft/internal/application/quota/dto"
	subdto "github.com/formcraft-io/formcraft/internal/application/subscription/dto"
	"github.com/formcraft-io/formcraft/internal/application/subscription/usecases"
	"github.com/formcraft-io/formcraft/internal/domain/billing"
	"github.com/formcraft-io/formcraft/internal/domain/quota"
	"github.com/formcraft-io/formcraft/internal/domain/subscription"
	"github.com/formcraft-io/formcraft/internal/interfaces/http/handlers/testutil"
	"github.com/formcraft-io/formcraft/internal/shared/errors"
)

// =====================================================================
// Mock use cases
// =====================================================================

type mockGetSubscriptionStatusUC struct {
	result *subdto.SubscriptionStatusDTO
	err    error
}

func (m *mockGetSubscriptionStatusUC) Execute(ctx context.Context, userID uint) (*subdto.SubscriptionStatusDTO, error) {
	return m.result, m.err
}

type mockCheckoutUC struct {
	result *subdto.SessionDTO
	err    error
	got    usecases.CreateCheckoutCommand
}

func (m *mockCheckoutUC) Execute(ctx context.Context, cmd usecases.CreateCheckoutCommand) (*subdto.SessionDTO, error) {
	m.got = cmd
	return m.result, m.err
}

func (m *mockCheckoutUC) CreatePortalSession(ctx context.Context, userID uint) (*subdto.SessionDTO, error) {
	return m.result, m.err
}

type mockPaymentRetrier struct {
	result *billing.ProviderInvoice
	err    error
	called bool
}

func (m *mockPaymentRetrier) RetryPayment(ctx context.Context, userID uint, invoiceID string) (*billing.ProviderInvoice, error) {
	m.called = true
	return m.result, m.err
}

type mockListPlansUC struct {
	result []*subdto.PlanDTO
	err    error
}

func (m *mockListPlansUC) Execute(ctx context.Context) ([]*subdto.PlanDTO, error) {
	return m.result, m.err
}

type mockQuotaCalculator struct {
	result *quota.Snapshot
	err    error
}

func (m *mockQuotaCalculator) CalculateCurrentQuotas(ctx context.Context, userID uint) (*quota.Snapshot, error) {
	return m.result, m.err
}

// =====================================================================
// SubscriptionHandler
// =====================================================================

func TestSubscriptionHandler_GetStatus_None(t *testing.T) {
	handler := NewSubscriptionHandler(&mockGetSubscriptionStatusUC{result: subdto.ToSubscriptionStatusDTO(nil)}, nil, nil, testutil.NewMockLogger())

	c, w := testutil.NewTestContext(http.MethodGet, "/subscription", nil)
	testutil.SetAuthContext(c, 10)

	handler.GetStatus(c)

	require.Equal(t, http.StatusOK, w.Code)
	var resp testutil.APIResponse
	require.NoError(t, testutil.ParseResponse(w, &resp))
	var status subdto.SubscriptionStatusDTO
	require.NoError(t, json.Unmarshal(resp.Data, &status))
	assert.Equal(t, "none", status.Status)
	assert.False(t, status.IsActive)
}

func TestSubscriptionHandler_GetStatus_Keys(t *testing.T) {
	result := &subdto.SubscriptionStatusDTO{ID: "sub_1", Status: "ACTIVE", IsActive: true, PlanID: 2}
	handler := NewSubscriptionHandler(&mockGetSubscriptionStatusUC{result: result}, nil, nil, testutil.NewMockLogger())

	c, w := testutil.NewTestContext(http.MethodGet, "/subscription", nil)
	testutil.SetAuthContext(c, 10)

	handler.GetStatus(c)

	require.Equal(t, http.StatusOK, w.Code)
	var resp testutil.APIResponse
	require.NoError(t, testutil.ParseResponse(w, &resp))
	var raw map[string]any
	require.NoError(t, json.Unmarshal(resp.Data, &raw))
	assert.Equal(t, "sub_1", raw["id"])
	assert.Equal(t, "ACTIVE", raw["status"])
	assert.Equal(t, true, raw["isActive"])
	assert.NotContains(t, raw, "is_active")
}

func TestSubscriptionHandler_CreateCheckout_Success(t *testing.T) {
	mockUC := &mockCheckoutUC{result: &subdto.SessionDTO{ID: "cs_test_1", URL: "https://checkout.example/cs_test_1"}}
	handler := NewSubscriptionHandler(nil, mockUC, nil, testutil.NewMockLogger())

	c, w := testutil.NewTestContext(http.MethodPost, "/billing/checkout", CreateCheckoutRequest{PlanSlug: " pro "})
	testutil.SetAuthContext(c, 10)

	handler.CreateCheckout(c)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "pro", mockUC.got.PlanSlug)
	assert.Equal(t, uint(10), mockUC.got.UserID)
	assert.Contains(t, w.Body.String(), "https://checkout.example/cs_test_1")
}

func TestSubscriptionHandler_CreateCheckout_MissingPlan(t *testing.T) {
	handler := NewSubscriptionHandler(nil, &mockCheckoutUC{}, nil, testutil.NewMockLogger())

	c, w := testutil.NewTestContext(http.MethodPost, "/billing/checkout", map[string]string{})
	testutil.SetAuthContext(c, 10)

	handler.CreateCheckout(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSubscriptionHandler_CreateCheckout_UnknownPlan(t *testing.T) {
	mockUC := &mockCheckoutUC{err: errors.NewNotFoundError("plan not found")}
	handler := NewSubscriptionHandler(nil, mockUC, nil, testutil.NewMockLogger())

	c, w := testutil.NewTestContext(http.MethodPost, "/billing/checkout", CreateCheckoutRequest{PlanSlug: "gold"})
	testutil.SetAuthContext(c, 10)

	handler.CreateCheckout(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSubscriptionHandler_CreatePortal(t *testing.T) {
	mockUC := &mockCheckoutUC{result: &subdto.SessionDTO{URL: "https://portal.example/s"}}
	handler := NewSubscriptionHandler(nil, mockUC, nil, testutil.NewMockLogger())

	c, w := testutil.NewTestContext(http.MethodPost, "/billing/portal", nil)
	testutil.SetAuthContext(c, 10)

	handler.CreatePortal(c)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), "https://portal.example/s")
}

func TestSubscriptionHandler_RetryInvoice(t *testing.T) {
	retrier := &mockPaymentRetrier{result: &billing.ProviderInvoice{ID: "in_123", Status: billing.InvoiceStatusPaid, AttemptCount: 2}}
	handler := NewSubscriptionHandler(nil, nil, retrier, testutil.NewMockLogger())

	c, w := testutil.NewTestContext(http.MethodPost, "/billing/invoices/in_123/retry", nil)
	testutil.SetAuthContext(c, 10)
	testutil.SetURLParam(c, "invoice_id", "in_123")

	handler.RetryInvoice(c)

	require.Equal(t, http.StatusOK, w.Code)
	var resp testutil.APIResponse
	require.NoError(t, testutil.ParseResponse(w, &resp))
	var inv InvoiceResponse
	require.NoError(t, json.Unmarshal(resp.Data, &inv))
	assert.Equal(t, "paid", inv.Status)
	assert.Equal(t, int64(2), inv.AttemptCount)
}

func TestSubscriptionHandler_RetryInvoice_BadID(t *testing.T) {
	retrier := &mockPaymentRetrier{}
	handler := NewSubscriptionHandler(nil, nil, retrier, testutil.NewMockLogger())

	c, w := testutil.NewTestContext(http.MethodPost, "/billing/invoices/sub_1/retry", nil)
	testutil.SetAuthContext(c, 10)
	testutil.SetURLParam(c, "invoice_id", "sub_1")

	handler.RetryInvoice(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, retrier.called)
}

func TestSubscriptionHandler_RetryInvoice_NotOwner(t *testing.T) {
	retrier := &mockPaymentRetrier{err: errors.NewForbiddenError("invoice does not belong to user")}
	handler := NewSubscriptionHandler(nil, nil, retrier, testutil.NewMockLogger())

	c, w := testutil.NewTestContext(http.MethodPost, "/billing/invoices/in_9/retry", nil)
	testutil.SetAuthContext(c, 10)
	testutil.SetURLParam(c, "invoice_id", "in_9")

	handler.RetryInvoice(c)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

// =====================================================================
// PlanHandler
// =====================================================================

func TestPlanHandler_ListPlans(t *testing.T) {
	plans := []*subdto.PlanDTO{
		{ID: 1, Slug: "free", Name: "Free", Price: "0.00", Currency: "EUR", Limits: subdto.PlanLimitsDTO{MaxForms: 3}},
		{ID: 2, Slug: "pro", Name: "Pro", Price: "19.00", Currency: "EUR", Limits: subdto.PlanLimitsDTO{MaxForms: 50}},
	}
	handler := NewPlanHandler(&mockListPlansUC{result: plans}, testutil.NewMockLogger())

	c, w := testutil.NewTestContext(http.MethodGet, "/plans", nil)

	handler.ListPlans(c)

	require.Equal(t, http.StatusOK, w.Code)
	var resp testutil.APIResponse
	require.NoError(t, testutil.ParseResponse(w, &resp))
	var got []subdto.PlanDTO
	require.NoError(t, json.Unmarshal(resp.Data, &got))
	require.Len(t, got, 2)
	assert.Equal(t, "19.00", got[1].Price)
}

func TestPlanHandler_ListPlans_Error(t *testing.T) {
	handler := NewPlanHandler(&mockListPlansUC{err: assert.AnError}, testutil.NewMockLogger())

	c, w := testutil.NewTestContext(http.MethodGet, "/plans", nil)

	handler.ListPlans(c)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), assert.AnError.Error())
}

// =====================================================================
// QuotaHandler
// =====================================================================

func TestQuotaHandler_GetQuota_Keys(t *testing.T) {
	snapshot := quota.NewSnapshot(
		subscription.PlanLimits{MaxForms: 10, MaxSubmissionsPerMonth: 100, MaxStorageMb: 50},
		quota.Usage{FormsCount: 8, SubmissionsCount: 100, StorageUsedMb: 0},
	)
	handler := NewQuotaHandler(&mockQuotaCalculator{result: &snapshot}, testutil.NewMockLogger())

	c, w := testutil.NewTestContext(http.MethodGet, "/quota", nil)
	testutil.SetAuthContext(c, 10)

	handler.GetQuota(c)

	require.Equal(t, http.StatusOK, w.Code)
	var resp testutil.APIResponse
	require.NoError(t, testutil.ParseResponse(w, &resp))

	var raw map[string]map[string]any
	require.NoError(t, json.Unmarshal(resp.Data, &raw))
	assert.EqualValues(t, 10, raw["limits"]["max_forms"])
	assert.EqualValues(t, 100, raw["limits"]["max_submissions_per_month"])
	assert.EqualValues(t, 8, raw["usage"]["forms_count"])
	assert.EqualValues(t, 80, raw["percentages"]["forms_used_percent"])
	assert.Equal(t, true, raw["is_over_limit"]["submissions"])
	assert.Equal(t, false, raw["is_over_limit"]["forms"])
	assert.Equal(t, true, raw["is_over_limit"]["any"])

	var typed quotadto.QuotaDTO
	require.NoError(t, json.Unmarshal(resp.Data, &typed))
	assert.Equal(t, float64(100), typed.Percentages.SubmissionsUsedPercent)
}

func TestQuotaHandler_GetQuota_NoActivePlan(t *testing.T) {
	handler := NewQuotaHandler(&mockQuotaCalculator{err: errors.NewNoActivePlanError("no active plan")}, testutil.NewMockLogger())

	c, w := testutil.NewTestContext(http.MethodGet, "/quota", nil)
	testutil.SetAuthContext(c, 10)

	handler.GetQuota(c)

	assert.Equal(t, http.StatusPaymentRequired, w.Code)
}
