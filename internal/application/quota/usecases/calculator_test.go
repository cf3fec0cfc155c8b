package usecases

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/formcraft-io/formcraft/internal/application/notification"
	"github.com/formcraft-io/formcraft/internal/application/testutil"
	"github.com/formcraft-io/formcraft/internal/domain/form"
	"github.com/formcraft-io/formcraft/internal/domain/quota"
	"github.com/formcraft-io/formcraft/internal/domain/subscription"
	"github.com/formcraft-io/formcraft/internal/domain/user"
	apperrors "github.com/formcraft-io/formcraft/internal/shared/errors"
	"github.com/formcraft-io/formcraft/internal/shared/logger"
)

type fixture struct {
	users       *testutil.UserRepository
	subs        *testutil.SubscriptionRepository
	plans       *testutil.PlanRepository
	forms       *testutil.FormRepository
	submissions *testutil.SubmissionRepository
	statuses    *testutil.QuotaStatusRepository
	notifier    *testutil.Notifier
	cache       *testutil.LimitsCache
	calculator  *Calculator
	user        *user.User
}

func newFixture(t *testing.T, limits subscription.PlanLimits) *fixture {
	t.Helper()
	ctx := context.Background()
	f := &fixture{
		users:    testutil.NewUserRepository(),
		subs:     testutil.NewSubscriptionRepository(),
		plans:    testutil.NewPlanRepository(),
		forms:    testutil.NewFormRepository(),
		statuses: testutil.NewQuotaStatusRepository(),
		notifier: &testutil.Notifier{},
		cache:    testutil.NewLimitsCache(),
	}
	f.submissions = testutil.NewSubmissionRepository(f.forms)

	u, err := user.NewUser("owner@example.com", "Owner", "")
	require.NoError(t, err)
	require.NoError(t, f.users.Create(ctx, u))
	f.user = u

	plan, err := subscription.NewPlan("pro", "Pro", decimal.NewFromInt(19), "eur", limits)
	require.NoError(t, err)
	require.NoError(t, f.plans.Create(ctx, plan))

	sub, err := subscription.NewSubscription("sub_fixture", u.ID(), plan.ID(), time.Now().UTC(), time.Time{})
	require.NoError(t, err)
	require.NoError(t, f.subs.Create(ctx, sub))

	log := logger.NewNopLogger()
	gate := NewNotificationGate(f.statuses, f.notifier, log)
	f.calculator = NewCalculator(f.subs, f.plans, f.forms, f.submissions, f.users, gate, log)
	f.calculator.SetLimitsCache(f.cache)
	return f
}

func (f *fixture) addForms(t *testing.T, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		fm, err := form.NewForm(fmt.Sprintf("frm_%d", i), f.user.ID(), "Contact", "")
		require.NoError(t, err)
		require.NoError(t, f.forms.Create(context.Background(), fm))
	}
}

var defaultLimits = subscription.PlanLimits{MaxForms: 5, MaxSubmissionsPerMonth: 100, MaxStorageMb: 50}

func TestCalculateCurrentQuotas_Percentages(t *testing.T) {
	f := newFixture(t, defaultLimits)
	f.addForms(t, 2)
	f.submissions.Extra = 25

	snap, err := f.calculator.CalculateCurrentQuotas(context.Background(), f.user.ID())
	require.NoError(t, err)

	assert.Equal(t, int64(2), snap.Usage.FormsCount)
	assert.Equal(t, int64(25), snap.Usage.SubmissionsCount)
	assert.Equal(t, float64(0), snap.Usage.StorageUsedMb)
	assert.Equal(t, 40.0, snap.Percentages.Forms)
	assert.Equal(t, 25.0, snap.Percentages.Submissions)
	assert.False(t, snap.OverLimit.Any())
	assert.Empty(t, f.notifier.Sent)
}

func TestCalculateCurrentQuotas_FormsAtLimit(t *testing.T) {
	f := newFixture(t, defaultLimits)
	f.addForms(t, 5)

	snap, err := f.calculator.CalculateCurrentQuotas(context.Background(), f.user.ID())
	require.NoError(t, err)
	assert.Equal(t, 100.0, snap.Percentages.Forms)
	assert.True(t, snap.OverLimit.Forms)

	ok, err := f.calculator.CanPerformAction(context.Background(), f.user.ID(), quota.ActionCreateForm, 1)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestEnforceQuotaLimit_CreateFormExceeded(t *testing.T) {
	f := newFixture(t, defaultLimits)
	f.addForms(t, 5)

	err := f.calculator.EnforceQuotaLimit(context.Background(), f.user.ID(), quota.ActionCreateForm, 1)
	require.Error(t, err)
	require.True(t, apperrors.IsQuotaExceededError(err))

	appErr := apperrors.GetAppError(err)
	assert.Equal(t, 402, appErr.Code)
	assert.Equal(t, "create_form", appErr.Context["actionType"])
	assert.Equal(t, 5.0, appErr.Context["currentUsage"])
	assert.Equal(t, 5.0, appErr.Context["maxLimit"])
}

func TestEnforceQuotaLimit_SubmitFormBoundary(t *testing.T) {
	f := newFixture(t, defaultLimits)
	ctx := context.Background()

	f.submissions.Extra = 99
	assert.NoError(t, f.calculator.EnforceQuotaLimit(ctx, f.user.ID(), quota.ActionSubmitForm, 1))

	f.submissions.Extra = 100
	err := f.calculator.EnforceQuotaLimit(ctx, f.user.ID(), quota.ActionSubmitForm, 1)
	assert.True(t, apperrors.IsQuotaExceededError(err))
}

func TestEnforceQuotaLimit_UnknownAction(t *testing.T) {
	f := newFixture(t, defaultLimits)
	err := f.calculator.EnforceQuotaLimit(context.Background(), f.user.ID(), quota.ActionType("delete_all"), 1)
	assert.True(t, apperrors.IsValidationError(err))
}

type fixedMeter float64

func (m fixedMeter) UsedMb(context.Context, uint) (float64, error) { return float64(m), nil }

func TestEnforceQuotaLimit_UploadUsesStorageMeter(t *testing.T) {
	f := newFixture(t, defaultLimits)
	f.calculator.SetStorageMeter(fixedMeter(45))
	ctx := context.Background()

	assert.NoError(t, f.calculator.EnforceQuotaLimit(ctx, f.user.ID(), quota.ActionUploadFile, 5))
	err := f.calculator.EnforceQuotaLimit(ctx, f.user.ID(), quota.ActionUploadFile, 6)
	assert.True(t, apperrors.IsQuotaExceededError(err))
}

func TestEnforceQuotaLimit_UploadExceededReportsUsage(t *testing.T) {
	f := newFixture(t, defaultLimits)
	f.calculator.SetStorageMeter(fixedMeter(48.5))

	err := f.calculator.EnforceQuotaLimit(context.Background(), f.user.ID(), quota.ActionUploadFile, 2)
	require.True(t, apperrors.IsQuotaExceededError(err))
	appErr := apperrors.GetAppError(err)
	assert.Equal(t, "upload_file", appErr.Context["actionType"])
	assert.Equal(t, 48.5, appErr.Context["currentUsage"])
	assert.Equal(t, 50.0, appErr.Context["maxLimit"])
}

func TestCalculateCurrentQuotas_NoActivePlan(t *testing.T) {
	f := newFixture(t, defaultLimits)
	for _, s := range f.subs.ByUser(f.user.ID()) {
		require.NoError(t, s.Cancel())
	}

	_, err := f.calculator.CalculateCurrentQuotas(context.Background(), f.user.ID())
	require.Error(t, err)
	appErr := apperrors.GetAppError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, apperrors.ErrorTypeNoActivePlan, appErr.Type)
}

func TestCalculateCurrentQuotas_CachesLimits(t *testing.T) {
	f := newFixture(t, defaultLimits)
	ctx := context.Background()

	_, err := f.calculator.CalculateCurrentQuotas(ctx, f.user.ID())
	require.NoError(t, err)

	cached, err := f.cache.Get(ctx, f.user.ID())
	require.NoError(t, err)
	require.NotNil(t, cached)
	assert.Equal(t, defaultLimits, *cached)
}

func TestCalculateCurrentQuotas_CountErrorFailsFast(t *testing.T) {
	f := newFixture(t, defaultLimits)
	f.forms.CountErr = errors.New("connection reset")

	_, err := f.calculator.CalculateCurrentQuotas(context.Background(), f.user.ID())
	assert.ErrorContains(t, err, "connection reset")
}

func TestNotificationGate_SendsEachThresholdOncePerMonth(t *testing.T) {
	f := newFixture(t, defaultLimits)
	ctx := context.Background()

	f.addForms(t, 4)
	_, err := f.calculator.CalculateCurrentQuotas(ctx, f.user.ID())
	require.NoError(t, err)
	assert.Equal(t, []string{notification.TemplateQuotaWarning}, f.notifier.Templates())

	_, err = f.calculator.CalculateCurrentQuotas(ctx, f.user.ID())
	require.NoError(t, err)
	assert.Len(t, f.notifier.Sent, 1, "80% notification is sticky for the month")

	f.addForms(t, 1)
	_, err = f.calculator.CalculateCurrentQuotas(ctx, f.user.ID())
	require.NoError(t, err)
	assert.Equal(t, []string{notification.TemplateQuotaWarning, notification.TemplateQuotaReached}, f.notifier.Templates())

	st, err := f.statuses.GetByUserAndMonth(ctx, f.user.ID(), quota.MonthKeyOf(time.Now().UTC()))
	require.NoError(t, err)
	require.NotNil(t, st)
	assert.True(t, st.Notified80())
	assert.True(t, st.Notified100())
	assert.Equal(t, int64(5), st.FormCount())
}

func TestNotificationGate_BothThresholdsInOneCheck(t *testing.T) {
	f := newFixture(t, defaultLimits)
	f.submissions.Extra = 100

	_, err := f.calculator.CalculateCurrentQuotas(context.Background(), f.user.ID())
	require.NoError(t, err)
	assert.Equal(t, []string{notification.TemplateQuotaWarning, notification.TemplateQuotaReached}, f.notifier.Templates())
	assert.Equal(t, f.user.Email(), f.notifier.Sent[0].To)
}

func TestNotificationGate_SendFailureIsRetried(t *testing.T) {
	f := newFixture(t, defaultLimits)
	ctx := context.Background()
	f.addForms(t, 4)
	f.notifier.Err = errors.New("smtp unavailable")

	_, err := f.calculator.CalculateCurrentQuotas(ctx, f.user.ID())
	require.NoError(t, err, "notification failures never fail the quota check")

	st, _ := f.statuses.GetByUserAndMonth(ctx, f.user.ID(), quota.MonthKeyOf(time.Now().UTC()))
	require.NotNil(t, st)
	assert.False(t, st.Notified80())

	f.notifier.Err = nil
	_, err = f.calculator.CalculateCurrentQuotas(ctx, f.user.ID())
	require.NoError(t, err)
	assert.Len(t, f.notifier.Sent, 1)
}

func TestNotificationGate_ReusesRowCreatedConcurrently(t *testing.T) {
	f := newFixture(t, defaultLimits)
	ctx := context.Background()
	month := quota.MonthKeyOf(time.Now().UTC())

	existing, err := quota.NewStatus(f.user.ID(), month)
	require.NoError(t, err)
	existing.MarkNotified(quota.Threshold80)
	require.NoError(t, f.statuses.Create(ctx, existing))

	gate := NewNotificationGate(&racingStatusRepo{QuotaStatusRepository: f.statuses}, f.notifier, logger.NewNopLogger())
	snap := quota.NewSnapshot(defaultLimits, quota.Usage{FormsCount: 4})

	require.NoError(t, gate.CheckAndSendNotifications(ctx, f.user, snap))
	assert.Empty(t, f.notifier.Sent)
}

// racingStatusRepo misses the first lookup as if another request inserted
// the row between read and insert.
type racingStatusRepo struct {
	*testutil.QuotaStatusRepository
	looked bool
}

func (r *racingStatusRepo) GetByUserAndMonth(ctx context.Context, userID uint, month quota.MonthKey) (*quota.Status, error) {
	if !r.looked {
		r.looked = true
		return nil, nil
	}
	return r.QuotaStatusRepository.GetByUserAndMonth(ctx, userID, month)
}
