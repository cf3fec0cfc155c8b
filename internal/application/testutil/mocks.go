// Package testutil provides in-memory repositories and fakes for testing
// the application layer.
package testutil

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/formcraft-io/formcraft/internal/application/notification"
	"github.com/formcraft-io/formcraft/internal/application/payment/paymentgateway"
	"github.com/formcraft-io/formcraft/internal/domain/billing"
	"github.com/formcraft-io/formcraft/internal/domain/form"
	"github.com/formcraft-io/formcraft/internal/domain/quota"
	"github.com/formcraft-io/formcraft/internal/domain/subscription"
	"github.com/formcraft-io/formcraft/internal/domain/user"
)

// ErrDuplicate mimics the SQLite unique violation message so
// errors.IsDuplicateError recognises it.
var ErrDuplicate = errors.New("UNIQUE constraint failed")

// Transactor runs the function inline and counts calls.
type Transactor struct {
	mu    sync.Mutex
	Calls int
}

func (t *Transactor) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	t.mu.Lock()
	t.Calls++
	t.mu.Unlock()
	return fn(ctx)
}

// UserRepository is an in-memory user.Repository.
type UserRepository struct {
	mu     sync.RWMutex
	users  map[uint]*user.User
	nextID uint

	GetErr error
}

func NewUserRepository() *UserRepository {
	return &UserRepository{users: make(map[uint]*user.User)}
}

func (r *UserRepository) Create(ctx context.Context, u *user.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Email() == u.Email() {
			return fmt.Errorf("%w: users.email", ErrDuplicate)
		}
	}
	r.nextID++
	u.SetID(r.nextID)
	r.users[u.ID()] = u
	return nil
}

func (r *UserRepository) Update(ctx context.Context, u *user.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[u.ID()] = u
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id uint) (*user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.GetErr != nil {
		return nil, r.GetErr
	}
	return r.users[id], nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		if u.Email() == email {
			return u, nil
		}
	}
	return nil, nil
}

func (r *UserRepository) GetByProviderCustomerID(ctx context.Context, customerID string) (*user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		if customerID != "" && u.ProviderCustomerID() == customerID {
			return u, nil
		}
	}
	return nil, nil
}

// SubscriptionRepository is an in-memory subscription.Repository.
type SubscriptionRepository struct {
	mu     sync.RWMutex
	subs   map[uint]*subscription.Subscription
	nextID uint

	CreateErr error
	UpdateErr error
}

func NewSubscriptionRepository() *SubscriptionRepository {
	return &SubscriptionRepository{subs: make(map[uint]*subscription.Subscription)}
}

func (r *SubscriptionRepository) Create(ctx context.Context, s *subscription.Subscription) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.CreateErr != nil {
		return r.CreateErr
	}
	if pid := s.ProviderSubscriptionID(); pid != "" {
		for _, existing := range r.subs {
			if existing.ProviderSubscriptionID() == pid {
				return fmt.Errorf("%w: subscriptions.provider_subscription_id", ErrDuplicate)
			}
		}
	}
	r.nextID++
	s.SetID(r.nextID)
	r.subs[s.ID()] = s
	return nil
}

func (r *SubscriptionRepository) Update(ctx context.Context, s *subscription.Subscription) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.UpdateErr != nil {
		return r.UpdateErr
	}
	r.subs[s.ID()] = s
	return nil
}

func (r *SubscriptionRepository) GetByID(ctx context.Context, id uint) (*subscription.Subscription, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.subs[id], nil
}

func (r *SubscriptionRepository) GetByProviderSubscriptionID(ctx context.Context, providerID string) (*subscription.Subscription, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, s := range r.subs {
		if providerID != "" && s.ProviderSubscriptionID() == providerID {
			return s, nil
		}
	}
	return nil, nil
}

func (r *SubscriptionRepository) GetActiveByUserID(ctx context.Context, userID uint) (*subscription.Subscription, error) {
	active, _ := r.ListActiveByUserID(ctx, userID)
	if len(active) == 0 {
		return nil, nil
	}
	return active[len(active)-1], nil
}

func (r *SubscriptionRepository) GetLatestByUserID(ctx context.Context, userID uint) (*subscription.Subscription, error) {
	all := r.ByUser(userID)
	if len(all) == 0 {
		return nil, nil
	}
	return all[len(all)-1], nil
}

func (r *SubscriptionRepository) ListActiveByUserID(ctx context.Context, userID uint) ([]*subscription.Subscription, error) {
	var out []*subscription.Subscription
	for _, s := range r.ByUser(userID) {
		if s.IsActive() {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *SubscriptionRepository) ListSuspendedBefore(ctx context.Context, cutoff time.Time) ([]*subscription.Subscription, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*subscription.Subscription
	for _, s := range r.subs {
		if s.IsSuspended() && s.SuspendedAt() != nil && !s.SuspendedAt().After(cutoff) {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out, nil
}

// ByUser returns every subscription of a user ordered by id.
func (r *SubscriptionRepository) ByUser(userID uint) []*subscription.Subscription {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*subscription.Subscription
	for _, s := range r.subs {
		if s.UserID() == userID {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out
}

// PlanRepository is an in-memory subscription.PlanRepository.
type PlanRepository struct {
	mu     sync.RWMutex
	plans  map[uint]*subscription.Plan
	nextID uint
}

func NewPlanRepository() *PlanRepository {
	return &PlanRepository{plans: make(map[uint]*subscription.Plan)}
}

func (r *PlanRepository) Create(ctx context.Context, p *subscription.Plan) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	p.SetID(r.nextID)
	r.plans[p.ID()] = p
	return nil
}

func (r *PlanRepository) Update(ctx context.Context, p *subscription.Plan) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.plans[p.ID()] = p
	return nil
}

func (r *PlanRepository) GetByID(ctx context.Context, id uint) (*subscription.Plan, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.plans[id], nil
}

func (r *PlanRepository) GetBySlug(ctx context.Context, slug string) (*subscription.Plan, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, p := range r.plans {
		if p.Slug() == slug {
			return p, nil
		}
	}
	return nil, nil
}

func (r *PlanRepository) GetByProviderPriceID(ctx context.Context, priceID string) (*subscription.Plan, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, p := range r.plans {
		if priceID != "" && p.ProviderPriceID() == priceID {
			return p, nil
		}
	}
	return nil, nil
}

func (r *PlanRepository) List(ctx context.Context) ([]*subscription.Plan, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*subscription.Plan, 0, len(r.plans))
	for _, p := range r.plans {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out, nil
}

func (r *PlanRepository) GetFeatures(ctx context.Context, planID uint) ([]subscription.Feature, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if p, ok := r.plans[planID]; ok {
		return p.Features(), nil
	}
	return nil, nil
}

func (r *PlanRepository) ReplaceFeatures(ctx context.Context, planID uint, features []subscription.Feature) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.plans[planID]; ok {
		p.SetFeatures(features)
	}
	return nil
}

// FormRepository is an in-memory form.Repository.
type FormRepository struct {
	mu     sync.RWMutex
	forms  map[uint]*form.Form
	nextID uint

	CountErr error
}

func NewFormRepository() *FormRepository {
	return &FormRepository{forms: make(map[uint]*form.Form)}
}

func (r *FormRepository) Create(ctx context.Context, f *form.Form) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	f.SetID(r.nextID)
	r.forms[f.ID()] = f
	return nil
}

func (r *FormRepository) Update(ctx context.Context, f *form.Form) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.forms[f.ID()] = f
	return nil
}

func (r *FormRepository) Delete(ctx context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.forms, id)
	return nil
}

func (r *FormRepository) GetByID(ctx context.Context, id uint) (*form.Form, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.forms[id], nil
}

func (r *FormRepository) GetBySID(ctx context.Context, sid string) (*form.Form, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, f := range r.forms {
		if f.SID() == sid {
			return f, nil
		}
	}
	return nil, nil
}

func (r *FormRepository) GetBySIDForUpdate(ctx context.Context, sid string) (*form.Form, error) {
	return r.GetBySID(ctx, sid)
}

func (r *FormRepository) List(ctx context.Context, filter form.ListFilter) ([]*form.Form, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var all []*form.Form
	for _, f := range r.forms {
		if filter.OwnerID != 0 && f.OwnerID() != filter.OwnerID {
			continue
		}
		if filter.Status != "" && f.Status() != filter.Status {
			continue
		}
		all = append(all, f)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID() > all[j].ID() })
	total := int64(len(all))
	start := (filter.Page - 1) * filter.PageSize
	if start < 0 || start >= len(all) {
		return []*form.Form{}, total, nil
	}
	end := min(start+filter.PageSize, len(all))
	return all[start:end], total, nil
}

func (r *FormRepository) CountByOwner(ctx context.Context, ownerID uint) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.CountErr != nil {
		return 0, r.CountErr
	}
	var n int64
	for _, f := range r.forms {
		if f.OwnerID() == ownerID {
			n++
		}
	}
	return n, nil
}

// VersionRepository is an in-memory form.VersionRepository.
type VersionRepository struct {
	mu       sync.RWMutex
	versions map[uint][]*form.Version
	nextID   uint

	CreateErr error
}

func NewVersionRepository() *VersionRepository {
	return &VersionRepository{versions: make(map[uint][]*form.Version)}
}

func (r *VersionRepository) Create(ctx context.Context, v *form.Version) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.CreateErr != nil {
		return r.CreateErr
	}
	for _, existing := range r.versions[v.FormID()] {
		if existing.VersionNumber() == v.VersionNumber() {
			return fmt.Errorf("%w: form_versions.form_id, form_versions.version_number", ErrDuplicate)
		}
	}
	r.nextID++
	v.SetID(r.nextID)
	list := append(r.versions[v.FormID()], v)
	sort.Slice(list, func(i, j int) bool { return list[i].VersionNumber() < list[j].VersionNumber() })
	r.versions[v.FormID()] = list
	return nil
}

func (r *VersionRepository) GetByNumber(ctx context.Context, formID uint, n int) (*form.Version, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, v := range r.versions[formID] {
		if v.VersionNumber() == n {
			return v, nil
		}
	}
	return nil, nil
}

func (r *VersionRepository) GetLatest(ctx context.Context, formID uint) (*form.Version, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	list := r.versions[formID]
	if len(list) == 0 {
		return nil, nil
	}
	return list[len(list)-1], nil
}

func (r *VersionRepository) ListByForm(ctx context.Context, formID uint) ([]*form.Version, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	list := r.versions[formID]
	out := make([]*form.Version, len(list))
	for i := range list {
		out[len(list)-1-i] = list[i]
	}
	return out, nil
}

func (r *VersionRepository) Count(ctx context.Context, formID uint) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.versions[formID])), nil
}

func (r *VersionRepository) MaxVersionNumber(ctx context.Context, formID uint) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	list := r.versions[formID]
	if len(list) == 0 {
		return 0, nil
	}
	return list[len(list)-1].VersionNumber(), nil
}

func (r *VersionRepository) DeleteOldest(ctx context.Context, formID uint, n int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	list := r.versions[formID]
	if n > len(list) {
		n = len(list)
	}
	r.versions[formID] = append([]*form.Version(nil), list[n:]...)
	return nil
}

func (r *VersionRepository) Delete(ctx context.Context, formID uint, n int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	list := r.versions[formID]
	for i, v := range list {
		if v.VersionNumber() == n {
			r.versions[formID] = append(list[:i:i], list[i+1:]...)
			return nil
		}
	}
	return nil
}

// Numbers returns the stored version numbers of a form in ascending order.
func (r *VersionRepository) Numbers(formID uint) []int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []int
	for _, v := range r.versions[formID] {
		out = append(out, v.VersionNumber())
	}
	return out
}

// SubmissionRepository is an in-memory form.SubmissionRepository. Owner
// lookups go through the form repository.
type SubmissionRepository struct {
	mu          sync.RWMutex
	submissions []*form.Submission
	forms       *FormRepository
	nextID      uint

	// Extra is added to CountByOwnerSince results to simulate prior usage.
	Extra int64
}

func NewSubmissionRepository(forms *FormRepository) *SubmissionRepository {
	return &SubmissionRepository{forms: forms}
}

func (r *SubmissionRepository) Create(ctx context.Context, s *form.Submission) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	s.SetID(r.nextID)
	r.submissions = append(r.submissions, s)
	return nil
}

func (r *SubmissionRepository) ListByForm(ctx context.Context, formID uint, page, pageSize int) ([]*form.Submission, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var all []*form.Submission
	for i := len(r.submissions) - 1; i >= 0; i-- {
		if r.submissions[i].FormID() == formID {
			all = append(all, r.submissions[i])
		}
	}
	total := int64(len(all))
	start := (page - 1) * pageSize
	if start < 0 || start >= len(all) {
		return []*form.Submission{}, total, nil
	}
	return all[start:min(start+pageSize, len(all))], total, nil
}

func (r *SubmissionRepository) Iterate(ctx context.Context, formID uint, fn func(*form.Submission) error) error {
	r.mu.RLock()
	list := append([]*form.Submission(nil), r.submissions...)
	r.mu.RUnlock()
	for _, s := range list {
		if s.FormID() != formID {
			continue
		}
		if err := fn(s); err != nil {
			return err
		}
	}
	return nil
}

func (r *SubmissionRepository) CountByOwnerSince(ctx context.Context, ownerID uint, since time.Time) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n := r.Extra
	for _, s := range r.submissions {
		f, _ := r.forms.GetByID(ctx, s.FormID())
		if f != nil && f.OwnerID() == ownerID && !s.SubmittedAt().Before(since) {
			n++
		}
	}
	return n, nil
}

// QuotaStatusRepository is an in-memory quota.StatusRepository.
type QuotaStatusRepository struct {
	mu     sync.RWMutex
	rows   map[string]*quota.Status
	nextID uint

	Updates int
}

func NewQuotaStatusRepository() *QuotaStatusRepository {
	return &QuotaStatusRepository{rows: make(map[string]*quota.Status)}
}

func statusKey(userID uint, month quota.MonthKey) string {
	return fmt.Sprintf("%d/%s", userID, month)
}

func (r *QuotaStatusRepository) GetByUserAndMonth(ctx context.Context, userID uint, month quota.MonthKey) (*quota.Status, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.rows[statusKey(userID, month)], nil
}

func (r *QuotaStatusRepository) Create(ctx context.Context, s *quota.Status) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := statusKey(s.UserID(), s.Month())
	if _, ok := r.rows[key]; ok {
		return fmt.Errorf("%w: user_quota_status.user_id, user_quota_status.month_key", ErrDuplicate)
	}
	r.nextID++
	s.SetID(r.nextID)
	r.rows[key] = s
	return nil
}

func (r *QuotaStatusRepository) Update(ctx context.Context, s *quota.Status) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Updates++
	r.rows[statusKey(s.UserID(), s.Month())] = s
	return nil
}

// WebhookEventRepository is an in-memory billing.WebhookEventRepository.
type WebhookEventRepository struct {
	mu     sync.RWMutex
	events map[string]*billing.WebhookEvent
	nextID uint
}

func NewWebhookEventRepository() *WebhookEventRepository {
	return &WebhookEventRepository{events: make(map[string]*billing.WebhookEvent)}
}

func (r *WebhookEventRepository) Create(ctx context.Context, e *billing.WebhookEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := e.Provider() + "/" + e.ProviderEventID()
	if _, ok := r.events[key]; ok {
		return fmt.Errorf("%w: webhook_events.provider, webhook_events.provider_event_id", ErrDuplicate)
	}
	r.nextID++
	e.SetID(r.nextID)
	r.events[key] = e
	return nil
}

func (r *WebhookEventRepository) GetByProviderEventID(ctx context.Context, provider, eventID string) (*billing.WebhookEvent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.events[provider+"/"+eventID], nil
}

func (r *WebhookEventRepository) Update(ctx context.Context, e *billing.WebhookEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events[e.Provider()+"/"+e.ProviderEventID()] = e
	return nil
}

// PaymentFailureRepository is an in-memory billing.PaymentFailureRepository.
type PaymentFailureRepository struct {
	mu       sync.RWMutex
	failures []*billing.PaymentFailure
}

func NewPaymentFailureRepository() *PaymentFailureRepository {
	return &PaymentFailureRepository{}
}

func (r *PaymentFailureRepository) Create(ctx context.Context, f *billing.PaymentFailure) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.failures {
		if existing.ProviderInvoiceID == f.ProviderInvoiceID && existing.Attempt == f.Attempt {
			return fmt.Errorf("%w: payment_failures.provider_invoice_id, payment_failures.attempt", ErrDuplicate)
		}
	}
	f.ID = uint(len(r.failures) + 1)
	r.failures = append(r.failures, f)
	return nil
}

func (r *PaymentFailureRepository) ListBySubscription(ctx context.Context, subscriptionID uint) ([]*billing.PaymentFailure, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*billing.PaymentFailure
	for _, f := range r.failures {
		if f.SubscriptionID == subscriptionID {
			out = append(out, f)
		}
	}
	return out, nil
}

// Notifier records sent messages. Err makes every send fail.
type Notifier struct {
	mu   sync.Mutex
	Sent []notification.Message
	Err  error
}

func (n *Notifier) Send(ctx context.Context, msg notification.Message) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.Err != nil {
		return n.Err
	}
	n.Sent = append(n.Sent, msg)
	return nil
}

// Templates returns the template names of sent messages in order.
func (n *Notifier) Templates() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]string, 0, len(n.Sent))
	for _, m := range n.Sent {
		out = append(out, m.Template)
	}
	return out
}

// LimitsCache is an in-memory quota limits cache.
type LimitsCache struct {
	mu          sync.Mutex
	entries     map[uint]subscription.PlanLimits
	Invalidated []uint
}

func NewLimitsCache() *LimitsCache {
	return &LimitsCache{entries: make(map[uint]subscription.PlanLimits)}
}

func (c *LimitsCache) Get(ctx context.Context, userID uint) (*subscription.PlanLimits, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if l, ok := c.entries[userID]; ok {
		return &l, nil
	}
	return nil, nil
}

func (c *LimitsCache) Set(ctx context.Context, userID uint, limits subscription.PlanLimits) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[userID] = limits
	return nil
}

func (c *LimitsCache) Invalidate(ctx context.Context, userID uint) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, userID)
	c.Invalidated = append(c.Invalidated, userID)
	return nil
}

// PaymentProvider is a function-field fake of paymentgateway.PaymentProvider.
// Unset functions succeed with zero values.
type PaymentProvider struct {
	CreateCustomerFunc        func(ctx context.Context, req paymentgateway.CreateCustomerRequest) (string, error)
	CreateCheckoutSessionFunc func(ctx context.Context, req paymentgateway.CheckoutRequest) (*paymentgateway.Session, error)
	CreatePortalSessionFunc   func(ctx context.Context, customerID, returnURL string) (*paymentgateway.Session, error)
	PauseSubscriptionFunc     func(ctx context.Context, id string) error
	ResumeSubscriptionFunc    func(ctx context.Context, id string) error
	CancelSubscriptionFunc    func(ctx context.Context, id string) error
	GetInvoiceFunc            func(ctx context.Context, id string) (*billing.ProviderInvoice, error)
	PayInvoiceFunc            func(ctx context.Context, id string) (*billing.ProviderInvoice, error)
	ParseWebhookEventFunc     func(payload []byte, signature string) (*billing.ProviderEvent, error)

	mu    sync.Mutex
	Calls []string
}

func (p *PaymentProvider) record(call string) {
	p.mu.Lock()
	p.Calls = append(p.Calls, call)
	p.mu.Unlock()
}

func (p *PaymentProvider) Name() string { return "stripe" }

func (p *PaymentProvider) CreateCustomer(ctx context.Context, req paymentgateway.CreateCustomerRequest) (string, error) {
	p.record("CreateCustomer")
	if p.CreateCustomerFunc != nil {
		return p.CreateCustomerFunc(ctx, req)
	}
	return fmt.Sprintf("cus_%d", req.UserID), nil
}

func (p *PaymentProvider) CreateCheckoutSession(ctx context.Context, req paymentgateway.CheckoutRequest) (*paymentgateway.Session, error) {
	p.record("CreateCheckoutSession")
	if p.CreateCheckoutSessionFunc != nil {
		return p.CreateCheckoutSessionFunc(ctx, req)
	}
	return &paymentgateway.Session{ID: "cs_test", URL: "https://checkout.example/cs_test"}, nil
}

func (p *PaymentProvider) CreatePortalSession(ctx context.Context, customerID, returnURL string) (*paymentgateway.Session, error) {
	p.record("CreatePortalSession")
	if p.CreatePortalSessionFunc != nil {
		return p.CreatePortalSessionFunc(ctx, customerID, returnURL)
	}
	return &paymentgateway.Session{ID: "bps_test", URL: "https://billing.example/bps_test"}, nil
}

func (p *PaymentProvider) PauseSubscription(ctx context.Context, id string) error {
	p.record("PauseSubscription")
	if p.PauseSubscriptionFunc != nil {
		return p.PauseSubscriptionFunc(ctx, id)
	}
	return nil
}

func (p *PaymentProvider) ResumeSubscription(ctx context.Context, id string) error {
	p.record("ResumeSubscription")
	if p.ResumeSubscriptionFunc != nil {
		return p.ResumeSubscriptionFunc(ctx, id)
	}
	return nil
}

func (p *PaymentProvider) CancelSubscription(ctx context.Context, id string) error {
	p.record("CancelSubscription")
	if p.CancelSubscriptionFunc != nil {
		return p.CancelSubscriptionFunc(ctx, id)
	}
	return nil
}

func (p *PaymentProvider) GetInvoice(ctx context.Context, id string) (*billing.ProviderInvoice, error) {
	p.record("GetInvoice")
	if p.GetInvoiceFunc != nil {
		return p.GetInvoiceFunc(ctx, id)
	}
	return &billing.ProviderInvoice{ID: id, Status: billing.InvoiceStatusOpen}, nil
}

func (p *PaymentProvider) PayInvoice(ctx context.Context, id string) (*billing.ProviderInvoice, error) {
	p.record("PayInvoice")
	if p.PayInvoiceFunc != nil {
		return p.PayInvoiceFunc(ctx, id)
	}
	return &billing.ProviderInvoice{ID: id, Status: billing.InvoiceStatusPaid}, nil
}

func (p *PaymentProvider) ParseWebhookEvent(payload []byte, signature string) (*billing.ProviderEvent, error) {
	p.record("ParseWebhookEvent")
	if p.ParseWebhookEventFunc != nil {
		return p.ParseWebhookEventFunc(payload, signature)
	}
	return nil, errors.New("no webhook parser configured")
}

// CallCount returns how many times the named method was called.
func (p *PaymentProvider) CallCount(call string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, c := range p.Calls {
		if c == call {
			n++
		}
	}
	return n
}
