package usecases

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/formcraft-io/formcraft/internal/application/testutil"
	"github.com/formcraft-io/formcraft/internal/domain/form"
	"github.com/formcraft-io/formcraft/internal/domain/quota"
	"github.com/formcraft-io/formcraft/internal/shared/logger"
)

// ownerAuthorizer allows owners everything and readers in Readers read access.
type ownerAuthorizer struct {
	Readers map[uint]bool
}

func (a ownerAuthorizer) CanAccessForm(_ context.Context, userID uint, f *form.Form) (bool, error) {
	return f.IsOwnedBy(userID) || a.Readers[userID], nil
}

func (a ownerAuthorizer) CanModifyForm(_ context.Context, userID uint, f *form.Form) (bool, error) {
	return f.IsOwnedBy(userID), nil
}

type quotaCall struct {
	UserID uint
	Action quota.ActionType
}

type mockQuotaEnforcer struct {
	mu    sync.Mutex
	Err   error
	Calls []quotaCall
}

func (m *mockQuotaEnforcer) EnforceQuotaLimit(_ context.Context, userID uint, action quota.ActionType, _ float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, quotaCall{UserID: userID, Action: action})
	return m.Err
}

func sequentialIDs(prefix string) IDGenerator {
	var mu sync.Mutex
	n := 0
	return func() (string, error) {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("%s_%d", prefix, n), nil
	}
}

type formEnv struct {
	forms       *testutil.FormRepository
	versions    *testutil.VersionRepository
	submissions *testutil.SubmissionRepository
	tx          *testutil.Transactor
	quota       *mockQuotaEnforcer
	authz       ownerAuthorizer
	manager     *VersionManager
	create      *CreateFormUseCase
	log         logger.Interface
}

func newFormEnv(versionCap int) *formEnv {
	env := &formEnv{
		forms:    testutil.NewFormRepository(),
		versions: testutil.NewVersionRepository(),
		tx:       &testutil.Transactor{},
		quota:    &mockQuotaEnforcer{},
		authz:    ownerAuthorizer{Readers: map[uint]bool{}},
		log:      logger.NewNopLogger(),
	}
	env.submissions = testutil.NewSubmissionRepository(env.forms)
	env.manager = NewVersionManager(env.forms, env.versions, env.authz, env.tx, versionCap, env.log)
	env.create = NewCreateFormUseCase(env.forms, env.manager, env.quota, env.tx, sequentialIDs("frm"), env.log)
	return env
}

func (e *formEnv) createForm(t *testing.T, ownerID uint, schema form.Schema) *form.Form {
	t.Helper()
	res, err := e.create.Execute(context.Background(), CreateFormCommand{
		OwnerID: ownerID,
		Title:   "Contact",
		Schema:  schema,
	})
	require.NoError(t, err)
	return res.Form
}

func textField(id, label string) map[string]any {
	return map[string]any{"id": id, "type": "text", "label": label}
}

func schemaOf(fields ...map[string]any) form.Schema {
	list := make([]any, 0, len(fields))
	for _, f := range fields {
		list = append(list, f)
	}
	return form.Schema{"fields": list}
}
