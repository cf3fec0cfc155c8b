package handlers

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/formcraft-io/formcraft/internal/interfaces/http/handlers/testutil"
)

type mockSweeper struct {
	runs int
}

func (m *mockSweeper) RunOnce(ctx context.Context) {
	m.runs++
}

func TestDunningHandler_RunSweep(t *testing.T) {
	sweeper := &mockSweeper{}
	handler := NewDunningHandler(sweeper, testutil.NewMockLogger())

	c, w := testutil.NewTestContext(http.MethodPost, "/admin/dunning/sweep", nil)
	testutil.SetAuthContext(c, 1)

	handler.RunSweep(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, sweeper.runs)
}

func TestDunningHandler_RunSweep_Unauthenticated(t *testing.T) {
	sweeper := &mockSweeper{}
	handler := NewDunningHandler(sweeper, testutil.NewMockLogger())

	c, w := testutil.NewTestContext(http.MethodPost, "/admin/dunning/sweep", nil)

	handler.RunSweep(c)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Zero(t, sweeper.runs)
}
