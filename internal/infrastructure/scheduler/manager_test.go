package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/formcraft-io/formcraft/internal/shared/logger"
)

func TestValidateSchedule(t *testing.T) {
	assert.NoError(t, ValidateSchedule("0 3 * * *"))
	assert.NoError(t, ValidateSchedule("@hourly"))
	assert.Error(t, ValidateSchedule("every day"))
	assert.Error(t, ValidateSchedule("0 3 * *"))
}

func TestSchedulerManager_RegisterRejectsBadSpec(t *testing.T) {
	m := NewSchedulerManager(logger.NewNopLogger())
	err := m.RegisterJob("bad", "not a schedule", time.Second, BatchJobFunc(func(context.Context) (int, error) {
		return 0, nil
	}))
	assert.Error(t, err)
}

func TestSchedulerManager_RunNow(t *testing.T) {
	m := NewSchedulerManager(logger.NewNopLogger())
	var calls int32

	m.RunNow(context.Background(), "count", BatchJobFunc(func(context.Context) (int, error) {
		atomic.AddInt32(&calls, 1)
		return 3, nil
	}))
	m.RunNow(context.Background(), "fail", BatchJobFunc(func(context.Context) (int, error) {
		atomic.AddInt32(&calls, 1)
		return 0, errors.New("boom")
	}))

	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestSchedulerManager_RunsScheduledJob(t *testing.T) {
	m := NewSchedulerManager(logger.NewNopLogger())
	ran := make(chan struct{}, 1)

	require.NoError(t, m.RegisterJob("tick", "@every 1s", time.Second, BatchJobFunc(func(context.Context) (int, error) {
		select {
		case ran <- struct{}{}:
		default:
		}
		return 1, nil
	})))
	m.Start()
	m.Start()

	select {
	case <-ran:
	case <-time.After(3 * time.Second):
		t.Fatal("job did not run")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, m.Stop(ctx))
	require.NoError(t, m.Stop(ctx))
}

func TestSchedulerManager_PanickingJobIsRecovered(t *testing.T) {
	m := NewSchedulerManager(logger.NewNopLogger())
	var after int32

	require.NoError(t, m.RegisterJob("panic", "@every 1s", time.Second, BatchJobFunc(func(context.Context) (int, error) {
		panic("boom")
	})))
	require.NoError(t, m.RegisterJob("after", "@every 1s", time.Second, BatchJobFunc(func(context.Context) (int, error) {
		atomic.AddInt32(&after, 1)
		return 0, nil
	})))
	m.Start()

	assert.Eventually(t, func() bool { return atomic.LoadInt32(&after) > 0 }, 3*time.Second, 50*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, m.Stop(ctx))
}
