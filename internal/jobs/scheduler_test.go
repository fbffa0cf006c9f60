package jobs

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScheduler_RegisterRejectsBadSchedule(t *testing.T) {
	s := NewScheduler(nil)
	err := s.Register("not a schedule", TaskFunc{TaskName: "bad", Fn: func(context.Context) error { return nil }})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad")
}

func TestScheduler_RunsTask(t *testing.T) {
	s := NewScheduler(nil)
	var runs atomic.Int32
	require.NoError(t, s.Register("* * * * * *", TaskFunc{TaskName: "tick", Fn: func(context.Context) error {
		runs.Add(1)
		return nil
	}}))

	s.Start()
	assert.Eventually(t, func() bool { return runs.Load() > 0 }, 3*time.Second, 50*time.Millisecond)
	require.NoError(t, s.Shutdown())
}

func TestScheduler_RunNowSurvivesPanicAndError(t *testing.T) {
	s := NewScheduler(nil)

	assert.NotPanics(t, func() {
		s.RunNow(TaskFunc{TaskName: "fails", Fn: func(context.Context) error { return errors.New("boom") }})
	})

	var called bool
	s.RunNow(TaskFunc{TaskName: "ok", Fn: func(context.Context) error {
		called = true
		return nil
	}})
	assert.True(t, called)
}

func TestScheduler_StopCancelsTaskContext(t *testing.T) {
	s := NewScheduler(nil)
	started := make(chan struct{}, 1)
	finished := make(chan error, 16)
	require.NoError(t, s.Register("* * * * * *", TaskFunc{TaskName: "blocking", Fn: func(ctx context.Context) error {
		select {
		case started <- struct{}{}:
		default:
		}
		<-ctx.Done()
		finished <- ctx.Err()
		return ctx.Err()
	}}))

	s.Start()
	select {
	case <-started:
	case <-time.After(3 * time.Second):
		t.Fatal("task never started")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, s.Stop(ctx))
	assert.ErrorIs(t, <-finished, context.Canceled)
}
