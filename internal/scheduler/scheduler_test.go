package scheduler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// every fires at a fixed interval.
type every time.Duration

func (e every) Next(t time.Time) time.Time {
	return t.Add(time.Duration(e))
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestDaily(t *testing.T) {
	jakarta, err := time.LoadLocation("Asia/Jakarta")
	require.NoError(t, err)

	sched, err := Daily(3, 0, jakarta)
	require.NoError(t, err)

	from := time.Date(2026, 3, 1, 2, 0, 0, 0, jakarta)
	assert.True(t, sched.Next(from).Equal(time.Date(2026, 3, 1, 3, 0, 0, 0, jakarta)))

	from = time.Date(2026, 3, 1, 3, 0, 0, 0, jakarta)
	assert.True(t, sched.Next(from).Equal(time.Date(2026, 3, 2, 3, 0, 0, 0, jakarta)))

	// 20:00 UTC is 03:00 the next day in Jakarta.
	from = time.Date(2026, 3, 1, 19, 30, 0, 0, time.UTC)
	assert.True(t, sched.Next(from).Equal(time.Date(2026, 3, 1, 20, 0, 0, 0, time.UTC)))
}

func TestDaily_Invalid(t *testing.T) {
	_, err := Daily(24, 0, time.UTC)
	assert.Error(t, err)

	_, err = Daily(6, 60, time.UTC)
	assert.Error(t, err)
}

func TestCron(t *testing.T) {
	jakarta, err := time.LoadLocation("Asia/Jakarta")
	require.NoError(t, err)

	sched, err := Cron("30 */6 * * *", jakarta)
	require.NoError(t, err)

	from := time.Date(2026, 3, 1, 6, 45, 0, 0, jakarta)
	assert.True(t, sched.Next(from).Equal(time.Date(2026, 3, 1, 12, 30, 0, 0, jakarta)))

	// An explicit zone wins over loc.
	sched, err = Cron("CRON_TZ=UTC 0 1 * * *", jakarta)
	require.NoError(t, err)
	assert.True(t, sched.Next(from).Equal(time.Date(2026, 3, 1, 1, 0, 0, 0, time.UTC)))

	_, err = Cron("every morning", jakarta)
	assert.Error(t, err)
}

func TestNew_Validation(t *testing.T) {
	run := func(context.Context) error { return nil }

	tests := []struct {
		name string
		jobs []JobSpec
		want error
	}{
		{"no jobs", nil, errNoJobs},
		{"empty id", []JobSpec{{Schedule: every(time.Second), Run: run}}, errEmptyJobID},
		{"duplicate", []JobSpec{{"a", every(time.Second), run}, {"a", every(time.Second), run}}, errDuplicateJob},
		{"nil schedule", []JobSpec{{ID: "a", Run: run}}, errNilSchedule},
		{"nil run", []JobSpec{{ID: "a", Schedule: every(time.Second)}}, errNilRun},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.jobs)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestJobs(t *testing.T) {
	run := func(context.Context) error { return nil }
	s, err := New([]JobSpec{
		{ID: "daily_fuel_price_fetch", Schedule: every(time.Hour), Run: run},
		{ID: "daily_gold_price_fetch", Schedule: every(2 * time.Hour), Run: run},
	}, WithLogger(quietLogger()))
	require.NoError(t, err)

	jobs := s.Jobs()
	require.Len(t, jobs, 2)
	assert.Equal(t, "daily_fuel_price_fetch", jobs[0].ID)
	assert.Equal(t, "daily_gold_price_fetch", jobs[1].ID)
	assert.True(t, jobs[0].Next.Before(jobs[1].Next))
	assert.True(t, jobs[0].LastRun.IsZero())
}

func TestScheduler_FailingJobDoesNotBlockOthers(t *testing.T) {
	var healthy atomic.Int32
	events := make(chan Event, 64)

	s, err := New([]JobSpec{
		{ID: "broken", Schedule: every(10 * time.Millisecond), Run: func(context.Context) error {
			return errors.New("source down")
		}},
		{ID: "panicky", Schedule: every(10 * time.Millisecond), Run: func(context.Context) error {
			panic("nil map")
		}},
		{ID: "healthy", Schedule: every(10 * time.Millisecond), Run: func(context.Context) error {
			healthy.Add(1)
			return nil
		}},
	},
		WithLogger(quietLogger()),
		WithListener(func(ev Event) {
			select {
			case events <- ev:
			default:
			}
		}))
	require.NoError(t, err)

	require.NoError(t, s.Start(context.Background()))
	require.Eventually(t, func() bool { return healthy.Load() >= 2 }, 2*time.Second, 5*time.Millisecond)
	require.NoError(t, s.Stop(context.Background()))

	seen := map[string]Event{}
	for len(events) > 0 {
		ev := <-events
		seen[ev.JobID] = ev
		assert.NotEmpty(t, ev.RunID)
	}

	require.Contains(t, seen, "broken")
	assert.EqualError(t, seen["broken"].Err, "source down")

	require.Contains(t, seen, "panicky")
	var panicErr *PanicError
	assert.ErrorAs(t, seen["panicky"].Err, &panicErr)

	require.Contains(t, seen, "healthy")
	assert.NoError(t, seen["healthy"].Err)

	for _, info := range s.Jobs() {
		assert.False(t, info.LastRun.IsZero(), info.ID)
	}
}

func TestScheduler_RunsOneJobAtATime(t *testing.T) {
	var running, maxRunning, runs atomic.Int32
	body := func(context.Context) error {
		n := running.Add(1)
		for {
			m := maxRunning.Load()
			if n <= m || maxRunning.CompareAndSwap(m, n) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		running.Add(-1)
		runs.Add(1)
		return nil
	}

	s, err := New([]JobSpec{
		{ID: "a", Schedule: every(time.Millisecond), Run: body},
		{ID: "b", Schedule: every(time.Millisecond), Run: body},
	}, WithLogger(quietLogger()))
	require.NoError(t, err)

	require.NoError(t, s.Start(context.Background()))
	require.Eventually(t, func() bool { return runs.Load() >= 6 }, 2*time.Second, 5*time.Millisecond)
	require.NoError(t, s.Stop(context.Background()))

	assert.Equal(t, int32(1), maxRunning.Load())
}

func TestScheduler_StopWaitsForRunningJob(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	var jobCtxErr error
	var once sync.Once

	s, err := New([]JobSpec{
		{ID: "slow", Schedule: every(time.Millisecond), Run: func(ctx context.Context) error {
			once.Do(func() { close(started) })
			<-release
			jobCtxErr = ctx.Err()
			return nil
		}},
	}, WithLogger(quietLogger()))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, s.Start(ctx))
	<-started

	// Cancelling the parent context must not reach the running job.
	cancel()
	go func() {
		time.Sleep(20 * time.Millisecond)
		close(release)
	}()

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer stopCancel()
	require.NoError(t, s.Stop(stopCtx))
	assert.NoError(t, jobCtxErr)
}

func TestScheduler_StopDeadlineAbortsJob(t *testing.T) {
	started := make(chan struct{})
	aborted := make(chan error, 1)
	var once sync.Once

	s, err := New([]JobSpec{
		{ID: "stuck", Schedule: every(time.Millisecond), Run: func(ctx context.Context) error {
			once.Do(func() { close(started) })
			<-ctx.Done()
			aborted <- ctx.Err()
			return ctx.Err()
		}},
	}, WithLogger(quietLogger()))
	require.NoError(t, err)

	require.NoError(t, s.Start(context.Background()))
	<-started

	stopCtx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err = s.Stop(stopCtx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	select {
	case err := <-aborted:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("running job was not aborted")
	}
}

func TestScheduler_StartTwice(t *testing.T) {
	s, err := New([]JobSpec{
		{ID: "a", Schedule: every(time.Hour), Run: func(context.Context) error { return nil }},
	}, WithLogger(quietLogger()))
	require.NoError(t, err)

	require.NoError(t, s.Start(context.Background()))
	assert.ErrorIs(t, s.Start(context.Background()), errStarted)
	require.NoError(t, s.Stop(context.Background()))
}
