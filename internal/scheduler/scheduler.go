package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"

	"github.com/google/uuid"
)

// JobSpec describes one scheduled job.
type JobSpec struct {
	ID       string
	Schedule Schedule
	Run      func(ctx context.Context) error
}

// Event is delivered to listeners after every job run.
type Event struct {
	JobID    string
	RunID    string
	Start    time.Time
	Duration time.Duration
	Err      error
}

// Listener receives job events. Listeners run on the dispatch loop and
// should return quickly.
type Listener func(Event)

// JobInfo describes the state of a job.
type JobInfo struct {
	ID        string    `json:"id"`
	Next      time.Time `json:"next_run"`
	LastRun   time.Time `json:"last_run,omitempty"`
	LastError string    `json:"last_error,omitempty"`
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Scheduler) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithListener adds a listener notified after every job run.
func WithListener(l Listener) Option {
	return func(s *Scheduler) {
		s.listeners = append(s.listeners, l)
	}
}

// Scheduler dispatches jobs on their schedules.
type Scheduler struct {
	jobs      []JobSpec
	listeners []Listener
	logger    *slog.Logger

	mu    sync.Mutex
	state map[string]*JobInfo

	ctx     context.Context
	cancel  context.CancelFunc
	jobCtx  context.Context
	abort   context.CancelFunc
	wg      sync.WaitGroup
	started bool
}

// New creates a Scheduler for jobs. Job IDs must be unique.
func New(jobs []JobSpec, opts ...Option) (*Scheduler, error) {
	if len(jobs) == 0 {
		return nil, errNoJobs
	}

	state := make(map[string]*JobInfo, len(jobs))
	for _, job := range jobs {
		switch {
		case job.ID == "":
			return nil, errEmptyJobID
		case state[job.ID] != nil:
			return nil, fmt.Errorf("%w: %s", errDuplicateJob, job.ID)
		case job.Schedule == nil:
			return nil, fmt.Errorf("%w: %s", errNilSchedule, job.ID)
		case job.Run == nil:
			return nil, fmt.Errorf("%w: %s", errNilRun, job.ID)
		}
		state[job.ID] = &JobInfo{ID: job.ID}
	}

	s := &Scheduler{
		jobs:   jobs,
		logger: slog.Default(),
		state:  state,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.planAll(time.Now())
	return s, nil
}

// Jobs returns the jobs in registration order with their next run times.
func (s *Scheduler) Jobs() []JobInfo {
	s.mu.Lock()
	defer s.mu.Unlock()

	infos := make([]JobInfo, 0, len(s.jobs))
	for _, job := range s.jobs {
		infos = append(infos, *s.state[job.ID])
	}
	return infos
}

// Start begins the dispatch loop.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return errStarted
	}
	s.started = true
	s.mu.Unlock()

	s.ctx, s.cancel = context.WithCancel(ctx)
	// Jobs outlive the stop signal; only Stop's deadline aborts them.
	s.jobCtx, s.abort = context.WithCancel(context.WithoutCancel(ctx))
	s.planAll(time.Now())

	s.wg.Add(1)
	go s.run()

	for _, info := range s.Jobs() {
		s.logger.Info("job scheduled", "job", info.ID, "next_run", info.Next)
	}
	return nil
}

// Stop prevents new triggers and waits for a running job to finish. If ctx
// expires first, the running job's context is cancelled and ctx.Err() is
// returned.
func (s *Scheduler) Stop(ctx context.Context) error {
	if s.cancel == nil {
		return nil
	}
	s.cancel()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.abort()
		s.logger.Info("scheduler stopped")
		return nil
	case <-ctx.Done():
		s.abort()
		s.logger.Warn("scheduler stop timed out, running job aborted", "error", ctx.Err())
		return ctx.Err()
	}
}

// Run starts the scheduler and blocks until ctx is cancelled and any
// running job has returned.
func (s *Scheduler) Run(ctx context.Context) error {
	if err := s.Start(ctx); err != nil {
		return err
	}
	<-ctx.Done()
	return s.Stop(context.Background())
}

func (s *Scheduler) run() {
	defer s.wg.Done()

	for {
		job, at := s.nextDue()

		timer := time.NewTimer(time.Until(at))
		select {
		case <-s.ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
		if s.ctx.Err() != nil {
			return
		}

		s.execute(job)
		s.plan(job, time.Now())
	}
}

// nextDue returns the job with the earliest next run. Ties go to the job
// registered first.
func (s *Scheduler) nextDue() (JobSpec, time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	best := s.jobs[0]
	at := s.state[best.ID].Next
	for _, job := range s.jobs[1:] {
		if next := s.state[job.ID].Next; next.Before(at) {
			best, at = job, next
		}
	}
	return best, at
}

func (s *Scheduler) planAll(now time.Time) {
	for _, job := range s.jobs {
		s.plan(job, now)
	}
}

func (s *Scheduler) plan(job JobSpec, now time.Time) {
	next := job.Schedule.Next(now)

	s.mu.Lock()
	s.state[job.ID].Next = next
	s.mu.Unlock()
}

func (s *Scheduler) execute(job JobSpec) {
	ev := Event{
		JobID: job.ID,
		RunID: uuid.NewString(),
		Start: time.Now(),
	}
	logger := s.logger.With("job", job.ID, "run_id", ev.RunID)
	logger.Info("job started")

	ev.Err = invoke(s.jobCtx, job)
	ev.Duration = time.Since(ev.Start)

	if ev.Err != nil {
		logger.Error("job failed", "duration", ev.Duration, "error", ev.Err)
	} else {
		logger.Info("job finished", "duration", ev.Duration)
	}

	s.mu.Lock()
	info := s.state[job.ID]
	info.LastRun = ev.Start
	info.LastError = ""
	if ev.Err != nil {
		info.LastError = ev.Err.Error()
	}
	s.mu.Unlock()

	for _, l := range s.listeners {
		s.notify(l, ev)
	}
}

func invoke(ctx context.Context, job JobSpec) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &PanicError{Value: r, Stack: debug.Stack()}
		}
	}()
	return job.Run(ctx)
}

func (s *Scheduler) notify(l Listener, ev Event) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("listener panicked", "job", ev.JobID, "run_id", ev.RunID, "panic", r)
		}
	}()
	l(ev)
}
