package sweeper

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	learningrepo "github.com/abhayporwals/taskyn/internal/data/repos/learning"
	userrepo "github.com/abhayporwals/taskyn/internal/data/repos/user"
	"github.com/abhayporwals/taskyn/internal/observability"
	"github.com/abhayporwals/taskyn/internal/platform/dbctx"
	"github.com/abhayporwals/taskyn/internal/platform/logger"
)

const (
	DefaultSchedule = "@every 15m"

	JobExpiredOTPs       = "expired_otps"
	JobOrphanAssignments = "orphan_assignments"
	jobTimeout           = 2 * time.Minute
)

// Sweeper runs periodic maintenance: clearing lapsed OTPs and deleting
// assignments whose track no longer exists.
type Sweeper struct {
	log            *logger.Logger
	metrics        *observability.Metrics
	userRepo       userrepo.UserRepo
	assignmentRepo learningrepo.AssignmentRepo
	schedule       string
	now            func() time.Time

	mu   sync.Mutex
	cron *cron.Cron
}

func New(log *logger.Logger, metrics *observability.Metrics, schedule string, userRepo userrepo.UserRepo, assignmentRepo learningrepo.AssignmentRepo) *Sweeper {
	schedule = strings.TrimSpace(schedule)
	if schedule == "" {
		schedule = DefaultSchedule
	}
	return &Sweeper{
		log:            log.With("component", "Sweeper"),
		metrics:        metrics,
		userRepo:       userRepo,
		assignmentRepo: assignmentRepo,
		schedule:       schedule,
		now:            time.Now,
	}
}

// Start schedules the sweep and returns once the scheduler is running.
// The scheduler stops when ctx is cancelled.
func (s *Sweeper) Start(ctx context.Context) error {
	cl := cronLogger{log: s.log}
	c := cron.New(cron.WithLogger(cl), cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)))
	if _, err := c.AddFunc(s.schedule, func() { s.RunOnce(ctx) }); err != nil {
		return err
	}

	s.mu.Lock()
	s.cron = c
	s.mu.Unlock()

	c.Start()
	s.log.Info("Sweeper started", "schedule", s.schedule)

	go func() {
		<-ctx.Done()
		s.Stop()
	}()
	return nil
}

// Stop halts scheduling and waits for a running sweep to finish.
func (s *Sweeper) Stop() {
	s.mu.Lock()
	c := s.cron
	s.cron = nil
	s.mu.Unlock()
	if c == nil {
		return
	}
	<-c.Stop().Done()
	s.log.Info("Sweeper stopped")
}

// RunOnce executes every job once. Job failures are logged and counted, never returned.
func (s *Sweeper) RunOnce(ctx context.Context) {
	s.run(ctx, JobExpiredOTPs, func(dbc dbctx.Context) (int64, error) {
		return s.userRepo.ClearExpiredOTPs(dbc, s.now())
	})
	s.run(ctx, JobOrphanAssignments, func(dbc dbctx.Context) (int64, error) {
		return s.assignmentRepo.DeleteOrphans(dbc)
	})
}

func (s *Sweeper) run(ctx context.Context, job string, fn func(dbctx.Context) (int64, error)) {
	if ctx.Err() != nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, jobTimeout)
	defer cancel()

	start := time.Now()
	rows, err := fn(dbctx.New(ctx))
	s.metrics.ObserveSweep(job, rows, err)
	if err != nil {
		s.log.Error("Sweep job failed", "job", job, "error", err)
		return
	}
	if rows > 0 {
		s.log.Info("Sweep job done", "job", job, "rows", rows, "duration_ms", time.Since(start).Milliseconds())
	}
}

// cronLogger adapts the service logger to cron.Logger.
type cronLogger struct {
	log *logger.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Error("cron: "+msg, append(keysAndValues, "error", err)...)
}
