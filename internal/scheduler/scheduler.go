package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Job is the unit of scheduled work, normally a pipeline run.
type Job func(ctx context.Context) error

// Scheduler runs a job on a cron expression evaluated in UTC.
type Scheduler struct {
	cron   *cron.Cron
	ctx    context.Context
	cancel context.CancelFunc
	job    Job
	spec   string
}

func New(spec string, job Job) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())

	return &Scheduler{
		cron:   cron.New(cron.WithLocation(time.UTC)),
		ctx:    ctx,
		cancel: cancel,
		job:    job,
		spec:   spec,
	}
}

// Start registers the job and starts the cron loop. An empty spec or a nil
// job leaves the scheduler idle.
func (s *Scheduler) Start() error {
	if s.spec == "" || s.job == nil {
		logrus.Info("⚠️ Pipeline schedule not set, scheduler idle")
		return nil
	}

	_, err := s.cron.AddFunc(s.spec, s.trigger)
	if err != nil {
		return fmt.Errorf("invalid schedule %q: %w", s.spec, err)
	}

	s.cron.Start()
	logrus.WithField("schedule", s.spec).Info("📅 Scheduler started")
	return nil
}

func (s *Scheduler) trigger() {
	logrus.WithField("schedule", s.spec).Info("🕘 Scheduled pipeline run triggered")
	if err := s.job(s.ctx); err != nil {
		logrus.WithError(err).Error("❌ Scheduled pipeline run failed")
	}
}

// Stop cancels any running job, then waits for it to return.
func (s *Scheduler) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	if s.cron != nil {
		ctx := s.cron.Stop()
		<-ctx.Done()
	}
	logrus.Info("📅 Scheduler stopped")
}

func (s *Scheduler) IsRunning() bool {
	return s.cron != nil && len(s.cron.Entries()) > 0
}
