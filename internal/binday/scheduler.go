package binday

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/ibs-source/bindicator/internal/config"
	"github.com/ibs-source/bindicator/internal/log"
)

// Job is one run of the pipeline.
type Job interface {
	Run(ctx context.Context) (Result, error)
}

// Ensure Runner implements Job
var _ Job = (*Runner)(nil)

// Scheduler triggers a Job on a cron schedule. A trigger that arrives while the
// previous run is still going is dropped.
type Scheduler struct {
	cron     *cron.Cron
	schedule cron.Schedule
	location *time.Location
	job      cron.Job
	runner   Job
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	log      *log.Logger
}

// NewScheduler parses the schedule in cfg and prepares, but does not start, the cron loop.
func NewScheduler(runner Job, cfg *config.ScheduleConfig, logger *log.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = log.Discard()
	}
	location, err := cfg.Location()
	if err != nil {
		return nil, fmt.Errorf("failed to load timezone %q: %w", cfg.Timezone, err)
	}
	schedule, err := config.CronParser.Parse(cfg.Cron)
	if err != nil {
		return nil, fmt.Errorf("invalid cron expression %q: %w", cfg.Cron, err)
	}

	cl := cronLogger{log: logger}
	s := &Scheduler{
		cron: cron.New(
			cron.WithLocation(location),
			cron.WithLogger(cl),
		),
		schedule: schedule,
		location: location,
		runner:   runner,
		log:      logger,
	}
	s.ctx, s.cancel = context.WithCancel(context.Background())
	s.job = cron.NewChain(
		cron.Recover(cl),
		cron.SkipIfStillRunning(cl),
	).Then(cron.FuncJob(s.execute))

	s.cron.Schedule(schedule, s.job)
	return s, nil
}

// Start begins firing on schedule.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info("Scheduler started, next run at %s", s.Next().Format(time.RFC3339))
}

// Trigger runs the job now in the background, subject to the same overlap rule as scheduled runs.
func (s *Scheduler) Trigger() {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.job.Run()
	}()
}

// Next returns the next scheduled fire time.
func (s *Scheduler) Next() time.Time {
	return s.schedule.Next(time.Now().In(s.location))
}

// Stop stops scheduling and waits for a running job. If ctx ends first the
// job's context is cancelled and ctx's error is returned.
func (s *Scheduler) Stop(ctx context.Context) error {
	defer s.cancel()

	done := make(chan struct{})
	go func() {
		<-s.cron.Stop().Done()
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Scheduler) execute() {
	start := time.Now()
	result, err := s.runner.Run(s.ctx)

	fields := logrus.Fields{
		"outcome":  result.Outcome.String(),
		"duration": time.Since(start).String(),
	}
	if err != nil {
		s.log.ErrorWithFields(fields, "Run failed: %v", err)
	} else {
		s.log.InfoWithFields(fields, "Run finished")
	}
	s.log.Info("Next run at %s", s.Next().Format(time.RFC3339))
}
