// Package binday runs one collection check: fetch the council page, extract the
// next collection, decide what the indicator should show and publish it.
package binday

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ibs-source/bindicator/internal/collection"
	"github.com/ibs-source/bindicator/internal/config"
	"github.com/ibs-source/bindicator/internal/decision"
	"github.com/ibs-source/bindicator/internal/indicator"
	"github.com/ibs-source/bindicator/internal/lock"
	"github.com/ibs-source/bindicator/internal/log"
	"github.com/ibs-source/bindicator/internal/mqtt"
)

const releaseTimeout = 5 * time.Second

// Fetcher returns the raw collection page.
type Fetcher interface {
	Fetch(ctx context.Context) (string, error)
}

// Extractor turns the page into a collection record.
type Extractor interface {
	Extract(html string) (collection.Record, error)
}

// Locker guards a run against a concurrent one elsewhere.
type Locker interface {
	Acquire(ctx context.Context) (lock.ReleaseFunc, error)
}

// Outcome says how a run ended.
type Outcome int

const (
	// OutcomeFailed means a step returned an error.
	OutcomeFailed Outcome = iota
	// OutcomePublished means a command reached the broker.
	OutcomePublished
	// OutcomeNoChange means the decision produced no command.
	OutcomeNoChange
	// OutcomeDryRun means a command was produced but not sent.
	OutcomeDryRun
	// OutcomeSkipped means another run holds the lock.
	OutcomeSkipped
)

func (o Outcome) String() string {
	switch o {
	case OutcomePublished:
		return "published"
	case OutcomeNoChange:
		return "no_change"
	case OutcomeDryRun:
		return "dry_run"
	case OutcomeSkipped:
		return "skipped"
	default:
		return "failed"
	}
}

// Result describes a finished run. Record and Command are only set when the
// run got that far.
type Result struct {
	Outcome Outcome
	Record  *collection.Record
	Command *indicator.Command
	Topic   string
}

// Runner wires the pipeline together. Runs share no state with each other.
type Runner struct {
	fetcher    Fetcher
	extractor  Extractor
	publisher  mqtt.Publisher
	locker     Locker
	now        func() time.Time
	location   *time.Location
	runTimeout time.Duration
	dryRun     bool
	log        *log.Logger
}

// Option customizes a Runner.
type Option func(*Runner)

// WithLocker guards every run with l.
func WithLocker(l Locker) Option {
	return func(r *Runner) { r.locker = l }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(r *Runner) { r.now = now }
}

// New creates a runner. cfg supplies the timezone, run timeout and dry-run flag.
func New(
	fetcher Fetcher,
	extractor Extractor,
	publisher mqtt.Publisher,
	cfg *config.ScheduleConfig,
	logger *log.Logger,
	opts ...Option,
) (*Runner, error) {
	location, err := cfg.Location()
	if err != nil {
		return nil, fmt.Errorf("failed to load timezone %q: %w", cfg.Timezone, err)
	}
	if logger == nil {
		logger = log.Discard()
	}

	r := &Runner{
		fetcher:    fetcher,
		extractor:  extractor,
		publisher:  publisher,
		now:        time.Now,
		location:   location,
		runTimeout: cfg.RunTimeout,
		dryRun:     cfg.DryRun,
		log:        logger,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Run executes one invocation bounded by the run timeout. A held lock is not an error.
func (r *Runner) Run(ctx context.Context) (Result, error) {
	if r.runTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.runTimeout)
		defer cancel()
	}

	if r.locker != nil {
		release, err := r.locker.Acquire(ctx)
		if errors.Is(err, lock.ErrNotAcquired) {
			r.log.Info("Run skipped: %v", err)
			return Result{Outcome: OutcomeSkipped}, nil
		}
		if err != nil {
			return Result{Outcome: OutcomeFailed}, err
		}
		defer r.release(ctx, release)
	}

	return r.run(ctx)
}

func (r *Runner) run(ctx context.Context) (Result, error) {
	result := Result{Outcome: OutcomeFailed}
	now := r.now().In(r.location)

	html, err := r.fetcher.Fetch(ctx)
	if err != nil {
		return result, fmt.Errorf("fetch collection page: %w", err)
	}

	record, err := r.extractor.Extract(html)
	if err != nil {
		return result, fmt.Errorf("extract collection: %w", err)
	}
	result.Record = &record

	fields := logrus.Fields{
		"collection_date": record.Date.Format(time.DateOnly),
		"colour":          record.Colour.String(),
		"days_until":      decision.DaysUntil(record.Date, now),
	}
	r.log.InfoWithFields(fields, "Next collection: %s", record)

	cmd := decision.Decide(record, now)
	if cmd == nil {
		result.Outcome = OutcomeNoChange
		r.log.InfoWithFields(fields, "No indicator change")
		return result, nil
	}
	result.Command = cmd

	topic, err := cmd.Endpoint()
	if err != nil {
		return result, err
	}
	payload, err := cmd.Marshal()
	if err != nil {
		return result, err
	}
	result.Topic = topic

	fields["indicator"] = int(cmd.Indicator)
	fields["topic"] = topic
	fields["blink_ms"] = cmd.BlinkMs

	if r.dryRun {
		result.Outcome = OutcomeDryRun
		r.log.InfoWithFields(fields, "Dry run, not publishing %s", payload)
		return result, nil
	}

	if err := r.publisher.Publish(ctx, topic, payload); err != nil {
		return result, err
	}

	result.Outcome = OutcomePublished
	r.log.InfoWithFields(fields, "Indicator updated")
	return result, nil
}

// release runs even after ctx ended; its failure is only logged.
func (r *Runner) release(ctx context.Context, release lock.ReleaseFunc) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), releaseTimeout)
	defer cancel()

	if err := release(ctx); err != nil {
		r.log.Warn("Failed to release run lock: %v", err)
	}
}
