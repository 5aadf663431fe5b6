package chores

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/macropower/chores/pkg/syncs"
)

// Crew is a group of workers fed by a single dispatcher. A Crew can be run
// more than once; every run gets its own [syncs.Backlog].
type Crew struct {
	logger       *slog.Logger
	sleep        Sleeper
	subscribers  []func(any)
	workers      int
	workDuration time.Duration
	policy       ShutdownPolicy
	mu           sync.RWMutex
}

// Summary describes a finished run.
//
// Every submitted chore is either consumed, interrupted or discarded.
type Summary struct {
	RunID       string
	PerWorker   []int
	Submitted   int
	Discarded   int
	Interrupted int
	Elapsed     time.Duration
}

// Consumed returns the number of chores completed across all workers.
// Chores that were taken but interrupted are not counted.
func (s *Summary) Consumed() int {
	total := 0
	for _, n := range s.PerWorker {
		total += n
	}

	return total
}

// NewCrew creates a new [Crew].
func NewCrew(opts ...CrewOpt) *Crew {
	c := &Crew{
		workers:      DefaultWorkers,
		workDuration: DefaultWorkDuration,
		policy:       ShutdownDrain,
		sleep:        SleepContext,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Workers returns the crew size.
func (c *Crew) Workers() int {
	return c.workers
}

// Subscribe registers f to receive every event published by the crew.
//
// Subscribers are called synchronously from the worker and dispatcher
// goroutines, sometimes while the backlog lock is held. They must return
// quickly and must not call back into the crew.
func (c *Crew) Subscribe(f func(any)) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.subscribers = append(c.subscribers, f)
}

func (c *Crew) publish(evt any) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, f := range c.subscribers {
		f(evt)
	}
}

// Run starts the workers and the dispatcher, and returns once the
// dispatcher has requested shutdown and every worker has been joined.
//
// Canceling ctx requests an immediate shutdown regardless of the configured
// policy; the context error is returned along with the summary.
func (c *Crew) Run(ctx context.Context, src QuantitySource) (*Summary, error) {
	runID := uuid.NewString()

	logger := c.logger
	if logger == nil {
		logger = slog.Default()
	}

	logger = logger.With(slog.String("run_id", runID))

	backlog := syncs.NewBacklog()
	done := make([]int, c.workers)
	interrupted := make([]int, c.workers)
	start := time.Now()

	logger.Debug("starting crew",
		slog.Int("workers", c.workers),
		slog.Duration("work_duration", c.workDuration),
		slog.String("shutdown", c.policy.String()),
	)

	// Workers are not tied to a group context: they only stop by observing
	// the closed backlog, which the dispatcher guarantees on every return.
	var g errgroup.Group

	for i := range c.workers {
		w := &worker{
			id:      i + 1,
			crew:    c,
			backlog: backlog,
			logger:  logger.With(slog.Int("worker", i+1)),
		}

		g.Go(func() error {
			done[i], interrupted[i] = w.run(ctx)

			return nil
		})
	}

	var res dispatchResult

	g.Go(func() error {
		d := &dispatcher{
			crew:    c,
			backlog: backlog,
			logger:  logger.With(slog.String("role", "dispatcher")),
		}

		var err error
		res, err = d.run(ctx, src)

		return err
	})

	err := g.Wait()

	summary := &Summary{
		RunID:     runID,
		PerWorker: done,
		Submitted: res.submitted,
		Discarded: res.discarded,
		Elapsed:   time.Since(start),
	}
	for _, n := range interrupted {
		summary.Interrupted += n
	}

	logger.Debug("crew finished",
		slog.Int("submitted", summary.Submitted),
		slog.Int("consumed", summary.Consumed()),
		slog.Int("discarded", summary.Discarded),
		slog.Int("interrupted", summary.Interrupted),
		slog.Duration("elapsed", summary.Elapsed),
	)

	c.publish(EventDone{Err: err, Summary: summary})

	return summary, err
}
