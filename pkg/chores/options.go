package chores

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

const (
	// DefaultWorkers is the crew size used when none is configured.
	DefaultWorkers = 2

	// DefaultWorkDuration is how long a single chore takes by default.
	DefaultWorkDuration = 2 * time.Second
)

// ErrInvalidShutdownPolicy is returned by [ParseShutdownPolicy].
var ErrInvalidShutdownPolicy = errors.New("invalid shutdown policy")

// ShutdownPolicy decides what happens to outstanding chores when shutdown
// is requested.
type ShutdownPolicy int

const (
	// ShutdownDrain lets workers finish every outstanding chore before they
	// stop. Workers that are already waiting stop right away.
	ShutdownDrain ShutdownPolicy = iota

	// ShutdownImmediate drops outstanding chores, so every worker stops at
	// its next check without taking more work.
	ShutdownImmediate
)

func (p ShutdownPolicy) String() string {
	switch p {
	case ShutdownDrain:
		return "drain"
	case ShutdownImmediate:
		return "immediate"
	}

	return fmt.Sprintf("ShutdownPolicy(%d)", int(p))
}

// ParseShutdownPolicy parses "drain" or "immediate".
func ParseShutdownPolicy(s string) (ShutdownPolicy, error) {
	switch strings.ToLower(s) {
	case "drain", "":
		return ShutdownDrain, nil
	case "immediate":
		return ShutdownImmediate, nil
	}

	return ShutdownDrain, fmt.Errorf("%w: %q", ErrInvalidShutdownPolicy, s)
}

// Sleeper blocks for d, returning early with an error if ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

// SleepContext is the default [Sleeper], backed by a [time.Timer].
func SleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// CrewOpt configures a [Crew].
type CrewOpt func(*Crew)

// WithWorkers sets the number of worker goroutines. Values below one are
// ignored.
func WithWorkers(n int) CrewOpt {
	return func(c *Crew) {
		if n > 0 {
			c.workers = n
		}
	}
}

// WithWorkDuration sets how long each chore takes.
func WithWorkDuration(d time.Duration) CrewOpt {
	return func(c *Crew) {
		c.workDuration = d
	}
}

// WithShutdownPolicy sets the [ShutdownPolicy].
func WithShutdownPolicy(p ShutdownPolicy) CrewOpt {
	return func(c *Crew) {
		c.policy = p
	}
}

// WithSleeper replaces the function used to simulate work.
func WithSleeper(s Sleeper) CrewOpt {
	return func(c *Crew) {
		if s != nil {
			c.sleep = s
		}
	}
}

// WithLogger sets the logger. By default the [slog.Default] logger at the
// start of each run is used.
func WithLogger(l *slog.Logger) CrewOpt {
	return func(c *Crew) {
		if l != nil {
			c.logger = l
		}
	}
}
