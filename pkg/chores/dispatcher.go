package chores

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"strconv"

	"github.com/macropower/chores/pkg/syncs"
)

var (
	// ErrInput indicates the quantity source failed.
	ErrInput = errors.New("read chores")

	// ErrInterrupted indicates the run was canceled before the dispatcher
	// was asked to shut down.
	ErrInterrupted = errors.New("interrupted")
)

type dispatcher struct {
	crew    *Crew
	backlog *syncs.Backlog
	logger  *slog.Logger
}

type dispatchResult struct {
	submitted int
	discarded int
}

// run reads quantities until a negative one arrives, the source ends or ctx
// is canceled. The backlog is closed on every return path, so workers are
// never left waiting.
func (d *dispatcher) run(ctx context.Context, src QuantitySource) (dispatchResult, error) {
	var res dispatchResult

	for {
		n, err := src.Next(ctx)

		var invalid *InvalidInputError

		switch {
		case errors.As(err, &invalid):
			d.logger.Warn("skipping invalid quantity", slog.String("input", invalid.Input))
			d.crew.publish(EventInvalidInput{Input: invalid.Input, Err: err})

			continue

		case errors.Is(err, io.EOF):
			d.logger.Debug("end of input")
			res.discarded = d.shutdown(d.crew.policy == ShutdownImmediate)

			return res, nil

		case ctx.Err() != nil:
			res.discarded = d.shutdown(true)

			return res, fmt.Errorf("%w: %w", ErrInterrupted, ctx.Err())

		case err != nil:
			res.discarded = d.shutdown(true)

			return res, fmt.Errorf("%w: %w", ErrInput, err)
		}

		if n < 0 {
			res.discarded = d.shutdown(d.crew.policy == ShutdownImmediate)

			return res, nil
		}

		// The running total must stay representable as well as the backlog.
		if n > math.MaxInt-res.submitted {
			d.reject(n, fmt.Errorf("send %d chores: %w", n, syncs.ErrTooMuchWork))

			continue
		}

		pending, err := d.send(n)
		if errors.Is(err, syncs.ErrTooMuchWork) {
			d.reject(n, err)

			continue
		}

		if err != nil {
			res.discarded = d.shutdown(true)

			return res, err
		}

		res.submitted += n

		d.logger.Debug("sent chores", slog.Int("count", n), slog.Int("pending", pending))
	}
}

// reject skips a quantity that parsed but could not be accepted. The run
// continues, the same as for unparsable input.
func (d *dispatcher) reject(n int, err error) {
	d.logger.Warn("skipping quantity", slog.Int("count", n), slog.Any("err", err))
	d.crew.publish(EventInvalidInput{Input: strconv.Itoa(n), Err: err})
}

func (d *dispatcher) send(n int) (int, error) {
	d.backlog.Lock()
	defer d.backlog.Unlock()

	pending, err := d.backlog.AddLocked(n)
	if err != nil {
		return pending, fmt.Errorf("send %d chores: %w", n, err)
	}

	// Published under the lock so it is ordered before any take.
	d.crew.publish(EventChoresSent{Count: n, Pending: pending})

	// Wake every waiter; several chores may have arrived at once.
	if pending > 0 {
		d.backlog.Broadcast()
	}

	return pending, nil
}

// shutdown closes the backlog and wakes every waiter, even when nothing is
// pending, so that waiting workers observe the close and exit.
func (d *dispatcher) shutdown(discard bool) int {
	d.backlog.Lock()
	defer d.backlog.Unlock()

	dropped := d.backlog.CloseLocked(discard)

	d.logger.Debug("shutdown requested",
		slog.Bool("discard", discard),
		slog.Int("discarded", dropped),
	)
	d.crew.publish(EventShutdown{Discarded: dropped})

	d.backlog.Broadcast()

	return dropped
}
