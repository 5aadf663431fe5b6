package chores

import (
	"context"
	"log/slog"

	"github.com/macropower/chores/pkg/syncs"
)

type worker struct {
	crew    *Crew
	backlog *syncs.Backlog
	logger  *slog.Logger
	id      int
}

// run consumes chores until the backlog is closed and has nothing left for
// this worker. It returns the number of chores completed and the number
// taken but interrupted.
func (w *worker) run(ctx context.Context) (int, int) {
	w.logger.Debug("worker started")
	w.crew.publish(EventWorkerStarted{Worker: w.id})

	done, interrupted := 0, 0

	for {
		left, ok := w.next()
		if !ok {
			break
		}

		w.logger.Debug("took a chore", slog.Int("left", left))
		w.crew.publish(EventChoreTaken{Worker: w.id, Left: left})

		// Never hold the lock here, or the crew works one chore at a time.
		err := w.crew.sleep(ctx, w.crew.workDuration)
		if err != nil {
			w.logger.Warn("chore interrupted", slog.Any("err", err))

			interrupted++
		} else {
			done++
		}

		w.crew.publish(EventChoreDone{Worker: w.id, Err: err})
	}

	w.logger.Debug("worker stopped", slog.Int("done", done), slog.Int("interrupted", interrupted))
	w.crew.publish(EventWorkerStopped{Worker: w.id, Done: done})

	return done, interrupted
}

// next waits until there is a chore to take or the backlog is closed and
// empty. It reports false when the worker should stop.
func (w *worker) next() (int, bool) {
	w.backlog.Lock()
	defer w.backlog.Unlock()

	for w.backlog.PendingLocked() == 0 && !w.backlog.ClosedLocked() {
		w.logger.Debug("no chores, napping")
		w.crew.publish(EventWorkerNapping{Worker: w.id})

		w.backlog.Wait()

		w.logger.Debug("woke up")
		w.crew.publish(EventWorkerWoke{Worker: w.id})
	}

	if w.backlog.PendingLocked() == 0 {
		return 0, false
	}

	return w.backlog.TakeLocked(), true
}
