package chores

import (
	"errors"
	"fmt"

	"github.com/macropower/chores/pkg/syncs"
)

type (
	// Sent when a worker goroutine has started.
	EventWorkerStarted struct {
		Worker int
	}

	// Sent when a worker found nothing to do and is about to wait.
	EventWorkerNapping struct {
		Worker int
	}

	// Sent each time a worker returns from waiting, whether or not there is
	// work for it.
	EventWorkerWoke struct {
		Worker int
	}

	// Sent when a worker took a chore. Left is the pending count after the
	// take.
	EventChoreTaken struct {
		Worker int
		Left   int
	}

	// Sent when a worker finished a chore. Err is set if the work was
	// interrupted.
	EventChoreDone struct {
		Err    error
		Worker int
	}

	// Sent when a worker observed shutdown and exited its loop. Done counts
	// completed chores only.
	EventWorkerStopped struct {
		Worker int
		Done   int
	}

	// Sent when the dispatcher added chores to the backlog.
	EventChoresSent struct {
		Count   int
		Pending int
	}

	// Sent when the dispatcher requested shutdown. Discarded is the number
	// of chores dropped from the backlog.
	EventShutdown struct {
		Discarded int
	}

	// Sent when a quantity could not be parsed, or could not be added to the
	// backlog, and was skipped.
	EventInvalidInput struct {
		Err   error
		Input string
	}

	// Sent once every worker has been joined.
	EventDone struct {
		Err     error
		Summary *Summary
	}
)

// Message describes why the input was skipped.
func (e EventInvalidInput) Message() string {
	if errors.Is(e.Err, syncs.ErrTooMuchWork) {
		return fmt.Sprintf("%s is too many chores, try again", e.Input)
	}

	return fmt.Sprintf("%q is not a number, try again", e.Input)
}
