package chores

import (
	"fmt"
	"io"
	"sync"
	"time"
)

// Reporter renders crew events as human readable lines. Register
// [Reporter.Report] with [Crew.Subscribe].
type Reporter struct {
	w   io.Writer
	mu  sync.Mutex
	err error
}

// NewReporter creates a [Reporter] writing to w.
func NewReporter(w io.Writer) *Reporter {
	return &Reporter{w: w}
}

// Err returns the first write error, if any.
func (r *Reporter) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.err
}

// Write writes p to the underlying writer, serialized with event output.
// Use the Reporter as the prompt writer of a [LineSource] that shares the
// same output.
func (r *Reporter) Write(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.w.Write(p)
}

// Report writes the lines for a single event. Unknown events are ignored.
func (r *Reporter) Report(evt any) {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch e := evt.(type) {
	case EventWorkerStarted:
		r.printf("[%d] Hi, I do chores!\n", e.Worker)

	case EventWorkerNapping:
		r.printf("[%d] No chores, Napping...\n", e.Worker)

	case EventWorkerWoke:
		r.printf("[%d] Waking up from nap!\n", e.Worker)

	case EventChoreTaken:
		r.printf("[%d] %d chores left.\n", e.Worker, e.Left)
		r.printf("[%d] Doing some work! BRB!\n", e.Worker)

	case EventChoreDone:
		if e.Err != nil {
			r.printf("[%d] Interrupted: %v\n", e.Worker, e.Err)
		} else {
			r.printf("[%d] Done!\n", e.Worker)
		}

	case EventWorkerStopped:
		r.printf("[%d] No more for today? Bye bye!\n", e.Worker)

	case EventChoresSent:
		r.printf("Sending out %d chores\n", e.Count)

	case EventShutdown:
		if e.Discarded > 0 {
			r.printf("Calling it a day, dropping %d chores\n", e.Discarded)
		} else {
			r.printf("Calling it a day\n")
		}

	case EventInvalidInput:
		r.printf("%s\n", e.Message())

	case EventDone:
		if e.Summary == nil {
			return
		}

		r.printf("%d chores sent, %d done by %d workers in %s\n",
			e.Summary.Submitted,
			e.Summary.Consumed(),
			len(e.Summary.PerWorker),
			e.Summary.Elapsed.Round(time.Millisecond),
		)
	}
}

func (r *Reporter) printf(format string, a ...any) {
	if r.err != nil {
		return
	}

	_, r.err = fmt.Fprintf(r.w, format, a...)
}
