// Package lockdemo shows a goroutine blocked on a [sync.Mutex] held by
// another goroutine, and released on demand.
package lockdemo

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Prompt is written before waiting for the unlock trigger.
const Prompt = "Enter anything to unlock:\n"

// Demo runs the plain mutex demonstration.
type Demo struct {
	in     io.Reader
	out    *lockedWriter
	logger *slog.Logger
	rebel  bool
}

// DemoOpt configures a [Demo].
type DemoOpt func(*Demo)

// WithRebel makes the locked goroutine release the lock held by the main
// goroutine itself, instead of waiting for it. Go mutexes are not tied to
// the goroutine that locked them, so this is allowed.
func WithRebel(rebel bool) DemoOpt {
	return func(d *Demo) {
		d.rebel = rebel
	}
}

// WithLogger sets the logger. By default [slog.Default] is used.
func WithLogger(l *slog.Logger) DemoOpt {
	return func(d *Demo) {
		if l != nil {
			d.logger = l
		}
	}
}

// NewDemo creates a [Demo] reading its trigger from in and writing to out.
func NewDemo(in io.Reader, out io.Writer, opts ...DemoOpt) *Demo {
	d := &Demo{
		in:     in,
		out:    &lockedWriter{w: out},
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(d)
	}

	return d
}

// Run locks a mutex, starts a goroutine that tries to acquire it, and waits
// for a single byte (or the end) of input before releasing it. Run returns
// once the goroutine has been joined.
func (d *Demo) Run(ctx context.Context) error {
	var mu sync.Mutex

	d.out.printf(Prompt)

	mu.Lock()
	d.logger.Debug("main goroutine holds the lock")

	var g errgroup.Group

	g.Go(func() error {
		d.out.printf("Help! I am locked!\n")

		if d.rebel {
			d.out.printf("I am devious and I am going to unlock myself and lock again:\n")
			mu.Unlock()
		}

		mu.Lock()
		d.out.printf("I gained the lock, which means I am free!\n")
		mu.Unlock()

		return nil
	})

	err := d.waitForTrigger(ctx)

	if !d.rebel {
		mu.Unlock()
		d.logger.Debug("main goroutine released the lock")
	}

	if werr := g.Wait(); werr != nil {
		return werr //nolint:wrapcheck
	}

	if err != nil {
		return err
	}

	return d.out.Err()
}

func (d *Demo) waitForTrigger(ctx context.Context) error {
	read := make(chan error, 1)

	go func() {
		var b [1]byte

		_, err := io.ReadFull(d.in, b[:])
		read <- err
	}()

	select {
	case err := <-read:
		if err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("read trigger: %w", err)
		}

		d.logger.Debug("trigger received", slog.Bool("eof", err != nil))

		return nil

	case <-ctx.Done():
		return ctx.Err()
	}
}

type lockedWriter struct {
	w   io.Writer
	err error
	mu  sync.Mutex
}

func (w *lockedWriter) printf(format string, a ...any) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.err != nil {
		return
	}

	_, w.err = fmt.Fprintf(w.w, format, a...)
}

func (w *lockedWriter) Err() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	return w.err
}
