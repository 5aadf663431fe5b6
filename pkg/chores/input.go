package chores

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"sync"
)

// DefaultPrompt is written by a [LineSource] before each quantity is read.
const DefaultPrompt = "How many chores? "

// ErrNotANumber is reported for input tokens that are not integers.
var ErrNotANumber = errors.New("not a number")

// QuantitySource yields the quantities handed to the dispatcher. A negative
// quantity requests shutdown. Next returns [io.EOF] when there is no more
// input, which is also treated as a shutdown request.
type QuantitySource interface {
	Next(ctx context.Context) (int, error)
}

// QuantitySourceFunc is a function that implements [QuantitySource].
type QuantitySourceFunc func(ctx context.Context) (int, error)

func (f QuantitySourceFunc) Next(ctx context.Context) (int, error) {
	return f(ctx)
}

// ChanSource is a [QuantitySource] fed from a channel. A closed channel
// yields [io.EOF].
type ChanSource <-chan int

func (s ChanSource) Next(ctx context.Context) (int, error) {
	select {
	case n, ok := <-s:
		if !ok {
			return 0, io.EOF
		}

		return n, nil

	case <-ctx.Done():
		return 0, ctx.Err()
	}
}

// LineSourceOpt configures a [LineSource].
type LineSourceOpt func(*LineSource)

// WithPrompt writes prompt to w before each quantity is read.
func WithPrompt(w io.Writer, prompt string) LineSourceOpt {
	return func(s *LineSource) {
		s.promptOut = w
		s.prompt = prompt
	}
}

// InvalidInputError is returned by a [QuantitySource] for input that is not
// a quantity. The dispatcher skips it and asks again.
type InvalidInputError struct {
	Input string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("%v: %q", ErrNotANumber, e.Input)
}

func (e *InvalidInputError) Unwrap() error {
	return ErrNotANumber
}

// LineSource reads whitespace separated integers from an [io.Reader], so
// "3 -1" on one line is two quantities. Tokens that are not integers are
// returned as [*InvalidInputError].
//
// The reader is consumed by a background goroutine so that Next can return
// when its context is canceled. That goroutine exits once the reader ends or
// [LineSource.Close] is called and any blocked Read returns. Close does not
// close the underlying reader.
type LineSource struct {
	scanner   *bufio.Scanner
	promptOut io.Writer
	tokens    chan string
	done      chan struct{}
	err       error
	prompt    string
	closeOnce sync.Once
	started   bool
}

// NewLineSource creates a [LineSource] reading from r.
func NewLineSource(r io.Reader, opts ...LineSourceOpt) *LineSource {
	scanner := bufio.NewScanner(r)
	scanner.Split(bufio.ScanWords)

	s := &LineSource{
		scanner: scanner,
		tokens:  make(chan string),
		done:    make(chan struct{}),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

func (s *LineSource) start() {
	if s.started {
		return
	}

	s.started = true

	go func() {
		defer close(s.tokens)

		for s.scanner.Scan() {
			select {
			case s.tokens <- s.scanner.Text():
			case <-s.done:
				return
			}
		}

		s.err = s.scanner.Err()
	}()
}

// Close stops the background reader. Later calls to Next return [io.EOF].
// It is safe to call more than once.
func (s *LineSource) Close() error {
	s.closeOnce.Do(func() { close(s.done) })

	return nil
}

// Next returns the next quantity. It is not safe for concurrent use.
func (s *LineSource) Next(ctx context.Context) (int, error) {
	select {
	case <-s.done:
		return 0, io.EOF
	default:
	}

	s.start()

	if s.promptOut != nil {
		if _, err := io.WriteString(s.promptOut, s.prompt); err != nil {
			return 0, fmt.Errorf("write prompt: %w", err)
		}
	}

	select {
	case tok, ok := <-s.tokens:
		if !ok {
			// s.err is written before the channel is closed.
			if s.err != nil {
				return 0, fmt.Errorf("read quantity: %w", s.err)
			}

			return 0, io.EOF
		}

		n, err := strconv.Atoi(tok)
		if err != nil {
			return 0, &InvalidInputError{Input: tok}
		}

		return n, nil

	case <-s.done:
		return 0, io.EOF

	case <-ctx.Done():
		return 0, ctx.Err()
	}
}
