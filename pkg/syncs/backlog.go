package syncs

import (
	"errors"
	"math"
	"sync"
)

var (
	// ErrBacklogClosed is returned when work is added after shutdown was requested.
	ErrBacklogClosed = errors.New("backlog closed")

	// ErrNegativeWork is returned when a negative amount of work is added.
	ErrNegativeWork = errors.New("negative amount of work")

	// ErrTooMuchWork is returned when adding work would overflow the count.
	ErrTooMuchWork = errors.New("too much work")
)

// Backlog is a count of outstanding work units guarded by a mutex, paired
// with a condition variable that wakes goroutines waiting for work or for
// shutdown. Create instances with [NewBacklog].
//
// Backlog implements [sync.Locker]. Methods with the Locked suffix must only
// be called while holding the lock.
type Backlog struct {
	wake    *sync.Cond
	pending int
	mu      sync.Mutex
	closed  bool
}

// NewBacklog creates an empty, open [Backlog].
func NewBacklog() *Backlog {
	b := &Backlog{}
	b.wake = sync.NewCond(&b.mu)

	return b
}

// Lock acquires the backlog lock, blocking until it is available.
func (b *Backlog) Lock() {
	b.mu.Lock()
}

// Unlock releases the backlog lock.
func (b *Backlog) Unlock() {
	b.mu.Unlock()
}

// Wait atomically unlocks the backlog and suspends the calling goroutine
// until [Backlog.Broadcast] is called. The lock is held again when Wait
// returns. The caller must hold the lock.
//
// Wait can return while the awaited condition is still false, e.g. when
// another waiter took the work first, so callers re-check in a loop:
//
//	b.Lock()
//	for b.PendingLocked() == 0 && !b.ClosedLocked() {
//		b.Wait()
//	}
func (b *Backlog) Wait() {
	b.wake.Wait()
}

// Broadcast wakes every goroutine waiting on the backlog. The caller must
// hold the lock, otherwise a waiter may check the condition, miss the
// wakeup and sleep forever.
func (b *Backlog) Broadcast() {
	b.wake.Broadcast()
}

// PendingLocked returns the number of outstanding work units.
func (b *Backlog) PendingLocked() int {
	return b.pending
}

// ClosedLocked reports whether shutdown was requested.
func (b *Backlog) ClosedLocked() bool {
	return b.closed
}

// AddLocked adds n work units and returns the new pending count. On error
// the count is unchanged.
func (b *Backlog) AddLocked(n int) (int, error) {
	if n < 0 {
		return b.pending, ErrNegativeWork
	}

	if b.closed {
		return b.pending, ErrBacklogClosed
	}

	if n > math.MaxInt-b.pending {
		return b.pending, ErrTooMuchWork
	}

	b.pending += n

	return b.pending, nil
}

// TakeLocked removes one work unit and returns the number left. It panics if
// nothing is pending: the count never goes below zero.
func (b *Backlog) TakeLocked() int {
	if b.pending <= 0 {
		panic("syncs: take from empty backlog")
	}

	b.pending--

	return b.pending
}

// CloseLocked marks the backlog as shutting down. When discard is true any
// outstanding work is dropped, and the number of dropped units is returned.
// Closing an already closed backlog only applies discard.
func (b *Backlog) CloseLocked(discard bool) int {
	b.closed = true

	if !discard {
		return 0
	}

	dropped := b.pending
	b.pending = 0

	return dropped
}
