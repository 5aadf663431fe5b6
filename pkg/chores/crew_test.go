package chores_test

import (
	"context"
	"errors"
	"math"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/macropower/chores/pkg/chores"
	"github.com/macropower/chores/pkg/syncs"
)

// recorder collects every event published by a crew.
type recorder struct {
	events chan any
	all    []any
	mu     sync.Mutex
}

func newRecorder(c *chores.Crew) *recorder {
	r := &recorder{events: make(chan any, 1024)}
	c.Subscribe(r.record)

	return r
}

func (r *recorder) record(evt any) {
	r.mu.Lock()
	r.all = append(r.all, evt)
	r.mu.Unlock()

	// Never block the publisher; it may hold the backlog lock.
	select {
	case r.events <- evt:
	default:
	}
}

func (r *recorder) snapshot() []any {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]any(nil), r.all...)
}

// waitFor blocks until n events matching match were seen.
func (r *recorder) waitFor(t *testing.T, n int, match func(any) bool) {
	t.Helper()

	timeout := time.After(5 * time.Second)
	for seen := 0; seen < n; {
		select {
		case evt := <-r.events:
			if match(evt) {
				seen++
			}
		case <-timeout:
			require.FailNow(t, "timed out waiting for events")
		}
	}
}

func isType[T any](evt any) bool {
	_, ok := evt.(T)

	return ok
}

func count[T any](events []any) int {
	n := 0
	for _, evt := range events {
		if isType[T](evt) {
			n++
		}
	}

	return n
}

func noSleep(context.Context, time.Duration) error {
	return nil
}

// gate is a sleeper that blocks until released and tracks how many workers
// are inside it at once.
type gate struct {
	release chan struct{}
	inside  atomic.Int32
}

func newGate() *gate {
	return &gate{release: make(chan struct{})}
}

func (g *gate) sleep(ctx context.Context, _ time.Duration) error {
	g.inside.Add(1)
	defer g.inside.Add(-1)

	select {
	case <-g.release:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

type runResult struct {
	summary *chores.Summary
	err     error
}

func runAsync(ctx context.Context, c *chores.Crew, src chores.QuantitySource) <-chan runResult {
	out := make(chan runResult, 1)
	go func() {
		s, err := c.Run(ctx, src)
		out <- runResult{summary: s, err: err}
	}()

	return out
}

func await(t *testing.T, results <-chan runResult) runResult {
	t.Helper()

	select {
	case res := <-results:
		return res
	case <-time.After(10 * time.Second):
		require.FailNow(t, "crew did not finish")
	}

	return runResult{}
}

func TestCrewRunConsumesEverything(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		input         string
		workers       int
		wantSubmitted int
	}{
		"three then stop": {
			input:         "3\n-1\n",
			workers:       2,
			wantSubmitted: 3,
		},
		"several on one line": {
			input:         "1 2 3 -1",
			workers:       2,
			wantSubmitted: 6,
		},
		"single worker": {
			input:         "4\n2\n-5\n",
			workers:       1,
			wantSubmitted: 6,
		},
		"many workers": {
			input:         "10\n10\n-1\n",
			workers:       8,
			wantSubmitted: 20,
		},
		"end of input stops the crew": {
			input:         "5\n",
			workers:       3,
			wantSubmitted: 5,
		},
		"only zeroes": {
			input:         "0\n0\n0\n-1\n",
			workers:       2,
			wantSubmitted: 0,
		},
		"input after shutdown is ignored": {
			input:         "1\n-1\n7\n",
			workers:       2,
			wantSubmitted: 1,
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			c := chores.NewCrew(
				chores.WithWorkers(tc.workers),
				chores.WithSleeper(noSleep),
			)
			rec := newRecorder(c)

			summary, err := c.Run(context.Background(), chores.NewLineSource(strings.NewReader(tc.input)))
			require.NoError(t, err)

			assert.Equal(t, tc.wantSubmitted, summary.Submitted)
			assert.Equal(t, tc.wantSubmitted, summary.Consumed())
			assert.Zero(t, summary.Discarded)
			assert.Len(t, summary.PerWorker, tc.workers)
			assert.NotEmpty(t, summary.RunID)

			events := rec.snapshot()
			assert.Equal(t, tc.wantSubmitted, count[chores.EventChoreTaken](events))
			assert.Equal(t, tc.wantSubmitted, count[chores.EventChoreDone](events))
			assert.Equal(t, tc.workers, count[chores.EventWorkerStarted](events))
			assert.Equal(t, tc.workers, count[chores.EventWorkerStopped](events))
			assert.Equal(t, 1, count[chores.EventShutdown](events))
			assert.Equal(t, 1, count[chores.EventDone](events))

			for _, evt := range events {
				if taken, ok := evt.(chores.EventChoreTaken); ok {
					assert.GreaterOrEqual(t, taken.Left, 0)
				}
			}
		})
	}
}

func TestCrewThreeChoresThenShutdown(t *testing.T) {
	t.Parallel()

	c := chores.NewCrew(chores.WithWorkers(2), chores.WithSleeper(noSleep))
	rec := newRecorder(c)

	summary, err := c.Run(context.Background(), chores.NewLineSource(strings.NewReader("3\n-1\n")))
	require.NoError(t, err)

	lefts := []int{}
	perWorker := map[int]int{}

	for _, evt := range rec.snapshot() {
		if taken, ok := evt.(chores.EventChoreTaken); ok {
			lefts = append(lefts, taken.Left)
			perWorker[taken.Worker]++
		}
	}

	// Takes are serialized by the backlog lock, so the counts are exact.
	assert.Equal(t, []int{2, 1, 0}, lefts)
	assert.Equal(t, 3, perWorker[1]+perWorker[2])
	assert.Equal(t, perWorker[1], summary.PerWorker[0])
	assert.Equal(t, perWorker[2], summary.PerWorker[1])
}

func TestCrewShutdownWakesWaitingWorkers(t *testing.T) {
	t.Parallel()

	c := chores.NewCrew(chores.WithWorkers(2), chores.WithSleeper(noSleep))
	rec := newRecorder(c)

	quantities := make(chan int)
	results := runAsync(context.Background(), c, chores.ChanSource(quantities))

	rec.waitFor(t, 2, isType[chores.EventWorkerNapping])

	// Zero chores must not wake anyone.
	quantities <- 0
	quantities <- 0
	rec.waitFor(t, 2, isType[chores.EventChoresSent])
	assert.Zero(t, count[chores.EventWorkerWoke](rec.snapshot()))

	quantities <- -1

	res := await(t, results)
	require.NoError(t, res.err)
	assert.Zero(t, res.summary.Consumed())

	events := rec.snapshot()
	assert.Equal(t, 2, count[chores.EventWorkerWoke](events))
	assert.Equal(t, 2, count[chores.EventWorkerStopped](events))
	assert.Zero(t, count[chores.EventChoreTaken](events))
}

func TestCrewShutdownPolicies(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		policy        chores.ShutdownPolicy
		wantConsumed  int
		wantDiscarded int
	}{
		"drain": {
			policy:        chores.ShutdownDrain,
			wantConsumed:  5,
			wantDiscarded: 0,
		},
		"immediate": {
			policy:        chores.ShutdownImmediate,
			wantConsumed:  2,
			wantDiscarded: 3,
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			g := newGate()
			c := chores.NewCrew(
				chores.WithWorkers(2),
				chores.WithSleeper(g.sleep),
				chores.WithShutdownPolicy(tc.policy),
			)
			rec := newRecorder(c)

			quantities := make(chan int)
			results := runAsync(context.Background(), c, chores.ChanSource(quantities))

			quantities <- 5
			rec.waitFor(t, 2, isType[chores.EventChoreTaken])

			quantities <- -1
			rec.waitFor(t, 1, isType[chores.EventShutdown])
			close(g.release)

			res := await(t, results)
			require.NoError(t, res.err)
			assert.Equal(t, 5, res.summary.Submitted)
			assert.Equal(t, tc.wantConsumed, res.summary.Consumed())
			assert.Equal(t, tc.wantDiscarded, res.summary.Discarded)
		})
	}
}

func TestCrewWorksOutsideTheLock(t *testing.T) {
	t.Parallel()

	const workers = 4

	g := newGate()
	c := chores.NewCrew(chores.WithWorkers(workers), chores.WithSleeper(g.sleep))

	quantities := make(chan int, 2)
	quantities <- workers
	quantities <- -1

	results := runAsync(context.Background(), c, chores.ChanSource(quantities))

	// Every worker is inside its chore at the same time.
	require.Eventually(t, func() bool {
		return g.inside.Load() == workers
	}, 5*time.Second, 5*time.Millisecond)

	close(g.release)

	res := await(t, results)
	require.NoError(t, res.err)
	assert.Equal(t, workers, res.summary.Consumed())

	for _, n := range res.summary.PerWorker {
		assert.Equal(t, 1, n)
	}
}

func TestCrewWallClock(t *testing.T) {
	t.Parallel()

	const (
		workers = 3
		unit    = 200 * time.Millisecond
	)

	c := chores.NewCrew(chores.WithWorkers(workers), chores.WithWorkDuration(unit))

	summary, err := c.Run(context.Background(), chores.NewLineSource(strings.NewReader("3 -1")))
	require.NoError(t, err)
	assert.Equal(t, workers, summary.Consumed())
	assert.Less(t, summary.Elapsed, workers*unit)
}

func TestCrewSkipsInvalidInput(t *testing.T) {
	t.Parallel()

	c := chores.NewCrew(chores.WithSleeper(noSleep))
	rec := newRecorder(c)

	summary, err := c.Run(context.Background(), chores.NewLineSource(strings.NewReader("abc 2 1.5 -1")))
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Consumed())

	var inputs []string

	for _, evt := range rec.snapshot() {
		if inv, ok := evt.(chores.EventInvalidInput); ok {
			assert.ErrorIs(t, inv.Err, chores.ErrNotANumber)
			inputs = append(inputs, inv.Input)
		}
	}

	assert.Equal(t, []string{"abc", "1.5"}, inputs)
}

func TestCrewRejectsTooMuchWork(t *testing.T) {
	t.Parallel()

	g := newGate()
	c := chores.NewCrew(
		chores.WithWorkers(2),
		chores.WithSleeper(g.sleep),
		chores.WithShutdownPolicy(chores.ShutdownImmediate),
	)
	rec := newRecorder(c)

	quantities := make(chan int)
	results := runAsync(context.Background(), c, chores.ChanSource(quantities))

	quantities <- math.MaxInt
	quantities <- 5
	rec.waitFor(t, 1, isType[chores.EventInvalidInput])

	// Still accepting input.
	quantities <- 0
	quantities <- -1
	rec.waitFor(t, 1, isType[chores.EventShutdown])
	close(g.release)

	res := await(t, results)
	require.NoError(t, res.err)
	assert.Equal(t, math.MaxInt, res.summary.Submitted)
	assert.Equal(t, math.MaxInt, res.summary.Consumed()+res.summary.Discarded)

	events := rec.snapshot()
	assert.Equal(t, 2, count[chores.EventChoresSent](events))
	assert.Equal(t, 1, count[chores.EventInvalidInput](events))

	for _, evt := range events {
		if inv, ok := evt.(chores.EventInvalidInput); ok {
			require.ErrorIs(t, inv.Err, syncs.ErrTooMuchWork)
			assert.Equal(t, "5", inv.Input)
			assert.Equal(t, "5 is too many chores, try again", inv.Message())
		}
	}
}

func TestCrewInterruptedChoresAreNotConsumed(t *testing.T) {
	t.Parallel()

	g := newGate()
	c := chores.NewCrew(chores.WithWorkers(1), chores.WithSleeper(g.sleep))
	rec := newRecorder(c)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	quantities := make(chan int)
	results := runAsync(ctx, c, chores.ChanSource(quantities))

	quantities <- 1
	rec.waitFor(t, 1, isType[chores.EventChoreTaken])
	cancel()

	res := await(t, results)
	require.ErrorIs(t, res.err, chores.ErrInterrupted)
	assert.Equal(t, 1, res.summary.Submitted)
	assert.Zero(t, res.summary.Consumed())
	assert.Equal(t, 1, res.summary.Interrupted)
	assert.Zero(t, res.summary.Discarded)

	for _, evt := range rec.snapshot() {
		switch e := evt.(type) {
		case chores.EventChoreDone:
			require.ErrorIs(t, e.Err, context.Canceled)
		case chores.EventWorkerStopped:
			assert.Zero(t, e.Done)
		}
	}
}

func TestCrewCanceled(t *testing.T) {
	t.Parallel()

	c := chores.NewCrew(chores.WithSleeper(noSleep))
	rec := newRecorder(c)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	results := runAsync(ctx, c, chores.ChanSource(make(chan int)))

	rec.waitFor(t, 2, isType[chores.EventWorkerNapping])
	cancel()

	res := await(t, results)
	require.ErrorIs(t, res.err, chores.ErrInterrupted)
	require.ErrorIs(t, res.err, context.Canceled)
	assert.Equal(t, 2, count[chores.EventWorkerStopped](rec.snapshot()))
}

func TestCrewSourceError(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")

	c := chores.NewCrew(chores.WithSleeper(noSleep))
	rec := newRecorder(c)

	calls := 0
	src := chores.QuantitySourceFunc(func(context.Context) (int, error) {
		calls++
		if calls == 1 {
			return 2, nil
		}

		return 0, boom
	})

	summary, err := c.Run(context.Background(), src)
	require.ErrorIs(t, err, chores.ErrInput)
	require.ErrorIs(t, err, boom)
	assert.Equal(t, 2, summary.Submitted)
	assert.Equal(t, summary.Submitted, summary.Consumed()+summary.Discarded)

	var done chores.EventDone

	for _, evt := range rec.snapshot() {
		if d, ok := evt.(chores.EventDone); ok {
			done = d
		}
	}

	require.ErrorIs(t, done.Err, boom)
	assert.Same(t, summary, done.Summary)
}

func TestCrewDefaults(t *testing.T) {
	t.Parallel()

	c := chores.NewCrew(chores.WithWorkers(0))
	assert.Equal(t, chores.DefaultWorkers, c.Workers())

	c = chores.NewCrew(chores.WithWorkers(5))
	assert.Equal(t, 5, c.Workers())
}

func TestParseShutdownPolicy(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		want    chores.ShutdownPolicy
		wantErr error
	}{
		"":          {want: chores.ShutdownDrain},
		"drain":     {want: chores.ShutdownDrain},
		"IMMEDIATE": {want: chores.ShutdownImmediate},
		"later":     {wantErr: chores.ErrInvalidShutdownPolicy},
	}

	for in, tc := range tcs {
		t.Run(in, func(t *testing.T) {
			t.Parallel()

			got, err := chores.ParseShutdownPolicy(in)
			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tc.want, got)

			roundTrip, err := chores.ParseShutdownPolicy(got.String())
			require.NoError(t, err)
			assert.Equal(t, got, roundTrip)
		})
	}
}
