package choretui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/macropower/chores/pkg/chores"
	"github.com/macropower/chores/pkg/log"
)

// CrewRunner runs a crew and publishes its events.
type CrewRunner interface {
	Run(ctx context.Context, src chores.QuantitySource) (*chores.Summary, error)
	Subscribe(f func(any))
	Workers() int
}

type CrewTUI struct {
	crew CrewRunner
	p    *tea.Program
	w    io.Writer
	opts []tea.ProgramOption
	mu   sync.RWMutex
}

// NewCrewTUI creates a [CrewTUI] drawing to w. Log records are routed into
// the TUI, so [slog.Default] is replaced.
func NewCrewTUI(w io.Writer, logLevel string, crew CrewRunner, opts ...tea.ProgramOption) (*CrewTUI, error) {
	c := &CrewTUI{
		crew: crew,
		w:    w,
		opts: opts,
	}

	c.crew.Subscribe(c.broadcastEvent)

	logger, err := log.CreateHandlerWithStrings(c, logLevel, log.TextFormat)
	if err != nil {
		return nil, fmt.Errorf("failed to create log handler: %w", err)
	}

	slog.SetDefault(slog.New(logger))

	return c, nil
}

// broadcastEvent may be called from any goroutine, including log writers
// running before or after [CrewTUI.Run].
func (c *CrewTUI) broadcastEvent(evt any) {
	c.mu.RLock()
	p := c.p
	c.mu.RUnlock()

	if p != nil {
		p.Send(evt)
	}
}

func (c *CrewTUI) Write(p []byte) (int, error) {
	c.broadcastEvent(teaMsgWriteLog(string(p)))

	return len(p), nil
}

func (c *CrewTUI) Subscribe(f func(any)) {
	c.crew.Subscribe(f)
}

// Run runs the crew with quantities entered in the TUI. Quitting the TUI
// early cancels the run.
func (c *CrewTUI) Run(ctx context.Context) (*chores.Summary, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	quantities := make(chan int)

	opts := append([]tea.ProgramOption{tea.WithOutput(c.w), tea.WithContext(ctx)}, c.opts...)
	p := tea.NewProgram(NewCrewModel(c.crew.Workers(), quantities, ctx.Done()), opts...)

	c.mu.Lock()
	c.p = p
	c.mu.Unlock()

	type result struct {
		summary *chores.Summary
		err     error
	}

	results := make(chan result, 1)

	go func() {
		summary, err := c.crew.Run(ctx, chores.ChanSource(quantities))
		results <- result{summary: summary, err: err}
	}()

	_, err := p.Run()

	cancel()

	res := <-results

	if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return res.summary, fmt.Errorf("failed to launch tui: %w", err)
	}

	return res.summary, res.err
}
