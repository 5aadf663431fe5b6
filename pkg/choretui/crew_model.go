package choretui

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/macropower/chores/pkg/chores"
)

type workerState int

const (
	workerStarting workerState = iota
	workerIdle
	workerNapping
	workerWorking
	workerStopped
)

func (s workerState) String() string {
	switch s {
	case workerStarting:
		return "starting"
	case workerIdle:
		return "idle"
	case workerNapping:
		return "napping"
	case workerWorking:
		return "working"
	case workerStopped:
		return "stopped"
	}

	return "unknown"
}

type workerRow struct {
	state workerState
	done  int
}

// CrewModel shows one row per worker, the pending chore count and an input
// for new quantities. Entered quantities are sent on the quantities channel
// in the order they were entered, from a command, never from Update itself.
type CrewModel struct {
	err        error
	summary    *chores.Summary
	quantities chan<- int
	stop       <-chan struct{}
	caser      cases.Caser
	workers    []workerRow
	queue      []int
	input      textinput.Model
	spinner    spinner.Model
	pending    int
	width      int
	height     int
	mu         sync.RWMutex
	sendMu     sync.Mutex
	closed     bool
	done       bool
}

// NewCrewModel creates a [CrewModel] for a crew of the given size. Sends on
// quantities are abandoned once stop is closed.
func NewCrewModel(workers int, quantities chan<- int, stop <-chan struct{}) *CrewModel {
	s := spinner.New()
	s.Style = spinnerStyle

	ti := textinput.New()
	ti.Prompt = chores.DefaultPrompt
	ti.Placeholder = "e.g. 3, or -1 to stop"
	ti.CharLimit = 12
	ti.Focus()

	return &CrewModel{
		quantities: quantities,
		stop:       stop,
		caser:      cases.Title(language.English),
		workers:    make([]workerRow, workers),
		input:      ti,
		spinner:    s,
		mu:         sync.RWMutex{},
	}
}

func (m *CrewModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, textinput.Blink)
}

//nolint:ireturn // Third-party.
func (m *CrewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.input.Width = max(0, msg.Width-lipgloss.Width(chores.DefaultPrompt)-6)

	case tea.KeyMsg:
		if keyExits(msg) {
			return m, tea.Quit
		}

		if msg.Type == tea.KeyEnter {
			return m, m.submit()
		}

		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)

		return m, cmd

	case teaMsgWriteLog:
		return m, writeLog(msg, m.width)

	case chores.EventWorkerStarted:
		m.setWorker(msg.Worker, workerIdle)

	case chores.EventWorkerNapping:
		m.setWorker(msg.Worker, workerNapping)

	case chores.EventWorkerWoke:
		m.setWorker(msg.Worker, workerIdle)

	case chores.EventChoreTaken:
		m.mu.Lock()
		m.pending = msg.Left
		m.mu.Unlock()

		m.setWorker(msg.Worker, workerWorking)

	case chores.EventChoreDone:
		m.mu.Lock()
		defer m.mu.Unlock()

		if row := m.row(msg.Worker); row != nil {
			if msg.Err == nil {
				row.done++
			}

			row.state = workerIdle
		}

	case chores.EventWorkerStopped:
		m.setWorker(msg.Worker, workerStopped)

	case chores.EventChoresSent:
		m.mu.Lock()
		m.pending = msg.Pending
		m.mu.Unlock()

		return m, tea.Printf("%sSending out %d chores", rowIndent, msg.Count)

	case chores.EventShutdown:
		m.mu.Lock()
		m.pending -= msg.Discarded
		m.closed = true
		m.mu.Unlock()

		m.input.Blur()

		if msg.Discarded > 0 {
			return m, tea.Printf("%sCalling it a day, dropping %d chores", rowIndent, msg.Discarded)
		}

		return m, tea.Printf("%sCalling it a day", rowIndent)

	case chores.EventInvalidInput:
		return m, tea.Printf("%s%s", rowIndent, msg.Message())

	case chores.EventDone:
		// Allow previously sent messages to be drawn.
		preQuitCmd := tea.Tick(time.Millisecond*100, func(_ time.Time) tea.Msg {
			m.mu.Lock()
			defer m.mu.Unlock()

			m.err = msg.Err
			m.summary = msg.Summary
			m.done = true

			return nil
		})

		return m, tea.Sequence(preQuitCmd, teaQuit())

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)

		return m, cmd

	default:
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)

		return m, cmd
	}

	return m, nil
}

func (m *CrewModel) submit() tea.Cmd {
	m.mu.RLock()
	closed := m.closed
	m.mu.RUnlock()

	if closed {
		return nil
	}

	value := strings.TrimSpace(m.input.Value())
	m.input.Reset()

	if value == "" {
		return nil
	}

	n, err := strconv.Atoi(value)
	if err != nil {
		return tea.Printf("%s%q is not a number, try again", rowIndent, value)
	}

	if n < 0 {
		// Nothing is read after a shutdown request.
		m.mu.Lock()
		m.closed = true
		m.mu.Unlock()

		m.input.Blur()
	}

	return m.send(n)
}

func (m *CrewModel) send(n int) tea.Cmd {
	m.mu.Lock()
	m.queue = append(m.queue, n)
	m.mu.Unlock()

	return m.flush
}

// flush sends the oldest queued quantity. Commands run concurrently, so each
// one takes the head of the queue rather than its own value.
func (m *CrewModel) flush() tea.Msg {
	m.sendMu.Lock()
	defer m.sendMu.Unlock()

	m.mu.Lock()
	n := m.queue[0]
	m.queue = m.queue[1:]
	m.mu.Unlock()

	select {
	case m.quantities <- n:
	case <-m.stop:
	}

	return nil
}

// Callers must hold m.mu.
func (m *CrewModel) row(worker int) *workerRow {
	if worker < 1 || worker > len(m.workers) {
		return nil
	}

	return &m.workers[worker-1]
}

func (m *CrewModel) setWorker(worker int, state workerState) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if row := m.row(worker); row != nil {
		row.state = state
	}
}

func (m *CrewModel) View() string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.err != nil {
		return getErrorMessage(m.err, m.width)
	}

	if m.done {
		if m.summary == nil {
			return doneStyle.Render("Done!\n")
		}

		return doneStyle.Render(fmt.Sprintf("Done! %d chores sent, %d done by %d workers in %s.\n",
			m.summary.Submitted,
			m.summary.Consumed(),
			len(m.summary.PerWorker),
			m.summary.Elapsed.Round(time.Millisecond),
		))
	}

	rows := []string{titleStyle.Render(m.caser.String("chores crew"))}

	for i, row := range m.workers {
		var icon string

		switch row.state {
		case workerWorking:
			icon = m.spinner.View()
		case workerNapping:
			icon = napMark.String()
		case workerStopped:
			icon = checkMark.String()
		case workerStarting, workerIdle:
			icon = waitingMark.String()
		}

		prefix := rowIndent + icon + " "
		cellsAvail := max(0, m.width-lipgloss.Width(prefix))

		name := workerStyle.Render(fmt.Sprintf("Worker %d", i+1))
		info := fmt.Sprintf("%s  %-8s  %d done", name, m.caser.String(row.state.String()), row.done)
		info = lipgloss.NewStyle().MaxWidth(cellsAvail).Render(info)

		rows = append(rows, prefix+info)
	}

	rows = append(rows, pendingStyle.Render(fmt.Sprintf("Pending: %d", m.pending)))

	if m.closed {
		rows = append(rows, inputStyle.Render(finishingText))
	} else {
		rows = append(rows, inputStyle.Render(m.input.View()))
	}

	return strings.Join(rows, "\n") + "\n"
}
