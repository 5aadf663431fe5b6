// Package choretui is an interactive terminal front end for a chores crew.
package choretui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	tea "github.com/charmbracelet/bubbletea"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Margin(1, 2, 0)
	workerStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("211"))
	pendingStyle  = lipgloss.NewStyle().Margin(1, 2, 0)
	inputStyle    = lipgloss.NewStyle().Margin(1, 2)
	doneStyle     = lipgloss.NewStyle().Margin(1, 2)
	errStyle      = lipgloss.NewStyle().Margin(1, 2)
	spinnerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("63"))
	napMark       = lipgloss.NewStyle().Foreground(lipgloss.Color("244")).SetString("z")
	checkMark     = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).SetString("✓")
	waitingMark   = lipgloss.NewStyle().Foreground(lipgloss.Color("244")).SetString("·")
	rowIndent     = "  "
	finishingText = "Calling it a day, finishing up..."
)

type (
	// Sent to write a log message.
	teaMsgWriteLog string
)

func teaQuit() tea.Cmd {
	return tea.Sequence(
		tea.Tick(time.Millisecond*500, func(_ time.Time) tea.Msg {
			return nil
		}),
		tea.Quit,
	)
}

// Letters are typed into the quantity input, so only control keys exit.
func keyExits(msg tea.KeyMsg) bool {
	switch msg.String() {
	case "ctrl+c", "esc":
		return true
	}

	return false
}

func writeLog(msg teaMsgWriteLog, width int) tea.Cmd {
	logMsg := string(msg)
	logMsg = strings.Trim(logMsg, "\r\n")
	logMsg = lipgloss.NewStyle().Width(max(0, width-2)).Render(logMsg)

	return tea.Println(logMsg)
}

func getErrorMessage(err error, width int) string {
	errMsg := fmt.Sprintf("%v", err)
	errMsg = strings.Trim(errMsg, "\r\n")

	return errStyle.Width(max(0, width-2)).Render(errMsg + "\n")
}
