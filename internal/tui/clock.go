package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

type tickMsg time.Time

// refreshMsg asks for a fresh snapshot. Other clients (the CLI, MCP, hotkeys)
// change the desktop behind the model's back.
type refreshMsg struct{}

const refreshInterval = 250 * time.Millisecond

func tick() tea.Cmd {
	return tea.Every(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func refresh() tea.Cmd {
	return tea.Tick(refreshInterval, func(time.Time) tea.Msg {
		return refreshMsg{}
	})
}

func formatClock(t time.Time) string {
	return t.Format("15:04:05")
}

func formatDate(t time.Time) string {
	return t.Format("Monday, Jan 2, 2006")
}
