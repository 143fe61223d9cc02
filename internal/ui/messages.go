package ui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/yildizm/ChatLens/internal/analysis"
	"github.com/yildizm/ChatLens/internal/surface"
)

// DropMsg delivers an event from outside the terminal, such as a drop folder
type DropMsg struct {
	Event surface.Event
}

// stateMsg carries a controller state snapshot into the update loop
type stateMsg struct {
	state analysis.RequestState
}

// tickMsg animates the spinner
type tickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// waitForResult blocks off the update loop until the pending request ends
func waitForResult(ctx context.Context, ctrl Controller) tea.Cmd {
	return func() tea.Msg {
		_ = ctrl.Wait(ctx)
		return stateMsg{state: ctrl.State()}
	}
}
