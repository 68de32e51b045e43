package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

const spinnerInterval = 120 * time.Millisecond

// renderLoadingIndicator renders an animated loading label.
// The frame is selected based on the current time so it animates on re-render.
func renderLoadingIndicator() string {
	frame := spinnerFrames[time.Now().UnixMilli()/spinnerInterval.Milliseconds()%int64(len(spinnerFrames))]
	return lipgloss.NewStyle().
		Foreground(ColorGray).
		Italic(true).
		Render(frame + " Loading...")
}

// SpinnerTickMsg triggers a re-render for the loading spinner.
type SpinnerTickMsg struct{}

func spinnerTick() tea.Cmd {
	return tea.Tick(spinnerInterval, func(_ time.Time) tea.Msg {
		return SpinnerTickMsg{}
	})
}

// handleSpinnerTick re-schedules spinner ticks while a load is in flight.
func (p *DashboardPage) handleSpinnerTick() tea.Cmd {
	if p.loading {
		return spinnerTick()
	}
	return nil
}
