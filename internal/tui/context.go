package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/tinytelemetry/fleetlens/internal/chart"
	"github.com/tinytelemetry/fleetlens/internal/crossfilter"
)

// ViewContext provides read-only dashboard state to panels for rendering,
// replacing direct access to *DashboardPage.
type ViewContext struct {
	ContentWidth  int
	ContentHeight int
	Charts        crossfilter.Charts
	Filter        crossfilter.Filter
	Sessions      chart.Series
	Products      chart.Series
	Sources       chart.Series
	RangeDays     int
	Loading       bool
}

// Action identifies what a panel wants the dashboard to do.
type Action int

const (
	// ActionClick carries a crossfilter.Click payload.
	ActionClick Action = iota
	ActionCycleRange
)

// ActionMsg is returned by panel OnSelect to communicate with the dashboard
// without mutating it directly.
type ActionMsg struct {
	Action  Action
	Payload any
}

// actionMsg wraps ActionMsg as a tea.Msg.
func actionMsg(a ActionMsg) tea.Cmd {
	return func() tea.Msg { return a }
}
