package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tinytelemetry/fleetlens/internal/apiclient"
	"github.com/tinytelemetry/fleetlens/internal/chart"
	"github.com/tinytelemetry/fleetlens/internal/crossfilter"
	"github.com/tinytelemetry/fleetlens/internal/dashboard"
	"github.com/tinytelemetry/fleetlens/internal/logging"
)

// Layout constants, in terminal cells.
const (
	defaultWidth  = 120
	defaultHeight = 40
	gridTop       = 4 // header line + card row
	panelHeight   = 11
	minPanelWidth = 36
	maxGridCols   = 4
	footerLines   = 2
)

// DashboardDataMsg carries the result of a dashboard load.
type DashboardDataMsg struct {
	Data dashboard.Data
}

// loadCmd runs one dashboard load off the event loop.
func loadCmd(f dashboard.Fetcher) tea.Cmd {
	return func() tea.Msg {
		return DashboardDataMsg{Data: dashboard.Load(context.Background(), f)}
	}
}

// DashboardConfig configures a DashboardPage.
type DashboardConfig struct {
	Fetcher   dashboard.Fetcher
	ExportDir string
	RangeDays int
}

// DashboardPage is the main screen: cards, chart grid and signups table.
type DashboardPage struct {
	dash      *dashboard.Dashboard
	fetcher   dashboard.Fetcher
	exportDir string
	keys      KeyMap
	help      help.Model

	panels     []Panel
	selections []int
	active     int // index into panels; len(panels) is the signups table

	table    table.Model
	tableCol dashboard.SignupColumn

	started bool
	loading bool
	status  string
	failed  bool

	width  int
	height int
}

// DefaultPanels returns the chart grid in display order.
func DefaultPanels() []Panel {
	return []Panel{
		NewServerPanel(crossfilter.ChartOS, "Operating systems"),
		NewServerPanel(crossfilter.ChartType, "Server types"),
		NewServerPanel(crossfilter.ChartDept, "Departments"),
		NewServerPanel(crossfilter.ChartRegion, "Regions"),
		NewServerPanel(crossfilter.ChartStacked, "OS by region"),
		NewSessionsPanel(),
		NewStaticPanel("products", "Product sales", func(ctx ViewContext) chart.Series { return ctx.Products }),
		NewStaticPanel("sources", "Traffic sources", func(ctx ViewContext) chart.Series { return ctx.Sources }),
	}
}

// NewDashboardPage creates the dashboard page showing placeholder data
// until the first load completes.
func NewDashboardPage(cfg DashboardConfig) *DashboardPage {
	panels := DefaultPanels()
	p := &DashboardPage{
		dash:       dashboard.New(cfg.RangeDays),
		fetcher:    cfg.Fetcher,
		exportDir:  cfg.ExportDir,
		keys:       DefaultKeyMap(),
		help:       help.New(),
		panels:     panels,
		selections: make([]int, len(panels)),
		table:      newSignupsTable(),
	}
	p.syncTable()
	return p
}

func (p *DashboardPage) ID() string { return PageDashboard }

// Dashboard exposes the underlying state.
func (p *DashboardPage) Dashboard() *dashboard.Dashboard { return p.dash }

// Init starts the initial load. Returning from another page does not reload.
func (p *DashboardPage) Init() tea.Cmd {
	if p.started || p.fetcher == nil {
		return nil
	}
	p.started = true
	p.loading = true
	return tea.Batch(loadCmd(p.fetcher), spinnerTick())
}

func (p *DashboardPage) Update(msg tea.Msg) (tea.Cmd, *PageNav) {
	var cmd tea.Cmd
	var nav *PageNav

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		p.width, p.height = msg.Width, msg.Height
		p.help.Width = msg.Width

	case tea.KeyMsg:
		cmd, nav = p.handleKey(msg)

	case tea.MouseMsg:
		if msg.Action == tea.MouseActionPress {
			switch msg.Button {
			case tea.MouseButtonLeft:
				cmd = p.handleMouseClick(msg.X, msg.Y)
			case tea.MouseButtonWheelUp:
				p.moveSelection(-1)
			case tea.MouseButtonWheelDown:
				p.moveSelection(1)
			}
		}

	case ActionMsg:
		p.handleAction(msg)

	case DashboardDataMsg:
		p.loading = false
		p.dash.Apply(msg.Data)
		p.reportLoad(msg.Data)

	case SpinnerTickMsg:
		cmd = p.handleSpinnerTick()
	}

	p.clampSelections()
	p.syncTable()
	return cmd, nav
}

func (p *DashboardPage) handleKey(msg tea.KeyMsg) (tea.Cmd, *PageNav) {
	k := p.keys

	switch {
	case key.Matches(msg, k.ForceQuit), key.Matches(msg, k.Quit):
		return tea.Quit, nil

	case key.Matches(msg, k.Help):
		return nil, &PageNav{PageID: PageHelp, Params: PageDashboard}

	case key.Matches(msg, k.Escape), key.Matches(msg, k.ClearFilter):
		if p.dash.Filter().Active() {
			p.dash.ClearFilter()
			p.setStatus("Filter cleared", false)
		}

	case key.Matches(msg, k.NextSection):
		p.active = (p.active + 1) % (len(p.panels) + 1)

	case key.Matches(msg, k.PrevSection):
		p.active = (p.active + len(p.panels)) % (len(p.panels) + 1)

	case key.Matches(msg, k.Up):
		p.moveSelection(-1)

	case key.Matches(msg, k.Down):
		p.moveSelection(1)

	case key.Matches(msg, k.Left):
		if p.signupsFocused() && p.tableCol > dashboard.ColName {
			p.tableCol--
		}

	case key.Matches(msg, k.Right):
		if p.signupsFocused() && p.tableCol < dashboard.ColDate {
			p.tableCol++
		}

	case key.Matches(msg, k.Enter):
		if p.signupsFocused() {
			p.dash.SortSignups(p.tableCol)
			return nil, nil
		}
		return p.panels[p.active].OnSelect(p.viewContext(), p.selections[p.active]), nil

	case key.Matches(msg, k.Range):
		p.dash.CycleRange()

	case key.Matches(msg, k.Export):
		p.export()

	case key.Matches(msg, k.Reload):
		if p.fetcher == nil || p.loading {
			return nil, nil
		}
		p.loading = true
		return tea.Batch(loadCmd(p.fetcher), spinnerTick()), nil

	case key.Matches(msg, k.SortName):
		p.sortBy(dashboard.ColName)
	case key.Matches(msg, k.SortEmail):
		p.sortBy(dashboard.ColEmail)
	case key.Matches(msg, k.SortPlan):
		p.sortBy(dashboard.ColPlan)
	case key.Matches(msg, k.SortDate):
		p.sortBy(dashboard.ColDate)
	}

	return nil, nil
}

func (p *DashboardPage) handleAction(msg ActionMsg) {
	switch msg.Action {
	case ActionClick:
		click, ok := msg.Payload.(crossfilter.Click)
		if !ok {
			return
		}
		p.dash.Click(click)
		if f := p.dash.Filter(); f.Active() {
			p.setStatus("Filtered by "+f.String(), false)
		} else {
			p.setStatus("Filter cleared", false)
		}
	case ActionCycleRange:
		p.dash.CycleRange()
	}
}

// handleMouseClick focuses the panel under the pointer. A click on a
// legend row selects it; a click on a signups header sorts by that column.
func (p *DashboardPage) handleMouseClick(x, y int) tea.Cmd {
	l := p.layout()
	if y < gridTop || x < 0 {
		return nil
	}

	gy := y - gridTop
	if gy < l.rows*panelHeight {
		col := x / l.panelWidth
		if col >= l.cols {
			return nil
		}
		idx := (gy/panelHeight)*l.cols + col
		if idx >= len(p.panels) {
			return nil
		}
		p.active = idx

		rel := gy%panelHeight - 2
		rows := bodyRows(panelHeight)
		if rel < 0 || rel >= rows {
			return nil
		}
		ctx := p.viewContext()
		item := legendOffset(p.selections[idx], rows) + rel
		if item >= p.panels[idx].ItemCount(ctx) {
			return nil
		}
		p.selections[idx] = item
		return p.panels[idx].OnSelect(ctx, item)
	}

	p.active = len(p.panels)
	if y-l.signupsTop == signupsHeaderOffset {
		if col, ok := signupColumnAt(x - 1); ok {
			p.tableCol = col
			p.dash.SortSignups(col)
		}
	}
	return nil
}

func (p *DashboardPage) sortBy(col dashboard.SignupColumn) {
	p.tableCol = col
	p.dash.SortSignups(col)
}

func (p *DashboardPage) export() {
	path, err := p.dash.WriteExportFile(p.exportDir)
	if err != nil {
		logging.Error().Err(err).Str("dir", p.exportDir).Msg("export failed")
		p.setStatus("Export failed: "+err.Error(), true)
		return
	}
	logging.Info().Str("path", path).Msg("export written")
	p.setStatus("Exported to "+path, false)
}

func (p *DashboardPage) reportLoad(data dashboard.Data) {
	for _, err := range data.Errors {
		logging.Warn().Err(err).Msg("dashboard request failed")
	}
	logging.Info().
		Str("source", string(data.Source)).
		Int("servers", len(data.Aggregations.Servers)).
		Int("errors", len(data.Errors)).
		Msg("dashboard loaded")

	switch {
	case len(data.Errors) > 0:
		p.setStatus(fmt.Sprintf("%d request(s) failed: %v", len(data.Errors), data.Errors[0]), true)
	case data.Source == apiclient.SourceSample:
		p.setStatus("Aggregations unavailable, showing sample servers", false)
	default:
		p.setStatus("", false)
	}
}

func (p *DashboardPage) setStatus(s string, failed bool) {
	p.status, p.failed = s, failed
}

func (p *DashboardPage) signupsFocused() bool { return p.active == len(p.panels) }

func (p *DashboardPage) moveSelection(delta int) {
	if p.signupsFocused() {
		if delta < 0 {
			p.table.MoveUp(-delta)
		} else {
			p.table.MoveDown(delta)
		}
		return
	}
	n := p.panels[p.active].ItemCount(p.viewContext())
	if n == 0 {
		return
	}
	p.selections[p.active] = min(max(p.selections[p.active]+delta, 0), n-1)
}

// clampSelections keeps legend selections in range after the series
// change under a new filter.
func (p *DashboardPage) clampSelections() {
	ctx := p.viewContext()
	for i, panel := range p.panels {
		n := panel.ItemCount(ctx)
		p.selections[i] = min(p.selections[i], max(n-1, 0))
	}
}

func (p *DashboardPage) syncTable() {
	focused := p.signupsFocused()
	p.table.SetColumns(signupColumns(p.dash.SignupSort(), p.tableCol, focused))
	p.table.SetRows(signupRows(p.dash.Signups()))
	if focused {
		p.table.Focus()
	} else {
		p.table.Blur()
	}
}

func (p *DashboardPage) viewContext() ViewContext {
	w, h := p.size()
	return ViewContext{
		ContentWidth:  w,
		ContentHeight: h,
		Charts:        p.dash.Charts(),
		Filter:        p.dash.Filter(),
		Sessions:      p.dash.Sessions(),
		Products:      p.dash.Products(),
		Sources:       p.dash.Sources(),
		RangeDays:     p.dash.Range(),
		Loading:       p.loading,
	}
}

func (p *DashboardPage) size() (int, int) {
	w, h := p.width, p.height
	if w <= 0 {
		w = defaultWidth
	}
	if h <= 0 {
		h = defaultHeight
	}
	return w, h
}

type gridLayout struct {
	cols       int
	rows       int
	panelWidth int
	signupsTop int
}

func (p *DashboardPage) layout() gridLayout {
	w, _ := p.size()
	cols := min(max(w/minPanelWidth, 1), maxGridCols)
	rows := (len(p.panels) + cols - 1) / cols
	return gridLayout{
		cols:       cols,
		rows:       rows,
		panelWidth: w / cols,
		signupsTop: gridTop + rows*panelHeight,
	}
}

func (p *DashboardPage) View(width, height int) string {
	if width > 0 {
		p.width = width
	}
	if height > 0 {
		p.height = height
	}
	w, h := p.size()
	l := p.layout()
	ctx := p.viewContext()

	sections := []string{
		p.renderHeader(w),
		p.renderCards(w),
		p.renderGrid(ctx, l),
		p.renderSignups(w, h-l.signupsTop-footerLines),
		p.renderFooter(w),
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (p *DashboardPage) renderHeader(width int) string {
	left := fmt.Sprintf(" Fleetlens · %d servers · %s", p.dash.ServerCount(), p.sourceLabel())
	if f := p.dash.Filter(); f.Active() {
		left += "  " + badgeStyle.Render("Filter: "+f.String()+" ✕ (c)")
	}
	right := ""
	if p.loading {
		right = renderLoadingIndicator() + " "
	}
	pad := max(width-lipgloss.Width(left)-lipgloss.Width(right), 0)
	return headerStyle.Width(width).Render(left + strings.Repeat(" ", pad) + right)
}

func (p *DashboardPage) sourceLabel() string {
	if !p.dash.Loaded() {
		return "placeholder data"
	}
	switch p.dash.Source() {
	case apiclient.SourceAggregations:
		return "live"
	case apiclient.SourceSample:
		return "sample data"
	default:
		return "no server data"
	}
}

func (p *DashboardPage) renderCards(width int) string {
	cards := p.dash.Cards()
	cardW := max(width/len(cards)-2, 10)
	rendered := make([]string, len(cards))
	for i, c := range cards {
		body := cardTitleStyle.Render(c.Title) + "  " + cardValueStyle.Render(c.Value)
		rendered[i] = cardStyle.Width(cardW).Render(body)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
}

func (p *DashboardPage) renderGrid(ctx ViewContext, l gridLayout) string {
	if len(p.panels) == 0 {
		return "No panels registered"
	}
	rows := make([]string, 0, l.rows)
	for r := 0; r < l.rows; r++ {
		var tiles []string
		for c := 0; c < l.cols; c++ {
			idx := r*l.cols + c
			if idx >= len(p.panels) {
				break
			}
			tiles = append(tiles, p.panels[idx].Render(ctx, l.panelWidth, panelHeight, idx == p.active, p.selections[idx]))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, tiles...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (p *DashboardPage) renderSignups(width, height int) string {
	// Border, title and the header underline surround the table rows.
	p.table.SetHeight(max(height-3, 5))
	p.table.SetWidth(max(width-2, 20))

	title := "Recent signups"
	if s := p.dash.SignupSort(); s.Active {
		title += " · sorted by " + s.Column.String()
	}
	style := sectionStyle
	if p.signupsFocused() {
		style = activeSectionStyle
	}
	return style.Width(max(width-2, 1)).
		Render(lipgloss.JoinVertical(lipgloss.Left, chartTitleStyle.Render(title), p.table.View()))
}

func (p *DashboardPage) renderFooter(width int) string {
	status := p.status
	switch {
	case status == "":
	case p.failed:
		status = errorStyle.Render(status)
	default:
		status = statusStyle.Render(status)
	}
	p.help.Width = width
	return lipgloss.JoinVertical(lipgloss.Left, status, p.help.View(p.keys))
}
