package tui

import (
	"fmt"
	"strings"

	"github.com/NimbleMarkets/ntcharts/barchart"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/tinytelemetry/fleetlens/internal/chart"
	"github.com/tinytelemetry/fleetlens/internal/crossfilter"
)

// Panel is one chart tile of the dashboard grid.
type Panel interface {
	ID() string
	Title(ctx ViewContext) string
	Render(ctx ViewContext, width, height int, active bool, selIdx int) string
	ItemCount(ctx ViewContext) int
	OnSelect(ctx ViewContext, selIdx int) tea.Cmd // returns nil or ActionMsg
}

// legendItem is one selectable row of a panel legend.
type legendItem struct {
	Label  string
	Value  float64
	Color  string
	Series bool // a stacked dataset rather than an axis label
}

// legendItems flattens s into legend rows. For stacked series the axis
// labels come first, followed by one row per dataset.
func legendItems(s chart.Series, stacked bool) []legendItem {
	items := make([]legendItem, 0, len(s.Labels)+len(s.Datasets))
	for i, label := range s.Labels {
		item := legendItem{Label: label, Color: chart.ColorAt(i)}
		for _, ds := range s.Datasets {
			if i < len(ds.Data) {
				item.Value += ds.Data[i]
			}
		}
		if !stacked && len(s.Datasets) > 0 && i < len(s.Datasets[0].Colors) {
			item.Color = s.Datasets[0].Colors[i]
		}
		if stacked {
			item.Color = string(ColorMuted)
		}
		items = append(items, item)
	}
	if !stacked {
		return items
	}
	for i, ds := range s.Datasets {
		item := legendItem{Label: ds.Label, Color: chart.ColorAt(i), Series: true}
		if len(ds.Colors) > 0 {
			item.Color = ds.Colors[0]
		}
		for _, v := range ds.Data {
			item.Value += v
		}
		items = append(items, item)
	}
	return items
}

// seriesPanel renders a series as bars with a selectable legend. Panels
// bound to a chart key turn a selection into a cross-filter click.
type seriesPanel struct {
	id     string
	title  string
	chart  crossfilter.ChartKey
	series func(ViewContext) chart.Series
}

// NewServerPanel returns the panel for one of the cross-filtered charts.
func NewServerPanel(key crossfilter.ChartKey, title string) Panel {
	return &seriesPanel{
		id:     string(key),
		title:  title,
		chart:  key,
		series: func(ctx ViewContext) chart.Series { return ctx.Charts.Get(key) },
	}
}

// NewStaticPanel returns a panel whose selection has no effect.
func NewStaticPanel(id, title string, series func(ViewContext) chart.Series) Panel {
	return &seriesPanel{id: id, title: title, series: series}
}

func (p *seriesPanel) ID() string                 { return p.id }
func (p *seriesPanel) Title(_ ViewContext) string { return p.title }

func (p *seriesPanel) stacked() bool { return p.chart == crossfilter.ChartStacked }

func (p *seriesPanel) items(ctx ViewContext) []legendItem {
	return legendItems(p.series(ctx), p.stacked())
}

func (p *seriesPanel) ItemCount(ctx ViewContext) int {
	return len(p.items(ctx))
}

func (p *seriesPanel) OnSelect(ctx ViewContext, selIdx int) tea.Cmd {
	if p.chart == "" {
		return nil
	}
	items := p.items(ctx)
	if selIdx < 0 || selIdx >= len(items) {
		return nil
	}
	item := items[selIdx]
	click := crossfilter.Click{Chart: p.chart, Label: item.Label, Value: item.Value}
	if item.Series {
		click = crossfilter.Click{Chart: p.chart, SeriesLabel: item.Label, Value: item.Value}
	}
	return actionMsg(ActionMsg{Action: ActionClick, Payload: click})
}

// filtered reports whether item is the active filter value of this panel.
func (p *seriesPanel) filtered(ctx ViewContext, item legendItem) bool {
	if p.chart == "" || !ctx.Filter.Active() {
		return false
	}
	var f crossfilter.Filter
	if item.Series {
		f, _ = crossfilter.Resolve(crossfilter.Click{Chart: p.chart, SeriesLabel: item.Label})
	} else {
		f, _ = crossfilter.Resolve(crossfilter.Click{Chart: p.chart, Label: item.Label})
	}
	return f == ctx.Filter
}

func (p *seriesPanel) Render(ctx ViewContext, width, height int, active bool, selIdx int) string {
	innerW, innerH := max(width-2, 1), max(height-2, 1)
	rows := bodyRows(height)
	items := p.items(ctx)

	var total float64
	for _, it := range items {
		if !it.Series {
			total += it.Value
		}
	}
	header := fmt.Sprintf("%s (%s)", p.title, humanize.Commaf(total))
	title := chartTitleStyle.Render(truncate(header, innerW))

	var body string
	switch {
	case len(items) == 0:
		body = helpStyle.Render("No data available")
	default:
		legendW := min(26, innerW/2)
		chartW := max(innerW-legendW-1, 4)
		bars := renderBars(p.series(ctx), p.stacked(), chartW, rows)
		legend := p.renderLegend(ctx, items, legendW, rows, active, selIdx)
		body = lipgloss.JoinHorizontal(lipgloss.Top,
			lipgloss.NewStyle().Width(chartW).Render(bars), " ", legend)
	}

	style := sectionStyle
	if active {
		style = activeSectionStyle
	}
	return style.Width(innerW).Height(innerH).
		Render(lipgloss.JoinVertical(lipgloss.Left, title, body))
}

func (p *seriesPanel) renderLegend(ctx ViewContext, items []legendItem, width, rows int, active bool, selIdx int) string {
	offset := legendOffset(selIdx, rows)
	lines := make([]string, 0, rows)
	for i := offset; i < len(items) && len(lines) < rows; i++ {
		it := items[i]
		marker := "■"
		if p.filtered(ctx, it) {
			marker = "●"
		}
		value := humanize.Commaf(it.Value)
		label := truncate(it.Label, max(width-len(value)-3, 1))
		pad := max(width-2-lipgloss.Width(label)-len(value), 1)
		text := label + strings.Repeat(" ", pad) + value
		if active && i == selIdx {
			text = selectedStyle.Render(text)
		}
		lines = append(lines, lipgloss.NewStyle().Foreground(lipgloss.Color(it.Color)).Render(marker)+" "+text)
	}
	return strings.Join(lines, "\n")
}

// sessionsPanel shows the sessions series for the selected range.
// Selecting it cycles the range.
type sessionsPanel struct{}

// NewSessionsPanel returns the sessions line-of-bars panel.
func NewSessionsPanel() Panel { return sessionsPanel{} }

func (sessionsPanel) ID() string { return "sessions" }

func (sessionsPanel) Title(ctx ViewContext) string {
	return fmt.Sprintf("Sessions · %dd", ctx.RangeDays)
}

func (sessionsPanel) ItemCount(_ ViewContext) int { return 1 }

func (sessionsPanel) OnSelect(_ ViewContext, _ int) tea.Cmd {
	return actionMsg(ActionMsg{Action: ActionCycleRange})
}

func (s sessionsPanel) Render(ctx ViewContext, width, height int, active bool, _ int) string {
	innerW, innerH := max(width-2, 1), max(height-2, 1)
	rows := bodyRows(height)

	series := ctx.Sessions
	var data []float64
	if len(series.Datasets) > 0 {
		data = series.Datasets[0].Data
	}

	leftTitle := s.Title(ctx)
	header := leftTitle
	if len(data) > 0 {
		lo, hi := data[0], data[0]
		for _, v := range data {
			lo, hi = min(lo, v), max(hi, v)
		}
		rightStats := fmt.Sprintf("Min: %s | Max: %s", humanize.Commaf(lo), humanize.Commaf(hi))
		if spacer := innerW - len(leftTitle) - len(rightStats); spacer > 0 {
			header = leftTitle + strings.Repeat(" ", spacer) + rightStats
		}
	}

	body := helpStyle.Render("No data available")
	if len(data) > 0 {
		body = renderBars(series, false, innerW, rows)
	}

	style := sectionStyle
	if active {
		style = activeSectionStyle
	}
	return style.Width(innerW).Height(innerH).
		Render(lipgloss.JoinVertical(lipgloss.Left, chartTitleStyle.Render(truncate(header, innerW)), body))
}

// renderBars draws s with ntcharts. Stacked series stack one segment per
// dataset on each label. Sequences wider than the chart keep their tail.
func renderBars(s chart.Series, stacked bool, width, height int) string {
	n := len(s.Labels)
	if n == 0 || height <= 0 {
		return ""
	}
	if maxBars := max(width/2, 1); n > maxBars {
		s = tail(s, maxBars)
		n = maxBars
	}

	var total float64
	for _, ds := range s.Datasets {
		for _, v := range ds.Data {
			total += v
		}
	}
	if total == 0 {
		return helpStyle.Render("No matching servers")
	}

	barWidth := max(1, min(6, (width+1)/n-1))
	bc := barchart.New(width, height,
		barchart.WithBarGap(1),
		barchart.WithBarWidth(barWidth),
		barchart.WithNoAxis(),
	)

	for i := range s.Labels {
		var values []barchart.BarValue
		for j, ds := range s.Datasets {
			if i >= len(ds.Data) || ds.Data[i] == 0 {
				continue
			}
			color := chart.ColorAt(i)
			switch {
			case stacked && len(ds.Colors) > 0:
				color = ds.Colors[0]
			case stacked:
				color = chart.ColorAt(j)
			case i < len(ds.Colors):
				color = ds.Colors[i]
			}
			values = append(values, barchart.BarValue{
				Name:  ds.Label,
				Value: ds.Data[i],
				Style: swatch(color),
			})
		}
		if len(values) == 0 {
			values = append(values, barchart.BarValue{Name: "EMPTY", Value: 0, Style: swatch(string(ColorGray))})
		}
		bc.Push(barchart.BarData{Label: "", Values: values})
	}

	bc.Draw()
	return bc.View()
}

// tail keeps the last n labels of s.
func tail(s chart.Series, n int) chart.Series {
	start := len(s.Labels) - n
	out := chart.Series{Labels: s.Labels[start:], Datasets: make([]chart.Dataset, len(s.Datasets))}
	for i, ds := range s.Datasets {
		out.Datasets[i] = chart.Dataset{Label: ds.Label, Data: ds.Data, Colors: ds.Colors}
		if len(ds.Data) >= len(s.Labels) {
			out.Datasets[i].Data = ds.Data[start:]
		}
		if len(ds.Colors) >= len(s.Labels) {
			out.Datasets[i].Colors = ds.Colors[start:]
		}
	}
	return out
}

// bodyRows is the number of content lines below a panel title.
func bodyRows(height int) int {
	return max(height-3, 1)
}

// legendOffset is the first legend row shown so that selIdx stays visible.
func legendOffset(selIdx, rows int) int {
	return max(0, selIdx-rows+1)
}

func truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	if width == 1 {
		return "…"
	}
	return string(r[:width-1]) + "…"
}
