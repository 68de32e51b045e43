package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/tinytelemetry/fleetlens/internal/chart"
	"github.com/tinytelemetry/fleetlens/internal/crossfilter"
)

func TestApp_RoutesToHelpAndBack(t *testing.T) {
	t.Parallel()

	dash := NewDashboardPage(DashboardConfig{})
	app := NewApp(dash, NewHelpPage())

	if got := app.ActivePage(); got != PageDashboard {
		t.Fatalf("active page = %q, want %q", got, PageDashboard)
	}

	app.Update(runes("?"))
	if got := app.ActivePage(); got != PageHelp {
		t.Fatalf("active page = %q, want %q", got, PageHelp)
	}
	if !strings.Contains(app.View(), "Keyboard shortcuts") {
		t.Error("help view missing title")
	}

	// q on the help page goes back instead of quitting.
	_, cmd := app.Update(runes("q"))
	if cmd != nil {
		t.Error("q on help page returned a command")
	}
	if got := app.ActivePage(); got != PageDashboard {
		t.Fatalf("active page = %q, want %q", got, PageDashboard)
	}
}

func TestApp_WindowSizeReachesHiddenPages(t *testing.T) {
	t.Parallel()

	dash := NewDashboardPage(DashboardConfig{})
	app := NewApp(NewHelpPage(), dash)

	app.Update(tea.WindowSizeMsg{Width: 90, Height: 30})
	if dash.width != 90 || dash.height != 30 {
		t.Errorf("dashboard size = %dx%d, want 90x30", dash.width, dash.height)
	}
}

func TestApp_QuitFromDashboard(t *testing.T) {
	t.Parallel()

	app := NewApp(NewDashboardPage(DashboardConfig{}))
	_, cmd := app.Update(runes("q"))
	if cmd == nil {
		t.Fatal("quit returned nil cmd")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("quit cmd did not produce QuitMsg")
	}
}

func TestLegendItems_Stacked(t *testing.T) {
	t.Parallel()

	s := chart.Series{
		Labels: []string{"APAC", "EMEA"},
		Datasets: []chart.Dataset{
			{Label: "AIX", Data: []float64{0, 1}, Colors: []string{"#111111", "#111111"}},
			{Label: "Linux", Data: []float64{1, 1}, Colors: []string{"#222222", "#222222"}},
		},
	}
	items := legendItems(s, true)
	if len(items) != 4 {
		t.Fatalf("items = %d, want 4", len(items))
	}
	if items[1].Label != "EMEA" || items[1].Value != 2 || items[1].Series {
		t.Errorf("items[1] = %+v", items[1])
	}
	if items[3].Label != "Linux" || items[3].Value != 2 || !items[3].Series || items[3].Color != "#222222" {
		t.Errorf("items[3] = %+v", items[3])
	}

	flat := legendItems(s, false)
	if len(flat) != 2 {
		t.Errorf("flat items = %d, want 2", len(flat))
	}
}

func TestServerPanel_OnSelect(t *testing.T) {
	t.Parallel()

	ctx := ViewContext{Charts: crossfilter.Recompute(testServers(), crossfilter.Filter{})}
	p := NewServerPanel(crossfilter.ChartDept, "Departments")

	if got := p.ItemCount(ctx); got != 2 {
		t.Fatalf("ItemCount = %d, want 2", got)
	}
	if p.OnSelect(ctx, 5) != nil {
		t.Error("out of range selection returned a command")
	}

	msg, ok := p.OnSelect(ctx, 1)().(ActionMsg)
	if !ok || msg.Action != ActionClick {
		t.Fatalf("msg = %#v, want click action", msg)
	}
	click := msg.Payload.(crossfilter.Click)
	if click.Label != "Ops" || click.Chart != crossfilter.ChartDept || click.Value != 1 {
		t.Errorf("click = %+v", click)
	}
}

func TestSeriesPanel_RenderEmptyAndZero(t *testing.T) {
	t.Parallel()

	p := NewServerPanel(crossfilter.ChartOS, "Operating systems")
	empty := p.Render(ViewContext{Charts: crossfilter.Recompute(nil, crossfilter.Filter{})}, 40, panelHeight, false, 0)
	if !strings.Contains(empty, "No data available") {
		t.Error("empty panel missing placeholder")
	}

	ctx := ViewContext{Charts: crossfilter.Recompute(testServers(), crossfilter.Filter{Key: "os_release", Value: "Solaris"})}
	stacked := NewServerPanel(crossfilter.ChartStacked, "OS by region").Render(ctx, 40, panelHeight, true, 0)
	if !strings.Contains(stacked, "No matching servers") {
		t.Error("all-zero stacked panel should say no matching servers")
	}
}

func TestSignupColumnAt(t *testing.T) {
	t.Parallel()

	tests := []struct {
		x    int
		want string
		ok   bool
	}{
		{0, "Name", true},
		{19, "Name", true},
		{20, "Email", true},
		{50, "Plan", true},
		{64, "Date", true},
		{200, "", false},
	}
	for _, tt := range tests {
		col, ok := signupColumnAt(tt.x)
		if ok != tt.ok || (ok && col.String() != tt.want) {
			t.Errorf("signupColumnAt(%d) = %v, %v; want %s, %v", tt.x, col, ok, tt.want, tt.ok)
		}
	}
}

func TestTruncate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in    string
		width int
		want  string
	}{
		{"Linux", 10, "Linux"},
		{"Enterprise", 5, "Ente…"},
		{"abc", 1, "…"},
		{"abc", 0, ""},
	}
	for _, tt := range tests {
		if got := truncate(tt.in, tt.width); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.width, got, tt.want)
		}
	}
}
