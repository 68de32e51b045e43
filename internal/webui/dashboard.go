// Package webui renders the dashboard charts as a server-side HTML page.
// Filtering works through the query string: every category is a link that
// toggles the filter it stands for.
package webui

import (
	"bytes"
	"fmt"
	"html"
	"io"
	"net/url"
	"strings"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"

	"github.com/tinytelemetry/fleetlens/internal/chart"
	"github.com/tinytelemetry/fleetlens/internal/crossfilter"
)

const (
	pageTitle   = "fleetlens"
	chartHeight = "320px"
)

var chartTitles = map[crossfilter.ChartKey]string{
	crossfilter.ChartOS:      "OS release",
	crossfilter.ChartType:    "Server type",
	crossfilter.ChartDept:    "Department",
	crossfilter.ChartRegion:  "Region",
	crossfilter.ChartStacked: "OS by region",
}

// View is everything the page shows.
type View struct {
	Charts crossfilter.Charts
	Filter crossfilter.Filter
	// Path is the dashboard URL path used to build filter links.
	Path string
	// Records is the number of servers behind the charts.
	Records int
	// Fallback marks a page built from generated sample data.
	Fallback bool
}

// Render writes the full HTML dashboard for v to w.
func Render(w io.Writer, v View) error {
	page := components.NewPage()
	page.PageTitle = pageTitle
	page.SetLayout(components.PageFlexLayout)
	page.AddCharts(
		pieChart(v, crossfilter.ChartOS),
		pieChart(v, crossfilter.ChartType),
		barChart(v, crossfilter.ChartDept),
		barChart(v, crossfilter.ChartRegion),
		stackedChart(v),
	)

	var buf bytes.Buffer
	if err := page.Render(&buf); err != nil {
		return fmt.Errorf("render dashboard: %w", err)
	}

	out := buf.String()
	nav := navigation(v)
	if i := strings.Index(out, "<body>"); i >= 0 {
		i += len("<body>")
		out = out[:i] + nav + out[i:]
	} else {
		out = nav + out
	}
	_, err := io.WriteString(w, out)
	return err
}

func globalOptions(title string) []charts.GlobalOpts {
	return []charts.GlobalOpts{
		charts.WithTitleOpts(opts.Title{Title: title}),
		charts.WithInitializationOpts(opts.Initialization{
			Theme:  types.ThemeWesteros,
			Width:  "100%",
			Height: chartHeight,
		}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Bottom: "0"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	}
}

func pieChart(v View, key crossfilter.ChartKey) *charts.Pie {
	s := v.Charts.Get(key)
	pie := charts.NewPie()
	pie.SetGlobalOptions(globalOptions(chartTitles[key])...)

	var data []opts.PieData
	if len(s.Datasets) > 0 {
		ds := s.Datasets[0]
		data = make([]opts.PieData, len(s.Labels))
		for i, label := range s.Labels {
			data[i] = opts.PieData{
				Name:      label,
				Value:     valueAt(ds.Data, i),
				ItemStyle: &opts.ItemStyle{Color: colorAt(ds.Colors, i)},
			}
		}
	}
	pie.AddSeries(string(key), data,
		charts.WithPieChartOpts(opts.PieChart{Radius: []string{"40%", "70%"}}))
	return pie
}

func barChart(v View, key crossfilter.ChartKey) *charts.Bar {
	s := v.Charts.Get(key)
	bar := charts.NewBar()
	bar.SetGlobalOptions(globalOptions(chartTitles[key])...)
	bar.SetXAxis(s.Labels)
	for _, ds := range s.Datasets {
		bar.AddSeries(ds.Label, barData(s.Labels, ds))
	}
	return bar
}

func stackedChart(v View) *charts.Bar {
	s := v.Charts.Stacked
	bar := charts.NewBar()
	bar.SetGlobalOptions(globalOptions(chartTitles[crossfilter.ChartStacked])...)
	bar.SetXAxis(s.Labels)
	for _, ds := range s.Datasets {
		bar.AddSeries(ds.Label, barData(s.Labels, ds),
			charts.WithBarChartOpts(opts.BarChart{Stack: "total"}))
	}
	return bar
}

func barData(labels []string, ds chart.Dataset) []opts.BarData {
	data := make([]opts.BarData, len(labels))
	for i, label := range labels {
		data[i] = opts.BarData{
			Name:      label,
			Value:     valueAt(ds.Data, i),
			ItemStyle: &opts.ItemStyle{Color: colorAt(ds.Colors, i)},
		}
	}
	return data
}

func valueAt(values []float64, i int) float64 {
	if i < len(values) {
		return values[i]
	}
	return 0
}

func colorAt(colors []string, i int) string {
	if i < len(colors) {
		return colors[i]
	}
	return chart.ColorAt(i)
}

// ToggleURL returns the link that applies f, or clears it when f is
// already active.
func ToggleURL(path string, active, f crossfilter.Filter) string {
	if path == "" {
		path = "/"
	}
	if f == active || !f.Active() {
		return path
	}
	q := url.Values{}
	q.Set("filterKey", string(f.Key))
	q.Set("filterValue", f.Value)
	return path + "?" + q.Encode()
}

// navigation renders the filter badge and per-chart filter links.
func navigation(v View) string {
	var b strings.Builder
	b.WriteString(`<nav class="fleetlens-filters" style="font-family:sans-serif;padding:8px 16px">`)

	fmt.Fprintf(&b, "<p>%d servers", v.Records)
	if v.Fallback {
		b.WriteString(" (sample data)")
	}
	b.WriteString("</p>")

	if v.Filter.Active() {
		fmt.Fprintf(&b, `<p>Filter: <strong>%s</strong> <a href="%s">clear</a></p>`,
			html.EscapeString(v.Filter.String()), html.EscapeString(ToggleURL(v.Path, v.Filter, crossfilter.Filter{})))
	}

	for _, key := range crossfilter.ChartKeys() {
		s := v.Charts.Get(key)
		fmt.Fprintf(&b, "<div><span>%s:</span>", html.EscapeString(chartTitles[key]))
		for _, label := range s.Labels {
			writeLink(&b, v, crossfilter.Click{Chart: key, Label: label}, label)
		}
		if key == crossfilter.ChartStacked {
			for _, ds := range s.Datasets {
				writeLink(&b, v, crossfilter.Click{Chart: key, SeriesLabel: ds.Label}, ds.Label)
			}
		}
		b.WriteString("</div>")
	}
	b.WriteString("</nav>")
	return b.String()
}

func writeLink(b *strings.Builder, v View, click crossfilter.Click, text string) {
	f, ok := crossfilter.Resolve(click)
	if !ok {
		return
	}
	weight := "normal"
	if f == v.Filter {
		weight = "bold"
	}
	fmt.Fprintf(b, ` <a style="font-weight:%s" href="%s">%s</a>`,
		weight, html.EscapeString(ToggleURL(v.Path, v.Filter, f)), html.EscapeString(text))
}
