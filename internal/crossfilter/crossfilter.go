// Package crossfilter holds the single active (dimension, value) filter that
// restricts every chart on the dashboard, and recomputes the chart series
// from the raw server sample whenever it changes.
package crossfilter

import (
	"slices"

	"github.com/tinytelemetry/fleetlens/internal/chart"
	"github.com/tinytelemetry/fleetlens/internal/model"
)

// ChartKey identifies one of the dashboard charts.
type ChartKey string

const (
	ChartOS      ChartKey = "os"
	ChartType    ChartKey = "type"
	ChartDept    ChartKey = "dept"
	ChartRegion  ChartKey = "region"
	ChartStacked ChartKey = "stacked"
)

// ChartKeys returns every chart in display order.
func ChartKeys() []ChartKey {
	return []ChartKey{ChartOS, ChartType, ChartDept, ChartRegion, ChartStacked}
}

// Dimension returns the dimension a single-dimension chart is bound to.
// The stacked chart has no single binding.
func (k ChartKey) Dimension() (model.Dimension, bool) {
	switch k {
	case ChartOS:
		return model.DimOSRelease, true
	case ChartType:
		return model.DimServerType, true
	case ChartDept:
		return model.DimDepartment, true
	case ChartRegion:
		return model.DimRegion, true
	}
	return "", false
}

// Filter is the active filter. The zero value means unfiltered.
type Filter struct {
	Key   model.Dimension `json:"key,omitempty"`
	Value string          `json:"value,omitempty"`
}

// Active reports whether f restricts anything.
func (f Filter) Active() bool {
	return f.Key != "" && f.Value != ""
}

// Matches reports whether r passes f. Every record passes an inactive filter.
func (f Filter) Matches(r model.ServerRecord) bool {
	if !f.Active() {
		return true
	}
	return r.Value(f.Key) == f.Value
}

func (f Filter) String() string {
	if !f.Active() {
		return ""
	}
	return string(f.Key) + " = " + f.Value
}

// ParseFilter builds a filter from raw key/value strings, such as query
// parameters. An unknown key or an empty value yields the zero filter.
func ParseFilter(key, value string) Filter {
	dim, err := model.ParseDimension(key)
	if err != nil || value == "" {
		return Filter{}
	}
	return Filter{Key: dim, Value: value}
}

// Click is the canonical chart click event. Label is the category under
// the pointer; SeriesLabel is the dataset label when the click landed on a
// stacked segment rather than an axis label.
type Click struct {
	Chart       ChartKey
	Label       string
	SeriesLabel string
	Value       float64
}

// Resolve maps a click to the filter it selects. ok is false when the click
// carries no usable value.
func Resolve(c Click) (f Filter, ok bool) {
	switch {
	case c.Chart == ChartStacked && c.SeriesLabel != "":
		f = Filter{Key: model.DimOSRelease, Value: c.SeriesLabel}
	case c.Chart == ChartStacked:
		f = Filter{Key: model.DimRegion, Value: c.Label}
	default:
		dim, bound := c.Chart.Dimension()
		if !bound {
			return Filter{}, false
		}
		f = Filter{Key: dim, Value: c.Label}
	}
	return f, f.Active()
}

// Charts holds the five dashboard series.
type Charts struct {
	OS      chart.Series `json:"os"`
	Type    chart.Series `json:"type"`
	Dept    chart.Series `json:"dept"`
	Region  chart.Series `json:"region"`
	Stacked chart.Series `json:"stacked"`
}

// Get returns the series for key.
func (c Charts) Get(key ChartKey) chart.Series {
	switch key {
	case ChartOS:
		return c.OS
	case ChartType:
		return c.Type
	case ChartDept:
		return c.Dept
	case ChartRegion:
		return c.Region
	case ChartStacked:
		return c.Stacked
	}
	return chart.Series{}
}

// Baseline shapes server-side aggregates into charts. It returns nil when
// agg only carries a raw sample.
func Baseline(agg model.Aggregations) *Charts {
	if !agg.HasGroups() {
		return nil
	}
	return &Charts{
		OS:      chart.Shape(agg.OS, model.DimOSRelease),
		Type:    chart.Shape(agg.Type, model.DimServerType),
		Dept:    chart.Shape(agg.Dept, model.DimDepartment),
		Region:  chart.Shape(agg.Region, model.DimRegion),
		Stacked: chart.ShapeCrossTab(agg.OSByRegion),
	}
}

// Recompute builds all five series from records restricted by f. Single
// dimension counts keep first-seen order. The stacked chart keeps the
// region and os_release axes of the whole record set so they do not move
// as the filter changes.
func Recompute(records []model.ServerRecord, f Filter) Charts {
	filtered := Apply(records, f)

	var regions, oses []string
	for _, r := range records {
		regions = append(regions, r.Value(model.DimRegion))
		oses = append(oses, r.Value(model.DimOSRelease))
	}
	regions = sortedUnique(regions)
	oses = sortedUnique(oses)

	return Charts{
		OS:      chart.Shape(CountBy(filtered, model.DimOSRelease), model.DimOSRelease),
		Type:    chart.Shape(CountBy(filtered, model.DimServerType), model.DimServerType),
		Dept:    chart.Shape(CountBy(filtered, model.DimDepartment), model.DimDepartment),
		Region:  chart.Shape(CountBy(filtered, model.DimRegion), model.DimRegion),
		Stacked: chart.ShapeCrossTabAxes(CrossTab(filtered), regions, oses),
	}
}

// Apply returns the records passing f, in input order.
func Apply(records []model.ServerRecord, f Filter) []model.ServerRecord {
	out := make([]model.ServerRecord, 0, len(records))
	for _, r := range records {
		if f.Matches(r) {
			out = append(out, r)
		}
	}
	return out
}

// CountBy counts records per value of dim in first-seen order.
func CountBy(records []model.ServerRecord, dim model.Dimension) []model.GroupCount {
	index := map[string]int{}
	out := []model.GroupCount{}
	for _, r := range records {
		v := r.Value(dim)
		i, ok := index[v]
		if !ok {
			i = len(out)
			index[v] = i
			out = append(out, model.GroupCount{Value: v})
		}
		out[i].Count++
	}
	return out
}

// CrossTab counts records per (region, os_release) pair in first-seen order.
func CrossTab(records []model.ServerRecord) []model.CrossTabCount {
	type cell struct{ region, os string }
	index := map[cell]int{}
	out := []model.CrossTabCount{}
	for _, r := range records {
		c := cell{r.Value(model.DimRegion), r.Value(model.DimOSRelease)}
		i, ok := index[c]
		if !ok {
			i = len(out)
			index[c] = i
			out = append(out, model.CrossTabCount{Region: c.region, OSRelease: c.os})
		}
		out[i].Count++
	}
	return out
}

func sortedUnique(values []string) []string {
	slices.Sort(values)
	return slices.Compact(values)
}
