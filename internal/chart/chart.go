// Package chart shapes grouped counts into label/dataset series ready for
// rendering. Every function here is pure.
package chart

import (
	"slices"

	"github.com/tinytelemetry/fleetlens/internal/model"
)

// Palette is the fixed colour cycle used by every chart.
var Palette = []string{
	"#60a5fa", "#3b82f6", "#2563eb", "#34d399",
	"#f59e0b", "#f97316", "#a78bfa", "#ef4444",
}

// ColorAt returns the palette colour for index i.
func ColorAt(i int) string {
	n := len(Palette)
	return Palette[((i%n)+n)%n]
}

// Dataset is one named run of values over a series' labels.
type Dataset struct {
	Label  string    `json:"label"`
	Data   []float64 `json:"data"`
	Colors []string  `json:"color"`
}

// Series is the chart-ready form of one aggregation.
type Series struct {
	Labels   []string  `json:"labels"`
	Datasets []Dataset `json:"datasets"`
}

// Total returns the sum of every value in every dataset.
func (s Series) Total() float64 {
	var total float64
	for _, ds := range s.Datasets {
		for _, v := range ds.Data {
			total += v
		}
	}
	return total
}

// Shape turns single-dimension counts into a one-dataset series, keeping
// row order. Colours follow the label index.
func Shape(rows []model.GroupCount, dim model.Dimension) Series {
	labels := make([]string, len(rows))
	data := make([]float64, len(rows))
	colors := make([]string, len(rows))
	for i, r := range rows {
		labels[i] = r.Value
		data[i] = float64(r.Count)
		colors[i] = ColorAt(i)
	}
	return Series{
		Labels:   labels,
		Datasets: []Dataset{{Label: string(dim), Data: data, Colors: colors}},
	}
}

// ShapeCrossTab turns region x os_release counts into a stacked series with
// regions as labels and one dataset per os_release, both sorted ascending.
func ShapeCrossTab(rows []model.CrossTabCount) Series {
	var regions, oses []string
	for _, r := range rows {
		regions = append(regions, r.Region)
		oses = append(oses, r.OSRelease)
	}
	return ShapeCrossTabAxes(rows, sortedUnique(regions), sortedUnique(oses))
}

// ShapeCrossTabAxes is ShapeCrossTab over fixed axes. Cells without a
// matching row are 0; rows outside the axes are ignored. Each dataset gets
// one colour, repeated for every label.
func ShapeCrossTabAxes(rows []model.CrossTabCount, regions, oses []string) Series {
	type cell struct{ region, os string }
	counts := make(map[cell]int64, len(rows))
	for _, r := range rows {
		counts[cell{r.Region, r.OSRelease}] += r.Count
	}

	datasets := make([]Dataset, len(oses))
	for j, os := range oses {
		data := make([]float64, len(regions))
		colors := make([]string, len(regions))
		for i, region := range regions {
			data[i] = float64(counts[cell{region, os}])
			colors[i] = ColorAt(j)
		}
		datasets[j] = Dataset{Label: os, Data: data, Colors: colors}
	}
	return Series{Labels: append([]string{}, regions...), Datasets: datasets}
}

func sortedUnique(values []string) []string {
	out := slices.Clone(values)
	slices.Sort(out)
	out = slices.Compact(out)
	if out == nil {
		out = []string{}
	}
	return out
}
