package chart

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tinytelemetry/fleetlens/internal/model"
)

func TestColorAt_Cycles(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "#60a5fa", ColorAt(0))
	assert.Equal(t, "#ef4444", ColorAt(7))
	assert.Equal(t, "#60a5fa", ColorAt(8))
	assert.Equal(t, ColorAt(3), ColorAt(3+len(Palette)*4))
	assert.Equal(t, "#ef4444", ColorAt(-1))
}

func TestShape_KeepsRowOrder(t *testing.T) {
	t.Parallel()
	s := Shape([]model.GroupCount{{Value: "Linux", Count: 2}, {Value: "Windows", Count: 1}}, model.DimOSRelease)

	assert.Equal(t, []string{"Linux", "Windows"}, s.Labels)
	require.Len(t, s.Datasets, 1)
	assert.Equal(t, "os_release", s.Datasets[0].Label)
	assert.Equal(t, []float64{2, 1}, s.Datasets[0].Data)
	assert.Equal(t, []string{"#60a5fa", "#3b82f6"}, s.Datasets[0].Colors)
	assert.Equal(t, float64(3), s.Total())
}

func TestShape_ZeroRows(t *testing.T) {
	t.Parallel()
	s := Shape(nil, model.DimRegion)

	assert.NotNil(t, s.Labels)
	assert.Empty(t, s.Labels)
	require.Len(t, s.Datasets, 1)
	assert.NotNil(t, s.Datasets[0].Data)
	assert.Empty(t, s.Datasets[0].Data)
	assert.NotNil(t, s.Datasets[0].Colors)
	assert.Empty(t, s.Datasets[0].Colors)
}

func TestShapeCrossTab_DenseFill(t *testing.T) {
	t.Parallel()
	rows := []model.CrossTabCount{
		{Region: "EMEA", OSRelease: "Windows", Count: 4},
		{Region: "APAC", OSRelease: "Linux", Count: 2},
		{Region: "APAC", OSRelease: "AIX", Count: 1},
	}
	s := ShapeCrossTab(rows)

	assert.Equal(t, []string{"APAC", "EMEA"}, s.Labels)
	require.Len(t, s.Datasets, 3)

	assert.Equal(t, "AIX", s.Datasets[0].Label)
	assert.Equal(t, []float64{1, 0}, s.Datasets[0].Data)
	assert.Equal(t, "Linux", s.Datasets[1].Label)
	assert.Equal(t, []float64{2, 0}, s.Datasets[1].Data)
	assert.Equal(t, "Windows", s.Datasets[2].Label)
	assert.Equal(t, []float64{0, 4}, s.Datasets[2].Data)

	for j, ds := range s.Datasets {
		for _, c := range ds.Colors {
			assert.Equal(t, ColorAt(j), c, "dataset %s", ds.Label)
		}
	}
}

func TestShapeCrossTab_Empty(t *testing.T) {
	t.Parallel()
	s := ShapeCrossTab(nil)
	assert.NotNil(t, s.Labels)
	assert.Empty(t, s.Labels)
	assert.NotNil(t, s.Datasets)
	assert.Empty(t, s.Datasets)
}

func TestShapeCrossTabAxes_IgnoresRowsOutsideAxes(t *testing.T) {
	t.Parallel()
	rows := []model.CrossTabCount{
		{Region: "APAC", OSRelease: "Linux", Count: 2},
		{Region: "India", OSRelease: "Linux", Count: 9},
	}
	s := ShapeCrossTabAxes(rows, []string{"AMER", "APAC"}, []string{"Linux", "Windows"})

	assert.Equal(t, []string{"AMER", "APAC"}, s.Labels)
	assert.Equal(t, []float64{0, 2}, s.Datasets[0].Data)
	assert.Equal(t, []float64{0, 0}, s.Datasets[1].Data)
}

func TestShape_FreshSlices(t *testing.T) {
	t.Parallel()
	regions := []string{"APAC"}
	s := ShapeCrossTabAxes(nil, regions, []string{"Linux"})
	s.Labels[0] = "changed"
	assert.Equal(t, "APAC", regions[0])
}
