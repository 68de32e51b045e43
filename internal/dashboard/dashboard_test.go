package dashboard

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tinytelemetry/fleetlens/internal/apiclient"
	"github.com/tinytelemetry/fleetlens/internal/crossfilter"
	"github.com/tinytelemetry/fleetlens/internal/logging"
	"github.com/tinytelemetry/fleetlens/internal/model"
)

type stubFetcher struct {
	agg         model.Aggregations
	source      apiclient.Source
	serversErr  error
	sessions    []model.Session
	sessionsErr error
	signups     []model.Signup
	signupsErr  error
}

func (s stubFetcher) LoadServers(context.Context) (model.Aggregations, apiclient.Source, error) {
	return s.agg, s.source, s.serversErr
}

func (s stubFetcher) Sessions(context.Context, model.PageRequest) (model.Page[model.Session], error) {
	return model.Page[model.Session]{Data: s.sessions}, s.sessionsErr
}

func (s stubFetcher) Signups(context.Context, model.PageRequest) (model.Page[model.Signup], error) {
	return model.Page[model.Signup]{Data: s.signups}, s.signupsErr
}

func sessions(n int) []model.Session {
	out := make([]model.Session, n)
	for i := range out {
		out[i] = model.Session{Label: "D" + string(rune('a'+i%26)), Value: int64(i + 1)}
	}
	return out
}

func TestNew_ShowsPlaceholders(t *testing.T) {
	t.Parallel()
	d := New(30)

	assert.False(t, d.Loaded())
	assert.Equal(t, 30, d.Range())
	require.Len(t, d.Signups(), 3)
	assert.Equal(t, "Alice J", d.Signups()[0].Name)
	assert.Len(t, d.AllSessions().Labels, 30)
	assert.Equal(t, 0, d.ServerCount())
}

func TestNew_InvalidRangeUsesDefault(t *testing.T) {
	var buf bytes.Buffer
	logging.Init(logging.Config{Level: "warn", Output: &buf})
	t.Cleanup(func() { logging.Init(logging.Config{}) })

	assert.Equal(t, model.DefaultRangeDays, New(12).Range())
	assert.Contains(t, buf.String(), "invalid range, using default")
	assert.Contains(t, buf.String(), "unsupported range 12")

	buf.Reset()
	New(7)
	assert.Empty(t, buf.String())
}

func TestCards(t *testing.T) {
	t.Parallel()
	cards := New(30).Cards()
	assert.Equal(t, []Card{
		{Title: "Revenue", Value: "$125,430"},
		{Title: "Users", Value: "8,421"},
		{Title: "Conversion", Value: "4.2%"},
		{Title: "Bounce", Value: "36%"},
	}, cards)
}

func TestLoad_AllSucceed(t *testing.T) {
	t.Parallel()
	f := stubFetcher{
		agg:      model.Aggregations{Servers: []model.ServerRecord{{ID: 1, OSRelease: "Linux", Region: "APAC"}}},
		source:   apiclient.SourceSample,
		sessions: sessions(5),
		signups:  []model.Signup{{Name: "Zed"}},
	}
	data := Load(context.Background(), f)

	assert.Empty(t, data.Errors)
	assert.Equal(t, apiclient.SourceSample, data.Source)
	assert.Len(t, data.Sessions, 5)
	assert.Len(t, data.Signups, 1)

	d := New(7)
	d.Apply(data)
	assert.True(t, d.Loaded())
	assert.Equal(t, 1, d.ServerCount())
	assert.Equal(t, []string{"Linux"}, d.Charts().OS.Labels)
}

func TestLoad_PartialFailureKeepsPlaceholders(t *testing.T) {
	t.Parallel()
	f := stubFetcher{
		agg:        model.Aggregations{Servers: []model.ServerRecord{}},
		source:     apiclient.SourceEmpty,
		serversErr: errors.New("down"),
		sessions:   sessions(3),
		signupsErr: apiclient.ErrUnauthorized,
	}
	data := Load(context.Background(), f)
	require.Len(t, data.Errors, 2)
	assert.Nil(t, data.Signups)

	d := New(30)
	d.Apply(data)
	assert.Len(t, d.Signups(), 3, "placeholder signups kept")
	assert.Len(t, d.AllSessions().Labels, 3)
	assert.Len(t, d.Errors(), 2)
}

func TestSessionsRange(t *testing.T) {
	t.Parallel()
	d := New(30)
	d.Apply(Data{Sessions: sessions(30)})

	require.NoError(t, d.SetRange(7))
	s := d.Sessions()
	require.Len(t, s.Labels, 7)
	assert.Equal(t, []float64{24, 25, 26, 27, 28, 29, 30}, s.Datasets[0].Data)
	assert.Equal(t, SessionsLabel, s.Datasets[0].Label)

	require.NoError(t, d.SetRange(90))
	assert.Len(t, d.Sessions().Labels, 30)

	assert.Error(t, d.SetRange(14))
	assert.Equal(t, 90, d.Range())
}

func TestCycleRange(t *testing.T) {
	t.Parallel()
	d := New(7)
	assert.Equal(t, 30, d.CycleRange())
	assert.Equal(t, 90, d.CycleRange())
	assert.Equal(t, 7, d.CycleRange())
}

func TestSortSignups(t *testing.T) {
	t.Parallel()
	d := New(30)
	d.Apply(Data{Signups: []model.Signup{
		{Name: "bob", Plan: "Pro", Date: "2025-01-02"},
		{Name: "Alice", Plan: "Basic", Date: "2025-01-03"},
		{Name: "carl", Plan: "Enterprise", Date: "2025-01-01"},
	}})

	names := func() []string {
		var out []string
		for _, s := range d.Signups() {
			out = append(out, s.Name)
		}
		return out
	}
	assert.Equal(t, []string{"bob", "Alice", "carl"}, names(), "load order before sorting")

	d.SortSignups(ColName)
	assert.Equal(t, []string{"Alice", "bob", "carl"}, names())

	sort := d.SortSignups(ColName)
	assert.True(t, sort.Desc)
	assert.Equal(t, []string{"carl", "bob", "Alice"}, names())

	sort = d.SortSignups(ColDate)
	assert.False(t, sort.Desc)
	assert.Equal(t, []string{"carl", "bob", "Alice"}, names())
}

func TestClickAndClear(t *testing.T) {
	t.Parallel()
	d := New(30)
	d.Apply(Data{Aggregations: model.Aggregations{Servers: []model.ServerRecord{
		{ID: 1, OSRelease: "Linux", Region: "APAC"},
		{ID: 2, OSRelease: "AIX", Region: "EMEA"},
	}}})

	d.Click(crossfilter.Click{Chart: crossfilter.ChartStacked, Label: "EMEA"})
	assert.Equal(t, crossfilter.Filter{Key: model.DimRegion, Value: "EMEA"}, d.Filter())
	assert.Equal(t, 1, d.ServerCount())

	d.ClearFilter()
	assert.False(t, d.Filter().Active())
	assert.Equal(t, 2, d.ServerCount())
}

func TestExportCSV(t *testing.T) {
	t.Parallel()
	d := New(7)
	d.Apply(Data{
		Signups: []model.Signup{
			{Name: `Dana "DJ" K`, Email: "dana@example.com", Plan: "Pro", Date: "2025-12-10"},
			{Name: "Eve, L", Email: "eve@example.com", Plan: "Basic", Date: "2025-12-11"},
		},
		Sessions: []model.Session{{Label: "Day 1", Value: 400}, {Label: "Day 2", Value: 512}},
	})

	var buf bytes.Buffer
	require.NoError(t, d.ExportCSV(&buf))

	want := strings.Join([]string{
		"Recent signups",
		"Name,Email,Plan,Date",
		`"Dana ""DJ"" K","dana@example.com","Pro","2025-12-10"`,
		`"Eve, L","eve@example.com","Basic","2025-12-11"`,
		"",
		"Sessions",
		"Label,Day 1,Day 2",
		"Sessions,400,512",
	}, "\n")
	assert.Equal(t, want, buf.String())
}

func TestExportCSV_FollowsTableOrder(t *testing.T) {
	t.Parallel()
	d := New(30)
	d.Apply(Data{Signups: []model.Signup{{Name: "b"}, {Name: "a"}}, Sessions: []model.Session{}})
	d.SortSignups(ColName)

	var buf bytes.Buffer
	require.NoError(t, d.ExportCSV(&buf))
	lines := strings.Split(buf.String(), "\n")
	assert.True(t, strings.HasPrefix(lines[2], `"a"`))
	assert.Equal(t, "Label", lines[len(lines)-2])
	assert.Equal(t, "Sessions", lines[len(lines)-1])
}

func TestWriteExportFile(t *testing.T) {
	t.Parallel()
	dir := filepath.Join(t.TempDir(), "exports")
	d := New(30)

	path, err := d.WriteExportFile(dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, ExportFileName), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "Recent signups\nName,Email,Plan,Date\n"))
}

func TestPlaceholderSeries(t *testing.T) {
	t.Parallel()
	d := New(30)
	assert.Equal(t, []string{"Basic", "Pro", "Enterprise"}, d.Products().Labels)
	assert.Equal(t, float64(100), d.Sources().Total())
}
