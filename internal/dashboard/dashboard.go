// Package dashboard composes everything the dashboard shows: the loaded
// server sample behind the cross-filter, the sessions series with its range
// selector, the signups table and the summary cards.
package dashboard

import (
	"fmt"
	"slices"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/tinytelemetry/fleetlens/internal/apiclient"
	"github.com/tinytelemetry/fleetlens/internal/chart"
	"github.com/tinytelemetry/fleetlens/internal/crossfilter"
	"github.com/tinytelemetry/fleetlens/internal/logging"
	"github.com/tinytelemetry/fleetlens/internal/model"
)

// Ranges are the selectable session windows, in days.
var Ranges = []int{7, 30, 90}

// SessionsLabel names the single sessions dataset.
const SessionsLabel = "Sessions"

// Card is one headline figure.
type Card struct {
	Title string
	Value string
}

// SignupColumn is a sortable column of the signups table.
type SignupColumn int

const (
	ColName SignupColumn = iota
	ColEmail
	ColPlan
	ColDate
)

var signupColumnNames = []string{"Name", "Email", "Plan", "Date"}

func (c SignupColumn) String() string {
	if c < 0 || int(c) >= len(signupColumnNames) {
		return fmt.Sprintf("SignupColumn(%d)", int(c))
	}
	return signupColumnNames[c]
}

// SignupColumns lists the table columns in display order.
func SignupColumns() []SignupColumn {
	return []SignupColumn{ColName, ColEmail, ColPlan, ColDate}
}

// SignupSort is the signups table ordering. The zero value keeps load order.
type SignupSort struct {
	Column SignupColumn
	Desc   bool
	Active bool
}

// Dashboard is the client-side dashboard state. It is driven from a single
// event loop and is not safe for concurrent use.
type Dashboard struct {
	filter    *crossfilter.Controller
	source    apiclient.Source
	loaded    bool
	sessions  []model.Session
	rangeDays int
	signups   []model.Signup
	sort      SignupSort
	errs      []error
}

// New returns a dashboard showing placeholder data.
func New(rangeDays int) *Dashboard {
	d := &Dashboard{rangeDays: model.DefaultRangeDays}
	if err := d.SetRange(rangeDays); err != nil {
		logging.Warn().Err(err).Int("default", model.DefaultRangeDays).Msg("invalid range, using default")
	}
	d.apply(Placeholder())
	d.loaded = false
	return d
}

// Apply replaces the placeholders with loaded data. Sessions and signups
// that failed to load keep their current values.
func (d *Dashboard) Apply(data Data) {
	d.apply(data)
	d.loaded = true
}

func (d *Dashboard) apply(data Data) {
	d.filter = crossfilter.New(data.Aggregations.Servers, crossfilter.Baseline(data.Aggregations))
	d.source = data.Source
	if data.Sessions != nil {
		d.sessions = slices.Clone(data.Sessions)
	}
	if data.Signups != nil {
		d.signups = slices.Clone(data.Signups)
	}
	d.errs = data.Errors
}

// Loaded reports whether Apply has run.
func (d *Dashboard) Loaded() bool { return d.loaded }

// Source reports where the server data came from.
func (d *Dashboard) Source() apiclient.Source { return d.source }

// Errors returns the failures of the last load.
func (d *Dashboard) Errors() []error { return d.errs }

// Cards returns the headline figures.
func (d *Dashboard) Cards() []Card {
	return []Card{
		{Title: "Revenue", Value: "$" + humanize.Comma(placeholderRevenue)},
		{Title: "Users", Value: humanize.Comma(placeholderUsers)},
		{Title: "Conversion", Value: humanize.FtoaWithDigits(placeholderConversion, 1) + "%"},
		{Title: "Bounce", Value: humanize.Ftoa(placeholderBounce) + "%"},
	}
}

// Charts returns the five server charts under the active filter.
func (d *Dashboard) Charts() crossfilter.Charts { return d.filter.Charts() }

// Click forwards a chart click to the cross-filter.
func (d *Dashboard) Click(ev crossfilter.Click) crossfilter.Charts { return d.filter.Click(ev) }

// ClearFilter removes the active filter.
func (d *Dashboard) ClearFilter() crossfilter.Charts { return d.filter.Clear() }

// Filter returns the active filter.
func (d *Dashboard) Filter() crossfilter.Filter { return d.filter.Filter() }

// ServerCount returns the number of servers passing the active filter.
func (d *Dashboard) ServerCount() int { return len(d.filter.Filtered()) }

// Range returns the selected session window in days.
func (d *Dashboard) Range() int { return d.rangeDays }

// SetRange selects one of Ranges.
func (d *Dashboard) SetRange(days int) error {
	if !slices.Contains(Ranges, days) {
		return fmt.Errorf("unsupported range %d, want one of %v", days, Ranges)
	}
	d.rangeDays = days
	return nil
}

// CycleRange moves to the next range, wrapping around.
func (d *Dashboard) CycleRange() int {
	i := slices.Index(Ranges, d.rangeDays)
	d.rangeDays = Ranges[(i+1)%len(Ranges)]
	return d.rangeDays
}

// AllSessions returns the whole sessions series.
func (d *Dashboard) AllSessions() chart.Series {
	return sessionSeries(d.sessions)
}

// Sessions returns the last Range() points of the sessions series.
func (d *Dashboard) Sessions() chart.Series {
	start := max(0, len(d.sessions)-d.rangeDays)
	return sessionSeries(d.sessions[start:])
}

func sessionSeries(points []model.Session) chart.Series {
	labels := make([]string, len(points))
	data := make([]float64, len(points))
	colors := make([]string, len(points))
	for i, p := range points {
		labels[i] = p.Label
		data[i] = float64(p.Value)
		colors[i] = sessionsColor
	}
	return chart.Series{
		Labels:   labels,
		Datasets: []chart.Dataset{{Label: SessionsLabel, Data: data, Colors: colors}},
	}
}

// Products returns the static product sales series.
func (d *Dashboard) Products() chart.Series { return placeholderProducts() }

// Sources returns the static traffic source series.
func (d *Dashboard) Sources() chart.Series { return placeholderSources() }

// SignupSort returns the current table ordering.
func (d *Dashboard) SignupSort() SignupSort { return d.sort }

// SortSignups orders the table by col; choosing the current column again
// flips the direction.
func (d *Dashboard) SortSignups(col SignupColumn) SignupSort {
	if d.sort.Active && d.sort.Column == col {
		d.sort.Desc = !d.sort.Desc
	} else {
		d.sort = SignupSort{Column: col, Active: true}
	}
	return d.sort
}

// Signups returns the signups in table order.
func (d *Dashboard) Signups() []model.Signup {
	out := slices.Clone(d.signups)
	if !d.sort.Active {
		return out
	}
	field := signupField(d.sort.Column)
	slices.SortStableFunc(out, func(a, b model.Signup) int {
		c := strings.Compare(strings.ToLower(field(a)), strings.ToLower(field(b)))
		if d.sort.Desc {
			return -c
		}
		return c
	})
	return out
}

func signupField(col SignupColumn) func(model.Signup) string {
	switch col {
	case ColEmail:
		return func(s model.Signup) string { return s.Email }
	case ColPlan:
		return func(s model.Signup) string { return s.Plan }
	case ColDate:
		return func(s model.Signup) string { return s.Date }
	default:
		return func(s model.Signup) string { return s.Name }
	}
}
