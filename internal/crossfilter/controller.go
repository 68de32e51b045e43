package crossfilter

import (
	"slices"

	"github.com/tinytelemetry/fleetlens/internal/model"
)

// Controller owns the active filter and the charts derived from it.
// It is not safe for concurrent use; callers drive it from one event loop.
type Controller struct {
	records  []model.ServerRecord
	baseline *Charts
	filter   Filter
	charts   Charts
}

// New returns an unfiltered controller over records. When baseline is
// non-nil it is shown whenever no filter is active.
func New(records []model.ServerRecord, baseline *Charts) *Controller {
	c := &Controller{
		records:  slices.Clone(records),
		baseline: baseline,
	}
	c.recompute()
	return c
}

// Click applies a chart click: a new pair replaces the filter, the active
// pair toggles it off, and a click without a value changes nothing.
func (c *Controller) Click(ev Click) Charts {
	next, ok := Resolve(ev)
	if !ok {
		return c.charts
	}
	if next == c.filter {
		next = Filter{}
	}
	return c.Set(next)
}

// Set replaces the active filter.
func (c *Controller) Set(f Filter) Charts {
	if !f.Active() {
		f = Filter{}
	}
	c.filter = f
	c.recompute()
	return c.charts
}

// Clear removes the active filter.
func (c *Controller) Clear() Charts {
	return c.Set(Filter{})
}

// Filter returns the active filter.
func (c *Controller) Filter() Filter {
	return c.filter
}

// Charts returns the current series.
func (c *Controller) Charts() Charts {
	return c.charts
}

// Filtered returns the records passing the active filter.
func (c *Controller) Filtered() []model.ServerRecord {
	return Apply(c.records, c.filter)
}

// Records returns the full record set.
func (c *Controller) Records() []model.ServerRecord {
	return slices.Clone(c.records)
}

func (c *Controller) recompute() {
	if !c.filter.Active() && c.baseline != nil {
		c.charts = *c.baseline
		return
	}
	c.charts = Recompute(c.records, c.filter)
}
