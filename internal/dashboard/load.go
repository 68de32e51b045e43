package dashboard

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/tinytelemetry/fleetlens/internal/apiclient"
	"github.com/tinytelemetry/fleetlens/internal/model"
)

// Page sizes requested on load.
const (
	sessionsPageSize = 90
	signupsPageSize  = 50
)

// Fetcher is the subset of the API client used to load a dashboard.
type Fetcher interface {
	LoadServers(ctx context.Context) (model.Aggregations, apiclient.Source, error)
	Sessions(ctx context.Context, req model.PageRequest) (model.Page[model.Session], error)
	Signups(ctx context.Context, req model.PageRequest) (model.Page[model.Signup], error)
}

// Data is the result of one dashboard load. Nil Sessions or Signups mean
// the request failed and the current values should be kept.
type Data struct {
	Aggregations model.Aggregations
	Source       apiclient.Source
	Sessions     []model.Session
	Signups      []model.Signup
	Errors       []error
}

// Load issues the aggregation, sessions and signups requests concurrently.
// Each request is made once; failures are recorded in Data.Errors and never
// abort the others.
func Load(ctx context.Context, f Fetcher) Data {
	var (
		data Data
		mu   sync.Mutex
	)
	fail := func(what string, err error) {
		mu.Lock()
		defer mu.Unlock()
		data.Errors = append(data.Errors, fmt.Errorf("%s: %w", what, err))
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		agg, src, err := f.LoadServers(gctx)
		if err != nil {
			fail("servers", err)
		}
		data.Aggregations, data.Source = agg, src
		return nil
	})
	g.Go(func() error {
		page, err := f.Sessions(gctx, model.PageRequest{Page: 1, PageSize: sessionsPageSize})
		if err != nil {
			fail("sessions", err)
			return nil
		}
		data.Sessions = nonNil(page.Data)
		return nil
	})
	g.Go(func() error {
		page, err := f.Signups(gctx, model.PageRequest{Page: 1, PageSize: signupsPageSize})
		if err != nil {
			fail("signups", err)
			return nil
		}
		data.Signups = nonNil(page.Data)
		return nil
	})
	_ = g.Wait()
	return data
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
