package duckdb

import (
	"context"
	"fmt"

	"github.com/tinytelemetry/fleetlens/internal/model"
)

// dimensionColumns maps every dimension to its servers column. Query text is
// only ever built from this table, never from request input.
var dimensionColumns = map[model.Dimension]string{
	model.DimOSRelease:  "os_release",
	model.DimServerType: "server_type",
	model.DimDepartment: "department",
	model.DimRegion:     "region",
}

func columnFor(dim model.Dimension) (string, error) {
	col, ok := dimensionColumns[dim]
	if !ok {
		return "", fmt.Errorf("unknown dimension %q", dim)
	}
	return col, nil
}

// GroupCounts returns the number of servers per value of dim, largest first.
// Empty or NULL values are reported as "Unknown".
func (s *Store) GroupCounts(ctx context.Context, dim model.Dimension) ([]model.GroupCount, error) {
	col, err := columnFor(dim)
	if err != nil {
		return nil, err
	}
	query := fmt.Sprintf(`
		SELECT COALESCE(NULLIF(%[1]s, ''), '%[2]s') AS v, COUNT(*) AS cnt
		FROM servers
		GROUP BY v
		ORDER BY cnt DESC, v ASC`, col, model.UnknownValue)

	results := []model.GroupCount{}
	err = s.read(ctx, "group_counts", func(ctx context.Context) error {
		rows, err := s.db.QueryContext(ctx, query)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var gc model.GroupCount
			if err := rows.Scan(&gc.Value, &gc.Count); err != nil {
				return fmt.Errorf("scan %s count: %w", col, err)
			}
			results = append(results, gc)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return results, nil
}

// CrossTab returns server counts per (region, os_release) pair.
func (s *Store) CrossTab(ctx context.Context) ([]model.CrossTabCount, error) {
	query := fmt.Sprintf(`
		SELECT COALESCE(NULLIF(region, ''), '%[1]s') AS r,
		       COALESCE(NULLIF(os_release, ''), '%[1]s') AS o,
		       COUNT(*) AS cnt
		FROM servers
		GROUP BY r, o
		ORDER BY r ASC, o ASC`, model.UnknownValue)

	results := []model.CrossTabCount{}
	err := s.read(ctx, "cross_tab", func(ctx context.Context) error {
		rows, err := s.db.QueryContext(ctx, query)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var c model.CrossTabCount
			if err := rows.Scan(&c.Region, &c.OSRelease, &c.Count); err != nil {
				return fmt.Errorf("scan cross-tab: %w", err)
			}
			results = append(results, c)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return results, nil
}

// ServerSample returns up to limit raw server rows ordered by id.
// limit is capped at model.SampleCap; limit <= 0 means the cap.
func (s *Store) ServerSample(ctx context.Context, limit int) ([]model.ServerRecord, error) {
	if limit <= 0 || limit > model.SampleCap {
		limit = model.SampleCap
	}
	const query = `
		SELECT id,
		       COALESCE(os_release, ''),
		       COALESCE(server_type, ''),
		       COALESCE(department, ''),
		       COALESCE(region, '')
		FROM servers
		ORDER BY id
		LIMIT ?`

	results := []model.ServerRecord{}
	err := s.read(ctx, "server_sample", func(ctx context.Context) error {
		rows, err := s.db.QueryContext(ctx, query, limit)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var r model.ServerRecord
			if err := rows.Scan(&r.ID, &r.OSRelease, &r.ServerType, &r.Department, &r.Region); err != nil {
				return fmt.Errorf("scan server: %w", err)
			}
			results = append(results, r)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return results, nil
}

// Aggregations runs the four group counts, the cross-tab and the sample.
// Any failing query fails the whole call.
func (s *Store) Aggregations(ctx context.Context) (model.Aggregations, error) {
	var agg model.Aggregations
	targets := []struct {
		dim model.Dimension
		dst *[]model.GroupCount
	}{
		{model.DimOSRelease, &agg.OS},
		{model.DimServerType, &agg.Type},
		{model.DimDepartment, &agg.Dept},
		{model.DimRegion, &agg.Region},
	}
	for _, t := range targets {
		rows, err := s.GroupCounts(ctx, t.dim)
		if err != nil {
			return model.Aggregations{}, err
		}
		*t.dst = rows
	}

	cross, err := s.CrossTab(ctx)
	if err != nil {
		return model.Aggregations{}, err
	}
	agg.OSByRegion = cross

	servers, err := s.ServerSample(ctx, model.SampleCap)
	if err != nil {
		return model.Aggregations{}, err
	}
	agg.Servers = servers
	return agg, nil
}
