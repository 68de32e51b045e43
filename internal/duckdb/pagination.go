package duckdb

import (
	"context"
	"database/sql"
	"fmt"
	"slices"
	"strings"

	"github.com/tinytelemetry/fleetlens/internal/model"
)

// TableSpec describes one paginated table: its selected columns, ordering,
// page size ceiling and the columns a caller may filter on. When
// UnknownBucket is set, filters match empty or NULL values as
// model.UnknownValue, the same bucket GroupCounts reports them under.
type TableSpec struct {
	Name          string
	Columns       []string
	OrderBy       string
	MaxPageSize   int
	Filterable    []string
	UnknownBucket bool
}

// Known tables. Column and table names in generated SQL come only from here.
var (
	ServersTable = TableSpec{
		Name:          "servers",
		Columns:       []string{"id", "COALESCE(os_release, '')", "COALESCE(server_type, '')", "COALESCE(department, '')", "COALESCE(region, '')"},
		OrderBy:       "id",
		MaxPageSize:   100,
		Filterable:    []string{"os_release", "server_type", "department", "region"},
		UnknownBucket: true,
	}
	SessionsTable = TableSpec{
		Name:        "sessions",
		Columns:     []string{"id", "label", "value"},
		OrderBy:     "id",
		MaxPageSize: 200,
	}
	SignupsTable = TableSpec{
		Name:        "signups",
		Columns:     []string{"id", "name", "email", "plan", "CAST(signup_date AS VARCHAR)"},
		OrderBy:     "id",
		MaxPageSize: 200,
	}
)

var tableRegistry = map[string]TableSpec{
	ServersTable.Name:  ServersTable,
	SessionsTable.Name: SessionsTable,
	SignupsTable.Name:  SignupsTable,
}

// Table returns the registered spec for name.
func Table(name string) (TableSpec, bool) {
	spec, ok := tableRegistry[name]
	return spec, ok
}

// AllowsFilter reports whether key is an allow-listed filter column.
func (t TableSpec) AllowsFilter(key string) bool {
	return slices.Contains(t.Filterable, key)
}

// NormalizePageRequest clamps page and pageSize into range and drops the
// filter unless its key is allow-listed and its value is non-empty.
// A zero PageSize selects model.DefaultPageSize.
func NormalizePageRequest(spec TableSpec, req model.PageRequest) model.PageRequest {
	out := model.PageRequest{Page: req.Page, PageSize: req.PageSize}
	if out.Page < 1 {
		out.Page = 1
	}
	if out.PageSize == 0 {
		out.PageSize = model.DefaultPageSize
	}
	out.PageSize = max(1, min(out.PageSize, spec.MaxPageSize))

	if req.FilterKey != "" && req.FilterValue != "" && spec.AllowsFilter(req.FilterKey) {
		out.FilterKey = req.FilterKey
		out.FilterValue = req.FilterValue
	}
	return out
}

// LookupTable reports whether a registered table exists in the database.
// Unregistered names are an error.
func (s *Store) LookupTable(ctx context.Context, name string) (TableSpec, bool, error) {
	spec, ok := Table(name)
	if !ok {
		return TableSpec{}, false, fmt.Errorf("unknown table %q", name)
	}

	var found bool
	err := s.read(ctx, "lookup_table", func(ctx context.Context) error {
		var n int
		if err := s.db.QueryRowContext(ctx,
			"SELECT COUNT(*) FROM information_schema.tables WHERE table_name = ?", name,
		).Scan(&n); err != nil {
			return err
		}
		found = n > 0
		return nil
	})
	if err != nil {
		return TableSpec{}, false, err
	}
	return spec, found, nil
}

// listPage runs the count and data queries of one page with the same WHERE
// clause, scanning each row with scan. Pages past the end skip the data
// query and return no rows with the full total.
func listPage[T any](ctx context.Context, s *Store, spec TableSpec, req model.PageRequest, scan func(*sql.Rows) (T, error)) (model.Page[T], error) {
	req = NormalizePageRequest(spec, req)
	page := model.Page[T]{Page: req.Page, PageSize: req.PageSize, Data: []T{}}

	var where string
	var args []any
	if req.FilterKey != "" {
		if spec.UnknownBucket {
			where = fmt.Sprintf("WHERE COALESCE(NULLIF(%s, ''), '%s') = ?", req.FilterKey, model.UnknownValue)
		} else {
			where = fmt.Sprintf("WHERE %s = ?", req.FilterKey)
		}
		args = append(args, req.FilterValue)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM %s %s", spec.Name, where)
	dataQuery := fmt.Sprintf("SELECT %s FROM %s %s ORDER BY %s LIMIT ? OFFSET ?",
		strings.Join(spec.Columns, ", "), spec.Name, where, spec.OrderBy)

	err := s.read(ctx, "list_"+spec.Name, func(ctx context.Context) error {
		if err := s.db.QueryRowContext(ctx, countQuery, args...).Scan(&page.Total); err != nil {
			return err
		}

		size := int64(req.PageSize)
		if int64(req.Page-1) >= (page.Total+size-1)/size {
			return nil
		}
		dataArgs := append(slices.Clone(args), req.PageSize, (req.Page-1)*req.PageSize)

		rows, err := s.db.QueryContext(ctx, dataQuery, dataArgs...)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			item, err := scan(rows)
			if err != nil {
				return fmt.Errorf("scan %s: %w", spec.Name, err)
			}
			page.Data = append(page.Data, item)
		}
		return rows.Err()
	})
	if err != nil {
		return model.Page[T]{}, err
	}
	return page, nil
}

// listOptional lists an optional table, returning model.ErrTableAbsent when
// it has not been created.
func listOptional[T any](ctx context.Context, s *Store, name string, req model.PageRequest, scan func(*sql.Rows) (T, error)) (model.Page[T], error) {
	spec, found, err := s.LookupTable(ctx, name)
	if err != nil {
		return model.Page[T]{}, err
	}
	if !found {
		return model.Page[T]{}, fmt.Errorf("%s: %w", name, model.ErrTableAbsent)
	}
	return listPage(ctx, s, spec, req, scan)
}

// ListServers returns one page of servers, optionally filtered on one
// dimension column.
func (s *Store) ListServers(ctx context.Context, req model.PageRequest) (model.Page[model.ServerRecord], error) {
	return listPage(ctx, s, ServersTable, req, func(rows *sql.Rows) (model.ServerRecord, error) {
		var r model.ServerRecord
		err := rows.Scan(&r.ID, &r.OSRelease, &r.ServerType, &r.Department, &r.Region)
		return r, err
	})
}

// ListSessions returns one page of the sessions series.
func (s *Store) ListSessions(ctx context.Context, req model.PageRequest) (model.Page[model.Session], error) {
	return listOptional(ctx, s, SessionsTable.Name, req, func(rows *sql.Rows) (model.Session, error) {
		var r model.Session
		err := rows.Scan(&r.ID, &r.Label, &r.Value)
		return r, err
	})
}

// ListSignups returns one page of signups.
func (s *Store) ListSignups(ctx context.Context, req model.PageRequest) (model.Page[model.Signup], error) {
	return listOptional(ctx, s, SignupsTable.Name, req, func(rows *sql.Rows) (model.Signup, error) {
		var r model.Signup
		err := rows.Scan(&r.ID, &r.Name, &r.Email, &r.Plan, &r.Date)
		return r, err
	})
}
