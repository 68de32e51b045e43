package model

import "context"

// AggregationQuerier provides the read-only group-by queries over servers.
type AggregationQuerier interface {
	GroupCounts(ctx context.Context, dim Dimension) ([]GroupCount, error)
	CrossTab(ctx context.Context) ([]CrossTabCount, error)
	ServerSample(ctx context.Context, limit int) ([]ServerRecord, error)
	Aggregations(ctx context.Context) (Aggregations, error)
}

// PageLister provides offset/limit listings over the known tables.
type PageLister interface {
	ListServers(ctx context.Context, req PageRequest) (Page[ServerRecord], error)
	ListSessions(ctx context.Context, req PageRequest) (Page[Session], error)
	ListSignups(ctx context.Context, req PageRequest) (Page[Signup], error)
}

// ReadAPI is the unified read contract for read surfaces (HTTP and HTML).
type ReadAPI interface {
	AggregationQuerier
	PageLister
}

// ServerWriter provides the append-only writes used by the seeder.
type ServerWriter interface {
	InsertServers(ctx context.Context, records []ServerRecord) error
}
