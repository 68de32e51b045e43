package model

import "time"

// Shared defaults used by the server, seeder and TUI binaries.
const (
	DefaultAPIPort      = 3000
	DefaultPageSize     = 50
	DefaultQueryTimeout = 30 * time.Second
	DefaultRangeDays    = 30
)
