package model

import (
	"errors"
	"fmt"
)

// UnknownValue is reported for servers with an empty dimension column.
const UnknownValue = "Unknown"

// SampleCap bounds the raw server sample returned alongside aggregations.
// Client-side re-aggregation under a filter only sees this many rows.
const SampleCap = 1000

var (
	// ErrStoreUnavailable reports that the backing store could not be opened
	// or a query against it failed.
	ErrStoreUnavailable = errors.New("store unavailable")

	// ErrTableAbsent reports that an optional table does not exist.
	ErrTableAbsent = errors.New("table absent")
)

// Dimension is one of the categorical attributes of a server record.
type Dimension string

const (
	DimOSRelease  Dimension = "os_release"
	DimServerType Dimension = "server_type"
	DimDepartment Dimension = "department"
	DimRegion     Dimension = "region"
)

// Dimensions returns all dimensions in display order.
func Dimensions() []Dimension {
	return []Dimension{DimOSRelease, DimServerType, DimDepartment, DimRegion}
}

// ParseDimension validates a raw dimension name.
func ParseDimension(s string) (Dimension, error) {
	for _, d := range Dimensions() {
		if string(d) == s {
			return d, nil
		}
	}
	return "", fmt.Errorf("unknown dimension %q", s)
}

// ServerRecord is one row of the server inventory.
// It is the canonical type for storage, transport and client-side filtering.
type ServerRecord struct {
	ID         int64  `json:"id"`
	OSRelease  string `json:"os_release"`
	ServerType string `json:"server_type"`
	Department string `json:"department"`
	Region     string `json:"region"`
}

// Value returns the record's value for dim, or UnknownValue when empty.
func (r ServerRecord) Value(dim Dimension) string {
	var v string
	switch dim {
	case DimOSRelease:
		v = r.OSRelease
	case DimServerType:
		v = r.ServerType
	case DimDepartment:
		v = r.Department
	case DimRegion:
		v = r.Region
	}
	if v == "" {
		return UnknownValue
	}
	return v
}

// GroupCount represents grouped counts by a single dimension value.
type GroupCount struct {
	Value string `json:"value"`
	Count int64  `json:"count"`
}

// CrossTabCount is one cell of the region x os_release breakdown.
type CrossTabCount struct {
	Region    string `json:"region"`
	OSRelease string `json:"os_release"`
	Count     int64  `json:"count"`
}

// Aggregations is the full payload of one aggregation request.
type Aggregations struct {
	OS         []GroupCount    `json:"os"`
	Type       []GroupCount    `json:"type"`
	Dept       []GroupCount    `json:"dept"`
	Region     []GroupCount    `json:"region"`
	OSByRegion []CrossTabCount `json:"os_by_region"`
	Servers    []ServerRecord  `json:"servers"`
}

// HasGroups reports whether the payload carries server-side group counts,
// as opposed to a raw sample only.
func (a Aggregations) HasGroups() bool {
	return a.OS != nil || a.Type != nil || a.Dept != nil || a.Region != nil || a.OSByRegion != nil
}

// Groups returns the single-dimension counts for dim.
func (a Aggregations) Groups(dim Dimension) []GroupCount {
	switch dim {
	case DimOSRelease:
		return a.OS
	case DimServerType:
		return a.Type
	case DimDepartment:
		return a.Dept
	case DimRegion:
		return a.Region
	}
	return nil
}

// Session is one point of the sessions series.
type Session struct {
	ID    int64  `json:"id,omitempty"`
	Label string `json:"label"`
	Value int64  `json:"value"`
}

// Signup is one row of the recent signups table.
type Signup struct {
	ID    int64  `json:"id,omitempty"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Plan  string `json:"plan"`
	Date  string `json:"date"`
}

// PageRequest holds raw pagination and filter parameters.
type PageRequest struct {
	Page        int
	PageSize    int
	FilterKey   string
	FilterValue string
}

// Page is the envelope shared by all paginated listings.
type Page[T any] struct {
	Page     int   `json:"page"`
	PageSize int   `json:"pageSize"`
	Total    int64 `json:"total"`
	Data     []T   `json:"data"`
}
