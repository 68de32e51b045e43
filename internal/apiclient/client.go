// Package apiclient talks to the fleetlens HTTP API.
package apiclient

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/tinytelemetry/fleetlens/internal/logging"
	"github.com/tinytelemetry/fleetlens/internal/model"
)

// ErrUnauthorized reports a 401 from the API.
var ErrUnauthorized = errors.New("unauthorized")

// StatusError is a non-2xx API response.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api status %d", e.Code)
	}
	return fmt.Sprintf("api status %d: %s", e.Code, e.Message)
}

// Unwrap maps 401 to ErrUnauthorized.
func (e *StatusError) Unwrap() error {
	if e.Code == http.StatusUnauthorized {
		return ErrUnauthorized
	}
	return nil
}

// Client is an HTTP client for one fleetlens server.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// New returns a client for baseURL. A zero timeout leaves requests bounded
// only by their context.
func New(baseURL, apiKey string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Source tells where loaded servers came from.
type Source string

const (
	SourceAggregations Source = "aggregations"
	SourceSample       Source = "sample"
	SourceEmpty        Source = "empty"
)

// Health calls /api/health.
func (c *Client) Health(ctx context.Context) error {
	var body struct {
		OK bool `json:"ok"`
	}
	if err := c.get(ctx, "/api/health", nil, &body); err != nil {
		return err
	}
	if !body.OK {
		return errors.New("health: server not ok")
	}
	return nil
}

// Aggregations fetches /api/aggregations.
func (c *Client) Aggregations(ctx context.Context) (model.Aggregations, error) {
	var agg model.Aggregations
	err := c.get(ctx, "/api/aggregations", nil, &agg)
	return agg, err
}

// ServersSample fetches /api/servers-sample.
func (c *Client) ServersSample(ctx context.Context) ([]model.ServerRecord, error) {
	var body struct {
		Servers []model.ServerRecord `json:"servers"`
	}
	if err := c.get(ctx, "/api/servers-sample", nil, &body); err != nil {
		return nil, err
	}
	return body.Servers, nil
}

// LoadServers fetches aggregations, falling back to the generated sample and
// then to an empty set. It never fails; the returned error, if any, is the
// last failure seen.
func (c *Client) LoadServers(ctx context.Context) (model.Aggregations, Source, error) {
	agg, err := c.Aggregations(ctx)
	if err == nil {
		return agg, SourceAggregations, nil
	}
	logging.Warn().Err(err).Msg("aggregations unavailable, loading sample")

	servers, sampleErr := c.ServersSample(ctx)
	if sampleErr == nil {
		return model.Aggregations{Servers: servers}, SourceSample, nil
	}
	logging.Warn().Err(sampleErr).Msg("sample unavailable")
	return model.Aggregations{Servers: []model.ServerRecord{}}, SourceEmpty, errors.Join(err, sampleErr)
}

// Servers fetches one page of /api/servers.
func (c *Client) Servers(ctx context.Context, req model.PageRequest) (model.Page[model.ServerRecord], error) {
	var page model.Page[model.ServerRecord]
	q := pageQuery(req)
	if req.FilterKey != "" {
		q.Set("filterKey", req.FilterKey)
		q.Set("filterValue", req.FilterValue)
	}
	err := c.get(ctx, "/api/servers", q, &page)
	return page, err
}

// Sessions fetches one page of /api/sessions.
func (c *Client) Sessions(ctx context.Context, req model.PageRequest) (model.Page[model.Session], error) {
	var page model.Page[model.Session]
	err := c.get(ctx, "/api/sessions", pageQuery(req), &page)
	return page, err
}

// Signups fetches one page of /api/signups.
func (c *Client) Signups(ctx context.Context, req model.PageRequest) (model.Page[model.Signup], error) {
	var page model.Page[model.Signup]
	err := c.get(ctx, "/api/signups", pageQuery(req), &page)
	return page, err
}

func pageQuery(req model.PageRequest) url.Values {
	q := url.Values{}
	if req.Page > 0 {
		q.Set("page", strconv.Itoa(req.Page))
	}
	if req.PageSize > 0 {
		q.Set("pageSize", strconv.Itoa(req.PageSize))
	}
	return q
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return fmt.Errorf("build request %s: %w", path, err)
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("GET %s: %w", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if resp.StatusCode != http.StatusOK {
		var apiErr struct {
			Error string `json:"error"`
		}
		_ = json.Unmarshal(body, &apiErr)
		return fmt.Errorf("GET %s: %w", path, &StatusError{Code: resp.StatusCode, Message: apiErr.Error})
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}
