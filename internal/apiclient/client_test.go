package apiclient

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tinytelemetry/fleetlens/internal/model"
)

func serve(t *testing.T, routes map[string]http.HandlerFunc) *Client {
	t.Helper()
	mux := http.NewServeMux()
	for path, h := range routes {
		mux.HandleFunc(path, h)
	}
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return New(srv.URL+"/", "secret", 2*time.Second)
}

func reply(status int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}
}

func TestLoadServers_Aggregations(t *testing.T) {
	t.Parallel()
	c := serve(t, map[string]http.HandlerFunc{
		"/api/aggregations": reply(200, `{"os":[{"value":"Linux","count":1}],"type":[],"dept":[],"region":[],"os_by_region":[],"servers":[{"id":1,"os_release":"Linux","server_type":"VM","department":"IT","region":"APAC"}]}`),
	})

	agg, src, err := c.LoadServers(context.Background())
	require.NoError(t, err)
	assert.Equal(t, SourceAggregations, src)
	assert.True(t, agg.HasGroups())
	assert.Equal(t, []model.GroupCount{{Value: "Linux", Count: 1}}, agg.OS)
	require.Len(t, agg.Servers, 1)
	assert.Equal(t, "APAC", agg.Servers[0].Region)
}

func TestLoadServers_FallsBackToSample(t *testing.T) {
	t.Parallel()
	c := serve(t, map[string]http.HandlerFunc{
		"/api/aggregations":   reply(500, `{"error":"store unavailable"}`),
		"/api/servers-sample": reply(200, `{"servers":[{"id":1,"os_release":"AIX","server_type":"VM","department":"IT","region":"India"}]}`),
	})

	agg, src, err := c.LoadServers(context.Background())
	require.NoError(t, err)
	assert.Equal(t, SourceSample, src)
	assert.False(t, agg.HasGroups())
	require.Len(t, agg.Servers, 1)
	assert.Equal(t, "AIX", agg.Servers[0].OSRelease)
}

func TestLoadServers_FallsBackToEmpty(t *testing.T) {
	t.Parallel()
	c := serve(t, map[string]http.HandlerFunc{})

	agg, src, err := c.LoadServers(context.Background())
	assert.Error(t, err)
	assert.Equal(t, SourceEmpty, src)
	assert.NotNil(t, agg.Servers)
	assert.Empty(t, agg.Servers)
}

func TestSessions_SendsKeyAndPaging(t *testing.T) {
	t.Parallel()
	var gotKey, gotPage, gotSize string
	c := serve(t, map[string]http.HandlerFunc{
		"/api/sessions": func(w http.ResponseWriter, r *http.Request) {
			gotKey = r.Header.Get("X-API-Key")
			gotPage = r.URL.Query().Get("page")
			gotSize = r.URL.Query().Get("pageSize")
			reply(200, `{"page":1,"pageSize":200,"total":1,"data":[{"label":"Day 1","value":500}]}`)(w, r)
		},
	})

	page, err := c.Sessions(context.Background(), model.PageRequest{Page: 1, PageSize: 200})
	require.NoError(t, err)
	assert.Equal(t, "secret", gotKey)
	assert.Equal(t, "1", gotPage)
	assert.Equal(t, "200", gotSize)
	assert.Equal(t, []model.Session{{Label: "Day 1", Value: 500}}, page.Data)
}

func TestServers_SendsFilter(t *testing.T) {
	t.Parallel()
	var gotKey, gotValue string
	c := serve(t, map[string]http.HandlerFunc{
		"/api/servers": func(w http.ResponseWriter, r *http.Request) {
			gotKey = r.URL.Query().Get("filterKey")
			gotValue = r.URL.Query().Get("filterValue")
			reply(200, `{"page":1,"pageSize":50,"total":0,"data":[]}`)(w, r)
		},
	})

	_, err := c.Servers(context.Background(), model.PageRequest{FilterKey: "region", FilterValue: "APAC"})
	require.NoError(t, err)
	assert.Equal(t, "region", gotKey)
	assert.Equal(t, "APAC", gotValue)
}

func TestSignups_Unauthorized(t *testing.T) {
	t.Parallel()
	c := serve(t, map[string]http.HandlerFunc{
		"/api/signups": reply(401, `{"error":"Unauthorized"}`),
	})

	_, err := c.Signups(context.Background(), model.PageRequest{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnauthorized))

	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, "Unauthorized", se.Message)
}

func TestHealth(t *testing.T) {
	t.Parallel()
	c := serve(t, map[string]http.HandlerFunc{"/api/health": reply(200, `{"ok":true}`)})
	assert.NoError(t, c.Health(context.Background()))
}
