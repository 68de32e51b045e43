package httpserver

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tinytelemetry/fleetlens/internal/crossfilter"
	"github.com/tinytelemetry/fleetlens/internal/logging"
	"github.com/tinytelemetry/fleetlens/internal/metrics"
	"github.com/tinytelemetry/fleetlens/internal/model"
	"github.com/tinytelemetry/fleetlens/internal/sample"
	"github.com/tinytelemetry/fleetlens/internal/webui"
)

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"ok":     true,
		"uptime": time.Since(s.startTime).Round(time.Second).String(),
	})
}

func (s *Server) handleAggregations(c *gin.Context) {
	store, err := s.stores.Acquire(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	agg, err := store.Aggregations(c.Request.Context())
	if err != nil {
		logging.Error().Err(err).Msg("aggregations failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, agg)
}

func (s *Server) handleServersSample(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"servers": s.sampleServers(sample.ServerCount)})
}

func (s *Server) handleServers(c *gin.Context) {
	store, err := s.stores.Acquire(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	page, err := store.ListServers(c.Request.Context(), pageRequest(c))
	if err != nil {
		logging.Error().Err(err).Msg("list servers failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, page)
}

func (s *Server) handleSessions(c *gin.Context) {
	page, err := listOptional(c, s.stores, model.ReadAPI.ListSessions)
	if err != nil {
		fallbackReason(c, "sessions", err)
		c.JSON(http.StatusOK, s.sampleSessions())
		return
	}
	c.JSON(http.StatusOK, page)
}

func (s *Server) handleSignups(c *gin.Context) {
	page, err := listOptional(c, s.stores, model.ReadAPI.ListSignups)
	if err != nil {
		fallbackReason(c, "signups", err)
		c.JSON(http.StatusOK, s.sampleSignups())
		return
	}
	c.JSON(http.StatusOK, page)
}

func (s *Server) handleDashboard(c *gin.Context) {
	view := webui.View{
		Filter: crossfilter.ParseFilter(c.Query("filterKey"), c.Query("filterValue")),
		Path:   c.Request.URL.Path,
	}

	var agg model.Aggregations
	store, err := s.stores.Acquire(c.Request.Context())
	if err == nil {
		agg, err = store.Aggregations(c.Request.Context())
	}
	if err != nil {
		logging.Warn().Err(err).Msg("dashboard using sample data")
		agg = model.Aggregations{Servers: s.sampleServers(sample.ServerCount)}
		view.Fallback = true
	}

	ctl := crossfilter.New(agg.Servers, crossfilter.Baseline(agg))
	view.Charts = ctl.Set(view.Filter)
	view.Records = len(ctl.Filtered())

	var buf bytes.Buffer
	if err := webui.Render(&buf, view); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
}

// listOptional acquires a store and runs one optional-table listing.
func listOptional[T any](c *gin.Context, stores StoreSource, list func(model.ReadAPI, context.Context, model.PageRequest) (model.Page[T], error)) (model.Page[T], error) {
	store, err := stores.Acquire(c.Request.Context())
	if err != nil {
		return model.Page[T]{}, err
	}
	return list(store, c.Request.Context(), pageRequest(c))
}

func fallbackReason(c *gin.Context, table string, err error) {
	reason := "unavailable"
	if errors.Is(err, model.ErrTableAbsent) {
		reason = "absent"
	}
	metrics.RecordFallback(table, reason)
	logging.Debug().Err(err).Str("table", table).Str("reason", reason).
		Str(requestIDKey, c.GetString(requestIDKey)).Msg("serving generated data")
}

// pageRequest reads page, pageSize, filterKey and filterValue. Values that
// do not parse as integers are treated as absent.
func pageRequest(c *gin.Context) model.PageRequest {
	return model.PageRequest{
		Page:        queryInt(c, "page"),
		PageSize:    queryInt(c, "pageSize"),
		FilterKey:   c.Query("filterKey"),
		FilterValue: c.Query("filterValue"),
	}
}

func queryInt(c *gin.Context, key string) int {
	v, err := strconv.Atoi(c.Query(key))
	if err != nil {
		return 0
	}
	return v
}
