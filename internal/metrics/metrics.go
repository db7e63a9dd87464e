package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "group_board"

// Metrics holds all application metrics
type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Business metrics
	GroupCreatedTotal prometheus.Counter
	CardCreatedTotal  prometheus.Counter
	TagCreatedTotal   *prometheus.CounterVec

	// Allocator metrics. Retries count lost allocation races that were
	// recovered; conflicts count allocations that failed after exhausting
	// the retry budget.
	AllocatorRetriesTotal   prometheus.Counter
	AllocatorConflictsTotal prometheus.Counter

	// Board cache metrics
	BoardCacheHitsTotal   prometheus.Counter
	BoardCacheMissesTotal prometheus.Counter
}

// New creates and registers all metrics with the default registry
func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry creates and registers all metrics with a custom registry
func NewWithRegistry(registerer prometheus.Registerer) *Metrics {
	factory := promauto.With(registerer)

	return &Metrics{
		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "endpoint", "status"},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "endpoint"},
		),
		GroupCreatedTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "groups_created_total",
			Help:      "Total number of groups created",
		}),
		CardCreatedTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cards_created_total",
			Help:      "Total number of cards created",
		}),
		TagCreatedTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "tags_created_total",
				Help:      "Total number of tags created",
			},
			[]string{"kind"},
		),
		AllocatorRetriesTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "allocator_retries_total",
			Help:      "Total number of retried code allocation races",
		}),
		AllocatorConflictsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "allocator_conflicts_total",
			Help:      "Total number of code allocations that failed after exhausting retries",
		}),
		BoardCacheHitsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "board_cache_hits_total",
			Help:      "Total number of board view cache hits",
		}),
		BoardCacheMissesTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "board_cache_misses_total",
			Help:      "Total number of board view cache misses",
		}),
	}
}

// RecordHTTPRequest records a completed HTTP request
func (m *Metrics) RecordHTTPRequest(method, endpoint string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequestsTotal.WithLabelValues(method, endpoint, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// IncrementGroupCreated increments the group creation counter
func (m *Metrics) IncrementGroupCreated() {
	if m != nil {
		m.GroupCreatedTotal.Inc()
	}
}

// IncrementCardCreated increments the card creation counter
func (m *Metrics) IncrementCardCreated() {
	if m != nil {
		m.CardCreatedTotal.Inc()
	}
}

// IncrementTagCreated increments the tag creation counter for a kind
func (m *Metrics) IncrementTagCreated(kind string) {
	if m != nil {
		m.TagCreatedTotal.WithLabelValues(kind).Inc()
	}
}

// IncrementAllocatorRetry increments the allocator retry counter
func (m *Metrics) IncrementAllocatorRetry() {
	if m != nil {
		m.AllocatorRetriesTotal.Inc()
	}
}

// IncrementAllocatorConflict increments the allocator conflict counter
func (m *Metrics) IncrementAllocatorConflict() {
	if m != nil {
		m.AllocatorConflictsTotal.Inc()
	}
}

// IncrementBoardCacheHit increments the board cache hit counter
func (m *Metrics) IncrementBoardCacheHit() {
	if m != nil {
		m.BoardCacheHitsTotal.Inc()
	}
}

// IncrementBoardCacheMiss increments the board cache miss counter
func (m *Metrics) IncrementBoardCacheMiss() {
	if m != nil {
		m.BoardCacheMissesTotal.Inc()
	}
}

// ShouldSkipEndpoint reports whether a path is excluded from HTTP metrics
func ShouldSkipEndpoint(path string) bool {
	switch path {
	case "/metrics", "/health", "/healthz", "/ready":
		return true
	}
	return false
}
