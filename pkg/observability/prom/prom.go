// Package prom implements the observability hooks with Prometheus
// collectors.
package prom

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/matzehuels/netdraw/pkg/observability"
)

// Metrics holds the netdraw collectors.
type Metrics struct {
	stageDuration *prometheus.HistogramVec
	stageErrors   *prometheus.CounterVec
	graphNodes    prometheus.Gauge
	layoutRings   prometheus.Gauge
	cacheOps      *prometheus.CounterVec
	cacheBytes    *prometheus.CounterVec
	events        *prometheus.CounterVec
	instructions  *prometheus.CounterVec
	structural    *prometheus.CounterVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		stageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "netdraw_stage_duration_seconds",
			Help:    "Duration of pipeline stages",
			Buckets: prometheus.ExponentialBuckets(0.0005, 4, 10),
		}, []string{"stage"}),
		stageErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "netdraw_stage_errors_total",
			Help: "Failed pipeline stages",
		}, []string{"stage"}),
		graphNodes: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "netdraw_graph_nodes",
			Help: "Node count of the last loaded graph",
		}),
		layoutRings: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "netdraw_layout_rings",
			Help: "Ring count of the last computed layout",
		}),
		cacheOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "netdraw_cache_operations_total",
			Help: "Cache lookups and writes",
		}, []string{"key_type", "result"}),
		cacheBytes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "netdraw_cache_written_bytes_total",
			Help: "Bytes written to the cache",
		}, []string{"key_type"}),
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "netdraw_session_events_total",
			Help: "Renderer events handled by viewer sessions",
		}, []string{"kind"}),
		instructions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "netdraw_session_instructions_total",
			Help: "Renderer instructions produced by viewer sessions",
		}, []string{"source"}),
		structural: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "netdraw_session_structural_total",
			Help: "Expand and collapse operations",
		}, []string{"op", "result"}),
	}
	reg.MustRegister(m.stageDuration, m.stageErrors, m.graphNodes, m.layoutRings,
		m.cacheOps, m.cacheBytes, m.events, m.instructions, m.structural)
	return m
}

func (m *Metrics) stage(name string, d time.Duration, err error) {
	m.stageDuration.WithLabelValues(name).Observe(d.Seconds())
	if err != nil {
		m.stageErrors.WithLabelValues(name).Inc()
	}
}

func (m *Metrics) OnLoadStart(context.Context, string) {}

func (m *Metrics) OnLoadComplete(_ context.Context, _ string, nodes int, d time.Duration, err error) {
	m.stage("load", d, err)
	if err == nil {
		m.graphNodes.Set(float64(nodes))
	}
}

func (m *Metrics) OnLayoutStart(context.Context, int) {}

func (m *Metrics) OnLayoutComplete(_ context.Context, rings int, d time.Duration, err error) {
	m.stage("layout", d, err)
	if err == nil {
		m.layoutRings.Set(float64(rings))
	}
}

func (m *Metrics) OnRenderStart(context.Context, []string) {}

func (m *Metrics) OnRenderComplete(_ context.Context, _ []string, d time.Duration, err error) {
	m.stage("render", d, err)
}

func (m *Metrics) OnCacheHit(_ context.Context, keyType string) {
	m.cacheOps.WithLabelValues(keyType, "hit").Inc()
}

func (m *Metrics) OnCacheMiss(_ context.Context, keyType string) {
	m.cacheOps.WithLabelValues(keyType, "miss").Inc()
}

func (m *Metrics) OnCacheSet(_ context.Context, keyType string, size int) {
	m.cacheOps.WithLabelValues(keyType, "set").Inc()
	m.cacheBytes.WithLabelValues(keyType).Add(float64(size))
}

func (m *Metrics) OnEvent(_ context.Context, kind string, n int) {
	m.events.WithLabelValues(kind).Inc()
	m.instructions.WithLabelValues("event").Add(float64(n))
}

func (m *Metrics) OnExpand(_ context.Context, _ string, n int, err error) {
	m.structuralOp("expand", n, err)
}

func (m *Metrics) OnCollapse(_ context.Context, _ string, n int, err error) {
	m.structuralOp("collapse", n, err)
}

func (m *Metrics) structuralOp(op string, n int, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.structural.WithLabelValues(op, result).Inc()
	m.instructions.WithLabelValues(op).Add(float64(n))
}

// Register installs m as the pipeline, cache and session hooks.
func (m *Metrics) Register() {
	observability.SetPipelineHooks(m)
	observability.SetCacheHooks(m)
	observability.SetSessionHooks(m)
}

var (
	_ observability.PipelineHooks = (*Metrics)(nil)
	_ observability.CacheHooks    = (*Metrics)(nil)
	_ observability.SessionHooks  = (*Metrics)(nil)
)
