// Package prom implements the observability hooks with Prometheus metrics.
//
//	reg := prometheus.NewRegistry()
//	prom.Install(prom.New(reg))
//	http.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
package prom

import (
	"context"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/matzehuels/wordpath/pkg/observability"
)

const namespace = "wordpath"

// Metrics implements every hook interface of package observability.
type Metrics struct {
	layoutDuration *prometheus.HistogramVec
	layoutTicks    prometheus.Histogram
	renderDuration *prometheus.HistogramVec

	restarts     prometheus.Counter
	converged    prometheus.Histogram
	ticksSkipped prometheus.Counter

	cacheHits   *prometheus.CounterVec
	cacheMisses *prometheus.CounterVec
	cacheBytes  *prometheus.CounterVec

	sessionsActive  prometheus.Gauge
	sessionDuration prometheus.Histogram
	sessionFrames   prometheus.Histogram
	pointerEvents   *prometheus.CounterVec
}

// New creates and registers the metrics with reg. A nil reg registers with
// the default registerer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)
	return &Metrics{
		layoutDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "layout_duration_seconds",
			Help:      "Time to run a headless simulation to rest.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 12),
		}, []string{"result"}),
		layoutTicks: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "layout_ticks",
			Help:      "Ticks taken by headless layouts.",
			Buckets:   []float64{10, 50, 100, 200, 300, 400, 600, 1000},
		}),
		renderDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "render_duration_seconds",
			Help:      "Time to render a set of output formats.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 14),
		}, []string{"formats", "result"}),

		restarts: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "simulation_restarts_total",
			Help:      "Alpha target changes caused by drags.",
		}),
		converged: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "simulation_converged_ticks",
			Help:      "Tick count at which simulations came to rest.",
			Buckets:   []float64{10, 50, 100, 200, 300, 400, 600, 1000},
		}),
		ticksSkipped: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "simulation_ticks_skipped_total",
			Help:      "Ticks discarded because they produced non-finite positions.",
		}),

		cacheHits: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_hits_total",
			Help:      "Cache hits by key type.",
		}, []string{"type"}),
		cacheMisses: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_misses_total",
			Help:      "Cache misses by key type.",
		}, []string{"type"}),
		cacheBytes: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_written_bytes_total",
			Help:      "Bytes written to the cache by key type.",
		}, []string{"type"}),

		sessionsActive: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sessions_active",
			Help:      "Open live diagram sessions.",
		}),
		sessionDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "session_duration_seconds",
			Help:      "Lifetime of live diagram sessions.",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 12),
		}),
		sessionFrames: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "session_frames",
			Help:      "Frames sent per live diagram session.",
			Buckets:   prometheus.ExponentialBuckets(10, 2, 12),
		}),
		pointerEvents: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pointer_events_total",
			Help:      "Pointer events received by kind and whether they were dropped.",
		}, []string{"kind", "dropped"}),
	}
}

// Install registers m for every hook category.
func Install(m *Metrics) {
	observability.SetPipelineHooks(m)
	observability.SetSimulationHooks(m)
	observability.SetCacheHooks(m)
	observability.SetSessionHooks(m)
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

func (m *Metrics) OnLayoutStart(context.Context, int) {}

func (m *Metrics) OnLayoutComplete(_ context.Context, ticks int, d time.Duration, err error) {
	m.layoutDuration.WithLabelValues(result(err)).Observe(d.Seconds())
	if err == nil {
		m.layoutTicks.Observe(float64(ticks))
	}
}

func (m *Metrics) OnRenderStart(context.Context, []string) {}

func (m *Metrics) OnRenderComplete(_ context.Context, formats []string, d time.Duration, err error) {
	m.renderDuration.WithLabelValues(strings.Join(formats, ","), result(err)).Observe(d.Seconds())
}

func (m *Metrics) OnRestart(float64)        { m.restarts.Inc() }
func (m *Metrics) OnConverged(ticks int)    { m.converged.Observe(float64(ticks)) }
func (m *Metrics) OnTickSkipped(int, error) { m.ticksSkipped.Inc() }

func (m *Metrics) OnCacheHit(_ context.Context, keyType string)  { m.cacheHits.WithLabelValues(keyType).Inc() }
func (m *Metrics) OnCacheMiss(_ context.Context, keyType string) { m.cacheMisses.WithLabelValues(keyType).Inc() }

func (m *Metrics) OnCacheSet(_ context.Context, keyType string, size int) {
	m.cacheBytes.WithLabelValues(keyType).Add(float64(size))
}

func (m *Metrics) OnSessionOpen(context.Context, string) { m.sessionsActive.Inc() }

func (m *Metrics) OnSessionClose(_ context.Context, _ string, frames int, d time.Duration) {
	m.sessionsActive.Dec()
	m.sessionDuration.Observe(d.Seconds())
	m.sessionFrames.Observe(float64(frames))
}

func (m *Metrics) OnPointerEvent(_ context.Context, kind string, dropped bool) {
	d := "false"
	if dropped {
		d = "true"
	}
	m.pointerEvents.WithLabelValues(kind, d).Inc()
}

var (
	_ observability.PipelineHooks   = (*Metrics)(nil)
	_ observability.SimulationHooks = (*Metrics)(nil)
	_ observability.CacheHooks      = (*Metrics)(nil)
	_ observability.SessionHooks    = (*Metrics)(nil)
)
