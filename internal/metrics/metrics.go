package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "scoreboard"

// Recorder publishes scoreboard metrics. A nil *Recorder is valid and
// records nothing, so callers never have to check.
type Recorder struct {
	actions      *prometheus.CounterVec
	ignored      *prometheus.CounterVec
	ticks        *prometheus.CounterVec
	frames       prometheus.Counter
	coalesced    prometheus.Counter
	dropped      prometheus.Counter
	clients      prometheus.Gauge
	version      prometheus.Gauge
	httpDuration *prometheus.HistogramVec

	handler http.Handler
}

// New registers all collectors on a fresh registry along with the Go
// runtime and process collectors.
func New() *Recorder {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return NewWithRegistry(reg, reg)
}

func NewWithRegistry(reg prometheus.Registerer, gather prometheus.Gatherer) *Recorder {
	r := &Recorder{
		actions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "actions_applied_total",
			Help:      "Actions applied to the game state, by kind.",
		}, []string{LabelKind}),
		ignored: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "actions_ignored_total",
			Help:      "Inbound actions dropped without changing state, by reason.",
		}, []string{LabelReason}),
		ticks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "clock_ticks_total",
			Help:      "Clock ticks that changed state, by clock.",
		}, []string{LabelClock}),
		frames: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "frames_published_total",
			Help:      "Snapshot frames published to the broadcast hub.",
		}),
		coalesced: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "frames_coalesced_total",
			Help:      "Stale frames replaced in a slow client's queue.",
		}),
		dropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "clients_dropped_total",
			Help:      "Clients disconnected because they could not accept frames.",
		}),
		clients: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "clients_connected",
			Help:      "Currently subscribed websocket clients.",
		}),
		version: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "state_version",
			Help:      "Version of the latest published frame.",
		}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{LabelMethod, LabelRoute, LabelStatus}),
	}

	reg.MustRegister(r.actions, r.ignored, r.ticks, r.frames, r.coalesced,
		r.dropped, r.clients, r.version, r.httpDuration)
	r.handler = promhttp.HandlerFor(gather, promhttp.HandlerOpts{})
	return r
}

// Handler serves the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	if r == nil {
		return http.NotFoundHandler()
	}
	return r.handler
}

func (r *Recorder) ActionApplied(kind string) {
	if r == nil {
		return
	}
	r.actions.WithLabelValues(kind).Inc()
}

func (r *Recorder) ActionIgnored(reason string) {
	if r == nil {
		return
	}
	r.ignored.WithLabelValues(reason).Inc()
}

func (r *Recorder) ClockTick(clock string) {
	if r == nil {
		return
	}
	r.ticks.WithLabelValues(clock).Inc()
}

func (r *Recorder) FramePublished(version int) {
	if r == nil {
		return
	}
	r.frames.Inc()
	r.version.Set(float64(version))
}

func (r *Recorder) FrameCoalesced() {
	if r == nil {
		return
	}
	r.coalesced.Inc()
}

func (r *Recorder) ClientDropped() {
	if r == nil {
		return
	}
	r.dropped.Inc()
}

func (r *Recorder) SetClients(n int) {
	if r == nil {
		return
	}
	r.clients.Set(float64(n))
}

func (r *Recorder) RecordHTTPRequest(method, route string, status int, d time.Duration) {
	if r == nil {
		return
	}
	r.httpDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(d.Seconds())
}
