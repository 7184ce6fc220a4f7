// Package metrics exposes acquisition counters to Prometheus.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jose0796/scope.go/pkg/l0/frame"
)

const namespace = "scope"

// NewRegistry creates a registry with the Go and process collectors.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// Handler returns the HTTP handler serving reg.
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})
}

// FramingCollector reports frame.Counters read at scrape time.
type FramingCollector struct {
	counters func() frame.Counters
	ready    func() bool

	frames       *prometheus.Desc
	resyncs      *prometheus.Desc
	skipped      *prometheus.Desc
	underruns    *prometheus.Desc
	syncTimeouts *prometheus.Desc
	syncReady    *prometheus.Desc
}

// NewFramingCollector creates a collector. ready may be nil.
func NewFramingCollector(counters func() frame.Counters, ready func() bool) *FramingCollector {
	desc := func(name, help string) *prometheus.Desc {
		return prometheus.NewDesc(prometheus.BuildFQName(namespace, "frame", name), help, nil, nil)
	}
	return &FramingCollector{
		counters:     counters,
		ready:        ready,
		frames:       desc("received_total", "Aligned frames received."),
		resyncs:      desc("resyncs_total", "Resynchronizations after a misaligned frame."),
		skipped:      desc("skipped_bytes_total", "Bytes discarded while resynchronizing."),
		underruns:    desc("underruns_total", "Reads the transport could not satisfy."),
		syncTimeouts: desc("sync_timeouts_total", "Resynchronizations that found no frame start."),
		syncReady:    desc("sync_ready", "1 when the stream is aligned."),
	}
}

// Describe implements prometheus.Collector.
func (c *FramingCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.frames
	ch <- c.resyncs
	ch <- c.skipped
	ch <- c.underruns
	ch <- c.syncTimeouts
	if c.ready != nil {
		ch <- c.syncReady
	}
}

// Collect implements prometheus.Collector.
func (c *FramingCollector) Collect(ch chan<- prometheus.Metric) {
	s := c.counters()
	ch <- prometheus.MustNewConstMetric(c.frames, prometheus.CounterValue, float64(s.Frames))
	ch <- prometheus.MustNewConstMetric(c.resyncs, prometheus.CounterValue, float64(s.Resyncs))
	ch <- prometheus.MustNewConstMetric(c.skipped, prometheus.CounterValue, float64(s.Skipped))
	ch <- prometheus.MustNewConstMetric(c.underruns, prometheus.CounterValue, float64(s.Underruns))
	ch <- prometheus.MustNewConstMetric(c.syncTimeouts, prometheus.CounterValue, float64(s.SyncTimeouts))
	if c.ready != nil {
		var v float64
		if c.ready() {
			v = 1
		}
		ch <- prometheus.MustNewConstMetric(c.syncReady, prometheus.GaugeValue, v)
	}
}

// StationMetrics are updated by the distribution side.
type StationMetrics struct {
	SamplesWritten *prometheus.CounterVec // labels: sink
	SinkErrors     *prometheus.CounterVec // labels: sink
	Clients        prometheus.GaugeFunc
}

// NewStationMetrics registers and returns station metrics. clients
// reports connected live view clients and may be nil.
func NewStationMetrics(reg prometheus.Registerer, clients func() int) *StationMetrics {
	m := &StationMetrics{
		SamplesWritten: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "samples_written_total",
			Help:      "Samples written per sink.",
		}, []string{"sink"}),
		SinkErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sink_errors_total",
			Help:      "Failed sink writes per sink.",
		}, []string{"sink"}),
	}
	reg.MustRegister(m.SamplesWritten, m.SinkErrors)
	if clients != nil {
		m.Clients = prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "live_clients",
			Help:      "Connected live view clients.",
		}, func() float64 { return float64(clients()) })
		reg.MustRegister(m.Clients)
	}
	return m
}

// Observe records the result of one sink write.
func (m *StationMetrics) Observe(sink string, err error) {
	if err != nil {
		m.SinkErrors.WithLabelValues(sink).Inc()
		return
	}
	m.SamplesWritten.WithLabelValues(sink).Inc()
}
