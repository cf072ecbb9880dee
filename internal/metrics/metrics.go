// Package metrics exposes Prometheus counters for game outcomes, navigation
// and assistant calls.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ashkam58/pythongrade3/internal/game"
)

// Assistant call kinds.
const (
	KindHelp     = "help"
	KindGenerate = "generate"
)

// Recorder owns its registry so tests and multiple servers don't collide.
type Recorder struct {
	reg         *prometheus.Registry
	checks      *prometheus.CounterVec
	navigations *prometheus.CounterVec
	calls       *prometheus.CounterVec
	latency     *prometheus.HistogramVec
}

func New() *Recorder {
	r := &Recorder{
		reg: prometheus.NewRegistry(),
		checks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "funfair_checks_total",
			Help: "Answer checks by game and outcome.",
		}, []string{"game", "outcome"}),
		navigations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "funfair_navigations_total",
			Help: "Mode changes by destination.",
		}, []string{"mode"}),
		calls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "funfair_assistant_calls_total",
			Help: "Assistant calls by kind and outcome.",
		}, []string{"kind", "outcome"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "funfair_assistant_duration_seconds",
			Help:    "Assistant call latency.",
			Buckets: []float64{.1, .25, .5, 1, 2, 5, 10, 30},
		}, []string{"kind"}),
	}
	r.reg.MustRegister(r.checks, r.navigations, r.calls, r.latency,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return r
}

// Check counts one answer check.
func (r *Recorder) Check(mode game.Mode, ok bool) {
	outcome := "fail"
	if ok {
		outcome = "success"
	}
	r.checks.WithLabelValues(string(mode), outcome).Inc()
}

func (r *Recorder) Navigate(mode game.Mode) {
	r.navigations.WithLabelValues(string(mode)).Inc()
}

// AssistantCall counts one finished call and its latency.
func (r *Recorder) AssistantCall(kind string, took time.Duration, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	r.calls.WithLabelValues(kind, outcome).Inc()
	r.latency.WithLabelValues(kind).Observe(took.Seconds())
}

// Handler serves the registry in the Prometheus text format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{Registry: r.reg})
}
