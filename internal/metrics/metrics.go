package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "secrets_manager"

// Recorder collects metrics for a single process run. A nil *Recorder is
// valid and records nothing.
type Recorder struct {
	registry    *prometheus.Registry
	files       *prometheus.CounterVec
	runs        *prometheus.CounterVec
	duration    *prometheus.GaugeVec
	lastSuccess *prometheus.GaugeVec
}

// NewRecorder returns a Recorder backed by its own registry.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		files: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "files_total",
			Help:      "Files handled by export or import, by result",
		}, []string{"op", "result"}),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Completed runs, by outcome",
		}, []string{"op", "outcome"}),
		duration: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Duration of the last run",
		}, []string{"op"}),
		lastSuccess: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time of the last successful run",
		}, []string{"op"}),
	}
	r.registry.MustRegister(r.files, r.runs, r.duration, r.lastSuccess)
	return r
}

// Registry exposes the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

// Files adds n files with the given result ("exported", "unchanged", ...).
func (r *Recorder) Files(op, result string, n int) {
	if r == nil || n == 0 {
		return
	}
	r.files.WithLabelValues(op, result).Add(float64(n))
}

// RunFinished records the outcome and duration of a run started at start.
func (r *Recorder) RunFinished(op string, start time.Time, err error) {
	if r == nil {
		return
	}

	end := time.Now()
	r.duration.WithLabelValues(op).Set(end.Sub(start).Seconds())
	if err != nil {
		r.runs.WithLabelValues(op, "failure").Inc()
		return
	}
	r.runs.WithLabelValues(op, "success").Inc()
	r.lastSuccess.WithLabelValues(op).Set(float64(end.Unix()))
}

// WriteTextfile writes all metrics in the text exposition format, for
// node_exporter's textfile collector.
func (r *Recorder) WriteTextfile(path string) error {
	if r == nil {
		return nil
	}
	return prometheus.WriteToTextfile(path, r.registry)
}
