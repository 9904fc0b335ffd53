// SPDX-License-Identifier: AGPL-3.0-or-later

// Package metrics records build timings in a Prometheus registry. A build is
// a batch job, so the registry is written once as a node_exporter textfile
// instead of being scraped.
package metrics

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "projreport"

// Recorder holds the collectors of one build. Each Recorder has its own
// registry so tests and repeated builds never collide.
type Recorder struct {
	registry *prometheus.Registry

	taskDuration  *prometheus.HistogramVec
	taskResults   *prometheus.CounterVec
	buildDuration prometheus.Gauge
	historyPages  prometheus.Gauge
	sourceFiles   *prometheus.GaugeVec
	lastSuccess   prometheus.Gauge
}

// New creates a Recorder with all collectors registered.
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		taskDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "task_duration_seconds",
			Help:      "Wall time of each report task.",
			Buckets:   []float64{0.1, 0.5, 1, 5, 15, 60, 300, 900},
		}, []string{"task"}),
		taskResults: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "task_results_total",
			Help:      "Task outcomes by status.",
		}, []string{"task", "status"}),
		buildDuration: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "build_duration_seconds",
			Help:      "Wall time of the last build.",
		}),
		historyPages: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "history_pages",
			Help:      "Commit history pages written by the last build.",
		}),
		sourceFiles: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "source_files",
			Help:      "Files found by discovery, by extension.",
		}, []string{"ext"}),
		lastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_build_timestamp_seconds",
			Help:      "Unix time the last build finished.",
		}),
	}

	r.registry.MustRegister(
		r.taskDuration,
		r.taskResults,
		r.buildDuration,
		r.historyPages,
		r.sourceFiles,
		r.lastSuccess,
	)
	return r
}

// Registry exposes the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry { return r.registry }

// ObserveTask records one task outcome. Safe for concurrent use.
func (r *Recorder) ObserveTask(task, status string, d time.Duration) {
	r.taskDuration.WithLabelValues(task).Observe(d.Seconds())
	r.taskResults.WithLabelValues(task, status).Inc()
}

// SetHistoryPages records how many history pages were written.
func (r *Recorder) SetHistoryPages(n int) { r.historyPages.Set(float64(n)) }

// SetSourceFiles records a discovery count.
func (r *Recorder) SetSourceFiles(ext string, n int) {
	r.sourceFiles.WithLabelValues(ext).Set(float64(n))
}

// FinishBuild records the build's wall time and completion time.
func (r *Recorder) FinishBuild(d time.Duration, at time.Time) {
	r.buildDuration.Set(d.Seconds())
	r.lastSuccess.Set(float64(at.Unix()))
}

// WriteTextfile writes the registry in text exposition format. The file is
// written to a temp name and renamed, as the textfile collector requires.
func (r *Recorder) WriteTextfile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating metrics directory: %w", err)
	}
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("writing metrics textfile: %w", err)
	}
	return nil
}
