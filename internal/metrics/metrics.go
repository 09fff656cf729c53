// Package metrics provides a small, backend-agnostic abstraction for recording
// operational metrics from the seeding and reconciliation runs.
//
// The package is intentionally minimal:
//
//   - It exposes a narrow interface (Backend) focused on counters and timing
//     data (histograms).
//   - It provides a global, pluggable backend that defaults to a no-op
//     implementation, so metrics are always safe to call even when no real
//     backend is configured.
//   - Concrete metric systems (Prometheus Pushgateway, DogStatsD) live in
//     subpackages so the pipeline depends only on this interface.
package metrics

import "time"

// Metric names shared by every backend.
const (
	StepTotal       = "listingetl_step_total"
	StepDuration    = "listingetl_step_duration_seconds"
	RecordsTotal    = "listingetl_records_total"
	defaultedPrefix = "defaulted_"
)

// Record kinds passed to RecordRow.
const (
	KindRead                = "read"
	KindEmitted             = "emitted"
	KindSkippedLines        = "skipped_lines"
	KindReconciledChanged   = "reconciled_changed"
	KindReconciledUnchanged = "reconciled_unchanged"
)

// DefaultedKind is the RecordRow kind for rows whose field fell back to its
// default value.
func DefaultedKind(field string) string { return defaultedPrefix + field }

// Labels are string key/value pairs attached to a metric.
type Labels map[string]string

// Backend is the minimal interface for metrics backends.
type Backend interface {
	// IncCounter increments a counter by delta.
	IncCounter(name string, delta float64, labels Labels)
	// ObserveHistogram records a value in a latency/duration style metric.
	ObserveHistogram(name string, value float64, labels Labels)
	// Flush pushes or flushes metrics, if the backend needs it (e.g. Pushgateway).
	Flush() error
}

// nopBackend is used by default so metrics are optional.
type nopBackend struct{}

func (nopBackend) IncCounter(name string, delta float64, labels Labels)       {}
func (nopBackend) ObserveHistogram(name string, value float64, labels Labels) {}
func (nopBackend) Flush() error                                               { return nil }

var backend Backend = nopBackend{}

// SetBackend installs a concrete backend. Passing nil keeps the existing backend.
func SetBackend(b Backend) {
	if b == nil {
		return
	}
	backend = b
}

// Flush delegates to the current backend.
func Flush() error {
	return backend.Flush()
}

// RecordStep records latency and success/failure of one run step
// (resolve, normalize, render, write, apply, rewrite, update).
func RecordStep(job, step string, err error, d time.Duration) {
	status := "success"
	if err != nil {
		status = "failure"
	}

	lbls := Labels{
		"job":    job,
		"step":   step,
		"status": status,
	}

	backend.IncCounter(StepTotal, 1, lbls)
	backend.ObserveHistogram(StepDuration, d.Seconds(), lbls)
}

// RecordRow increments a record-level counter for the given job and kind.
// Non-positive deltas are dropped.
func RecordRow(job, kind string, delta int64) {
	if delta <= 0 {
		return
	}
	backend.IncCounter(RecordsTotal, float64(delta), Labels{
		"job":  job,
		"kind": kind,
	})
}
