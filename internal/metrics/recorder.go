// Package metrics records conversion run statistics. The default recorder
// does nothing; the Prometheus recorder can be exported as a node-exporter
// textfile once a run completes.
package metrics

import "time"

// Outcome enumerates per-document conversion results.
type Outcome string

const (
	OutcomeSuccess  Outcome = "success"
	OutcomeDegraded Outcome = "degraded"
	OutcomeFailed   Outcome = "failed"
	OutcomeSkipped  Outcome = "skipped"
)

// Recorder defines observability hooks for a conversion run. All methods must
// be safe to call from concurrent conversion goroutines.
type Recorder interface {
	ObserveDocument(d time.Duration, outcome Outcome)
	ObserveChunk(d time.Duration)
	ObserveMerge(d time.Duration, success bool)
	ObserveRun(d time.Duration, state string)
	SetBrowsers(n int)
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObserveDocument(time.Duration, Outcome) {}
func (NoopRecorder) ObserveChunk(time.Duration)             {}
func (NoopRecorder) ObserveMerge(time.Duration, bool)       {}
func (NoopRecorder) ObserveRun(time.Duration, string)       {}
func (NoopRecorder) SetBrowsers(int)                        {}

var _ Recorder = NoopRecorder{}
