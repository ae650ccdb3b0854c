package metrics

import (
	"fmt"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

// Namespace prefixes every exported metric.
const Namespace = "blogbook"

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	reg           *prom.Registry
	documentTime  *prom.HistogramVec
	documents     *prom.CounterVec
	chunkDuration prom.Histogram
	mergeDuration *prom.HistogramVec
	runDuration   *prom.HistogramVec
	browsers      prom.Gauge
}

// NewPrometheusRecorder constructs and registers the conversion metrics on
// reg. A nil reg gets a private registry.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		reg: reg,
		documentTime: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: Namespace,
			Name:      "document_duration_seconds",
			Help:      "Duration of individual document conversions",
			Buckets:   []float64{0.25, 0.5, 1, 2, 5, 10, 20, 40, 90},
		}, []string{"outcome"}),
		documents: prom.NewCounterVec(prom.CounterOpts{
			Namespace: Namespace,
			Name:      "documents_total",
			Help:      "Document conversions by outcome",
		}, []string{"outcome"}),
		chunkDuration: prom.NewHistogram(prom.HistogramOpts{
			Namespace: Namespace,
			Name:      "chunk_duration_seconds",
			Help:      "Wall time of a chunk, from start to the last settled document",
			Buckets:   prom.DefBuckets,
		}),
		mergeDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: Namespace,
			Name:      "merge_duration_seconds",
			Help:      "Duration of the final PDF merge",
			Buckets:   prom.DefBuckets,
		}, []string{"result"}),
		runDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: Namespace,
			Name:      "run_duration_seconds",
			Help:      "Total pipeline run duration by final state",
			Buckets:   []float64{1, 5, 15, 30, 60, 120, 300, 600},
		}, []string{"state"}),
		browsers: prom.NewGauge(prom.GaugeOpts{
			Namespace: Namespace,
			Name:      "browsers",
			Help:      "Browser instances held by the converter pool",
		}),
	}
	reg.MustRegister(pr.documentTime, pr.documents, pr.chunkDuration, pr.mergeDuration, pr.runDuration, pr.browsers)
	return pr
}

// Registry returns the registry holding the recorder's metrics.
func (p *PrometheusRecorder) Registry() *prom.Registry {
	return p.reg
}

func (p *PrometheusRecorder) ObserveDocument(d time.Duration, outcome Outcome) {
	if p == nil {
		return
	}
	p.documentTime.WithLabelValues(string(outcome)).Observe(d.Seconds())
	p.documents.WithLabelValues(string(outcome)).Inc()
}

func (p *PrometheusRecorder) ObserveChunk(d time.Duration) {
	if p == nil {
		return
	}
	p.chunkDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) ObserveMerge(d time.Duration, success bool) {
	if p == nil {
		return
	}
	res := "failed"
	if success {
		res = "success"
	}
	p.mergeDuration.WithLabelValues(res).Observe(d.Seconds())
}

func (p *PrometheusRecorder) ObserveRun(d time.Duration, state string) {
	if p == nil {
		return
	}
	p.runDuration.WithLabelValues(state).Observe(d.Seconds())
}

func (p *PrometheusRecorder) SetBrowsers(n int) {
	if p == nil {
		return
	}
	p.browsers.Set(float64(n))
}

// WriteTextfile writes the current metrics in the text exposition format,
// atomically replacing path (node-exporter textfile collector layout).
func (p *PrometheusRecorder) WriteTextfile(path string) error {
	if err := prom.WriteToTextfile(path, p.reg); err != nil {
		return fmt.Errorf("writing metrics textfile: %w", err)
	}
	return nil
}

var _ Recorder = (*PrometheusRecorder)(nil)
