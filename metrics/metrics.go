// Package metrics - Prometheus collectors for pose inference.
package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Stage names a step of a prediction.
type Stage string

const (
	// StagePreprocess covers resize and normalization.
	StagePreprocess Stage = "preprocess"
	// StageInference covers the ONNX Runtime run.
	StageInference Stage = "inference"
	// StageDecode covers heatmap decoding.
	StageDecode Stage = "decode"
)

// Recorder receives prediction measurements.
type Recorder interface {
	ObserveStage(stage Stage, d time.Duration)
	ObserveSkeleton(detected, joints, bones int)
	ObserveError(stage Stage)
}

// Config controls metric registration.
type Config struct {
	// Enabled turns collection on.
	Enabled bool `json:"enabled" yaml:"enabled"`
	// Namespace prefixes every metric name.
	Namespace string `json:"namespace" yaml:"namespace"`
	// Addr is the listen address for the /metrics endpoint, empty to disable serving.
	Addr string `json:"addr" yaml:"addr"`
}

// DefaultConfig returns a disabled configuration under the "pose" namespace.
func DefaultConfig() Config {
	return Config{Namespace: "pose"}
}

// Metrics holds the Prometheus collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	stageSeconds  *prometheus.HistogramVec
	errors        *prometheus.CounterVec
	predictions   prometheus.Counter
	jointsFound   prometheus.Histogram
	detectedRatio prometheus.Gauge
	bones         prometheus.Histogram
}

// New creates and registers the collectors.
//
// Arguments:
//   - namespace: The metric name prefix.
//
// Returns:
//   - *Metrics: The metrics set.
func New(namespace string) *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		stageSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Duration of each prediction stage",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 2, 16),
		}, []string{"stage"}),
		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "errors_total",
			Help:      "Prediction failures by stage",
		}, []string{"stage"}),
		predictions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "skeletons_total",
			Help:      "Skeletons decoded",
		}),
		jointsFound: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "joints_detected",
			Help:      "Joints above threshold per skeleton",
			Buckets:   prometheus.LinearBuckets(0, 2, 12),
		}),
		detectedRatio: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "joints_detected_ratio",
			Help:      "Fraction of joints detected in the last skeleton",
		}),
		bones: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "bones_connected",
			Help:      "Bones emitted per skeleton",
			Buckets:   prometheus.LinearBuckets(0, 2, 12),
		}),
	}

	m.registry.MustRegister(
		m.stageSeconds,
		m.errors,
		m.predictions,
		m.jointsFound,
		m.detectedRatio,
		m.bones,
	)
	return m
}

// ObserveStage records how long a stage took.
func (m *Metrics) ObserveStage(stage Stage, d time.Duration) {
	m.stageSeconds.WithLabelValues(string(stage)).Observe(d.Seconds())
}

// ObserveSkeleton records the shape of a decoded skeleton.
func (m *Metrics) ObserveSkeleton(detected, joints, bones int) {
	m.predictions.Inc()
	m.jointsFound.Observe(float64(detected))
	m.bones.Observe(float64(bones))
	if joints > 0 {
		m.detectedRatio.Set(float64(detected) / float64(joints))
	}
}

// ObserveError counts a failed stage.
func (m *Metrics) ObserveError(stage Stage) {
	m.errors.WithLabelValues(string(stage)).Inc()
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Nop discards all measurements.
type Nop struct{}

// ObserveStage implements Recorder.
func (Nop) ObserveStage(Stage, time.Duration) {}

// ObserveSkeleton implements Recorder.
func (Nop) ObserveSkeleton(int, int, int) {}

// ObserveError implements Recorder.
func (Nop) ObserveError(Stage) {}

// Serve exposes /metrics on addr until ctx is cancelled.
func (m *Metrics) Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		_ = srv.Close()
	}()

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
