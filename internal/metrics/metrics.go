// Package metrics exposes Prometheus counters for the segmenter and the
// combiner. A nil *Metrics is valid and records nothing.
package metrics

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "admstream"

// Push outcomes.
const (
	StatusAccepted = "accepted"
	StatusRejected = "rejected"
)

// Metrics holds every collector and the registry they are registered with.
type Metrics struct {
	registry *prometheus.Registry

	FramesBuilt        prometheus.Counter
	BlocksCopied       prometheus.Counter
	FrameBuildDuration prometheus.Histogram
	PushesTotal        *prometheus.CounterVec
	RejectionsTotal    *prometheus.CounterVec
	ElementsMerged     *prometheus.CounterVec
	BlocksMerged       prometheus.Counter
}

// New creates the collectors and registers them on a private registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),

		FramesBuilt: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "segmenter",
			Name:      "frames_total",
			Help:      "Total number of frames produced by the segmenter",
		}),
		BlocksCopied: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "segmenter",
			Name:      "blocks_copied_total",
			Help:      "Total number of block formats copied into frames",
		}),
		FrameBuildDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "segmenter",
			Name:      "frame_build_seconds",
			Help:      "Time spent building one frame",
			Buckets:   prometheus.ExponentialBuckets(0.00001, 4, 10),
		}),
		PushesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "combiner",
			Name:      "pushes_total",
			Help:      "Total number of frames pushed into the combiner",
		}, []string{"status"}),
		RejectionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "combiner",
			Name:      "rejections_total",
			Help:      "Rejected pushes by error kind",
		}, []string{"kind"}),
		ElementsMerged: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "combiner",
			Name:      "elements_merged_total",
			Help:      "Elements added to the running document by kind",
		}, []string{"kind"}),
		BlocksMerged: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "combiner",
			Name:      "blocks_merged_total",
			Help:      "Block formats appended to the running document",
		}),
	}
	m.registry.MustRegister(
		m.FramesBuilt,
		m.BlocksCopied,
		m.FrameBuildDuration,
		m.PushesTotal,
		m.RejectionsTotal,
		m.ElementsMerged,
		m.BlocksMerged,
	)
	return m
}

// Registry returns the registry holding the collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// RecordFrame counts one built frame.
func (m *Metrics) RecordFrame(blocks int, took time.Duration) {
	if m == nil {
		return
	}
	m.FramesBuilt.Inc()
	m.BlocksCopied.Add(float64(blocks))
	m.FrameBuildDuration.Observe(took.Seconds())
}

// RecordPush counts one accepted push and what it merged.
func (m *Metrics) RecordPush(elements map[string]int, blocks int) {
	if m == nil {
		return
	}
	m.PushesTotal.WithLabelValues(StatusAccepted).Inc()
	for kind, n := range elements {
		m.ElementsMerged.WithLabelValues(kind).Add(float64(n))
	}
	m.BlocksMerged.Add(float64(blocks))
}

// RecordRejection counts one rejected push.
func (m *Metrics) RecordRejection(kind string) {
	if m == nil {
		return
	}
	m.PushesTotal.WithLabelValues(StatusRejected).Inc()
	m.RejectionsTotal.WithLabelValues(kind).Inc()
}

// Sample is one gathered series value. Histograms report their sample count.
type Sample struct {
	Name   string
	Labels string
	Value  float64
}

// Snapshot gathers every series in name order.
func (m *Metrics) Snapshot() ([]Sample, error) {
	if m == nil {
		return nil, nil
	}
	families, err := m.registry.Gather()
	if err != nil {
		return nil, fmt.Errorf("gather metrics: %w", err)
	}
	var out []Sample
	for _, mf := range families {
		for _, metric := range mf.GetMetric() {
			labels := make([]string, 0, len(metric.GetLabel()))
			for _, lp := range metric.GetLabel() {
				labels = append(labels, lp.GetName()+"="+lp.GetValue())
			}
			s := Sample{Name: mf.GetName(), Labels: strings.Join(labels, ",")}
			switch {
			case metric.GetCounter() != nil:
				s.Value = metric.GetCounter().GetValue()
			case metric.GetGauge() != nil:
				s.Value = metric.GetGauge().GetValue()
			case metric.GetHistogram() != nil:
				s.Value = float64(metric.GetHistogram().GetSampleCount())
			}
			out = append(out, s)
		}
	}
	slices.SortStableFunc(out, func(a, b Sample) int {
		if c := strings.Compare(a.Name, b.Name); c != 0 {
			return c
		}
		return strings.Compare(a.Labels, b.Labels)
	})
	return out, nil
}

// Value returns the gathered value of a series, or 0 when absent.
func (m *Metrics) Value(name, labels string) float64 {
	samples, err := m.Snapshot()
	if err != nil {
		return 0
	}
	for _, s := range samples {
		if s.Name == name && s.Labels == labels {
			return s.Value
		}
	}
	return 0
}
