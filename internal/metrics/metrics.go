// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package metrics counts batch outcomes in a private Prometheus registry and
// writes them in the text exposition format at the end of a run, for
// node-exporter textfile collection.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "nanoextract"

// Document outcomes.
const (
	OutcomeExtracted = "extracted"
	OutcomeSkipped   = "skipped"
	OutcomeFailed    = "failed"
)

// Metrics holds the run's collectors. A nil *Metrics discards observations.
type Metrics struct {
	Registry *prometheus.Registry

	documents      *prometheus.CounterVec
	refinements    *prometheus.CounterVec
	documentTime   prometheus.Histogram
	oracleTime     prometheus.Histogram
	lastRunSuccess prometheus.Gauge
}

// New registers the collectors on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		documents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "documents_total",
			Help:      "Documents processed, by outcome.",
		}, []string{"outcome"}),
		refinements: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "refinements_total",
			Help:      "Refinement attempts, by resulting status.",
		}, []string{"status"}),
		documentTime: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "document_duration_seconds",
			Help:      "Time to read, extract and save one document.",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 12),
		}),
		oracleTime: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "oracle_duration_seconds",
			Help:      "Time spent waiting for the refinement oracle.",
			Buckets:   prometheus.ExponentialBuckets(0.25, 2, 10),
		}),
		lastRunSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_success",
			Help:      "1 if the last run finished without failed documents.",
		}),
	}
	m.Registry.MustRegister(m.documents, m.refinements, m.documentTime, m.oracleTime, m.lastRunSuccess)
	return m
}

// Document records one document outcome and its processing time.
func (m *Metrics) Document(outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.documents.WithLabelValues(outcome).Inc()
	if outcome != OutcomeSkipped {
		m.documentTime.Observe(elapsed.Seconds())
	}
}

// Refinement records one refinement status and the oracle wait.
func (m *Metrics) Refinement(status string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.refinements.WithLabelValues(status).Inc()
	m.oracleTime.Observe(elapsed.Seconds())
}

// RunFinished sets the success gauge.
func (m *Metrics) RunFinished(ok bool) {
	if m == nil {
		return
	}
	if ok {
		m.lastRunSuccess.Set(1)
	} else {
		m.lastRunSuccess.Set(0)
	}
}

// WriteFile writes all metrics to path atomically.
func (m *Metrics) WriteFile(path string) error {
	if m == nil {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, m.Registry); err != nil {
		return fmt.Errorf("writing metrics: %w", err)
	}
	return nil
}
