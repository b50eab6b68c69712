// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package observability provides Prometheus metrics for the citation
// network service.
//
// # Description
//
// Metrics cover the full request lifecycle:
//   - Build counters and duration histograms (by status)
//   - Analysis counters and duration histograms (by status)
//   - Graph size gauges (nodes, edges)
//   - Snapshot operation counters (by operation, status)
//
// # Integration
//
// Metrics are exposed via the /metrics endpoint. Use with Prometheus +
// Grafana for dashboards and alerting.
//
// # Thread Safety
//
// All metric operations are thread-safe via Prometheus's internal
// locking.
package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Namespace for all metrics
const metricsNamespace = "aleutian"

// Subsystem for citation network metrics
const citenetSubsystem = "citenet"

// Metrics holds all Prometheus metrics for citation network operations.
//
// Initialize once at startup via InitMetrics(); tests construct
// isolated instances with NewMetrics and a private registry.
type Metrics struct {
	// BuildsTotal counts network builds.
	// Labels: status (success, error)
	BuildsTotal *prometheus.CounterVec

	// BuildDurationSeconds measures build duration.
	// Labels: status (success, error)
	BuildDurationSeconds *prometheus.HistogramVec

	// AnalysesTotal counts analysis runs.
	// Labels: status (success, error, cached)
	AnalysesTotal *prometheus.CounterVec

	// AnalysisDurationSeconds measures full-pipeline analysis duration.
	// Labels: status (success, error)
	AnalysisDurationSeconds *prometheus.HistogramVec

	// GraphNodes tracks the current network's node count.
	GraphNodes prometheus.Gauge

	// GraphEdges tracks the current network's direct edge count.
	GraphEdges prometheus.Gauge

	// SnapshotOpsTotal counts snapshot operations.
	// Labels: op (save, load, put, get, list, delete), status
	SnapshotOpsTotal *prometheus.CounterVec
}

// DefaultMetrics is the singleton instance registered against the
// default Prometheus registry. Initialized by InitMetrics().
var DefaultMetrics *Metrics

var initOnce sync.Once

// InitMetrics initializes the default metrics instance.
//
// # Description
//
// Creates and registers all Prometheus metrics against the default
// registry. Safe to call more than once; registration happens on the
// first call only.
//
// # Outputs
//
//   - *Metrics: The initialized singleton.
func InitMetrics() *Metrics {
	initOnce.Do(func() {
		DefaultMetrics = NewMetrics(prometheus.DefaultRegisterer)
	})
	return DefaultMetrics
}

// NewMetrics creates and registers metrics against the given registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		BuildsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: citenetSubsystem,
				Name:      "builds_total",
				Help:      "Total network builds by status",
			},
			[]string{"status"},
		),

		BuildDurationSeconds: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Subsystem: citenetSubsystem,
				Name:      "build_duration_seconds",
				Help:      "Network build duration in seconds",
				Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 15, 60},
			},
			[]string{"status"},
		),

		AnalysesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: citenetSubsystem,
				Name:      "analyses_total",
				Help:      "Total analysis runs by status",
			},
			[]string{"status"},
		),

		AnalysisDurationSeconds: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Subsystem: citenetSubsystem,
				Name:      "analysis_duration_seconds",
				Help:      "Full analysis pipeline duration in seconds",
				Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 15, 60, 300},
			},
			[]string{"status"},
		),

		GraphNodes: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: metricsNamespace,
				Subsystem: citenetSubsystem,
				Name:      "graph_nodes",
				Help:      "Node count of the currently loaded network",
			},
		),

		GraphEdges: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: metricsNamespace,
				Subsystem: citenetSubsystem,
				Name:      "graph_edges",
				Help:      "Direct edge count of the currently loaded network",
			},
		),

		SnapshotOpsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: citenetSubsystem,
				Name:      "snapshot_ops_total",
				Help:      "Snapshot operations by op and status",
			},
			[]string{"op", "status"},
		),
	}
}

// ObserveBuild records a build outcome and its duration.
func (m *Metrics) ObserveBuild(status string, seconds float64) {
	if m == nil {
		return
	}
	m.BuildsTotal.WithLabelValues(status).Inc()
	m.BuildDurationSeconds.WithLabelValues(status).Observe(seconds)
}

// ObserveAnalysis records an analysis outcome and its duration.
func (m *Metrics) ObserveAnalysis(status string, seconds float64) {
	if m == nil {
		return
	}
	m.AnalysesTotal.WithLabelValues(status).Inc()
	m.AnalysisDurationSeconds.WithLabelValues(status).Observe(seconds)
}

// ObserveCachedAnalysis records an analysis served from cache.
func (m *Metrics) ObserveCachedAnalysis() {
	if m == nil {
		return
	}
	m.AnalysesTotal.WithLabelValues("cached").Inc()
}

// SetGraphSize updates the network size gauges.
func (m *Metrics) SetGraphSize(nodes, edges int) {
	if m == nil {
		return
	}
	m.GraphNodes.Set(float64(nodes))
	m.GraphEdges.Set(float64(edges))
}

// ObserveSnapshotOp records a snapshot operation outcome.
func (m *Metrics) ObserveSnapshotOp(op, status string) {
	if m == nil {
		return
	}
	m.SnapshotOpsTotal.WithLabelValues(op, status).Inc()
}
