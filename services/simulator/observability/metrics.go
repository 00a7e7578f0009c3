// Copyright (C) 2026 kuprich777
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package observability provides Prometheus metrics for the simulator.
//
// Metrics cover scenario runs, individual steps, Monte Carlo trials,
// upstream calls to the sector services, and best-effort exports.
// Exposed via the /metrics endpoint; all operations are thread-safe via
// Prometheus's internal locking.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// =============================================================================
// Metric Definitions
// =============================================================================

const metricsNamespace = "cascade"

const simulatorSubsystem = "simulator"

// SimulatorMetrics holds all Prometheus metrics for scenario execution.
// Initialize once at startup via InitMetrics().
type SimulatorMetrics struct {
	// ScenarioRunsTotal counts scenario runs by terminal status.
	// Labels: status (completed, failed, rejected)
	ScenarioRunsTotal *prometheus.CounterVec

	// StepsTotal counts applied steps.
	// Labels: sector, action, status (ok, error)
	StepsTotal *prometheus.CounterVec

	// ScenarioDurationSeconds measures wall time of one scenario run or
	// one whole Monte Carlo batch.
	// Labels: mode (single, batch)
	ScenarioDurationSeconds *prometheus.HistogramVec

	// TrialsTotal counts Monte Carlo trials by outcome.
	// Labels: status (completed, failed)
	TrialsTotal *prometheus.CounterVec

	// ActiveTrials tracks trials currently in flight.
	ActiveTrials prometheus.Gauge

	// UpstreamRequestsTotal counts calls to sector services.
	// Labels: sector, status (ok, transport_error, or HTTP code)
	UpstreamRequestsTotal *prometheus.CounterVec

	// ExportsTotal counts best-effort registry exports.
	// Labels: status (ok, error)
	ExportsTotal *prometheus.CounterVec
}

// DefaultMetrics is the singleton instance, set by InitMetrics. Helper
// functions below are no-ops while it is nil, which keeps unit tests
// free of registry setup.
var DefaultMetrics *SimulatorMetrics

// InitMetrics creates and registers all metrics on the default
// registry. Call once at application startup.
func InitMetrics() *SimulatorMetrics {
	m := &SimulatorMetrics{
		ScenarioRunsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: simulatorSubsystem,
			Name:      "scenario_runs_total",
			Help:      "Scenario runs by terminal status.",
		}, []string{"status"}),
		StepsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: simulatorSubsystem,
			Name:      "steps_total",
			Help:      "Scenario steps applied, by sector, action and status.",
		}, []string{"sector", "action", "status"}),
		ScenarioDurationSeconds: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: simulatorSubsystem,
			Name:      "scenario_duration_seconds",
			Help:      "Wall time of one scenario run or Monte Carlo batch.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"mode"}),
		TrialsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: simulatorSubsystem,
			Name:      "monte_carlo_trials_total",
			Help:      "Monte Carlo trials by outcome.",
		}, []string{"status"}),
		ActiveTrials: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Subsystem: simulatorSubsystem,
			Name:      "active_trials",
			Help:      "Monte Carlo trials currently in flight.",
		}),
		UpstreamRequestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: simulatorSubsystem,
			Name:      "upstream_requests_total",
			Help:      "Requests to sector services by outcome.",
		}, []string{"sector", "status"}),
		ExportsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: simulatorSubsystem,
			Name:      "exports_total",
			Help:      "Best-effort experiment exports by outcome.",
		}, []string{"status"}),
	}
	DefaultMetrics = m
	return m
}

// =============================================================================
// Helpers (nil-safe around DefaultMetrics)
// =============================================================================

// RecordScenarioRun counts one scenario run outcome.
func RecordScenarioRun(status string) {
	if m := DefaultMetrics; m != nil {
		m.ScenarioRunsTotal.WithLabelValues(status).Inc()
	}
}

// RecordStep counts one applied step outcome.
func RecordStep(sector, action, status string) {
	if m := DefaultMetrics; m != nil {
		m.StepsTotal.WithLabelValues(sector, action, status).Inc()
	}
}

// ObserveScenarioDuration records wall time for a run.
func ObserveScenarioDuration(mode string, seconds float64) {
	if m := DefaultMetrics; m != nil {
		m.ScenarioDurationSeconds.WithLabelValues(mode).Observe(seconds)
	}
}

// RecordTrial counts one Monte Carlo trial outcome.
func RecordTrial(status string) {
	if m := DefaultMetrics; m != nil {
		m.TrialsTotal.WithLabelValues(status).Inc()
	}
}

// TrialStarted / TrialFinished move the in-flight gauge.
func TrialStarted() {
	if m := DefaultMetrics; m != nil {
		m.ActiveTrials.Inc()
	}
}

func TrialFinished() {
	if m := DefaultMetrics; m != nil {
		m.ActiveTrials.Dec()
	}
}

// RecordUpstreamRequest counts one sector service call outcome.
func RecordUpstreamRequest(sector, status string) {
	if m := DefaultMetrics; m != nil {
		m.UpstreamRequestsTotal.WithLabelValues(sector, status).Inc()
	}
}

// RecordExport counts one registry export outcome.
func RecordExport(status string) {
	if m := DefaultMetrics; m != nil {
		m.ExportsTotal.WithLabelValues(status).Inc()
	}
}
