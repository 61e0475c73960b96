// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package metrics provides Prometheus counters for the identity and
// attendance flows.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Result labels.
const (
	ResultSuccess = "success"
	ResultFailure = "failure"
)

// Metrics holds all counters. A disabled instance records nothing.
type Metrics struct {
	enabled  bool
	registry *prometheus.Registry

	operationsTotal *prometheus.CounterVec
	otpSentTotal    *prometheus.CounterVec
	pendingPurged   prometheus.Counter
}

// New creates and registers the counters on a private registry.
// If enabled is false, returns a no-op Metrics instance.
func New(enabled bool) *Metrics {
	m := &Metrics{enabled: enabled}

	if !enabled {
		return m
	}

	m.registry = prometheus.NewRegistry()
	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m.operationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "dayflow_operations_total",
		Help: "Total operations by name and result",
	}, []string{"operation", "result", "reason"})

	m.otpSentTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "dayflow_otp_notifications_total",
		Help: "OTP notifications by delivery outcome",
	}, []string{"result"})

	m.pendingPurged = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "dayflow_pending_registrations_purged_total",
		Help: "Stale pending registrations removed by the sweeper",
	})

	m.registry.MustRegister(m.operationsTotal, m.otpSentTotal, m.pendingPurged)

	return m
}

// Enabled reports whether metrics are collected.
func (m *Metrics) Enabled() bool {
	return m != nil && m.enabled
}

// RecordOperation counts one operation outcome. reason is empty on success.
func (m *Metrics) RecordOperation(operation, result, reason string) {
	if !m.Enabled() {
		return
	}
	m.operationsTotal.WithLabelValues(operation, result, reason).Inc()
}

// RecordOTPDelivery counts one OTP notification attempt.
func (m *Metrics) RecordOTPDelivery(delivered bool) {
	if !m.Enabled() {
		return
	}
	result := ResultSuccess
	if !delivered {
		result = ResultFailure
	}
	m.otpSentTotal.WithLabelValues(result).Inc()
}

// AddPurged counts removed pending registrations.
func (m *Metrics) AddPurged(n int64) {
	if !m.Enabled() || n <= 0 {
		return
	}
	m.pendingPurged.Add(float64(n))
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if !m.Enabled() {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Gatherer exposes the registry for tests.
func (m *Metrics) Gatherer() prometheus.Gatherer {
	if !m.Enabled() {
		return prometheus.NewRegistry()
	}
	return m.registry
}
