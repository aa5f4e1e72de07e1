// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Wolves Pet Store Contributors

package observability

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/wolvespetstore/petstore/internal/auth"
)

// Metrics contains the custom Prometheus metrics for the pet store.
type Metrics struct {
	AuthAttemptsTotal  *prometheus.CounterVec
	SessionsSweptTotal prometheus.Counter
	HTTPRequestsTotal  *prometheus.CounterVec
}

// NewMetrics creates and registers the custom metrics.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		AuthAttemptsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "petstore_auth_attempts_total",
				Help: "Total number of authentication operations by operation and outcome",
			},
			[]string{"operation", "outcome"},
		),
		SessionsSweptTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "petstore_auth_sessions_swept_total",
				Help: "Total number of expired sessions deleted by the sweeper",
			},
		),
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "petstore_http_requests_total",
				Help: "Total number of HTTP requests by method, route and status",
			},
			[]string{"method", "route", "status"},
		),
	}

	reg.MustRegister(m.AuthAttemptsTotal)
	reg.MustRegister(m.SessionsSweptTotal)
	reg.MustRegister(m.HTTPRequestsTotal)

	return m
}

// RecordAttempt implements auth.Metrics.
func (m *Metrics) RecordAttempt(operation, outcome string) {
	m.AuthAttemptsTotal.WithLabelValues(operation, outcome).Inc()
}

// RecordSweep adds the number of swept sessions. It matches the
// auth.Sweeper onSweep callback.
func (m *Metrics) RecordSweep(deleted int64) {
	if deleted > 0 {
		m.SessionsSweptTotal.Add(float64(deleted))
	}
}

// RecordRequest counts a completed HTTP request. route is the mux pattern,
// never the raw path, to keep label cardinality bounded.
func (m *Metrics) RecordRequest(method, route string, status int) {
	m.HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
}

var _ auth.Metrics = (*Metrics)(nil)
