package http

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rentledger_http_requests_total",
		Help: "HTTP requests by method, route and status.",
	}, []string{"method", "route", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "rentledger_http_request_duration_seconds",
		Help:    "HTTP request latency.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	paymentsRecordedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rentledger_payments_recorded_total",
		Help: "Payments applied to obligations.",
	})

	obligationsCreatedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rentledger_obligations_created_total",
		Help: "Obligations created, by kind.",
	}, []string{"kind"})

	overdueSweptTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rentledger_overdue_swept_total",
		Help: "Obligations flipped to overdue by sweeps.",
	})
)
