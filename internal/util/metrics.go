package util

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	APIRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_api_requests_total",
		Help: "Total number of backend API requests",
	}, []string{"method", "path", "status"})

	APIRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "storefront_api_request_duration_seconds",
		Help:    "Backend API request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path"})

	APIErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_api_errors_total",
		Help: "Total number of failed backend API requests by error kind",
	}, []string{"kind"})

	StaleResponsesDiscarded = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_stale_responses_discarded_total",
		Help: "Responses dropped because a newer request superseded them",
	}, []string{"operation"})

	SessionClearsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_session_clears_total",
		Help: "Total number of session clears",
	}, []string{"reason"})

	OrdersPlacedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "storefront_orders_placed_total",
		Help: "Total number of orders placed through the client",
	})

	CartMutationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_cart_mutations_total",
		Help: "Total number of cart mutations by operation",
	}, []string{"operation"})

	NoticesPublishedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_notices_published_total",
		Help: "Total number of one-shot notices published",
	}, []string{"level"})
)
