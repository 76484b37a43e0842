package util

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	WizardCompletionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wizard_completions_total",
		Help: "Total number of completed wizard scripts",
	}, []string{"script"})

	WizardValidationErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "wizard_validation_errors_total",
		Help: "Total number of operator inputs rejected by validation",
	})

	WizardAccessDeniedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "wizard_access_denied_total",
		Help: "Total number of wizard inputs rejected by role checks",
	})

	WizardSessionsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "wizard_sessions_active",
		Help: "Number of in-flight wizard sessions",
	})

	CatalogSaveConflictsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "catalog_save_conflicts_total",
		Help: "Total number of catalog compare-and-swap conflicts",
	})

	OrdersSubmittedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "orders_submitted_total",
		Help: "Total number of storefront orders accepted",
	})

	OrdersRejectedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "orders_rejected_total",
		Help: "Total number of storefront orders rejected as malformed",
	})

	OrderNotificationsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "order_notifications_total",
		Help: "Total number of order notifications delivered",
	})

	OrderNotificationFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "order_notification_failures_total",
		Help: "Total number of order notification deliveries that failed",
	})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})
)
