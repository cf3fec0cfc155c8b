// Package metrics exposes Prometheus counters for quota, billing and HTTP.
package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/formcraft-io/formcraft/internal/domain/billing"
)

// knownEventTypes bounds the type label; anything else is reported as "other".
var knownEventTypes = map[string]struct{}{
	billing.EventSubscriptionCreated:     {},
	billing.EventSubscriptionUpdated:     {},
	billing.EventSubscriptionDeleted:     {},
	billing.EventInvoicePaymentFailed:    {},
	billing.EventInvoicePaymentSucceeded: {},
	billing.EventInvoicePaid:             {},
	"unknown":                            {},
}

type Metrics struct {
	registry *prometheus.Registry

	QuotaExceededTotal      *prometheus.CounterVec
	QuotaNotificationsTotal *prometheus.CounterVec
	WebhookEventsTotal      *prometheus.CounterVec
	DunningTransitionsTotal *prometheus.CounterVec

	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
}

// NewMetrics creates and registers every collector on registry.
func NewMetrics(registry *prometheus.Registry) *Metrics {
	m := &Metrics{
		registry: registry,
		QuotaExceededTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "formcraft_quota_exceeded_total",
				Help: "Actions rejected because the plan limit was reached",
			},
			[]string{"action"},
		),
		QuotaNotificationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "formcraft_quota_notifications_total",
				Help: "Quota threshold notifications by outcome",
			},
			[]string{"threshold", "result"},
		),
		WebhookEventsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "formcraft_webhook_events_total",
				Help: "Payment provider webhook deliveries by type and result",
			},
			[]string{"type", "result"},
		),
		DunningTransitionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "formcraft_dunning_transitions_total",
				Help: "Dunning stages applied after failed payments",
			},
			[]string{"stage"},
		),
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "formcraft_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "formcraft_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
	}

	registry.MustRegister(
		m.QuotaExceededTotal,
		m.QuotaNotificationsTotal,
		m.WebhookEventsTotal,
		m.DunningTransitionsTotal,
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
	)
	return m
}

func (m *Metrics) QuotaExceeded(action string) {
	m.QuotaExceededTotal.WithLabelValues(action).Inc()
}

func (m *Metrics) QuotaNotification(threshold int, delivered bool) {
	result := "sent"
	if !delivered {
		result = "failed"
	}
	m.QuotaNotificationsTotal.WithLabelValues(strconv.Itoa(threshold), result).Inc()
}

func (m *Metrics) WebhookEvent(eventType, result string) {
	if _, ok := knownEventTypes[eventType]; !ok {
		eventType = "other"
	}
	m.WebhookEventsTotal.WithLabelValues(eventType, result).Inc()
}

func (m *Metrics) DunningStage(stage billing.Stage) {
	m.DunningTransitionsTotal.WithLabelValues(string(stage)).Inc()
}

func (m *Metrics) ObserveHTTP(method, route string, status int, seconds float64) {
	if route == "" {
		route = "unmatched"
	}
	m.HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, route).Observe(seconds)
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
