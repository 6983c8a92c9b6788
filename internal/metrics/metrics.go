package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type ServerMetrics struct {
	Requests      *prometheus.CounterVec
	LatencyMS     *prometheus.HistogramVec
	WebhookEvents *prometheus.CounterVec
}

func NewServerMetrics() *ServerMetrics {
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "atelier",
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests.",
	}, []string{"handler", "status"})
	latency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "atelier",
		Name:      "http_request_duration_ms",
		Help:      "HTTP request latency in milliseconds.",
		Buckets:   []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
	}, []string{"handler"})
	webhookEvents := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "atelier",
		Name:      "payment_webhook_events_total",
		Help:      "Payment processor notifications by kind and reconciliation outcome.",
	}, []string{"kind", "outcome"})

	prometheus.MustRegister(requests, latency, webhookEvents)
	return &ServerMetrics{Requests: requests, LatencyMS: latency, WebhookEvents: webhookEvents}
}

func Handler() http.Handler {
	return promhttp.Handler()
}
