package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics stores Prometheus collectors used across the service.
type Metrics struct {
	ChatRequests       *prometheus.CounterVec
	IntentMatches      *prometheus.CounterVec
	BackendRequests    *prometheus.CounterVec
	BackendLatency     *prometheus.HistogramVec
	SpeechRequests     *prometheus.CounterVec
	SpeechLatency      *prometheus.HistogramVec
	WAIncomingMessages *prometheus.CounterVec
	WAOutgoingMessages *prometheus.CounterVec
	Errors             *prometheus.CounterVec
}

var (
	regOnce         sync.Once
	metricsInstance *Metrics
)

// Registry builds and registers the metrics singleton with optional namespace.
func Registry(namespace string) *Metrics {
	regOnce.Do(func() {
		metricsInstance = &Metrics{
			ChatRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "chat_requests_total",
				Help:      "Total chat utterances routed, by channel.",
			}, []string{"channel"}),
			IntentMatches: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "intent_matches_total",
				Help:      "Total intent classifications by intent and language.",
			}, []string{"intent", "language"}),
			BackendRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "backend_requests_total",
				Help:      "Total merchant backend API requests by endpoint and status.",
			}, []string{"endpoint", "status"}),
			BackendLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "backend_request_duration_seconds",
				Help:      "Latency distribution for merchant backend API requests.",
				Buckets:   prometheus.DefBuckets,
			}, []string{"endpoint", "status"}),
			SpeechRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "speech_requests_total",
				Help:      "Total speech provider requests by provider and outcome.",
			}, []string{"provider", "status"}),
			SpeechLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "speech_request_duration_seconds",
				Help:      "Latency distribution for speech provider calls.",
				Buckets:   prometheus.DefBuckets,
			}, []string{"provider", "status"}),
			WAIncomingMessages: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "wa_incoming_messages_total",
				Help:      "Total incoming WhatsApp messages processed.",
			}, []string{"type"}),
			WAOutgoingMessages: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "wa_outgoing_messages_total",
				Help:      "Total outgoing WhatsApp messages sent.",
			}, []string{"type"}),
			Errors: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "errors_total",
				Help:      "Total errors grouped by component.",
			}, []string{"component"}),
		}

		prometheus.MustRegister(
			metricsInstance.ChatRequests,
			metricsInstance.IntentMatches,
			metricsInstance.BackendRequests,
			metricsInstance.BackendLatency,
			metricsInstance.SpeechRequests,
			metricsInstance.SpeechLatency,
			metricsInstance.WAIncomingMessages,
			metricsInstance.WAOutgoingMessages,
			metricsInstance.Errors,
		)
	})
	return metricsInstance
}
