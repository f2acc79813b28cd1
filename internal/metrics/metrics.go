package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "aeroai"

// Metrics holds the Prometheus collectors for the API.
type Metrics struct {
	// Turbulence estimates.
	Estimates           *prometheus.CounterVec // labels: risk_level={Low,Medium,High}
	EstimateProbability prometheus.Histogram

	// Voice assistant.
	VoiceReplies  *prometheus.CounterVec // labels: outcome={ok,error,offline}
	VoiceDuration prometheus.Histogram
	VoiceOnline   prometheus.Gauge

	// HTTP.
	RequestDuration *prometheus.HistogramVec // labels: method, route, status
}

// New creates all collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Estimates: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "turbulence_estimates_total",
			Help:      "Turbulence estimates served, by risk level.",
		}, []string{"risk_level"}),
		EstimateProbability: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "turbulence_probability",
			Help:      "Distribution of returned turbulence probabilities.",
			Buckets:   []float64{10, 20, 30, 40, 50, 60, 70, 80, 90, 100},
		}),
		VoiceReplies: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "voice_replies_total",
			Help:      "Voice assistant replies, by outcome.",
		}, []string{"outcome"}),
		VoiceDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "voice_reply_duration_seconds",
			Help:      "Time spent producing a voice assistant reply, including the model call.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
		VoiceOnline: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "voice_online",
			Help:      "1 when the voice assistant has a model collaborator, 0 in offline mode.",
		}),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration by route pattern.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}

	reg.MustRegister(
		m.Estimates,
		m.EstimateProbability,
		m.VoiceReplies,
		m.VoiceDuration,
		m.VoiceOnline,
		m.RequestDuration,
	)

	return m
}
