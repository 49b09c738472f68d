package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	DIDsCreated     prometheus.Counter
	DIDsDeactivated prometheus.Counter
	DIDsReactivated prometheus.Counter

	CredentialsIssued  *prometheus.CounterVec
	CredentialsRevoked prometheus.Counter

	VerificationsSubmitted prometheus.Counter
	VerificationsResolved  *prometheus.CounterVec
	ResolutionLatency      prometheus.Histogram

	EndpointLatency *prometheus.HistogramVec
}

// New creates and registers all metrics on the default registry.
func New() *Metrics {
	return NewWith(prometheus.DefaultRegisterer)
}

// NewWith registers the metrics on a caller-supplied registerer. Tests pass a
// fresh registry to avoid duplicate-registration panics.
func NewWith(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		DIDsCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "veridian_dids_created_total",
			Help: "Total number of DIDs created",
		}),
		DIDsDeactivated: factory.NewCounter(prometheus.CounterOpts{
			Name: "veridian_dids_deactivated_total",
			Help: "Total number of DID deactivations",
		}),
		DIDsReactivated: factory.NewCounter(prometheus.CounterOpts{
			Name: "veridian_dids_reactivated_total",
			Help: "Total number of DID reactivations",
		}),
		CredentialsIssued: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "veridian_credentials_issued_total",
			Help: "Total number of credentials issued, labeled by credential type",
		}, []string{"credential_type"}),
		CredentialsRevoked: factory.NewCounter(prometheus.CounterOpts{
			Name: "veridian_credentials_revoked_total",
			Help: "Total number of credentials revoked",
		}),
		VerificationsSubmitted: factory.NewCounter(prometheus.CounterOpts{
			Name: "veridian_verification_requests_total",
			Help: "Total number of verification requests submitted",
		}),
		VerificationsResolved: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "veridian_verifications_resolved_total",
			Help: "Total number of verification resolutions, labeled by result",
		}, []string{"result"}),
		ResolutionLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "veridian_verification_resolution_latency_seconds",
			Help:    "Latency of verification resolution in seconds",
			Buckets: prometheus.DefBuckets,
		}),
		EndpointLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "veridian_endpoint_latency_seconds",
			Help:    "Latency of endpoints in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),
	}
}

func (m *Metrics) IncrementDIDsCreated() {
	m.DIDsCreated.Inc()
}

func (m *Metrics) IncrementDIDsDeactivated() {
	m.DIDsDeactivated.Inc()
}

func (m *Metrics) IncrementDIDsReactivated() {
	m.DIDsReactivated.Inc()
}

// IncrementCredentialsIssued records an issuance with the credential type label.
func (m *Metrics) IncrementCredentialsIssued(credentialType string) {
	m.CredentialsIssued.WithLabelValues(credentialType).Inc()
}

func (m *Metrics) IncrementCredentialsRevoked() {
	m.CredentialsRevoked.Inc()
}

func (m *Metrics) IncrementVerificationsSubmitted() {
	m.VerificationsSubmitted.Inc()
}

// IncrementVerificationsResolved records a resolution outcome ("verified" or "rejected").
func (m *Metrics) IncrementVerificationsResolved(result string) {
	m.VerificationsResolved.WithLabelValues(result).Inc()
}

func (m *Metrics) ObserveResolutionLatency(seconds float64) {
	m.ResolutionLatency.Observe(seconds)
}

func (m *Metrics) ObserveEndpointLatency(endpoint string, seconds float64) {
	m.EndpointLatency.WithLabelValues(endpoint).Observe(seconds)
}
