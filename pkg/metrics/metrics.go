package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Submission outcomes.
const (
	OutcomeSuccess = "success"
	OutcomeInvalid = "invalid"
	OutcomeSpam    = "spam"
	OutcomeError   = "error"
)

// Delivery results.
const (
	ResultSent     = "sent"
	ResultFailed   = "failed"
	ResultDisabled = "disabled"
)

// Metrics groups the service counters. A nil *Metrics is valid and records nothing.
type Metrics struct {
	submissions *prometheus.CounterVec
	deliveries  *prometheus.CounterVec
	signatures  prometheus.Counter
}

// New registers the service counters on reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		submissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "klinova",
			Name:      "contact_submissions_total",
			Help:      "Contact form submissions by outcome.",
		}, []string{"outcome"}),
		deliveries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "klinova",
			Name:      "mail_deliveries_total",
			Help:      "Transactional email delivery attempts by kind and result.",
		}, []string{"kind", "result"}),
		signatures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "klinova",
			Name:      "upload_signatures_total",
			Help:      "Upload signatures issued.",
		}),
	}
	reg.MustRegister(m.submissions, m.deliveries, m.signatures)
	return m
}

// NewRegistry returns a registry with the process and Go runtime collectors.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewGoCollector(),
	)
	return reg
}

// Handler serves the exposition format for reg.
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})
}

func (m *Metrics) ObserveSubmission(outcome string) {
	if m == nil {
		return
	}
	m.submissions.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObserveDelivery(kind, result string) {
	if m == nil {
		return
	}
	m.deliveries.WithLabelValues(kind, result).Inc()
}

func (m *Metrics) ObserveSignature() {
	if m == nil {
		return
	}
	m.signatures.Inc()
}
