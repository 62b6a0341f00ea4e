package metrics

import "github.com/prometheus/client_golang/prometheus"

// FormMetrics exposes counters/histograms for the lead capture flow.
type FormMetrics struct {
	submissions        *prometheus.CounterVec
	affiliateDelivery  *prometheus.CounterVec
	affiliateLatency   *prometheus.HistogramVec
	mirrors            *prometheus.CounterVec
	conversionsTracked *prometheus.CounterVec
}

func NewFormMetrics(reg prometheus.Registerer) *FormMetrics {
	m := &FormMetrics{
		submissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "leadform",
			Subsystem: "form",
			Name:      "submissions_total",
			Help:      "Form submissions by outcome",
		}, []string{"outcome"}),
		affiliateDelivery: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "leadform",
			Subsystem: "affiliate",
			Name:      "deliveries_total",
			Help:      "Affiliate order delivery attempts by channel and status",
		}, []string{"channel", "status"}),
		affiliateLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "leadform",
			Subsystem: "affiliate",
			Name:      "request_seconds",
			Help:      "Latency of affiliate network calls",
			Buckets:   prometheus.DefBuckets,
		}, []string{"channel"}),
		mirrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "leadform",
			Subsystem: "sheets",
			Name:      "mirror_total",
			Help:      "Spreadsheet mirror posts by status",
		}, []string{"status"}),
		conversionsTracked: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "leadform",
			Subsystem: "affiliate",
			Name:      "conversions_total",
			Help:      "Conversion tracking calls by status",
		}, []string{"status"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.submissions, m.affiliateDelivery, m.affiliateLatency, m.mirrors, m.conversionsTracked)
	return m
}

// Submission outcomes.
const (
	OutcomeInvalid      = "invalid"
	OutcomePersistError = "persist_error"
	OutcomeAccepted     = "accepted"
)

// Affiliate delivery statuses. Lenient marks a fallback response that was not
// 2xx but still counted as delivered.
const (
	StatusOK      = "ok"
	StatusLenient = "lenient"
	StatusError   = "error"
)

func (m *FormMetrics) ObserveSubmission(outcome string) {
	if m == nil {
		return
	}
	m.submissions.WithLabelValues(outcome).Inc()
}

func (m *FormMetrics) ObserveAffiliate(channel, status string, seconds float64) {
	if m == nil {
		return
	}
	m.affiliateDelivery.WithLabelValues(channel, status).Inc()
	m.affiliateLatency.WithLabelValues(channel).Observe(seconds)
}

func (m *FormMetrics) ObserveMirror(err error) {
	if m == nil {
		return
	}
	status := StatusOK
	if err != nil {
		status = StatusError
	}
	m.mirrors.WithLabelValues(status).Inc()
}

func (m *FormMetrics) ObserveConversion(tracked bool) {
	if m == nil {
		return
	}
	status := StatusOK
	if !tracked {
		status = StatusError
	}
	m.conversionsTracked.WithLabelValues(status).Inc()
}
