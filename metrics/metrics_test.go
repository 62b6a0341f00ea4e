package metrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestFormMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewFormMetrics(reg)

	m.ObserveSubmission(OutcomeAccepted)
	m.ObserveSubmission(OutcomeAccepted)
	m.ObserveSubmission(OutcomeInvalid)
	m.ObserveAffiliate("primary", StatusError, 0.2)
	m.ObserveAffiliate("fallback", StatusLenient, 0.1)
	m.ObserveMirror(nil)
	m.ObserveMirror(errors.New("timeout"))
	m.ObserveConversion(true)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.submissions.WithLabelValues(OutcomeAccepted)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.submissions.WithLabelValues(OutcomeInvalid)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.affiliateDelivery.WithLabelValues("fallback", StatusLenient)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.mirrors.WithLabelValues(StatusError)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.conversionsTracked.WithLabelValues(StatusOK)))
	assert.Equal(t, 2, testutil.CollectAndCount(m.affiliateLatency))
}

func TestNilFormMetrics(t *testing.T) {
	var m *FormMetrics
	assert.NotPanics(t, func() {
		m.ObserveSubmission(OutcomeAccepted)
		m.ObserveAffiliate("primary", StatusOK, 1)
		m.ObserveMirror(nil)
		m.ObserveConversion(false)
	})
}
