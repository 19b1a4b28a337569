package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// TerminalMetrics records sale and report-delivery counters for the register.
type TerminalMetrics struct {
	saleDuration  *prometheus.HistogramVec
	salesRecorded *prometheus.CounterVec
	reportSends   *prometheus.CounterVec
	sendFailures  *prometheus.CounterVec
}

// NewTerminalMetrics registers the terminal metrics on the provided registerer.
func NewTerminalMetrics(reg prometheus.Registerer) *TerminalMetrics {
	if reg == nil {
		return &TerminalMetrics{}
	}
	saleDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "sale_finalize_duration_seconds",
		Help:    "Duration of sale finalization in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"payment_method"})
	salesRecorded := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sales_recorded_total",
		Help: "Sales appended to the ledger.",
	}, []string{"payment_method"})
	reportSends := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "shift_report_sends_total",
		Help: "Shift reports handed to the notification gateway.",
	}, []string{"channel"})
	sendFailures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "shift_report_send_failures_total",
		Help: "Failed shift report deliveries.",
	}, []string{"channel"})
	reg.MustRegister(saleDuration, salesRecorded, reportSends, sendFailures)
	return &TerminalMetrics{
		saleDuration:  saleDuration,
		salesRecorded: salesRecorded,
		reportSends:   reportSends,
		sendFailures:  sendFailures,
	}
}

// ObserveSaleDuration records how long a finalize took.
func (m *TerminalMetrics) ObserveSaleDuration(method string, duration time.Duration) {
	if m == nil || m.saleDuration == nil {
		return
	}
	m.saleDuration.WithLabelValues(normalizeLabel(method)).Observe(duration.Seconds())
}

// IncSaleRecorded increments the ledger append counter.
func (m *TerminalMetrics) IncSaleRecorded(method string) {
	if m == nil || m.salesRecorded == nil {
		return
	}
	m.salesRecorded.WithLabelValues(normalizeLabel(method)).Inc()
}

// IncReportSend increments the delivery attempt counter.
func (m *TerminalMetrics) IncReportSend(channel string) {
	if m == nil || m.reportSends == nil {
		return
	}
	m.reportSends.WithLabelValues(normalizeLabel(channel)).Inc()
}

// IncSendFailure increments the delivery failure counter.
func (m *TerminalMetrics) IncSendFailure(channel string) {
	if m == nil || m.sendFailures == nil {
		return
	}
	m.sendFailures.WithLabelValues(normalizeLabel(channel)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
