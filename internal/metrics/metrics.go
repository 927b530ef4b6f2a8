package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	metricPrefix = "ebill_"

	ResultSuccess = "success"
	ResultError   = "error"
)

var (
	registerOnce sync.Once

	billsGenerated *prometheus.CounterVec
	billsRejected  *prometheus.CounterVec
	statusUpdates  *prometheus.CounterVec

	billedUnits   *prometheus.HistogramVec
	renderTotal   *prometheus.CounterVec
	renderLatency *prometheus.HistogramVec

	loginAttempts *prometheus.CounterVec
)

// Init registers the billing metrics with the default registry. Observations
// made before Init are dropped.
func Init() {
	registerOnce.Do(func() {
		billsGenerated = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "bills_generated_total",
				Help: "Total bills generated by customer type",
			},
			[]string{"customer_type"},
		)
		billsRejected = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "bills_rejected_total",
				Help: "Total bill generation requests rejected by customer type and reason",
			},
			[]string{"customer_type", "reason"},
		)
		statusUpdates = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "bill_status_updates_total",
				Help: "Total bill status updates by target status",
			},
			[]string{"status"},
		)
		billedUnits = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "billed_units",
				Help:    "Units consumed per generated bill",
				Buckets: []float64{0, 100, 250, 500, 1000, 2500, 5000, 10000, 25000, 50000},
			},
			[]string{"customer_type"},
		)
		renderTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "documents_rendered_total",
				Help: "Total rendered documents by format and result",
			},
			[]string{"format", "result"},
		)
		renderLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "document_render_latency_seconds",
				Help:    "Document render latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"format"},
		)
		loginAttempts = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "login_attempts_total",
				Help: "Total login attempts by result",
			},
			[]string{"result"},
		)

		prometheus.MustRegister(
			billsGenerated,
			billsRejected,
			statusUpdates,
			billedUnits,
			renderTotal,
			renderLatency,
			loginAttempts,
		)
	})
}

// ObserveBillGenerated counts a persisted bill and its consumption.
func ObserveBillGenerated(customerType string, units float64) {
	if billsGenerated != nil {
		billsGenerated.WithLabelValues(customerType).Inc()
	}
	if billedUnits != nil {
		billedUnits.WithLabelValues(customerType).Observe(units)
	}
}

// IncBillRejected counts a generation request that produced no bill.
func IncBillRejected(customerType, reason string) {
	if reason == "" {
		reason = "unknown"
	}
	if billsRejected != nil {
		billsRejected.WithLabelValues(customerType, reason).Inc()
	}
}

// IncStatusUpdate counts an administrative status change.
func IncStatusUpdate(status string) {
	if statusUpdates != nil {
		statusUpdates.WithLabelValues(status).Inc()
	}
}

// ObserveRender records a rendered document.
func ObserveRender(format, result string, duration time.Duration) {
	if result == "" {
		result = ResultSuccess
	}
	if renderTotal != nil {
		renderTotal.WithLabelValues(format, result).Inc()
	}
	if renderLatency != nil {
		renderLatency.WithLabelValues(format).Observe(duration.Seconds())
	}
}

// IncLogin counts a login attempt.
func IncLogin(result string) {
	if loginAttempts != nil {
		loginAttempts.WithLabelValues(result).Inc()
	}
}
