package metrics

import "github.com/prometheus/client_golang/prometheus"

// EngineMetrics exposes counters, histograms and gauges for the schedule
// validation and booking flows. It satisfies the observer hooks of the
// upstream, schedule and booking packages.
type EngineMetrics struct {
	upstreamTotal     *prometheus.CounterVec
	upstreamLatency   *prometheus.HistogramVec
	validationTotal   *prometheus.CounterVec
	validationLatency prometheus.Histogram
	cacheEntries      *prometheus.GaugeVec
	bookingAttempts   prometheus.Counter
	bookingSuccess    prometheus.Counter
	bookingFailures   *prometheus.CounterVec
}

func NewEngineMetrics(reg prometheus.Registerer) *EngineMetrics {
	m := &EngineMetrics{
		upstreamTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "booking",
			Subsystem: "upstream",
			Name:      "calls_total",
			Help:      "Total upstream API calls by operation and outcome",
		}, []string{"op", "status"}),
		upstreamLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "booking",
			Subsystem: "upstream",
			Name:      "call_duration_seconds",
			Help:      "Latency of upstream API calls",
			Buckets:   prometheus.DefBuckets,
		}, []string{"op"}),
		validationTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "booking",
			Subsystem: "validation",
			Name:      "total",
			Help:      "Slot validations by outcome",
		}, []string{"outcome"}),
		validationLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "booking",
			Subsystem: "validation",
			Name:      "duration_seconds",
			Help:      "Latency of slot validation",
			Buckets:   prometheus.DefBuckets,
		}),
		cacheEntries: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "booking",
			Subsystem: "cache",
			Name:      "entries",
			Help:      "Entries currently held per cache",
		}, []string{"cache"}),
		bookingAttempts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "booking",
			Subsystem: "confirm",
			Name:      "attempts_total",
			Help:      "Booking confirmation attempts",
		}),
		bookingSuccess: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "booking",
			Subsystem: "confirm",
			Name:      "success_total",
			Help:      "Bookings confirmed upstream",
		}),
		bookingFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "booking",
			Subsystem: "confirm",
			Name:      "failures_total",
			Help:      "Failed booking confirmations by reason",
		}, []string{"reason"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(
		m.upstreamTotal,
		m.upstreamLatency,
		m.validationTotal,
		m.validationLatency,
		m.cacheEntries,
		m.bookingAttempts,
		m.bookingSuccess,
		m.bookingFailures,
	)
	return m
}

func (m *EngineMetrics) ObserveUpstreamCall(op, status string, seconds float64) {
	if m == nil {
		return
	}
	m.upstreamTotal.WithLabelValues(op, status).Inc()
	m.upstreamLatency.WithLabelValues(op).Observe(seconds)
}

func (m *EngineMetrics) ObserveValidation(outcome string, seconds float64) {
	if m == nil {
		return
	}
	m.validationTotal.WithLabelValues(outcome).Inc()
	m.validationLatency.Observe(seconds)
}

func (m *EngineMetrics) ObserveCacheEntries(cache string, entries int) {
	if m == nil {
		return
	}
	m.cacheEntries.WithLabelValues(cache).Set(float64(entries))
}

func (m *EngineMetrics) ObserveBookingAttempt() {
	if m == nil {
		return
	}
	m.bookingAttempts.Inc()
}

func (m *EngineMetrics) ObserveBookingResult(success bool, reason string) {
	if m == nil {
		return
	}
	if success {
		m.bookingSuccess.Inc()
		return
	}
	if reason == "" {
		reason = "unknown_error"
	}
	m.bookingFailures.WithLabelValues(reason).Inc()
}
