// Package metrics exposes Prometheus collectors for the reservation
// workflow. All Record methods are safe to call on a nil receiver so
// components can run without metrics in tests.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// ReservationMetrics holds the counters and histograms for bookings,
// rejections and authorization denials.
type ReservationMetrics struct {
	created          prometheus.Counter
	rejected         *prometheus.CounterVec
	conflicts        prometheus.Counter
	authzDenied      *prometheus.CounterVec
	publishFailures  prometheus.Counter
	validateDuration prometheus.Histogram
}

// NewReservationMetrics registers the collectors on the default registerer.
func NewReservationMetrics() *ReservationMetrics {
	return NewReservationMetricsWithRegisterer(prometheus.DefaultRegisterer)
}

// NewReservationMetricsWithRegisterer registers the collectors on registerer.
// Registering twice on the same registerer returns the existing collectors.
func NewReservationMetricsWithRegisterer(registerer prometheus.Registerer) *ReservationMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	return &ReservationMetrics{
		created: registerCounter(registerer, prometheus.CounterOpts{
			Name: "spot_reservations_created_total",
			Help: "Total number of reservations persisted",
		}),
		rejected: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "spot_reservations_rejected_total",
			Help: "Total number of reservations refused by a business rule",
		}, []string{"category"}),
		conflicts: registerCounter(registerer, prometheus.CounterOpts{
			Name: "spot_reservations_conflicts_total",
			Help: "Total number of reservation transactions aborted by a concurrent writer",
		}),
		authzDenied: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "spot_authz_denied_total",
			Help: "Total number of single-resource accesses denied to a non-owner",
		}, []string{"resource"}),
		publishFailures: registerCounter(registerer, prometheus.CounterOpts{
			Name: "spot_event_publish_failures_total",
			Help: "Total number of reservation events that could not be published",
		}),
		validateDuration: registerHistogram(registerer, prometheus.HistogramOpts{
			Name:    "spot_reservation_validation_seconds",
			Help:    "Duration of the reservation rule checks in seconds",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0},
		}),
	}
}

func registerCounter(registerer prometheus.Registerer, opts prometheus.CounterOpts) prometheus.Counter {
	collector := prometheus.NewCounter(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Counter)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register counter %q: %v", opts.Name, err))
	}
	return collector
}

func registerCounterVec(registerer prometheus.Registerer, opts prometheus.CounterOpts, labels []string) *prometheus.CounterVec {
	collector := prometheus.NewCounterVec(opts, labels)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(*prometheus.CounterVec)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register counter vec %q: %v", opts.Name, err))
	}
	return collector
}

func registerHistogram(registerer prometheus.Registerer, opts prometheus.HistogramOpts) prometheus.Histogram {
	collector := prometheus.NewHistogram(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Histogram)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register histogram %q: %v", opts.Name, err))
	}
	return collector
}

// RecordCreated counts a persisted reservation.
func (m *ReservationMetrics) RecordCreated() {
	if m == nil {
		return
	}
	m.created.Inc()
}

// RecordRejected counts a rejection under its category label.
func (m *ReservationMetrics) RecordRejected(category string) {
	if m == nil {
		return
	}
	m.rejected.WithLabelValues(category).Inc()
}

// RecordConflict counts a transaction lost to a concurrent writer.
func (m *ReservationMetrics) RecordConflict() {
	if m == nil {
		return
	}
	m.conflicts.Inc()
}

// RecordAuthzDenied counts a denied access to resource ("pot", "reservation").
func (m *ReservationMetrics) RecordAuthzDenied(resource string) {
	if m == nil {
		return
	}
	m.authzDenied.WithLabelValues(resource).Inc()
}

// RecordPublishFailure counts an event that could not be published.
func (m *ReservationMetrics) RecordPublishFailure() {
	if m == nil {
		return
	}
	m.publishFailures.Inc()
}

// ObserveValidation records how long the rule checks took.
func (m *ReservationMetrics) ObserveValidation(d time.Duration) {
	if m == nil {
		return
	}
	m.validateDuration.Observe(d.Seconds())
}
