package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all application metrics
type Metrics struct {
	// Treatment engine metrics
	TreatmentsRecorded  *prometheus.CounterVec
	IncorrectTreatments prometheus.Counter
	DoctorsDeactivated  prometheus.Counter
	PatientsDischarged  prometheus.Counter
	PatientsPurged      prometheus.Counter

	// Outbox related metrics
	OutboxEventsProcessed   prometheus.Counter
	OutboxEventsFailed      prometheus.Counter
	OutboxProcessingLatency prometheus.Histogram

	// Database metrics
	DatabaseOperations *prometheus.CounterVec
	DatabaseLatency    *prometheus.HistogramVec
}

// New creates and registers all application metrics
func New(namespace string) *Metrics {
	return &Metrics{
		TreatmentsRecorded: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "treatments_recorded_total",
			Help:      "Total number of treatments recorded, by outcome",
		}, []string{"outcome"}),
		IncorrectTreatments: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "incorrect_treatments_total",
			Help:      "Total number of incorrect treatments recorded",
		}),
		DoctorsDeactivated: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "doctors_deactivated_total",
			Help:      "Total number of doctors deactivated at the incorrect-treatment threshold",
		}),
		PatientsDischarged: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "patients_discharged_total",
			Help:      "Total number of patients discharged",
		}),
		PatientsPurged: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "patients_purged_total",
			Help:      "Total number of discharged patients removed by bulk purge",
		}),

		OutboxEventsProcessed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "outbox_events_processed_total",
			Help:      "Total number of successfully processed outbox events",
		}),
		OutboxEventsFailed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "outbox_events_failed_total",
			Help:      "Total number of failed outbox events",
		}),
		OutboxProcessingLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "outbox_processing_duration_seconds",
			Help:      "Time spent processing outbox events",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		}),

		DatabaseOperations: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "database_operations_total",
			Help:      "Total number of database operations",
		}, []string{"operation", "status"}),
		DatabaseLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "database_operation_duration_seconds",
			Help:      "Duration of database operations",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		}, []string{"operation"}),
	}
}
