package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	namespace = "tabular"
)

const (
	OutcomeSuccess       = "success"
	OutcomeDecodeFailure = "decode_failure"
	OutcomeInsertFailure = "insert_failure"
	OutcomeFound         = "found"
	OutcomeNotFound      = "not_found"
	OutcomeError         = "error"
)

type Metrics struct {
	Ingests         *prometheus.CounterVec
	IngestedRecords prometheus.Counter
	FailedInserts   prometheus.Counter
	IngestDuration  prometheus.Histogram
	Lookups         *prometheus.CounterVec
}

// New creates the collectors and registers them with registerer when it is not nil.
func New(registerer prometheus.Registerer) *Metrics {
	m := Metrics{
		Ingests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingest",
			Name:      "requests_total",
			Help:      "Number of ingest requests by outcome",
		}, []string{"outcome"}),
		IngestedRecords: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingest",
			Name:      "records_total",
			Help:      "Number of records persisted by ingest",
		}),
		FailedInserts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingest",
			Name:      "failed_inserts_total",
			Help:      "Number of record inserts that failed",
		}),
		IngestDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "ingest",
			Name:      "duration_seconds",
			Help:      "Duration of ingest requests",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 14),
		}),
		Lookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "lookup",
			Name:      "requests_total",
			Help:      "Number of lookup requests by outcome",
		}, []string{"outcome"}),
	}

	if registerer != nil {
		registerer.MustRegister(
			m.Ingests,
			m.IngestedRecords,
			m.FailedInserts,
			m.IngestDuration,
			m.Lookups,
		)
	}

	return &m
}
