// Package metrics provides Prometheus metrics for the job funnel.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "jobfunnel"

// Metrics holds the counters the pipeline updates as batches move
// through it.
type Metrics struct {
	JobsReceived    prometheus.Counter
	JobsAccepted    prometheus.Counter
	JobsRejected    prometheus.Counter
	JobsDeduped     prometheus.Counter
	JobsFilteredOut prometheus.Counter
	TestSkipped     prometheus.Counter

	ScoresComputed     prometheus.Counter
	ProposalsGenerated prometheus.Counter
	NotifyFailures     prometheus.Counter

	IngestDuration prometheus.Histogram

	HTTPRequests *prometheus.CounterVec
}

// New registers all metrics with the given registerer. Pass
// prometheus.DefaultRegisterer in production; tests use a fresh
// prometheus.NewRegistry to avoid duplicate registration.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		JobsReceived: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "jobs_received_total",
			Help: "Job items received across all ingestion endpoints.",
		}),
		JobsAccepted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "jobs_accepted_total",
			Help: "Job items that passed normalization.",
		}),
		JobsRejected: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "jobs_rejected_total",
			Help: "Job items rejected during normalization.",
		}),
		JobsDeduped: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "jobs_deduped_total",
			Help: "Job items that matched an already stored URL.",
		}),
		JobsFilteredOut: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "jobs_filtered_out_total",
			Help: "Normalized jobs rejected by the keyword or geo filter.",
		}),
		TestSkipped: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "jobs_test_skipped_total",
			Help: "Items skipped because they were flagged as test traffic.",
		}),
		ScoresComputed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "scores_computed_total",
			Help: "Scoring evaluations performed.",
		}),
		ProposalsGenerated: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "proposals_generated_total",
			Help: "Proposal drafts generated.",
		}),
		NotifyFailures: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "notify_failures_total",
			Help: "Notification deliveries that failed.",
		}),
		IngestDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace, Name: "ingest_duration_seconds",
			Help:    "Time spent processing one ingestion batch.",
			Buckets: prometheus.DefBuckets,
		}),
		HTTPRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "http_requests_total",
			Help: "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
	}
}
