package costquery

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Query evaluations partitioned by outcome (ok, error, cancelled)
	queryEvaluations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "costquery_query_evaluations_total",
			Help: "Total number of cost query evaluations",
		},
		[]string{"outcome"},
	)

	queryDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "costquery_query_duration_seconds",
			Help:    "Cost query evaluation latencies in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	queryRows = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "costquery_query_rows_total",
			Help: "Total number of rows returned by cost queries",
		},
	)

	filterRejections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "costquery_filter_rejections_total",
			Help: "Filters rejected when added to a query, partitioned by reason",
		},
		[]string{"reason"},
	)

	generatorRebuilds = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "costquery_custom_field_generations_total",
			Help: "Number of times the custom field filter generation was rebuilt",
		},
	)

	generatedFilters = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "costquery_custom_field_filters",
			Help: "Number of filters in the current custom field generation",
		},
	)

	malformedCustomFields = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "costquery_custom_fields_malformed_total",
			Help: "Custom fields skipped during generation because they are malformed",
		},
	)
)
