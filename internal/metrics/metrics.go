// Package metrics provides Prometheus metrics for the tracker API.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// AggregationsTotal counts aggregator runs by range window and outcome.
	AggregationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pleasure",
			Name:      "aggregations_total",
			Help:      "Total number of analytics aggregations",
		},
		[]string{"range", "status"},
	)

	// AggregationDuration measures fetch plus aggregation time.
	AggregationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "pleasure",
			Name:      "aggregation_duration_seconds",
			Help:      "Duration of analytics aggregations in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"range"},
	)

	// AggregatedRecords observes input sizes.
	AggregatedRecords = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "pleasure",
			Name:      "aggregated_records",
			Help:      "Distribution of record counts per aggregation",
			Buckets:   []float64{0, 1, 5, 10, 25, 50, 100, 250, 500, 1000},
		},
	)

	// ActivitiesWritten counts activity mutations.
	ActivitiesWritten = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pleasure",
			Name:      "activities_written_total",
			Help:      "Total number of activity writes",
		},
		[]string{"operation", "mode"},
	)

	// HTTPRequestsTotal counts API requests.
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pleasure",
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)
)
