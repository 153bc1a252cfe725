// Package metrics registers the prometheus instruments for the payment
// pipeline and the REST capture endpoints.
//
// Instruments are registered globally via promauto, so state persists across
// test runs; tests should measure increments rather than absolute values, or
// use a dedicated registry.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// PipelineRuns counts completed Process invocations by flow and outcome.
	PipelineRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payments_pipeline_runs_total",
			Help: "Completed payment pipeline runs, by flow and outcome.",
		},
		[]string{"flow", "outcome"},
	)

	// StepDuration tracks per-step action latency.
	StepDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "payments_step_duration_seconds",
			Help:    "Duration of payment step action calls.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"step"},
	)

	// CaptureResults counts REST capture attempts by result code.
	CaptureResults = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payments_capture_results_total",
			Help: "REST capture attempts, by result code.",
		},
		[]string{"code"},
	)
)
