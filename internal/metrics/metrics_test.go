package metrics_test

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/yourorg/payments-gateway/internal/metrics"
)

func TestCountersIncrement(t *testing.T) {
	before := testutil.ToFloat64(metrics.PipelineRuns.WithLabelValues("STANDARD_FLOW", "success"))
	metrics.PipelineRuns.WithLabelValues("STANDARD_FLOW", "success").Inc()
	after := testutil.ToFloat64(metrics.PipelineRuns.WithLabelValues("STANDARD_FLOW", "success"))
	assert.Equal(t, before+1, after)

	before = testutil.ToFloat64(metrics.CaptureResults.WithLabelValues("succeeded"))
	metrics.CaptureResults.WithLabelValues("succeeded").Inc()
	after = testutil.ToFloat64(metrics.CaptureResults.WithLabelValues("succeeded"))
	assert.Equal(t, before+1, after)
}

func TestStepDurationObserves(t *testing.T) {
	metrics.StepDuration.WithLabelValues("standard-payment").Observe(0.05)

	count := testutil.CollectAndCount(metrics.StepDuration)
	assert.Greater(t, count, 0)
}
