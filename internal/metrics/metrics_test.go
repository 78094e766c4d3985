package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveProvider(t *testing.T) {
	before := testutil.ToFloat64(ProviderRequestsTotal.WithLabelValues(PipelineDetect, "test-doors", ResultOK))
	ObserveProvider(PipelineDetect, "test-doors", ResultOK, 20*time.Millisecond)
	after := testutil.ToFloat64(ProviderRequestsTotal.WithLabelValues(PipelineDetect, "test-doors", ResultOK))
	assert.Equal(t, before+1, after)

	skipped := testutil.ToFloat64(ProviderRequestsTotal.WithLabelValues(PipelineDetect, "test-stairs", ResultSkipped))
	ObserveProvider(PipelineDetect, "test-stairs", ResultSkipped, 0)
	assert.Equal(t, skipped+1, testutil.ToFloat64(ProviderRequestsTotal.WithLabelValues(PipelineDetect, "test-stairs", ResultSkipped)))
}

func TestObserveTranscription(t *testing.T) {
	c := TranscriptionsTotal.WithLabelValues("none", "true")
	before := testutil.ToFloat64(c)
	ObserveTranscription("", true)
	assert.Equal(t, before+1, testutil.ToFloat64(c))
}

func TestObserveHTTP(t *testing.T) {
	c := HTTPRequestsTotal.WithLabelValues("GET", "/api/status", "200")
	before := testutil.ToFloat64(c)
	ObserveHTTP("GET", "/api/status", 200)
	assert.Equal(t, before+1, testutil.ToFloat64(c))
}
