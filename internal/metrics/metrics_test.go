package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordExtraction(t *testing.T) {
	before := testutil.ToFloat64(ExtractionOutcomesTotal.WithLabelValues("completed"))
	RecordExtraction("completed")
	after := testutil.ToFloat64(ExtractionOutcomesTotal.WithLabelValues("completed"))
	assert.Equal(t, before+1, after)
}

func TestRecordClassificationAndCatalog(t *testing.T) {
	before := testutil.ToFloat64(ClassificationsTotal.WithLabelValues("fallback"))
	RecordClassification("fallback")
	assert.Equal(t, before+1, testutil.ToFloat64(ClassificationsTotal.WithLabelValues("fallback")))

	before = testutil.ToFloat64(CatalogRequestsTotal.WithLabelValues("error"))
	RecordCatalogRequest("error")
	assert.Equal(t, before+1, testutil.ToFloat64(CatalogRequestsTotal.WithLabelValues("error")))
}

func TestRecordLLMRequest(t *testing.T) {
	RecordLLMRequest("ok", 1500*time.Millisecond)
	assert.Positive(t, testutil.CollectAndCount(LLMRequestDuration))
}

func TestSetBreakerOpen(t *testing.T) {
	SetBreakerOpen("llm", true)
	assert.Equal(t, 1.0, testutil.ToFloat64(CircuitBreakerOpen.WithLabelValues("llm")))
	SetBreakerOpen("llm", false)
	assert.Equal(t, 0.0, testutil.ToFloat64(CircuitBreakerOpen.WithLabelValues("llm")))
}
