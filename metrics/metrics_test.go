package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorder_Counts(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := NewRecorder(reg)

	r.ModelRequest("anthropic", nil)
	r.ModelRequest("anthropic", errors.New("boom"))
	r.ModelRetry("anthropic")
	r.PlanParsed("direct")
	r.PlanParsed("direct")
	r.PlanStep(nil)
	r.Run(true, 1500*time.Millisecond)
	r.Run(false, time.Second)

	assert.Equal(t, 1.0, testutil.ToFloat64(r.modelRequests.WithLabelValues("anthropic", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.modelRequests.WithLabelValues("anthropic", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.modelRetries.WithLabelValues("anthropic")))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.planParse.WithLabelValues("direct")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.planSteps.WithLabelValues("success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.runs.WithLabelValues("failure")))

	count, err := testutil.GatherAndCount(reg, "actionmesh_run_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestRecorder_NilIsNoOp(t *testing.T) {
	var r *Recorder
	assert.NotPanics(t, func() {
		r.ModelRequest("x", nil)
		r.ModelRetry("x")
		r.PlanParsed("direct")
		r.PlanStep(errors.New("x"))
		r.Run(true, time.Second)
	})
}

func TestNewRecorder_WithoutRegistry(t *testing.T) {
	r := NewRecorder(nil)
	r.PlanParsed("failed")
	assert.Equal(t, 1.0, testutil.ToFloat64(r.planParse.WithLabelValues("failed")))
}
