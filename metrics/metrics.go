// Package metrics exposes Prometheus collectors for the ActionMesh request
// pipeline. A nil *Recorder is valid and records nothing, so library users who
// do not care about metrics never have to construct one.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "actionmesh"

// Recorder bundles every collector used by the gateway, parser, executor and
// runner.
type Recorder struct {
	modelRequests *prometheus.CounterVec
	modelRetries  *prometheus.CounterVec
	planParse     *prometheus.CounterVec
	planSteps     *prometheus.CounterVec
	runs          *prometheus.CounterVec
	runDuration   prometheus.Histogram
}

// NewRecorder creates the collectors and registers them with reg. A nil reg
// leaves them unregistered (useful in tests).
func NewRecorder(reg prometheus.Registerer) *Recorder {
	r := &Recorder{
		modelRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "model_requests_total",
			Help:      "Model gateway calls by provider and outcome.",
		}, []string{"provider", "outcome"}),
		modelRetries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "model_retries_total",
			Help:      "Rate-limit retries performed by the model gateway.",
		}, []string{"provider"}),
		planParse: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "plan_parse_total",
			Help:      "Plan parse attempts by the strategy that succeeded (or failed).",
		}, []string{"strategy"}),
		planSteps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "plan_steps_total",
			Help:      "Executed plan steps by outcome.",
		}, []string{"outcome"}),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Orchestration runs by outcome.",
		}, []string{"outcome"}),
		runDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Wall time of orchestration runs.",
			Buckets:   []float64{0.5, 1, 2.5, 5, 10, 20, 40, 80},
		}),
	}
	if reg != nil {
		reg.MustRegister(r.modelRequests, r.modelRetries, r.planParse, r.planSteps, r.runs, r.runDuration)
	}
	return r
}

// ModelRequest counts one completed gateway call.
func (r *Recorder) ModelRequest(provider string, err error) {
	if r == nil {
		return
	}
	r.modelRequests.WithLabelValues(provider, outcome(err)).Inc()
}

// ModelRetry counts one rate-limit retry.
func (r *Recorder) ModelRetry(provider string) {
	if r == nil {
		return
	}
	r.modelRetries.WithLabelValues(provider).Inc()
}

// PlanParsed counts a parse by strategy name ("failed" when nothing worked).
func (r *Recorder) PlanParsed(strategy string) {
	if r == nil {
		return
	}
	r.planParse.WithLabelValues(strategy).Inc()
}

// PlanStep counts one executed step.
func (r *Recorder) PlanStep(err error) {
	if r == nil {
		return
	}
	r.planSteps.WithLabelValues(outcome(err)).Inc()
}

// Run counts a finished orchestration run and observes its duration.
func (r *Recorder) Run(success bool, d time.Duration) {
	if r == nil {
		return
	}
	o := "success"
	if !success {
		o = "failure"
	}
	r.runs.WithLabelValues(o).Inc()
	r.runDuration.Observe(d.Seconds())
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}
