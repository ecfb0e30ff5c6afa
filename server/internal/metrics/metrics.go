package metrics

import (
	"io"
	"time"

	gometrics "github.com/rcrowley/go-metrics"
)

// Metric names.
const (
	Submissions       = "calculator.submissions"
	SubmissionErrors  = "calculator.submission_errors"
	Resets            = "calculator.resets"
	PredictorLatency  = "predictor.latency"
	PredictorFailures = "predictor.failures"
	PredictionsServed = "api.predictions_served"
	PredictionsDenied = "api.predictions_rejected"
	PagesLive         = "calculator.pages_live"
)

// Registry wraps a go-metrics registry with the calculator's counters and timers.
type Registry struct {
	r gometrics.Registry
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{r: gometrics.NewRegistry()}
}

// Inc increments the named counter.
func (m *Registry) Inc(name string) {
	if m == nil {
		return
	}
	gometrics.GetOrRegisterCounter(name, m.r).Inc(1)
}

// Count returns the current value of the named counter.
func (m *Registry) Count(name string) int64 {
	if m == nil {
		return 0
	}
	return gometrics.GetOrRegisterCounter(name, m.r).Count()
}

// Since records the time elapsed since start in the named timer.
func (m *Registry) Since(name string, start time.Time) {
	if m == nil {
		return
	}
	gometrics.GetOrRegisterTimer(name, m.r).UpdateSince(start)
}

// TimerCount returns how many samples the named timer holds.
func (m *Registry) TimerCount(name string) int64 {
	if m == nil {
		return 0
	}
	return gometrics.GetOrRegisterTimer(name, m.r).Count()
}

// Update sets the named gauge.
func (m *Registry) Update(name string, v int64) {
	if m == nil {
		return
	}
	gometrics.GetOrRegisterGauge(name, m.r).Update(v)
}

// Gauge returns the current value of the named gauge.
func (m *Registry) Gauge(name string) int64 {
	if m == nil {
		return 0
	}
	return gometrics.GetOrRegisterGauge(name, m.r).Value()
}

// WriteJSON writes a snapshot of every metric as JSON.
func (m *Registry) WriteJSON(w io.Writer) {
	gometrics.WriteJSONOnce(m.r, w)
}
