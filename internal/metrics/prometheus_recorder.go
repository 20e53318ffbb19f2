package metrics

import (
	"net/http"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "tracker"

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	setsCompleted    prom.Counter
	restsRecorded    prom.Counter
	restDuration     prom.Histogram
	workoutsFinished prom.Counter
	setsPerWorkout   prom.Histogram
	historyRecords   prom.Gauge
}

// NewPrometheusRecorder constructs the tracker metrics and registers them on reg.
func NewPrometheusRecorder(reg prom.Registerer) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		setsCompleted: prom.NewCounter(prom.CounterOpts{
			Namespace: namespace,
			Name:      "sets_completed_total",
			Help:      "Exercise sets completed",
		}),
		restsRecorded: prom.NewCounter(prom.CounterOpts{
			Namespace: namespace,
			Name:      "rests_recorded_total",
			Help:      "Rest periods of at least one second that were recorded",
		}),
		restDuration: prom.NewHistogram(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "rest_duration_seconds",
			Help:      "Recorded rest durations",
			Buckets:   []float64{15, 30, 45, 60, 90, 120, 180, 300, 600},
		}),
		workoutsFinished: prom.NewCounter(prom.CounterOpts{
			Namespace: namespace,
			Name:      "workouts_finished_total",
			Help:      "Workouts finished and stored in history",
		}),
		setsPerWorkout: prom.NewHistogram(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "workout_sets",
			Help:      "Sets per finished workout",
			Buckets:   prom.LinearBuckets(1, 2, 10),
		}),
		historyRecords: prom.NewGauge(prom.GaugeOpts{
			Namespace: namespace,
			Name:      "history_records",
			Help:      "Workout records currently in history",
		}),
	}
	reg.MustRegister(pr.setsCompleted, pr.restsRecorded, pr.restDuration,
		pr.workoutsFinished, pr.setsPerWorkout, pr.historyRecords)
	return pr
}

func (pr *PrometheusRecorder) IncSetCompleted() { pr.setsCompleted.Inc() }

func (pr *PrometheusRecorder) ObserveRest(seconds int) {
	pr.restsRecorded.Inc()
	pr.restDuration.Observe(float64(seconds))
}

func (pr *PrometheusRecorder) IncWorkoutFinished(sets int) {
	pr.workoutsFinished.Inc()
	pr.setsPerWorkout.Observe(float64(sets))
}

func (pr *PrometheusRecorder) SetHistoryRecords(n int) { pr.historyRecords.Set(float64(n)) }

// HTTPHandler serves the metrics gathered by g.
func HTTPHandler(g prom.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{EnableOpenMetrics: true})
}
