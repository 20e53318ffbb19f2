// Package metrics exposes tracker activity counters. Services take a Recorder;
// NoopRecorder is the default when metrics are disabled.
package metrics

// Recorder defines observability hooks for the tracker.
type Recorder interface {
	IncSetCompleted()
	ObserveRest(seconds int)
	IncWorkoutFinished(sets int)
	SetHistoryRecords(n int)
}

// NoopRecorder is a Recorder that does nothing.
type NoopRecorder struct{}

func (NoopRecorder) IncSetCompleted()       {}
func (NoopRecorder) ObserveRest(int)        {}
func (NoopRecorder) IncWorkoutFinished(int) {}
func (NoopRecorder) SetHistoryRecords(int)  {}
