package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

// TestNilManager verifies every recorder is safe on a nil manager.
func TestNilManager(t *testing.T) {
	var m *Manager
	m.WorkoutStarted("list")
	m.WorkoutFinished("list", 60)
	m.WorkoutCancelled()
	m.SetCompleted()
	m.ShoppingRecipeAdded()
	m.BackupImported("ok")
}

// TestWorkoutLifecycleMetrics verifies counters and the active gauge.
func TestWorkoutLifecycleMetrics(t *testing.T) {
	m := NewTestManager()
	m.WorkoutStarted("detailed")
	if got := testutil.ToFloat64(m.GaugeActiveSession); got != 1 {
		t.Errorf("active gauge = %v, want 1", got)
	}
	m.SetCompleted()
	m.SetCompleted()
	m.WorkoutFinished("detailed", 1800)

	if got := testutil.ToFloat64(m.CounterSetsCompleted); got != 2 {
		t.Errorf("sets = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.CounterWorkoutsFinished.WithLabelValues("detailed")); got != 1 {
		t.Errorf("finished = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.GaugeActiveSession); got != 0 {
		t.Errorf("active gauge = %v, want 0", got)
	}
}
