package orchestration

import (
	"math"
	"testing"
	"time"
)

func TestNewProgressAggregator(t *testing.T) {
	t.Parallel()
	tests := []struct {
		tasks     int
		wantNil   bool
		wantMulti bool
	}{
		{-1, true, false},
		{0, true, false},
		{1, false, false},
		{3, false, true},
	}
	for _, tt := range tests {
		agg := NewProgressAggregator(tt.tasks)
		if (agg == nil) != tt.wantNil {
			t.Errorf("NewProgressAggregator(%d) nil = %v, want %v", tt.tasks, agg == nil, tt.wantNil)
			continue
		}
		if agg == nil {
			continue
		}
		if agg.NumTasks() != tt.tasks || agg.IsMultiTask() != tt.wantMulti {
			t.Errorf("tasks=%d: NumTasks=%d IsMultiTask=%v", tt.tasks, agg.NumTasks(), agg.IsMultiTask())
		}
	}
}

// TestProgressAggregatorAverages follows a cross-check of the three
// strategies, each reporting at its own pace.
func TestProgressAggregatorAverages(t *testing.T) {
	t.Parallel()
	agg := NewProgressAggregator(3)
	steps := []struct {
		update  ProgressUpdate
		wantAvg float64
	}{
		{ProgressUpdate{TaskIndex: 0, Value: 0.3}, 0.1},
		{ProgressUpdate{TaskIndex: 2, Value: 0.6}, 0.3},
		{ProgressUpdate{TaskIndex: 0, Value: 0.9}, 0.5},
		{ProgressUpdate{TaskIndex: 1, Value: 1}, 2.5 / 3},
		{ProgressUpdate{TaskIndex: 7, Value: 1}, 2.5 / 3},
	}
	for i, s := range steps {
		ap := agg.Update(s.update)
		if ap.TaskIndex != s.update.TaskIndex || ap.Value != s.update.Value {
			t.Errorf("step %d: update not echoed: %+v", i, ap)
		}
		if math.Abs(ap.AverageProgress-s.wantAvg) > 1e-12 {
			t.Errorf("step %d: average = %g, want %g", i, ap.AverageProgress, s.wantAvg)
		}
		if math.Abs(agg.CalculateAverage()-s.wantAvg) > 1e-12 {
			t.Errorf("step %d: CalculateAverage = %g, want %g", i, agg.CalculateAverage(), s.wantAvg)
		}
	}
}

func TestProgressAggregatorETA(t *testing.T) {
	t.Parallel()
	agg := NewProgressAggregator(1)
	if eta := agg.GetETA(); eta != 0 {
		t.Errorf("ETA before any progress = %v, want 0", eta)
	}
	time.Sleep(5 * time.Millisecond)
	agg.Update(ProgressUpdate{Value: 0.25})
	if eta := agg.GetETA(); eta < 0 {
		t.Errorf("ETA = %v, want non-negative", eta)
	}
	agg.Update(ProgressUpdate{Value: 1})
	if eta := agg.GetETA(); eta != 0 {
		t.Errorf("ETA of a finished run = %v, want 0", eta)
	}
}

func TestDrainChannel(t *testing.T) {
	t.Parallel()
	for _, n := range []int{0, 1, 64} {
		ch := make(chan ProgressUpdate, n)
		for i := 0; i < n; i++ {
			ch <- ProgressUpdate{TaskIndex: i % 3, Value: float64(i) / float64(n)}
		}
		close(ch)
		DrainChannel(ch)
		if len(ch) != 0 {
			t.Errorf("n=%d: %d updates left", n, len(ch))
		}
	}
}
