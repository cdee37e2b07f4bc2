package tracker_test

import (
	"math"
	"path/filepath"
	"testing"

	"github.com/samuelfneumann/godqn/tracker"
)

// TestScoresAverage checks the trailing average over a window smaller
// than the number of tracked scores
func TestScoresAverage(t *testing.T) {
	scores := tracker.NewScores("unused.log", 3)

	if scores.Average() != 0.0 {
		t.Errorf("average of no scores should be 0, got %v",
			scores.Average())
	}

	tracked := []float64{1.0, 2.0, 3.0, 4.0, 5.0}
	expected := []float64{1.0, 1.5, 2.0, 3.0, 4.0}

	for i, score := range tracked {
		scores.Track(score)
		if scores.Average() != expected[i] {
			t.Errorf("episode %v: expected trailing average %v, got %v", i,
				expected[i], scores.Average())
		}
	}

	averages := scores.Averages()
	if len(averages) != len(expected) {
		t.Fatalf("expected %v averages, got %v", len(expected),
			len(averages))
	}
	for i := range averages {
		if averages[i] != expected[i] {
			t.Errorf("averages index %v: expected %v, got %v", i,
				expected[i], averages[i])
		}
	}

	all := scores.All()
	if len(all) != len(tracked) {
		t.Fatalf("expected %v scores, got %v", len(tracked), len(all))
	}
	for i := range all {
		if all[i] != tracked[i] {
			t.Errorf("scores index %v: expected %v, got %v", i, tracked[i],
				all[i])
		}
	}
}

// TestScoresSaveLoad ensures that saved trailing averages can be
// loaded back from disk
func TestScoresSaveLoad(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "riverswim-dqn.log")
	scores := tracker.NewScores(filename, 100)

	tracked := []float64{0.25, -1.5, 3.0}
	for _, score := range tracked {
		scores.Track(score)
	}
	scores.Save()

	data := tracker.LoadData(filename)
	averages := scores.Averages()
	if len(data) != len(averages) {
		t.Fatalf("expected %v data points, got %v", len(averages),
			len(data))
	}
	for i := range data {
		if math.Abs(data[i]-averages[i]) != 0.0 {
			t.Errorf("data index %v: expected %v, got %v", i, averages[i],
				data[i])
		}
	}
}

// TestNewScoresPanicsOnBadWindow ensures that non-positive windows are
// rejected
func TestNewScoresPanicsOnBadWindow(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("non-positive window should panic")
		}
	}()
	tracker.NewScores("unused.log", 0)
}
