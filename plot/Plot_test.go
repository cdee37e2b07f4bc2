package plot_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/samuelfneumann/godqn/plot"
)

// TestLearningCurve ensures a rendered page holds every series passed
// to it
func TestLearningCurve(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "riverswim-DQN.html")

	scores := []float64{1.0, 3.0, 5.0, 4.0}
	averages := []float64{1.0, 2.0, 3.0, 3.25}
	epsilons := []float64{0.5, 0.45, 0.4, 0.35}
	err := plot.LearningCurve(filename, "riverswim-DQN", scores, averages,
		epsilons)
	if err != nil {
		t.Fatalf("could not render learning curves: %v", err)
	}

	rendered, err := os.ReadFile(filename)
	if err != nil {
		t.Fatalf("could not read the rendered page: %v", err)
	}
	page := string(rendered)
	for _, series := range []string{"riverswim-DQN", "score",
		"average score", "exploration rate", "epsilon"} {
		if !strings.Contains(page, series) {
			t.Errorf("rendered page is missing the %q series", series)
		}
	}
}

// TestLearningCurveWithoutEpsilons ensures the exploration rate chart
// is only rendered when there is a history to plot
func TestLearningCurveWithoutEpsilons(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "riverswim-DQN.html")

	err := plot.LearningCurve(filename, "riverswim-DQN",
		[]float64{1.0, 2.0}, []float64{1.0, 1.5}, nil)
	if err != nil {
		t.Fatalf("could not render learning curves: %v", err)
	}

	rendered, err := os.ReadFile(filename)
	if err != nil {
		t.Fatalf("could not read the rendered page: %v", err)
	}
	if strings.Contains(string(rendered), "exploration rate") {
		t.Error("rendered an exploration rate chart with no history")
	}
}

// TestLearningCurveValidates ensures malformed curves are rejected
func TestLearningCurveValidates(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "riverswim-DQN.html")

	err := plot.LearningCurve(filename, "riverswim-DQN", nil, nil, nil)
	if err == nil {
		t.Error("expected an error when plotting no scores")
	}

	err = plot.LearningCurve(filename, "riverswim-DQN",
		[]float64{1.0, 2.0}, []float64{1.0}, nil)
	if err == nil {
		t.Error("expected an error when scores and averages disagree " +
			"in length")
	}

	if _, err := os.Stat(filename); !os.IsNotExist(err) {
		t.Error("a rejected plot still created the chart file")
	}
}
