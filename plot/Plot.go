// Package plot renders the learning curves of a training run as HTML
// line charts
package plot

import (
	"fmt"
	"os"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// LearningCurve renders a training run to the HTML file at filename
// as a page of two charts: the score of each episode with its
// trailing average, and the exploration rate at the start of each
// episode. The title names the run on the score chart.
func LearningCurve(filename, title string, scores, averages,
	epsilons []float64) error {
	if len(scores) == 0 {
		return fmt.Errorf("learningcurve: no scores to plot")
	}
	if len(averages) != len(scores) {
		return fmt.Errorf("learningcurve: each score needs a trailing "+
			"average \n\twant(%v) \n\thave(%v)", len(scores), len(averages))
	}

	scoreChart := newChart(title)
	scoreChart.SetXAxis(episodeLabels(len(scores)))
	scoreChart.AddSeries("score", series(scores))
	scoreChart.AddSeries("average score", series(averages))

	page := components.NewPage()
	page.AddCharts(scoreChart)

	if len(epsilons) > 0 {
		epsChart := newChart("exploration rate")
		epsChart.SetXAxis(episodeLabels(len(epsilons)))
		epsChart.AddSeries("epsilon", series(epsilons))
		page.AddCharts(epsChart)
	}

	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("learningcurve: could not create chart file: %v",
			err)
	}
	defer f.Close()

	if err := page.Render(f); err != nil {
		return fmt.Errorf("learningcurve: could not render charts: %v", err)
	}
	return nil
}

// newChart returns a titled line chart
func newChart(title string) *charts.Line {
	chart := charts.NewLine()
	chart.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title: title,
		}),
		charts.WithInitializationOpts(opts.Initialization{
			Theme: "shine",
		}),
	)
	return chart
}

// episodeLabels returns the x axis labels 1, 2, ..., episodes
func episodeLabels(episodes int) []string {
	labels := make([]string, episodes)
	for i := range labels {
		labels[i] = fmt.Sprintf("%d", i+1)
	}
	return labels
}

// series converts tracked values into a plottable line series
func series(values []float64) []opts.LineData {
	items := make([]opts.LineData, len(values))
	for i, value := range values {
		items[i] = opts.LineData{Value: value}
	}
	return items
}
