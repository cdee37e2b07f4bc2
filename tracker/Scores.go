package tracker

import (
	"encoding/gob"
	"log"
	"os"

	"gonum.org/v1/gonum/stat"
)

// Scores tracks the episodic scores seen during training together
// with a trailing average of the most recent scores. After each
// episode the episodic score is handed to the Scores Tracker, which
// records the score and the average score over the trailing window.
// The trailing averages are what get saved to disk, giving a smoothed
// learning curve.
type Scores struct {
	window   int
	scores   []float64
	averages []float64
	filename string
}

// NewScores creates and returns a new *Scores Tracker which saves its
// data at the specified location filename. The window argument
// determines how many of the most recent scores the trailing average
// is computed over.
func NewScores(filename string, window int) *Scores {
	if window < 1 {
		panic("newScores: window must be positive")
	}
	return &Scores{window: window, filename: filename}
}

// Track tracks the score of a single episode, updating the trailing
// average
func (s *Scores) Track(score float64) {
	s.scores = append(s.scores, score)

	start := len(s.scores) - s.window
	if start < 0 {
		start = 0
	}
	s.averages = append(s.averages, stat.Mean(s.scores[start:], nil))
}

// Average returns the trailing average score over the most recent
// window of episodes
func (s *Scores) Average() float64 {
	if len(s.averages) == 0 {
		return 0.0
	}
	return s.averages[len(s.averages)-1]
}

// Averages returns the trailing average score after each episode
// tracked so far
func (s *Scores) Averages() []float64 {
	return s.averages
}

// All returns the episodic scores tracked so far
func (s *Scores) All() []float64 {
	return s.scores
}

// Save saves the trailing averages tracked by the Scores Tracker to
// disk.
func (s *Scores) Save() {
	// Open the file to save to
	file, err := os.Create(s.filename)
	if err != nil {
		log.Fatalf("could not open save file: %v", err)
	}
	defer file.Close()

	// Encode and save the file
	en := gob.NewEncoder(file)
	if err = en.Encode(s.averages); err != nil {
		log.Fatalf("could not encode score data: %v", err)
	}
}
