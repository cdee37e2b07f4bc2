package main

import (
	"flag"
	"fmt"
	"log"
	"path/filepath"

	"github.com/samuelfneumann/godqn/agent"
	"github.com/samuelfneumann/godqn/environment"
	"github.com/samuelfneumann/godqn/environment/gym"
	"github.com/samuelfneumann/godqn/environment/riverswim"
	"github.com/samuelfneumann/godqn/model"
	"github.com/samuelfneumann/godqn/network"
	"github.com/samuelfneumann/godqn/plot"
	"github.com/samuelfneumann/godqn/tracker"
)

func main() {
	envName := flag.String("env", "riverswim", "environment to train on: "+
		"riverswim or the name of an OpenAI Gym environment")
	episodes := flag.Int("episodes", 200, "number of training episodes")
	saveDir := flag.String("savedir", "saves", "directory for model "+
		"checkpoints, score logs, and charts")
	seed := flag.Int64("seed", 192382, "seed for the run")
	flag.Parse()

	// Create the training and evaluation environments
	envTrain, envEval, err := makeEnvironments(*envName, uint64(*seed))
	if err != nil {
		log.Fatalf("could not create environments: %v", err)
	}
	for _, e := range []environment.Environment{envTrain, envEval} {
		if closer, ok := e.(interface{ Close() error }); ok {
			defer closer.Close()
		}
	}

	// Create the value model
	features := envTrain.ObservationSpec().Shape.Len()
	numActions := int(envTrain.ActionSpec().UpperBound.AtVec(0)) + 1
	m, err := model.New(model.Config{
		Architecture:     network.Dense,
		ObservationShape: []int{features},
		NumActions:       numActions,
		BatchSize:        32,
		ReplayCapacity:   100_000,
		Gamma:            0.99,
		LearningRate:     1e-4,
		Seed:             *seed,
	})
	if err != nil {
		log.Fatalf("could not create model: %v", err)
	}

	// Create and train the agent
	a, err := agent.New(envTrain, envEval, m, agent.Config{
		EnvName:              *envName,
		SaveDir:              *saveDir,
		LearnFrequency:       4,
		TargetUpdateInterval: 1000,
		EvalEvery:            50,
		EvalEpisodes:         10,
		EpsilonStart:         1.0,
		EpsilonDecay:         1e-5,
		EpsilonMin:           0.1,
		Seed:                 *seed,
	})
	if err != nil {
		log.Fatalf("could not create agent: %v", err)
	}
	if err := a.Train(*episodes); err != nil {
		log.Fatalf("could not train: %v", err)
	}

	// Tail of the persisted learning curve
	data := tracker.LoadData(filepath.Join(*saveDir,
		fmt.Sprintf("%v-DQN.log", *envName)))
	if len(data) > 10 {
		data = data[len(data)-10:]
	}
	fmt.Println(data)

	// Render the learning curves
	chartFile := filepath.Join(*saveDir, fmt.Sprintf("%v-DQN.html", *envName))
	err = plot.LearningCurve(chartFile, fmt.Sprintf("%v-DQN", *envName),
		a.Scores(), a.AverageScores(), a.EpsilonHistory())
	if err != nil {
		log.Fatalf("could not render learning curves: %v", err)
	}
	fmt.Printf("learning curves written to %v\n", chartFile)
}

// makeEnvironments returns a training and an evaluation environment
// for name, which is either riverswim or the name of an OpenAI Gym
// environment
func makeEnvironments(name string, seed uint64) (environment.Environment,
	environment.Environment, error) {
	const discount float64 = 0.99
	const cutoff int = 1000

	if name == "riverswim" {
		envTrain, _ := riverswim.New(cutoff, discount, seed)
		envEval, _ := riverswim.New(cutoff, discount, seed+1)
		return envTrain, envEval, nil
	}

	envTrain, _, err := gym.New(name, discount, seed)
	if err != nil {
		return nil, nil, err
	}
	envEval, _, err := gym.New(name, discount, seed+1)
	if err != nil {
		return nil, nil, err
	}
	return envTrain, envEval, nil
}
