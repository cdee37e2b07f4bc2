// Package agent implements the training loop that drives a value
// model on an environment. An agent runs training episodes with
// epsilon-greedy exploration, stores every transition it generates,
// schedules learning and target network synchronization steps,
// periodically evaluates the near-greedy policy, and checkpoints the
// model whenever an evaluation beats the best one seen so far.
package agent

import (
	"fmt"
	"math"
	"math/rand"
	"os"
	"path/filepath"

	"github.com/logrusorgru/aurora"
	"gonum.org/v1/gonum/mat"

	"github.com/samuelfneumann/godqn/checkpoint"
	env "github.com/samuelfneumann/godqn/environment"
	"github.com/samuelfneumann/godqn/schedule"
	ts "github.com/samuelfneumann/godqn/timestep"
	"github.com/samuelfneumann/godqn/tracker"
)

// Model is a value model that an agent trains. A model predicts
// action values, stores the transitions the agent generates, learns
// from batches of stored transitions, and synchronizes its target
// network on demand.
type Model interface {
	// Initialize builds the model's networks. New calls Initialize
	// once before training starts.
	Initialize() error

	// SelectAction returns the greedy action for an observation
	SelectAction(obs *mat.VecDense) (int, error)

	// StoreTransition adds a transition to the replay buffer
	StoreTransition(t ts.Transition) error

	// Learn samples a batch of stored transitions and performs a
	// single gradient step on it
	Learn() error

	// SyncTarget copies the learned weights into the target network
	SyncTarget() error

	// Save serializes the model's weights to the file at filename
	Save(filename string) error

	// ReplaySize returns the number of stored transitions
	ReplaySize() int

	// NumActions returns the number of actions the model predicts
	// values for
	NumActions() int

	// BatchSize returns the number of transitions per learning step
	BatchSize() int
}

// Agent trains a value model on an environment. Agents are not safe
// for concurrent use.
type Agent struct {
	model    Model
	envTrain env.Environment
	envEval  env.Environment

	eps    schedule.Schedule
	rng    *rand.Rand
	config Config

	// steps counts environmental steps across all training episodes
	// and gates learning and target synchronization
	steps int

	scores     *tracker.Scores
	epsHistory []float64
	bestScore  float64
	lastEval   float64
	saveFile   string
}

// New returns a new Agent that trains model on envTrain and evaluates
// it on envEval. Both environments must use the same 1-dimensional
// discrete action set, enumerated from 0, and the model must predict
// a value for each action. New initializes the model's networks.
func New(envTrain, envEval env.Environment, model Model,
	config Config) (*Agent, error) {
	if err := validateEnv(envTrain); err != nil {
		return nil, fmt.Errorf("new: training environment: %v", err)
	}
	if err := validateEnv(envEval); err != nil {
		return nil, fmt.Errorf("new: evaluation environment: %v", err)
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("new: %v", err)
	}

	numActions := int(envTrain.ActionSpec().UpperBound.AtVec(0)) + 1
	if numActions != model.NumActions() {
		return nil, fmt.Errorf("new: environment has %v actions but model "+
			"predicts values for %v", numActions, model.NumActions())
	}

	eps, err := schedule.NewLinear(config.EpsilonStart, config.EpsilonDecay,
		config.EpsilonMin)
	if err != nil {
		return nil, fmt.Errorf("new: could not create exploration "+
			"schedule: %v", err)
	}

	if err := model.Initialize(); err != nil {
		return nil, fmt.Errorf("new: could not initialize model: %v", err)
	}

	config = config.withDefaults(envTrain.String())
	if config.SaveDir != "" {
		if err := os.MkdirAll(config.SaveDir, 0755); err != nil {
			return nil, fmt.Errorf("new: could not create save "+
				"directory: %v", err)
		}
	}
	logFile := filepath.Join(config.SaveDir,
		fmt.Sprintf("%v-%v.log", config.EnvName, config.ModelName))

	return &Agent{
		model:     model,
		envTrain:  envTrain,
		envEval:   envEval,
		eps:       eps,
		rng:       rand.New(rand.NewSource(config.Seed)),
		config:    config,
		scores:    tracker.NewScores(logFile, scoreWindow),
		bestScore: math.Inf(-1),
		saveFile: checkpoint.Filename(config.SaveDir, config.EnvName,
			config.ModelName),
	}, nil
}

// validateEnv ensures that an environment's actions can be selected
// by the agent
func validateEnv(e env.Environment) error {
	if e.ActionSpec().Cardinality != env.Discrete {
		return fmt.Errorf("cannot use non-discrete actions")
	}
	if e.ActionSpec().LowerBound.Len() > 1 {
		return fmt.Errorf("actions must be 1-dimensional")
	}
	if e.ActionSpec().LowerBound.AtVec(0) != 0.0 {
		return fmt.Errorf("actions must be enumerated starting from 0")
	}
	return nil
}

// RunEpisode runs a single training episode and returns the episode's
// cumulative reward. Every transition is stored in the model's replay
// buffer, the exploration rate decays once per step, and learning and
// target synchronization happen on their configured step schedules.
// Learning only starts once the buffer holds more transitions than
// the model's batch size.
func (a *Agent) RunEpisode() (float64, error) {
	step := a.envTrain.Reset()
	score := 0.0

	for !step.Last() {
		action, err := a.selectAction(step, a.eps.DecayAndGet())
		if err != nil {
			return 0, fmt.Errorf("runepisode: could not select action: %v",
				err)
		}

		next, _ := a.envTrain.Step(action)
		score += next.Reward

		err = a.model.StoreTransition(ts.NewTransition(step, action, next))
		if err != nil {
			return 0, fmt.Errorf("runepisode: could not store "+
				"transition: %v", err)
		}

		a.steps++
		if a.steps%a.config.LearnFrequency == 0 &&
			a.model.ReplaySize() > a.model.BatchSize() {
			if err := a.model.Learn(); err != nil {
				return 0, fmt.Errorf("runepisode: could not learn: %v", err)
			}
		}
		if a.steps%a.config.TargetUpdateInterval == 0 {
			if err := a.model.SyncTarget(); err != nil {
				return 0, fmt.Errorf("runepisode: could not synchronize "+
					"target network: %v", err)
			}
			fmt.Println(aurora.Yellow(fmt.Sprintf("step %v: target "+
				"network replaced", a.steps)))
		}

		step = next
	}

	return score, nil
}

// Evaluate measures the performance of the current policy by running
// rounds episodes on the evaluation environment and returns the mean
// cumulative reward. Actions are selected greedily up to a residual
// random draw bounded by the exploration floor. No transitions are
// stored, no learning happens, and the exploration rate does not
// decay. If the mean beats the best mean seen so far, the model is
// checkpointed.
func (a *Agent) Evaluate(rounds int) (float64, error) {
	if rounds < 1 {
		return 0, fmt.Errorf("evaluate: rounds must be positive "+
			"\n\twant(>= 1) \n\thave(%v)", rounds)
	}

	total := 0.0
	for i := 0; i < rounds; i++ {
		step := a.envEval.Reset()
		for !step.Last() {
			action, err := a.selectAction(step, a.eps.Min())
			if err != nil {
				return 0, fmt.Errorf("evaluate: could not select "+
					"action: %v", err)
			}
			step, _ = a.envEval.Step(action)
			total += step.Reward
		}
	}

	mean := total / float64(rounds)
	a.lastEval = mean
	if mean > a.bestScore {
		a.bestScore = mean
		if err := a.model.Save(a.saveFile); err != nil {
			return 0, fmt.Errorf("evaluate: could not checkpoint model: %v",
				err)
		}
		fmt.Println(aurora.Green(fmt.Sprintf("best score achieved, "+
			"parameters saved to %v", a.saveFile)))
	}
	fmt.Printf("evaluation ended, average score %.2f, best average "+
		"score %.2f\n", mean, a.bestScore)

	return mean, nil
}

// Train runs episodes training episodes back to back, tracking each
// episode's score and the exploration rate at the episode's start.
// The policy is evaluated on the first episode and every EvalEvery
// episodes after that. Once all episodes have run, the trailing
// average scores are persisted for later plotting.
func (a *Agent) Train(episodes int) error {
	if episodes < 1 {
		return fmt.Errorf("train: episodes must be positive "+
			"\n\twant(>= 1) \n\thave(%v)", episodes)
	}

	for episode := 1; episode <= episodes; episode++ {
		a.epsHistory = append(a.epsHistory, a.eps.Peek())

		score, err := a.RunEpisode()
		if err != nil {
			return fmt.Errorf("train: episode %v: %v", episode, err)
		}
		a.scores.Track(score)

		if (episode-1)%a.config.EvalEvery == 0 {
			if _, err := a.Evaluate(a.config.EvalEpisodes); err != nil {
				return fmt.Errorf("train: episode %v: %v", episode, err)
			}
		}

		fmt.Printf("episode %v, score %.2f, avg score %.2f, eps %.3f, "+
			"eval score %.2f\n", episode, score, a.scores.Average(),
			a.eps.Peek(), a.lastEval)
	}

	a.scores.Save()
	return nil
}

// selectAction selects an action epsilon-greedily: the greedy action
// when a uniform draw exceeds epsilon, otherwise a uniformly random
// action
func (a *Agent) selectAction(step ts.TimeStep, epsilon float64) (int, error) {
	if a.rng.Float64() > epsilon {
		return a.model.SelectAction(step.Observation)
	}
	return a.rng.Intn(a.model.NumActions()), nil
}

// Scores returns the score of each training episode run so far
func (a *Agent) Scores() []float64 {
	return a.scores.All()
}

// AverageScores returns the trailing average score after each
// training episode run so far
func (a *Agent) AverageScores() []float64 {
	return a.scores.Averages()
}

// EpsilonHistory returns the exploration rate at the start of each
// training episode run so far
func (a *Agent) EpsilonHistory() []float64 {
	return a.epsHistory
}

// BestScore returns the best mean evaluation score seen so far
func (a *Agent) BestScore() float64 {
	return a.bestScore
}

// Steps returns the number of environmental steps taken across all
// training episodes
func (a *Agent) Steps() int {
	return a.steps
}
