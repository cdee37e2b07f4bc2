package agent

import "fmt"

// Default scheduling values, used when the corresponding Config field
// is left at its zero value
const (
	defaultLearnFrequency int = 4
	defaultEvalEvery      int = 50
	defaultEvalEpisodes   int = 10
)

// defaultModelName names checkpoints and logs when a Config does not
const defaultModelName string = "DQN"

// scoreWindow is the number of most recent episodes that the trailing
// average score is computed over
const scoreWindow int = 100

// Config implements a configuration for training an agent
type Config struct {
	// EnvName and ModelName name the files that the agent saves. A
	// model checkpoint is saved to SaveDir/EnvName-ModelName.bin and
	// the trailing average scores to SaveDir/EnvName-ModelName.log.
	// EnvName defaults to the training environment's String() and
	// ModelName to DQN. SaveDir may be empty, in which case files are
	// saved relative to the working directory.
	EnvName   string
	ModelName string
	SaveDir   string

	// LearnFrequency is the number of environmental steps between
	// learning steps and defaults to 4 if left as 0.
	// TargetUpdateInterval is the number of environmental steps
	// between target network synchronizations and is required.
	LearnFrequency       int
	TargetUpdateInterval int

	// EvalEvery is the number of training episodes between policy
	// evaluations and defaults to 50 if left as 0. EvalEpisodes is
	// the number of episodes each evaluation averages over and
	// defaults to 10 if left as 0.
	EvalEvery    int
	EvalEpisodes int

	// The exploration rate starts at EpsilonStart and decays by
	// EpsilonDecay on each training-time action selection until it
	// reaches EpsilonMin, where it stays for the rest of training
	EpsilonStart float64
	EpsilonDecay float64
	EpsilonMin   float64

	// Seed seeds the agent's action selection
	Seed int64
}

// Validate ensures that the configuration is valid
func (c Config) Validate() error {
	if c.TargetUpdateInterval < 1 {
		return fmt.Errorf("validate: target update interval must be "+
			"positive \n\twant(>= 1) \n\thave(%v)", c.TargetUpdateInterval)
	}
	if c.LearnFrequency < 0 {
		return fmt.Errorf("validate: learn frequency cannot be "+
			"negative \n\twant(>= 0) \n\thave(%v)", c.LearnFrequency)
	}
	if c.EvalEvery < 0 {
		return fmt.Errorf("validate: evaluation interval cannot be "+
			"negative \n\twant(>= 0) \n\thave(%v)", c.EvalEvery)
	}
	if c.EvalEpisodes < 0 {
		return fmt.Errorf("validate: evaluation episodes cannot be "+
			"negative \n\twant(>= 0) \n\thave(%v)", c.EvalEpisodes)
	}
	if c.EpsilonMin < 0 {
		return fmt.Errorf("validate: minimum epsilon must be "+
			"non-negative \n\twant(>= 0) \n\thave(%v)", c.EpsilonMin)
	}
	if c.EpsilonDecay < 0 {
		return fmt.Errorf("validate: epsilon decay must be "+
			"non-negative \n\twant(>= 0) \n\thave(%v)", c.EpsilonDecay)
	}
	if c.EpsilonStart < c.EpsilonMin {
		return fmt.Errorf("validate: starting epsilon cannot be below "+
			"the minimum \n\twant(>= %v) \n\thave(%v)", c.EpsilonMin,
			c.EpsilonStart)
	}
	return nil
}

// withDefaults returns a copy of the configuration with naming and
// scheduling defaults filled in
func (c Config) withDefaults(envName string) Config {
	if c.EnvName == "" {
		c.EnvName = envName
	}
	if c.ModelName == "" {
		c.ModelName = defaultModelName
	}
	if c.LearnFrequency == 0 {
		c.LearnFrequency = defaultLearnFrequency
	}
	if c.EvalEvery == 0 {
		c.EvalEvery = defaultEvalEvery
	}
	if c.EvalEpisodes == 0 {
		c.EvalEpisodes = defaultEvalEpisodes
	}
	return c
}
