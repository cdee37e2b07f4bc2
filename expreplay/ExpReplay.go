package expreplay

import (
	"fmt"
	"math/rand"

	"github.com/samuelfneumann/godqn/timestep"
	"github.com/samuelfneumann/godqn/utils/intutils"
)

// ExperienceReplayer implements an experience replay buffer of fixed
// capacity. Transitions are added one at a time, and once the buffer
// is full each new transition overwrites the oldest stored
// transition. Sample draws a batch of stored transitions uniformly
// at random with replacement and returns the batch as parallel
// slices of states, actions, rewards, next states, and terminal
// flags. State slices are flattened row-major, one row per batch
// element.
//
// Pixel observations should be flattened before adding to the buffer.
type ExperienceReplayer interface {
	// Add adds a transition to the buffer
	Add(t timestep.Transition) error

	// Sample samples a batch of transitions from the buffer
	Sample(batchSize int) ([]float64, []int, []float64, []float64,
		[]bool, error)

	// Size returns the current number of samples in the buffer
	Size() int

	// Counter returns the total number of samples ever added to the
	// buffer, including those already overwritten
	Counter() int

	// MaxCapacity returns the maximum allowable samples in the buffer
	MaxCapacity() int
}

// Config implements a specific configuration of an ExperienceReplayer
type Config struct {
	Capacity int
}

// Validate returns an error if the Config describes an invalid
// ExperienceReplayer
func (c Config) Validate() error {
	if c.Capacity < 1 {
		return fmt.Errorf("capacity must be positive \n\twant(>= 1)"+
			"\n\thave(%v)", c.Capacity)
	}
	return nil
}

// Create creates and returns the ExperienceReplayer with the
// specified Config. The featureSize parameter defines the size of
// the state feature vectors stored in the buffer.
func (c Config) Create(featureSize int, seed int64) (ExperienceReplayer,
	error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("create: %v", err)
	}
	if featureSize < 1 {
		return nil, fmt.Errorf("create: feature size must be positive "+
			"\n\twant(>= 1)\n\thave(%v)", featureSize)
	}

	return &cache{
		stateCache:     make([]float64, c.Capacity*featureSize),
		actionCache:    make([]int, c.Capacity),
		rewardCache:    make([]float64, c.Capacity),
		nextStateCache: make([]float64, c.Capacity*featureSize),
		terminalCache:  make([]bool, c.Capacity),

		capacity:    c.Capacity,
		featureSize: featureSize,
		rng:         rand.New(rand.NewSource(seed)),
	}, nil
}

// cache implements a concrete ExperienceReplayer. Each field of the
// stored transitions is kept in its own flat cache, with the state
// and next state caches storing featureSize consecutive elements per
// transition. The counter increases on every Add, and the index
// written to is always counter modulo capacity, so the buffer is
// circular.
type cache struct {
	stateCache     []float64
	actionCache    []int
	rewardCache    []float64
	nextStateCache []float64
	terminalCache  []bool

	capacity    int
	featureSize int
	counter     int

	rng *rand.Rand
}

// String returns the string representation of the cache
func (c *cache) String() string {
	baseStr := "Size: %v \nStates: %v \nActions: %v \nRewards: %v " +
		"\nNext States: %v \nTerminals: %v"
	return fmt.Sprintf(baseStr, c.Size(), c.stateCache, c.actionCache,
		c.rewardCache, c.nextStateCache, c.terminalCache)
}

// Add adds a transition to the cache, overwriting the oldest stored
// transition once the cache is full
func (c *cache) Add(t timestep.Transition) error {
	if t.State.Len() != c.featureSize {
		return fmt.Errorf("add: invalid state size \n\twant(%v)"+
			"\n\thave(%v)", c.featureSize, t.State.Len())
	}
	if t.NextState.Len() != c.featureSize {
		return fmt.Errorf("add: invalid next state size \n\twant(%v)"+
			"\n\thave(%v)", c.featureSize, t.NextState.Len())
	}

	index := c.counter % c.capacity

	// Copy states
	stateInd := index * c.featureSize
	copy(c.stateCache[stateInd:stateInd+c.featureSize],
		t.State.RawVector().Data)
	copy(c.nextStateCache[stateInd:stateInd+c.featureSize],
		t.NextState.RawVector().Data)

	c.actionCache[index] = t.Action
	c.rewardCache[index] = t.Reward
	c.terminalCache[index] = t.Terminal

	c.counter++
	return nil
}

// Sample samples and returns a batch of transitions from the replay
// buffer, drawing uniformly at random with replacement from the
// stored transitions
func (c *cache) Sample(batchSize int) ([]float64, []int, []float64,
	[]float64, []bool, error) {
	if c.Size() == 0 {
		err := &ExpReplayError{
			Op:  "sample",
			Err: errEmptyBuffer,
		}
		return nil, nil, nil, nil, nil, err
	}
	if batchSize < 1 {
		err := &ExpReplayError{
			Op: "sample",
			Err: fmt.Errorf("invalid batch size \n\twant(>= 1)"+
				"\n\thave(%v)", batchSize),
		}
		return nil, nil, nil, nil, nil, err
	}

	stateBatch := make([]float64, batchSize*c.featureSize)
	nextStateBatch := make([]float64, batchSize*c.featureSize)
	actionBatch := make([]int, batchSize)
	rewardBatch := make([]float64, batchSize)
	terminalBatch := make([]bool, batchSize)

	for i := 0; i < batchSize; i++ {
		index := c.rng.Int() % c.Size()

		batchStartInd := i * c.featureSize
		expStartInd := index * c.featureSize
		copy(stateBatch[batchStartInd:batchStartInd+c.featureSize],
			c.stateCache[expStartInd:expStartInd+c.featureSize],
		)
		copy(nextStateBatch[batchStartInd:batchStartInd+c.featureSize],
			c.nextStateCache[expStartInd:expStartInd+c.featureSize],
		)

		actionBatch[i] = c.actionCache[index]
		rewardBatch[i] = c.rewardCache[index]
		terminalBatch[i] = c.terminalCache[index]
	}

	return stateBatch, actionBatch, rewardBatch, nextStateBatch,
		terminalBatch, nil
}

// Size returns the current number of elements in the cache that are
// available for sampling
func (c *cache) Size() int {
	return intutils.Min(c.counter, c.capacity)
}

// Counter returns the total number of elements ever added to the
// cache
func (c *cache) Counter() int {
	return c.counter
}

// MaxCapacity returns the maximum number of elements that are allowed
// in the cache
func (c *cache) MaxCapacity() int {
	return c.capacity
}
