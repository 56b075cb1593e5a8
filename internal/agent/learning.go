package agent

import (
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/rs/zerolog"

	"github.com/mitchelldurbincs/MatchsticksReinforcementLearning/internal/game"
)

const (
	DefaultLearningRate     = 0.1
	DefaultExplorationRate  = 1.0
	DefaultExplorationDecay = 0.99
	DefaultExplorationFloor = 0.05
)

var ErrInvalidSnapshot = errors.New("invalid agent snapshot")

// Step is one trajectory entry. For moves Delta is the number of sticks
// that disappeared between two of the agent's turns and State is the pile
// the agent saw on the earlier turn. The terminal step carries the last
// observed pile in Delta and Win or Lose in State.
type Step struct {
	Delta int
	State State
}

// Snapshot is the exportable part of a learning agent
type Snapshot struct {
	ExplorationRate float64
	LearningRate    float64
	Table           *ValueTable
}

// Validate checks the rates, the presence of a table and that the WIN and
// LOSE anchors hold exactly 1 and -1
func (s Snapshot) Validate() error {
	if s.ExplorationRate < 0 || s.ExplorationRate > 1 {
		return fmt.Errorf("%w: exploration_rate %v outside [0,1]", ErrInvalidSnapshot, s.ExplorationRate)
	}
	if s.LearningRate <= 0 || s.LearningRate > 1 {
		return fmt.Errorf("%w: learning_rate %v outside (0,1]", ErrInvalidSnapshot, s.LearningRate)
	}
	if s.Table == nil {
		return fmt.Errorf("%w: missing value table", ErrInvalidSnapshot)
	}
	for anchor, want := range map[State]float64{Win: 1, Lose: -1} {
		v, ok := s.Table.Lookup(anchor)
		if !ok {
			return fmt.Errorf("%w: missing %s anchor", ErrInvalidSnapshot, anchor)
		}
		if v != want {
			return fmt.Errorf("%w: %s anchor is %v, want %v", ErrInvalidSnapshot, anchor, v, want)
		}
	}
	return nil
}

// Learning is a tabular agent that learns the value of each pile size by
// replaying its own trajectory backwards after every episode.
type Learning struct {
	Tally
	name string

	table            *ValueTable
	learningRate     float64
	explorationRate  float64
	explorationDecay float64
	explorationFloor float64

	trajectory []Step
	prior      int
	hasPrior   bool

	rng    *rand.Rand
	logger zerolog.Logger
}

// Option configures a Learning agent
type Option func(*Learning)

func WithLearningRate(rate float64) Option {
	return func(l *Learning) { l.learningRate = rate }
}

func WithExplorationRate(rate float64) Option {
	return func(l *Learning) { l.explorationRate = rate }
}

// WithSchedule sets the multiplicative decay applied by AdvanceSchedule and
// the rate it never goes below.
func WithSchedule(decay, floor float64) Option {
	return func(l *Learning) {
		l.explorationDecay = decay
		l.explorationFloor = floor
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(l *Learning) { l.logger = logger }
}

// WithValueTable starts the agent from an existing table. The table is
// used as is, not copied.
func WithValueTable(table *ValueTable) Option {
	return func(l *Learning) {
		if table != nil {
			l.table = table
		}
	}
}

// NewLearning creates a learning agent. A nil rng is seeded from the clock.
func NewLearning(name string, rng *rand.Rand, opts ...Option) *Learning {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	l := &Learning{
		name:             name,
		table:            NewValueTable(),
		learningRate:     DefaultLearningRate,
		explorationRate:  DefaultExplorationRate,
		explorationDecay: DefaultExplorationDecay,
		explorationFloor: DefaultExplorationFloor,
		rng:              rng,
		logger:           zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(l)
	}
	l.logger = l.logger.With().Str("component", "learning_agent").Str("agent", name).Logger()
	return l
}

func (l *Learning) Name() string { return l.name }

// ChooseMove records the transition since the agent's previous turn, then
// explores with probability ExplorationRate or otherwise takes the move
// whose resulting pile has the lowest value.
func (l *Learning) ChooseMove(pile int) (int, error) {
	if pile < 1 {
		return 0, fmt.Errorf("%w: no sticks left", game.ErrGameOver)
	}

	if l.hasPrior {
		l.trajectory = append(l.trajectory, Step{Delta: l.prior - pile, State: State(l.prior)})
	}

	var take int
	if l.rng.Float64() < l.explorationRate {
		take = 1 + l.rng.Intn(game.MaxMove(pile))
	} else {
		take = l.Greedy(pile)
	}

	l.prior = pile
	l.hasPrior = true
	return take, nil
}

// Greedy returns the take that minimizes the value of the resulting pile.
// Ties go to the smallest take. It does not touch the trajectory, so it is
// safe to call on a frozen agent. Returns 0 for an empty pile.
func (l *Learning) Greedy(pile int) int {
	return greedy(l.table, pile)
}

func (l *Learning) OnWin() {
	l.finish(Win)
	l.Tally.OnWin()
}

func (l *Learning) OnLose() {
	l.finish(Lose)
	l.Tally.OnLose()
}

func (l *Learning) finish(outcome State) {
	if l.hasPrior {
		l.trajectory = append(l.trajectory, Step{Delta: l.prior, State: outcome})
	}
	l.prior = 0
	l.hasPrior = false
}

// Train walks the trajectory from the end, pulling each state's value
// toward the already updated value of the state that followed it. The
// terminal anchor seeds the pass and is never written. The trajectory is
// always cleared. Returns the number of table writes.
func (l *Learning) Train() int {
	defer func() { l.trajectory = l.trajectory[:0] }()

	if len(l.trajectory) == 0 {
		return 0
	}

	updates := 0
	var next float64
	for i := len(l.trajectory) - 1; i >= 0; i-- {
		s := l.trajectory[i].State
		current := l.table.Value(s)
		if i == len(l.trajectory)-1 {
			next = current
			continue
		}
		if s.Terminal() {
			continue
		}
		updated := current + l.learningRate*(next-current)
		l.table.Set(s, updated)
		next = updated
		updates++
	}

	l.logger.Debug().
		Int("steps", len(l.trajectory)).
		Int("updates", updates).
		Msg("Trained on episode")
	return updates
}

// AdvanceSchedule decays the exploration rate, never below the floor
func (l *Learning) AdvanceSchedule() {
	rate := l.explorationRate * l.explorationDecay
	if rate < l.explorationFloor {
		rate = l.explorationFloor
	}
	l.explorationRate = rate
}

func (l *Learning) ExplorationRate() float64 { return l.explorationRate }
func (l *Learning) LearningRate() float64    { return l.learningRate }
func (l *Learning) Table() *ValueTable       { return l.table }

// Trajectory returns a copy of the steps recorded so far
func (l *Learning) Trajectory() []Step {
	out := make([]Step, len(l.trajectory))
	copy(out, l.trajectory)
	return out
}

// ExportState returns a copy of the rates and table
func (l *Learning) ExportState() Snapshot {
	return Snapshot{
		ExplorationRate: l.explorationRate,
		LearningRate:    l.learningRate,
		Table:           l.table.Clone(),
	}
}

// ImportState replaces the rates and table. The agent is left untouched
// when the snapshot is invalid.
func (l *Learning) ImportState(s Snapshot) error {
	if err := s.Validate(); err != nil {
		return err
	}
	l.explorationRate = s.ExplorationRate
	l.learningRate = s.LearningRate
	l.table = s.Table.Clone()
	l.logger.Info().
		Int("states", l.table.Len()).
		Float64("exploration_rate", l.explorationRate).
		Msg("Imported agent state")
	return nil
}

// Policy returns a frozen greedy view of the agent. It shares the table,
// never explores and records nothing.
func (l *Learning) Policy() *Policy {
	return &Policy{name: l.name, table: l.table}
}

func (l *Learning) String() string { return l.Summary(l.name) }

// Policy plays greedily from a value table without learning
type Policy struct {
	Tally
	name  string
	table *ValueTable
}

// NewPolicy creates a greedy player over table
func NewPolicy(name string, table *ValueTable) *Policy {
	if table == nil {
		table = NewValueTable()
	}
	return &Policy{name: name, table: table}
}

func (p *Policy) Name() string { return p.name }

func (p *Policy) ChooseMove(pile int) (int, error) {
	if pile < 1 {
		return 0, fmt.Errorf("%w: no sticks left", game.ErrGameOver)
	}
	return greedy(p.table, pile), nil
}

func (p *Policy) String() string { return p.Summary(p.name) }

func greedy(table *ValueTable, pile int) int {
	best := 0
	bestValue := 0.0
	for _, take := range game.LegalMoves(pile) {
		v := table.Value(State(pile - take))
		if best == 0 || v < bestValue {
			best = take
			bestValue = v
		}
	}
	return best
}
