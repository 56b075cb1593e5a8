package game

// Agent is anything that can take part in a match.
type Agent interface {
	Name() string
	// ChooseMove returns how many sticks to take from a pile of the given
	// size. The environment still validates the answer.
	ChooseMove(pile int) (int, error)
}

// OutcomeObserver is implemented by agents that want to hear how an episode
// ended.
type OutcomeObserver interface {
	OnWin()
	OnLose()
}

// Learner is implemented by agents that update themselves from finished
// episodes.
type Learner interface {
	// Train consumes the trajectory of the last episode and reports how many
	// table entries were written.
	Train() int
	AdvanceSchedule()
	ExplorationRate() float64
}

// MaxTake is the most sticks a single move may remove.
const MaxTake = 3

// MaxMove returns the largest legal take for a pile.
func MaxMove(pile int) int {
	if pile < MaxTake {
		return pile
	}
	return MaxTake
}

// LegalMoves lists the legal takes for a pile in ascending order.
func LegalMoves(pile int) []int {
	n := MaxMove(pile)
	if n <= 0 {
		return nil
	}
	moves := make([]int, n)
	for i := range moves {
		moves[i] = i + 1
	}
	return moves
}

// NotifyOutcome tells both agents how the episode ended. Agents that do not
// observe outcomes are skipped.
func NotifyOutcome(winner, loser Agent) {
	if o, ok := winner.(OutcomeObserver); ok {
		o.OnWin()
	}
	if o, ok := loser.(OutcomeObserver); ok {
		o.OnLose()
	}
}
