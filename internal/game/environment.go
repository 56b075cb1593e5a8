package game

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/mitchelldurbincs/MatchsticksReinforcementLearning/internal/game/events"
)

// Config holds the settings for a new Environment
type Config struct {
	PileSize  int
	Rng       *rand.Rand
	Logger    zerolog.Logger
	Publisher events.Publisher // optional
}

// Environment is a single matchstick table shared by two agents. The agent
// that takes the last stick loses.
type Environment struct {
	pile         int
	originalPile int
	agents       [2]Agent
	current      int
	moves        int
	episode      int
	episodeID    string
	startedAt    time.Time

	rng       *rand.Rand
	logger    zerolog.Logger
	publisher events.Publisher
}

// NewEnvironment creates an environment and resets it for the first episode
func NewEnvironment(cfg Config, a, b Agent) (*Environment, error) {
	if cfg.PileSize < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidPile, cfg.PileSize)
	}
	if a == nil || b == nil {
		return nil, ErrMissingAgent
	}

	rng := cfg.Rng
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	e := &Environment{
		originalPile: cfg.PileSize,
		agents:       [2]Agent{a, b},
		rng:          rng,
		logger:       cfg.Logger.With().Str("component", "environment").Logger(),
		publisher:    cfg.Publisher,
	}
	e.Reset()
	return e, nil
}

// Reset restores the pile, swaps the seats with probability 0.5 and gives
// the turn to seat 0.
func (e *Environment) Reset() {
	e.pile = e.originalPile
	if e.rng.Float64() < 0.5 {
		e.agents[0], e.agents[1] = e.agents[1], e.agents[0]
	}
	e.current = 0
	e.moves = 0
	e.episode++
	e.episodeID = uuid.NewString()
	e.startedAt = time.Now()

	e.logger.Debug().
		Str("episode_id", e.episodeID).
		Int("pile", e.pile).
		Str("first", e.agents[0].Name()).
		Msg("Episode reset")

	e.publish(events.NewEpisodeStartedEvent(e.episodeID, e.episode, e.pile, e.agents[0].Name()))
}

// ApplyMove removes amount sticks on behalf of the current agent. The turn
// is not switched.
func (e *Environment) ApplyMove(amount int) error {
	name := e.agents[e.current].Name()

	if e.IsTerminal() {
		err := fmt.Errorf("%w: %w", ErrInvalidMove, ErrGameOver)
		e.publish(events.NewMoveRejectedEvent(e.episodeID, name, amount, e.pile, err.Error()))
		return err
	}
	if amount < 1 || amount > MaxMove(e.pile) {
		err := fmt.Errorf("%w: took %d, must be between 1 and %d", ErrInvalidMove, amount, MaxMove(e.pile))
		e.publish(events.NewMoveRejectedEvent(e.episodeID, name, amount, e.pile, err.Error()))
		return err
	}

	e.pile -= amount
	e.moves++
	e.publish(events.NewMoveAppliedEvent(e.episodeID, name, amount, e.pile))

	if e.IsTerminal() {
		winner, _ := e.Winner()
		e.logger.Debug().
			Str("episode_id", e.episodeID).
			Str("winner", winner.Name()).
			Str("loser", name).
			Int("moves", e.moves).
			Msg("Episode finished")
		e.publish(events.NewEpisodeEndedEvent(e.episodeID, e.episode, winner.Name(), name, e.moves, time.Since(e.startedAt)))
	}
	return nil
}

// IsTerminal reports whether the pile is empty
func (e *Environment) IsTerminal() bool {
	return e.pile == 0
}

// Winner returns the agent that did not take the last stick. ok is false
// while the episode is still running.
func (e *Environment) Winner() (Agent, bool) {
	if !e.IsTerminal() {
		return nil, false
	}
	return e.agents[1-e.current], true
}

// Loser returns the agent that took the last stick
func (e *Environment) Loser() (Agent, bool) {
	if !e.IsTerminal() {
		return nil, false
	}
	return e.agents[e.current], true
}

// SwitchTurn hands the turn to the other seat. It does nothing once the
// episode has ended so the loser stays current.
func (e *Environment) SwitchTurn() {
	if e.IsTerminal() {
		return
	}
	e.current = 1 - e.current
}

// Play runs the current episode to completion and returns the winner and
// loser. Outcome hooks are not called.
func (e *Environment) Play() (winner, loser Agent, err error) {
	for !e.IsTerminal() {
		agent := e.agents[e.current]
		amount, err := agent.ChooseMove(e.pile)
		if err != nil {
			return nil, nil, fmt.Errorf("agent %s failed to choose a move: %w", agent.Name(), err)
		}
		if err := e.ApplyMove(amount); err != nil {
			return nil, nil, fmt.Errorf("agent %s: %w", agent.Name(), err)
		}
		e.SwitchTurn()
	}
	winner, _ = e.Winner()
	loser, _ = e.Loser()
	return winner, loser, nil
}

// Pile returns the sticks left
func (e *Environment) Pile() int         { return e.pile }
func (e *Environment) OriginalPile() int { return e.originalPile }
func (e *Environment) CurrentIndex() int { return e.current }
func (e *Environment) Current() Agent    { return e.agents[e.current] }
func (e *Environment) Agents() [2]Agent  { return e.agents }
func (e *Environment) Moves() int        { return e.moves }
func (e *Environment) Episode() int      { return e.episode }
func (e *Environment) EpisodeID() string { return e.episodeID }

func (e *Environment) publish(event events.Event) {
	if e.publisher != nil {
		e.publisher.Publish(event)
	}
}
