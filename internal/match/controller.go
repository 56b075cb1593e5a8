package match

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/mitchelldurbincs/MatchsticksReinforcementLearning/internal/game"
)

var (
	ErrNoHuman      = errors.New("at least one player must be a human")
	ErrNotHumanTurn = errors.New("not the human player's turn")
	ErrMatchOver    = errors.New("match is over")
)

// View is a rendering surface for the match
type View interface {
	Render(remaining int, status string)
}

// Controller runs a human against an automatic opponent. The opponent
// moves as soon as it holds the turn, so callers only ever feed human
// moves.
type Controller struct {
	env    *game.Environment
	human  game.Agent
	view   View
	logger zerolog.Logger

	over       bool
	lastAIMove int
}

// NewController wires a controller to an environment. human must be one
// of the environment's agents. view may be nil.
func NewController(env *game.Environment, human game.Agent, view View, logger zerolog.Logger) (*Controller, error) {
	if env == nil || human == nil {
		return nil, ErrNoHuman
	}
	agents := env.Agents()
	if agents[0] != human && agents[1] != human {
		return nil, fmt.Errorf("%w: %s is not seated", ErrNoHuman, human.Name())
	}

	c := &Controller{
		env:    env,
		human:  human,
		view:   view,
		logger: logger.With().Str("component", "match_controller").Logger(),
	}
	if err := c.playOpponent(); err != nil {
		return nil, err
	}
	c.render()
	return c, nil
}

// HandleHumanMove applies the human's take and lets the opponent answer.
// Illegal takes leave the match unchanged.
func (c *Controller) HandleHumanMove(n int) error {
	if c.over {
		return ErrMatchOver
	}
	if c.env.Current() != c.human {
		return ErrNotHumanTurn
	}

	if err := c.env.ApplyMove(n); err != nil {
		c.logger.Debug().Err(err).Int("taken", n).Msg("Rejected human move")
		return err
	}
	c.lastAIMove = 0
	if c.env.IsTerminal() {
		c.finish()
	} else {
		c.env.SwitchTurn()
		if err := c.playOpponent(); err != nil {
			return err
		}
	}
	c.render()
	return nil
}

// Reset starts a new game, reshuffling the seats
func (c *Controller) Reset() error {
	c.env.Reset()
	c.over = false
	c.lastAIMove = 0
	if err := c.playOpponent(); err != nil {
		return err
	}
	c.render()
	return nil
}

func (c *Controller) playOpponent() error {
	for !c.env.IsTerminal() && c.env.Current() != c.human {
		opponent := c.env.Current()
		n, err := opponent.ChooseMove(c.env.Pile())
		if err != nil {
			return fmt.Errorf("opponent %s: %w", opponent.Name(), err)
		}
		if err := c.env.ApplyMove(n); err != nil {
			return fmt.Errorf("opponent %s: %w", opponent.Name(), err)
		}
		c.lastAIMove = n
		c.logger.Debug().Str("agent", opponent.Name()).Int("taken", n).Int("remaining", c.env.Pile()).Msg("Opponent moved")

		if c.env.IsTerminal() {
			c.finish()
			return nil
		}
		c.env.SwitchTurn()
	}
	return nil
}

func (c *Controller) finish() {
	c.over = true
	winner, _ := c.env.Winner()
	loser, _ := c.env.Loser()
	game.NotifyOutcome(winner, loser)

	for _, a := range c.env.Agents() {
		if l, ok := a.(game.Learner); ok {
			l.Train()
		}
	}

	c.logger.Info().
		Str("winner", winner.Name()).
		Str("loser", loser.Name()).
		Int("moves", c.env.Moves()).
		Msg("Match finished")
}

func (c *Controller) render() {
	if c.view != nil {
		c.view.Render(c.env.Pile(), c.Status())
	}
}

// Status is "<name>'s turn" while playing and "<name> wins!" at the end
func (c *Controller) Status() string {
	if winner, ok := c.env.Winner(); ok {
		return fmt.Sprintf("%s wins!", winner.Name())
	}
	return fmt.Sprintf("%s's turn", c.env.Current().Name())
}

func (c *Controller) Remaining() int        { return c.env.Pile() }
func (c *Controller) Over() bool            { return c.over }
func (c *Controller) HumanTurn() bool       { return !c.over && c.env.Current() == c.human }
func (c *Controller) LastOpponentMove() int { return c.lastAIMove }

// Players returns both agents in seat order
func (c *Controller) Players() [2]game.Agent { return c.env.Agents() }
