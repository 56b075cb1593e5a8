package training

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/mitchelldurbincs/MatchsticksReinforcementLearning/internal/game"
	"github.com/mitchelldurbincs/MatchsticksReinforcementLearning/internal/game/events"
)

var ErrInvalidConfig = errors.New("invalid training config")

// Config controls a training run
type Config struct {
	Episodes   int
	DecayEvery int // episodes between exploration decays
	LogEvery   int // 0 disables progress logs
}

func (c Config) validate() error {
	if c.Episodes < 0 {
		return fmt.Errorf("%w: episodes must be non-negative", ErrInvalidConfig)
	}
	if c.DecayEvery <= 0 {
		return fmt.Errorf("%w: decay_every must be positive", ErrInvalidConfig)
	}
	if c.LogEvery < 0 {
		return fmt.Errorf("%w: log_every must be non-negative", ErrInvalidConfig)
	}
	return nil
}

// Summary describes a finished or interrupted run
type Summary struct {
	Episodes         int
	Wins             map[string]int
	ExplorationRates map[string]float64
	Duration         time.Duration
	Interrupted      bool
}

type learner struct {
	name string
	game.Learner
}

// Trainer plays episodes on an environment and updates every learning
// agent seated at it.
type Trainer struct {
	cfg       Config
	env       *game.Environment
	learners  []learner
	logger    zerolog.Logger
	publisher events.Publisher
}

// NewTrainer creates a trainer. publisher may be nil.
func NewTrainer(cfg Config, env *game.Environment, logger zerolog.Logger, publisher events.Publisher) (*Trainer, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if env == nil {
		return nil, fmt.Errorf("%w: missing environment", ErrInvalidConfig)
	}

	t := &Trainer{
		cfg:       cfg,
		env:       env,
		logger:    logger.With().Str("component", "trainer").Logger(),
		publisher: publisher,
	}
	for _, a := range env.Agents() {
		if l, ok := a.(game.Learner); ok {
			t.learners = append(t.learners, learner{name: a.Name(), Learner: l})
		}
	}
	return t, nil
}

// Run plays the configured number of episodes. ctx is only checked between
// episodes; a cancelled run returns the partial summary with Interrupted set.
func (t *Trainer) Run(ctx context.Context) (Summary, error) {
	start := time.Now()
	summary := Summary{
		Wins:             make(map[string]int),
		ExplorationRates: make(map[string]float64),
	}
	for _, a := range t.env.Agents() {
		summary.Wins[a.Name()] = 0
	}

	t.logger.Info().
		Int("episodes", t.cfg.Episodes).
		Int("decay_every", t.cfg.DecayEvery).
		Int("learners", len(t.learners)).
		Int("pile", t.env.OriginalPile()).
		Msg("Starting training")

	for episode := 1; episode <= t.cfg.Episodes; episode++ {
		if err := ctx.Err(); err != nil {
			summary.Interrupted = true
			t.logger.Warn().Int("episode", episode).Msg("Training interrupted")
			break
		}

		// A fresh environment already holds a started episode
		if t.env.Moves() > 0 {
			t.env.Reset()
		}

		winner, loser, err := t.env.Play()
		if err != nil {
			return summary, fmt.Errorf("episode %d: %w", episode, err)
		}
		game.NotifyOutcome(winner, loser)
		summary.Wins[winner.Name()]++
		summary.Episodes = episode

		for _, l := range t.learners {
			updates := l.Train()
			t.publish(events.NewAgentTrainedEvent(t.env.EpisodeID(), l.name, updates))
		}

		if episode%t.cfg.DecayEvery == 0 {
			for _, l := range t.learners {
				l.AdvanceSchedule()
				t.publish(events.NewScheduleAdvancedEvent(t.env.EpisodeID(), l.name, episode, l.ExplorationRate()))
			}
		}

		if t.cfg.LogEvery > 0 && episode%t.cfg.LogEvery == 0 {
			t.logProgress(episode, summary.Wins)
		}
	}

	for _, l := range t.learners {
		summary.ExplorationRates[l.name] = l.ExplorationRate()
	}
	summary.Duration = time.Since(start)

	t.logger.Info().
		Int("episodes", summary.Episodes).
		Interface("wins", summary.Wins).
		Dur("duration", summary.Duration).
		Bool("interrupted", summary.Interrupted).
		Msg("Training finished")

	return summary, nil
}

func (t *Trainer) logProgress(episode int, wins map[string]int) {
	ev := t.logger.Info().Int("episode", episode)
	for name, w := range wins {
		ev = ev.Int("wins_"+name, w)
	}
	for _, l := range t.learners {
		ev = ev.Float64("exploration_"+l.name, l.ExplorationRate())
	}
	ev.Msg("Training progress")
}

func (t *Trainer) publish(event events.Event) {
	if t.publisher != nil {
		t.publisher.Publish(event)
	}
}
