package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/mitchelldurbincs/MatchsticksReinforcementLearning/internal/agent"
	"github.com/mitchelldurbincs/MatchsticksReinforcementLearning/internal/common"
	"github.com/mitchelldurbincs/MatchsticksReinforcementLearning/internal/config"
	"github.com/mitchelldurbincs/MatchsticksReinforcementLearning/internal/experience"
	"github.com/mitchelldurbincs/MatchsticksReinforcementLearning/internal/game"
	"github.com/mitchelldurbincs/MatchsticksReinforcementLearning/internal/game/events"
	"github.com/mitchelldurbincs/MatchsticksReinforcementLearning/internal/game/events/subscribers"
	"github.com/mitchelldurbincs/MatchsticksReinforcementLearning/internal/persistence"
	"github.com/mitchelldurbincs/MatchsticksReinforcementLearning/internal/training"
)

const maxEpisodeFileSize = 64 << 20

func main() {
	configPath := flag.String("config", "", "Path to config file")
	env := flag.String("env", "", "Environment overlay (loads config.<env>.yaml)")
	episodes := flag.Int("episodes", -1, "Episodes to play (-1 to use config default)")
	opponent := flag.String("opponent", "", "Training opponent: random or learner (empty to use config default)")
	out := flag.String("out", "", "Snapshot output path (empty to use config default)")
	resume := flag.Bool("resume", false, "Continue from the snapshot at the output path")
	seed := flag.Int64("seed", -1, "Random seed (-1 to use config default, 0 for time based)")
	evalEpisodes := flag.Int("eval", 1000, "Greedy evaluation episodes against a random player (0 to skip)")
	logEvents := flag.Bool("log-events", false, "Log every game event at debug level")
	flag.Parse()

	if err := config.Init(*configPath); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize config")
	}
	if err := config.LoadEnvironmentConfig(*env); err != nil {
		log.Fatal().Err(err).Msg("Failed to load environment config")
	}
	cfg := config.Get()

	if *episodes == -1 {
		*episodes = cfg.Training.Episodes
	}
	if *opponent == "" {
		*opponent = cfg.Training.Opponent
	}
	if *out == "" {
		*out = cfg.Training.SnapshotPath
	}
	if *seed == -1 {
		*seed = cfg.Training.Seed
	}
	if *seed == 0 {
		*seed = time.Now().UnixNano()
	}

	logger := common.SetupLogging(cfg.Logging.Level, cfg.Logging.Format)
	if err := run(logger, cfg, *episodes, *opponent, *out, *resume, *seed, *evalEpisodes, *logEvents); err != nil {
		logger.Fatal().Err(err).Msg("Training failed")
	}
}

func run(logger zerolog.Logger, cfg *config.Config, episodes int, opponent, out string, resume bool, seed int64, evalEpisodes int, logEvents bool) error {
	ctx, cancel := common.SignalContext(context.Background(), logger)
	defer cancel()

	rng := rand.New(rand.NewSource(seed))
	logger.Info().
		Int64("seed", seed).
		Int("episodes", episodes).
		Str("opponent", opponent).
		Int("pile", cfg.Game.PileSize).
		Msg("Starting training")

	learner := newLearner("learner", rng, cfg, logger)
	if resume {
		snap, err := persistence.LoadFile(out)
		if err != nil {
			return fmt.Errorf("resume from %s: %w", out, err)
		}
		if err := learner.ImportState(snap); err != nil {
			return err
		}
		logger.Info().Str("path", out).Int("states", snap.Table.Len()).Msg("Resumed from snapshot")
	}

	var rival game.Agent
	switch opponent {
	case config.OpponentLearner:
		rival = newLearner("rival", rng, cfg, logger)
	default:
		rival = agent.NewRandom("random", rng)
	}

	bus := events.NewEventBus(logger)
	// Built-in agents only pick legal moves
	bus.SubscribeFunc(events.TypeMoveRejected, func(e events.Event) {
		if rejected, ok := e.(*events.MoveRejectedEvent); ok {
			logger.Warn().
				Str("episode_id", rejected.EpisodeID()).
				Str("agent", rejected.Agent).
				Int("taken", rejected.Taken).
				Int("pile", rejected.Pile).
				Str("reason", rejected.Reason).
				Msg("Move rejected during training")
		}
	})
	if logEvents {
		bus.Subscribe(subscribers.NewLoggerSubscriber("event-logger", logger, zerolog.DebugLevel))
	}

	var recorder *experience.Recorder
	if cfg.Training.EpisodeLog.Enabled {
		sink, err := experience.NewFileSink(cfg.Training.EpisodeLog.Dir, maxEpisodeFileSize, logger)
		if err != nil {
			return err
		}
		buffer := experience.NewBuffer(cfg.Training.EpisodeLog.BufferSize, logger)
		recorder = experience.NewRecorder(uuid.NewString(), buffer, sink, logger)
		bus.Subscribe(recorder)
		defer func() {
			if err := recorder.Close(); err != nil {
				logger.Error().Err(err).Msg("Failed to close episode log")
			}
		}()
	}

	environment, err := game.NewEnvironment(game.Config{
		PileSize:  cfg.Game.PileSize,
		Rng:       rng,
		Logger:    logger,
		Publisher: bus,
	}, learner, rival)
	if err != nil {
		return err
	}

	trainer, err := training.NewTrainer(training.Config{
		Episodes:   episodes,
		DecayEvery: cfg.Training.DecayEvery,
		LogEvery:   cfg.Training.LogEvery,
	}, environment, logger, bus)
	if err != nil {
		return err
	}

	summary, err := trainer.Run(ctx)
	if err != nil {
		return err
	}

	logger.Info().
		Int("episodes", summary.Episodes).
		Interface("wins", summary.Wins).
		Interface("exploration_rates", summary.ExplorationRates).
		Dur("duration", summary.Duration).
		Bool("interrupted", summary.Interrupted).
		Msg("Training finished")

	if err := persistence.SaveFile(out, learner.ExportState()); err != nil {
		return err
	}
	logger.Info().Str("path", out).Int("states", learner.Table().Len()).Msg("Saved snapshot")

	fmt.Fprintln(os.Stdout, learner)
	fmt.Fprintln(os.Stdout, rival)

	if evalEpisodes > 0 && !summary.Interrupted {
		wins, err := training.Evaluate(ctx, evalEpisodes, learner, agent.NewRandom("random", rng), cfg.Game.PileSize, rng)
		if err != nil {
			return err
		}
		logger.Info().
			Int("episodes", evalEpisodes).
			Interface("wins", wins).
			Float64("win_rate", float64(wins[learner.Name()])/float64(evalEpisodes)).
			Msg("Greedy evaluation against random")
	}
	return nil
}

func newLearner(name string, rng *rand.Rand, cfg *config.Config, logger zerolog.Logger) *agent.Learning {
	return agent.NewLearning(name, rng,
		agent.WithLearningRate(cfg.Agent.LearningRate),
		agent.WithExplorationRate(cfg.Agent.ExplorationRate),
		agent.WithSchedule(cfg.Agent.ExplorationDecay, cfg.Agent.ExplorationFloor),
		agent.WithLogger(logger),
	)
}
