package main

import (
	"flag"
	"math/rand"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/rs/zerolog/log"

	"github.com/mitchelldurbincs/MatchsticksReinforcementLearning/internal/agent"
	"github.com/mitchelldurbincs/MatchsticksReinforcementLearning/internal/common"
	"github.com/mitchelldurbincs/MatchsticksReinforcementLearning/internal/config"
	"github.com/mitchelldurbincs/MatchsticksReinforcementLearning/internal/game"
	"github.com/mitchelldurbincs/MatchsticksReinforcementLearning/internal/match"
	"github.com/mitchelldurbincs/MatchsticksReinforcementLearning/internal/persistence"
	"github.com/mitchelldurbincs/MatchsticksReinforcementLearning/internal/ui"
)

func main() {
	configPath := flag.String("config", "", "Path to config file")
	snapshot := flag.String("snapshot", "", "Snapshot of a trained agent (empty to use config default)")
	flag.Parse()

	if err := config.Init(*configPath); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize config")
	}
	cfg := config.Get()
	if *snapshot == "" {
		*snapshot = cfg.Training.SnapshotPath
	}

	logger := common.SetupLogging(cfg.Logging.Level, cfg.Logging.Format)
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	var opponent game.Agent
	if snap, err := persistence.LoadFile(*snapshot); err == nil {
		learner := agent.NewLearning("AI", rng, agent.WithLogger(logger))
		if err := learner.ImportState(snap); err != nil {
			logger.Fatal().Err(err).Msg("Invalid snapshot")
		}
		opponent = learner
	} else {
		logger.Warn().Err(err).Str("path", *snapshot).Msg("No trained agent, playing randomly")
		opponent = agent.NewRandom("Random AI", rng)
	}

	human := match.NewHuman("You")
	env, err := game.NewEnvironment(game.Config{
		PileSize: cfg.Game.PileSize,
		Rng:      rng,
		Logger:   logger,
	}, human, opponent)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to create environment")
	}

	uiGame, err := ui.NewMatchGame(env, human, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to create UI")
	}

	ebiten.SetWindowSize(ui.ScreenWidth(), ui.ScreenHeight())
	ebiten.SetWindowTitle(cfg.UI.Window.Title)

	if err := ebiten.RunGame(uiGame); err != nil {
		logger.Fatal().Err(err).Msg("UI exited with error")
	}
}
