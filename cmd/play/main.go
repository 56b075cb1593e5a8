package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/mitchelldurbincs/MatchsticksReinforcementLearning/internal/agent"
	"github.com/mitchelldurbincs/MatchsticksReinforcementLearning/internal/common"
	"github.com/mitchelldurbincs/MatchsticksReinforcementLearning/internal/config"
	"github.com/mitchelldurbincs/MatchsticksReinforcementLearning/internal/console"
	"github.com/mitchelldurbincs/MatchsticksReinforcementLearning/internal/game"
	"github.com/mitchelldurbincs/MatchsticksReinforcementLearning/internal/grpc/policyserver"
	"github.com/mitchelldurbincs/MatchsticksReinforcementLearning/internal/match"
	"github.com/mitchelldurbincs/MatchsticksReinforcementLearning/internal/persistence"
)

func main() {
	configPath := flag.String("config", "", "Path to config file")
	name := flag.String("name", "You", "Your name on the scoreboard")
	snapshot := flag.String("snapshot", "", "Snapshot of a trained agent (empty to use config default)")
	remote := flag.String("remote", "", "Play against a policy server at host:port instead of a local agent")
	save := flag.Bool("save", false, "Write the opponent's table back to the snapshot when you quit")
	flag.Parse()

	if err := config.Init(*configPath); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize config")
	}
	cfg := config.Get()
	if *snapshot == "" {
		*snapshot = cfg.Training.SnapshotPath
	}

	// The terminal belongs to the game, so only warnings reach stderr
	logger := common.SetupLogging("warn", cfg.Logging.Format)

	if err := run(logger, cfg, *name, *snapshot, *remote, *save); err != nil {
		logger.Fatal().Err(err).Msg("Game aborted")
	}
}

func run(logger zerolog.Logger, cfg *config.Config, name, snapshot, remote string, save bool) error {
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	view := console.NewView(os.Stdout)
	in := bufio.NewReader(os.Stdin)

	opponent, learner, closeOpponent, err := newOpponent(logger, rng, snapshot, remote)
	if err != nil {
		return err
	}
	defer closeOpponent()

	human := agent.NewInteractive(name, in, os.Stdout)
	env, err := game.NewEnvironment(game.Config{
		PileSize: cfg.Game.PileSize,
		Rng:      rng,
		Logger:   logger,
	}, human, opponent)
	if err != nil {
		return err
	}

	view.Message("Take 1, 2 or 3 matches per turn. Whoever takes the last match loses.")
	controller, err := match.NewController(env, human, view, logger)
	if err != nil {
		return err
	}

	announce := func() {
		if n := controller.LastOpponentMove(); n > 0 {
			view.Message("%s took %d.", opponent.Name(), n)
		}
	}
	announce()

	for {
		for !controller.Over() {
			take, err := human.ChooseMove(controller.Remaining())
			if errors.Is(err, agent.ErrNoInput) {
				return finish(view, learner, snapshot, save, human, opponent)
			}
			if err != nil {
				return err
			}
			if err := controller.HandleHumanMove(take); err != nil {
				if errors.Is(err, game.ErrInvalidMove) {
					view.Error(err)
					continue
				}
				return err
			}
			announce()
		}

		view.Scoreboard(stringers(human, opponent)...)
		again, err := console.Confirm(in, os.Stdout, "Play again?")
		if err != nil {
			return err
		}
		if !again {
			return finish(view, learner, snapshot, save, human, opponent)
		}
		if err := controller.Reset(); err != nil {
			return err
		}
		announce()
	}
}

// newOpponent picks the remote policy, the trained agent or a random
// player, in that order of preference. learner is nil unless the opponent
// keeps learning locally.
func newOpponent(logger zerolog.Logger, rng *rand.Rand, snapshot, remote string) (game.Agent, *agent.Learning, func(), error) {
	if remote != "" {
		client, err := policyserver.Dial(remote)
		if err != nil {
			return nil, nil, nil, err
		}
		closeFn := func() { _ = client.Close() }
		return policyserver.NewRemoteAgent("Remote AI", client, 5*time.Second), nil, closeFn, nil
	}

	snap, err := persistence.LoadFile(snapshot)
	if err != nil {
		logger.Warn().Err(err).Str("path", snapshot).Msg("No trained agent, playing randomly")
		return agent.NewRandom("Random AI", rng), nil, func() {}, nil
	}

	learner := agent.NewLearning("AI", rng, agent.WithLogger(logger))
	if err := learner.ImportState(snap); err != nil {
		return nil, nil, nil, err
	}
	return learner, learner, func() {}, nil
}

func finish(view *console.View, learner *agent.Learning, snapshot string, save bool, players ...game.Agent) error {
	view.Message("Thanks for playing!")
	if learner != nil && save {
		if err := persistence.SaveFile(snapshot, learner.ExportState()); err != nil {
			return err
		}
		view.Message("Saved the AI's table to %s.", snapshot)
	}
	for _, s := range stringers(players...) {
		view.Message("%s", s)
	}
	return nil
}

func stringers(players ...game.Agent) []fmt.Stringer {
	out := make([]fmt.Stringer, 0, len(players))
	for _, p := range players {
		if s, ok := p.(fmt.Stringer); ok {
			out = append(out, s)
		}
	}
	return out
}
