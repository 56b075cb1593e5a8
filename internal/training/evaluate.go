package training

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/rs/zerolog"

	"github.com/mitchelldurbincs/MatchsticksReinforcementLearning/internal/agent"
	"github.com/mitchelldurbincs/MatchsticksReinforcementLearning/internal/game"
)

type freezable interface {
	Policy() *agent.Policy
}

// Evaluate plays episodes between a and b with every learning agent
// replaced by its greedy policy, so nothing explores, records or trains.
// It returns the number of wins per agent name.
func Evaluate(ctx context.Context, episodes int, a, b game.Agent, pile int, rng *rand.Rand) (map[string]int, error) {
	env, err := game.NewEnvironment(game.Config{
		PileSize: pile,
		Rng:      rng,
		Logger:   zerolog.Nop(),
	}, freeze(a), freeze(b))
	if err != nil {
		return nil, err
	}

	wins := map[string]int{a.Name(): 0, b.Name(): 0}
	for i := 0; i < episodes; i++ {
		if err := ctx.Err(); err != nil {
			return wins, err
		}
		if i > 0 {
			env.Reset()
		}
		winner, _, err := env.Play()
		if err != nil {
			return wins, fmt.Errorf("evaluation episode %d: %w", i+1, err)
		}
		wins[winner.Name()]++
	}
	return wins, nil
}

func freeze(a game.Agent) game.Agent {
	if f, ok := a.(freezable); ok {
		return f.Policy()
	}
	return a
}
