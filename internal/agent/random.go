package agent

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/mitchelldurbincs/MatchsticksReinforcementLearning/internal/game"
)

// Random takes a uniformly random legal number of sticks
type Random struct {
	Tally
	name string
	rng  *rand.Rand
}

// NewRandom creates a random agent. A nil rng is seeded from the clock.
func NewRandom(name string, rng *rand.Rand) *Random {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Random{name: name, rng: rng}
}

func (r *Random) Name() string { return r.name }

func (r *Random) ChooseMove(pile int) (int, error) {
	if pile < 1 {
		return 0, fmt.Errorf("%w: no sticks left", game.ErrGameOver)
	}
	return 1 + r.rng.Intn(game.MaxMove(pile)), nil
}

func (r *Random) String() string { return r.Summary(r.name) }
