package match

import (
	"errors"

	"github.com/mitchelldurbincs/MatchsticksReinforcementLearning/internal/agent"
)

// ErrAwaitingInput is returned by Human.ChooseMove. Human moves reach the
// controller through HandleHumanMove instead.
var ErrAwaitingInput = errors.New("human moves are pushed by the interface")

// Human marks the seat of a person playing through a graphical surface
type Human struct {
	agent.Tally
	name string
}

func NewHuman(name string) *Human { return &Human{name: name} }

func (h *Human) Name() string { return h.name }

func (h *Human) ChooseMove(int) (int, error) { return 0, ErrAwaitingInput }

func (h *Human) String() string { return h.Summary(h.name) }
