package input

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/mitchelldurbincs/MatchsticksReinforcementLearning/internal/ui/layout"
)

// Action is what the player asked for during a frame
type Action struct {
	Take      int  // 1-3, or 0 when no take was requested
	PlayAgain bool
}

var takeKeys = map[ebiten.Key]int{
	ebiten.Key1:       1,
	ebiten.Key2:       2,
	ebiten.Key3:       3,
	ebiten.KeyNumpad1: 1,
	ebiten.KeyNumpad2: 2,
	ebiten.KeyNumpad3: 3,
}

// Handler turns clicks on buttons and number keys into actions
type Handler struct {
	mouseX, mouseY int
	buttons        []layout.Button
	pending        Action
}

func NewHandler() *Handler {
	return &Handler{}
}

// SetButtons replaces the clickable buttons for the next frames
func (h *Handler) SetButtons(buttons []layout.Button) {
	h.buttons = buttons
}

func (h *Handler) Update() {
	h.mouseX, h.mouseY = GetCursorPosition()

	if IsLeftClickJustPressed() {
		if b, ok := layout.Hit(h.buttons, h.mouseX, h.mouseY); ok {
			h.pending = Action{Take: b.Take, PlayAgain: b.Take == 0}
		}
	}

	for key, take := range takeKeys {
		if inpututil.IsKeyJustPressed(key) {
			h.pending = Action{Take: take}
		}
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyR) || inpututil.IsKeyJustPressed(ebiten.KeyEnter) {
		h.pending = Action{PlayAgain: true}
	}
}

// Cursor returns the last known mouse position
func (h *Handler) Cursor() (int, int) {
	return h.mouseX, h.mouseY
}

// TakeAction returns and clears the pending action
func (h *Handler) TakeAction() (Action, bool) {
	a := h.pending
	h.pending = Action{}
	return a, a.Take > 0 || a.PlayAgain
}
