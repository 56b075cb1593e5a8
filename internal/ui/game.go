package ui

import (
	"errors"
	"fmt"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/rs/zerolog"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"

	"github.com/mitchelldurbincs/MatchsticksReinforcementLearning/internal/config"
	"github.com/mitchelldurbincs/MatchsticksReinforcementLearning/internal/game"
	"github.com/mitchelldurbincs/MatchsticksReinforcementLearning/internal/match"
	"github.com/mitchelldurbincs/MatchsticksReinforcementLearning/internal/ui/input"
	"github.com/mitchelldurbincs/MatchsticksReinforcementLearning/internal/ui/layout"
	"github.com/mitchelldurbincs/MatchsticksReinforcementLearning/internal/ui/renderer"
)

// UI configuration functions
func ScreenWidth() int {
	return config.Get().UI.Window.Width
}

func ScreenHeight() int {
	return config.Get().UI.Window.Height
}

func AIDelay() int {
	return config.Get().UI.Game.AIDelay
}

// MatchGame is the ebiten front end of a match.Controller. It is also the
// controller's View, so every state change lands in remaining/status.
type MatchGame struct {
	controller     *match.Controller
	boardRenderer  *renderer.BoardRenderer
	buttonRenderer *renderer.ButtonRenderer
	inputHandler   *input.Handler
	defaultFont    font.Face
	logger         zerolog.Logger

	remaining int
	status    string

	// UI state
	message      string
	messageTimer int
}

// NewMatchGame builds the controller for env and attaches the window to it
func NewMatchGame(env *game.Environment, human game.Agent, logger zerolog.Logger) (*MatchGame, error) {
	g := &MatchGame{
		defaultFont:  basicfont.Face7x13,
		inputHandler: input.NewHandler(),
		logger:       logger.With().Str("component", "ui").Logger(),
	}
	g.boardRenderer = renderer.NewBoardRenderer(g.defaultFont)
	g.buttonRenderer = renderer.NewButtonRenderer(g.defaultFont)

	c, err := match.NewController(env, human, g, logger)
	if err != nil {
		return nil, err
	}
	g.controller = c
	g.announceOpponent()
	return g, nil
}

// Render implements match.View
func (g *MatchGame) Render(remaining int, status string) {
	g.remaining = remaining
	g.status = status
}

func (g *MatchGame) showMessage(msg string, duration int) {
	g.message = msg
	g.messageTimer = duration
}

func (g *MatchGame) announceOpponent() {
	if n := g.controller.LastOpponentMove(); n > 0 {
		g.showMessage(fmt.Sprintf("Opponent took %d", n), AIDelay()*3)
	}
}

func (g *MatchGame) buttons() []layout.Button {
	if g.controller.Over() {
		return []layout.Button{layout.PlayAgainButton(ScreenWidth(), ScreenHeight())}
	}
	return layout.TakeButtons(ScreenWidth(), ScreenHeight())
}

// Update proceeds the game state.
func (g *MatchGame) Update() error {
	g.inputHandler.SetButtons(g.buttons())
	g.inputHandler.Update()
	g.buttonRenderer.SetHover(g.inputHandler.Cursor())

	if g.messageTimer > 0 {
		g.messageTimer--
	}

	action, ok := g.inputHandler.TakeAction()
	if !ok {
		return nil
	}

	switch {
	case action.PlayAgain && g.controller.Over():
		if err := g.controller.Reset(); err != nil {
			return err
		}
		g.message = ""
		g.announceOpponent()

	case action.Take > 0 && g.controller.HumanTurn():
		err := g.controller.HandleHumanMove(action.Take)
		switch {
		case errors.Is(err, game.ErrInvalidMove):
			g.showMessage(fmt.Sprintf("Cannot take %d, only %d left", action.Take, g.remaining), 90)
		case err != nil:
			return err
		default:
			g.announceOpponent()
		}
	}
	return nil
}

// Draw renders the game screen.
func (g *MatchGame) Draw(screen *ebiten.Image) {
	screen.Fill(renderer.BackgroundColor)

	g.boardRenderer.DrawStatus(screen, g.status, layout.StatusY, renderer.StatusTextColor)
	g.boardRenderer.DrawStatus(screen, fmt.Sprintf("%d matches left", g.remaining), layout.StatusY+18, renderer.HintTextColor)
	g.boardRenderer.Draw(screen, g.remaining)

	g.buttonRenderer.Draw(screen, g.buttons(), func(b layout.Button) bool {
		return b.Take == 0 || b.Take <= g.remaining
	})

	if g.messageTimer > 0 && g.message != "" {
		g.boardRenderer.DrawStatus(screen, g.message, ScreenHeight()-10, renderer.HintTextColor)
	}
}

// Layout defines the Ebitengine screen size.
func (g *MatchGame) Layout(outsideWidth, outsideHeight int) (screenWidth, screenHeight int) {
	return ScreenWidth(), ScreenHeight()
}

// Controller exposes the underlying match for scoreboards
func (g *MatchGame) Controller() *match.Controller {
	return g.controller
}
