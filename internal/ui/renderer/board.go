package renderer

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"golang.org/x/image/font"

	"github.com/mitchelldurbincs/MatchsticksReinforcementLearning/internal/ui/layout"
)

var (
	BackgroundColor = color.RGBA{50, 50, 50, 255}
	StickColor      = color.RGBA{232, 193, 112, 255}
	StickHeadColor  = color.RGBA{200, 50, 50, 255}
	StatusTextColor = color.White
	HintTextColor   = color.Gray{200}
)

const headHeight = 10

// BoardRenderer draws the pile and the status line
type BoardRenderer struct {
	defaultFont font.Face
}

// NewBoardRenderer returns a renderer ready to use.
func NewBoardRenderer(f font.Face) *BoardRenderer {
	return &BoardRenderer{defaultFont: f}
}

// Draw renders the remaining sticks on the supplied Ebiten screen.
func (br *BoardRenderer) Draw(screen *ebiten.Image, remaining int) {
	w := screen.Bounds().Dx()
	for _, r := range layout.Sticks(remaining, w) {
		x, y := float32(r.X), float32(r.Y)
		vector.DrawFilledRect(screen, x, y+headHeight, float32(r.W), float32(r.H-headHeight), StickColor, false)
		vector.DrawFilledRect(screen, x, y, float32(r.W), headHeight, StickHeadColor, false)
	}
}

// DrawStatus centers a line of text at height y
func (br *BoardRenderer) DrawStatus(screen *ebiten.Image, msg string, y int, clr color.Color) {
	b := text.BoundString(br.defaultFont, msg)
	x := (screen.Bounds().Dx() - b.Dx()) / 2
	text.Draw(screen, msg, br.defaultFont, x, y, clr)
}
