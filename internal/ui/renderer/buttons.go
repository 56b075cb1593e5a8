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
	ButtonColor         = color.RGBA{70, 90, 140, 255}
	ButtonHoverColor    = color.RGBA{95, 120, 180, 255}
	ButtonDisabledColor = color.RGBA{80, 80, 80, 255}
	ButtonBorderColor   = color.RGBA{255, 255, 255, 64} // Semi-transparent white
	ButtonTextColor     = color.White
)

// ButtonRenderer draws clickable buttons with a hover highlight
type ButtonRenderer struct {
	defaultFont    font.Face
	hoverX, hoverY int
}

func NewButtonRenderer(f font.Face) *ButtonRenderer {
	return &ButtonRenderer{defaultFont: f}
}

func (r *ButtonRenderer) SetHover(x, y int) {
	r.hoverX = x
	r.hoverY = y
}

// Draw renders the buttons. enabled reports whether a button can be used
// right now; disabled ones are greyed out and never highlighted.
func (r *ButtonRenderer) Draw(screen *ebiten.Image, buttons []layout.Button, enabled func(layout.Button) bool) {
	for _, b := range buttons {
		fill := ButtonColor
		on := enabled == nil || enabled(b)
		switch {
		case !on:
			fill = ButtonDisabledColor
		case b.Rect.Contains(r.hoverX, r.hoverY):
			fill = ButtonHoverColor
		}

		x, y := float32(b.Rect.X), float32(b.Rect.Y)
		w, h := float32(b.Rect.W), float32(b.Rect.H)
		vector.DrawFilledRect(screen, x, y, w, h, fill, false)
		vector.StrokeRect(screen, x, y, w, h, 1, ButtonBorderColor, false)

		bounds := text.BoundString(r.defaultFont, b.Label)
		tx := b.Rect.X + (b.Rect.W-bounds.Dx())/2
		ty := b.Rect.Y + (b.Rect.H+bounds.Dy())/2
		text.Draw(screen, b.Label, r.defaultFont, tx, ty, ButtonTextColor)
	}
}
