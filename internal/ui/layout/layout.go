// Package layout computes where the matchstick window draws things. It has
// no ebiten dependency so it can be tested headless.
package layout

// Rect is an axis aligned rectangle in screen pixels
type Rect struct {
	X, Y, W, H int
}

// Contains reports whether the point lies inside r. The right and bottom
// edges are exclusive.
func (r Rect) Contains(x, y int) bool {
	return x >= r.X && x < r.X+r.W && y >= r.Y && y < r.Y+r.H
}

// Button is a clickable area. Take is the number of sticks it removes, or 0
// for the Play Again button.
type Button struct {
	Label string
	Take  int
	Rect  Rect
}

const (
	StatusY = 30

	sticksTop     = 60
	stickWidth    = 8
	stickHeight   = 110
	maxStickPitch = 22
	sideMargin    = 20

	buttonWidth       = 110
	buttonHeight      = 40
	buttonGap         = 20
	buttonsFromBottom = 70
)

// Sticks returns one rectangle per remaining stick, centered horizontally.
// The pitch shrinks when the pile is too wide for the window.
func Sticks(remaining, screenWidth int) []Rect {
	if remaining <= 0 {
		return nil
	}

	pitch := maxStickPitch
	if avail := screenWidth - 2*sideMargin; remaining*pitch > avail {
		pitch = avail / remaining
		if pitch < 2 {
			pitch = 2
		}
	}
	w := stickWidth
	if w > pitch-1 {
		w = pitch - 1
	}

	total := (remaining-1)*pitch + w
	left := (screenWidth - total) / 2

	rects := make([]Rect, remaining)
	for i := range rects {
		rects[i] = Rect{X: left + i*pitch, Y: sticksTop, W: w, H: stickHeight}
	}
	return rects
}

// TakeButtons lays out the Take 1/2/3 buttons in a centered row
func TakeButtons(screenWidth, screenHeight int) []Button {
	const n = 3
	total := n*buttonWidth + (n-1)*buttonGap
	left := (screenWidth - total) / 2
	y := screenHeight - buttonsFromBottom

	buttons := make([]Button, n)
	for i := range buttons {
		take := i + 1
		buttons[i] = Button{
			Label: "Take " + string(rune('0'+take)),
			Take:  take,
			Rect:  Rect{X: left + i*(buttonWidth+buttonGap), Y: y, W: buttonWidth, H: buttonHeight},
		}
	}
	return buttons
}

// PlayAgainButton is shown in place of the take buttons once a game ends
func PlayAgainButton(screenWidth, screenHeight int) Button {
	w := buttonWidth + 30
	return Button{
		Label: "Play Again",
		Rect:  Rect{X: (screenWidth - w) / 2, Y: screenHeight - buttonsFromBottom, W: w, H: buttonHeight},
	}
}

// Hit returns the first button containing the point
func Hit(buttons []Button, x, y int) (Button, bool) {
	for _, b := range buttons {
		if b.Rect.Contains(x, y) {
			return b, true
		}
	}
	return Button{}, false
}
