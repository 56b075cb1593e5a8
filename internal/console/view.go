package console

import (
	"fmt"
	"io"
	"strings"

	"github.com/muesli/termenv"
)

const stickGlyph = "|"

// View renders a match on a terminal
type View struct {
	out *termenv.Output

	stickColor  termenv.Color
	statusColor termenv.Color
	errorColor  termenv.Color
}

// NewView creates a view writing to w. The color profile is detected from
// w unless overridden with termenv.WithProfile.
func NewView(w io.Writer, opts ...termenv.OutputOption) *View {
	out := termenv.NewOutput(w, opts...)
	return &View{
		out:         out,
		stickColor:  out.Color("#e8c170"),
		statusColor: out.Color("#5fafff"),
		errorColor:  out.Color("#ff5f5f"),
	}
}

// Render draws the remaining sticks and the status line
func (v *View) Render(remaining int, status string) {
	sticks := strings.TrimSpace(strings.Repeat(stickGlyph+" ", remaining))
	fmt.Fprintf(v.out, "\nMatches remaining: %d\n", remaining)
	if remaining > 0 {
		fmt.Fprintln(v.out, v.out.String(sticks).Foreground(v.stickColor).Bold())
	}
	fmt.Fprintln(v.out, v.out.String(status).Foreground(v.statusColor))
}

// Message prints a plain line
func (v *View) Message(format string, args ...interface{}) {
	fmt.Fprintf(v.out, format+"\n", args...)
}

// Error prints err highlighted
func (v *View) Error(err error) {
	fmt.Fprintln(v.out, v.out.String(err.Error()).Foreground(v.errorColor))
}

// Scoreboard prints one line per player
func (v *View) Scoreboard(players ...fmt.Stringer) {
	fmt.Fprintln(v.out, v.out.String("Scores").Underline())
	for _, p := range players {
		fmt.Fprintln(v.out, p.String())
	}
}
