package agent

import "fmt"

// Tally counts finished games. Agents embed it to satisfy
// game.OutcomeObserver.
type Tally struct {
	wins   int
	losses int
}

func (t *Tally) OnWin()  { t.wins++ }
func (t *Tally) OnLose() { t.losses++ }

func (t *Tally) Wins() int   { return t.wins }
func (t *Tally) Losses() int { return t.losses }
func (t *Tally) Games() int  { return t.wins + t.losses }

// Summary formats the counters for the named agent
func (t *Tally) Summary(name string) string {
	return fmt.Sprintf("%s | Wins: %d | Loses: %d | Games: %d", name, t.wins, t.losses, t.Games())
}
