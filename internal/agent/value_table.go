package agent

import (
	"errors"
	"fmt"
	"strconv"

	"golang.org/x/exp/slices"
)

// State is a value table key: a pile size, or one of the two terminal
// anchors.
type State int

const (
	Win  State = -1
	Lose State = -2
)

var ErrInvalidState = errors.New("invalid state key")

// Terminal reports whether s is the Win or Lose anchor
func (s State) Terminal() bool {
	return s == Win || s == Lose
}

func (s State) String() string {
	switch s {
	case Win:
		return "WIN"
	case Lose:
		return "LOSE"
	default:
		return strconv.Itoa(int(s))
	}
}

// ParseState is the inverse of State.String
func ParseState(key string) (State, error) {
	switch key {
	case "WIN":
		return Win, nil
	case "LOSE":
		return Lose, nil
	}
	n, err := strconv.Atoi(key)
	if err != nil || n < 0 || State(n).String() != key {
		return 0, fmt.Errorf("%w: %q", ErrInvalidState, key)
	}
	return State(n), nil
}

// ValueTable maps states to the learned value of being left with that
// state. Unknown states are worth 0.
type ValueTable struct {
	values map[State]float64
}

// NewValueTable returns a table holding only the terminal anchors
func NewValueTable() *ValueTable {
	return &ValueTable{values: map[State]float64{
		Win:  1,
		Lose: -1,
	}}
}

// NewEmptyValueTable returns a table without the anchors, for decoders
// that must see exactly what a document holds
func NewEmptyValueTable() *ValueTable {
	return &ValueTable{values: make(map[State]float64)}
}

// Value returns the stored value for s, or 0 when s was never written
func (t *ValueTable) Value(s State) float64 {
	if v, ok := t.values[s]; ok {
		return v
	}
	return 0.0
}

func (t *ValueTable) Lookup(s State) (float64, bool) {
	v, ok := t.values[s]
	return v, ok
}

func (t *ValueTable) Set(s State, v float64) {
	t.values[s] = v
}

func (t *ValueTable) Len() int {
	return len(t.values)
}

// States returns every key in ascending order, so WIN and LOSE come first
func (t *ValueTable) States() []State {
	states := make([]State, 0, len(t.values))
	for s := range t.values {
		states = append(states, s)
	}
	slices.Sort(states)
	return states
}

// Clone returns a deep copy
func (t *ValueTable) Clone() *ValueTable {
	c := &ValueTable{values: make(map[State]float64, len(t.values))}
	for s, v := range t.values {
		c.values[s] = v
	}
	return c
}

// Equal reports whether both tables hold the same keys and values
func (t *ValueTable) Equal(o *ValueTable) bool {
	if len(t.values) != len(o.values) {
		return false
	}
	for s, v := range t.values {
		if ov, ok := o.values[s]; !ok || ov != v {
			return false
		}
	}
	return true
}
