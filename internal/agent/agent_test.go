package agent

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mitchelldurbincs/MatchsticksReinforcementLearning/internal/testutil"
)

func TestTallyString(t *testing.T) {
	r := NewRandom("Bob", nil)
	r.OnWin()
	r.OnWin()
	r.OnLose()

	assert.Equal(t, 2, r.Wins())
	assert.Equal(t, 1, r.Losses())
	assert.Equal(t, 3, r.Games())
	assert.Equal(t, "Bob | Wins: 2 | Loses: 1 | Games: 3", r.String())
}

func TestRandomChoosesLegalMoves(t *testing.T) {
	r := NewRandom("rnd", testutil.NewTestRNG(8))
	for pile := 1; pile <= 6; pile++ {
		for i := 0; i < 50; i++ {
			take, err := r.ChooseMove(pile)
			require.NoError(t, err)
			assert.GreaterOrEqual(t, take, 1)
			assert.LessOrEqual(t, take, 3)
			assert.LessOrEqual(t, take, pile)
		}
	}

	_, err := r.ChooseMove(0)
	assert.Error(t, err)
}

func TestInteractiveReprompts(t *testing.T) {
	in := strings.NewReader("abc\n7\n 2 \n")
	var out bytes.Buffer
	h := NewInteractive("Alice", in, &out)

	take, err := h.ChooseMove(10)
	require.NoError(t, err)
	assert.Equal(t, 2, take)

	text := out.String()
	assert.Equal(t, 3, strings.Count(text, promptText))
	assert.Contains(t, text, notANumberText)
	assert.Contains(t, text, outOfRangeText)
}

func TestInteractiveDoesNotCheckPile(t *testing.T) {
	h := NewInteractive("Alice", strings.NewReader("3"), nil)
	take, err := h.ChooseMove(1)
	require.NoError(t, err)
	assert.Equal(t, 3, take)
}

func TestInteractiveNoInput(t *testing.T) {
	_, err := NewInteractive("Alice", nil, nil).ChooseMove(5)
	assert.ErrorIs(t, err, ErrNoInput)

	h := NewInteractive("Alice", strings.NewReader("x\n"), nil)
	_, err = h.ChooseMove(5)
	assert.ErrorIs(t, err, ErrNoInput)
}

func TestStateParsing(t *testing.T) {
	tests := []struct {
		key   string
		state State
	}{
		{"WIN", Win},
		{"LOSE", Lose},
		{"0", 0},
		{"12", 12},
	}
	for _, tt := range tests {
		s, err := ParseState(tt.key)
		require.NoError(t, err)
		assert.Equal(t, tt.state, s)
		assert.Equal(t, tt.key, s.String())
	}

	for _, bad := range []string{"", "win", "-3", "1.5", "03", "+3", " 3", "00"} {
		_, err := ParseState(bad)
		assert.ErrorIs(t, err, ErrInvalidState, bad)
	}
}

func TestValueTableStatesSorted(t *testing.T) {
	table := NewValueTable()
	table.Set(9, 0.1)
	table.Set(2, 0.2)
	table.Set(5, 0.3)

	assert.Equal(t, []State{Lose, Win, 2, 5, 9}, table.States())
	assert.Equal(t, 0.0, table.Value(100))

	clone := table.Clone()
	assert.True(t, clone.Equal(table))
	clone.Set(2, 0)
	assert.False(t, clone.Equal(table))
}
