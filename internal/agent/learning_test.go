package agent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mitchelldurbincs/MatchsticksReinforcementLearning/internal/game"
	"github.com/mitchelldurbincs/MatchsticksReinforcementLearning/internal/testutil"
)

func seededTable(values map[State]float64) *ValueTable {
	t := NewValueTable()
	for s, v := range values {
		t.Set(s, v)
	}
	return t
}

func TestGreedyPicksLowestSuccessorValue(t *testing.T) {
	table := seededTable(map[State]float64{1: -1, 2: 1, 3: 1})
	l := NewLearning("ai", testutil.NewTestRNG(1), WithExplorationRate(0), WithValueTable(table))

	for i := 0; i < 20; i++ {
		take, err := l.ChooseMove(4)
		require.NoError(t, err)
		assert.Equal(t, 3, take)
	}
}

func TestGreedyTieBreaksOnSmallestTake(t *testing.T) {
	l := NewLearning("ai", testutil.NewTestRNG(1), WithExplorationRate(0))

	// Empty table: every successor is worth 0
	assert.Equal(t, 1, l.Greedy(10))

	l.Table().Set(8, -0.5)
	l.Table().Set(7, -0.5)
	assert.Equal(t, 2, l.Greedy(10))

	assert.Equal(t, 0, l.Greedy(0))
}

func TestExplorationStaysLegal(t *testing.T) {
	l := NewLearning("ai", testutil.NewTestRNG(3), WithExplorationRate(1))
	seen := map[int]bool{}
	for i := 0; i < 300; i++ {
		take, err := l.ChooseMove(2)
		require.NoError(t, err)
		require.GreaterOrEqual(t, take, 1)
		require.LessOrEqual(t, take, 2)
		seen[take] = true
	}
	assert.Len(t, seen, 2)

	_, err := l.ChooseMove(0)
	assert.ErrorIs(t, err, game.ErrGameOver)
}

func TestTrajectoryRecording(t *testing.T) {
	l := NewLearning("ai", testutil.NewTestRNG(1), WithExplorationRate(0))

	_, _ = l.ChooseMove(9)
	assert.Empty(t, l.Trajectory())

	_, _ = l.ChooseMove(5)
	_, _ = l.ChooseMove(2)
	l.OnLose()

	// The last observed pile (2) is only carried by the terminal step
	assert.Equal(t, []Step{
		{Delta: 4, State: 9},
		{Delta: 3, State: 5},
		{Delta: 2, State: Lose},
	}, l.Trajectory())
	assert.Equal(t, 1, l.Losses())

	// A new episode starts without a prior pile
	l.Train()
	_, _ = l.ChooseMove(7)
	assert.Empty(t, l.Trajectory())
}

func TestTrainHandComputed(t *testing.T) {
	table := seededTable(map[State]float64{3: 0.5, 5: 0})
	l := NewLearning("ai", testutil.NewTestRNG(1),
		WithExplorationRate(0),
		WithLearningRate(0.5),
		WithValueTable(table),
	)

	_, _ = l.ChooseMove(5)
	_, _ = l.ChooseMove(3)
	_, _ = l.ChooseMove(1)
	l.OnWin()

	var states []State
	for _, s := range l.Trajectory() {
		states = append(states, s.State)
	}
	require.Equal(t, []State{5, 3, Win}, states)

	updates := l.Train()
	assert.Equal(t, 2, updates)

	// 3: 0.5 + 0.5*(1 - 0.5) = 0.75
	// 5: 0 + 0.5*(0.75 - 0) = 0.375
	assert.InDelta(t, 0.75, l.Table().Value(3), 1e-12)
	assert.InDelta(t, 0.375, l.Table().Value(5), 1e-12)

	// Anchors and unvisited states are untouched
	assert.Equal(t, 1.0, l.Table().Value(Win))
	assert.Equal(t, -1.0, l.Table().Value(Lose))
	_, ok := l.Table().Lookup(1)
	assert.False(t, ok)

	assert.Empty(t, l.Trajectory())
}

func TestTrainAlwaysClearsTrajectory(t *testing.T) {
	l := NewLearning("ai", testutil.NewTestRNG(5))

	assert.Equal(t, 0, l.Train())
	assert.Empty(t, l.Trajectory())

	for length := 1; length <= 6; length++ {
		pile := 3 * length
		for i := 0; i < length; i++ {
			_, err := l.ChooseMove(pile)
			require.NoError(t, err)
			pile -= 2
		}
		l.OnWin()
		l.Train()
		assert.Empty(t, l.Trajectory(), "length %d", length)
	}
}

func TestTrainNeverWritesAnchors(t *testing.T) {
	l := NewLearning("ai", testutil.NewTestRNG(9), WithLearningRate(1))
	for i := 0; i < 50; i++ {
		_, _ = l.ChooseMove(4)
		_, _ = l.ChooseMove(2)
		if i%2 == 0 {
			l.OnWin()
		} else {
			l.OnLose()
		}
		l.Train()
	}
	assert.Equal(t, 1.0, l.Table().Value(Win))
	assert.Equal(t, -1.0, l.Table().Value(Lose))
}

func TestAdvanceScheduleRespectsFloor(t *testing.T) {
	l := NewLearning("ai", nil, WithExplorationRate(1), WithSchedule(0.5, 0.1))

	l.AdvanceSchedule()
	assert.InDelta(t, 0.5, l.ExplorationRate(), 1e-12)

	for i := 0; i < 1000; i++ {
		l.AdvanceSchedule()
		require.GreaterOrEqual(t, l.ExplorationRate(), 0.1)
	}
	assert.Equal(t, 0.1, l.ExplorationRate())
}

func TestExportImportRoundTrip(t *testing.T) {
	src := NewLearning("src", testutil.NewTestRNG(1), WithExplorationRate(0.3), WithLearningRate(0.2))
	src.Table().Set(4, -0.25)
	src.Table().Set(7, 0.125)

	snap := src.ExportState()
	dst := NewLearning("dst", testutil.NewTestRNG(2))
	require.NoError(t, dst.ImportState(snap))

	assert.True(t, src.Table().Equal(dst.Table()))
	assert.Equal(t, 0.3, dst.ExplorationRate())
	assert.Equal(t, 0.2, dst.LearningRate())

	// The import is a copy
	snap.Table.Set(4, 99)
	assert.Equal(t, -0.25, dst.Table().Value(4))
}

func TestImportRejectsInvalidSnapshot(t *testing.T) {
	l := NewLearning("ai", nil, WithExplorationRate(0.4))

	tests := []struct {
		name string
		snap Snapshot
	}{
		{"exploration above one", Snapshot{ExplorationRate: 1.5, LearningRate: 0.1, Table: NewValueTable()}},
		{"zero learning rate", Snapshot{ExplorationRate: 0.5, LearningRate: 0, Table: NewValueTable()}},
		{"missing table", Snapshot{ExplorationRate: 0.5, LearningRate: 0.1}},
		{"missing anchors", Snapshot{ExplorationRate: 0.5, LearningRate: 0.1, Table: NewEmptyValueTable()}},
		{"moved win anchor", Snapshot{ExplorationRate: 0.5, LearningRate: 0.1, Table: withValue(NewValueTable(), Win, 7)}},
		{"moved lose anchor", Snapshot{ExplorationRate: 0.5, LearningRate: 0.1, Table: withValue(NewValueTable(), Lose, 0)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := l.ImportState(tt.snap)
			assert.ErrorIs(t, err, ErrInvalidSnapshot)
			assert.Equal(t, 0.4, l.ExplorationRate())
		})
	}
}

func TestPolicyIsFrozen(t *testing.T) {
	table := seededTable(map[State]float64{1: -1, 2: 1, 3: 1})
	l := NewLearning("ai", testutil.NewTestRNG(1), WithExplorationRate(1), WithValueTable(table))
	p := l.Policy()

	for i := 0; i < 10; i++ {
		take, err := p.ChooseMove(4)
		require.NoError(t, err)
		assert.Equal(t, 3, take)
	}
	assert.Empty(t, l.Trajectory())
	assert.Equal(t, "ai", p.Name())
}

func TestLearningAgentSatisfiesGameInterfaces(t *testing.T) {
	var a game.Agent = NewLearning("ai", nil)
	_, ok := a.(game.Learner)
	assert.True(t, ok)
	_, ok = a.(game.OutcomeObserver)
	assert.True(t, ok)

	var r game.Agent = NewRandom("rnd", nil)
	_, ok = r.(game.Learner)
	assert.False(t, ok)
	_, ok = r.(game.OutcomeObserver)
	assert.True(t, ok)
}

func withValue(t *ValueTable, s State, v float64) *ValueTable {
	t.Set(s, v)
	return t
}
