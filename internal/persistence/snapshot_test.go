package persistence

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mitchelldurbincs/MatchsticksReinforcementLearning/internal/agent"
)

func sampleSnapshot() agent.Snapshot {
	table := agent.NewValueTable()
	table.Set(1, -0.9375)
	table.Set(2, 0.5)
	table.Set(5, -0.123456789)
	return agent.Snapshot{ExplorationRate: 0.05, LearningRate: 0.1, Table: table}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	snap := sampleSnapshot()

	data, err := Encode(snap)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"WIN"`)
	assert.Contains(t, string(data), `"LOSE"`)
	assert.Contains(t, string(data), `"exploration_rate"`)

	got, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, snap.ExplorationRate, got.ExplorationRate)
	assert.Equal(t, snap.LearningRate, got.LearningRate)
	assert.True(t, snap.Table.Equal(got.Table))

	// A second round trip keeps the table intact
	again, err := Encode(got)
	require.NoError(t, err)
	twice, err := Decode(again)
	require.NoError(t, err)
	assert.True(t, snap.Table.Equal(twice.Table))
}

func TestDecodeHandWrittenDocument(t *testing.T) {
	doc := `{"exploration_rate": 0.2, "learning_rate": 0.5,
		"value_table": {"WIN": 1, "LOSE": -1, "3": 0.25}}`

	snap, err := Decode([]byte(doc))
	require.NoError(t, err)
	assert.Equal(t, 0.2, snap.ExplorationRate)
	assert.Equal(t, 0.25, snap.Table.Value(3))
	assert.Equal(t, []agent.State{agent.Lose, agent.Win, 3}, snap.Table.States())
}

func TestDecodeMalformed(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"not json", `{"exploration_rate": `},
		{"missing exploration rate", `{"learning_rate": 0.1, "value_table": {}}`},
		{"missing learning rate", `{"exploration_rate": 0.1, "value_table": {}}`},
		{"missing table", `{"exploration_rate": 0.1, "learning_rate": 0.1}`},
		{"rate is a string", `{"exploration_rate": "high", "learning_rate": 0.1, "value_table": {}}`},
		{"table is a list", `{"exploration_rate": 0.1, "learning_rate": 0.1, "value_table": [1, 2]}`},
		{"bad state key", `{"exploration_rate": 0.1, "learning_rate": 0.1, "value_table": {"seven": 1}}`},
		{"value not a number", `{"exploration_rate": 0.1, "learning_rate": 0.1, "value_table": {"3": true}}`},
		{"rate out of range", `{"exploration_rate": 2, "learning_rate": 0.1, "value_table": {"WIN": 1, "LOSE": -1}}`},
		{"missing WIN and LOSE", `{"exploration_rate": 0.1, "learning_rate": 0.5, "value_table": {"3": 0.25}}`},
		{"missing LOSE", `{"exploration_rate": 0.1, "learning_rate": 0.5, "value_table": {"WIN": 1, "3": 0.25}}`},
		{"WIN is not 1", `{"exploration_rate": 0.1, "learning_rate": 0.5, "value_table": {"WIN": 7, "LOSE": -1}}`},
		{"LOSE is not -1", `{"exploration_rate": 0.1, "learning_rate": 0.5, "value_table": {"WIN": 1, "LOSE": 0.5}}`},
		{"padded state key", `{"exploration_rate": 0.1, "learning_rate": 0.5, "value_table": {"WIN": 1, "LOSE": -1, "03": 0.9}}`},
		{"duplicate state spelling", `{"exploration_rate": 0.1, "learning_rate": 0.5, "value_table": {"WIN": 1, "LOSE": -1, "3": 0.25, "+3": 0.9}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode([]byte(tt.doc))
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrMalformedSnapshot)
		})
	}
}

func TestSaveAndLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "table.json")
	snap := sampleSnapshot()

	require.NoError(t, SaveFile(path, snap))
	got, err := LoadFile(path)
	require.NoError(t, err)
	assert.True(t, snap.Table.Equal(got.Table))

	// No temp files are left behind
	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrMalformedSnapshot)
}

func TestImportIntoFreshAgent(t *testing.T) {
	src := agent.NewLearning("src", nil, agent.WithExplorationRate(0.3))
	src.Table().Set(4, 0.75)

	data, err := Encode(src.ExportState())
	require.NoError(t, err)
	snap, err := Decode(data)
	require.NoError(t, err)

	dst := agent.NewLearning("dst", nil)
	require.NoError(t, dst.ImportState(snap))
	assert.True(t, src.Table().Equal(dst.Table()))
	assert.Equal(t, src.ExplorationRate(), dst.ExplorationRate())
	assert.Equal(t, src.LearningRate(), dst.LearningRate())
}

func TestWatchReloadsSnapshot(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "table.json")
	require.NoError(t, SaveFile(path, sampleSnapshot()))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	loaded := make(chan agent.Snapshot, 8)
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, path, zerolog.Nop(), func(s agent.Snapshot) { loaded <- s })
	}()

	updated := sampleSnapshot()
	updated.Table.Set(9, 0.9)

	// The watcher may not be registered yet; keep rewriting until it fires
	deadline := time.After(5 * time.Second)
	for {
		require.NoError(t, SaveFile(path, updated))
		select {
		case s := <-loaded:
			assert.Equal(t, 0.9, s.Table.Value(9))
			cancel()
			assert.NoError(t, <-done)
			return
		case <-time.After(100 * time.Millisecond):
		case <-deadline:
			t.Fatal("snapshot change was not observed")
		}
	}
}
