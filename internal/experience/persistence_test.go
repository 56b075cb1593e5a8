package experience

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEpisodeRecordLineRoundTrip(t *testing.T) {
	rec := createTestRecord(7)
	rec.StartedAt = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	rec.Duration = 1500 * time.Microsecond

	line, err := rec.MarshalJSONLine()
	require.NoError(t, err)
	assert.NotContains(t, string(line), "\n")

	got, err := ParseEpisodeRecord(line)
	require.NoError(t, err)
	assert.Equal(t, rec, got)

	_, err = ParseEpisodeRecord([]byte("{oops"))
	assert.Error(t, err)
}

func TestFileSinkRotation(t *testing.T) {
	dir := t.TempDir()
	sink, err := NewFileSink(dir, 1, zerolog.Nop())
	require.NoError(t, err)

	require.NoError(t, sink.Write([]EpisodeRecord{createTestRecord(1), createTestRecord(2), createTestRecord(3)}))
	require.NoError(t, sink.Close())

	// Every record after the first forces a new file
	stats := sink.Stats()
	assert.Equal(t, int64(3), stats.TotalWritten)
	assert.Equal(t, 3, stats.Files)

	files, err := filepath.Glob(filepath.Join(dir, "*.jsonl"))
	require.NoError(t, err)
	assert.Len(t, files, 3)

	assert.ErrorIs(t, sink.Write([]EpisodeRecord{createTestRecord(4)}), ErrSinkClosed)
	assert.NoError(t, sink.Close())
}

func TestReadFileSkipsBlankLines(t *testing.T) {
	line, err := createTestRecord(1).MarshalJSONLine()
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "episodes.jsonl")
	content := append(append([]byte{}, line...), '\n', '\n')
	require.NoError(t, os.WriteFile(path, content, 0644))

	records, err := ReadFile(path)
	require.NoError(t, err)
	assert.Len(t, records, 1)

	_, err = ReadFile(filepath.Join(t.TempDir(), "missing.jsonl"))
	assert.Error(t, err)
}
