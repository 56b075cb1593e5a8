package experience

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// ErrSinkClosed is returned when writing to a closed sink
var ErrSinkClosed = errors.New("episode sink is closed")

// Sink receives batches of finished episodes
type Sink interface {
	Write(records []EpisodeRecord) error
	Close() error
}

// SinkStats contains statistics about sink writes
type SinkStats struct {
	TotalWritten  int64
	BytesWritten  int64
	WriteErrors   int64
	Files         int
	LastWriteTime time.Time
}

// FileSink writes episodes as JSON lines, rotating to a new file once
// MaxFileSize is reached.
type FileSink struct {
	dir         string
	maxFileSize int64
	logger      zerolog.Logger

	mu          sync.Mutex
	stats       SinkStats
	currentFile *os.File
	currentSize int64
	fileIndex   int
}

// NewFileSink creates dir if needed and opens the first file. maxFileSize
// of 0 disables rotation.
func NewFileSink(dir string, maxFileSize int64, logger zerolog.Logger) (*FileSink, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create episode directory: %w", err)
	}

	fs := &FileSink{
		dir:         dir,
		maxFileSize: maxFileSize,
		logger:      logger.With().Str("component", "episode_sink").Logger(),
	}
	if err := fs.rotateFile(); err != nil {
		return nil, err
	}
	return fs, nil
}

// Write appends the records and syncs the file
func (fs *FileSink) Write(records []EpisodeRecord) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	if fs.currentFile == nil {
		return ErrSinkClosed
	}

	for _, rec := range records {
		if fs.maxFileSize > 0 && fs.currentSize >= fs.maxFileSize {
			if err := fs.rotateFile(); err != nil {
				fs.stats.WriteErrors++
				return fmt.Errorf("failed to rotate file: %w", err)
			}
		}

		data, err := rec.MarshalJSONLine()
		if err != nil {
			fs.stats.WriteErrors++
			return err
		}

		n, err := fs.currentFile.Write(append(data, '\n'))
		if err != nil {
			fs.stats.WriteErrors++
			return fmt.Errorf("failed to write episode: %w", err)
		}

		fs.currentSize += int64(n)
		fs.stats.TotalWritten++
		fs.stats.BytesWritten += int64(n)
	}

	if err := fs.currentFile.Sync(); err != nil {
		fs.logger.Warn().Err(err).Msg("Failed to sync file")
	}
	fs.stats.LastWriteTime = time.Now()

	fs.logger.Debug().
		Int("batch_size", len(records)).
		Int64("file_size", fs.currentSize).
		Msg("Wrote episode batch")
	return nil
}

// rotateFile closes the current file and opens a new one
func (fs *FileSink) rotateFile() error {
	if fs.currentFile != nil {
		if err := fs.currentFile.Close(); err != nil {
			fs.logger.Warn().Err(err).Msg("Failed to close previous file")
		}
	}

	timestamp := time.Now().Format("20060102_150405")
	var filename string
	for {
		filename = filepath.Join(fs.dir, fmt.Sprintf("episodes_%s_%d.jsonl", timestamp, fs.fileIndex))
		fs.fileIndex++
		if _, err := os.Stat(filename); os.IsNotExist(err) {
			break
		}
	}

	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}

	fs.currentFile = file
	fs.currentSize = 0
	fs.stats.Files++

	fs.logger.Info().Str("filename", filename).Msg("Opened episode file")
	return nil
}

// Close closes the current file
func (fs *FileSink) Close() error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	if fs.currentFile == nil {
		return nil
	}
	err := fs.currentFile.Close()
	fs.currentFile = nil
	return err
}

func (fs *FileSink) Stats() SinkStats {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return fs.stats
}

// ReadFile loads every episode stored in a JSON lines file
func ReadFile(path string) ([]EpisodeRecord, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var records []EpisodeRecord
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		rec, err := ParseEpisodeRecord(line)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading file: %w", err)
	}
	return records, nil
}
