package experience

import (
	"errors"
	"sync"

	"github.com/rs/zerolog"
)

// ErrBufferClosed is returned when operations are attempted on a closed buffer
var ErrBufferClosed = errors.New("episode buffer is closed")

// Buffer is a thread-safe circular buffer of finished episodes. When full
// the oldest record is dropped.
type Buffer struct {
	mu       sync.RWMutex
	buffer   []EpisodeRecord
	capacity int
	size     int
	head     int // Write position
	tail     int // Read position
	closed   bool

	totalAdded   int64
	totalDropped int64

	logger zerolog.Logger
}

// NewBuffer creates a new episode buffer with the specified capacity
func NewBuffer(capacity int, logger zerolog.Logger) *Buffer {
	if capacity <= 0 {
		capacity = 256
	}

	return &Buffer{
		buffer:   make([]EpisodeRecord, capacity),
		capacity: capacity,
		logger:   logger.With().Str("component", "episode_buffer").Logger(),
	}
}

// Add appends a record, dropping the oldest one if the buffer is full
func (b *Buffer) Add(rec EpisodeRecord) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return ErrBufferClosed
	}

	if b.size >= b.capacity {
		b.tail = (b.tail + 1) % b.capacity
		b.totalDropped++
		b.logger.Debug().
			Int64("dropped_total", b.totalDropped).
			Msg("Buffer full, dropping oldest episode")
	} else {
		b.size++
	}

	b.buffer[b.head] = rec
	b.head = (b.head + 1) % b.capacity
	b.totalAdded++
	return nil
}

// Drain removes and returns every record, oldest first
func (b *Buffer) Drain() []EpisodeRecord {
	b.mu.Lock()
	defer b.mu.Unlock()

	result := make([]EpisodeRecord, b.size)
	for i := 0; i < b.size; i++ {
		result[i] = b.buffer[b.tail]
		b.buffer[b.tail] = EpisodeRecord{}
		b.tail = (b.tail + 1) % b.capacity
	}
	b.size = 0
	return result
}

// Latest returns the n most recent records without removing them
func (b *Buffer) Latest(n int) []EpisodeRecord {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if n > b.size {
		n = b.size
	}

	result := make([]EpisodeRecord, n)
	for i := 0; i < n; i++ {
		idx := (b.head - n + i + b.capacity) % b.capacity
		result[i] = b.buffer[idx]
	}
	return result
}

func (b *Buffer) Size() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.size
}

func (b *Buffer) Capacity() int {
	return b.capacity
}

func (b *Buffer) IsFull() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.size >= b.capacity
}

// Close marks the buffer closed. Records still held can be drained.
func (b *Buffer) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}
	b.closed = true

	b.logger.Debug().
		Int64("total_added", b.totalAdded).
		Int64("total_dropped", b.totalDropped).
		Msg("Buffer closed")
	return nil
}

// Stats returns buffer statistics
func (b *Buffer) Stats() BufferStats {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return BufferStats{
		CurrentSize:  b.size,
		Capacity:     b.capacity,
		TotalAdded:   b.totalAdded,
		TotalDropped: b.totalDropped,
	}
}

// BufferStats contains buffer statistics
type BufferStats struct {
	CurrentSize  int
	Capacity     int
	TotalAdded   int64
	TotalDropped int64
}
