package experience

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/mitchelldurbincs/MatchsticksReinforcementLearning/internal/game/events"
)

// Recorder is an event subscriber that assembles finished episodes from
// the environment's events. Records go into a Buffer; when a Sink is set
// the buffer is flushed to it whenever it fills up.
type Recorder struct {
	id     string
	buffer *Buffer
	sink   Sink // optional
	logger zerolog.Logger

	mu      sync.Mutex
	pending map[string]*EpisodeRecord
}

// NewRecorder creates a recorder. sink may be nil.
func NewRecorder(id string, buffer *Buffer, sink Sink, logger zerolog.Logger) *Recorder {
	return &Recorder{
		id:      id,
		buffer:  buffer,
		sink:    sink,
		logger:  logger.With().Str("component", "episode_recorder").Logger(),
		pending: make(map[string]*EpisodeRecord),
	}
}

func (r *Recorder) ID() string { return r.id }

func (r *Recorder) InterestedIn(eventType string) bool {
	switch eventType {
	case events.TypeEpisodeStarted, events.TypeMoveApplied, events.TypeEpisodeEnded:
		return true
	}
	return false
}

func (r *Recorder) HandleEvent(event events.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch e := event.(type) {
	case *events.EpisodeStartedEvent:
		r.pending[e.EpisodeID()] = &EpisodeRecord{
			EpisodeID:  e.EpisodeID(),
			Episode:    e.Episode,
			Pile:       e.Pile,
			FirstAgent: e.FirstAgent,
			StartedAt:  e.Timestamp(),
		}

	case *events.MoveAppliedEvent:
		rec, ok := r.pending[e.EpisodeID()]
		if !ok {
			return
		}
		rec.Moves = append(rec.Moves, MoveRecord{Agent: e.Agent, Taken: e.Taken, Remaining: e.Remaining})

	case *events.EpisodeEndedEvent:
		rec, ok := r.pending[e.EpisodeID()]
		if !ok {
			r.logger.Warn().Str("episode_id", e.EpisodeID()).Msg("Episode ended without a start event")
			return
		}
		delete(r.pending, e.EpisodeID())
		rec.Winner = e.Winner
		rec.Loser = e.Loser
		rec.Duration = e.Duration

		if err := r.buffer.Add(*rec); err != nil {
			r.logger.Error().Err(err).Msg("Failed to buffer episode")
			return
		}
		if r.sink != nil && r.buffer.IsFull() {
			if err := r.flushLocked(); err != nil {
				r.logger.Warn().Err(err).Int("buffered", r.buffer.Size()).Msg("Episodes kept in buffer after failed flush")
			}
		}
	}
}

// Flush writes every buffered episode to the sink. Without a sink it does
// nothing.
func (r *Recorder) Flush() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.flushLocked()
}

func (r *Recorder) flushLocked() error {
	if r.sink == nil {
		return nil
	}
	records := r.buffer.Drain()
	if len(records) == 0 {
		return nil
	}
	if err := r.sink.Write(records); err != nil {
		r.logger.Error().Err(err).Int("episodes", len(records)).Msg("Failed to flush episodes")
		// Keep them for the next flush
		for _, rec := range records {
			if addErr := r.buffer.Add(rec); addErr != nil {
				r.logger.Error().Err(addErr).Msg("Failed to requeue episode")
				break
			}
		}
		return err
	}
	return nil
}

// Close flushes what is left and closes the sink
func (r *Recorder) Close() error {
	if err := r.Flush(); err != nil {
		return err
	}
	if err := r.buffer.Close(); err != nil {
		return err
	}
	if r.sink != nil {
		return r.sink.Close()
	}
	return nil
}

// Pending reports how many episodes have started but not ended
func (r *Recorder) Pending() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.pending)
}
