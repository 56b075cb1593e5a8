package subscribers

import (
	"encoding/json"

	"github.com/mitchelldurbincs/MatchsticksReinforcementLearning/internal/game/events"
	"github.com/rs/zerolog"
)

// LoggerSubscriber logs events to structured logs
type LoggerSubscriber struct {
	id              string
	logger          zerolog.Logger
	logLevel        zerolog.Level
	eventTypeFilter map[string]bool // If non-nil, only log these event types
	devMode         bool            // If true, log full event details
}

// NewLoggerSubscriber creates a new logger subscriber
func NewLoggerSubscriber(id string, logger zerolog.Logger, logLevel zerolog.Level) *LoggerSubscriber {
	return &LoggerSubscriber{
		id:       id,
		logger:   logger.With().Str("subscriber", "event_logger").Logger(),
		logLevel: logLevel,
	}
}

// ID returns the subscriber's unique identifier
func (ls *LoggerSubscriber) ID() string {
	return ls.id
}

// SetEventFilter sets which event types to log (nil means log all)
func (ls *LoggerSubscriber) SetEventFilter(eventTypes []string) {
	if len(eventTypes) == 0 {
		ls.eventTypeFilter = nil
		return
	}

	ls.eventTypeFilter = make(map[string]bool)
	for _, eventType := range eventTypes {
		ls.eventTypeFilter[eventType] = true
	}
}

// SetDevMode enables or disables development mode logging
func (ls *LoggerSubscriber) SetDevMode(enabled bool) {
	ls.devMode = enabled
}

// InterestedIn returns true if the subscriber wants to receive this event type
func (ls *LoggerSubscriber) InterestedIn(eventType string) bool {
	if ls.eventTypeFilter == nil {
		return true
	}
	return ls.eventTypeFilter[eventType]
}

// HandleEvent processes an event by logging it
func (ls *LoggerSubscriber) HandleEvent(event events.Event) {
	eventLogger := ls.logger.With().
		Str("event_type", event.Type()).
		Str("episode_id", event.EpisodeID()).
		Logger()

	var logEvent *zerolog.Event
	switch ls.logLevel {
	case zerolog.DebugLevel:
		logEvent = eventLogger.Debug()
	case zerolog.WarnLevel:
		logEvent = eventLogger.Warn()
	case zerolog.ErrorLevel:
		logEvent = eventLogger.Error()
	default:
		logEvent = eventLogger.Info()
	}

	switch e := event.(type) {
	case *events.EpisodeStartedEvent:
		logEvent.
			Int("episode", e.Episode).
			Int("pile", e.Pile).
			Str("first_agent", e.FirstAgent)

	case *events.EpisodeEndedEvent:
		logEvent.
			Int("episode", e.Episode).
			Str("winner", e.Winner).
			Str("loser", e.Loser).
			Int("moves", e.Moves).
			Dur("duration", e.Duration)

	case *events.MoveAppliedEvent:
		logEvent.
			Str("agent", e.Agent).
			Int("taken", e.Taken).
			Int("remaining", e.Remaining)

	case *events.MoveRejectedEvent:
		logEvent.
			Str("agent", e.Agent).
			Int("taken", e.Taken).
			Int("pile", e.Pile).
			Str("reason", e.Reason)

	case *events.AgentTrainedEvent:
		logEvent.
			Str("agent", e.Agent).
			Int("updates", e.Updates)

	case *events.ScheduleAdvancedEvent:
		logEvent.
			Str("agent", e.Agent).
			Int("episode", e.Episode).
			Float64("exploration_rate", e.ExplorationRate)
	}

	if ls.devMode {
		if jsonData, err := json.Marshal(event); err == nil {
			logEvent.RawJSON("event_data", jsonData)
		}
	}

	logEvent.Msg("Game event")
}
