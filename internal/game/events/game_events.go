package events

import (
	"time"
)

// Event type constants
const (
	TypeEpisodeStarted   = "episode.started"
	TypeEpisodeEnded     = "episode.ended"
	TypeMoveApplied      = "move.applied"
	TypeMoveRejected     = "move.rejected"
	TypeAgentTrained     = "agent.trained"
	TypeScheduleAdvanced = "schedule.advanced"
)

// EpisodeStartedEvent is published when the environment is reset
type EpisodeStartedEvent struct {
	BaseEvent
	Episode    int    `json:"episode"`
	Pile       int    `json:"pile"`
	FirstAgent string `json:"first_agent"`
}

// NewEpisodeStartedEvent creates a new EpisodeStartedEvent
func NewEpisodeStartedEvent(episodeID string, episode, pile int, firstAgent string) *EpisodeStartedEvent {
	return &EpisodeStartedEvent{
		BaseEvent:  newBase(TypeEpisodeStarted, episodeID),
		Episode:    episode,
		Pile:       pile,
		FirstAgent: firstAgent,
	}
}

// EpisodeEndedEvent is published when the last stick is taken
type EpisodeEndedEvent struct {
	BaseEvent
	Episode  int           `json:"episode"`
	Winner   string        `json:"winner"`
	Loser    string        `json:"loser"`
	Moves    int           `json:"moves"`
	Duration time.Duration `json:"duration"`
}

// NewEpisodeEndedEvent creates a new EpisodeEndedEvent
func NewEpisodeEndedEvent(episodeID string, episode int, winner, loser string, moves int, duration time.Duration) *EpisodeEndedEvent {
	return &EpisodeEndedEvent{
		BaseEvent: newBase(TypeEpisodeEnded, episodeID),
		Episode:   episode,
		Winner:    winner,
		Loser:     loser,
		Moves:     moves,
		Duration:  duration,
	}
}

// MoveAppliedEvent is published after a legal move changed the pile
type MoveAppliedEvent struct {
	BaseEvent
	Agent     string `json:"agent"`
	Taken     int    `json:"taken"`
	Remaining int    `json:"remaining"`
}

// NewMoveAppliedEvent creates a new MoveAppliedEvent
func NewMoveAppliedEvent(episodeID, agent string, taken, remaining int) *MoveAppliedEvent {
	return &MoveAppliedEvent{
		BaseEvent: newBase(TypeMoveApplied, episodeID),
		Agent:     agent,
		Taken:     taken,
		Remaining: remaining,
	}
}

// MoveRejectedEvent is published when the environment refuses a move
type MoveRejectedEvent struct {
	BaseEvent
	Agent  string `json:"agent"`
	Taken  int    `json:"taken"`
	Pile   int    `json:"pile"`
	Reason string `json:"reason"`
}

// NewMoveRejectedEvent creates a new MoveRejectedEvent
func NewMoveRejectedEvent(episodeID, agent string, taken, pile int, reason string) *MoveRejectedEvent {
	return &MoveRejectedEvent{
		BaseEvent: newBase(TypeMoveRejected, episodeID),
		Agent:     agent,
		Taken:     taken,
		Pile:      pile,
		Reason:    reason,
	}
}

// AgentTrainedEvent is published after a learner consumed its trajectory
type AgentTrainedEvent struct {
	BaseEvent
	Agent   string `json:"agent"`
	Updates int    `json:"updates"`
}

// NewAgentTrainedEvent creates a new AgentTrainedEvent
func NewAgentTrainedEvent(episodeID, agent string, updates int) *AgentTrainedEvent {
	return &AgentTrainedEvent{
		BaseEvent: newBase(TypeAgentTrained, episodeID),
		Agent:     agent,
		Updates:   updates,
	}
}

// ScheduleAdvancedEvent is published when the exploration rate decays
type ScheduleAdvancedEvent struct {
	BaseEvent
	Agent           string  `json:"agent"`
	Episode         int     `json:"episode"`
	ExplorationRate float64 `json:"exploration_rate"`
}

// NewScheduleAdvancedEvent creates a new ScheduleAdvancedEvent
func NewScheduleAdvancedEvent(episodeID, agent string, episode int, rate float64) *ScheduleAdvancedEvent {
	return &ScheduleAdvancedEvent{
		BaseEvent:       newBase(TypeScheduleAdvanced, episodeID),
		Agent:           agent,
		Episode:         episode,
		ExplorationRate: rate,
	}
}
