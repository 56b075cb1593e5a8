package events

import (
	"sync"

	"github.com/rs/zerolog"
)

var _ Bus = (*EventBus)(nil)

// EventBus delivers events synchronously, in subscription order, on the
// goroutine that publishes them. An environment publishes every move, so a
// subscriber sees an episode's events in the order they happened.
type EventBus struct {
	mu           sync.RWMutex
	subscribers  []Subscriber
	funcHandlers map[string][]EventHandler
	logger       zerolog.Logger
}

// NewEventBus creates a bus that logs through logger
func NewEventBus(logger zerolog.Logger) *EventBus {
	return &EventBus{
		funcHandlers: make(map[string][]EventHandler),
		logger:       logger.With().Str("component", "event_bus").Logger(),
	}
}

// Subscribe adds a subscriber. A subscriber with the same ID replaces the
// earlier one in place.
func (eb *EventBus) Subscribe(subscriber Subscriber) {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	for i, s := range eb.subscribers {
		if s.ID() == subscriber.ID() {
			eb.subscribers[i] = subscriber
			return
		}
	}
	eb.subscribers = append(eb.subscribers, subscriber)
	eb.logger.Debug().Str("subscriber_id", subscriber.ID()).Msg("Subscriber added to event bus")
}

// SubscribeFunc runs handler for every event of eventType
func (eb *EventBus) SubscribeFunc(eventType string, handler EventHandler) {
	eb.mu.Lock()
	defer eb.mu.Unlock()
	eb.funcHandlers[eventType] = append(eb.funcHandlers[eventType], handler)
}

// Publish hands event to every interested subscriber, then to the function
// handlers for its type. A panicking receiver is logged and skipped.
func (eb *EventBus) Publish(event Event) {
	eb.mu.RLock()
	defer eb.mu.RUnlock()

	eventType := event.Type()
	for _, subscriber := range eb.subscribers {
		if subscriber.InterestedIn(eventType) {
			eb.deliver(event, subscriber.ID(), subscriber.HandleEvent)
		}
	}
	for _, handler := range eb.funcHandlers[eventType] {
		eb.deliver(event, "func", handler)
	}
}

func (eb *EventBus) deliver(event Event, receiver string, handle EventHandler) {
	defer func() {
		if r := recover(); r != nil {
			eb.logger.Error().
				Str("receiver", receiver).
				Str("event_type", event.Type()).
				Str("episode_id", event.EpisodeID()).
				Interface("panic", r).
				Msg("Event receiver panicked")
		}
	}()
	handle(event)
}
