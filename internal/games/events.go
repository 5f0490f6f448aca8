// internal/games/events.go

package games

import (
	"sync"
	"time"

	"github.com/imadgeboyega/kiekky-couples/internal/common/logger"
	"github.com/imadgeboyega/kiekky-couples/internal/matches"
)

// CompletedEvent is published once when a session produces its result
type CompletedEvent struct {
	SessionID   string
	GameType    GameType
	Pair        matches.Pair
	CompletedAt time.Time
}

// EventBus fans completion events out to in-process subscribers
type EventBus struct {
	mu       sync.RWMutex
	handlers []func(CompletedEvent)
	log      *logger.Logger
}

func NewEventBus(log *logger.Logger) *EventBus {
	return &EventBus{log: log.With("component", "game_events")}
}

// Subscribe registers h for every future event. Handlers run on the publisher's goroutine.
func (b *EventBus) Subscribe(h func(CompletedEvent)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers = append(b.handlers, h)
}

func (b *EventBus) Publish(e CompletedEvent) {
	b.mu.RLock()
	handlers := append([]func(CompletedEvent){}, b.handlers...)
	b.mu.RUnlock()

	for _, h := range handlers {
		b.dispatch(h, e)
	}
}

func (b *EventBus) dispatch(h func(CompletedEvent), e CompletedEvent) {
	defer func() {
		if r := recover(); r != nil {
			b.log.Error("completion handler panicked", "session_id", e.SessionID, "panic", r)
		}
	}()
	h(e)
}
