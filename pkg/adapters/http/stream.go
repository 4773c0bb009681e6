package http

import (
	"log/slog"
	"sync"
)

// Event is one message pushed to stream subscribers.
type Event struct {
	// Name becomes the SSE "event:" field ("diff", "reload").
	Name string
	Data string
}

// StreamManager handles active SSE and WebSocket subscribers.
// Subscribers registered under the empty session id receive global events only.
type StreamManager struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan<- Event]struct{} // SessionID -> Set of Channels
	logger      *slog.Logger
}

func NewStreamManager(logger *slog.Logger) *StreamManager {
	return &StreamManager{
		subscribers: make(map[string]map[chan<- Event]struct{}),
		logger:      logger,
	}
}

// Subscribe registers a subscriber and returns its channel and an
// unsubscribe func that closes it.
func (sm *StreamManager) Subscribe(sessionID string) (<-chan Event, func()) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	ch := make(chan Event, 10)
	if _, ok := sm.subscribers[sessionID]; !ok {
		sm.subscribers[sessionID] = make(map[chan<- Event]struct{})
	}
	sm.subscribers[sessionID][ch] = struct{}{}

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			sm.mu.Lock()
			defer sm.mu.Unlock()
			if subs, ok := sm.subscribers[sessionID]; ok {
				delete(subs, ch)
				if len(subs) == 0 {
					delete(sm.subscribers, sessionID)
				}
			}
			close(ch)
		})
	}
}

// Broadcast sends ev to the subscribers of one session.
func (sm *StreamManager) Broadcast(sessionID string, ev Event) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	sm.send(sessionID, sm.subscribers[sessionID], ev)
}

// BroadcastAll sends ev to every subscriber, global ones included.
func (sm *StreamManager) BroadcastAll(ev Event) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	for id, subs := range sm.subscribers {
		sm.send(id, subs, ev)
	}
}

func (sm *StreamManager) send(sessionID string, subs map[chan<- Event]struct{}, ev Event) {
	for ch := range subs {
		select {
		case ch <- ev:
		default:
			// Drop message if channel is full (slow client)
			sm.logger.Warn("stream client buffer full, dropping message", "session_id", sessionID, "event", ev.Name)
		}
	}
}

// Count returns the number of subscribers of a session.
func (sm *StreamManager) Count(sessionID string) int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return len(sm.subscribers[sessionID])
}
