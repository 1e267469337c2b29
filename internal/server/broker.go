package server

import (
	"encoding/json"
	"sync"

	"github.com/Chiroru76/hokkaido-place-quiz/internal/quiz"
)

// Broker is an in-process pub/sub for SSE events, keyed by session ID.
type Broker struct {
	mu   sync.RWMutex
	subs map[string]map[chan []byte]struct{}
}

func NewBroker() *Broker {
	return &Broker{
		subs: make(map[string]map[chan []byte]struct{}),
	}
}

var _ quiz.Notifier = (*Broker)(nil)

// Subscribe returns a channel that receives JSON-encoded events for the given session.
func (b *Broker) Subscribe(sessionID string) chan []byte {
	ch := make(chan []byte, 16)
	b.mu.Lock()
	if b.subs[sessionID] == nil {
		b.subs[sessionID] = make(map[chan []byte]struct{})
	}
	b.subs[sessionID][ch] = struct{}{}
	b.mu.Unlock()
	return ch
}

// Unsubscribe removes a channel from the session's subscribers. It is a
// no-op once the session has completed.
func (b *Broker) Unsubscribe(sessionID string, ch chan []byte) {
	b.mu.Lock()
	delete(b.subs[sessionID], ch)
	if len(b.subs[sessionID]) == 0 {
		delete(b.subs, sessionID)
	}
	b.mu.Unlock()
}

// Publish sends an event to all subscribers of the given session. A
// completed event is the last one a session produces, so its subscribers
// are closed and dropped after it is delivered.
func (b *Broker) Publish(sessionID string, ev quiz.Event) {
	data, _ := json.Marshal(ev)

	if ev.Type == quiz.EventCompleted {
		b.mu.Lock()
		defer b.mu.Unlock()
		b.send(sessionID, data)
		for ch := range b.subs[sessionID] {
			close(ch)
		}
		delete(b.subs, sessionID)
		return
	}

	b.mu.RLock()
	defer b.mu.RUnlock()
	b.send(sessionID, data)
}

// send requires b.mu held.
func (b *Broker) send(sessionID string, data []byte) {
	for ch := range b.subs[sessionID] {
		select {
		case ch <- data:
		default:
			// Drop if subscriber is slow.
		}
	}
}
