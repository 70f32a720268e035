package http

import (
	"log/slog"
	"sync"

	"github.com/goodcast/goodapi/internal/logging"
)

// subscriberBuffer is the per-client backlog before messages are dropped.
const subscriberBuffer = 16

// SubscriberGauge tracks the number of live subscribers.
type SubscriberGauge interface {
	SubscriberAdded()
	SubscriberRemoved()
}

// StreamManager fans realtime messages out to SSE connections.
// It implements ports.Broadcaster.
type StreamManager struct {
	mu          sync.RWMutex
	subscribers map[chan string]struct{}
	closed      bool
	gauge       SubscriberGauge
	logger      *slog.Logger
}

// StreamOption configures a StreamManager.
type StreamOption func(*StreamManager)

// WithSubscriberGauge reports subscriber counts, typically to metrics.
func WithSubscriberGauge(g SubscriberGauge) StreamOption {
	return func(sm *StreamManager) {
		sm.gauge = g
	}
}

// WithStreamLogger configures a logger for the StreamManager.
func WithStreamLogger(logger *slog.Logger) StreamOption {
	return func(sm *StreamManager) {
		sm.logger = logger
	}
}

func NewStreamManager(opts ...StreamOption) *StreamManager {
	sm := &StreamManager{
		subscribers: make(map[chan string]struct{}),
		logger:      logging.NewNop(),
	}
	for _, opt := range opts {
		opt(sm)
	}
	return sm
}

// Subscribe registers a client. The returned func unregisters it and closes
// the channel; it is safe to call more than once. After Close the channel is
// returned already closed.
func (sm *StreamManager) Subscribe() (<-chan string, func()) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	ch := make(chan string, subscriberBuffer)
	if sm.closed {
		close(ch)
		return ch, func() {}
	}
	sm.subscribers[ch] = struct{}{}
	if sm.gauge != nil {
		sm.gauge.SubscriberAdded()
	}

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			sm.mu.Lock()
			defer sm.mu.Unlock()
			if _, ok := sm.subscribers[ch]; ok {
				delete(sm.subscribers, ch)
				close(ch)
				if sm.gauge != nil {
					sm.gauge.SubscriberRemoved()
				}
			}
		})
	}
}

// Broadcast delivers msg to every subscriber without blocking.
func (sm *StreamManager) Broadcast(msg string) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	for ch := range sm.subscribers {
		select {
		case ch <- msg:
		default:
			// Drop message if channel is full (slow client)
			sm.logger.Warn("SSE: Client buffer full, dropping message")
		}
	}
}

// Len returns the number of live subscribers.
func (sm *StreamManager) Len() int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return len(sm.subscribers)
}

// Close disconnects every subscriber and refuses new ones.
func (sm *StreamManager) Close() {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.closed {
		return
	}
	sm.closed = true
	for ch := range sm.subscribers {
		delete(sm.subscribers, ch)
		close(ch)
		if sm.gauge != nil {
			sm.gauge.SubscriberRemoved()
		}
	}
}
