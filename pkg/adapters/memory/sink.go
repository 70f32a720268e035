package memory

import (
	"context"
	"sync"

	"github.com/goodcast/goodapi/pkg/domain"
	"github.com/google/uuid"
)

// DefaultEventLogSize bounds an EventLog created with a non-positive size.
const DefaultEventLogSize = 10000

// EventLog is an ports.EventSink that keeps the latest rows in memory,
// dropping the oldest once full. It stands in for ClickHouse in development
// and tests.
type EventLog struct {
	mu      sync.Mutex
	buf     []domain.Event
	next    int
	count   int
	dropped int
}

func NewEventLog(size int) *EventLog {
	if size <= 0 {
		size = DefaultEventLogSize
	}
	return &EventLog{buf: make([]domain.Event, size)}
}

func (l *EventLog) Insert(ctx context.Context, event *domain.Event) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.count == len(l.buf) {
		l.dropped++
	} else {
		l.count++
	}
	l.buf[l.next] = *event
	l.next = (l.next + 1) % len(l.buf)
	return uuid.NewString(), nil
}

// Events returns a copy of the kept rows, oldest first.
func (l *EventLog) Events() []domain.Event {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]domain.Event, 0, l.count)
	start := (l.next - l.count + len(l.buf)) % len(l.buf)
	for i := 0; i < l.count; i++ {
		out = append(out, l.buf[(start+i)%len(l.buf)])
	}
	return out
}

// Dropped reports how many rows were evicted to stay within the bound.
func (l *EventLog) Dropped() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.dropped
}
