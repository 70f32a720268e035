package memory

import (
	"context"
	"sync"

	"github.com/goodcast/goodapi/pkg/domain"
)

// RecentEvents is a fixed-size ring of the latest events.
type RecentEvents struct {
	mu    sync.RWMutex
	buf   []domain.Event
	next  int
	count int
}

// NewRecentEvents keeps at most size events.
func NewRecentEvents(size int) *RecentEvents {
	if size <= 0 {
		size = 1
	}
	return &RecentEvents{buf: make([]domain.Event, size)}
}

func (r *RecentEvents) Push(ctx context.Context, event *domain.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.buf[r.next] = *event
	r.next = (r.next + 1) % len(r.buf)
	if r.count < len(r.buf) {
		r.count++
	}
	return nil
}

func (r *RecentEvents) List(ctx context.Context, limit int) ([]domain.Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n := r.count
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]domain.Event, 0, n)
	for i := 1; i <= n; i++ {
		idx := (r.next - i + len(r.buf)) % len(r.buf)
		out = append(out, r.buf[idx])
	}
	return out, nil
}
