package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/goodcast/goodapi/pkg/domain"
	backend "github.com/redis/go-redis/v9"
)

// RecentEvents implements ports.RecentEvents as a capped Redis list,
// so every replica serves the same realtime window.
type RecentEvents struct {
	client *backend.Client
	key    string
	size   int64
}

// NewRecentEvents keeps the latest size events under <prefix>leafwatch:recent.
func NewRecentEvents(client *backend.Client, size int, opts ...Option) *RecentEvents {
	o := buildOptions(opts)
	if size <= 0 {
		size = 1
	}
	return &RecentEvents{
		client: client,
		key:    o.prefix + "leafwatch:recent",
		size:   int64(size),
	}
}

// Push prepends the event and trims the list in one transaction.
func (r *RecentEvents) Push(ctx context.Context, event *domain.Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	_, err = r.client.TxPipelined(ctx, func(pipe backend.Pipeliner) error {
		pipe.LPush(ctx, r.key, data)
		pipe.LTrim(ctx, r.key, 0, r.size-1)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to push event to redis: %w", err)
	}
	return nil
}

// List returns the newest events first.
func (r *RecentEvents) List(ctx context.Context, limit int) ([]domain.Event, error) {
	stop := int64(-1)
	if limit > 0 {
		stop = int64(limit) - 1
	}

	vals, err := r.client.LRange(ctx, r.key, 0, stop).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list recent events: %w", err)
	}

	events := make([]domain.Event, 0, len(vals))
	for _, v := range vals {
		var ev domain.Event
		if err := json.Unmarshal([]byte(v), &ev); err != nil {
			return nil, fmt.Errorf("failed to unmarshal event: %w", err)
		}
		events = append(events, ev)
	}
	return events, nil
}
