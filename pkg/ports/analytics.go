package ports

import (
	"context"

	"github.com/goodcast/goodapi/pkg/domain"
)

// EventSink is the columnar store analytics rows are written to.
type EventSink interface {
	// Insert writes one row and returns the id of the insert query.
	Insert(ctx context.Context, event *domain.Event) (string, error)
}

// RecentEvents keeps a bounded, newest-first window of ingested events.
type RecentEvents interface {
	Push(ctx context.Context, event *domain.Event) error
	// List returns at most limit events, newest first. limit <= 0 means all kept.
	List(ctx context.Context, limit int) ([]domain.Event, error)
}

// Broadcaster delivers a message to every live subscriber, best effort.
type Broadcaster interface {
	Broadcast(msg string)
}

// GeoLocator resolves an IP address to a coarse location.
// A nil location with a nil error means the address could not be placed.
type GeoLocator interface {
	Locate(ctx context.Context, ip string) (*domain.Location, error)
}
