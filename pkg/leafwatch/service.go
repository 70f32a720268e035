// Package leafwatch ingests analytics events: it checks them against the
// tracking catalog, enriches them with client details, stores them and fans
// them out to realtime viewers.
package leafwatch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/goodcast/goodapi/internal/logging"
	"github.com/goodcast/goodapi/pkg/domain"
	"github.com/goodcast/goodapi/pkg/ports"
)

// ErrUnknownEvent is returned for names absent from the catalog.
var ErrUnknownEvent = errors.New("unknown event")

// Request is a validated event submission.
type Request struct {
	Fingerprint string
	Name        string
	Platform    string
	Properties  any
	Referrer    string
	URL         string
	Version     string
}

// ClientInfo describes who sent the event.
type ClientInfo struct {
	IP        string
	UserAgent string
	Actor     domain.Identity
}

// Observer is notified of every stored event.
type Observer interface {
	EventIngested(name string)
}

// Service runs the ingest pipeline.
type Service struct {
	catalog     *Catalog
	sink        ports.EventSink
	geo         ports.GeoLocator
	recent      ports.RecentEvents
	broadcaster ports.Broadcaster
	observer    Observer
	logger      *slog.Logger
	now         func() time.Time
}

// Option configures the Service.
type Option func(*Service)

// WithRecentEvents keeps stored events in a bounded window for /leafwatch/stream.
func WithRecentEvents(r ports.RecentEvents) Option {
	return func(s *Service) {
		s.recent = r
	}
}

// WithBroadcaster fans stored events out to live subscribers.
func WithBroadcaster(b ports.Broadcaster) Option {
	return func(s *Service) {
		s.broadcaster = b
	}
}

// WithObserver registers an ingest observer, typically the metrics set.
func WithObserver(o Observer) Option {
	return func(s *Service) {
		s.observer = o
	}
}

// WithLogger configures a logger for the Service.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// NewService creates the pipeline. geo may be nil to skip geolocation.
func NewService(catalog *Catalog, sink ports.EventSink, geo ports.GeoLocator, opts ...Option) *Service {
	s := &Service{
		catalog: catalog,
		sink:    sink,
		geo:     geo,
		logger:  logging.NewNop(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Catalog returns the tracking catalog in use.
func (s *Service) Catalog() *Catalog {
	return s.catalog
}

// Ingest stores one event and returns the id of the insert.
func (s *Service) Ingest(ctx context.Context, req Request, client ClientInfo) (string, error) {
	if !s.catalog.Has(req.Name) {
		return "", fmt.Errorf("%w: %q", ErrUnknownEvent, req.Name)
	}

	event, err := s.enrich(ctx, req, client)
	if err != nil {
		return "", err
	}

	id, err := s.sink.Insert(ctx, event)
	if err != nil {
		return "", fmt.Errorf("failed to insert event: %w", err)
	}

	if s.recent != nil {
		if err := s.recent.Push(ctx, event); err != nil {
			s.logger.Warn("Failed to keep recent event", "name", event.Name, "err", err)
		}
	}
	if s.broadcaster != nil {
		data, err := json.Marshal(event)
		if err == nil {
			s.broadcaster.Broadcast(string(data))
		} else {
			s.logger.Warn("Failed to encode event for subscribers", "err", err)
		}
	}
	if s.observer != nil {
		s.observer.EventIngested(event.Name)
	}

	s.logger.Info("Ingested event to Leafwatch", "name", event.Name, "id", id)
	return id, nil
}

func (s *Service) enrich(ctx context.Context, req Request, client ClientInfo) (*domain.Event, error) {
	agent := ParseUserAgent(client.UserAgent)
	utm := ParseUTM(req.URL)

	var loc domain.Location
	if s.geo != nil && client.IP != "" {
		l, err := s.geo.Locate(ctx, client.IP)
		if err != nil {
			return nil, fmt.Errorf("failed to locate %s: %w", client.IP, err)
		}
		if l != nil {
			loc = *l
		}
	}

	properties := req.Properties
	if isEmpty(properties) {
		properties = nil
	}

	return &domain.Event{
		Actor:          domain.Nullable(client.Actor.ID),
		Browser:        domain.Nullable(agent.Browser),
		BrowserVersion: domain.Nullable(agent.BrowserVersion),
		City:           domain.Nullable(loc.City),
		Country:        domain.Nullable(loc.Country),
		Created:        s.now().UTC(),
		Fingerprint:    domain.Nullable(req.Fingerprint),
		IP:             domain.Nullable(client.IP),
		Name:           req.Name,
		OS:             domain.Nullable(agent.OS),
		Platform:       domain.Nullable(req.Platform),
		Properties:     properties,
		Referrer:       domain.Nullable(req.Referrer),
		Region:         domain.Nullable(loc.Region),
		URL:            domain.Nullable(req.URL),
		UTMCampaign:    domain.Nullable(utm.Campaign),
		UTMContent:     domain.Nullable(utm.Content),
		UTMMedium:      domain.Nullable(utm.Medium),
		UTMSource:      domain.Nullable(utm.Source),
		UTMTerm:        domain.Nullable(utm.Term),
		Version:        domain.Nullable(req.Version),
		Wallet:         domain.Nullable(client.Actor.EvmAddress),
	}, nil
}

// falsy property values are stored as null
func isEmpty(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return t == ""
	case bool:
		return !t
	case float64:
		return t == 0
	}
	return false
}

// Recent returns up to limit recently stored events, newest first.
func (s *Service) Recent(ctx context.Context, limit int) ([]domain.Event, error) {
	if s.recent == nil {
		return []domain.Event{}, nil
	}
	events, err := s.recent.List(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list recent events: %w", err)
	}
	if events == nil {
		events = []domain.Event{}
	}
	return events, nil
}
