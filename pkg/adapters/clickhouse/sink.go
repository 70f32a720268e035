// Package clickhouse writes Leafwatch events to the ClickHouse events table.
package clickhouse

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/google/uuid"

	"github.com/goodcast/goodapi/internal/logging"
	"github.com/goodcast/goodapi/pkg/domain"
)

const createTable = `CREATE TABLE IF NOT EXISTS %s (
	actor           Nullable(String),
	browser         Nullable(String),
	browser_version Nullable(String),
	city            Nullable(String),
	country         Nullable(String),
	created         DateTime64(3, 'UTC') DEFAULT now64(3),
	fingerprint     Nullable(String),
	ip              Nullable(String),
	name            String,
	os              Nullable(String),
	platform        Nullable(String),
	properties      Nullable(String),
	referrer        Nullable(String),
	region          Nullable(String),
	url             Nullable(String),
	utm_campaign    Nullable(String),
	utm_content     Nullable(String),
	utm_medium      Nullable(String),
	utm_source      Nullable(String),
	utm_term        Nullable(String),
	version         Nullable(String),
	wallet          Nullable(String)
) ENGINE = MergeTree ORDER BY (name, created)`

// conn is the part of driver.Conn the sink uses.
type conn interface {
	PrepareBatch(ctx context.Context, query string, opts ...driver.PrepareBatchOption) (driver.Batch, error)
	Exec(ctx context.Context, query string, args ...any) error
	Ping(ctx context.Context) error
	Close() error
}

// Sink implements ports.EventSink.
type Sink struct {
	conn   conn
	table  string
	logger *slog.Logger
}

// Option configures the Sink.
type Option func(*Sink)

// WithTable overrides the "events" table name.
func WithTable(table string) Option {
	return func(s *Sink) {
		s.table = table
	}
}

// WithLogger configures a logger for the Sink.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Sink) {
		s.logger = logger
	}
}

// Open connects using a clickhouse:// DSN.
func Open(ctx context.Context, dsn string, opts ...Option) (*Sink, error) {
	options, err := clickhouse.ParseDSN(dsn)
	if err != nil {
		return nil, fmt.Errorf("invalid clickhouse dsn: %w", err)
	}
	c, err := clickhouse.Open(options)
	if err != nil {
		return nil, fmt.Errorf("failed to open clickhouse: %w", err)
	}
	if err := c.Ping(ctx); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("failed to reach clickhouse: %w", err)
	}
	return newSink(c, opts...), nil
}

func newSink(c conn, opts ...Option) *Sink {
	s := &Sink{conn: c, table: "events", logger: logging.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// EnsureTable creates the events table when it is missing.
func (s *Sink) EnsureTable(ctx context.Context) error {
	return s.conn.Exec(ctx, fmt.Sprintf(createTable, s.table))
}

// Insert writes one row under a fresh query id and returns that id.
func (s *Sink) Insert(ctx context.Context, event *domain.Event) (string, error) {
	row, err := toRow(event)
	if err != nil {
		return "", err
	}

	queryID := uuid.NewString()
	ctx = clickhouse.Context(ctx, clickhouse.WithQueryID(queryID))

	batch, err := s.conn.PrepareBatch(ctx, "INSERT INTO "+s.table)
	if err != nil {
		return "", fmt.Errorf("failed to prepare insert: %w", err)
	}
	if err := batch.AppendStruct(row); err != nil {
		_ = batch.Abort()
		return "", fmt.Errorf("failed to append event: %w", err)
	}
	if err := batch.Send(); err != nil {
		return "", fmt.Errorf("failed to send event: %w", err)
	}

	s.logger.Debug("Inserted event", "table", s.table, "query_id", queryID)
	return queryID, nil
}

// Close releases the connection pool.
func (s *Sink) Close() error {
	return s.conn.Close()
}

type row struct {
	Actor          *string   `ch:"actor"`
	Browser        *string   `ch:"browser"`
	BrowserVersion *string   `ch:"browser_version"`
	City           *string   `ch:"city"`
	Country        *string   `ch:"country"`
	Created        time.Time `ch:"created"`
	Fingerprint    *string   `ch:"fingerprint"`
	IP             *string   `ch:"ip"`
	Name           string    `ch:"name"`
	OS             *string   `ch:"os"`
	Platform       *string   `ch:"platform"`
	Properties     *string   `ch:"properties"`
	Referrer       *string   `ch:"referrer"`
	Region         *string   `ch:"region"`
	URL            *string   `ch:"url"`
	UTMCampaign    *string   `ch:"utm_campaign"`
	UTMContent     *string   `ch:"utm_content"`
	UTMMedium      *string   `ch:"utm_medium"`
	UTMSource      *string   `ch:"utm_source"`
	UTMTerm        *string   `ch:"utm_term"`
	Version        *string   `ch:"version"`
	Wallet         *string   `ch:"wallet"`
}

// toRow maps an event onto the table; properties are stored as JSON text.
func toRow(e *domain.Event) (*row, error) {
	var props *string
	if e.Properties != nil {
		b, err := json.Marshal(e.Properties)
		if err != nil {
			return nil, fmt.Errorf("failed to encode properties: %w", err)
		}
		s := string(b)
		props = &s
	}
	created := e.Created
	if created.IsZero() {
		created = time.Now()
	}
	return &row{
		Actor:          e.Actor,
		Browser:        e.Browser,
		BrowserVersion: e.BrowserVersion,
		City:           e.City,
		Country:        e.Country,
		Created:        created.UTC(),
		Fingerprint:    e.Fingerprint,
		IP:             e.IP,
		Name:           e.Name,
		OS:             e.OS,
		Platform:       e.Platform,
		Properties:     props,
		Referrer:       e.Referrer,
		Region:         e.Region,
		URL:            e.URL,
		UTMCampaign:    e.UTMCampaign,
		UTMContent:     e.UTMContent,
		UTMMedium:      e.UTMMedium,
		UTMSource:      e.UTMSource,
		UTMTerm:        e.UTMTerm,
		Version:        e.Version,
		Wallet:         e.Wallet,
	}, nil
}
