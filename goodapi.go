package goodapi

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/goodcast/goodapi/internal/config"
	"github.com/goodcast/goodapi/internal/logging"
	"github.com/goodcast/goodapi/pkg/adapters/clickhouse"
	httpAdapter "github.com/goodcast/goodapi/pkg/adapters/http"
	"github.com/goodcast/goodapi/pkg/adapters/lens"
	"github.com/goodcast/goodapi/pkg/adapters/memory"
	redisAdapter "github.com/goodcast/goodapi/pkg/adapters/redis"
	"github.com/goodcast/goodapi/pkg/adapters/slack"
	"github.com/goodcast/goodapi/pkg/adapters/sqlite"
	"github.com/goodcast/goodapi/pkg/frames"
	"github.com/goodcast/goodapi/pkg/leafwatch"
	"github.com/goodcast/goodapi/pkg/metrics"
	"github.com/goodcast/goodapi/pkg/ports"
	"github.com/goodcast/goodapi/pkg/webhooks"
)

// ShutdownTimeout bounds the graceful shutdown of the listeners.
const ShutdownTimeout = 5 * time.Second

// App is the assembled server.
type App struct {
	cfg       *config.Config
	logger    *slog.Logger
	verifier  ports.AccountVerifier
	signer    ports.FrameSigner
	metrics   *metrics.Metrics
	streams   *httpAdapter.StreamManager
	leafwatch *leafwatch.Service
	store     *sqlite.Store
	handler   http.Handler
	closers   []func() error
}

// Option defines a functional option for configuring the App.
type Option func(*App)

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(a *App) {
		a.logger = logger
	}
}

// WithAccountVerifier replaces the Lens session check.
func WithAccountVerifier(v ports.AccountVerifier) Option {
	return func(a *App) {
		a.verifier = v
	}
}

// WithFrameSigner replaces the Lens frame signer.
func WithFrameSigner(s ports.FrameSigner) Option {
	return func(a *App) {
		a.signer = s
	}
}

// New connects every backend named by cfg. On error, whatever was already
// opened is closed again.
func New(ctx context.Context, cfg *config.Config, opts ...Option) (app *App, err error) {
	a := &App{cfg: cfg}
	for _, opt := range opts {
		opt(a)
	}
	if a.logger == nil {
		a.logger = logging.NewNop()
	}
	defer func() {
		if err != nil {
			_ = a.Close()
		}
	}()

	a.metrics = metrics.New()
	a.streams = httpAdapter.NewStreamManager(
		httpAdapter.WithSubscriberGauge(a.metrics),
		httpAdapter.WithStreamLogger(a.logger),
	)

	a.store, err = sqlite.Open(cfg.SQLitePath)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, a.store.Close)

	var (
		recent  ports.RecentEvents = memory.NewRecentEvents(cfg.RecentEvents)
		claimer ports.Claimer      = memory.NewClaims()
		geo     ports.GeoLocator
	)
	if cfg.IPAPIKey != "" {
		url := cfg.IPAPIURL
		if url == "" {
			url = leafwatch.DefaultIPAPIURL
		}
		geo = leafwatch.NewIPAPI(url, cfg.IPAPIKey)
	}

	if cfg.RedisAddr != "" {
		client := redisAdapter.NewClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		a.closers = append(a.closers, client.Close)
		if err := client.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("redis %s: %w", cfg.RedisAddr, err)
		}
		ropts := []redisAdapter.Option{redisAdapter.WithPrefix(cfg.RedisPrefix), redisAdapter.WithLogger(a.logger)}
		recent = redisAdapter.NewRecentEvents(client, cfg.RecentEvents, ropts...)
		claimer = redisAdapter.NewClaims(client, ropts...)
		if geo != nil && cfg.GeoCacheTTL > 0 {
			geo = redisAdapter.NewGeoCache(client, geo, cfg.GeoCacheTTL, ropts...)
		}
	} else {
		a.logger.Warn("No redis configured, recent events and webhook dedupe are kept in memory")
	}

	var sink ports.EventSink
	if cfg.ClickHouseDSN != "" {
		ch, err := clickhouse.Open(ctx, cfg.ClickHouseDSN, clickhouse.WithLogger(a.logger))
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, ch.Close)
		if err := ch.EnsureTable(ctx); err != nil {
			return nil, err
		}
		sink = ch
	} else {
		a.logger.Warn("No clickhouse configured, only the latest events are kept in memory", "limit", memory.DefaultEventLogSize)
		sink = memory.NewEventLog(memory.DefaultEventLogSize)
	}

	catalog, err := leafwatch.LoadCatalog(cfg.CatalogPath)
	if err != nil {
		return nil, err
	}

	if a.verifier == nil || a.signer == nil {
		lensOpts := []lens.Option{lens.WithUserAgent(cfg.UserAgent), lens.WithLogger(a.logger)}
		if cfg.LensAPIURL != "" {
			lensOpts = append(lensOpts, lens.WithEndpoint(cfg.LensAPIURL))
		}
		client := lens.New(cfg.Mainnet, lensOpts...)
		if a.verifier == nil {
			a.verifier = client
		}
		if a.signer == nil {
			a.signer = client
		}
	}

	a.leafwatch = leafwatch.NewService(catalog, sink, geo,
		leafwatch.WithRecentEvents(recent),
		leafwatch.WithBroadcaster(a.streams),
		leafwatch.WithObserver(a.metrics),
		leafwatch.WithLogger(a.logger),
	)

	var notifier ports.SignupNotifier = webhooks.LogNotifier{Logger: a.logger}
	if cfg.SlackWebhookURL != "" {
		explorer := slack.TestnetExplorer
		if cfg.Mainnet {
			explorer = slack.MainnetExplorer
		}
		notifier = slack.NewNotifier(cfg.SlackWebhookURL, slack.WithExplorer(explorer))
	}

	a.handler = httpAdapter.NewHandler(&httpAdapter.Server{
		Verifier: a.verifier,
		Frames: frames.NewService(a.signer,
			frames.WithUserAgent(cfg.UserAgent),
			frames.WithObserver(a.metrics),
			frames.WithLogger(a.logger),
		),
		Leafwatch:   a.leafwatch,
		Polls:       a.store,
		Preferences: a.store,
		Signup:      webhooks.NewSignup(cfg.WebhookSecret, notifier, webhooks.WithClaimer(claimer), webhooks.WithLogger(a.logger)),
		Streams:     a.streams,
		Metrics:     a.metrics,
		Logger:      a.logger,
		Version:     strings.TrimSpace(Version),
	})
	return a, nil
}

// Handler returns the HTTP handler of the API.
func (a *App) Handler() http.Handler {
	return a.handler
}

// Leafwatch returns the analytics service.
func (a *App) Leafwatch() *leafwatch.Service {
	return a.leafwatch
}

// Polls returns the poll store.
func (a *App) Polls() ports.PollStore {
	return a.store
}

// Run serves the API, and the metrics listener when configured, until ctx
// is cancelled.
func (a *App) Run(ctx context.Context) error {
	servers := []*http.Server{{Addr: a.cfg.ListenAddr, Handler: a.handler}}
	if a.cfg.MetricsAddr != "" {
		servers = append(servers, &http.Server{Addr: a.cfg.MetricsAddr, Handler: a.metrics.Handler()})
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, srv := range servers {
		g.Go(func() error {
			a.logger.Info("Listening", "address", srv.Addr)
			if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("listen %s: %w", srv.Addr, err)
			}
			return nil
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		a.logger.Info("Shutting down", "timeout", ShutdownTimeout)

		// SSE handlers only return once their channels are closed.
		a.streams.Close()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
		defer cancel()
		var errs []error
		for _, srv := range servers {
			if err := srv.Shutdown(shutdownCtx); err != nil {
				errs = append(errs, fmt.Errorf("graceful shutdown of %s: %w", srv.Addr, err))
				_ = srv.Close()
			}
		}
		return errors.Join(errs...)
	})
	return g.Wait()
}

// Close releases the backends in reverse order of opening.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
