package redis

import (
	"log/slog"

	"github.com/goodcast/goodapi/internal/logging"
	backend "github.com/redis/go-redis/v9"
)

const defaultPrefix = "goodapi:"

// NewClient opens a Redis client shared by the adapters in this package.
func NewClient(address, password string, db int) *backend.Client {
	return backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
}

type options struct {
	prefix string
	logger *slog.Logger
}

// Option configures an adapter.
type Option func(*options)

// WithPrefix sets the key prefix.
func WithPrefix(prefix string) Option {
	return func(o *options) {
		o.prefix = prefix
	}
}

// WithLogger sets the logger used for non-fatal errors.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

func buildOptions(opts []Option) options {
	o := options{
		prefix: defaultPrefix,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
