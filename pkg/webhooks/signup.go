// Package webhooks handles inbound webhooks from chain indexers.
package webhooks

import (
	"context"
	"crypto/subtle"
	"errors"
	"log/slog"
	"time"

	"github.com/goodcast/goodapi/internal/logging"
	"github.com/goodcast/goodapi/pkg/ports"
)

// DedupeWindow is how long a notified hash is remembered.
const DedupeWindow = 24 * time.Hour

var (
	// ErrInvalidSecret is returned when the shared secret does not match.
	ErrInvalidSecret = errors.New("invalid secret")
	// ErrNoActivity is returned when the payload carries no transaction.
	ErrNoActivity = errors.New("webhook payload has no activity")
)

// Activity is one on-chain activity of an indexer event.
type Activity struct {
	Hash string `json:"hash"`
}

// SignupEvent is the body of the signup webhook.
type SignupEvent struct {
	Event struct {
		Activity []Activity `json:"activity"`
	} `json:"event"`
}

// Signup notifies the team of new signups.
type Signup struct {
	secret   string
	notifier ports.SignupNotifier
	claimer  ports.Claimer
	logger   *slog.Logger
}

// Option configures Signup.
type Option func(*Signup)

// WithClaimer drops repeated deliveries of the same hash.
func WithClaimer(c ports.Claimer) Option {
	return func(s *Signup) {
		s.claimer = c
	}
}

// WithLogger configures a logger for Signup.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Signup) {
		s.logger = logger
	}
}

// NewSignup creates the handler. An empty secret rejects every call.
func NewSignup(secret string, notifier ports.SignupNotifier, opts ...Option) *Signup {
	s := &Signup{secret: secret, notifier: notifier, logger: logging.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CheckSecret compares the provided secret in constant time.
func (s *Signup) CheckSecret(provided string) error {
	if s.secret == "" || subtle.ConstantTimeCompare([]byte(provided), []byte(s.secret)) != 1 {
		return ErrInvalidSecret
	}
	return nil
}

// Handle announces the first activity of ev. Slack failures are logged,
// not returned: the indexer has nothing to retry.
func (s *Signup) Handle(ctx context.Context, ev SignupEvent) error {
	if len(ev.Event.Activity) == 0 || ev.Event.Activity[0].Hash == "" {
		return ErrNoActivity
	}
	hash := ev.Event.Activity[0].Hash

	if s.claimer != nil {
		ok, err := s.claimer.Claim(ctx, "signup:"+hash, DedupeWindow)
		if err != nil {
			s.logger.Warn("Signup dedupe unavailable", "hash", hash, "err", err)
		} else if !ok {
			s.logger.Debug("Duplicate signup delivery", "hash", hash)
			return nil
		}
	}

	if err := s.notifier.NotifySignup(ctx, hash); err != nil {
		s.logger.Error("Failed to notify signup", "hash", hash, "err", err)
		return nil
	}
	s.logger.Info("Signup notified", "hash", hash)
	return nil
}

// LogNotifier writes signups to a logger. It stands in for Slack when no
// webhook URL is configured.
type LogNotifier struct {
	Logger *slog.Logger
}

// NotifySignup implements ports.SignupNotifier.
func (n LogNotifier) NotifySignup(ctx context.Context, txHash string) error {
	if n.Logger != nil {
		n.Logger.Info("New signup", "hash", txHash)
	}
	return nil
}
