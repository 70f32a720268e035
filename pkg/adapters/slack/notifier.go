// Package slack posts team notifications to a Slack incoming webhook.
package slack

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/slack-go/slack"
)

const (
	MainnetExplorer = "https://polygonscan.com"
	TestnetExplorer = "https://amoy.polygonscan.com"
)

// Notifier implements ports.SignupNotifier.
type Notifier struct {
	webhookURL string
	explorer   string
	httpClient *http.Client
}

// Option configures the Notifier.
type Option func(*Notifier)

// WithExplorer sets the block explorer used for transaction links.
func WithExplorer(base string) Option {
	return func(n *Notifier) {
		n.explorer = base
	}
}

// WithHTTPClient replaces the HTTP client used to reach Slack.
func WithHTTPClient(hc *http.Client) Option {
	return func(n *Notifier) {
		n.httpClient = hc
	}
}

// NewNotifier posts to webhookURL.
func NewNotifier(webhookURL string, opts ...Option) *Notifier {
	n := &Notifier{
		webhookURL: webhookURL,
		explorer:   MainnetExplorer,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// NotifySignup announces the signup transaction txHash.
func (n *Notifier) NotifySignup(ctx context.Context, txHash string) error {
	link := fmt.Sprintf("%s/tx/%s", n.explorer, txHash)
	msg := &slack.WebhookMessage{
		Text: fmt.Sprintf("New signup: %s", link),
		Blocks: &slack.Blocks{BlockSet: []slack.Block{
			slack.NewSectionBlock(
				slack.NewTextBlockObject(slack.MarkdownType, fmt.Sprintf(":tada: *New signup*\n<%s|%s>", link, txHash), false, false),
				nil, nil,
			),
		}},
	}
	if err := slack.PostWebhookCustomHTTPContext(ctx, n.webhookURL, n.httpClient, msg); err != nil {
		return fmt.Errorf("failed to post signup to slack: %w", err)
	}
	return nil
}
