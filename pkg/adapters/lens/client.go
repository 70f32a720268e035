// Package lens talks to the Lens GraphQL API for session verification and
// frame action signing.
package lens

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/goodcast/goodapi/internal/logging"
	"github.com/goodcast/goodapi/pkg/domain"
)

const (
	MainnetURL = "https://api-v2.lens.dev"
	TestnetURL = "https://api-v2-amoy.lens.dev"
)

const verifyQuery = `query Verify($request: VerifyRequest!) {
  verify(request: $request)
}`

const signFrameActionMutation = `mutation SignFrameAction($request: FrameLensManagerEIP712Request!) {
  signFrameAction(request: $request) {
    signature
    signedTypedData {
      types { FrameData { name type } }
      domain { name chainId version verifyingContract }
      value { specVersion url buttonIndex profileId pubId inputText state actionResponse deadline }
    }
  }
}`

// Client is a minimal Lens API client.
type Client struct {
	endpoint   string
	userAgent  string
	httpClient *http.Client
	logger     *slog.Logger
}

// Option configures the Client.
type Option func(*Client)

// WithEndpoint overrides the API URL.
func WithEndpoint(url string) Option {
	return func(c *Client) {
		c.endpoint = url
	}
}

// WithUserAgent sets the User-Agent sent with every call.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithLogger configures a logger for the Client.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// New creates a client for mainnet or, when mainnet is false, the testnet.
func New(mainnet bool, opts ...Option) *Client {
	c := &Client{
		endpoint:   TestnetURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		logger:     logging.NewNop(),
	}
	if mainnet {
		c.endpoint = MainnetURL
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type gqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type gqlError struct {
	Message string `json:"message"`
}

type gqlResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []gqlError      `json:"errors"`
}

// Verify reports whether the access token belongs to a live session.
func (c *Client) Verify(ctx context.Context, accessToken string) (bool, error) {
	var out struct {
		Verify bool `json:"verify"`
	}
	vars := map[string]any{"request": map[string]any{"accessToken": accessToken}}
	if err := c.do(ctx, verifyQuery, vars, "", &out); err != nil {
		return false, fmt.Errorf("verify: %w", err)
	}
	return out.Verify, nil
}

// SignFrameAction asks the Lens Manager to sign action for the token owner.
func (c *Client) SignFrameAction(ctx context.Context, action domain.FrameAction, accessToken string) (*domain.SignedFrameAction, error) {
	var out struct {
		SignFrameAction *domain.SignedFrameAction `json:"signFrameAction"`
	}
	vars := map[string]any{"request": action}
	if err := c.do(ctx, signFrameActionMutation, vars, accessToken, &out); err != nil {
		return nil, fmt.Errorf("sign frame action: %w", err)
	}
	if out.SignFrameAction == nil {
		return nil, errors.New("sign frame action: empty response")
	}
	return out.SignFrameAction, nil
}

func (c *Client) do(ctx context.Context, query string, vars map[string]any, accessToken string, out any) error {
	body, err := json.Marshal(gqlRequest{Query: query, Variables: vars})
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	if accessToken != "" {
		req.Header.Set("X-Access-Token", accessToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		c.logger.Debug("Lens API error response", "status", resp.StatusCode, "body", string(raw))
		return fmt.Errorf("lens api returned %d", resp.StatusCode)
	}

	var gql gqlResponse
	if err := json.Unmarshal(raw, &gql); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	if len(gql.Errors) > 0 {
		msgs := make([]string, len(gql.Errors))
		for i, e := range gql.Errors {
			msgs[i] = e.Message
		}
		return fmt.Errorf("graphql: %s", strings.Join(msgs, "; "))
	}
	if err := json.Unmarshal(gql.Data, out); err != nil {
		return fmt.Errorf("failed to decode data: %w", err)
	}
	return nil
}
