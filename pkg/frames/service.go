package frames

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/goodcast/goodapi/internal/logging"
	"github.com/goodcast/goodapi/pkg/auth"
	"github.com/goodcast/goodapi/pkg/domain"
	"github.com/goodcast/goodapi/pkg/ports"
)

const (
	// MaxResponseSize bounds what is read back from a frame server.
	MaxResponseSize = 2 << 20
	// DefaultTimeout bounds a single outbound call.
	DefaultTimeout   = 10 * time.Second
	DefaultUserAgent = "Goodcast"
)

var (
	// ErrInvalidPostURL is returned for post URLs that are not absolute http(s).
	ErrInvalidPostURL = errors.New("invalid post url")
	// ErrInvalidTransaction is returned when a tx button reply is not JSON.
	ErrInvalidTransaction = errors.New("frame server returned invalid transaction")
)

// Observer is notified of every proxied action with its outcome.
type Observer interface {
	FrameAction(result string)
}

// Result is the outcome of a frame action. Exactly one field is set, unless
// the frame server replied with a document that declares no frame.
type Result struct {
	Frame       *domain.Frame
	Transaction json.RawMessage
}

// Service signs frame actions and forwards them to frame servers.
type Service struct {
	signer     ports.FrameSigner
	httpClient *http.Client
	userAgent  string
	logger     *slog.Logger
	observer   Observer
	now        func() time.Time
}

// Option configures the Service.
type Option func(*Service)

// WithHTTPClient replaces the outbound HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(s *Service) {
		s.httpClient = hc
	}
}

// WithUserAgent sets the User-Agent sent to frame servers.
func WithUserAgent(ua string) Option {
	return func(s *Service) {
		s.userAgent = ua
	}
}

// WithLogger configures a logger for the Service.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithObserver registers an outcome observer, typically the metrics set.
func WithObserver(o Observer) Option {
	return func(s *Service) {
		s.observer = o
	}
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// NewService creates a frame proxy that signs through signer.
func NewService(signer ports.FrameSigner, opts ...Option) *Service {
	s := &Service{
		signer:     signer,
		httpClient: &http.Client{Timeout: DefaultTimeout},
		userAgent:  DefaultUserAgent,
		logger:     logging.NewNop(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type trustedData struct {
	MessageBytes string `json:"messageBytes"`
}

type postPayload struct {
	ClientProtocol string         `json:"clientProtocol"`
	TrustedData    trustedData    `json:"trustedData"`
	UntrustedData  map[string]any `json:"untrustedData"`
}

// Post signs the button click of actor and forwards it to req.PostURL.
func (s *Service) Post(ctx context.Context, actor domain.Identity, tokens auth.Tokens, req domain.FrameActionRequest) (*Result, error) {
	if err := checkPostURL(req.PostURL); err != nil {
		return nil, err
	}

	signed, err := s.signer.SignFrameAction(ctx, domain.NewFrameAction(actor, req), tokens.Access)
	if err != nil {
		s.observe("sign_error")
		return nil, err
	}

	untrusted := make(map[string]any, len(signed.SignedTypedData.Value)+2)
	for k, v := range signed.SignedTypedData.Value {
		untrusted[k] = v
	}
	untrusted["identityToken"] = tokens.Identity
	untrusted["unixTimestamp"] = s.now().Unix()

	payload, err := json.Marshal(postPayload{
		ClientProtocol: domain.FrameClientProtocol,
		TrustedData:    trustedData{MessageBytes: signed.Signature},
		UntrustedData:  untrusted,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal frame payload: %w", err)
	}

	body, err := s.send(ctx, http.MethodPost, req.PostURL, payload)
	if err != nil {
		s.observe("upstream_error")
		return nil, err
	}

	if req.ButtonAction == domain.ButtonActionTx {
		if !json.Valid(body) {
			s.observe("upstream_error")
			return nil, ErrInvalidTransaction
		}
		// The reply is forwarded untouched; the typed view only feeds the warning.
		var tx domain.FrameTransaction
		if json.Unmarshal(body, &tx) == nil {
			if chain, err := tx.Chain(); err != nil {
				s.logger.Warn("Frame transaction targets an unsupported chain", "chain", chain, "url", req.PostURL, "err", err)
			}
		}
		s.observe("tx")
		return &Result{Transaction: json.RawMessage(body)}, nil
	}

	doc, err := ParseHTML(bytes.NewReader(body))
	if err != nil {
		s.observe("upstream_error")
		return nil, err
	}
	s.observe("html")
	return &Result{Frame: ParseFrame(doc, req.PostURL)}, nil
}

// FetchOEmbed loads pageURL and returns its link preview.
func (s *Service) FetchOEmbed(ctx context.Context, pageURL string) (*domain.OEmbed, error) {
	if err := checkPostURL(pageURL); err != nil {
		return nil, err
	}
	body, err := s.send(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, err
	}
	doc, err := ParseHTML(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	return ParseOEmbed(doc, pageURL), nil
}

func (s *Service) send(ctx context.Context, method, target string, payload []byte) ([]byte, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("User-Agent", s.userAgent)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("frame server request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read frame server response: %w", err)
	}
	if len(body) > MaxResponseSize {
		return nil, fmt.Errorf("frame server response exceeds %d bytes", MaxResponseSize)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return nil, fmt.Errorf("frame server returned %d", resp.StatusCode)
	}

	s.logger.Debug("Frame server replied", "url", target, "status", resp.StatusCode, "bytes", len(body))
	return body, nil
}

func (s *Service) observe(result string) {
	if s.observer != nil {
		s.observer.FrameAction(result)
	}
}

func checkPostURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPostURL, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: %q", ErrInvalidPostURL, raw)
	}
	return nil
}
