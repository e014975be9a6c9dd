package configsource

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/tallerhub/taller-status/internal/core"
)

// SystemConfigPath is appended to the base URL of the backend.
const SystemConfigPath = "/config/system"

const maxConfigBody = 1 << 20

// HTTPSource fetches the configuration from the shop backend.
type HTTPSource struct {
	baseURL        string
	token          string
	client         *http.Client
	maxRetries     uint64
	attemptTimeout time.Duration
	maxElapsed     time.Duration
}

// HTTPOption configures an HTTPSource.
type HTTPOption func(*HTTPSource)

// WithToken sends token as a bearer credential.
func WithToken(token string) HTTPOption {
	return func(s *HTTPSource) { s.token = token }
}

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(c *http.Client) HTTPOption {
	return func(s *HTTPSource) { s.client = c }
}

// WithMaxRetries bounds the number of retries after the first attempt.
func WithMaxRetries(n uint64) HTTPOption {
	return func(s *HTTPSource) { s.maxRetries = n }
}

// WithAttemptTimeout bounds a single request.
func WithAttemptTimeout(d time.Duration) HTTPOption {
	return func(s *HTTPSource) { s.attemptTimeout = d }
}

// WithMaxElapsed bounds the whole retry loop.
func WithMaxElapsed(d time.Duration) HTTPOption {
	return func(s *HTTPSource) { s.maxElapsed = d }
}

// NewHTTPSource creates a source reading <baseURL>/config/system.
func NewHTTPSource(baseURL string, opts ...HTTPOption) *HTTPSource {
	s := &HTTPSource{
		baseURL:        strings.TrimRight(baseURL, "/"),
		client:         &http.Client{},
		maxRetries:     3,
		attemptTimeout: 5 * time.Second,
		maxElapsed:     30 * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name implements Source.
func (s *HTTPSource) Name() string { return s.baseURL + SystemConfigPath }

// Load implements Source. Transport errors and 5xx responses are retried
// with exponential backoff; 4xx responses and undecodable bodies are not.
func (s *HTTPSource) Load(ctx context.Context) (*core.SystemConfig, error) {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 200 * time.Millisecond
	bo.MaxElapsedTime = s.maxElapsed

	var cfg *core.SystemConfig
	err := backoff.Retry(func() error {
		var err error
		cfg, err = s.fetch(ctx)
		return err
	}, backoff.WithContext(backoff.WithMaxRetries(bo, s.maxRetries), ctx))
	if err != nil {
		return nil, fmt.Errorf("load config from %s: %w", s.Name(), err)
	}
	return cfg, nil
}

func (s *HTTPSource) fetch(ctx context.Context) (*core.SystemConfig, error) {
	ctx, cancel := context.WithTimeout(ctx, s.attemptTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.Name(), nil)
	if err != nil {
		return nil, backoff.Permanent(err)
	}
	req.Header.Set("Accept", "application/json")
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxConfigBody))
	if err != nil {
		return nil, err
	}

	switch {
	case resp.StatusCode >= 500:
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	case resp.StatusCode >= 400:
		return nil, backoff.Permanent(fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	cfg, err := core.ParseSystemConfig(body)
	if err != nil {
		return nil, backoff.Permanent(err)
	}
	return cfg, nil
}
