package pokeapi

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/kapu/pokedex-go/internal/constants"
	"github.com/kapu/pokedex-go/internal/util"
	"github.com/kapu/pokedex-go/pkg/errors"
	"go.uber.org/zap"
)

const (
	ResourceCreature = "pokemon"
	ResourceMove     = "move"
)

// Fetcher is the remote capability the lookup service needs.
type Fetcher interface {
	FetchCreature(ctx context.Context, name string) (*CreatureRaw, error)
	FetchMove(ctx context.Context, name, ref string) (*MoveRaw, error)
}

type ClientConfig struct {
	BaseURL        string
	Timeout        time.Duration
	MaxRetries     int
	RetryBaseDelay time.Duration
	HTTPClient     *http.Client
	Breaker        *util.CircuitBreaker
}

// Client is a read-only PokeAPI client with per-attempt timeouts, capped
// retry for network failures and a circuit breaker.
type Client struct {
	baseURL        string
	httpClient     *http.Client
	timeout        time.Duration
	maxRetries     int
	retryBaseDelay time.Duration
	breaker        *util.CircuitBreaker
	logger         *zap.Logger
}

func NewClient(cfg ClientConfig, logger *zap.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = constants.APIConfig.PokeAPIBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = constants.APIConfig.RequestTimeout
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.RetryBaseDelay <= 0 {
		cfg.RetryBaseDelay = constants.RetryConfig.BaseDelay
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Breaker == nil {
		cfg.Breaker = util.NewCircuitBreaker(
			constants.CircuitBreakerConfig.FailureThreshold,
			constants.CircuitBreakerConfig.ResetTimeout,
			logger,
		)
	}

	return &Client{
		baseURL:        strings.TrimRight(cfg.BaseURL, "/"),
		httpClient:     cfg.HTTPClient,
		timeout:        cfg.Timeout,
		maxRetries:     cfg.MaxRetries,
		retryBaseDelay: cfg.RetryBaseDelay,
		breaker:        cfg.Breaker,
		logger:         logger,
	}
}

// FetchCreature loads the creature resource by name.
func (c *Client) FetchCreature(ctx context.Context, name string) (*CreatureRaw, error) {
	reqURL := c.baseURL + "/" + ResourceCreature + "/" + url.PathEscape(name)

	var raw CreatureRaw
	if err := c.getJSON(ctx, ResourceCreature, name, reqURL, &raw); err != nil {
		return nil, err
	}
	if err := raw.validate(); err != nil {
		return nil, errors.NewMalformedError(ResourceCreature, name, err)
	}
	return &raw, nil
}

// FetchMove loads a move resource. ref is the URL carried by the creature's
// move reference; when empty the move is addressed by name.
func (c *Client) FetchMove(ctx context.Context, name, ref string) (*MoveRaw, error) {
	reqURL := c.resolveMoveURL(name, ref)

	var raw MoveRaw
	if err := c.getJSON(ctx, ResourceMove, name, reqURL, &raw); err != nil {
		return nil, err
	}
	if err := raw.validate(); err != nil {
		return nil, errors.NewMalformedError(ResourceMove, name, err)
	}
	return &raw, nil
}

func (c *Client) resolveMoveURL(name, ref string) string {
	switch {
	case ref == "":
		return c.baseURL + "/" + ResourceMove + "/" + url.PathEscape(name)
	case strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://"):
		return ref
	default:
		return c.baseURL + "/" + strings.TrimLeft(ref, "/")
	}
}

func (c *Client) getJSON(ctx context.Context, resource, name, reqURL string, dest any) error {
	body, err := c.get(ctx, resource, name, reqURL)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, dest); err != nil {
		c.logger.Warn("PokeAPI response could not be decoded",
			zap.String("resource", resource),
			zap.String("name", name),
			zap.Error(err),
		)
		return errors.NewMalformedError(resource, name, err)
	}
	return nil
}

// get retries only network failures; not-found and client errors are permanent.
func (c *Client) get(ctx context.Context, resource, name, reqURL string) ([]byte, error) {
	operation := func() ([]byte, error) {
		if !c.breaker.Allow() {
			retryAfter := c.breaker.RetryAfter()
			c.logger.Warn("Circuit breaker is open", zap.Duration("retry_after", retryAfter))
			return nil, backoff.Permanent(errors.NewNetworkError(resource, name, http.StatusServiceUnavailable,
				errors.NewAPIError("circuit breaker open", http.StatusServiceUnavailable, map[string]any{
					"retry_after_ms": retryAfter.Milliseconds(),
				})))
		}

		body, status, err := c.doOnce(ctx, reqURL)
		if err != nil {
			if ctx.Err() != nil {
				c.breaker.RecordAbandoned()
				return nil, backoff.Permanent(errors.NewNetworkError(resource, name, 0, err))
			}
			c.breaker.RecordFailure()
			return nil, errors.NewNetworkError(resource, name, 0, err)
		}

		switch {
		case status == http.StatusNotFound:
			c.breaker.RecordSuccess()
			return nil, backoff.Permanent(errors.NewNotFoundError(resource, name))
		case status == http.StatusTooManyRequests || status >= 500:
			c.breaker.RecordFailure()
			return nil, errors.NewNetworkError(resource, name, status,
				errors.NewAPIError(fmt.Sprintf("Server error: %d", status), status, map[string]any{"url": reqURL}))
		case status >= 400:
			c.breaker.RecordSuccess()
			return nil, backoff.Permanent(errors.NewNetworkError(resource, name, status,
				errors.NewAPIError(fmt.Sprintf("Client error: %d", status), status, map[string]any{"url": reqURL})))
		}

		c.breaker.RecordSuccess()
		return body, nil
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = c.retryBaseDelay
	policy.MaxInterval = constants.RetryConfig.MaxDelay
	policy.RandomizationFactor = constants.RetryConfig.Jitter

	body, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(policy),
		backoff.WithMaxTries(uint(c.maxRetries+1)),
		backoff.WithNotify(func(err error, delay time.Duration) {
			c.logger.Warn("PokeAPI request failed, retrying",
				zap.String("resource", resource),
				zap.String("name", name),
				zap.Duration("delay", delay),
				zap.Error(err),
			)
		}),
	)
	if err != nil {
		var lookupErr *errors.LookupError
		if stderrors.As(err, &lookupErr) {
			return nil, lookupErr
		}
		return nil, errors.NewNetworkError(resource, name, 0, err)
	}
	return body, nil
}

func (c *Client) doOnce(ctx context.Context, reqURL string) ([]byte, int, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(attemptCtx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", constants.APIConfig.UserAgent)

	c.logger.Debug("PokeAPI request", zap.String("url", reqURL))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, err
	}
	return body, resp.StatusCode, nil
}
