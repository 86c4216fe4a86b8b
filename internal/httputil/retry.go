package httputil

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

const (
	DefaultAttempts = 3
	DefaultBackoff  = time.Second
	DefaultTimeout  = time.Second * 10
)

// ErrTransport is returned when no usable response was obtained: the last
// attempt failed at the transport level or was answered with 429/5xx.
var ErrTransport = errors.New("transport error")

// RetryClient issues requests with exponential backoff between attempts.
// It holds no per-call state and is safe for concurrent use.
type RetryClient struct {
	client   *http.Client
	attempts int
	backoff  time.Duration
	sleep    func(ctx context.Context, d time.Duration) error
	log      *zap.SugaredLogger
}

type Option func(*RetryClient)

// WithAttempts sets the maximum number of attempts, including the first one.
func WithAttempts(n int) Option {
	return func(r *RetryClient) {
		if n > 0 {
			r.attempts = n
		}
	}
}

// WithBackoff sets the delay before the first retry; it doubles after every retry.
func WithBackoff(d time.Duration) Option {
	return func(r *RetryClient) {
		if d >= 0 {
			r.backoff = d
		}
	}
}

func WithHTTPClient(c *http.Client) Option {
	return func(r *RetryClient) {
		if c != nil {
			r.client = c
		}
	}
}

// WithSleep replaces the backoff wait. Tests use it to record delays.
func WithSleep(sleep func(ctx context.Context, d time.Duration) error) Option {
	return func(r *RetryClient) {
		if sleep != nil {
			r.sleep = sleep
		}
	}
}

func WithLogger(log *zap.SugaredLogger) Option {
	return func(r *RetryClient) {
		if log != nil {
			r.log = log
		}
	}
}

func NewRetryClient(opts ...Option) *RetryClient {
	r := &RetryClient{
		client:   &http.Client{Timeout: DefaultTimeout},
		attempts: DefaultAttempts,
		backoff:  DefaultBackoff,
		sleep:    sleepContext,
		log:      zap.NewNop().Sugar(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Get issues a GET with an Accept: application/json header.
func (r *RetryClient) Get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Add("Accept", "application/json")
	return r.Do(req)
}

// Do sends req up to the configured number of attempts. A response whose
// status is neither 429 nor 5xx is returned as is, successful or not.
func (r *RetryClient) Do(req *http.Request) (*http.Response, error) {
	ctx := req.Context()
	backoff := r.backoff

	var lastErr error
	for i := 0; i < r.attempts; i++ {
		if i > 0 {
			r.log.Debugw("retrying request", "url", req.URL.String(), "attempt", i+1, "backoff", backoff, "err", lastErr)
			if err := r.sleep(ctx, backoff); err != nil {
				return nil, fmt.Errorf("%w: %w", ErrTransport, err)
			}
			backoff *= 2
		}

		rsp, err := r.client.Do(req.Clone(ctx))
		if err != nil {
			lastErr = err
			if ctx.Err() != nil {
				break
			}
			continue
		}
		if !Retryable(rsp.StatusCode) {
			return rsp, nil
		}
		_, _ = io.Copy(io.Discard, rsp.Body)
		rsp.Body.Close()
		lastErr = fmt.Errorf("unexpected status code: %s", rsp.Status)
	}
	return nil, fmt.Errorf("%w after %d attempts: %w", ErrTransport, r.attempts, lastErr)
}

// Retryable reports whether a response status warrants another attempt.
func Retryable(status int) bool {
	return status == http.StatusTooManyRequests || (status >= 500 && status < 600)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
