package resilience

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// StatusError reports an upstream response that exhausted the retry budget.
type StatusError struct {
	Target string
	Code   int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("resilience: %s responded %d %s", e.Target, e.Code, http.StatusText(e.Code))
}

// HTTPClient wraps an http.Client with per-attempt timeouts, retries and a
// circuit breaker. Responses with status 429 or 5xx count as failures.
type HTTPClient struct {
	Client      *http.Client
	Breaker     *Breaker
	Target      string
	BaseBackoff time.Duration
	MaxAttempts int
	Jitter      float64
	Timeout     time.Duration
}

// NewHTTPClient builds a traced client for one upstream.
func NewHTTPClient(target string, timeout time.Duration, maxAttempts int) HTTPClient {
	return HTTPClient{
		Client: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		Breaker:     NewBreaker(5, 0.5, 30*time.Second).WithTarget(target),
		Target:      target,
		BaseBackoff: 200 * time.Millisecond,
		MaxAttempts: maxAttempts,
		Jitter:      0.2,
		Timeout:     timeout,
	}
}

// Do sends req, buffering its body so attempts can be replayed. The returned
// response body stays readable until closed even when Timeout is set.
func (cl HTTPClient) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	if cl.Client == nil {
		return nil, errors.New("resilience: http client not configured")
	}
	breaker := cl.Breaker
	if breaker == nil {
		breaker = NewBreaker(1, 1, time.Second)
	}
	attempts := cl.MaxAttempts
	if attempts <= 0 {
		attempts = 1
	}
	target := cl.Target
	if target == "" {
		target = req.URL.Host
	}

	body, err := bufferBody(req)
	if err != nil {
		return nil, err
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if !breaker.Allow(ctx) {
			UpstreamAttempts.WithLabelValues(target, "rejected").Inc()
			lastErr = ErrOpenCircuit
			break
		}
		resp, err := cl.send(ctx, req, body)
		switch {
		case err != nil:
			lastErr = err
			UpstreamAttempts.WithLabelValues(target, "error").Inc()
		case retryable(resp.StatusCode):
			lastErr = &StatusError{Target: target, Code: resp.StatusCode}
			UpstreamAttempts.WithLabelValues(target, "status").Inc()
			_, _ = io.Copy(io.Discard, resp.Body)
			_ = resp.Body.Close()
		default:
			breaker.Report(ctx, true)
			UpstreamAttempts.WithLabelValues(target, "ok").Inc()
			return resp, nil
		}
		breaker.Report(ctx, false)
		if attempt == attempts {
			break
		}
		timer := time.NewTimer(Backoff(cl.BaseBackoff, attempt, cl.Jitter))
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
	return nil, lastErr
}

func (cl HTTPClient) send(ctx context.Context, req *http.Request, body []byte) (*http.Response, error) {
	timeout := cl.Timeout
	if timeout <= 0 {
		timeout = cl.Client.Timeout
	}
	var (
		callCtx context.Context
		cancel  context.CancelFunc
	)
	if timeout > 0 {
		callCtx, cancel = context.WithTimeout(ctx, timeout)
	} else {
		callCtx, cancel = context.WithCancel(ctx)
	}
	attempt := req.Clone(callCtx)
	if body != nil {
		attempt.Body = io.NopCloser(bytes.NewReader(body))
		attempt.GetBody = func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(body)), nil
		}
		attempt.ContentLength = int64(len(body))
	}
	resp, err := cl.Client.Do(attempt)
	if err != nil {
		cancel()
		return nil, err
	}
	resp.Body = &cancelOnClose{ReadCloser: resp.Body, cancel: cancel}
	return resp, nil
}

func retryable(code int) bool {
	return code == http.StatusTooManyRequests || code >= 500
}

func bufferBody(req *http.Request) ([]byte, error) {
	if req.Body == nil || req.Body == http.NoBody {
		return nil, nil
	}
	data, err := io.ReadAll(req.Body)
	_ = req.Body.Close()
	if err != nil {
		return nil, fmt.Errorf("resilience: buffer request body: %w", err)
	}
	return data, nil
}

type cancelOnClose struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (c *cancelOnClose) Close() error {
	err := c.ReadCloser.Close()
	c.cancel()
	return err
}
