package resilience

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"
)

// HTTPPool is a circuit-breaker-protected HTTP client with a shared
// pooled transport, used for outbound bibliographic API calls.
type HTTPPool struct {
	client         *http.Client
	circuitBreaker *CircuitBreaker
	logger         *slog.Logger

	mu       sync.Mutex
	inFlight int
	maxConns int
}

// NewHTTPPool creates an HTTP pool capped at maxConns concurrent
// requests with the given per-request timeout.
func NewHTTPPool(maxConns int, timeout time.Duration, cb *CircuitBreaker, logger *slog.Logger) *HTTPPool {
	transport := &http.Transport{
		MaxIdleConns:          maxConns,
		MaxConnsPerHost:       maxConns,
		MaxIdleConnsPerHost:   maxConns,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: timeout,
		ExpectContinueTimeout: 1 * time.Second,
	}

	return &HTTPPool{
		client: &http.Client{
			Transport: transport,
			Timeout:   timeout,
		},
		circuitBreaker: cb,
		logger:         logger,
		maxConns:       maxConns,
	}
}

// DoRequest executes a GET-style request through the breaker. The
// caller owns the response body.
func (p *HTTPPool) DoRequest(ctx context.Context, method, url string, headers map[string]string) (*http.Response, error) {
	if err := p.acquire(); err != nil {
		return nil, err
	}
	defer p.release()

	var resp *http.Response
	err := p.circuitBreaker.Call(func() error {
		req, err := http.NewRequestWithContext(ctx, method, url, nil)
		if err != nil {
			return err
		}
		for key, value := range headers {
			req.Header.Set(key, value)
		}

		start := time.Now()
		resp, err = p.client.Do(req)
		duration := time.Since(start)

		if err != nil {
			p.logger.Warn("outbound request failed", "url", url, "error", err, "duration_ms", duration.Milliseconds())
			return err
		}

		p.logger.Debug("outbound request completed", "url", url, "status", resp.StatusCode, "duration_ms", duration.Milliseconds())
		return nil
	})

	if err != nil {
		return nil, err
	}
	return resp, nil
}

func (p *HTTPPool) acquire() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.inFlight >= p.maxConns {
		return NewCircuitBreakerError("http pool exhausted", p.circuitBreaker.State())
	}
	p.inFlight++
	return nil
}

func (p *HTTPPool) release() {
	p.mu.Lock()
	p.inFlight--
	p.mu.Unlock()
}

// GetStats returns pool statistics for health reporting
func (p *HTTPPool) GetStats() map[string]interface{} {
	p.mu.Lock()
	inFlight := p.inFlight
	p.mu.Unlock()

	return map[string]interface{}{
		"in_flight":             inFlight,
		"max_connections":       p.maxConns,
		"circuit_breaker_state": p.circuitBreaker.State().String(),
		"circuit_failures":      p.circuitBreaker.Failures(),
	}
}

// Close releases idle transport connections
func (p *HTTPPool) Close() error {
	if transport, ok := p.client.Transport.(*http.Transport); ok {
		transport.CloseIdleConnections()
	}
	return nil
}
