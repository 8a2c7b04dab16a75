// Package paypal is a small client for the PayPal Orders v2 API: create an
// order, capture it, and describe the gateway's configurable settings.
package paypal

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

	"github.com/fastprodman/paygate/internal/infra/metrics"
	"github.com/sony/gobreaker"
)

const (
	SandboxBaseURL = "https://api-m.sandbox.paypal.com"
	LiveBaseURL    = "https://api-m.paypal.com"

	ordersPath = "/v2/checkout/orders"
	tokenPath  = "/v1/oauth2/token"

	maxResponseBody = 1 << 20
)

var (
	ErrBreakerOpen = errors.New("paypal: circuit breaker open")
	ErrTransport   = errors.New("paypal: request failed")
)

// Client talks to one PayPal environment. It never retries; every error is
// final for the call that produced it.
type Client struct {
	baseURL string
	http    *http.Client
	breaker *gobreaker.CircuitBreaker
	log     *slog.Logger
}

// CreateOrder submits a new order. requestID is sent as PayPal-Request-Id so
// a repeated submission of the same order is deduplicated by the provider.
func (c *Client) CreateOrder(ctx context.Context, order OrderRequest, requestID string) (*Response, error) {
	return c.do(ctx, "create_order", ordersPath, order, requestID)
}

// CaptureOrder captures an approved order. Any HTTP answer is returned as a
// Response; only failures to obtain one are errors.
func (c *Client) CaptureOrder(ctx context.Context, orderID, requestID string) (*Response, error) {
	if orderID == "" {
		return nil, fmt.Errorf("%w: empty order id", ErrTransport)
	}

	// orderID comes from the buyer's return URL; it must stay one path segment.
	return c.do(ctx, "capture_order", ordersPath+"/"+url.PathEscape(orderID)+"/capture", struct{}{}, requestID)
}

func (c *Client) do(ctx context.Context, op, path string, body any, requestID string) (*Response, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode %s body: %w", op, err)
	}

	start := time.Now()

	out, err := c.breaker.Execute(func() (any, error) {
		return c.send(ctx, path, payload, requestID)
	})

	result := "ok"

	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		result = "breaker_open"
		err = fmt.Errorf("%w: %w", ErrBreakerOpen, err)
	case err != nil:
		result = "error"
	}

	metrics.ProviderRequestDuration.WithLabelValues(op, result).Observe(time.Since(start).Seconds())

	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	resp, ok := out.(*Response)
	if !ok || resp == nil {
		return nil, fmt.Errorf("%s: %w: no response", op, ErrTransport)
	}

	c.log.DebugContext(ctx, "paypal call finished",
		"op", op, "status", resp.StatusCode, "debug_id", resp.DebugID)

	return resp, nil
}

func (c *Client) send(ctx context.Context, path string, payload []byte, requestID string) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %w", ErrTransport, err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Prefer", "return=representation")

	if requestID != "" {
		req.Header.Set("PayPal-Request-Id", requestID)
	}

	httpResp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTransport, err)
	}
	//nolint:errcheck
	defer httpResp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(httpResp.Body, maxResponseBody))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %w", ErrTransport, err)
	}

	resp := &Response{
		StatusCode: httpResp.StatusCode,
		DebugID:    httpResp.Header.Get("Paypal-Debug-Id"),
		Raw:        raw,
	}

	if len(raw) > 0 {
		err = json.Unmarshal(raw, &resp.Result)
		// error bodies are not orders; only a 2xx must decode
		if err != nil && resp.StatusCode/100 == 2 {
			return nil, fmt.Errorf("%w: decode order: %w", ErrTransport, err)
		}
	}

	return resp, nil
}
