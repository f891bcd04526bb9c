package binance

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sony/gobreaker"

	"github.com/bingqian0328/Futures-Trading-Strategy/internal/infra"
	"github.com/bingqian0328/Futures-Trading-Strategy/internal/metrics"
)

// Client talks to the Binance USDT-M futures REST API. One instance owns the
// HTTP session and the API credentials; the session is created lazily on
// first use, reused across calls, and released by Close.
type Client struct {
	apiKey  string
	secret  string
	baseURL string

	sessionOnce sync.Once
	httpClient  *http.Client

	cb            *gobreaker.CircuitBreaker
	orderLimiter  *infra.RateLimiter
	cancelLimiter *infra.RateLimiter
}

// NewClient creates a new REST client.
func NewClient(apiKey, secret, baseURL string) *Client {
	c := &Client{
		apiKey:        apiKey,
		secret:        secret,
		baseURL:       strings.TrimSuffix(baseURL, "/"),
		orderLimiter:  infra.GetBinanceOrderLimiter(),
		cancelLimiter: infra.GetBinanceCancelLimiter(),
	}

	c.cb = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "binance-fapi",
		MaxRequests: 3,
		Interval:    5 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= 0.6
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			slog.Warn("⚡ Circuit breaker state changed",
				"name", name, "from", from.String(), "to", to.String())
		},
	})

	return c
}

// session lazily builds the shared HTTP client.
func (c *Client) session() *http.Client {
	c.sessionOnce.Do(func() {
		if c.httpClient == nil {
			c.httpClient = &http.Client{Timeout: 10 * time.Second}
		}
	})
	return c.httpClient
}

// Close releases the HTTP session. Call exactly once, after both the feed
// and the trading loop have stopped.
func (c *Client) Close() {
	if c.httpClient != nil {
		c.httpClient.CloseIdleConnections()
	}
}

func timestampMS() int64 {
	return time.Now().UnixMilli()
}

// PlaceOrder submits a signed GTC limit order and returns the raw HTTP status
// and body without interpreting them. It never retries: a timed-out POST may
// still have reached the exchange, and a blind retry could double-submit.
func (c *Client) PlaceOrder(ctx context.Context, symbol, side string, price, quantity decimal.Decimal) (int, string, error) {
	params := Params{
		{"symbol", symbol},
		{"side", side},
		{"type", "LIMIT"},
		{"timeInForce", "GTC"},
		{"quantity", quantity.String()},
		{"price", price.String()},
		{"timestamp", strconv.FormatInt(timestampMS(), 10)},
	}
	params = append(params, Param{"signature", Sign(params, c.secret)})

	c.orderLimiter.Wait()
	return c.do(ctx, http.MethodPost, orderPath, params)
}

// CancelAllOrders cancels every open order for the symbol. Cancelling nothing
// is not an error from this client's perspective.
func (c *Client) CancelAllOrders(ctx context.Context, symbol string) (int, string, error) {
	params := Params{
		{"symbol", symbol},
		{"timestamp", strconv.FormatInt(timestampMS(), 10)},
	}
	params = append(params, Param{"signature", Sign(params, c.secret)})

	c.cancelLimiter.Wait()
	return c.do(ctx, http.MethodDelete, cancelAllPath, params)
}

type restResult struct {
	status int
	body   string
}

// do issues one signed request through the circuit breaker. POST parameters
// travel as a form body, everything else as query parameters.
func (c *Client) do(ctx context.Context, method, path string, params Params) (int, string, error) {
	start := time.Now()
	defer func() {
		metrics.APIRequestDuration.WithLabelValues(path).Observe(time.Since(start).Seconds())
	}()

	res, err := c.cb.Execute(func() (interface{}, error) {
		var req *http.Request
		var err error

		if method == http.MethodPost {
			req, err = http.NewRequestWithContext(ctx, method, c.baseURL+path,
				strings.NewReader(params.Encode()))
			if err == nil {
				req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
			}
		} else {
			req, err = http.NewRequestWithContext(ctx, method, c.baseURL+path+"?"+params.Encode(), nil)
		}
		if err != nil {
			return nil, fmt.Errorf("build request: %w", err)
		}
		req.Header.Set(apiKeyHeader, c.apiKey)

		resp, err := c.session().Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("read response: %w", err)
		}

		return restResult{status: resp.StatusCode, body: string(body)}, nil
	})
	if err != nil {
		return 0, "", err
	}

	r := res.(restResult)
	return r.status, r.body, nil
}
