package deviceapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/muurk/nodeboard/internal/inventory"
	"github.com/muurk/nodeboard/internal/logging"
)

const (
	// DefaultTimeout is the default HTTP request timeout
	DefaultTimeout = 10 * time.Second

	// DefaultMaxRetries is the default number of retry attempts for failed requests
	DefaultMaxRetries = 2

	// DefaultRetryDelay is the default delay between retry attempts
	DefaultRetryDelay = 500 * time.Millisecond

	// DefaultMaxRetryDelay is the maximum delay for exponential backoff
	DefaultMaxRetryDelay = 5 * time.Second

	// DevicesPath is the collection resource on the inventory API
	DevicesPath = "/devices"

	// HealthPath is the liveness endpoint on the inventory API
	HealthPath = "/healthz"
)

// Client talks to the inventory API over JSON/HTTP
type Client struct {
	// BaseURL is the base URL of the API (e.g., "http://127.0.0.1:8081")
	BaseURL string

	// HTTPClient is the underlying HTTP client
	HTTPClient *http.Client

	// MaxRetries is the maximum number of retry attempts for failed requests
	MaxRetries int

	// RetryDelay is the initial delay between retry attempts
	RetryDelay time.Duration

	// MaxRetryDelay is the maximum delay for exponential backoff
	MaxRetryDelay time.Duration

	// UseExponentialBackoff enables exponential backoff for retries
	UseExponentialBackoff bool
}

// NewClient creates a client for the API at host:port
func NewClient(host string, port int) *Client {
	return NewClientWithURL(fmt.Sprintf("http://%s:%d", host, port))
}

// NewClientWithURL creates a client with a full base URL.
// A trailing slash is removed.
func NewClientWithURL(baseURL string) *Client {
	return &Client{
		BaseURL:               strings.TrimRight(baseURL, "/"),
		HTTPClient:            &http.Client{Timeout: DefaultTimeout},
		MaxRetries:            DefaultMaxRetries,
		RetryDelay:            DefaultRetryDelay,
		MaxRetryDelay:         DefaultMaxRetryDelay,
		UseExponentialBackoff: true,
	}
}

// SetTimeout sets the HTTP request timeout
func (c *Client) SetTimeout(timeout time.Duration) {
	c.HTTPClient.Timeout = timeout
}

// SetRetry configures retry behavior
func (c *Client) SetRetry(maxRetries int, retryDelay time.Duration) {
	c.MaxRetries = maxRetries
	c.RetryDelay = retryDelay
}

func (c *Client) host() string {
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return c.BaseURL
	}
	return u.Host
}

// withRetry runs attempt until it succeeds, returns a non-retryable error,
// the retry budget is spent, or ctx is done.
func (c *Client) withRetry(ctx context.Context, attempt func(context.Context) error) error {
	var lastErr error
	currentDelay := c.RetryDelay

	for i := 0; i <= c.MaxRetries; i++ {
		if i > 0 {
			timer := time.NewTimer(currentDelay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return ClassifyNetworkError(ctx.Err(), c.host())
			case <-timer.C:
			}

			if c.UseExponentialBackoff {
				currentDelay *= 2
				if currentDelay > c.MaxRetryDelay {
					currentDelay = c.MaxRetryDelay
				}
			}
		}

		err := attempt(ctx)
		if err == nil {
			return nil
		}
		lastErr = err

		if !IsRetryable(err) {
			return err
		}
		logging.Debug(fmt.Sprintf("Retrying inventory API request (attempt %d/%d): %v", i+1, c.MaxRetries, err))
	}

	return lastErr
}

// Ping performs a health check against the API.
// Returns nil if the API is reachable and healthy.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+HealthPath, nil)
	if err != nil {
		return NewNetworkError("failed to create health request", err)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return c.transportError("inventory API unreachable", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return NewHTTPError(resp.StatusCode, fmt.Sprintf("unexpected status code: %d", resp.StatusCode))
	}
	return nil
}

// ListDevices fetches every device known to the API.
//
// A non-2xx response is an ErrTypeHTTP error. A body that is not a JSON array
// of devices is an ErrTypeDecode error.
func (c *Client) ListDevices(ctx context.Context) ([]inventory.Device, error) {
	var devices []inventory.Device
	err := c.withRetry(ctx, func(ctx context.Context) error {
		var err error
		devices, err = c.listDevicesAttempt(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return devices, nil
}

func (c *Client) listDevicesAttempt(ctx context.Context) ([]inventory.Device, error) {
	endpoint := c.BaseURL + DevicesPath

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, NewNetworkError("failed to create GET request", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		logging.LogRequest(http.MethodGet, endpoint, 0, err)
		return nil, c.transportError("GET request failed", err)
	}
	defer func() { _ = resp.Body.Close() }()
	logging.LogRequest(http.MethodGet, endpoint, resp.StatusCode, nil)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, NewHTTPError(resp.StatusCode, fmt.Sprintf("list failed with status %d: %s", resp.StatusCode, strings.TrimSpace(string(body))))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, c.transportError("failed to read response body", err)
	}

	var devices []inventory.Device
	if err := json.Unmarshal(body, &devices); err != nil {
		return nil, NewDecodeError("failed to parse device list", err)
	}
	if devices == nil {
		devices = []inventory.Device{}
	}
	return devices, nil
}

// UpsertDevice creates or replaces a device, keyed by its ID.
// Any 2xx is success; the response body is not read.
func (c *Client) UpsertDevice(ctx context.Context, device inventory.Device) error {
	payload, err := json.Marshal(device)
	if err != nil {
		return NewEncodeError("failed to encode device", err)
	}

	return c.withRetry(ctx, func(ctx context.Context) error {
		return c.upsertAttempt(ctx, payload)
	})
}

func (c *Client) upsertAttempt(ctx context.Context, payload []byte) error {
	endpoint := c.BaseURL + DevicesPath

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return NewNetworkError("failed to create POST request", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		logging.LogRequest(http.MethodPost, endpoint, 0, err)
		return c.transportError("POST request failed", err)
	}
	defer func() { _ = resp.Body.Close() }()
	logging.LogRequest(http.MethodPost, endpoint, resp.StatusCode, nil)

	if resp.StatusCode >= 200 && resp.StatusCode <= 299 {
		return nil
	}

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	return NewHTTPError(resp.StatusCode, fmt.Sprintf("upsert failed with status %d: %s", resp.StatusCode, strings.TrimSpace(string(body))))
}

func (c *Client) transportError(message string, err error) *APIError {
	apiErr := ClassifyNetworkError(err, c.host())
	apiErr.Message = message + ": " + apiErr.Message
	return apiErr
}
