package probe

import (
	"context"
	"fmt"
	"net/http"
	"strings"
)

// HTTPChecker issues a GET; any 2xx or 3xx response is up
type HTTPChecker struct {
	Client *http.Client
}

// NewHTTPChecker creates an HTTP checker that does not follow redirects
func NewHTTPChecker() *HTTPChecker {
	return &HTTPChecker{
		Client: &http.Client{
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

// Check implements Checker. A bare host is checked as http://host/.
func (c *HTTPChecker) Check(ctx context.Context, address string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, httpTarget(address), nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", "nodeboard-probe")

	resp, err := c.Client.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 399 {
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}
	return nil
}

func httpTarget(address string) string {
	if strings.HasPrefix(address, "http://") || strings.HasPrefix(address, "https://") {
		return address
	}
	return "http://" + address + "/"
}
