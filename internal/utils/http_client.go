package utils

import (
	"time"

	"github.com/go-resty/resty/v2"
)

// HTTPClient is a wrapper around the resty.Client HTTP client.
// It embeds *resty.Client to expose all of its methods directly,
// while allowing extension with additional application-specific behavior.
//
// Example usage:
//
//	client := utils.NewHTTPClient()
//	resp, err := client.R().Get("https://example.com")
type HTTPClient struct {
	*resty.Client
}

// HTTPClientOption configures an [HTTPClient] at construction time.
type HTTPClientOption func(c *resty.Client)

// WithBaseURL sets the base URL every relative request path is joined to.
func WithBaseURL(url string) HTTPClientOption {
	return func(c *resty.Client) { c.SetBaseURL(url) }
}

// WithTimeout bounds a single request, including retries' individual attempts.
func WithTimeout(d time.Duration) HTTPClientOption {
	return func(c *resty.Client) { c.SetTimeout(d) }
}

// WithRetries retries failed requests up to count times with a short
// exponential backoff. Only connection errors and 5xx responses are retried.
func WithRetries(count int) HTTPClientOption {
	return func(c *resty.Client) {
		c.SetRetryCount(count).
			SetRetryWaitTime(100 * time.Millisecond).
			SetRetryMaxWaitTime(time.Second).
			AddRetryCondition(func(r *resty.Response, err error) bool {
				return err != nil || r.StatusCode() >= 500
			})
	}
}

// NewHTTPClient creates and returns a new HTTPClient instance
// with a resty.Client configured by opts.
//
// Each call returns an independent client instance with its own
// configuration, connection pool, and state.
//
// Example usage:
//
//	client := utils.NewHTTPClient(utils.WithBaseURL("http://localhost:8080"))
//	resp, err := client.R().
//	    SetHeader("Accept", "application/json").
//	    Get("/api/version")
func NewHTTPClient(opts ...HTTPClientOption) *HTTPClient {
	c := resty.New()
	for _, opt := range opts {
		opt(c)
	}
	return &HTTPClient{Client: c}
}
