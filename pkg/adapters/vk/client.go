// Package vk implements the directory, the sender and the long poll
// event source on top of the VK API (github.com/SevereCloud/vksdk).
package vk

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/SevereCloud/vksdk/v3/api"
	"github.com/aretw0/kinder/internal/logging"
	"github.com/aretw0/kinder/pkg/domain"
)

const (
	DefaultBaseURL = "https://api.vk.com/method"
	DefaultVersion = "5.199"
)

// Client performs authenticated VK API calls with a single token.
type Client struct {
	api    *api.VK
	logger *slog.Logger
}

// Option configures the Client.
type Option func(*Client)

// WithBaseURL points the client at another endpoint (tests, proxies).
func WithBaseURL(u string) Option {
	return func(c *Client) {
		c.api.MethodURL = strings.TrimRight(u, "/") + "/"
	}
}

// WithVersion sets the API version sent with every call.
func WithVersion(v string) Option {
	return func(c *Client) {
		if v != "" {
			c.api.Version = v
		}
	}
}

// WithHTTPClient sets the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		c.api.Client = h
	}
}

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a Client for token.
func NewClient(token string, opts ...Option) *Client {
	vk := api.NewVK(token)
	vk.MethodURL = DefaultBaseURL + "/"
	vk.Version = DefaultVersion
	vk.Client = &http.Client{Timeout: 30 * time.Second}

	c := &Client{api: vk, logger: logging.NewNop()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// call runs one API method. Failures wrap domain.ErrDirectory; VK error
// objects stay reachable with errors.Is(err, api.ErrAuth) and friends.
// Nothing is retried.
func (c *Client) call(method string, fn func() error) error {
	start := time.Now()
	err := fn()
	c.logger.Debug("vk call", "method", method, "duration", time.Since(start), "err", err)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", domain.ErrDirectory, method, err)
	}
	return nil
}
