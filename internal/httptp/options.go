package httptp

import (
	"net/http"
	"time"
)

// Options configures the HTTP transport behavior.
//
// Defaults:
// - Client:       a dedicated *http.Client
// - Timeout:      30s (used only if the request context has no deadline)
// - MaxBodyBytes: 32 MiB
// - UserAgent:    graphkit
//
// Headers are added to every request without replacing values the request
// already carries.
type Options struct {
	Client       *http.Client
	Timeout      time.Duration
	MaxBodyBytes int64
	UserAgent    string
	Headers      http.Header
}

// Option mutates Options
//
// Use WithX helpers below.
type Option func(*Options)

func defaultOptions() *Options {
	return &Options{
		Timeout:      30 * time.Second,
		MaxBodyBytes: 32 << 20,
		UserAgent:    "graphkit",
		Headers:      http.Header{},
	}
}

func WithClient(c *http.Client) Option    { return func(o *Options) { o.Client = c } }
func WithTimeout(d time.Duration) Option  { return func(o *Options) { o.Timeout = d } }
func WithMaxBodyBytes(n int64) Option     { return func(o *Options) { o.MaxBodyBytes = n } }
func WithUserAgent(ua string) Option      { return func(o *Options) { o.UserAgent = ua } }
func WithHeader(key, value string) Option { return func(o *Options) { o.Headers.Add(key, value) } }
func WithBearerToken(token string) Option { return WithHeader("Authorization", "Bearer "+token) }
