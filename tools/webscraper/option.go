package webscraper

import (
	"net/http"
	"time"

	"github.com/bububa/deepsearch/components/document"
	"github.com/bububa/deepsearch/components/document/parsers"
	"github.com/bububa/deepsearch/tools"
)

const (
	DefaultUserAgent   = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"
	DefaultRobotsAgent = "DeepSearchBot"
	DefaultAccept      = "text/html,application/xhtml+xml,application/xml;q=0.9,application/pdf,text/plain;q=0.8,*/*;q=0.5"
)

type Option func(*Config)

func WithUserAgent(ua string) Option {
	return func(c *Config) {
		c.userAgent = ua
	}
}

// WithRobotsAgent sets the agent name looked up in robots.txt
func WithRobotsAgent(agent string) Option {
	return func(c *Config) {
		c.robotsAgent = agent
	}
}

// WithTimeout sets the http timeout in seconds
func WithTimeout(timeout int) Option {
	return func(c *Config) {
		c.timeout = timeout
	}
}

func WithMaxContentLength(l int64) Option {
	return func(c *Config) {
		c.maxContentLength = l
	}
}

func WithMaxTokens(n int) Option {
	return func(c *Config) {
		c.maxTokens = n
	}
}

func WithConcurrency(n int) Option {
	return func(c *Config) {
		c.concurrency = n
	}
}

func WithRespectRobots(v bool) Option {
	return func(c *Config) {
		c.respectRobots = v
	}
}

func WithHttpClient(clt *http.Client) Option {
	return func(c *Config) {
		c.httpClient = clt
	}
}

func WithRegistry(r *parsers.Registry) Option {
	return func(c *Config) {
		c.registry = r
	}
}

func WithTokenCounter(counter document.TokenCounter) Option {
	return func(c *Config) {
		c.tokenCounter = counter
	}
}

func WithToolOptions(opts ...tools.Option) Option {
	return func(c *Config) {
		for _, opt := range opts {
			opt(&c.Config)
		}
	}
}

func (c Config) timeoutDuration() time.Duration {
	return time.Second * time.Duration(c.timeout)
}
