package searxng

import (
	"net/http"

	"github.com/bububa/deepsearch/tools"
)

type Option func(*Config)

func WithBaseURL(baseURL string) Option {
	return func(c *Config) {
		c.baseURL = baseURL
	}
}

func WithLanguage(lang string) Option {
	return func(c *Config) {
		c.language = lang
	}
}

// WithEngines sets the comma separated engines list, e.g. "bing,duckduckgo,google"
func WithEngines(engines string) Option {
	return func(c *Config) {
		c.engines = engines
	}
}

// WithCategory sets the category used by Search
func WithCategory(category Category) Option {
	return func(c *Config) {
		c.category = category
	}
}

func WithMaxResults(n int) Option {
	return func(c *Config) {
		c.maxResults = n
	}
}

func WithHttpClient(clt *http.Client) Option {
	return func(c *Config) {
		c.httpClient = clt
	}
}

func WithToolOptions(opts ...tools.Option) Option {
	return func(c *Config) {
		for _, opt := range opts {
			opt(&c.Config)
		}
	}
}
