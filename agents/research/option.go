package research

import (
	"log/slog"
	"time"

	"github.com/bububa/deepsearch/components"
	"github.com/bububa/deepsearch/components/evidence"
)

// DefaultResultCount is the number of search results requested per query
const DefaultResultCount = 5

type Config struct {
	maxSteps    int
	resultCount int
	observers   []Observer
	logger      *slog.Logger
	now         func() time.Time
}

type Option func(*Config)

// WithMaxSteps sets the step budget, defaults to evidence.DefaultBudget
func WithMaxSteps(n int) Option {
	return func(c *Config) {
		c.maxSteps = n
	}
}

// WithResultCount sets the number of search results requested per query
func WithResultCount(n int) Option {
	return func(c *Config) {
		c.resultCount = n
	}
}

func WithObservers(observers ...Observer) Option {
	return func(c *Config) {
		c.observers = append(c.observers, observers...)
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Config) {
		c.logger = logger
	}
}

// WithClock overrides time.Now
func WithClock(now func() time.Time) Option {
	return func(c *Config) {
		c.now = now
	}
}

func (c *Config) setDefaults() {
	if c.maxSteps <= 0 {
		c.maxSteps = evidence.DefaultBudget
	}
	if c.resultCount <= 0 {
		c.resultCount = DefaultResultCount
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	if c.now == nil {
		c.now = time.Now
	}
}

type runConfig struct {
	history []components.Message
	onChunk func(string)
}

// RunOption configures a single Run
type RunOption func(*runConfig)

// WithHistory sets the conversation preceding the question
func WithHistory(history []components.Message) RunOption {
	return func(c *runConfig) {
		c.history = history
	}
}

// WithAnswerStream receives answer chunks as they are generated
func WithAnswerStream(fn func(string)) RunOption {
	return func(c *runConfig) {
		c.onChunk = fn
	}
}

type modelConfig struct {
	model       string
	temperature float32
	maxTokens   int
	logger      *slog.Logger
}

func (c *modelConfig) setDefaults() {
	if c.logger == nil {
		c.logger = slog.Default()
	}
}

// ModelOption configures the model calls of a Chooser or Synthesizer
type ModelOption func(*modelConfig)

func WithModel(model string) ModelOption {
	return func(c *modelConfig) {
		c.model = model
	}
}

func WithTemperature(temperature float32) ModelOption {
	return func(c *modelConfig) {
		c.temperature = temperature
	}
}

func WithMaxTokens(n int) ModelOption {
	return func(c *modelConfig) {
		c.maxTokens = n
	}
}

// WithCallLogger logs model calls, failures at warn level and the rest at debug level
func WithCallLogger(logger *slog.Logger) ModelOption {
	return func(c *modelConfig) {
		c.logger = logger
	}
}
