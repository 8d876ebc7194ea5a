// Package config loads the deepsearch configuration from a YAML file and the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderCohere    = "cohere"

	EngineSearxNG = "searxng"
	EngineSerper  = "serper"
)

const (
	DefaultModel          = "gpt-4o-mini"
	DefaultTemperature    = 0.2
	DefaultMaxTokens      = 4096
	DefaultMaxRetries     = 3
	DefaultMaxSteps       = 10
	DefaultSearchResults  = 5
	DefaultSearxNGBaseURL = "http://localhost:8080"
	DefaultScrapeTimeout  = 30 * time.Second
	DefaultConcurrency    = 4
	DefaultContentTokens  = 8000
	DefaultLogLevel       = "info"
	DefaultLogFormat      = "text"
	DefaultServiceName    = "deepsearch"
)

type Config struct {
	LLM     LLMConfig     `yaml:"llm"`
	Agent   AgentConfig   `yaml:"agent"`
	Search  SearchConfig  `yaml:"search"`
	Scraper ScraperConfig `yaml:"scraper"`
	Log     LogConfig     `yaml:"log"`
	Trace   TraceConfig   `yaml:"trace"`
}

type LLMConfig struct {
	Provider    string  `yaml:"provider" validate:"required,oneof=openai anthropic cohere"`
	Model       string  `yaml:"model" validate:"required"`
	APIKey      string  `yaml:"api_key"`
	BaseURL     string  `yaml:"base_url" validate:"omitempty,url"`
	Temperature float32 `yaml:"temperature" validate:"gte=0,lte=2"`
	MaxTokens   int     `yaml:"max_tokens" validate:"gte=0"`
	MaxRetries  int     `yaml:"max_retries" validate:"gte=0"`
	// AnswerModel overrides Model for answer synthesis
	AnswerModel string `yaml:"answer_model,omitempty"`
}

type AgentConfig struct {
	MaxSteps      int `yaml:"max_steps" validate:"gte=1,lte=100"`
	SearchResults int `yaml:"search_results" validate:"gte=1,lte=50"`
}

type SearchConfig struct {
	Engine   string `yaml:"engine" validate:"required,oneof=searxng serper"`
	BaseURL  string `yaml:"base_url" validate:"omitempty,url"`
	APIKey   string `yaml:"api_key" validate:"required_if=Engine serper"`
	Language string `yaml:"language"`
	Category string `yaml:"category"`
	// Engines restricts searxng to the listed engines
	Engines []string `yaml:"engines,omitempty"`
}

type ScraperConfig struct {
	UserAgent     string        `yaml:"user_agent"`
	Timeout       time.Duration `yaml:"timeout" validate:"gte=0"`
	Concurrency   int           `yaml:"concurrency" validate:"gte=1"`
	ContentTokens int           `yaml:"content_tokens" validate:"gte=0"`
	RespectRobots bool          `yaml:"respect_robots"`
	// Encoding is the tiktoken encoding used to count content tokens, words are counted when empty
	Encoding string `yaml:"encoding,omitempty"`
}

type LogConfig struct {
	Level  string `yaml:"level" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" validate:"oneof=text json"`
	// File enables a rotating log file, logs go to stderr when empty
	File       string `yaml:"file,omitempty"`
	MaxSize    int    `yaml:"max_size,omitempty" validate:"gte=0"`
	MaxBackups int    `yaml:"max_backups,omitempty" validate:"gte=0"`
	MaxAge     int    `yaml:"max_age,omitempty" validate:"gte=0"`
	Compress   bool   `yaml:"compress,omitempty"`
}

type TraceConfig struct {
	Enabled     bool    `yaml:"enabled"`
	Endpoint    string  `yaml:"endpoint,omitempty" validate:"required_if=Enabled true"`
	Insecure    bool    `yaml:"insecure,omitempty"`
	ServiceName string  `yaml:"service_name,omitempty"`
	SampleRate  float64 `yaml:"sample_rate,omitempty" validate:"gte=0,lte=1"`
}

func DefaultConfig() *Config {
	return &Config{
		LLM: LLMConfig{
			Provider:    ProviderOpenAI,
			Model:       DefaultModel,
			Temperature: DefaultTemperature,
			MaxTokens:   DefaultMaxTokens,
			MaxRetries:  DefaultMaxRetries,
		},
		Agent: AgentConfig{
			MaxSteps:      DefaultMaxSteps,
			SearchResults: DefaultSearchResults,
		},
		Search: SearchConfig{
			Engine:  EngineSearxNG,
			BaseURL: DefaultSearxNGBaseURL,
		},
		Scraper: ScraperConfig{
			Timeout:       DefaultScrapeTimeout,
			Concurrency:   DefaultConcurrency,
			ContentTokens: DefaultContentTokens,
			RespectRobots: true,
		},
		Log: LogConfig{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
		Trace: TraceConfig{
			ServiceName: DefaultServiceName,
			SampleRate:  1,
		},
	}
}

// DefaultPath returns ~/.deepsearch/config.yaml
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "config.yaml"
	}
	return filepath.Join(home, ".deepsearch", "config.yaml")
}

// Load reads the YAML file at path over the defaults and applies environment
// overrides. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		} else if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}
	cfg.ApplyEnv()
	return cfg, nil
}

// ApplyEnv overrides settings from the environment. Provider keys are only read
// for the configured provider.
func (c *Config) ApplyEnv() {
	switch c.LLM.Provider {
	case ProviderAnthropic:
		setFromEnv(&c.LLM.APIKey, "ANTHROPIC_API_KEY")
		setFromEnv(&c.LLM.BaseURL, "ANTHROPIC_API_BASE_URL")
	case ProviderCohere:
		setFromEnv(&c.LLM.APIKey, "COHERE_API_KEY")
		setFromEnv(&c.LLM.BaseURL, "COHERE_API_BASE_URL")
	default:
		setFromEnv(&c.LLM.APIKey, "OPENAI_API_KEY")
		setFromEnv(&c.LLM.BaseURL, "OPENAI_API_BASE_URL")
	}
	setFromEnv(&c.LLM.Model, "DEEPSEARCH_MODEL")
	setFromEnv(&c.Search.APIKey, "SERPER_API_KEY")
	if c.Search.Engine == EngineSearxNG {
		setFromEnv(&c.Search.BaseURL, "SEARXNG_BASE_URL")
	}
	if v := os.Getenv("DEEPSEARCH_MAX_STEPS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Agent.MaxSteps = n
		}
	}
	setFromEnv(&c.Log.Level, "DEEPSEARCH_LOG_LEVEL")
}

func setFromEnv(dist *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dist = v
	}
}

var validate = validator.New()

// Validate checks the configuration
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Save writes the configuration as YAML, creating the parent directory
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}
