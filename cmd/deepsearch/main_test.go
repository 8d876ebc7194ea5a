package main

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"

	"github.com/bububa/deepsearch/agents/research"
	"github.com/bububa/deepsearch/components/evidence"
	"github.com/bububa/deepsearch/internal/config"
	"github.com/bububa/deepsearch/tools/searxng"
	"github.com/bububa/deepsearch/tools/serper"
)

// fakeFactory builds a Researcher which searches once then answers, recording
// the conversation history length seen by the synthesizer.
type fakeFactory struct {
	cfg       *config.Config
	histories []int
}

func (f *fakeFactory) build(ctx context.Context, cfg *config.Config, logger *slog.Logger, observers ...research.Observer) (Runner, func(context.Context) error, error) {
	f.cfg = cfg
	chooser := research.ChooserFunc(func(ctx context.Context, task *research.Task) (research.Action, error) {
		if len(task.Evidence.Queries()) == 0 {
			return research.NewSearch("Searching the web", "no sources yet", task.Question)
		}
		return research.NewAnswer("Answering", "enough sources"), nil
	})
	synth := research.SynthesizerFunc(func(ctx context.Context, task *research.Task, mode research.Mode, onChunk func(string)) (string, error) {
		f.histories = append(f.histories, len(task.History))
		for _, chunk := range []string{"Go is ", "a programming language."} {
			onChunk(chunk)
		}
		return "Go is a programming language.", nil
	})
	searcher := research.SearcherFunc(func(ctx context.Context, query string, count int) ([]evidence.SearchResult, error) {
		return []evidence.SearchResult{{Title: "The Go Programming Language", URL: "https://go.dev"}}, nil
	})
	scraper := research.ScraperFunc(func(ctx context.Context, urls []string) (*research.ScrapeReport, error) {
		return &research.ScrapeReport{Success: true}, nil
	})
	r := research.New(chooser, synth, searcher, scraper, research.WithLogger(logger), research.WithObservers(observers...))
	return r, func(context.Context) error { return nil }, nil
}

func clearEnv(t *testing.T) {
	for _, key := range []string{
		"OPENAI_API_KEY", "OPENAI_API_BASE_URL", "ANTHROPIC_API_KEY", "ANTHROPIC_API_BASE_URL",
		"COHERE_API_KEY", "COHERE_API_BASE_URL", "SERPER_API_KEY", "SEARXNG_BASE_URL",
		"DEEPSEARCH_MODEL", "DEEPSEARCH_MAX_STEPS", "DEEPSEARCH_LOG_LEVEL",
	} {
		t.Setenv(key, "")
	}
}

func execute(t *testing.T, factory RunnerFactory, stdin string, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := newRootCmd(factory)
	cmd.SetArgs(append([]string{"--config", filepath.Join(t.TempDir(), "config.yaml")}, args...))
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func TestVersion(t *testing.T) {
	stdout, _, err := execute(t, nil, "", "version")
	require.NoError(t, err)
	assert.Equal(t, "deepsearch dev (none)\n", stdout)
}

func TestAsk(t *testing.T) {
	clearEnv(t)
	f := new(fakeFactory)
	stdout, stderr, err := execute(t, f.build, "", "ask", "--max-steps", "3", "--model", "gpt-4o", "what", "is", "go?")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Go is a programming language.\n")
	assert.Contains(t, stdout, "Sources:\n1. https://go.dev\n")
	assert.Contains(t, stderr, "[1/3] Searching the web (search: what is go?)")
	assert.Contains(t, stderr, "research finished")
	assert.Equal(t, 3, f.cfg.Agent.MaxSteps)
	assert.Equal(t, "gpt-4o", f.cfg.LLM.Model)
}

func TestAskQuietWithoutSources(t *testing.T) {
	clearEnv(t)
	f := new(fakeFactory)
	stdout, stderr, err := execute(t, f.build, "", "ask", "-q", "--sources=false", "what is go?")
	require.NoError(t, err)
	assert.NotContains(t, stdout, "Sources:")
	assert.NotContains(t, stderr, "Searching the web")
}

func TestAskInvalidConfig(t *testing.T) {
	clearEnv(t)
	f := new(fakeFactory)
	_, _, err := execute(t, f.build, "", "ask", "--provider", "mistral", "question")
	assert.ErrorContains(t, err, "load config")
	assert.Nil(t, f.cfg)
}

func TestChat(t *testing.T) {
	clearEnv(t)
	f := new(fakeFactory)
	stdin := "What is Go?\nWho created it?\n/undo\nWhen?\n/reset\nAnd now?\nexit\n"
	stdout, _, err := execute(t, f.build, stdin, "chat")
	require.NoError(t, err)
	assert.Equal(t, []int{0, 2, 2, 0}, f.histories)
	assert.Equal(t, 4, strings.Count(stdout, "Go is a programming language."))
	assert.Contains(t, stdout, "history cleared")
}

func TestLoadConfigOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("OPENAI_API_KEY", "sk-openai")
	t.Setenv("ANTHROPIC_API_KEY", "sk-ant")
	cfg, err := loadConfig(&rootFlags{
		configPath: filepath.Join(t.TempDir(), "config.yaml"),
		provider:   config.ProviderAnthropic,
		model:      "claude-3-5-haiku-latest",
		verbose:    true,
		jsonLogs:   true,
	})
	require.NoError(t, err)
	assert.Equal(t, "sk-ant", cfg.LLM.APIKey)
	assert.Equal(t, "claude-3-5-haiku-latest", cfg.LLM.Model)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestNewModelClients(t *testing.T) {
	for _, provider := range []string{config.ProviderOpenAI, config.ProviderAnthropic, config.ProviderCohere} {
		t.Run(provider, func(t *testing.T) {
			client, gen, err := newModelClients(config.LLMConfig{Provider: provider, Model: "m", APIKey: "key", MaxRetries: 1})
			require.NoError(t, err)
			assert.NotNil(t, client)
			assert.NotNil(t, gen)
		})
	}
	_, _, err := newModelClients(config.LLMConfig{Provider: "mistral"})
	assert.Error(t, err)
}

func TestNewSearcher(t *testing.T) {
	s, err := newSearcher(config.SearchConfig{Engine: config.EngineSerper, APIKey: "key"})
	require.NoError(t, err)
	assert.IsType(t, &serper.Serper{}, s)

	s, err = newSearcher(config.SearchConfig{Engine: config.EngineSearxNG, BaseURL: "http://localhost:8080", Engines: []string{"google", "bing"}})
	require.NoError(t, err)
	assert.IsType(t, &searxng.SearxngSearch{}, s)

	_, err = newSearcher(config.SearchConfig{Engine: "yahoo"})
	assert.Error(t, err)
}

func TestDefaultRunnerFactoryInvalidSearchSkipsTelemetry(t *testing.T) {
	before := otel.GetTracerProvider()
	cfg := config.DefaultConfig()
	cfg.Trace.Enabled = true
	cfg.Trace.Endpoint = "localhost:4318"
	cfg.Trace.Insecure = true
	cfg.Search.Engine = "bing"

	runner, shutdown, err := defaultRunnerFactory(context.Background(), cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown search engine "bing"`)
	assert.Nil(t, runner)
	assert.Nil(t, shutdown)
	assert.Equal(t, before, otel.GetTracerProvider())
}

func TestSources(t *testing.T) {
	result := &research.Result{
		Scrapes: []evidence.ScrapeRecord{{URL: "https://a.example.com"}},
		Queries: []evidence.QueryRecord{{
			Query: "q",
			Results: []evidence.SearchResult{
				{URL: "https://a.example.com"},
				{URL: "https://b.example.com"},
				{URL: ""},
			},
		}},
	}
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, sources(result))
}
