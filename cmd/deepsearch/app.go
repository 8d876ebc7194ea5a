package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/bububa/instructor-go/pkg/instructor"
	cohereclient "github.com/cohere-ai/cohere-go/v2/client"
	cohereoption "github.com/cohere-ai/cohere-go/v2/option"
	anthropic "github.com/liushuangls/go-anthropic/v2"
	openai "github.com/sashabaranov/go-openai"

	"github.com/bububa/deepsearch/agents"
	"github.com/bububa/deepsearch/agents/research"
	"github.com/bububa/deepsearch/components/document"
	"github.com/bububa/deepsearch/components/generator"
	anthropicgen "github.com/bububa/deepsearch/components/generator/providers/anthropic"
	coheregen "github.com/bububa/deepsearch/components/generator/providers/cohere"
	openaigen "github.com/bububa/deepsearch/components/generator/providers/openai"
	"github.com/bububa/deepsearch/internal/config"
	"github.com/bububa/deepsearch/internal/telemetry"
	"github.com/bububa/deepsearch/tools"
	"github.com/bububa/deepsearch/tools/searxng"
	"github.com/bububa/deepsearch/tools/serper"
	"github.com/bububa/deepsearch/tools/webscraper"
)

// Runner runs one research question
type Runner interface {
	Run(ctx context.Context, question string, opts ...research.RunOption) (*research.Result, error)
}

// RunnerFactory builds a Runner from the configuration. The returned func releases its resources.
type RunnerFactory func(ctx context.Context, cfg *config.Config, logger *slog.Logger, observers ...research.Observer) (Runner, func(context.Context) error, error)

func defaultRunnerFactory(ctx context.Context, cfg *config.Config, logger *slog.Logger, observers ...research.Observer) (Runner, func(context.Context) error, error) {
	client, gen, err := newModelClients(cfg.LLM)
	if err != nil {
		return nil, nil, err
	}
	hooks := toolHooks(logger)
	searcher, err := newSearcher(cfg.Search, hooks...)
	if err != nil {
		return nil, nil, err
	}
	scraper := newScraper(cfg.Scraper, hooks...)
	// the exporter starts here, nothing below may fail without calling shutdown
	provider, shutdown, err := telemetry.Setup(ctx, cfg.Trace)
	if err != nil {
		return nil, nil, err
	}
	if cfg.Trace.Enabled {
		observers = append(observers, research.NewTracingObserver(provider.Tracer("github.com/bububa/deepsearch")))
	}

	answerModel := cfg.LLM.AnswerModel
	if answerModel == "" {
		answerModel = cfg.LLM.Model
	}
	r := research.New(
		research.NewChooser(client,
			research.WithModel(cfg.LLM.Model),
			research.WithTemperature(cfg.LLM.Temperature),
			research.WithMaxTokens(cfg.LLM.MaxTokens),
			research.WithCallLogger(logger),
		),
		research.NewSynthesizer(gen,
			research.WithModel(answerModel),
			research.WithTemperature(cfg.LLM.Temperature),
			research.WithMaxTokens(cfg.LLM.MaxTokens),
			research.WithCallLogger(logger),
		),
		searcher,
		research.WebScraper(scraper),
		research.WithMaxSteps(cfg.Agent.MaxSteps),
		research.WithResultCount(cfg.Agent.SearchResults),
		research.WithLogger(logger),
		research.WithObservers(observers...),
	)
	return r, shutdown, nil
}

// newModelClients returns the structured decision client and the answer generator of the provider
func newModelClients(cfg config.LLMConfig) (agents.Client, generator.Generator, error) {
	var (
		inst instructor.Instructor
		gen  generator.Generator
	)
	switch cfg.Provider {
	case config.ProviderAnthropic:
		opts := make([]anthropic.ClientOption, 0, 1)
		if cfg.BaseURL != "" {
			opts = append(opts, anthropic.WithBaseURL(cfg.BaseURL))
		}
		clt := anthropic.NewClient(cfg.APIKey, opts...)
		inst = instructor.FromAnthropic(clt, instructor.WithMode(instructor.ModeJSON), instructor.WithMaxRetries(cfg.MaxRetries), instructor.WithValidation())
		gen = anthropicgen.New(clt)
	case config.ProviderCohere:
		opts := make([]cohereoption.RequestOption, 0, 2)
		opts = append(opts, cohereoption.WithToken(cfg.APIKey))
		if cfg.BaseURL != "" {
			opts = append(opts, cohereoption.WithBaseURL(cfg.BaseURL))
		}
		clt := cohereclient.NewClient(opts...)
		inst = instructor.FromCohere(clt, instructor.WithMode(instructor.ModeJSON), instructor.WithMaxRetries(cfg.MaxRetries), instructor.WithValidation())
		gen = coheregen.New(clt)
	case config.ProviderOpenAI:
		oaiCfg := openai.DefaultConfig(cfg.APIKey)
		if cfg.BaseURL != "" {
			oaiCfg.BaseURL = cfg.BaseURL
		}
		clt := openai.NewClientWithConfig(oaiCfg)
		inst = instructor.FromOpenAI(clt, instructor.WithMode(instructor.ModeJSON), instructor.WithMaxRetries(cfg.MaxRetries), instructor.WithValidation())
		gen = openaigen.New(clt)
	default:
		return nil, nil, fmt.Errorf("unknown llm provider %q", cfg.Provider)
	}
	client, err := agents.NewClient(inst)
	if err != nil {
		return nil, nil, err
	}
	return client, gen, nil
}

func newSearcher(cfg config.SearchConfig, hooks ...tools.Option) (research.Searcher, error) {
	switch cfg.Engine {
	case config.EngineSerper:
		return serper.New(
			serper.WithAPIKey(cfg.APIKey),
			serper.WithLanguage(cfg.Language),
			serper.WithToolOptions(hooks...),
		), nil
	case config.EngineSearxNG:
		opts := []searxng.Option{
			searxng.WithBaseURL(cfg.BaseURL),
			searxng.WithLanguage(cfg.Language),
			searxng.WithCategory(cfg.Category),
			searxng.WithToolOptions(hooks...),
		}
		if len(cfg.Engines) > 0 {
			opts = append(opts, searxng.WithEngines(strings.Join(cfg.Engines, ",")))
		}
		return searxng.New(opts...), nil
	}
	return nil, fmt.Errorf("unknown search engine %q", cfg.Engine)
}

func newScraper(cfg config.ScraperConfig, hooks ...tools.Option) *webscraper.Webscraper {
	opts := []webscraper.Option{
		webscraper.WithTimeout(int(cfg.Timeout / time.Second)),
		webscraper.WithConcurrency(cfg.Concurrency),
		webscraper.WithMaxTokens(cfg.ContentTokens),
		webscraper.WithRespectRobots(cfg.RespectRobots),
		webscraper.WithToolOptions(hooks...),
	}
	if cfg.UserAgent != "" {
		opts = append(opts, webscraper.WithUserAgent(cfg.UserAgent))
	}
	if cfg.Encoding != "" {
		opts = append(opts, webscraper.WithTokenCounter(document.NewTokenCounter(cfg.Encoding)))
	}
	return webscraper.New(opts...)
}

// toolHooks logs every tool call at debug level and failures as warnings
func toolHooks(logger *slog.Logger) []tools.Option {
	return []tools.Option{
		tools.WithStartHook(func(ctx context.Context, tool tools.ITool, input any) {
			logger.DebugContext(ctx, "tool started", "tool", tool.Title(), "input", input)
		}),
		tools.WithErrorHook(func(ctx context.Context, tool tools.ITool, input any, err error) {
			logger.WarnContext(ctx, "tool failed", "tool", tool.Title(), "error", err)
		}),
	}
}

// progressObserver prints chosen actions as they happen
type progressObserver struct {
	research.NopObserver
	w io.Writer
}

func (o *progressObserver) OnAction(ctx context.Context, run research.RunInfo, step int, action research.Action) {
	switch a := action.(type) {
	case research.Search:
		fmt.Fprintf(o.w, "[%d/%d] %s (search: %s)\n", step+1, run.Budget, a.Title(), a.Query())
	case research.Scrape:
		fmt.Fprintf(o.w, "[%d/%d] %s (scrape: %s)\n", step+1, run.Budget, a.Title(), strings.Join(a.URLs(), ", "))
	default:
		fmt.Fprintf(o.w, "[%d/%d] %s\n", step+1, run.Budget, action.Title())
	}
}

// sources lists scraped urls then search result urls, without duplicates
func sources(result *research.Result) []string {
	seen := make(map[string]struct{})
	var ret []string
	add := func(u string) {
		if _, found := seen[u]; found || u == "" {
			return
		}
		seen[u] = struct{}{}
		ret = append(ret, u)
	}
	for _, s := range result.Scrapes {
		add(s.URL)
	}
	for _, q := range result.Queries {
		for _, r := range q.Results {
			add(r.URL)
		}
	}
	return ret
}
