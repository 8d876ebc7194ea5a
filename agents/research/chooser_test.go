package research

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bububa/deepsearch/agents"
	"github.com/bububa/deepsearch/components"
	"github.com/bububa/deepsearch/components/evidence"
	"github.com/bububa/deepsearch/components/generator"
	"github.com/bububa/deepsearch/schema"
)

func newTask(question string) *Task {
	ev := evidence.New(evidence.DefaultBudget)
	ev.ReportQueries(evidence.QueryRecord{
		Query: "eiffel tower height",
		Results: []evidence.SearchResult{{
			Title:   "Eiffel Tower",
			URL:     "https://en.wikipedia.org/wiki/Eiffel_Tower",
			Snippet: "The tower is 330 metres tall.",
		}},
	})
	ev.IncrementStep()
	return &Task{
		Question: question,
		Evidence: ev,
		Now:      time.Date(2024, 3, 4, 10, 30, 0, 0, time.UTC),
	}
}

func TestChooserChoose(t *testing.T) {
	var req agents.Request
	client := agents.ClientFunc(func(ctx context.Context, r agents.Request, out any, resp *components.LLMResponse) error {
		req = r
		decision, ok := out.(*Decision)
		require.True(t, ok)
		decision.Title = "Reading the article"
		decision.Reasoning = "the snippet lacks the antenna height"
		decision.Type = ScrapeAction
		decision.URLs = []string{"https://en.wikipedia.org/wiki/Eiffel_Tower"}
		resp.Usage = &components.LLMUsage{InputTokens: 50, OutputTokens: 10}
		return nil
	})
	chooser := NewChooser(client, WithModel("gpt-4o"), WithTemperature(0.1), WithMaxTokens(512))
	task := newTask("How tall is the Eiffel Tower?")

	action, err := chooser.Choose(context.Background(), task)
	require.NoError(t, err)
	scrape, ok := action.(Scrape)
	require.True(t, ok)
	assert.Equal(t, []string{"https://en.wikipedia.org/wiki/Eiffel_Tower"}, scrape.URLs())
	assert.Equal(t, "Reading the article", scrape.Title())
	assert.Equal(t, 60, task.Usage.Total())

	assert.Equal(t, "gpt-4o", req.Model)
	assert.Equal(t, float32(0.1), req.Temperature)
	assert.Equal(t, 512, req.MaxTokens)
	require.Len(t, req.Messages, 2)
	system := req.Messages[0].StringifiedContent()
	assert.Contains(t, system, "# IDENTITY and PURPOSE")
	assert.Contains(t, system, "## Current date and time\n2024-03-04 10:30:00 UTC (Monday)")
	assert.Contains(t, system, `## Query: "eiffel tower height"`)
	assert.Contains(t, system, "Step 2 of 10.")
	assert.NotContains(t, system, "## Conversation history")
	assert.Equal(t, "How tall is the Eiffel Tower?", req.Messages[1].StringifiedContent())
}

func TestChooserHistoryInSystemPrompt(t *testing.T) {
	var req agents.Request
	client := agents.ClientFunc(func(ctx context.Context, r agents.Request, out any, resp *components.LLMResponse) error {
		req = r
		decision := out.(*Decision)
		decision.Title = "Answering"
		decision.Reasoning = "already known"
		decision.Type = AnswerAction
		return nil
	})
	task := newTask("And its height?")
	task.History = []components.Message{
		*components.NewMessage(components.UserRole, schema.NewString("Tell me about the Eiffel Tower.")),
	}
	_, err := NewChooser(client).Choose(context.Background(), task)
	require.NoError(t, err)
	require.Len(t, req.Messages, 2)
	system := req.Messages[0].StringifiedContent()
	assert.Contains(t, system, "## Conversation history")
	assert.Contains(t, system, "user: Tell me about the Eiffel Tower.")
}

func TestChooserLogsModelCalls(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	boom := errors.New("rate limited")
	fail := true
	client := agents.ClientFunc(func(ctx context.Context, r agents.Request, out any, resp *components.LLMResponse) error {
		if fail {
			return boom
		}
		decision := out.(*Decision)
		decision.Title = "Answering"
		decision.Reasoning = "enough"
		decision.Type = AnswerAction
		resp.Usage = &components.LLMUsage{InputTokens: 7, OutputTokens: 3}
		return nil
	})
	chooser := NewChooser(client, WithModel("gpt-4o"), WithCallLogger(logger))

	_, err := chooser.Choose(context.Background(), newTask("question"))
	require.ErrorIs(t, err, boom)
	out := buf.String()
	assert.Contains(t, out, `"msg":"model call started"`)
	assert.Contains(t, out, `"level":"WARN","msg":"model call failed"`)
	assert.Contains(t, out, `"agent":"action_chooser"`)
	assert.Contains(t, out, `"error":"rate limited"`)

	buf.Reset()
	fail = false
	_, err = chooser.Choose(context.Background(), newTask("question"))
	require.NoError(t, err)
	out = buf.String()
	assert.Contains(t, out, `"msg":"model call finished"`)
	assert.Contains(t, out, `"input_tokens":7`)
	assert.NotContains(t, out, "model call failed")
}

func TestChooserInvalidDecision(t *testing.T) {
	client := agents.ClientFunc(func(ctx context.Context, r agents.Request, out any, resp *components.LLMResponse) error {
		decision := out.(*Decision)
		decision.Title = "Searching"
		decision.Reasoning = "need sources"
		decision.Type = SearchAction
		return nil
	})
	_, err := NewChooser(client).Choose(context.Background(), newTask("question"))
	assert.ErrorIs(t, err, ErrInvalidDecision)
}

func TestChooserClientError(t *testing.T) {
	boom := errors.New("context length exceeded")
	client := agents.ClientFunc(func(context.Context, agents.Request, any, *components.LLMResponse) error {
		return boom
	})
	_, err := NewChooser(client).Choose(context.Background(), newTask("question"))
	assert.ErrorIs(t, err, boom)
}

type fakeGenerator struct {
	req    generator.Request
	stream generator.Stream
	err    error
}

func (g *fakeGenerator) Stream(ctx context.Context, req generator.Request) (generator.Stream, error) {
	g.req = req
	return g.stream, g.err
}

func TestSynthesizer(t *testing.T) {
	gen := &fakeGenerator{
		stream: generator.NewStaticStream(&components.LLMUsage{InputTokens: 200, OutputTokens: 30}, "The tower ", "is 330 m", " tall."),
	}
	synth := NewSynthesizer(gen, WithModel("claude-3-5-sonnet-latest"), WithMaxTokens(2048))
	task := newTask("How tall is the Eiffel Tower?")
	task.History = []components.Message{
		*components.NewMessage(components.UserRole, schema.NewString("Tell me about Paris landmarks.")),
	}
	var chunks []string
	answer, err := synth.Synthesize(context.Background(), task, ModeComprehensive, func(chunk string) {
		chunks = append(chunks, chunk)
	})
	require.NoError(t, err)
	assert.Equal(t, "The tower is 330 m tall.", answer)
	assert.Equal(t, []string{"The tower ", "is 330 m", " tall."}, chunks)
	assert.Equal(t, 230, task.Usage.Total())

	assert.Equal(t, "claude-3-5-sonnet-latest", gen.req.Model)
	assert.Equal(t, 2048, gen.req.MaxTokens)
	assert.Contains(t, gen.req.System, comprehensiveInstructions)
	assert.NotContains(t, gen.req.System, bestEffortInstructions)
	assert.Contains(t, gen.req.System, "## Search history")
	assert.NotContains(t, gen.req.System, "## Conversation history")
	assert.NotContains(t, gen.req.System, "Tell me about Paris landmarks.")
	require.Len(t, gen.req.Messages, 2)
	assert.Equal(t, "Tell me about Paris landmarks.", gen.req.Messages[0].StringifiedContent())
	assert.Equal(t, components.UserRole, gen.req.Messages[1].Role())
	assert.Equal(t, "How tall is the Eiffel Tower?", gen.req.Messages[1].StringifiedContent())
}

func TestSynthesizerBestEffort(t *testing.T) {
	gen := &fakeGenerator{stream: generator.NewStaticStream(nil, "partial")}
	task := newTask("question")
	answer, err := NewSynthesizer(gen).Synthesize(context.Background(), task, ModeBestEffort, nil)
	require.NoError(t, err)
	assert.Equal(t, "partial", answer)
	assert.Contains(t, gen.req.System, bestEffortInstructions)
	assert.Equal(t, 0, task.Usage.Total())
}

func TestSynthesizerStreamError(t *testing.T) {
	boom := errors.New("connection reset")
	gen := &fakeGenerator{stream: generator.NewStaticStream(nil, "half an ").WithError(boom)}
	var chunks []string
	answer, err := NewSynthesizer(gen).Synthesize(context.Background(), newTask("question"), ModeComprehensive, func(chunk string) {
		chunks = append(chunks, chunk)
	})
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, answer)
	assert.Equal(t, []string{"half an "}, chunks)

	gen = &fakeGenerator{err: boom}
	_, err = NewSynthesizer(gen).Synthesize(context.Background(), newTask("question"), ModeComprehensive, nil)
	assert.ErrorIs(t, err, boom)
}
