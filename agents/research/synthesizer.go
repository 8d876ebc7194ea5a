package research

import (
	"context"
	"log/slog"

	"github.com/bububa/deepsearch/components"
	"github.com/bububa/deepsearch/components/generator"
	"github.com/bububa/deepsearch/components/systemprompt/simple"
	"github.com/bububa/deepsearch/schema"
)

// AnswerSynthesizer writes the final answer of a run
type AnswerSynthesizer interface {
	// Synthesize returns the full answer once generation completed. onChunk, when
	// not nil, receives the text as it is generated.
	Synthesize(ctx context.Context, task *Task, mode Mode, onChunk func(string)) (string, error)
}

// SynthesizerFunc adapts a function to AnswerSynthesizer
type SynthesizerFunc func(ctx context.Context, task *Task, mode Mode, onChunk func(string)) (string, error)

func (f SynthesizerFunc) Synthesize(ctx context.Context, task *Task, mode Mode, onChunk func(string)) (string, error) {
	return f(ctx, task, mode, onChunk)
}

// Synthesizer streams the answer from a text generator
type Synthesizer struct {
	generator   generator.Generator
	model       string
	temperature float32
	maxTokens   int
	logger      *slog.Logger
}

var _ AnswerSynthesizer = (*Synthesizer)(nil)

func NewSynthesizer(gen generator.Generator, opts ...ModelOption) *Synthesizer {
	var cfg modelConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	cfg.setDefaults()
	return &Synthesizer{
		generator:   gen,
		model:       cfg.model,
		temperature: cfg.temperature,
		maxTokens:   cfg.maxTokens,
		logger:      cfg.logger,
	}
}

func (s *Synthesizer) Synthesize(ctx context.Context, task *Task, mode Mode, onChunk func(string)) (string, error) {
	// the conversation goes in as chat messages, not in the system prompt
	prompt := simple.New(answerPrompt(mode), simple.WithContextProviders(task.contextProviders(false)...))
	messages := make([]components.Message, 0, len(task.History)+1)
	messages = append(messages, task.History...)
	messages = append(messages, *components.NewMessage(components.UserRole, schema.NewString(task.Question)))
	stream, err := s.generator.Stream(ctx, generator.Request{
		Model:       s.model,
		System:      prompt.Generate(),
		Messages:    messages,
		Temperature: s.temperature,
		MaxTokens:   s.maxTokens,
	})
	if err != nil {
		s.logger.WarnContext(ctx, "model call failed", "agent", "answer_synthesizer", "model", s.model, "mode", mode.String(), "error", err)
		return "", err
	}
	answer, err := generator.Collect(stream, onChunk)
	if err != nil {
		s.logger.WarnContext(ctx, "answer stream failed", "agent", "answer_synthesizer", "model", s.model, "mode", mode.String(), "error", err)
		return "", err
	}
	task.Usage.Merge(stream.Usage())
	s.logger.DebugContext(ctx, "model call finished", "agent", "answer_synthesizer", "model", s.model, "mode", mode.String(), "answer_len", len(answer))
	return answer, nil
}
