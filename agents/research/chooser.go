package research

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bububa/deepsearch/agents"
	"github.com/bububa/deepsearch/components"
	"github.com/bububa/deepsearch/components/systemprompt"
	"github.com/bububa/deepsearch/components/systemprompt/cot"
	"github.com/bububa/deepsearch/schema"
)

// ActionChooser picks the next action of a run
type ActionChooser interface {
	Choose(ctx context.Context, task *Task) (Action, error)
}

// ChooserFunc adapts a function to ActionChooser
type ChooserFunc func(ctx context.Context, task *Task) (Action, error)

func (f ChooserFunc) Choose(ctx context.Context, task *Task) (Action, error) {
	return f(ctx, task)
}

// ChooserInput is the user message sent to the chooser
type ChooserInput struct {
	schema.Base
	Question string `json:"question" jsonschema:"title=question,description=The question to research." validate:"required"`
}

func (i ChooserInput) String() string {
	return i.Question
}

// Chooser asks the model for a structured Decision
type Chooser struct {
	client      agents.Client
	model       string
	temperature float32
	maxTokens   int
	logger      *slog.Logger
}

var _ ActionChooser = (*Chooser)(nil)

// NewChooser returns a Chooser calling the model through client
func NewChooser(client agents.Client, opts ...ModelOption) *Chooser {
	var cfg modelConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	cfg.setDefaults()
	return &Chooser{
		client:      client,
		model:       cfg.model,
		temperature: cfg.temperature,
		maxTokens:   cfg.maxTokens,
		logger:      cfg.logger,
	}
}

// Choose asks the model for the next action. Decisions missing the payload their
// type requires fail with ErrInvalidDecision.
func (c *Chooser) Choose(ctx context.Context, task *Task) (Action, error) {
	agent := agents.NewAgent[ChooserInput, Decision](
		agents.WithClient(c.client),
		agents.WithModel(c.model),
		agents.WithTemperature(c.temperature),
		agents.WithMaxTokens(c.maxTokens),
		agents.WithSystemPromptGenerator(c.systemPrompt(task)),
		agents.WithName("action_chooser"),
	)
	c.setHooks(agent)
	var (
		decision Decision
		llmResp  components.LLMResponse
	)
	if err := agent.Run(ctx, &ChooserInput{Question: task.Question}, &decision, &llmResp); err != nil {
		return nil, err
	}
	task.Usage.Merge(llmResp.Usage)
	return decision.Action()
}

func (c *Chooser) setHooks(agent *agents.Agent[ChooserInput, Decision]) {
	agent.SetStartHook(func(ctx context.Context, a *agents.Agent[ChooserInput, Decision], _ *ChooserInput) {
		c.logger.DebugContext(ctx, "model call started", "agent", a.Name(), "model", c.model)
	})
	agent.SetEndHook(func(ctx context.Context, a *agents.Agent[ChooserInput, Decision], _ *ChooserInput, out *Decision, resp *components.LLMResponse) {
		attrs := []any{"agent", a.Name(), "model", c.model, "type", out.Type}
		if resp != nil && resp.Usage != nil {
			attrs = append(attrs, "input_tokens", resp.Usage.InputTokens, "output_tokens", resp.Usage.OutputTokens)
		}
		c.logger.DebugContext(ctx, "model call finished", attrs...)
	})
	agent.SetErrorHook(func(ctx context.Context, a *agents.Agent[ChooserInput, Decision], _ *ChooserInput, _ *components.LLMResponse, err error) {
		c.logger.WarnContext(ctx, "model call failed", "agent", a.Name(), "model", c.model, "error", err)
	})
}

func (c *Chooser) systemPrompt(task *Task) systemprompt.Generator {
	providers := task.ContextProviders()
	if task.Evidence != nil {
		providers = append(providers, systemprompt.NewProviderFunc("Research progress", func() string {
			return fmt.Sprintf("Step %d of %d. %d steps left before an answer is forced.",
				task.Evidence.Step()+1, task.Evidence.Budget(), task.Evidence.Budget()-task.Evidence.Step())
		}))
	}
	return cot.New(
		cot.WithBackground(chooserBackground...),
		cot.WithSteps(chooserSteps...),
		cot.WithOutputInstructs(chooserOutputInstructs...),
		cot.WithContextProviders(providers...),
	)
}
