package agents

import (
	"context"
	"errors"

	"github.com/bububa/deepsearch/components"
	"github.com/bububa/deepsearch/components/systemprompt"
	"github.com/bububa/deepsearch/components/systemprompt/cot"
	"github.com/bububa/deepsearch/schema"
)

// ErrNoClient is returned when an agent runs without a client
var ErrNoClient = errors.New("agent has no client")

// Config represents general agents configuration
type Config struct {
	// client Client for interacting with the language model
	client Client
	//	memory  Memory component for storing chat history.
	memory *components.Memory
	//	systemPromptGenerator Component for generating system prompts.
	systemPromptGenerator systemprompt.Generator
	// model llm model
	model string
	// temperature Temperature for response generation, typically ranging from 0 to 1.
	temperature float32
	// maxTokens Maximum number of tokens allowed in the response
	maxTokens int
	// name is Agent name presentation
	name string
}

// Agent makes structured calls to a language model.
// It manages memory, generates the system prompt and decodes the reply into O.
type Agent[I schema.Schema, O schema.Schema] struct {
	Config
	startHook func(context.Context, *Agent[I, O], *I)
	endHook   func(context.Context, *Agent[I, O], *I, *O, *components.LLMResponse)
	errorHook func(context.Context, *Agent[I, O], *I, *components.LLMResponse, error)
}

// NewAgent initializes the Agent
func NewAgent[I schema.Schema, O schema.Schema](options ...Option) *Agent[I, O] {
	ret := new(Agent[I, O])
	for _, opt := range options {
		opt(&ret.Config)
	}
	if ret.memory == nil {
		ret.memory = components.NewMemory(0)
	}
	if ret.systemPromptGenerator == nil {
		ret.systemPromptGenerator = cot.New()
	}
	return ret
}

func (a *Agent[I, O]) Memory() *components.Memory {
	return a.memory
}

func (a Agent[I, O]) Name() string {
	return a.name
}

func (a *Agent[I, O]) SetStartHook(fn func(context.Context, *Agent[I, O], *I)) {
	a.startHook = fn
}

func (a *Agent[I, O]) SetEndHook(fn func(context.Context, *Agent[I, O], *I, *O, *components.LLMResponse)) {
	a.endHook = fn
}

func (a *Agent[I, O]) SetErrorHook(fn func(context.Context, *Agent[I, O], *I, *components.LLMResponse, error)) {
	a.errorHook = fn
}

func (a *Agent[I, O]) request() Request {
	messages := make([]components.Message, 0, a.memory.MessageCount()+1)
	messages = append(messages, *components.NewMessage(components.SystemRole, schema.String(a.systemPromptGenerator.Generate())))
	messages = append(messages, a.memory.History()...)
	return Request{
		Model:       a.model,
		Temperature: a.temperature,
		MaxTokens:   a.maxTokens,
		Messages:    messages,
	}
}

// Run runs the agent with the given user input. The input and the reply are
// appended to the memory as a new turn.
func (a *Agent[I, O]) Run(ctx context.Context, userInput *I, output *O, llmResp *components.LLMResponse) error {
	if a.client == nil {
		return ErrNoClient
	}
	if fn := a.startHook; fn != nil {
		fn(ctx, a, userInput)
	}
	if userInput != nil {
		a.memory.NewTurn()
		a.memory.NewMessage(components.UserRole, *userInput)
	}
	if err := a.client.Complete(ctx, a.request(), output, llmResp); err != nil {
		if fn := a.errorHook; fn != nil {
			fn(ctx, a, userInput, llmResp, err)
		}
		return err
	}
	a.memory.NewMessage(components.AssistantRole, *output)
	if fn := a.endHook; fn != nil {
		fn(ctx, a, userInput, output, llmResp)
	}
	return nil
}
