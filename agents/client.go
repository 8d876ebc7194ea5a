package agents

import (
	"context"
	"errors"

	"github.com/bububa/instructor-go/pkg/instructor"
	cohere "github.com/cohere-ai/cohere-go/v2"
	anthropic "github.com/liushuangls/go-anthropic/v2"
	openai "github.com/sashabaranov/go-openai"

	"github.com/bububa/deepsearch/components"
)

// ErrUnsupportedClient is returned for instructor clients of an unknown provider
var ErrUnsupportedClient = errors.New("unsupported instructor client")

// Request is a structured completion request
type Request struct {
	Model       string
	Temperature float32
	MaxTokens   int
	Messages    []components.Message
}

// Client fills out with a schema conforming model reply
type Client interface {
	Complete(ctx context.Context, req Request, out any, resp *components.LLMResponse) error
}

// ClientFunc adapts a function to Client
type ClientFunc func(ctx context.Context, req Request, out any, resp *components.LLMResponse) error

func (f ClientFunc) Complete(ctx context.Context, req Request, out any, resp *components.LLMResponse) error {
	return f(ctx, req, out, resp)
}

// NewClient wraps an instructor client
func NewClient(clt instructor.Instructor) (Client, error) {
	switch c := clt.(type) {
	case *instructor.InstructorOpenAI:
		return &openaiClient{clt: c}, nil
	case *instructor.InstructorAnthropic:
		return &anthropicClient{clt: c}, nil
	case *instructor.InstructorCohere:
		return &cohereClient{clt: c}, nil
	}
	return nil, ErrUnsupportedClient
}

type openaiClient struct {
	clt *instructor.InstructorOpenAI
}

func (c *openaiClient) Complete(ctx context.Context, req Request, out any, resp *components.LLMResponse) error {
	chatReq := openai.ChatCompletionRequest{
		Model:               req.Model,
		Temperature:         req.Temperature,
		MaxCompletionTokens: req.MaxTokens,
	}
	for _, msg := range req.Messages {
		v := new(openai.ChatCompletionMessage)
		msg.ToOpenAI(v)
		chatReq.Messages = append(chatReq.Messages, *v)
	}
	res, err := c.clt.CreateChatCompletion(ctx, chatReq, out)
	if err != nil {
		return err
	}
	if resp != nil {
		resp.FromOpenAI(&res)
	}
	return nil
}

type anthropicClient struct {
	clt *instructor.InstructorAnthropic
}

func (c *anthropicClient) Complete(ctx context.Context, req Request, out any, resp *components.LLMResponse) error {
	chatReq := anthropic.MessagesRequest{
		Model:     anthropic.Model(req.Model),
		MaxTokens: req.MaxTokens,
	}
	if chatReq.MaxTokens <= 0 {
		chatReq.MaxTokens = 4096
	}
	if req.Temperature > 0 {
		temperature := req.Temperature
		chatReq.Temperature = &temperature
	}
	for _, msg := range req.Messages {
		if msg.Role() == components.SystemRole {
			if chatReq.System != "" {
				chatReq.System += "\n\n"
			}
			chatReq.System += msg.StringifiedContent()
			continue
		}
		v := new(anthropic.Message)
		msg.ToAnthropic(v)
		chatReq.Messages = append(chatReq.Messages, *v)
	}
	res, err := c.clt.CreateMessages(ctx, chatReq, out)
	if err != nil {
		return err
	}
	if resp != nil {
		resp.FromAnthropic(&res)
	}
	return nil
}

type cohereClient struct {
	clt *instructor.InstructorCohere
}

// Complete sends the last message as the cohere message and the rest as chat history
func (c *cohereClient) Complete(ctx context.Context, req Request, out any, resp *components.LLMResponse) error {
	if len(req.Messages) == 0 {
		return errors.New("no message to send")
	}
	lastIdx := len(req.Messages) - 1
	chatReq := cohere.ChatRequest{
		Message: req.Messages[lastIdx].StringifiedContent(),
	}
	if req.Model != "" {
		chatReq.Model = &req.Model
	}
	if req.Temperature > 0 {
		temperature := float64(req.Temperature)
		chatReq.Temperature = &temperature
	}
	if req.MaxTokens > 0 {
		maxTokens := req.MaxTokens
		chatReq.MaxTokens = &maxTokens
	}
	for _, msg := range req.Messages[:lastIdx] {
		v := new(cohere.Message)
		msg.ToCohere(v)
		chatReq.ChatHistory = append(chatReq.ChatHistory, v)
	}
	res, err := c.clt.Chat(ctx, &chatReq, out)
	if err != nil {
		return err
	}
	if resp != nil {
		resp.FromCohere(res)
	}
	return nil
}
