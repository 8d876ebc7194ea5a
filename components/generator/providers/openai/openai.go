package openai

import (
	"context"

	openai "github.com/sashabaranov/go-openai"

	"github.com/bububa/deepsearch/components"
	"github.com/bububa/deepsearch/components/generator"
)

// Generator streams chat completions from an OpenAI compatible endpoint
type Generator struct {
	client *openai.Client
}

var _ generator.Generator = (*Generator)(nil)

func New(client *openai.Client) *Generator {
	return &Generator{client: client}
}

func (g *Generator) Stream(ctx context.Context, req generator.Request) (generator.Stream, error) {
	chatReq := openai.ChatCompletionRequest{
		Model:               req.Model,
		Temperature:         req.Temperature,
		MaxCompletionTokens: req.MaxTokens,
		Stream:              true,
		StreamOptions:       &openai.StreamOptions{IncludeUsage: true},
	}
	if req.System != "" {
		chatReq.Messages = append(chatReq.Messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: req.System,
		})
	}
	for _, msg := range req.Messages {
		v := new(openai.ChatCompletionMessage)
		msg.ToOpenAI(v)
		chatReq.Messages = append(chatReq.Messages, *v)
	}
	s, err := g.client.CreateChatCompletionStream(ctx, chatReq)
	if err != nil {
		return nil, err
	}
	return &stream{s: s}, nil
}

type stream struct {
	s     *openai.ChatCompletionStream
	usage *components.LLMUsage
}

func (s *stream) Recv() (string, error) {
	for {
		resp, err := s.s.Recv()
		if err != nil {
			return "", err
		}
		if resp.Usage != nil {
			s.usage = &components.LLMUsage{
				InputTokens:  resp.Usage.PromptTokens,
				OutputTokens: resp.Usage.CompletionTokens,
			}
		}
		if len(resp.Choices) == 0 {
			continue
		}
		return resp.Choices[0].Delta.Content, nil
	}
}

func (s *stream) Usage() *components.LLMUsage {
	return s.usage
}

func (s *stream) Close() error {
	return s.s.Close()
}
