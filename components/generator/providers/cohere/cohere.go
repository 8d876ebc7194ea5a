package cohere

import (
	"context"

	cohere "github.com/cohere-ai/cohere-go/v2"
	cohereclient "github.com/cohere-ai/cohere-go/v2/client"

	"github.com/bububa/deepsearch/components"
	"github.com/bububa/deepsearch/components/generator"
)

// Generator calls cohere chat and yields the whole reply as a single chunk
type Generator struct {
	client *cohereclient.Client
}

var _ generator.Generator = (*Generator)(nil)

func New(client *cohereclient.Client) *Generator {
	return &Generator{client: client}
}

func (g *Generator) Stream(ctx context.Context, req generator.Request) (generator.Stream, error) {
	chatReq := cohere.ChatRequest{}
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
	if req.System != "" {
		preamble := req.System
		chatReq.Preamble = &preamble
	}
	lastIdx := len(req.Messages) - 1
	for idx, msg := range req.Messages {
		if idx == lastIdx {
			chatReq.Message = msg.StringifiedContent()
			break
		}
		v := new(cohere.Message)
		msg.ToCohere(v)
		chatReq.ChatHistory = append(chatReq.ChatHistory, v)
	}
	resp, err := g.client.Chat(ctx, &chatReq)
	if err != nil {
		return nil, err
	}
	var llmResp components.LLMResponse
	llmResp.FromCohere(resp)
	return generator.NewStaticStream(llmResp.Usage, resp.Text), nil
}
