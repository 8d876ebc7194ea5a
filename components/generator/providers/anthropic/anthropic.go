package anthropic

import (
	"context"
	"io"

	anthropic "github.com/liushuangls/go-anthropic/v2"

	"github.com/bububa/deepsearch/components"
	"github.com/bububa/deepsearch/components/generator"
)

// DefaultMaxTokens is sent when a request leaves MaxTokens unset, anthropic requires it
const DefaultMaxTokens = 4096

// Generator streams messages from anthropic
type Generator struct {
	client *anthropic.Client
}

var _ generator.Generator = (*Generator)(nil)

func New(client *anthropic.Client) *Generator {
	return &Generator{client: client}
}

func (g *Generator) Stream(ctx context.Context, req generator.Request) (generator.Stream, error) {
	msgReq := anthropic.MessagesRequest{
		Model:     anthropic.Model(req.Model),
		System:    req.System,
		MaxTokens: req.MaxTokens,
	}
	if msgReq.MaxTokens <= 0 {
		msgReq.MaxTokens = DefaultMaxTokens
	}
	if req.Temperature > 0 {
		temperature := req.Temperature
		msgReq.Temperature = &temperature
	}
	for _, msg := range req.Messages {
		if msg.Role() == components.SystemRole {
			if msgReq.System != "" {
				msgReq.System += "\n\n"
			}
			msgReq.System += msg.StringifiedContent()
			continue
		}
		v := new(anthropic.Message)
		msg.ToAnthropic(v)
		msgReq.Messages = append(msgReq.Messages, *v)
	}
	ctx, cancel := context.WithCancel(ctx)
	s := &stream{
		chunks: make(chan string, 64),
		cancel: cancel,
	}
	go s.run(ctx, g.client, msgReq)
	return s, nil
}

// stream bridges the callback based anthropic stream to Recv calls.
// err and usage are written before chunks is closed.
type stream struct {
	chunks chan string
	cancel context.CancelFunc
	err    error
	usage  *components.LLMUsage
}

func (s *stream) run(ctx context.Context, client *anthropic.Client, req anthropic.MessagesRequest) {
	defer close(s.chunks)
	resp, err := client.CreateMessagesStream(ctx, anthropic.MessagesStreamRequest{
		MessagesRequest: req,
		OnContentBlockDelta: func(data anthropic.MessagesEventContentBlockDeltaData) {
			if data.Delta.Text == nil {
				return
			}
			select {
			case s.chunks <- *data.Delta.Text:
			case <-ctx.Done():
			}
		},
	})
	if err != nil {
		s.err = err
		return
	}
	s.usage = &components.LLMUsage{
		InputTokens:  resp.Usage.InputTokens,
		OutputTokens: resp.Usage.OutputTokens,
	}
}

func (s *stream) Recv() (string, error) {
	chunk, ok := <-s.chunks
	if ok {
		return chunk, nil
	}
	if s.err != nil {
		return "", s.err
	}
	return "", io.EOF
}

func (s *stream) Usage() *components.LLMUsage {
	return s.usage
}

func (s *stream) Close() error {
	s.cancel()
	for range s.chunks {
	}
	return nil
}
