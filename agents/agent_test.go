package agents

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bububa/deepsearch/components"
	"github.com/bububa/deepsearch/components/systemprompt/simple"
	"github.com/bububa/deepsearch/schema"
)

type reply struct {
	schema.Base
	Answer string `json:"answer" validate:"required"`
}

func TestAgentRun(t *testing.T) {
	var got Request
	clt := ClientFunc(func(ctx context.Context, req Request, out any, resp *components.LLMResponse) error {
		got = req
		out.(*reply).Answer = "Paris"
		resp.Usage = &components.LLMUsage{InputTokens: 10, OutputTokens: 1}
		return nil
	})
	var (
		started, ended bool
	)
	agent := NewAgent[schema.Input, reply](
		WithClient(clt),
		WithModel("gpt-4o-mini"),
		WithTemperature(0.2),
		WithSystemPromptGenerator(simple.New("You answer geography questions.")),
	)
	agent.SetStartHook(func(context.Context, *Agent[schema.Input, reply], *schema.Input) { started = true })
	agent.SetEndHook(func(context.Context, *Agent[schema.Input, reply], *schema.Input, *reply, *components.LLMResponse) {
		ended = true
	})
	var (
		out     reply
		llmResp components.LLMResponse
	)
	require.NoError(t, agent.Run(context.Background(), schema.NewInput("capital of France?"), &out, &llmResp))
	assert.Equal(t, "Paris", out.Answer)
	assert.True(t, started)
	assert.True(t, ended)
	assert.Equal(t, 11, llmResp.Usage.Total())

	require.Len(t, got.Messages, 2)
	assert.Equal(t, components.SystemRole, got.Messages[0].Role())
	assert.Equal(t, "You answer geography questions.", got.Messages[0].StringifiedContent())
	assert.Equal(t, "capital of France?", got.Messages[1].StringifiedContent())
	assert.Equal(t, "gpt-4o-mini", got.Model)
	assert.Equal(t, 2, agent.Memory().MessageCount())
}

func TestAgentRunError(t *testing.T) {
	boom := errors.New("rate limited")
	var hookErr error
	agent := NewAgent[schema.Input, reply](WithClient(ClientFunc(func(context.Context, Request, any, *components.LLMResponse) error {
		return boom
	})))
	agent.SetErrorHook(func(_ context.Context, _ *Agent[schema.Input, reply], _ *schema.Input, _ *components.LLMResponse, err error) {
		hookErr = err
	})
	var out reply
	err := agent.Run(context.Background(), schema.NewInput("hi"), &out, nil)
	assert.ErrorIs(t, err, boom)
	assert.ErrorIs(t, hookErr, boom)
	assert.Equal(t, 1, agent.Memory().MessageCount())
}

func TestAgentWithoutClient(t *testing.T) {
	agent := NewAgent[schema.Input, reply]()
	var out reply
	assert.ErrorIs(t, agent.Run(context.Background(), schema.NewInput("hi"), &out, nil), ErrNoClient)
}
