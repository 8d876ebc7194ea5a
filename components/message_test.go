package components

import (
	"bytes"
	"encoding/json"
	"testing"

	openai "github.com/sashabaranov/go-openai"

	"github.com/bububa/deepsearch/schema"
)

func TestMessageMarshaler(t *testing.T) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	dec := json.NewDecoder(&buf)
	msg := NewMessage(UserRole, schema.NewString("test string schema")).SetTurnID("turn-1")
	if err := enc.Encode(msg); err != nil {
		t.Fatal(err)
		return
	}
	var decodeMsg Message
	if err := dec.Decode(&decodeMsg); err != nil {
		t.Fatal(err)
		return
	}
	if decodeMsg.StringifiedContent() != msg.StringifiedContent() {
		t.Errorf("string match error, expect:%s, got:%s", msg.StringifiedContent(), decodeMsg.StringifiedContent())
	}
	if decodeMsg.Role() != UserRole {
		t.Errorf("role match error, expect:%s, got:%s", UserRole, decodeMsg.Role())
	}
	if decodeMsg.TurnID() != "turn-1" {
		t.Errorf("turnID match error, expect:turn-1, got:%s", decodeMsg.TurnID())
	}
}

func TestMessageToOpenAI(t *testing.T) {
	msg := NewMessage(AssistantRole, schema.NewInput("the capital of France is Paris"))
	var dist openai.ChatCompletionMessage
	msg.ToOpenAI(&dist)
	if dist.Role != openai.ChatMessageRoleAssistant {
		t.Errorf("expect role assistant, got %s", dist.Role)
	}
	if dist.Content != "the capital of France is Paris" {
		t.Errorf("unexpected content %s", dist.Content)
	}
}

func TestLLMUsageMerge(t *testing.T) {
	usage := new(LLMUsage)
	usage.Merge(&LLMUsage{InputTokens: 10, OutputTokens: 2})
	usage.Merge(nil)
	usage.Merge(&LLMUsage{InputTokens: 5, OutputTokens: 3})
	if usage.InputTokens != 15 || usage.OutputTokens != 5 || usage.Total() != 20 {
		t.Errorf("unexpected usage %+v", usage)
	}
}
