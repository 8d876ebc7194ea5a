package components

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bububa/deepsearch/schema"
)

func TestMemoryOverflow(t *testing.T) {
	mem := NewMemory(3)
	for _, txt := range []string{"one", "two", "three", "four"} {
		mem.NewMessage(UserRole, schema.NewString(txt))
	}
	history := mem.History()
	require.Len(t, history, 3)
	assert.Equal(t, "two", history[0].StringifiedContent())
	assert.Equal(t, "four", history[2].StringifiedContent())
}

func TestMemoryTurns(t *testing.T) {
	mem := NewMemory(0)
	first := mem.NewTurn()
	mem.NewMessage(UserRole, schema.NewString("What is the capital of France?"))
	mem.NewMessage(AssistantRole, schema.NewString("Paris."))
	second := mem.NewTurn()
	require.NotEqual(t, first, second)
	mem.NewMessage(UserRole, schema.NewString("And of Spain?"))
	require.Equal(t, 3, mem.MessageCount())

	require.NoError(t, mem.DeleteTurn(second))
	assert.Equal(t, 2, mem.MessageCount())
	assert.Equal(t, first, mem.TurnID())
	assert.Error(t, mem.DeleteTurn("missing"))

	mem.Reset()
	assert.Zero(t, mem.MessageCount())
	assert.Empty(t, mem.TurnID())
}

func TestMemoryHistoryIsCopy(t *testing.T) {
	mem := NewMemory(0)
	mem.NewMessage(UserRole, schema.NewString("hello"))
	history := mem.History()
	history[0] = *NewMessage(AssistantRole, schema.NewString("changed"))
	assert.Equal(t, "hello", mem.History()[0].StringifiedContent())
}

func TestRenderHistory(t *testing.T) {
	msgs := []Message{
		*NewMessage(UserRole, schema.NewString("hi")),
		*NewMessage(AssistantRole, schema.NewString("hello")),
	}
	assert.Equal(t, "user: hi\n\nassistant: hello", RenderHistory(msgs))
}
