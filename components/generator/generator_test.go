package generator

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bububa/deepsearch/components"
)

func TestCollect(t *testing.T) {
	var chunks []string
	stream := NewStaticStream(&components.LLMUsage{InputTokens: 3, OutputTokens: 4}, "Paris ", "", "is the capital.")
	text, err := Collect(stream, func(chunk string) {
		chunks = append(chunks, chunk)
	})
	require.NoError(t, err)
	assert.Equal(t, "Paris is the capital.", text)
	assert.Equal(t, []string{"Paris ", "is the capital."}, chunks)
	assert.Equal(t, 7, stream.Usage().Total())
}

func TestCollectError(t *testing.T) {
	boom := errors.New("connection reset")
	stream := NewStaticStream(nil, "partial").WithError(boom)
	text, err := Collect(stream, nil)
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, text)
}
