// Package generator streams free text completions from a language model.
package generator

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/bububa/deepsearch/components"
)

// Request is a text generation request
type Request struct {
	Model string
	// System is the system prompt, sent the way each provider expects it
	System      string
	Messages    []components.Message
	Temperature float32
	MaxTokens   int
}

// Stream yields generated text chunks. Recv returns io.EOF once generation is complete.
type Stream interface {
	Recv() (string, error)
	// Usage returns token usage, available after Recv returned io.EOF. May be nil.
	Usage() *components.LLMUsage
	Close() error
}

// Generator starts text generation streams
type Generator interface {
	Stream(context.Context, Request) (Stream, error)
}

// Collect drains the stream, calling onChunk for every non empty chunk, and returns
// the concatenated text. The stream is closed on return. On error no text is returned.
func Collect(stream Stream, onChunk func(string)) (string, error) {
	defer stream.Close()
	var sb strings.Builder
	for {
		chunk, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			return sb.String(), nil
		}
		if err != nil {
			return "", err
		}
		if chunk == "" {
			continue
		}
		sb.WriteString(chunk)
		if onChunk != nil {
			onChunk(chunk)
		}
	}
}

// StaticStream is a Stream over pre computed chunks
type StaticStream struct {
	chunks []string
	offset int
	usage  *components.LLMUsage
	err    error
}

var _ Stream = (*StaticStream)(nil)

// NewStaticStream returns a Stream which yields chunks then io.EOF
func NewStaticStream(usage *components.LLMUsage, chunks ...string) *StaticStream {
	return &StaticStream{chunks: chunks, usage: usage}
}

// WithError makes the stream fail with err after its chunks are consumed
func (s *StaticStream) WithError(err error) *StaticStream {
	s.err = err
	return s
}

func (s *StaticStream) Recv() (string, error) {
	if s.offset >= len(s.chunks) {
		if s.err != nil {
			return "", s.err
		}
		return "", io.EOF
	}
	chunk := s.chunks[s.offset]
	s.offset++
	return chunk, nil
}

func (s *StaticStream) Usage() *components.LLMUsage {
	return s.usage
}

func (s *StaticStream) Close() error {
	return nil
}
