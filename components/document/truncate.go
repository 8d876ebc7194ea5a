package document

import (
	"fmt"
	"strings"

	"github.com/clipperhouse/uax29/sentences"
	"github.com/pkoukk/tiktoken-go"
)

// DefaultEncoding is the tiktoken encoding used by recent OpenAI chat models
const DefaultEncoding = "cl100k_base"

// TokenCounter counts tokens in a string
type TokenCounter interface {
	Count(text string) int
}

// WordCounter approximates tokens by whitespace separated words
type WordCounter struct{}

func (c WordCounter) Count(text string) int {
	return len(strings.Fields(text))
}

// TikTokenCounter counts tokens with a tiktoken encoding
type TikTokenCounter struct {
	tke *tiktoken.Tiktoken
}

// NewTikTokenCounter creates a new TikTokenCounter using the specified encoding.
func NewTikTokenCounter(encoding string) (*TikTokenCounter, error) {
	tke, err := tiktoken.GetEncoding(encoding)
	if err != nil {
		return nil, fmt.Errorf("failed to get encoding: %w", err)
	}
	return &TikTokenCounter{tke: tke}, nil
}

func (c *TikTokenCounter) Count(text string) int {
	return len(c.tke.Encode(text, nil, nil))
}

// NewTokenCounter returns a tiktoken counter, or a WordCounter when the encoding
// can not be loaded (tiktoken downloads its ranks on first use).
func NewTokenCounter(encoding string) TokenCounter {
	if encoding == "" {
		encoding = DefaultEncoding
	}
	if c, err := NewTikTokenCounter(encoding); err == nil {
		return c
	}
	return WordCounter{}
}

// Truncator caps text at a token budget, cutting at sentence boundaries
type Truncator struct {
	counter   TokenCounter
	maxTokens int
}

// NewTruncator returns a Truncator. maxTokens <= 0 disables truncation.
func NewTruncator(maxTokens int, counter TokenCounter) *Truncator {
	if counter == nil {
		counter = WordCounter{}
	}
	return &Truncator{counter: counter, maxTokens: maxTokens}
}

// Truncate returns text limited to the token budget and whether it was cut
func (t *Truncator) Truncate(text string) (string, bool) {
	if t.maxTokens <= 0 || t.counter.Count(text) <= t.maxTokens {
		return text, false
	}
	var (
		sb    strings.Builder
		total int
	)
	scanner := sentences.NewScanner(strings.NewReader(text))
	for scanner.Scan() {
		sentence := scanner.Text()
		n := t.counter.Count(sentence)
		if total+n > t.maxTokens {
			break
		}
		sb.WriteString(sentence)
		total += n
	}
	if ret := strings.TrimSpace(sb.String()); ret != "" {
		return ret, true
	}
	// first sentence alone is over budget
	words := strings.Fields(text)
	if len(words) > t.maxTokens {
		words = words[:t.maxTokens]
	}
	return strings.Join(words, " "), true
}
