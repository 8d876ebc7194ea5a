package research

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecisionAction(t *testing.T) {
	tests := []struct {
		name     string
		decision Decision
		expect   ActionType
		invalid  bool
	}{
		{
			name:     "search",
			decision: Decision{Title: "Searching", Reasoning: "r", Type: SearchAction, Query: "golang release"},
			expect:   SearchAction,
		},
		{
			name:     "search without query",
			decision: Decision{Title: "Searching", Reasoning: "r", Type: SearchAction},
			invalid:  true,
		},
		{
			name:     "search with blank query",
			decision: Decision{Title: "Searching", Reasoning: "r", Type: SearchAction, Query: "   "},
			invalid:  true,
		},
		{
			name:     "scrape",
			decision: Decision{Title: "Reading", Reasoning: "r", Type: ScrapeAction, URLs: []string{"https://go.dev/doc/devel/release"}},
			expect:   ScrapeAction,
		},
		{
			name:     "scrape without urls",
			decision: Decision{Title: "Reading", Reasoning: "r", Type: ScrapeAction},
			invalid:  true,
		},
		{
			name:     "scrape with scheme-less url",
			decision: Decision{Title: "Reading", Reasoning: "r", Type: ScrapeAction, URLs: []string{"en.wikipedia.org/wiki/Paris"}},
			expect:   ScrapeAction,
		},
		{
			name:     "scrape with blank urls only",
			decision: Decision{Title: "Reading", Reasoning: "r", Type: ScrapeAction, URLs: []string{" ", ""}},
			invalid:  true,
		},
		{
			name:     "answer",
			decision: Decision{Title: "Answering", Reasoning: "r", Type: AnswerAction},
			expect:   AnswerAction,
		},
		{
			name:     "answer with stray urls",
			decision: Decision{Title: "Answering", Reasoning: "r", Type: AnswerAction, URLs: []string{"see sources above"}},
			expect:   AnswerAction,
		},
		{
			name:     "search with stray urls",
			decision: Decision{Title: "Searching", Reasoning: "r", Type: SearchAction, Query: "paris", URLs: []string{"not a url"}},
			expect:   SearchAction,
		},
		{
			name:     "unknown type",
			decision: Decision{Title: "Thinking", Reasoning: "r", Type: "think"},
			invalid:  true,
		},
		{
			name:     "missing title",
			decision: Decision{Reasoning: "r", Type: AnswerAction},
			invalid:  true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			action, err := tt.decision.Action()
			if tt.invalid {
				assert.ErrorIs(t, err, ErrInvalidDecision)
				assert.Nil(t, action)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expect, action.Type())
			assert.Equal(t, tt.decision.Title, action.Title())
			assert.Equal(t, tt.decision.Reasoning, action.Reasoning())
		})
	}
}

func TestNewScrapeDropsBlankURLs(t *testing.T) {
	a, err := NewScrape("Reading", "r", []string{" https://a.example.com ", "", "  "})
	require.NoError(t, err)
	urls := a.URLs()
	assert.Equal(t, []string{"https://a.example.com"}, urls)
	urls[0] = "changed"
	assert.Equal(t, "https://a.example.com", a.URLs()[0])

	_, err = NewScrape("Reading", "r", []string{" "})
	assert.ErrorIs(t, err, ErrInvalidDecision)
}

func TestNewScrapeAddsScheme(t *testing.T) {
	a, err := NewScrape("Reading", "r", []string{"en.wikipedia.org/wiki/Paris", "//go.dev", "http://example.com"})
	require.NoError(t, err)
	assert.Equal(t, []string{"https://en.wikipedia.org/wiki/Paris", "https://go.dev", "http://example.com"}, a.URLs())
}

func TestNewSearchTrimsQuery(t *testing.T) {
	a, err := NewSearch("Searching", "r", "  paris weather ")
	require.NoError(t, err)
	assert.Equal(t, "paris weather", a.Query())
	assert.Equal(t, `search "paris weather"`, a.String())
}
