package evidence

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShouldStop(t *testing.T) {
	c := New(0)
	require.Equal(t, DefaultBudget, c.Budget())
	for i := 0; i < DefaultBudget; i++ {
		assert.Falsef(t, c.ShouldStop(), "step %d", c.Step())
		c.IncrementStep()
	}
	assert.True(t, c.ShouldStop())
	c.IncrementStep()
	assert.Equal(t, DefaultBudget+1, c.Step())
	assert.True(t, c.ShouldStop())
}

func TestRenderQueryHistory(t *testing.T) {
	c := New(3)
	c.ReportQueries(QueryRecord{
		Query: "capital of France",
		Results: []SearchResult{
			{Date: "2024-01-02", Title: "Paris", URL: "https://example.com/paris", Snippet: "Paris is the capital."},
			{Title: "France", URL: "https://example.com/france"},
		},
	})
	expect := `## Query: "capital of France"

### 2024-01-02 - Paris
https://example.com/paris
Paris is the capital.

### France
https://example.com/france`
	assert.Equal(t, expect, c.RenderQueryHistory())
}

func TestRenderScrapeHistory(t *testing.T) {
	c := New(3)
	c.ReportScrapes(
		ScrapeRecord{URL: "https://a.example", Content: "alpha"},
		ScrapeRecord{URL: "https://a.example", Content: "alpha again"},
	)
	expect := "## Scrape: \"https://a.example\"\n\nalpha\n\n## Scrape: \"https://a.example\"\n\nalpha again"
	assert.Equal(t, expect, c.RenderScrapeHistory())
	assert.Len(t, c.Scrapes(), 2)
}

func TestHistoryIsAppendOnly(t *testing.T) {
	c := New(5)
	prevQueries, prevScrapes := c.RenderQueryHistory(), c.RenderScrapeHistory()
	for i, q := range []string{"go", "go", "rust"} {
		c.ReportQueries(QueryRecord{Query: q, Results: []SearchResult{{Title: q, URL: "https://example.com/" + q}}})
		if i%2 == 0 {
			c.ReportScrapes(ScrapeRecord{URL: "https://example.com/" + q, Content: q})
		}
		queries, scrapes := c.RenderQueryHistory(), c.RenderScrapeHistory()
		assert.True(t, strings.HasPrefix(queries, prevQueries))
		assert.True(t, strings.HasPrefix(scrapes, prevScrapes))
		prevQueries, prevScrapes = queries, scrapes
	}
	assert.Len(t, c.Queries(), 3)
}

func TestContextProvidersAreLive(t *testing.T) {
	c := New(1)
	providers := c.ContextProviders()
	require.Len(t, providers, 2)
	assert.Equal(t, QueryHistoryTitle, providers[0].Title())
	assert.Empty(t, providers[0].Info())
	c.ReportQueries(QueryRecord{Query: "q"})
	assert.Equal(t, `## Query: "q"`, providers[0].Info())
	assert.Equal(t, ScrapeHistoryTitle, providers[1].Title())
}
