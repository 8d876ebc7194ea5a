// Package evidence accumulates the search and scrape results gathered during one
// research run and renders them as prompt text.
package evidence

import (
	"fmt"
	"strings"

	"github.com/bububa/deepsearch/components/systemprompt"
)

// DefaultBudget is the number of research steps allowed before an answer is forced
const DefaultBudget = 10

// SearchResult is one ranked result returned by a search engine
type SearchResult struct {
	Date    string `json:"date,omitempty"`
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet,omitempty"`
}

// QueryRecord is a search query with its ordered results
type QueryRecord struct {
	Query   string         `json:"query"`
	Results []SearchResult `json:"results"`
}

// ScrapeRecord is the text extracted from one url
type ScrapeRecord struct {
	URL     string `json:"url"`
	Content string `json:"content"`
}

// Context is the per-run evidence store. It is owned by a single research loop
// and is not safe for concurrent use.
type Context struct {
	step    int
	budget  int
	queries []QueryRecord
	scrapes []ScrapeRecord
}

// New returns an empty Context. A budget <= 0 falls back to DefaultBudget.
func New(budget int) *Context {
	if budget <= 0 {
		budget = DefaultBudget
	}
	return &Context{budget: budget}
}

// Step returns the number of completed steps
func (c *Context) Step() int {
	return c.step
}

// Budget returns the step budget
func (c *Context) Budget() int {
	return c.budget
}

// ShouldStop reports whether the step budget is used up
func (c *Context) ShouldStop() bool {
	return c.step >= c.budget
}

// IncrementStep advances the step counter. It does not clamp at the budget.
func (c *Context) IncrementStep() {
	c.step++
}

// ReportQueries appends query records. Repeated queries are kept.
func (c *Context) ReportQueries(records ...QueryRecord) {
	c.queries = append(c.queries, records...)
}

// ReportScrapes appends scrape records. Repeated urls are kept.
func (c *Context) ReportScrapes(records ...ScrapeRecord) {
	c.scrapes = append(c.scrapes, records...)
}

// Queries returns a copy of the query history
func (c *Context) Queries() []QueryRecord {
	ret := make([]QueryRecord, len(c.queries))
	copy(ret, c.queries)
	return ret
}

// Scrapes returns a copy of the scrape history
func (c *Context) Scrapes() []ScrapeRecord {
	ret := make([]ScrapeRecord, len(c.scrapes))
	copy(ret, c.scrapes)
	return ret
}

// RenderQueryHistory renders every query and its results in insertion order
func (c *Context) RenderQueryHistory() string {
	blocks := make([]string, 0, len(c.queries))
	for _, q := range c.queries {
		blocks = append(blocks, RenderQuery(q))
	}
	return strings.Join(blocks, "\n\n")
}

// RenderScrapeHistory renders every scraped page in insertion order
func (c *Context) RenderScrapeHistory() string {
	blocks := make([]string, 0, len(c.scrapes))
	for _, s := range c.scrapes {
		blocks = append(blocks, RenderScrape(s))
	}
	return strings.Join(blocks, "\n\n")
}

// RenderQuery renders one query block:
//
//	## Query: "<query>"
//
//	### <date> - <title>
//	<url>
//	<snippet>
func RenderQuery(q QueryRecord) string {
	parts := make([]string, 0, len(q.Results)+1)
	parts = append(parts, fmt.Sprintf("## Query: %q", q.Query))
	for _, r := range q.Results {
		header := r.Title
		if r.Date != "" {
			header = fmt.Sprintf("%s - %s", r.Date, r.Title)
		}
		lines := []string{fmt.Sprintf("### %s", header), r.URL}
		if r.Snippet != "" {
			lines = append(lines, r.Snippet)
		}
		parts = append(parts, strings.Join(lines, "\n"))
	}
	return strings.Join(parts, "\n\n")
}

// RenderScrape renders one scraped page
func RenderScrape(s ScrapeRecord) string {
	return fmt.Sprintf("## Scrape: %q\n\n%s", s.URL, s.Content)
}

const (
	QueryHistoryTitle  = "Search history"
	ScrapeHistoryTitle = "Scraped pages"
)

// ContextProviders exposes both histories as system prompt context providers.
// Info is rendered lazily, so providers reflect the evidence at Generate time.
func (c *Context) ContextProviders() []systemprompt.ContextProvider {
	return []systemprompt.ContextProvider{
		systemprompt.NewProviderFunc(QueryHistoryTitle, c.RenderQueryHistory),
		systemprompt.NewProviderFunc(ScrapeHistoryTitle, c.RenderScrapeHistory),
	}
}
