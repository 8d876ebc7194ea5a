package searxng

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/bububa/deepsearch/components/evidence"
	"github.com/bububa/deepsearch/schema"
	"github.com/bububa/deepsearch/tools"
)

type Category = string

const (
	EmptyCategory       Category = ""
	GeneralCategory     Category = "general"
	NewsCategory        Category = "news"
	SocialMediaCategory Category = "social_media"
)

// Input Schema for input to a tool for searching for information, news, references, and other content using SearxNG.
// Returns a list of search results with a short description or content snippet and URLs for further exploration
type Input struct {
	schema.Base
	// Queries list of search queries.
	Queries []string `json:"queries" jsonschema:"title=queries,description=List of search queries." validate:"required"`
	// Category: Category of the search queries."
	Category Category `json:"category,omitempty" jsonschema:"title=category,enum=general,enum=news,enum=social_media,default=general,description=Category of the search queries."`
	// MaxResults overrides the tool max results when positive
	MaxResults int `json:"max_results,omitempty" jsonschema:"title=max_results,description=Maximum number of results to return."`
}

func NewInput(category Category, queries []string) *Input {
	return &Input{
		Queries:  queries,
		Category: category,
	}
}

// SearchResultItem represents a single search result item
type SearchResultItem struct {
	schema.Base
	// URL The URL of the search result
	URL string `json:"url" jsonschema:"title=url,description=The URL of the search result" validate:"required,url"`
	// Title The title of the search result
	Title string `json:"title" jsonschema:"title=title,description=The title of the search result" validate:"required"`
	// Content The content snippet of the search result
	Content string `json:"content,omitempty" jsonschema:"title=content,description=The content snippet of the search result"`
	// Query The query used to obtain this search result
	Query string `json:"query" jsonschema:"title=query,description=The query used to obtain this search result" validate:"required"`
	// Category The category of the search result
	Category Category `json:"category,omitempty" jsonschema:"title=category,description=The category of the search result"`
	// Metadata Additional metadata for the search result
	Metadata string `json:"metadata,omitempty" jsonschema:"title=metadata,description=Additional metadata for the search result"`
	// PublishedDate The published date of the search result
	PublishedDate string `json:"publishedDate,omitempty" jsonschema:"title=published_date,description=The published date of the search result"`
}

// Date returns the day part of PublishedDate
func (s SearchResultItem) Date() string {
	date, _, _ := strings.Cut(s.PublishedDate, "T")
	return date
}

// SearchResponse represents the entire response from the local search engine
type SearchResponse struct {
	Query           string             `json:"query"`
	NumberOfResults int                `json:"number_of_results"`
	Results         []SearchResultItem `json:"results"`
}

// Output represents the output of the SearxNG search tool.
type Output struct {
	schema.Base
	// Results List of search result items
	Results []SearchResultItem `json:"results,omitempty" jsonschema:"title=results,description=List of search result items"`
	// Category The category of the search results
	Category Category `json:"category,omitempty" jsonschema:"title=category,enum=general,enum=news,enum=social_media,default=general,description=Category of the search results."`
}

type Config struct {
	tools.Config
	language   string
	baseURL    string
	engines    string
	category   Category
	maxResults int
	httpClient *http.Client
}

// SearxngSearch is a tool for performing searches on SearxNG based on the provided queries and category.
type SearxngSearch struct {
	Config
}

var _ tools.ITool = (*SearxngSearch)(nil)

func New(opts ...Option) *SearxngSearch {
	ret := new(SearxngSearch)
	for _, opt := range opts {
		opt(&ret.Config)
	}
	if ret.Title() == "" {
		ret.SetTitle("SearxngSearchTool")
	}
	if ret.Description() == "" {
		ret.SetDescription("Searches the web through a SearxNG instance")
	}
	if ret.maxResults == 0 {
		ret.maxResults = 10
	}
	if ret.category == EmptyCategory {
		ret.category = GeneralCategory
	}
	if ret.httpClient == nil {
		ret.httpClient = http.DefaultClient
	}
	ret.baseURL = strings.TrimRight(ret.baseURL, "/")
	return ret
}

// Run runs every query and returns results having a url, a title and a content
// snippet, de-duplicated by url and capped at the max results
func (t *SearxngSearch) Run(ctx context.Context, input *Input) (*Output, error) {
	t.OnStart(ctx, t, input)
	limit := input.MaxResults
	if limit <= 0 {
		limit = t.maxResults
	}
	ret := &Output{Category: input.Category}
	seen := make(map[string]struct{})
	for _, query := range input.Queries {
		items, err := t.fetchSearchResults(ctx, query, input.Category)
		if err != nil {
			return nil, t.OnError(ctx, t, input, err)
		}
		for _, item := range items {
			if item.URL == "" || item.Title == "" || item.Content == "" {
				continue
			}
			if _, found := seen[item.URL]; found {
				continue
			}
			seen[item.URL] = struct{}{}
			if item.Category == "" {
				item.Category = input.Category
			}
			ret.Results = append(ret.Results, item)
		}
	}
	if len(ret.Results) > limit {
		ret.Results = ret.Results[:limit]
	}
	t.OnEnd(ctx, t, input, ret)
	return ret, nil
}

// Search runs a single query and returns at most count results as evidence
func (t *SearxngSearch) Search(ctx context.Context, query string, count int) ([]evidence.SearchResult, error) {
	input := NewInput(t.category, []string{query})
	input.MaxResults = count
	out, err := t.Run(ctx, input)
	if err != nil {
		return nil, err
	}
	ret := make([]evidence.SearchResult, 0, len(out.Results))
	for _, item := range out.Results {
		ret = append(ret, evidence.SearchResult{
			Date:    item.Date(),
			Title:   item.Title,
			URL:     item.URL,
			Snippet: item.Content,
		})
	}
	return ret, nil
}

// fetchSearchResults queries the local search engine and returns the parsed search response
func (t *SearxngSearch) fetchSearchResults(ctx context.Context, query string, category Category) ([]SearchResultItem, error) {
	values := url.Values{}
	values.Set("q", query)
	values.Set("safesearch", "0")
	values.Set("format", "json")
	if t.engines != "" {
		values.Set("engines", t.engines)
	}
	if t.language != "" {
		values.Set("language", t.language)
	}
	if category != "" {
		values.Set("categories", category)
	}
	searchURL := fmt.Sprintf("%s/search?%s", t.baseURL, values.Encode())
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		return nil, err
	}

	httpResp, err := t.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("error querying local search engine: %w", err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("non-200 response from search engine: %d", httpResp.StatusCode)
	}

	var searchResponse SearchResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&searchResponse); err != nil {
		return nil, err
	}
	for idx := range searchResponse.Results {
		searchResponse.Results[idx].Query = query
	}

	return searchResponse.Results, nil
}
