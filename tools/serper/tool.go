package serper

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/bububa/deepsearch/components/evidence"
	"github.com/bububa/deepsearch/schema"
	"github.com/bububa/deepsearch/tools"
)

// DefaultBaseURL is the serper.dev google search endpoint
const DefaultBaseURL = "https://google.serper.dev"

// ErrMissingAPIKey is returned when no api key is configured
var ErrMissingAPIKey = errors.New("serper api key is required")

// Input is a single google search request
type Input struct {
	schema.Base
	// Query the search query
	Query string `json:"q" jsonschema:"title=query,description=The search query." validate:"required"`
	// Num number of results to return
	Num int `json:"num,omitempty" jsonschema:"title=num,description=Number of results to return."`
	// Country two letter country code
	Country string `json:"gl,omitempty" jsonschema:"title=country,description=Two letter country code."`
	// Language two letter language code
	Language string `json:"hl,omitempty" jsonschema:"title=language,description=Two letter language code."`
}

// OrganicResult is one organic google result
type OrganicResult struct {
	Title    string `json:"title"`
	Link     string `json:"link"`
	Snippet  string `json:"snippet,omitempty"`
	Date     string `json:"date,omitempty"`
	Position int    `json:"position,omitempty"`
}

// Output is the serper response, only organic results are decoded
type Output struct {
	schema.Base
	Organic []OrganicResult `json:"organic"`
}

type Config struct {
	tools.Config
	apiKey     string
	baseURL    string
	country    string
	language   string
	maxResults int
	httpClient *http.Client
}

// Serper searches google through serper.dev
type Serper struct {
	Config
}

var _ tools.ITool = (*Serper)(nil)

func New(opts ...Option) *Serper {
	ret := new(Serper)
	for _, opt := range opts {
		opt(&ret.Config)
	}
	if ret.Title() == "" {
		ret.SetTitle("SerperSearchTool")
	}
	if ret.Description() == "" {
		ret.SetDescription("Searches google through serper.dev")
	}
	if ret.baseURL == "" {
		ret.baseURL = DefaultBaseURL
	}
	if ret.maxResults == 0 {
		ret.maxResults = 10
	}
	if ret.httpClient == nil {
		ret.httpClient = http.DefaultClient
	}
	return ret
}

// Run posts the query to serper and returns organic results having a link and a title
func (t *Serper) Run(ctx context.Context, input *Input) (*Output, error) {
	t.OnStart(ctx, t, input)
	if t.apiKey == "" {
		return nil, t.OnError(ctx, t, input, ErrMissingAPIKey)
	}
	req := *input
	if req.Num <= 0 {
		req.Num = t.maxResults
	}
	if req.Country == "" {
		req.Country = t.country
	}
	if req.Language == "" {
		req.Language = t.language
	}
	ret, err := t.post(ctx, &req)
	if err != nil {
		return nil, t.OnError(ctx, t, input, err)
	}
	organic := ret.Organic[:0]
	for _, v := range ret.Organic {
		if v.Link == "" || v.Title == "" {
			continue
		}
		organic = append(organic, v)
	}
	ret.Organic = organic
	t.OnEnd(ctx, t, input, ret)
	return ret, nil
}

// Search runs a single query and returns at most count results as evidence
func (t *Serper) Search(ctx context.Context, query string, count int) ([]evidence.SearchResult, error) {
	out, err := t.Run(ctx, &Input{Query: query, Num: count})
	if err != nil {
		return nil, err
	}
	items := out.Organic
	if count > 0 && len(items) > count {
		items = items[:count]
	}
	ret := make([]evidence.SearchResult, 0, len(items))
	for _, item := range items {
		ret = append(ret, evidence.SearchResult{
			Date:    item.Date,
			Title:   item.Title,
			URL:     item.Link,
			Snippet: item.Snippet,
		})
	}
	return ret, nil
}

func (t *Serper) post(ctx context.Context, input *Input) (*Output, error) {
	payload, err := json.Marshal(input)
	if err != nil {
		return nil, err
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, t.baseURL+"/search", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("X-API-KEY", t.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")
	httpResp, err := t.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("error querying serper: %w", err)
	}
	defer httpResp.Body.Close()
	if httpResp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("non-200 response from serper: %d", httpResp.StatusCode)
	}
	ret := new(Output)
	if err := json.NewDecoder(httpResp.Body).Decode(ret); err != nil {
		return nil, err
	}
	return ret, nil
}
