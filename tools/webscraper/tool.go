package webscraper

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"

	"github.com/PuerkitoBio/goquery"

	"github.com/bububa/deepsearch/components/document"
	"github.com/bububa/deepsearch/components/document/parsers"
	"github.com/bububa/deepsearch/tools"
)

var (
	// ErrDisallowed is returned when robots.txt disallows fetching a url
	ErrDisallowed = errors.New("disallowed by robots.txt")
	// ErrTooLarge is returned when a response body exceeds the max content length
	ErrTooLarge = errors.New("content length exceeds maximum")
	// ErrEmptyContent is returned when nothing could be extracted from a page
	ErrEmptyContent = errors.New("no content extracted")

	markdownLink = regexp.MustCompile(`!?\[([^\]]*)\]\([^)]*\)`)
)

// Input schema for the WebpageScraperTool.
type Input struct {
	// URL of the webpage to scrape.
	URL string `json:"url,omitempty" jsonschema:"title=url,description=URL of the webpage to scrape." validate:"required,url"`
	// IncludeLinks Whether to preserve hyperlinks in the markdown output.
	IncludeLinks bool `json:"include_links,omitempty" jsonschema:"title=include_links,description=Whether to preserve hyperlinks in the markdown output."`
}

func NewInput(link string, includeLinks bool) *Input {
	return &Input{
		URL:          link,
		IncludeLinks: includeLinks,
	}
}

// Metadata Schema for webpage metadata
type Metadata struct {
	// Title is the title of the webpage.
	Title string `json:"title,omitempty" jsonschema:"title=title,description=The title of the webpage."`
	// Author is the author of the webpage content.
	Author string `json:"author,omitempty" jsonschema:"title=author,description=The Author of the webpage."`
	// Description is the meta description of the webpage.
	Description string `json:"description,omitempty" jsonschema:"title=description,description=The meta description of the webpage."`
	// Keywords is the meta keywords of the webpage.
	Keywords string `json:"keywords,omitempty" jsonschema:"title=keywords,description=The meta keywords of the webpage."`
	// SiteName is the name of the website.
	SiteName string `json:"sitename,omitempty" jsonschema:"title=sitename,description=The name of the website."`
	// Domain is the domain name of the website.
	Domain string `json:"domain,omitempty" jsonschema:"title=domain,description=The domain name of the website."`
	// ContentType is the detected content type of the document.
	ContentType string `json:"content_type,omitempty" jsonschema:"title=content_type,description=The detected content type of the document."`
}

// Output Schema for the output of the WebpageScraperTool.
type Output struct {
	// Content The scraped content in markdown format.
	Content string `json:"content,omitempty" jsonschema:"title=content,description=The scraped content in markdown format."`
	// Metadata is metadata about the scraped webpage.
	Metadata *Metadata `json:"metadata,omitempty" jsonschema:"title=metadata,description=Metadata about the webpage."`
	// Truncated is true when content was cut at the token budget
	Truncated bool `json:"truncated,omitempty" jsonschema:"title=truncated,description=Whether the content was cut at the token budget."`
}

func NewOutput(content string, metadata *Metadata) *Output {
	return &Output{
		Content:  content,
		Metadata: metadata,
	}
}

type Config struct {
	tools.Config
	// userAgent User agent string to use for requests.
	userAgent string
	// robotsAgent is the agent name matched against robots.txt groups
	robotsAgent string
	// timeout Timeout in seconds for HTTP requests
	timeout int
	// MaxContentLength Maximum content length in bytes to process.
	maxContentLength int64
	// maxTokens caps the extracted content per page, 0 disables the cap
	maxTokens int
	// concurrency is the number of pages fetched in parallel by Scrape
	concurrency   int
	respectRobots bool
	httpClient    *http.Client
	registry      *parsers.Registry
	tokenCounter  document.TokenCounter
}

// Webscraper fetches pages and extracts their text
type Webscraper struct {
	Config
	robots    *robotsCache
	truncator *document.Truncator
	stats     *Stats
}

var _ tools.ITool = (*Webscraper)(nil)

func New(opts ...Option) *Webscraper {
	ret := &Webscraper{
		Config: Config{
			respectRobots: true,
		},
		stats: new(Stats),
	}
	for _, opt := range opts {
		opt(&ret.Config)
	}
	if ret.Title() == "" {
		ret.SetTitle("WebscraperTool")
	}
	if ret.Description() == "" {
		ret.SetDescription("Fetches web pages and documents and extracts their content as markdown")
	}
	if ret.userAgent == "" {
		ret.userAgent = DefaultUserAgent
	}
	if ret.robotsAgent == "" {
		ret.robotsAgent = DefaultRobotsAgent
	}
	if ret.timeout == 0 {
		ret.timeout = 30
	}
	if ret.maxContentLength == 0 {
		ret.maxContentLength = 10_000_000
	}
	if ret.concurrency <= 0 {
		ret.concurrency = 4
	}
	if ret.httpClient == nil {
		ret.httpClient = &http.Client{Timeout: ret.timeoutDuration()}
	}
	if ret.registry == nil {
		ret.registry = parsers.NewRegistry()
	}
	if ret.tokenCounter == nil {
		ret.tokenCounter = document.WordCounter{}
	}
	ret.truncator = document.NewTruncator(ret.maxTokens, ret.tokenCounter)
	ret.robots = newRobotsCache(ret.httpClient, ret.userAgent, ret.robotsAgent)
	return ret
}

// Stats returns the counters of this scraper
func (t *Webscraper) Stats() *Stats {
	return t.stats
}

// Run fetches one url and extracts its content
func (t *Webscraper) Run(ctx context.Context, input *Input) (*Output, error) {
	t.OnStart(ctx, t, input)
	ret, err := t.run(ctx, input)
	if err != nil {
		if errors.Is(err, ErrDisallowed) {
			t.stats.Disallowed.Inc()
		}
		t.stats.Failed.Inc()
		return nil, t.OnError(ctx, t, input, err)
	}
	t.stats.Succeeded.Inc()
	t.OnEnd(ctx, t, input, ret)
	return ret, nil
}

func (t *Webscraper) run(ctx context.Context, input *Input) (*Output, error) {
	parsedURL, err := url.ParseRequestURI(input.URL)
	if err != nil {
		return nil, err
	}
	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return nil, fmt.Errorf("unsupported url scheme: %s", parsedURL.Scheme)
	}
	if t.respectRobots {
		allowed, err := t.robots.Allowed(ctx, parsedURL)
		if err != nil {
			return nil, err
		}
		if !allowed {
			return nil, ErrDisallowed
		}
	}
	src, err := t.fetch(ctx, input.URL)
	if err != nil {
		return nil, err
	}
	parser, contentType, err := t.registry.Lookup(src)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := parser.Parse(ctx, src, &buf); err != nil {
		return nil, fmt.Errorf("parse %s: %w", contentType, err)
	}
	content := buf.String()
	if !input.IncludeLinks {
		content = markdownLink.ReplaceAllString(content, "$1")
	}
	content = document.CleanMarkdown(content)
	if content == "" {
		return nil, ErrEmptyContent
	}
	meta := &Metadata{
		Domain:      parsedURL.Host,
		ContentType: contentType,
	}
	if contentType == parsers.MIMEHTML || contentType == parsers.MIMEXHTML {
		if doc, err := goquery.NewDocumentFromReader(bytes.NewReader(src.Body)); err == nil {
			t.extractMetadata(doc, meta)
		}
	}
	ret := NewOutput(content, meta)
	ret.Content, ret.Truncated = t.truncator.Truncate(content)
	return ret, nil
}

func (t *Webscraper) fetch(ctx context.Context, link string) (*document.Source, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, link, nil)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("User-Agent", t.userAgent)
	httpReq.Header.Set("Accept", DefaultAccept)
	httpResp, err := t.httpClient.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer httpResp.Body.Close()
	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected status code %d", httpResp.StatusCode)
	}
	if httpResp.ContentLength > t.maxContentLength {
		return nil, ErrTooLarge
	}
	body, err := io.ReadAll(io.LimitReader(httpResp.Body, t.maxContentLength+1))
	if err != nil {
		return nil, err
	}
	if int64(len(body)) > t.maxContentLength {
		return nil, ErrTooLarge
	}
	return &document.Source{
		URL:  httpResp.Request.URL.String(),
		MIME: httpResp.Header.Get("Content-Type"),
		Body: body,
	}, nil
}

// Extracts metadata from the webpage
func (t *Webscraper) extractMetadata(doc *goquery.Document, meta *Metadata) {
	meta.Title = doc.Find("head title").First().Text()
	if meta.Title == "" {
		meta.Title, _ = doc.Find("meta[property='og:title']").Attr("content")
	}
	meta.Author, _ = doc.Find("meta[name='author']").Attr("content")
	meta.Description, _ = doc.Find("meta[name='description']").Attr("content")
	if meta.Description == "" {
		meta.Description, _ = doc.Find("meta[property='og:description']").Attr("content")
	}
	meta.Keywords, _ = doc.Find("meta[name='keywords']").Attr("content")
	meta.SiteName, _ = doc.Find("meta[property='og:site_name']").Attr("content")
}
