package research

import (
	"context"

	"github.com/bububa/deepsearch/components/evidence"
	"github.com/bububa/deepsearch/tools/webscraper"
)

// Searcher runs a web search and returns at most count ranked results
type Searcher interface {
	Search(ctx context.Context, query string, count int) ([]evidence.SearchResult, error)
}

// SearcherFunc adapts a function to Searcher
type SearcherFunc func(ctx context.Context, query string, count int) ([]evidence.SearchResult, error)

func (f SearcherFunc) Search(ctx context.Context, query string, count int) ([]evidence.SearchResult, error) {
	return f(ctx, query, count)
}

// ScrapedPage is the outcome of scraping one url
type ScrapedPage struct {
	URL     string
	Success bool
	Content string
	Err     error
}

// ScrapeReport lists pages in the order of the requested urls
type ScrapeReport struct {
	Pages []ScrapedPage
	// Success is true when every page succeeded
	Success bool
}

// Scraper fetches and extracts the text of urls
type Scraper interface {
	Scrape(ctx context.Context, urls []string) (*ScrapeReport, error)
}

// ScraperFunc adapts a function to Scraper
type ScraperFunc func(ctx context.Context, urls []string) (*ScrapeReport, error)

func (f ScraperFunc) Scrape(ctx context.Context, urls []string) (*ScrapeReport, error) {
	return f(ctx, urls)
}

// WebScraper adapts a webscraper tool to Scraper
func WebScraper(tool *webscraper.Webscraper) Scraper {
	return ScraperFunc(func(ctx context.Context, urls []string) (*ScrapeReport, error) {
		report, err := tool.Scrape(ctx, urls)
		if err != nil {
			return nil, err
		}
		ret := &ScrapeReport{
			Pages:   make([]ScrapedPage, 0, len(report.Pages)),
			Success: report.Success,
		}
		for _, page := range report.Pages {
			ret.Pages = append(ret.Pages, ScrapedPage{
				URL:     page.URL,
				Success: page.Success,
				Content: page.Content,
				Err:     page.Err,
			})
		}
		return ret, nil
	})
}
