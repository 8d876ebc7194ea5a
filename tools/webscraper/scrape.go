package webscraper

import (
	"context"

	"go.uber.org/atomic"
	"golang.org/x/sync/errgroup"
)

// Stats counts scraper outcomes since creation
type Stats struct {
	Succeeded  atomic.Int64
	Failed     atomic.Int64
	Disallowed atomic.Int64
}

// Page is the outcome of scraping one url
type Page struct {
	URL      string
	Success  bool
	Content  string
	Metadata *Metadata
	Err      error
}

// Report is the outcome of scraping a batch of urls, pages keep the input order
type Report struct {
	Pages []Page
	// Success is true when every page succeeded
	Success bool
}

// Scrape fetches urls concurrently. A failing page is reported in its Page and
// does not fail the batch; only a cancelled context returns an error.
func (t *Webscraper) Scrape(ctx context.Context, urls []string) (*Report, error) {
	pages := make([]Page, len(urls))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(t.concurrency)
	for idx, link := range urls {
		g.Go(func() error {
			page := Page{URL: link}
			out, err := t.Run(gctx, NewInput(link, true))
			if err != nil {
				page.Err = err
			} else {
				page.Success = true
				page.Content = out.Content
				page.Metadata = out.Metadata
			}
			pages[idx] = page
			return nil
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	ret := &Report{Pages: pages, Success: true}
	for _, page := range pages {
		if !page.Success {
			ret.Success = false
			break
		}
	}
	return ret, nil
}
