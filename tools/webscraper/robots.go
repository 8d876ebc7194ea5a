package webscraper

import (
	"context"
	"net/http"
	"net/url"
	"sync"

	"github.com/temoto/robotstxt"
)

// robotsCache keeps the robots.txt group per host
// threadsafe
type robotsCache struct {
	client    *http.Client
	userAgent string
	agent     string
	groups    map[string]*robotstxt.Group
	mtx       sync.Mutex
}

func newRobotsCache(client *http.Client, userAgent string, agent string) *robotsCache {
	return &robotsCache{
		client:    client,
		userAgent: userAgent,
		agent:     agent,
		groups:    make(map[string]*robotstxt.Group),
	}
}

// Allowed reports whether the url may be fetched. An unreachable robots.txt allows everything.
func (c *robotsCache) Allowed(ctx context.Context, u *url.URL) (bool, error) {
	key := u.Scheme + "://" + u.Host
	c.mtx.Lock()
	group, found := c.groups[key]
	c.mtx.Unlock()
	if !found {
		var err error
		if group, err = c.load(ctx, key); err != nil {
			return false, err
		}
		c.mtx.Lock()
		c.groups[key] = group
		c.mtx.Unlock()
	}
	if group == nil {
		return true, nil
	}
	return group.Test(u.RequestURI()), nil
}

func (c *robotsCache) load(ctx context.Context, origin string) (*robotstxt.Group, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, origin+"/robots.txt", nil)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("User-Agent", c.userAgent)
	httpResp, err := c.client.Do(httpReq)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, nil
	}
	defer httpResp.Body.Close()
	data, err := robotstxt.FromResponse(httpResp)
	if err != nil {
		return nil, nil
	}
	return data.FindGroup(c.agent), nil
}
