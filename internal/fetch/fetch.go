// Package fetch retrieves article pages. It sends browser-like headers
// because the target site serves a degraded shell to unknown agents, and
// can keep an on-disk copy of each page for conditional revalidation.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DefaultUserAgent mirrors a desktop Chrome build accepted by the site.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

// DefaultReferer satisfies the site's same-origin referer check.
const DefaultReferer = "https://mp.weixin.qq.com/"

// DefaultTimeout bounds a page fetch so a hung connection cannot stall
// the whole batch.
const DefaultTimeout = 15 * time.Second

// Client issues page GETs with fixed headers and a bounded timeout.
type Client struct {
	HTTPClient *http.Client
	UserAgent  string
	Referer    string
	Timeout    time.Duration
	// Optional on-disk page cache; nil disables caching.
	Cache *PageCache
}

// Headers returns the browser-like header set, also reused by the image
// fetcher so both request paths present the same identity.
func (c *Client) Headers() map[string]string {
	ua := c.UserAgent
	if ua == "" {
		ua = DefaultUserAgent
	}
	ref := c.Referer
	if ref == "" {
		ref = DefaultReferer
	}
	return map[string]string{"User-Agent": ua, "Referer": ref}
}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	timeout := c.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &http.Client{Timeout: timeout}
}

// Get fetches one page. Any status other than 200 means the article is
// unavailable and the caller should skip the item. With a cache present,
// a 304 revalidation serves the stored body.
func (c *Client) Get(ctx context.Context, url string) ([]byte, error) {
	var etag, lastMod string
	if c.Cache != nil {
		if meta, err := c.Cache.LoadMeta(url); err == nil && meta != nil {
			etag = meta.ETag
			lastMod = meta.LastModified
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	for k, v := range c.Headers() {
		req.Header.Set(k, v)
	}
	if etag != "" {
		req.Header.Set("If-None-Match", etag)
	}
	if lastMod != "" {
		req.Header.Set("If-Modified-Since", lastMod)
	}

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotModified && c.Cache != nil {
		if body, err := c.Cache.LoadBody(url); err == nil {
			return body, nil
		}
		return nil, fmt.Errorf("not modified but cache body missing: %s", url)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if c.Cache != nil {
		_ = c.Cache.Save(url, resp.Header.Get("ETag"), resp.Header.Get("Last-Modified"), body)
	}
	return body, nil
}
