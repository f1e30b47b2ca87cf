// Package images resolves the real source URL of an embedded article
// image, upgrades WeChat CDN links to their high-resolution variant, and
// downloads the bytes into the article's images directory.
package images

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog/log"
)

const (
	cdnHost      = "mmbiz.qpic.cn"
	siteOrigin   = "https://mp.weixin.qq.com"
	fetchTimeout = 10 * time.Second
	chunkSize    = 32 * 1024
)

// srcAttrs in resolution order. WeChat lazy-loads images, so data-src
// usually holds the real URL while src points at a placeholder.
var srcAttrs = []string{"data-src", "src", "data-original", "data-wx-src"}

var reWxFmt = regexp.MustCompile(`wx_fmt=([^&]+)`)

// Fetcher downloads article images over one shared HTTP client.
type Fetcher struct {
	client  *http.Client
	headers map[string]string
}

// NewFetcher returns a Fetcher with the crawl's browser-like headers and
// the fixed per-image timeout.
func NewFetcher(headers map[string]string) *Fetcher {
	return &Fetcher{
		client:  &http.Client{Timeout: fetchTimeout},
		headers: headers,
	}
}

// Resolve returns the best source URL for an <img> node, or "" when no
// known attribute carries one. Protocol-relative and site-root-relative
// values are made absolute; CDN-hosted values get a scheme when missing.
func Resolve(img *goquery.Selection) string {
	for _, attr := range srcAttrs {
		u, ok := img.Attr(attr)
		if !ok || u == "" {
			continue
		}
		switch {
		case strings.Contains(u, cdnHost):
			if !strings.HasPrefix(u, "http://") && !strings.HasPrefix(u, "https://") {
				u = "https://" + u
			}
			return u
		case strings.HasPrefix(u, "//"):
			return "https:" + u
		case strings.HasPrefix(u, "/"):
			return siteOrigin + u
		default:
			return u
		}
	}
	return ""
}

// upgradeCDN rewrites a WeChat CDN URL to its 640px variant, pins the
// declared format, and appends a cache-busting timestamp.
func upgradeCDN(imgURL string) string {
	if !strings.Contains(imgURL, cdnHost) {
		return imgURL
	}
	if !strings.HasPrefix(imgURL, "http://") && !strings.HasPrefix(imgURL, "https://") {
		imgURL = "https://" + imgURL
	}
	format := "jpeg"
	if m := reWxFmt.FindStringSubmatch(imgURL); m != nil {
		format = m[1]
	}
	if strings.Contains(imgURL, "/0?") {
		imgURL = strings.Replace(imgURL, "/0?", "/640?", 1)
	} else if !strings.Contains(imgURL, "?") {
		imgURL += "?wx_fmt=" + format
	}
	return imgURL + fmt.Sprintf("&timestamp=%d", time.Now().Unix())
}

// FetchAndStore downloads one image into destDir and returns the stored
// filename. Any transport failure or non-200 status is logged and
// reported as ("", false); the article simply loses that image.
func (f *Fetcher) FetchAndStore(imgURL, destDir string) (string, bool) {
	reqURL := upgradeCDN(imgURL)

	req, err := http.NewRequest(http.MethodGet, reqURL, nil)
	if err != nil {
		log.Warn().Err(err).Str("url", imgURL).Msg("image request failed")
		return "", false
	}
	for k, v := range f.headers {
		req.Header.Set(k, v)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		log.Warn().Err(err).Str("url", imgURL).Msg("image fetch failed")
		return "", false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Warn().Int("status", resp.StatusCode).Str("url", imgURL).Msg("image fetch rejected")
		return "", false
	}

	name := fmt.Sprintf("%d%s", time.Now().UnixMilli(), extensionFor(resp.Header.Get("Content-Type")))
	path := filepath.Join(destDir, name)
	out, err := os.Create(path)
	if err != nil {
		log.Warn().Err(err).Str("path", path).Msg("image save failed")
		return "", false
	}
	defer out.Close()

	if _, err := io.CopyBuffer(out, resp.Body, make([]byte, chunkSize)); err != nil {
		log.Warn().Err(err).Str("path", path).Msg("image write failed")
		os.Remove(path)
		return "", false
	}
	return name, true
}

func extensionFor(contentType string) string {
	switch {
	case strings.Contains(contentType, "jpeg"), strings.Contains(contentType, "jpg"):
		return ".jpg"
	case strings.Contains(contentType, "png"):
		return ".png"
	case strings.Contains(contentType, "gif"):
		return ".gif"
	default:
		return ".jpg"
	}
}
