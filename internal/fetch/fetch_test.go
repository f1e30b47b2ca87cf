package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestGet_SendsBrowserHeaders(t *testing.T) {
	var gotUA, gotReferer string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotReferer = r.Header.Get("Referer")
		w.Write([]byte("<html></html>"))
	}))
	defer srv.Close()

	c := &Client{}
	body, err := c.Get(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(body) != "<html></html>" {
		t.Fatalf("body: %q", string(body))
	}
	if gotUA != DefaultUserAgent {
		t.Fatalf("user agent: %q", gotUA)
	}
	if gotReferer != DefaultReferer {
		t.Fatalf("referer: %q", gotReferer)
	}
}

func TestGet_Non200IsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	if _, err := (&Client{}).Get(context.Background(), srv.URL); err == nil {
		t.Fatalf("expected error for 404")
	}
}

func TestGet_CacheRevalidation(t *testing.T) {
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		if r.Header.Get("If-None-Match") == `"v1"` {
			w.WriteHeader(http.StatusNotModified)
			return
		}
		w.Header().Set("ETag", `"v1"`)
		w.Write([]byte("cached page"))
	}))
	defer srv.Close()

	c := &Client{Cache: &PageCache{Dir: t.TempDir()}}

	first, err := c.Get(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("first get: %v", err)
	}
	second, err := c.Get(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("second get: %v", err)
	}
	if string(first) != "cached page" || string(second) != "cached page" {
		t.Fatalf("bodies: %q / %q", first, second)
	}
	if hits != 2 {
		t.Fatalf("expected two requests, got %d", hits)
	}
}

func TestPageCache_RoundTrip(t *testing.T) {
	c := &PageCache{Dir: t.TempDir()}
	if err := c.Save("https://mp.weixin.qq.com/s/x", `"e"`, "Mon", []byte("body")); err != nil {
		t.Fatalf("Save: %v", err)
	}
	meta, err := c.LoadMeta("https://mp.weixin.qq.com/s/x")
	if err != nil {
		t.Fatalf("LoadMeta: %v", err)
	}
	if meta.ETag != `"e"` || meta.LastModified != "Mon" {
		t.Fatalf("meta: %+v", meta)
	}
	body, err := c.LoadBody("https://mp.weixin.qq.com/s/x")
	if err != nil || string(body) != "body" {
		t.Fatalf("body: %q err=%v", body, err)
	}
}
