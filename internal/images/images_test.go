package images

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
)

func imgNode(t *testing.T, attrs string) *goquery.Selection {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader("<html><body><img " + attrs + "></body></html>"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return doc.Find("img").First()
}

func TestResolve_AttributeOrder(t *testing.T) {
	sel := imgNode(t, `src="https://a/placeholder.jpg" data-src="https://b/real.jpg"`)
	if got := Resolve(sel); got != "https://b/real.jpg" {
		t.Fatalf("data-src should win, got %q", got)
	}
}

func TestResolve_ProtocolRelative(t *testing.T) {
	sel := imgNode(t, `data-src="//cdn/img.jpg"`)
	if got := Resolve(sel); got != "https://cdn/img.jpg" {
		t.Fatalf("got %q", got)
	}
}

func TestResolve_SiteRootRelative(t *testing.T) {
	sel := imgNode(t, `src="/img/logo.png"`)
	if got := Resolve(sel); got != "https://mp.weixin.qq.com/img/logo.png" {
		t.Fatalf("got %q", got)
	}
}

func TestResolve_CDNWithoutScheme(t *testing.T) {
	sel := imgNode(t, `data-src="mmbiz.qpic.cn/mmbiz_jpg/abc/0?wx_fmt=jpeg"`)
	if got := Resolve(sel); got != "https://mmbiz.qpic.cn/mmbiz_jpg/abc/0?wx_fmt=jpeg" {
		t.Fatalf("got %q", got)
	}
}

func TestResolve_NoUsableAttribute(t *testing.T) {
	sel := imgNode(t, `alt="decorative"`)
	if got := Resolve(sel); got != "" {
		t.Fatalf("got %q, want empty", got)
	}
}

func TestUpgradeCDN_HighResolutionRewrite(t *testing.T) {
	got := upgradeCDN("https://mmbiz.qpic.cn/mmbiz_jpg/abc/0?wx_fmt=png")
	if !strings.Contains(got, "/640?") {
		t.Fatalf("low-res segment not rewritten: %q", got)
	}
	if !strings.Contains(got, "&timestamp=") {
		t.Fatalf("cache buster missing: %q", got)
	}
}

func TestUpgradeCDN_AppendsFormatWhenNoQuery(t *testing.T) {
	got := upgradeCDN("https://mmbiz.qpic.cn/mmbiz_jpg/abc/640")
	if !strings.Contains(got, "?wx_fmt=jpeg") {
		t.Fatalf("default format missing: %q", got)
	}
}

func TestUpgradeCDN_PassthroughForOtherHosts(t *testing.T) {
	got := upgradeCDN("https://example.com/a.jpg")
	if got != "https://example.com/a.jpg" {
		t.Fatalf("got %q", got)
	}
}

func TestFetchAndStore_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		w.Write([]byte("pngbytes"))
	}))
	defer srv.Close()

	dir := t.TempDir()
	f := NewFetcher(map[string]string{"User-Agent": "test"})
	name, ok := f.FetchAndStore(srv.URL+"/img", dir)
	if !ok {
		t.Fatalf("expected success")
	}
	if filepath.Ext(name) != ".png" {
		t.Fatalf("extension from content type: %q", name)
	}
	b, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		t.Fatalf("read stored image: %v", err)
	}
	if string(b) != "pngbytes" {
		t.Fatalf("stored bytes mismatch: %q", string(b))
	}
}

func TestFetchAndStore_Non200IsOmitted(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	if _, ok := NewFetcher(nil).FetchAndStore(srv.URL+"/gone", t.TempDir()); ok {
		t.Fatalf("404 must not produce a file")
	}
}

func TestFetchAndStore_TransportErrorIsOmitted(t *testing.T) {
	if _, ok := NewFetcher(nil).FetchAndStore("http://127.0.0.1:1/x", t.TempDir()); ok {
		t.Fatalf("connection error must not produce a file")
	}
}

func TestFetchAndStore_DefaultExtensionIsJpg(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/octet-stream")
		w.Write([]byte("x"))
	}))
	defer srv.Close()

	name, ok := NewFetcher(nil).FetchAndStore(srv.URL, t.TempDir())
	if !ok || filepath.Ext(name) != ".jpg" {
		t.Fatalf("got %q ok=%v", name, ok)
	}
}
