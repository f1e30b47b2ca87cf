package worklist

import (
	"reflect"
	"testing"
)

func TestExtract_PathStyleLinks(t *testing.T) {
	text := "看看这篇 https://mp.weixin.qq.com/s/AbC123_-x 不错\n" +
		"还有 https://mp.weixin.qq.com/s/ZzZ999"
	got := Extract(text)
	want := []string{
		"https://mp.weixin.qq.com/s/AbC123_-x",
		"https://mp.weixin.qq.com/s/ZzZ999",
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestExtract_CanonicalizesQueryLinks(t *testing.T) {
	text := "https://mp.weixin.qq.com/s/AbC123?from=timeline&isappinstalled=0"
	got := Extract(text)
	if len(got) != 1 {
		t.Fatalf("expected one link, got %v", got)
	}
	if got[0] != "https://mp.weixin.qq.com/s/AbC123" {
		t.Fatalf("expected canonical form, got %q", got[0])
	}
}

func TestExtract_DeduplicatesByCanonicalKey(t *testing.T) {
	text := "https://mp.weixin.qq.com/s/AbC123?a=1\n" +
		"https://mp.weixin.qq.com/s/AbC123?b=2\n" +
		"https://mp.weixin.qq.com/s/AbC123\n"
	got := Extract(text)
	if len(got) != 1 {
		t.Fatalf("expected one canonical link, got %v", got)
	}
}

func TestExtract_IgnoresForeignLinks(t *testing.T) {
	text := "https://example.com/s/AbC123 and plain prose"
	if got := Extract(text); len(got) != 0 {
		t.Fatalf("expected no links, got %v", got)
	}
}

func TestExtract_EmptyInput(t *testing.T) {
	if got := Extract(""); len(got) != 0 {
		t.Fatalf("expected no links, got %v", got)
	}
}

func TestCanonical(t *testing.T) {
	if got := Canonical("https://mp.weixin.qq.com/s/A?x=1&y=2"); got != "https://mp.weixin.qq.com/s/A" {
		t.Fatalf("got %q", got)
	}
	if got := Canonical("https://mp.weixin.qq.com/s/A"); got != "https://mp.weixin.qq.com/s/A" {
		t.Fatalf("got %q", got)
	}
}
