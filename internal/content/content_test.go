package content

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
)

func parse(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return doc
}

func TestExtract_MissingContainerIsNormal(t *testing.T) {
	text, sc := Extract(parse(t, "<html><body><p>no container here</p></body></html>"))
	if text != "" {
		t.Fatalf("expected empty text, got %q", text)
	}
	if !sc.Empty() {
		t.Fatalf("expected empty structured content, got %+v", sc)
	}
}

func TestExtract_PlainTextJoinsBlocks(t *testing.T) {
	html := `<html><body><div id="js_content">
	<p> 第一段 </p>
	<p>第二段</p>
	</div></body></html>`
	text, _ := Extract(parse(t, html))
	if text != "第一段\n第二段" {
		t.Fatalf("got %q", text)
	}
}

func TestExtract_SkipsScriptText(t *testing.T) {
	html := `<html><body><div id="js_content">
	<p>正文</p>
	<script>var tracking = 1;</script>
	</div></body></html>`
	text, _ := Extract(parse(t, html))
	if strings.Contains(text, "tracking") {
		t.Fatalf("script text leaked: %q", text)
	}
}

func TestExtract_StructuredBuckets(t *testing.T) {
	html := `<html><body>
	<h1 id="activity-name"> 大标题 </h1>
	<div id="js_content">
	  <h2>第一节</h2>
	  <h3>小节</h3>
	  <p><strong>重点内容</strong></p>
	  <p>普通段落文本</p>
	</div></body></html>`
	_, sc := Extract(parse(t, html))

	if len(sc.Title) != 1 || sc.Title[0] != "大标题" {
		t.Fatalf("title bucket: %v", sc.Title)
	}
	if len(sc.Subtitle) != 2 || sc.Subtitle[0] != "第一节" || sc.Subtitle[1] != "小节" {
		t.Fatalf("subtitle bucket: %v", sc.Subtitle)
	}
	if len(sc.Strong) != 1 || sc.Strong[0] != "重点内容" {
		t.Fatalf("strong bucket: %v", sc.Strong)
	}
	if len(sc.Normal) != 1 || sc.Normal[0] != "普通段落文本" {
		t.Fatalf("normal bucket: %v", sc.Normal)
	}
}

func TestExtract_NormalExcludesStrongContainingParagraphs(t *testing.T) {
	// The paragraph wrapping the bold text contains the strong string
	// and must not be double counted in normal.
	html := `<html><body><div id="js_content">
	<p>前言：<strong>核心观点</strong>结束</p>
	<p>独立段落</p>
	</div></body></html>`
	_, sc := Extract(parse(t, html))

	if len(sc.Normal) != 1 || sc.Normal[0] != "独立段落" {
		t.Fatalf("normal bucket: %v", sc.Normal)
	}
}

func TestExtract_BoldTagCountsAsStrong(t *testing.T) {
	html := `<html><body><div id="js_content"><b>加粗</b></div></body></html>`
	_, sc := Extract(parse(t, html))
	if len(sc.Strong) != 1 || sc.Strong[0] != "加粗" {
		t.Fatalf("strong bucket: %v", sc.Strong)
	}
}
