// Package content pulls the body of a WeChat article out of its parsed
// page: the full plain text plus a structurally tagged view used by the
// keyword analyzer to weight words by where they appear.
package content

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// containerSelector is the single body container WeChat renders article
// content into. Pages without it (deleted, paywalled, malformed) are a
// normal outcome, not an error.
const containerSelector = "div#js_content"

// Structured is the positionally tagged view of an article body. Normal
// excludes paragraphs that contain an already-captured strong string;
// this is a best-effort substring heuristic, not a strict partition.
type Structured struct {
	Title    []string
	Subtitle []string
	Strong   []string
	Normal   []string
}

// Empty reports whether no bucket captured anything.
func (s Structured) Empty() bool {
	return len(s.Title) == 0 && len(s.Subtitle) == 0 && len(s.Strong) == 0 && len(s.Normal) == 0
}

// Extract returns the container's plain text and the structured view.
// A page without the content container yields ("", Structured{}).
func Extract(doc *goquery.Document) (string, Structured) {
	container := doc.Find(containerSelector).First()
	if container.Length() == 0 {
		return "", Structured{}
	}

	text := nodeText(container)

	var sc Structured
	if t := strings.TrimSpace(doc.Find("h1#activity-name").First().Text()); t != "" {
		sc.Title = append(sc.Title, t)
	}
	container.Find("h2, h3, h4").Each(func(_ int, s *goquery.Selection) {
		sc.Subtitle = append(sc.Subtitle, strings.TrimSpace(s.Text()))
	})
	container.Find("strong, b").Each(func(_ int, s *goquery.Selection) {
		sc.Strong = append(sc.Strong, strings.TrimSpace(s.Text()))
	})
	container.Find("p").Each(func(_ int, s *goquery.Selection) {
		t := strings.TrimSpace(s.Text())
		if t == "" || containsAnyStrong(t, sc.Strong) {
			return
		}
		sc.Normal = append(sc.Normal, t)
	})
	return text, sc
}

func containsAnyStrong(text string, strong []string) bool {
	for _, s := range strong {
		if s != "" && strings.Contains(text, s) {
			return true
		}
	}
	return false
}

// nodeText collects every text node under the selection, trimmed, one
// per line. Scripts and styles are skipped so tracking snippets inside
// the body do not leak into the article text.
func nodeText(sel *goquery.Selection) string {
	var parts []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch strings.ToLower(n.Data) {
			case "script", "style":
				return
			}
		}
		if n.Type == html.TextNode {
			if t := strings.TrimSpace(n.Data); t != "" {
				parts = append(parts, t)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, n := range sel.Nodes {
		walk(n)
	}
	return strings.Join(parts, "\n")
}
