package worklist

import (
	"regexp"
	"strings"
)

// Article link shapes used by mp.weixin.qq.com: the short path form
// (/s/<token>) and the long query form (/s?__biz=...&mid=...).
var linkPatterns = []*regexp.Regexp{
	regexp.MustCompile(`https://mp\.weixin\.qq\.com/s/[a-zA-Z0-9_\-]+`),
	regexp.MustCompile(`https://mp\.weixin\.qq\.com/s\?[^"\s\n]+`),
}

// Extract scans free-form text for WeChat article links. Matches are
// collected pattern by pattern in scan order, canonicalized, and
// de-duplicated so the result contains each article at most once.
func Extract(text string) []string {
	seen := map[string]struct{}{}
	out := make([]string, 0, 8)
	for _, re := range linkPatterns {
		for _, m := range re.FindAllString(text, -1) {
			key := Canonical(m)
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, key)
		}
	}
	return out
}

// Canonical strips everything from the first '?' onward. Two links that
// differ only in query parameters identify the same article.
func Canonical(rawURL string) string {
	if i := strings.IndexByte(rawURL, '?'); i >= 0 {
		return rawURL[:i]
	}
	return rawURL
}
