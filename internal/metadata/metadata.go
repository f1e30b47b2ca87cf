// Package metadata recovers a structured article record from a WeChat
// page. Every field is backed by an ordered list of strategies tried
// first-success-wins, so adding or reordering a source is a data change
// rather than new control flow. Script-variable scraping is the last
// resort for each field because it is the most fragile source.
package metadata

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/redyuan43/wechat-articles-spider/internal/keywords"
)

// Sentinel values used when no extraction strategy succeeds.
const (
	UnknownNickname = "未知公众号"
	UntitledTitle   = "无标题"
)

const timeLayout = "2006-01-02 15:04:05"

// Article is the persisted metadata record for one article. Field order
// here fixes the key order of the JSON sidecar.
type Article struct {
	URL         string `json:"url"`
	CrawlTime   string `json:"crawl_time"`
	Nickname    string `json:"nickname"`
	Title       string `json:"title"`
	Link        string `json:"link"`
	PublishTime string `json:"publish_time"`
	PublishDate string `json:"publish_date"`

	Mid       string `json:"mid,omitempty"`
	Sn        string `json:"sn,omitempty"`
	Idx       string `json:"idx,omitempty"`
	Biz       string `json:"biz,omitempty"`
	CommentID string `json:"comment_id,omitempty"`
	AppMsgID  string `json:"appmsgid,omitempty"`

	ContentLength   int                `json:"content_length"`
	ImageCount      int                `json:"image_count"`
	KeywordAnalysis *keywords.Analysis `json:"keyword_analysis,omitempty"`
}

// strategy is one way of recovering a field from the page. Strategies
// return "" on a miss; a miss is never an error.
type strategy func(*goquery.Document) string

func firstNonEmpty(doc *goquery.Document, strategies []strategy) string {
	for _, s := range strategies {
		if v := strings.TrimSpace(s(doc)); v != "" {
			return v
		}
	}
	return ""
}

func elementText(selector string) strategy {
	return func(doc *goquery.Document) string {
		return doc.Find(selector).First().Text()
	}
}

func metaContent(selector string) strategy {
	return func(doc *goquery.Document) string {
		v, _ := doc.Find(selector).First().Attr("content")
		return v
	}
}

// scriptMatch scans every embedded script in document order and returns
// the first capture group of the first matching pattern.
func scriptMatch(patterns ...*regexp.Regexp) strategy {
	return func(doc *goquery.Document) string {
		var out string
		doc.Find("script").EachWithBreak(func(_ int, s *goquery.Selection) bool {
			text := s.Text()
			if text == "" {
				return true
			}
			for _, re := range patterns {
				if m := re.FindStringSubmatch(text); m != nil {
					out = m[1]
					return false
				}
			}
			return true
		})
		return out
	}
}

var (
	reNickname    = regexp.MustCompile(`nickname\s*=\s*["'](.*?)["']`)
	reUserName    = regexp.MustCompile(`user_name\s*=\s*["'](.*?)["']`)
	reMsgTitle    = regexp.MustCompile(`msg_title\s*=\s*["'](.*?)["']`)
	rePublishTime = regexp.MustCompile(`publish_time\s*=\s*["'](.*?)["']`)
	reCt          = regexp.MustCompile(`ct\s*=\s*["'](.*?)["']`)
	reCreateTime  = regexp.MustCompile(`createTime\s*:\s*["'](.*?)["']`)
	reSvrTime     = regexp.MustCompile(`svr_time\s*=\s*["'](.*?)["']`)
	reCtStamp     = regexp.MustCompile(`ct\s*=\s*(\d{10})`)

	reMid       = regexp.MustCompile(`mid\s*=\s*["']*(\d+)`)
	reSn        = regexp.MustCompile(`sn\s*=\s*["']*([a-zA-Z0-9]+)`)
	reIdx       = regexp.MustCompile(`idx\s*=\s*["']*(\d+)`)
	reBiz       = regexp.MustCompile(`__biz\s*=\s*["']*([^"'\s]+)`)
	reCommentID = regexp.MustCompile(`comment_id\s*=\s*["']*(\d+)`)
	reAppMsgID  = regexp.MustCompile(`appmsgid\s*=\s*["']*(\d+)`)

	reURLMid = regexp.MustCompile(`mid=(\d+)`)
	reURLSn  = regexp.MustCompile(`sn=([a-zA-Z0-9]+)`)
	reURLBiz = regexp.MustCompile(`__biz=([^&]+)`)

	reDatePrefix = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}`)
	reUnixStamp  = regexp.MustCompile(`^\d{10}$`)
)

var nicknameStrategies = []strategy{
	elementText("span.rich_media_meta.rich_media_meta_nickname"),
	elementText("a#js_name"),
	elementText("strong.profile_nickname"),
	metaContent(`meta[name="author"]`),
	scriptMatch(reNickname, reUserName),
}

var titleStrategies = []strategy{
	elementText("h1#activity-name"),
	elementText("h1.rich_media_title"),
	metaContent(`meta[property="og:title"]`),
	scriptMatch(reMsgTitle),
}

var publishTimeStrategies = []strategy{
	elementText("em#publish_time"),
	metaContent(`meta[property="og:article:published_time"]`),
	scriptMatch(rePublishTime, reCt, reCreateTime, reSvrTime),
	timestampStrategy,
}

// timestampStrategy picks up a bare 10-digit UNIX timestamp assigned to
// ct and renders it as a formatted date-time.
func timestampStrategy(doc *goquery.Document) string {
	raw := scriptMatch(reCtStamp)(doc)
	if raw == "" {
		return ""
	}
	ts, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return ""
	}
	return time.Unix(ts, 0).Format(timeLayout)
}

// Extract builds the article record from the parsed page and its source
// URL. Every required field is populated: nickname and title fall back
// to sentinel values, publish time and date fall back to the extraction
// wall clock. No strategy miss ever surfaces as an error.
func Extract(doc *goquery.Document, sourceURL string) Article {
	now := time.Now()
	art := Article{
		URL:       sourceURL,
		CrawlTime: now.Format(timeLayout),
		Link:      sourceURL,
	}

	art.Nickname = firstNonEmpty(doc, nicknameStrategies)
	if art.Nickname == "" {
		art.Nickname = UnknownNickname
	}

	art.Title = firstNonEmpty(doc, titleStrategies)
	if art.Title == "" {
		art.Title = UntitledTitle
	}

	art.PublishTime = firstNonEmpty(doc, publishTimeStrategies)
	if art.PublishTime == "" {
		art.PublishTime = now.Format(timeLayout)
		art.PublishDate = now.Format("2006-01-02")
	} else {
		art.PublishDate = DeriveDate(art.PublishTime)
	}

	art.Mid = scriptMatch(reMid)(doc)
	art.Sn = scriptMatch(reSn)(doc)
	art.Idx = scriptMatch(reIdx)(doc)
	art.Biz = scriptMatch(reBiz)(doc)
	art.CommentID = scriptMatch(reCommentID)(doc)
	art.AppMsgID = scriptMatch(reAppMsgID)(doc)

	// The share-link query string carries mid/sn/biz when scripts do not.
	if art.Mid == "" {
		if m := reURLMid.FindStringSubmatch(sourceURL); m != nil {
			art.Mid = m[1]
		}
	}
	if art.Sn == "" {
		if m := reURLSn.FindStringSubmatch(sourceURL); m != nil {
			art.Sn = m[1]
		}
	}
	if art.Biz == "" {
		if m := reURLBiz.FindStringSubmatch(sourceURL); m != nil {
			art.Biz = m[1]
		}
	}

	return art
}

// DeriveDate reduces a publish-time string to a calendar date. Inputs it
// cannot interpret pass through verbatim; it never fails.
func DeriveDate(publishTime string) string {
	switch {
	case reDatePrefix.MatchString(publishTime):
		return strings.SplitN(publishTime, " ", 2)[0]
	case reUnixStamp.MatchString(publishTime):
		ts, err := strconv.ParseInt(publishTime, 10, 64)
		if err != nil {
			return publishTime
		}
		return time.Unix(ts, 0).Format("2006-01-02")
	default:
		return publishTime
	}
}
