package compose

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/redyuan43/wechat-articles-spider/internal/metadata"
)

// Summary renders the batch report: every processed article and a
// per-publisher tally, most prolific publisher first.
func Summary(articles []metadata.Article) string {
	var md strings.Builder

	md.WriteString("# 微信文章抓取汇总报告\n\n")
	fmt.Fprintf(&md, "生成时间: %s\n\n", time.Now().Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&md, "总计抓取文章数: %d\n\n", len(articles))

	md.WriteString("## 文章列表\n\n")
	md.WriteString("| 序号 | 公众号 | 标题 | 发布时间 | 词数 | 图片数 |\n")
	md.WriteString("|------|--------|------|----------|------|--------|\n")
	for i, art := range articles {
		fmt.Fprintf(&md, "| %d | %s | %s | %s | %d | %d |\n",
			i+1, art.Nickname, shorten(art.Title, 30), art.PublishTime,
			art.ContentLength, art.ImageCount)
	}

	md.WriteString("\n## 公众号统计\n\n")
	md.WriteString("| 公众号 | 文章数 |\n")
	md.WriteString("|--------|--------|\n")
	for _, t := range tally(articles) {
		fmt.Fprintf(&md, "| %s | %d |\n", t.nickname, t.count)
	}

	return md.String()
}

type publisherCount struct {
	nickname string
	count    int
}

func tally(articles []metadata.Article) []publisherCount {
	counts := map[string]int{}
	order := make([]string, 0, len(articles))
	for _, art := range articles {
		if _, ok := counts[art.Nickname]; !ok {
			order = append(order, art.Nickname)
		}
		counts[art.Nickname]++
	}
	out := make([]publisherCount, 0, len(order))
	for _, n := range order {
		out = append(out, publisherCount{nickname: n, count: counts[n]})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].count > out[j].count })
	return out
}

func shorten(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}
