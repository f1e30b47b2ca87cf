// Package compose renders the extracted article into its final
// documents: the composite Markdown file, the batch summary report, and
// an optional PDF rendition.
package compose

import (
	"fmt"
	"strings"

	"github.com/redyuan43/wechat-articles-spider/internal/keywords"
	"github.com/redyuan43/wechat-articles-spider/internal/metadata"
)

// Document renders the composite Markdown for one article: title,
// information table, keyword tables, converted body, comment section.
// Optional metadata rows appear only when the field was extracted.
func Document(art metadata.Article, body string) string {
	var md strings.Builder

	fmt.Fprintf(&md, "# %s\n\n", art.Title)

	md.WriteString("## 文章信息\n\n")
	md.WriteString("| 项目 | 内容 |\n")
	md.WriteString("|------|------|\n")
	fmt.Fprintf(&md, "| 公众号名称 | %s |\n", art.Nickname)
	fmt.Fprintf(&md, "| 文章标题 | %s |\n", art.Title)
	fmt.Fprintf(&md, "| 发布时间 | %s |\n", art.PublishTime)
	fmt.Fprintf(&md, "| 发布日期 | %s |\n", art.PublishDate)
	fmt.Fprintf(&md, "| 文章链接 | [点击查看](%s) |\n", art.Link)
	if art.Biz != "" {
		fmt.Fprintf(&md, "| 公众号ID | %s |\n", art.Biz)
	}
	if art.Mid != "" {
		fmt.Fprintf(&md, "| 文章MID | %s |\n", art.Mid)
	}
	if art.Sn != "" {
		fmt.Fprintf(&md, "| 文章SN | %s |\n", art.Sn)
	}
	if art.Idx != "" {
		fmt.Fprintf(&md, "| 文章索引 | %s |\n", art.Idx)
	}
	fmt.Fprintf(&md, "| 内容长度 | %d 字符 |\n", art.ContentLength)
	fmt.Fprintf(&md, "| 图片数量 | %d 张 |\n", art.ImageCount)
	fmt.Fprintf(&md, "| 抓取时间 | %s |\n\n", art.CrawlTime)

	if art.KeywordAnalysis != nil {
		writeKeywordSection(&md, *art.KeywordAnalysis)
	}

	md.WriteString("---\n\n")
	md.WriteString("## 文章内容\n\n")
	md.WriteString(body)

	md.WriteString("\n\n---\n\n")
	md.WriteString("## 评论区\n\n")
	if art.CommentID != "" {
		fmt.Fprintf(&md, "评论ID: %s\n\n", art.CommentID)
		md.WriteString("注：微信公众号评论需要通过特殊接口获取完整内容。\n")
	} else {
		md.WriteString("暂无评论或评论已关闭\n")
	}

	return md.String()
}

func writeKeywordSection(md *strings.Builder, a keywords.Analysis) {
	md.WriteString("## 关键词分析\n\n")

	md.WriteString("### 统计信息\n")
	fmt.Fprintf(md, "- 总词数: %d\n", a.TotalWords)
	fmt.Fprintf(md, "- 独特词数: %d\n\n", a.UniqueWords)

	md.WriteString("### Top 10 关键词（按加权得分）\n\n")
	md.WriteString("| 排名 | 关键词 | 得分 |\n")
	md.WriteString("|------|--------|------|\n")
	for i, ws := range top(a.KeywordScores, 10) {
		fmt.Fprintf(md, "| %d | %s | %.2f |\n", i+1, ws.Word, ws.Score)
	}
	md.WriteString("\n")

	md.WriteString("### Top 10 关键词（按出现次数）\n\n")
	md.WriteString("| 排名 | 关键词 | 次数 |\n")
	md.WriteString("|------|--------|------|\n")
	for i, wc := range top(a.KeywordCounts, 10) {
		fmt.Fprintf(md, "| %d | %s | %d |\n", i+1, wc.Word, wc.Count)
	}
	md.WriteString("\n")

	if len(a.TFIDFKeywords) > 0 {
		md.WriteString("### TF-IDF 关键词\n\n")
		md.WriteString("| 排名 | 关键词 | 权重 |\n")
		md.WriteString("|------|--------|------|\n")
		for i, ww := range top(a.TFIDFKeywords, 10) {
			fmt.Fprintf(md, "| %d | %s | %.4f |\n", i+1, ww.Word, ww.Weight)
		}
		md.WriteString("\n")
	}
}

func top[T any](s []T, n int) []T {
	if len(s) > n {
		return s[:n]
	}
	return s
}
