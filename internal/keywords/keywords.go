// Package keywords segments article text and ranks keywords three ways:
// raw frequency, position-weighted score, and the segmenter's own TF-IDF
// ranking. It mirrors how readers weigh words: a word in the headline
// matters more than the same word buried in a paragraph.
package keywords

import (
	"fmt"
	"sort"
	"strings"
	"unicode"

	"github.com/go-ego/gse"
	"github.com/go-ego/gse/hmm/idf"

	"github.com/redyuan43/wechat-articles-spider/internal/content"
)

// Position weights applied during scoring. Normal text is weighted once
// against a word's global frequency rather than per bucket occurrence;
// the title/subtitle/strong buckets are scored by literal occurrence
// counts inside each bucket entry.
const (
	titleWeight    = 3.0
	subtitleWeight = 2.0
	strongWeight   = 1.5
	normalWeight   = 1.0
)

// WordCount is one frequency-table entry.
type WordCount struct {
	Word  string `json:"word"`
	Count int    `json:"count"`
}

// WordScore is one weighted-score entry.
type WordScore struct {
	Word  string  `json:"word"`
	Score float64 `json:"score"`
}

// WordWeight is one TF-IDF entry.
type WordWeight struct {
	Word   string  `json:"word"`
	Weight float64 `json:"weight"`
}

// Analysis is the full keyword report for one article. The count and
// score tables are ordered descending; ties keep first-appearance order.
type Analysis struct {
	KeywordCounts []WordCount  `json:"keyword_counts"`
	KeywordScores []WordScore  `json:"keyword_scores"`
	TFIDFKeywords []WordWeight `json:"tfidf_keywords"`
	TotalWords    int          `json:"total_words"`
	UniqueWords   int          `json:"unique_words"`
}

// Analyzer wraps a loaded gse segmenter and its TF-IDF extracter.
// Loading the dictionaries is relatively expensive, so construct one
// Analyzer and reuse it across articles.
type Analyzer struct {
	seg gse.Segmenter
	tag idf.TagExtracter
}

// NewAnalyzer loads the default Chinese dictionary and IDF corpus.
func NewAnalyzer() (*Analyzer, error) {
	a := &Analyzer{}
	if err := a.seg.LoadDict(); err != nil {
		return nil, fmt.Errorf("load segmenter dict: %w", err)
	}
	a.tag.WithGse(a.seg)
	if err := a.tag.LoadIdf(); err != nil {
		return nil, fmt.Errorf("load idf corpus: %w", err)
	}
	return a, nil
}

// Analyze segments plain text, builds the frequency table, scores every
// word against the structured buckets, and asks the segmenter for its
// TF-IDF ranking. topK bounds each ranked table; zero or negative means
// the default of 20.
func (a *Analyzer) Analyze(text string, sc content.Structured, topK int) Analysis {
	if topK <= 0 {
		topK = 20
	}

	counts := map[string]int{}
	order := make([]string, 0, 64)
	for _, w := range a.seg.Cut(text, true) {
		// Single-byte tokens and pure punctuation carry no signal.
		if len(w) <= 1 || !hasWordChar(w) {
			continue
		}
		if _, ok := counts[w]; !ok {
			order = append(order, w)
		}
		counts[w]++
	}

	total := 0
	for _, c := range counts {
		total += c
	}

	scores := make([]WordScore, 0, len(order))
	for _, w := range order {
		score := 0.0
		for _, t := range sc.Title {
			score += titleWeight * float64(strings.Count(t, w))
		}
		for _, t := range sc.Subtitle {
			score += subtitleWeight * float64(strings.Count(t, w))
		}
		for _, t := range sc.Strong {
			score += strongWeight * float64(strings.Count(t, w))
		}
		score += normalWeight * float64(counts[w])
		if score > 0 {
			scores = append(scores, WordScore{Word: w, Score: score})
		}
	}
	stableSortByScore(scores)

	byCount := make([]WordCount, 0, len(order))
	for _, w := range order {
		byCount = append(byCount, WordCount{Word: w, Count: counts[w]})
	}
	stableSortByCount(byCount)

	return Analysis{
		KeywordCounts: truncCounts(byCount, topK),
		KeywordScores: truncScores(scores, topK),
		TFIDFKeywords: a.tfidf(text, topK),
		TotalWords:    total,
		UniqueWords:   len(counts),
	}
}

// tfidf returns the segmenter's native TF-IDF ranking. A failure inside
// the extracter is non-fatal and yields an empty table.
func (a *Analyzer) tfidf(text string, topK int) (out []WordWeight) {
	out = []WordWeight{}
	defer func() {
		if recover() != nil {
			out = []WordWeight{}
		}
	}()
	segs := a.tag.ExtractTags(text, topK)
	for _, s := range segs {
		out = append(out, WordWeight{Word: s.Text, Weight: s.Weight})
	}
	return out
}

func hasWordChar(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' {
			return true
		}
	}
	return false
}

// Stable sorts keep first-appearance order among ties, matching how the
// tables read when many words share a count.
func stableSortByScore(s []WordScore) {
	sort.SliceStable(s, func(i, j int) bool { return s[i].Score > s[j].Score })
}

func stableSortByCount(s []WordCount) {
	sort.SliceStable(s, func(i, j int) bool { return s[i].Count > s[j].Count })
}

func truncCounts(s []WordCount, k int) []WordCount {
	if len(s) > k {
		s = s[:k]
	}
	return s
}

func truncScores(s []WordScore, k int) []WordScore {
	if len(s) > k {
		s = s[:k]
	}
	return s
}
