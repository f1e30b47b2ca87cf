// Package app wires the pipeline together: work-list loading, page
// fetch, metadata and content extraction, keyword analysis, image
// download, document assembly, and persistence. One URL is fully
// processed before the next begins; the caller serializes invocations.
package app

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"time"
	"unicode/utf8"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog/log"

	"github.com/redyuan43/wechat-articles-spider/internal/compose"
	"github.com/redyuan43/wechat-articles-spider/internal/content"
	"github.com/redyuan43/wechat-articles-spider/internal/fetch"
	"github.com/redyuan43/wechat-articles-spider/internal/images"
	"github.com/redyuan43/wechat-articles-spider/internal/keywords"
	"github.com/redyuan43/wechat-articles-spider/internal/metadata"
	"github.com/redyuan43/wechat-articles-spider/internal/store"
	"github.com/redyuan43/wechat-articles-spider/internal/worklist"
)

// emptyBodyPlaceholder stands in for articles whose content container is
// missing (deleted or paywalled pages).
const emptyBodyPlaceholder = "未找到文章内容"

// App holds the long-lived pipeline collaborators.
type App struct {
	cfg      Config
	client   *fetch.Client
	fetcher  *images.Fetcher
	analyzer *keywords.Analyzer
	store    *store.Store
	conv     *md.Converter
}

// New builds the pipeline. Failing to create the output tree or load
// the segmentation dictionaries is an environment problem and fatal.
func New(cfg Config) (*App, error) {
	st, err := store.New(cfg.OutputDir)
	if err != nil {
		return nil, err
	}

	analyzer, err := keywords.NewAnalyzer()
	if err != nil {
		return nil, fmt.Errorf("init keyword analyzer: %w", err)
	}

	client := &fetch.Client{Timeout: cfg.FetchTimeout}
	if cfg.CacheDir != "" {
		client.Cache = &fetch.PageCache{Dir: cfg.CacheDir}
	}

	return &App{
		cfg:      cfg,
		client:   client,
		fetcher:  images.NewFetcher(client.Headers()),
		analyzer: analyzer,
		store:    st,
		conv:     md.NewConverter("", true, nil),
	}, nil
}

// Store exposes the output tree, mainly for the watcher's dedup check.
func (a *App) Store() *store.Store { return a.store }

// Process runs the full pipeline for one URL and returns the persisted
// metadata record. Transport failures and missing structure degrade or
// skip per the error taxonomy; only filesystem trouble is returned.
func (a *App) Process(ctx context.Context, url string) (*metadata.Article, error) {
	log.Info().Str("url", url).Msg("processing article")

	body, err := a.client.Get(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", url, err)
	}

	art := metadata.Extract(doc, url)
	log.Info().Str("nickname", art.Nickname).Str("title", art.Title).
		Str("publish_time", art.PublishTime).Msg("metadata extracted")

	text, structured := content.Extract(doc)
	art.ContentLength = utf8.RuneCountInString(text)

	if text != "" {
		analysis := a.analyzer.Analyze(text, structured, a.cfg.TopK)
		art.KeywordAnalysis = &analysis
		log.Debug().Int("total_words", analysis.TotalWords).
			Int("unique_words", analysis.UniqueWords).Msg("keywords analyzed")
	}

	safeTitle := store.SafeTitle(art.Title)
	dir, imagesDir, err := a.store.ArticleDir(safeTitle)
	if err != nil {
		return nil, err
	}

	bodyMarkdown := emptyBodyPlaceholder
	container := doc.Find("div#js_content").First()
	if container.Length() > 0 {
		art.ImageCount = a.localizeImages(container, imagesDir)
		bodyMarkdown = a.conv.Convert(container)
	}

	full := compose.Document(art, bodyMarkdown)
	if err := a.store.SaveDocument(dir, safeTitle, full); err != nil {
		return nil, err
	}
	if err := a.store.SaveText(dir, safeTitle, text); err != nil {
		return nil, err
	}
	if err := a.store.SaveMetadata(dir, safeTitle, art); err != nil {
		return nil, err
	}
	if art.KeywordAnalysis != nil {
		if err := a.store.SaveKeywords(dir, safeTitle, *art.KeywordAnalysis); err != nil {
			return nil, err
		}
	}
	if a.cfg.PDFFontPath != "" {
		pdfPath := filepath.Join(dir, safeTitle+".pdf")
		if err := compose.WritePDF(full, a.cfg.PDFFontPath, pdfPath); err != nil {
			log.Warn().Err(err).Str("path", pdfPath).Msg("pdf rendering failed")
		}
	}

	log.Info().Str("dir", dir).Int("images", art.ImageCount).Msg("article saved")
	return &art, nil
}

// localizeImages downloads every resolvable image in the container and
// rewrites its src to the stored copy so the converted body references
// local files. Failed downloads leave the original reference untouched.
func (a *App) localizeImages(container *goquery.Selection, imagesDir string) int {
	count := 0
	container.Find("img").Each(func(_ int, img *goquery.Selection) {
		u := images.Resolve(img)
		if u == "" {
			return
		}
		name, ok := a.fetcher.FetchAndStore(u, imagesDir)
		if !ok {
			return
		}
		count++
		img.SetAttr("src", "images/"+name)
		img.RemoveAttr("data-src")
	})
	return count
}

// RunBatch loads the pending list, processes the remaining items
// sequentially with the configured inter-item delay, writes the batch
// summary report, and updates status along the way. Per-item failures
// are logged and skipped.
func (a *App) RunBatch(ctx context.Context, status *Status) (succeeded int, total int, err error) {
	pending, err := worklist.LoadPending(a.cfg.PendingPath, a.store.ProcessedURLs())
	if err != nil {
		return 0, 0, err
	}
	if len(pending) == 0 {
		log.Info().Msg("nothing to process")
		return 0, 0, nil
	}

	delay := a.cfg.ItemDelay
	if delay <= 0 {
		delay = DefaultItemDelay
	}

	var done []metadata.Article
	for i, url := range pending {
		status.SetCurrent(fmt.Sprintf("正在处理 %d/%d: %s", i+1, len(pending), url))
		art, perr := a.Process(ctx, url)
		if perr != nil {
			log.Warn().Err(perr).Str("url", url).Msg("article skipped")
		} else {
			done = append(done, *art)
		}
		if i < len(pending)-1 {
			select {
			case <-ctx.Done():
				return len(done), len(pending), ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	if len(done) > 0 {
		if path, serr := a.store.SaveSummary(compose.Summary(done)); serr != nil {
			log.Warn().Err(serr).Msg("summary report failed")
		} else {
			log.Info().Str("path", path).Msg("summary report written")
		}
	}

	status.RecordBatch(len(pending), len(done))
	status.SetCurrent(fmt.Sprintf("✅ 完成处理 %d 个URL，成功 %d 个", len(pending), len(done)))
	return len(done), len(pending), nil
}
