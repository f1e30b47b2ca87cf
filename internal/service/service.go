// Package service is the long-running companion: it watches the pending
// file for pasted links, runs the pipeline over whatever appears, and
// exposes progress through a minimal status page.
package service

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/redyuan43/wechat-articles-spider/internal/app"
	"github.com/redyuan43/wechat-articles-spider/internal/worklist"
)

// Service polls the urls file and processes batches as they appear. The
// poll loop and the processing run are serialized: a batch finishes
// before the file is examined again.
type Service struct {
	cfg    app.Config
	app    *app.App
	status *app.Status
	// Delay between items inside a watched batch. Shorter than the
	// batch CLI's because pasted batches are small.
	itemDelay time.Duration
}

// New builds the service around an already-constructed pipeline.
func New(cfg app.Config, a *app.App) *Service {
	return &Service{
		cfg:       cfg,
		app:       a,
		status:    app.NewStatus(),
		itemDelay: time.Second,
	}
}

// Status exposes the state object for the HTTP surface.
func (s *Service) Status() *app.Status { return s.status }

// Run starts the watch loop and blocks until ctx is cancelled. The urls
// file is created empty when missing so users have something to paste
// into.
func (s *Service) Run(ctx context.Context) error {
	if _, err := os.Stat(s.cfg.PendingPath); os.IsNotExist(err) {
		if werr := os.WriteFile(s.cfg.PendingPath, nil, 0o644); werr != nil {
			return fmt.Errorf("create pending file: %w", werr)
		}
	}

	interval := s.cfg.CheckInterval
	if interval <= 0 {
		interval = app.DefaultCheckInterval
	}

	log.Info().Str("path", s.cfg.PendingPath).Dur("interval", interval).Msg("watching pending file")
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if !s.fileNonEmpty() {
				continue
			}
			s.processFile(ctx)
		}
	}
}

func (s *Service) fileNonEmpty() bool {
	info, err := os.Stat(s.cfg.PendingPath)
	if err != nil {
		return false
	}
	return info.Size() > 0
}

// processFile turns the file's free-form text into a work list, runs
// the pipeline over it, and clears the file. Already-processed articles
// are skipped so re-pasting a link is harmless.
func (s *Service) processFile(ctx context.Context) {
	b, err := os.ReadFile(s.cfg.PendingPath)
	if err != nil {
		log.Warn().Err(err).Str("path", s.cfg.PendingPath).Msg("read pending file failed")
		return
	}
	text := strings.TrimSpace(string(b))
	if text == "" {
		return
	}

	s.status.SetCurrent("正在提取URLs...")
	urls := worklist.Extract(text)
	if len(urls) == 0 {
		log.Info().Msg("no article links found in pending file")
		s.clearFile()
		return
	}

	log.Info().Int("count", len(urls)).Msg("processing watched batch")
	processed := s.app.Store().ProcessedURLs()

	succeeded := 0
	for i, url := range urls {
		s.status.SetCurrent(fmt.Sprintf("正在处理 %d/%d: %s", i+1, len(urls), truncate(url, 50)))
		if _, ok := processed[worklist.Canonical(url)]; ok {
			log.Info().Str("url", url).Msg("already processed, skipping")
			continue
		}
		if _, err := s.app.Process(ctx, url); err != nil {
			log.Warn().Err(err).Str("url", url).Msg("article skipped")
		} else {
			succeeded++
		}
		if i < len(urls)-1 {
			select {
			case <-ctx.Done():
				return
			case <-time.After(s.itemDelay):
			}
		}
	}

	s.status.RecordBatch(len(urls), succeeded)
	s.status.SetCurrent(fmt.Sprintf("✅ 完成处理 %d 个URL，成功 %d 个", len(urls), succeeded))
	s.clearFile()
}

func (s *Service) clearFile() {
	if err := os.WriteFile(s.cfg.PendingPath, nil, 0o644); err != nil {
		log.Warn().Err(err).Str("path", s.cfg.PendingPath).Msg("clear pending file failed")
		return
	}
	log.Info().Msg("pending file cleared")
}

// Handler returns the HTTP surface: the status page and its JSON API.
func (s *Service) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/api/status", s.handleStatus)
	return mux
}

func (s *Service) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	pending, _ := filepath.Abs(s.cfg.PendingPath)
	output, _ := filepath.Abs(s.cfg.OutputDir)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	renderIndex(w, pending, output)
}

func (s *Service) handleStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, s.status.Snapshot())
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
