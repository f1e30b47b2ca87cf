// Package store owns the on-disk output tree: one directory per article
// holding the composite Markdown document, the plain-text, metadata and
// keyword sidecars, and a downloaded images directory. The metadata
// sidecar doubles as the durable "already processed" marker.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/redyuan43/wechat-articles-spider/internal/keywords"
	"github.com/redyuan43/wechat-articles-spider/internal/metadata"
	"github.com/redyuan43/wechat-articles-spider/internal/worklist"
)

const metadataSuffix = "_metadata.json"

// SafeTitle turns an article title into a filesystem-safe directory
// name: NFC-normalized, the characters \/*?:"<>| removed, capped at 50
// runes, surrounding whitespace trimmed.
func SafeTitle(title string) string {
	title = norm.NFC.String(title)
	var b strings.Builder
	for _, r := range title {
		switch r {
		case '\\', '/', '*', '?', ':', '"', '<', '>', '|':
			continue
		}
		b.WriteRune(r)
	}
	runes := []rune(b.String())
	if len(runes) > 50 {
		runes = runes[:50]
	}
	return strings.TrimSpace(string(runes))
}

// Store writes article output under a fixed root directory.
type Store struct {
	Root string
}

// New ensures the root directory exists.
func New(root string) (*Store, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	return &Store{Root: root}, nil
}

// ArticleDir creates (if needed) and returns the directory for one
// article plus its images subdirectory.
func (s *Store) ArticleDir(safeTitle string) (dir string, imagesDir string, err error) {
	dir = filepath.Join(s.Root, safeTitle)
	imagesDir = filepath.Join(dir, "images")
	if err := os.MkdirAll(imagesDir, 0o755); err != nil {
		return "", "", fmt.Errorf("create article dir: %w", err)
	}
	return dir, imagesDir, nil
}

// SaveDocument writes the composite Markdown document.
func (s *Store) SaveDocument(dir, safeTitle, markdown string) error {
	return writeText(filepath.Join(dir, safeTitle+".md"), markdown)
}

// SaveText writes the plain-text sidecar.
func (s *Store) SaveText(dir, safeTitle, text string) error {
	return writeText(filepath.Join(dir, safeTitle+"_content.txt"), text)
}

// SaveMetadata writes the metadata sidecar, the marker consulted by the
// dedup scan on later runs.
func (s *Store) SaveMetadata(dir, safeTitle string, art metadata.Article) error {
	return writeJSON(filepath.Join(dir, safeTitle+metadataSuffix), art)
}

// SaveKeywords writes the keyword sidecar.
func (s *Store) SaveKeywords(dir, safeTitle string, analysis keywords.Analysis) error {
	return writeJSON(filepath.Join(dir, safeTitle+"_keywords.json"), analysis)
}

// SaveSummary writes the batch summary report at the tree root.
func (s *Store) SaveSummary(markdown string) (string, error) {
	path := filepath.Join(s.Root, "summary_report.md")
	return path, writeText(path, markdown)
}

// ProcessedURLs scans every article directory for metadata sidecars and
// returns the canonical URLs found. Sidecars that cannot be read or
// parsed are skipped; a missing tree yields an empty set.
func (s *Store) ProcessedURLs() map[string]struct{} {
	processed := map[string]struct{}{}
	entries, err := os.ReadDir(s.Root)
	if err != nil {
		return processed
	}
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		dir := filepath.Join(s.Root, e.Name())
		files, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		for _, f := range files {
			if !strings.HasSuffix(f.Name(), metadataSuffix) {
				continue
			}
			b, err := os.ReadFile(filepath.Join(dir, f.Name()))
			if err != nil {
				continue
			}
			var rec struct {
				URL string `json:"url"`
			}
			if err := json.Unmarshal(b, &rec); err != nil || rec.URL == "" {
				continue
			}
			processed[worklist.Canonical(rec.URL)] = struct{}{}
		}
	}
	return processed
}

func writeText(path, text string) error {
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func writeJSON(path string, v any) error {
	var sb strings.Builder
	enc := json.NewEncoder(&sb)
	// Keep URLs and CJK text readable in the sidecars.
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return writeText(path, sb.String())
}
