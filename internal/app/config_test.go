package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadConfigFile_YAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `pending: my_urls.txt
output: articles
itemDelay: 3s
fetch:
  timeout: 20s
  cacheDir: .page-cache
keywords:
  topK: 30
service:
  listen: ":9090"
  checkInterval: 5s
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	fc, err := LoadConfigFile(path)
	if err != nil {
		t.Fatalf("LoadConfigFile: %v", err)
	}
	if fc.Pending != "my_urls.txt" || fc.Output != "articles" {
		t.Fatalf("paths: %+v", fc)
	}
	if fc.ItemDelay != "3s" || fc.Fetch.Timeout != "20s" {
		t.Fatalf("durations: %+v", fc)
	}
	if fc.Keywords.TopK != 30 || fc.Service.Listen != ":9090" {
		t.Fatalf("sections: %+v", fc)
	}
}

func TestApplyFileConfig_FlagsKeepPrecedence(t *testing.T) {
	cfg := Config{
		PendingPath: "explicit.txt",
		OutputDir:   DefaultOutputDir,
		ItemDelay:   DefaultItemDelay,
		TopK:        DefaultTopK,
	}
	var fc FileConfig
	fc.Pending = "from_file.txt"
	fc.Output = "from_file_out"
	fc.ItemDelay = "5s"

	ApplyFileConfig(&cfg, fc)

	if cfg.PendingPath != "explicit.txt" {
		t.Fatalf("explicit flag overridden: %q", cfg.PendingPath)
	}
	if cfg.OutputDir != "from_file_out" {
		t.Fatalf("default not overlaid: %q", cfg.OutputDir)
	}
	if cfg.ItemDelay != 5*time.Second {
		t.Fatalf("default delay not overlaid: %v", cfg.ItemDelay)
	}
}

func TestValidateConfig(t *testing.T) {
	ok := Config{PendingPath: "urls.txt", OutputDir: "out"}
	if err := ValidateConfig(ok); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}
	if err := ValidateConfig(Config{OutputDir: "out"}); err == nil {
		t.Fatalf("missing pending path accepted")
	}
	if err := ValidateConfig(Config{PendingPath: "urls.txt"}); err == nil {
		t.Fatalf("missing output dir accepted")
	}
	bad := ok
	bad.ItemDelay = -time.Second
	if err := ValidateConfig(bad); err == nil {
		t.Fatalf("negative delay accepted")
	}
}
