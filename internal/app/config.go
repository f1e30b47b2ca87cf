package app

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	yaml "gopkg.in/yaml.v3"
)

// Config carries all pipeline and service settings.
type Config struct {
	// PendingPath is the plain-text work list, one URL per line.
	PendingPath string
	// OutputDir is the root of the article output tree.
	OutputDir string
	// CacheDir enables the on-disk page cache when non-empty.
	CacheDir string
	// FetchTimeout bounds one page fetch. Zero means the default.
	FetchTimeout time.Duration
	// ItemDelay is the pause between articles in a batch.
	ItemDelay time.Duration
	// TopK bounds each ranked keyword table.
	TopK int
	// PDFFontPath enables PDF rendition when it names a UTF-8 TTF file.
	PDFFontPath string

	// Watcher service settings.
	ListenAddr    string
	CheckInterval time.Duration

	Verbose bool
}

// FileConfig is the optional single-file configuration schema.
// Durations are strings in Go syntax ("2s", "500ms") because yaml.v3
// has no native duration decoding.
type FileConfig struct {
	Pending string `yaml:"pending" json:"pending"`
	Output  string `yaml:"output" json:"output"`

	Fetch struct {
		Timeout  string `yaml:"timeout" json:"timeout"`
		CacheDir string `yaml:"cacheDir" json:"cacheDir"`
	} `yaml:"fetch" json:"fetch"`

	Keywords struct {
		TopK int `yaml:"topK" json:"topK"`
	} `yaml:"keywords" json:"keywords"`

	PDF struct {
		Font string `yaml:"font" json:"font"`
	} `yaml:"pdf" json:"pdf"`

	Service struct {
		Listen        string `yaml:"listen" json:"listen"`
		CheckInterval string `yaml:"checkInterval" json:"checkInterval"`
	} `yaml:"service" json:"service"`

	ItemDelay string `yaml:"itemDelay" json:"itemDelay"`
	Verbose   bool   `yaml:"verbose" json:"verbose"`
}

// parseDuration is forgiving: a malformed duration in the file config
// reads as zero, which ApplyFileConfig treats as "not set".
func parseDuration(s string) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0
	}
	return d
}

// LoadConfigFile reads YAML or JSON into FileConfig.
func LoadConfigFile(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &fc); err != nil {
			return fc, fmt.Errorf("parse yaml: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(b, &fc); err != nil {
			return fc, fmt.Errorf("parse json: %w", err)
		}
	default:
		if err := yaml.Unmarshal(b, &fc); err != nil {
			if jerr := json.Unmarshal(b, &fc); jerr != nil {
				return fc, fmt.Errorf("parse config: %v (yaml) / %v (json)", err, jerr)
			}
		}
	}
	return fc, nil
}

// Defaults mirrored by the flag definitions in cmd/. ApplyFileConfig
// uses them to tell "flag left at default" apart from an explicit value.
const (
	DefaultPendingPath   = "urls.txt"
	DefaultOutputDir     = "wechat_articles"
	DefaultItemDelay     = 2 * time.Second
	DefaultTopK          = 20
	DefaultListenAddr    = ":8080"
	DefaultCheckInterval = 2 * time.Second
)

// ApplyFileConfig overlays file values into cfg for fields still at
// their defaults, so explicit flags keep precedence.
func ApplyFileConfig(cfg *Config, fc FileConfig) {
	if cfg == nil {
		return
	}
	if (cfg.PendingPath == "" || cfg.PendingPath == DefaultPendingPath) && fc.Pending != "" {
		cfg.PendingPath = fc.Pending
	}
	if (cfg.OutputDir == "" || cfg.OutputDir == DefaultOutputDir) && fc.Output != "" {
		cfg.OutputDir = fc.Output
	}
	if cfg.CacheDir == "" && fc.Fetch.CacheDir != "" {
		cfg.CacheDir = fc.Fetch.CacheDir
	}
	if d := parseDuration(fc.Fetch.Timeout); cfg.FetchTimeout == 0 && d > 0 {
		cfg.FetchTimeout = d
	}
	if d := parseDuration(fc.ItemDelay); (cfg.ItemDelay == 0 || cfg.ItemDelay == DefaultItemDelay) && d > 0 {
		cfg.ItemDelay = d
	}
	if (cfg.TopK == 0 || cfg.TopK == DefaultTopK) && fc.Keywords.TopK > 0 {
		cfg.TopK = fc.Keywords.TopK
	}
	if cfg.PDFFontPath == "" && fc.PDF.Font != "" {
		cfg.PDFFontPath = fc.PDF.Font
	}
	if (cfg.ListenAddr == "" || cfg.ListenAddr == DefaultListenAddr) && fc.Service.Listen != "" {
		cfg.ListenAddr = fc.Service.Listen
	}
	if d := parseDuration(fc.Service.CheckInterval); (cfg.CheckInterval == 0 || cfg.CheckInterval == DefaultCheckInterval) && d > 0 {
		cfg.CheckInterval = d
	}
	if !cfg.Verbose && fc.Verbose {
		cfg.Verbose = true
	}
}

// ValidateConfig performs minimal schema validation.
func ValidateConfig(cfg Config) error {
	if cfg.PendingPath == "" {
		return errors.New("config: pending list path is required")
	}
	if cfg.OutputDir == "" {
		return errors.New("config: output directory is required")
	}
	if cfg.ItemDelay < 0 || cfg.FetchTimeout < 0 || cfg.CheckInterval < 0 {
		return errors.New("config: negative durations are not allowed")
	}
	if cfg.TopK < 0 {
		return errors.New("config: negative topK is not allowed")
	}
	return nil
}
