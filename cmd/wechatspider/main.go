package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/redyuan43/wechat-articles-spider/internal/app"
)

func main() {
	// Logging setup
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	var (
		configPath   string
		pendingPath  string
		outputDir    string
		cacheDir     string
		fetchTimeout time.Duration
		itemDelay    time.Duration
		topK         int
		pdfFont      string
		verbose      bool
	)

	flag.StringVar(&configPath, "config", os.Getenv("SPIDER_CONFIG"), "Optional YAML/JSON config file")
	flag.StringVar(&pendingPath, "urls", app.DefaultPendingPath, "Path to the pending URL list, one URL per line")
	flag.StringVar(&outputDir, "out", app.DefaultOutputDir, "Output directory for processed articles")
	flag.StringVar(&cacheDir, "cache.dir", "", "Enable on-disk page cache at this directory")
	flag.DurationVar(&fetchTimeout, "fetch.timeout", 0, "Page fetch timeout (0 uses the default)")
	flag.DurationVar(&itemDelay, "delay", app.DefaultItemDelay, "Delay between articles")
	flag.IntVar(&topK, "topk", app.DefaultTopK, "Keyword table size")
	flag.StringVar(&pdfFont, "pdf.font", os.Getenv("SPIDER_PDF_FONT"), "UTF-8 TTF font path; enables PDF rendition")
	flag.BoolVar(&verbose, "v", false, "Verbose logging")
	flag.Parse()

	cfg := app.Config{
		PendingPath:  pendingPath,
		OutputDir:    outputDir,
		CacheDir:     cacheDir,
		FetchTimeout: fetchTimeout,
		ItemDelay:    itemDelay,
		TopK:         topK,
		PDFFontPath:  pdfFont,
		Verbose:      verbose,
	}
	if configPath != "" {
		fc, err := app.LoadConfigFile(configPath)
		if err != nil {
			log.Error().Err(err).Str("path", configPath).Msg("config file failed")
			os.Exit(1)
		}
		app.ApplyFileConfig(&cfg, fc)
	}
	if cfg.Verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
	if err := app.ValidateConfig(cfg); err != nil {
		log.Error().Err(err).Msg("invalid configuration")
		os.Exit(1)
	}

	if err := run(cfg); err != nil {
		log.Error().Err(err).Msg("run failed")
		os.Exit(1)
	}
}

func run(cfg app.Config) error {
	ctx := context.Background()

	a, err := app.New(cfg)
	if err != nil {
		return fmt.Errorf("init app: %w", err)
	}

	succeeded, total, err := a.RunBatch(ctx, nil)
	if err != nil {
		return err
	}
	log.Info().Int("succeeded", succeeded).Int("total", total).Msg("batch finished")
	return nil
}
