package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/redyuan43/wechat-articles-spider/internal/app"
	"github.com/redyuan43/wechat-articles-spider/internal/service"
)

func main() {
	// Logging setup
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	var (
		configPath    string
		pendingPath   string
		outputDir     string
		cacheDir      string
		listenAddr    string
		checkInterval time.Duration
		topK          int
		pdfFont       string
		verbose       bool
	)

	flag.StringVar(&configPath, "config", os.Getenv("SPIDER_CONFIG"), "Optional YAML/JSON config file")
	flag.StringVar(&pendingPath, "urls", app.DefaultPendingPath, "Watched file for pasted article links")
	flag.StringVar(&outputDir, "out", app.DefaultOutputDir, "Output directory for processed articles")
	flag.StringVar(&cacheDir, "cache.dir", "", "Enable on-disk page cache at this directory")
	flag.StringVar(&listenAddr, "listen", app.DefaultListenAddr, "Status page listen address")
	flag.DurationVar(&checkInterval, "check.interval", app.DefaultCheckInterval, "How often to poll the watched file")
	flag.IntVar(&topK, "topk", app.DefaultTopK, "Keyword table size")
	flag.StringVar(&pdfFont, "pdf.font", os.Getenv("SPIDER_PDF_FONT"), "UTF-8 TTF font path; enables PDF rendition")
	flag.BoolVar(&verbose, "v", false, "Verbose logging")
	flag.Parse()

	cfg := app.Config{
		PendingPath:   pendingPath,
		OutputDir:     outputDir,
		CacheDir:      cacheDir,
		ListenAddr:    listenAddr,
		CheckInterval: checkInterval,
		TopK:          topK,
		PDFFontPath:   pdfFont,
		Verbose:       verbose,
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

	if err := run(cfg); err != nil && !errors.Is(err, context.Canceled) {
		log.Error().Err(err).Msg("service failed")
		os.Exit(1)
	}
}

func run(cfg app.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(cfg)
	if err != nil {
		return fmt.Errorf("init app: %w", err)
	}
	svc := service.New(cfg, a)

	server := &http.Server{Addr: cfg.ListenAddr, Handler: svc.Handler()}
	go func() {
		log.Info().Str("addr", cfg.ListenAddr).Msg("status page listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("status server failed")
		}
	}()

	err = svc.Run(ctx)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = server.Shutdown(shutdownCtx)
	return err
}
