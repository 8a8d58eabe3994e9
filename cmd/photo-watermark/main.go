package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/joho/godotenv/autoload"
	"github.com/rs/zerolog"
	"github.com/wb-go/wbf/zlog"

	"github.com/aliskhannn/photo-watermark/internal/config"
	"github.com/aliskhannn/photo-watermark/internal/metadata"
	"github.com/aliskhannn/photo-watermark/internal/processor"
	"github.com/aliskhannn/photo-watermark/internal/report"
	"github.com/aliskhannn/photo-watermark/internal/service/batch"
	"github.com/aliskhannn/photo-watermark/internal/storage/s3"
)

// Exit codes.
const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	// Context & signals: an interrupt stops dispatching new files.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Parse arguments before anything touches the filesystem.
	cfg, err := config.Parse(args)
	if errors.Is(err, config.ErrHelp) {
		config.PrintHelp(stdout)
		return exitOK
	}
	if err != nil {
		fmt.Fprintln(stderr, err)
		fmt.Fprintln(stderr, "run with --help for usage")
		return exitUsage
	}

	// Initialize logger; structured logs go to stderr, status lines to stdout.
	zlog.Init()
	level := zerolog.WarnLevel
	if cfg.Log.Verbose {
		level = zerolog.DebugLevel
	}
	logger := zlog.Logger.Output(zerolog.ConsoleWriter{Out: stderr}).Level(level)

	printer := report.New(stdout, stderr)

	info, err := os.Stat(cfg.Path)
	if err != nil {
		printer.Error(fmt.Errorf("path does not exist: %s", cfg.Path))
		return exitError
	}

	// Initialize renderer and metadata extractor.
	renderer, err := processor.New()
	if err != nil {
		logger.Error().Err(err).Msg("failed to initialize renderer")
		printer.Error(err)
		return exitError
	}

	extractor := metadata.NewExtractor(metadata.WithDiagnostics(func(path string, reason error) {
		logger.Debug().Str("file", path).Err(reason).Msg("no capture date")
	}))

	opts := []batch.Option{
		batch.WithObserver(printer),
		batch.WithWorkers(cfg.Batch.Workers),
		batch.WithRetry(cfg.Retry.Strategy()),
		batch.WithLogger(logger),
	}

	// Initialize the optional bucket mirror (MinIO).
	if s := cfg.Storage.S3; s.Enabled {
		mirror, err := s3.NewStorage(ctx, s.Endpoint, s.AccessKey, s.SecretKey, s.BucketName, s.UseSSL)
		if err != nil {
			logger.Error().Err(err).Msg("failed to connect to storage")
			printer.Error(err)
			return exitError
		}
		opts = append(opts, batch.WithMirror(mirror))
	}

	p := batch.New(extractor, renderer, opts...)
	wm := cfg.Watermark.Options()

	logger.Debug().
		Str("path", cfg.Path).
		Int("font_size", wm.FontSize).
		Str("color", string(wm.Color)).
		Str("position", wm.Position.String()).
		Msg("configuration loaded")

	if info.IsDir() {
		if _, err := p.ProcessAll(ctx, cfg.Path, wm); err != nil {
			printer.Error(err)
			return exitError
		}
		return exitOK
	}

	if _, err := p.ProcessOne(ctx, cfg.Path, wm); err != nil {
		printer.Error(err)
		return exitError
	}

	return exitOK
}
