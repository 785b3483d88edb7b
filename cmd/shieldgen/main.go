package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"gopkg.in/yaml.v3"

	"github.com/KromDaniel/shieldgen/internal/ctxlog"
	"github.com/KromDaniel/shieldgen/internal/pipeline"
	"github.com/KromDaniel/shieldgen/internal/watch"
)

func main() {
	// Use a minimal logger until the configured one exists.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx, os.Stdout, os.Stderr, os.Args[1:])
	stop()
	if err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			fmt.Fprintln(os.Stderr, exitErr.Message)
			os.Exit(exitErr.Code)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// run holds the program logic so tests can drive it without exiting.
func run(ctx context.Context, outW, logW io.Writer, args []string) error {
	inv, shouldExit, err := parseArgs(args, outW)
	if err != nil {
		return err
	}
	if shouldExit {
		return nil
	}
	cfg := inv.Config

	logger := pipeline.NewLogger(cfg.LogLevel, cfg.LogFormat, logW)
	slog.SetDefault(logger)
	ctx = ctxlog.WithLogger(ctx, logger)

	if inv.Analyze {
		return analyze(outW, cfg.StrategyPath)
	}

	p := pipeline.New(cfg)
	report, err := p.Run(ctx)
	if err != nil {
		return err
	}
	for _, res := range report.Evaluations {
		if res.OK {
			fmt.Fprint(outW, res.Stdout)
		}
	}

	if !inv.Watch {
		return nil
	}
	w, err := watch.New(watch.DefaultDebounce, cfg.StrategyPath)
	if err != nil {
		return fmt.Errorf("failed to watch %s: %w", cfg.StrategyPath, err)
	}
	defer w.Close()
	logger.Info("Watching for changes.", "path", cfg.StrategyPath)

	err = watch.Loop(ctx, w, func(ctx context.Context, _ string) error {
		_, err := p.Generate(ctx)
		return err
	})
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func analyze(outW io.Writer, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read strategy: %w", err)
	}
	summary, err := pipeline.Analyze(string(raw))
	if err != nil {
		return fmt.Errorf("failed to analyze %s: %w", path, err)
	}
	enc := yaml.NewEncoder(outW)
	enc.SetIndent(2)
	if err := enc.Encode(summary); err != nil {
		return err
	}
	return enc.Close()
}
