package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/kapu/pokedex-go/internal/app"
	"github.com/kapu/pokedex-go/internal/config"
	"github.com/kapu/pokedex-go/internal/util"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger, err := util.NewLogger(cfg.Logging.Level, cfg.Logging.File)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Debug("Pokedex starting...",
		zap.String("version", "1.0.0-go"),
		zap.String("log_level", cfg.Logging.Level),
	)

	buildCtx, buildCancel := context.WithTimeout(context.Background(), 30*time.Second)
	container, err := app.Build(buildCtx, cfg, logger, app.Output{Stdout: os.Stdout, Stderr: os.Stderr})
	buildCancel()
	if err != nil {
		logger.Error("Failed to assemble application services", zap.Error(err))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if args := os.Args[1:]; len(args) > 0 {
		err = runArgs(ctx, container, args)
	} else {
		err = runInteractive(ctx, container)
	}
	if err != nil && ctx.Err() == nil {
		logger.Error("Session ended with error", zap.Error(err))
	}

	if ctx.Err() != nil {
		logger.Info("Received shutdown signal")
	}

	if closeErr := container.Close(); closeErr != nil {
		logger.Error("Error during shutdown", zap.Error(closeErr))
	}
	if err != nil {
		os.Exit(1)
	}
}

// runArgs looks up every positional argument, e.g. `pokedex pikachu eevee`.
func runArgs(ctx context.Context, container *app.Container, args []string) error {
	lines := make([]string, 0, len(args))
	for _, name := range args {
		lines = append(lines, "lookup "+name)
	}
	return container.Handle(ctx, "args", lines...)
}

// runInteractive reads one command per line until EOF or a signal.
func runInteractive(ctx context.Context, container *app.Container) error {
	lines := make(chan string)
	scanErr := make(chan error, 1)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		scanErr <- scanner.Err()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				select {
				case err := <-scanErr:
					return err
				default:
					return nil
				}
			}
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}
			if err := container.Handle(ctx, "stdin", line); err != nil {
				return err
			}
		}
	}
}
