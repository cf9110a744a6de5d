package app

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/kapu/pokedex-go/internal/command"
	"github.com/kapu/pokedex-go/internal/config"
	"github.com/kapu/pokedex-go/internal/domain"
	"github.com/kapu/pokedex-go/internal/pokeapi"
	"github.com/kapu/pokedex-go/internal/service/lookup"
	"github.com/kapu/pokedex-go/internal/store"
	"go.uber.org/zap"
)

// Output receives command results. Nil writers fall back to stdout/stderr.
type Output struct {
	Stdout io.Writer
	Stderr io.Writer
}

// Container bundles the assembled services behind the command surface.
type Container struct {
	Config *config.Config
	Logger *zap.Logger

	Store      store.Store
	Lookup     *lookup.Service
	Registry   *command.Registry
	Dispatcher command.Dispatcher

	closers []func() error
}

// Build opens the configured store, wires the PokeAPI client and lookup
// service, and registers the commands. Resources opened before a failure are
// released.
func Build(ctx context.Context, cfg *config.Config, logger *zap.Logger, out Output) (container *Container, err error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger must not be nil")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if out.Stdout == nil {
		out.Stdout = os.Stdout
	}
	if out.Stderr == nil {
		out.Stderr = os.Stderr
	}

	var closers []func() error
	defer func() {
		if err != nil {
			for i := len(closers) - 1; i >= 0; i-- {
				_ = closers[i]()
			}
		}
	}()

	st, err := store.NewByEngine(ctx, store.Options{
		Engine:     cfg.Store.Engine,
		SQLitePath: cfg.Store.SQLitePath,
		Redis: store.RedisConfig{
			Host:      cfg.Redis.Host,
			Port:      cfg.Redis.Port,
			Password:  cfg.Redis.Password,
			DB:        cfg.Redis.DB,
			KeyPrefix: cfg.Redis.KeyPrefix,
		},
		Postgres: store.PostgresConfig{
			Host:     cfg.Postgres.Host,
			Port:     cfg.Postgres.Port,
			User:     cfg.Postgres.User,
			Password: cfg.Postgres.Password,
			Database: cfg.Postgres.Database,
		},
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s store: %w", cfg.Store.Engine, err)
	}
	closers = append(closers, st.Close)

	client := pokeapi.NewClient(pokeapi.ClientConfig{
		BaseURL:    cfg.PokeAPI.BaseURL,
		Timeout:    cfg.PokeAPI.Timeout,
		MaxRetries: cfg.PokeAPI.MaxRetries,
	}, logger)

	lookupSvc, err := lookup.NewService(st, client, lookup.Config{
		Concurrency: cfg.Lookup.Concurrency,
		CacheTTL:    cfg.Lookup.CacheTTL,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create lookup service: %w", err)
	}

	registry := command.NewRegistry()
	deps := &command.Dependencies{
		Lookup:   lookupSvc,
		Registry: registry,
		SendMessage: func(_, message string) error {
			_, err := fmt.Fprintln(out.Stdout, message)
			return err
		},
		SendError: func(_, message string) error {
			_, err := fmt.Fprintln(out.Stderr, message)
			return err
		},
		Logger: logger,
	}
	registry.Register(command.NewLookupCommand(deps), command.NewHelpCommand(deps))

	logger.Info("Pokedex assembled",
		zap.String("store_engine", cfg.Store.Engine),
		zap.String("pokeapi", cfg.PokeAPI.BaseURL),
		zap.Int("concurrency", cfg.Lookup.Concurrency),
		zap.Duration("cache_ttl", cfg.Lookup.CacheTTL),
		zap.Int("commands", registry.Count()),
	)

	return &Container{
		Config:     cfg,
		Logger:     logger,
		Store:      st,
		Lookup:     lookupSvc,
		Registry:   registry,
		Dispatcher: command.NewSequentialDispatcher(registry),
		closers:    closers,
	}, nil
}

// Handle parses lines and executes them in order as one batch. Blank lines
// are skipped; the first command error stops the batch.
func (c *Container) Handle(ctx context.Context, source string, lines ...string) error {
	if c == nil || c.Dispatcher == nil {
		return fmt.Errorf("container not initialized")
	}
	events := make([]command.CommandEvent, 0, len(lines))
	for _, line := range lines {
		events = append(events, command.Event(command.Parse(line)))
	}
	_, err := c.Dispatcher.Publish(ctx, domain.NewCommandContext(source, strings.Join(lines, "\n")), events...)
	return err
}

// Close releases resources in reverse order of acquisition.
func (c *Container) Close() error {
	if c == nil {
		return nil
	}
	var errs []error
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	c.closers = nil
	return stderrors.Join(errs...)
}
