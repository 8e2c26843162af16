package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"

	"github.com/skosovsky/toolreg"
	"github.com/skosovsky/toolreg/internal/config"
	"github.com/skosovsky/toolreg/internal/demo"
	"github.com/skosovsky/toolreg/internal/docstore"
)

type rootFlags struct {
	configPath string
	logLevel   string
	database   string
}

func newRootCmd() *cobra.Command {
	var flags rootFlags
	cmd := &cobra.Command{
		Use:   "toolregd",
		Short: "Serve and inspect an auto-discovered tool registry",
		Long: `toolregd registers the demo tools and exposes them to callers.

  serve  - HTTP API (/tools/list, /tools/all, /tools/{name})
  mcp    - Model Context Protocol over stdio
  list   - print the catalog
  call   - invoke one tool with JSON arguments

Settings come from an optional YAML file (--config), then the environment
(ALLOWED_ORIGINS, ENVIRONMENT, TOOLREG_*), then flags.`,
		SilenceUsage: true,
	}
	cmd.PersistentFlags().StringVarP(&flags.configPath, "config", "c", "", "path to a YAML config file")
	cmd.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	cmd.PersistentFlags().StringVar(&flags.database, "database", "", "SQLite DSN of the document store")

	cmd.AddCommand(
		newServeCmd(&flags),
		newMCPCmd(&flags),
		newListCmd(&flags),
		newCallCmd(&flags),
	)
	return cmd
}

// loadConfig applies the persistent flags on top of file and environment settings.
func loadConfig(cmd *cobra.Command, flags *rootFlags) (*config.Config, error) {
	cfg, err := config.Load(flags.configPath)
	if err != nil {
		return nil, err
	}
	if cmd.Flags().Changed("log-level") {
		cfg.LogLevel = flags.logLevel
	}
	if cmd.Flags().Changed("database") {
		cfg.Database = flags.database
	}
	return cfg, nil
}

// newLogger returns a JSON logger in production and a text logger otherwise.
func newLogger(cfg *config.Config, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.SlogLevel()}
	if cfg.IsProduction() {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// app is the wired registry: document store, frozen catalog and dispatcher.
type app struct {
	cfg        *config.Config
	logger     *slog.Logger
	store      *docstore.Store
	dispatcher *toolreg.Dispatcher
}

func newApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*app, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	store, err := docstore.Open(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}
	if err := store.Seed(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("seed documents: %w", err)
	}

	catalog := toolreg.NewCatalog()
	registrar := toolreg.NewRegistrar(catalog, logger)
	demo.Register(registrar, store)
	if err := registrar.Done(); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("register tools: %w", err)
	}

	metrics, err := toolreg.NewMetrics(otel.Meter("github.com/skosovsky/toolreg"))
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	dispatcher := toolreg.NewDispatcher(catalog,
		toolreg.WithLogger(logger),
		toolreg.WithMaxConcurrency(cfg.MaxConcurrency),
		toolreg.WithOnAfterInvoke(metrics.Record),
	)
	dispatcher.Use(
		toolreg.WithLogging(logger),
		toolreg.WithTracing(otel.Tracer("github.com/skosovsky/toolreg")),
		toolreg.WithTimeout(cfg.GetToolTimeout()),
	)
	return &app{cfg: cfg, logger: logger, store: store, dispatcher: dispatcher}, nil
}

func (a *app) Close() error {
	return a.store.Close()
}

// setup loads the configuration and wires the app, logging to logw.
func setup(cmd *cobra.Command, flags *rootFlags, logw io.Writer) (*app, error) {
	cfg, err := loadConfig(cmd, flags)
	if err != nil {
		return nil, err
	}
	return newApp(cmd.Context(), cfg, newLogger(cfg, logw))
}
