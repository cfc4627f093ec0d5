package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/hazyhaar/waymark-resolver/pkg/api"
	"github.com/hazyhaar/waymark-resolver/pkg/digitraffic"
	"github.com/hazyhaar/waymark-resolver/pkg/override"
	"github.com/hazyhaar/waymark-resolver/pkg/resolve"

	mcpserver "github.com/mark3labs/mcp-go/server"
)

const version = "1.0.0"

type config struct {
	Addr             string `yaml:"addr"`
	BaseURL          string `yaml:"base_url"`
	UserAgent        string `yaml:"user_agent"`
	OverridesPath    string `yaml:"overrides_path"`
	OverridesBackend string `yaml:"overrides_backend"` // "file" or "sqlite"
	CachePath        string `yaml:"cache_path"`        // "" disables the snapshot cache
	CacheMaxAge      string `yaml:"cache_max_age"`     // duration, e.g. "24h"
	Normalize        string `yaml:"normalize"`         // lowercase_utf8 | lowercase_ascii | none
	MaxCandidates    int    `yaml:"max_candidates"`
	Language         string `yaml:"language"`
}

func defaultConfig() config {
	return config{
		Addr:             ":8430",
		BaseURL:          digitraffic.DefaultBaseURL,
		UserAgent:        "waymark-resolver/" + version,
		OverridesPath:    "overrides.tsv",
		OverridesBackend: "file",
		CacheMaxAge:      "24h",
		Normalize:        "lowercase_utf8",
		MaxCandidates:    12,
		Language:         "fi",
	}
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "serve":
		cmdServe(os.Args[2:])
	case "mcp":
		cmdMCP(os.Args[2:])
	case "resolve":
		cmdResolve(os.Args[2:])
	default:
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, `Usage: waymark <command>

Commands:
  serve     Start the HTTP server
  mcp       Serve MCP tools over stdio
  resolve   Resolve a road location from the command line
`)
}

func cmdServe(args []string) {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	cfgPath := fs.String("config", "config.yaml", "path to config file")
	fs.Parse(args)

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	cfg := loadConfig(*cfgPath, logger)

	resolver, client, cleanup := buildStack(cfg, logger)
	defer cleanup()

	router := api.NewRouter(resolver, client)
	srv := &http.Server{
		Addr:    cfg.Addr,
		Handler: router,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("waymark listening", "addr", cfg.Addr, "catalog", cfg.BaseURL)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	srv.Shutdown(context.Background())
}

func cmdMCP(args []string) {
	fs := flag.NewFlagSet("mcp", flag.ExitOnError)
	cfgPath := fs.String("config", "config.yaml", "path to config file")
	fs.Parse(args)

	// Logs go to stderr; stdout carries the MCP stream.
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	cfg := loadConfig(*cfgPath, logger)

	resolver, client, cleanup := buildStack(cfg, logger)
	defer cleanup()

	srv := mcpserver.NewMCPServer("waymark", version)
	api.RegisterMCPTools(srv, resolver, client)

	if err := mcpserver.ServeStdio(srv); err != nil {
		logger.Error("mcp server error", "error", err)
		os.Exit(1)
	}
}

// buildStack wires the client, override store and resolver from config.
func buildStack(cfg config, logger *slog.Logger) (*resolve.Resolver, *digitraffic.Client, func()) {
	normalize := resolve.GetNormalizer(cfg.Normalize)

	var cache *digitraffic.SnapshotCache
	if cfg.CachePath != "" {
		maxAge, err := time.ParseDuration(cfg.CacheMaxAge)
		if err != nil {
			logger.Error("invalid cache_max_age", "value", cfg.CacheMaxAge, "error", err)
			os.Exit(1)
		}
		cache, err = digitraffic.OpenSnapshotCache(cfg.CachePath, maxAge)
		if err != nil {
			logger.Error("failed to open snapshot cache", "path", cfg.CachePath, "error", err)
			os.Exit(1)
		}
	}

	client := digitraffic.NewClient(digitraffic.Config{
		BaseURL:   cfg.BaseURL,
		UserAgent: cfg.UserAgent,
		Cache:     cache,
		Logger:    logger,
	})

	var overrides override.Store
	switch cfg.OverridesBackend {
	case "sqlite":
		s, err := override.OpenSQLiteStore(cfg.OverridesPath, normalize)
		if err != nil {
			logger.Error("failed to open override store", "path", cfg.OverridesPath, "error", err)
			os.Exit(1)
		}
		overrides = s
	default:
		overrides = override.NewFileStore(cfg.OverridesPath, normalize, logger)
	}

	resolver := resolve.New(resolve.Config{
		Catalog:       client,
		Forecast:      client,
		Overrides:     overrides,
		Normalize:     normalize,
		MaxCandidates: cfg.MaxCandidates,
		Logger:        logger,
	})

	cleanup := func() {
		overrides.Close()
		if cache != nil {
			cache.Close()
		}
	}
	return resolver, client, cleanup
}

func loadConfig(path string, logger *slog.Logger) config {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Info("no config file, using defaults", "path", path)
			return cfg
		}
		logger.Error("read config", "error", err)
		os.Exit(1)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		logger.Error("parse config", "error", err)
		os.Exit(1)
	}
	return cfg
}
