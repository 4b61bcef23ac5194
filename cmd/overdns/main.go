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

	"github.com/overdns/overdns/internal/api"
	"github.com/overdns/overdns/internal/config"
	"github.com/overdns/overdns/internal/helpers"
	"github.com/overdns/overdns/internal/logging"
	"github.com/overdns/overdns/internal/server"
	"github.com/overdns/overdns/internal/store"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}

// cliFlags holds parsed command-line flag values.
type cliFlags struct {
	host     string
	port     int
	upstream string
	ttl      int
	jsonLogs bool
	debug    bool
	enabAPI  bool
}

// parseFlags parses command-line flags and returns the values.
func parseFlags() cliFlags {
	var f cliFlags
	flag.StringVar(&f.host, "host", "", "Override DNS server bind host")
	flag.IntVar(&f.port, "port", 0, "Override DNS server bind port")
	flag.StringVar(&f.upstream, "upstream", "", "Override upstream resolver address")
	flag.IntVar(&f.ttl, "ttl", -1, "Override answer TTL for pinned domains")
	flag.BoolVar(&f.jsonLogs, "json-logs", false, "Enable JSON structured logging")
	flag.BoolVar(&f.debug, "debug", false, "Enable debug logging")
	flag.BoolVar(&f.enabAPI, "api", false, "Enable the management API")
	flag.Parse()
	return f
}

// applyCLIOverrides applies command-line overrides to the config.
func applyCLIOverrides(cfg *config.Config, f cliFlags) {
	if f.host != "" {
		cfg.Server.Host = f.host
	}
	if f.port != 0 {
		cfg.Server.Port = f.port
	}
	if f.upstream != "" {
		cfg.Upstream.Address = f.upstream
	}
	if f.ttl >= 0 {
		cfg.TTL = helpers.ClampIntToUint32(f.ttl)
	}
	if f.jsonLogs {
		cfg.Logging.JSON = true
	}
	if f.debug {
		cfg.Logging.Level = "DEBUG"
	}
	if f.enabAPI {
		cfg.API.Enabled = true
	}
}

func run() error {
	flags := parseFlags()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	applyCLIOverrides(cfg, flags)

	logger := logging.Configure(logging.Config{
		Level: cfg.Logging.Level,
		JSON:  cfg.Logging.JSON,
	})
	logger.Info("overdns starting",
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
		"upstream", cfg.Upstream.Address,
		"api", cfg.API.Enabled,
	)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	pool := store.NewPool(cfg.Store.Host, cfg.Store.Port, cfg.Store.DB, cfg.Store.PoolSize)
	defer pool.Close()

	runner := server.NewRunner(logger)

	var apiSrv *api.Server
	if cfg.API.Enabled {
		// Override writes go through the same pool the DNS path reads
		// from.
		apiSrv = api.New(cfg, logger, runner.Stats().Snapshot, pool)
		logger.Info("management api starting", "addr", apiSrv.Addr())
		go func() {
			serveErr := apiSrv.ListenAndServe()
			if serveErr == nil || errors.Is(serveErr, http.ErrServerClosed) {
				return
			}
			logger.Error("management api error", "err", serveErr)
			cancel()
		}()
	}

	err = runner.RunWithContext(ctx, cfg, pool)

	if apiSrv != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		_ = apiSrv.Shutdown(shutdownCtx)
		shutdownCancel()
		logger.Info("management api stopped")
	}

	if err != nil {
		return fmt.Errorf("server exited with error: %w", err)
	}
	return nil
}
