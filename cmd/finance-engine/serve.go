package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/iwvelando/finance-engine/internal/cache"
	"github.com/iwvelando/finance-engine/internal/logging"
	"github.com/iwvelando/finance-engine/internal/server"
	"github.com/iwvelando/finance-engine/pkg/constants"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

type serveOptions struct {
	serverConfig string
	envFile      string
	address      string
}

func newServeCmd(opts *rootOptions) *cobra.Command {
	so := &serveOptions{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the calculators as a JSON HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, opts, so, nil)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&so.serverConfig, "server-config", constants.DefaultServerConfigFile, "path to server configuration file")
	flags.StringVar(&so.envFile, "env-file", ".env", "optional file of environment overrides")
	flags.StringVar(&so.address, "address", "", "listen address override")
	return cmd
}

// runServe serves until ctx is cancelled. When ready is non-nil it receives
// the bound listener address once the server accepts connections.
func runServe(ctx context.Context, opts *rootOptions, so *serveOptions, ready chan<- string) error {
	if so.envFile != "" {
		if err := godotenv.Load(so.envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("failed to load env file %s: %w", so.envFile, err)
		}
	}

	cfg, err := server.LoadConfig(so.serverConfig)
	if err != nil {
		return err
	}
	if so.address != "" {
		cfg.Address = so.address
	}

	logger, err := logging.New(cfg.Logging, opts.logLevel)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	resultCache, closeCache := newResultCache(ctx, logger, cfg.Cache)
	defer closeCache()

	handler := server.NewHandler(logger, server.Options{
		MaxUploadSize:  cfg.UploadSizeBytes(),
		Version:        version,
		AllowedOrigins: cfg.AllowedOrigins,
		Cache:          resultCache,
		CacheTTL:       cfg.CacheTTL(),
		Now:            opts.now,
	})

	listener, err := net.Listen("tcp", cfg.Address)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", cfg.Address, err)
	}

	srv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(listener)
	}()

	logger.Info("starting server",
		zap.String("op", "main.serve"),
		zap.String("address", listener.Addr().String()),
		zap.String("version", version),
	)
	if ready != nil {
		ready <- listener.Addr().String()
	}

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down server", zap.String("op", "main.serve"))
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	return nil
}

// newResultCache returns the Redis cache when one is configured and the
// in-memory cache otherwise. An unreachable Redis is logged but still used;
// the handler treats cache errors as misses.
func newResultCache(ctx context.Context, logger *zap.Logger, cfg server.CacheConfig) (cache.Cache, func()) {
	if cfg.RedisAddr == "" {
		return cache.NewMemory(cfg.MaxEntries), func() {}
	}

	r := cache.NewRedis(cache.RedisOptions{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
		Prefix:   cfg.KeyPrefix,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := r.Ping(pingCtx); err != nil {
		logger.Warn("redis cache unreachable",
			zap.String("op", "main.serve"),
			zap.String("address", cfg.RedisAddr),
			zap.Error(err),
		)
	}
	return r, func() {
		_ = r.Close()
	}
}
