// Command restaurantapi serves the reference restaurant API that apismoke
// probes: parsing, listing and adding restaurants with a memory, PostgreSQL
// or MongoDB store.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"github.com/drblury/apismoke/config"
	"github.com/drblury/apismoke/info"
	"github.com/drblury/apismoke/responder"
	"github.com/drblury/apismoke/router"
	"github.com/drblury/apismoke/server"
	"github.com/drblury/apismoke/store"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(args []string) error {
	flags := pflag.NewFlagSet("restaurantapi", pflag.ContinueOnError)
	config.RegisterCommonFlags(flags)
	flags.String("addr", ":3000", "listen address")
	flags.String("store", "memory", "store driver: memory, postgres or mongo")
	flags.String("postgres-dsn", "", "PostgreSQL DSN for the postgres store")
	flags.String("mongo-uri", "", "MongoDB URI for the mongo store")
	flags.String("mongo-db", "apismoke", "MongoDB database for the mongo store")
	flags.StringSlice("cors-origins", nil, "allowed CORS origins")
	flags.Duration("request-timeout", 30*time.Second, "per-request handler timeout; 0 disables it")

	if err := flags.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}

	cfg, err := config.Load(flags)
	if err != nil {
		return err
	}
	logger := cfg.Log.NewLogger(os.Stderr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	backend, err := store.Open(ctx, store.Config{
		Driver:          store.Driver(cfg.Store.Driver),
		PostgresDSN:     cfg.Store.PostgresDSN,
		MongoURI:        cfg.Store.MongoURI,
		MongoDatabase:   cfg.Store.MongoDatabase,
		MongoCollection: cfg.Store.MongoCollection,
	})
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := backend.Close(shutdownCtx); err != nil {
			logger.Warn("Failed to close store", "error", err)
		}
	}()

	srv := server.New(backend,
		server.WithResponder(responder.NewResponder(responder.WithLogger(logger))),
		server.WithInfoOptions(
			info.WithHealthCheck(string(backend.Driver), backend.Check),
			info.WithInfoProvider(buildInfo),
		),
		server.WithRouterOptions(router.WithConfig(router.Config{
			Timeout:         cfg.Server.RequestTimeout,
			QuietdownRoutes: []string{"/api/health"},
			HideHeaders:     []string{"Authorization", "Cookie"},
			CORS: router.CORSConfig{
				Origins: cfg.Server.CORSOrigins,
				Methods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
				Headers: []string{"Content-Type", "X-Request-ID"},
			},
		})),
	)

	handler, err := srv.Handler(ctx)
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           handler,
		ReadHeaderTimeout: cfg.Server.RequestTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Restaurant API listening", "addr", cfg.Server.Addr, "store", backend.Driver)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("restaurantapi: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}

func buildInfo() any {
	payload := map[string]string{"name": "restaurantapi", "version": "devel"}
	if bi, ok := debug.ReadBuildInfo(); ok {
		payload["version"] = bi.Main.Version
		payload["go"] = bi.GoVersion
		for _, setting := range bi.Settings {
			if setting.Key == "vcs.revision" {
				payload["revision"] = setting.Value
			}
		}
	}
	return payload
}
