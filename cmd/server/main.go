/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the sales ledger server: configuration, the
  two stores, the HTTP router, and graceful shutdown.

STARTUP SEQUENCE:
  1. Parse command-line flags, load environment configuration
  2. Initialize SQLite ledger store (schema created on open)
  3. Connect to MongoDB note store, create indexes best-effort
  4. Configure HTTP router
  5. Start server with graceful shutdown

COMMAND-LINE FLAGS:
  -port    HTTP server port (default from HTTP_PORT, then 8080)
  -db      SQLite database path (default from SQLITE_PATH)
           Use ":memory:" for an in-memory database

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Close both store connections

ENVIRONMENT:
  HTTP_PORT, SQLITE_PATH, MONGO_URI, MONGO_DB_NAME,
  MONGO_COLLECTION_NAME; a .env file is honored when present.

SEE ALSO:
  - api/server.go: router configuration
  - config/config.go: environment configuration
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/warp/sales-ledger/api"
	"github.com/warp/sales-ledger/config"
	"github.com/warp/sales-ledger/store/mongodb"
	"github.com/warp/sales-ledger/store/sqlite"
)

func main() {
	cfg := config.Load()

	// Flags (env provides the defaults)
	port := flag.String("port", cfg.HTTPPort, "HTTP server port")
	dbPath := flag.String("db", cfg.SQLitePath, "SQLite database path")
	flag.Parse()

	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	// Ledger store
	ledger, err := sqlite.New(*dbPath)
	if err != nil {
		logger.Fatal("failed to initialize ledger store", zap.Error(err))
	}
	defer ledger.Close()

	// Note store
	ctx := context.Background()
	notes, err := mongodb.New(ctx, mongodb.Config{
		URI:            cfg.MongoURI,
		Database:       cfg.MongoDB,
		Collection:     cfg.MongoColl,
		ConnectTimeout: 10 * time.Second,
	})
	if err != nil {
		logger.Fatal("failed to initialize note store", zap.Error(err))
	}
	defer notes.Close(ctx)

	// Indexes are best-effort: Mongo may come up after the API.
	if err := notes.EnsureIndexes(ctx); err != nil {
		logger.Warn("failed to create note indexes", zap.Error(err))
	}

	handler := api.NewHandler(ledger, notes, logger)
	router := api.NewRouter(handler)

	server := &http.Server{
		Addr:         ":" + *port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Info("server starting", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("server forced to shutdown", zap.Error(err))
	}

	logger.Info("server stopped")
}
