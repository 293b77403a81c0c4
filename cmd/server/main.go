/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the cash-flow forecasting server.
  Handles configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load and validate configuration (TOML file + environment)
  2. Initialize logger
  3. Open the record store (SQLite, PostgreSQL or memory)
  4. Create forecast service and alert scheduler
  5. Configure HTTP router
  6. Start server with graceful shutdown

COMMAND-LINE FLAGS:
  -config  Path to TOML config file (default: cashflow.toml; missing file = defaults)
  -port    HTTP server port (overrides config)
  -db      Database DSN or SQLite path (overrides config)
           Use ":memory:" for an in-memory SQLite database

ENVIRONMENT:
  CASHFLOW_PORT, CASHFLOW_DB_DRIVER, CASHFLOW_DB_DSN, CASHFLOW_LOG_LEVEL,
  CASHFLOW_SAFETY_BUFFER (see internal/config)

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop the alert scheduler (waits for a running check)
  2. Stop accepting new connections
  3. Wait for active requests to complete (30s timeout)
  4. Close database connection

EXAMPLES:
  # Run with file database
  ./server -db="./data/cashflow.db"

  # Run with PostgreSQL
  CASHFLOW_DB_DRIVER=postgres CASHFLOW_DB_DSN="postgres://localhost/cashflow?sslmode=disable" ./server

  # Run on different port
  ./server -port=3000

SEE ALSO:
  - internal/config/config.go: Configuration
  - api/server.go: Router configuration
  - alerts/scheduler.go: Daily alert checks
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

	"github.com/warp/cashflow-engine/alerts"
	"github.com/warp/cashflow-engine/api"
	"github.com/warp/cashflow-engine/internal/config"
	"github.com/warp/cashflow-engine/service"
)

func main() {
	// Flags
	configPath := flag.String("config", "cashflow.toml", "Path to TOML config file")
	port := flag.String("port", "", "HTTP server port (overrides config)")
	dbDSN := flag.String("db", "", "Database DSN or SQLite path (overrides config)")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if *port != "" {
		cfg.Server.Port = *port
	}
	if *dbDSN != "" {
		cfg.Database.DSN = *dbDSN
	}

	// Initialize logger
	logger := config.NewLogger(cfg.Log)
	if err := cfg.Validate(); err != nil {
		logger.Fatalf("Invalid config: %v", err)
	}

	// Initialize store
	st, err := config.OpenStore(cfg.Database)
	if err != nil {
		logger.Fatalf("Failed to initialize database: %v", err)
	}
	defer st.Close()
	logger.WithField("driver", cfg.Database.Driver).Info("database ready")

	// Initialize service
	settings, err := cfg.Settings()
	if err != nil {
		logger.Fatalf("Invalid forecast settings: %v", err)
	}
	svc := service.New(st, settings, logger)

	// Alert scheduler
	var sched *alerts.Scheduler
	if cfg.Alerts.Enabled {
		sched, err = alerts.NewScheduler(svc, cfg.Alerts.Schedule, logger)
		if err != nil {
			logger.Fatalf("Failed to create alert scheduler: %v", err)
		}
		sched.Start()
		logger.WithField("next_run", sched.NextRun()).Info("alert scheduler started")
	}

	// Create router
	handler := api.NewHandler(svc, sched, logger)
	router := api.NewRouter(handler, api.RouterOptions{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		StaticDir:      cfg.Server.StaticDir,
	})

	// Create server
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Infof("Server starting on http://localhost:%s", cfg.Server.Port)
		logger.Infof("API available at http://localhost:%s/api", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")
	if sched != nil {
		sched.Stop()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Errorf("Server forced to shutdown: %v", err)
		return
	}

	logger.Info("Server stopped")
}
