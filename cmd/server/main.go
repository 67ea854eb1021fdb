/*
main.go - Application entry point

STARTUP SEQUENCE:
  1. Parse command-line flags
  2. Open the SQLite-backed document store
  3. Wire the domain packages (employees, coclog, ledger, certify,
     holidays, config, query) through the wiring package's
     interface adapters
  4. Configure the HTTP router
  5. Start the server with graceful shutdown

COMMAND-LINE FLAGS:
  -port    HTTP server port (default: 8080)
  -db      SQLite database path (default: coc.db)
           Use ":memory:" for an in-memory database

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Close the database connection
  4. Exit

SEE ALSO:
  - api/server.go: router configuration
  - api/handlers.go: HTTP handlers
  - store/sqlite/sqlite.go: the concrete Document-Store Adapter
*/
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

	"github.com/yowbhergie2/COCCTO2025/api"
	"github.com/yowbhergie2/COCCTO2025/certify"
	"github.com/yowbhergie2/COCCTO2025/coclog"
	"github.com/yowbhergie2/COCCTO2025/config"
	"github.com/yowbhergie2/COCCTO2025/employees"
	"github.com/yowbhergie2/COCCTO2025/holidays"
	"github.com/yowbhergie2/COCCTO2025/ledger"
	"github.com/yowbhergie2/COCCTO2025/libraries"
	"github.com/yowbhergie2/COCCTO2025/query"
	"github.com/yowbhergie2/COCCTO2025/store/sqlite"
	"github.com/yowbhergie2/COCCTO2025/wiring"
)

func main() {
	port := flag.Int("port", 8080, "HTTP server port")
	dbPath := flag.String("db", "coc.db", "SQLite database path")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	store, err := sqlite.New(*dbPath)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	empStore := employees.NewStore(store)
	logStore := coclog.NewStore(store)
	ledgerStore := ledger.NewStore(store)
	ledgerSvc := ledger.NewService(ledgerStore)
	certStore := certify.NewStore(store)
	certEngine := certify.NewEngine(store, logStore, certStore)
	holidayStore := holidays.NewStore(store)
	cfgStore := config.NewStore(store)
	libStore := libraries.NewStore(store)
	querySvc := query.NewService(logStore, ledgerStore, empStore, certStore, ledgerSvc)

	validator := coclog.NewValidator(logStore,
		wiring.EmployeeAdapter{Employees: empStore},
		wiring.PeriodLockAdapter{Batches: ledgerStore, Certificates: certStore},
		wiring.CapAdapter{Ledger: ledgerSvc, Logs: logStore},
	)

	handler := api.NewHandler(empStore, logStore, validator, ledgerSvc, certEngine, holidayStore, cfgStore, querySvc, libStore, logger)
	router := api.NewRouter(handler)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", *port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server starting", "port", *port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}
