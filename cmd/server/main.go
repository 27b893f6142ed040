package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fieldpay/cashcollector-backend/internal/adapter/httpapi"
	"github.com/fieldpay/cashcollector-backend/internal/adapter/repository/postgres"
	"github.com/fieldpay/cashcollector-backend/internal/config"
	"github.com/fieldpay/cashcollector-backend/internal/lock"
	"github.com/fieldpay/cashcollector-backend/internal/usecase/collection"
	"github.com/fieldpay/cashcollector-backend/internal/usecase/settlement"
)

func main() {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// 2. Setup Database
	db, err := postgres.NewDB(cfg.DBConnStr)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// 3. Initialize Repositories (Postgres)
	collectorRepo := postgres.NewCollectorRepository(db)
	taskRepo := postgres.NewTaskRepository(db)
	ledgerRepo := postgres.NewLedgerRepository(db)

	// 4. Initialize Services (Use Cases)
	// Both services share one lock set so collection and settlement against
	// the same collector are mutually exclusive
	locks := lock.NewKeyed()
	collectionService := collection.NewService(
		collectorRepo, taskRepo, ledgerRepo, locks, cfg.ThresholdAmount, cfg.FreezeAfter)
	settlementService := settlement.NewService(
		collectorRepo, taskRepo, ledgerRepo, locks, cfg.ThresholdAmount)

	// 5. Start HTTP Server
	server := httpapi.NewServer(cfg.ServerAddr, collectionService, settlementService)

	go func() {
		log.Printf("HTTP server listening on %s", cfg.ServerAddr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP server error: %v", err)
		}
	}()

	waitForShutdown(server)
}

// waitForShutdown waits for SIGTERM or SIGINT and gracefully shuts down the server
func waitForShutdown(server *http.Server) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	sig := <-sigChan
	log.Printf("Received signal: %v. Shutting down gracefully...", sig)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	}

	log.Println("HTTP server stopped")
}
