// File: cmd/server/main.go
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"inzerio_backend/internal/config"
	"inzerio_backend/internal/platform/database"
	platformES "inzerio_backend/internal/platform/elasticsearch"
	"inzerio_backend/internal/platform/logger"

	"inzerio_backend/internal/listing"
)

func main() {
	syncListingsCmd := flag.NewFlagSet("sync-listings", flag.ExitOnError)

	if len(os.Args) > 1 && os.Args[1] == "sync-listings" {
		syncListingsCmd.Parse(os.Args[2:])
		runListingSync()
		return
	}

	startServer()
}

func startServer() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err)
	}

	server, cleanup, err := initializeServer(cfg)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize server: %v", err)
	}
	defer cleanup()

	go func() {
		if err := server.Start(); err != nil {
			log.Fatalf("FATAL: Server failed to start or crashed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	log.Printf("INFO: Received signal '%s'. Shutting down server...", sig)

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.ServerTimeout)
	defer cancelShutdown()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("ERROR: Server forced to shutdown due to error: %v", err)
	} else {
		log.Println("INFO: Server shutdown complete.")
	}
	log.Println("INFO: Application exiting.")
}

// runListingSync rebuilds the search index from the locally persisted
// catalog snapshot. Useful after an index mapping change or data loss.
func runListingSync() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration for sync: %v", err)
	}
	appLogger, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize logger for sync: %v", err)
	}

	db, err := database.NewGORM(cfg)
	if err != nil {
		appLogger.Fatal("Failed to open the local catalog database", zap.Error(err))
	}
	defer database.CloseGORMDB(db)

	localStore, err := listing.NewLocalStore(db)
	if err != nil {
		appLogger.Fatal("Failed to initialize the local catalog store", zap.Error(err))
	}

	esClient, err := platformES.NewClient(cfg, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to initialize Elasticsearch client for sync", zap.Error(err))
	}
	if esClient == nil {
		appLogger.Fatal("ELASTICSEARCH_URL must be set for sync-listings")
	}
	if err := platformES.EnsureListingsIndex(esClient, appLogger); err != nil {
		appLogger.Fatal("Failed to create/verify the listings index", zap.Error(err))
	}

	items, err := localStore.Load()
	if err != nil {
		appLogger.Fatal("Failed to load the persisted catalog snapshot", zap.Error(err))
	}
	if len(items) == 0 {
		appLogger.Warn("Persisted catalog snapshot is empty, nothing to sync")
		return
	}

	indexer := platformES.NewListingIndexer(esClient, appLogger)
	if err := indexer.IndexListings(context.Background(), items); err != nil {
		appLogger.Fatal("Listing synchronization failed", zap.Error(err))
	}
	appLogger.Info("Listing synchronization completed successfully", zap.Int("count", len(items)))
}
