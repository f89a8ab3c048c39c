// File: cmd/server/providers.go
package main

import (
	"log"

	"cloud.google.com/go/firestore"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"inzerio_backend/internal/config"
	"inzerio_backend/internal/firebase"
	"inzerio_backend/internal/listing"
	"inzerio_backend/internal/platform/database"
	platformES "inzerio_backend/internal/platform/elasticsearch"
	"inzerio_backend/internal/platform/statestore"
	"inzerio_backend/internal/promotion"
	"inzerio_backend/internal/user"
)

func provideFirestoreClient(fb *firebase.FirebaseService) *firestore.Client {
	return fb.Firestore()
}

func provideEngine(cfg *config.Config) *listing.Engine {
	return listing.NewEngine(cfg.PageSize)
}

// provideStateStore pairs the in-process store with the durable file store,
// mirroring writes to both so a pending checkout survives a restart.
func provideStateStore(cfg *config.Config) (statestore.Store, error) {
	fileStore, err := statestore.NewFileStore(cfg.StateDir)
	if err != nil {
		return nil, err
	}
	return statestore.NewRedundant(statestore.NewMemoryStore(), fileStore), nil
}

func providePlanPolicy(cfg *config.Config) user.PlanPolicy {
	if cfg.PlanCheckFailClosed {
		return user.PolicyFailClosed
	}
	return user.PolicyFailOpen
}

func provideIndexer(client *platformES.ESClientWrapper, logger *zap.Logger) listing.Indexer {
	if client == nil {
		return nil
	}
	if err := platformES.EnsureListingsIndex(client, logger); err != nil {
		logger.Error("Failed to create/verify the listings index, indexing disabled", zap.Error(err))
		return nil
	}
	return platformES.NewListingIndexer(client, logger)
}

func provideClock() promotion.Clock {
	return promotion.SystemClock()
}

func provideMirror(
	repo listing.Repository,
	store *listing.Store,
	local *listing.LocalStore,
	resolver *user.PlanResolver,
	indexer listing.Indexer,
	cfg *config.Config,
	logger *zap.Logger,
) *listing.Mirror {
	return listing.NewMirror(repo, store, local, resolver, indexer, cfg.MirrorPollInterval, logger)
}

func provideTopExpiryChecker(
	repo listing.Repository,
	store *listing.Store,
	clock promotion.Clock,
	cfg *config.Config,
	logger *zap.Logger,
) *promotion.TopExpiryChecker {
	return promotion.NewTopExpiryChecker(repo, store, clock, cfg.TopExpiryCheckInterval, logger)
}

func provideCleanup(logger *zap.Logger, db *gorm.DB) func() {
	return func() {
		logger.Info("Executing cleanup tasks...")
		database.CloseGORMDB(db)
		if err := logger.Sync(); err != nil {
			log.Printf("ERROR: Failed to sync logger during cleanup: %v", err)
		}
	}
}
