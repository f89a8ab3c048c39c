// File: cmd/server/wire.go
//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"

	"inzerio_backend/internal/app"
	"inzerio_backend/internal/config"
	"inzerio_backend/internal/firebase"
	"inzerio_backend/internal/jobs"
	"inzerio_backend/internal/listing"
	"inzerio_backend/internal/payments"
	"inzerio_backend/internal/platform/database"
	platformES "inzerio_backend/internal/platform/elasticsearch"
	"inzerio_backend/internal/platform/logger"
	"inzerio_backend/internal/promotion"
	"inzerio_backend/internal/taxonomy"
	"inzerio_backend/internal/user"
)

// initializeServer is the main Wire injector.
func initializeServer(cfg *config.Config) (*app.Server, func(), error) {
	wire.Build(
		// Platform Layer
		logger.New,
		database.NewGORM,
		firebase.NewFirebaseService,
		provideFirestoreClient,
		platformES.NewClient,
		provideIndexer,
		provideStateStore,
		provideClock,

		// Catalog
		listing.NewStore,
		provideEngine,
		listing.NewFirestoreRepository,
		listing.NewLocalStore,
		provideMirror,
		listing.NewService,
		wire.Bind(new(listing.Service), new(*listing.ServiceImplementation)),
		listing.NewHandler,

		// Profiles and plans
		user.NewFirestoreRepository,
		providePlanPolicy,
		user.NewPlanResolver,
		user.NewBadgeCache,
		payments.NewClient,
		user.NewService,
		wire.Bind(new(user.Service), new(*user.ServiceImplementation)),
		user.NewHandler,

		// TOP promotions
		promotion.NewPendingStore,
		promotion.NewService,
		wire.Bind(new(promotion.Service), new(*promotion.ServiceImplementation)),
		promotion.NewHandler,
		provideTopExpiryChecker,

		// Taxonomy
		taxonomy.NewHandler,

		// Jobs
		jobs.NewPlanEnforcer,
		jobs.NewPlanEnforcementJob,

		// Application Layer
		app.NewServer,
	)
	return nil, nil, nil
}
