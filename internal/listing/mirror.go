// File: internal/listing/mirror.go
package listing

import (
	"context"
	"time"

	"go.uber.org/zap"

	"inzerio_backend/internal/user"
)

// Indexer mirrors listing snapshots into a search index. It is optional;
// a nil Indexer disables indexing.
type Indexer interface {
	IndexListings(ctx context.Context, items []Listing) error
}

// Mirror keeps the in-memory catalog in sync with the remote store. It
// prefers the live snapshot stream, falls back to interval polling when the
// stream fails, and serves the last locally persisted snapshot when every
// remote path is down. Only listings whose owner passes the plan check are
// admitted into the catalog.
type Mirror struct {
	repo         Repository
	store        *Store
	local        *LocalStore
	resolver     *user.PlanResolver
	indexer      Indexer
	pollInterval time.Duration
	logger       *zap.Logger
}

func NewMirror(
	repo Repository,
	store *Store,
	local *LocalStore,
	resolver *user.PlanResolver,
	indexer Indexer,
	pollInterval time.Duration,
	logger *zap.Logger,
) *Mirror {
	return &Mirror{
		repo:         repo,
		store:        store,
		local:        local,
		resolver:     resolver,
		indexer:      indexer,
		pollInterval: pollInterval,
		logger:       logger.Named("Mirror"),
	}
}

// livePollRetries is how many poll cycles run before the live stream is
// attempted again.
const livePollRetries = 10

// Run blocks until ctx is cancelled. It must be started before the HTTP
// surface begins serving; the catalog reports its source state either way.
func (m *Mirror) Run(ctx context.Context) {
	m.seedFromLocal()
	for ctx.Err() == nil {
		err := m.repo.Listen(ctx, func(items []Listing) {
			m.apply(ctx, items, SourceLive)
		})
		if ctx.Err() != nil {
			return
		}
		m.logger.Warn("live snapshot stream failed, switching to polling", zap.Error(err))
		m.pollLoop(ctx)
	}
}

// seedFromLocal pre-fills the catalog from the persisted snapshot so the
// first requests after startup are not served from an empty store.
func (m *Mirror) seedFromLocal() {
	if m.local == nil {
		return
	}
	items, err := m.local.Load()
	if err != nil {
		m.logger.Warn("loading persisted snapshot", zap.Error(err))
		return
	}
	if len(items) == 0 {
		return
	}
	m.store.Replace(items, SourceLocal)
	m.logger.Info("catalog seeded from persisted snapshot", zap.Int("count", len(items)))
}

func (m *Mirror) pollLoop(ctx context.Context) {
	ticker := time.NewTicker(m.pollInterval)
	defer ticker.Stop()
	m.pollOnce(ctx)
	for i := 0; i < livePollRetries; i++ {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.pollOnce(ctx)
		}
	}
	m.logger.Info("retrying live snapshot stream")
}

// pollOnce refreshes the catalog with a one-shot cross-owner read. When
// that query is rejected it enumerates owners and unions their listings,
// which is the access pattern the remote store always permits.
func (m *Mirror) pollOnce(ctx context.Context) {
	items, err := m.repo.FetchAll(ctx)
	if err != nil {
		m.logger.Warn("one-shot catalog read failed, walking owners", zap.Error(err))
		items, err = m.fetchByOwnerWalk(ctx)
		if err != nil {
			m.logger.Warn("enumerating owners", zap.Error(err))
			return
		}
	}
	m.apply(ctx, items, SourcePolling)
}

func (m *Mirror) fetchByOwnerWalk(ctx context.Context) ([]Listing, error) {
	ownerIDs, err := m.repo.FetchOwnerIDs(ctx)
	if err != nil {
		return nil, err
	}
	var items []Listing
	for _, ownerID := range ownerIDs {
		owned, err := m.repo.FetchByOwner(ctx, ownerID)
		if err != nil {
			m.logger.Warn("fetching owner listings",
				zap.String("ownerID", ownerID), zap.Error(err))
			continue
		}
		items = append(items, owned...)
	}
	return items, nil
}

// apply gates a fresh remote snapshot by owner plan, publishes it, persists
// it for offline fallback and mirrors it into the search index.
func (m *Mirror) apply(ctx context.Context, items []Listing, state SourceState) {
	m.resolver.Reset()
	visible := make([]Listing, 0, len(items))
	for _, l := range items {
		if !m.resolver.PlanActive(ctx, l.OwnerID) {
			continue
		}
		visible = append(visible, l)
	}
	m.store.Replace(visible, state)
	m.logger.Debug("catalog snapshot applied", zap.String("source", string(state)),
		zap.Int("total", len(items)), zap.Int("visible", len(visible)))

	if m.local != nil {
		if err := m.local.Save(visible); err != nil {
			m.logger.Warn("persisting snapshot", zap.Error(err))
		}
	}
	if m.indexer != nil {
		if err := m.indexer.IndexListings(ctx, visible); err != nil {
			m.logger.Warn("indexing snapshot", zap.Error(err))
		}
	}
}
