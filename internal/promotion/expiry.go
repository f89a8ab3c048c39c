// File: internal/promotion/expiry.go
package promotion

import (
	"context"
	"time"

	"go.uber.org/zap"

	"inzerio_backend/internal/listing"
)

// TopExpiryChecker demotes listings whose paid promotion window has run out.
// It scans the in-memory catalog on an interval and writes the demotion back
// to the remote store, so expiry happens even while no one is browsing.
type TopExpiryChecker struct {
	listings listing.Repository
	store    *listing.Store
	clock    Clock
	interval time.Duration
	logger   *zap.Logger
}

func NewTopExpiryChecker(
	listings listing.Repository,
	store *listing.Store,
	clock Clock,
	interval time.Duration,
	logger *zap.Logger,
) *TopExpiryChecker {
	return &TopExpiryChecker{
		listings: listings,
		store:    store,
		clock:    clock,
		interval: interval,
		logger:   logger.Named("TopExpiryChecker"),
	}
}

// Start runs the checker until ctx is cancelled.
func (c *TopExpiryChecker) Start(ctx context.Context) {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()
	c.logger.Info("top expiry checker started", zap.Duration("interval", c.interval))
	for {
		select {
		case <-ctx.Done():
			c.logger.Info("top expiry checker stopped")
			return
		case <-ticker.C:
			c.RunOnce(ctx)
		}
	}
}

// RunOnce performs a single expiry sweep and returns how many listings were
// demoted.
func (c *TopExpiryChecker) RunOnce(ctx context.Context) int {
	now := c.clock.Now()
	expired := 0
	for _, l := range c.store.Snapshot() {
		if !l.TopExpired(now) {
			continue
		}
		if ctx.Err() != nil {
			return expired
		}
		fields := map[string]interface{}{
			"isTop":        false,
			"topExpiredAt": now.UTC(),
		}
		if err := c.listings.SetFields(ctx, l.OwnerID, l.ID, fields); err != nil {
			c.logger.Warn("demoting expired promotion",
				zap.String("listingID", l.ID), zap.Error(err))
			continue
		}
		at := now.UTC()
		c.store.Mutate(l.ID, func(m *listing.Listing) {
			m.IsTop = false
			m.TopExpiredAt = &at
		})
		expired++
	}
	if expired > 0 {
		c.logger.Info("expired promotions demoted", zap.Int("count", expired))
	}
	return expired
}
