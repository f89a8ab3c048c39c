// File: internal/user/badge.go
package user

import (
	"time"

	"go.uber.org/zap"

	"inzerio_backend/internal/platform/statestore"
)

// badgeKey is the state-store key of the cached plan badge.
const badgeKey = "bdg_plan"

// badgeTTL bounds how stale a cached badge may get before a profile read
// is forced.
const badgeTTL = 10 * time.Minute

type badgeRecord struct {
	UID      string    `json:"uid"`
	Plan     string    `json:"plan"`
	CachedAt time.Time `json:"cachedAt"`
}

// BadgeCache keeps the last known plan code per owner so the plan badge
// renders immediately while the profile read is in flight. Best effort;
// every error degrades to a cache miss.
type BadgeCache struct {
	store  statestore.Store
	logger *zap.Logger
}

func NewBadgeCache(store statestore.Store, logger *zap.Logger) *BadgeCache {
	return &BadgeCache{store: store, logger: logger.Named("PlanBadgeCache")}
}

// Get returns the cached plan code for uid, or "" on miss.
func (c *BadgeCache) Get(uid string) string {
	var rec badgeRecord
	ok, err := c.store.Get(badgeKey, &rec)
	if err != nil {
		c.logger.Debug("Plan badge read failed", zap.Error(err))
		return ""
	}
	if !ok || rec.UID != uid {
		return ""
	}
	if time.Since(rec.CachedAt) > badgeTTL {
		return ""
	}
	return rec.Plan
}

// Put stores the plan code for uid.
func (c *BadgeCache) Put(uid, plan string) {
	rec := badgeRecord{UID: uid, Plan: plan, CachedAt: time.Now()}
	if err := c.store.Put(badgeKey, rec); err != nil {
		c.logger.Debug("Plan badge write failed", zap.Error(err))
	}
}

// Clear drops the cached badge, used when the plan changes.
func (c *BadgeCache) Clear() {
	if err := c.store.Delete(badgeKey); err != nil {
		c.logger.Debug("Plan badge delete failed", zap.Error(err))
	}
}
