// File: internal/user/policy.go
package user

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// PlanPolicy decides what an unreadable profile means for listing
// visibility.
type PlanPolicy int

const (
	// PolicyFailOpen treats a profile-read error as a valid plan, so a
	// transient backend hiccup never hides paid content. This is the
	// default.
	PolicyFailOpen PlanPolicy = iota
	// PolicyFailClosed hides the owner's listings until the profile can
	// be read again.
	PolicyFailClosed
)

func (p PlanPolicy) String() string {
	if p == PolicyFailClosed {
		return "fail-closed"
	}
	return "fail-open"
}

// PlanResolver answers "is this owner's plan active" for the catalog
// mirror. Results are cached until Reset, which the mirror calls on every
// snapshot refresh, so each owner's profile is read at most once per
// refresh no matter how many listings they have.
type PlanResolver struct {
	repo   Repository
	policy PlanPolicy
	logger *zap.Logger

	mu    sync.Mutex
	cache map[string]bool
}

// NewPlanResolver creates a resolver with the given read-error policy.
func NewPlanResolver(repo Repository, policy PlanPolicy, logger *zap.Logger) *PlanResolver {
	return &PlanResolver{
		repo:   repo,
		policy: policy,
		logger: logger.Named("PlanResolver"),
		cache:  make(map[string]bool),
	}
}

// Policy returns the configured read-error policy.
func (r *PlanResolver) Policy() PlanPolicy { return r.policy }

// PlanActive reports whether ownerID currently holds a valid plan.
func (r *PlanResolver) PlanActive(ctx context.Context, ownerID string) bool {
	r.mu.Lock()
	cached, ok := r.cache[ownerID]
	r.mu.Unlock()
	if ok {
		return cached
	}

	active := r.lookup(ctx, ownerID)

	r.mu.Lock()
	r.cache[ownerID] = active
	r.mu.Unlock()
	return active
}

func (r *PlanResolver) lookup(ctx context.Context, ownerID string) bool {
	profile, err := r.repo.GetProfile(ctx, ownerID)
	if err != nil {
		failOpen := r.policy == PolicyFailOpen
		r.logger.Warn("Profile read failed during visibility check",
			zap.String("ownerID", ownerID),
			zap.String("policy", r.policy.String()),
			zap.Bool("treatedAsActive", failOpen),
			zap.Error(err),
		)
		return failOpen
	}
	return profile.PlanActive(time.Now())
}

// Reset drops the cache. Called once per catalog snapshot refresh.
func (r *PlanResolver) Reset() {
	r.mu.Lock()
	r.cache = make(map[string]bool)
	r.mu.Unlock()
}
