// File: internal/jobs/plan_enforcement.go
package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"inzerio_backend/internal/config"
	"inzerio_backend/internal/listing"
	"inzerio_backend/internal/user"
)

// purgeAfterDays is how long a listing deactivated by plan expiry is kept
// before it is deleted for good.
const purgeAfterDays = 30

// PlanEnforcer applies the consequences of lapsed subscription plans: it
// clears the plan from expired profiles, deactivates their listings, purges
// listings that stayed deactivated past the grace window, and removes stale
// expiry markers from profiles whose plan became valid again.
type PlanEnforcer struct {
	profiles user.Repository
	listings listing.Repository
	logger   *zap.Logger
}

func NewPlanEnforcer(profiles user.Repository, listings listing.Repository, logger *zap.Logger) *PlanEnforcer {
	return &PlanEnforcer{
		profiles: profiles,
		listings: listings,
		logger:   logger.Named("PlanEnforcer"),
	}
}

// EnforcementResult summarizes one enforcement sweep.
type EnforcementResult struct {
	PlansExpired        int
	ListingsDeactivated int
	ListingsPurged      int
	MarkersCleared      int
}

// RunOnce performs a full enforcement sweep. Errors on individual owners
// are logged and skipped; an owner is never punished on uncertain data.
func (e *PlanEnforcer) RunOnce(ctx context.Context) (EnforcementResult, error) {
	now := time.Now().UTC()
	var result EnforcementResult

	expired, err := e.profiles.FindExpiredPlanProfiles(ctx, now)
	if err != nil {
		return result, fmt.Errorf("finding expired plans: %w", err)
	}
	for i := range expired {
		if ctx.Err() != nil {
			return result, ctx.Err()
		}
		if err := e.expirePlan(ctx, &expired[i], now, &result); err != nil {
			e.logger.Error("enforcing plan expiry",
				zap.String("uid", expired[i].ID), zap.Error(err))
		}
	}

	if err := e.sweepOwners(ctx, now, &result); err != nil {
		e.logger.Error("sweeping owners", zap.Error(err))
	}

	e.logger.Info("plan enforcement completed",
		zap.Int("plansExpired", result.PlansExpired),
		zap.Int("listingsDeactivated", result.ListingsDeactivated),
		zap.Int("listingsPurged", result.ListingsPurged),
		zap.Int("markersCleared", result.MarkersCleared))
	return result, nil
}

func (e *PlanEnforcer) expirePlan(ctx context.Context, profile *user.Profile, now time.Time, result *EnforcementResult) error {
	fields := map[string]interface{}{
		"plan":          "",
		"planExpiredAt": now,
	}
	if err := e.profiles.SetPlanFields(ctx, profile.ID, fields); err != nil {
		return fmt.Errorf("clearing plan: %w", err)
	}
	result.PlansExpired++

	owned, err := e.listings.FetchByOwner(ctx, profile.ID)
	if err != nil {
		return fmt.Errorf("fetching listings: %w", err)
	}
	var active []string
	for _, l := range owned {
		if l.IsActive() {
			active = append(active, l.ID)
		}
	}
	if len(active) == 0 {
		return nil
	}
	deactivation := map[string]interface{}{
		"status":         string(listing.StatusInactive),
		"inactiveReason": listing.InactiveReasonPlanExpired,
		"inactiveAt":     now,
	}
	if err := e.listings.BatchSetFields(ctx, profile.ID, active, deactivation); err != nil {
		return fmt.Errorf("deactivating listings: %w", err)
	}
	result.ListingsDeactivated += len(active)
	e.logger.Info("plan expired, listings deactivated",
		zap.String("uid", profile.ID), zap.Int("count", len(active)))
	return nil
}

// sweepOwners walks every owner to purge long-deactivated listings and to
// clear expiry markers left over from a plan that was since renewed.
func (e *PlanEnforcer) sweepOwners(ctx context.Context, now time.Time, result *EnforcementResult) error {
	ownerIDs, err := e.listings.FetchOwnerIDs(ctx)
	if err != nil {
		return fmt.Errorf("enumerating owners: %w", err)
	}
	purgeBefore := now.AddDate(0, 0, -purgeAfterDays)

	for _, ownerID := range ownerIDs {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		profile, err := e.profiles.GetProfile(ctx, ownerID)
		if err != nil {
			e.logger.Warn("reading profile during sweep", zap.String("uid", ownerID), zap.Error(err))
			continue
		}
		planValid := profile.PlanActive(now)

		if planValid && profile.PlanExpiredAt != nil {
			if err := e.profiles.SetPlanFields(ctx, ownerID, map[string]interface{}{"planExpiredAt": nil}); err != nil {
				e.logger.Warn("clearing stale expiry marker", zap.String("uid", ownerID), zap.Error(err))
			} else {
				result.MarkersCleared++
			}
		}

		owned, err := e.listings.FetchByOwner(ctx, ownerID)
		if err != nil {
			e.logger.Warn("fetching listings during sweep", zap.String("uid", ownerID), zap.Error(err))
			continue
		}
		var purge []string
		for _, l := range owned {
			if l.EffectiveStatus() != listing.StatusInactive ||
				l.InactiveReason != listing.InactiveReasonPlanExpired ||
				l.InactiveAt == nil {
				continue
			}
			if l.InactiveAt.Before(purgeBefore) {
				purge = append(purge, l.ID)
			}
		}
		if len(purge) > 0 {
			if err := e.listings.BatchDelete(ctx, ownerID, purge); err != nil {
				e.logger.Warn("purging listings", zap.String("uid", ownerID), zap.Error(err))
				continue
			}
			result.ListingsPurged += len(purge)
		}
	}
	return nil
}

// PlanEnforcementJob runs the enforcer on a cron schedule.
type PlanEnforcementJob struct {
	enforcer      *PlanEnforcer
	logger        *zap.Logger
	cfg           *config.Config
	cronScheduler *cron.Cron
}

func NewPlanEnforcementJob(enforcer *PlanEnforcer, logger *zap.Logger, cfg *config.Config) *PlanEnforcementJob {
	scheduler := cron.New(cron.WithLogger(NewCronLogger(logger.Named("cron"))))
	return &PlanEnforcementJob{
		enforcer:      enforcer,
		logger:        logger.Named("PlanEnforcementJob"),
		cfg:           cfg,
		cronScheduler: scheduler,
	}
}

// SetupAndStart schedules and starts the cron job.
func (j *PlanEnforcementJob) SetupAndStart() error {
	jobSpec := j.cfg.PlanEnforcementSchedule
	if jobSpec == "" {
		j.logger.Warn("Plan enforcement schedule not defined (PLAN_ENFORCEMENT_SCHEDULE). Job will not run.")
		return nil
	}

	jobID, err := j.cronScheduler.AddFunc(jobSpec, j.runJob)
	if err != nil {
		j.logger.Error("Failed to schedule plan enforcement job", zap.String("spec", jobSpec), zap.Error(err))
		return err
	}

	j.logger.Info("Plan enforcement job scheduled", zap.String("spec", jobSpec), zap.Any("jobID", jobID))
	j.cronScheduler.Start()
	return nil
}

func (j *PlanEnforcementJob) runJob() {
	j.logger.Info("Starting plan enforcement run...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	if _, err := j.enforcer.RunOnce(ctx); err != nil {
		j.logger.Error("Plan enforcement run failed", zap.Error(err))
	}
}

// Stop gracefully stops the cron scheduler.
func (j *PlanEnforcementJob) Stop() {
	if j.cronScheduler != nil {
		j.logger.Info("Stopping plan enforcement scheduler...")
		stopCtx := j.cronScheduler.Stop()
		select {
		case <-stopCtx.Done():
			j.logger.Info("Plan enforcement scheduler stopped gracefully.")
		case <-time.After(10 * time.Second):
			j.logger.Warn("Plan enforcement scheduler stop timed out.")
		}
	}
}

// --- Cron Logger Adapter ---

// cronLogger adapts zap.Logger to the cron.Logger interface.
type cronLogger struct {
	zl *zap.Logger
}

func NewCronLogger(zl *zap.Logger) cron.Logger {
	return &cronLogger{zl: zl}
}

func (cl *cronLogger) Info(msg string, keysAndValues ...interface{}) {
	cl.zl.Info(msg, cl.parseKeysAndValues(keysAndValues...)...)
}

func (cl *cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	fields := cl.parseKeysAndValues(keysAndValues...)
	fields = append(fields, zap.Error(err))
	cl.zl.Error(msg, fields...)
}

func (cl *cronLogger) parseKeysAndValues(keysAndValues ...interface{}) []zap.Field {
	var fields []zap.Field
	for i := 0; i < len(keysAndValues); i += 2 {
		if i+1 < len(keysAndValues) {
			fields = append(fields, zap.Any(fmt.Sprintf("%v", keysAndValues[i]), keysAndValues[i+1]))
		} else {
			fields = append(fields, zap.Any(fmt.Sprintf("%v", keysAndValues[i]), "MISSING_VALUE"))
		}
	}
	return fields
}
