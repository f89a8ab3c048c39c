// File: internal/promotion/service.go
package promotion

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strconv"
	"time"

	"go.uber.org/zap"

	"inzerio_backend/internal/common"
	"inzerio_backend/internal/config"
	"inzerio_backend/internal/listing"
	"inzerio_backend/internal/payments"
	"inzerio_backend/internal/user"
)

// Service manages the paid TOP promotion lifecycle: eligibility checks,
// checkout, activation on return, and manual cancellation.
type Service interface {
	CheckEligibility(ctx context.Context, uid string, durationDays int) (*Eligibility, error)
	StartCheckout(ctx context.Context, uid string, req StartCheckoutRequest) (*payments.Session, error)
	HandleReturn(ctx context.Context, uid string, outcome, adID string) (*listing.Listing, error)
	CancelTop(ctx context.Context, uid, listingID string) error
	ListTop(ctx context.Context, uid string) ([]TopListingResponse, error)
}

type ServiceImplementation struct {
	listings listing.Repository
	store    *listing.Store
	profiles user.Repository
	checkout payments.Client
	pending  *PendingStore
	clock    Clock
	cfg      *config.Config
	logger   *zap.Logger
}

var _ Service = (*ServiceImplementation)(nil)

func NewService(
	listings listing.Repository,
	store *listing.Store,
	profiles user.Repository,
	checkout payments.Client,
	pending *PendingStore,
	clock Clock,
	cfg *config.Config,
	logger *zap.Logger,
) *ServiceImplementation {
	return &ServiceImplementation{
		listings: listings,
		store:    store,
		profiles: profiles,
		checkout: checkout,
		pending:  pending,
		clock:    clock,
		cfg:      cfg,
		logger:   logger.Named("PromotionService"),
	}
}

// CheckEligibility applies the plan coverage rules for a TOP purchase of the
// given duration. A promotion may never outlive the owner's plan period, and
// a scheduled plan cancellation must not fall inside the promotion window.
func (s *ServiceImplementation) CheckEligibility(ctx context.Context, uid string, durationDays int) (*Eligibility, error) {
	profile, err := s.profiles.GetProfile(ctx, uid)
	if err != nil {
		s.logger.Error("reading profile for eligibility", zap.String("uid", uid), zap.Error(err))
		return nil, common.ErrServiceUnavailable
	}
	return s.eligibility(profile, durationDays), nil
}

func (s *ServiceImplementation) eligibility(profile *user.Profile, durationDays int) *Eligibility {
	now := s.clock.Now()
	if !profile.HasKnownPlan() {
		return &Eligibility{Allowed: false, Reason: ReasonNoPlan}
	}
	if profile.PlanPeriodEnd == nil || !profile.PlanPeriodEnd.After(now) {
		return &Eligibility{Allowed: false, Reason: ReasonPlanExpired}
	}

	topEnd := now.Add(time.Duration(durationDays) * 24 * time.Hour)
	if durationDays >= 30 {
		// A full-length promotion is covered by any live plan, unless the
		// owner has scheduled a cancellation that cuts the window short.
		if profile.PlanCancelAt != nil && profile.PlanCancelAt.Before(topEnd) {
			return &Eligibility{Allowed: false, Reason: ReasonCancellationBeforeTopEnd}
		}
		return &Eligibility{Allowed: true}
	}

	remainingDays := int(math.Ceil(profile.PlanPeriodEnd.Sub(now).Hours() / 24))
	if durationDays > remainingDays {
		return &Eligibility{Allowed: false, Reason: ReasonTopLongerThanPlan}
	}
	if profile.PlanCancelAt != nil && profile.PlanCancelAt.Before(topEnd) {
		return &Eligibility{Allowed: false, Reason: ReasonCancellationBeforeTopEnd}
	}
	return &Eligibility{Allowed: true}
}

// StartCheckout records the pending activation, then opens a checkout
// session for the selected tier. The pending record is written first so the
// purchase can still be completed if the process dies mid-checkout. An
// already promoted listing may check out again; activation restarts the
// window from the payment time, which is how extensions work.
func (s *ServiceImplementation) StartCheckout(ctx context.Context, uid string, req StartCheckoutRequest) (*payments.Session, error) {
	if _, err := s.ownedListing(uid, req.ListingID); err != nil {
		return nil, err
	}

	pkg := PackageForDuration(s.cfg, req.DurationDays)
	if pkg == nil {
		return nil, common.ErrBadRequest.WithDetails(fmt.Sprintf("No promotion tier for %d days.", req.DurationDays))
	}

	elig, err := s.CheckEligibility(ctx, uid, req.DurationDays)
	if err != nil {
		return nil, err
	}
	if !elig.Allowed {
		return nil, common.ErrPaymentRequired.WithDetails(string(elig.Reason))
	}

	rec := &PendingTopActivation{
		ListingID:    req.ListingID,
		DurationDays: req.DurationDays,
		StartedAt:    s.clock.Now().UTC(),
	}
	if err := s.pending.Put(uid, rec); err != nil {
		s.logger.Error("persisting pending promotion", zap.String("uid", uid), zap.Error(err))
		return nil, common.ErrInternalServer
	}

	session, err := s.checkout.CreateSession(ctx, uid, payments.SessionRequest{
		PriceID:    pkg.PriceID,
		Mode:       payments.ModePayment,
		SuccessURL: s.cfg.CheckoutSuccessURL,
		CancelURL:  s.cfg.CheckoutCancelURL,
		Metadata: map[string]string{
			"adId":     req.ListingID,
			"duration": strconv.Itoa(req.DurationDays),
		},
		AllowPromotionCodes: true,
	})
	if err != nil {
		s.logger.Error("creating promotion checkout session",
			zap.String("uid", uid), zap.String("listingID", req.ListingID), zap.Error(err))
		return nil, common.ErrServiceUnavailable.WithDetails("Checkout is currently unavailable.")
	}

	rec.CheckoutSessionID = session.ID
	if err := s.pending.Put(uid, rec); err != nil {
		// The session id is only diagnostic; activation works without it.
		s.logger.Warn("recording checkout session id", zap.String("uid", uid), zap.Error(err))
	}
	return session, nil
}

// HandleReturn finishes the checkout round trip. A successful return
// activates the pending promotion; a canceled one just drops the pending
// record. Returning with no pending record is a no-op, which makes retried
// redirects harmless. The pending record decides which listing activates;
// adID only cross-checks what the redirect claims.
func (s *ServiceImplementation) HandleReturn(ctx context.Context, uid string, outcome, adID string) (*listing.Listing, error) {
	rec, err := s.pending.Get(uid)
	if err != nil {
		s.logger.Error("reading pending promotion", zap.String("uid", uid), zap.Error(err))
		return nil, common.ErrInternalServer
	}
	if rec == nil {
		return nil, nil
	}
	if adID != "" && adID != rec.ListingID {
		s.logger.Warn("return redirect names a different listing than the pending record",
			zap.String("uid", uid), zap.String("returnAdID", adID),
			zap.String("pendingListingID", rec.ListingID))
	}

	if outcome != "success" {
		s.clearPending(uid)
		return nil, nil
	}

	now := s.clock.Now().UTC()
	expiresAt := now.Add(time.Duration(rec.DurationDays) * 24 * time.Hour)
	fields := map[string]interface{}{
		"isTop":               true,
		"topActivatedAt":      now,
		"topExpiresAt":        expiresAt,
		"topDurationDays":     rec.DurationDays,
		"topPaymentProvider":  "stripe",
		"topPaymentCreatedAt": rec.StartedAt,
	}
	if err := s.listings.SetFields(ctx, uid, rec.ListingID, fields); err != nil {
		s.logger.Error("activating promotion", zap.String("uid", uid),
			zap.String("listingID", rec.ListingID), zap.Error(err))
		return nil, common.ErrServiceUnavailable.WithDetails("Activation failed, it will be retried on the next return.")
	}

	s.store.Mutate(rec.ListingID, func(l *listing.Listing) {
		l.IsTop = true
		l.TopActivatedAt = &now
		l.TopExpiresAt = &expiresAt
		l.TopExpiredAt = nil
		l.TopDurationDays = rec.DurationDays
	})
	s.clearPending(uid)

	// The listing can be absent from the public snapshot (the owner may be
	// gated out of it); answer from the state just written either way.
	activated, ok := s.store.Get(rec.ListingID)
	if !ok {
		activated = listing.Listing{ID: rec.ListingID, OwnerID: uid}
	}
	activated.IsTop = true
	activated.TopActivatedAt = &now
	activated.TopExpiresAt = &expiresAt
	activated.TopExpiredAt = nil
	activated.TopDurationDays = rec.DurationDays

	s.logger.Info("promotion activated", zap.String("uid", uid),
		zap.String("listingID", rec.ListingID), zap.Int("durationDays", rec.DurationDays))
	return &activated, nil
}

func (s *ServiceImplementation) clearPending(uid string) {
	if err := s.pending.Clear(uid); err != nil {
		s.logger.Warn("clearing pending promotion", zap.String("uid", uid), zap.Error(err))
	}
}

// CancelTop turns the promotion off immediately. The paid window is
// forfeited; there is no refund path here.
func (s *ServiceImplementation) CancelTop(ctx context.Context, uid, listingID string) error {
	l, err := s.ownedListing(uid, listingID)
	if err != nil {
		return err
	}
	if !l.IsTop {
		return common.ErrConflict.WithDetails("The listing is not promoted.")
	}
	if err := s.listings.SetFields(ctx, uid, listingID, map[string]interface{}{"isTop": false}); err != nil {
		s.logger.Error("cancelling promotion", zap.String("uid", uid),
			zap.String("listingID", listingID), zap.Error(err))
		return common.ErrServiceUnavailable
	}
	s.store.Mutate(listingID, func(l *listing.Listing) {
		l.IsTop = false
	})
	return nil
}

// ListTop returns the caller's promoted listings ordered by soonest expiry.
// Listings without an expiry sort last.
func (s *ServiceImplementation) ListTop(ctx context.Context, uid string) ([]TopListingResponse, error) {
	now := s.clock.Now()
	var out []TopListingResponse
	for _, l := range s.store.Snapshot() {
		if l.OwnerID != uid || !l.IsTop || l.TopExpired(now) {
			continue
		}
		out = append(out, TopListingResponse{
			ListingID:    l.ID,
			Title:        l.Title,
			ActivatedAt:  l.TopActivatedAt,
			ExpiresAt:    l.TopExpiresAt,
			DurationDays: l.TopDurationDays,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return topExpiryKey(out[i].ExpiresAt).Before(topExpiryKey(out[j].ExpiresAt))
	})
	return out, nil
}

func topExpiryKey(t *time.Time) time.Time {
	if t == nil {
		return time.Date(9999, 1, 1, 0, 0, 0, 0, time.UTC)
	}
	return *t
}

func (s *ServiceImplementation) ownedListing(uid, listingID string) (listing.Listing, error) {
	l, ok := s.store.Get(listingID)
	if !ok {
		return listing.Listing{}, common.ErrNotFound.WithDetails("Listing not found.")
	}
	if l.OwnerID != uid {
		return listing.Listing{}, common.ErrForbidden
	}
	return l, nil
}
