// File: internal/promotion/model.go
package promotion

import (
	"time"

	"inzerio_backend/internal/config"
)

// PendingTopActivation records a TOP checkout that has been started but not
// yet confirmed. It is persisted before the checkout session is created so
// that a crash between payment and activation can be recovered on return.
type PendingTopActivation struct {
	ListingID         string    `json:"adId"`
	DurationDays      int       `json:"durationDays"`
	StartedAt         time.Time `json:"startedAt"`
	CheckoutSessionID string    `json:"checkoutSessionId,omitempty"`
}

// Package is a purchasable TOP promotion tier.
type Package struct {
	DurationDays int    `json:"duration_days"`
	PriceCZK     int    `json:"price_czk"`
	PriceID      string `json:"-"`
}

// Packages returns the available TOP tiers in ascending duration order.
func Packages(cfg *config.Config) []Package {
	return []Package{
		{DurationDays: 1, PriceCZK: 19, PriceID: cfg.StripePriceTop1Day},
		{DurationDays: 7, PriceCZK: 49, PriceID: cfg.StripePriceTop7Days},
		{DurationDays: 30, PriceCZK: 149, PriceID: cfg.StripePriceTop30Days},
	}
}

// PackageForDuration finds the tier matching durationDays, or nil.
func PackageForDuration(cfg *config.Config, durationDays int) *Package {
	for _, p := range Packages(cfg) {
		if p.DurationDays == durationDays {
			return &p
		}
	}
	return nil
}

// EligibilityReason explains why a TOP purchase is not allowed.
type EligibilityReason string

const (
	ReasonNoPlan                   EligibilityReason = "no_plan"
	ReasonPlanExpired              EligibilityReason = "plan_expired"
	ReasonTopLongerThanPlan        EligibilityReason = "top_longer_than_plan"
	ReasonCancellationBeforeTopEnd EligibilityReason = "cancellation_before_top_end"
)

// Eligibility is the outcome of checking whether the owner's subscription
// plan covers a TOP promotion of the requested duration.
type Eligibility struct {
	Allowed bool              `json:"allowed"`
	Reason  EligibilityReason `json:"reason,omitempty"`
}

// StartCheckoutRequest begins a TOP purchase for one listing.
type StartCheckoutRequest struct {
	ListingID    string `json:"listing_id" binding:"required"`
	DurationDays int    `json:"duration_days" binding:"required,oneof=1 7 30"`
}

// CheckoutReturnRequest reports the outcome of a checkout redirect. The
// listing to activate comes from the pending record, not the client; AdID
// is accepted for cross-checking only.
type CheckoutReturnRequest struct {
	Payment string `json:"payment" binding:"required,oneof=success canceled"`
	AdID    string `json:"adId" binding:"omitempty"`
}

// TopListingResponse is a listing with its promotion window, as shown on the
// owner's TOP management page.
type TopListingResponse struct {
	ListingID    string     `json:"listing_id"`
	Title        string     `json:"title"`
	ActivatedAt  *time.Time `json:"activated_at,omitempty"`
	ExpiresAt    *time.Time `json:"expires_at,omitempty"`
	DurationDays int        `json:"duration_days,omitempty"`
}
