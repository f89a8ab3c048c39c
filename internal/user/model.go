// File: internal/user/model.go
package user

import "time"

// Plan codes. An empty plan means the owner has no subscription.
const (
	PlanHobby    = "hobby"
	PlanBusiness = "business"
)

// Profile is an owner profile document (users/{uid}).
type Profile struct {
	ID    string `json:"id" firestore:"-"`
	Email string `json:"email,omitempty" firestore:"email"`
	Name  string `json:"name,omitempty" firestore:"name"`

	Plan             string     `json:"plan,omitempty" firestore:"plan"`
	PlanPeriodStart  *time.Time `json:"plan_period_start,omitempty" firestore:"planPeriodStart"`
	PlanPeriodEnd    *time.Time `json:"plan_period_end,omitempty" firestore:"planPeriodEnd"`
	PlanDurationDays int        `json:"plan_duration_days,omitempty" firestore:"planDurationDays"`
	// PlanCancelAt set means the owner cancelled; the plan runs out at
	// that instant instead of renewing.
	PlanCancelAt  *time.Time `json:"plan_cancel_at,omitempty" firestore:"planCancelAt"`
	PlanExpiredAt *time.Time `json:"plan_expired_at,omitempty" firestore:"planExpiredAt"`
}

// HasKnownPlan reports whether the profile carries one of the paid plan
// codes, regardless of period.
func (p *Profile) HasKnownPlan() bool {
	return p.Plan == PlanHobby || p.Plan == PlanBusiness
}

// PlanActive reports whether the plan is valid at the given instant:
// a known plan code whose period end has not passed. A missing period end
// on a known plan counts as active; some early profiles never got one.
func (p *Profile) PlanActive(now time.Time) bool {
	if !p.HasKnownPlan() {
		return false
	}
	if p.PlanPeriodEnd == nil {
		return true
	}
	return !p.PlanPeriodEnd.Before(now)
}

// PlanDaysRemaining returns the whole days left in the current period,
// zero when no period end is set or the plan already ran out.
func (p *Profile) PlanDaysRemaining(now time.Time) int {
	if p.PlanPeriodEnd == nil || p.PlanPeriodEnd.Before(now) {
		return 0
	}
	return int(p.PlanPeriodEnd.Sub(now).Hours() / 24)
}

// PlanStatusResponse is the API shape of an owner's plan state.
type PlanStatusResponse struct {
	Plan            string     `json:"plan,omitempty"`
	Active          bool       `json:"active"`
	PlanPeriodStart *time.Time `json:"plan_period_start,omitempty"`
	PlanPeriodEnd   *time.Time `json:"plan_period_end,omitempty"`
	PlanCancelAt    *time.Time `json:"plan_cancel_at,omitempty"`
	DaysRemaining   int        `json:"days_remaining"`
}

// PurchasePlanRequest selects the plan to buy.
type PurchasePlanRequest struct {
	Plan string `json:"plan" binding:"required,oneof=hobby business"`
}
