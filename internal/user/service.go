// File: internal/user/service.go
package user

import (
	"context"
	"time"

	"go.uber.org/zap"

	"inzerio_backend/internal/common"
	"inzerio_backend/internal/config"
	"inzerio_backend/internal/payments"
)

// Service is the business logic around owner profiles and plans.
type Service interface {
	GetProfile(ctx context.Context, uid string) (*Profile, error)
	GetPlanStatus(ctx context.Context, uid string) (*PlanStatusResponse, error)
	// PurchasePlan opens a subscription checkout and returns the session
	// with the redirect URL. The plan fields are written only after the
	// buyer comes back through ConfirmPlanPurchase.
	PurchasePlan(ctx context.Context, uid, plan string) (*payments.Session, error)
	// ConfirmPlanPurchase activates the plan for a full period starting
	// now and clears any scheduled cancellation.
	ConfirmPlanPurchase(ctx context.Context, uid, plan string) (*PlanStatusResponse, error)
	// CancelPlan schedules the plan to end at the current period end.
	CancelPlan(ctx context.Context, uid string) (*PlanStatusResponse, error)
	// UndoCancelPlan removes a scheduled cancellation.
	UndoCancelPlan(ctx context.Context, uid string) (*PlanStatusResponse, error)
}

// ServiceImplementation implements Service.
type ServiceImplementation struct {
	repo     Repository
	checkout payments.Client
	badge    *BadgeCache
	cfg      *config.Config
	logger   *zap.Logger
}

var _ Service = (*ServiceImplementation)(nil)

// NewService creates the profile/plan service.
func NewService(
	repo Repository,
	checkout payments.Client,
	badge *BadgeCache,
	cfg *config.Config,
	logger *zap.Logger,
) *ServiceImplementation {
	return &ServiceImplementation{
		repo:     repo,
		checkout: checkout,
		badge:    badge,
		cfg:      cfg,
		logger:   logger.Named("UserService"),
	}
}

func (s *ServiceImplementation) GetProfile(ctx context.Context, uid string) (*Profile, error) {
	profile, err := s.repo.GetProfile(ctx, uid)
	if err != nil {
		s.logger.Error("Failed to read profile", zap.String("uid", uid), zap.Error(err))
		return nil, common.ErrInternalServer.WithDetails("Could not load profile.")
	}
	return profile, nil
}

func (s *ServiceImplementation) GetPlanStatus(ctx context.Context, uid string) (*PlanStatusResponse, error) {
	profile, err := s.GetProfile(ctx, uid)
	if err != nil {
		return nil, err
	}
	s.badge.Put(uid, profile.Plan)
	return planStatus(profile), nil
}

func (s *ServiceImplementation) PurchasePlan(ctx context.Context, uid, plan string) (*payments.Session, error) {
	priceID := s.planPriceID(plan)
	if priceID == "" {
		return nil, common.ErrBadRequest.WithDetails("Unknown plan: " + plan)
	}

	session, err := s.checkout.CreateSession(ctx, uid, payments.SessionRequest{
		PriceID:    priceID,
		Mode:       payments.ModeSubscription,
		SuccessURL: s.cfg.CheckoutSuccessURL,
		CancelURL:  s.cfg.CheckoutCancelURL,
		Metadata:   map[string]string{"plan": plan},
	})
	if err != nil {
		s.logger.Error("Plan checkout failed", zap.String("uid", uid), zap.String("plan", plan), zap.Error(err))
		return nil, common.ErrServiceUnavailable.WithDetails("Could not start the checkout. Please try again.")
	}

	s.logger.Info("Plan checkout session created",
		zap.String("uid", uid), zap.String("plan", plan), zap.String("sessionID", session.ID))
	return session, nil
}

func (s *ServiceImplementation) ConfirmPlanPurchase(ctx context.Context, uid, plan string) (*PlanStatusResponse, error) {
	if plan != PlanHobby && plan != PlanBusiness {
		return nil, common.ErrBadRequest.WithDetails("Unknown plan: " + plan)
	}

	now := time.Now().UTC()
	periodEnd := now.AddDate(0, 0, s.cfg.PlanPeriodDays)
	fields := map[string]interface{}{
		"plan":             plan,
		"planPeriodStart":  now,
		"planPeriodEnd":    periodEnd,
		"planDurationDays": s.cfg.PlanPeriodDays,
		"planCancelAt":     nil,
		"planExpiredAt":    nil,
	}
	if err := s.repo.SetPlanFields(ctx, uid, fields); err != nil {
		s.logger.Error("Failed to activate plan", zap.String("uid", uid), zap.String("plan", plan), zap.Error(err))
		return nil, common.ErrInternalServer.WithDetails("Could not activate the plan.")
	}

	s.badge.Put(uid, plan)
	s.logger.Info("Plan activated",
		zap.String("uid", uid), zap.String("plan", plan), zap.Time("periodEnd", periodEnd))

	return s.GetPlanStatus(ctx, uid)
}

func (s *ServiceImplementation) CancelPlan(ctx context.Context, uid string) (*PlanStatusResponse, error) {
	profile, err := s.GetProfile(ctx, uid)
	if err != nil {
		return nil, err
	}
	if !profile.PlanActive(time.Now()) {
		return nil, common.ErrConflict.WithDetails("There is no active plan to cancel.")
	}
	if profile.PlanPeriodEnd == nil {
		return nil, common.ErrConflict.WithDetails("The plan has no period end to cancel at.")
	}

	if err := s.repo.SetPlanFields(ctx, uid, map[string]interface{}{
		"planCancelAt": *profile.PlanPeriodEnd,
	}); err != nil {
		s.logger.Error("Failed to cancel plan", zap.String("uid", uid), zap.Error(err))
		return nil, common.ErrInternalServer.WithDetails("Could not cancel the plan.")
	}

	s.logger.Info("Plan cancellation scheduled",
		zap.String("uid", uid), zap.Time("cancelAt", *profile.PlanPeriodEnd))
	return s.GetPlanStatus(ctx, uid)
}

func (s *ServiceImplementation) UndoCancelPlan(ctx context.Context, uid string) (*PlanStatusResponse, error) {
	profile, err := s.GetProfile(ctx, uid)
	if err != nil {
		return nil, err
	}
	if profile.PlanCancelAt == nil {
		return nil, common.ErrConflict.WithDetails("The plan is not scheduled for cancellation.")
	}

	if err := s.repo.SetPlanFields(ctx, uid, map[string]interface{}{
		"planCancelAt": nil,
	}); err != nil {
		s.logger.Error("Failed to undo plan cancellation", zap.String("uid", uid), zap.Error(err))
		return nil, common.ErrInternalServer.WithDetails("Could not undo the cancellation.")
	}

	s.logger.Info("Plan cancellation undone", zap.String("uid", uid))
	return s.GetPlanStatus(ctx, uid)
}

func (s *ServiceImplementation) planPriceID(plan string) string {
	switch plan {
	case PlanHobby:
		return s.cfg.StripePricePlanHobby
	case PlanBusiness:
		return s.cfg.StripePricePlanBusiness
	}
	return ""
}

func planStatus(p *Profile) *PlanStatusResponse {
	return &PlanStatusResponse{
		Plan:            p.Plan,
		Active:          p.PlanActive(time.Now()),
		PlanPeriodStart: p.PlanPeriodStart,
		PlanPeriodEnd:   p.PlanPeriodEnd,
		PlanCancelAt:    p.PlanCancelAt,
		DaysRemaining:   p.PlanDaysRemaining(time.Now()),
	}
}
