// File: internal/user/service_test.go
package user

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"inzerio_backend/internal/common"
	"inzerio_backend/internal/config"
	"inzerio_backend/internal/payments"
	"inzerio_backend/internal/platform/statestore"
)

// --- Mocks ---

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) GetProfile(ctx context.Context, uid string) (*Profile, error) {
	args := m.Called(ctx, uid)
	if p, ok := args.Get(0).(*Profile); ok {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockRepository) SetPlanFields(ctx context.Context, uid string, fields map[string]interface{}) error {
	args := m.Called(ctx, uid, fields)
	return args.Error(0)
}

func (m *MockRepository) FindExpiredPlanProfiles(ctx context.Context, now time.Time) ([]Profile, error) {
	args := m.Called(ctx, now)
	if p, ok := args.Get(0).([]Profile); ok {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}

type MockCheckoutClient struct {
	mock.Mock
}

func (m *MockCheckoutClient) CreateSession(ctx context.Context, uid string, req payments.SessionRequest) (*payments.Session, error) {
	args := m.Called(ctx, uid, req)
	if s, ok := args.Get(0).(*payments.Session); ok {
		return s, args.Error(1)
	}
	return nil, args.Error(1)
}

// --- Suite ---

type userServiceTestSuite struct {
	repo     *MockRepository
	checkout *MockCheckoutClient
	service  *ServiceImplementation
}

func setupUserServiceTestSuite(t *testing.T) *userServiceTestSuite {
	t.Helper()
	repo := new(MockRepository)
	checkout := new(MockCheckoutClient)
	cfg := &config.Config{
		PlanPeriodDays:          30,
		StripePricePlanHobby:    "price_hobby_test",
		StripePricePlanBusiness: "price_business_test",
		CheckoutSuccessURL:      "https://example.test/ok",
		CheckoutCancelURL:       "https://example.test/cancel",
	}
	badge := NewBadgeCache(statestore.NewMemoryStore(), zap.NewNop())
	svc := NewService(repo, checkout, badge, cfg, zap.NewNop())
	return &userServiceTestSuite{repo: repo, checkout: checkout, service: svc}
}

func futureTime(d time.Duration) *time.Time {
	t := time.Now().Add(d)
	return &t
}

func TestGetPlanStatusActivePlan(t *testing.T) {
	s := setupUserServiceTestSuite(t)
	s.repo.On("GetProfile", mock.Anything, "uid-1").Return(&Profile{
		ID:            "uid-1",
		Plan:          PlanBusiness,
		PlanPeriodEnd: futureTime(10*24*time.Hour + time.Minute),
	}, nil)

	status, err := s.service.GetPlanStatus(context.Background(), "uid-1")
	require.NoError(t, err)
	assert.True(t, status.Active)
	assert.Equal(t, PlanBusiness, status.Plan)
	assert.Equal(t, 10, status.DaysRemaining)
	s.repo.AssertExpectations(t)
}

func TestGetPlanStatusExpiredPlan(t *testing.T) {
	s := setupUserServiceTestSuite(t)
	s.repo.On("GetProfile", mock.Anything, "uid-1").Return(&Profile{
		ID:            "uid-1",
		Plan:          PlanHobby,
		PlanPeriodEnd: futureTime(-24 * time.Hour),
	}, nil)

	status, err := s.service.GetPlanStatus(context.Background(), "uid-1")
	require.NoError(t, err)
	assert.False(t, status.Active)
	assert.Equal(t, 0, status.DaysRemaining)
}

func TestPurchasePlanCreatesSubscriptionSession(t *testing.T) {
	s := setupUserServiceTestSuite(t)
	s.checkout.On("CreateSession", mock.Anything, "uid-1", mock.MatchedBy(func(req payments.SessionRequest) bool {
		return req.PriceID == "price_hobby_test" &&
			req.Mode == payments.ModeSubscription &&
			req.Metadata["plan"] == PlanHobby
	})).Return(&payments.Session{ID: "cs_1", URL: "https://stripe.test/cs_1"}, nil)

	session, err := s.service.PurchasePlan(context.Background(), "uid-1", PlanHobby)
	require.NoError(t, err)
	assert.Equal(t, "https://stripe.test/cs_1", session.URL)
	s.checkout.AssertExpectations(t)
}

func TestPurchasePlanUnknownPlan(t *testing.T) {
	s := setupUserServiceTestSuite(t)

	_, err := s.service.PurchasePlan(context.Background(), "uid-1", "platinum")
	apiErr, ok := common.IsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, common.ErrBadRequest.Code, apiErr.Code)
	s.checkout.AssertNotCalled(t, "CreateSession", mock.Anything, mock.Anything, mock.Anything)
}

func TestConfirmPlanPurchaseWritesFullPeriod(t *testing.T) {
	s := setupUserServiceTestSuite(t)
	before := time.Now().UTC()

	s.repo.On("SetPlanFields", mock.Anything, "uid-1", mock.MatchedBy(func(fields map[string]interface{}) bool {
		if fields["plan"] != PlanBusiness || fields["planDurationDays"] != 30 {
			return false
		}
		if fields["planCancelAt"] != nil || fields["planExpiredAt"] != nil {
			return false
		}
		end, ok := fields["planPeriodEnd"].(time.Time)
		return ok && !end.Before(before.AddDate(0, 0, 30))
	})).Return(nil)
	s.repo.On("GetProfile", mock.Anything, "uid-1").Return(&Profile{
		ID:            "uid-1",
		Plan:          PlanBusiness,
		PlanPeriodEnd: futureTime(30 * 24 * time.Hour),
	}, nil)

	status, err := s.service.ConfirmPlanPurchase(context.Background(), "uid-1", PlanBusiness)
	require.NoError(t, err)
	assert.True(t, status.Active)
	s.repo.AssertExpectations(t)
}

func TestCancelPlanSchedulesPeriodEnd(t *testing.T) {
	s := setupUserServiceTestSuite(t)
	periodEnd := futureTime(12 * 24 * time.Hour)
	s.repo.On("GetProfile", mock.Anything, "uid-1").Return(&Profile{
		ID:            "uid-1",
		Plan:          PlanHobby,
		PlanPeriodEnd: periodEnd,
	}, nil)
	s.repo.On("SetPlanFields", mock.Anything, "uid-1", mock.MatchedBy(func(fields map[string]interface{}) bool {
		at, ok := fields["planCancelAt"].(time.Time)
		return ok && at.Equal(*periodEnd)
	})).Return(nil)

	_, err := s.service.CancelPlan(context.Background(), "uid-1")
	require.NoError(t, err)
	s.repo.AssertExpectations(t)
}

func TestCancelPlanWithoutActivePlan(t *testing.T) {
	s := setupUserServiceTestSuite(t)
	s.repo.On("GetProfile", mock.Anything, "uid-1").Return(&Profile{ID: "uid-1"}, nil)

	_, err := s.service.CancelPlan(context.Background(), "uid-1")
	apiErr, ok := common.IsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, common.ErrConflict.Code, apiErr.Code)
}

func TestUndoCancelPlan(t *testing.T) {
	s := setupUserServiceTestSuite(t)
	s.repo.On("GetProfile", mock.Anything, "uid-1").Return(&Profile{
		ID:            "uid-1",
		Plan:          PlanHobby,
		PlanPeriodEnd: futureTime(5 * 24 * time.Hour),
		PlanCancelAt:  futureTime(5 * 24 * time.Hour),
	}, nil).Once()
	s.repo.On("SetPlanFields", mock.Anything, "uid-1", mock.MatchedBy(func(fields map[string]interface{}) bool {
		v, present := fields["planCancelAt"]
		return present && v == nil
	})).Return(nil)
	s.repo.On("GetProfile", mock.Anything, "uid-1").Return(&Profile{
		ID:            "uid-1",
		Plan:          PlanHobby,
		PlanPeriodEnd: futureTime(5 * 24 * time.Hour),
	}, nil)

	status, err := s.service.UndoCancelPlan(context.Background(), "uid-1")
	require.NoError(t, err)
	assert.Nil(t, status.PlanCancelAt)
}

func TestUndoCancelPlanNothingScheduled(t *testing.T) {
	s := setupUserServiceTestSuite(t)
	s.repo.On("GetProfile", mock.Anything, "uid-1").Return(&Profile{
		ID:   "uid-1",
		Plan: PlanHobby,
	}, nil)

	_, err := s.service.UndoCancelPlan(context.Background(), "uid-1")
	apiErr, ok := common.IsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, common.ErrConflict.Code, apiErr.Code)
}

// --- PlanResolver ---

func TestPlanResolverCachesPerRefresh(t *testing.T) {
	repo := new(MockRepository)
	repo.On("GetProfile", mock.Anything, "owner-1").Return(&Profile{
		ID:            "owner-1",
		Plan:          PlanHobby,
		PlanPeriodEnd: futureTime(24 * time.Hour),
	}, nil).Once()

	resolver := NewPlanResolver(repo, PolicyFailOpen, zap.NewNop())
	assert.True(t, resolver.PlanActive(context.Background(), "owner-1"))
	// Second hit for the same owner comes from the cache.
	assert.True(t, resolver.PlanActive(context.Background(), "owner-1"))
	repo.AssertExpectations(t)

	// After Reset the profile is read again.
	repo.On("GetProfile", mock.Anything, "owner-1").Return(&Profile{ID: "owner-1"}, nil).Once()
	resolver.Reset()
	assert.False(t, resolver.PlanActive(context.Background(), "owner-1"))
	repo.AssertExpectations(t)
}

func TestPlanResolverFailOpenVsFailClosed(t *testing.T) {
	readErr := errors.New("backend unavailable")

	repo := new(MockRepository)
	repo.On("GetProfile", mock.Anything, "owner-1").Return(nil, readErr)

	open := NewPlanResolver(repo, PolicyFailOpen, zap.NewNop())
	assert.True(t, open.PlanActive(context.Background(), "owner-1"))

	closed := NewPlanResolver(repo, PolicyFailClosed, zap.NewNop())
	assert.False(t, closed.PlanActive(context.Background(), "owner-1"))
}

// --- BadgeCache ---

func TestBadgeCacheRoundTrip(t *testing.T) {
	cache := NewBadgeCache(statestore.NewMemoryStore(), zap.NewNop())

	assert.Empty(t, cache.Get("uid-1"))
	cache.Put("uid-1", PlanBusiness)
	assert.Equal(t, PlanBusiness, cache.Get("uid-1"))

	// The badge belongs to one owner at a time.
	assert.Empty(t, cache.Get("uid-2"))

	cache.Clear()
	assert.Empty(t, cache.Get("uid-1"))
}
