// File: internal/listing/service_test.go
package listing

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"inzerio_backend/internal/common"
	"inzerio_backend/internal/user"
)

// --- Mocks ---

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) FetchAll(ctx context.Context) ([]Listing, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Listing), args.Error(1)
}

func (m *MockRepository) FetchByOwner(ctx context.Context, ownerID string) ([]Listing, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Listing), args.Error(1)
}

func (m *MockRepository) FetchOwnerIDs(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockRepository) Listen(ctx context.Context, handler func([]Listing)) error {
	args := m.Called(ctx, handler)
	return args.Error(0)
}

func (m *MockRepository) SetFields(ctx context.Context, ownerID, listingID string, fields map[string]interface{}) error {
	args := m.Called(ctx, ownerID, listingID, fields)
	return args.Error(0)
}

func (m *MockRepository) Delete(ctx context.Context, ownerID, listingID string) error {
	args := m.Called(ctx, ownerID, listingID)
	return args.Error(0)
}

func (m *MockRepository) BatchSetFields(ctx context.Context, ownerID string, listingIDs []string, fields map[string]interface{}) error {
	args := m.Called(ctx, ownerID, listingIDs, fields)
	return args.Error(0)
}

func (m *MockRepository) BatchDelete(ctx context.Context, ownerID string, listingIDs []string) error {
	args := m.Called(ctx, ownerID, listingIDs)
	return args.Error(0)
}

type MockProfileRepository struct {
	mock.Mock
}

func (m *MockProfileRepository) GetProfile(ctx context.Context, uid string) (*user.Profile, error) {
	args := m.Called(ctx, uid)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.Profile), args.Error(1)
}

func (m *MockProfileRepository) SetPlanFields(ctx context.Context, uid string, fields map[string]interface{}) error {
	args := m.Called(ctx, uid, fields)
	return args.Error(0)
}

func (m *MockProfileRepository) FindExpiredPlanProfiles(ctx context.Context, now time.Time) ([]user.Profile, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]user.Profile), args.Error(1)
}

// --- Test Setup ---

func setupListingServiceTestSuite(t *testing.T) (*ServiceImplementation, *MockRepository, *MockProfileRepository, *Store) {
	mockRepo := new(MockRepository)
	mockProfiles := new(MockProfileRepository)
	store := NewStore()
	svc := NewService(mockRepo, store, NewEngine(DefaultPageSize), mockProfiles, zap.NewNop())
	return svc, mockRepo, mockProfiles, store
}

func activePlanProfile(uid string) *user.Profile {
	end := time.Now().AddDate(0, 0, 15)
	return &user.Profile{ID: uid, Plan: user.PlanHobby, PlanPeriodEnd: &end}
}

func ownedListing(id, owner string) Listing {
	l := mkListing(id)
	l.OwnerID = owner
	return l
}

// --- Search ---

func TestServiceSearchReportsSource(t *testing.T) {
	svc, _, _, store := setupListingServiceTestSuite(t)
	store.Replace([]Listing{mkListing("a"), mkListing("b")}, SourceLive)

	result, err := svc.Search(context.Background(), SearchQuery{})

	assert.NoError(t, err)
	assert.Equal(t, SourceLive, result.Source)
	assert.Len(t, result.Items, 2)
	assert.NotNil(t, result.Pagination)
	assert.Equal(t, int64(2), result.Pagination.TotalItems)
}

func TestServiceSearchNormalizesLapsedPromotion(t *testing.T) {
	svc, _, _, store := setupListingServiceTestSuite(t)
	l := mkListing("a")
	past := time.Now().Add(-time.Hour)
	l.IsTop = true
	l.TopExpiresAt = &past
	store.Replace([]Listing{l}, SourceLive)

	result, err := svc.Search(context.Background(), SearchQuery{})

	assert.NoError(t, err)
	assert.Len(t, result.Items, 1)
	assert.False(t, result.Items[0].IsTop)
	assert.Nil(t, result.Items[0].TopExpiresAt)
}

func TestServiceSearchLimitMode(t *testing.T) {
	svc, _, _, store := setupListingServiceTestSuite(t)
	store.Replace([]Listing{mkListing("a"), mkListing("b"), mkListing("c")}, SourceLive)

	result, err := svc.Search(context.Background(), SearchQuery{Limit: 2})

	assert.NoError(t, err)
	assert.True(t, result.Limited)
	assert.Nil(t, result.Pagination)
	assert.Len(t, result.Items, 2)
}

// --- Detail ---

func TestServiceGetByID(t *testing.T) {
	svc, _, _, store := setupListingServiceTestSuite(t)
	store.Replace([]Listing{mkListing("a")}, SourceLive)

	resp, err := svc.GetByID(context.Background(), "a")

	assert.NoError(t, err)
	assert.Equal(t, "a", resp.ID)
}

func TestServiceGetByIDHidesInactive(t *testing.T) {
	svc, _, _, store := setupListingServiceTestSuite(t)
	l := mkListing("a")
	l.Status = StatusInactive
	store.Replace([]Listing{l}, SourceLive)

	_, err := svc.GetByID(context.Background(), "a")

	apiErr, ok := common.IsAPIError(err)
	assert.True(t, ok)
	assert.Equal(t, "NOT_FOUND", apiErr.Code)
}

// --- Own listings ---

func TestServiceGetUserListingsFallsBackToDirectRead(t *testing.T) {
	svc, mockRepo, _, store := setupListingServiceTestSuite(t)
	store.Replace([]Listing{ownedListing("other", "someone-else")}, SourceLive)
	mockRepo.On("FetchByOwner", mock.Anything, "user-1").
		Return([]Listing{ownedListing("mine", "user-1")}, nil)

	items, err := svc.GetUserListings(context.Background(), "user-1")

	assert.NoError(t, err)
	assert.Len(t, items, 1)
	assert.Equal(t, "mine", items[0].ID)
	mockRepo.AssertExpectations(t)
}

// --- Status updates ---

func TestServiceUpdateStatusDeactivate(t *testing.T) {
	svc, mockRepo, mockProfiles, store := setupListingServiceTestSuite(t)
	store.Replace([]Listing{ownedListing("a", "user-1")}, SourceLive)
	mockRepo.On("SetFields", mock.Anything, "user-1", "a", mock.MatchedBy(func(fields map[string]interface{}) bool {
		return fields["status"] == "inactive" && fields["inactiveAt"] != nil
	})).Return(nil)

	resp, err := svc.UpdateStatus(context.Background(), "user-1", "a", StatusInactive)

	assert.NoError(t, err)
	assert.Equal(t, "inactive", resp.Status)
	// Deactivation never consults the plan.
	mockProfiles.AssertNotCalled(t, "GetProfile", mock.Anything, mock.Anything)

	cached, _ := store.Get("a")
	assert.Equal(t, StatusInactive, cached.Status)
}

func TestServiceUpdateStatusReactivateRequiresPlan(t *testing.T) {
	svc, mockRepo, mockProfiles, store := setupListingServiceTestSuite(t)
	l := ownedListing("a", "user-1")
	l.Status = StatusInactive
	store.Replace([]Listing{l}, SourceLive)
	mockProfiles.On("GetProfile", mock.Anything, "user-1").Return(&user.Profile{ID: "user-1"}, nil)

	_, err := svc.UpdateStatus(context.Background(), "user-1", "a", StatusActive)

	apiErr, ok := common.IsAPIError(err)
	assert.True(t, ok)
	assert.Equal(t, "PAYMENT_REQUIRED", apiErr.Code)
	mockRepo.AssertNotCalled(t, "SetFields", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestServiceUpdateStatusReactivateClearsMarkers(t *testing.T) {
	svc, mockRepo, mockProfiles, store := setupListingServiceTestSuite(t)
	l := ownedListing("a", "user-1")
	l.Status = StatusInactive
	l.InactiveReason = "plan_expired"
	inactiveAt := time.Now().Add(-48 * time.Hour)
	l.InactiveAt = &inactiveAt
	store.Replace([]Listing{l}, SourceLive)
	mockProfiles.On("GetProfile", mock.Anything, "user-1").Return(activePlanProfile("user-1"), nil)
	mockRepo.On("SetFields", mock.Anything, "user-1", "a", mock.MatchedBy(func(fields map[string]interface{}) bool {
		return fields["status"] == "active" &&
			fields["inactiveReason"] == "" &&
			fields["inactiveAt"] == nil
	})).Return(nil)

	resp, err := svc.UpdateStatus(context.Background(), "user-1", "a", StatusActive)

	assert.NoError(t, err)
	assert.Equal(t, "active", resp.Status)

	cached, _ := store.Get("a")
	assert.Equal(t, StatusActive, cached.Status)
	assert.Empty(t, cached.InactiveReason)
	assert.Nil(t, cached.InactiveAt)
}

func TestServiceUpdateStatusForeignListing(t *testing.T) {
	svc, mockRepo, _, store := setupListingServiceTestSuite(t)
	store.Replace([]Listing{ownedListing("a", "someone-else")}, SourceLive)

	_, err := svc.UpdateStatus(context.Background(), "user-1", "a", StatusInactive)

	apiErr, ok := common.IsAPIError(err)
	assert.True(t, ok)
	assert.Equal(t, "FORBIDDEN", apiErr.Code)
	mockRepo.AssertNotCalled(t, "SetFields", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

// --- Delete ---

func TestServiceDelete(t *testing.T) {
	svc, mockRepo, _, store := setupListingServiceTestSuite(t)
	store.Replace([]Listing{ownedListing("a", "user-1")}, SourceLive)
	mockRepo.On("Delete", mock.Anything, "user-1", "a").Return(nil)

	err := svc.Delete(context.Background(), "user-1", "a")

	assert.NoError(t, err)
	mockRepo.AssertExpectations(t)
}
