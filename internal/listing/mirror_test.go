// File: internal/listing/mirror_test.go
package listing

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"inzerio_backend/internal/user"
)

func setupMirrorTest(t *testing.T) (*Mirror, *MockRepository, *MockProfileRepository, *Store) {
	t.Helper()
	mockRepo := new(MockRepository)
	mockProfiles := new(MockProfileRepository)
	store := NewStore()
	resolver := user.NewPlanResolver(mockProfiles, user.PolicyFailOpen, zap.NewNop())
	m := NewMirror(mockRepo, store, nil, resolver, nil, 0, zap.NewNop())
	return m, mockRepo, mockProfiles, store
}

func TestMirrorPollPrefersOneShotRead(t *testing.T) {
	m, mockRepo, mockProfiles, store := setupMirrorTest(t)
	items := []Listing{mkListing("ad-1"), mkListing("ad-2")}
	mockRepo.On("FetchAll", mock.Anything).Return(items, nil)
	mockProfiles.On("GetProfile", mock.Anything, "owner-1").
		Return(activePlanProfile("owner-1"), nil)

	m.pollOnce(context.Background())

	assert.Equal(t, 2, store.Len())
	state, _ := store.State()
	assert.Equal(t, SourcePolling, state)
	mockRepo.AssertNotCalled(t, "FetchOwnerIDs", mock.Anything)
}

func TestMirrorPollFallsBackToOwnerWalk(t *testing.T) {
	m, mockRepo, mockProfiles, store := setupMirrorTest(t)
	mockRepo.On("FetchAll", mock.Anything).Return(nil, assert.AnError)
	mockRepo.On("FetchOwnerIDs", mock.Anything).Return([]string{"owner-1"}, nil)
	mockRepo.On("FetchByOwner", mock.Anything, "owner-1").
		Return([]Listing{mkListing("ad-1")}, nil)
	mockProfiles.On("GetProfile", mock.Anything, "owner-1").
		Return(activePlanProfile("owner-1"), nil)

	m.pollOnce(context.Background())

	assert.Equal(t, 1, store.Len())
	state, _ := store.State()
	assert.Equal(t, SourcePolling, state)
}

func TestMirrorPollKeepsStoreOnTotalFailure(t *testing.T) {
	m, mockRepo, _, store := setupMirrorTest(t)
	store.Replace([]Listing{mkListing("ad-1")}, SourceLocal)
	mockRepo.On("FetchAll", mock.Anything).Return(nil, assert.AnError)
	mockRepo.On("FetchOwnerIDs", mock.Anything).Return(nil, assert.AnError)

	m.pollOnce(context.Background())

	assert.Equal(t, 1, store.Len())
	state, _ := store.State()
	assert.Equal(t, SourceLocal, state)
}
