// File: internal/listing/service.go
package listing

import (
	"context"
	"time"

	"go.uber.org/zap"

	"inzerio_backend/internal/common"
	"inzerio_backend/internal/user"
)

// SearchResult is the API-level outcome of a catalog search.
type SearchResult struct {
	Items      []ListingResponse  `json:"items"`
	Pagination *common.Pagination `json:"pagination,omitempty"`
	// Limited marks a homepage-mode result that was truncated to the
	// requested limit.
	Limited bool `json:"limited,omitempty"`
	// Source reports where the catalog data currently comes from, so
	// clients can surface degraded-mode banners.
	Source SourceState `json:"source"`
}

// Service exposes the catalog operations on top of the mirrored store.
type Service interface {
	Search(ctx context.Context, query SearchQuery) (*SearchResult, error)
	GetByID(ctx context.Context, id string) (*ListingResponse, error)
	GetUserListings(ctx context.Context, uid string) ([]ListingResponse, error)
	UpdateStatus(ctx context.Context, uid, id string, status ListingStatus) (*ListingResponse, error)
	Delete(ctx context.Context, uid, id string) error
}

type ServiceImplementation struct {
	repo     Repository
	store    *Store
	engine   *Engine
	profiles user.Repository
	logger   *zap.Logger
}

var _ Service = (*ServiceImplementation)(nil)

func NewService(
	repo Repository,
	store *Store,
	engine *Engine,
	profiles user.Repository,
	logger *zap.Logger,
) *ServiceImplementation {
	return &ServiceImplementation{
		repo:     repo,
		store:    store,
		engine:   engine,
		profiles: profiles,
		logger:   logger.Named("ListingService"),
	}
}

// Search runs the filter, sort and pagination pipeline over the current
// catalog snapshot.
func (s *ServiceImplementation) Search(ctx context.Context, query SearchQuery) (*SearchResult, error) {
	snapshot := s.store.Snapshot()
	result := s.engine.Query(snapshot, query)
	state, _ := s.store.State()

	now := time.Now()
	items := make([]ListingResponse, 0, len(result.Items))
	for i := range result.Items {
		items = append(items, s.toDisplay(&result.Items[i], now))
	}

	out := &SearchResult{Items: items, Limited: result.Limited, Source: state}
	if !result.Limited {
		out.Pagination = common.NewPagination(int64(result.TotalFiltered), result.Page, result.PageSize)
	}
	return out, nil
}

func (s *ServiceImplementation) GetByID(ctx context.Context, id string) (*ListingResponse, error) {
	l, ok := s.store.Get(id)
	if !ok || !l.IsActive() {
		return nil, common.ErrNotFound.WithDetails("Listing not found.")
	}
	resp := s.toDisplay(&l, time.Now())
	return &resp, nil
}

// GetUserListings returns the caller's own listings, inactive ones
// included. When the catalog has no data for the owner (for example while
// the owner's plan lapsed and their listings are gated out), it falls back
// to a direct read.
func (s *ServiceImplementation) GetUserListings(ctx context.Context, uid string) ([]ListingResponse, error) {
	now := time.Now()
	var own []Listing
	for _, l := range s.store.Snapshot() {
		if l.OwnerID == uid {
			own = append(own, l)
		}
	}
	if len(own) == 0 {
		fetched, err := s.repo.FetchByOwner(ctx, uid)
		if err != nil {
			s.logger.Warn("fetching own listings directly", zap.String("uid", uid), zap.Error(err))
		} else {
			own = fetched
		}
	}
	s.engine.Sort(own, "newest")
	out := make([]ListingResponse, 0, len(own))
	for i := range own {
		out = append(out, s.toDisplay(&own[i], now))
	}
	return out, nil
}

// UpdateStatus toggles a listing between active and inactive. Deactivation
// is always allowed; reactivation requires a live plan, since inactive
// listings are commonly the result of plan expiry.
func (s *ServiceImplementation) UpdateStatus(ctx context.Context, uid, id string, status ListingStatus) (*ListingResponse, error) {
	l, err := s.ownedListing(ctx, uid, id)
	if err != nil {
		return nil, err
	}

	if status == StatusActive {
		profile, err := s.profiles.GetProfile(ctx, uid)
		if err != nil {
			s.logger.Error("reading profile for reactivation", zap.String("uid", uid), zap.Error(err))
			return nil, common.ErrServiceUnavailable
		}
		if !profile.PlanActive(time.Now()) {
			return nil, common.ErrPaymentRequired.WithDetails("An active plan is required to reactivate a listing.")
		}
	}

	now := ts(time.Now())
	fields := map[string]interface{}{
		"status":    string(status),
		"updatedAt": now,
	}
	if status == StatusActive {
		// Clear the expiry markers so a later plan lapse is attributed
		// fresh.
		fields["inactiveReason"] = ""
		fields["inactiveAt"] = nil
	} else {
		fields["inactiveAt"] = now
	}
	if err := s.repo.SetFields(ctx, uid, id, fields); err != nil {
		s.logger.Error("updating listing status", zap.String("listingID", id), zap.Error(err))
		return nil, common.ErrServiceUnavailable
	}

	s.store.Mutate(id, func(m *Listing) {
		m.Status = status
		m.UpdatedAt = now
		if status == StatusActive {
			m.InactiveReason = ""
			m.InactiveAt = nil
		} else {
			m.InactiveAt = &now
		}
	})

	l.Status = status
	resp := s.toDisplay(&l, time.Now())
	return &resp, nil
}

func (s *ServiceImplementation) Delete(ctx context.Context, uid, id string) error {
	if _, err := s.ownedListing(ctx, uid, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, uid, id); err != nil {
		s.logger.Error("deleting listing", zap.String("listingID", id), zap.Error(err))
		return common.ErrServiceUnavailable
	}
	s.store.Mutate(id, func(m *Listing) {
		m.Status = StatusInactive
	})
	return nil
}

// toDisplay maps a listing for output, normalizing a lapsed promotion to
// non-top. The expiry checker does the durable write; this only keeps the
// display honest in between sweeps.
func (s *ServiceImplementation) toDisplay(l *Listing, now time.Time) ListingResponse {
	resp := ToListingResponse(l)
	if l.TopExpired(now) {
		resp.IsTop = false
		resp.TopExpiresAt = nil
	}
	return resp
}

// ownedListing resolves a listing from the catalog, falling back to a
// direct read, and checks ownership.
func (s *ServiceImplementation) ownedListing(ctx context.Context, uid, id string) (Listing, error) {
	l, ok := s.store.Get(id)
	if !ok {
		owned, err := s.repo.FetchByOwner(ctx, uid)
		if err != nil {
			s.logger.Warn("resolving listing directly", zap.String("listingID", id), zap.Error(err))
			return Listing{}, common.ErrNotFound.WithDetails("Listing not found.")
		}
		for _, candidate := range owned {
			if candidate.ID == id {
				return candidate, nil
			}
		}
		return Listing{}, common.ErrNotFound.WithDetails("Listing not found.")
	}
	if l.OwnerID != uid {
		return Listing{}, common.ErrForbidden
	}
	return l, nil
}
