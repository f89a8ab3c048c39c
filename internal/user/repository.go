// File: internal/user/repository.go
package user

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"go.uber.org/zap"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const usersCollection = "users"

// Repository is the remote store of owner profiles.
type Repository interface {
	// GetProfile reads one profile. A missing document returns an empty
	// profile, not an error; owners exist before they ever buy a plan.
	GetProfile(ctx context.Context, uid string) (*Profile, error)
	// SetPlanFields merge-writes plan fields on a profile.
	SetPlanFields(ctx context.Context, uid string, fields map[string]interface{}) error
	// FindExpiredPlanProfiles returns profiles that still carry a plan
	// whose period end has passed.
	FindExpiredPlanProfiles(ctx context.Context, now time.Time) ([]Profile, error)
}

type firestoreRepository struct {
	client *firestore.Client
	logger *zap.Logger
}

// NewFirestoreRepository creates the Firestore-backed profile repository.
func NewFirestoreRepository(client *firestore.Client, logger *zap.Logger) Repository {
	return &firestoreRepository{
		client: client,
		logger: logger.Named("UserRepository"),
	}
}

func (r *firestoreRepository) GetProfile(ctx context.Context, uid string) (*Profile, error) {
	snap, err := r.client.Collection(usersCollection).Doc(uid).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return &Profile{ID: uid}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading profile %s: %w", uid, err)
	}

	var p Profile
	if err := snap.DataTo(&p); err != nil {
		return nil, fmt.Errorf("decoding profile %s: %w", uid, err)
	}
	p.ID = uid
	return &p, nil
}

func (r *firestoreRepository) SetPlanFields(ctx context.Context, uid string, fields map[string]interface{}) error {
	_, err := r.client.Collection(usersCollection).Doc(uid).Set(ctx, fields, firestore.MergeAll)
	if err != nil {
		return fmt.Errorf("updating profile %s: %w", uid, err)
	}
	return nil
}

func (r *firestoreRepository) FindExpiredPlanProfiles(ctx context.Context, now time.Time) ([]Profile, error) {
	it := r.client.Collection(usersCollection).
		Where("planPeriodEnd", "<", now).
		Documents(ctx)
	defer it.Stop()

	var out []Profile
	for {
		doc, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("querying expired plans: %w", err)
		}
		var p Profile
		if err := doc.DataTo(&p); err != nil {
			r.logger.Warn("Skipping undecodable profile document",
				zap.String("uid", doc.Ref.ID), zap.Error(err))
			continue
		}
		p.ID = doc.Ref.ID
		// The period-end index alone cannot filter on plan presence; the
		// enforcement pass only cares about profiles still marked paid.
		if p.HasKnownPlan() {
			out = append(out, p)
		}
	}
	return out, nil
}
