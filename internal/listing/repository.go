// File: internal/listing/repository.go
package listing

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"go.uber.org/zap"
	"google.golang.org/api/iterator"
)

// Firestore layout: each owner's listings live in users/{uid}/inzeraty.
const (
	usersCollection    = "users"
	listingsCollection = "inzeraty"

	// Firestore caps a batch at 500 writes; staying under it leaves room
	// for the server-side bookkeeping writes.
	batchChunkSize = 450
)

// Repository is the remote document store for listings.
type Repository interface {
	// FetchAll reads every listing across all owners in one query.
	FetchAll(ctx context.Context) ([]Listing, error)
	// FetchByOwner reads one owner's listings.
	FetchByOwner(ctx context.Context, ownerID string) ([]Listing, error)
	// FetchOwnerIDs lists the owner document IDs, for the per-owner
	// fallback enumeration.
	FetchOwnerIDs(ctx context.Context) ([]string, error)
	// Listen streams full snapshots of all listings until ctx is
	// cancelled. Each update invokes handler with the complete set.
	Listen(ctx context.Context, handler func([]Listing)) error
	// SetFields merge-writes the given fields on a listing document.
	SetFields(ctx context.Context, ownerID, listingID string, fields map[string]interface{}) error
	// Delete removes a listing document.
	Delete(ctx context.Context, ownerID, listingID string) error
	// BatchSetFields merge-writes the same fields on many documents of
	// one owner, chunked to stay under the batch write limit.
	BatchSetFields(ctx context.Context, ownerID string, listingIDs []string, fields map[string]interface{}) error
	// BatchDelete removes many documents of one owner.
	BatchDelete(ctx context.Context, ownerID string, listingIDs []string) error
}

type firestoreRepository struct {
	client *firestore.Client
	logger *zap.Logger
}

// NewFirestoreRepository creates the Firestore-backed listing repository.
func NewFirestoreRepository(client *firestore.Client, logger *zap.Logger) Repository {
	return &firestoreRepository{
		client: client,
		logger: logger.Named("ListingRepository"),
	}
}

func (r *firestoreRepository) docRef(ownerID, listingID string) *firestore.DocumentRef {
	return r.client.Collection(usersCollection).Doc(ownerID).Collection(listingsCollection).Doc(listingID)
}

// decode reads a snapshot into a Listing and backfills the owner ID from
// the document path. Old documents often miss the ownerId field.
func decode(doc *firestore.DocumentSnapshot) (Listing, error) {
	var l Listing
	if err := doc.DataTo(&l); err != nil {
		return Listing{}, fmt.Errorf("decoding listing %s: %w", doc.Ref.ID, err)
	}
	l.ID = doc.Ref.ID
	if l.OwnerID == "" {
		if owner := doc.Ref.Parent.Parent; owner != nil {
			l.OwnerID = owner.ID
		}
	}
	data := doc.Data()
	l.Images = coerceImages(data["images"])
	if len(l.Images) == 0 {
		// Oldest documents carry a single image under "image".
		if url := coerceImageURL(data["image"]); url != "" {
			l.Images = []ListingImage{{URL: url, IsPreview: true}}
		}
	}
	return l, nil
}

// coerceImages reads an image array that mixes shapes: plain URL strings
// and {url, isPreview} maps are both in circulation. Entries fitting
// neither shape are dropped, never surfaced as an error.
func coerceImages(v interface{}) []ListingImage {
	raw, ok := v.([]interface{})
	if !ok {
		return nil
	}
	var out []ListingImage
	for _, item := range raw {
		switch img := item.(type) {
		case string:
			if img != "" {
				out = append(out, ListingImage{URL: img})
			}
		case map[string]interface{}:
			url, _ := img["url"].(string)
			if url == "" {
				continue
			}
			preview, _ := img["isPreview"].(bool)
			out = append(out, ListingImage{URL: url, IsPreview: preview})
		}
	}
	return out
}

func coerceImageURL(v interface{}) string {
	switch img := v.(type) {
	case string:
		return img
	case map[string]interface{}:
		url, _ := img["url"].(string)
		return url
	}
	return ""
}

func (r *firestoreRepository) collectListings(it *firestore.DocumentIterator) ([]Listing, error) {
	var out []Listing
	for {
		doc, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}
		l, err := decode(doc)
		if err != nil {
			// One malformed document must not hide the rest of the catalog.
			r.logger.Warn("Skipping undecodable listing document",
				zap.String("docPath", doc.Ref.Path), zap.Error(err))
			continue
		}
		out = append(out, l)
	}
	return out, nil
}

func (r *firestoreRepository) FetchAll(ctx context.Context) ([]Listing, error) {
	it := r.client.CollectionGroup(listingsCollection).Documents(ctx)
	defer it.Stop()
	listings, err := r.collectListings(it)
	if err != nil {
		return nil, fmt.Errorf("fetching all listings: %w", err)
	}
	return listings, nil
}

func (r *firestoreRepository) FetchByOwner(ctx context.Context, ownerID string) ([]Listing, error) {
	it := r.client.Collection(usersCollection).Doc(ownerID).Collection(listingsCollection).Documents(ctx)
	defer it.Stop()
	listings, err := r.collectListings(it)
	if err != nil {
		return nil, fmt.Errorf("fetching listings of owner %s: %w", ownerID, err)
	}
	return listings, nil
}

func (r *firestoreRepository) FetchOwnerIDs(ctx context.Context) ([]string, error) {
	it := r.client.Collection(usersCollection).DocumentRefs(ctx)
	var ids []string
	for {
		ref, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("listing owner documents: %w", err)
		}
		ids = append(ids, ref.ID)
	}
	return ids, nil
}

func (r *firestoreRepository) Listen(ctx context.Context, handler func([]Listing)) error {
	snapIt := r.client.CollectionGroup(listingsCollection).Snapshots(ctx)
	defer snapIt.Stop()

	for {
		snap, err := snapIt.Next()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("listing snapshot stream: %w", err)
		}
		listings, err := r.collectListings(snap.Documents)
		if err != nil {
			return fmt.Errorf("reading listing snapshot: %w", err)
		}
		handler(listings)
	}
}

func (r *firestoreRepository) SetFields(ctx context.Context, ownerID, listingID string, fields map[string]interface{}) error {
	if _, err := r.docRef(ownerID, listingID).Set(ctx, fields, firestore.MergeAll); err != nil {
		return fmt.Errorf("updating listing %s: %w", listingID, err)
	}
	return nil
}

func (r *firestoreRepository) Delete(ctx context.Context, ownerID, listingID string) error {
	if _, err := r.docRef(ownerID, listingID).Delete(ctx); err != nil {
		return fmt.Errorf("deleting listing %s: %w", listingID, err)
	}
	return nil
}

func (r *firestoreRepository) BatchSetFields(ctx context.Context, ownerID string, listingIDs []string, fields map[string]interface{}) error {
	return r.batched(ctx, listingIDs, func(bw *firestore.BulkWriter, id string) error {
		_, err := bw.Set(r.docRef(ownerID, id), fields, firestore.MergeAll)
		return err
	})
}

func (r *firestoreRepository) BatchDelete(ctx context.Context, ownerID string, listingIDs []string) error {
	return r.batched(ctx, listingIDs, func(bw *firestore.BulkWriter, id string) error {
		_, err := bw.Delete(r.docRef(ownerID, id))
		return err
	})
}

func (r *firestoreRepository) batched(ctx context.Context, ids []string, op func(*firestore.BulkWriter, string) error) error {
	for start := 0; start < len(ids); start += batchChunkSize {
		end := start + batchChunkSize
		if end > len(ids) {
			end = len(ids)
		}
		bw := r.client.BulkWriter(ctx)
		for _, id := range ids[start:end] {
			if err := op(bw, id); err != nil {
				bw.End()
				return fmt.Errorf("queueing batch write for %s: %w", id, err)
			}
		}
		bw.End()
		r.logger.Debug("Committed listing batch chunk",
			zap.Int("from", start), zap.Int("to", end), zap.Int("total", len(ids)))
	}
	return nil
}

// Timestamp helper for merge writes; Firestore stores time.Time natively
// but a shared helper keeps the call sites uniform.
func ts(t time.Time) time.Time { return t.UTC() }
