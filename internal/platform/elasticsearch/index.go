// File: internal/platform/elasticsearch/index.go
package elasticsearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/elastic/go-elasticsearch/v8/esutil"
	"go.uber.org/zap"

	"inzerio_backend/internal/listing"
	"inzerio_backend/internal/taxonomy"
)

const ListingsIndexName = "listings"

func listingsMapping() (string, error) {
	mapping := map[string]interface{}{
		"mappings": map[string]interface{}{
			"properties": map[string]interface{}{
				"title":          map[string]interface{}{"type": "text"},
				"title_folded":   map[string]interface{}{"type": "text"},
				"description":    map[string]interface{}{"type": "text"},
				"category":       map[string]interface{}{"type": "keyword"},
				"region":         map[string]interface{}{"type": "keyword"},
				"owner_id":       map[string]interface{}{"type": "keyword"},
				"status":         map[string]interface{}{"type": "keyword"},
				"is_top":         map[string]interface{}{"type": "boolean"},
				"top_expires_at": map[string]interface{}{"type": "date"},
				"price":          map[string]interface{}{"type": "text"},
				"created_at":     map[string]interface{}{"type": "date"},
				"updated_at":     map[string]interface{}{"type": "date"},
			},
		},
	}
	data, err := json.Marshal(mapping)
	if err != nil {
		return "", fmt.Errorf("marshalling listings mapping: %w", err)
	}
	return string(data), nil
}

// EnsureListingsIndex creates the listings index with its mapping when it
// does not already exist.
func EnsureListingsIndex(client *ESClientWrapper, logger *zap.Logger) error {
	if client == nil {
		return nil
	}
	ctx := context.Background()
	log := logger.Named("elasticsearch")

	existsReq := esapi.IndicesExistsRequest{Index: []string{ListingsIndexName}}
	res, err := existsReq.Do(ctx, client.Client)
	if err != nil {
		return fmt.Errorf("checking listings index: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusOK {
		log.Debug("listings index already exists")
		return nil
	}
	if res.StatusCode != http.StatusNotFound {
		return fmt.Errorf("checking listings index: status %s", res.Status())
	}

	mappingJSON, err := listingsMapping()
	if err != nil {
		return err
	}
	createReq := esapi.IndicesCreateRequest{
		Index: ListingsIndexName,
		Body:  strings.NewReader(mappingJSON),
	}
	createRes, err := createReq.Do(ctx, client.Client)
	if err != nil {
		return fmt.Errorf("creating listings index: %w", err)
	}
	defer createRes.Body.Close()
	if createRes.IsError() {
		return fmt.Errorf("creating listings index: status %s", createRes.Status())
	}
	log.Info("listings index created", zap.String("index", ListingsIndexName))
	return nil
}

// listingDocument is the indexed shape of a listing.
type listingDocument struct {
	Title        string     `json:"title"`
	TitleFolded  string     `json:"title_folded"`
	Description  string     `json:"description"`
	Category     string     `json:"category"`
	Region       string     `json:"region"`
	OwnerID      string     `json:"owner_id"`
	Status       string     `json:"status"`
	IsTop        bool       `json:"is_top"`
	TopExpiresAt *time.Time `json:"top_expires_at,omitempty"`
	Price        string     `json:"price"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// ListingIndexer bulk-writes catalog snapshots into the listings index.
type ListingIndexer struct {
	client *ESClientWrapper
	logger *zap.Logger
}

var _ listing.Indexer = (*ListingIndexer)(nil)

func NewListingIndexer(client *ESClientWrapper, logger *zap.Logger) *ListingIndexer {
	return &ListingIndexer{client: client, logger: logger.Named("ListingIndexer")}
}

// IndexListings upserts the whole snapshot. Stale documents are left in
// place; the folded title keeps diacritics-insensitive search working on
// the index side too.
func (i *ListingIndexer) IndexListings(ctx context.Context, items []listing.Listing) error {
	if i.client == nil {
		return nil
	}
	bi, err := esutil.NewBulkIndexer(esutil.BulkIndexerConfig{
		Client: i.client.Client,
		Index:  ListingsIndexName,
	})
	if err != nil {
		return fmt.Errorf("creating bulk indexer: %w", err)
	}

	for _, l := range items {
		doc := listingDocument{
			Title:        l.Title,
			TitleFolded:  taxonomy.Normalize(l.Title),
			Description:  l.Description,
			Category:     l.Category,
			Region:       l.RegionCode(),
			OwnerID:      l.OwnerID,
			Status:       string(l.EffectiveStatus()),
			IsTop:        l.IsTop,
			TopExpiresAt: l.TopExpiresAt,
			Price:        l.Price,
			CreatedAt:    l.CreatedAt,
			UpdatedAt:    l.UpdatedAt,
		}
		data, err := json.Marshal(doc)
		if err != nil {
			i.logger.Warn("encoding listing document", zap.String("listingID", l.ID), zap.Error(err))
			continue
		}
		err = bi.Add(ctx, esutil.BulkIndexerItem{
			Action:     "index",
			DocumentID: l.ID,
			Body:       bytes.NewReader(data),
			OnFailure: func(ctx context.Context, item esutil.BulkIndexerItem, res esutil.BulkIndexerResponseItem, err error) {
				i.logger.Warn("indexing listing failed",
					zap.String("listingID", item.DocumentID), zap.Error(err))
			},
		})
		if err != nil {
			return fmt.Errorf("queueing listing %s: %w", l.ID, err)
		}
	}

	if err := bi.Close(ctx); err != nil {
		return fmt.Errorf("flushing bulk indexer: %w", err)
	}
	stats := bi.Stats()
	i.logger.Debug("snapshot indexed",
		zap.Uint64("indexed", stats.NumIndexed), zap.Uint64("failed", stats.NumFailed))
	return nil
}
