// File: internal/listing/localstore.go
package listing

import (
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LocalListing is the row shape of the fallback catalog table. Times are
// flattened to nullable columns so the schema works on both sqlite and
// postgres.
type LocalListing struct {
	ID              string `gorm:"primaryKey"`
	OwnerID         string `gorm:"index"`
	Title           string
	Description     string
	Category        string `gorm:"index"`
	Location        string
	Price           string
	ImagesJSON      string
	Status          string
	InactiveReason  string
	InactiveAt      *time.Time
	IsTop           bool
	TopActivatedAt  *time.Time
	TopExpiresAt    *time.Time
	TopExpiredAt    *time.Time
	TopDurationDays int
	ContactEmail    string
	ContactPhone    string
	CreatedAt       time.Time
	UpdatedAt       time.Time
	SavedAt         time.Time `gorm:"index"`
}

func (LocalListing) TableName() string {
	return "local_listings"
}

// LocalStore persists the last good catalog snapshot so degraded mode can
// still serve listings after a restart.
type LocalStore struct {
	db *gorm.DB
}

// NewLocalStore migrates the fallback table.
func NewLocalStore(db *gorm.DB) (*LocalStore, error) {
	if err := db.AutoMigrate(&LocalListing{}); err != nil {
		return nil, fmt.Errorf("migrating local listing table: %w", err)
	}
	return &LocalStore{db: db}, nil
}

// Save replaces the persisted snapshot with the given listings.
func (s *LocalStore) Save(items []Listing) error {
	now := time.Now()
	rows := make([]LocalListing, 0, len(items))
	for i := range items {
		rows = append(rows, toLocalListing(&items[i], now))
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&LocalListing{}).Error; err != nil {
			return fmt.Errorf("clearing local snapshot: %w", err)
		}
		if len(rows) == 0 {
			return nil
		}
		if err := tx.Clauses(clause.OnConflict{UpdateAll: true}).CreateInBatches(rows, 200).Error; err != nil {
			return fmt.Errorf("writing local snapshot: %w", err)
		}
		return nil
	})
}

// Load returns the persisted snapshot.
func (s *LocalStore) Load() ([]Listing, error) {
	var rows []LocalListing
	if err := s.db.Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("loading local snapshot: %w", err)
	}
	out := make([]Listing, 0, len(rows))
	for i := range rows {
		out = append(out, fromLocalListing(&rows[i]))
	}
	return out, nil
}

func toLocalListing(l *Listing, savedAt time.Time) LocalListing {
	return LocalListing{
		ID:              l.ID,
		OwnerID:         l.OwnerID,
		Title:           l.Title,
		Description:     l.Description,
		Category:        l.Category,
		Location:        l.EffectiveRegion(),
		Price:           l.Price,
		ImagesJSON:      marshalImages(l.Images),
		Status:          string(l.Status),
		InactiveReason:  l.InactiveReason,
		InactiveAt:      l.InactiveAt,
		IsTop:           l.IsTop,
		TopActivatedAt:  l.TopActivatedAt,
		TopExpiresAt:    l.TopExpiresAt,
		TopExpiredAt:    l.TopExpiredAt,
		TopDurationDays: l.TopDurationDays,
		ContactEmail:    l.ContactEmail,
		ContactPhone:    l.ContactPhone,
		CreatedAt:       l.CreatedAt,
		UpdatedAt:       l.UpdatedAt,
		SavedAt:         savedAt,
	}
}

func fromLocalListing(r *LocalListing) Listing {
	return Listing{
		ID:              r.ID,
		OwnerID:         r.OwnerID,
		Title:           r.Title,
		Description:     r.Description,
		Category:        r.Category,
		Location:        r.Location,
		Price:           r.Price,
		Images:          unmarshalImages(r.ImagesJSON),
		Status:          ListingStatus(r.Status),
		InactiveReason:  r.InactiveReason,
		InactiveAt:      r.InactiveAt,
		IsTop:           r.IsTop,
		TopActivatedAt:  r.TopActivatedAt,
		TopExpiresAt:    r.TopExpiresAt,
		TopExpiredAt:    r.TopExpiredAt,
		TopDurationDays: r.TopDurationDays,
		ContactEmail:    r.ContactEmail,
		ContactPhone:    r.ContactPhone,
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
	}
}

// Images are kept as a JSON text column so the same schema works on
// sqlite and postgres without array types.
func marshalImages(images []ListingImage) string {
	if len(images) == 0 {
		return ""
	}
	b, err := json.Marshal(images)
	if err != nil {
		return ""
	}
	return string(b)
}

func unmarshalImages(raw string) []ListingImage {
	if raw == "" {
		return nil
	}
	var images []ListingImage
	if err := json.Unmarshal([]byte(raw), &images); err != nil {
		return nil
	}
	return images
}
