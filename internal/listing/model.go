// File: internal/listing/model.go
package listing

import (
	"time"

	"inzerio_backend/internal/taxonomy"
)

// ListingStatus is the lifecycle status of a listing document.
type ListingStatus string

const (
	StatusActive   ListingStatus = "active"
	StatusInactive ListingStatus = "inactive"
)

// Inactive reasons. Only enforcement writes a reason; a plain owner
// deactivation leaves it empty.
const (
	InactiveReasonPlanExpired = "plan_expired"
)

// PlaceholderImageURL is served as the thumbnail of listings without a
// usable image. A missing image never excludes a record.
const PlaceholderImageURL = "/fotky/vychozi-inzerat.png"

// ListingImage is one stored image reference. IsPreview marks the card
// thumbnail; uploads write the preview entry first, but older documents
// do not guarantee the order.
type ListingImage struct {
	URL       string `json:"url" firestore:"url"`
	IsPreview bool   `json:"is_preview" firestore:"isPreview"`
}

// Listing is a catalog listing document. Firestore tags follow the wire
// field names of the production documents; several region fields exist
// because older documents stored the value under different keys.
type Listing struct {
	ID          string `json:"id" firestore:"-"`
	OwnerID     string `json:"owner_id" firestore:"ownerId"`
	Title       string `json:"title" firestore:"title"`
	Description string `json:"description" firestore:"description"`
	Category    string `json:"category" firestore:"category"`

	// Region of service. Location is the current field; Region and
	// ServiceRegion are legacy spellings still present on old documents.
	Location      string `json:"location" firestore:"location"`
	Region        string `json:"-" firestore:"region"`
	ServiceRegion string `json:"-" firestore:"serviceRegion"`

	// Price is the pre-formatted display text ("750 Kč/hod", "Dohodou").
	Price string `json:"price" firestore:"price"`

	// Images in document order; the preview flag picks the thumbnail.
	// Decoded by hand because old documents mix shapes (see coerceImages).
	Images []ListingImage `json:"images,omitempty" firestore:"-"`

	Status         ListingStatus `json:"status" firestore:"status"`
	InactiveReason string        `json:"inactive_reason,omitempty" firestore:"inactiveReason"`
	InactiveAt     *time.Time    `json:"inactive_at,omitempty" firestore:"inactiveAt"`

	IsTop           bool       `json:"is_top" firestore:"isTop"`
	TopActivatedAt  *time.Time `json:"top_activated_at,omitempty" firestore:"topActivatedAt"`
	TopExpiresAt    *time.Time `json:"top_expires_at,omitempty" firestore:"topExpiresAt"`
	TopExpiredAt    *time.Time `json:"top_expired_at,omitempty" firestore:"topExpiredAt"`
	TopDurationDays int        `json:"top_duration_days,omitempty" firestore:"topDurationDays"`

	ContactEmail string `json:"contact_email,omitempty" firestore:"contactEmail"`
	ContactPhone string `json:"contact_phone,omitempty" firestore:"contactPhone"`

	CreatedAt time.Time `json:"created_at" firestore:"createdAt"`
	UpdatedAt time.Time `json:"updated_at" firestore:"updatedAt"`
}

// EffectiveStatus treats a missing status as active. A large share of the
// oldest documents predate the status field entirely.
func (l *Listing) EffectiveStatus() ListingStatus {
	if l.Status == "" {
		return StatusActive
	}
	return l.Status
}

// IsActive reports whether the listing is publicly visible by status.
func (l *Listing) IsActive() bool {
	return l.EffectiveStatus() == StatusActive
}

// EffectiveRegion returns the stored region value regardless of which of
// the historical field names carries it.
func (l *Listing) EffectiveRegion() string {
	if l.Location != "" {
		return l.Location
	}
	if l.Region != "" {
		return l.Region
	}
	return l.ServiceRegion
}

// RegionCode returns the canonical region code of the listing, or "" when
// the stored value is free-form.
func (l *Listing) RegionCode() string {
	return taxonomy.RegionCode(l.EffectiveRegion())
}

// PreviewURL returns the card thumbnail: the first image flagged as
// preview, else the first image, else the placeholder.
func (l *Listing) PreviewURL() string {
	for i := range l.Images {
		if l.Images[i].IsPreview && l.Images[i].URL != "" {
			return l.Images[i].URL
		}
	}
	if len(l.Images) > 0 && l.Images[0].URL != "" {
		return l.Images[0].URL
	}
	return PlaceholderImageURL
}

// TopExpired reports whether the listing is flagged TOP but its paid
// window has already passed at the given instant.
func (l *Listing) TopExpired(now time.Time) bool {
	return l.IsTop && l.TopExpiresAt != nil && l.TopExpiresAt.Before(now)
}

// ListingResponse is the public API shape of a listing.
type ListingResponse struct {
	ID           string         `json:"id"`
	OwnerID      string         `json:"owner_id"`
	Title        string         `json:"title"`
	Description  string         `json:"description"`
	Category     string         `json:"category"`
	CategoryName string         `json:"category_name"`
	Region       string         `json:"region"`
	RegionName   string         `json:"region_name"`
	Price        string         `json:"price"`
	Images       []ListingImage `json:"images,omitempty"`
	PreviewURL   string         `json:"preview_url"`
	Status       string         `json:"status"`
	IsTop        bool           `json:"is_top"`
	TopExpiresAt *time.Time     `json:"top_expires_at,omitempty"`
	ContactEmail string         `json:"contact_email,omitempty"`
	ContactPhone string         `json:"contact_phone,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
}

// ToListingResponse maps a listing document to its API representation.
func ToListingResponse(l *Listing) ListingResponse {
	region := l.EffectiveRegion()
	return ListingResponse{
		ID:           l.ID,
		OwnerID:      l.OwnerID,
		Title:        l.Title,
		Description:  l.Description,
		Category:     l.Category,
		CategoryName: taxonomy.CategoryName(l.Category),
		Region:       region,
		RegionName:   taxonomy.RegionName(region),
		Price:        l.Price,
		Images:       l.Images,
		PreviewURL:   l.PreviewURL(),
		Status:       string(l.EffectiveStatus()),
		IsTop:        l.IsTop,
		TopExpiresAt: l.TopExpiresAt,
		ContactEmail: l.ContactEmail,
		ContactPhone: l.ContactPhone,
		CreatedAt:    l.CreatedAt,
	}
}

// SearchQuery carries the catalog search parameters from the API layer.
type SearchQuery struct {
	Search   string `form:"q"`
	Category string `form:"category"`
	Region   string `form:"region"`
	Sort     string `form:"sort" binding:"omitempty,oneof=newest oldest title"`
	Page     int    `form:"page"`
	// Limit switches to homepage mode: a TOP-first truncated list with no
	// pagination metadata.
	Limit int `form:"limit" binding:"omitempty,min=1,max=100"`
}

// UpdateStatusRequest toggles a listing between active and inactive.
type UpdateStatusRequest struct {
	Status ListingStatus `json:"status" binding:"required,oneof=active inactive"`
}
