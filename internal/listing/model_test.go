// File: internal/listing/model_test.go
package listing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPreviewURLPicksFlaggedImage(t *testing.T) {
	l := Listing{Images: []ListingImage{
		{URL: "https://img.example/extra.jpg"},
		{URL: "https://img.example/cover.jpg", IsPreview: true},
	}}

	assert.Equal(t, "https://img.example/cover.jpg", l.PreviewURL())
}

func TestPreviewURLFallsBackToFirstImage(t *testing.T) {
	l := Listing{Images: []ListingImage{
		{URL: "https://img.example/first.jpg"},
		{URL: "https://img.example/second.jpg"},
	}}

	assert.Equal(t, "https://img.example/first.jpg", l.PreviewURL())
}

func TestPreviewURLPlaceholderWhenNoImages(t *testing.T) {
	l := Listing{}

	assert.Equal(t, PlaceholderImageURL, l.PreviewURL())

	resp := ToListingResponse(&l)
	assert.Equal(t, PlaceholderImageURL, resp.PreviewURL)
	assert.Empty(t, resp.Images)
}

func TestToListingResponseCarriesImages(t *testing.T) {
	l := Listing{Images: []ListingImage{
		{URL: "https://img.example/cover.jpg", IsPreview: true},
		{URL: "https://img.example/extra.jpg"},
	}}

	resp := ToListingResponse(&l)

	assert.Equal(t, l.Images, resp.Images)
	assert.Equal(t, "https://img.example/cover.jpg", resp.PreviewURL)
}

func TestCoerceImagesMixedShapes(t *testing.T) {
	images := coerceImages([]interface{}{
		"https://img.example/plain.jpg",
		map[string]interface{}{"url": "https://img.example/cover.jpg", "isPreview": true},
		map[string]interface{}{"isPreview": true},
		42,
	})

	assert.Equal(t, []ListingImage{
		{URL: "https://img.example/plain.jpg"},
		{URL: "https://img.example/cover.jpg", IsPreview: true},
	}, images)
}

func TestCoerceImagesRejectsNonArray(t *testing.T) {
	assert.Nil(t, coerceImages("https://img.example/plain.jpg"))
	assert.Nil(t, coerceImages(nil))
}

func TestCoerceImageURLLegacyShapes(t *testing.T) {
	assert.Equal(t, "https://img.example/old.jpg", coerceImageURL("https://img.example/old.jpg"))
	assert.Equal(t, "https://img.example/old.jpg", coerceImageURL(map[string]interface{}{"url": "https://img.example/old.jpg"}))
	assert.Equal(t, "", coerceImageURL(nil))
}
