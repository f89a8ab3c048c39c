// File: internal/listing/localstore_test.go
package listing

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestLocalStore(t *testing.T) *LocalStore {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "catalog.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	store, err := NewLocalStore(db)
	require.NoError(t, err)
	return store
}

func TestLocalStoreRoundTrip(t *testing.T) {
	store := newTestLocalStore(t)

	expires := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
	items := []Listing{
		mkListing("a", func(l *Listing) {
			l.IsTop = true
			l.TopExpiresAt = &expires
			l.TopDurationDays = 7
			l.Images = []ListingImage{
				{URL: "https://img.example/cover.jpg", IsPreview: true},
				{URL: "https://img.example/extra.jpg"},
			}
		}),
		mkListing("b", func(l *Listing) { l.Region = "Jihocesky"; l.Location = "" }),
	}
	require.NoError(t, store.Save(items))

	loaded, err := store.Load()
	require.NoError(t, err)
	require.Len(t, loaded, 2)

	byID := map[string]Listing{loaded[0].ID: loaded[0], loaded[1].ID: loaded[1]}
	a := byID["a"]
	assert.True(t, a.IsTop)
	require.NotNil(t, a.TopExpiresAt)
	assert.True(t, expires.Equal(*a.TopExpiresAt))
	assert.Equal(t, 7, a.TopDurationDays)
	assert.Equal(t, []ListingImage{
		{URL: "https://img.example/cover.jpg", IsPreview: true},
		{URL: "https://img.example/extra.jpg"},
	}, a.Images)
	assert.Equal(t, "https://img.example/cover.jpg", a.PreviewURL())

	// Legacy region fields collapse into Location on the way in.
	b := byID["b"]
	assert.Equal(t, "Jihocesky", b.EffectiveRegion())
}

func TestLocalStoreSaveReplacesSnapshot(t *testing.T) {
	store := newTestLocalStore(t)

	require.NoError(t, store.Save([]Listing{mkListing("a"), mkListing("b")}))
	require.NoError(t, store.Save([]Listing{mkListing("c")}))

	loaded, err := store.Load()
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, "c", loaded[0].ID)
}

func TestLocalStoreSaveEmpty(t *testing.T) {
	store := newTestLocalStore(t)
	require.NoError(t, store.Save([]Listing{mkListing("a")}))
	require.NoError(t, store.Save(nil))

	loaded, err := store.Load()
	require.NoError(t, err)
	assert.Empty(t, loaded)
}
