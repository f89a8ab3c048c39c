// File: internal/taxonomy/taxonomy_test.go
package taxonomy

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	assert.Equal(t, "stredocesky kraj", Normalize("Středočeský kraj"))
	assert.Equal(t, "calounene kreslo", Normalize("Čalouněné KŘESLO"))
	assert.Equal(t, "zilinsky", Normalize("  Žilinský "))
	assert.Equal(t, "", Normalize(""))
}

func TestRegionCode(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Stredocesky", "Stredocesky"},
		{"Středočeský kraj", "Stredocesky"},
		{"stredocesky kraj", "Stredocesky"},
		{"Hlavní město Praha", "Praha"},
		{"praha", "Praha"},
		{"Celá Česká republika", "CelaCeskaRepublika"},
		{"CelaCeskaRepublika", "CelaCeskaRepublika"},
		{"Kdekoliv", "Kdekoliv"},
		{"Atlantis", ""},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, RegionCode(tt.input), "input %q", tt.input)
	}
}

func TestRegionName(t *testing.T) {
	assert.Equal(t, "Středočeský kraj", RegionName("Stredocesky"))
	assert.Equal(t, "Hlavní město Praha", RegionName("praha"))
	// Unknown values pass through for old free-form documents.
	assert.Equal(t, "Dolní Lhota", RegionName("Dolní Lhota"))
}

func TestRegionsMatch(t *testing.T) {
	// Empty filter matches everything.
	assert.True(t, RegionsMatch("", "Stredocesky"))

	// Code vs formatted name of the same region.
	assert.True(t, RegionsMatch("Stredocesky", "Středočeský kraj"))
	assert.True(t, RegionsMatch("Středočeský kraj", "Stredocesky"))
	assert.False(t, RegionsMatch("Stredocesky", "Jihocesky"))

	// Wildcards match only listings carrying the same wildcard.
	assert.True(t, RegionsMatch("Kdekoliv", "Kdekoliv"))
	assert.True(t, RegionsMatch("CelaCeskaRepublika", "Celá Česká republika"))
	assert.False(t, RegionsMatch("Kdekoliv", "Praha"))
	assert.False(t, RegionsMatch("CelaCeskaRepublika", "Stredocesky"))

	// Unknown values compare by normalized string.
	assert.True(t, RegionsMatch("Dolní Lhota", "dolni lhota"))
	assert.False(t, RegionsMatch("Dolní Lhota", "Horní Lhota"))
}

func TestCategories(t *testing.T) {
	cats := Categories()
	assert.Len(t, cats, 14)
	assert.Equal(t, "home_craftsmen", cats[0].Code)
	assert.Equal(t, "Domácnost & Řemeslníci", cats[0].Name)
	assert.NotEmpty(t, cats[0].Slug)

	assert.True(t, IsValidCategory("pets"))
	assert.False(t, IsValidCategory("dragons"))
	assert.Equal(t, "Domácí zvířata", CategoryName("pets"))
	assert.Equal(t, "dragons", CategoryName("dragons"))
}
