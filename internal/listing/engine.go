// File: internal/listing/engine.go
package listing

import (
	"sort"
	"strings"

	"inzerio_backend/internal/taxonomy"
)

// Sort keys accepted by the catalog.
const (
	SortNewest = "newest"
	SortOldest = "oldest"
	SortTitle  = "title"
)

// Engine runs the filter/sort/paginate pipeline over a listing snapshot.
// It holds its configuration explicitly and keeps no other state, so one
// engine value can serve concurrent requests.
type Engine struct {
	pageSize int
}

// DefaultPageSize is the catalog page size.
const DefaultPageSize = 40

// NewEngine creates an engine. A non-positive pageSize falls back to the
// default.
func NewEngine(pageSize int) *Engine {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &Engine{pageSize: pageSize}
}

// PageSize returns the configured page size.
func (e *Engine) PageSize() int { return e.pageSize }

// Result is the output of a catalog query.
type Result struct {
	Items           []Listing
	TotalUnfiltered int
	TotalFiltered   int
	Page            int
	TotalPages      int
	PageSize        int
	// Limited is set in homepage mode, where Items is a TOP-first
	// truncated list and the page fields carry no meaning.
	Limited bool
}

// Query runs the full pipeline: filter, sort with TOP-first partition,
// then either pagination or homepage truncation.
func (e *Engine) Query(all []Listing, q SearchQuery) Result {
	filtered := e.Filter(all, q)
	e.Sort(filtered, q.Sort)

	if q.Limit > 0 {
		items := filtered
		if len(items) > q.Limit {
			items = items[:q.Limit]
		}
		return Result{
			Items:           items,
			TotalUnfiltered: len(all),
			TotalFiltered:   len(filtered),
			Limited:         true,
		}
	}

	totalPages := (len(filtered) + e.pageSize - 1) / e.pageSize
	if totalPages < 1 {
		totalPages = 1
	}
	page := q.Page
	if page < 1 {
		page = 1
	}
	if page > totalPages {
		page = totalPages
	}

	start := (page - 1) * e.pageSize
	end := start + e.pageSize
	if start > len(filtered) {
		start = len(filtered)
	}
	if end > len(filtered) {
		end = len(filtered)
	}

	return Result{
		Items:           filtered[start:end],
		TotalUnfiltered: len(all),
		TotalFiltered:   len(filtered),
		Page:            page,
		TotalPages:      totalPages,
		PageSize:        e.pageSize,
	}
}

// Filter returns the listings matching the query. Every condition must
// hold: normalized substring search over title, description and region,
// exact category, canonical region equality, and active status.
func (e *Engine) Filter(all []Listing, q SearchQuery) []Listing {
	term := taxonomy.Normalize(q.Search)
	category := strings.TrimSpace(q.Category)
	region := strings.TrimSpace(q.Region)

	out := make([]Listing, 0, len(all))
	for _, l := range all {
		if !l.IsActive() {
			continue
		}
		if term != "" {
			title := taxonomy.Normalize(l.Title)
			desc := taxonomy.Normalize(l.Description)
			loc := taxonomy.Normalize(l.EffectiveRegion())
			if !strings.Contains(title, term) && !strings.Contains(desc, term) && !strings.Contains(loc, term) {
				continue
			}
		}
		if category != "" && l.Category != category {
			continue
		}
		if !taxonomy.RegionsMatch(region, l.EffectiveRegion()) {
			continue
		}
		out = append(out, l)
	}
	return out
}

// Sort orders listings in place by the sort key, then moves TOP listings
// to the front while preserving the key order inside both groups.
func (e *Engine) Sort(items []Listing, key string) {
	switch key {
	case SortOldest:
		sort.SliceStable(items, func(i, j int) bool {
			return items[i].CreatedAt.Before(items[j].CreatedAt)
		})
	case SortTitle:
		sort.SliceStable(items, func(i, j int) bool {
			return taxonomy.Normalize(items[i].Title) < taxonomy.Normalize(items[j].Title)
		})
	default: // SortNewest
		sort.SliceStable(items, func(i, j int) bool {
			return items[i].CreatedAt.After(items[j].CreatedAt)
		})
	}

	// Stable partition keeps the per-group ordering from the pass above.
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].IsTop && !items[j].IsTop
	})
}
