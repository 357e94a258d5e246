// Package listing filters and orders item lists for display.
package listing

import (
	"fmt"
	"slices"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/erazemk/recyclehub/internal/model"
)

// Sort keys.
const (
	SortNewest   = "newest"
	SortOldest   = "oldest"
	SortNameAsc  = "nameAsc"
	SortNameDesc = "nameDesc"
)

// SortKeys lists the accepted sort keys, default first.
var SortKeys = []string{SortNewest, SortOldest, SortNameAsc, SortNameDesc}

// Query selects and orders a derived view of an item list. Zero fields
// match everything.
type Query struct {
	Text     string
	City     string
	Category string
	Status   string
	Sort     string
}

// ParseSort maps a user supplied key to a known sort key. An empty key
// selects newest.
func ParseSort(key string) (string, error) {
	if key == "" {
		return SortNewest, nil
	}
	for _, k := range SortKeys {
		if strings.EqualFold(k, key) {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown sort key %q", key)
}

// Matches reports whether item passes the query's filters.
func (q Query) Matches(item model.Item) bool {
	if q.City != "" && !strings.EqualFold(item.City, q.City) {
		return false
	}
	if q.Category != "" && !strings.EqualFold(item.Category, q.Category) {
		return false
	}
	if q.Status != "" && item.Status != q.Status {
		return false
	}
	text := strings.ToLower(strings.TrimSpace(q.Text))
	if text == "" {
		return true
	}
	return strings.Contains(strings.ToLower(item.Name), text) ||
		strings.Contains(strings.ToLower(item.Description), text)
}

// Apply filters then sorts items into a new slice. The input is never
// modified. Items with equal sort keys keep their input order.
func Apply(items []model.Item, q Query) []model.Item {
	out := make([]model.Item, 0, len(items))
	for _, it := range items {
		if q.Matches(it) {
			out = append(out, it)
		}
	}

	switch q.Sort {
	case SortOldest:
		slices.SortStableFunc(out, func(a, b model.Item) int {
			return a.CreatedAt.Compare(b.CreatedAt)
		})
	case SortNameAsc, SortNameDesc:
		c := collate.New(language.English, collate.IgnoreCase)
		sign := 1
		if q.Sort == SortNameDesc {
			sign = -1
		}
		slices.SortStableFunc(out, func(a, b model.Item) int {
			return sign * c.CompareString(a.Name, b.Name)
		})
	default:
		slices.SortStableFunc(out, func(a, b model.Item) int {
			return b.CreatedAt.Compare(a.CreatedAt)
		})
	}
	return out
}
