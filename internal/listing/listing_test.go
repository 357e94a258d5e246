package listing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erazemk/recyclehub/internal/model"
)

var base = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func item(id, name string, age time.Duration) model.Item {
	return model.Item{
		ID:        id,
		Name:      name,
		Category:  "Plastic",
		City:      "Delhi",
		Status:    model.ItemStatusAvailable,
		CreatedAt: base.Add(-age),
	}
}

func names(items []model.Item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Name
	}
	return out
}

func TestFilterText(t *testing.T) {
	items := []model.Item{
		item("1", "Plastic Bottle", 0),
		item("2", "Cardboard Box", 0),
	}
	got := Apply(items, Query{Text: "bottle"})
	assert.Equal(t, []string{"Plastic Bottle"}, names(got))
}

func TestFilterTextMatchesDescription(t *testing.T) {
	a := item("1", "Jar", 0)
	a.Description = "Glass BOTTLE with lid"
	items := []model.Item{a, item("2", "Box", time.Hour)}

	got := Apply(items, Query{Text: "bottle"})
	assert.Equal(t, []string{"Jar"}, names(got))
}

func TestEmptyQueryMatchesAll(t *testing.T) {
	items := []model.Item{item("1", "A", 0), item("2", "B", time.Hour)}
	assert.Len(t, Apply(items, Query{Text: "   "}), 2)
}

func TestFilterFields(t *testing.T) {
	a := item("1", "A", 0)
	b := item("2", "B", time.Minute)
	b.City = "Mumbai"
	b.Category = "Glass"
	b.Status = model.ItemStatusRecycled
	items := []model.Item{a, b}

	assert.Equal(t, []string{"B"}, names(Apply(items, Query{City: "mumbai"})))
	assert.Equal(t, []string{"B"}, names(Apply(items, Query{Category: "Glass"})))
	assert.Equal(t, []string{"A"}, names(Apply(items, Query{Status: model.ItemStatusAvailable})))
}

func TestSortByName(t *testing.T) {
	items := []model.Item{item("1", "Zebra", 0), item("2", "Apple", 0)}

	assert.Equal(t, []string{"Apple", "Zebra"}, names(Apply(items, Query{Sort: SortNameAsc})))
	assert.Equal(t, []string{"Zebra", "Apple"}, names(Apply(items, Query{Sort: SortNameDesc})))
}

func TestSortByNameIgnoresCase(t *testing.T) {
	items := []model.Item{item("1", "banana", 0), item("2", "Apple", 0), item("3", "cherry", 0)}
	assert.Equal(t, []string{"Apple", "banana", "cherry"}, names(Apply(items, Query{Sort: SortNameAsc})))
}

func TestSortByDate(t *testing.T) {
	items := []model.Item{
		item("1", "middle", time.Hour),
		item("2", "newest", 0),
		item("3", "oldest", 2*time.Hour),
	}

	assert.Equal(t, []string{"newest", "middle", "oldest"}, names(Apply(items, Query{})))
	assert.Equal(t, []string{"oldest", "middle", "newest"}, names(Apply(items, Query{Sort: SortOldest})))
}

func TestSortIsStable(t *testing.T) {
	items := []model.Item{item("1", "Same", 0), item("2", "Same", 0), item("3", "Same", 0)}
	got := Apply(items, Query{Sort: SortNameAsc})

	ids := []string{got[0].ID, got[1].ID, got[2].ID}
	assert.Equal(t, []string{"1", "2", "3"}, ids)
}

func TestApplyDoesNotMutateInput(t *testing.T) {
	items := []model.Item{item("1", "Zebra", 0), item("2", "Apple", time.Hour)}
	_ = Apply(items, Query{Sort: SortNameAsc})
	assert.Equal(t, []string{"Zebra", "Apple"}, names(items))
}

func TestParseSort(t *testing.T) {
	got, err := ParseSort("")
	require.NoError(t, err)
	assert.Equal(t, SortNewest, got)

	got, err = ParseSort("NAMEASC")
	require.NoError(t, err)
	assert.Equal(t, SortNameAsc, got)

	_, err = ParseSort("price")
	assert.Error(t, err)
}
