package partida

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

var catalog = []Item{
	{ID: 1, Key: 21101, Name: "Office supplies"},
	{ID: 2, Key: 24601, Name: "Electrical material"},
	{ID: 3, Key: 29999, Name: "Misc chapter 2"},
	{ID: 4, Key: 31801, Name: "Postage"},
	{ID: 5, Key: 20000, Name: "Chapter 2 root"},
	{ID: 6, Key: 30000, Name: "Chapter 3 root"},
}

func TestChapterWindow(t *testing.T) {
	lo, hi := ChapterWindow(20000)
	assert.Equal(t, int64(20000), lo)
	assert.Equal(t, int64(29999), hi)
}

func TestFilterByChapterKeepsWindowInclusive(t *testing.T) {
	got := FilterByChapter(catalog, 20000)
	ids := make([]int64, 0, len(got))
	for _, it := range got {
		ids = append(ids, it.ID)
	}
	assert.Equal(t, []int64{1, 2, 3, 5}, ids, "both window edges are inclusive")
}

func TestFilterByChapterOtherChapter(t *testing.T) {
	got := FilterByChapter(catalog, 30000)
	assert.Len(t, got, 2)
	for _, it := range got {
		assert.True(t, InChapter(it.Key, 30000))
	}
}

func TestFilterByChapterDegradesWithoutKey(t *testing.T) {
	assert.Equal(t, catalog, FilterByChapter(catalog, 0))
	assert.Equal(t, catalog, FilterByChapter(catalog, -3))
}
