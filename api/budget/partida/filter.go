package partida

import (
	"BudgetReqSaas/api/constants"
)

// Item is one catalog line item ("partida") with its numeric classification
// key.
type Item struct {
	ID   int64  `json:"partida_id"`
	Key  int64  `json:"classification_key"`
	Name string `json:"name"`
}

// ChapterWindow returns the inclusive classification-key range owned by a
// chapter, e.g. 20000 → [20000, 29999].
func ChapterWindow(chapterKey int64) (int64, int64) {
	return chapterKey, chapterKey + constants.ChapterWindowSpan
}

// InChapter reports whether a classification key falls inside the chapter's
// window.
func InChapter(key, chapterKey int64) bool {
	lo, hi := ChapterWindow(chapterKey)
	return key >= lo && key <= hi
}

// FilterByChapter restricts the catalog to the chapter's window. A missing
// chapter key (zero or negative) degrades gracefully and returns the catalog
// unfiltered; the caller is expected to audit-log that no filter applied.
func FilterByChapter(items []Item, chapterKey int64) []Item {
	if chapterKey <= 0 {
		return items
	}
	out := make([]Item, 0, len(items))
	for _, it := range items {
		if InChapter(it.Key, chapterKey) {
			out = append(out, it)
		}
	}
	return out
}
