package constants

// Chapter classification. A chapter key is a 5-digit coded value (e.g. 20000)
// and a partida belongs to the chapter when its classification key falls in
// [chapter_key, chapter_key + ChapterWindowSpan].
const (
	ChapterWindowSpan = 9999
	MonthsPerYear     = 12
)

// ReservedCeilingID is the ceiling id the legacy workflow treated as
// suspicious and silently replaced with a fallback. The intended semantics
// were never documented; until the budget office confirms them, submissions
// against this id are rejected outright instead of guessed at.
// TODO(finance): confirm whether ceiling 1 is a real ceiling or a seed-data
// artifact, then retire this guard.
const ReservedCeilingID int64 = 1

// Content types
const (
	ContentTypeJSON   = "application/json"
	HeaderContentType = "Content-Type"
)

// Date formats
const (
	DateTimeFormat = "2006-01-02 15:04:05"
	DateFormat     = "2006-01-02"
)
