package core

import "time"

// DefaultHistoryLimit bounds the recent-plays window kept in memory.
const DefaultHistoryLimit = 50

// History is an append-only record of previously played tracks, capped to a
// bounded recent window. Newest entries come first.
type History struct {
	entries []HistoryEntry
	limit   int
}

// NewHistory creates a history log with the given cap. A non-positive limit
// falls back to DefaultHistoryLimit.
func NewHistory(limit int) *History {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return &History{limit: limit}
}

// Append records a played track with the given timestamp.
func (h *History) Append(t Track, playedAt time.Time) {
	h.entries = append([]HistoryEntry{{Track: t, PlayedAt: playedAt}}, h.entries...)
	if len(h.entries) > h.limit {
		h.entries = h.entries[:h.limit]
	}
}

// Recent returns up to n of the most recently played entries, newest first.
func (h *History) Recent(n int) []HistoryEntry {
	if n <= 0 || n > len(h.entries) {
		n = len(h.entries)
	}
	out := make([]HistoryEntry, n)
	copy(out, h.entries[:n])
	return out
}

// Len returns the number of retained entries.
func (h *History) Len() int {
	return len(h.entries)
}
