package core

import "time"

// Track represents a playable media item resolved from search or a direct URL.
// A track is immutable once resolved; only its position in the playlist moves.
type Track struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Uploader  string `json:"uploader"`
	Duration  int    `json:"duration"` // seconds, 0 when unknown
	Thumbnail string `json:"thumbnail,omitempty"`
	SourceURL string `json:"url"`
}

// DurationTime returns the track duration as a time.Duration.
func (t *Track) DurationTime() time.Duration {
	return time.Duration(t.Duration) * time.Second
}

// HistoryEntry records a previously played track.
type HistoryEntry struct {
	Track    Track     `json:"track"`
	PlayedAt time.Time `json:"played_at"`
}
