package api

import (
	"strconv"
	"strings"
	"time"

	"github.com/pcahill/strum/internal/core"
)

// Track mirrors the service's track shape in search and playlist responses.
type Track struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Uploader  string `json:"uploader"`
	Duration  int    `json:"duration"`
	Thumbnail string `json:"thumbnail"`
	URL       string `json:"url"`
}

// ToCore converts a wire track to a core track.
func (t *Track) ToCore() core.Track {
	return core.Track{
		ID:        t.ID,
		Title:     t.Title,
		Uploader:  t.Uploader,
		Duration:  t.Duration,
		Thumbnail: t.Thumbnail,
		SourceURL: t.URL,
	}
}

// FromCore converts a core track to its wire shape.
func FromCore(t core.Track) Track {
	return Track{
		ID:        t.ID,
		Title:     t.Title,
		Uploader:  t.Uploader,
		Duration:  t.Duration,
		Thumbnail: t.Thumbnail,
		URL:       t.SourceURL,
	}
}

// SearchResponse is returned by GET /api/search.
type SearchResponse struct {
	Results []Track `json:"results"`
	Error   string  `json:"error,omitempty"`
}

// InfoResponse is returned by POST /api/info.
type InfoResponse struct {
	Title       string `json:"title"`
	Duration    int    `json:"duration"`
	Thumbnail   string `json:"thumbnail"`
	Uploader    string `json:"uploader"`
	Description string `json:"description"`
	VideoID     string `json:"video_id"`
	Error       string `json:"error,omitempty"`
}

// DownloadRequest is the body of POST /api/download.
type DownloadRequest struct {
	VideoID  string `json:"video_id,omitempty"`
	URL      string `json:"url"`
	FormatID string `json:"format_id,omitempty"`
}

// DownloadResponse is returned by POST /api/download.
type DownloadResponse struct {
	DownloadID string `json:"download_id"`
	Status     string `json:"status"`
	Error      string `json:"error,omitempty"`
}

// JobStatus enumerates the lifecycle states of a server-side download job.
type JobStatus string

const (
	JobQueued      JobStatus = "queued"
	JobPending     JobStatus = "pending"
	JobDownloading JobStatus = "downloading"
	JobCompleted   JobStatus = "completed"
	JobError       JobStatus = "error"
	JobCancelled   JobStatus = "cancelled"
)

// Terminal reports whether the status ends the job's lifecycle.
func (s JobStatus) Terminal() bool {
	return s == JobCompleted || s == JobError || s == JobCancelled
}

// StatusResponse is returned by GET /api/status/{download_id}.
// Progress and Speed are display strings and may be absent in any given
// response; absent fields leave previously reported values in effect.
type StatusResponse struct {
	Status   JobStatus `json:"status"`
	Progress string    `json:"progress,omitempty"` // e.g. "42.3%"
	Speed    string    `json:"speed,omitempty"`
	Title    string    `json:"title,omitempty"`
	Duration int       `json:"duration,omitempty"`
	Error    string    `json:"error,omitempty"`
}

// ProgressPercent parses the progress display string. The second return is
// false when the response carried no progress field.
func (s *StatusResponse) ProgressPercent() (float64, bool) {
	if s.Progress == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.TrimSuffix(strings.TrimSpace(s.Progress), "%"), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// CleanupRequest is the body of POST /api/cleanup.
type CleanupRequest struct {
	DownloadID string `json:"download_id"`
}

// HistoryItem mirrors a history entry in the playlist response.
type HistoryItem struct {
	Track
	PlayedAt int64 `json:"played_at"` // epoch seconds
}

// PlayedAtTime returns the entry timestamp as a time.Time.
func (h *HistoryItem) PlayedAtTime() time.Time {
	return time.Unix(h.PlayedAt, 0)
}

// PlaylistResponse is the shared response shape of the playlist persistence
// endpoints.
type PlaylistResponse struct {
	Success      bool          `json:"success"`
	Tracks       []Track       `json:"tracks,omitempty"`
	CurrentIndex *int          `json:"current_index,omitempty"`
	Track        *Track        `json:"track,omitempty"`
	History      []HistoryItem `json:"history,omitempty"`
	Message      string        `json:"message,omitempty"`
	Error        string        `json:"error,omitempty"`
}
