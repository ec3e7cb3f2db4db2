package api

import (
	"context"
	"fmt"

	"github.com/pcahill/strum/internal/core"
)

// TrackInfo is a resolved media item plus its free-form description.
type TrackInfo struct {
	Track       core.Track
	Description string
}

// Search queries the service for playable items.
func (c *Client) Search(ctx context.Context, query string) ([]core.Track, error) {
	path := BuildURL("/api/search", map[string]string{"q": query})

	var resp SearchResponse
	if err := c.get(ctx, path, &resp); err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}

	tracks := make([]core.Track, len(resp.Results))
	for i, r := range resp.Results {
		tracks[i] = r.ToCore()
	}
	return tracks, nil
}

// Info resolves metadata for a direct media URL without downloading.
func (c *Client) Info(ctx context.Context, mediaURL string) (*TrackInfo, error) {
	var resp InfoResponse
	if err := c.post(ctx, "/api/info", map[string]string{"url": mediaURL}, &resp); err != nil {
		return nil, fmt.Errorf("info lookup failed: %w", err)
	}

	id := resp.VideoID
	if id == "" {
		id, _ = ExtractVideoID(mediaURL)
	}

	return &TrackInfo{
		Track: core.Track{
			ID:        id,
			Title:     resp.Title,
			Uploader:  resp.Uploader,
			Duration:  resp.Duration,
			Thumbnail: resp.Thumbnail,
			SourceURL: mediaURL,
		},
		Description: resp.Description,
	}, nil
}

// StartDownload asks the service to begin an asynchronous download job and
// returns the opaque job id.
func (c *Client) StartDownload(ctx context.Context, videoID, mediaURL, formatID string) (string, error) {
	req := DownloadRequest{VideoID: videoID, URL: mediaURL, FormatID: formatID}

	var resp DownloadResponse
	if err := c.post(ctx, "/api/download", req, &resp); err != nil {
		return "", fmt.Errorf("download start failed: %w", err)
	}
	if resp.DownloadID == "" {
		return "", fmt.Errorf("download start failed: no download id in response")
	}
	return resp.DownloadID, nil
}

// Status fetches the current state of a download job.
func (c *Client) Status(ctx context.Context, downloadID string) (*StatusResponse, error) {
	var resp StatusResponse
	if err := c.get(ctx, "/api/status/"+downloadID, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// StreamURL returns the playback source URL for a completed job. The URL is
// handed to the playback device; the client never fetches the bytes itself.
func (c *Client) StreamURL(downloadID string) string {
	return c.baseURL + "/api/stream/" + downloadID
}

// Cleanup asks the service to release a job's server-side resources. This is
// best effort: callers log failures and never surface them to the user.
func (c *Client) Cleanup(ctx context.Context, downloadID string) error {
	return c.post(ctx, "/api/cleanup", CleanupRequest{DownloadID: downloadID}, nil)
}
