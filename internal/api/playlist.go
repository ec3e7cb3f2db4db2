package api

import (
	"context"
	"fmt"

	"github.com/pcahill/strum/internal/core"
)

// FetchPlaylist retrieves the authoritative server copy of the playlist.
func (c *Client) FetchPlaylist(ctx context.Context) (*PlaylistResponse, error) {
	var resp PlaylistResponse
	if err := c.get(ctx, "/api/playlist", &resp); err != nil {
		return nil, fmt.Errorf("failed to load playlist: %w", err)
	}
	return &resp, nil
}

// AddTrack persists a track append.
func (c *Client) AddTrack(ctx context.Context, t core.Track) (*PlaylistResponse, error) {
	var resp PlaylistResponse
	if err := c.post(ctx, "/api/playlist", FromCore(t), &resp); err != nil {
		return nil, fmt.Errorf("failed to add track: %w", err)
	}
	return checkSuccess(&resp)
}

// RemoveTrack persists a track removal.
func (c *Client) RemoveTrack(ctx context.Context, trackID string) (*PlaylistResponse, error) {
	var resp PlaylistResponse
	body := map[string]string{"track_id": trackID}
	if err := c.del(ctx, "/api/playlist", body, &resp); err != nil {
		return nil, fmt.Errorf("failed to remove track: %w", err)
	}
	return checkSuccess(&resp)
}

// SetCurrent persists a cursor move to the given track.
func (c *Client) SetCurrent(ctx context.Context, trackID string) (*PlaylistResponse, error) {
	var resp PlaylistResponse
	body := map[string]string{"track_id": trackID}
	if err := c.post(ctx, "/api/playlist/current", body, &resp); err != nil {
		return nil, fmt.Errorf("failed to set current track: %w", err)
	}
	return checkSuccess(&resp)
}

// NextTrack persists a cursor advance.
func (c *Client) NextTrack(ctx context.Context) (*PlaylistResponse, error) {
	var resp PlaylistResponse
	if err := c.post(ctx, "/api/playlist/next", nil, &resp); err != nil {
		return nil, fmt.Errorf("failed to advance playlist: %w", err)
	}
	return checkSuccess(&resp)
}

// PrevTrack persists a cursor move backward.
func (c *Client) PrevTrack(ctx context.Context) (*PlaylistResponse, error) {
	var resp PlaylistResponse
	if err := c.post(ctx, "/api/playlist/prev", nil, &resp); err != nil {
		return nil, fmt.Errorf("failed to rewind playlist: %w", err)
	}
	return checkSuccess(&resp)
}

// ClearPlaylist persists a playlist clear.
func (c *Client) ClearPlaylist(ctx context.Context) (*PlaylistResponse, error) {
	var resp PlaylistResponse
	if err := c.post(ctx, "/api/playlist/clear", nil, &resp); err != nil {
		return nil, fmt.Errorf("failed to clear playlist: %w", err)
	}
	return checkSuccess(&resp)
}

func checkSuccess(resp *PlaylistResponse) (*PlaylistResponse, error) {
	if !resp.Success {
		msg := resp.Message
		if msg == "" {
			msg = "request was not successful"
		}
		return resp, &RemoteError{Message: msg}
	}
	return resp, nil
}
