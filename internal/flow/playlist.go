package flow

import (
	"context"

	"github.com/pcahill/strum/internal/api"
	"github.com/pcahill/strum/internal/core"
	"github.com/pcahill/strum/internal/errors"
	"github.com/pcahill/strum/internal/notify"
)

// Playlist mutations are optimistic: the local cursor model changes first so
// the UI reacts immediately, then the change is persisted to the server.
// When persistence fails the local model is rolled back to its pre-mutation
// snapshot and the error is surfaced.

// Load replaces the local playlist and history with the server's copy.
// Called once at startup so a restarted client resumes where it left off.
func (f *Flow) Load(ctx context.Context) error {
	resp, err := f.client.FetchPlaylist(ctx)
	if err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	f.playlist.Clear()
	for _, wt := range resp.Tracks {
		f.playlist.Append(wt.ToCore())
	}
	if resp.CurrentIndex != nil && *resp.CurrentIndex >= 0 {
		tracks := f.playlist.Tracks()
		if *resp.CurrentIndex < len(tracks) {
			f.playlist.SetCurrent(tracks[*resp.CurrentIndex].ID)
		}
	}
	// Server history arrives newest first; replay oldest first so the
	// in-memory log ends up in the same order.
	for i := len(resp.History) - 1; i >= 0; i-- {
		item := resp.History[i]
		f.history.Append(item.Track.ToCore(), item.PlayedAtTime())
	}
	f.logger.Debug("playlist loaded", "tracks", f.playlist.Len())
	return nil
}

// AddTrack appends a track to the playlist.
func (f *Flow) AddTrack(ctx context.Context, t core.Track) error {
	f.mu.Lock()
	snap := f.playlist.Snapshot()
	f.playlist.Append(t)
	f.mu.Unlock()

	resp, err := f.client.AddTrack(ctx, t)
	if err != nil {
		f.rollback(snap)
		f.notifier.Notify(notify.Error, "Failed to add %q: %v", t.Title, err)
		return err
	}
	f.adoptServerIndex(resp)
	f.notifier.Notify(notify.Success, "Added %q to playlist", t.Title)
	return nil
}

// RemoveTrack removes a track from the playlist. Removing the track under
// the cursor does not interrupt playback of a bound stream; only the cursor
// model changes.
func (f *Flow) RemoveTrack(ctx context.Context, trackID string) error {
	f.mu.Lock()
	snap := f.playlist.Snapshot()
	removed, err := f.playlist.Remove(trackID)
	f.mu.Unlock()
	if err != nil {
		return err
	}

	resp, rerr := f.client.RemoveTrack(ctx, trackID)
	if rerr != nil {
		f.rollback(snap)
		f.notifier.Notify(notify.Error, "Failed to remove %q: %v", removed.Title, rerr)
		return rerr
	}
	f.adoptServerIndex(resp)
	f.notifier.Notify(notify.Info, "Removed %q from playlist", removed.Title)
	return nil
}

// SelectTrack moves the cursor to the given playlist track, persists the
// move, and starts playing it.
func (f *Flow) SelectTrack(ctx context.Context, trackID string) error {
	f.mu.Lock()
	snap := f.playlist.Snapshot()
	t, err := f.playlist.SetCurrent(trackID)
	f.mu.Unlock()
	if err != nil {
		return err
	}

	if _, rerr := f.client.SetCurrent(ctx, trackID); rerr != nil {
		f.rollback(snap)
		f.notifier.Notify(notify.Error, "Failed to select track: %v", rerr)
		return rerr
	}
	return f.PlayTrack(ctx, *t)
}

// Next advances the cursor and plays the new current track. At the playlist
// boundary without repeat, playback stops; that is an expected terminal, not
// an error surfaced to the caller.
func (f *Flow) Next(ctx context.Context) error {
	return f.advance(ctx, true)
}

// Previous moves the cursor back by one and plays the new current track.
// Shuffle does not apply when moving backward.
func (f *Flow) Previous(ctx context.Context) error {
	return f.advance(ctx, false)
}

// Advance moves to the next track. Invoked by the playback controller when
// a track finishes or fails.
func (f *Flow) Advance() {
	if err := f.advance(f.bgCtx, true); err != nil {
		f.logger.Error("failed to advance playlist", "err", err)
	}
}

func (f *Flow) advance(ctx context.Context, forward bool) error {
	f.mu.Lock()
	snap := f.playlist.Snapshot()
	shuffled := f.playlist.Shuffled()
	var (
		t   *core.Track
		err error
	)
	if forward {
		t, err = f.playlist.Next()
	} else {
		t, err = f.playlist.Previous()
	}
	f.mu.Unlock()

	if errors.Informational(err) {
		// Running off the end of a non-repeating playlist is the normal way
		// playback finishes, not a failure.
		f.Stop()
		f.notifier.Notify(notify.Info, "End of playlist")
		return nil
	}
	if err != nil {
		return err
	}

	// A shuffled jump lands on an arbitrary index, so it is persisted as an
	// explicit cursor move rather than a sequential step.
	var rerr error
	switch {
	case forward && shuffled:
		_, rerr = f.client.SetCurrent(ctx, t.ID)
	case forward:
		_, rerr = f.client.NextTrack(ctx)
	default:
		_, rerr = f.client.PrevTrack(ctx)
	}
	if rerr != nil {
		f.rollback(snap)
		f.notifier.Notify(notify.Error, "Failed to change track: %v", rerr)
		return rerr
	}

	return f.PlayTrack(ctx, *t)
}

// Clear stops playback and empties the playlist.
func (f *Flow) Clear(ctx context.Context) error {
	f.mu.Lock()
	snap := f.playlist.Snapshot()
	f.playlist.Clear()
	f.mu.Unlock()

	if _, err := f.client.ClearPlaylist(ctx); err != nil {
		f.rollback(snap)
		f.notifier.Notify(notify.Error, "Failed to clear playlist: %v", err)
		return err
	}

	f.Stop()
	f.notifier.Notify(notify.Info, "Playlist cleared")
	return nil
}

// rollback restores the playlist to a pre-mutation snapshot.
func (f *Flow) rollback(snap core.Snapshot) {
	f.mu.Lock()
	f.playlist.Restore(snap)
	f.mu.Unlock()
	f.logger.Warn("playlist mutation rolled back")
}

// adoptServerIndex reconciles the local cursor with the index the server
// reports after a successful mutation. The server copy is authoritative.
func (f *Flow) adoptServerIndex(resp *api.PlaylistResponse) {
	if resp == nil || resp.CurrentIndex == nil || *resp.CurrentIndex < 0 {
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	tracks := f.playlist.Tracks()
	if *resp.CurrentIndex < len(tracks) {
		f.playlist.SetCurrent(tracks[*resp.CurrentIndex].ID)
	}
}

