package core

import (
	"math/rand"
	"time"

	"github.com/pcahill/strum/internal/errors"
)

// Playlist owns an ordered sequence of tracks plus the cursor into it.
// The cursor is -1 when the playlist is empty and otherwise always a valid
// index. It is only mutated from the coordinator, never concurrently.
type Playlist struct {
	tracks  []Track
	current int // -1 when empty
	shuffle bool
	repeat  bool
	rng     *rand.Rand
}

// NewPlaylist creates an empty playlist.
func NewPlaylist() *Playlist {
	return &Playlist{
		current: -1,
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// NewPlaylistWithSource creates an empty playlist with a deterministic
// shuffle source. Used by tests.
func NewPlaylistWithSource(src rand.Source) *Playlist {
	return &Playlist{current: -1, rng: rand.New(src)}
}

// Tracks returns a copy of the track sequence in playback order.
func (p *Playlist) Tracks() []Track {
	out := make([]Track, len(p.tracks))
	copy(out, p.tracks)
	return out
}

// Len returns the number of tracks.
func (p *Playlist) Len() int {
	return len(p.tracks)
}

// IsEmpty returns true if the playlist has no tracks.
func (p *Playlist) IsEmpty() bool {
	return len(p.tracks) == 0
}

// CurrentIndex returns the cursor position, or -1 when the playlist is empty.
func (p *Playlist) CurrentIndex() int {
	return p.current
}

// Current returns the track under the cursor, or nil when the playlist is
// empty.
func (p *Playlist) Current() *Track {
	if p.current < 0 || p.current >= len(p.tracks) {
		return nil
	}
	t := p.tracks[p.current]
	return &t
}

// SetShuffle toggles shuffled selection for Next.
func (p *Playlist) SetShuffle(on bool) {
	p.shuffle = on
}

// Shuffled reports whether shuffle is enabled.
func (p *Playlist) Shuffled() bool {
	return p.shuffle
}

// SetRepeat toggles wrap-around at the playlist boundaries.
func (p *Playlist) SetRepeat(on bool) {
	p.repeat = on
}

// Repeating reports whether repeat is enabled.
func (p *Playlist) Repeating() bool {
	return p.repeat
}

// Append adds a track to the end. The cursor only moves when the playlist
// was empty, in which case the new track becomes current.
func (p *Playlist) Append(t Track) {
	p.tracks = append(p.tracks, t)
	if p.current < 0 {
		p.current = 0
	}
}

// Remove removes the first track matching the given id.
// A removal before the cursor shifts the cursor down by one so it keeps
// pointing at the same track. Removing the current track leaves the cursor
// at the same numeric index so the following track becomes current, clamped
// to the new last index when the removed track was last.
func (p *Playlist) Remove(trackID string) (Track, error) {
	idx := p.indexOf(trackID)
	if idx < 0 {
		return Track{}, errors.ErrTrackNotFound
	}

	removed := p.tracks[idx]
	p.tracks = append(p.tracks[:idx], p.tracks[idx+1:]...)

	switch {
	case len(p.tracks) == 0:
		p.current = -1
	case idx < p.current:
		p.current--
	case idx == p.current && p.current >= len(p.tracks):
		p.current = len(p.tracks) - 1
	}
	return removed, nil
}

// SetCurrent moves the cursor to the track with the given id and returns it.
// Playback is the caller's concern; this has no side effect beyond the
// cursor move.
func (p *Playlist) SetCurrent(trackID string) (*Track, error) {
	idx := p.indexOf(trackID)
	if idx < 0 {
		return nil, errors.ErrTrackNotFound
	}
	p.current = idx
	t := p.tracks[idx]
	return &t, nil
}

// Next advances the cursor and returns the new current track.
// Without shuffle the cursor moves forward by one; at the end of the
// sequence it wraps to the start only under repeat and otherwise fails with
// ErrEndOfPlaylist. With shuffle enabled and more than one track present, a
// pseudo-random index different from the current one is chosen instead.
func (p *Playlist) Next() (*Track, error) {
	if len(p.tracks) == 0 {
		return nil, errors.ErrEndOfPlaylist
	}

	if p.shuffle && len(p.tracks) > 1 {
		next := p.rng.Intn(len(p.tracks) - 1)
		if next >= p.current {
			next++
		}
		p.current = next
		t := p.tracks[p.current]
		return &t, nil
	}

	if p.current+1 >= len(p.tracks) {
		if !p.repeat {
			return nil, errors.ErrEndOfPlaylist
		}
		p.current = 0
	} else {
		p.current++
	}
	t := p.tracks[p.current]
	return &t, nil
}

// Previous moves the cursor back by one and returns the new current track.
// It wraps to the end only under repeat. Shuffle does not apply: moving
// backward recalls arrival order rather than re-randomising.
func (p *Playlist) Previous() (*Track, error) {
	if len(p.tracks) == 0 {
		return nil, errors.ErrEndOfPlaylist
	}

	if p.current-1 < 0 {
		if !p.repeat {
			return nil, errors.ErrEndOfPlaylist
		}
		p.current = len(p.tracks) - 1
	} else {
		p.current--
	}
	t := p.tracks[p.current]
	return &t, nil
}

// Clear empties the playlist and resets the cursor. History is a separate
// concern and is left untouched by design.
func (p *Playlist) Clear() {
	p.tracks = nil
	p.current = -1
}

// TotalDuration returns the summed duration of all tracks in seconds.
func (p *Playlist) TotalDuration() int {
	total := 0
	for _, t := range p.tracks {
		total += t.Duration
	}
	return total
}

// Snapshot captures the playlist contents and cursor for later rollback.
type Snapshot struct {
	tracks  []Track
	current int
}

// Snapshot returns a copy of the current playlist state.
func (p *Playlist) Snapshot() Snapshot {
	tracks := make([]Track, len(p.tracks))
	copy(tracks, p.tracks)
	return Snapshot{tracks: tracks, current: p.current}
}

// Restore rewinds the playlist to a previously captured snapshot. Used to
// roll back an optimistic local mutation when the paired remote persistence
// call fails.
func (p *Playlist) Restore(s Snapshot) {
	p.tracks = s.tracks
	p.current = s.current
}

func (p *Playlist) indexOf(trackID string) int {
	for i, t := range p.tracks {
		if t.ID == trackID {
			return i
		}
	}
	return -1
}
