// Package flow coordinates track resolution: it turns a user intent into a
// server-side download job, polls the job to completion, and binds the
// resulting stream to the playback controller while keeping the playlist
// cursor and history in step.
package flow

import (
	"context"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/pcahill/strum/internal/api"
	"github.com/pcahill/strum/internal/core"
	"github.com/pcahill/strum/internal/errors"
	"github.com/pcahill/strum/internal/notify"
	"github.com/pcahill/strum/internal/player"
	"github.com/pcahill/strum/internal/poller"
)

// State names the coordinator's position in the resolution lifecycle.
type State int

const (
	StateIdle State = iota
	StateResolving
	StateJobStarting
	StateJobPolling
	StateBound
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateResolving:
		return "resolving"
	case StateJobStarting:
		return "starting"
	case StateJobPolling:
		return "downloading"
	case StateBound:
		return "playing"
	default:
		return "unknown"
	}
}

// HistoryStore persists played tracks across sessions. Implementations are
// best effort; the flow logs store failures and moves on.
type HistoryStore interface {
	Append(entry core.HistoryEntry) error
	Recent(n int) ([]core.HistoryEntry, error)
}

// Flow is the top-level coordinator. All fields behind mu; callbacks from
// the poller and the playback controller re-enter through exported methods.
type Flow struct {
	client     *api.Client
	controller *player.Controller
	notifier   notify.Notifier
	logger     *log.Logger
	store      HistoryStore

	pollInterval time.Duration
	bgCtx        context.Context
	sessionID    string

	mu           sync.Mutex
	playlist     *core.Playlist
	history      *core.History
	state        State
	playSeq      uint64 // bumped on every play intent; guards slow starts
	activeJobID  string
	activePoller *poller.Poller
	pending      core.Track // track the active job belongs to
	boundTrack   *core.Track
	progress     float64
	speed        string
}

// Option configures a Flow.
type Option func(*Flow)

// WithLogger attaches a structured logger.
func WithLogger(logger *log.Logger) Option {
	return func(f *Flow) { f.logger = logger }
}

// WithNotifier attaches the user-facing notification channel.
func WithNotifier(n notify.Notifier) Option {
	return func(f *Flow) { f.notifier = n }
}

// WithStore attaches a persistent history store.
func WithStore(s HistoryStore) Option {
	return func(f *Flow) { f.store = s }
}

// WithPollInterval overrides the job status poll cadence.
func WithPollInterval(d time.Duration) Option {
	return func(f *Flow) { f.pollInterval = d }
}

// WithHistoryLimit bounds the in-memory recent-plays window.
func WithHistoryLimit(n int) Option {
	return func(f *Flow) { f.history = core.NewHistory(n) }
}

// WithContext sets the context used for callback-initiated work (advance on
// track end, job cleanup).
func WithContext(ctx context.Context) Option {
	return func(f *Flow) { f.bgCtx = ctx }
}

// New creates a coordinator over the given collaborators and registers
// itself as the controller's coordinator.
func New(client *api.Client, controller *player.Controller, opts ...Option) *Flow {
	f := &Flow{
		client:       client,
		controller:   controller,
		notifier:     notify.Discard{},
		logger:       log.New(io.Discard),
		pollInterval: poller.DefaultInterval,
		bgCtx:        context.Background(),
		sessionID:    "user_" + uuid.NewString()[:8],
		playlist:     core.NewPlaylist(),
		history:      core.NewHistory(0),
	}
	for _, opt := range opts {
		opt(f)
	}
	controller.SetCoordinator(f)
	return f
}

// SessionID returns the generated client session identity.
func (f *Flow) SessionID() string {
	return f.sessionID
}

// Search queries the service for tracks. Queries shorter than two
// characters are rejected before any network call.
func (f *Flow) Search(ctx context.Context, query string) ([]core.Track, error) {
	query = strings.TrimSpace(query)
	if len(query) < 2 {
		f.notifier.Notify(notify.Warning, "Please enter at least 2 characters")
		return nil, errors.ErrInvalidQuery
	}

	tracks, err := f.client.Search(ctx, query)
	if err != nil {
		f.notifier.Notify(notify.Error, "Search failed: %v", err)
		return nil, err
	}
	f.notifier.Notify(notify.Success, "Found %d results", len(tracks))
	return tracks, nil
}

// ResolveURL resolves metadata for a direct media URL. Malformed URLs fail
// locally before any network call.
func (f *Flow) ResolveURL(ctx context.Context, mediaURL string) (*api.TrackInfo, error) {
	mediaURL = strings.TrimSpace(mediaURL)
	if mediaURL == "" {
		f.notifier.Notify(notify.Warning, "Please enter a URL")
		return nil, errors.ErrInvalidURL
	}
	if _, err := api.ExtractVideoID(mediaURL); err != nil {
		f.notifier.Notify(notify.Warning, "Not a recognized media URL")
		return nil, err
	}

	f.mu.Lock()
	prev := f.state
	if prev == StateIdle {
		f.state = StateResolving
	}
	f.mu.Unlock()

	info, err := f.client.Info(ctx, mediaURL)

	f.mu.Lock()
	if f.state == StateResolving {
		f.state = prev
	}
	f.mu.Unlock()

	if err != nil {
		f.notifier.Notify(notify.Error, "Failed to get media info: %v", err)
		return nil, err
	}
	return info, nil
}

// PlayURL resolves a direct URL and starts playing it without touching the
// playlist.
func (f *Flow) PlayURL(ctx context.Context, mediaURL string) error {
	info, err := f.ResolveURL(ctx, mediaURL)
	if err != nil {
		return err
	}
	return f.PlayTrack(ctx, info.Track)
}

// PlayTrack starts the download job for a track and begins polling it. Any
// in-flight job is superseded: its poller is cancelled unconditionally and
// its server-side resources are released best-effort.
func (f *Flow) PlayTrack(ctx context.Context, t core.Track) error {
	f.mu.Lock()
	f.playSeq++
	seq := f.playSeq
	f.supersedeActiveLocked()
	f.state = StateJobStarting
	f.pending = t
	f.progress = 0
	f.speed = ""
	f.mu.Unlock()

	f.notifier.Notify(notify.Info, "Loading %q...", t.Title)

	jobID, err := f.client.StartDownload(ctx, t.ID, t.SourceURL, "")
	if err != nil {
		f.mu.Lock()
		if f.playSeq == seq {
			f.state = StateIdle
		}
		f.mu.Unlock()
		f.notifier.Notify(notify.Error, "Failed to play track: %v", err)
		return err
	}

	f.mu.Lock()
	if f.playSeq != seq {
		// A newer play intent won while the download call was in flight.
		// This job was never active; release it quietly.
		f.mu.Unlock()
		f.cleanupJob(jobID)
		return nil
	}
	f.activeJobID = jobID
	p := poller.New(f.client, jobID, f.pollInterval)
	f.activePoller = p
	f.state = StateJobPolling
	f.mu.Unlock()

	f.logger.Debug("download started", "job", jobID, "track", t.ID)
	p.Start(f.bgCtx, f.onPollUpdate, f.onPollTerminal)
	return nil
}

// onPollUpdate records job progress for display. Absent fields keep the
// previously reported values.
func (f *Flow) onPollUpdate(u poller.Update) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u.JobID != f.activeJobID {
		return
	}
	if u.HasProgress {
		f.progress = u.Progress
	}
	if u.Speed != "" {
		f.speed = u.Speed
	}
}

// onPollTerminal finishes the active job. A result tagged with a job id the
// flow no longer considers active is dropped: a late completion from a
// superseded job must never overwrite the currently bound source.
func (f *Flow) onPollTerminal(r poller.Result) {
	f.mu.Lock()
	if r.JobID != f.activeJobID {
		f.mu.Unlock()
		f.logger.Debug("ignoring stale job result", "job", r.JobID)
		return
	}
	f.activeJobID = ""
	f.activePoller = nil
	seq := f.playSeq
	t := f.pending

	if r.Err != nil {
		f.state = StateIdle
		f.mu.Unlock()
		f.notifier.Notify(notify.Error, "Download failed: %v", r.Err)
		return
	}

	if r.Duration > 0 {
		t.Duration = r.Duration
	}
	streamURL := f.client.StreamURL(r.JobID)

	// Synchronize the cursor when the track came from the playlist.
	if _, err := f.playlist.SetCurrent(t.ID); err == nil {
		go f.persistCurrent(t.ID)
	}

	f.boundTrack = &t
	f.state = StateBound
	entry := core.HistoryEntry{Track: t, PlayedAt: time.Now()}
	f.history.Append(entry.Track, entry.PlayedAt)
	f.mu.Unlock()

	if err := f.controller.BindSource(streamURL); err != nil {
		f.mu.Lock()
		if f.playSeq == seq {
			f.state = StateIdle
			f.boundTrack = nil
		}
		f.mu.Unlock()
		f.notifier.Notify(notify.Error, "Failed to bind stream: %v", err)
		return
	}

	// The bind ran outside the lock; a play intent that arrived meanwhile
	// owns the controller now, and this bind must not stick.
	f.mu.Lock()
	if f.playSeq != seq {
		f.mu.Unlock()
		f.controller.ReleaseSource(streamURL)
		f.logger.Debug("released superseded bind", "job", r.JobID)
		return
	}
	f.mu.Unlock()

	if t.Duration > 0 {
		f.controller.SetDuration(t.DurationTime())
	}
	if err := f.controller.Play(); err != nil {
		f.notifier.Notify(notify.Error, "Playback failed: %v", err)
		return
	}

	if f.store != nil {
		if err := f.store.Append(entry); err != nil {
			f.logger.Warn("history store append failed", "err", err)
		}
	}
	f.notifier.Notify(notify.Success, "Now playing: %q", t.Title)
}

// persistCurrent mirrors a cursor move to the server, best effort.
func (f *Flow) persistCurrent(trackID string) {
	if _, err := f.client.SetCurrent(f.bgCtx, trackID); err != nil {
		f.logger.Warn("failed to persist current track", "track", trackID, "err", err)
	}
}

// supersedeActiveLocked cancels the active poller and schedules best-effort
// cleanup of the abandoned job. Callers hold f.mu.
func (f *Flow) supersedeActiveLocked() {
	if f.activePoller != nil {
		f.activePoller.Cancel()
		f.activePoller = nil
	}
	if f.activeJobID != "" {
		jobID := f.activeJobID
		f.activeJobID = ""
		go f.cleanupJob(jobID)
	}
}

// cleanupJob releases a job's server-side resources. Failures are logged,
// never surfaced.
func (f *Flow) cleanupJob(jobID string) {
	if err := f.client.Cleanup(f.bgCtx, jobID); err != nil {
		f.logger.Warn("job cleanup failed", "job", jobID, "err", err)
	}
}

// Stop cancels any active job, releases it server-side, and resets the
// playback controller to a stopped, unbound state. Safe to call repeatedly.
func (f *Flow) Stop() {
	f.mu.Lock()
	f.playSeq++
	f.supersedeActiveLocked()
	f.state = StateIdle
	f.boundTrack = nil
	f.progress = 0
	f.speed = ""
	f.mu.Unlock()

	f.controller.Unbind()
}

// PlayCurrent resolves and starts the current playlist track. Invoked by
// the controller when Play is requested with no bound source.
func (f *Flow) PlayCurrent() {
	f.mu.Lock()
	t := f.playlist.Current()
	f.mu.Unlock()

	if t == nil {
		f.notifier.Notify(notify.Info, "Playlist is empty")
		return
	}
	if err := f.PlayTrack(f.bgCtx, *t); err != nil {
		f.logger.Error("failed to start current track", "err", err)
	}
}

// ToggleShuffle flips shuffled selection for Next.
func (f *Flow) ToggleShuffle() bool {
	f.mu.Lock()
	on := !f.playlist.Shuffled()
	f.playlist.SetShuffle(on)
	f.mu.Unlock()

	f.controller.SetShuffle(on)
	if on {
		f.notifier.Notify(notify.Info, "Shuffle enabled")
	} else {
		f.notifier.Notify(notify.Info, "Shuffle disabled")
	}
	return on
}

// ToggleRepeat flips wrap-around and repeat-in-place behavior.
func (f *Flow) ToggleRepeat() bool {
	f.mu.Lock()
	on := !f.playlist.Repeating()
	f.playlist.SetRepeat(on)
	f.mu.Unlock()

	f.controller.SetRepeat(on)
	if on {
		f.notifier.Notify(notify.Info, "Repeat enabled")
	} else {
		f.notifier.Notify(notify.Info, "Repeat disabled")
	}
	return on
}

// Controller returns the playback controller.
func (f *Flow) Controller() *player.Controller {
	return f.controller
}

// ActiveJobID returns the id of the job currently subject to polling, or
// empty when none is active.
func (f *Flow) ActiveJobID() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.activeJobID
}

// State returns the coordinator's lifecycle state.
func (f *Flow) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Snapshot is a read-only view of the coordinator for display layers.
type Snapshot struct {
	State         State
	SessionID     string
	CurrentTrack  *core.Track
	Player        core.PlayerState
	Progress      float64
	Speed         string
	QueuePosition int // 1-based, 0 when empty
	QueueTotal    int
	Tracks        []core.Track
	History       []core.HistoryEntry
	Shuffled      bool
	Repeating     bool
}

// Snapshot captures the current coordination state for rendering.
func (f *Flow) Snapshot() Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()

	s := Snapshot{
		State:      f.state,
		SessionID:  f.sessionID,
		Progress:   f.progress,
		Speed:      f.speed,
		QueueTotal: f.playlist.Len(),
		Tracks:     f.playlist.Tracks(),
		History:    f.history.Recent(0),
		Shuffled:   f.playlist.Shuffled(),
		Repeating:  f.playlist.Repeating(),
	}
	if f.playlist.CurrentIndex() >= 0 {
		s.QueuePosition = f.playlist.CurrentIndex() + 1
	}
	switch {
	case f.boundTrack != nil:
		t := *f.boundTrack
		s.CurrentTrack = &t
	case f.state == StateJobStarting || f.state == StateJobPolling:
		t := f.pending
		s.CurrentTrack = &t
	}
	s.Player = f.controller.State()
	return s
}
