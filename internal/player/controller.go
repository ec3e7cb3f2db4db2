// Package player owns the audio output resource and the playback runtime
// state, translating device events into the next domain action.
package player

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/pcahill/strum/internal/core"
	"github.com/pcahill/strum/internal/errors"
	"github.com/pcahill/strum/internal/notify"
)

const (
	// DefaultVolume is restored by ToggleMute when no non-zero volume was
	// ever recorded.
	DefaultVolume = 80

	// errorSkipDelay spaces out advance attempts when a source fails to
	// play, so one bad track does not burn through the playlist instantly.
	errorSkipDelay = time.Second
)

// Coordinator is the slice of the resolution flow the controller calls back
// into. Advance starts the next track per repeat/shuffle policy; PlayCurrent
// resolves the current playlist track when Play is invoked with no source.
type Coordinator interface {
	Advance()
	PlayCurrent()
}

// Controller exposes play/pause/stop/seek/volume/mute over a single Device
// and consumes the device's events to drive playback transitions.
type Controller struct {
	device    Device
	logger    *log.Logger
	notifier  notify.Notifier
	skipDelay time.Duration

	mu        sync.Mutex
	coord     Coordinator
	state     core.PlayerState
	sourceURL string
	preMute   int
}

// Option configures a Controller.
type ControllerOption func(*Controller)

// WithLogger attaches a structured logger.
func WithLogger(logger *log.Logger) ControllerOption {
	return func(c *Controller) { c.logger = logger }
}

// WithNotifier attaches the user-facing notification channel.
func WithNotifier(n notify.Notifier) ControllerOption {
	return func(c *Controller) { c.notifier = n }
}

// WithSkipDelay overrides the delay before skipping a failed source.
func WithSkipDelay(d time.Duration) ControllerOption {
	return func(c *Controller) { c.skipDelay = d }
}

// NewController creates a controller over the given device.
func NewController(device Device, opts ...ControllerOption) *Controller {
	c := &Controller{
		device:    device,
		logger:    log.New(io.Discard),
		notifier:  notify.Discard{},
		skipDelay: errorSkipDelay,
		state:     core.PlayerState{Volume: DefaultVolume},
		preMute:   DefaultVolume,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.device.SetVolume(float64(c.state.Volume) / 100)
	return c
}

// SetCoordinator wires the resolution flow in. Must be called before events
// can trigger an advance.
func (c *Controller) SetCoordinator(coord Coordinator) {
	c.mu.Lock()
	c.coord = coord
	c.mu.Unlock()
}

// Run consumes device events until the context is cancelled. It is the only
// reader of the device's event stream.
func (c *Controller) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-c.device.Events():
			if !ok {
				return
			}
			c.HandleEvent(ev)
		}
	}
}

// HandleEvent applies one device event to the playback state machine.
// Exposed so tests can drive transitions without a live event stream.
func (c *Controller) HandleEvent(ev Event) {
	switch ev.Type {
	case EventTimeUpdate:
		c.mu.Lock()
		c.state.Position = ev.Position
		if ev.Duration > 0 {
			c.state.Duration = ev.Duration
		}
		c.mu.Unlock()

	case EventEnded:
		c.mu.Lock()
		repeating := c.state.IsRepeating
		src := c.sourceURL
		coord := c.coord
		c.mu.Unlock()

		if repeating && src != "" {
			// Devices unload the source at end of file (mpv drops to idle
			// after eof), so repeat reloads it rather than seeking a player
			// with nothing loaded.
			if err := c.repeatSource(src); err != nil {
				c.logger.Warn("repeat restart failed", "err", err)
			} else {
				return
			}
		}

		c.mu.Lock()
		c.state.IsPlaying = false
		c.mu.Unlock()
		if coord != nil {
			coord.Advance()
		}

	case EventError:
		c.mu.Lock()
		c.state.IsPlaying = false
		coord := c.coord
		c.mu.Unlock()

		c.logger.Error("playback device error", "err", ev.Err)
		c.notifier.Notify(notify.Error, "Error playing audio. Trying next track...")
		if coord != nil {
			// Skip-bad-track recovery, not a fatal condition.
			time.AfterFunc(c.skipDelay, coord.Advance)
		}
	}
}

// repeatSource reloads the just-finished source and resumes playback. A
// failure leaves the caller to advance instead.
func (c *Controller) repeatSource(src string) error {
	if err := c.device.Load(src); err != nil {
		return err
	}
	if err := c.device.Play(); err != nil {
		return err
	}
	c.mu.Lock()
	c.state.Position = 0
	c.state.IsPlaying = true
	c.mu.Unlock()
	return nil
}

// BindSource replaces the bound playback source. Any in-progress playback is
// stopped first.
func (c *Controller) BindSource(sourceURL string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.sourceURL != "" {
		c.device.Stop()
	}
	if err := c.device.Load(sourceURL); err != nil {
		return err
	}
	c.sourceURL = sourceURL
	c.state.Position = 0
	c.state.IsPlaying = false
	return nil
}

// Play starts or resumes playback. With no bound source and a non-empty
// playlist, the current playlist track is resolved and started instead.
func (c *Controller) Play() error {
	c.mu.Lock()
	if c.sourceURL == "" {
		coord := c.coord
		c.mu.Unlock()
		if coord == nil {
			return errors.ErrNoSource
		}
		coord.PlayCurrent()
		return nil
	}
	err := c.device.Play()
	if err == nil {
		c.state.IsPlaying = true
	}
	c.mu.Unlock()
	return err
}

// Pause pauses playback.
func (c *Controller) Pause() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.device.Pause()
	c.state.IsPlaying = false
}

// Stop halts playback and rewinds to the start of the source.
func (c *Controller) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.device.Stop()
	c.state.IsPlaying = false
	c.state.Position = 0
}

// Unbind stops playback and drops the bound source entirely.
func (c *Controller) Unbind() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.device.Stop()
	c.sourceURL = ""
	c.state.IsPlaying = false
	c.state.Position = 0
	c.state.Duration = 0
}

// ReleaseSource drops the bound source only when it is still the given URL.
// A coordinator uses this to discard a bind that lost a supersede race
// without disturbing a newer binding.
func (c *Controller) ReleaseSource(sourceURL string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sourceURL != sourceURL {
		return
	}
	c.device.Stop()
	c.sourceURL = ""
	c.state.IsPlaying = false
	c.state.Position = 0
	c.state.Duration = 0
}

// SeekTo seeks to a fraction of the source duration, clamped to [0,1].
func (c *Controller) SeekTo(fraction float64) error {
	if fraction < 0 {
		fraction = 0
	} else if fraction > 1 {
		fraction = 1
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sourceURL == "" {
		return errors.ErrNoSource
	}
	pos := time.Duration(float64(c.state.Duration) * fraction)
	if err := c.device.Seek(pos); err != nil {
		return err
	}
	c.state.Position = pos
	return nil
}

// SetVolume sets the output volume, clamped to 0-100. Non-zero values are
// remembered for ToggleMute.
func (c *Controller) SetVolume(percent int) {
	if percent < 0 {
		percent = 0
	} else if percent > 100 {
		percent = 100
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if percent > 0 {
		c.preMute = percent
	}
	c.state.Volume = percent
	c.device.SetVolume(float64(percent) / 100)
}

// ToggleMute mutes, or restores the last non-zero volume. A remembered
// volume of zero falls back to DefaultVolume.
func (c *Controller) ToggleMute() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state.Volume > 0 {
		c.preMute = c.state.Volume
		c.state.Volume = 0
	} else {
		restore := c.preMute
		if restore == 0 {
			restore = DefaultVolume
		}
		c.state.Volume = restore
	}
	c.device.SetVolume(float64(c.state.Volume) / 100)
}

// SetRepeat toggles repeat-in-place on track end.
func (c *Controller) SetRepeat(on bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.IsRepeating = on
}

// SetShuffle records the shuffle flag in the runtime state. Selection order
// itself is the playlist cursor's concern.
func (c *Controller) SetShuffle(on bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.IsShuffled = on
}

// SetDuration records the authoritative source duration, reported by the
// server on job completion.
func (c *Controller) SetDuration(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.Duration = d
}

// State returns a snapshot of the playback runtime state.
func (c *Controller) State() core.PlayerState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// HasSource reports whether a playback source is currently bound.
func (c *Controller) HasSource() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sourceURL != ""
}

// SourceURL returns the currently bound source URL, or empty.
func (c *Controller) SourceURL() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sourceURL
}
