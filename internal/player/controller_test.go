package player

import (
	"sync"
	"testing"
	"time"
)

// fakeDevice records calls and lets tests emit events.
type fakeDevice struct {
	mu      sync.Mutex
	loaded  []string
	loadErr error
	volume  float64
	seeked  []time.Duration

	playing bool
	stops   int
	pauses  int

	events chan Event
}

func newFakeDevice() *fakeDevice {
	return &fakeDevice{events: make(chan Event, 8)}
}

func (d *fakeDevice) Load(sourceURL string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.loadErr != nil {
		return d.loadErr
	}
	d.loaded = append(d.loaded, sourceURL)
	return nil
}

func (d *fakeDevice) failLoads(err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.loadErr = err
}

func (d *fakeDevice) Play() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.playing = true
	return nil
}

func (d *fakeDevice) Pause() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.playing = false
	d.pauses++
}

func (d *fakeDevice) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.playing = false
	d.stops++
}

func (d *fakeDevice) Seek(pos time.Duration) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.seeked = append(d.seeked, pos)
	return nil
}

func (d *fakeDevice) SetVolume(fraction float64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.volume = fraction
}

func (d *fakeDevice) Events() <-chan Event { return d.events }

func (d *fakeDevice) lastLoaded() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.loaded) == 0 {
		return ""
	}
	return d.loaded[len(d.loaded)-1]
}

// recordingCoordinator counts Advance/PlayCurrent invocations.
type recordingCoordinator struct {
	mu       sync.Mutex
	advances int
	plays    int
}

func (r *recordingCoordinator) Advance() {
	r.mu.Lock()
	r.advances++
	r.mu.Unlock()
}

func (r *recordingCoordinator) PlayCurrent() {
	r.mu.Lock()
	r.plays++
	r.mu.Unlock()
}

func (r *recordingCoordinator) counts() (int, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.advances, r.plays
}

func TestBindSourceStopsPriorPlayback(t *testing.T) {
	dev := newFakeDevice()
	c := NewController(dev)

	if err := c.BindSource("http://x/api/stream/a"); err != nil {
		t.Fatal(err)
	}
	if err := c.Play(); err != nil {
		t.Fatal(err)
	}
	if !c.State().IsPlaying {
		t.Error("IsPlaying = false after Play")
	}

	if err := c.BindSource("http://x/api/stream/b"); err != nil {
		t.Fatal(err)
	}
	if dev.stops != 1 {
		t.Errorf("stops = %d, want 1 (rebind stops prior playback)", dev.stops)
	}
	if dev.lastLoaded() != "http://x/api/stream/b" {
		t.Errorf("loaded = %q", dev.lastLoaded())
	}
	if c.State().IsPlaying {
		t.Error("IsPlaying should reset on rebind")
	}
}

func TestPlayWithNoSourceAsksCoordinator(t *testing.T) {
	dev := newFakeDevice()
	c := NewController(dev)
	coord := &recordingCoordinator{}
	c.SetCoordinator(coord)

	if err := c.Play(); err != nil {
		t.Fatalf("Play: %v", err)
	}
	if _, plays := coord.counts(); plays != 1 {
		t.Errorf("PlayCurrent calls = %d, want 1", plays)
	}
	if dev.playing {
		t.Error("device should not play directly without a source")
	}
}

func TestMuteRestoresRememberedVolume(t *testing.T) {
	dev := newFakeDevice()
	c := NewController(dev)

	c.SetVolume(37)
	c.ToggleMute()
	if got := c.State().Volume; got != 0 {
		t.Fatalf("Volume after mute = %d, want 0", got)
	}
	c.ToggleMute()
	if got := c.State().Volume; got != 37 {
		t.Errorf("Volume after unmute = %d, want 37", got)
	}
}

func TestMuteAfterZeroVolumeRestoresLastNonZero(t *testing.T) {
	dev := newFakeDevice()
	c := NewController(dev)

	c.SetVolume(55)
	c.SetVolume(0) // slider to zero; remembered stays 55
	c.ToggleMute()
	if got := c.State().Volume; got != 55 {
		t.Errorf("Volume = %d, want 55 (remembered non-zero)", got)
	}
}

func TestMuteWithNoRememberedVolumeUsesDefault(t *testing.T) {
	dev := newFakeDevice()
	c := NewController(dev)

	// preMute starts at the default; forcing it to zero exercises the
	// fixed fallback.
	c.mu.Lock()
	c.state.Volume = 0
	c.preMute = 0
	c.mu.Unlock()

	c.ToggleMute()
	if got := c.State().Volume; got != DefaultVolume {
		t.Errorf("Volume = %d, want %d", got, DefaultVolume)
	}
}

func TestSeekToClampsFraction(t *testing.T) {
	dev := newFakeDevice()
	c := NewController(dev)
	if err := c.BindSource("s"); err != nil {
		t.Fatal(err)
	}
	c.SetDuration(200 * time.Second)

	if err := c.SeekTo(0.5); err != nil {
		t.Fatal(err)
	}
	if got := dev.seeked[len(dev.seeked)-1]; got != 100*time.Second {
		t.Errorf("seek = %v, want 100s", got)
	}

	if err := c.SeekTo(1.7); err != nil {
		t.Fatal(err)
	}
	if got := dev.seeked[len(dev.seeked)-1]; got != 200*time.Second {
		t.Errorf("seek = %v, want clamp to 200s", got)
	}
}

func TestEndedWithRepeatReloadsSource(t *testing.T) {
	dev := newFakeDevice()
	c := NewController(dev)
	coord := &recordingCoordinator{}
	c.SetCoordinator(coord)
	if err := c.BindSource("s"); err != nil {
		t.Fatal(err)
	}
	c.SetRepeat(true)

	c.HandleEvent(Event{Type: EventEnded})

	if advances, _ := coord.counts(); advances != 0 {
		t.Errorf("advances = %d, want 0 under repeat", advances)
	}
	// The device has unloaded the file at end of stream, so repeat must load
	// it again rather than seek.
	if len(dev.loaded) != 2 || dev.loaded[1] != "s" {
		t.Errorf("loaded = %v, want the source reloaded", dev.loaded)
	}
	if !dev.playing {
		t.Error("device should resume playing")
	}
	s := c.State()
	if !s.IsPlaying || s.Position != 0 {
		t.Errorf("state = %+v, want playing from the start", s)
	}
}

func TestEndedWithRepeatReloadFailureAdvances(t *testing.T) {
	dev := newFakeDevice()
	c := NewController(dev)
	coord := &recordingCoordinator{}
	c.SetCoordinator(coord)
	if err := c.BindSource("s"); err != nil {
		t.Fatal(err)
	}
	c.SetRepeat(true)
	dev.failLoads(timeoutErr{})

	c.HandleEvent(Event{Type: EventEnded})

	if advances, _ := coord.counts(); advances != 1 {
		t.Errorf("advances = %d, want 1 when the repeat reload fails", advances)
	}
	if c.State().IsPlaying {
		t.Error("IsPlaying should be false after a failed repeat")
	}
}

func TestReleaseSourceMatchesBoundURL(t *testing.T) {
	dev := newFakeDevice()
	c := NewController(dev)
	if err := c.BindSource("http://x/api/stream/a"); err != nil {
		t.Fatal(err)
	}

	c.ReleaseSource("http://x/api/stream/b")
	if !c.HasSource() {
		t.Fatal("release of a different URL must not unbind")
	}

	c.ReleaseSource("http://x/api/stream/a")
	if c.HasSource() {
		t.Error("release of the bound URL should unbind")
	}
	if s := c.State(); s.IsPlaying || s.Position != 0 || s.Duration != 0 {
		t.Errorf("state = %+v after release", s)
	}
}

func TestEndedWithoutRepeatAdvances(t *testing.T) {
	dev := newFakeDevice()
	c := NewController(dev)
	coord := &recordingCoordinator{}
	c.SetCoordinator(coord)
	if err := c.BindSource("s"); err != nil {
		t.Fatal(err)
	}

	c.HandleEvent(Event{Type: EventEnded})

	if advances, _ := coord.counts(); advances != 1 {
		t.Errorf("advances = %d, want 1", advances)
	}
}

func TestDeviceErrorSkipsAfterDelay(t *testing.T) {
	dev := newFakeDevice()
	c := NewController(dev, WithSkipDelay(time.Millisecond))
	coord := &recordingCoordinator{}
	c.SetCoordinator(coord)

	c.HandleEvent(Event{Type: EventError, Err: timeoutErr{}})

	deadline := time.After(time.Second)
	for {
		if advances, _ := coord.counts(); advances == 1 {
			return
		}
		select {
		case <-deadline:
			t.Fatal("Advance was never invoked after device error")
		case <-time.After(5 * time.Millisecond):
		}
	}
}

type timeoutErr struct{}

func (timeoutErr) Error() string { return "decode failure" }

func TestTimeUpdateTracksPosition(t *testing.T) {
	dev := newFakeDevice()
	c := NewController(dev)

	c.HandleEvent(Event{Type: EventTimeUpdate, Position: 42 * time.Second, Duration: 180 * time.Second})

	s := c.State()
	if s.Position != 42*time.Second || s.Duration != 180*time.Second {
		t.Errorf("state = %+v", s)
	}
	if pct := s.ProgressPercent(); pct < 23 || pct > 24 {
		t.Errorf("ProgressPercent = %v, want ~23.3", pct)
	}
}

func TestUnbind(t *testing.T) {
	dev := newFakeDevice()
	c := NewController(dev)
	if err := c.BindSource("s"); err != nil {
		t.Fatal(err)
	}
	_ = c.Play()

	c.Unbind()

	if c.HasSource() {
		t.Error("HasSource = true after Unbind")
	}
	s := c.State()
	if s.IsPlaying || s.Position != 0 || s.Duration != 0 {
		t.Errorf("state = %+v after Unbind", s)
	}
}
