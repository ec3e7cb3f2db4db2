package flow

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/pcahill/strum/internal/api"
	"github.com/pcahill/strum/internal/core"
	"github.com/pcahill/strum/internal/errors"
	"github.com/pcahill/strum/internal/notify"
	"github.com/pcahill/strum/internal/player"
	"github.com/pcahill/strum/internal/poller"
)

// fakeDevice records controller commands without producing audio. When
// loadGate is set, each Load blocks until the test closes the channel it
// receives from the gate.
type fakeDevice struct {
	mu       sync.Mutex
	source   string
	events   chan player.Event
	loadGate chan chan struct{}
}

func newFakeDevice() *fakeDevice {
	return &fakeDevice{events: make(chan player.Event, 16)}
}

func (d *fakeDevice) Load(sourceURL string) error {
	if d.loadGate != nil {
		release := make(chan struct{})
		d.loadGate <- release
		<-release
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.source = sourceURL
	return nil
}

func (d *fakeDevice) Play() error                 { return nil }
func (d *fakeDevice) Pause()                      {}
func (d *fakeDevice) Stop()                       {}
func (d *fakeDevice) Seek(time.Duration) error    { return nil }
func (d *fakeDevice) SetVolume(float64)           {}
func (d *fakeDevice) Events() <-chan player.Event { return d.events }

// mediaServer is a scriptable stand-in for the remote service.
type mediaServer struct {
	mu       sync.Mutex
	nextJob  int
	statuses map[string]map[string]interface{} // job id -> status body
	cleaned  []string
	playlist struct {
		fail bool
	}
	srv *httptest.Server
}

func newMediaServer(t *testing.T) *mediaServer {
	t.Helper()
	m := &mediaServer{statuses: make(map[string]map[string]interface{})}
	mux := http.NewServeMux()

	mux.HandleFunc("/api/download", func(w http.ResponseWriter, r *http.Request) {
		m.mu.Lock()
		m.nextJob++
		id := fmt.Sprintf("job-%d", m.nextJob)
		if _, ok := m.statuses[id]; !ok {
			m.statuses[id] = map[string]interface{}{"status": "pending"}
		}
		m.mu.Unlock()
		json.NewEncoder(w).Encode(map[string]string{"download_id": id})
	})
	mux.HandleFunc("/api/status/", func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimPrefix(r.URL.Path, "/api/status/")
		m.mu.Lock()
		body, ok := m.statuses[id]
		m.mu.Unlock()
		if !ok {
			http.NotFound(w, r)
			return
		}
		json.NewEncoder(w).Encode(body)
	})
	mux.HandleFunc("/api/cleanup", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			DownloadID string `json:"download_id"`
		}
		json.NewDecoder(r.Body).Decode(&req)
		m.mu.Lock()
		m.cleaned = append(m.cleaned, req.DownloadID)
		m.mu.Unlock()
		json.NewEncoder(w).Encode(map[string]bool{"success": true})
	})
	playlistOK := func(w http.ResponseWriter, r *http.Request) {
		m.mu.Lock()
		fail := m.playlist.fail
		m.mu.Unlock()
		if fail {
			json.NewEncoder(w).Encode(map[string]interface{}{
				"success": false, "message": "storage unavailable",
			})
			return
		}
		json.NewEncoder(w).Encode(map[string]interface{}{"success": true})
	}
	mux.HandleFunc("/api/playlist", playlistOK)
	mux.HandleFunc("/api/playlist/", playlistOK)

	m.srv = httptest.NewServer(mux)
	t.Cleanup(m.srv.Close)
	return m
}

func (m *mediaServer) setStatus(jobID string, body map[string]interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.statuses[jobID] = body
}

func (m *mediaServer) cleanedJobs() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.cleaned))
	copy(out, m.cleaned)
	return out
}

func (m *mediaServer) failPlaylist(fail bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.playlist.fail = fail
}

// recordingNotifier captures notices for assertions.
type recordingNotifier struct {
	mu      sync.Mutex
	entries []notify.Notification
}

func (r *recordingNotifier) Notify(level notify.Level, format string, args ...interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, notify.Notification{
		Level:   level,
		Message: fmt.Sprintf(format, args...),
	})
}

func (r *recordingNotifier) byLevel(level notify.Level) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, n := range r.entries {
		if n.Level == level {
			out = append(out, n.Message)
		}
	}
	return out
}

func newTestFlow(t *testing.T, m *mediaServer) (*Flow, *fakeDevice) {
	t.Helper()
	device := newFakeDevice()
	controller := player.NewController(device)
	client := api.New(m.srv.URL)
	f := New(client, controller, WithPollInterval(5*time.Millisecond))
	t.Cleanup(f.Stop)
	return f, device
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func track(id, title string) core.Track {
	return core.Track{ID: id, Title: title, SourceURL: "https://youtube.com/watch?v=" + id}
}

func TestPlayTrackBindsOnCompletion(t *testing.T) {
	m := newMediaServer(t)
	f, _ := newTestFlow(t, m)

	m.setStatus("job-1", map[string]interface{}{
		"status": "downloading", "progress": "40%", "speed": "1.2MiB/s",
	})
	if err := f.PlayTrack(context.Background(), track("abc123def45", "First")); err != nil {
		t.Fatalf("PlayTrack: %v", err)
	}
	waitFor(t, func() bool {
		snap := f.Snapshot()
		return snap.Progress == 40 && snap.Speed == "1.2MiB/s"
	})

	m.setStatus("job-1", map[string]interface{}{
		"status": "completed", "title": "First", "duration": 180,
	})
	waitFor(t, func() bool { return f.State() == StateBound })

	want := m.srv.URL + "/api/stream/job-1"
	if got := f.Controller().SourceURL(); got != want {
		t.Errorf("bound source = %q, want %q", got, want)
	}
	snap := f.Snapshot()
	if snap.CurrentTrack == nil || snap.CurrentTrack.Duration != 180 {
		t.Errorf("bound track should carry the reported duration, got %+v", snap.CurrentTrack)
	}
	if len(snap.History) != 1 || snap.History[0].Track.ID != "abc123def45" {
		t.Errorf("history = %+v, want the played track", snap.History)
	}
}

func TestNewPlaySupersedesActiveJob(t *testing.T) {
	m := newMediaServer(t)
	f, _ := newTestFlow(t, m)

	m.setStatus("job-1", map[string]interface{}{"status": "downloading", "progress": "10%"})
	if err := f.PlayTrack(context.Background(), track("aaaaaaaaaaa", "First")); err != nil {
		t.Fatalf("PlayTrack: %v", err)
	}
	waitFor(t, func() bool { return f.ActiveJobID() == "job-1" })

	m.setStatus("job-2", map[string]interface{}{
		"status": "completed", "title": "Second", "duration": 90,
	})
	if err := f.PlayTrack(context.Background(), track("bbbbbbbbbbb", "Second")); err != nil {
		t.Fatalf("PlayTrack: %v", err)
	}
	waitFor(t, func() bool { return f.State() == StateBound })

	if got, want := f.Controller().SourceURL(), m.srv.URL+"/api/stream/job-2"; got != want {
		t.Errorf("bound source = %q, want %q", got, want)
	}
	waitFor(t, func() bool {
		for _, id := range m.cleanedJobs() {
			if id == "job-1" {
				return true
			}
		}
		return false
	})
}

func TestStaleResultDoesNotOverwriteBinding(t *testing.T) {
	m := newMediaServer(t)
	f, _ := newTestFlow(t, m)

	m.setStatus("job-1", map[string]interface{}{
		"status": "completed", "title": "Current", "duration": 60,
	})
	if err := f.PlayTrack(context.Background(), track("ccccccccccc", "Current")); err != nil {
		t.Fatalf("PlayTrack: %v", err)
	}
	waitFor(t, func() bool { return f.State() == StateBound })
	bound := f.Controller().SourceURL()

	// A completion from a job the flow no longer tracks must be dropped.
	f.onPollTerminal(poller.Result{
		JobID: "job-stale", Success: true, Title: "Stale", Duration: 999,
	})

	if got := f.Controller().SourceURL(); got != bound {
		t.Errorf("stale result rebound source to %q", got)
	}
	if snap := f.Snapshot(); snap.CurrentTrack == nil || snap.CurrentTrack.Title != "Current" {
		t.Errorf("stale result replaced the current track: %+v", snap.CurrentTrack)
	}
}

func TestStopDuringBindDiscardsTheBind(t *testing.T) {
	m := newMediaServer(t)
	device := newFakeDevice()
	device.loadGate = make(chan chan struct{})
	controller := player.NewController(device)
	rec := &recordingNotifier{}
	f := New(api.New(m.srv.URL), controller,
		WithPollInterval(5*time.Millisecond), WithNotifier(rec))
	t.Cleanup(f.Stop)

	m.setStatus("job-1", map[string]interface{}{
		"status": "completed", "title": "Slow", "duration": 60,
	})
	if err := f.PlayTrack(context.Background(), track("aaaaaaaaaaa", "Slow")); err != nil {
		t.Fatalf("PlayTrack: %v", err)
	}

	// The completion handler is now blocked inside the device load.
	release := <-device.loadGate

	stopped := make(chan struct{})
	go func() { f.Stop(); close(stopped) }()
	waitFor(t, func() bool { return f.State() == StateIdle })

	close(release)
	<-stopped

	waitFor(t, func() bool { return !f.Controller().HasSource() })
	time.Sleep(20 * time.Millisecond)

	if f.Controller().HasSource() {
		t.Error("a bind superseded mid-flight must not stick")
	}
	if f.State() != StateIdle {
		t.Errorf("state = %v, want idle after stop", f.State())
	}
	if msgs := rec.byLevel(notify.Success); len(msgs) != 0 {
		t.Errorf("superseded bind still announced playback: %v", msgs)
	}
}

func TestJobFailureReturnsToIdle(t *testing.T) {
	m := newMediaServer(t)
	f, _ := newTestFlow(t, m)

	m.setStatus("job-1", map[string]interface{}{
		"status": "error", "error": "video unavailable",
	})
	if err := f.PlayTrack(context.Background(), track("ddddddddddd", "Broken")); err != nil {
		t.Fatalf("PlayTrack: %v", err)
	}
	waitFor(t, func() bool { return f.State() == StateIdle })

	if f.Controller().HasSource() {
		t.Error("failed job must not bind a source")
	}
	if f.ActiveJobID() != "" {
		t.Errorf("active job = %q after terminal failure", f.ActiveJobID())
	}
}

func TestAddTrackRollsBackOnRemoteFailure(t *testing.T) {
	m := newMediaServer(t)
	f, _ := newTestFlow(t, m)

	if err := f.AddTrack(context.Background(), track("aaaaaaaaaaa", "Kept")); err != nil {
		t.Fatalf("AddTrack: %v", err)
	}

	m.failPlaylist(true)
	err := f.AddTrack(context.Background(), track("bbbbbbbbbbb", "Rejected"))
	if err == nil {
		t.Fatal("expected remote failure")
	}

	snap := f.Snapshot()
	if snap.QueueTotal != 1 || snap.Tracks[0].Title != "Kept" {
		t.Errorf("playlist after rollback = %+v, want only the first track", snap.Tracks)
	}
}

func TestRemoveTrackRollsBackOnRemoteFailure(t *testing.T) {
	m := newMediaServer(t)
	f, _ := newTestFlow(t, m)

	for _, tr := range []core.Track{track("aaaaaaaaaaa", "A"), track("bbbbbbbbbbb", "B")} {
		if err := f.AddTrack(context.Background(), tr); err != nil {
			t.Fatalf("AddTrack: %v", err)
		}
	}

	m.failPlaylist(true)
	if err := f.RemoveTrack(context.Background(), "aaaaaaaaaaa"); err == nil {
		t.Fatal("expected remote failure")
	}
	if snap := f.Snapshot(); snap.QueueTotal != 2 {
		t.Errorf("queue total = %d after rollback, want 2", snap.QueueTotal)
	}
}

func TestNextAtEndOfPlaylistStopsQuietly(t *testing.T) {
	m := newMediaServer(t)
	f, _ := newTestFlow(t, m)

	if err := f.AddTrack(context.Background(), track("aaaaaaaaaaa", "Only")); err != nil {
		t.Fatalf("AddTrack: %v", err)
	}

	if err := f.Next(context.Background()); err != nil {
		t.Fatalf("Next at playlist end should not error, got %v", err)
	}
	if f.State() != StateIdle {
		t.Errorf("state = %v, want idle after end of playlist", f.State())
	}
	if f.Controller().HasSource() {
		t.Error("end of playlist must unbind the source")
	}
}

func TestSearchRejectsShortQueries(t *testing.T) {
	m := newMediaServer(t)
	f, _ := newTestFlow(t, m)

	if _, err := f.Search(context.Background(), " a "); !errors.Is(err, errors.ErrInvalidQuery) {
		t.Errorf("err = %v, want ErrInvalidQuery", err)
	}
}

func TestResolveURLRejectsUnrecognizedURLs(t *testing.T) {
	m := newMediaServer(t)
	f, _ := newTestFlow(t, m)

	if _, err := f.ResolveURL(context.Background(), "https://example.com/nope"); !errors.Is(err, errors.ErrInvalidURL) {
		t.Errorf("err = %v, want ErrInvalidURL", err)
	}
}

func TestTrackEndAdvancesToNext(t *testing.T) {
	m := newMediaServer(t)
	f, device := newTestFlow(t, m)

	for _, tr := range []core.Track{track("aaaaaaaaaaa", "First"), track("bbbbbbbbbbb", "Second")} {
		if err := f.AddTrack(context.Background(), tr); err != nil {
			t.Fatalf("AddTrack: %v", err)
		}
	}

	m.setStatus("job-1", map[string]interface{}{"status": "completed", "title": "First", "duration": 5})
	m.setStatus("job-2", map[string]interface{}{"status": "completed", "title": "Second", "duration": 5})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go f.Controller().Run(ctx)

	f.PlayCurrent()
	waitFor(t, func() bool {
		return f.Controller().SourceURL() == m.srv.URL+"/api/stream/job-1"
	})

	device.events <- player.Event{Type: player.EventEnded}
	waitFor(t, func() bool {
		return f.Controller().SourceURL() == m.srv.URL+"/api/stream/job-2"
	})

	if snap := f.Snapshot(); snap.QueuePosition != 2 {
		t.Errorf("queue position = %d, want 2 after advance", snap.QueuePosition)
	}
}
