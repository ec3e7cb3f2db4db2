package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pcahill/strum/internal/core"
	"github.com/pcahill/strum/internal/errors"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(srv.URL), srv
}

func TestSearch(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/search" {
			t.Errorf("path = %q, want /api/search", r.URL.Path)
		}
		if got := r.URL.Query().Get("q"); got != "test query" {
			t.Errorf("q = %q, want %q", got, "test query")
		}
		w.Write([]byte(`{"results":[
			{"id":"abc","title":"First","uploader":"Someone","duration":120,"url":"https://youtu.be/abc"},
			{"id":"def","title":"Second","duration":90,"url":"https://youtu.be/def"}
		]}`))
	}))

	tracks, err := c.Search(context.Background(), "test query")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(tracks) != 2 {
		t.Fatalf("got %d tracks, want 2", len(tracks))
	}
	if tracks[0].ID != "abc" || tracks[0].Title != "First" || tracks[0].Duration != 120 {
		t.Errorf("first track = %+v", tracks[0])
	}
}

func TestErrorBodyOverridesStatus(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// HTTP 200 with an error payload must still fail.
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"error":"something broke"}`))
	}))

	_, err := c.Search(context.Background(), "x")
	if err == nil {
		t.Fatal("expected error for error-bearing body")
	}
	var remote *RemoteError
	if !errors.As(err, &remote) {
		t.Fatalf("err = %T %v, want RemoteError", err, err)
	}
	if remote.Message != "something broke" {
		t.Errorf("Message = %q", remote.Message)
	}
}

func TestHTTPErrorWithoutBody(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusBadGateway)
	}))

	_, err := c.Status(context.Background(), "dl_1")
	var remote *RemoteError
	if !errors.As(err, &remote) {
		t.Fatalf("err = %T %v, want RemoteError", err, err)
	}
	if remote.StatusCode != http.StatusBadGateway {
		t.Errorf("StatusCode = %d, want 502", remote.StatusCode)
	}
}

func TestNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := New(url)
	_, err := c.Search(context.Background(), "x")
	if !errors.Is(err, errors.ErrNetworkError) {
		t.Errorf("err = %v, want ErrNetworkError", err)
	}
}

func TestStartDownload(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/download" {
			t.Errorf("%s %s, want POST /api/download", r.Method, r.URL.Path)
		}
		w.Write([]byte(`{"download_id":"dl_42","status":"queued"}`))
	}))

	id, err := c.StartDownload(context.Background(), "abc", "https://youtu.be/abc", "")
	if err != nil {
		t.Fatalf("StartDownload: %v", err)
	}
	if id != "dl_42" {
		t.Errorf("id = %q, want dl_42", id)
	}
}

func TestStatusProgressParsing(t *testing.T) {
	tests := []struct {
		progress string
		want     float64
		ok       bool
	}{
		{"42.5%", 42.5, true},
		{" 100% ", 100, true},
		{"", 0, false},
		{"N/A", 0, false},
	}

	for _, tt := range tests {
		s := &StatusResponse{Progress: tt.progress}
		got, ok := s.ProgressPercent()
		if got != tt.want || ok != tt.ok {
			t.Errorf("ProgressPercent(%q) = %v,%v want %v,%v", tt.progress, got, ok, tt.want, tt.ok)
		}
	}
}

func TestStreamURL(t *testing.T) {
	c := New("http://localhost:5000/")
	if got := c.StreamURL("dl_7"); got != "http://localhost:5000/api/stream/dl_7" {
		t.Errorf("StreamURL = %q", got)
	}
}

func TestPlaylistEndpoints(t *testing.T) {
	var gotPath, gotMethod string
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath, gotMethod = r.URL.Path, r.Method
		w.Write([]byte(`{"success":true,"current_index":1,"track":{"id":"b","title":"B"}}`))
	}))

	ctx := context.Background()

	resp, err := c.NextTrack(ctx)
	if err != nil {
		t.Fatalf("NextTrack: %v", err)
	}
	if gotPath != "/api/playlist/next" || gotMethod != http.MethodPost {
		t.Errorf("%s %s, want POST /api/playlist/next", gotMethod, gotPath)
	}
	if resp.CurrentIndex == nil || *resp.CurrentIndex != 1 {
		t.Errorf("CurrentIndex = %v, want 1", resp.CurrentIndex)
	}
	if resp.Track == nil || resp.Track.ID != "b" {
		t.Errorf("Track = %v, want b", resp.Track)
	}

	if _, err := c.RemoveTrack(ctx, "b"); err != nil {
		t.Fatalf("RemoveTrack: %v", err)
	}
	if gotPath != "/api/playlist" || gotMethod != http.MethodDelete {
		t.Errorf("%s %s, want DELETE /api/playlist", gotMethod, gotPath)
	}

	if _, err := c.AddTrack(ctx, core.Track{ID: "z"}); err != nil {
		t.Fatalf("AddTrack: %v", err)
	}
	if gotPath != "/api/playlist" || gotMethod != http.MethodPost {
		t.Errorf("%s %s, want POST /api/playlist", gotMethod, gotPath)
	}
}

func TestPlaylistUnsuccessfulResponse(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":false,"message":"end of playlist"}`))
	}))

	_, err := c.NextTrack(context.Background())
	if err == nil {
		t.Fatal("expected error for success=false")
	}
}

func TestExtractVideoID(t *testing.T) {
	tests := []struct {
		url     string
		want    string
		wantErr bool
	}{
		{"https://www.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ", false},
		{"https://youtu.be/dQw4w9WgXcQ", "dQw4w9WgXcQ", false},
		{"https://www.youtube.com/embed/dQw4w9WgXcQ", "dQw4w9WgXcQ", false},
		{"https://example.com/watch?v=zzz", "", true},
		{"not a url", "", true},
	}

	for _, tt := range tests {
		got, err := ExtractVideoID(tt.url)
		if (err != nil) != tt.wantErr {
			t.Errorf("ExtractVideoID(%q) err = %v, wantErr %v", tt.url, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("ExtractVideoID(%q) = %q, want %q", tt.url, got, tt.want)
		}
	}
}
