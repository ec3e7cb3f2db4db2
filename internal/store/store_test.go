package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/pcahill/strum/internal/core"
)

func openTestStore(t *testing.T) *HistoryStore {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func entry(id string, playedAt time.Time) core.HistoryEntry {
	return core.HistoryEntry{
		Track:    core.Track{ID: id, Title: "Track " + id, Duration: 120},
		PlayedAt: playedAt,
	}
}

func TestAppendAndRecent(t *testing.T) {
	s := openTestStore(t)

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	for i, id := range []string{"aaa", "bbb", "ccc"} {
		if err := s.Append(entry(id, base.Add(time.Duration(i)*time.Minute))); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}

	got, err := s.Recent(0)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}
	for i, want := range []string{"ccc", "bbb", "aaa"} {
		if got[i].Track.ID != want {
			t.Errorf("entry %d = %q, want %q (newest first)", i, got[i].Track.ID, want)
		}
	}
	if got[0].Track.Title != "Track ccc" || got[0].Track.Duration != 120 {
		t.Errorf("track fields not round-tripped: %+v", got[0].Track)
	}
}

func TestRecentLimit(t *testing.T) {
	s := openTestStore(t)

	base := time.Now().UTC().Truncate(time.Second)
	for i := 0; i < 5; i++ {
		if err := s.Append(entry(string(rune('a'+i)), base.Add(time.Duration(i)*time.Second))); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}

	got, err := s.Recent(2)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("len = %d, want 2", len(got))
	}
}

func TestPruneKeepsNewest(t *testing.T) {
	s := openTestStore(t)

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 10; i++ {
		if err := s.Append(entry(string(rune('a'+i)), base.Add(time.Duration(i)*time.Minute))); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}

	if err := s.Prune(3); err != nil {
		t.Fatalf("Prune: %v", err)
	}
	n, err := s.Count()
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if n != 3 {
		t.Fatalf("count = %d after prune, want 3", n)
	}

	got, err := s.Recent(0)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if got[0].Track.ID != "j" || got[2].Track.ID != "h" {
		t.Errorf("prune kept wrong entries: %+v", got)
	}
}

func TestPruneDisabledKeepsAll(t *testing.T) {
	s := openTestStore(t)

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		if err := s.Append(entry(string(rune('a'+i)), base.Add(time.Duration(i)*time.Minute))); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}

	// Sessions prune on open with the configured limit; a limit of zero
	// means unbounded history and must not delete anything.
	if err := s.Prune(0); err != nil {
		t.Fatalf("Prune: %v", err)
	}
	n, err := s.Count()
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if n != 5 {
		t.Fatalf("count = %d after prune with no limit, want 5", n)
	}
}

func TestRecentOnEmptyStore(t *testing.T) {
	s := openTestStore(t)

	got, err := s.Recent(10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("len = %d on empty store, want 0", len(got))
	}
}
