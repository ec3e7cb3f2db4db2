package core

import (
	"fmt"
	"testing"
	"time"
)

func TestHistoryNewestFirst(t *testing.T) {
	h := NewHistory(10)
	base := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)

	h.Append(Track{ID: "a"}, base)
	h.Append(Track{ID: "b"}, base.Add(time.Minute))

	recent := h.Recent(0)
	if len(recent) != 2 {
		t.Fatalf("Recent = %d entries, want 2", len(recent))
	}
	if recent[0].Track.ID != "b" || recent[1].Track.ID != "a" {
		t.Errorf("order = [%s %s], want [b a]", recent[0].Track.ID, recent[1].Track.ID)
	}
}

func TestHistoryCapped(t *testing.T) {
	h := NewHistory(3)
	for i := 0; i < 10; i++ {
		h.Append(Track{ID: fmt.Sprintf("t%d", i)}, time.Now())
	}
	if h.Len() != 3 {
		t.Errorf("Len = %d, want 3", h.Len())
	}
	if got := h.Recent(0)[0].Track.ID; got != "t9" {
		t.Errorf("newest = %q, want t9", got)
	}
}

func TestHistoryRecentWindow(t *testing.T) {
	h := NewHistory(10)
	for i := 0; i < 5; i++ {
		h.Append(Track{ID: fmt.Sprintf("t%d", i)}, time.Now())
	}
	if got := len(h.Recent(2)); got != 2 {
		t.Errorf("Recent(2) = %d entries, want 2", got)
	}
	if got := len(h.Recent(100)); got != 5 {
		t.Errorf("Recent(100) = %d entries, want 5", got)
	}
}
