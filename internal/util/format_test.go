package util

import "testing"

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		seconds int
		want    string
	}{
		{0, "0:00"},
		{-7, "0:00"},
		{59, "0:59"},
		{60, "1:00"},
		{185, "3:05"},
		{3600, "1:00:00"},
		{3725, "1:02:05"},
	}
	for _, tt := range tests {
		if got := FormatDuration(tt.seconds); got != tt.want {
			t.Errorf("FormatDuration(%d) = %q, want %q", tt.seconds, got, tt.want)
		}
	}
}

func TestTruncateString(t *testing.T) {
	tests := []struct {
		in     string
		maxLen int
		want   string
	}{
		{"short", 10, "short"},
		{"a longer title here", 10, "a longe..."},
		{"abc", 2, "ab"},
		{"héllo wörld", 8, "héllo..."},
	}
	for _, tt := range tests {
		if got := TruncateString(tt.in, tt.maxLen); got != tt.want {
			t.Errorf("TruncateString(%q, %d) = %q, want %q", tt.in, tt.maxLen, got, tt.want)
		}
	}
}

func TestFormatProgress(t *testing.T) {
	if got := FormatProgress(50, 4); got != "━━──" {
		t.Errorf("FormatProgress(50, 4) = %q", got)
	}
	if got := FormatProgress(150, 4); got != "━━━━" {
		t.Errorf("FormatProgress over 100 = %q, want full bar", got)
	}
	if got := FormatProgress(-5, 4); got != "────" {
		t.Errorf("FormatProgress under 0 = %q, want empty bar", got)
	}
}
