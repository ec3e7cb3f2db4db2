package core

import "time"

// PlayerState is the playback runtime state owned by the playback
// controller. Other components read it through snapshots and never mutate
// it directly.
type PlayerState struct {
	IsPlaying   bool          `json:"is_playing"`
	IsShuffled  bool          `json:"is_shuffled"`
	IsRepeating bool          `json:"is_repeating"`
	Volume      int           `json:"volume"` // 0-100
	Position    time.Duration `json:"position"`
	Duration    time.Duration `json:"duration"`
}

// ProgressPercent returns playback progress as a percentage (0-100).
func (s *PlayerState) ProgressPercent() float64 {
	if s == nil || s.Duration == 0 {
		return 0
	}
	return float64(s.Position) / float64(s.Duration) * 100
}
