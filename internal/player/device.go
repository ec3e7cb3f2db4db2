package player

import "time"

// EventType enumerates the events a playback device can emit.
type EventType int

const (
	EventEnded      EventType = iota // Source played to completion
	EventError                       // Device failed to play the source
	EventTimeUpdate                  // Playback position advanced
)

// String returns the string representation of the event type.
func (e EventType) String() string {
	switch e {
	case EventEnded:
		return "ended"
	case EventError:
		return "error"
	case EventTimeUpdate:
		return "timeupdate"
	default:
		return "unknown"
	}
}

// Event is a device-emitted playback event.
type Event struct {
	Type     EventType
	Position time.Duration
	Duration time.Duration
	Err      error
}

// Device is the audio output resource. Exactly one device instance backs a
// Controller, and only the Controller mutates it. Load replaces the bound
// source and stops emitting events for the previous one.
type Device interface {
	Load(sourceURL string) error
	Play() error
	Pause()
	Stop()
	Seek(position time.Duration) error
	SetVolume(fraction float64)
	Events() <-chan Event
}
