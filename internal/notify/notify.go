// Package notify is the single non-blocking channel for user-facing notices.
package notify

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// Level classifies a notification.
type Level int

const (
	Info Level = iota
	Success
	Warning
	Error
)

// String returns the display name of the level.
func (l Level) String() string {
	switch l {
	case Info:
		return "info"
	case Success:
		return "success"
	case Warning:
		return "warning"
	case Error:
		return "error"
	default:
		return "unknown"
	}
}

// Notification is a single user-facing notice.
type Notification struct {
	Level   Level
	Message string
	Time    time.Time
}

// Notifier receives user-facing notices. Implementations must not block.
type Notifier interface {
	Notify(level Level, format string, args ...interface{})
}

// Hub fans notifications out to a buffered channel for a UI to drain.
// Posting never blocks; when the buffer is full the notice is dropped.
type Hub struct {
	ch chan Notification
}

// NewHub creates a hub with the given buffer size.
func NewHub(size int) *Hub {
	if size <= 0 {
		size = 16
	}
	return &Hub{ch: make(chan Notification, size)}
}

// Notify posts a notice without blocking.
func (h *Hub) Notify(level Level, format string, args ...interface{}) {
	n := Notification{
		Level:   level,
		Message: fmt.Sprintf(format, args...),
		Time:    time.Now(),
	}
	select {
	case h.ch <- n:
	default:
		// Drop when the consumer is behind.
	}
}

// Notifications returns the channel of posted notices.
func (h *Hub) Notifications() <-chan Notification {
	return h.ch
}

// Logged forwards notices to a structured logger. Useful for one-shot CLI
// commands where no UI drains a hub.
type Logged struct {
	Logger *log.Logger
}

// Notify logs the notice at a level matching its severity.
func (l *Logged) Notify(level Level, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	switch level {
	case Error:
		l.Logger.Error(msg)
	case Warning:
		l.Logger.Warn(msg)
	default:
		l.Logger.Info(msg)
	}
}

// Console prints notices to a writer with a level icon. Used by one-shot
// CLI playback where the user watches stdout directly.
type Console struct {
	Out io.Writer
}

// Notify implements Notifier.
func (c *Console) Notify(level Level, format string, args ...interface{}) {
	icon := "•"
	switch level {
	case Success:
		icon = "✓"
	case Warning:
		icon = "!"
	case Error:
		icon = "✗"
	}
	fmt.Fprintf(c.Out, "%s %s\n", icon, fmt.Sprintf(format, args...))
}

// Discard ignores all notices.
type Discard struct{}

// Notify implements Notifier.
func (Discard) Notify(Level, string, ...interface{}) {}
