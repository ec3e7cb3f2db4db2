package player

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

// MPVDevice drives an mpv subprocess over its JSON IPC socket. mpv handles
// HTTP stream fetching and decoding; this side only issues commands and
// translates property changes into Events.
type MPVDevice struct {
	logger *log.Logger

	mu     sync.Mutex
	cmd    *exec.Cmd
	conn   net.Conn
	enc    *json.Encoder
	closed bool

	events   chan Event
	position time.Duration
	duration time.Duration
}

type mpvCommand struct {
	Command []interface{} `json:"command"`
}

type mpvMessage struct {
	Event  string      `json:"event"`
	Name   string      `json:"name"`
	Data   interface{} `json:"data"`
	Reason string      `json:"reason"`
	Error  string      `json:"error"`
}

// NewMPVDevice launches mpv in idle mode and connects to its IPC socket.
// The binary must be on PATH.
func NewMPVDevice(logger *log.Logger) (*MPVDevice, error) {
	socket := filepath.Join(os.TempDir(), "strum-mpv-"+uuid.NewString()[:8]+".sock")

	cmd := exec.Command("mpv",
		"--no-video",
		"--idle=yes",
		"--no-terminal",
		"--input-ipc-server="+socket,
	)
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start mpv: %w", err)
	}

	conn, err := dialWithRetry(socket, 5*time.Second)
	if err != nil {
		cmd.Process.Kill()
		return nil, fmt.Errorf("failed to connect to mpv socket: %w", err)
	}

	d := &MPVDevice{
		logger: logger,
		cmd:    cmd,
		conn:   conn,
		enc:    json.NewEncoder(conn),
		events: make(chan Event, 32),
	}

	// Property observers feed the position/duration events; end-file covers
	// both natural track end and decode failures.
	d.command("observe_property", 1, "time-pos")
	d.command("observe_property", 2, "duration")

	go d.readLoop()
	return d, nil
}

// dialWithRetry waits for mpv to create its IPC socket.
func dialWithRetry(socket string, timeout time.Duration) (net.Conn, error) {
	deadline := time.Now().Add(timeout)
	for {
		conn, err := net.Dial("unix", socket)
		if err == nil {
			return conn, nil
		}
		if time.Now().After(deadline) {
			return nil, err
		}
		time.Sleep(50 * time.Millisecond)
	}
}

func (d *MPVDevice) command(args ...interface{}) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return fmt.Errorf("mpv device closed")
	}
	return d.enc.Encode(mpvCommand{Command: args})
}

// readLoop translates mpv IPC messages into device events.
func (d *MPVDevice) readLoop() {
	scanner := bufio.NewScanner(d.conn)
	for scanner.Scan() {
		var msg mpvMessage
		if err := json.Unmarshal(scanner.Bytes(), &msg); err != nil {
			continue
		}

		switch msg.Event {
		case "property-change":
			d.handleProperty(msg)
		case "end-file":
			switch msg.Reason {
			case "eof":
				d.emit(Event{Type: EventEnded})
			case "error":
				d.emit(Event{Type: EventError, Err: fmt.Errorf("mpv playback error")})
			}
		}
	}

	d.mu.Lock()
	closed := d.closed
	d.mu.Unlock()
	if !closed {
		d.logger.Warn("mpv connection lost")
		d.emit(Event{Type: EventError, Err: fmt.Errorf("mpv exited unexpectedly")})
	}
}

func (d *MPVDevice) handleProperty(msg mpvMessage) {
	value, ok := msg.Data.(float64)
	if !ok {
		return
	}

	d.mu.Lock()
	switch msg.Name {
	case "time-pos":
		d.position = time.Duration(value * float64(time.Second))
	case "duration":
		d.duration = time.Duration(value * float64(time.Second))
	}
	ev := Event{Type: EventTimeUpdate, Position: d.position, Duration: d.duration}
	d.mu.Unlock()

	d.emit(ev)
}

// emit delivers an event without blocking; display layers that fall behind
// lose intermediate time updates, not terminal events.
func (d *MPVDevice) emit(ev Event) {
	select {
	case d.events <- ev:
	default:
		if ev.Type != EventTimeUpdate {
			d.events <- ev
		}
	}
}

// Load replaces the current source with the given URL.
func (d *MPVDevice) Load(sourceURL string) error {
	return d.command("loadfile", sourceURL, "replace")
}

// Play unpauses playback.
func (d *MPVDevice) Play() error {
	return d.command("set_property", "pause", false)
}

// Pause pauses playback, keeping the source loaded.
func (d *MPVDevice) Pause() {
	d.command("set_property", "pause", true)
}

// Stop stops playback and unloads the source.
func (d *MPVDevice) Stop() {
	d.command("stop")
}

// Seek jumps to an absolute position.
func (d *MPVDevice) Seek(position time.Duration) error {
	return d.command("seek", position.Seconds(), "absolute")
}

// SetVolume sets the output volume from a 0..1 fraction.
func (d *MPVDevice) SetVolume(fraction float64) {
	d.command("set_property", "volume", fraction*100)
}

// Events returns the device event stream.
func (d *MPVDevice) Events() <-chan Event {
	return d.events
}

// Close shuts down the mpv subprocess and the IPC connection.
func (d *MPVDevice) Close() error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil
	}
	d.closed = true
	d.enc.Encode(mpvCommand{Command: []interface{}{"quit"}})
	d.mu.Unlock()

	d.conn.Close()

	done := make(chan error, 1)
	go func() { done <- d.cmd.Wait() }()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		d.cmd.Process.Kill()
		<-done
	}
	return nil
}
