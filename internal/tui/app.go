// Package tui is the interactive terminal player. It renders snapshots of
// the coordinator on a fixed tick and translates key presses into
// coordinator and controller calls.
package tui

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/pcahill/strum/internal/core"
	"github.com/pcahill/strum/internal/flow"
	"github.com/pcahill/strum/internal/notify"
	"github.com/pcahill/strum/internal/tui/components"
	"github.com/pcahill/strum/internal/tui/styles"
)

// Panel represents which panel is focused
type Panel int

const (
	PanelNowPlaying Panel = iota
	PanelPlaylist
	PanelHistory

	panelCount = 3
)

const (
	searchDebounce = 300 * time.Millisecond
	defaultRefresh = 500 * time.Millisecond
	noticeLifetime = 5 * time.Second
	actionTimeout  = 10 * time.Second
)

// Model is the main TUI model
type Model struct {
	flow        *flow.Flow
	hub         *notify.Hub
	refreshRate time.Duration

	width        int
	height       int
	focusedPanel Panel

	snap flow.Snapshot

	// Components
	nowPlaying  *components.NowPlaying
	queueView   *components.Queue
	historyView *components.History

	// Overlays
	showHelp bool

	// Search state
	showSearch    bool
	searchInput   textinput.Model
	searchResults []core.Track
	searchCursor  int
	searching     bool
	lastQuery     string
	searchErr     error

	// Last notification shown in the status bar
	notice       *notify.Notification
	noticeExpiry time.Time

	quitting bool
}

// NewModel creates a new TUI model
func NewModel(f *flow.Flow, hub *notify.Hub, refreshRate time.Duration) Model {
	if refreshRate <= 0 {
		refreshRate = defaultRefresh
	}

	ti := textinput.New()
	ti.Placeholder = "Search for tracks..."
	ti.CharLimit = 100
	ti.Width = 50

	return Model{
		flow:        f,
		hub:         hub,
		refreshRate: refreshRate,
		nowPlaying:  components.NewNowPlaying(),
		queueView:   components.NewQueue(),
		historyView: components.NewHistory(),
		searchInput: ti,
		snap:        f.Snapshot(),
	}
}

// Messages
type tickMsg time.Time
type noticeMsg notify.Notification
type searchDebounceMsg struct{ query string }
type searchResultsMsg struct {
	results []core.Track
	err     error
}
type actionDoneMsg struct{}

func (m Model) tick() tea.Cmd {
	return tea.Tick(m.refreshRate, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// waitForNotice blocks on the hub until a notice arrives.
func (m Model) waitForNotice() tea.Cmd {
	return func() tea.Msg {
		n, ok := <-m.hub.Notifications()
		if !ok {
			return nil
		}
		return noticeMsg(n)
	}
}

func (m Model) doSearch(query string) tea.Cmd {
	return func() tea.Msg {
		if query == "" {
			return searchResultsMsg{}
		}

		ctx, cancel := context.WithTimeout(context.Background(), actionTimeout)
		defer cancel()

		tracks, err := m.flow.Search(ctx, query)
		if err != nil {
			return searchResultsMsg{err: err}
		}
		return searchResultsMsg{results: tracks}
	}
}

// action runs a coordinator call off the update loop.
func (m Model) action(fn func(ctx context.Context)) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), actionTimeout)
		defer cancel()
		fn(ctx)
		return actionDoneMsg{}
	}
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.tick(), m.waitForNotice())
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tickMsg:
		m.snap = m.flow.Snapshot()
		m.queueView.Clamp(m.snap.QueueTotal)
		if m.notice != nil && time.Now().After(m.noticeExpiry) {
			m.notice = nil
		}
		return m, m.tick()

	case noticeMsg:
		n := notify.Notification(msg)
		m.notice = &n
		m.noticeExpiry = time.Now().Add(noticeLifetime)
		return m, m.waitForNotice()

	case actionDoneMsg:
		m.snap = m.flow.Snapshot()
		return m, nil

	case searchDebounceMsg:
		if msg.query == m.searchInput.Value() && msg.query != m.lastQuery {
			m.lastQuery = msg.query
			m.searching = true
			return m, m.doSearch(msg.query)
		}

	case searchResultsMsg:
		m.searching = false
		m.searchResults = msg.results
		m.searchErr = msg.err
		m.searchCursor = 0
		return m, nil
	}

	if m.showSearch {
		var inputCmd tea.Cmd
		m.searchInput, inputCmd = m.searchInput.Update(msg)
		return m, inputCmd
	}

	return m, nil
}

func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		m.quitting = true
		return m, tea.Quit
	}

	if m.showHelp {
		switch msg.String() {
		case "?", "esc":
			m.showHelp = false
		}
		return m, nil
	}

	if m.showSearch {
		return m.handleSearchKeyPress(msg)
	}

	switch msg.String() {
	case "q":
		m.quitting = true
		return m, tea.Quit

	case "?":
		m.showHelp = true
		return m, nil

	case "/":
		m.showSearch = true
		m.searchInput.SetValue("")
		m.searchInput.Focus()
		m.searchResults = nil
		m.searchCursor = 0
		m.lastQuery = ""
		m.searchErr = nil
		return m, textinput.Blink

	case "tab":
		m.focusedPanel = (m.focusedPanel + 1) % panelCount
		return m, nil

	case "shift+tab":
		m.focusedPanel = (m.focusedPanel + panelCount - 1) % panelCount
		return m, nil
	}

	// Playback controls
	switch msg.String() {
	case " ":
		return m, m.action(func(ctx context.Context) {
			c := m.flow.Controller()
			if c.State().IsPlaying {
				c.Pause()
			} else {
				c.Play()
			}
		})
	case "n":
		return m, m.action(func(ctx context.Context) { m.flow.Next(ctx) })
	case "p":
		return m, m.action(func(ctx context.Context) { m.flow.Previous(ctx) })
	case "s":
		m.flow.ToggleShuffle()
		m.snap = m.flow.Snapshot()
		return m, nil
	case "r":
		m.flow.ToggleRepeat()
		m.snap = m.flow.Snapshot()
		return m, nil
	case "m":
		m.flow.Controller().ToggleMute()
		m.snap = m.flow.Snapshot()
		return m, nil
	case "x":
		m.flow.Stop()
		m.snap = m.flow.Snapshot()
		return m, nil
	case "+", "=":
		m.flow.Controller().SetVolume(m.snap.Player.Volume + 5)
		m.snap = m.flow.Snapshot()
		return m, nil
	case "-":
		m.flow.Controller().SetVolume(m.snap.Player.Volume - 5)
		m.snap = m.flow.Snapshot()
		return m, nil
	case "left":
		return m, m.seekBy(-10 * time.Second)
	case "right":
		return m, m.seekBy(10 * time.Second)
	}

	// Panel-specific keys
	if m.focusedPanel == PanelPlaylist {
		switch msg.String() {
		case "j", "down":
			m.queueView.SelectNext(m.snap.QueueTotal)
		case "k", "up":
			m.queueView.SelectPrev()
		case "enter":
			if t := m.selectedTrack(); t != nil {
				return m, m.action(func(ctx context.Context) {
					m.flow.SelectTrack(ctx, t.ID)
				})
			}
		case "d", "delete":
			if t := m.selectedTrack(); t != nil {
				return m, m.action(func(ctx context.Context) {
					m.flow.RemoveTrack(ctx, t.ID)
				})
			}
		}
	}

	return m, nil
}

func (m Model) selectedTrack() *core.Track {
	idx := m.queueView.Selected()
	if idx < 0 || idx >= len(m.snap.Tracks) {
		return nil
	}
	t := m.snap.Tracks[idx]
	return &t
}

// seekBy nudges the playback position relative to the current state.
func (m Model) seekBy(delta time.Duration) tea.Cmd {
	return m.action(func(ctx context.Context) {
		state := m.flow.Controller().State()
		if state.Duration <= 0 {
			return
		}
		target := state.Position + delta
		if target < 0 {
			target = 0
		}
		m.flow.Controller().SeekTo(float64(target) / float64(state.Duration))
	})
}

func (m Model) handleSearchKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg.String() {
	case "esc":
		m.showSearch = false
		m.searchInput.Blur()
		return m, nil

	case "enter":
		if len(m.searchResults) > 0 && m.searchCursor < len(m.searchResults) {
			track := m.searchResults[m.searchCursor]
			m.showSearch = false
			m.searchInput.Blur()
			return m, m.action(func(ctx context.Context) {
				m.flow.PlayTrack(ctx, track)
			})
		}
		return m, nil

	case "ctrl+q":
		// Add to playlist without playing
		if len(m.searchResults) > 0 && m.searchCursor < len(m.searchResults) {
			track := m.searchResults[m.searchCursor]
			m.showSearch = false
			m.searchInput.Blur()
			return m, m.action(func(ctx context.Context) {
				m.flow.AddTrack(ctx, track)
			})
		}
		return m, nil

	case "up", "ctrl+p":
		if m.searchCursor > 0 {
			m.searchCursor--
		}
		return m, nil

	case "down", "ctrl+n":
		if m.searchCursor < len(m.searchResults)-1 {
			m.searchCursor++
		}
		return m, nil
	}

	var inputCmd tea.Cmd
	m.searchInput, inputCmd = m.searchInput.Update(msg)
	cmds = append(cmds, inputCmd)

	if m.searchInput.Value() != m.lastQuery {
		query := m.searchInput.Value()
		cmds = append(cmds, tea.Tick(searchDebounce, func(time.Time) tea.Msg {
			return searchDebounceMsg{query: query}
		}))
	}

	return m, tea.Batch(cmds...)
}

// View renders the UI
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if m.width == 0 {
		return "Loading..."
	}

	if m.showHelp {
		return m.renderHelp()
	}
	if m.showSearch {
		return m.renderSearch()
	}

	// Layout: Now Playing on top, Playlist and History side by side below.
	topHeight := m.height * 35 / 100
	bottomHeight := m.height - topHeight - 3
	leftWidth := m.width * 60 / 100
	rightWidth := m.width - leftWidth - 2

	current := m.snap.QueuePosition - 1

	nowPlaying := m.nowPlaying.Render(m.snap, m.width-2, topHeight-2, m.focusedPanel == PanelNowPlaying)
	queueView := m.queueView.Render(m.snap.Tracks, current, leftWidth-2, bottomHeight-2, m.focusedPanel == PanelPlaylist)
	historyView := m.historyView.Render(m.snap.History, rightWidth-2, bottomHeight-2, m.focusedPanel == PanelHistory)

	bottom := lipgloss.JoinHorizontal(lipgloss.Top, queueView, historyView)
	statusBar := m.renderStatusBar()

	return lipgloss.JoinVertical(lipgloss.Left, nowPlaying, bottom, statusBar)
}

func (m Model) renderStatusBar() string {
	status := styles.Dim.Render("q:quit  ?:help  /:search  space:play/pause  n:next  p:prev  s:shuffle  r:repeat  m:mute  tab:panel")

	if m.notice != nil {
		switch m.notice.Level {
		case notify.Error:
			status = styles.Paused.Render(m.notice.Message)
		case notify.Success:
			status = styles.Playing.Render(m.notice.Message)
		default:
			status = styles.Muted.Render(m.notice.Message)
		}
	}

	if m.snap.SessionID != "" {
		session := styles.Dim.Render("session " + m.snap.SessionID)
		gap := m.width - 2 - lipgloss.Width(status) - lipgloss.Width(session)
		if gap > 0 {
			status += styles.Repeat(" ", gap) + session
		}
	}

	return lipgloss.NewStyle().
		Width(m.width).
		Padding(0, 1).
		Render(status)
}

func (m Model) renderHelp() string {
	title := "Strum - Keyboard Shortcuts"
	divider := styles.Repeat("═", len(title))

	help := `
  ` + title + `
  ` + divider + `

  Global
  ──────
  q, Ctrl+C    Quit
  ?            Toggle help
  /            Search
  Tab          Next panel
  Shift+Tab    Previous panel

  Playback
  ────────
  Space        Play/Pause
  n            Next track
  p            Previous track
  s            Toggle shuffle
  r            Toggle repeat
  m            Mute
  x            Stop
  +/=          Volume up
  -            Volume down
  ←/→          Seek 10s

  Playlist Panel
  ──────────────
  j/↓          Select next
  k/↑          Select previous
  Enter        Play selected
  d            Remove selected

  Press ? or Esc to close
`

	return lipgloss.NewStyle().
		Width(m.width).
		Height(m.height).
		Align(lipgloss.Center, lipgloss.Center).
		Render(styles.BorderStyle.Render(help))
}

func (m Model) renderSearch() string {
	var b strings.Builder

	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(styles.Primary)
	b.WriteString(titleStyle.Render("Search"))
	b.WriteString("\n\n")

	b.WriteString(m.searchInput.View())
	b.WriteString("\n\n")

	subtitleStyle := lipgloss.NewStyle().Foreground(styles.TextMuted)
	selectedStyle := lipgloss.NewStyle().Background(styles.Surface)
	errorStyle := lipgloss.NewStyle().Foreground(styles.Error)

	switch {
	case m.searchErr != nil:
		b.WriteString(errorStyle.Render("Error: " + m.searchErr.Error()))
	case m.searching:
		b.WriteString(subtitleStyle.Render("Searching..."))
	case len(m.searchResults) == 0 && m.lastQuery != "":
		b.WriteString(subtitleStyle.Render("No results found"))
	default:
		maxResults := 10
		for i, track := range m.searchResults {
			if i >= maxResults {
				b.WriteString(subtitleStyle.Render("  ...and more"))
				break
			}

			line := track.Title
			if track.Uploader != "" {
				line += " " + subtitleStyle.Render(track.Uploader)
			}

			if i == m.searchCursor {
				b.WriteString(selectedStyle.Render("> " + line))
			} else {
				b.WriteString("  " + line)
			}
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(subtitleStyle.Render("↑/↓:nav  Enter:play  Ctrl+q:add to playlist  Esc:close"))

	content := lipgloss.NewStyle().
		Width(60).
		Padding(1, 2).
		Render(b.String())

	return lipgloss.NewStyle().
		Width(m.width).
		Height(m.height).
		Align(lipgloss.Center, lipgloss.Center).
		Render(styles.FocusedBorder.Render(content))
}

// Run starts the TUI over an already-wired coordinator.
func Run(f *flow.Flow, hub *notify.Hub, refreshRate time.Duration) error {
	model := NewModel(f, hub, refreshRate)
	p := tea.NewProgram(model, tea.WithAltScreen())

	_, err := p.Run()
	return err
}
