package components

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/pcahill/strum/internal/flow"
	"github.com/pcahill/strum/internal/tui/styles"
	"github.com/pcahill/strum/internal/util"
)

// NowPlaying displays the current track, its playback progress, and any
// in-flight download state.
type NowPlaying struct{}

// NewNowPlaying creates a new NowPlaying component
func NewNowPlaying() *NowPlaying {
	return &NowPlaying{}
}

// Render renders the now playing panel
func (n *NowPlaying) Render(snap flow.Snapshot, width, height int, focused bool) string {
	title := styles.PanelTitle("Now Playing", focused)

	var content string
	if snap.CurrentTrack == nil {
		content = styles.Muted.Render("Nothing playing")
	} else {
		content = n.renderTrack(snap, width-4)
	}

	panel := styles.Panel(focused).
		Width(width).
		Height(height)

	return panel.Render(lipgloss.JoinVertical(lipgloss.Left,
		title,
		"",
		content,
	))
}

func (n *NowPlaying) renderTrack(snap flow.Snapshot, width int) string {
	track := snap.CurrentTrack

	icon := styles.StatusIcon(snap.Player.IsPlaying)
	title := styles.Title.Width(width - 4).Render(track.Title)
	uploader := styles.Subtitle.Render(track.Uploader)

	var middle string
	switch snap.State {
	case flow.StateJobStarting:
		middle = styles.Downloading.Render("Starting download...")
	case flow.StateJobPolling:
		barWidth := width - 20
		if barWidth < 10 {
			barWidth = 10
		}
		bar := styles.Downloading.Render(util.FormatProgress(snap.Progress, barWidth))
		line := fmt.Sprintf("%s %3.0f%%", bar, snap.Progress)
		if snap.Speed != "" {
			line += styles.Dim.Render("  " + snap.Speed)
		}
		middle = styles.Downloading.Render("Downloading") + "\n" + line
	default:
		progressWidth := width - 14
		if progressWidth < 10 {
			progressWidth = 10
		}
		bar := styles.ProgressBar(snap.Player.ProgressPercent(), progressWidth)
		middle = fmt.Sprintf("%s %s %s",
			util.FormatTimestamp(snap.Player.Position),
			bar,
			util.FormatTimestamp(snap.Player.Duration),
		)
	}

	flags := n.renderFlags(snap)

	return lipgloss.JoinVertical(lipgloss.Left,
		icon+" "+title,
		"  "+uploader,
		"",
		middle,
		"",
		flags,
	)
}

func (n *NowPlaying) renderFlags(snap flow.Snapshot) string {
	volume := fmt.Sprintf("🔊 %d%%", snap.Player.Volume)
	if snap.Player.Volume == 0 {
		volume = "🔇 muted"
	}

	shuffle := styles.Dim.Render("⇄ shuffle")
	if snap.Shuffled {
		shuffle = styles.Playing.Render("⇄ shuffle")
	}
	repeat := styles.Dim.Render("↻ repeat")
	if snap.Repeating {
		repeat = styles.Playing.Render("↻ repeat")
	}

	pos := ""
	if snap.QueuePosition > 0 {
		pos = styles.Muted.Render(fmt.Sprintf("track %d/%d", snap.QueuePosition, snap.QueueTotal))
	}

	return styles.Muted.Render(volume) + "  " + shuffle + "  " + repeat + "  " + pos
}
