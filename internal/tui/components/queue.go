package components

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/pcahill/strum/internal/core"
	"github.com/pcahill/strum/internal/tui/styles"
	"github.com/pcahill/strum/internal/util"
)

// Queue displays the playlist with its cursor and a selection for
// keyboard-driven actions.
type Queue struct {
	offset   int
	selected int
}

// NewQueue creates a new Queue component
func NewQueue() *Queue {
	return &Queue{}
}

// SelectNext moves the selection down.
func (q *Queue) SelectNext(total int) {
	if q.selected < total-1 {
		q.selected++
	}
}

// SelectPrev moves the selection up.
func (q *Queue) SelectPrev() {
	if q.selected > 0 {
		q.selected--
	}
}

// Selected returns the selected index.
func (q *Queue) Selected() int {
	return q.selected
}

// Clamp keeps the selection inside the playlist after removals.
func (q *Queue) Clamp(total int) {
	if total == 0 {
		q.selected = 0
		return
	}
	if q.selected >= total {
		q.selected = total - 1
	}
}

// Render renders the playlist panel. current is the cursor index, -1 when
// the playlist is empty.
func (q *Queue) Render(tracks []core.Track, current, width, height int, focused bool) string {
	title := styles.PanelTitle("Playlist", focused)

	var content string
	if len(tracks) == 0 {
		content = styles.Muted.Render("Playlist is empty")
	} else {
		content = q.renderTracks(tracks, current, width-4, height-4, focused)
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

func (q *Queue) renderTracks(tracks []core.Track, current, width, maxLines int, focused bool) string {
	q.Clamp(len(tracks))

	visibleCount := maxLines - 1
	if visibleCount < 1 {
		visibleCount = 1
	}

	// Keep the selection visible.
	if q.selected < q.offset {
		q.offset = q.selected
	}
	if q.selected >= q.offset+visibleCount {
		q.offset = q.selected - visibleCount + 1
	}

	start := q.offset
	end := start + visibleCount
	if end > len(tracks) {
		end = len(tracks)
	}

	lines := make([]string, 0, end-start+1)

	// "XX. " + cursor marker + duration column
	const overhead = 16

	for i := start; i < end; i++ {
		track := tracks[i]

		num := fmt.Sprintf("%2d.", i+1)
		title := util.TruncateString(track.Title, width-overhead)
		duration := util.FormatDuration(track.Duration)

		marker := "  "
		if i == current {
			marker = "▶ "
		}

		line := fmt.Sprintf("%s %s%s (%s)", num, marker, title, duration)
		switch {
		case focused && i == q.selected:
			line = styles.Highlight.Render("> " + line)
		case i == current:
			line = styles.Playing.Render("  " + line)
		default:
			line = "  " + styles.Dim.Render(num) + fmt.Sprintf(" %s%s %s", marker, title, styles.Dim.Render("("+duration+")"))
		}

		lines = append(lines, line)
	}

	if end < len(tracks) {
		lines = append(lines, styles.Dim.Render(fmt.Sprintf("    ... and %d more", len(tracks)-end)))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}
