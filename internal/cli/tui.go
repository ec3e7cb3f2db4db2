package cli

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/pcahill/strum/internal/notify"
	"github.com/pcahill/strum/internal/tui"
)

var tuiRefresh int

var tuiCmd = &cobra.Command{
	Use:     "ui",
	Aliases: []string{"tui"},
	Short:   "Launch interactive player",
	Long: `Launch the interactive terminal player.

The player provides a live view with:
  • Now Playing - current track, progress, download state
  • Playlist - queued tracks with the cursor
  • History - recently played tracks

Keyboard shortcuts:
  q, Ctrl+C    Quit
  /            Search
  Space        Play/Pause
  n            Next track
  p            Previous track
  s            Toggle shuffle
  r            Toggle repeat
  m            Mute
  +/-          Volume up/down
  d            Remove selected track
  Tab          Switch panel`,
	RunE: runTUI,
}

func init() {
	tuiCmd.Flags().IntVar(&tuiRefresh, "refresh", 0, "Refresh interval in milliseconds (0: use config)")
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	hub := notify.NewHub(32)
	s, err := newSession(ctx, hub)
	if err != nil {
		return err
	}
	defer s.close()

	refresh := cfg.TUI.RefreshInterval
	if tuiRefresh > 0 {
		refresh = tuiRefresh
	}

	return tui.Run(s.flow, hub, time.Duration(refresh)*time.Millisecond)
}
