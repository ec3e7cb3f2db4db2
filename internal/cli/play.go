package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pcahill/strum/internal/api"
	"github.com/pcahill/strum/internal/core"
	"github.com/pcahill/strum/internal/notify"
)

var (
	playShuffle bool
	playRepeat  bool
	playQueue   bool
)

var playCmd = &cobra.Command{
	Use:   "play [query or url]",
	Short: "Play a track or the playlist",
	Long: `Start playback in the foreground. Without arguments, plays the
playlist from its current track. A URL argument plays that media directly;
anything else is searched and the best match is played.

Playback runs until the playlist ends or the process is interrupted.

Examples:
  strum play                                  # Play the playlist
  strum play "bohemian rhapsody"              # Search and play the top hit
  strum play https://youtu.be/dQw4w9WgXcQ     # Play a URL directly
  strum play --queue "daft punk"              # Add the match, then play`,
	RunE: runPlay,
}

func init() {
	playCmd.Flags().BoolVar(&playShuffle, "shuffle", false, "Enable shuffle mode")
	playCmd.Flags().BoolVar(&playRepeat, "repeat", false, "Enable repeat mode")
	playCmd.Flags().BoolVar(&playQueue, "queue", false, "Add the track to the playlist before playing")
	rootCmd.AddCommand(playCmd)
}

func runPlay(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	// With -j the caller is parsing stdout, so notices go to the logger
	// instead of the console.
	var notifier notify.Notifier = &notify.Console{Out: os.Stdout}
	if JSONOutput() {
		notifier = &notify.Logged{Logger: logger}
	}

	s, err := newSession(ctx, notifier)
	if err != nil {
		return err
	}
	defer s.close()

	if !JSONOutput() {
		NormalF("Session %s", s.flow.SessionID())
	}

	if playShuffle && !s.flow.Snapshot().Shuffled {
		s.flow.ToggleShuffle()
	}
	if playRepeat && !s.flow.Snapshot().Repeating {
		s.flow.ToggleRepeat()
	}

	query := joinArgs(args)
	switch {
	case query == "":
		s.flow.PlayCurrent()
	case isMediaURL(query):
		if err := s.flow.PlayURL(ctx, query); err != nil {
			return err
		}
	default:
		track, err := topSearchHit(ctx, s, query)
		if err != nil {
			return err
		}
		if playQueue {
			if err := s.flow.AddTrack(ctx, *track); err != nil {
				return err
			}
			if err := s.flow.SelectTrack(ctx, track.ID); err != nil {
				return err
			}
		} else if err := s.flow.PlayTrack(ctx, *track); err != nil {
			return err
		}
	}

	waitForInterrupt(ctx)
	return nil
}

func topSearchHit(ctx context.Context, s *session, query string) (*core.Track, error) {
	tracks, err := s.flow.Search(ctx, query)
	if err != nil {
		return nil, err
	}
	if len(tracks) == 0 {
		return nil, fmt.Errorf("no results found for '%s'", query)
	}
	return &tracks[0], nil
}

// isMediaURL reports whether the argument looks like a direct media URL
// rather than a search query.
func isMediaURL(s string) bool {
	if !strings.HasPrefix(s, "http://") && !strings.HasPrefix(s, "https://") {
		return false
	}
	_, err := api.ExtractVideoID(s)
	return err == nil
}
