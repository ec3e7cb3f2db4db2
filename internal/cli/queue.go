package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pcahill/strum/internal/api"
	"github.com/pcahill/strum/internal/util"
)

var queueLimit int

var queueCmd = &cobra.Command{
	Use:     "queue",
	Aliases: []string{"playlist"},
	Short:   "Manage the playlist",
	Long:    `View and manage the shared playlist on the media service.`,
	RunE:    runQueueList,
}

var queueAddCmd = &cobra.Command{
	Use:   "add <query or url>",
	Short: "Add a track to the playlist",
	Long: `Search for a track, or resolve a URL, and append it to the playlist.

Examples:
  strum queue add "bohemian rhapsody"
  strum queue add https://youtu.be/dQw4w9WgXcQ`,
	Args: cobra.MinimumNArgs(1),
	RunE: runQueueAdd,
}

var queueRemoveCmd = &cobra.Command{
	Use:   "remove <index>",
	Short: "Remove a track from the playlist",
	Long:  `Remove the track at the given 1-based position from the playlist.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runQueueRemove,
}

var queueClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Clear the playlist",
	RunE:  runQueueClear,
}

func init() {
	queueCmd.Flags().IntVarP(&queueLimit, "limit", "l", 20, "Maximum number of tracks to show")

	queueCmd.AddCommand(queueAddCmd)
	queueCmd.AddCommand(queueRemoveCmd)
	queueCmd.AddCommand(queueClearCmd)
	rootCmd.AddCommand(queueCmd)
}

func runQueueList(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	resp, err := newClient().FetchPlaylist(ctx)
	if err != nil {
		return err
	}

	current := -1
	if resp.CurrentIndex != nil {
		current = *resp.CurrentIndex
	}

	if JSONOutput() {
		return json.NewEncoder(os.Stdout).Encode(map[string]interface{}{
			"tracks":        resp.Tracks,
			"current_index": current,
		})
	}

	if len(resp.Tracks) == 0 {
		fmt.Println("Playlist is empty")
		return nil
	}

	tracks := resp.Tracks
	if queueLimit > 0 && len(tracks) > queueLimit {
		tracks = tracks[:queueLimit]
	}

	total := 0
	for i, wt := range tracks {
		prefix := "  "
		if i == current {
			prefix = "▶ "
		}
		fmt.Printf("%s%d. %s — %s (%s)\n",
			prefix, i+1,
			util.TruncateString(wt.Title, 50),
			util.TruncateString(wt.Uploader, 24),
			util.FormatDuration(wt.Duration),
		)
		total += wt.Duration
	}
	if len(resp.Tracks) > len(tracks) {
		fmt.Printf("\n... and %d more tracks\n", len(resp.Tracks)-len(tracks))
	}
	fmt.Printf("\n%d tracks, %s total\n", len(resp.Tracks), util.FormatDuration(totalDuration(resp.Tracks)))
	return nil
}

func totalDuration(tracks []api.Track) int {
	total := 0
	for _, t := range tracks {
		total += t.Duration
	}
	return total
}

func runQueueAdd(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	client := newClient()
	arg := joinArgs(args)

	track, err := resolveTrackArg(ctx, client, arg)
	if err != nil {
		return err
	}

	if _, err := client.AddTrack(ctx, *track); err != nil {
		return err
	}

	if JSONOutput() {
		return json.NewEncoder(os.Stdout).Encode(map[string]interface{}{
			"status": "added",
			"id":     track.ID,
			"title":  track.Title,
		})
	}
	fmt.Printf("Added to playlist: %s — %s\n", track.Title, track.Uploader)
	return nil
}

func runQueueRemove(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	client := newClient()

	index, err := parseIndex(args[0])
	if err != nil {
		return err
	}

	resp, err := client.FetchPlaylist(ctx)
	if err != nil {
		return err
	}
	if index < 1 || index > len(resp.Tracks) {
		return fmt.Errorf("index %d out of range (playlist has %d tracks)", index, len(resp.Tracks))
	}

	removed := resp.Tracks[index-1]
	if _, err := client.RemoveTrack(ctx, removed.ID); err != nil {
		return err
	}

	if JSONOutput() {
		return json.NewEncoder(os.Stdout).Encode(map[string]interface{}{
			"status": "removed",
			"id":     removed.ID,
			"title":  removed.Title,
		})
	}
	fmt.Printf("Removed from playlist: %s\n", removed.Title)
	return nil
}

func runQueueClear(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	if _, err := newClient().ClearPlaylist(ctx); err != nil {
		return err
	}

	if JSONOutput() {
		return json.NewEncoder(os.Stdout).Encode(map[string]string{"status": "cleared"})
	}
	fmt.Println("Playlist cleared")
	return nil
}
