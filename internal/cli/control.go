package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pcahill/strum/internal/api"
)

// next and prev move the shared playlist cursor on the server. They do not
// control a running playback session; a session notices the new cursor the
// next time it advances or reloads.

var nextCmd = &cobra.Command{
	Use:   "next",
	Short: "Advance the playlist cursor",
	Long:  `Move the shared playlist cursor to the next track.`,
	RunE:  runNext,
}

var prevCmd = &cobra.Command{
	Use:   "prev",
	Short: "Move the playlist cursor back",
	Long:  `Move the shared playlist cursor to the previous track.`,
	RunE:  runPrev,
}

func init() {
	rootCmd.AddCommand(nextCmd)
	rootCmd.AddCommand(prevCmd)
}

func runNext(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	resp, err := newClient().NextTrack(ctx)
	if err != nil {
		return err
	}
	return printCursorMove("next", resp)
}

func runPrev(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	resp, err := newClient().PrevTrack(ctx)
	if err != nil {
		return err
	}
	return printCursorMove("previous", resp)
}

func printCursorMove(direction string, resp *api.PlaylistResponse) error {
	if JSONOutput() {
		out := map[string]interface{}{"status": direction}
		if resp.Track != nil {
			out["title"] = resp.Track.Title
			out["id"] = resp.Track.ID
		}
		return json.NewEncoder(os.Stdout).Encode(out)
	}

	if resp.Track != nil {
		fmt.Printf("Now at: %s — %s\n", resp.Track.Title, resp.Track.Uploader)
	} else {
		fmt.Printf("Moved to %s track\n", direction)
	}
	return nil
}
