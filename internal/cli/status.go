package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pcahill/strum/internal/util"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show playlist status",
	Long:  `Show the shared playlist's current track and totals.`,
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
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
		out := map[string]interface{}{
			"tracks":        len(resp.Tracks),
			"current_index": current,
			"duration":      totalDuration(resp.Tracks),
		}
		if current >= 0 && current < len(resp.Tracks) {
			out["current"] = resp.Tracks[current]
		}
		return json.NewEncoder(os.Stdout).Encode(out)
	}

	if len(resp.Tracks) == 0 {
		fmt.Println("Playlist is empty")
		return nil
	}

	if current >= 0 && current < len(resp.Tracks) {
		t := resp.Tracks[current]
		fmt.Printf("Current:  %s — %s (%s)\n", t.Title, t.Uploader, util.FormatDuration(t.Duration))
		fmt.Printf("Position: %d of %d\n", current+1, len(resp.Tracks))
	} else {
		fmt.Printf("Position: none of %d\n", len(resp.Tracks))
	}
	fmt.Printf("Total:    %s\n", util.FormatDuration(totalDuration(resp.Tracks)))
	return nil
}
