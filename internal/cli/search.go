package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pcahill/strum/internal/util"
)

var searchLimit int

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search for tracks",
	Long: `Search the media service for playable tracks.

Examples:
  strum search "bohemian rhapsody"
  strum search -j "daft punk" | jq '.[0].url'`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "l", 10, "Maximum number of results to show")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	query := joinArgs(args)

	tracks, err := newClient().Search(ctx, query)
	if err != nil {
		return err
	}
	if searchLimit > 0 && len(tracks) > searchLimit {
		tracks = tracks[:searchLimit]
	}

	if JSONOutput() {
		return json.NewEncoder(os.Stdout).Encode(tracks)
	}

	if len(tracks) == 0 {
		fmt.Printf("No results for '%s'\n", query)
		return nil
	}

	t := NewTable("#", "TITLE", "UPLOADER", "DURATION")
	for i, tr := range tracks {
		t.Row(
			fmt.Sprintf("%d", i+1),
			util.TruncateString(tr.Title, 50),
			util.TruncateString(tr.Uploader, 24),
			util.FormatDuration(tr.Duration),
		)
	}
	t.Flush()
	return nil
}
