package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pcahill/strum/internal/util"
)

var infoCmd = &cobra.Command{
	Use:   "info <url>",
	Short: "Show metadata for a media URL",
	Long: `Resolve and display metadata for a direct media URL without
downloading it.

Examples:
  strum info https://www.youtube.com/watch?v=dQw4w9WgXcQ`,
	Args: cobra.ExactArgs(1),
	RunE: runInfo,
}

func init() {
	rootCmd.AddCommand(infoCmd)
}

func runInfo(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	info, err := newClient().Info(ctx, args[0])
	if err != nil {
		return err
	}

	if JSONOutput() {
		return json.NewEncoder(os.Stdout).Encode(map[string]interface{}{
			"id":          info.Track.ID,
			"title":       info.Track.Title,
			"uploader":    info.Track.Uploader,
			"duration":    info.Track.Duration,
			"thumbnail":   info.Track.Thumbnail,
			"url":         info.Track.SourceURL,
			"description": info.Description,
		})
	}

	fmt.Printf("Title:    %s\n", info.Track.Title)
	fmt.Printf("Uploader: %s\n", info.Track.Uploader)
	fmt.Printf("Duration: %s\n", util.FormatDuration(info.Track.Duration))
	if Verbose() && info.Description != "" {
		fmt.Printf("\n%s\n", util.TruncateString(info.Description, 500))
	}
	return nil
}
