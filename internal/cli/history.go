package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pcahill/strum/internal/store"
	"github.com/pcahill/strum/internal/util"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recently played tracks",
	Long:  `Show the local play history, newest first.`,
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "l", 20, "Maximum number of entries to show")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	if cfg.History.DBPath == "" {
		return fmt.Errorf("history persistence is disabled (history.db_path is empty)")
	}

	s, err := store.Open(cfg.History.DBPath)
	if err != nil {
		return err
	}
	defer s.Close()

	entries, err := s.Recent(historyLimit)
	if err != nil {
		return err
	}

	if JSONOutput() {
		return json.NewEncoder(os.Stdout).Encode(entries)
	}

	if len(entries) == 0 {
		fmt.Println("No play history yet")
		return nil
	}

	t := NewTable("PLAYED", "TITLE", "UPLOADER", "DURATION")
	for _, e := range entries {
		t.Row(
			util.TimeAgo(e.PlayedAt),
			util.TruncateString(e.Track.Title, 50),
			util.TruncateString(e.Track.Uploader, 24),
			util.FormatDuration(e.Track.Duration),
		)
	}
	t.Flush()
	return nil
}
