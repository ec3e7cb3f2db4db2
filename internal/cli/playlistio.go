package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/pcahill/strum/internal/core"
)

var exportCmd = &cobra.Command{
	Use:   "export [file]",
	Short: "Export the playlist as JSON",
	Long: `Write the shared playlist to a JSON file, or to stdout when no
file is given.

Examples:
  strum export favorites.json
  strum export > favorites.json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runExport,
}

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import a playlist from JSON",
	Long: `Append the tracks from a previously exported JSON file to the
shared playlist.`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
}

type playlistDoc struct {
	Tracks       []core.Track `json:"tracks"`
	CurrentIndex int          `json:"current_index"`
	ExportedAt   time.Time    `json:"exported_at"`
}

func runExport(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	resp, err := newClient().FetchPlaylist(ctx)
	if err != nil {
		return err
	}

	doc := playlistDoc{
		CurrentIndex: -1,
		ExportedAt:   time.Now().UTC(),
	}
	for _, wt := range resp.Tracks {
		doc.Tracks = append(doc.Tracks, wt.ToCore())
	}
	if resp.CurrentIndex != nil {
		doc.CurrentIndex = *resp.CurrentIndex
	}

	out := os.Stdout
	if len(args) == 1 {
		f, err := os.Create(args[0])
		if err != nil {
			return fmt.Errorf("failed to create export file: %w", err)
		}
		defer f.Close()
		out = f
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("failed to write export: %w", err)
	}

	if len(args) == 1 && !JSONOutput() {
		fmt.Printf("Exported %d tracks to %s\n", len(doc.Tracks), args[0])
	}
	return nil
}

func runImport(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("failed to open import file: %w", err)
	}
	defer f.Close()

	var doc playlistDoc
	if err := json.NewDecoder(f).Decode(&doc); err != nil {
		return fmt.Errorf("failed to parse import file: %w", err)
	}

	client := newClient()
	added := 0
	for _, t := range doc.Tracks {
		if _, err := client.AddTrack(ctx, t); err != nil {
			return fmt.Errorf("import stopped after %d tracks: %w", added, err)
		}
		added++
	}

	if JSONOutput() {
		return json.NewEncoder(os.Stdout).Encode(map[string]interface{}{
			"status": "imported",
			"added":  added,
		})
	}
	fmt.Printf("Imported %d tracks from %s\n", added, args[0])
	return nil
}
