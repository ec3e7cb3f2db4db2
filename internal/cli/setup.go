package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/pcahill/strum/internal/api"
	"github.com/pcahill/strum/internal/config"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Interactive first-run setup",
	Long: `Walk through the initial configuration: where the media service
lives and how playback should behave by default. Writes the config file
when done.`,
	RunE: runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

func runSetup(cmd *cobra.Command, args []string) error {
	newCfg := config.Default()
	if cfg != nil {
		*newCfg = *cfg
	}

	baseURL := newCfg.Server.BaseURL
	volume := strconv.Itoa(newCfg.Defaults.Volume)
	shuffle := newCfg.Defaults.Shuffle
	repeat := newCfg.Defaults.Repeat

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Media service URL").
				Description("Base URL of the media-fetch service").
				Value(&baseURL).
				Validate(func(s string) error {
					if s == "" {
						return fmt.Errorf("URL is required")
					}
					return nil
				}),
			huh.NewInput().
				Title("Default volume").
				Description("0-100").
				Value(&volume).
				Validate(func(s string) error {
					v, err := strconv.Atoi(s)
					if err != nil || v < 0 || v > 100 {
						return fmt.Errorf("volume must be between 0 and 100")
					}
					return nil
				}),
		),
		huh.NewGroup(
			huh.NewConfirm().
				Title("Enable shuffle by default?").
				Value(&shuffle),
			huh.NewConfirm().
				Title("Enable repeat by default?").
				Value(&repeat),
		),
	)

	if err := form.Run(); err != nil {
		return fmt.Errorf("setup cancelled: %w", err)
	}

	newCfg.Server.BaseURL = baseURL
	newCfg.Defaults.Volume, _ = strconv.Atoi(volume)
	newCfg.Defaults.Shuffle = shuffle
	newCfg.Defaults.Repeat = repeat

	// Probe the service before saving so a typo surfaces immediately.
	client := api.New(newCfg.Server.BaseURL)
	if _, err := client.FetchPlaylist(context.Background()); err != nil {
		fmt.Printf("%s Could not reach the service at %s: %v\n", StatusIcon(false), newCfg.Server.BaseURL, err)
	} else {
		fmt.Printf("%s Connected to the media service.\n", StatusIcon(true))
	}

	configPath := getConfigPath()
	if err := config.Save(newCfg, configPath); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	fmt.Printf("Saved config to %s\n", configPath)
	fmt.Println("Run 'strum play' or 'strum ui' to start listening.")
	return nil
}
