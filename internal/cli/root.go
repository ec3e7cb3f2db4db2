package cli

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/pcahill/strum/internal/api"
	"github.com/pcahill/strum/internal/config"
)

var (
	cfgFile string
	jsonOut bool
	verbose bool

	cfg    *config.Config
	logger *log.Logger
)

var rootCmd = &cobra.Command{
	Use:   "strum",
	Short: "Search, queue and play music from a remote media service",
	Long: `Strum is a command-line client for a remote media-fetch service.
It searches for tracks, queues them in a shared playlist, and plays the
fetched streams locally.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initConfig()
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default: ~/.strumrc)")
	rootCmd.PersistentFlags().BoolVarP(&jsonOut, "json", "j", false, "output as JSON")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

func initConfig() error {
	var err error
	if cfgFile != "" {
		cfg, err = config.LoadFrom(cfgFile)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	logger = newLogger()
	return nil
}

// newLogger builds the structured logger from config and flags. Without a
// log file configured, non-verbose runs discard log output so it never
// interleaves with command output.
func newLogger() *log.Logger {
	var out io.Writer = io.Discard
	if cfg.Log.File != "" {
		if f, err := os.OpenFile(cfg.Log.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644); err == nil {
			out = f
		}
	} else if verbose {
		out = os.Stderr
	}

	l := log.New(out)
	level, err := log.ParseLevel(cfg.Log.Level)
	if err != nil {
		level = log.InfoLevel
	}
	if verbose && level > log.DebugLevel {
		level = log.DebugLevel
	}
	l.SetLevel(level)
	return l
}

// newClient builds the API client from the loaded config.
func newClient() *api.Client {
	return api.New(cfg.Server.BaseURL,
		api.WithTimeout(time.Duration(cfg.Server.Timeout)*time.Second),
		api.WithRateLimit(cfg.Search.RatePerSecond, cfg.Search.Burst),
		api.WithLogger(logger),
	)
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// Config returns the loaded configuration.
func Config() *config.Config {
	return cfg
}

// JSONOutput returns true if JSON output is requested.
func JSONOutput() bool {
	return jsonOut
}

// Verbose returns true if verbose output is requested.
func Verbose() bool {
	return verbose
}
