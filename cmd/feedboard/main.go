package main

import (
	"errors"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/h0rv/feedboard/internal/api"
	"github.com/h0rv/feedboard/internal/config"
	"github.com/h0rv/feedboard/internal/logging"
	"github.com/h0rv/feedboard/internal/session"
	"github.com/h0rv/feedboard/internal/store"
	"github.com/h0rv/feedboard/internal/stream"
	"github.com/h0rv/feedboard/internal/tui"
	"github.com/spf13/cobra"
)

var (
	// CLI flags
	configFlag    string
	baseURLFlag   string
	landlordFlag  string
	reconnectFlag bool
	logFileFlag   string
	logLevelFlag  string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "feedboard",
		Short: "Live triage board for tenant maintenance requests",
		Long: `feedboard is a terminal triage board for maintenance requests.

It subscribes to the backend's live feed for one landlord, files incoming
requests into a New column and lets you assign a vendor, which moves the
ticket to In Progress.

Landlord selection:
  1. --landlord flag
  2. Environment variable: FEEDBOARD_LANDLORD_ID
  3. landlord_id in the config file
  4. Otherwise pick from the configured landlords, or stay idle

Vendor assignments are kept locally and are not sent to the backend.`,
		SilenceUsage: true,
		RunE:         run,
	}

	// Define CLI flags
	rootCmd.PersistentFlags().StringVar(&configFlag, "config", "", "Path to a YAML config file (env: FEEDBOARD_CONFIG)")
	rootCmd.PersistentFlags().StringVar(&baseURLFlag, "base-url", "", "Backend base URL (env: FEEDBOARD_BASE_URL)")
	rootCmd.Flags().StringVar(&landlordFlag, "landlord", "", "Landlord id to watch. Skips the landlord picker.")
	rootCmd.Flags().BoolVar(&reconnectFlag, "reconnect", false, "Reconnect automatically with backoff when the stream drops")
	rootCmd.Flags().StringVar(&logFileFlag, "log-file", "", "Write diagnostics to this file (env: FEEDBOARD_LOG_FILE)")
	rootCmd.Flags().StringVar(&logLevelFlag, "log-level", "", "Log level: debug, info, warn, error")

	rootCmd.AddCommand(newSubmitCmd(), newMockCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig reads the config file and environment, then applies any flags
// the user set explicitly.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(configFlag)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("base-url") {
		cfg.BaseURL = baseURLFlag
	}
	if flags.Changed("reconnect") {
		cfg.Reconnect.Enabled = reconnectFlag
	}
	if flags.Changed("log-file") {
		cfg.Log.File = logFileFlag
	}
	if flags.Changed("log-level") {
		cfg.Log.Level = logLevelFlag
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func run(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	// The TUI owns the terminal, so logs only go to a file
	logger, closeLog, err := logging.Open(cfg.Log.File, cfg.Log.Level)
	if err != nil {
		return err
	}
	defer closeLog()

	landlordID, err := session.Resolve(
		session.StaticProvider{ID: landlordFlag},
		session.EnvProvider{},
		session.StaticProvider{ID: cfg.LandlordID},
	)
	if err != nil && !errors.Is(err, session.ErrNoSession) {
		return fmt.Errorf("failed to resolve landlord: %w", err)
	}

	client, err := api.New(cfg.BaseURL)
	if err != nil {
		return fmt.Errorf("failed to create backend client: %w", err)
	}

	sub := stream.New(client,
		stream.WithLogger(logger),
		stream.WithReconnect(stream.ReconnectPolicy{
			Enabled:         cfg.Reconnect.Enabled,
			InitialInterval: cfg.Reconnect.InitialInterval,
			MaxInterval:     cfg.Reconnect.MaxInterval,
			MaxRetries:      cfg.Reconnect.MaxRetries,
		}),
	)
	defer sub.Close()

	logger.Info("starting", "base_url", client.BaseURL(), "landlord_id", landlordID)

	app := tui.NewAppModel(sub, store.New(), tui.AppConfig{
		LandlordID: landlordID,
		Landlords:  cfg.Landlords,
		Vendors:    cfg.Vendors,
		Logger:     logger,
	})

	// Run Bubble Tea program
	p := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("program error: %w", err)
	}

	return nil
}
