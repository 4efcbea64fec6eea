// Command feedtail prints a landlord's live request feed to stdout, one line
// per request. It is a debugging aid for the stream without the TUI.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"

	"github.com/h0rv/feedboard/internal/api"
	"github.com/h0rv/feedboard/internal/config"
	"github.com/h0rv/feedboard/internal/logging"
	"github.com/h0rv/feedboard/internal/store"
	"github.com/h0rv/feedboard/internal/stream"
	"github.com/spf13/cobra"
)

func main() {
	var (
		baseURL   string
		landlord  string
		reconnect bool
		verbose   bool
	)

	cmd := &cobra.Command{
		Use:   "feedtail",
		Short: "Print a landlord's live maintenance request feed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if landlord == "" {
				return fmt.Errorf("--landlord is required")
			}

			level := "warn"
			if verbose {
				level = "debug"
			}
			lvl, err := logging.ParseLevel(level)
			if err != nil {
				return err
			}
			logger := logging.New(lvl, os.Stderr)

			client, err := api.New(baseURL)
			if err != nil {
				return err
			}

			policy := stream.ReconnectPolicy{}
			if reconnect {
				defaults := config.Default().Reconnect
				policy = stream.ReconnectPolicy{
					Enabled:         true,
					InitialInterval: defaults.InitialInterval,
					MaxInterval:     defaults.MaxInterval,
				}
			}

			sub := stream.New(client, stream.WithLogger(logger), stream.WithReconnect(policy))
			defer sub.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			return tail(ctx, sub, landlord, store.New())
		},
	}

	cmd.Flags().StringVar(&baseURL, "base-url", config.DefaultBaseURL, "Backend base URL")
	cmd.Flags().StringVar(&landlord, "landlord", "", "Landlord id to follow")
	cmd.Flags().BoolVar(&reconnect, "reconnect", false, "Reconnect with backoff when the stream drops")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Log stream diagnostics to stderr")

	if err := cmd.Execute(); err != nil {
		log.Fatal(err)
	}
}

// tail prints events until ctx ends or the stream closes for good.
func tail(ctx context.Context, sub *stream.Subscriber, landlordID string, s *store.Store) error {
	sub.Subscribe(landlordID)

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev := <-sub.Events():
			switch ev := ev.(type) {
			case stream.Opened:
				fmt.Printf("Connected to %s\n", ev.LandlordID)
			case stream.Received:
				t, ok := s.Ingest(ev.Request, ev.ReceivedAt)
				if !ok {
					continue
				}
				m := s.Metrics()
				fmt.Printf("%s [%s] unit=%s category=%s %q (total=%d urgent=%d)\n",
					t.ReceivedAt.Format("15:04:05"), t.EmergencyType, t.UnitID, t.IssueCategory, t.Description, m.Total, m.Urgent)
			case stream.Disconnected:
				fmt.Printf("Disconnected: %v\n", ev.Err)
				if !ev.Retrying {
					return ev.Err
				}
			}
		}
	}
}
