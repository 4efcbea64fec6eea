package main

import (
	"context"
	"fmt"
	"time"

	"github.com/h0rv/feedboard/internal/api"
	"github.com/h0rv/feedboard/internal/domain"
	"github.com/spf13/cobra"
)

func newSubmitCmd() *cobra.Command {
	var (
		req     domain.Request
		unit    string
		timeout time.Duration
	)

	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Submit a maintenance request as a tenant",
		Long: `Submit posts a maintenance request to the backend, which pushes it to the
landlord's live feed. Useful for trying the board without the tenant app.`,
		Example: `  feedboard submit --landlord landlord-1 --unit 12 --category plumbing \
    --emergency high --description "Water leaking from the ceiling"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if req.LandlordID == "" {
				req.LandlordID = cfg.LandlordID
			}
			req.UnitID = domain.UnitID(unit)

			client, err := api.New(cfg.BaseURL, api.WithTimeout(timeout))
			if err != nil {
				return fmt.Errorf("failed to create backend client: %w", err)
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			resp, err := client.CreateRequest(ctx, req)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if resp.RequestID != "" {
				fmt.Fprintf(out, "Created request %s (%s)\n", resp.RequestID, resp.Status)
			} else {
				fmt.Fprintln(out, "Created request")
			}
			if resp.Message != "" {
				fmt.Fprintln(out, resp.Message)
			}
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&req.LandlordID, "landlord", "", "Landlord id the request is for (default: landlord_id from config)")
	flags.StringVar(&unit, "unit", "", "Unit number or label")
	flags.StringVar(&req.IssueCategory, "category", "", "Issue category, e.g. plumbing")
	flags.StringVar(&req.EmergencyType, "emergency", domain.EmergencyMedium, "Emergency type: low, medium, high, critical")
	flags.StringVar(&req.Description, "description", "", "Description of the issue")
	flags.StringVar(&req.TenantID, "tenant", "", "Submitting tenant id")
	flags.StringVar(&req.PhotoURL, "photo-url", "", "URL of a photo of the issue")
	flags.DurationVar(&timeout, "timeout", 10*time.Second, "Request timeout")

	return cmd
}
