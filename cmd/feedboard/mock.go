package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/h0rv/feedboard/internal/logging"
	"github.com/h0rv/feedboard/internal/mockserver"
	"github.com/spf13/cobra"
)

func newMockCmd() *cobra.Command {
	var (
		addr      string
		landlord  string
		interval  time.Duration
		keepAlive time.Duration
		level     string
	)

	cmd := &cobra.Command{
		Use:   "mock",
		Short: "Run a mock backend that serves the request feed",
		Long: `Mock runs a local stand-in for the backend. It serves the per-landlord
event stream, accepts created requests and exposes Prometheus metrics on
/metrics. With --interval it also generates sample requests for --landlord.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			lvl, err := logging.ParseLevel(level)
			if err != nil {
				return err
			}
			logger := logging.New(lvl, os.Stderr)

			if interval > 0 && landlord == "" {
				return fmt.Errorf("--interval requires --landlord")
			}

			srv := mockserver.New(logger, mockserver.WithKeepAlive(keepAlive))
			httpServer := &http.Server{
				Addr:              addr,
				Handler:           srv.Handler(),
				ReadHeaderTimeout: 10 * time.Second,
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if interval > 0 {
				go srv.Generate(ctx, landlord, interval)
			}

			errCh := make(chan error, 1)
			go func() {
				logger.Info("mock backend listening", "addr", addr)
				errCh <- httpServer.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				if !errors.Is(err, http.ErrServerClosed) {
					return fmt.Errorf("serve: %w", err)
				}
				return nil
			case <-ctx.Done():
			}

			logger.Info("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			// Open streams never finish on their own
			if err := httpServer.Shutdown(shutdownCtx); err != nil {
				_ = httpServer.Close()
			}
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&addr, "addr", ":8003", "Listen address")
	flags.StringVar(&landlord, "landlord", "", "Landlord id to generate sample requests for")
	flags.DurationVar(&interval, "interval", 0, "Generate a sample request this often (0 disables)")
	flags.DurationVar(&keepAlive, "keep-alive", 15*time.Second, "Interval between stream keep-alive comments")
	flags.StringVar(&level, "log-level", "info", "Log level: debug, info, warn, error")

	return cmd
}
