package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/aretw0/augtree"
	"github.com/aretw0/augtree/internal/cli"
	"github.com/aretw0/augtree/internal/presentation/tui"
	httpAdapter "github.com/aretw0/augtree/pkg/adapters/http"
	"github.com/aretw0/augtree/pkg/observability"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long: `Serves POST /run (host argument dictionary), POST /check, GET /spec,
GET /healthz and GET /metrics. Runs are serialized.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		metrics, err := observability.NewMetrics(nil)
		if err != nil {
			return err
		}
		stack, cfg, logger, err := newStack(cmd, metrics.Hooks())
		if err != nil {
			return err
		}
		defer stack.Close()

		addr := cfg.Listen
		if cmd.Flags().Changed("listen") {
			addr, _ = cmd.Flags().GetString("listen")
		}

		srv := &http.Server{
			Addr:    addr,
			Handler: httpAdapter.NewHandler(stack.Engine.Host(), httpAdapter.WithLogger(logger)),
		}

		// Channel to listen for errors coming from the listener.
		serverErrors := make(chan error, 1)

		go func() {
			out := cmd.OutOrStdout()
			tui.PrintBanner(out, augtree.Version)
			fmt.Fprintf(out, "Starting augtree server on %s\n", srv.Addr)
			fmt.Fprintf(out, "Editing files under: %s\n", cfg.Root)
			serverErrors <- srv.ListenAndServe()
		}()

		sigCtx := cli.NewSignalContext(cmd.Context())
		defer sigCtx.Cancel()

		select {
		case err := <-serverErrors:
			return fmt.Errorf("server error: %w", err)

		case <-sigCtx.Done():
			fmt.Fprintf(cmd.OutOrStdout(), "\nStart shutdown... Signal: %v\n", sigCtx.Signal())

			// Give outstanding runs a deadline for completion.
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			if err := srv.Shutdown(ctx); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "Graceful shutdown did not complete in %v: %v\n", 5*time.Second, err)
				if err := srv.Close(); err != nil {
					return fmt.Errorf("error killing server: %w", err)
				}
			}
			fmt.Fprintln(cmd.OutOrStdout(), "augtree server stopped gracefully")
			return nil
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("listen", "l", ":8080", "Address to listen on")
}
