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

	"github.com/aretw0/intake"
	"github.com/aretw0/intake/internal/presentation/tui"
	"github.com/spf13/cobra"
)

// shutdownTimeout gives outstanding requests a deadline for completion.
const shutdownTimeout = 5 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the intake HTTP shell",
	Long: `Starts the HTTP/JSON shell of the intake workflow. Without an engine URL, or
with --local, the workflow engine runs in-process on the configured store and its
webhooks are served alongside the shell.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		overridePort(cmd)
		useLocal, _ := cmd.Flags().GetBool("local")

		app, err := intake.New(cfg, intake.WithLocal(useLocal), intake.WithLogger(logger))
		if err != nil {
			return fmt.Errorf("failed to initialize intake: %w", err)
		}
		defer func() {
			if err := app.Close(); err != nil {
				logger.Warn("Failed to close resources", "err", err)
			}
		}()

		tui.PrintBanner(os.Stderr)
		return listen(cmd.Context(), &http.Server{
			Addr:              cfg.Addr(),
			Handler:           app.Handler(),
			ReadHeaderTimeout: 10 * time.Second,
		})
	},
}

// listen serves srv until it fails or the process receives SIGINT/SIGTERM.
func listen(ctx context.Context, srv *http.Server) error {
	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("Listening", "addr", srv.Addr)
		serverErrors <- srv.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(shutdown)

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		logger.Info("Start shutdown", "signal", sig.String())

		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			logger.Warn("Graceful shutdown did not complete", "timeout", shutdownTimeout, "err", err)
			if err := srv.Close(); err != nil {
				return fmt.Errorf("error killing server: %w", err)
			}
		}
		logger.Info("Server stopped gracefully")
		return nil
	}
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("port", "p", "8080", "Port to listen on")
	serveCmd.Flags().Bool("local", false, "Run the workflow engine in-process")
}
