package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/aretw0/intake/internal/config"
	"github.com/aretw0/intake/internal/logging"
	"github.com/spf13/cobra"
)

var (
	cfg    *config.Config
	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "intake",
	Short: "Intake is a session-driven workflow for change requests",
	Long: `Intake walks a requester from email capture through classification and the
class-specific form to a submitted change request, persisting progress in a
workflow engine so a session link can be resumed.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := config.LoadDotEnv(); err != nil {
			return err
		}
		path, _ := cmd.Flags().GetString("config")
		loaded, err := config.Load(path)
		if err != nil {
			return err
		}
		cfg = loaded

		level := logging.ParseLevel(cfg.Log.Level)
		if debug, _ := cmd.Flags().GetBool("debug"); debug {
			level = slog.LevelDebug
		}
		logger = logging.New(level, logging.Format(cfg.Log.Format))
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("config", "", "Path to a YAML or JSON config file")
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
}

// overridePort applies the --port flag when it was set explicitly.
func overridePort(cmd *cobra.Command) {
	if cmd.Flags().Changed("port") {
		port, _ := cmd.Flags().GetString("port")
		cfg.Server.Port = port
	}
}
