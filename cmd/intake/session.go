package main

import (
	"encoding/json"
	"fmt"

	"github.com/aretw0/intake"
	"github.com/aretw0/intake/internal/presentation/tui"
	"github.com/aretw0/intake/pkg/ports"
	"github.com/aretw0/intake/pkg/workflow"
	"github.com/spf13/cobra"
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Inspect and manage sessions",
	Long: `Inspect a session as the shell would resume it, and list or remove the
sessions persisted by the local engine's store.`,
}

var sessionInspectCmd = &cobra.Command{
	Use:   "inspect <session-id>",
	Short: "Show the view a session resumes into",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := intake.New(cfg, intake.WithLogger(logger))
		if err != nil {
			return err
		}
		defer app.Close()

		// Bootstrap only reads from the engine.
		ctrl := workflow.NewController(app.Engine, args[0], workflow.WithLogger(logger))
		if _, err := ctrl.Bootstrap(cmd.Context()); err != nil {
			return err
		}
		view := ctrl.View()

		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			data, err := json.MarshalIndent(view, "", "  ")
			if err != nil {
				return fmt.Errorf("error marshaling view: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		}

		out, err := tui.NewRenderer()(tui.ViewMarkdown(view))
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), out)
		return nil
	},
}

var sessionLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List sessions in the local store",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(func(store ports.RecordStore) error {
			sessions, err := store.List(cmd.Context())
			if err != nil {
				return fmt.Errorf("error listing sessions: %w", err)
			}
			if len(sessions) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No sessions found.")
				return nil
			}
			for _, s := range sessions {
				fmt.Fprintln(cmd.OutOrStdout(), "- "+s)
			}
			return nil
		})
	},
}

var sessionRmCmd = &cobra.Command{
	Use:   "rm <session-id>...",
	Short: "Remove one or more sessions from the local store",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(func(store ports.RecordStore) error {
			failed := 0
			for _, id := range args {
				if err := store.Delete(cmd.Context(), id); err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "Error removing '%s': %v\n", id, err)
					failed++
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed session '%s'\n", id)
			}
			if failed > 0 {
				return fmt.Errorf("%d session(s) could not be removed", failed)
			}
			return nil
		})
	},
}

func withStore(fn func(ports.RecordStore) error) error {
	store, closer, err := intake.OpenStore(cfg)
	if err != nil {
		return err
	}
	if closer != nil {
		defer closer()
	}
	return fn(store)
}

func init() {
	rootCmd.AddCommand(sessionCmd)
	sessionCmd.AddCommand(sessionInspectCmd, sessionLsCmd, sessionRmCmd)
	sessionInspectCmd.Flags().Bool("json", false, "Print the view as JSON")
}
