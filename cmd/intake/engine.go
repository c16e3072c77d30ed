package main

import (
	"net/http"
	"time"

	"github.com/aretw0/intake"
	"github.com/aretw0/intake/pkg/adapters/local"
	"github.com/aretw0/intake/pkg/adapters/webhook"
	"github.com/spf13/cobra"
)

var engineCmd = &cobra.Command{
	Use:   "engine",
	Short: "Serve the local workflow engine webhooks",
	Long: `Serves get-session and change-chat on top of the configured store, so a shell
(or any other client) can use it as its remote engine during development.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg.Server.Port, _ = cmd.Flags().GetString("port")
		if cmd.Flags().Changed("store") {
			cfg.Store.Driver, _ = cmd.Flags().GetString("store")
			if err := cfg.Validate(); err != nil {
				return err
			}
		}

		store, closer, err := intake.OpenStore(cfg)
		if err != nil {
			return err
		}
		if closer != nil {
			defer closer()
		}

		eng := local.New(store, local.WithLogger(logger))
		handler := webhook.NewHandler(eng,
			webhook.WithEncodedNested(cfg.Engine.EncodeNested),
			webhook.WithLogger(logger),
		)

		logger.Info("Serving local engine", "store", cfg.Store.Driver)
		return listen(cmd.Context(), &http.Server{
			Addr:              cfg.Addr(),
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		})
	},
}

func init() {
	rootCmd.AddCommand(engineCmd)
	engineCmd.Flags().StringP("port", "p", "8081", "Port to listen on")
	engineCmd.Flags().String("store", "", "Record store driver (memory, redis, sqlite)")
}
