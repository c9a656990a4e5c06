package main

import (
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	configx "github.com/tanpawarit/Freight-Shipment-Assistant/pkg/config"
	_ "github.com/tanpawarit/Freight-Shipment-Assistant/pkg/logger/autoload"
)

var envFile string

func main() {
	root := &cobra.Command{
		Use:           "freight-assistant",
		Short:         "Conversational assistant for freight shipments",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			configx.UseEnvFile(envFile)
		},
	}
	root.PersistentFlags().StringVar(&envFile, "env", "", "path to a .env file (default: ./.env when present)")

	root.AddCommand(serveCmd())
	root.AddCommand(seedCmd())

	if err := root.Execute(); err != nil {
		log.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}
