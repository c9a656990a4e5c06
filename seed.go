package main

import (
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	configx "github.com/tanpawarit/Freight-Shipment-Assistant/pkg/config"
	"github.com/tanpawarit/Freight-Shipment-Assistant/shipment"
)

func seedCmd() *cobra.Command {
	var owner string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Insert the demo shipments for one owner",
		RunE: func(cmd *cobra.Command, args []string) error {
			appCfg, err := configx.New[AppConfig]("")
			if err != nil {
				return err
			}
			if owner = strings.TrimSpace(owner); owner == "" {
				owner = strings.TrimSpace(appCfg.SeedOwner)
			}
			if owner == "" {
				return errors.New("owner id is required (--owner or APP_SEED_OWNER)")
			}
			if appCfg.driver() == storeDriverMemory {
				log.Warn().Msg("seeding the memory store; data is discarded when the command exits")
			}

			store, closer, err := openStore(cmd.Context(), *appCfg)
			if err != nil {
				return err
			}
			defer closer.Close()

			created, err := shipment.Seed(cmd.Context(), store, owner, time.Now())
			if err != nil {
				return err
			}
			cmd.Printf("Seeded %d shipments for %s\n", len(created), owner)
			return nil
		},
	}
	cmd.Flags().StringVar(&owner, "owner", "", "owner id the demo shipments belong to")
	return cmd
}
